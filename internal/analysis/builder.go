// Package analysis merges adapter output and synthetic scores into one
// composite LocationAnalysis with an overall score and generated insights.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/urbsense/location-insight-service/internal/models"
	"github.com/urbsense/location-insight-service/internal/observability"
)

// ErrAnalysisUnavailable is returned only when the synthetic engine itself
// fails. There is no further fallback beneath it.
var ErrAnalysisUnavailable = errors.New("analysis unavailable")

// Insight thresholds.
const (
	investmentInsightMin = 8.5
	securityWarningMax   = 6.0
	premiumOverallMin    = 8.5
	weakOverallMax       = 6.5
)

// HealthSource reports provider reachability. Implemented by health.Monitor.
type HealthSource interface {
	Status(ctx context.Context) models.ProviderHealth
}

// EnvironmentalScorer computes the environmental module score.
type EnvironmentalScorer interface {
	Score(ctx context.Context, loc models.LocationData, status models.ProviderHealth) models.ModuleScore
}

// InfrastructureScorer computes the infrastructure module score.
type InfrastructureScorer interface {
	Score(ctx context.Context, cityName string, status models.ProviderHealth) models.ModuleScore
}

// SyntheticScorer produces the full six-module baseline.
type SyntheticScorer interface {
	ScoreAll(loc models.LocationData) map[models.Module]models.ModuleScore
}

// Builder orchestrates the health monitor, the two live-capable adapters, and
// the synthetic engine into a single LocationAnalysis per request.
type Builder struct {
	health         HealthSource
	environmental  EnvironmentalScorer
	infrastructure InfrastructureScorer
	synthetic      SyntheticScorer
	logger         *zap.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(health HealthSource, environmental EnvironmentalScorer, infrastructure InfrastructureScorer, synthetic SyntheticScorer, logger *zap.Logger) *Builder {
	return &Builder{
		health:         health,
		environmental:  environmental,
		infrastructure: infrastructure,
		synthetic:      synthetic,
		logger:         logger,
	}
}

// Analyze computes the composite analysis for a resolved location. Adapter
// failures degrade internally and never surface; the only error condition is
// a failure of the synthetic engine itself.
func (b *Builder) Analyze(ctx context.Context, loc models.LocationData) (models.LocationAnalysis, error) {
	status := b.health.Status(ctx)

	modules, err := b.syntheticBaseline(loc)
	if err != nil {
		return models.LocationAnalysis{}, err
	}

	// Adapters are independently fault tolerant; neither blocks the other.
	var envScore, infraScore models.ModuleScore
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		envScore = b.environmental.Score(gCtx, loc, status)
		return nil
	})
	g.Go(func() error {
		infraScore = b.infrastructure.Score(gCtx, loc.City, status)
		return nil
	})
	_ = g.Wait()

	modules[models.ModuleEnvironmental] = envScore
	modules[models.ModuleInfrastructure] = infraScore

	var sum float64
	live := 0
	for _, m := range models.Modules {
		sum += modules[m].Score
		if modules[m].RealData() {
			live++
		}
	}
	overall := math.Round(sum/float64(len(models.Modules))*10) / 10

	insights, recommendations := deriveInsights(modules, overall)

	observability.AnalysesTotal.WithLabelValues(analysisSource(live)).Inc()
	b.logger.Info("analysis complete",
		zap.String("city", loc.City),
		zap.Float64("overallScore", overall),
		zap.Int("liveModules", live))

	return models.LocationAnalysis{
		Location:        loc,
		OverallScore:    overall,
		Modules:         modules,
		Insights:        insights,
		Recommendations: recommendations,
		LastUpdated:     time.Now().UTC(),
	}, nil
}

// syntheticBaseline invokes the engine, converting a panic into the typed
// unavailable error instead of letting it propagate to the transport layer.
func (b *Builder) syntheticBaseline(loc models.LocationData) (modules map[models.Module]models.ModuleScore, err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("synthetic engine failure", zap.Any("cause", r))
			modules = nil
			err = fmt.Errorf("%w: %v", ErrAnalysisUnavailable, r)
		}
	}()
	modules = b.synthetic.ScoreAll(loc)
	if len(modules) != len(models.Modules) {
		return nil, fmt.Errorf("%w: incomplete module set", ErrAnalysisUnavailable)
	}
	return modules, nil
}

// deriveInsights scans module scores against fixed thresholds. A security
// warning always pairs an insight with a recommendation.
func deriveInsights(modules map[models.Module]models.ModuleScore, overall float64) (insights, recommendations []string) {
	insights = []string{}
	recommendations = []string{}

	if modules[models.ModuleInvestment].Score > investmentInsightMin {
		insights = append(insights, "Strong investment potential with high appreciation outlook")
	}
	if modules[models.ModuleSecurity].Score < securityWarningMax {
		insights = append(insights, "Security indicators below the comfort threshold for this area")
		recommendations = append(recommendations, "Review local security measures and prefer well-lit, busier streets")
	}
	if overall > premiumOverallMin {
		insights = append(insights, "Premium location scoring highly across most dimensions")
	}
	if overall < weakOverallMax {
		recommendations = append(recommendations, "Consider comparing nearby alternatives before committing")
	}
	return insights, recommendations
}

// analysisSource classifies a result by how many modules used live data.
func analysisSource(live int) string {
	switch {
	case live == 0:
		return "synthetic"
	case live >= 2:
		return "live"
	default:
		return "mixed"
	}
}
