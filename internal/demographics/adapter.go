// Package demographics scores the infrastructure dimension from municipal
// statistics, preferring live IBGE indicators and degrading through the static
// catalog to a generic national estimate.
package demographics

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/urbsense/location-insight-service/internal/catalog"
	"github.com/urbsense/location-insight-service/internal/ibge"
	"github.com/urbsense/location-insight-service/internal/models"
	"github.com/urbsense/location-insight-service/internal/observability"
)

const baseScore = 5.0

// Generic estimate for municipalities absent from every data source.
var genericEstimate = models.DemographicData{
	Population:       500000,
	Density:          1667,
	DevelopmentIndex: 0.750,
}

// StatsSource is the slice of the IBGE client the adapter needs.
type StatsSource interface {
	FindMunicipality(ctx context.Context, name string) (ibge.Municipality, error)
	Population(ctx context.Context, municipalityID int) (int, error)
	Density(ctx context.Context, municipalityID int) (float64, error)
	DevelopmentIndex(ctx context.Context, municipalityID int) (float64, error)
}

// Adapter computes the infrastructure module score from demographic data.
type Adapter struct {
	stats  StatsSource
	logger *zap.Logger
}

// NewAdapter creates the demographics adapter.
func NewAdapter(stats StatsSource, logger *zap.Logger) *Adapter {
	return &Adapter{stats: stats, logger: logger}
}

// Score computes the infrastructure score for a city. When the statistics
// provider is reported healthy it fetches live indicators; any failure on
// that path degrades to the catalog record, then to the generic estimate.
// Never returns an error.
func (a *Adapter) Score(ctx context.Context, cityName string, status models.ProviderHealth) models.ModuleScore {
	if status.Healthy(models.ProviderIBGE) {
		data, err := a.fetch(ctx, cityName)
		if err == nil {
			return scoreFromData(data, true)
		}
		a.logger.Warn("live demographic lookup failed, using reference data",
			zap.String("city", cityName),
			zap.Error(err))
	}

	observability.FallbackActivationsTotal.WithLabelValues(string(models.ModuleInfrastructure)).Inc()

	if data, ok := catalog.Demographics(cityName); ok {
		return scoreFromData(data, false)
	}

	data := genericEstimate
	data.City = cityName
	return scoreFromData(data, false)
}

// fetch resolves the municipality and pulls its three indicators in parallel.
func (a *Adapter) fetch(ctx context.Context, cityName string) (models.DemographicData, error) {
	muni, err := a.stats.FindMunicipality(ctx, cityName)
	if err != nil {
		return models.DemographicData{}, fmt.Errorf("resolve municipality: %w", err)
	}

	data := models.DemographicData{City: muni.Name}
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pop, err := a.stats.Population(gCtx, muni.ID)
		if err != nil {
			return fmt.Errorf("population: %w", err)
		}
		data.Population = pop
		return nil
	})
	g.Go(func() error {
		density, err := a.stats.Density(gCtx, muni.ID)
		if err != nil {
			return fmt.Errorf("density: %w", err)
		}
		data.Density = density
		return nil
	})
	g.Go(func() error {
		idx, err := a.stats.DevelopmentIndex(gCtx, muni.ID)
		if err != nil {
			return fmt.Errorf("development index: %w", err)
		}
		data.DevelopmentIndex = idx
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.DemographicData{}, err
	}
	if data.Density > 0 {
		data.AreaKm2 = float64(data.Population) / data.Density
	}
	return data, nil
}

// scoreFromData turns demographic figures into a module score. The same
// banding applies to live and reference data; only the attribution differs.
func scoreFromData(data models.DemographicData, live bool) models.ModuleScore {
	score := baseScore

	switch {
	case data.DevelopmentIndex >= 0.8:
		score += 2.5
	case data.DevelopmentIndex >= 0.7:
		score += 1.5
	case data.DevelopmentIndex >= 0.6:
		score += 0.5
	default:
		score -= 0.5
	}

	if data.Density > 5000 {
		score += 1.0
	} else if data.Density < 100 {
		score -= 0.5
	}

	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}

	source := "estimated from reference data"
	if live {
		source = "official municipal statistics"
	}

	factors := []string{
		fmt.Sprintf("Development index: %.3f", data.DevelopmentIndex),
		fmt.Sprintf("Population: %d (density %.0f/km²)", data.Population, data.Density),
		"Source: " + source,
	}

	trend := models.TrendDown
	if data.DevelopmentIndex >= 0.75 {
		trend = models.TrendUp
	} else if data.DevelopmentIndex >= 0.6 {
		trend = models.TrendStable
	}

	return models.ModuleScore{
		Score:   score,
		Factors: factors,
		Trend:   trend,
		Details: map[string]interface{}{
			models.DetailRealData: live,
			"population":          data.Population,
			"density":             data.Density,
			"developmentIndex":    data.DevelopmentIndex,
		},
	}
}
