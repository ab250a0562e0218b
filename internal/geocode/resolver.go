// Package geocode resolves free-text queries to candidate locations through a
// prioritized chain of providers, with the static city catalog as the terminal
// fallback.
package geocode

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/urbsense/location-insight-service/internal/catalog"
	"github.com/urbsense/location-insight-service/internal/models"
	"github.com/urbsense/location-insight-service/internal/observability"
)

// minQueryLength is the shortest query the provider chain is consulted for;
// anything shorter returns the fixed default catalog entries.
const minQueryLength = 2

// Strategy is one geocoding backend in the priority chain.
type Strategy interface {
	Name() string
	Available() bool
	Search(ctx context.Context, query string, limit int) ([]models.LocationData, error)
}

// HealthSource reports provider reachability. Implemented by health.Monitor.
type HealthSource interface {
	Status(ctx context.Context) models.ProviderHealth
}

// Resolver chains strategies in priority order. The first strategy returning a
// non-empty result set wins; results from different strategies are never
// merged. Provider errors are swallowed and treated as "no result from that
// provider"; the caller only ever sees a (possibly empty) result list.
type Resolver struct {
	strategies []Strategy
	health     HealthSource
	limit      int
	logger     *zap.Logger
}

// NewResolver creates a Resolver. Strategies are tried in the given order;
// each only when available and reported healthy.
func NewResolver(health HealthSource, limit int, logger *zap.Logger, strategies ...Strategy) *Resolver {
	return &Resolver{
		strategies: strategies,
		health:     health,
		limit:      limit,
		logger:     logger,
	}
}

// Search resolves a free-text query to up to limit candidate locations.
// Empty and single-character queries short-circuit to the default catalog
// list, so those calls never return an empty sequence.
func (r *Resolver) Search(ctx context.Context, query string) []models.LocationData {
	q := strings.TrimSpace(query)
	if len([]rune(q)) < minQueryLength {
		observability.GeocodeSearchesTotal.WithLabelValues("catalog").Inc()
		return catalog.Defaults(r.limit)
	}

	status := r.health.Status(ctx)
	for _, s := range r.strategies {
		if !s.Available() || !status.Healthy(s.Name()) {
			continue
		}
		results, err := s.Search(ctx, q, r.limit)
		if err != nil {
			r.logger.Debug("geocode strategy failed, trying next",
				zap.String("strategy", s.Name()),
				zap.Error(err))
			continue
		}
		if len(results) > 0 {
			observability.GeocodeSearchesTotal.WithLabelValues(s.Name()).Inc()
			return results
		}
	}

	results := catalog.Search(q, r.limit)
	if len(results) > 0 {
		observability.GeocodeSearchesTotal.WithLabelValues("catalog").Inc()
		return results
	}
	observability.GeocodeSearchesTotal.WithLabelValues("none").Inc()
	return []models.LocationData{}
}
