// Package health tracks reachability of the external data providers. Adapters
// consult the monitor before choosing the live path; an unhealthy provider
// routes them straight to their local estimate.
package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/urbsense/location-insight-service/internal/models"
	"github.com/urbsense/location-insight-service/internal/observability"
)

// Prober issues a lightweight liveness check against one provider.
type Prober interface {
	ID() string
	Probe(ctx context.Context) error
}

// ProberFunc adapts a function to the Prober interface.
func ProberFunc(id string, fn func(ctx context.Context) error) Prober {
	return proberFunc{id: id, fn: fn}
}

type proberFunc struct {
	id string
	fn func(ctx context.Context) error
}

func (p proberFunc) ID() string                      { return p.id }
func (p proberFunc) Probe(ctx context.Context) error { return p.fn(ctx) }

// Monitor caches provider reachability for a TTL window. Within the window
// Status returns the cached map unchanged; after it expires the next call
// re-probes all providers in parallel. The cached map is written by exactly
// one refresh at a time and must be treated as read-only by callers.
type Monitor struct {
	probers      []Prober
	ttl          time.Duration
	probeTimeout time.Duration
	logger       *zap.Logger

	mu     sync.Mutex
	cached models.ProviderHealth
}

// NewMonitor creates a Monitor over the given probers. ttl bounds how long a
// probe result is trusted; probeTimeout bounds each individual probe.
func NewMonitor(ttl, probeTimeout time.Duration, logger *zap.Logger, probers ...Prober) *Monitor {
	return &Monitor{
		probers:      probers,
		ttl:          ttl,
		probeTimeout: probeTimeout,
		logger:       logger,
	}
}

// Status returns the current provider health map, refreshing it first when the
// TTL window has elapsed. Never returns an error: an unreachable provider is
// simply recorded as false. Safe to call on every analysis request.
func (m *Monitor) Status(ctx context.Context) models.ProviderHealth {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.cached.CheckedAt.IsZero() && time.Since(m.cached.CheckedAt) <= m.ttl {
		return m.cached
	}

	m.cached = m.refresh(ctx)
	return m.cached
}

// refresh probes every provider in parallel. Each probe carries its own
// timeout and its own failure handling so one slow or dead provider cannot
// block or fail the others.
func (m *Monitor) refresh(ctx context.Context) models.ProviderHealth {
	results := make([]bool, len(m.probers))

	g, gCtx := errgroup.WithContext(ctx)
	for i, p := range m.probers {
		i, p := i, p
		g.Go(func() error {
			probeCtx, cancel := context.WithTimeout(gCtx, m.probeTimeout)
			defer cancel()

			err := p.Probe(probeCtx)
			results[i] = err == nil
			if err == nil {
				observability.HealthProbesTotal.WithLabelValues(p.ID(), "up").Inc()
			} else {
				observability.HealthProbesTotal.WithLabelValues(p.ID(), "down").Inc()
				m.logger.Debug("provider probe failed",
					zap.String("provider", p.ID()),
					zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	providers := make(map[string]bool, len(m.probers))
	for i, p := range m.probers {
		providers[p.ID()] = results[i]
	}
	return models.ProviderHealth{Providers: providers, CheckedAt: time.Now()}
}
