package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 latency increases.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation, capacity limits.
	HTTPRequestsInFlight prometheus.Gauge

	// Provider call rate by provider and status. Watch for: error vs success ratio per provider.
	ProviderCallsTotal *prometheus.CounterVec

	// Provider call latency. Watch for: p95 > 2s (upstream degradation).
	ProviderCallDuration *prometheus.HistogramVec

	// Health probe outcomes by provider. Watch for: providers flapping between up and down.
	HealthProbesTotal *prometheus.CounterVec

	// Fallback activations by module. Sustained growth means a provider is down or unconfigured.
	FallbackActivationsTotal *prometheus.CounterVec

	// Completed analyses by data source mix (live, mixed, synthetic).
	AnalysesTotal *prometheus.CounterVec

	// Geocode searches by strategy that produced the result (places, ibge, catalog, none).
	GeocodeSearchesTotal *prometheus.CounterVec

	// Analysis cache hits. Hit rate = hits/(hits+analysesTotal).
	CacheHitsTotal *prometheus.CounterVec

	// Rate limit denials. Watch for: overload, capacity exceeded.
	RateLimitDeniedTotal prometheus.Counter
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	ProviderCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "providerCallsTotal",
			Help: "Total number of external provider calls",
		},
		[]string{"provider", "status"},
	)
	ProviderCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "providerCallDurationSeconds",
			Help:    "External provider call latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)
	HealthProbesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "healthProbesTotal",
			Help: "Liveness probes issued against providers, by outcome",
		},
		[]string{"provider", "outcome"},
	)
	FallbackActivationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallbackActivationsTotal",
			Help: "Times a module score fell back to the local estimate",
		},
		[]string{"module"},
	)
	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysesTotal",
			Help: "Completed location analyses by data source mix",
		},
		[]string{"source"},
	)
	GeocodeSearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocodeSearchesTotal",
			Help: "Geocode searches by the strategy that produced the result",
		},
		[]string{"strategy"},
	)
	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheHitsTotal",
			Help: "Total number of analysis cache hits",
		},
		[]string{"cacheType"},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		ProviderCallsTotal, ProviderCallDuration,
		HealthProbesTotal, FallbackActivationsTotal,
		AnalysesTotal, GeocodeSearchesTotal,
		CacheHitsTotal,
		RateLimitDeniedTotal,
	)
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
