// Package http exposes the scoring engine over a small JSON API: location
// search, composite analysis, and a health endpoint.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/urbsense/location-insight-service/internal/analysis"
	"github.com/urbsense/location-insight-service/internal/cache"
	"github.com/urbsense/location-insight-service/internal/catalog"
	"github.com/urbsense/location-insight-service/internal/models"
	"github.com/urbsense/location-insight-service/internal/observability"
	"github.com/urbsense/location-insight-service/internal/validation"
)

// maxQueryLength bounds the search query in runes.
const maxQueryLength = 120

// Searcher resolves free-text queries to candidate locations.
type Searcher interface {
	Search(ctx context.Context, query string) []models.LocationData
}

// Analyzer produces the composite analysis for a resolved location.
type Analyzer interface {
	Analyze(ctx context.Context, loc models.LocationData) (models.LocationAnalysis, error)
}

// HealthSource reports provider reachability.
type HealthSource interface {
	Status(ctx context.Context) models.ProviderHealth
}

// ReverseGeocoder resolves a coordinate to an address. Implemented by
// geocode.PlacesClient; an empty City in the result means the provider had no
// match for the coordinate.
type ReverseGeocoder interface {
	Available() bool
	ReverseGeocode(ctx context.Context, coord models.Coordinate) (models.LocationData, error)
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	searcher  Searcher
	analyzer  Analyzer
	health    HealthSource
	reverse   ReverseGeocoder
	cache     cache.Cache
	cacheTTL  time.Duration
	cacheType string
	// cachePing, when set, is called by the health handler to check cache
	// reachability. Set when the backend is memcached.
	cachePing func() error
	logger    *zap.Logger
}

// NewHandler returns a new Handler. reverse may be nil; pin-drop requests then
// resolve against the static catalog only.
func NewHandler(
	searcher Searcher,
	analyzer Analyzer,
	health HealthSource,
	reverse ReverseGeocoder,
	analysisCache cache.Cache,
	cacheTTL time.Duration,
	cacheType string,
	cachePing func() error,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		searcher:  searcher,
		analyzer:  analyzer,
		health:    health,
		reverse:   reverse,
		cache:     analysisCache,
		cacheTTL:  cacheTTL,
		cacheType: cacheType,
		cachePing: cachePing,
		logger:    logger,
	}
}

// ctxLogger returns the request-scoped logger set by the correlation-ID
// middleware, falling back to the handler's base logger.
func (h *Handler) ctxLogger(r *http.Request) *zap.Logger {
	if logger, ok := r.Context().Value("logger").(*zap.Logger); ok && logger != nil {
		return logger
	}
	return h.logger
}

// SearchLocations handles GET /api/v1/locations/search?q=. An empty result
// list is a valid response, not an error.
func (h *Handler) SearchLocations(w http.ResponseWriter, r *http.Request) {
	query, err := validation.ValidateQuery(r.URL.Query().Get("q"), maxQueryLength)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}

	results := h.searcher.Search(r.Context(), query)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"results": results,
	})
}

// GetAnalysis handles GET /api/v1/analysis?lat=&lng=. Cached results are
// served as-is until the TTL elapses.
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	coord, err := validation.ParseCoordinate(r.URL.Query().Get("lat"), r.URL.Query().Get("lng"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_COORDINATE", err.Error())
		return
	}

	key := cache.Key(coord)
	if h.cache != nil {
		if cached, ok, cerr := h.cache.Get(r.Context(), key); cerr == nil && ok {
			observability.CacheHitsTotal.WithLabelValues(h.cacheType).Inc()
			writeJSON(w, http.StatusOK, cached)
			return
		} else if cerr != nil {
			h.ctxLogger(r).Warn("cache read failed", zap.Error(cerr))
		}
	}

	loc := h.resolveLocation(r, coord, r.URL.Query().Get("city"))
	result, err := h.analyzer.Analyze(r.Context(), loc)
	if err != nil {
		if errors.Is(err, analysis.ErrAnalysisUnavailable) {
			writeError(w, r, http.StatusServiceUnavailable, "ANALYSIS_UNAVAILABLE", "Unable to compute analysis")
		} else {
			writeError(w, r, http.StatusInternalServerError, "INTERNAL", "Unexpected error")
		}
		h.ctxLogger(r).Debug("analysis error", zap.Error(err))
		return
	}

	if h.cache != nil {
		if cerr := h.cache.Set(r.Context(), key, result, h.cacheTTL); cerr != nil {
			h.ctxLogger(r).Warn("cache write failed", zap.Error(cerr))
		}
	}
	writeJSON(w, http.StatusOK, result)
}

// resolveLocation builds the LocationData for a pin-drop request. The optional
// city parameter lets profile and demographic lookups key on a known city.
// Without it the coordinate is reverse-geocoded through the provider when it
// is configured and healthy, then against the static catalog.
func (h *Handler) resolveLocation(r *http.Request, coord models.Coordinate, cityName string) models.LocationData {
	ctx := r.Context()
	if city, err := validation.ValidateQuery(cityName, maxQueryLength); err == nil && city != "" {
		for _, candidate := range h.searcher.Search(ctx, city) {
			if candidate.City != "" {
				return models.LocationData{
					Coordinate: coord,
					Address:    candidate.Address,
					City:       candidate.City,
					State:      candidate.State,
					Country:    candidate.Country,
				}
			}
		}
	}
	if h.reverse != nil && h.reverse.Available() && h.health.Status(ctx).Healthy(models.ProviderPlaces) {
		resolved, err := h.reverse.ReverseGeocode(ctx, coord)
		if err != nil {
			h.ctxLogger(r).Debug("reverse geocode failed, using catalog", zap.Error(err))
		} else if resolved.City != "" {
			return resolved
		}
	}
	if near, ok := catalog.Nearest(coord); ok {
		return models.LocationData{
			Coordinate: coord,
			Address:    near.Address,
			City:       near.City,
			State:      near.State,
			Country:    near.Country,
		}
	}
	return models.LocationData{Coordinate: coord}
}

// GetHealth handles GET /health. Provider outages degrade scoring rather than
// availability, so the endpoint reports 200 with per-provider status.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := h.health.Status(r.Context())

	checks := make(map[string]string, len(status.Providers)+1)
	for id, up := range status.Providers {
		if up {
			checks[id] = "healthy"
		} else {
			checks[id] = "unhealthy"
		}
	}
	if h.cachePing != nil {
		if h.cachePing() == nil {
			checks["cache"] = "healthy"
		} else {
			checks["cache"] = "unhealthy"
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "location-insight-service",
		"version":   "dev",
		"checks":    checks,
		"checkedAt": status.CheckedAt.UTC().Format(time.RFC3339),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard error format with code,
// message, and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	corrID := ""
	if v := r.Context().Value("correlation_id"); v != nil {
		corrID = v.(string)
	}
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": corrID,
		},
	})
}
