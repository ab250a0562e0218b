package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/urbsense/location-insight-service/internal/models"
	"github.com/urbsense/location-insight-service/internal/observability"
)

// ErrProviderUnavailable is returned when a provider responds with a non-2xx
// status or an unusable payload.
var ErrProviderUnavailable = errors.New("provider unavailable")

// PlacesClient queries the places text-search and reverse-geocoding endpoints.
// An empty API key is a normal configuration state; the client then reports
// itself unavailable and the resolver skips it.
type PlacesClient struct {
	apiKey     string
	apiURL     string
	reverseURL string
	client     *http.Client
}

// NewPlacesClient creates a PlacesClient. The key may be empty.
func NewPlacesClient(apiKey, apiURL, reverseURL string, timeout time.Duration) *PlacesClient {
	return &PlacesClient{
		apiKey:     apiKey,
		apiURL:     apiURL,
		reverseURL: reverseURL,
		client:     &http.Client{Timeout: timeout},
	}
}

// Name implements Strategy.
func (c *PlacesClient) Name() string { return models.ProviderPlaces }

// Available implements Strategy. False when no API key is configured.
func (c *PlacesClient) Available() bool { return c.apiKey != "" }

type placesResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Name             string `json:"name"`
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Search implements Strategy: free-text query to candidate locations.
func (c *PlacesClient) Search(ctx context.Context, query string, limit int) ([]models.LocationData, error) {
	start := time.Now()

	base, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid places URL: %w", err)
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.apiKey)
	params.Set("language", "pt-BR")
	base.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	duration := time.Since(start).Seconds()
	observability.ProviderCallDuration.WithLabelValues(models.ProviderPlaces).Observe(duration)
	if err != nil {
		observability.ProviderCallsTotal.WithLabelValues(models.ProviderPlaces, "error").Inc()
		return nil, fmt.Errorf("places request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observability.ProviderCallsTotal.WithLabelValues(models.ProviderPlaces, "error").Inc()
		return nil, fmt.Errorf("%w: HTTP %d", ErrProviderUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var apiResp placesResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		observability.ProviderCallsTotal.WithLabelValues(models.ProviderPlaces, "error").Inc()
		return nil, fmt.Errorf("parse places response: %w", err)
	}
	if apiResp.Status != "OK" && apiResp.Status != "ZERO_RESULTS" {
		observability.ProviderCallsTotal.WithLabelValues(models.ProviderPlaces, "error").Inc()
		return nil, fmt.Errorf("%w: status %s", ErrProviderUnavailable, apiResp.Status)
	}
	observability.ProviderCallsTotal.WithLabelValues(models.ProviderPlaces, "success").Inc()

	out := make([]models.LocationData, 0, limit)
	for _, r := range apiResp.Results {
		if len(out) >= limit {
			break
		}
		loc := models.LocationData{
			Coordinate: models.Coordinate{
				Latitude:  r.Geometry.Location.Lat,
				Longitude: r.Geometry.Location.Lng,
			},
			Address: r.FormattedAddress,
			City:    r.Name,
		}
		loc.State, loc.Country = splitAddress(r.FormattedAddress)
		out = append(out, loc)
	}
	return out, nil
}

type reverseResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress  string `json:"formatted_address"`
		AddressComponents []struct {
			LongName  string   `json:"long_name"`
			ShortName string   `json:"short_name"`
			Types     []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

// ReverseGeocode resolves a coordinate to an address and city. A coordinate
// the provider cannot resolve returns a zero LocationData with no error;
// callers treat an empty City as "no result" and fall back locally.
func (c *PlacesClient) ReverseGeocode(ctx context.Context, coord models.Coordinate) (models.LocationData, error) {
	if !c.Available() {
		return models.LocationData{}, fmt.Errorf("%w: no API key configured", ErrProviderUnavailable)
	}

	start := time.Now()

	base, err := url.Parse(c.reverseURL)
	if err != nil {
		return models.LocationData{}, fmt.Errorf("invalid reverse geocode URL: %w", err)
	}
	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%f,%f", coord.Latitude, coord.Longitude))
	params.Set("key", c.apiKey)
	params.Set("language", "pt-BR")
	base.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return models.LocationData{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	duration := time.Since(start).Seconds()
	observability.ProviderCallDuration.WithLabelValues(models.ProviderPlaces).Observe(duration)
	if err != nil {
		observability.ProviderCallsTotal.WithLabelValues(models.ProviderPlaces, "error").Inc()
		return models.LocationData{}, fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observability.ProviderCallsTotal.WithLabelValues(models.ProviderPlaces, "error").Inc()
		return models.LocationData{}, fmt.Errorf("%w: HTTP %d", ErrProviderUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.LocationData{}, fmt.Errorf("read response body: %w", err)
	}

	var apiResp reverseResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		observability.ProviderCallsTotal.WithLabelValues(models.ProviderPlaces, "error").Inc()
		return models.LocationData{}, fmt.Errorf("parse reverse geocode response: %w", err)
	}
	if apiResp.Status != "OK" && apiResp.Status != "ZERO_RESULTS" {
		observability.ProviderCallsTotal.WithLabelValues(models.ProviderPlaces, "error").Inc()
		return models.LocationData{}, fmt.Errorf("%w: status %s", ErrProviderUnavailable, apiResp.Status)
	}
	observability.ProviderCallsTotal.WithLabelValues(models.ProviderPlaces, "success").Inc()

	if len(apiResp.Results) == 0 {
		return models.LocationData{}, nil
	}

	r := apiResp.Results[0]
	loc := models.LocationData{
		Coordinate: coord,
		Address:    r.FormattedAddress,
	}
	for _, comp := range r.AddressComponents {
		switch {
		case hasType(comp.Types, "locality"):
			loc.City = comp.LongName
		case hasType(comp.Types, "administrative_area_level_2") && loc.City == "":
			loc.City = comp.LongName
		case hasType(comp.Types, "administrative_area_level_1"):
			loc.State = comp.ShortName
		case hasType(comp.Types, "country"):
			loc.Country = comp.LongName
		}
	}
	return loc, nil
}

func hasType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

// Ping verifies reachability for the health monitor. It probes the reverse
// geocode endpoint with a fixed coordinate, the cheapest authenticated call
// the provider offers; there is no unauthenticated liveness route.
func (c *PlacesClient) Ping(ctx context.Context) error {
	if !c.Available() {
		return fmt.Errorf("%w: no API key configured", ErrProviderUnavailable)
	}
	_, err := c.ReverseGeocode(ctx, models.Coordinate{Latitude: -15.7942, Longitude: -47.8822})
	return err
}

// splitAddress extracts state and country from a "City, ST, Country" formatted
// address. Missing parts stay empty.
func splitAddress(addr string) (state, country string) {
	parts := strings.Split(addr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) >= 3 {
		return parts[len(parts)-2], parts[len(parts)-1]
	}
	if len(parts) == 2 {
		return "", parts[1]
	}
	return "", ""
}
