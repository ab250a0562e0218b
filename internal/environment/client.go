package environment

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

	"golang.org/x/sync/errgroup"

	"github.com/urbsense/location-insight-service/internal/models"
	"github.com/urbsense/location-insight-service/internal/observability"
)

// ErrNoCredential is returned when the client is asked to fetch without a key.
var ErrNoCredential = errors.New("weather provider not configured")

// OpenWeatherClient fetches current weather and air-pollution readings. An
// empty API key is a normal configuration state; the adapter then stays on
// the estimate path.
type OpenWeatherClient struct {
	apiKey string
	apiURL string // API root, e.g. https://api.openweathermap.org/data/2.5
	client *http.Client
}

// NewOpenWeatherClient creates the client. The key may be empty.
func NewOpenWeatherClient(apiKey, apiURL string, timeout time.Duration) *OpenWeatherClient {
	return &OpenWeatherClient{
		apiKey: apiKey,
		apiURL: strings.TrimRight(apiURL, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether a credential is present.
func (c *OpenWeatherClient) Configured() bool { return c.apiKey != "" }

type weatherResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

type airPollutionResponse struct {
	List []struct {
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
	} `json:"list"`
}

// Reading fetches the current weather and air-quality index for a coordinate,
// issuing both provider calls in parallel.
func (c *OpenWeatherClient) Reading(ctx context.Context, coord models.Coordinate) (models.EnvironmentalReading, error) {
	if !c.Configured() {
		return models.EnvironmentalReading{}, ErrNoCredential
	}

	var weather weatherResponse
	var pollution airPollutionResponse

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.getJSON(gCtx, "/weather", coord, url.Values{"units": {"metric"}, "lang": {"pt_br"}}, &weather)
	})
	g.Go(func() error {
		return c.getJSON(gCtx, "/air_pollution", coord, nil, &pollution)
	})
	if err := g.Wait(); err != nil {
		return models.EnvironmentalReading{}, err
	}

	if len(pollution.List) == 0 {
		return models.EnvironmentalReading{}, fmt.Errorf("air pollution response empty")
	}

	reading := models.EnvironmentalReading{
		Temperature: weather.Main.Temp,
		Humidity:    weather.Main.Humidity,
		AQI:         pollution.List[0].Main.AQI,
	}
	if len(weather.Weather) > 0 {
		reading.Description = weather.Weather[0].Description
	}
	return reading, nil
}

// Ping issues a minimal weather request. Used by the health monitor.
func (c *OpenWeatherClient) Ping(ctx context.Context) error {
	if !c.Configured() {
		return ErrNoCredential
	}
	var resp weatherResponse
	return c.getJSON(ctx, "/weather", models.Coordinate{Latitude: -15.7942, Longitude: -47.8822}, nil, &resp)
}

func (c *OpenWeatherClient) getJSON(ctx context.Context, path string, coord models.Coordinate, extra url.Values, v interface{}) error {
	start := time.Now()

	base, err := url.Parse(c.apiURL + path)
	if err != nil {
		return fmt.Errorf("invalid weather URL: %w", err)
	}
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", coord.Latitude))
	params.Set("lon", fmt.Sprintf("%f", coord.Longitude))
	params.Set("appid", c.apiKey)
	for k, vals := range extra {
		for _, val := range vals {
			params.Add(k, val)
		}
	}
	base.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	duration := time.Since(start).Seconds()
	observability.ProviderCallDuration.WithLabelValues(models.ProviderOpenWeather).Observe(duration)
	if err != nil {
		observability.ProviderCallsTotal.WithLabelValues(models.ProviderOpenWeather, "error").Inc()
		return fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observability.ProviderCallsTotal.WithLabelValues(models.ProviderOpenWeather, "error").Inc()
		return fmt.Errorf("weather provider: HTTP %d", resp.StatusCode)
	}
	observability.ProviderCallsTotal.WithLabelValues(models.ProviderOpenWeather, "success").Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parse weather response: %w", err)
	}
	return nil
}
