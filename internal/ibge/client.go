// Package ibge is a client for the IBGE public APIs: the localities directory
// used for municipality lookup and the aggregate-indicator API used for
// population, density, and development-index figures. No credential is needed.
package ibge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/urbsense/location-insight-service/internal/models"
	"github.com/urbsense/location-insight-service/internal/observability"
)

// ErrNotFound is returned when no municipality matches a lookup.
var ErrNotFound = errors.New("municipality not found")

// Validated aggregate/variable ids for the indicators the service consumes.
const (
	populationAggregate = 6579
	populationVariable  = 9324
	densityAggregate    = 1301
	densityVariable     = 616
	devIndexAggregate   = 1384
	devIndexVariable    = 6272

	densityPeriod  = "2010"
	devIndexPeriod = "2010"
)

// Client calls the IBGE localities and aggregates APIs.
type Client struct {
	localitiesURL string
	aggregatesURL string
	client        *http.Client
}

// NewClient creates an IBGE client. URLs point at the localities and
// aggregates API roots.
func NewClient(localitiesURL, aggregatesURL string, timeout time.Duration) *Client {
	return &Client{
		localitiesURL: strings.TrimRight(localitiesURL, "/"),
		aggregatesURL: strings.TrimRight(aggregatesURL, "/"),
		client:        &http.Client{Timeout: timeout},
	}
}

// Municipality is one entry of the localities directory.
type Municipality struct {
	ID    int
	Name  string
	State string
}

type municipalityResponse struct {
	ID           int    `json:"id"`
	Nome         string `json:"nome"`
	Microrregiao struct {
		Mesorregiao struct {
			UF struct {
				Sigla string `json:"sigla"`
			} `json:"UF"`
		} `json:"mesorregiao"`
	} `json:"microrregiao"`
}

// SearchMunicipalities returns municipalities whose name contains the query
// (case-insensitive), up to limit. The directory carries no geometry; callers
// join coordinates from their own reference data.
func (c *Client) SearchMunicipalities(ctx context.Context, name string, limit int) ([]Municipality, error) {
	body, err := c.get(ctx, c.localitiesURL+"/municipios")
	if err != nil {
		return nil, err
	}

	var all []municipalityResponse
	if err := json.Unmarshal(body, &all); err != nil {
		return nil, fmt.Errorf("parse municipalities: %w", err)
	}

	q := strings.ToLower(strings.TrimSpace(name))
	var out []Municipality
	for _, m := range all {
		if len(out) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(m.Nome), q) {
			out = append(out, Municipality{
				ID:    m.ID,
				Name:  m.Nome,
				State: m.Microrregiao.Mesorregiao.UF.Sigla,
			})
		}
	}
	return out, nil
}

// FindMunicipality returns the first municipality whose name matches exactly
// (case-insensitive), or the first substring match when there is no exact one.
func (c *Client) FindMunicipality(ctx context.Context, name string) (Municipality, error) {
	matches, err := c.SearchMunicipalities(ctx, name, 10)
	if err != nil {
		return Municipality{}, err
	}
	if len(matches) == 0 {
		return Municipality{}, ErrNotFound
	}
	want := strings.ToLower(strings.TrimSpace(name))
	for _, m := range matches {
		if strings.ToLower(m.Name) == want {
			return m, nil
		}
	}
	return matches[0], nil
}

// Population returns the latest resident-population estimate for a municipality.
func (c *Client) Population(ctx context.Context, municipalityID int) (int, error) {
	raw, err := c.indicator(ctx, populationAggregate, "-1", populationVariable, municipalityID)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse population %q: %w", raw, err)
	}
	return n, nil
}

// Density returns the demographic density (inhabitants per km2) for a municipality.
func (c *Client) Density(ctx context.Context, municipalityID int) (float64, error) {
	raw, err := c.indicator(ctx, densityAggregate, densityPeriod, densityVariable, municipalityID)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse density %q: %w", raw, err)
	}
	return f, nil
}

// DevelopmentIndex returns the municipal human-development index (0-1 scale).
func (c *Client) DevelopmentIndex(ctx context.Context, municipalityID int) (float64, error) {
	raw, err := c.indicator(ctx, devIndexAggregate, devIndexPeriod, devIndexVariable, municipalityID)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse development index %q: %w", raw, err)
	}
	return f, nil
}

// Ping issues a minimal localities request. Used by the health monitor.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, c.localitiesURL+"/estados/35")
	return err
}

type aggregateResponse []struct {
	Resultados []struct {
		Series []struct {
			Serie map[string]string `json:"serie"`
		} `json:"series"`
	} `json:"resultados"`
}

// indicator fetches one aggregate variable for one municipality and returns
// the most recent value in the series. IBGE encodes missing data as "..."
// or "-", both treated as not found.
func (c *Client) indicator(ctx context.Context, aggregate int, period string, variable, municipalityID int) (string, error) {
	url := fmt.Sprintf("%s/%d/periodos/%s/variaveis/%d?localidades=N6[%d]",
		c.aggregatesURL, aggregate, period, variable, municipalityID)

	body, err := c.get(ctx, url)
	if err != nil {
		return "", err
	}

	var resp aggregateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parse aggregate response: %w", err)
	}

	for _, entry := range resp {
		for _, res := range entry.Resultados {
			for _, s := range res.Series {
				latestYear := ""
				latestVal := ""
				for year, val := range s.Serie {
					if val == "..." || val == "-" || val == "" {
						continue
					}
					if year > latestYear {
						latestYear = year
						latestVal = val
					}
				}
				if latestVal != "" {
					return latestVal, nil
				}
			}
		}
	}
	return "", ErrNotFound
}

// get performs a GET and returns the body for 2xx responses, recording
// provider call metrics.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	duration := time.Since(start).Seconds()
	if err != nil {
		observability.ProviderCallsTotal.WithLabelValues(models.ProviderIBGE, "error").Inc()
		observability.ProviderCallDuration.WithLabelValues(models.ProviderIBGE).Observe(duration)
		return nil, fmt.Errorf("ibge request: %w", err)
	}
	defer resp.Body.Close()

	observability.ProviderCallDuration.WithLabelValues(models.ProviderIBGE).Observe(duration)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observability.ProviderCallsTotal.WithLabelValues(models.ProviderIBGE, "error").Inc()
		return nil, fmt.Errorf("ibge: HTTP %d", resp.StatusCode)
	}
	observability.ProviderCallsTotal.WithLabelValues(models.ProviderIBGE, "success").Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}
