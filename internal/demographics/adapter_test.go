package demographics

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/urbsense/location-insight-service/internal/ibge"
	"github.com/urbsense/location-insight-service/internal/models"
)

type stubStats struct {
	muni       ibge.Municipality
	muniErr    error
	population int
	density    float64
	devIndex   float64
	indErr     error
}

func (s stubStats) FindMunicipality(ctx context.Context, name string) (ibge.Municipality, error) {
	return s.muni, s.muniErr
}
func (s stubStats) Population(ctx context.Context, id int) (int, error) {
	return s.population, s.indErr
}
func (s stubStats) Density(ctx context.Context, id int) (float64, error) {
	return s.density, s.indErr
}
func (s stubStats) DevelopmentIndex(ctx context.Context, id int) (float64, error) {
	return s.devIndex, s.indErr
}

func healthyStats() models.ProviderHealth {
	return models.ProviderHealth{
		Providers: map[string]bool{models.ProviderIBGE: true},
		CheckedAt: time.Now(),
	}
}

func unhealthyStats() models.ProviderHealth {
	return models.ProviderHealth{
		Providers: map[string]bool{models.ProviderIBGE: false},
		CheckedAt: time.Now(),
	}
}

func TestScore_LivePath(t *testing.T) {
	a := NewAdapter(stubStats{
		muni:       ibge.Municipality{ID: 3550308, Name: "São Paulo", State: "SP"},
		population: 12396372,
		density:    7398.26,
		devIndex:   0.805,
	}, zap.NewNop())

	got := a.Score(context.Background(), "São Paulo", healthyStats())

	// base 5.0 + dev index >= 0.8 (+2.5) + density > 5000 (+1.0)
	if got.Score != 8.5 {
		t.Errorf("Score = %v, want 8.5", got.Score)
	}
	if !got.RealData() {
		t.Error("RealData() = false, want true on live path")
	}
	if got.Trend != models.TrendUp {
		t.Errorf("Trend = %v, want up for dev index 0.805", got.Trend)
	}
}

func TestScore_DevIndexBands(t *testing.T) {
	tests := []struct {
		devIndex float64
		want     float64 // base 5.0 + band, density neutral
	}{
		{0.85, 7.5},
		{0.72, 6.5},
		{0.65, 5.5},
		{0.50, 4.5},
	}
	for _, tc := range tests {
		a := NewAdapter(stubStats{
			muni:     ibge.Municipality{ID: 1, Name: "Cidade"},
			density:  1000,
			devIndex: tc.devIndex,
		}, zap.NewNop())
		got := a.Score(context.Background(), "Cidade", healthyStats())
		if got.Score != tc.want {
			t.Errorf("dev index %v: Score = %v, want %v", tc.devIndex, got.Score, tc.want)
		}
	}
}

func TestScore_LowDensityPenalty(t *testing.T) {
	a := NewAdapter(stubStats{
		muni:     ibge.Municipality{ID: 1, Name: "Interior"},
		density:  50,
		devIndex: 0.65,
	}, zap.NewNop())
	got := a.Score(context.Background(), "Interior", healthyStats())
	// base 5.0 + 0.5 (dev index) - 0.5 (sparse)
	if got.Score != 5.0 {
		t.Errorf("Score = %v, want 5.0", got.Score)
	}
}

func TestScore_ProviderFailureFallsBackToCatalog(t *testing.T) {
	a := NewAdapter(stubStats{muniErr: errors.New("timeout")}, zap.NewNop())

	got := a.Score(context.Background(), "Curitiba", healthyStats())
	if got.RealData() {
		t.Error("RealData() = true, want false on catalog fallback")
	}
	// Curitiba reference: dev index 0.823 (+2.5), density ~4478 (neutral).
	if got.Score != 7.5 {
		t.Errorf("Score = %v, want 7.5 from catalog record", got.Score)
	}
}

func TestScore_UnhealthyProviderSkipsLivePath(t *testing.T) {
	a := NewAdapter(stubStats{
		muni:     ibge.Municipality{ID: 1, Name: "Curitiba"},
		devIndex: 0.9,
	}, zap.NewNop())

	got := a.Score(context.Background(), "Curitiba", unhealthyStats())
	if got.RealData() {
		t.Error("RealData() = true, want false when provider unhealthy")
	}
}

func TestScore_UnknownCityUsesGenericEstimate(t *testing.T) {
	a := NewAdapter(stubStats{muniErr: errors.New("down")}, zap.NewNop())

	got := a.Score(context.Background(), "Vila Inexistente", healthyStats())
	if got.RealData() {
		t.Error("RealData() = true, want false for generic estimate")
	}
	if got.Details["population"] != 500000 {
		t.Errorf("population = %v, want generic 500000", got.Details["population"])
	}
	if got.Details["developmentIndex"] != 0.750 {
		t.Errorf("developmentIndex = %v, want generic 0.750", got.Details["developmentIndex"])
	}
	// base 5.0 + 1.5 (dev index 0.750), density 1667 neutral
	if got.Score != 6.5 {
		t.Errorf("Score = %v, want 6.5", got.Score)
	}
}

func TestScore_SourceAttribution(t *testing.T) {
	live := NewAdapter(stubStats{
		muni: ibge.Municipality{ID: 1, Name: "Cidade"}, devIndex: 0.7, density: 500,
	}, zap.NewNop()).Score(context.Background(), "Cidade", healthyStats())
	fallback := NewAdapter(stubStats{muniErr: errors.New("down")}, zap.NewNop()).
		Score(context.Background(), "Cidade", healthyStats())

	if !containsFactor(live, "official") {
		t.Errorf("live factors = %v, want official source attribution", live.Factors)
	}
	if !containsFactor(fallback, "estimated") {
		t.Errorf("fallback factors = %v, want estimated source attribution", fallback.Factors)
	}
}

func containsFactor(s models.ModuleScore, substr string) bool {
	for _, f := range s.Factors {
		if strings.Contains(f, substr) {
			return true
		}
	}
	return false
}
