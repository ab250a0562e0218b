// Package synthetic produces all six module scores from a city base profile,
// geography-derived factors, and bounded randomness. It is the terminal
// fallback of the scoring pipeline and has no external dependencies.
package synthetic

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/urbsense/location-insight-service/internal/catalog"
	"github.com/urbsense/location-insight-service/internal/models"
)

const neutralBase = 7.0

// Engine computes synthetic module scores. The random source is seedable so
// tests can pin it; a zero seed selects time-based entropy.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine creates an Engine. seed == 0 seeds from the clock.
func NewEngine(seed int64) *Engine {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{rng: rand.New(rand.NewSource(seed))}
}

// geoFactors are ad hoc numeric proxies derived from the raw coordinate. They
// are heuristics, not geodesic computations, and are kept stable for
// behavioral parity with the reference tables tuned against them.
type geoFactors struct {
	centerDistance   float64 // |lat+lng| mod 0.1
	coastalProximity float64 // 1 - |lng+40|/40, clamped to [0,1]
	altitude         float64 // |lat| * 100, reserved for future formulas
}

func deriveFactors(c models.Coordinate) geoFactors {
	coastal := 1 - math.Abs(c.Longitude+40)/40
	if coastal < 0 {
		coastal = 0
	}
	if coastal > 1 {
		coastal = 1
	}
	return geoFactors{
		centerDistance:   math.Mod(math.Abs(c.Latitude+c.Longitude), 0.1),
		coastalProximity: coastal,
		altitude:         math.Abs(c.Latitude) * 100,
	}
}

// ScoreAll computes all six module scores for a location. Scores carry bounded
// jitter, so repeated calls differ within the jitter band; every score is
// clamped to [1,10].
func (e *Engine) ScoreAll(loc models.LocationData) map[models.Module]models.ModuleScore {
	base := map[models.Module]float64{}
	var profile models.CityProfile
	if p, ok := catalog.Profile(loc.City); ok {
		profile = p
		for _, m := range models.Modules {
			base[m] = p.BaseScores[m]
		}
	} else {
		for _, m := range models.Modules {
			base[m] = neutralBase
		}
	}

	f := deriveFactors(loc.Coordinate)

	e.mu.Lock()
	defer e.mu.Unlock()

	boost := func(tag string, amount float64) float64 {
		if profile.HasTag(tag) {
			return amount
		}
		return 0
	}

	residential := e.score(base[models.ModuleResidential]+
		f.coastalProximity*0.3-f.centerDistance*2.0+boost("planejada", 0.5), 0.5)
	hospitality := e.score(base[models.ModuleHospitality]+
		f.coastalProximity*0.5-f.centerDistance*1.5+boost("turística", 0.8), 0.6)
	investment := e.score(base[models.ModuleInvestment]+
		(residential-7)*0.15+(hospitality-7)*0.1+f.coastalProximity*0.2, 0.5)
	environmental := e.score(base[models.ModuleEnvironmental]-
		f.centerDistance*1.0+boost("verde", 1.0), 0.75)
	security := e.score(base[models.ModuleSecurity]+
		boost("planejada", 1.0)-f.centerDistance*2.0, 0.5)
	infrastructure := e.score(base[models.ModuleInfrastructure]+
		f.coastalProximity*0.2+boost("planejada", 1.0), 0.6)

	details := func(module models.Module, score float64) map[string]interface{} {
		return map[string]interface{}{
			models.DetailRealData: false,
			"baseScore":           base[module],
			"centerDistance":      f.centerDistance,
			"coastalProximity":    f.coastalProximity,
		}
	}

	return map[models.Module]models.ModuleScore{
		models.ModuleResidential: {
			Score:   residential,
			Factors: []string{"Housing stock quality", "Neighborhood amenities", "Urban center accessibility"},
			Trend:   e.trend(0.5, 0.3),
			Details: details(models.ModuleResidential, residential),
		},
		models.ModuleHospitality: {
			Score:   hospitality,
			Factors: []string{"Hotel and lodging density", "Tourist attractiveness", "Dining and leisure offer"},
			Trend:   e.trend(0.6, 0.25),
			Details: details(models.ModuleHospitality, hospitality),
		},
		models.ModuleInvestment: {
			Score:   investment,
			Factors: []string{"Property appreciation outlook", "Rental demand", "Commercial activity"},
			Trend:   e.trend(0.7, 0.2),
			Details: details(models.ModuleInvestment, investment),
		},
		models.ModuleEnvironmental: {
			Score:   environmental,
			Factors: []string{"Green area coverage", "Air quality estimate", "Noise exposure"},
			Trend:   e.trend(0.4, 0.4),
			Details: details(models.ModuleEnvironmental, environmental),
		},
		models.ModuleSecurity: {
			Score:   security,
			Factors: []string{"Crime incidence estimate", "Street lighting", "Policing presence"},
			Trend:   e.trend(0.2, 0.5),
			Details: details(models.ModuleSecurity, security),
		},
		models.ModuleInfrastructure: {
			Score:   infrastructure,
			Factors: []string{"Transit connectivity", "Sanitation coverage", "Road network condition"},
			Trend:   e.trend(0.5, 0.3),
			Details: details(models.ModuleInfrastructure, infrastructure),
		},
	}
}

// score applies uniform jitter in [-jitter, +jitter] and clamps to [1,10].
// Callers must hold e.mu.
func (e *Engine) score(raw, jitter float64) float64 {
	s := raw + (e.rng.Float64()*2-1)*jitter
	if s < 1 {
		s = 1
	}
	if s > 10 {
		s = 10
	}
	return math.Round(s*10) / 10
}

// trend draws a biased trend: up with pUp, stable with pStable, down with the
// remainder. Callers must hold e.mu.
func (e *Engine) trend(pUp, pStable float64) models.Trend {
	r := e.rng.Float64()
	switch {
	case r < pUp:
		return models.TrendUp
	case r < pUp+pStable:
		return models.TrendStable
	default:
		return models.TrendDown
	}
}
