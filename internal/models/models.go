package models

import "time"

// Module identifies one of the six scored urban-quality dimensions.
type Module string

const (
	ModuleResidential    Module = "residential"
	ModuleHospitality    Module = "hospitality"
	ModuleInvestment     Module = "investment"
	ModuleEnvironmental  Module = "environmental"
	ModuleSecurity       Module = "security"
	ModuleInfrastructure Module = "infrastructure"
)

// Modules lists the six dimensions in display order. Every LocationAnalysis
// carries a score for each of them.
var Modules = []Module{
	ModuleResidential,
	ModuleHospitality,
	ModuleInvestment,
	ModuleEnvironmental,
	ModuleSecurity,
	ModuleInfrastructure,
}

// Provider identifiers used by the health monitor and the adapters.
const (
	ProviderPlaces      = "places"
	ProviderIBGE        = "ibge"
	ProviderOpenWeather = "openweather"
)

// Trend indicates the short-term direction of a module score.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// Coordinate is a WGS84 point.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinate is within latitude [-90,90] and
// longitude [-180,180].
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// LocationData is a resolved place. Produced by the geocoding resolver or by a
// direct pin-drop; treated as immutable once produced.
type LocationData struct {
	Coordinate Coordinate `json:"coordinate"`
	Address    string     `json:"address"`
	City       string     `json:"city,omitempty"`
	State      string     `json:"state,omitempty"`
	Country    string     `json:"country,omitempty"`
}

// DetailRealData is the details key marking provenance: true when the score was
// computed from a live provider response, false for a local estimate.
const DetailRealData = "realData"

// ModuleScore is the score of one dimension plus the signals behind it.
type ModuleScore struct {
	Score   float64                `json:"score"`
	Factors []string               `json:"factors"`
	Trend   Trend                  `json:"trend"`
	Details map[string]interface{} `json:"details"`
}

// RealData reports whether the score was derived from live provider data.
func (s ModuleScore) RealData() bool {
	v, ok := s.Details[DetailRealData]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// LocationAnalysis is the composite result for one analysis request. Created
// once per request and never mutated afterwards.
type LocationAnalysis struct {
	Location        LocationData           `json:"location"`
	OverallScore    float64                `json:"overallScore"`
	Modules         map[Module]ModuleScore `json:"modules"`
	Insights        []string               `json:"insights"`
	Recommendations []string               `json:"recommendations"`
	LastUpdated     time.Time              `json:"lastUpdated"`
}

// ProviderHealth maps provider id to reachability, stamped with the probe time.
type ProviderHealth struct {
	Providers map[string]bool `json:"providers"`
	CheckedAt time.Time       `json:"checkedAt"`
}

// Healthy reports whether the given provider was reachable at the last probe.
// Unknown providers are reported unhealthy.
func (h ProviderHealth) Healthy(id string) bool {
	return h.Providers[id]
}

// CityMetrics holds reference figures attached to a city profile.
type CityMetrics struct {
	AvgPropertyPrice float64 `json:"avgPropertyPrice"` // BRL per square meter
	CrimeIndex       float64 `json:"crimeIndex"`       // 0 (safest) to 100
	AirQualityIndex  int     `json:"airQualityIndex"`  // 1 (good) to 5 (very poor)
}

// CityProfile is the static reference record for a known city: baseline module
// scores, qualitative characteristic tags, and reference metrics. Loaded at
// process start, never mutated.
type CityProfile struct {
	BaseScores map[Module]float64
	Tags       []string
	Metrics    CityMetrics
}

// HasTag reports whether the profile carries the given characteristic tag.
func (p CityProfile) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// DemographicData holds population figures for a municipality.
type DemographicData struct {
	City             string  `json:"city"`
	Population       int     `json:"population"`
	AreaKm2          float64 `json:"areaKm2"`
	Density          float64 `json:"density"` // inhabitants per km2
	DevelopmentIndex float64 `json:"developmentIndex"`
}

// EnvironmentalReading holds weather and air-quality signals for a coordinate.
type EnvironmentalReading struct {
	Temperature float64 `json:"temperature"` // Celsius
	Humidity    int     `json:"humidity"`    // percent
	Description string  `json:"description"`
	AQI         int     `json:"aqi"` // 1=good .. 5=very poor
}
