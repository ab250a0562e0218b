// Package catalog holds the static reference tables for known Brazilian cities:
// resolved coordinates for the geocoding fallback, baseline module scores and
// characteristic tags for the synthetic engine, and demographic reference data
// for the demographic adapter fallback. All tables are read-only after init.
package catalog

import (
	"strings"

	"github.com/urbsense/location-insight-service/internal/models"
)

// Entry bundles everything the engine knows about one catalog city.
type Entry struct {
	Location     models.LocationData
	Profile      models.CityProfile
	Demographics models.DemographicData
}

// entries is ordered by population; the head of the list doubles as the
// default result set for empty or very short queries.
var entries = []Entry{
	city("São Paulo", "SP", -23.5505, -46.6333,
		scores(8.5, 8.0, 9.0, 6.0, 6.0, 8.5),
		[]string{"metrópole", "financeira", "cultural"},
		models.CityMetrics{AvgPropertyPrice: 9500, CrimeIndex: 68, AirQualityIndex: 3},
		12325000, 1521, 0.805),
	city("Rio de Janeiro", "RJ", -22.9068, -43.1729,
		scores(7.5, 9.0, 8.0, 7.0, 5.5, 7.5),
		[]string{"litorânea", "turística"},
		models.CityMetrics{AvgPropertyPrice: 9200, CrimeIndex: 72, AirQualityIndex: 3},
		6748000, 1200, 0.799),
	city("Brasília", "DF", -15.7942, -47.8822,
		scores(8.0, 7.0, 8.0, 7.5, 7.0, 9.0),
		[]string{"planejada", "administrativa"},
		models.CityMetrics{AvgPropertyPrice: 8800, CrimeIndex: 55, AirQualityIndex: 1},
		3055000, 5802, 0.824),
	city("Salvador", "BA", -12.9714, -38.5014,
		scores(7.0, 8.5, 7.0, 7.5, 5.5, 6.5),
		[]string{"litorânea", "turística", "histórica"},
		models.CityMetrics{AvgPropertyPrice: 5600, CrimeIndex: 75, AirQualityIndex: 2},
		2886000, 693, 0.759),
	city("Fortaleza", "CE", -3.7319, -38.5267,
		scores(7.0, 8.5, 7.5, 7.5, 5.5, 7.0),
		[]string{"litorânea", "turística"},
		models.CityMetrics{AvgPropertyPrice: 5900, CrimeIndex: 74, AirQualityIndex: 2},
		2686000, 313, 0.754),
	city("Belo Horizonte", "MG", -19.9167, -43.9345,
		scores(7.5, 7.5, 7.5, 7.0, 6.5, 8.0),
		[]string{"montanhosa", "gastronômica"},
		models.CityMetrics{AvgPropertyPrice: 6800, CrimeIndex: 62, AirQualityIndex: 2},
		2521000, 331, 0.810),
	city("Manaus", "AM", -3.1190, -60.0217,
		scores(6.5, 7.0, 6.5, 8.0, 5.5, 6.0),
		[]string{"amazônica", "industrial"},
		models.CityMetrics{AvgPropertyPrice: 4900, CrimeIndex: 70, AirQualityIndex: 2},
		2219000, 11401, 0.737),
	city("Curitiba", "PR", -25.4284, -49.2733,
		scores(8.5, 7.5, 8.0, 8.5, 7.5, 9.0),
		[]string{"planejada", "verde"},
		models.CityMetrics{AvgPropertyPrice: 7200, CrimeIndex: 48, AirQualityIndex: 1},
		1948000, 435, 0.823),
	city("Recife", "PE", -8.0476, -34.8770,
		scores(7.0, 8.0, 7.0, 7.0, 5.0, 6.5),
		[]string{"litorânea", "histórica"},
		models.CityMetrics{AvgPropertyPrice: 6100, CrimeIndex: 78, AirQualityIndex: 2},
		1653000, 218, 0.772),
	city("Porto Alegre", "RS", -30.0346, -51.2177,
		scores(7.5, 7.5, 7.5, 7.5, 6.0, 8.0),
		[]string{"cultural", "gastronômica"},
		models.CityMetrics{AvgPropertyPrice: 6500, CrimeIndex: 65, AirQualityIndex: 2},
		1488000, 496, 0.805),
}

// byCity indexes entries by lowercase city name.
var byCity = func() map[string]Entry {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		m[strings.ToLower(e.Location.City)] = e
	}
	return m
}()

func city(name, state string, lat, lng float64, base map[models.Module]float64, tags []string, metrics models.CityMetrics, population int, areaKm2, devIndex float64) Entry {
	density := 0.0
	if areaKm2 > 0 {
		density = float64(population) / areaKm2
	}
	return Entry{
		Location: models.LocationData{
			Coordinate: models.Coordinate{Latitude: lat, Longitude: lng},
			Address:    name + ", " + state + ", Brasil",
			City:       name,
			State:      state,
			Country:    "Brasil",
		},
		Profile: models.CityProfile{BaseScores: base, Tags: tags, Metrics: metrics},
		Demographics: models.DemographicData{
			City:             name,
			Population:       population,
			AreaKm2:          areaKm2,
			Density:          density,
			DevelopmentIndex: devIndex,
		},
	}
}

func scores(residential, hospitality, investment, environmental, security, infrastructure float64) map[models.Module]float64 {
	return map[models.Module]float64{
		models.ModuleResidential:    residential,
		models.ModuleHospitality:    hospitality,
		models.ModuleInvestment:     investment,
		models.ModuleEnvironmental:  environmental,
		models.ModuleSecurity:       security,
		models.ModuleInfrastructure: infrastructure,
	}
}

// Search returns catalog locations whose city, state, or address contains the
// query (case-insensitive), up to limit results.
func Search(query string, limit int) []models.LocationData {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []models.LocationData
	for _, e := range entries {
		if len(out) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(e.Location.City), q) ||
			strings.Contains(strings.ToLower(e.Location.State), q) ||
			strings.Contains(strings.ToLower(e.Location.Address), q) {
			out = append(out, e.Location)
		}
	}
	return out
}

// Defaults returns the fixed head of the catalog, used when the query is empty
// or too short to match on.
func Defaults(limit int) []models.LocationData {
	if limit > len(entries) {
		limit = len(entries)
	}
	out := make([]models.LocationData, 0, limit)
	for _, e := range entries[:limit] {
		out = append(out, e.Location)
	}
	return out
}

// Profile returns the base profile for a known city.
func Profile(cityName string) (models.CityProfile, bool) {
	e, ok := byCity[strings.ToLower(strings.TrimSpace(cityName))]
	return e.Profile, ok
}

// Demographics returns the static demographic record for a known city.
func Demographics(cityName string) (models.DemographicData, bool) {
	e, ok := byCity[strings.ToLower(strings.TrimSpace(cityName))]
	return e.Demographics, ok
}

// Coordinates returns the catalog coordinate for a known city. Used to enrich
// directory lookups that carry no geometry of their own.
func Coordinates(cityName string) (models.Coordinate, bool) {
	e, ok := byCity[strings.ToLower(strings.TrimSpace(cityName))]
	return e.Location.Coordinate, ok
}

// metroProximityDegrees is the Euclidean degree distance within which a point
// adopts the preset air quality of a catalog metropolis.
const metroProximityDegrees = 0.5

// Nearest reverse-geocodes a coordinate against the catalog: it returns the
// nearest known city when the point lies within its proximity band.
func Nearest(c models.Coordinate) (models.LocationData, bool) {
	bestDistSq := metroProximityDegrees * metroProximityDegrees
	var nearest models.LocationData
	found := false
	for _, e := range entries {
		dLat := c.Latitude - e.Location.Coordinate.Latitude
		dLng := c.Longitude - e.Location.Coordinate.Longitude
		distSq := dLat*dLat + dLng*dLng
		if distSq < bestDistSq {
			bestDistSq = distSq
			nearest = e.Location
			found = true
		}
	}
	return nearest, found
}

// MetroAQI returns the preset air-quality index of the nearest catalog
// metropolis when the coordinate lies within its proximity band.
func MetroAQI(c models.Coordinate) (int, bool) {
	bestDistSq := metroProximityDegrees * metroProximityDegrees
	aqi := 0
	found := false
	for _, e := range entries {
		dLat := c.Latitude - e.Location.Coordinate.Latitude
		dLng := c.Longitude - e.Location.Coordinate.Longitude
		distSq := dLat*dLat + dLng*dLng
		if distSq < bestDistSq {
			bestDistSq = distSq
			aqi = e.Profile.Metrics.AirQualityIndex
			found = true
		}
	}
	return aqi, found
}
