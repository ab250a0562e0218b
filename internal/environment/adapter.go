// Package environment scores the environmental dimension of a location,
// preferring live weather and air-quality readings and falling back to a
// geography-based estimate when the provider is unconfigured or unreachable.
package environment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/urbsense/location-insight-service/internal/catalog"
	"github.com/urbsense/location-insight-service/internal/models"
	"github.com/urbsense/location-insight-service/internal/observability"
)

const baseScore = 7.0

// defaultAQI is assumed for points outside any catalog metro proximity band.
const defaultAQI = 2

// WeatherSource is the slice of the weather client the adapter needs.
type WeatherSource interface {
	Configured() bool
	Reading(ctx context.Context, coord models.Coordinate) (models.EnvironmentalReading, error)
}

// Adapter computes the environmental module score.
type Adapter struct {
	weather WeatherSource
	logger  *zap.Logger
}

// NewAdapter creates the environmental adapter.
func NewAdapter(weather WeatherSource, logger *zap.Logger) *Adapter {
	return &Adapter{weather: weather, logger: logger}
}

// Score computes the environmental score for a location. When the weather
// provider is configured and reported healthy it uses live readings; any
// failure on that path degrades to the estimate. Never returns an error.
func (a *Adapter) Score(ctx context.Context, loc models.LocationData, status models.ProviderHealth) models.ModuleScore {
	if a.weather.Configured() && status.Healthy(models.ProviderOpenWeather) {
		reading, err := a.weather.Reading(ctx, loc.Coordinate)
		if err == nil {
			return scoreFromReading(reading, true)
		}
		a.logger.Warn("live environmental reading failed, using estimate",
			zap.String("city", loc.City),
			zap.Error(err))
	}

	observability.FallbackActivationsTotal.WithLabelValues(string(models.ModuleEnvironmental)).Inc()
	return scoreFromReading(estimateReading(loc.Coordinate), false)
}

// estimateReading derives plausible climate figures from latitude bands and
// the air quality preset of the nearest catalog metropolis.
func estimateReading(coord models.Coordinate) models.EnvironmentalReading {
	reading := models.EnvironmentalReading{Description: "estimativa local"}
	switch {
	case coord.Latitude <= -25:
		reading.Temperature = 18
		reading.Humidity = 75
	case coord.Latitude >= -10:
		reading.Temperature = 31
		reading.Humidity = 45
	case coord.Latitude >= -15:
		reading.Temperature = 24
		reading.Humidity = 60
	default:
		reading.Temperature = 22
		reading.Humidity = 65
	}

	if aqi, ok := catalog.MetroAQI(coord); ok {
		reading.AQI = aqi
	} else {
		reading.AQI = defaultAQI
	}
	return reading
}

// scoreFromReading turns a reading into a module score. The same banding
// applies to live and estimated readings; only the attribution differs.
func scoreFromReading(reading models.EnvironmentalReading, live bool) models.ModuleScore {
	score := baseScore

	switch {
	case reading.AQI <= 1:
		score += 1.5
	case reading.AQI == 2:
		score += 0.5
	case reading.AQI == 3:
		score -= 0.5
	case reading.AQI == 4:
		score -= 1.5
	default:
		score -= 2.5
	}

	if reading.Temperature >= 18 && reading.Temperature <= 28 {
		score += 0.5
	} else if reading.Temperature < 10 || reading.Temperature > 35 {
		score -= 0.5
	}

	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}

	source := "estimated from regional climate data"
	if live {
		source = "live weather and air quality readings"
	}

	factors := []string{
		fmt.Sprintf("Air quality index: %d (%s)", reading.AQI, aqiLabel(reading.AQI)),
		fmt.Sprintf("Temperature: %.1f°C, humidity %d%%", reading.Temperature, reading.Humidity),
		"Source: " + source,
	}

	trend := models.TrendStable
	if reading.AQI <= 1 {
		trend = models.TrendUp
	} else if reading.AQI >= 4 {
		trend = models.TrendDown
	}

	return models.ModuleScore{
		Score:   score,
		Factors: factors,
		Trend:   trend,
		Details: map[string]interface{}{
			models.DetailRealData: live,
			"temperature":         reading.Temperature,
			"humidity":            reading.Humidity,
			"airQualityIndex":     reading.AQI,
			"description":         reading.Description,
		},
	}
}

func aqiLabel(aqi int) string {
	switch {
	case aqi <= 1:
		return "good"
	case aqi == 2:
		return "fair"
	case aqi == 3:
		return "moderate"
	case aqi == 4:
		return "poor"
	default:
		return "very poor"
	}
}
