package weather

import (
	"context"
	"time"
)

// Source is the subset of provider reads the alert pipeline consumes.
// Each call may fail independently with a network-style error.
type Source interface {
	Current(ctx context.Context, lat, lon float64) (*CurrentConditions, error)
	AirQuality(ctx context.Context, lat, lon float64) (*AirQualityReading, error)
	UVIndex(ctx context.Context, lat, lon float64) (float64, error)
}

// CurrentConditions holds the current weather for a location
type CurrentConditions struct {
	Location     string    `json:"location"`
	Temperature  float64   `json:"temperature"`
	FeelsLike    float64   `json:"feels_like"`
	Description  string    `json:"description"`
	Icon         string    `json:"icon"`
	Humidity     float64   `json:"humidity"`
	WindSpeed    float64   `json:"wind_speed"`
	Pressure     float64   `json:"pressure"`
	VisibilityKm float64   `json:"visibility_km"`
	CloudCover   float64   `json:"cloud_cover"`
	Lat          float64   `json:"lat"`
	Lon          float64   `json:"lon"`
	Sunrise      time.Time `json:"sunrise"`
	Sunset       time.Time `json:"sunset"`
}

// AirQualityReading holds an air pollution measurement.
// Tier is the provider's 1..5 air quality index category (1 = best).
type AirQualityReading struct {
	Tier            int      `json:"tier"`
	PM25            float64  `json:"pm25"`
	PM10            float64  `json:"pm10"`
	O3              float64  `json:"o3"`
	NO2             float64  `json:"no2"`
	SO2             float64  `json:"so2"`
	CO              float64  `json:"co"`
	Label           string   `json:"label"`
	Recommendations []string `json:"recommendations"`
}

// DailyForecast is one day of the aggregated forecast
type DailyForecast struct {
	Date          string  `json:"date"`
	MinTemp       float64 `json:"min_temp"`
	MaxTemp       float64 `json:"max_temp"`
	Description   string  `json:"description"`
	Icon          string  `json:"icon"`
	Precipitation float64 `json:"precipitation"`
}

// Place is a geocoding search result
type Place struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// QualityLabel returns the qualitative label for an AQI tier
func QualityLabel(tier int) string {
	switch tier {
	case 1:
		return "Good"
	case 2:
		return "Fair"
	case 3:
		return "Moderate"
	case 4:
		return "Poor"
	case 5:
		return "Very Poor"
	default:
		return "Good"
	}
}

// QualityRecommendations returns the advisory strings for an AQI tier
func QualityRecommendations(tier int) []string {
	switch {
	case tier <= 2:
		return []string{"Air quality is good. Perfect for outdoor activities!"}
	case tier == 3:
		return []string{"Air quality is moderate. Sensitive people should limit outdoor exercise."}
	case tier == 4:
		return []string{
			"Air quality is poor. Limit outdoor activities.",
			"Consider wearing a mask outdoors.",
		}
	default:
		return []string{
			"Air quality is very poor. Avoid outdoor activities.",
			"Stay indoors and use air purifiers.",
			"Wear N95 masks if you must go outside.",
		}
	}
}
