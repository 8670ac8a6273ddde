package alert

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"skyhealth/internal/anomaly"
	"skyhealth/internal/weather"
)

var heatMessages = map[Severity]string{
	SeverityMedium:  "Take precautions to stay cool.",
	SeverityHigh:    "Heat wave conditions detected. Stay hydrated and avoid prolonged sun exposure.",
	SeverityExtreme: "Extreme heat wave! Stay indoors and seek air conditioning.",
}

var heatRecommendations = map[Severity][]string{
	SeverityMedium: {
		"Drink plenty of water",
		"Wear light-colored, loose clothing",
		"Limit outdoor activities during peak hours",
	},
	SeverityHigh: {
		"Stay hydrated with water and electrolytes",
		"Remain indoors during peak heat hours",
		"Wear protective clothing and sunscreen",
		"Check on elderly and vulnerable individuals",
	},
	SeverityExtreme: {
		"Stay indoors with air conditioning",
		"Drink water regularly, even if not thirsty",
		"Avoid alcohol and caffeine",
		"Never leave anyone in a parked vehicle",
		"Seek immediate medical attention for heat exhaustion symptoms",
	},
}

var coldMessages = map[Severity]string{
	SeverityMedium:  "Dress warmly and be cautious of cold weather.",
	SeverityHigh:    "Cold wave conditions detected. Take extra precautions against cold.",
	SeverityExtreme: "Extreme cold wave! Avoid prolonged outdoor exposure.",
}

var coldRecommendations = map[Severity][]string{
	SeverityMedium: {
		"Dress in layers",
		"Wear warm clothing and accessories",
		"Limit time outdoors",
	},
	SeverityHigh: {
		"Dress in multiple layers",
		"Cover exposed skin",
		"Keep homes adequately heated",
		"Check on elderly and vulnerable individuals",
	},
	SeverityExtreme: {
		"Avoid unnecessary outdoor exposure",
		"Dress in multiple warm layers",
		"Protect extremities from frostbite",
		"Ensure adequate home heating",
		"Seek immediate medical attention for hypothermia symptoms",
	},
}

var uvRecommendations = []string{
	"Apply SPF 30+ sunscreen",
	"Wear protective clothing",
	"Seek shade during peak hours (10 AM - 4 PM)",
	"Wear sunglasses and a wide-brimmed hat",
}

// ClassifyTemperature turns an anomalous temperature record into an
// alert. Returns nil for normal days.
func ClassifyTemperature(rec anomaly.Record, location string) *Alert {
	if rec.Classification == anomaly.ClassNormal {
		return nil
	}

	severity := Severity(rec.Severity)

	var alertType Type
	var title, message string
	var recommendations []string
	switch rec.Classification {
	case anomaly.ClassHeatWave:
		alertType = TypeHeatWave
		title = fmt.Sprintf("Heat Wave Alert - %s", location)
		message = fmt.Sprintf("Temperature %.0f°C (+%.1f°C above normal). %s", rec.Observed, rec.Deviation, heatMessages[severity])
		recommendations = heatRecommendations[severity]
	case anomaly.ClassColdWave:
		alertType = TypeColdWave
		title = fmt.Sprintf("Cold Wave Alert - %s", location)
		message = fmt.Sprintf("Temperature %.0f°C (%.1f°C below normal). %s", rec.Observed, -rec.Deviation, coldMessages[severity])
		recommendations = coldRecommendations[severity]
	default:
		return nil
	}

	return &Alert{
		ID:              uuid.New().String(),
		Type:            alertType,
		Severity:        severity,
		Title:           title,
		Message:         message,
		Location:        location,
		Timestamp:       rec.Date,
		IsActive:        true,
		Recommendations: recommendations,
	}
}

// ClassifyAirQuality turns an air pollution reading into an alert.
// Returns nil when the air is acceptable (tier 2 or better).
func ClassifyAirQuality(reading *weather.AirQualityReading, location string) *Alert {
	if reading == nil || reading.Tier <= 2 {
		return nil
	}

	severity := SeverityMedium
	if reading.Tier >= 4 {
		severity = SeverityHigh
	}

	advice := ""
	if len(reading.Recommendations) > 0 {
		advice = " " + reading.Recommendations[0]
	}

	return &Alert{
		ID:              uuid.New().String(),
		Type:            TypePoorAirQuality,
		Severity:        severity,
		Title:           fmt.Sprintf("Poor Air Quality Alert - %s", location),
		Message:         fmt.Sprintf("Air quality is %s (AQI: %d).%s", strings.ToLower(reading.Label), reading.Tier, advice),
		Location:        location,
		Timestamp:       time.Now(),
		IsActive:        true,
		Recommendations: reading.Recommendations,
	}
}

// ClassifyUV turns a UV index into an alert. Returns nil below 8.
func ClassifyUV(uvIndex float64, location string) *Alert {
	if uvIndex < 8 {
		return nil
	}

	severity := SeverityHigh
	if uvIndex >= 11 {
		severity = SeverityExtreme
	}

	return &Alert{
		ID:              uuid.New().String(),
		Type:            TypeHighUV,
		Severity:        severity,
		Title:           fmt.Sprintf("High UV Index Alert - %s", location),
		Message:         fmt.Sprintf("UV Index is very high (%.0f). Limit sun exposure and use sunscreen.", uvIndex),
		Location:        location,
		Timestamp:       time.Now(),
		IsActive:        true,
		Recommendations: uvRecommendations,
	}
}
