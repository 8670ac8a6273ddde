// Package alert turns weather readings into health advisories, stores
// them with daily deduplication, and decides which ones warrant a push.
package alert

import "time"

// Type identifies the hazard an alert warns about
type Type string

const (
	TypeHeatWave       Type = "heat_wave"
	TypeColdWave       Type = "cold_wave"
	TypePoorAirQuality Type = "poor_air_quality"
	TypeHighUV         Type = "high_uv"
	TypeSevereWeather  Type = "severe_weather"
)

// Severity of an alert
type Severity string

const (
	SeverityLow     Severity = "low"
	SeverityMedium  Severity = "medium"
	SeverityHigh    Severity = "high"
	SeverityExtreme Severity = "extreme"
)

// Alert is a single health advisory for a location
type Alert struct {
	ID              string    `json:"id"`
	Type            Type      `json:"type"`
	Severity        Severity  `json:"severity"`
	Title           string    `json:"title"`
	Message         string    `json:"message"`
	Location        string    `json:"location"`
	Timestamp       time.Time `json:"timestamp"`
	IsActive        bool      `json:"is_active"`
	Recommendations []string  `json:"recommendations"`
}

// Key identifies an alert for deduplication. Two alerts of the same
// type for the same location on the same calendar day are duplicates.
type Key struct {
	Type     Type
	Location string
	Day      string
}

// Key returns the alert's deduplication key
func (a *Alert) Key() Key {
	return Key{
		Type:     a.Type,
		Location: a.Location,
		Day:      a.Timestamp.Format("2006-01-02"),
	}
}

// Preferences controls which alert categories produce a push
// notification. AlertsEnabled is the global switch; when false no push
// goes out regardless of the per-category flags.
type Preferences struct {
	AlertsEnabled bool `json:"alerts_enabled"`
	HeatWave      bool `json:"heat_wave"`
	ColdWave      bool `json:"cold_wave"`
	AirQuality    bool `json:"air_quality"`
	UVIndex       bool `json:"uv_index"`
	SevereWeather bool `json:"severe_weather"`
}

// DefaultPreferences returns the defaults with every category enabled
func DefaultPreferences() Preferences {
	return Preferences{
		AlertsEnabled: true,
		HeatWave:      true,
		ColdWave:      true,
		AirQuality:    true,
		UVIndex:       true,
		SevereWeather: true,
	}
}

// EnabledFor reports whether a push should be sent for the given type
func (p Preferences) EnabledFor(t Type) bool {
	if !p.AlertsEnabled {
		return false
	}
	switch t {
	case TypeHeatWave:
		return p.HeatWave
	case TypeColdWave:
		return p.ColdWave
	case TypePoorAirQuality:
		return p.AirQuality
	case TypeHighUV:
		return p.UVIndex
	case TypeSevereWeather:
		return p.SevereWeather
	default:
		return false
	}
}
