package alert

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"skyhealth/internal/anomaly"
	"skyhealth/internal/weather"
)

// ErrAllSourcesUnavailable is returned when none of the weather axes
// could be fetched. Callers may retry.
var ErrAllSourcesUnavailable = errors.New("all weather sources unavailable")

// Location is a named coordinate pair to refresh
type Location struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Notifier schedules a push notification for delivery
type Notifier interface {
	Schedule(ctx context.Context, title, body string, data map[string]string) error
}

// Archiver records created alerts durably
type Archiver interface {
	ArchiveAlert(ctx context.Context, a Alert) error
}

// RefreshResult is everything a single refresh produced. Axis fields
// are nil when that source failed.
type RefreshResult struct {
	Location   Location                   `json:"location"`
	Weather    *weather.CurrentConditions `json:"weather,omitempty"`
	AirQuality *weather.AirQualityReading `json:"air_quality,omitempty"`
	UVIndex    *float64                   `json:"uv_index,omitempty"`
	Anomalies  []anomaly.Record           `json:"anomalies,omitempty"`
	Alerts     []Alert                    `json:"alerts"`
}

// Orchestrator runs the alert pipeline for a location: fetch the
// weather axes, estimate the temperature history, classify, store with
// deduplication, and push the alerts that were newly created.
type Orchestrator struct {
	source       weather.Source
	estimator    anomaly.Estimator
	store        *Store
	prefs        *PreferenceStore
	notifier     Notifier
	archiver     Archiver
	log          *logrus.Logger
	lookbackDays int
	flight       singleflight.Group
}

// NewOrchestrator wires the pipeline. notifier and archiver may be nil.
func NewOrchestrator(source weather.Source, estimator anomaly.Estimator, store *Store, prefs *PreferenceStore, notifier Notifier, archiver Archiver, lookbackDays int, log *logrus.Logger) *Orchestrator {
	if lookbackDays < 1 {
		lookbackDays = 7
	}
	return &Orchestrator{
		source:       source,
		estimator:    estimator,
		store:        store,
		prefs:        prefs,
		notifier:     notifier,
		archiver:     archiver,
		log:          log,
		lookbackDays: lookbackDays,
	}
}

// Refresh runs the pipeline for a location. Concurrent refreshes of
// the same location name are collapsed into one.
func (o *Orchestrator) Refresh(ctx context.Context, loc Location) (*RefreshResult, error) {
	v, err, _ := o.flight.Do(loc.Name, func() (interface{}, error) {
		return o.refresh(ctx, loc)
	})
	if err != nil {
		return nil, err
	}
	return v.(*RefreshResult), nil
}

func (o *Orchestrator) refresh(ctx context.Context, loc Location) (*RefreshResult, error) {
	result := &RefreshResult{Location: loc}

	// The axes fail independently: a dead air quality endpoint must not
	// block a heat wave alert.
	current, err := o.source.Current(ctx, loc.Lat, loc.Lon)
	if err != nil {
		o.log.WithError(err).WithField("location", loc.Name).Warn("Current weather unavailable")
	} else {
		result.Weather = current
	}

	airQuality, err := o.source.AirQuality(ctx, loc.Lat, loc.Lon)
	if err != nil {
		o.log.WithError(err).WithField("location", loc.Name).Warn("Air quality unavailable")
	} else {
		result.AirQuality = airQuality
	}

	uvIndex, err := o.source.UVIndex(ctx, loc.Lat, loc.Lon)
	if err != nil {
		o.log.WithError(err).WithField("location", loc.Name).Warn("UV index unavailable")
	} else {
		result.UVIndex = &uvIndex
	}

	if result.Weather == nil && result.AirQuality == nil && result.UVIndex == nil {
		return nil, ErrAllSourcesUnavailable
	}

	var candidates []*Alert

	// The series is estimated even without a live reading; unanchored
	// it stays within baseline noise and today classifies as normal.
	var live *float64
	if result.Weather != nil {
		temp := result.Weather.Temperature
		live = &temp
	}

	records, err := o.estimator.Estimate(ctx, loc.Lat, loc.Lon, o.lookbackDays, live)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		o.log.WithError(err).WithField("location", loc.Name).Warn("Anomaly estimation failed")
	} else {
		result.Anomalies = records

		// Only today's record can alert; the history is context
		if len(records) > 0 {
			if a := ClassifyTemperature(records[len(records)-1], loc.Name); a != nil {
				candidates = append(candidates, a)
			}
		}
	}

	if a := ClassifyAirQuality(result.AirQuality, loc.Name); a != nil {
		candidates = append(candidates, a)
	}
	if result.UVIndex != nil {
		if a := ClassifyUV(*result.UVIndex, loc.Name); a != nil {
			candidates = append(candidates, a)
		}
	}

	// Nothing is stored for a cancelled request
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefs := o.prefs.Get(ctx)
	appended := o.store.Append(ctx, candidates)
	for _, res := range appended {
		if !res.Created {
			continue
		}
		o.deliver(ctx, res.Alert, prefs)
	}

	result.Alerts = o.store.GetActive(ctx)
	return result, nil
}

func (o *Orchestrator) deliver(ctx context.Context, a Alert, prefs Preferences) {
	if o.archiver != nil {
		if err := o.archiver.ArchiveAlert(ctx, a); err != nil {
			o.log.WithError(err).WithField("alert_id", a.ID).Warn("Failed to archive alert")
		}
	}

	if o.notifier == nil || !prefs.EnabledFor(a.Type) {
		return
	}

	data := map[string]string{
		"alert_id": a.ID,
		"type":     string(a.Type),
		"location": a.Location,
		"severity": string(a.Severity),
	}
	if err := o.notifier.Schedule(ctx, a.Title, a.Message, data); err != nil {
		o.log.WithError(err).WithField("alert_id", a.ID).Error("Failed to schedule push notification")
	}
}
