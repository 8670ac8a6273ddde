package alert

import (
	"context"
	"errors"
	"testing"
	"time"

	"skyhealth/internal/anomaly"
	"skyhealth/internal/kvstore"
	"skyhealth/internal/weather"
)

// fakeSource returns canned axis readings, any of which can be failed
type fakeSource struct {
	conditions *weather.CurrentConditions
	airQuality *weather.AirQualityReading
	uvIndex    float64

	currentErr error
	airErr     error
	uvErr      error
}

func (f *fakeSource) Current(ctx context.Context, lat, lon float64) (*weather.CurrentConditions, error) {
	if f.currentErr != nil {
		return nil, f.currentErr
	}
	return f.conditions, nil
}

func (f *fakeSource) AirQuality(ctx context.Context, lat, lon float64) (*weather.AirQualityReading, error) {
	if f.airErr != nil {
		return nil, f.airErr
	}
	return f.airQuality, nil
}

func (f *fakeSource) UVIndex(ctx context.Context, lat, lon float64) (float64, error) {
	if f.uvErr != nil {
		return 0, f.uvErr
	}
	return f.uvIndex, nil
}

type recordingNotifier struct {
	pushes []map[string]string
	err    error
}

func (n *recordingNotifier) Schedule(ctx context.Context, title, body string, data map[string]string) error {
	if n.err != nil {
		return n.err
	}
	n.pushes = append(n.pushes, data)
	return nil
}

type recordingArchiver struct {
	archived []Alert
}

func (a *recordingArchiver) ArchiveAlert(ctx context.Context, alert Alert) error {
	a.archived = append(a.archived, alert)
	return nil
}

func jakarta() Location {
	return Location{Name: "Jakarta", Lat: -6.2, Lon: 106.8}
}

// hazardousSource returns readings that trip all three alert categories
func hazardousSource(e *anomaly.SyntheticEstimator, now time.Time) *fakeSource {
	return &fakeSource{
		conditions: &weather.CurrentConditions{
			Location:    "Jakarta",
			Temperature: e.BaselineFor(now) + 9,
		},
		airQuality: &weather.AirQualityReading{
			Tier:            4,
			Label:           weather.QualityLabel(4),
			Recommendations: weather.QualityRecommendations(4),
		},
		uvIndex: 9,
	}
}

func newTestOrchestrator(source weather.Source, notifier Notifier, archiver Archiver) *Orchestrator {
	log := quietLogger()
	kv := kvstore.NewMemoryStore()
	store := NewStore(kv, log)
	prefs := NewPreferenceStore(kv, nil, log)

	return NewOrchestrator(source, anomaly.NewSyntheticEstimator(), store, prefs, notifier, archiver, 7, log)
}

func TestRefresh_AllHazardsAlert(t *testing.T) {
	estimator := anomaly.NewSyntheticEstimator()
	now := time.Now()
	source := hazardousSource(estimator, now)
	notifier := &recordingNotifier{}
	archiver := &recordingArchiver{}
	o := newTestOrchestrator(source, notifier, archiver)

	result, err := o.Refresh(context.Background(), jakarta())
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if len(result.Alerts) != 3 {
		t.Fatalf("Expected 3 active alerts, got %d", len(result.Alerts))
	}

	types := map[Type]bool{}
	for _, a := range result.Alerts {
		types[a.Type] = true
	}
	for _, want := range []Type{TypeHeatWave, TypePoorAirQuality, TypeHighUV} {
		if !types[want] {
			t.Errorf("Expected an active %s alert", want)
		}
	}

	if len(notifier.pushes) != 3 {
		t.Errorf("Expected 3 pushes, got %d", len(notifier.pushes))
	}
	if len(archiver.archived) != 3 {
		t.Errorf("Expected 3 archived alerts, got %d", len(archiver.archived))
	}

	heat := findByType(result.Alerts, TypeHeatWave)
	if heat == nil || heat.Severity != SeverityHigh {
		t.Errorf("Expected high severity heat wave for +9 deviation, got %+v", heat)
	}
	if len(result.Anomalies) != 7 {
		t.Errorf("Expected 7 anomaly records, got %d", len(result.Anomalies))
	}
}

func TestRefresh_Idempotent(t *testing.T) {
	estimator := anomaly.NewSyntheticEstimator()
	source := hazardousSource(estimator, time.Now())
	notifier := &recordingNotifier{}
	o := newTestOrchestrator(source, notifier, nil)
	ctx := context.Background()

	first, err := o.Refresh(ctx, jakarta())
	if err != nil {
		t.Fatalf("First refresh failed: %v", err)
	}
	second, err := o.Refresh(ctx, jakarta())
	if err != nil {
		t.Fatalf("Second refresh failed: %v", err)
	}

	if len(second.Alerts) != len(first.Alerts) {
		t.Errorf("Second refresh changed the alert count: %d vs %d", len(second.Alerts), len(first.Alerts))
	}

	// Same stored alerts, same IDs
	firstIDs := map[string]bool{}
	for _, a := range first.Alerts {
		firstIDs[a.ID] = true
	}
	for _, a := range second.Alerts {
		if !firstIDs[a.ID] {
			t.Errorf("Second refresh minted a new alert ID %s", a.ID)
		}
	}

	if len(notifier.pushes) != 3 {
		t.Errorf("Expected one push per category total, got %d", len(notifier.pushes))
	}
}

func TestRefresh_PreferencesGatePushesNotRecords(t *testing.T) {
	estimator := anomaly.NewSyntheticEstimator()
	source := hazardousSource(estimator, time.Now())
	notifier := &recordingNotifier{}
	o := newTestOrchestrator(source, notifier, nil)
	ctx := context.Background()

	muted := DefaultPreferences()
	muted.AlertsEnabled = false
	if err := o.prefs.Update(ctx, muted); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	result, err := o.Refresh(ctx, jakarta())
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if len(result.Alerts) != 3 {
		t.Errorf("Muting pushes must not suppress alert records, got %d", len(result.Alerts))
	}
	if len(notifier.pushes) != 0 {
		t.Errorf("Expected no pushes with alerts disabled, got %d", len(notifier.pushes))
	}
}

func TestRefresh_SingleCategoryMuted(t *testing.T) {
	estimator := anomaly.NewSyntheticEstimator()
	source := hazardousSource(estimator, time.Now())
	notifier := &recordingNotifier{}
	o := newTestOrchestrator(source, notifier, nil)
	ctx := context.Background()

	prefs := DefaultPreferences()
	prefs.UVIndex = false
	if err := o.prefs.Update(ctx, prefs); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if _, err := o.Refresh(ctx, jakarta()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if len(notifier.pushes) != 2 {
		t.Fatalf("Expected 2 pushes with UV muted, got %d", len(notifier.pushes))
	}
	for _, push := range notifier.pushes {
		if push["type"] == string(TypeHighUV) {
			t.Error("Muted UV category should not push")
		}
	}
}

func TestRefresh_AllSourcesDown(t *testing.T) {
	down := errors.New("provider down")
	source := &fakeSource{currentErr: down, airErr: down, uvErr: down}
	o := newTestOrchestrator(source, nil, nil)

	_, err := o.Refresh(context.Background(), jakarta())
	if !errors.Is(err, ErrAllSourcesUnavailable) {
		t.Fatalf("Expected ErrAllSourcesUnavailable, got %v", err)
	}
}

func TestRefresh_PartialSourceFailure(t *testing.T) {
	estimator := anomaly.NewSyntheticEstimator()
	source := hazardousSource(estimator, time.Now())
	source.currentErr = errors.New("weather endpoint down")
	notifier := &recordingNotifier{}
	o := newTestOrchestrator(source, notifier, nil)

	result, err := o.Refresh(context.Background(), jakarta())
	if err != nil {
		t.Fatalf("Refresh should survive a single axis failure: %v", err)
	}

	if result.Weather != nil {
		t.Error("Failed axis should be nil in the result")
	}

	// The series is still estimated, just unanchored
	if len(result.Anomalies) != 7 {
		t.Fatalf("Expected 7 baseline-only anomaly records on weather-axis failure, got %d", len(result.Anomalies))
	}
	for i, rec := range result.Anomalies {
		if rec.Classification != anomaly.ClassNormal {
			t.Errorf("Record %d: unanchored series should stay normal, got %s", i, rec.Classification)
		}
	}

	// The surviving axes still alert
	if len(result.Alerts) != 2 {
		t.Errorf("Expected air and UV alerts, got %d", len(result.Alerts))
	}
}

// failingEstimator errors on every call
type failingEstimator struct{}

func (failingEstimator) Estimate(ctx context.Context, lat, lon float64, days int, liveTemp *float64) ([]anomaly.Record, error) {
	return nil, errors.New("estimator down")
}

func TestRefresh_EstimatorFailureDegrades(t *testing.T) {
	estimator := anomaly.NewSyntheticEstimator()
	source := hazardousSource(estimator, time.Now())
	notifier := &recordingNotifier{}
	o := newTestOrchestrator(source, notifier, nil)
	o.estimator = failingEstimator{}

	result, err := o.Refresh(context.Background(), jakarta())
	if err != nil {
		t.Fatalf("Refresh should survive an estimator failure: %v", err)
	}

	if len(result.Anomalies) != 0 {
		t.Errorf("Expected no anomaly series, got %d records", len(result.Anomalies))
	}

	// Air and UV alerting continues without the temperature axis
	if len(result.Alerts) != 2 {
		t.Errorf("Expected air and UV alerts, got %d", len(result.Alerts))
	}
}

func TestRefresh_CancelledContextStoresNothing(t *testing.T) {
	estimator := anomaly.NewSyntheticEstimator()
	source := hazardousSource(estimator, time.Now())
	notifier := &recordingNotifier{}
	o := newTestOrchestrator(source, notifier, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := o.Refresh(ctx, jakarta()); err == nil {
		t.Fatal("Expected error for cancelled context")
	}
	if len(notifier.pushes) != 0 {
		t.Errorf("Cancelled refresh must not push, got %d", len(notifier.pushes))
	}
	if got := o.store.All(context.Background()); len(got) != 0 {
		t.Errorf("Cancelled refresh must not store alerts, got %d", len(got))
	}
}

func TestRefresh_QuietConditionsNoAlerts(t *testing.T) {
	estimator := anomaly.NewSyntheticEstimator()
	now := time.Now()
	source := &fakeSource{
		conditions: &weather.CurrentConditions{
			Location:    "Jakarta",
			Temperature: estimator.BaselineFor(now),
		},
		airQuality: &weather.AirQualityReading{Tier: 1, Label: "Good"},
		uvIndex:    4,
	}
	notifier := &recordingNotifier{}
	o := newTestOrchestrator(source, notifier, nil)

	result, err := o.Refresh(context.Background(), jakarta())
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if len(result.Alerts) != 0 {
		t.Errorf("Expected no alerts for quiet conditions, got %d", len(result.Alerts))
	}
	if len(notifier.pushes) != 0 {
		t.Errorf("Expected no pushes, got %d", len(notifier.pushes))
	}
}

func findByType(alerts []Alert, typ Type) *Alert {
	for i := range alerts {
		if alerts[i].Type == typ {
			return &alerts[i]
		}
	}
	return nil
}
