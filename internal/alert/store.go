package alert

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"skyhealth/internal/kvstore"
)

const (
	alertsKey  = "weather_alerts"
	maxEntries = 50
)

// Store persists alerts in a key-value store as a single JSON document,
// newest first. Storage failures degrade to an empty history rather
// than failing the pipeline.
type Store struct {
	kv           kvstore.Store
	log          *logrus.Logger
	mu           sync.Mutex
	activeWindow time.Duration
	now          func() time.Time
}

// NewStore creates an alert store on top of the given key-value store
func NewStore(kv kvstore.Store, log *logrus.Logger) *Store {
	return &Store{
		kv:           kv,
		log:          log,
		activeWindow: 24 * time.Hour,
		now:          time.Now,
	}
}

// AppendResult reports the outcome of appending one candidate alert.
// Alert is the stored alert, which is the previously stored one when
// the candidate was a duplicate.
type AppendResult struct {
	Alert   Alert
	Created bool
}

// Append adds the candidate alerts that are not duplicates of stored
// ones. An alert duplicates another when they share a type, location
// and calendar day. The history is capped at the most recent entries.
func (s *Store) Append(ctx context.Context, candidates []*Alert) []AppendResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	alerts := s.load(ctx)

	existing := make(map[Key]*Alert, len(alerts))
	for i := range alerts {
		existing[alerts[i].Key()] = &alerts[i]
	}

	results := make([]AppendResult, 0, len(candidates))
	added := false
	for _, candidate := range candidates {
		if candidate == nil {
			continue
		}
		if stored, ok := existing[candidate.Key()]; ok {
			results = append(results, AppendResult{Alert: *stored, Created: false})
			continue
		}
		alerts = append([]Alert{*candidate}, alerts...)
		existing[candidate.Key()] = candidate
		results = append(results, AppendResult{Alert: *candidate, Created: true})
		added = true
	}

	if len(alerts) > maxEntries {
		alerts = alerts[:maxEntries]
	}

	if added {
		s.save(ctx, alerts)
	}
	return results
}

// GetActive returns the alerts that are still active and newer than
// the active window. Entries older than the window are compacted away.
func (s *Store) GetActive(ctx context.Context) []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	alerts := s.load(ctx)
	cutoff := s.now().Add(-s.activeWindow)

	kept := make([]Alert, 0, len(alerts))
	var active []Alert
	for _, a := range alerts {
		if a.Timestamp.Before(cutoff) {
			continue
		}
		kept = append(kept, a)
		if a.IsActive {
			active = append(active, a)
		}
	}

	if len(kept) < len(alerts) {
		s.save(ctx, kept)
	}
	return active
}

// All returns the full stored history, newest first
func (s *Store) All(ctx context.Context) []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Dismiss marks the alert with the given ID inactive. Returns false
// when no stored alert has that ID.
func (s *Store) Dismiss(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	alerts := s.load(ctx)
	for i := range alerts {
		if alerts[i].ID == id {
			if alerts[i].IsActive {
				alerts[i].IsActive = false
				s.save(ctx, alerts)
			}
			return true
		}
	}
	return false
}

// ClearAll removes the entire alert history
func (s *Store) ClearAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Remove(ctx, alertsKey); err != nil {
		s.log.WithError(err).Warn("Failed to clear alert history")
	}
}

func (s *Store) load(ctx context.Context) []Alert {
	raw, err := s.kv.Get(ctx, alertsKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			s.log.WithError(err).Warn("Failed to load alert history, treating as empty")
		}
		return nil
	}

	var alerts []Alert
	if err := json.Unmarshal([]byte(raw), &alerts); err != nil {
		s.log.WithError(err).Warn("Malformed alert history, treating as empty")
		return nil
	}
	return alerts
}

func (s *Store) save(ctx context.Context, alerts []Alert) {
	data, err := json.Marshal(alerts)
	if err != nil {
		s.log.WithError(err).Error("Failed to encode alert history")
		return
	}
	if err := s.kv.Set(ctx, alertsKey, string(data)); err != nil {
		s.log.WithError(err).Warn("Failed to persist alert history")
	}
}
