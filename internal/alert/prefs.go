package alert

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"skyhealth/internal/kvstore"
)

const preferencesKey = "notification_preferences"

// PreferenceArchiver persists the preference document durably, beyond
// the key-value store's lifetime.
type PreferenceArchiver interface {
	SavePreferencesDocument(ctx context.Context, doc string) error
	LoadPreferencesDocument(ctx context.Context) (string, error)
}

// PreferenceStore reads and writes notification preferences. The
// key-value store is the primary copy; the archiver keeps a durable
// one that seeds the key-value store after a cold start.
type PreferenceStore struct {
	kv       kvstore.Store
	archiver PreferenceArchiver
	log      *logrus.Logger
}

// NewPreferenceStore creates a preference store. archiver may be nil.
func NewPreferenceStore(kv kvstore.Store, archiver PreferenceArchiver, log *logrus.Logger) *PreferenceStore {
	return &PreferenceStore{kv: kv, archiver: archiver, log: log}
}

// Get returns the stored preferences, falling back to the archived
// copy and then the defaults. Malformed documents yield the defaults.
func (p *PreferenceStore) Get(ctx context.Context) Preferences {
	raw, err := p.kv.Get(ctx, preferencesKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			p.log.WithError(err).Warn("Failed to load preferences, using defaults")
			return DefaultPreferences()
		}
		raw = p.loadArchived(ctx)
		if raw == "" {
			return DefaultPreferences()
		}
	}

	var prefs Preferences
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		p.log.WithError(err).Warn("Malformed preferences, using defaults")
		return DefaultPreferences()
	}
	return prefs
}

// Update stores new preferences. The key-value write is authoritative;
// archiving is best effort.
func (p *PreferenceStore) Update(ctx context.Context, prefs Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}

	if err := p.kv.Set(ctx, preferencesKey, string(data)); err != nil {
		return err
	}

	if p.archiver != nil {
		if err := p.archiver.SavePreferencesDocument(ctx, string(data)); err != nil {
			p.log.WithError(err).Warn("Failed to archive preferences")
		}
	}
	return nil
}

func (p *PreferenceStore) loadArchived(ctx context.Context) string {
	if p.archiver == nil {
		return ""
	}
	doc, err := p.archiver.LoadPreferencesDocument(ctx)
	if err != nil {
		return ""
	}
	if doc != "" {
		// Re-seed the key-value copy
		if err := p.kv.Set(ctx, preferencesKey, doc); err != nil {
			p.log.WithError(err).Warn("Failed to re-seed preferences")
		}
	}
	return doc
}
