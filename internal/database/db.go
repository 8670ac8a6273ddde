// Package database holds the Postgres layer: favorite locations, the
// alert history archive, and the durable preferences copy.
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/lib/pq"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// Connect establishes a connection to the database
func Connect(connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return &DB{db}, nil
}

// RunMigrations executes all SQL migration files in order
func (db *DB) RunMigrations(migrationsDir string) error {
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var sqlFiles []string
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".sql") {
			sqlFiles = append(sqlFiles, file.Name())
		}
	}
	sort.Strings(sqlFiles)

	for _, filename := range sqlFiles {
		filePath := filepath.Join(migrationsDir, filename)
		content, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}
	}

	return nil
}

// ListFavorites returns all favorite locations, most recent first
func (db *DB) ListFavorites(ctx context.Context) ([]FavoriteLocation, error) {
	query := `
		SELECT id, name, country, lat, lon, created_at
		FROM favorite_locations
		ORDER BY created_at DESC
	`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	var favorites []FavoriteLocation
	for rows.Next() {
		var fav FavoriteLocation
		if err := rows.Scan(&fav.ID, &fav.Name, &fav.Country, &fav.Lat, &fav.Lon, &fav.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, fav)
	}
	return favorites, rows.Err()
}

// AddFavorite stores a favorite location and returns it with its ID
func (db *DB) AddFavorite(ctx context.Context, fav *FavoriteLocation) error {
	query := `
		INSERT INTO favorite_locations (name, country, lat, lon)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE
		SET country = EXCLUDED.country,
		    lat = EXCLUDED.lat,
		    lon = EXCLUDED.lon
		RETURNING id, created_at
	`
	err := db.QueryRowContext(ctx, query, fav.Name, fav.Country, fav.Lat, fav.Lon).
		Scan(&fav.ID, &fav.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite deletes a favorite location by ID
func (db *DB) RemoveFavorite(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM favorite_locations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ArchiveAlertRecord stores one alert in the history archive. Alerts
// are immutable once archived; re-archiving is a no-op.
func (db *DB) ArchiveAlertRecord(ctx context.Context, rec *AlertRecord) error {
	recommendations, err := json.Marshal(rec.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to encode recommendations: %w", err)
	}

	query := `
		INSERT INTO alert_history (id, type, severity, title, message, location, recommendations, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = db.ExecContext(ctx, query,
		rec.ID, rec.Type, rec.Severity, rec.Title, rec.Message, rec.Location,
		string(recommendations), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to archive alert: %w", err)
	}
	return nil
}

// SavePreferencesDocument upserts the single preferences document
func (db *DB) SavePreferencesDocument(ctx context.Context, doc string) error {
	query := `
		INSERT INTO user_preferences (id, document, updated_at)
		VALUES (1, $1, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE
		SET document = EXCLUDED.document,
		    updated_at = CURRENT_TIMESTAMP
	`
	if _, err := db.ExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// LoadPreferencesDocument returns the stored preferences document, or
// an empty string when none has been saved.
func (db *DB) LoadPreferencesDocument(ctx context.Context) (string, error) {
	var doc string
	err := db.QueryRowContext(ctx, `SELECT document FROM user_preferences WHERE id = 1`).Scan(&doc)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load preferences: %w", err)
	}
	return doc, nil
}
