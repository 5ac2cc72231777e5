// Package spots persists the sailing spots a user can analyse.
package spots

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ngmaloney/marine-sessions/internal/models"
)

// ErrNotFound is returned when no spot has the requested name
var ErrNotFound = errors.New("spot not found")

// Repository handles persistence for saved spots
type Repository struct {
	db *sql.DB
}

// NewRepository creates a spot repository on an open database
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts a spot or updates the one with the same name
func (r *Repository) Save(spot *models.Spot) error {
	spot.Name = strings.TrimSpace(spot.Name)
	if spot.Name == "" {
		return errors.New("spot name is required")
	}
	if spot.CreatedAt.IsZero() {
		spot.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO spots (name, latitude, longitude, tide_harbour, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			tide_harbour = excluded.tide_harbour
		RETURNING id
	`

	err := r.db.QueryRow(query,
		spot.Name,
		spot.Latitude,
		spot.Longitude,
		spot.TideHarbour,
		spot.CreatedAt,
	).Scan(&spot.ID)
	if err != nil {
		return fmt.Errorf("saving spot: %w", err)
	}

	return nil
}

// List retrieves all saved spots ordered by name
func (r *Repository) List() ([]models.Spot, error) {
	rows, err := r.db.Query("SELECT id, name, latitude, longitude, tide_harbour, created_at FROM spots ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying spots: %w", err)
	}
	defer rows.Close()

	spots := []models.Spot{}
	for rows.Next() {
		var s models.Spot
		if err := rows.Scan(&s.ID, &s.Name, &s.Latitude, &s.Longitude, &s.TideHarbour, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning spot: %w", err)
		}
		spots = append(spots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spots: %w", err)
	}

	return spots, nil
}

// Get retrieves a spot by name, case-insensitively
func (r *Repository) Get(name string) (*models.Spot, error) {
	var s models.Spot
	err := r.db.QueryRow(
		"SELECT id, name, latitude, longitude, tide_harbour, created_at FROM spots WHERE name = ? COLLATE NOCASE",
		strings.TrimSpace(name),
	).Scan(&s.ID, &s.Name, &s.Latitude, &s.Longitude, &s.TideHarbour, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("querying spot: %w", err)
	}
	return &s, nil
}

// Delete removes a spot by name
func (r *Repository) Delete(name string) error {
	res, err := r.db.Exec("DELETE FROM spots WHERE name = ? COLLATE NOCASE", strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("deleting spot: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// EnsureDefault stores spot unless a spot with that name already exists, and
// returns the stored version.
func (r *Repository) EnsureDefault(spot models.Spot) (*models.Spot, error) {
	existing, err := r.Get(spot.Name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err := r.Save(&spot); err != nil {
		return nil, err
	}
	return &spot, nil
}

// Resolve returns the named spot, or fallback when name is empty
func (r *Repository) Resolve(name string, fallback *models.Spot) (*models.Spot, error) {
	if strings.TrimSpace(name) == "" {
		if fallback == nil {
			return nil, fmt.Errorf("%w: no default spot", ErrNotFound)
		}
		return fallback, nil
	}
	return r.Get(name)
}
