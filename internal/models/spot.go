package models

import "time"

// Spot represents a configured sailing location.
// It can be the default spot from configuration or a saved user spot.
type Spot struct {
	ID          int64     `json:"id"`       // Database Primary Key (0 if not saved)
	Name        string    `json:"name"`     // User-friendly name, unique
	Latitude    float64   `json:"latitude"` // forecast grid point
	Longitude   float64   `json:"longitude"`
	TideHarbour string    `json:"tideHarbour"` // tide provider harbour slug (e.g. "rochefort")
	CreatedAt   time.Time `json:"createdAt"`
}
