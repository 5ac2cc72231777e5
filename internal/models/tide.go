package models

import "time"

// TideType represents whether a tide is high or low
type TideType string

const (
	TideHigh TideType = "high"
	TideLow  TideType = "low"
)

// TideEvent represents a single high or low tide occurrence
type TideEvent struct {
	Time   time.Time `json:"time"`
	Height float64   `json:"height"` // meters above chart datum
	Type   TideType  `json:"type"`
}

// TideData contains tide predictions for a harbour
type TideData struct {
	Harbour   string      `json:"location"`
	Events    []TideEvent `json:"tideEvents"` // Ordered by time
	UpdatedAt time.Time   `json:"updatedAt"`
}

// GetEventsForDay returns tide events for a specific date, in the date's location
func (td *TideData) GetEventsForDay(date time.Time) []TideEvent {
	var events []TideEvent
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	for _, event := range td.Events {
		if !event.Time.Before(startOfDay) && event.Time.Before(endOfDay) {
			events = append(events, event)
		}
	}
	return events
}
