// Package meteo retrieves the inputs of a session analysis: wind forecasts,
// tide tables and live weather-station readings.
package meteo

import (
	"context"
	"time"

	"github.com/ngmaloney/marine-sessions/internal/models"
)

// WindClient fetches a wind forecast for a location
type WindClient interface {
	// GetWindForecast retrieves the latest model run for lat/lon
	GetWindForecast(ctx context.Context, lat, lon float64) (*models.WindForecast, error)
}

// TideClient fetches tide predictions for a harbour
type TideClient interface {
	// GetTideEvents retrieves high and low tides between from and to, inclusive
	GetTideEvents(ctx context.Context, harbour string, from, to time.Time) (*models.TideData, error)
}

// StationClient reads the current observation of a weather station
type StationClient interface {
	GetStationReading(ctx context.Context) (*models.StationReading, error)
}
