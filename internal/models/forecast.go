package models

import "time"

// KmhPerKnot is the number of km/h in one knot
const KmhPerKnot = 1.852

// ForecastSample is one horizon step of a numerical weather model run
type ForecastSample struct {
	Time          time.Time `json:"time"`
	WindSpeed     float64   `json:"windSpeed"`     // sustained, km/h
	WindGust      float64   `json:"windGust"`      // km/h
	WindDirection float64   `json:"windDirection"` // degrees the wind blows from, [0,360)
}

// SpeedKnots returns the sustained wind speed in knots
func (s ForecastSample) SpeedKnots() float64 {
	return s.WindSpeed / KmhPerKnot
}

// GustKnots returns the gust speed in knots
func (s ForecastSample) GustKnots() float64 {
	return s.WindGust / KmhPerKnot
}

// WindForecast is a wind forecast series for one location
type WindForecast struct {
	Model     string           `json:"model"`     // e.g. "AROME 1.3 km"
	Run       time.Time        `json:"latestRun"` // zero when the provider does not expose runs
	Latitude  float64          `json:"latitude"`
	Longitude float64          `json:"longitude"`
	Samples   []ForecastSample `json:"forecasts"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// GetSamplesForDay returns forecast samples falling on the given date
func (wf *WindForecast) GetSamplesForDay(date time.Time) []ForecastSample {
	var samples []ForecastSample
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	for _, s := range wf.Samples {
		if !s.Time.Before(startOfDay) && s.Time.Before(endOfDay) {
			samples = append(samples, s)
		}
	}
	return samples
}
