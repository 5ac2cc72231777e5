package models

import "time"

// StationReading is a live observation from an on-site weather station
type StationReading struct {
	Temperature    float64   `json:"temperature"` // Celsius
	MinTemperature float64   `json:"minTemperature"`
	MaxTemperature float64   `json:"maxTemperature"`
	Humidity       float64   `json:"humidity"` // percent
	Pressure       float64   `json:"pressure"` // hPa
	WindSpeedKnots float64   `json:"windSpeedKnots"`
	WindGustKnots  float64   `json:"windGustKnots"`
	WindDirection  float64   `json:"windDirection"`
	Rainfall       float64   `json:"rainfall"`
	RainfallRate   float64   `json:"rainfallRate"`
	SolarRadiation float64   `json:"solarRadiation"`
	UVIndex        float64   `json:"uvIndex"`
	Condition      string    `json:"condition"`
	UpdatedAt      time.Time `json:"lastUpdate"`
}

// WindSpeed returns the sustained wind in km/h
func (r *StationReading) WindSpeed() float64 {
	return r.WindSpeedKnots * KmhPerKnot
}

// WindGust returns the gust speed in km/h
func (r *StationReading) WindGust() float64 {
	return r.WindGustKnots * KmhPerKnot
}

// ConditionForHumidity gives the coarse sky label shown next to a reading
func ConditionForHumidity(humidity float64) string {
	switch {
	case humidity > 80:
		return "Humide"
	case humidity < 30:
		return "Sec"
	default:
		return "Normal"
	}
}
