package models

import "time"

// SessionWindow is a recommended two-hour slot anchored at a forecast sample
type SessionWindow struct {
	Date           string    `json:"date"`      // dd/mm/yyyy in the spot's timezone
	TimeStart      string    `json:"timeStart"` // HH:MM
	TimeEnd        string    `json:"timeEnd"`   // HH:MM, TimeStart + 2h
	Start          time.Time `json:"start"`
	WindSpeedKnots int       `json:"windSpeed"`
	WindDirection  string    `json:"windDirection"` // 16-point compass label
	TideHeight     float64   `json:"tideHeight"`    // meters, nearest tide event
	Score          int       `json:"score"`         // 0-100
	Conditions     string    `json:"conditions"`
}

// SessionCounts groups sessions by score tier
type SessionCounts struct {
	TotalWindows      int `json:"totalWindows"`
	ExcellentSessions int `json:"excellentSessions"` // score >= 80
	GoodSessions      int `json:"goodSessions"`      // 60 <= score < 80
	AverageSessions   int `json:"averageSessions"`   // 40 <= score < 60
}

// AnalysisSummary is the ranked output of one analysis run
type AnalysisSummary struct {
	AllSessions  []SessionWindow `json:"allSessions"`  // score desc, capped
	BestSessions []SessionWindow `json:"bestSessions"` // score >= 60, uncapped
	TomorrowBest *SessionWindow  `json:"tomorrowBest"`
	Analysis     SessionCounts   `json:"analysis"`
}
