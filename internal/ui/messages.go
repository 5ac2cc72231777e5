package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ngmaloney/marine-sessions/internal/meteo"
	"github.com/ngmaloney/marine-sessions/internal/models"
	"github.com/ngmaloney/marine-sessions/internal/sessions"
)

// Message types for async operations

// spotsLoadedMsg is sent when the saved spots have been read
type spotsLoadedMsg struct {
	spots []models.Spot
	err   error
}

// analysisFetchedMsg is sent when a session analysis has finished
type analysisFetchedMsg struct {
	report *sessions.Report
	err    error
}

// stationFetchedMsg is sent when the live station reading has been fetched
type stationFetchedMsg struct {
	reading *models.StationReading
	err     error
}

// errMsg is a message type for errors
type errMsg struct {
	err error
}

func loadSpots(store SpotLister) tea.Cmd {
	return func() tea.Msg {
		spots, err := store.List()
		return spotsLoadedMsg{spots: spots, err: err}
	}
}

// fetchAnalysis runs a full analysis for spot in the background
func fetchAnalysis(svc Analyzer, spot models.Spot) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		defer cancel()

		report, err := svc.Analyze(ctx, spot)
		return analysisFetchedMsg{report: report, err: err}
	}
}

// fetchStation reads the live weather station
func fetchStation(client meteo.StationClient) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		reading, err := client.GetStationReading(ctx)
		return stationFetchedMsg{reading: reading, err: err}
	}
}
