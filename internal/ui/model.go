// Package ui is the terminal front end: pick a saved spot, then browse its
// recommended sessions, the wind forecast, the tide table and the live
// station reading.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ngmaloney/marine-sessions/internal/meteo"
	"github.com/ngmaloney/marine-sessions/internal/models"
	"github.com/ngmaloney/marine-sessions/internal/sessions"
)

// AppState represents the current state of the application
type AppState int

const (
	StateSpotList AppState = iota // Choose a saved spot
	StateLoading                  // Running the analysis
	StateDisplay                  // Browse the results
	StateError                    // Error state
)

// ActivePane represents which pane is currently shown
type ActivePane int

const (
	PaneSessions ActivePane = iota
	PaneForecast
	PaneTides
	PaneStation
	paneCount
)

func (p ActivePane) String() string {
	switch p {
	case PaneSessions:
		return "Sessions"
	case PaneForecast:
		return "Forecast"
	case PaneTides:
		return "Tides"
	case PaneStation:
		return "Station"
	}
	return "?"
}

// SpotLister lists the saved spots
type SpotLister interface {
	List() ([]models.Spot, error)
}

// Analyzer runs a session analysis
type Analyzer interface {
	Analyze(ctx context.Context, spot models.Spot) (*sessions.Report, error)
}

// Deps are the collaborators of the UI. Station may be nil.
type Deps struct {
	Spots    SpotLister
	Sessions Analyzer
	Station  meteo.StationClient
	Location *time.Location
	// InitialSpot, when set, is loaded without going through the list
	InitialSpot string
}

// Model represents the application's state
type Model struct {
	state      AppState
	activePane ActivePane
	width      int
	height     int
	err        error

	// Collaborators
	spotStore SpotLister
	analyzer  Analyzer
	station   meteo.StationClient
	location  *time.Location

	// Spots
	initialSpot  string
	spots        []models.Spot
	spotList     list.Model
	selectedSpot *models.Spot

	// Data
	report     *sessions.Report
	reading    *models.StationReading
	stationErr error

	// Loading states
	loadingAnalysis bool
	loadingStation  bool

	spinner spinner.Model
}

// NewModel creates a new application model
func NewModel(deps Deps) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}

	return Model{
		state:       StateSpotList,
		activePane:  PaneSessions,
		spotStore:   deps.Spots,
		analyzer:    deps.Sessions,
		station:     deps.Station,
		location:    loc,
		initialSpot: deps.InitialSpot,
		spinner:     s,
	}
}

// Init loads the saved spots
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadSpots(m.spotStore))
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Handle window size
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		if m.spots != nil {
			m.spotList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil
	}

	// Handle custom messages
	switch msg := msg.(type) {
	case errMsg:
		m.err = msg.err
		m.state = StateError
		return m, nil

	case spotsLoadedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("loading spots failed: %w", msg.err)
			m.state = StateError
			return m, nil
		}
		m.spots = msg.spots
		if m.spots == nil {
			m.spots = []models.Spot{}
		}
		m.spotList = createSpotList(msg.spots, m.width-4, m.height-8)

		if name := m.initialSpot; name != "" {
			m.initialSpot = ""
			for _, spot := range msg.spots {
				if strings.EqualFold(spot.Name, name) {
					return m.startLoading(spot)
				}
			}
			m.err = fmt.Errorf("no saved spot named %q", name)
			m.state = StateError
			return m, nil
		}
		return m, nil

	case analysisFetchedMsg:
		m.loadingAnalysis = false
		if msg.err != nil {
			m.err = fmt.Errorf("session analysis failed: %w", msg.err)
			m.state = StateError
			return m, nil
		}
		m.report = msg.report
		if !m.loadingStation {
			m.state = StateDisplay
		}
		return m, nil

	case stationFetchedMsg:
		m.loadingStation = false
		if msg.err != nil {
			// the station is optional; keep going without it
			m.stationErr = msg.err
		} else {
			m.reading = msg.reading
		}
		if m.state == StateLoading && !m.loadingAnalysis {
			m.state = StateDisplay
		}
		return m, nil
	}

	// Handle keyboard input
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		// Global keys
		if keyMsg.String() == "ctrl+c" || keyMsg.String() == "q" {
			return m, tea.Quit
		}

		switch m.state {
		case StateSpotList:
			return m.handleSpotList(keyMsg)

		case StateDisplay:
			switch {
			case keyMsg.Type == tea.KeyTab:
				m.activePane = (m.activePane + 1) % paneCount
				return m, nil
			case keyMsg.Type == tea.KeyShiftTab:
				m.activePane = (m.activePane + paneCount - 1) % paneCount
				return m, nil
			case keyMsg.String() == "r":
				if m.selectedSpot != nil {
					return m.startLoading(*m.selectedSpot)
				}
			case keyMsg.String() == "s":
				return m.backToSpots()
			}
			return m, nil

		case StateError:
			// Any key returns to the spot list (except quit keys)
			return m.backToSpots()
		}
	}

	switch m.state {
	case StateLoading:
		m.spinner, cmd = m.spinner.Update(msg)
	case StateSpotList:
		if m.spots != nil {
			m.spotList, cmd = m.spotList.Update(msg)
		}
	}

	return m, cmd
}

// handleSpotList handles keyboard input in the spot list
func (m Model) handleSpotList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.spots == nil {
		return m, nil
	}

	if msg.Type == tea.KeyEnter {
		if item, ok := m.spotList.SelectedItem().(spotItem); ok {
			return m.startLoading(item.spot)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.spotList, cmd = m.spotList.Update(msg)
	return m, cmd
}

// startLoading clears previous results and fetches everything for spot
func (m Model) startLoading(spot models.Spot) (tea.Model, tea.Cmd) {
	m.selectedSpot = &spot
	m.state = StateLoading
	m.err = nil
	m.report = nil
	m.reading = nil
	m.stationErr = nil
	m.loadingAnalysis = true
	m.loadingStation = m.station != nil

	cmds := []tea.Cmd{m.spinner.Tick, fetchAnalysis(m.analyzer, spot)}
	if m.station != nil {
		cmds = append(cmds, fetchStation(m.station))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) backToSpots() (tea.Model, tea.Cmd) {
	m.state = StateSpotList
	m.err = nil
	m.selectedSpot = nil
	m.report = nil
	m.reading = nil
	m.stationErr = nil
	m.activePane = PaneSessions
	if m.spots == nil {
		return m, loadSpots(m.spotStore)
	}
	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.state {
	case StateSpotList:
		return m.viewSpotList()
	case StateLoading:
		return m.viewLoading()
	case StateDisplay:
		return m.viewDisplay()
	case StateError:
		return m.viewError()
	}

	return ""
}

// viewError renders the error view
func (m Model) viewError() string {
	title := errorStyle.Render("✗ Error")

	errorMsg := "An unknown error occurred"
	if m.err != nil {
		errorMsg = m.err.Error()
	}

	help := helpStyle.Render("Press any key to return to the spot list • Q: Quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, "", errorMsg, "", help)
}

// viewSpotList renders the spot selection list
func (m Model) viewSpotList() string {
	title := titleStyle.Render("⛵ Marine Sessions")
	subtitle := mutedStyle.Render("Wind & tide session planner")

	if m.spots == nil {
		return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "", m.spinner.View()+" Loading spots...")
	}
	if len(m.spots) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "",
			mutedStyle.Render("No saved spots. Set SPOT_NAME, SPOT_LAT and SPOT_LON to seed one."),
			helpStyle.Render("Q: Quit"))
	}

	help := helpStyle.Render("↑/↓: Navigate • Enter: Analyze • Q: Quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "", m.spotList.View(), help)
}

// viewLoading renders the loading view
func (m Model) viewLoading() string {
	var b strings.Builder
	b.WriteString(m.spinner.View())
	b.WriteString(" Analyzing sessions")
	if m.selectedSpot != nil {
		fmt.Fprintf(&b, " for %s", m.selectedSpot.Name)
	}
	b.WriteString("...\n\n")

	if m.loadingAnalysis {
		b.WriteString("⏳ Fetching wind forecast and tides\n")
	} else {
		b.WriteString("✓ Sessions scored\n")
	}

	if m.station != nil {
		if m.loadingStation {
			b.WriteString("⏳ Reading weather station\n")
		} else {
			b.WriteString("✓ Station read\n")
		}
	}

	return b.String()
}

// viewDisplay renders the tab bar and the active pane
func (m Model) viewDisplay() string {
	if m.selectedSpot == nil || m.report == nil {
		return "No spot selected"
	}

	header := headerStyle.Render(fmt.Sprintf("⛵ %s", m.selectedSpot.Name))
	updated := mutedStyle.Render("Updated " + m.report.GeneratedAt.In(m.location).Format("02/01 15:04"))

	tabs := make([]string, 0, paneCount)
	for p := PaneSessions; p < paneCount; p++ {
		if p == m.activePane {
			tabs = append(tabs, activeTabStyle.Render(p.String()))
		} else {
			tabs = append(tabs, tabStyle.Render(p.String()))
		}
	}

	var body string
	switch m.activePane {
	case PaneSessions:
		body = m.renderSessions()
	case PaneForecast:
		body = m.renderForecast()
	case PaneTides:
		body = m.renderTides()
	case PaneStation:
		body = m.renderStation()
	}

	width := m.width - 2
	if width < 40 {
		width = 40
	}

	sections := []string{header, updated}
	for _, w := range m.report.Warnings {
		sections = append(sections, warningStyle.Render("⚠ "+w))
	}
	sections = append(sections,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		paneStyle.Width(width).Render(body),
		helpStyle.Render("Tab: Switch pane • R: Refresh • S: Spots • Q: Quit"),
	)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
