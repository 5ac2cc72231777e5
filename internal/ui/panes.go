package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ngmaloney/marine-sessions/internal/models"
	"github.com/ngmaloney/marine-sessions/internal/scoring"
)

// listedSessions is how many ranked sessions the Sessions pane shows
const listedSessions = 10

// scoreStyle colours a score by tier
func scoreStyle(score int) lipgloss.Style {
	switch {
	case score >= scoring.ExcellentScore:
		return excellentStyle
	case score >= scoring.GoodScore:
		return goodStyle
	case score >= scoring.AverageScore:
		return averageStyle
	default:
		return poorStyle
	}
}

// scoreIcon is the emoji shown next to a score
func scoreIcon(score int) string {
	switch {
	case score >= scoring.ExcellentScore:
		return "🟢"
	case score >= scoring.GoodScore:
		return "🟡"
	case score >= scoring.AverageScore:
		return "🟠"
	default:
		return "🔴"
	}
}

func (m Model) renderSessions() string {
	summary := m.report.Summary
	var lines []string

	lines = append(lines, labelStyle.Render("Tomorrow"))
	if best := summary.TomorrowBest; best != nil {
		lines = append(lines,
			fmt.Sprintf("%s %s  %s - %s", scoreIcon(best.Score), best.Date, best.TimeStart, best.TimeEnd),
			fmt.Sprintf("   %s  %s",
				formatSessionWind(*best),
				scoreStyle(best.Score).Render(fmt.Sprintf("%d/100", best.Score))),
			mutedStyle.Render("   "+best.Conditions),
		)
	} else {
		lines = append(lines, mutedStyle.Render("No recommended session tomorrow"))
	}

	counts := summary.Analysis
	lines = append(lines, "",
		fmt.Sprintf("%s %d excellent  %s %d good  %s %d average  (%d windows)",
			scoreIcon(scoring.ExcellentScore), counts.ExcellentSessions,
			scoreIcon(scoring.GoodScore), counts.GoodSessions,
			scoreIcon(scoring.AverageScore), counts.AverageSessions,
			counts.TotalWindows),
	)

	if len(summary.AllSessions) == 0 {
		lines = append(lines, "", mutedStyle.Render("No session windows in the forecast range"))
		return strings.Join(lines, "\n")
	}

	lines = append(lines, "", labelStyle.Render("Best windows"))
	for i, s := range summary.AllSessions {
		if i == listedSessions {
			break
		}
		lines = append(lines, fmt.Sprintf("%s %s %s-%s  %s  %s",
			scoreIcon(s.Score),
			s.Date, s.TimeStart, s.TimeEnd,
			formatSessionWind(s),
			scoreStyle(s.Score).Render(fmt.Sprintf("%3d", s.Score))))
	}

	return strings.Join(lines, "\n")
}

func formatSessionWind(s models.SessionWindow) string {
	return fmt.Sprintf("%2d kts %-3s  tide %.1fm", s.WindSpeedKnots, s.WindDirection, s.TideHeight)
}

func (m Model) renderForecast() string {
	forecast := m.report.Forecast
	if forecast == nil || len(forecast.Samples) == 0 {
		return mutedStyle.Render("No wind forecast available")
	}

	var lines []string
	if forecast.Model != "" {
		header := forecast.Model
		if !forecast.Run.IsZero() {
			header += " • run " + forecast.Run.In(m.location).Format("02/01 15:04")
		}
		lines = append(lines, mutedStyle.Render(header), "")
	}

	for _, day := range m.days(len(forecast.Samples), func(i int) time.Time { return forecast.Samples[i].Time }) {
		lines = append(lines, labelStyle.Render(dayLabel(day.date, m.today())))
		for _, i := range day.indexes {
			s := forecast.Samples[i]
			lines = append(lines, fmt.Sprintf("  %s  %s kts (gust %s)  %-3s %3.0f°",
				valueStyle.Render(s.Time.In(m.location).Format("15:04")),
				knots(s.SpeedKnots()),
				knots(s.GustKnots()),
				scoring.DirectionLabel(s.WindDirection),
				s.WindDirection))
		}
		lines = append(lines, "")
	}

	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func knots(v float64) string {
	return fmt.Sprintf("%4.1f", v)
}

func (m Model) renderTides() string {
	tides := m.report.Tides
	if tides == nil || len(tides.Events) == 0 {
		return mutedStyle.Render("No tide data available")
	}

	var lines []string
	for _, day := range m.days(len(tides.Events), func(i int) time.Time { return tides.Events[i].Time }) {
		lines = append(lines, labelStyle.Render(dayLabel(day.date, m.today())))
		for _, i := range day.indexes {
			event := tides.Events[i]
			typeStr := "Low"
			if event.Type == models.TideHigh {
				typeStr = "High"
			}
			lines = append(lines, fmt.Sprintf("  %s  %s  %.2f m",
				valueStyle.Render(event.Time.In(m.location).Format("15:04")),
				labelStyle.Width(4).Render(typeStr),
				event.Height))
		}
		lines = append(lines, "")
	}

	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func (m Model) renderStation() string {
	if m.station == nil {
		return mutedStyle.Render("No weather station configured")
	}
	if m.stationErr != nil {
		return errorStyle.Render("Station unavailable: " + m.stationErr.Error())
	}
	r := m.reading
	if r == nil {
		return mutedStyle.Render("No station reading")
	}

	row := func(label, value string) string {
		return labelStyle.Width(13).Render(label) + valueStyle.Render(value)
	}
	return strings.Join([]string{
		row("Wind", fmt.Sprintf("%.1f kts %s (%.0f°)", r.WindSpeedKnots, scoring.DirectionLabel(r.WindDirection), r.WindDirection)),
		row("Gusts", fmt.Sprintf("%.1f kts", r.WindGustKnots)),
		row("Temperature", fmt.Sprintf("%.1f°C (%.1f / %.1f)", r.Temperature, r.MinTemperature, r.MaxTemperature)),
		row("Humidity", fmt.Sprintf("%.0f%% %s", r.Humidity, r.Condition)),
		row("Pressure", fmt.Sprintf("%.1f hPa", r.Pressure)),
		row("Rain", fmt.Sprintf("%.1f mm (%.1f mm/h)", r.Rainfall, r.RainfallRate)),
		row("UV", fmt.Sprintf("%.1f", r.UVIndex)),
		"",
		mutedStyle.Render("Read at " + r.UpdatedAt.In(m.location).Format("02/01 15:04")),
	}, "\n")
}

func (m Model) today() time.Time {
	return time.Now().In(m.location)
}

type dayGroup struct {
	date    time.Time
	indexes []int
}

// days groups n time-ordered items by local calendar day
func (m Model) days(n int, at func(int) time.Time) []dayGroup {
	var groups []dayGroup
	for i := 0; i < n; i++ {
		t := at(i).In(m.location)
		date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, m.location)
		if len(groups) == 0 || !groups[len(groups)-1].date.Equal(date) {
			groups = append(groups, dayGroup{date: date})
		}
		groups[len(groups)-1].indexes = append(groups[len(groups)-1].indexes, i)
	}
	return groups
}

// dayLabel names date relative to today
func dayLabel(date, today time.Time) string {
	switch {
	case sameDay(date, today):
		return "Today " + date.Format("02/01")
	case sameDay(date, today.AddDate(0, 0, 1)):
		return "Tomorrow " + date.Format("02/01")
	}
	return date.Format("Monday 02/01")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
