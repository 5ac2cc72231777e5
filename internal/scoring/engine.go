package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/ngmaloney/marine-sessions/internal/models"
)

const (
	// MaxListedSessions caps AllSessions.
	MaxListedSessions = 20
	// SessionLength is the span of one recommended session.
	SessionLength = 2 * time.Hour

	ExcellentScore = 80
	GoodScore      = 60
	AverageScore   = 40

	dateLayout = "02/01/2006"
	timeLayout = "15:04"
)

// Engine turns a forecast and a tide series into an AnalysisSummary.
type Engine struct {
	rubric   Rubric
	location *time.Location
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithRubric replaces the default thresholds.
func WithRubric(r Rubric) Option {
	return func(e *Engine) { e.rubric = r }
}

// WithLocation sets the timezone used for daylight filtering and for the
// date and time strings of each session.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.location = loc
		}
	}
}

// WithClock sets the clock used to decide which day is tomorrow.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an Engine with the default rubric, UTC and the system clock.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		rubric:   DefaultRubric(),
		location: time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rubric returns the thresholds the engine scores with.
func (e *Engine) Rubric() Rubric {
	return e.rubric
}

// Location returns the engine's timezone.
func (e *Engine) Location() *time.Location {
	return e.location
}

// Analyze scores every daylight forecast sample against its nearest tide and
// ranks the survivors. Empty inputs produce an empty summary.
func (e *Engine) Analyze(forecast []models.ForecastSample, tides []models.TideEvent) models.AnalysisSummary {
	sessions := make([]models.SessionWindow, 0, len(forecast))
	if len(tides) > 0 {
		for _, sample := range forecast {
			if w, ok := e.scoreSample(sample, tides); ok {
				sessions = append(sessions, w)
			}
		}
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Score > sessions[j].Score
	})

	return e.summarize(sessions)
}

func (e *Engine) scoreSample(sample models.ForecastSample, tides []models.TideEvent) (models.SessionWindow, bool) {
	local := sample.Time.In(e.location)
	if !InDaylight(local) {
		return models.SessionWindow{}, false
	}

	tide, ok := NearestTide(sample.Time, tides)
	if !ok {
		return models.SessionWindow{}, false
	}

	score, ok := e.rubric.Score(sample.WindSpeed, tide.Height, sample.WindDirection, local.Hour())
	if !ok {
		return models.SessionWindow{}, false
	}

	return models.SessionWindow{
		Date:           local.Format(dateLayout),
		TimeStart:      local.Format(timeLayout),
		TimeEnd:        local.Add(SessionLength).Format(timeLayout),
		Start:          local,
		WindSpeedKnots: int(math.Round(KmhToKnots(sample.WindSpeed))),
		WindDirection:  DirectionLabel(sample.WindDirection),
		TideHeight:     tide.Height,
		Score:          score.Points,
		Conditions:     score.Conditions,
	}, true
}

// summarize expects sessions sorted by score, highest first.
func (e *Engine) summarize(sessions []models.SessionWindow) models.AnalysisSummary {
	summary := models.AnalysisSummary{
		AllSessions:  sessions[:min(len(sessions), MaxListedSessions)],
		BestSessions: make([]models.SessionWindow, 0),
	}
	summary.Analysis.TotalWindows = len(sessions)

	tomorrow := e.now().In(e.location).AddDate(0, 0, 1).Format(dateLayout)

	for i := range sessions {
		s := sessions[i]
		switch {
		case s.Score >= ExcellentScore:
			summary.Analysis.ExcellentSessions++
		case s.Score >= GoodScore:
			summary.Analysis.GoodSessions++
		case s.Score >= AverageScore:
			summary.Analysis.AverageSessions++
		}
		if s.Score >= GoodScore {
			summary.BestSessions = append(summary.BestSessions, s)
		}
		if summary.TomorrowBest == nil && s.Date == tomorrow {
			best := s
			summary.TomorrowBest = &best
		}
	}

	return summary
}
