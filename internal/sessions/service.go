// Package sessions runs a complete analysis for a spot: it fetches the wind
// forecast and the tide table concurrently and hands both to the scoring
// engine.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ngmaloney/marine-sessions/internal/meteo"
	"github.com/ngmaloney/marine-sessions/internal/metrics"
	"github.com/ngmaloney/marine-sessions/internal/models"
	"github.com/ngmaloney/marine-sessions/internal/scoring"
)

// Report is the result of one analysis run
type Report struct {
	Spot        models.Spot            `json:"spot"`
	Forecast    *models.WindForecast   `json:"forecast"`
	Tides       *models.TideData       `json:"tides"`
	Summary     models.AnalysisSummary `json:"summary"`
	Warnings    []string               `json:"warnings"`
	GeneratedAt time.Time              `json:"generatedAt"`
}

// Degraded reports whether one of the inputs was replaced by an empty series
func (r *Report) Degraded() bool {
	return len(r.Warnings) > 0
}

// Service analyses spots
type Service struct {
	wind     meteo.WindClient
	tides    meteo.TideClient
	engine   *scoring.Engine
	tideDays int
	metrics  *metrics.Metrics
	log      zerolog.Logger
	now      func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithTideDays sets how many days of tides are requested
func WithTideDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.tideDays = days
		}
	}
}

// WithMetrics records analysis metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithClock sets the clock used for the tide window and report timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a Service
func NewService(wind meteo.WindClient, tides meteo.TideClient, engine *scoring.Engine, opts ...Option) *Service {
	s := &Service{
		wind:     wind,
		tides:    tides,
		engine:   engine,
		tideDays: 7,
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Forecast fetches the wind forecast for spot
func (s *Service) Forecast(ctx context.Context, spot models.Spot) (*models.WindForecast, error) {
	forecast, err := s.wind.GetWindForecast(ctx, spot.Latitude, spot.Longitude)
	if err != nil {
		return nil, fmt.Errorf("fetching forecast for %s: %w", spot.Name, err)
	}
	return forecast, nil
}

// Tides fetches the tide table of the spot's harbour from now on
func (s *Service) Tides(ctx context.Context, spot models.Spot) (*models.TideData, error) {
	from := s.now().In(s.engine.Location())
	tides, err := s.tides.GetTideEvents(ctx, spot.TideHarbour, from, from.AddDate(0, 0, s.tideDays))
	if err != nil {
		return nil, fmt.Errorf("fetching tides for %s: %w", spot.TideHarbour, err)
	}
	return tides, nil
}

// Analyze fetches both series and scores them. When one fetch fails the
// analysis runs on an empty series for it and the failure is reported in
// Report.Warnings; when both fail an error is returned.
func (s *Service) Analyze(ctx context.Context, spot models.Spot) (*Report, error) {
	var (
		g                 errgroup.Group
		forecast          *models.WindForecast
		tides             *models.TideData
		windErr, tidesErr error
	)

	// neither fetch cancels the other
	g.Go(func() error {
		forecast, windErr = s.Forecast(ctx, spot)
		return nil
	})
	g.Go(func() error {
		tides, tidesErr = s.Tides(ctx, spot)
		return nil
	})
	_ = g.Wait()

	if windErr != nil && tidesErr != nil {
		s.countRun("failed")
		return nil, fmt.Errorf("analysis of %s failed: %w", spot.Name, errors.Join(windErr, tidesErr))
	}

	report := &Report{
		Spot:        spot,
		Forecast:    forecast,
		Tides:       tides,
		Warnings:    []string{},
		GeneratedAt: s.now(),
	}

	if windErr != nil {
		report.Forecast = &models.WindForecast{Latitude: spot.Latitude, Longitude: spot.Longitude, Samples: []models.ForecastSample{}}
		report.Warnings = append(report.Warnings, "wind forecast unavailable: "+windErr.Error())
		s.degrade("forecast", spot, windErr)
	}
	if tidesErr != nil {
		report.Tides = &models.TideData{Harbour: spot.TideHarbour, Events: []models.TideEvent{}}
		report.Warnings = append(report.Warnings, "tide table unavailable: "+tidesErr.Error())
		s.degrade("tides", spot, tidesErr)
	}

	report.Summary = s.engine.Analyze(report.Forecast.Samples, report.Tides.Events)

	if report.Degraded() {
		s.countRun("degraded")
	} else {
		s.countRun("ok")
	}
	if s.metrics != nil {
		s.metrics.SessionsFound.WithLabelValues(spot.Name).Set(float64(report.Summary.Analysis.TotalWindows))
		best := 0
		if len(report.Summary.AllSessions) > 0 {
			best = report.Summary.AllSessions[0].Score
		}
		s.metrics.BestScore.WithLabelValues(spot.Name).Set(float64(best))
	}

	s.log.Info().
		Str("spot", spot.Name).
		Int("samples", len(report.Forecast.Samples)).
		Int("tides", len(report.Tides.Events)).
		Int("sessions", report.Summary.Analysis.TotalWindows).
		Int("excellent", report.Summary.Analysis.ExcellentSessions).
		Msg("session analysis complete")

	return report, nil
}

func (s *Service) degrade(series string, spot models.Spot, err error) {
	s.log.Warn().Err(err).Str("spot", spot.Name).Str("series", series).Msg("continuing with an empty series")
	if s.metrics != nil {
		s.metrics.DegradedFetches.WithLabelValues(series).Inc()
	}
}

func (s *Service) countRun(outcome string) {
	if s.metrics != nil {
		s.metrics.AnalysisRuns.WithLabelValues(outcome).Inc()
	}
}
