// Package server exposes session analyses, raw inputs and notification
// triggers over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ngmaloney/marine-sessions/internal/meteo"
	"github.com/ngmaloney/marine-sessions/internal/metrics"
	"github.com/ngmaloney/marine-sessions/internal/models"
	"github.com/ngmaloney/marine-sessions/internal/notify"
	"github.com/ngmaloney/marine-sessions/internal/sessions"
)

// SpotStore resolves spot names
type SpotStore interface {
	List() ([]models.Spot, error)
	Resolve(name string, fallback *models.Spot) (*models.Spot, error)
}

// SessionService fetches inputs and runs analyses
type SessionService interface {
	Forecast(ctx context.Context, spot models.Spot) (*models.WindForecast, error)
	Tides(ctx context.Context, spot models.Spot) (*models.TideData, error)
	Analyze(ctx context.Context, spot models.Spot) (*sessions.Report, error)
}

// NotificationService sends notifications
type NotificationService interface {
	SendDaily(ctx context.Context, spot models.Spot) (*notify.Result, error)
	SendLiveWind(ctx context.Context, spot models.Spot) (*notify.Result, error)
}

// Deps are the collaborators of the API. Station and Notifier may be nil;
// their routes then answer 503.
type Deps struct {
	Spots       SpotStore
	Sessions    SessionService
	Station     meteo.StationClient
	Notifier    NotificationService
	DefaultSpot *models.Spot
	CronSecret  string
	Metrics     *metrics.Metrics
	Logger      zerolog.Logger
}

// Config holds the listener settings
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server is the HTTP API
type Server struct {
	deps   Deps
	cfg    Config
	router chi.Router
	now    func() time.Time
}

// New builds the server and mounts its routes
func New(cfg Config, deps Deps) *Server {
	s := &Server{
		deps:   deps,
		cfg:    cfg,
		router: chi.NewRouter(),
		now:    time.Now,
	}
	s.mountRoutes()
	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) mountRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(s.recoverer)
	r.Use(requestLogger(s.deps.Logger))
	r.Use(s.observe)

	r.Get("/health", s.handleHealth)
	if s.deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/spots", s.handleSpots)
		r.Get("/forecast", s.handleForecast)
		r.Get("/tides", s.handleTides)
		r.Get("/station", s.handleStation)
		r.Get("/session-analysis", s.handleSessionAnalysis)

		r.Get("/notifications/daily", s.handleDailyNotification)
		r.Post("/notifications/daily", s.handleDailyNotification)
		r.Get("/notifications/live", s.handleLiveNotification)
		r.Post("/notifications/live", s.handleLiveNotification)

		r.With(s.requireCronSecret).Get("/cron/daily-notification", s.handleCronDaily)
	})
}

// Run serves until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.deps.Logger.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.deps.Logger.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
