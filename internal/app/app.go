// Package app assembles the components shared by the commands from the
// loaded configuration.
package app

import (
	"context"
	"database/sql"
	"errors"
	"io"

	"github.com/rs/zerolog"

	"github.com/ngmaloney/marine-sessions/internal/config"
	"github.com/ngmaloney/marine-sessions/internal/meteo"
	"github.com/ngmaloney/marine-sessions/internal/metrics"
	"github.com/ngmaloney/marine-sessions/internal/models"
	"github.com/ngmaloney/marine-sessions/internal/notify"
	"github.com/ngmaloney/marine-sessions/internal/sessions"
	"github.com/ngmaloney/marine-sessions/internal/spots"
)

// App holds the wired components
type App struct {
	Config      *config.Config
	Logger      zerolog.Logger
	DB          *sql.DB
	Metrics     *metrics.Metrics
	Spots       *spots.Repository
	DefaultSpot *models.Spot
	Sessions    *sessions.Service
	Station     meteo.StationClient
	Notifier    *notify.Notifier

	closers []io.Closer
}

// New wires every component. Close releases what it opened.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: log}

	db, err := ProvideDatabase(cfg)
	if err != nil {
		return nil, err
	}
	a.DB = db
	a.closers = append(a.closers, db)

	a.Metrics = ProvideMetrics()
	a.Spots = spots.NewRepository(db)
	if a.DefaultSpot, err = ProvideDefaultSpot(a.Spots, cfg); err != nil {
		a.Close()
		return nil, err
	}

	a.Sessions = sessions.NewService(
		ProvideWindClient(cfg, a.Metrics),
		ProvideTideClient(cfg, a.Metrics),
		ProvideEngine(cfg),
		sessions.WithTideDays(cfg.Tides.Days),
		sessions.WithMetrics(a.Metrics),
		sessions.WithLogger(log.With().Str("component", "sessions").Logger()),
	)
	a.Station = ProvideStationClient(cfg, a.Metrics)

	store, err := ProvideCooldownStore(ctx, cfg, db)
	if err != nil {
		a.Close()
		return nil, err
	}
	if c, ok := store.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	a.Notifier = notify.NewNotifier(a.Sessions, a.Station, ProvideSender(cfg, a.Metrics), store,
		notify.WithAppURL(cfg.Notify.AppURL),
		notify.WithLiveThreshold(cfg.Notify.LiveAlertMinKnots),
		notify.WithMetrics(a.Metrics),
		notify.WithLogger(log.With().Str("component", "notify").Logger()),
	)

	log.Debug().
		Str("forecast", cfg.Forecast.Provider).
		Str("cooldown", cfg.Cooldown.Backend).
		Bool("telegram", cfg.Telegram.Enabled()).
		Bool("station", a.Station != nil).
		Str("spot", a.DefaultSpot.Name).
		Msg("components wired")

	return a, nil
}

// ResolveSpot returns the named saved spot, or the default spot for ""
func (a *App) ResolveSpot(name string) (*models.Spot, error) {
	return a.Spots.Resolve(name, a.DefaultSpot)
}

// Close releases the database and cooldown connections
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
