// Command sessions-server serves the session analysis API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ngmaloney/marine-sessions/internal/app"
	"github.com/ngmaloney/marine-sessions/internal/config"
	"github.com/ngmaloney/marine-sessions/internal/logging"
	"github.com/ngmaloney/marine-sessions/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log, closer, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Notify.CronSecret == "" {
		log.Warn().Msg("CRON_SECRET is empty, the cron endpoint will reject every request")
	}

	srv := server.New(server.Config{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, server.Deps{
		Spots:       a.Spots,
		Sessions:    a.Sessions,
		Station:     a.Station,
		Notifier:    a.Notifier,
		DefaultSpot: a.DefaultSpot,
		CronSecret:  cfg.Notify.CronSecret,
		Metrics:     a.Metrics,
		Logger:      log.With().Str("component", "http").Logger(),
	})

	log.Info().Str("spot", a.DefaultSpot.Name).Str("timezone", cfg.Timezone).Msg("marine sessions API starting")
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	log.Info().Msg("stopped")
	return nil
}
