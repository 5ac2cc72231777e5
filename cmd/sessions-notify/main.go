// Command sessions-notify sends one notification and exits, for use from
// cron or a scheduled job.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ngmaloney/marine-sessions/internal/app"
	"github.com/ngmaloney/marine-sessions/internal/config"
	"github.com/ngmaloney/marine-sessions/internal/logging"
	"github.com/ngmaloney/marine-sessions/internal/notify"
)

func main() {
	kind := flag.String("kind", notify.KindDaily, "notification to send: daily or live")
	spot := flag.String("spot", "", "saved spot (default: the configured spot)")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline")
	flag.Parse()

	if err := run(*kind, *spot, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(kind, spotName string, timeout time.Duration) error {
	if kind != notify.KindDaily && kind != notify.KindLive {
		return fmt.Errorf("unknown -kind %q, want daily or live", kind)
	}

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
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	spot, err := a.ResolveSpot(spotName)
	if err != nil {
		return err
	}

	var result *notify.Result
	if kind == notify.KindLive {
		result, err = a.Notifier.SendLiveWind(ctx, *spot)
	} else {
		result, err = a.Notifier.SendDaily(ctx, *spot)
	}
	if err != nil {
		return fmt.Errorf("%s notification for %s: %w", kind, spot.Name, err)
	}

	log.Info().
		Str("kind", kind).
		Str("spot", spot.Name).
		Bool("sent", result.Sent).
		Str("reason", result.Reason).
		Msg("notification finished")
	return nil
}
