package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ngmaloney/marine-sessions/internal/app"
	"github.com/ngmaloney/marine-sessions/internal/config"
	"github.com/ngmaloney/marine-sessions/internal/logging"
	"github.com/ngmaloney/marine-sessions/internal/ui"
)

func main() {
	spot := flag.String("spot", "", "saved spot to analyse directly")
	flag.Parse()

	if err := run(*spot); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(spot string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// the terminal belongs to the UI; logs go to a file next to the database
	logCfg := logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	if logCfg.Output == "stdout" || logCfg.Output == "stderr" {
		logCfg.Output = filepath.Join(filepath.Dir(cfg.DBPath), "marine-sessions.log")
	}
	log, closer, err := logging.New(logCfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	a, err := app.New(context.Background(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	model := ui.NewModel(ui.Deps{
		Spots:       a.Spots,
		Sessions:    a.Sessions,
		Station:     a.Station,
		Location:    cfg.Location,
		InitialSpot: spot,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}
	return nil
}
