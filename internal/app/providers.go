package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ngmaloney/marine-sessions/internal/config"
	"github.com/ngmaloney/marine-sessions/internal/cooldown"
	"github.com/ngmaloney/marine-sessions/internal/database"
	"github.com/ngmaloney/marine-sessions/internal/httpx"
	"github.com/ngmaloney/marine-sessions/internal/meteo"
	"github.com/ngmaloney/marine-sessions/internal/metrics"
	"github.com/ngmaloney/marine-sessions/internal/models"
	"github.com/ngmaloney/marine-sessions/internal/notify"
	"github.com/ngmaloney/marine-sessions/internal/scoring"
	"github.com/ngmaloney/marine-sessions/internal/spots"
)

const userAgent = "marine-sessions/1.0"

// ProvideMetrics creates the metrics set on a fresh registry with the Go
// runtime and process collectors.
func ProvideMetrics() *metrics.Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return metrics.New(registry)
}

// ProvideDatabase opens the SQLite database
func ProvideDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	return db, nil
}

// ProvideDefaultSpot seeds the configured spot and returns its stored form
func ProvideDefaultSpot(repo *spots.Repository, cfg *config.Config) (*models.Spot, error) {
	spot, err := repo.EnsureDefault(models.Spot{
		Name:        cfg.Spot.Name,
		Latitude:    cfg.Spot.Latitude,
		Longitude:   cfg.Spot.Longitude,
		TideHarbour: cfg.Spot.TideHarbour,
	})
	if err != nil {
		return nil, fmt.Errorf("default spot: %w", err)
	}
	return spot, nil
}

func httpOptions(m *metrics.Metrics) []httpx.Option {
	return []httpx.Option{httpx.WithObserver(m), httpx.WithUserAgent(userAgent)}
}

// ProvideWindClient creates the configured forecast provider
func ProvideWindClient(cfg *config.Config, m *metrics.Metrics) meteo.WindClient {
	if cfg.Forecast.Provider == "open-meteo" {
		return meteo.NewOpenMeteoClient(cfg.Forecast.OpenMeteoBaseURL, cfg.Forecast.OpenMeteoDays, cfg.Location, httpOptions(m)...)
	}

	arome := meteo.DefaultAROMEConfig()
	arome.BaseURL = cfg.Forecast.AROMEBaseURL
	arome.APIKeys = cfg.Forecast.APIKeys()
	arome.HorizonHours = cfg.Forecast.AROMEHorizonHours
	arome.StepHours = cfg.Forecast.AROMEStepHours
	arome.RequestsPerSecond = cfg.Forecast.AROMERPS
	return meteo.NewAROMEClient(arome, httpOptions(m)...)
}

// ProvideTideClient creates the tide table client
func ProvideTideClient(cfg *config.Config, m *metrics.Metrics) meteo.TideClient {
	return meteo.NewRochefortTideClient(cfg.Tides.BaseURL, cfg.Tides.Username, cfg.Tides.Password, cfg.Location, httpOptions(m)...)
}

// ProvideStationClient creates the live station client, or nil when no
// station is configured
func ProvideStationClient(cfg *config.Config, m *metrics.Metrics) meteo.StationClient {
	if cfg.Station.URL == "" {
		return nil
	}
	return meteo.NewClientRawStation(cfg.Station.URL, httpOptions(m)...)
}

// ProvideEngine creates the scoring engine in the configured timezone
func ProvideEngine(cfg *config.Config) *scoring.Engine {
	return scoring.NewEngine(scoring.WithLocation(cfg.Location))
}

// ProvideCooldownStore creates the configured cooldown backend
func ProvideCooldownStore(ctx context.Context, cfg *config.Config, db *sql.DB) (cooldown.Store, error) {
	period := cfg.Cooldown.Period()
	if cfg.Cooldown.Backend == "redis" {
		store, err := cooldown.NewRedisStore(ctx, cooldown.RedisOptions{
			Addr:     cfg.Cooldown.RedisAddr,
			Password: cfg.Cooldown.RedisPassword,
			DB:       cfg.Cooldown.RedisDB,
		}, period)
		if err != nil {
			return nil, fmt.Errorf("cooldown: %w", err)
		}
		return store, nil
	}
	return cooldown.NewSQLiteStore(db, period), nil
}

// ProvideSender creates the Telegram sender, or nil when no bot is configured
func ProvideSender(cfg *config.Config, m *metrics.Metrics) notify.Sender {
	if !cfg.Telegram.Enabled() {
		return nil
	}
	return notify.NewTelegramClient(cfg.Telegram.BaseURL, cfg.Telegram.BotToken, cfg.Telegram.ChatID, httpOptions(m)...)
}
