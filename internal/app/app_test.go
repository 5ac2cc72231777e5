package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngmaloney/marine-sessions/internal/config"
	"github.com/ngmaloney/marine-sessions/internal/cooldown"
	"github.com/ngmaloney/marine-sessions/internal/meteo"
	"github.com/ngmaloney/marine-sessions/internal/notify"
	"github.com/ngmaloney/marine-sessions/internal/spots"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Timezone: "Europe/Paris",
		DBPath:   filepath.Join(t.TempDir(), "data", "sessions.db"),
		Location: time.FixedZone("CEST", 2*3600),
		Spot: config.SpotConfig{
			Name: "Fouras", Latitude: 45.99, Longitude: -1.1, TideHarbour: "rochefort",
		},
		Forecast: config.ForecastConfig{
			Provider:          "arome",
			AROMEAPIKey:       "k1",
			AROMEBaseURL:      "https://arome.invalid",
			AROMEHorizonHours: 12,
			AROMEStepHours:    3,
			AROMERPS:          4,
			OpenMeteoBaseURL:  "https://open-meteo.invalid",
			OpenMeteoDays:     3,
		},
		Tides:    config.TidesConfig{BaseURL: "https://tides.invalid", Days: 7},
		Telegram: config.TelegramConfig{BaseURL: "https://telegram.invalid"},
		Notify:   config.NotifyConfig{LiveAlertMinKnots: 5},
		Cooldown: config.CooldownConfig{Backend: "sqlite", Hours: 4},
	}
}

func TestNew(t *testing.T) {
	cfg := testConfig(t)

	a, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	require.NotNil(t, a.DefaultSpot)
	assert.NotZero(t, a.DefaultSpot.ID)
	assert.Equal(t, "Fouras", a.DefaultSpot.Name)
	assert.Nil(t, a.Station)

	spot, err := a.ResolveSpot("")
	require.NoError(t, err)
	assert.Equal(t, a.DefaultSpot, spot)

	_, err = a.ResolveSpot("Atlantis")
	assert.ErrorIs(t, err, spots.ErrNotFound)

	// no bot configured
	_, err = a.Notifier.SendDaily(context.Background(), *spot)
	assert.ErrorIs(t, err, notify.ErrNoSender)
}

func TestNew_SeedsOnce(t *testing.T) {
	cfg := testConfig(t)

	a, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	first := a.DefaultSpot.ID
	require.NoError(t, a.Close())

	a, err = New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, first, a.DefaultSpot.ID)
	list, err := a.Spots.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestProvideWindClient(t *testing.T) {
	cfg := testConfig(t)
	m := ProvideMetrics()

	assert.IsType(t, &meteo.AROMEClient{}, ProvideWindClient(cfg, m))

	cfg.Forecast.Provider = "open-meteo"
	assert.IsType(t, &meteo.OpenMeteoClient{}, ProvideWindClient(cfg, m))
}

func TestProvideOptionalClients(t *testing.T) {
	cfg := testConfig(t)
	m := ProvideMetrics()

	assert.Nil(t, ProvideStationClient(cfg, m))
	assert.Nil(t, ProvideSender(cfg, m))

	cfg.Station.URL = "https://station.invalid/clientraw.txt"
	cfg.Telegram.BotToken = "123:abc"
	cfg.Telegram.ChatID = "42"
	assert.IsType(t, &meteo.ClientRawStation{}, ProvideStationClient(cfg, m))
	assert.IsType(t, &notify.TelegramClient{}, ProvideSender(cfg, m))
}

func TestProvideCooldownStore(t *testing.T) {
	cfg := testConfig(t)
	db, err := ProvideDatabase(cfg)
	require.NoError(t, err)
	defer db.Close()

	store, err := ProvideCooldownStore(context.Background(), cfg, db)
	require.NoError(t, err)
	assert.IsType(t, &cooldown.SQLiteStore{}, store)

	cfg.Cooldown.Backend = "redis"
	cfg.Cooldown.RedisAddr = "127.0.0.1:1"
	_, err = ProvideCooldownStore(context.Background(), cfg, db)
	assert.Error(t, err)
}
