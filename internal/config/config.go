// Package config loads the process configuration from the environment.
//
// Values come from the OS environment, then an optional .env file in the
// working directory. Nested sections read their variables by tag name, so
// SPOT_NAME rather than SPOT_SPOT_NAME.
package config

import "time"

// Config is the top-level configuration shared by every command
type Config struct {
	Timezone string `envconfig:"TIMEZONE" default:"Europe/Paris" validate:"required"`
	DBPath   string `envconfig:"DB_PATH" default:"data/marine-sessions.db" validate:"required"`

	Spot     SpotConfig
	Forecast ForecastConfig
	Tides    TidesConfig
	Station  StationConfig
	Telegram TelegramConfig
	Notify   NotifyConfig
	Cooldown CooldownConfig
	Server   ServerConfig
	Log      LogConfig

	// Location is Timezone resolved by Load
	Location *time.Location `ignored:"true" validate:"-"`
}

// SpotConfig is the default sailing spot, seeded into the spots table
type SpotConfig struct {
	Name        string  `envconfig:"SPOT_NAME" default:"Fouras" validate:"required"`
	Latitude    float64 `envconfig:"SPOT_LAT" default:"45.99" validate:"min=-90,max=90"`
	Longitude   float64 `envconfig:"SPOT_LON" default:"-1.1" validate:"min=-180,max=180"`
	TideHarbour string  `envconfig:"SPOT_TIDE_HARBOUR" default:"rochefort" validate:"required"`
}

// ForecastConfig selects and configures the wind forecast provider
type ForecastConfig struct {
	Provider string `envconfig:"FORECAST_PROVIDER" default:"arome" validate:"oneof=arome open-meteo"`

	AROMEAPIKey       string  `envconfig:"AROME_API_KEY"`
	AROMEAPIKey2      string  `envconfig:"AROME_API_KEY_2"`
	AROMEBaseURL      string  `envconfig:"AROME_BASE_URL" default:"https://public-api.meteofrance.fr/public/arome/1.0" validate:"required,url"`
	AROMEHorizonHours int     `envconfig:"AROME_HORIZON_HOURS" default:"51" validate:"min=1,max=51"`
	AROMEStepHours    int     `envconfig:"AROME_STEP_HOURS" default:"3" validate:"min=1,max=24"`
	AROMERPS          float64 `envconfig:"AROME_RPS" default:"8" validate:"gt=0"`

	OpenMeteoBaseURL string `envconfig:"OPEN_METEO_BASE_URL" default:"https://api.open-meteo.com" validate:"required,url"`
	OpenMeteoDays    int    `envconfig:"OPEN_METEO_DAYS" default:"3" validate:"min=1,max=16"`
}

// APIKeys returns the configured AROME keys, primary first
func (f ForecastConfig) APIKeys() []string {
	keys := []string{f.AROMEAPIKey}
	if f.AROMEAPIKey2 != "" {
		keys = append(keys, f.AROMEAPIKey2)
	}
	return keys
}

// TidesConfig configures the tide table provider
type TidesConfig struct {
	BaseURL  string `envconfig:"TIDES_BASE_URL" default:"https://www.rochefort-ocean.com" validate:"required,url"`
	Username string `envconfig:"TIDES_USERNAME"`
	Password string `envconfig:"TIDES_PASSWORD"`
	Days     int    `envconfig:"TIDES_DAYS" default:"7" validate:"min=1,max=31"`
}

// StationConfig points at the live weather station
type StationConfig struct {
	URL string `envconfig:"STATION_URL" default:"https://www.meteolarochelle.fr/wdlchatel/clientraw.txt" validate:"omitempty,url"`
}

// TelegramConfig holds the bot used for notifications
type TelegramConfig struct {
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	ChatID   string `envconfig:"TELEGRAM_CHAT_ID"`
	BaseURL  string `envconfig:"TELEGRAM_BASE_URL" default:"https://api.telegram.org" validate:"required,url"`
}

// Enabled reports whether both the token and the chat are set
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// NotifyConfig tunes the notification flows
type NotifyConfig struct {
	AppURL            string  `envconfig:"APP_URL" validate:"omitempty,url"`
	CronSecret        string  `envconfig:"CRON_SECRET"`
	LiveAlertMinKnots float64 `envconfig:"LIVE_ALERT_MIN_KNOTS" default:"5" validate:"min=0"`
}

// CooldownConfig selects where sent notifications are remembered
type CooldownConfig struct {
	Backend       string `envconfig:"COOLDOWN_BACKEND" default:"sqlite" validate:"oneof=sqlite redis"`
	Hours         int    `envconfig:"COOLDOWN_HOURS" default:"4" validate:"min=0,max=168"`
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0" validate:"min=0"`
}

// Period returns the cooldown as a duration
func (c CooldownConfig) Period() time.Duration {
	return time.Duration(c.Hours) * time.Hour
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr            string        `envconfig:"HTTP_ADDR" default:":8080" validate:"required"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"90s"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

// LogConfig configures the zerolog logger
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error"`
	Format string `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json console"`
	Output string `envconfig:"LOG_OUTPUT" default:"stdout" validate:"required"`
}
