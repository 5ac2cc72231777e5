package meteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ngmaloney/marine-sessions/internal/httpx"
	"github.com/ngmaloney/marine-sessions/internal/models"
)

const openMeteoModel = "arome_france_hd"

// OpenMeteoClient implements WindClient with the Open-Meteo Météo-France
// endpoint. It needs no API key.
type OpenMeteoClient struct {
	baseURL  string
	days     int
	location *time.Location
	http     *httpx.Client
}

// NewOpenMeteoClient creates a client returning days of hourly forecast with
// timestamps in loc.
func NewOpenMeteoClient(baseURL string, days int, loc *time.Location, opts ...httpx.Option) *OpenMeteoClient {
	if baseURL == "" {
		baseURL = "https://api.open-meteo.com"
	}
	if days <= 0 {
		days = 3
	}
	if loc == nil {
		loc = time.UTC
	}
	return &OpenMeteoClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		days:     days,
		location: loc,
		http:     httpx.NewClient("open-meteo", 30*time.Second, opts...),
	}
}

type openMeteoResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Hourly    struct {
		Time          []string   `json:"time"`
		WindSpeed     []*float64 `json:"wind_speed_10m"`
		WindGusts     []*float64 `json:"wind_gusts_10m"`
		WindDirection []*float64 `json:"wind_direction_10m"`
	} `json:"hourly"`
}

// GetWindForecast retrieves the hourly AROME HD forecast for lat/lon
func (c *OpenMeteoClient) GetWindForecast(ctx context.Context, lat, lon float64) (*models.WindForecast, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("hourly", "wind_speed_10m,wind_gusts_10m,wind_direction_10m")
	params.Set("models", openMeteoModel)
	params.Set("forecast_days", strconv.Itoa(c.days))
	params.Set("timezone", c.location.String())
	params.Set("wind_speed_unit", "kmh")

	requestURL := fmt.Sprintf("%s/v1/meteofrance?%s", c.baseURL, params.Encode())

	body, err := c.http.Get(ctx, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Open-Meteo forecast: %w", err)
	}

	var resp openMeteoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	forecast := &models.WindForecast{
		Model:     "Open-Meteo " + openMeteoModel,
		Latitude:  resp.Latitude,
		Longitude: resp.Longitude,
		Samples:   make([]models.ForecastSample, 0, len(resp.Hourly.Time)),
		UpdatedAt: time.Now(),
	}

	for i, ts := range resp.Hourly.Time {
		t, err := time.ParseInLocation("2006-01-02T15:04", ts, c.location)
		if err != nil {
			continue // Skip invalid times
		}
		speed := valueAt(resp.Hourly.WindSpeed, i)
		forecast.Samples = append(forecast.Samples, models.ForecastSample{
			Time:          t,
			WindSpeed:     speed,
			WindGust:      max(valueAt(resp.Hourly.WindGusts, i), speed),
			WindDirection: valueAt(resp.Hourly.WindDirection, i),
		})
	}

	return forecast, nil
}

// valueAt treats missing and null entries as zero
func valueAt(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return 0
	}
	return *values[i]
}
