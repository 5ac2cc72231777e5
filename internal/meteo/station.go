package meteo

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ngmaloney/marine-sessions/internal/httpx"
	"github.com/ngmaloney/marine-sessions/internal/models"
)

// clientraw.txt field positions
const (
	rawWindKnots    = 1
	rawGustKnots    = 2
	rawDirection    = 3
	rawTemperature  = 4
	rawHumidity     = 5
	rawPressure     = 6
	rawRainfall     = 7
	rawRainfallRate = 10
	rawMaxTemp      = 46
	rawMinTemp      = 47
	rawUVIndex      = 79
	rawSolar        = 127
)

// ClientRawStation implements StationClient for stations publishing a
// Weather Display clientraw.txt file.
type ClientRawStation struct {
	url  string
	http *httpx.Client
	now  func() time.Time
}

// NewClientRawStation creates a station client for the clientraw.txt at url
func NewClientRawStation(url string, opts ...httpx.Option) *ClientRawStation {
	return &ClientRawStation{
		url:  url,
		http: httpx.NewClient("station", 15*time.Second, opts...),
		now:  time.Now,
	}
}

// GetStationReading downloads and parses the current clientraw.txt
func (s *ClientRawStation) GetStationReading(ctx context.Context) (*models.StationReading, error) {
	if s.url == "" {
		return nil, fmt.Errorf("station URL is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/plain,*/*")
	req.Header.Set("Cache-Control", "no-cache")

	body, err := s.http.ReadBody(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch station data: %w", err)
	}

	return ParseClientRaw(string(body), s.now()), nil
}

// ParseClientRaw maps a space separated clientraw.txt record to a reading.
// Missing or garbled fields read as zero; min and max temperature default to
// the current temperature.
func ParseClientRaw(raw string, at time.Time) *models.StationReading {
	fields := strings.Fields(raw)

	field := func(i int, def float64) float64 {
		if i >= len(fields) {
			return def
		}
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return def
		}
		return v
	}

	temp := field(rawTemperature, 0)
	humidity := field(rawHumidity, 0)

	return &models.StationReading{
		Temperature:    temp,
		MinTemperature: field(rawMinTemp, temp),
		MaxTemperature: field(rawMaxTemp, temp),
		Humidity:       humidity,
		Pressure:       field(rawPressure, 0),
		WindSpeedKnots: field(rawWindKnots, 0),
		WindGustKnots:  field(rawGustKnots, 0),
		WindDirection:  field(rawDirection, 0),
		Rainfall:       field(rawRainfall, 0),
		RainfallRate:   field(rawRainfallRate, 0),
		SolarRadiation: field(rawSolar, 0),
		UVIndex:        field(rawUVIndex, 0),
		Condition:      models.ConditionForHumidity(humidity),
		UpdatedAt:      at,
	}
}
