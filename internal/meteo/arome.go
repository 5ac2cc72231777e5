package meteo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ngmaloney/marine-sessions/internal/httpx"
	"github.com/ngmaloney/marine-sessions/internal/models"
)

const (
	aromeWCSPath   = "/wcs/MF-NWP-HIGHRES-AROME-001-FRANCE-WCS"
	aromeModelName = "AROME 1.3 km"

	coverageWindSpeed = "WIND_SPEED__SPECIFIC_HEIGHT_LEVEL_ABOVE_GROUND___"
	coverageWindGust  = "WIND_SPEED_GUST__SPECIFIC_HEIGHT_LEVEL_ABOVE_GROUND___"
	coverageWindU     = "U_COMPONENT_OF_WIND__SPECIFIC_HEIGHT_LEVEL_ABOVE_GROUND___"
	coverageWindV     = "V_COMPONENT_OF_WIND__SPECIFIC_HEIGHT_LEVEL_ABOVE_GROUND___"

	// run ids look like 2025-06-11T06.00.00Z
	runIDLayout = "2006-01-02T15.04.05Z"
	// 1 m/s in km/h
	msToKmh = 3.6
)

// AROMEConfig configures the Météo-France AROME WCS client
type AROMEConfig struct {
	BaseURL           string
	APIKeys           []string // requests alternate between keys per horizon
	HorizonHours      int
	StepHours         int
	RequestsPerSecond float64
	Concurrency       int
}

// DefaultAROMEConfig returns the public endpoint with a 51 hour horizon
// sampled every 3 hours.
func DefaultAROMEConfig() AROMEConfig {
	return AROMEConfig{
		BaseURL:           "https://public-api.meteofrance.fr/public/arome/1.0",
		HorizonHours:      51,
		StepHours:         3,
		RequestsPerSecond: 8,
		Concurrency:       4,
	}
}

// AROMEClient implements WindClient on top of the AROME WCS service
type AROMEClient struct {
	cfg     AROMEConfig
	http    *httpx.Client
	limiter *rate.Limiter
}

// NewAROMEClient creates an AROME client. Zero fields of cfg fall back to
// DefaultAROMEConfig.
func NewAROMEClient(cfg AROMEConfig, opts ...httpx.Option) *AROMEClient {
	def := DefaultAROMEConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.HorizonHours <= 0 {
		cfg.HorizonHours = def.HorizonHours
	}
	if cfg.StepHours <= 0 {
		cfg.StepHours = def.StepHours
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = def.RequestsPerSecond
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	keys := make([]string, 0, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		if k != "" {
			keys = append(keys, k)
		}
	}
	cfg.APIKeys = keys

	return &AROMEClient{
		cfg:     cfg,
		http:    httpx.NewClient("arome", 30*time.Second, opts...),
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}
}

// GetWindForecast fetches the latest AROME run for a point. Horizons that
// fail are skipped; an error is returned only when capabilities cannot be
// read or no horizon could be fetched.
func (c *AROMEClient) GetWindForecast(ctx context.Context, lat, lon float64) (*models.WindForecast, error) {
	if len(c.cfg.APIKeys) == 0 {
		return nil, errors.New("AROME API key is not configured")
	}

	runID, err := c.latestRun(ctx)
	if err != nil {
		return nil, err
	}
	runTime, err := time.Parse(runIDLayout, runID)
	if err != nil {
		return nil, fmt.Errorf("invalid AROME run id %q: %w", runID, err)
	}

	horizons := make([]int, 0, c.cfg.HorizonHours/c.cfg.StepHours+1)
	for h := 0; h <= c.cfg.HorizonHours; h += c.cfg.StepHours {
		horizons = append(horizons, h)
	}

	samples := make([]*models.ForecastSample, len(horizons))
	var (
		mu       sync.Mutex
		firstErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)
	for i, h := range horizons {
		g.Go(func() error {
			at := runTime.Add(time.Duration(h) * time.Hour)
			s, err := c.fetchHorizon(gctx, runID, at, lat, lon, c.apiKey(i))
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("horizon +%dh: %w", h, err)
				}
				mu.Unlock()
				return nil
			}
			samples[i] = s
			return nil
		})
	}
	_ = g.Wait()

	forecast := &models.WindForecast{
		Model:     aromeModelName,
		Run:       runTime,
		Latitude:  lat,
		Longitude: lon,
		Samples:   make([]models.ForecastSample, 0, len(horizons)),
		UpdatedAt: time.Now(),
	}
	for _, s := range samples {
		if s != nil {
			forecast.Samples = append(forecast.Samples, *s)
		}
	}

	if len(forecast.Samples) == 0 && firstErr != nil {
		return nil, fmt.Errorf("failed to fetch AROME forecast: %w", firstErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return forecast, nil
}

func (c *AROMEClient) apiKey(i int) string {
	return c.cfg.APIKeys[i%len(c.cfg.APIKeys)]
}

// latestRun returns the most recent run id advertised for wind speed
func (c *AROMEClient) latestRun(ctx context.Context) (string, error) {
	params := url.Values{}
	params.Set("service", "WCS")
	params.Set("version", "2.0.1")

	body, err := c.get(ctx, "GetCapabilities", params, c.cfg.APIKeys[0])
	if err != nil {
		return "", fmt.Errorf("failed to fetch capabilities: %w", err)
	}

	ids, err := coverageIDs(body)
	if err != nil {
		return "", err
	}

	var runs []string
	for _, id := range ids {
		run, ok := strings.CutPrefix(id, coverageWindSpeed)
		if !ok {
			continue
		}
		if _, err := time.Parse(runIDLayout, run); err == nil {
			runs = append(runs, run)
		}
	}
	if len(runs) == 0 {
		return "", errors.New("no wind forecast runs found")
	}

	// ids sort chronologically as strings
	sort.Strings(runs)
	return runs[len(runs)-1], nil
}

// fetchHorizon reads speed, gust and the U/V components for one forecast
// time. Only the speed is required; a sample with no wind is dropped.
func (c *AROMEClient) fetchHorizon(ctx context.Context, runID string, at time.Time, lat, lon float64, key string) (*models.ForecastSample, error) {
	speed, err := c.coverageValue(ctx, coverageWindSpeed+runID, at, lat, lon, key)
	if err != nil {
		return nil, fmt.Errorf("wind speed: %w", err)
	}
	speed *= msToKmh
	if speed <= 0 {
		return nil, errors.New("no wind speed value")
	}

	gust, _ := c.coverageValue(ctx, coverageWindGust+runID, at, lat, lon, key)
	u, _ := c.coverageValue(ctx, coverageWindU+runID, at, lat, lon, key)
	v, _ := c.coverageValue(ctx, coverageWindV+runID, at, lat, lon, key)

	return &models.ForecastSample{
		Time:          at,
		WindSpeed:     speed,
		WindGust:      math.Max(gust*msToKmh, speed),
		WindDirection: DirectionFromComponents(u, v),
	}, nil
}

func (c *AROMEClient) coverageValue(ctx context.Context, coverageID string, at time.Time, lat, lon float64, key string) (float64, error) {
	params := url.Values{}
	params.Set("service", "WCS")
	params.Set("version", "2.0.1")
	params.Set("coverageid", coverageID)
	params.Add("subset", "time("+at.UTC().Format(time.RFC3339)+")")
	params.Add("subset", "lat("+strconv.FormatFloat(lat, 'f', -1, 64)+")")
	params.Add("subset", "long("+strconv.FormatFloat(lon, 'f', -1, 64)+")")
	params.Add("subset", "height(10)")
	params.Set("format", "application/wmo-grib")

	body, err := c.get(ctx, "GetCoverage", params, key)
	if err != nil {
		return 0, err
	}
	return tupleValue(body)
}

func (c *AROMEClient) get(ctx context.Context, op string, params url.Values, key string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	requestURL := fmt.Sprintf("%s%s/%s?%s", c.cfg.BaseURL, aromeWCSPath, op, params.Encode())
	return c.http.Get(ctx, requestURL, http.Header{"apikey": []string{key}})
}

// DirectionFromComponents converts U/V wind components to the meteorological
// bearing the wind blows from, in [0,360). Calm air maps to 0.
func DirectionFromComponents(u, v float64) float64 {
	if u == 0 && v == 0 {
		return 0
	}
	dir := math.Mod(270-math.Atan2(v, u)*180/math.Pi, 360)
	if dir < 0 {
		dir += 360
	}
	return dir
}
