package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngmaloney/marine-sessions/internal/metrics"
	"github.com/ngmaloney/marine-sessions/internal/models"
	"github.com/ngmaloney/marine-sessions/internal/notify"
	"github.com/ngmaloney/marine-sessions/internal/sessions"
	"github.com/ngmaloney/marine-sessions/internal/spots"
)

var (
	fouras = models.Spot{ID: 1, Name: "Fouras", Latitude: 45.98, Longitude: -1.09, TideHarbour: "rochefort"}
	yves   = models.Spot{ID: 2, Name: "Yves", Latitude: 46.04, Longitude: -1.06, TideHarbour: "rochefort"}
)

type fakeSpots struct{}

func (fakeSpots) List() ([]models.Spot, error) {
	return []models.Spot{fouras, yves}, nil
}

func (fakeSpots) Resolve(name string, fallback *models.Spot) (*models.Spot, error) {
	switch strings.ToLower(name) {
	case "":
		return fallback, nil
	case "fouras":
		return &fouras, nil
	case "yves":
		return &yves, nil
	}
	return nil, spots.ErrNotFound
}

type fakeSessions struct {
	err      error
	analyzed []string
}

func (f *fakeSessions) Forecast(ctx context.Context, spot models.Spot) (*models.WindForecast, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.WindForecast{Model: "AROME", Latitude: spot.Latitude, Samples: []models.ForecastSample{{WindSpeed: 30}}}, nil
}

func (f *fakeSessions) Tides(ctx context.Context, spot models.Spot) (*models.TideData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.TideData{Harbour: spot.TideHarbour, Events: []models.TideEvent{{Height: 4.1, Type: models.TideHigh}}}, nil
}

func (f *fakeSessions) Analyze(ctx context.Context, spot models.Spot) (*sessions.Report, error) {
	f.analyzed = append(f.analyzed, spot.Name)
	if f.err != nil {
		return nil, f.err
	}
	best := models.SessionWindow{Date: "11/06/2025", TimeStart: "14:00", Score: 90}
	return &sessions.Report{
		Spot: spot,
		Summary: models.AnalysisSummary{
			AllSessions:  []models.SessionWindow{best},
			BestSessions: []models.SessionWindow{best},
			TomorrowBest: &best,
			Analysis:     models.SessionCounts{TotalWindows: 1, ExcellentSessions: 1},
		},
		Warnings:    []string{"tide table unavailable: boom"},
		GeneratedAt: time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC),
	}, nil
}

type fakeStation struct{ err error }

func (f fakeStation) GetStationReading(ctx context.Context) (*models.StationReading, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.StationReading{WindSpeedKnots: 12, Temperature: 19}, nil
}

type fakeNotifier struct {
	err   error
	calls []string
}

func (f *fakeNotifier) SendDaily(ctx context.Context, spot models.Spot) (*notify.Result, error) {
	f.calls = append(f.calls, "daily:"+spot.Name)
	if f.err != nil {
		return &notify.Result{Kind: notify.KindDaily}, f.err
	}
	return &notify.Result{Kind: notify.KindDaily, Sent: true, Reason: notify.ReasonSent, Message: "digest"}, nil
}

func (f *fakeNotifier) SendLiveWind(ctx context.Context, spot models.Spot) (*notify.Result, error) {
	f.calls = append(f.calls, "live:"+spot.Name)
	if f.err != nil {
		return &notify.Result{Kind: notify.KindLive}, f.err
	}
	return &notify.Result{Kind: notify.KindLive, Reason: notify.ReasonWindTooLow}, nil
}

type fixture struct {
	sessions *fakeSessions
	notifier *fakeNotifier
	metrics  *metrics.Metrics
	handler  http.Handler
}

func newFixture(t *testing.T, mutate ...func(*Deps)) *fixture {
	t.Helper()
	f := &fixture{
		sessions: &fakeSessions{},
		notifier: &fakeNotifier{},
		metrics:  metrics.New(prometheus.NewRegistry()),
	}
	deps := Deps{
		Spots:       fakeSpots{},
		Sessions:    f.sessions,
		Station:     fakeStation{},
		Notifier:    f.notifier,
		DefaultSpot: &fouras,
		CronSecret:  "s3cret",
		Metrics:     f.metrics,
		Logger:      zerolog.Nop(),
	}
	for _, m := range mutate {
		m(&deps)
	}
	f.handler = New(Config{Addr: ":0"}, deps).Handler()
	return f
}

func (f *fixture) do(method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestSpots(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/spots", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []models.Spot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "Yves", list[1].Name)
}

func TestSessionAnalysis(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/session-analysis?spot=yves", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode(t, rec)
	assert.Equal(t, "Yves", body["spot"])
	assert.Len(t, body["allSessions"], 1)
	assert.Len(t, body["bestSessions"], 1)
	assert.Equal(t, 90.0, body["tomorrowBest"].(map[string]any)["score"])
	assert.Equal(t, 1.0, body["analysis"].(map[string]any)["excellentSessions"])
	assert.Equal(t, []any{"tide table unavailable: boom"}, body["warnings"])
	assert.Equal(t, []string{"Yves"}, f.sessions.analyzed)
}

func TestSessionAnalysis_DefaultSpot(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/session-analysis", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Fouras"}, f.sessions.analyzed)
}

func TestSessionAnalysis_Errors(t *testing.T) {
	t.Run("unknown spot", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodGet, "/api/session-analysis?spot=Atlantis", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Unknown spot", decode(t, rec)["error"])
	})

	t.Run("upstream failure", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.err = errors.New("both sources down")
		rec := f.do(http.MethodGet, "/api/session-analysis", nil)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "Failed to analyze sessions", body["error"])
		assert.Equal(t, "both sources down", body["details"])
	})
}

func TestForecastAndTides(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/forecast?spot=Fouras", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "AROME", body["model"])
	assert.Len(t, body["forecasts"], 1)

	rec = f.do(http.MethodGet, "/api/tides", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, "rochefort", body["location"])
	assert.Len(t, body["tideEvents"], 1)

	f.sessions.err = errors.New("timeout")
	assert.Equal(t, http.StatusBadGateway, f.do(http.MethodGet, "/api/forecast", nil).Code)
	assert.Equal(t, http.StatusBadGateway, f.do(http.MethodGet, "/api/tides", nil).Code)
}

func TestStation(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/station", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 12.0, decode(t, rec)["windSpeedKnots"])

	f = newFixture(t, func(d *Deps) { d.Station = nil })
	assert.Equal(t, http.StatusServiceUnavailable, f.do(http.MethodGet, "/api/station", nil).Code)

	f = newFixture(t, func(d *Deps) { d.Station = fakeStation{err: errors.New("refused")} })
	assert.Equal(t, http.StatusBadGateway, f.do(http.MethodGet, "/api/station", nil).Code)
}

func TestNotifications(t *testing.T) {
	f := newFixture(t)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		rec := f.do(method, "/api/notifications/daily?spot=yves", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decode(t, rec)["sent"])
	}

	rec := f.do(http.MethodPost, "/api/notifications/live", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["sent"])
	assert.Equal(t, notify.ReasonWindTooLow, body["reason"])

	assert.Equal(t, []string{"daily:Yves", "daily:Yves", "live:Fouras"}, f.notifier.calls)
}

func TestNotifications_Errors(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("telegram API error: chat not found")
	rec := f.do(http.MethodPost, "/api/notifications/daily", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Failed to send notification", body["error"])
	assert.Equal(t, "telegram API error: chat not found", body["details"])

	f.notifier.err = fmt.Errorf("wrapped: %w", notify.ErrNoStation)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(http.MethodPost, "/api/notifications/live", nil).Code)

	f = newFixture(t, func(d *Deps) { d.Notifier = nil })
	assert.Equal(t, http.StatusServiceUnavailable, f.do(http.MethodPost, "/api/notifications/daily", nil).Code)
}

func TestCronDailyNotification(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		header string
		status int
	}{
		{"valid bearer", "s3cret", "Bearer s3cret", http.StatusOK},
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"wrong secret", "s3cret", "Bearer nope", http.StatusUnauthorized},
		{"no secret configured", "", "Bearer ", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, func(d *Deps) { d.CronSecret = tt.secret })
			header := http.Header{}
			if tt.header != "" {
				header.Set("Authorization", tt.header)
			}

			rec := f.do(http.MethodGet, "/api/cron/daily-notification", header)
			assert.Equal(t, tt.status, rec.Code)

			body := decode(t, rec)
			if tt.status == http.StatusUnauthorized {
				assert.Equal(t, "Unauthorized", body["error"])
				assert.Empty(t, f.notifier.calls)
				return
			}
			assert.Equal(t, true, body["success"])
			assert.Equal(t, "Daily notification sent successfully", body["message"])
			assert.Equal(t, []string{"daily:Fouras"}, f.notifier.calls)
		})
	}
}

func TestMetricsEndpointAndMiddleware(t *testing.T) {
	f := newFixture(t)

	f.do(http.MethodGet, "/api/spots", nil)
	f.do(http.MethodGet, "/api/session-analysis?spot=Atlantis", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RequestsTotal.WithLabelValues("/api/spots", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RequestsTotal.WithLabelValues("/api/session-analysis", "GET", "404")))

	rec := f.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sessions_http_requests_total")
}
