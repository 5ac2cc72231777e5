package meteo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngmaloney/marine-sessions/internal/httpx"
)

const coverageTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<gmlcov:GridCoverage xmlns:gmlcov="http://www.opengis.net/gmlcov/1.0" xmlns:gml="http://www.opengis.net/gml/3.2">
  <gml:domainSet/>
  <gml:rangeSet>
    <gml:DataBlock>
      <gml:rangeParameters/>
      <gml:tupleList>
        %s
      </gml:tupleList>
    </gml:DataBlock>
  </gml:rangeSet>
</gmlcov:GridCoverage>`

func noSleep(time.Duration) {}

// fakeAROME serves capabilities from testdata and fixed coverage values
type fakeAROME struct {
	mu       sync.Mutex
	keys     map[string]string // forecast time -> apikey used for wind speed
	failTime string            // wind speed at this time answers 500
	subsets  [][]string
}

func (f *fakeAROME) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, aromeWCSPath+"/GetCapabilities"):
			data, err := os.ReadFile("testdata/wcs_capabilities.xml")
			require.NoError(t, err)
			w.Write(data)

		case strings.HasSuffix(r.URL.Path, aromeWCSPath+"/GetCoverage"):
			q := r.URL.Query()
			id := q.Get("coverageid")
			subsets := q["subset"]
			require.Len(t, subsets, 4)
			at := strings.TrimSuffix(strings.TrimPrefix(subsets[0], "time("), ")")

			var value string
			switch {
			case strings.HasPrefix(id, coverageWindSpeed):
				f.mu.Lock()
				f.keys[at] = r.Header.Get("apikey")
				f.subsets = append(f.subsets, subsets)
				f.mu.Unlock()
				if at == f.failTime {
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
				value = "10.0"
			case strings.HasPrefix(id, coverageWindGust):
				value = "8.0" // below speed: clamped
			case strings.HasPrefix(id, coverageWindU):
				value = "-5.0"
			case strings.HasPrefix(id, coverageWindV):
				value = "0.0"
			default:
				w.WriteHeader(http.StatusNotFound)
				return
			}
			assert.True(t, strings.HasSuffix(id, "2025-06-11T06.00.00Z"), id)
			fmt.Fprintf(w, coverageTemplate, value)

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTestAROME(url string, keys ...string) *AROMEClient {
	return NewAROMEClient(AROMEConfig{
		BaseURL:           url,
		APIKeys:           keys,
		HorizonHours:      6,
		StepHours:         3,
		RequestsPerSecond: 1000,
	}, httpx.WithSleepFunc(noSleep), httpx.WithRetryPolicy(httpx.RetryPolicy{MaxRetries: 0}))
}

func TestAROMEClient_GetWindForecast(t *testing.T) {
	fake := &fakeAROME{keys: map[string]string{}}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	client := newTestAROME(server.URL, "key-1", "key-2")

	forecast, err := client.GetWindForecast(context.Background(), 45.99, -1.1)
	require.NoError(t, err)

	run := time.Date(2025, 6, 11, 6, 0, 0, 0, time.UTC)
	assert.Equal(t, run, forecast.Run)
	assert.Equal(t, aromeModelName, forecast.Model)
	require.Len(t, forecast.Samples, 3)

	for i, s := range forecast.Samples {
		assert.True(t, run.Add(time.Duration(3*i)*time.Hour).Equal(s.Time))
		assert.InDelta(t, 36.0, s.WindSpeed, 1e-9)
		assert.InDelta(t, 36.0, s.WindGust, 1e-9)
		assert.InDelta(t, 90.0, s.WindDirection, 1e-9)
	}

	assert.Equal(t, map[string]string{
		"2025-06-11T06:00:00Z": "key-1",
		"2025-06-11T09:00:00Z": "key-2",
		"2025-06-11T12:00:00Z": "key-1",
	}, fake.keys)
	assert.Equal(t, []string{"time(2025-06-11T06:00:00Z)", "lat(45.99)", "long(-1.1)", "height(10)"}, fakeSubsetFor(fake, "time(2025-06-11T06:00:00Z)"))
}

func fakeSubsetFor(f *fakeAROME, first string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subsets {
		if s[0] == first {
			return s
		}
	}
	return nil
}

func TestAROMEClient_SkipsFailedHorizon(t *testing.T) {
	fake := &fakeAROME{keys: map[string]string{}, failTime: "2025-06-11T09:00:00Z"}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	client := newTestAROME(server.URL, "key-1")

	forecast, err := client.GetWindForecast(context.Background(), 45.99, -1.1)
	require.NoError(t, err)
	require.Len(t, forecast.Samples, 2)
	assert.Equal(t, 6, forecast.Samples[0].Time.Hour())
	assert.Equal(t, 12, forecast.Samples[1].Time.Hour())
	for _, key := range fake.keys {
		assert.Equal(t, "key-1", key)
	}
}

func TestAROMEClient_Errors(t *testing.T) {
	t.Run("missing API key", func(t *testing.T) {
		client := newTestAROME("http://127.0.0.1:1")
		_, err := client.GetWindForecast(context.Background(), 45.99, -1.1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key")
	})

	t.Run("capabilities rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		_, err := newTestAROME(server.URL, "bad").GetWindForecast(context.Background(), 45.99, -1.1)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, httpx.StatusCode(err))
	})

	t.Run("no wind runs", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<wcs:Capabilities xmlns:wcs="http://www.opengis.net/wcs/2.0"><wcs:Contents/></wcs:Capabilities>`))
		}))
		defer server.Close()

		_, err := newTestAROME(server.URL, "k").GetWindForecast(context.Background(), 45.99, -1.1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no wind forecast runs")
	})

	t.Run("every horizon fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/GetCapabilities") {
				data, _ := os.ReadFile("testdata/wcs_capabilities.xml")
				w.Write(data)
				return
			}
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		_, err := newTestAROME(server.URL, "k").GetWindForecast(context.Background(), 45.99, -1.1)
		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, httpx.StatusCode(err))
	})
}

func TestNewAROMEClient_Defaults(t *testing.T) {
	client := NewAROMEClient(AROMEConfig{APIKeys: []string{"", "k"}})
	assert.Equal(t, "https://public-api.meteofrance.fr/public/arome/1.0", client.cfg.BaseURL)
	assert.Equal(t, 51, client.cfg.HorizonHours)
	assert.Equal(t, 3, client.cfg.StepHours)
	assert.Equal(t, []string{"k"}, client.cfg.APIKeys)
}

func TestDirectionFromComponents(t *testing.T) {
	tests := []struct {
		name string
		u, v float64
		want float64
	}{
		{"calm", 0, 0, 0},
		{"from west", 5, 0, 270},
		{"from east", -5, 0, 90},
		{"from south", 0, 5, 180},
		{"from north", 0, -5, 0},
		{"from south-west", 3, 3, 225},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DirectionFromComponents(tt.u, tt.v), 1e-9)
		})
	}
}

func TestTupleValue(t *testing.T) {
	v, err := tupleValue([]byte(fmt.Sprintf(coverageTemplate, "7.25 3.1")))
	require.NoError(t, err)
	assert.Equal(t, 7.25, v)

	_, err = tupleValue([]byte(`<root><other>1</other></root>`))
	assert.ErrorIs(t, err, errNoTupleList)

	_, err = tupleValue([]byte(fmt.Sprintf(coverageTemplate, "")))
	assert.ErrorIs(t, err, errNoTupleList)
}

func TestCoverageIDs(t *testing.T) {
	data, err := os.ReadFile("testdata/wcs_capabilities.xml")
	require.NoError(t, err)

	ids, err := coverageIDs(data)
	require.NoError(t, err)
	assert.Len(t, ids, 7)
	assert.Contains(t, ids, "WIND_SPEED__SPECIFIC_HEIGHT_LEVEL_ABOVE_GROUND___2025-06-11T06.00.00Z")
}
