package meteo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClientRaw(t *testing.T) {
	data, err := os.ReadFile("testdata/clientraw.txt")
	require.NoError(t, err)

	at := time.Date(2025, 6, 11, 14, 5, 0, 0, time.UTC)
	r := ParseClientRaw(string(data), at)

	assert.Equal(t, 14.2, r.WindSpeedKnots)
	assert.Equal(t, 19.8, r.WindGustKnots)
	assert.Equal(t, 262.0, r.WindDirection)
	assert.Equal(t, 18.4, r.Temperature)
	assert.Equal(t, 72.0, r.Humidity)
	assert.Equal(t, 1016.3, r.Pressure)
	assert.Equal(t, 0.4, r.Rainfall)
	assert.Equal(t, 0.0, r.RainfallRate)
	assert.Equal(t, 21.3, r.MaxTemperature)
	assert.Equal(t, 12.9, r.MinTemperature)
	assert.Equal(t, 5.2, r.UVIndex)
	assert.Equal(t, 640.0, r.SolarRadiation)
	assert.Equal(t, "Normal", r.Condition)
	assert.Equal(t, at, r.UpdatedAt)
	assert.InDelta(t, 26.2984, r.WindSpeed(), 1e-9)
}

func TestParseClientRaw_ShortRecord(t *testing.T) {
	r := ParseClientRaw("12345 8.5 x 180 15.0 91", time.Time{})

	assert.Equal(t, 8.5, r.WindSpeedKnots)
	assert.Equal(t, 0.0, r.WindGustKnots)
	assert.Equal(t, 180.0, r.WindDirection)
	assert.Equal(t, 15.0, r.MinTemperature)
	assert.Equal(t, 15.0, r.MaxTemperature)
	assert.Equal(t, "Humide", r.Condition)

	empty := ParseClientRaw("", time.Time{})
	assert.Equal(t, 0.0, empty.WindSpeedKnots)
	assert.Equal(t, "Sec", empty.Condition)
}

func TestClientRawStation_GetStationReading(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wdlchatel/clientraw.txt", r.URL.Path)
		data, err := os.ReadFile("testdata/clientraw.txt")
		require.NoError(t, err)
		w.Write(data)
	}))
	defer server.Close()

	station := NewClientRawStation(server.URL + "/wdlchatel/clientraw.txt")
	reading, err := station.GetStationReading(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 14.2, reading.WindSpeedKnots)
	assert.False(t, reading.UpdatedAt.IsZero())
}

func TestClientRawStation_NotConfigured(t *testing.T) {
	_, err := NewClientRawStation("").GetStationReading(context.Background())
	require.Error(t, err)
}
