package meteo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ngmaloney/marine-sessions/internal/httpx"
	"github.com/ngmaloney/marine-sessions/internal/models"
)

// RochefortTideClient implements TideClient using the Rochefort Océan tide
// table API, which serves the Charente estuary harbours.
type RochefortTideClient struct {
	baseURL  string
	username string
	password string
	location *time.Location
	http     *httpx.Client
}

// NewRochefortTideClient creates a tide client. Event times are interpreted
// in loc, the harbour's local time.
func NewRochefortTideClient(baseURL, username, password string, loc *time.Location, opts ...httpx.Option) *RochefortTideClient {
	if baseURL == "" {
		baseURL = "https://www.rochefort-ocean.com"
	}
	if loc == nil {
		loc = time.UTC
	}
	return &RochefortTideClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		location: loc,
		http:     httpx.NewClient("tides", 30*time.Second, opts...),
	}
}

type tideResponse struct {
	Data []tideDay `json:"data"`
}

// tideDay holds the morning and evening high (pm) and low (bm) waters
type tideDay struct {
	Date        string    `json:"date"`
	PMMatin     string    `json:"pm_matin"`
	PMMatinHaut flexFloat `json:"pm_matin_haut"`
	PMSoir      string    `json:"pm_soir"`
	PMSoirHaut  flexFloat `json:"pm_soir_haut"`
	BMMatin     string    `json:"bm_matin"`
	BMMatinHaut flexFloat `json:"bm_matin_haut"`
	BMSoir      string    `json:"bm_soir"`
	BMSoirHaut  flexFloat `json:"bm_soir_haut"`
}

// flexFloat accepts a JSON number, a numeric string or null
type flexFloat struct {
	Value float64
	Valid bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil // unparseable height: leave invalid
		}
		f.Value, f.Valid = v, true
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	f.Value, f.Valid = v, true
	return nil
}

// GetTideEvents retrieves tide extrema for a harbour between two dates
func (c *RochefortTideClient) GetTideEvents(ctx context.Context, harbour string, from, to time.Time) (*models.TideData, error) {
	params := url.Values{}
	params.Set("fromDate", from.In(c.location).Format("02-01-2006"))
	params.Set("endDate", to.In(c.location).Format("02-01-2006"))

	requestURL := fmt.Sprintf("%s/api/content/tides/%s?%s", c.baseURL, url.PathEscape(harbour), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9,en;q=0.8")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	body, err := c.http.ReadBody(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tide data: %w", err)
	}

	var resp tideResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	tideData := &models.TideData{
		Harbour:   harbour,
		Events:    make([]models.TideEvent, 0, len(resp.Data)*4),
		UpdatedAt: time.Now(),
	}

	for _, day := range resp.Data {
		date, ok := c.parseDay(day.Date)
		if !ok {
			continue
		}
		for _, slot := range []struct {
			clock  string
			height flexFloat
			kind   models.TideType
		}{
			{day.PMMatin, day.PMMatinHaut, models.TideHigh},
			{day.PMSoir, day.PMSoirHaut, models.TideHigh},
			{day.BMMatin, day.BMMatinHaut, models.TideLow},
			{day.BMSoir, day.BMSoirHaut, models.TideLow},
		} {
			if ev, ok := c.event(date, slot.clock, slot.height, slot.kind); ok {
				tideData.Events = append(tideData.Events, ev)
			}
		}
	}

	sort.SliceStable(tideData.Events, func(i, j int) bool {
		return tideData.Events[i].Time.Before(tideData.Events[j].Time)
	})

	return tideData, nil
}

// parseDay accepts "2006-01-02" optionally followed by a time part
func (c *RochefortTideClient) parseDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 10 {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation("2006-01-02", s[:10], c.location)
	if err != nil {
		d, err = time.ParseInLocation("02/01/2006", s[:10], c.location)
		if err != nil {
			return time.Time{}, false
		}
	}
	return d, true
}

func (c *RochefortTideClient) event(date time.Time, clock string, height flexFloat, kind models.TideType) (models.TideEvent, bool) {
	clock = strings.TrimSpace(clock)
	if clock == "" || !height.Valid {
		return models.TideEvent{}, false
	}
	hh, mm, ok := strings.Cut(clock, ":")
	if !ok {
		return models.TideEvent{}, false
	}
	if len(mm) > 2 {
		mm = mm[:2] // drop seconds
	}
	hour, err1 := strconv.Atoi(hh)
	minute, err2 := strconv.Atoi(mm)
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return models.TideEvent{}, false
	}

	return models.TideEvent{
		Time:   time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, c.location),
		Height: height.Value,
		Type:   kind,
	}, true
}
