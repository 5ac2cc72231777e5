package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/ngmaloney/marine-sessions/internal/models"
	"github.com/ngmaloney/marine-sessions/internal/notify"
	"github.com/ngmaloney/marine-sessions/internal/spots"
)

type analysisResponse struct {
	models.AnalysisSummary
	Spot        string    `json:"spot"`
	Warnings    []string  `json:"warnings"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type cronResponse struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Result    *notify.Result `json:"result"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSpots(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Spots.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list spots", err)
		return
	}
	if list == nil {
		list = []models.Spot{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	spot, ok := s.spot(w, r)
	if !ok {
		return
	}
	forecast, err := s.deps.Sessions.Forecast(r.Context(), *spot)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to fetch wind forecast", err)
		return
	}
	writeJSON(w, http.StatusOK, forecast)
}

func (s *Server) handleTides(w http.ResponseWriter, r *http.Request) {
	spot, ok := s.spot(w, r)
	if !ok {
		return
	}
	tides, err := s.deps.Sessions.Tides(r.Context(), *spot)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to fetch tide data", err)
		return
	}
	writeJSON(w, http.StatusOK, tides)
}

func (s *Server) handleStation(w http.ResponseWriter, r *http.Request) {
	if s.deps.Station == nil {
		writeError(w, http.StatusServiceUnavailable, "No weather station configured", nil)
		return
	}
	reading, err := s.deps.Station.GetStationReading(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to read weather station", err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (s *Server) handleSessionAnalysis(w http.ResponseWriter, r *http.Request) {
	spot, ok := s.spot(w, r)
	if !ok {
		return
	}
	report, err := s.deps.Sessions.Analyze(r.Context(), *spot)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to analyze sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, analysisResponse{
		AnalysisSummary: report.Summary,
		Spot:            report.Spot.Name,
		Warnings:        report.Warnings,
		GeneratedAt:     report.GeneratedAt,
	})
}

func (s *Server) handleDailyNotification(w http.ResponseWriter, r *http.Request) {
	s.notify(w, r, notify.KindDaily)
}

func (s *Server) handleLiveNotification(w http.ResponseWriter, r *http.Request) {
	s.notify(w, r, notify.KindLive)
}

func (s *Server) notify(w http.ResponseWriter, r *http.Request, kind string) {
	result, ok := s.send(w, r, kind)
	if ok {
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleCronDaily(w http.ResponseWriter, r *http.Request) {
	result, ok := s.send(w, r, notify.KindDaily)
	if !ok {
		return
	}
	message := "Daily notification sent successfully"
	if !result.Sent {
		message = "Daily notification skipped: " + result.Reason
	}
	writeJSON(w, http.StatusOK, cronResponse{
		Success:   true,
		Message:   message,
		Timestamp: s.now().UTC(),
		Result:    result,
	})
}

// send runs one notification kind; on failure the error response is
// already written
func (s *Server) send(w http.ResponseWriter, r *http.Request, kind string) (*notify.Result, bool) {
	if s.deps.Notifier == nil {
		writeError(w, http.StatusServiceUnavailable, "Notifications are not configured", notify.ErrNoSender)
		return nil, false
	}
	spot, ok := s.spot(w, r)
	if !ok {
		return nil, false
	}

	var (
		result *notify.Result
		err    error
	)
	if kind == notify.KindLive {
		result, err = s.deps.Notifier.SendLiveWind(r.Context(), *spot)
	} else {
		result, err = s.deps.Notifier.SendDaily(r.Context(), *spot)
	}

	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, notify.ErrNoSender) || errors.Is(err, notify.ErrNoStation) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, "Failed to send notification", err)
		return nil, false
	}
	return result, true
}

// spot resolves the ?spot= query parameter, falling back to the default
// spot. It writes a 404 when the name is unknown.
func (s *Server) spot(w http.ResponseWriter, r *http.Request) (*models.Spot, bool) {
	name := r.URL.Query().Get("spot")
	spot, err := s.deps.Spots.Resolve(name, s.deps.DefaultSpot)
	if err != nil {
		if errors.Is(err, spots.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Unknown spot", err)
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "Failed to load spot", err)
		return nil, false
	}
	return spot, true
}
