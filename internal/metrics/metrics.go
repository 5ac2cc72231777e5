// Package metrics defines the prometheus collectors of the service
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors registered on one registry
type Metrics struct {
	registry *prometheus.Registry

	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	DegradedFetches  *prometheus.CounterVec
	AnalysisRuns     *prometheus.CounterVec
	SessionsFound    *prometheus.GaugeVec
	BestScore        *prometheus.GaugeVec
	Notifications    *prometheus.CounterVec
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
}

// New creates the collectors and registers them on registry
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sessions_upstream_requests_total",
			Help: "Total number of provider requests by source and final status.",
		}, []string{"source", "status"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sessions_upstream_request_duration_seconds",
			Help:    "Provider request duration in seconds, retries included.",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		DegradedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sessions_degraded_fetches_total",
			Help: "Analyses that ran with an empty series because a provider failed.",
		}, []string{"series"}),
		AnalysisRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sessions_analysis_runs_total",
			Help: "Total number of session analyses by outcome.",
		}, []string{"outcome"}),
		SessionsFound: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sessions_windows",
			Help: "Sessions produced by the last analysis of a spot.",
		}, []string{"spot"}),
		BestScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sessions_best_score",
			Help: "Highest session score of the last analysis of a spot.",
		}, []string{"spot"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sessions_notifications_total",
			Help: "Notification attempts by kind and status (sent, skipped, failed).",
		}, []string{"kind", "status"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sessions_http_requests_total",
			Help: "Total number of HTTP API requests.",
		}, []string{"route", "method", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sessions_http_request_duration_seconds",
			Help:    "HTTP API request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}

	registry.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.DegradedFetches,
		m.AnalysisRuns,
		m.SessionsFound,
		m.BestScore,
		m.Notifications,
		m.RequestsTotal,
		m.RequestDuration,
	)

	return m
}

// Handler exposes the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveUpstream records one provider call; status 0 means no response
func (m *Metrics) ObserveUpstream(source string, status int, elapsed time.Duration) {
	label := "error"
	if status != 0 {
		label = strconv.Itoa(status)
	}
	m.UpstreamRequests.WithLabelValues(source, label).Inc()
	m.UpstreamDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// ObserveRequest records one HTTP API request
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	s := strconv.Itoa(status)
	m.RequestsTotal.WithLabelValues(route, method, s).Inc()
	m.RequestDuration.WithLabelValues(route, method, s).Observe(elapsed.Seconds())
}
