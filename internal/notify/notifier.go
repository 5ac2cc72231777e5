package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ngmaloney/marine-sessions/internal/cooldown"
	"github.com/ngmaloney/marine-sessions/internal/meteo"
	"github.com/ngmaloney/marine-sessions/internal/metrics"
	"github.com/ngmaloney/marine-sessions/internal/models"
	"github.com/ngmaloney/marine-sessions/internal/sessions"
)

// Notification kinds
const (
	KindDaily = "daily"
	KindLive  = "live"
)

// Reasons a notification was not sent
const (
	ReasonCooldown   = "cooldown"
	ReasonWindTooLow = "wind too low"
	ReasonSent       = "sent"
	DefaultMinKnots  = 5.0
)

var (
	// ErrNoSender is returned when no Telegram bot is configured
	ErrNoSender = errors.New("telegram is not configured")
	// ErrNoStation is returned by live alerts without a weather station
	ErrNoStation = errors.New("no weather station configured")
)

// Analyzer produces the session report a daily digest is built from
type Analyzer interface {
	Analyze(ctx context.Context, spot models.Spot) (*sessions.Report, error)
}

// Result describes the outcome of one notification attempt
type Result struct {
	Kind    string                  `json:"kind"`
	Sent    bool                    `json:"sent"`
	Reason  string                  `json:"reason"`
	Message string                  `json:"message,omitempty"`
	Summary *models.AnalysisSummary `json:"sessionAnalysis,omitempty"`
	Reading *models.StationReading  `json:"reading,omitempty"`
}

// Notifier sends daily digests and live wind alerts, at most once per
// cooldown period for each kind and spot.
type Notifier struct {
	analyzer Analyzer
	station  meteo.StationClient
	sender   Sender
	store    cooldown.Store
	appURL   string
	minKnots float64
	metrics  *metrics.Metrics
	log      zerolog.Logger
	now      func() time.Time
}

// Option configures a Notifier
type Option func(*Notifier)

// WithAppURL links the app at the bottom of daily digests
func WithAppURL(url string) Option {
	return func(n *Notifier) { n.appURL = url }
}

// WithLiveThreshold sets the wind, in knots, a live alert must exceed
func WithLiveThreshold(knots float64) Option {
	return func(n *Notifier) { n.minKnots = knots }
}

// WithMetrics counts notifications
func WithMetrics(m *metrics.Metrics) Option {
	return func(n *Notifier) { n.metrics = m }
}

// WithLogger sets the logger
func WithLogger(log zerolog.Logger) Option {
	return func(n *Notifier) { n.log = log }
}

// WithClock sets the clock used for cooldown bookkeeping
func WithClock(now func() time.Time) Option {
	return func(n *Notifier) {
		if now != nil {
			n.now = now
		}
	}
}

// NewNotifier creates a Notifier. station may be nil when live alerts are
// not used.
func NewNotifier(analyzer Analyzer, station meteo.StationClient, sender Sender, store cooldown.Store, opts ...Option) *Notifier {
	n := &Notifier{
		analyzer: analyzer,
		station:  station,
		sender:   sender,
		store:    store,
		minKnots: DefaultMinKnots,
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SendDaily analyses spot and sends the digest
func (n *Notifier) SendDaily(ctx context.Context, spot models.Spot) (*Result, error) {
	result := &Result{Kind: KindDaily}
	key := cooldownKey(KindDaily, spot)

	if sent, err := n.held(ctx, key, result); err != nil || !sent {
		return result, err
	}

	report, err := n.analyzer.Analyze(ctx, spot)
	if err != nil {
		n.count(KindDaily, "failed")
		return result, err
	}
	result.Summary = &report.Summary
	result.Message = FormatDailyMessage(report.Summary, n.appURL)

	return result, n.deliver(ctx, key, result)
}

// SendLiveWind reads the station and alerts when the measured wind is
// above the live threshold
func (n *Notifier) SendLiveWind(ctx context.Context, spot models.Spot) (*Result, error) {
	result := &Result{Kind: KindLive}
	if n.station == nil {
		return result, ErrNoStation
	}
	key := cooldownKey(KindLive, spot)

	if sent, err := n.held(ctx, key, result); err != nil || !sent {
		return result, err
	}

	reading, err := n.station.GetStationReading(ctx)
	if err != nil {
		n.count(KindLive, "failed")
		return result, fmt.Errorf("failed to read station: %w", err)
	}
	result.Reading = reading

	if reading.WindSpeedKnots <= n.minKnots {
		result.Reason = ReasonWindTooLow
		n.count(KindLive, "skipped")
		n.log.Debug().Float64("knots", reading.WindSpeedKnots).Msg("live wind below threshold")
		return result, nil
	}
	result.Message = FormatLiveWindMessage(spot.Name, reading)

	return result, n.deliver(ctx, key, result)
}

// held checks the sender and the cooldown; it returns false when the
// notification must not go out
func (n *Notifier) held(ctx context.Context, key string, result *Result) (bool, error) {
	if n.sender == nil {
		n.count(result.Kind, "failed")
		return false, ErrNoSender
	}
	ok, err := n.store.Allow(ctx, key, n.now())
	if err != nil {
		n.count(result.Kind, "failed")
		return false, fmt.Errorf("failed to check cooldown: %w", err)
	}
	if !ok {
		result.Reason = ReasonCooldown
		n.count(result.Kind, "skipped")
		n.log.Info().Str("key", key).Msg("notification held back by cooldown")
		return false, nil
	}
	return true, nil
}

func (n *Notifier) deliver(ctx context.Context, key string, result *Result) error {
	if err := n.sender.SendMessage(ctx, result.Message); err != nil {
		n.count(result.Kind, "failed")
		return err
	}
	result.Sent = true
	result.Reason = ReasonSent
	n.count(result.Kind, "sent")

	// the message is out; a bookkeeping failure only risks a duplicate
	if err := n.store.MarkSent(ctx, key, n.now()); err != nil {
		n.log.Error().Err(err).Str("key", key).Msg("failed to record notification")
	}
	n.log.Info().Str("key", key).Msg("notification sent")
	return nil
}

func (n *Notifier) count(kind, status string) {
	if n.metrics != nil {
		n.metrics.Notifications.WithLabelValues(kind, status).Inc()
	}
}

func cooldownKey(kind string, spot models.Spot) string {
	return kind + ":" + spot.Name
}
