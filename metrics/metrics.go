// Package metrics exposes playback counters to Prometheus.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters and gauges of one player.
type Metrics struct {
	registry *prometheus.Registry

	retriesTotal        prometheus.Counter
	terminalErrorsTotal prometheus.Counter
	drmErrorsTotal      prometheus.Counter
	attachesTotal       *prometheus.CounterVec
	reloadsTotal        *prometheus.CounterVec
	stallNudgesTotal    prometheus.Counter
	castSessionsTotal   prometheus.Counter
	castMessagesTotal   *prometheus.CounterVec
	casting             prometheus.Gauge
}

// New creates and registers the metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		retriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vidplay_retries_total",
			Help: "Soft reloads triggered by the retry policy",
		}),
		terminalErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vidplay_terminal_errors_total",
			Help: "Errors that arrived after the retry budget was exhausted",
		}),
		drmErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vidplay_drm_errors_total",
			Help: "Errors reported by DRM-protected playback",
		}),
		attachesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vidplay_engine_attaches_total",
			Help: "Engine attach attempts by engine and result",
		}, []string{"engine", "result"}),
		reloadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vidplay_reloads_total",
			Help: "Reloads by mode (soft or hard)",
		}, []string{"mode"}),
		stallNudgesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vidplay_stall_nudges_total",
			Help: "Playhead nudges performed by stall recovery",
		}),
		castSessionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vidplay_cast_sessions_total",
			Help: "Cast sessions that reached the connected state",
		}),
		castMessagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vidplay_cast_messages_total",
			Help: "Cast protocol messages by direction and type",
		}, []string{"direction", "type"}),
		casting: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vidplay_casting",
			Help: "1 while playback is handed off to a receiver",
		}),
	}

	registry.MustRegister(
		m.retriesTotal,
		m.terminalErrorsTotal,
		m.drmErrorsTotal,
		m.attachesTotal,
		m.reloadsTotal,
		m.stallNudgesTotal,
		m.castSessionsTotal,
		m.castMessagesTotal,
		m.casting,
	)

	return m
}

// IncRetries counts a soft reload requested by the retry policy.
func (m *Metrics) IncRetries() {
	if m != nil {
		m.retriesTotal.Inc()
	}
}

// IncTerminalErrors counts an error that found the retry budget exhausted.
func (m *Metrics) IncTerminalErrors() {
	if m != nil {
		m.terminalErrorsTotal.Inc()
	}
}

// IncDRMErrors counts an error on DRM-protected content.
func (m *Metrics) IncDRMErrors() {
	if m != nil {
		m.drmErrorsTotal.Inc()
	}
}

// ObserveAttach counts an attach attempt.
func (m *Metrics) ObserveAttach(engine string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.attachesTotal.WithLabelValues(engine, result).Inc()
}

// IncReloads counts a reload; mode is "soft" or "hard".
func (m *Metrics) IncReloads(mode string) {
	if m != nil {
		m.reloadsTotal.WithLabelValues(mode).Inc()
	}
}

func (m *Metrics) IncStallNudges() {
	if m != nil {
		m.stallNudgesTotal.Inc()
	}
}

func (m *Metrics) IncCastSessions() {
	if m != nil {
		m.castSessionsTotal.Inc()
	}
}

// IncCastMessages counts a protocol message; direction is "in" or "out".
func (m *Metrics) IncCastMessages(direction, typ string) {
	if m != nil {
		m.castMessagesTotal.WithLabelValues(direction, typ).Inc()
	}
}

// SetCasting flips the casting gauge.
func (m *Metrics) SetCasting(on bool) {
	if m == nil {
		return
	}
	if on {
		m.casting.Set(1)
	} else {
		m.casting.Set(0)
	}
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler that serves the metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
