package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and
// records nothing, so components can be built without monitoring.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Session metrics
	SessionRestores     *prometheus.CounterVec
	SessionSaves        *prometheus.CounterVec
	SessionSyncDuration *prometheus.HistogramVec
	SessionBytes        prometheus.Gauge
	SessionState        *prometheus.GaugeVec

	// Bridge metrics
	PostsForwarded *prometheus.CounterVec
	ClientEvents   *prometheus.CounterVec
	ClientReady    prometheus.Gauge

	// WebSocket metrics
	WSConnections prometheus.Gauge

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time
}

// NewMetrics creates a collector on its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_http_requests_total",
				Help: "Total number of status server requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridge_http_request_duration_seconds",
				Help:    "Status server request duration in seconds",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"method", "path"},
		),

		SessionRestores: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_session_restores_total",
				Help: "Session restore attempts by outcome",
			},
			[]string{"status", "reason"},
		),
		SessionSaves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_session_saves_total",
				Help: "Session save attempts by outcome and trigger",
			},
			[]string{"status", "reason", "trigger"},
		),
		SessionSyncDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridge_session_sync_duration_seconds",
				Help:    "Duration of session restore and save operations",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"op"},
		),
		SessionBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bridge_session_artifact_bytes",
				Help: "Size of the last synced session artifact",
			},
		),
		SessionState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bridge_session_state",
				Help: "Durability state of the session artifact (1 for the current state)",
			},
			[]string{"state"},
		),

		PostsForwarded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_posts_forwarded_total",
				Help: "Inbound posts handled by kind and result",
			},
			[]string{"kind", "status"},
		),
		ClientEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_client_events_total",
				Help: "Chat client lifecycle events by kind",
			},
			[]string{"kind"},
		),
		ClientReady: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bridge_client_ready",
				Help: "1 while the chat client is ready to send",
			},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bridge_ws_connections",
				Help: "Open lifecycle event stream connections",
			},
		),
	}

	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "bridge_uptime_seconds",
			Help: "Process uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordHTTPRequest records a status server request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordRestore records one restore outcome
func (m *Metrics) RecordRestore(status, reason string, size int, duration time.Duration) {
	if m == nil {
		return
	}
	m.SessionRestores.WithLabelValues(status, reason).Inc()
	m.SessionSyncDuration.WithLabelValues("restore").Observe(duration.Seconds())
	if status == "ok" {
		m.SessionBytes.Set(float64(size))
	}
}

// RecordSave records one save outcome
func (m *Metrics) RecordSave(status, reason, trigger string, size int, duration time.Duration) {
	if m == nil {
		return
	}
	m.SessionSaves.WithLabelValues(status, reason, trigger).Inc()
	m.SessionSyncDuration.WithLabelValues("save").Observe(duration.Seconds())
	if status == "ok" {
		m.SessionBytes.Set(float64(size))
	}
}

// SetSessionState marks current as the active durability state
func (m *Metrics) SetSessionState(current string, all []string) {
	if m == nil {
		return
	}
	for _, s := range all {
		v := 0.0
		if s == current {
			v = 1
		}
		m.SessionState.WithLabelValues(s).Set(v)
	}
}

// RecordForward records the handling of one inbound post
func (m *Metrics) RecordForward(kind, status string) {
	if m == nil {
		return
	}
	m.PostsForwarded.WithLabelValues(kind, status).Inc()
}

// RecordClientEvent records a chat client lifecycle event
func (m *Metrics) RecordClientEvent(kind string) {
	if m == nil {
		return
	}
	m.ClientEvents.WithLabelValues(kind).Inc()
}

// SetClientReady sets the readiness gauge
func (m *Metrics) SetClientReady(ready bool) {
	if m == nil {
		return
	}
	if ready {
		m.ClientReady.Set(1)
	} else {
		m.ClientReady.Set(0)
	}
}

// IncWSConnections increments open event stream connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

// DecWSConnections decrements open event stream connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}
