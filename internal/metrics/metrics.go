package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var histogramBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 300}

// Metrics owns a private registry so several instances (tests) never collide.
type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	actionTotal     *prometheus.CounterVec
	actionDuration  *prometheus.HistogramVec
	slotStatus      *prometheus.GaugeVec
}

// New registers the dashboard collectors plus Go runtime collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dccdev",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dccdev",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   histogramBuckets,
		}, []string{"method", "route"}),
		actionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dccdev",
			Subsystem: "slot",
			Name:      "actions_total",
			Help:      "Slot actions by outcome",
		}, []string{"action", "outcome"}),
		actionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dccdev",
			Subsystem: "slot",
			Name:      "action_duration_seconds",
			Help:      "Wall time of slot actions including subprocesses",
			Buckets:   histogramBuckets,
		}, []string{"action"}),
		slotStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "dccdev",
			Subsystem: "slot",
			Name:      "status",
			Help:      "Last observed server status per slot (-1 unknown, 0 stopped, 1 running)",
		}, []string{"slot"}),
	}
	m.registry.MustRegister(
		m.requestTotal, m.requestDuration,
		m.actionTotal, m.actionDuration, m.slotStatus,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveAction records one slot action; err != nil counts as a failure.
func (m *Metrics) ObserveAction(action string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.actionTotal.WithLabelValues(action, outcome).Inc()
	m.actionDuration.WithLabelValues(action).Observe(time.Since(started).Seconds())
}

// SetSlotStatus records the status value last seen for slotID.
func (m *Metrics) SetSlotStatus(slotID, status int) {
	if m == nil {
		return
	}
	m.slotStatus.WithLabelValues(strconv.Itoa(slotID)).Set(float64(status))
}

// Middleware counts requests by chi route pattern so ids do not explode
// label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &responseRecorder{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(recorder, r)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		m.requestTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (rr *responseRecorder) WriteHeader(code int) {
	rr.status = code
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	if rr.status == 0 {
		rr.status = http.StatusOK
	}
	return rr.ResponseWriter.Write(b)
}

func (rr *responseRecorder) Unwrap() http.ResponseWriter {
	return rr.ResponseWriter
}

// Hijack is required by the websocket upgrader.
func (rr *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rr.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	if rr.status == 0 {
		rr.status = http.StatusSwitchingProtocols
	}
	return h.Hijack()
}
