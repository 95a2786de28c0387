// Package obs exposes Prometheus metrics for the engine and its HTTP
// surface.
package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_operations_total",
			Help: "Engine operations by name and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	xpAwardedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "engine_xp_awarded_total",
		Help: "Total XP granted, before flooring adjustments.",
	})

	announcementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_announcements_total",
			Help: "Reward announcements enqueued by kind.",
		},
		[]string{"kind"},
	)
)

// Init registers every collector with the default registry. Call once
// at startup.
func Init() {
	prometheus.MustRegister(
		httpInFlight, httpRequestsTotal, httpRequestDuration,
		operationsTotal, xpAwardedTotal, announcementsTotal,
	)
}

// Handler serves the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Operation records one engine operation outcome ("ok" or "error").
func Operation(name string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	operationsTotal.WithLabelValues(name, outcome).Inc()
}

// XPAwarded records granted XP.
func XPAwarded(xp int64) {
	if xp > 0 {
		xpAwardedTotal.Add(float64(xp))
	}
}

// Announcement records one enqueued reward announcement.
func Announcement(kind string) {
	announcementsTotal.WithLabelValues(kind).Inc()
}

// Instrument wraps an HTTP handler with request metrics.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpInFlight.Dec()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
