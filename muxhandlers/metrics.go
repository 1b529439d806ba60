package muxhandlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vitalvas/swaggerpage/mux"
)

// MetricsConfig configures the Prometheus middleware.
type MetricsConfig struct {
	// Registerer receives the collectors. Defaults to
	// prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer

	// Namespace prefixes every metric name. Defaults to "swaggerpage".
	Namespace string
}

// httpMetrics holds the RED collectors of one middleware instance.
type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

func newHTTPMetrics(cfg MetricsConfig) *httpMetrics {
	reg := cfg.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = "swaggerpage"
	}

	factory := promauto.With(reg)

	return &httpMetrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		inFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: ns,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
	}
}

// MetricsMiddleware returns a middleware that counts requests by method,
// route template and status, and observes their latency. It panics if the
// collectors are already registered with cfg.Registerer.
func MetricsMiddleware(cfg MetricsConfig) mux.MiddlewareFunc {
	m := newHTTPMetrics(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.inFlight.Inc()
			defer m.inFlight.Dec()

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			route := routeLabel(r)
			m.requests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
			m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}
