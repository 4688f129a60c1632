package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "haloframe",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Requests served by the control endpoint, by chi route",
		},
		[]string{"route", "method", "code"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "haloframe",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Time to serve a control endpoint request",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1},
		},
		[]string{"route"},
	)

	// Readiness answers seen by callers. A run that keeps answering loading
	// is stuck in preload.
	readinessChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "haloframe",
			Subsystem: "http",
			Name:      "readiness_checks_total",
			Help:      "Answers given on /readyz",
		},
		[]string{"result"},
	)

	statusReads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "haloframe",
			Subsystem: "http",
			Name:      "status_reads_total",
			Help:      "Status snapshots served, by orchestrator stage",
		},
		[]string{"stage"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, readinessChecks, statusReads)
}

func observeReadiness(ready bool) {
	result := "loading"
	if ready {
		result = "ready"
	}
	readinessChecks.WithLabelValues(result).Inc()
}

func observeStatus(stage string) {
	if stage == "" {
		stage = "unknown"
	}
	statusReads.WithLabelValues(stage).Inc()
}

// instrument counts requests once chi has resolved the route, so unmatched
// paths collapse into a single "unmatched" series.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		route := routeOf(r)
		requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(statusOf(ww))).Inc()
		requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func routeOf(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// statusOf reports 200 for handlers that wrote a body without a header.
func statusOf(ww middleware.WrapResponseWriter) int {
	if s := ww.Status(); s != 0 {
		return s
	}
	return http.StatusOK
}
