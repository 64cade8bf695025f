// Package metrics exposes Prometheus counters for compliance evaluations and
// HTTP traffic. Collectors are package-level so any layer can record to them;
// Register must be called once at startup to expose them.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	evaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journey_evaluations_total",
			Help: "Journey evaluations by resulting compliance status.",
		},
		[]string{"status"},
	)
	anomalies = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "interval_anomalies_total",
			Help: "Unmatched or unrecognised events tolerated during interval reconstruction.",
		},
	)
	reports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compliance_reports_total",
			Help: "Compliance reports built, by scope (driver or fleet).",
		},
		[]string{"scope"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Register adds every collector to reg. Pass prometheus.DefaultRegisterer in main.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(evaluations, anomalies, reports, httpRequests, httpLatency)
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveEvaluation counts one journey evaluation and the anomalies it tolerated.
func ObserveEvaluation(status string, anomalyCount int) {
	evaluations.WithLabelValues(status).Inc()
	if anomalyCount > 0 {
		anomalies.Add(float64(anomalyCount))
	}
}

// ObserveReport counts one report build.
func ObserveReport(fleetWide bool) {
	scope := "driver"
	if fleetWide {
		scope = "fleet"
	}
	reports.WithLabelValues(scope).Inc()
}

// Instrument records request count and latency per chi route pattern rather
// than raw path, so ids in the URL do not explode label cardinality.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpLatency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
