// Package metrics holds the Prometheus collectors for outbound API calls,
// store reconciliation and the local HTTP server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ledgerdash",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of backend API requests.",
		},
		[]string{"method", "route", "status"},
	)

	apiDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ledgerdash",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of backend API requests.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"method", "route"},
	)

	fetchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ledgerdash",
			Subsystem: "store",
			Name:      "fetch_failures_total",
			Help:      "Collection fetches that failed and reset the cache.",
		},
		[]string{"collection"},
	)

	staleResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ledgerdash",
			Subsystem: "store",
			Name:      "stale_responses_total",
			Help:      "Fetch responses discarded because a newer fetch or mutation superseded them.",
		},
		[]string{"collection"},
	)

	pollTicks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ledgerdash",
			Subsystem: "poller",
			Name:      "ticks_total",
			Help:      "Total number of polling ticks executed.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ledgerdash",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of local HTTP requests handled.",
		},
		[]string{"method", "status"},
	)
)

func init() {
	Registry.MustRegister(
		apiRequests,
		apiDuration,
		fetchFailures,
		staleResponses,
		pollTicks,
		httpRequests,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveAPIRequest records one backend call. status is 0 for transport failures.
func ObserveAPIRequest(method, route string, status int, elapsed time.Duration) {
	apiRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	apiDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordFetchFailure counts a failed collection fetch.
func RecordFetchFailure(collection string) {
	fetchFailures.WithLabelValues(collection).Inc()
}

// RecordStaleResponse counts a discarded out-of-order fetch response.
func RecordStaleResponse(collection string) {
	staleResponses.WithLabelValues(collection).Inc()
}

// RecordPollTick counts one polling tick.
func RecordPollTick() {
	pollTicks.Inc()
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		httpRequests.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

// WriteHeader records the status code for the request counter.
func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
