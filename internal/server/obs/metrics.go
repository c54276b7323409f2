// Package obs holds the server's Prometheus metrics. They live in a private
// registry so tests and multiple servers in one process never collide.
package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is scraped by Handler.
var Registry = prometheus.NewRegistry()

var (
	// AuthVerifications counts bearer token checks by result: "ok" or a
	// rejection reason such as "expired".
	AuthVerifications = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_verifications_total",
			Help: "Bearer token verifications by result.",
		},
		[]string{"result"},
	)

	// AuthLogins counts signin attempts by result: ok, rejected, error.
	AuthLogins = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Signin attempts by result.",
		},
		[]string{"result"},
	)

	httpRequestsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves Registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one finished request. route is the mux pattern, not
// the raw path, to keep label cardinality bounded.
func ObserveHTTP(method, route string, status int, d time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
