// Package metrics exposes Prometheus collectors for the blog server.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	blogResponsesTotal         *prometheus.CounterVec
	blogTreeNodes              prometheus.Gauge
	blogTreeBytes              *prometheus.GaugeVec
	blogBuildInfo              *prometheus.GaugeVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"method", "route"},
		)

		blogResponsesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blog_responses_total",
				Help: "Total number of resolved content requests, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		blogTreeNodes = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "blog_tree_nodes",
				Help: "Number of addressable nodes in the content tree.",
			},
		)

		blogTreeBytes = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "blog_tree_bytes",
				Help: "Total payload bytes held by the content tree, labeled by encoding.",
			},
			[]string{"encoding"},
		)

		blogBuildInfo = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "blog_build_info",
				Help: "Always 1, labeled by the running build version.",
			},
			[]string{"version"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveResponse counts one resolved content request.
func ObserveResponse(outcome string) {
	blogResponsesTotal.WithLabelValues(outcome).Inc()
}

// SetTreeSize records the size of the built content tree.
func SetTreeSize(nodes, plainBytes, compressedBytes int) {
	blogTreeNodes.Set(float64(nodes))
	blogTreeBytes.WithLabelValues("identity").Set(float64(plainBytes))
	blogTreeBytes.WithLabelValues("deflate").Set(float64(compressedBytes))
}

// SetBuildInfo publishes the running build version.
func SetBuildInfo(version string) {
	blogBuildInfo.WithLabelValues(version).Set(1)
}
