// Package metrics provides Prometheus metrics for the insights-llm-api
// service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Custom registry to avoid the default Go collectors.
var registry = prometheus.NewRegistry()

var (
	// HTTPRequests counts served requests by route pattern and status.
	HTTPRequests = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "insights_llm",
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by route and status code.",
	}, []string{"route", "status"})

	// CacheOutcomes counts single-flight compute cache resolutions.
	// Outcomes: hit (filled entry found), computed (this caller owned the
	// claim), raced (another caller's committed result returned), aborted
	// (owner failed, pending row rolled back).
	CacheOutcomes = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "insights_llm",
		Name:      "compute_cache_total",
		Help:      "Single-flight compute cache outcomes, by cache and outcome.",
	}, []string{"cache", "outcome"})
)

// Handler exposes the metrics registry over HTTP.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
