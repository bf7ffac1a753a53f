// Package metrics registers the Prometheus metrics emitted by the template
// engine, HTTP execution pipeline, and exchange store. Import this package
// (via blank import, or directly for a custom registerer) from the process
// entry point before scraping /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RendersTotal counts completed template renders labelled by outcome
	// ("ok", "error") and whether the render streamed its result.
	RendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slumberlib_renders_total",
			Help: "Total number of template renders performed.",
		},
		[]string{"status", "streamed"},
	)

	// RenderDuration observes how long a full render group takes.
	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "slumberlib_render_duration_seconds",
			Help:    "Render group duration in seconds.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"status"},
	)

	// FieldCacheEvents counts field cache hits/misses/waits within render
	// groups.
	FieldCacheEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slumberlib_field_cache_events_total",
			Help: "Field cache outcomes during template rendering.",
		},
		[]string{"outcome"},
	)

	// FunctionCallsTotal counts template function invocations by name and
	// outcome.
	FunctionCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slumberlib_function_calls_total",
			Help: "Total template function invocations.",
		},
		[]string{"function", "status"},
	)

	// RequestsTotal counts HTTP requests built by the engine, labelled by
	// method and final state ("response", "request_error", "build_error",
	// "cancelled").
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slumberlib_requests_total",
			Help: "Total HTTP requests executed by the engine.",
		},
		[]string{"method", "state"},
	)

	// RequestDuration observes end-to-end request latency in seconds, from
	// build start to response (or error).
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "slumberlib_request_duration_seconds",
			Help:    "End-to-end HTTP request duration in seconds.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method"},
	)

	// StoreOperations counts exchange store operations by kind and outcome.
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slumberlib_store_operations_total",
			Help: "Total exchange store operations.",
		},
		[]string{"operation", "status"},
	)
)
