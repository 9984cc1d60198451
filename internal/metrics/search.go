package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "listing_search"

// Search Prometheus metrics.
var (
	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Search operation duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	FacetDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "facet_dimension_duration_seconds",
			Help:      "Facet computation duration per dimension in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"dimension"},
	)

	AutocompleteSourceErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "autocomplete_source_errors_total",
			Help:      "Autocomplete sources that failed and were skipped",
		},
		[]string{"source"},
	)

	CityCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "city_cache_total",
			Help:      "City cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	CityCacheWriteErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "city_cache_write_errors_total",
			Help:      "Failed background city cache upserts",
		},
	)

	GeocoderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocoder_requests_total",
			Help:      "Total number of external geocoder requests",
		},
		[]string{"status"}, // "success" / "error"
	)

	GeocoderRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocoder_request_duration_seconds",
			Help:      "External geocoder request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

var registerSearchOnce sync.Once

// RegisterSearchMetrics registers search, cache and geocoder metrics on the
// default registry. Later calls are no-ops.
func RegisterSearchMetrics() {
	registerSearchOnce.Do(func() {
		prometheus.MustRegister(
			SearchDuration,
			FacetDuration,
			AutocompleteSourceErrors,
			CityCacheTotal,
			CityCacheWriteErrors,
			GeocoderRequestsTotal,
			GeocoderRequestDuration,
		)
	})
}
