package search

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GeoStrategy selects how a coordinate radius filter is evaluated.
type GeoStrategy string

// Geo strategies.
const (
	// GeoResolve expands the radius into a city id set in-process.
	GeoResolve GeoStrategy = "resolve"
	// GeoNative hands the radius to the store as a native distance clause.
	GeoNative GeoStrategy = "native"
)

// Defaults.
const (
	DefaultTimeout         = 5 * time.Second
	DefaultSourceLimit     = 5
	DefaultSuggestionLimit = 10
	MinAutocompleteLength  = 2
)

// Config tunes the search service.
type Config struct {
	Timeout         time.Duration
	DefaultLimit    int
	GeoStrategy     GeoStrategy
	PopularTerms    []string
	SourceLimit     int
	SuggestionLimit int
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.GeoStrategy == "" {
		c.GeoStrategy = GeoResolve
	}
	if c.SourceLimit <= 0 {
		c.SourceLimit = DefaultSourceLimit
	}
	if c.SuggestionLimit <= 0 {
		c.SuggestionLimit = DefaultSuggestionLimit
	}
	return c
}

// Metrics are optional instruments; nil fields are skipped.
type Metrics struct {
	// SearchDuration has label "operation".
	SearchDuration *prometheus.HistogramVec
	// FacetDuration has label "dimension".
	FacetDuration *prometheus.HistogramVec
	// SourceErrors has label "source".
	SourceErrors *prometheus.CounterVec
}

func (m Metrics) observeSearch(op string, start time.Time) {
	if m.SearchDuration != nil {
		m.SearchDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}

func (m Metrics) observeFacet(dim string, start time.Time) {
	if m.FacetDuration != nil {
		m.FacetDuration.WithLabelValues(dim).Observe(time.Since(start).Seconds())
	}
}

func (m Metrics) incSourceError(source string) {
	if m.SourceErrors != nil {
		m.SourceErrors.WithLabelValues(source).Inc()
	}
}
