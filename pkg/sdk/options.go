package listingsearch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	dsn      string
	seedFile string

	timeout      time.Duration
	defaultLimit int
	nativeGeo    bool
	popularTerms []string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithPostgres reads listings from the Postgres database at dsn.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.dsn = dsn
	})
}

// WithSeedFile reads listings from a YAML seed file into memory.
// Useful for tests and demos; ignored when WithPostgres is set.
func WithSeedFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.seedFile = path
	})
}

// WithSearchTimeout bounds every search call. Default: 5s.
func WithSearchTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithDefaultLimit sets the page size used when a Query has no Limit.
// Default: 20, at most 100.
func WithDefaultLimit(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultLimit = n
	})
}

// WithNativeGeo evaluates radius filters in the database instead of
// expanding them into a city list first.
func WithNativeGeo() Option {
	return optionFunc(func(c *clientConfig) {
		c.nativeGeo = true
	})
}

// WithPopularTerms sets the curated terms offered by Autocomplete.
func WithPopularTerms(terms ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.popularTerms = terms
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
