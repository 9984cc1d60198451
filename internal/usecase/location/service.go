// Package location serves city autocomplete from the local cache, falling
// back to the external geocoder when the cache knows too few matches.
package location

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/bazaarhq/listing-search/internal/domain/listing"
	"github.com/bazaarhq/listing-search/internal/logger"
)

// Defaults.
const (
	DefaultLimit          = 10
	MaxLimit              = 50
	DefaultLocalThreshold = 3
	DefaultWriteTimeout   = 2 * time.Second
	MinQueryLength        = 2
)

// Source tells where autocomplete results came from.
type Source string

// Result sources.
const (
	SourceLocal    Source = "local"
	SourceExternal Source = "external"
	SourceMixed    Source = "mixed"
)

// Config tunes city autocomplete.
type Config struct {
	Limit          int
	LocalThreshold int
	WriteTimeout   time.Duration
}

func (c Config) withDefaults() Config {
	if c.Limit <= 0 || c.Limit > MaxLimit {
		c.Limit = DefaultLimit
	}
	if c.LocalThreshold <= 0 {
		c.LocalThreshold = DefaultLocalThreshold
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	return c
}

// Result is one city autocomplete response.
type Result struct {
	Cities []listing.CachedCity
	Source Source
}

// Service is the city autocomplete use case.
type Service struct {
	cache       Cache
	geocoder    Geocoder
	cfg         Config
	writeErrors prometheus.Counter
	logger      *zap.Logger
	pending     sync.WaitGroup
}

// New creates a Service. cache and geocoder may each be nil when disabled.
// writeErrors counts failed background upserts and may be nil.
func New(cache Cache, geocoder Geocoder, cfg Config, writeErrors prometheus.Counter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cache:       cache,
		geocoder:    geocoder,
		cfg:         cfg.withDefaults(),
		writeErrors: writeErrors,
		logger:      logger,
	}
}

// Autocomplete returns up to limit cities whose name starts with q.
// limit <= 0 means the configured default. Cache and geocoder failures
// degrade to whatever the other side returned; newly seen external cities
// are written to the cache in the background.
func (s *Service) Autocomplete(ctx context.Context, q string, limit int) Result {
	q = strings.TrimSpace(q)
	if limit <= 0 {
		limit = s.cfg.Limit
	}
	limit = min(limit, MaxLimit)

	if len([]rune(q)) < MinQueryLength {
		return Result{Cities: []listing.CachedCity{}, Source: SourceLocal}
	}
	log := logger.FromContext(ctx, s.logger)

	var local []listing.CachedCity
	if s.cache != nil {
		cities, err := s.cache.Search(ctx, q, limit)
		if err != nil {
			log.Warn("City cache lookup failed", zap.String("query", q), zap.Error(err))
		} else {
			local = cities
		}
	}

	if len(local) >= s.cfg.LocalThreshold || s.geocoder == nil {
		return Result{Cities: capCities(local, limit), Source: SourceLocal}
	}

	external, err := s.geocoder.SearchCities(ctx, q, limit)
	if err != nil {
		log.Warn("Geocoder lookup failed, serving local results",
			zap.String("query", q), zap.Int("local", len(local)), zap.Error(err))
		return Result{Cities: capCities(local, limit), Source: SourceLocal}
	}

	merged, fresh := merge(local, external)
	s.store(ctx, fresh)

	source := SourceMixed
	switch {
	case len(fresh) == 0:
		source = SourceLocal
	case len(local) == 0:
		source = SourceExternal
	}
	return Result{Cities: capCities(merged, limit), Source: source}
}

// Drain blocks until background cache writes finish or ctx ends.
func (s *Service) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// store upserts each city independently on a context detached from the
// request, so a finished request does not cancel the writes.
func (s *Service) store(ctx context.Context, cities []listing.CachedCity) {
	if s.cache == nil || len(cities) == 0 {
		return
	}
	log := logger.FromContext(ctx, s.logger)
	detached := context.WithoutCancel(ctx)

	for _, c := range cities {
		s.pending.Add(1)
		go func() {
			defer s.pending.Done()
			wctx, cancel := context.WithTimeout(detached, s.cfg.WriteTimeout)
			defer cancel()

			if err := s.cache.Upsert(wctx, c); err != nil {
				if s.writeErrors != nil {
					s.writeErrors.Inc()
				}
				log.Warn("Failed to cache city",
					zap.String("external_id", c.ExternalID), zap.String("name", c.Name), zap.Error(err))
			}
		}()
	}
}

// merge appends external cities not already present locally, deduplicating
// by external id. fresh holds the external cities new to the cache.
func merge(local, external []listing.CachedCity) (merged, fresh []listing.CachedCity) {
	seen := make(map[string]bool, len(local)+len(external))
	merged = make([]listing.CachedCity, 0, len(local)+len(external))
	for _, c := range local {
		if seen[c.ExternalID] {
			continue
		}
		seen[c.ExternalID] = true
		merged = append(merged, c)
	}
	for _, c := range external {
		if c.ExternalID == "" || seen[c.ExternalID] {
			continue
		}
		seen[c.ExternalID] = true
		merged = append(merged, c)
		fresh = append(fresh, c)
	}
	return merged, fresh
}

func capCities(cs []listing.CachedCity, limit int) []listing.CachedCity {
	if cs == nil {
		return []listing.CachedCity{}
	}
	if len(cs) > limit {
		return cs[:limit]
	}
	return cs
}
