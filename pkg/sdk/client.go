package listingsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bazaarhq/listing-search/internal/db/memory"
	dbPostgres "github.com/bazaarhq/listing-search/internal/db/postgres"
	"github.com/bazaarhq/listing-search/internal/domain/search/request"
	"github.com/bazaarhq/listing-search/internal/domain/search/result"
	healthuc "github.com/bazaarhq/listing-search/internal/usecase/health"
	searchuc "github.com/bazaarhq/listing-search/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces for substitution in tests.
type searchUseCase interface {
	Basic(ctx context.Context, req *request.Request) (searchuc.BasicResult, error)
	Advanced(ctx context.Context, req *request.Request) (searchuc.AdvancedResult, error)
	Geo(ctx context.Context, req *request.Request) (searchuc.AdvancedResult, error)
	Facets(ctx context.Context, f request.Filters) (result.FacetCounts, error)
	Autocomplete(ctx context.Context, q string, brandIDs []string) (result.Suggestions, error)
	DefaultLimit() int
}

// listingsDB is a listings source: the search store, its catalog and a ping.
type listingsDB interface {
	searchuc.ListingStore
	searchuc.Catalog
	healthuc.DBPinger
}

// Client is the listing search SDK entry point.
type Client struct {
	store     listingsDB
	closer    func()
	searchSvc searchUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client over the configured listings source.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	store, closer, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		closer()
		return nil, err
	}
	return wireClient(store, closer, cfg, obs), nil
}

func openStore(ctx context.Context, cfg *clientConfig) (listingsDB, func(), error) {
	switch {
	case cfg.dsn != "":
		s, err := dbPostgres.NewStore(dbPostgres.Config{DSN: cfg.dsn})
		if err != nil {
			return nil, nil, fmt.Errorf("listingsearch: create postgres store: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, nil, fmt.Errorf("listingsearch: database not ready: %w", err)
		}
		return s, s.Close, nil
	case cfg.seedFile != "":
		s, err := memory.Load(cfg.seedFile)
		if err != nil {
			return nil, nil, fmt.Errorf("listingsearch: %w", err)
		}
		return s, func() {}, nil
	default:
		return nil, nil, errors.New("listingsearch: listings source required (use WithPostgres or WithSeedFile)")
	}
}

func wireClient(store listingsDB, closer func(), cfg *clientConfig, obs *observer) *Client {
	geoStrategy := searchuc.GeoResolve
	if cfg.nativeGeo {
		geoStrategy = searchuc.GeoNative
	}
	// SDK operations are observed through slog; the engine itself stays quiet.
	searchSvc := searchuc.New(store, store, searchuc.Config{
		Timeout:      cfg.timeout,
		DefaultLimit: cfg.defaultLimit,
		GeoStrategy:  geoStrategy,
		PopularTerms: cfg.popularTerms,
	}, searchuc.Metrics{}, zap.NewNop())

	return &Client{
		store:     store,
		closer:    closer,
		searchSvc: searchSvc,
		healthSvc: healthuc.New(store, nil),
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
