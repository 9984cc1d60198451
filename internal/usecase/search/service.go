package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bazaarhq/listing-search/internal/domain"
	"github.com/bazaarhq/listing-search/internal/domain/search/request"
	"github.com/bazaarhq/listing-search/internal/domain/search/result"
)

// Service is the query orchestrator for listing search.
type Service struct {
	store   ListingStore
	catalog Catalog
	cfg     Config
	metrics Metrics
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

// New creates a search service.
func New(store ListingStore, catalog Catalog, cfg Config, metrics Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:   store,
		catalog: catalog,
		cfg:     cfg.withDefaults(),
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

// DefaultLimit is the page size used when a request omits one.
func (s *Service) DefaultLimit() int { return s.cfg.DefaultLimit }

// BasicResult is the response of a basic listing search.
type BasicResult struct {
	Page   result.Page
	Facets result.FacetCounts
	// Suggestions is nil without a query.
	Suggestions *result.Suggestions
}

// AdvancedResult is the response of an advanced or geo search.
type AdvancedResult struct {
	SearchID       string
	Page           result.Page
	Aggregations   result.FacetCounts
	Duration       time.Duration
	AppliedFilters int
}

// Basic runs a listing search with brand, condition and price facets, plus
// suggestions when a query is present.
func (s *Service) Basic(ctx context.Context, req *request.Request) (BasicResult, error) {
	start := time.Now()
	defer s.metrics.observeSearch("basic", start)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	b, err := s.buildPredicate(ctx, req.Filters(), s.now())
	if err != nil {
		return BasicResult{}, deadline(err)
	}
	orders, err := orderFor(req.Sort(), b.origin)
	if err != nil {
		return BasicResult{}, err
	}

	var out BasicResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := s.fetchPage(gctx, b.predicate, orders, req)
		out.Page = page
		return err
	})
	g.Go(func() error {
		facets, err := s.computeFacets(gctx, b.predicate, basicFacets)
		out.Facets = facets
		return err
	})
	if q := req.Filters().Query; q != "" {
		g.Go(func() error {
			sg := s.autocomplete(gctx, q, nil)
			out.Suggestions = &sg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BasicResult{}, deadline(err)
	}
	return out, nil
}

// Advanced runs a search over the full filter set and returns every facet
// with search metadata.
func (s *Service) Advanced(ctx context.Context, req *request.Request) (AdvancedResult, error) {
	start := time.Now()
	defer s.metrics.observeSearch("advanced", start)
	return s.advanced(ctx, req, start)
}

// Geo runs an advanced search that requires a radius filter.
func (s *Service) Geo(ctx context.Context, req *request.Request) (AdvancedResult, error) {
	start := time.Now()
	defer s.metrics.observeSearch("geo", start)

	if req.Filters().Geo == nil {
		return AdvancedResult{}, domain.NewValidationError("geo", "location and radius are required")
	}
	return s.advanced(ctx, req, start)
}

func (s *Service) advanced(ctx context.Context, req *request.Request, start time.Time) (AdvancedResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	b, err := s.buildPredicate(ctx, req.Filters(), s.now())
	if err != nil {
		return AdvancedResult{}, deadline(err)
	}
	orders, err := orderFor(req.Sort(), b.origin)
	if err != nil {
		return AdvancedResult{}, err
	}

	out := AdvancedResult{
		SearchID:       s.newID(),
		AppliedFilters: req.Filters().AppliedCount(),
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := s.fetchPage(gctx, b.predicate, orders, req)
		out.Page = page
		return err
	})
	g.Go(func() error {
		facets, err := s.computeFacets(gctx, b.predicate, allFacets)
		out.Aggregations = facets
		return err
	})
	if err := g.Wait(); err != nil {
		return AdvancedResult{}, deadline(err)
	}

	out.Duration = time.Since(start)
	return out, nil
}

// Facets computes every facet without fetching listings.
func (s *Service) Facets(ctx context.Context, f request.Filters) (result.FacetCounts, error) {
	start := time.Now()
	defer s.metrics.observeSearch("facets", start)

	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return result.FacetCounts{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	b, err := s.buildPredicate(ctx, f, s.now())
	if err != nil {
		return result.FacetCounts{}, deadline(err)
	}
	facets, err := s.computeFacets(ctx, b.predicate, allFacets)
	if err != nil {
		return result.FacetCounts{}, deadline(err)
	}
	return facets, nil
}

// deadline maps an expired request deadline to domain.ErrTimeout.
func deadline(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	}
	return err
}
