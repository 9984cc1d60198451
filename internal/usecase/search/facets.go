package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bazaarhq/listing-search/internal/db"
	"github.com/bazaarhq/listing-search/internal/domain/listing"
	"github.com/bazaarhq/listing-search/internal/domain/search/filter"
	"github.com/bazaarhq/listing-search/internal/domain/search/result"
)

// Facet value caps per dimension. Zero means no cap.
var facetLimits = map[filter.Dimension]int{
	filter.DimBrand:     20,
	filter.DimModel:     30,
	filter.DimCondition: 0,
	filter.DimCity:      20,
	filter.DimCurrency:  10,
	filter.DimType:      0,
}

// priceBucket is a fixed half-open price interval; hi nil is unbounded.
type priceBucket struct {
	label string
	lo    float64
	hi    *float64
}

func bound(v float64) *float64 { return &v }

var priceBuckets = []priceBucket{
	{"0-50", 0, bound(50)},
	{"50-100", 50, bound(100)},
	{"100-250", 100, bound(250)},
	{"250-500", 250, bound(500)},
	{"500+", 500, nil},
}

// facetSet selects which facets to compute.
type facetSet struct {
	dims    []filter.Dimension
	buckets bool
	stats   bool
}

var (
	basicFacets = facetSet{
		dims:    []filter.Dimension{filter.DimBrand, filter.DimCondition},
		buckets: true,
	}
	allFacets = facetSet{
		dims: []filter.Dimension{
			filter.DimBrand, filter.DimModel, filter.DimCondition,
			filter.DimCity, filter.DimCurrency, filter.DimType,
		},
		buckets: true,
		stats:   true,
	}
)

// computeFacets counts each facet dimension under every active filter except
// that dimension's own. Dimensions run concurrently.
func (s *Service) computeFacets(ctx context.Context, base filter.Predicate, set facetSet) (result.FacetCounts, error) {
	var (
		mu  sync.Mutex
		out = emptyFacets()
	)
	if !set.buckets {
		out.PriceRanges = []result.PriceBucket{}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, dim := range set.dims {
		g.Go(func() error {
			start := time.Now()
			defer s.metrics.observeFacet(string(dim), start)

			values, err := s.dimensionFacet(gctx, dim, base.Without(dim))
			if err != nil {
				return fmt.Errorf("%s facet: %w", dim, err)
			}
			mu.Lock()
			defer mu.Unlock()
			setFacet(&out, dim, values)
			return nil
		})
	}

	if set.buckets {
		withoutPrice := base.Without(filter.DimPrice)
		for i, b := range priceBuckets {
			g.Go(func() error {
				start := time.Now()
				defer s.metrics.observeFacet("price_bucket", start)

				r, err := filter.NewRangeFilter(nil, &b.lo, b.hi, nil)
				if err != nil {
					return err
				}
				n, err := s.store.Count(gctx, withoutPrice.And(filter.NewPriceRange(r)))
				if err != nil {
					return fmt.Errorf("price bucket %s: %w", b.label, err)
				}
				mu.Lock()
				defer mu.Unlock()
				out.PriceRanges[i] = result.PriceBucket{Label: b.label, Min: b.lo, Max: b.hi, Count: n}
				return nil
			})
		}
	}

	if set.stats {
		g.Go(func() error {
			start := time.Now()
			defer s.metrics.observeFacet("price_stats", start)

			st, err := s.store.Aggregate(gctx, base.Without(filter.DimPrice))
			if err != nil {
				return fmt.Errorf("price stats: %w", err)
			}
			mu.Lock()
			defer mu.Unlock()
			out.PriceStats = result.PriceStats{Min: st.Min, Max: st.Max, Avg: st.Avg, Count: st.Count}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result.FacetCounts{}, err
	}
	return out, nil
}

// dimensionFacet groups p by dim and resolves display labels in one batch.
func (s *Service) dimensionFacet(ctx context.Context, dim filter.Dimension, p filter.Predicate) ([]result.FacetValue, error) {
	groups, err := s.store.GroupBy(ctx, dim, p, facetLimits[dim])
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return []result.FacetValue{}, nil
	}

	labels, err := s.facetLabels(ctx, dim, groups)
	if err != nil {
		return nil, err
	}

	out := make([]result.FacetValue, len(groups))
	for i, gc := range groups {
		label, ok := labels[gc.Value]
		if !ok {
			label = result.UnknownLabel
		}
		out[i] = result.FacetValue{Value: gc.Value, Label: label, Count: gc.Count}
	}
	return out, nil
}

func (s *Service) facetLabels(ctx context.Context, dim filter.Dimension, groups []db.GroupCount) (map[string]string, error) {
	ids := make([]string, len(groups))
	for i, gc := range groups {
		ids[i] = gc.Value
	}
	labels := make(map[string]string, len(ids))

	switch dim {
	case filter.DimBrand:
		brands, err := s.catalog.BrandsByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("resolve brands: %w", err)
		}
		for _, b := range brands {
			labels[b.ID] = b.Name
		}
	case filter.DimModel:
		models, err := s.catalog.ModelsByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("resolve models: %w", err)
		}
		for _, m := range models {
			labels[m.ID] = m.Name
		}
	case filter.DimCity:
		cities, err := s.catalog.CitiesByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("resolve cities: %w", err)
		}
		for _, c := range cities {
			labels[c.ID] = c.Name
		}
	case filter.DimCondition:
		for _, id := range ids {
			if c := listing.Condition(id); c.IsValid() {
				labels[id] = c.Label()
			}
		}
	default:
		for _, id := range ids {
			labels[id] = id
		}
	}
	return labels, nil
}

func emptyFacets() result.FacetCounts {
	return result.FacetCounts{
		Brands:      []result.FacetValue{},
		Models:      []result.FacetValue{},
		Conditions:  []result.FacetValue{},
		Cities:      []result.FacetValue{},
		Currencies:  []result.FacetValue{},
		Types:       []result.FacetValue{},
		PriceRanges: make([]result.PriceBucket, len(priceBuckets)),
	}
}

func setFacet(fc *result.FacetCounts, dim filter.Dimension, values []result.FacetValue) {
	switch dim {
	case filter.DimBrand:
		fc.Brands = values
	case filter.DimModel:
		fc.Models = values
	case filter.DimCondition:
		fc.Conditions = values
	case filter.DimCity:
		fc.Cities = values
	case filter.DimCurrency:
		fc.Currencies = values
	case filter.DimType:
		fc.Types = values
	}
}
