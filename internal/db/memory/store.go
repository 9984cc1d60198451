// Package memory is an in-process ListingStore and Catalog. It evaluates
// predicates directly and backs tests and local development.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/bazaarhq/listing-search/internal/db"
	"github.com/bazaarhq/listing-search/internal/domain/geo"
	"github.com/bazaarhq/listing-search/internal/domain/listing"
	"github.com/bazaarhq/listing-search/internal/domain/search/filter"
)

// Compile-time checks.
var (
	_ db.ListingStore = (*Store)(nil)
	_ db.Catalog      = (*Store)(nil)
)

// Data is the full content of a memory store.
type Data struct {
	Brands   []listing.Brand
	Models   []listing.Model
	Cities   []listing.City
	Listings []listing.Listing
}

// Store is an immutable in-memory listings database, safe for concurrent use.
type Store struct {
	listings []listing.Listing
	brands   map[string]listing.Brand
	models   map[string]listing.Model
	cities   map[string]listing.City
}

// New creates a store holding a copy of d.
func New(d Data) *Store {
	s := &Store{
		listings: slices.Clone(d.Listings),
		brands:   make(map[string]listing.Brand, len(d.Brands)),
		models:   make(map[string]listing.Model, len(d.Models)),
		cities:   make(map[string]listing.City, len(d.Cities)),
	}
	for _, b := range d.Brands {
		s.brands[b.ID] = b
	}
	for _, m := range d.Models {
		s.models[m.ID] = m
	}
	for _, c := range d.Cities {
		s.cities[c.ID] = c
	}
	return s
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error { return nil }

// FindMany returns one ordered page of matching listings.
func (s *Store) FindMany(ctx context.Context, q *db.FindQuery) ([]listing.Listing, error) {
	if q.Skip < 0 || q.Take <= 0 {
		return nil, &db.Error{Op: db.OpFindMany, Err: fmt.Errorf("%w: skip=%d take=%d", db.ErrInvalidFindParams, q.Skip, q.Take)}
	}
	matched, err := s.filter(ctx, q.Predicate)
	if err != nil {
		return nil, &db.Error{Op: db.OpFindMany, Err: err}
	}

	slices.SortStableFunc(matched, func(a, b listing.Listing) int {
		return s.compare(&a, &b, q.OrderBy)
	})

	if q.Skip >= len(matched) {
		return []listing.Listing{}, nil
	}
	page := matched[q.Skip:min(q.Skip+q.Take, len(matched))]

	out := make([]listing.Listing, len(page))
	for i := range page {
		out[i] = page[i]
		s.include(&out[i], q.Include)
		s.setDistance(&out[i], q.OrderBy)
	}
	return out, nil
}

// Count returns the number of matching listings.
func (s *Store) Count(ctx context.Context, p filter.Predicate) (int, error) {
	matched, err := s.filter(ctx, p)
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return len(matched), nil
}

// GroupBy counts matching listings per value of dim.
func (s *Store) GroupBy(ctx context.Context, dim filter.Dimension, p filter.Predicate, limit int) ([]db.GroupCount, error) {
	if !dim.IsGroupable() {
		return nil, &db.Error{Op: db.OpGroupBy, Err: fmt.Errorf("%w: %s", db.ErrUnknownDimension, dim)}
	}
	matched, err := s.filter(ctx, p)
	if err != nil {
		return nil, &db.Error{Op: db.OpGroupBy, Err: err}
	}

	counts := make(map[string]int)
	for i := range matched {
		if v := dimensionValue(&matched[i], dim); v != "" {
			counts[v]++
		}
	}

	out := make([]db.GroupCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, db.GroupCount{Value: v, Count: n})
	}
	slices.SortFunc(out, func(a, b db.GroupCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Value, b.Value)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Aggregate returns price statistics of matching listings.
func (s *Store) Aggregate(ctx context.Context, p filter.Predicate) (db.Stats, error) {
	matched, err := s.filter(ctx, p)
	if err != nil {
		return db.Stats{}, &db.Error{Op: db.OpAggregate, Err: err}
	}
	if len(matched) == 0 {
		return db.Stats{}, nil
	}

	st := db.Stats{Min: matched[0].Price, Max: matched[0].Price, Count: len(matched)}
	var sum float64
	for i := range matched {
		price := matched[i].Price
		st.Min = min(st.Min, price)
		st.Max = max(st.Max, price)
		sum += price
	}
	st.Avg = sum / float64(len(matched))
	return st, nil
}

func (s *Store) filter(ctx context.Context, p filter.Predicate) ([]listing.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clauses := p.Clauses()
	var out []listing.Listing
	for i := range s.listings {
		ok, err := s.matches(&s.listings[i], clauses)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, s.listings[i])
		}
	}
	return out, nil
}

func (s *Store) include(l *listing.Listing, inc db.Include) {
	if inc.Brand {
		if b, ok := s.brands[l.BrandID]; ok {
			l.Brand = &listing.Ref{ID: b.ID, Name: b.Name}
		}
	}
	if inc.Model {
		if m, ok := s.models[l.ModelID]; ok {
			l.Model = &listing.Ref{ID: m.ID, Name: m.Name}
		}
	}
	if inc.City {
		if c, ok := s.cities[l.CityID]; ok {
			l.City = &listing.Ref{ID: c.ID, Name: c.Name}
		}
	}
}

func (s *Store) setDistance(l *listing.Listing, orders []db.Order) {
	for _, o := range orders {
		if o.Field != db.SortDistance || o.Origin == nil {
			continue
		}
		if d, ok := s.cityDistance(l, *o.Origin); ok {
			l.DistanceKm = &d
		}
		return
	}
}

func (s *Store) cityDistance(l *listing.Listing, origin geo.Point) (float64, bool) {
	c, ok := s.cities[l.CityID]
	if !ok {
		return 0, false
	}
	return geo.Distance(origin, geo.Point{Lat: c.Latitude, Lng: c.Longitude}), true
}

func dimensionValue(l *listing.Listing, dim filter.Dimension) string {
	switch dim {
	case filter.DimBrand:
		return l.BrandID
	case filter.DimModel:
		return l.ModelID
	case filter.DimCondition:
		return string(l.Condition)
	case filter.DimCurrency:
		return l.Currency
	case filter.DimType:
		return string(l.Type)
	case filter.DimCity:
		return l.CityID
	default:
		return ""
	}
}
