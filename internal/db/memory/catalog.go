package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/bazaarhq/listing-search/internal/db"
	"github.com/bazaarhq/listing-search/internal/domain/geo"
	"github.com/bazaarhq/listing-search/internal/domain/listing"
	"github.com/bazaarhq/listing-search/internal/domain/search/filter"
)

// BrandsByIDs returns the known brands among ids.
func (s *Store) BrandsByIDs(_ context.Context, ids []string) ([]listing.Brand, error) {
	var out []listing.Brand
	for _, id := range ids {
		if b, ok := s.brands[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

// ModelsByIDs returns the known models among ids with BrandName filled.
func (s *Store) ModelsByIDs(_ context.Context, ids []string) ([]listing.Model, error) {
	var out []listing.Model
	for _, id := range ids {
		if m, ok := s.models[id]; ok {
			m.BrandName = s.brands[m.BrandID].Name
			out = append(out, m)
		}
	}
	return out, nil
}

// CitiesByIDs returns the known cities among ids.
func (s *Store) CitiesByIDs(_ context.Context, ids []string) ([]listing.City, error) {
	var out []listing.City
	for _, id := range ids {
		if c, ok := s.cities[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// CityByID returns a single city.
func (s *Store) CityByID(_ context.Context, id string) (listing.City, error) {
	c, ok := s.cities[id]
	if !ok {
		return listing.City{}, &db.Error{Op: db.OpCatalog, Err: db.ErrNotFound}
	}
	return c, nil
}

// CitiesInBox returns cities whose coordinates lie inside box.
func (s *Store) CitiesInBox(_ context.Context, box geo.Box) ([]listing.City, error) {
	var out []listing.City
	for _, c := range s.cities {
		if box.Contains(geo.Point{Lat: c.Latitude, Lng: c.Longitude}) {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b listing.City) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

// MatchBrands returns brands whose name contains q, then brands owning a
// model whose name contains q, each group ordered by name.
func (s *Store) MatchBrands(_ context.Context, q string, limit int) ([]listing.Brand, error) {
	viaModel := make(map[string]bool)
	for _, m := range s.models {
		if containsFold(m.Name, q) {
			viaModel[m.BrandID] = true
		}
	}

	var out []listing.Brand
	for _, b := range s.brands {
		if containsFold(b.Name, q) || viaModel[b.ID] {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b listing.Brand) int {
		return cmp.Or(
			compareBool(containsFold(b.Name, q), containsFold(a.Name, q)),
			strings.Compare(a.Name, b.Name),
			strings.Compare(a.ID, b.ID),
		)
	})
	return truncate(out, limit), nil
}

// MatchModels returns models whose name contains q, ordered by name.
func (s *Store) MatchModels(_ context.Context, q string, brandIDs []string, limit int) ([]listing.Model, error) {
	var out []listing.Model
	for _, m := range s.models {
		if !containsFold(m.Name, q) {
			continue
		}
		if len(brandIDs) > 0 && !slices.Contains(brandIDs, m.BrandID) {
			continue
		}
		m.BrandName = s.brands[m.BrandID].Name
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b listing.Model) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), strings.Compare(a.ID, b.ID))
	})
	return truncate(out, limit), nil
}

// MatchListingTitles returns titles of listings matching p whose title
// contains q, most viewed first.
func (s *Store) MatchListingTitles(ctx context.Context, q string, p filter.Predicate, limit int) ([]db.TitleMatch, error) {
	matched, err := s.filter(ctx, p)
	if err != nil {
		return nil, &db.Error{Op: db.OpCatalog, Err: err}
	}
	var hits []listing.Listing
	for _, l := range matched {
		if containsFold(l.Title, q) {
			hits = append(hits, l)
		}
	}
	slices.SortFunc(hits, func(a, b listing.Listing) int {
		return cmp.Or(cmp.Compare(b.Views, a.Views), strings.Compare(a.ID, b.ID))
	})
	hits = truncate(hits, limit)

	out := make([]db.TitleMatch, len(hits))
	for i, l := range hits {
		out[i] = db.TitleMatch{ID: l.ID, Title: l.Title}
	}
	return out, nil
}

// MatchCities returns cities whose name contains q, most populous first.
func (s *Store) MatchCities(_ context.Context, q string, limit int) ([]listing.City, error) {
	var out []listing.City
	for _, c := range s.cities {
		if containsFold(c.Name, q) {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b listing.City) int {
		return cmp.Or(cmp.Compare(b.Population, a.Population), strings.Compare(a.Name, b.Name))
	})
	return truncate(out, limit), nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func truncate[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
