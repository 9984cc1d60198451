package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/bazaarhq/listing-search/internal/db"
	"github.com/bazaarhq/listing-search/internal/domain/geo"
	"github.com/bazaarhq/listing-search/internal/domain/listing"
	"github.com/bazaarhq/listing-search/internal/domain/search/filter"
)

const (
	brandColumns = `b.id, b.name, b.slug, coalesce(b.logo, '') AS logo`
	modelColumns = `m.id, m.brand_id, m.name, m.slug, coalesce(m.image, '') AS image, coalesce(b.name, '') AS brand_name`
	cityColumns  = `c.id, c.name, c.country_code, c.latitude, c.longitude, coalesce(c.population, 0) AS population`
)

// BrandsByIDs returns the known brands among ids.
func (s *Store) BrandsByIDs(ctx context.Context, ids []string) ([]listing.Brand, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []listing.Brand
	q := `SELECT ` + brandColumns + ` FROM brands b WHERE b.id = ANY($1)`
	if err := s.db.SelectContext(ctx, &out, q, pq.Array(ids)); err != nil {
		return nil, &db.Error{Op: db.OpCatalog, Err: err}
	}
	return out, nil
}

// ModelsByIDs returns the known models among ids with BrandName filled.
func (s *Store) ModelsByIDs(ctx context.Context, ids []string) ([]listing.Model, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []listing.Model
	q := `SELECT ` + modelColumns + ` FROM models m LEFT JOIN brands b ON b.id = m.brand_id WHERE m.id = ANY($1)`
	if err := s.db.SelectContext(ctx, &out, q, pq.Array(ids)); err != nil {
		return nil, &db.Error{Op: db.OpCatalog, Err: err}
	}
	return out, nil
}

// CitiesByIDs returns the known cities among ids.
func (s *Store) CitiesByIDs(ctx context.Context, ids []string) ([]listing.City, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []listing.City
	q := `SELECT ` + cityColumns + ` FROM cities c WHERE c.id = ANY($1)`
	if err := s.db.SelectContext(ctx, &out, q, pq.Array(ids)); err != nil {
		return nil, &db.Error{Op: db.OpCatalog, Err: err}
	}
	return out, nil
}

// CityByID returns a single city.
func (s *Store) CityByID(ctx context.Context, id string) (listing.City, error) {
	var c listing.City
	q := `SELECT ` + cityColumns + ` FROM cities c WHERE c.id = $1`
	if err := s.db.GetContext(ctx, &c, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return listing.City{}, &db.Error{Op: db.OpCatalog, Err: db.ErrNotFound}
		}
		return listing.City{}, &db.Error{Op: db.OpCatalog, Err: err}
	}
	return c, nil
}

// CitiesInBox returns cities whose coordinates lie inside box. A box crossing
// the antimeridian matches longitudes outside [MaxLng, MinLng].
func (s *Store) CitiesInBox(ctx context.Context, box geo.Box) ([]listing.City, error) {
	var out []listing.City
	lng := `c.longitude BETWEEN $3 AND $4`
	if box.Wraps() {
		lng = `(c.longitude >= $3 OR c.longitude <= $4)`
	}
	q := `SELECT ` + cityColumns + ` FROM cities c
		WHERE c.latitude BETWEEN $1 AND $2 AND ` + lng + `
		ORDER BY c.id`
	if err := s.db.SelectContext(ctx, &out, q, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng); err != nil {
		return nil, &db.Error{Op: db.OpCatalog, Err: err}
	}
	return out, nil
}

// MatchBrands returns brands whose name contains q, then brands owning a
// model whose name contains q, each group ordered by name.
func (s *Store) MatchBrands(ctx context.Context, q string, limit int) ([]listing.Brand, error) {
	var out []listing.Brand
	query := `SELECT ` + brandColumns + ` FROM brands b
		WHERE b.name ILIKE $1
		   OR EXISTS (SELECT 1 FROM models m WHERE m.brand_id = b.id AND m.name ILIKE $1)
		ORDER BY (b.name ILIKE $1) DESC, b.name, b.id LIMIT $2`
	if err := s.db.SelectContext(ctx, &out, query, likePattern(q), limit); err != nil {
		return nil, &db.Error{Op: db.OpCatalog, Err: err}
	}
	return out, nil
}

// MatchModels returns models whose name contains q, ordered by name.
func (s *Store) MatchModels(ctx context.Context, q string, brandIDs []string, limit int) ([]listing.Model, error) {
	b := &queryBuilder{}
	b.where("m.name ILIKE " + b.arg(likePattern(q)))
	if len(brandIDs) > 0 {
		b.where("m.brand_id = ANY(" + b.arg(pq.Array(brandIDs)) + ")")
	}
	query := `SELECT ` + modelColumns + ` FROM models m LEFT JOIN brands b ON b.id = m.brand_id` +
		b.whereSQL() + ` ORDER BY m.name, m.id LIMIT ` + b.arg(limit)

	var out []listing.Model
	if err := s.db.SelectContext(ctx, &out, query, b.args...); err != nil {
		return nil, &db.Error{Op: db.OpCatalog, Err: err}
	}
	return out, nil
}

// MatchListingTitles returns titles of listings matching p whose title
// contains q, most viewed first.
func (s *Store) MatchListingTitles(ctx context.Context, q string, p filter.Predicate, limit int) ([]db.TitleMatch, error) {
	b := &queryBuilder{}
	if err := b.predicate(p); err != nil {
		return nil, &db.Error{Op: db.OpCatalog, Err: err}
	}
	b.where("l.title ILIKE " + b.arg(likePattern(q)))
	query := `SELECT l.id, l.title ` + fromListings + b.whereSQL() +
		` ORDER BY l.views DESC, l.id ASC LIMIT ` + b.arg(limit)

	var out []db.TitleMatch
	if err := s.db.SelectContext(ctx, &out, query, b.args...); err != nil {
		return nil, &db.Error{Op: db.OpCatalog, Err: err}
	}
	return out, nil
}

// MatchCities returns cities whose name contains q, most populous first.
func (s *Store) MatchCities(ctx context.Context, q string, limit int) ([]listing.City, error) {
	var out []listing.City
	query := `SELECT ` + cityColumns + ` FROM cities c WHERE c.name ILIKE $1
		ORDER BY c.population DESC NULLS LAST, c.name LIMIT $2`
	if err := s.db.SelectContext(ctx, &out, query, likePattern(q), limit); err != nil {
		return nil, &db.Error{Op: db.OpCatalog, Err: err}
	}
	return out, nil
}
