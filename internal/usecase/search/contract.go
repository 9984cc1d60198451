package search

import (
	"context"

	"github.com/bazaarhq/listing-search/internal/db"
	"github.com/bazaarhq/listing-search/internal/domain/geo"
	"github.com/bazaarhq/listing-search/internal/domain/listing"
	"github.com/bazaarhq/listing-search/internal/domain/search/filter"
)

// ListingStore defines the storage contract for listing queries.
type ListingStore interface {
	FindMany(ctx context.Context, q *db.FindQuery) ([]listing.Listing, error)
	Count(ctx context.Context, p filter.Predicate) (int, error)
	GroupBy(ctx context.Context, dim filter.Dimension, p filter.Predicate, limit int) ([]db.GroupCount, error)
	Aggregate(ctx context.Context, p filter.Predicate) (db.Stats, error)
}

// Catalog resolves display names, geography and autocomplete candidates.
type Catalog interface {
	BrandsByIDs(ctx context.Context, ids []string) ([]listing.Brand, error)
	ModelsByIDs(ctx context.Context, ids []string) ([]listing.Model, error)
	CitiesByIDs(ctx context.Context, ids []string) ([]listing.City, error)
	CityByID(ctx context.Context, id string) (listing.City, error)
	CitiesInBox(ctx context.Context, box geo.Box) ([]listing.City, error)

	MatchBrands(ctx context.Context, q string, limit int) ([]listing.Brand, error)
	MatchModels(ctx context.Context, q string, brandIDs []string, limit int) ([]listing.Model, error)
	MatchListingTitles(ctx context.Context, q string, p filter.Predicate, limit int) ([]db.TitleMatch, error)
	MatchCities(ctx context.Context, q string, limit int) ([]listing.City, error)
}
