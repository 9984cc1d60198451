package db

import (
	"context"

	"github.com/bazaarhq/listing-search/internal/domain/geo"
	"github.com/bazaarhq/listing-search/internal/domain/listing"
	"github.com/bazaarhq/listing-search/internal/domain/search/filter"
)

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ListingStore evaluates predicates over the listings collection.
type ListingStore interface {
	Pinger
	FindMany(ctx context.Context, q *FindQuery) ([]listing.Listing, error)
	Count(ctx context.Context, p filter.Predicate) (int, error)
	// GroupBy counts matching listings per value of dim, ordered by count
	// desc then value asc. limit <= 0 returns every group.
	GroupBy(ctx context.Context, dim filter.Dimension, p filter.Predicate, limit int) ([]GroupCount, error)
	Aggregate(ctx context.Context, p filter.Predicate) (Stats, error)
}

// Catalog looks up brands, models and cities.
// ByIDs lookups skip unknown ids; Match lookups are case-insensitive
// substring matches.
type Catalog interface {
	BrandsByIDs(ctx context.Context, ids []string) ([]listing.Brand, error)
	ModelsByIDs(ctx context.Context, ids []string) ([]listing.Model, error)
	CitiesByIDs(ctx context.Context, ids []string) ([]listing.City, error)
	// CityByID returns ErrNotFound for an unknown id.
	CityByID(ctx context.Context, id string) (listing.City, error)
	CitiesInBox(ctx context.Context, box geo.Box) ([]listing.City, error)

	MatchBrands(ctx context.Context, q string, limit int) ([]listing.Brand, error)
	// MatchModels fills BrandName; brandIDs narrows the match when non-empty.
	MatchModels(ctx context.Context, q string, brandIDs []string, limit int) ([]listing.Model, error)
	// MatchListingTitles only considers listings visible at p's cutoff.
	MatchListingTitles(ctx context.Context, q string, p filter.Predicate, limit int) ([]TitleMatch, error)
	MatchCities(ctx context.Context, q string, limit int) ([]listing.City, error)
}

// HashStore provides hash-based key-value operations.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// LexIndex provides a lexicographically ordered member index.
type LexIndex interface {
	ZAddLex(ctx context.Context, key string, members ...string) error
	ZRem(ctx context.Context, key string, members ...string) error
	// ZRangeByPrefix returns up to limit members starting with prefix.
	ZRangeByPrefix(ctx context.Context, key, prefix string, limit int) ([]string, error)
}

// KVStore is the cache backend: hashes plus a lexicographic index.
type KVStore interface {
	Pinger
	HashStore
	LexIndex
}
