package location

import (
	"context"

	"github.com/bazaarhq/listing-search/internal/domain/listing"
)

// Cache is the local cached-city store.
type Cache interface {
	Search(ctx context.Context, q string, limit int) ([]listing.CachedCity, error)
	Upsert(ctx context.Context, c listing.CachedCity) error
}

// Geocoder resolves city names through an external service.
type Geocoder interface {
	SearchCities(ctx context.Context, q string, limit int) ([]listing.CachedCity, error)
}
