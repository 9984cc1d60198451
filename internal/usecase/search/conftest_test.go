package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bazaarhq/listing-search/internal/db"
	"github.com/bazaarhq/listing-search/internal/db/memory"
	"github.com/bazaarhq/listing-search/internal/domain/listing"
	"github.com/bazaarhq/listing-search/internal/domain/search/filter"
	"github.com/bazaarhq/listing-search/internal/domain/search/request"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

// marketFixture has five AirPods-related listings, one listing of a brand
// missing from the catalog, and two hidden listings.
func marketFixture() *memory.Store {
	return memory.New(memory.Data{
		Brands: []listing.Brand{
			{ID: "apple", Name: "Apple"},
			{ID: "samsung", Name: "Samsung"},
		},
		Models: []listing.Model{
			{ID: "airpods-pro", BrandID: "apple", Name: "AirPods Pro"},
			{ID: "galaxy-buds", BrandID: "samsung", Name: "Galaxy Buds"},
		},
		Cities: []listing.City{
			{ID: "london", Name: "London", Latitude: 51.5074, Longitude: -0.1278, Population: 8_900_000},
			{ID: "reading", Name: "Reading", Latitude: 51.4543, Longitude: -0.9781, Population: 160_000},
			{ID: "paris", Name: "Paris", Latitude: 48.8566, Longitude: 2.3522, Population: 2_100_000},
		},
		Listings: []listing.Listing{
			visible("a1", "Apple AirPods Pro 2nd gen", 199, "USD", listing.ConditionNew, "apple", "airpods-pro", "london", "u1", true, 30, 1),
			visible("a2", "AirPods Pro sealed", 249, "USD", listing.ConditionNew, "apple", "airpods-pro", "reading", "u2", true, 10, 2),
			visible("a3", "AirPods Pro case", 60, "USD", listing.ConditionGood, "apple", "airpods-pro", "paris", "u3", true, 50, 3),
			visible("a4", "AirPods Pro used", 120, "USD", listing.ConditionFair, "apple", "airpods-pro", "london", "u4", false, 5, 4),
			visible("s1", "Galaxy Buds (AirPods alternative)", 120, "EUR", listing.ConditionLikeNew, "samsung", "galaxy-buds", "london", "u5", true, 20, 5),
			visible("g1", "Vintage radio", 40, "USD", listing.ConditionGood, "ghost", "", "paris", "u6", false, 1, 6),
			{ID: "h1", Title: "Suspended AirPods", Price: 100, Currency: "USD", Condition: listing.ConditionNew,
				BrandID: "apple", Status: listing.StatusSuspended, PublishedAt: now.Add(-day)},
			{ID: "h2", Title: "Scheduled AirPods", Price: 100, Currency: "USD", Condition: listing.ConditionNew,
				BrandID: "apple", Status: listing.StatusActive, PublishedAt: now.Add(day)},
		},
	})
}

func visible(
	id, title string, price float64, currency string, cond listing.Condition,
	brand, model, city, seller string, verified bool, views int64, ageDays int,
) listing.Listing {
	return listing.Listing{
		ID: id, Title: title, Price: price, Currency: currency, Condition: cond, Type: listing.TypeListing,
		BrandID: brand, ModelID: model, CityID: city, SellerID: seller, IsVerified: verified, Views: views,
		Status: listing.StatusActive, PublishedAt: now.Add(-time.Duration(ageDays) * day),
	}
}

func newTestService(store *memory.Store, cfg Config) *Service {
	return newTestServiceWith(store, store, cfg)
}

func newTestServiceWith(store ListingStore, catalog Catalog, cfg Config) *Service {
	s := New(store, catalog, cfg, Metrics{}, zap.NewNop())
	s.now = func() time.Time { return now }
	s.newID = func() string { return "search-1" }
	return s
}

func newRequest(t *testing.T, f request.Filters, sortBy request.SortKey, page, limit int) *request.Request {
	t.Helper()
	var pp, lp *int
	if page != 0 {
		pp = &page
	}
	if limit != 0 {
		lp = &limit
	}
	r, err := request.New(f, sortBy, pp, lp, 0)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &r
}

func listingIDs(ls []listing.Listing) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.ID
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func floatPtr(f float64) *float64 { return &f }

// failingCatalog fails selected autocomplete lookups.
type failingCatalog struct {
	Catalog
	failCities bool
	failModels bool
}

var errCatalogDown = errors.New("catalog down")

func (c *failingCatalog) MatchCities(ctx context.Context, q string, limit int) ([]listing.City, error) {
	if c.failCities {
		return nil, errCatalogDown
	}
	return c.Catalog.MatchCities(ctx, q, limit)
}

func (c *failingCatalog) MatchModels(ctx context.Context, q string, brandIDs []string, limit int) ([]listing.Model, error) {
	if c.failModels {
		return nil, errCatalogDown
	}
	return c.Catalog.MatchModels(ctx, q, brandIDs, limit)
}

// untouchableCatalog fails the test on any lookup.
type untouchableCatalog struct {
	Catalog
	t *testing.T
}

func (c untouchableCatalog) MatchBrands(context.Context, string, int) ([]listing.Brand, error) {
	c.t.Error("MatchBrands called")
	return nil, nil
}

func (c untouchableCatalog) MatchModels(context.Context, string, []string, int) ([]listing.Model, error) {
	c.t.Error("MatchModels called")
	return nil, nil
}

func (c untouchableCatalog) MatchListingTitles(context.Context, string, filter.Predicate, int) ([]db.TitleMatch, error) {
	c.t.Error("MatchListingTitles called")
	return nil, nil
}

func (c untouchableCatalog) MatchCities(context.Context, string, int) ([]listing.City, error) {
	c.t.Error("MatchCities called")
	return nil, nil
}

// blockingStore blocks every call until the context ends.
type blockingStore struct{}

func (blockingStore) FindMany(ctx context.Context, _ *db.FindQuery) ([]listing.Listing, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingStore) Count(ctx context.Context, _ filter.Predicate) (int, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

func (blockingStore) GroupBy(ctx context.Context, _ filter.Dimension, _ filter.Predicate, _ int) ([]db.GroupCount, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingStore) Aggregate(ctx context.Context, _ filter.Predicate) (db.Stats, error) {
	<-ctx.Done()
	return db.Stats{}, ctx.Err()
}
