package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gochi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bazaarhq/listing-search/internal/db"
	"github.com/bazaarhq/listing-search/internal/db/memory"
	"github.com/bazaarhq/listing-search/internal/domain/listing"
	"github.com/bazaarhq/listing-search/internal/domain/search/filter"
	healthuc "github.com/bazaarhq/listing-search/internal/usecase/health"
	locationuc "github.com/bazaarhq/listing-search/internal/usecase/location"
	searchuc "github.com/bazaarhq/listing-search/internal/usecase/search"
)

func fixtureStore() *memory.Store {
	now := time.Now()
	l := func(id, title string, price float64, currency, brand, model, city, seller string, verified bool, age int) listing.Listing {
		return listing.Listing{
			ID: id, Title: title, Price: price, Currency: currency, Condition: listing.ConditionNew,
			Type: listing.TypeListing, BrandID: brand, ModelID: model, CityID: city, SellerID: seller,
			IsVerified: verified, Status: listing.StatusActive,
			PublishedAt: now.Add(-time.Duration(age) * time.Hour),
		}
	}
	return memory.New(memory.Data{
		Brands: []listing.Brand{{ID: "apple", Name: "Apple"}, {ID: "samsung", Name: "Samsung"}},
		Models: []listing.Model{{ID: "airpods-pro", BrandID: "apple", Name: "AirPods Pro"}},
		Cities: []listing.City{
			{ID: "london", Name: "London", Latitude: 51.5074, Longitude: -0.1278},
			{ID: "reading", Name: "Reading", Latitude: 51.4543, Longitude: -0.9781},
			{ID: "paris", Name: "Paris", Latitude: 48.8566, Longitude: 2.3522},
		},
		Listings: []listing.Listing{
			l("a1", "AirPods Pro 2", 199, "USD", "apple", "airpods-pro", "london", "u1", true, 1),
			l("a2", "AirPods Pro sealed", 249, "USD", "apple", "airpods-pro", "reading", "u2", true, 2),
			l("a3", "AirPods Pro case", 60, "USD", "apple", "airpods-pro", "paris", "u3", true, 3),
			l("a4", "AirPods Pro used", 120, "USD", "apple", "airpods-pro", "london", "u4", false, 4),
			l("s1", "Galaxy Buds, AirPods rival", 120, "EUR", "samsung", "", "london", "u5", true, 5),
		},
	})
}

type staticCache struct{ cities []listing.CachedCity }

func (c staticCache) Search(context.Context, string, int) ([]listing.CachedCity, error) {
	return c.cities, nil
}

func (c staticCache) Upsert(context.Context, listing.CachedCity) error { return nil }

// brokenStore fails every listing query with an internal error.
type brokenStore struct{}

var errBroken = errors.New("connection reset by peer")

func (brokenStore) FindMany(context.Context, *db.FindQuery) ([]listing.Listing, error) {
	return nil, errBroken
}

func (brokenStore) Count(context.Context, filter.Predicate) (int, error) { return 0, errBroken }

func (brokenStore) GroupBy(context.Context, filter.Dimension, filter.Predicate, int) ([]db.GroupCount, error) {
	return nil, errBroken
}

func (brokenStore) Aggregate(context.Context, filter.Predicate) (db.Stats, error) {
	return db.Stats{}, errBroken
}

func newTestRouter(t *testing.T, store searchuc.ListingStore) http.Handler {
	t.Helper()
	catalog := fixtureStore()
	if store == nil {
		store = catalog
	}
	search := searchuc.New(store, catalog, searchuc.Config{PopularTerms: []string{"air fryer"}}, searchuc.Metrics{}, zap.NewNop())
	locations := locationuc.New(
		staticCache{cities: []listing.CachedCity{{ExternalID: "R65606", Name: "London", CountryCode: "GB"}}},
		nil, locationuc.Config{}, nil, zap.NewNop(),
	)
	health := healthuc.New(catalog, nil)

	r := gochi.NewRouter()
	NewServer(search, locations, health, zap.NewNop()).Routes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader = http.NoBody
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func ids(ls []Listing) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.ID
	}
	return out
}
