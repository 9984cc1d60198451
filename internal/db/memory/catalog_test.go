package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/bazaarhq/listing-search/internal/db"
	"github.com/bazaarhq/listing-search/internal/domain/geo"
	"github.com/bazaarhq/listing-search/internal/domain/listing"
	"github.com/bazaarhq/listing-search/internal/domain/search/filter"
)

func TestCatalog_ByIDsSkipsUnknown(t *testing.T) {
	s := fixture()
	ctx := context.Background()

	brands, _ := s.BrandsByIDs(ctx, []string{"apple", "deleted"})
	if len(brands) != 1 || brands[0].Name != "Apple" {
		t.Errorf("brands = %v", brands)
	}
	models, _ := s.ModelsByIDs(ctx, []string{"galaxy-buds"})
	if len(models) != 1 || models[0].BrandName != "Samsung" {
		t.Errorf("models = %v", models)
	}
	cities, _ := s.CitiesByIDs(ctx, []string{"paris", "nowhere"})
	if len(cities) != 1 {
		t.Errorf("cities = %v", cities)
	}
}

func TestCatalog_CityByID(t *testing.T) {
	s := fixture()
	if c, err := s.CityByID(context.Background(), "london"); err != nil || c.Name != "London" {
		t.Errorf("CityByID = %v, %v", c, err)
	}
	if _, err := s.CityByID(context.Background(), "atlantis"); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCatalog_CitiesInBox(t *testing.T) {
	s := fixture()
	box := geo.BoundingBox(geo.Point{Lat: 51.5074, Lng: -0.1278}, 100)
	got, _ := s.CitiesInBox(context.Background(), box)
	if len(got) != 2 || got[0].ID != "london" || got[1].ID != "reading" {
		t.Errorf("got %v", got)
	}
}

func TestCatalog_CitiesInBox_Wrapping(t *testing.T) {
	s := New(Data{Cities: []listing.City{
		{ID: "suva", Latitude: -18.1248, Longitude: 178.4501},
		{ID: "apia", Latitude: -13.8333, Longitude: -171.7667},
		{ID: "lima", Latitude: -12.0464, Longitude: -77.0428},
	}})
	box := geo.Box{MinLat: -30, MaxLat: 0, MinLng: 170, MaxLng: -170}
	got, _ := s.CitiesInBox(context.Background(), box)
	if len(got) != 2 || got[0].ID != "apia" || got[1].ID != "suva" {
		t.Errorf("got %v", got)
	}
}

func TestCatalog_Match(t *testing.T) {
	s := fixture()
	ctx := context.Background()

	brands, _ := s.MatchBrands(ctx, "APP", 5)
	if len(brands) != 1 || brands[0].ID != "apple" {
		t.Errorf("brands = %v", brands)
	}
	brands, _ = s.MatchBrands(ctx, "buds", 5)
	if len(brands) != 1 || brands[0].ID != "samsung" {
		t.Errorf("brands via model = %v", brands)
	}
	brands, _ = s.MatchBrands(ctx, "a", 5)
	if len(brands) != 2 || brands[0].ID != "apple" || brands[1].ID != "samsung" {
		t.Errorf("brands = %v", brands)
	}

	models, _ := s.MatchModels(ctx, "s", nil, 5)
	if len(models) != 2 {
		t.Errorf("models = %v", models)
	}
	models, _ = s.MatchModels(ctx, "s", []string{"samsung"}, 5)
	if len(models) != 1 || models[0].ID != "galaxy-buds" || models[0].BrandName != "Samsung" {
		t.Errorf("narrowed models = %v", models)
	}

	titles, _ := s.MatchListingTitles(ctx, "airpods", filter.NewPredicate(now), 5)
	if len(titles) != 2 || titles[0].ID != "l1" {
		t.Errorf("titles = %v (hidden listings must not match)", titles)
	}

	cities, _ := s.MatchCities(ctx, "r", 1)
	if len(cities) != 1 || cities[0].ID != "paris" {
		t.Errorf("cities = %v, want most populous first", cities)
	}
}

func TestParseSeed(t *testing.T) {
	seed := []byte(`
brands:
  - {id: apple, name: Apple, slug: apple}
cities:
  - {id: london, name: London, country_code: GB, latitude: 51.5, longitude: -0.12}
listings:
  - id: l1
    title: AirPods
    price: 100
    currency: USD
    condition: NEW
    brand_id: apple
    city_id: london
    verified: true
    published_at: 2026-01-01T00:00:00Z
`)
	s, err := Parse(seed)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	n, err := s.Count(context.Background(), filter.NewPredicate(now))
	if err != nil || n != 1 {
		t.Errorf("Count = %d, %v", n, err)
	}

	if _, err := Parse([]byte("listings:\n  - {id: x, condition: BROKEN}\n")); err == nil {
		t.Error("expected error for invalid condition")
	}
}
