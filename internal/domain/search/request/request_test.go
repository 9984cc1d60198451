package request

import (
	"errors"
	"math"
	"testing"

	"github.com/bazaarhq/listing-search/internal/domain"
	"github.com/bazaarhq/listing-search/internal/domain/geo"
	"github.com/bazaarhq/listing-search/internal/domain/listing"
	"github.com/bazaarhq/listing-search/internal/domain/search/filter"
)

func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func TestNew_Defaults(t *testing.T) {
	r, err := New(Filters{}, "", nil, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Page() != 1 {
		t.Errorf("Page() = %d, want 1", r.Page())
	}
	if r.Limit() != DefaultLimit {
		t.Errorf("Limit() = %d, want %d", r.Limit(), DefaultLimit)
	}
	if r.Sort() != SortDateDesc {
		t.Errorf("Sort() = %q, want date_desc without query", r.Sort())
	}
	if r.Skip() != 0 {
		t.Errorf("Skip() = %d", r.Skip())
	}
}

func TestNew_DefaultSortWithQuery(t *testing.T) {
	r, err := New(Filters{Query: "  airpods "}, "", nil, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Sort() != SortRelevance {
		t.Errorf("Sort() = %q, want relevance", r.Sort())
	}
	if r.Filters().Query != "airpods" {
		t.Errorf("Query = %q, want trimmed", r.Filters().Query)
	}
}

func TestNew_UnknownSortFallsBack(t *testing.T) {
	r, err := New(Filters{}, "cheapest", nil, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Sort() != SortDateDesc {
		t.Errorf("Sort() = %q", r.Sort())
	}
}

func TestNew_Pagination(t *testing.T) {
	tests := []struct {
		name      string
		page      *int
		limit     *int
		def       int
		wantPage  int
		wantLimit int
		wantSkip  int
		wantErr   bool
	}{
		{"explicit", intPtr(3), intPtr(10), 20, 3, 10, 20, false},
		{"clamped limit", intPtr(1), intPtr(500), 20, 1, MaxLimit, 0, false},
		{"configured default", nil, nil, 25, 1, 25, 0, false},
		{"bad default ignored", nil, nil, 1000, 1, DefaultLimit, 0, false},
		{"page zero", intPtr(0), nil, 20, 0, 0, 0, true},
		{"negative page", intPtr(-2), nil, 20, 0, 0, 0, true},
		{"limit zero", nil, intPtr(0), 20, 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(Filters{}, "", tt.page, tt.limit, tt.def)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidRequest) {
					t.Fatalf("err = %v, want ErrInvalidRequest", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Page() != tt.wantPage || r.Limit() != tt.wantLimit || r.Skip() != tt.wantSkip {
				t.Errorf("page/limit/skip = %d/%d/%d, want %d/%d/%d",
					r.Page(), r.Limit(), r.Skip(), tt.wantPage, tt.wantLimit, tt.wantSkip)
			}
		})
	}
}

func TestNew_PriceRangeValidation(t *testing.T) {
	_, err := New(Filters{MinPrice: floatPtr(300), MaxPrice: floatPtr(50)}, "", nil, nil, 0)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr.Field != "minPrice" {
		t.Errorf("Field = %q", verr.Field)
	}

	if _, err := New(Filters{MinPrice: floatPtr(50), MaxPrice: floatPtr(50)}, "", nil, nil, 0); err != nil {
		t.Errorf("equal bounds rejected: %v", err)
	}
	if _, err := New(Filters{MinPrice: floatPtr(-1)}, "", nil, nil, 0); err == nil {
		t.Error("negative min price accepted")
	}

	nonFinite := []struct {
		name  string
		f     Filters
		field string
	}{
		{"NaN min", Filters{MinPrice: floatPtr(math.NaN())}, "minPrice"},
		{"NaN max", Filters{MaxPrice: floatPtr(math.NaN())}, "maxPrice"},
		{"infinite max", Filters{MinPrice: floatPtr(10), MaxPrice: floatPtr(math.Inf(1))}, "maxPrice"},
		{"negative infinite min", Filters{MinPrice: floatPtr(math.Inf(-1))}, "minPrice"},
	}
	for _, tt := range nonFinite {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.f, "", nil, nil, 0)
			var verr *domain.ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Errorf("err = %v, want ValidationError on %s", err, tt.field)
			}
		})
	}
}

func TestNew_GeoValidation(t *testing.T) {
	center := &geo.Point{Lat: 51.5, Lng: -0.12}
	tests := []struct {
		name    string
		geo     *GeoQuery
		wantErr bool
	}{
		{"city and radius", &GeoQuery{CityID: "london", RadiusKm: 10}, false},
		{"coordinates and radius", &GeoQuery{Center: center, RadiusKm: 10}, false},
		{"zero radius", &GeoQuery{CityID: "london"}, true},
		{"negative radius", &GeoQuery{Center: center, RadiusKm: -5}, true},
		{"no anchor", &GeoQuery{RadiusKm: 5}, true},
		{"both anchors", &GeoQuery{CityID: "london", Center: center, RadiusKm: 5}, true},
		{"latitude out of range", &GeoQuery{Center: &geo.Point{Lat: 91}, RadiusKm: 5}, true},
		{"NaN radius", &GeoQuery{CityID: "london", RadiusKm: math.NaN()}, true},
		{"infinite radius", &GeoQuery{CityID: "london", RadiusKm: math.Inf(1)}, true},
		{"NaN latitude", &GeoQuery{Center: &geo.Point{Lat: math.NaN()}, RadiusKm: 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Filters{Geo: tt.geo}, "", nil, nil, 0)
			if tt.wantErr && !errors.Is(err, domain.ErrInvalidRequest) {
				t.Errorf("err = %v, want ErrInvalidRequest", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestNew_DistanceSortRequiresGeo(t *testing.T) {
	if _, err := New(Filters{}, SortDistance, nil, nil, 0); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("err = %v, want ErrInvalidRequest", err)
	}
	g := &GeoQuery{CityID: "paris", RadiusKm: 25}
	r, err := New(Filters{Geo: g}, SortDistance, nil, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Sort() != SortDistance {
		t.Errorf("Sort() = %q", r.Sort())
	}
}

func TestFilters_NormalizeDropsInvalidOptionals(t *testing.T) {
	f := Filters{
		BrandIDs:     []string{"apple", " ", "apple", "sony "},
		Conditions:   []listing.Condition{"new", "BROKEN", "NEW", "like_new"},
		Types:        []listing.Type{"WANTED", "AUCTION"},
		Currencies:   []string{"usd", "USD", "eur"},
		SearchFields: []filter.TextField{"title", "seller"},
	}.Normalize()

	if got := f.BrandIDs; len(got) != 2 || got[0] != "apple" || got[1] != "sony" {
		t.Errorf("BrandIDs = %v", got)
	}
	if got := f.Conditions; len(got) != 2 || got[0] != listing.ConditionNew || got[1] != listing.ConditionLikeNew {
		t.Errorf("Conditions = %v", got)
	}
	if got := f.Types; len(got) != 1 || got[0] != listing.TypeWanted {
		t.Errorf("Types = %v", got)
	}
	if got := f.Currencies; len(got) != 2 || got[0] != "USD" || got[1] != "EUR" {
		t.Errorf("Currencies = %v", got)
	}
	if got := f.SearchFields; len(got) != 1 || got[0] != filter.FieldTitle {
		t.Errorf("SearchFields = %v", got)
	}
}

func TestFilters_AppliedCount(t *testing.T) {
	tests := []struct {
		name string
		f    Filters
		want int
	}{
		{"empty", Filters{}, 0},
		{"query only", Filters{Query: "x"}, 1},
		{
			"five fields",
			Filters{Query: "airpods", BrandIDs: []string{"apple"}, MinPrice: floatPtr(50), MaxPrice: floatPtr(300), VerifiedOnly: true},
			5,
		},
		{"viewer is not a filter", Filters{ViewerID: "u1"}, 0},
		{"geo counts once", Filters{Geo: &GeoQuery{CityID: "c", RadiusKm: 1}, CityIDs: []string{"c"}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.AppliedCount(); got != tt.want {
				t.Errorf("AppliedCount() = %d, want %d", got, tt.want)
			}
		})
	}
}
