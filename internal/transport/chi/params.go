package chi

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/oapi-codegen/runtime"

	"github.com/bazaarhq/listing-search/internal/domain"
	"github.com/bazaarhq/listing-search/internal/domain/geo"
	"github.com/bazaarhq/listing-search/internal/domain/listing"
	"github.com/bazaarhq/listing-search/internal/domain/search/filter"
	"github.com/bazaarhq/listing-search/internal/domain/search/request"
)

// viewerHeader carries the authenticated user id, set by the gateway.
const viewerHeader = "X-Viewer-ID"

// paramError is a query parameter that failed to parse.
type paramError struct {
	Name string
	Err  error
}

func (e *paramError) Error() string {
	return fmt.Sprintf("invalid query parameter %q: %v", e.Name, e.Err)
}

func (e *paramError) Unwrap() error { return e.Err }

// queryBinder binds form-style query parameters, keeping the first error.
type queryBinder struct {
	values url.Values
	err    error
}

func newQueryBinder(r *http.Request) *queryBinder {
	return &queryBinder{values: r.URL.Query()}
}

func (b *queryBinder) bind(name string, dest any) {
	if b.err != nil {
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, name, b.values, dest); err != nil {
		b.err = &paramError{Name: name, Err: err}
	}
}

func (b *queryBinder) str(name string) string {
	var v *string
	b.bind(name, &v)
	if v == nil {
		return ""
	}
	return *v
}

func (b *queryBinder) flag(name string) bool {
	var v *bool
	b.bind(name, &v)
	return v != nil && *v
}

// float rejects NaN and infinities, which ParseFloat accepts.
func (b *queryBinder) float(name string) *float64 {
	var v *float64
	b.bind(name, &v)
	if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
		if b.err == nil {
			b.err = &paramError{Name: name, Err: fmt.Errorf("%v is not a finite number", *v)}
		}
		return nil
	}
	return v
}

func (b *queryBinder) int(name string) *int {
	var v *int
	b.bind(name, &v)
	return v
}

// ids accepts repeated and comma-separated values: ?brand=a,b&brand=c.
func (b *queryBinder) ids(name string) []string {
	var raw *[]string
	b.bind(name, &raw)
	if raw == nil {
		return nil
	}
	return splitIDs(*raw)
}

func splitIDs(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, id := range strings.Split(r, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}

func conditions(vs []string) []listing.Condition {
	out := make([]listing.Condition, len(vs))
	for i, v := range vs {
		out[i] = listing.Condition(v)
	}
	return out
}

func types(vs []string) []listing.Type {
	out := make([]listing.Type, len(vs))
	for i, v := range vs {
		out[i] = listing.Type(v)
	}
	return out
}

func textFields(vs []string) []filter.TextField {
	out := make([]filter.TextField, len(vs))
	for i, v := range vs {
		out[i] = filter.TextField(v)
	}
	return out
}

// geoInput is the raw radius part of a request.
type geoInput struct {
	CityID   string
	Lat, Lng *float64
	RadiusKm *float64
}

// resolve builds the geo query. A radius around a single entry of cityIDs
// uses it as the anchor; cityIDs is returned without it.
func (g geoInput) resolve(cityIDs []string) (*request.GeoQuery, []string, error) {
	hasCoords := g.Lat != nil || g.Lng != nil
	if g.RadiusKm == nil {
		if hasCoords {
			return nil, nil, domain.NewValidationError("radiusKm", "required with coordinates")
		}
		if g.CityID != "" {
			cityIDs = append(cityIDs, g.CityID)
		}
		return nil, cityIDs, nil
	}

	q := &request.GeoQuery{CityID: g.CityID, RadiusKm: *g.RadiusKm}
	if hasCoords {
		if g.Lat == nil || g.Lng == nil {
			return nil, nil, domain.NewValidationError("geo", "lat and lng must be given together")
		}
		q.Center = &geo.Point{Lat: *g.Lat, Lng: *g.Lng}
		return q, cityIDs, nil
	}
	if q.CityID == "" {
		switch len(cityIDs) {
		case 0:
		case 1:
			q.CityID, cityIDs = cityIDs[0], nil
		default:
			return nil, nil, domain.NewValidationError("radius", "requires a single city")
		}
	}
	return q, cityIDs, nil
}

// searchParams is a parsed search request before validation.
type searchParams struct {
	filters request.Filters
	sortBy  request.SortKey
	page    *int
	limit   *int
}

// listingsParams parses GET /search/listings.
func listingsParams(r *http.Request) (searchParams, error) {
	b := newQueryBinder(r)
	p := searchParams{
		filters: request.Filters{
			Query:        b.str("q"),
			BrandIDs:     b.ids("brand"),
			ModelIDs:     b.ids("model"),
			Types:        types(b.ids("type")),
			Conditions:   conditions(b.ids("condition")),
			Currencies:   b.ids("currency"),
			MinPrice:     b.float("minPrice"),
			MaxPrice:     b.float("maxPrice"),
			VerifiedOnly: b.flag("verified"),
			HasImages:    b.flag("hasImages"),
			ViewerID:     r.Header.Get(viewerHeader),
		},
		sortBy: request.SortKey(b.str("sortBy")),
		page:   b.int("page"),
		limit:  b.int("limit"),
	}
	g := geoInput{RadiusKm: b.float("radius")}
	cities := b.ids("city")
	if b.err != nil {
		return searchParams{}, b.err
	}

	var err error
	p.filters.Geo, p.filters.CityIDs, err = g.resolve(cities)
	if err != nil {
		return searchParams{}, err
	}
	return p, nil
}

// advancedQueryParams parses GET /search/advanced.
func advancedQueryParams(r *http.Request) (searchParams, error) {
	b := newQueryBinder(r)
	p := searchParams{
		filters: request.Filters{
			Query:        b.str("q"),
			ExactMatch:   b.flag("exactMatch"),
			SearchFields: textFields(b.ids("searchFields")),
			BrandIDs:     b.ids("brandIds"),
			ModelIDs:     b.ids("modelIds"),
			Types:        types(b.ids("types")),
			Conditions:   conditions(b.ids("conditions")),
			Currencies:   b.ids("currencies"),
			MinPrice:     b.float("minPrice"),
			MaxPrice:     b.float("maxPrice"),
			VerifiedOnly: b.flag("verifiedOnly"),
			HasImages:    b.flag("hasImages"),
			ViewerID:     r.Header.Get(viewerHeader),
		},
		sortBy: request.SortKey(b.str("sortBy")),
		page:   b.int("page"),
		limit:  b.int("limit"),
	}
	g := geoInput{
		CityID:   b.str("cityId"),
		Lat:      b.float("lat"),
		Lng:      b.float("lng"),
		RadiusKm: b.float("radiusKm"),
	}
	cities := b.ids("cityIds")
	if b.err != nil {
		return searchParams{}, b.err
	}

	var err error
	p.filters.Geo, p.filters.CityIDs, err = g.resolve(cities)
	if err != nil {
		return searchParams{}, err
	}
	return p, nil
}

// facetsParams parses GET /search/facets.
func facetsParams(r *http.Request) (request.Filters, error) {
	b := newQueryBinder(r)
	f := request.Filters{
		Query:        b.str("q"),
		BrandIDs:     b.ids("brandIds"),
		ModelIDs:     b.ids("modelIds"),
		Conditions:   conditions(b.ids("conditions")),
		CityIDs:      b.ids("cityIds"),
		Currencies:   b.ids("currencies"),
		Types:        types(b.ids("types")),
		MinPrice:     b.float("priceMin"),
		MaxPrice:     b.float("priceMax"),
		VerifiedOnly: b.flag("verifiedOnly"),
		HasImages:    b.flag("hasImages"),
		ViewerID:     r.Header.Get(viewerHeader),
	}
	if b.err != nil {
		return request.Filters{}, b.err
	}
	return f, nil
}

// advancedBody is the JSON body of POST /search/advanced and /search/geo.
type advancedBody struct {
	Query        string   `json:"query"`
	ExactMatch   bool     `json:"exactMatch"`
	SearchFields []string `json:"searchFields"`
	BrandIDs     []string `json:"brandIds"`
	ModelIDs     []string `json:"modelIds"`
	Conditions   []string `json:"conditions"`
	Currencies   []string `json:"currencies"`
	Types        []string `json:"types"`
	CityIDs      []string `json:"cityIds"`
	CityID       string   `json:"cityId"`
	MinPrice     *float64 `json:"minPrice"`
	MaxPrice     *float64 `json:"maxPrice"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
	RadiusKm     *float64 `json:"radiusKm"`
	VerifiedOnly bool     `json:"verifiedOnly"`
	HasImages    bool     `json:"hasImages"`
	SortBy       string   `json:"sortBy"`
	Page         *int     `json:"page"`
	Limit        *int     `json:"limit"`
}

func (b advancedBody) params(viewerID string) (searchParams, error) {
	p := searchParams{
		filters: request.Filters{
			Query:        b.Query,
			ExactMatch:   b.ExactMatch,
			SearchFields: textFields(b.SearchFields),
			BrandIDs:     b.BrandIDs,
			ModelIDs:     b.ModelIDs,
			Conditions:   conditions(b.Conditions),
			Currencies:   b.Currencies,
			Types:        types(b.Types),
			MinPrice:     b.MinPrice,
			MaxPrice:     b.MaxPrice,
			VerifiedOnly: b.VerifiedOnly,
			HasImages:    b.HasImages,
			ViewerID:     viewerID,
		},
		sortBy: request.SortKey(b.SortBy),
		page:   b.Page,
		limit:  b.Limit,
	}
	g := geoInput{CityID: b.CityID, Lat: b.Lat, Lng: b.Lng, RadiusKm: b.RadiusKm}

	var err error
	p.filters.Geo, p.filters.CityIDs, err = g.resolve(b.CityIDs)
	if err != nil {
		return searchParams{}, err
	}
	return p, nil
}
