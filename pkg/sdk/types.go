package listingsearch

import (
	"time"

	"github.com/bazaarhq/listing-search/internal/domain/geo"
	"github.com/bazaarhq/listing-search/internal/domain/listing"
	"github.com/bazaarhq/listing-search/internal/domain/search/filter"
	"github.com/bazaarhq/listing-search/internal/domain/search/request"
	"github.com/bazaarhq/listing-search/internal/domain/search/result"
)

// Sort orders results. The zero value sorts by relevance when the query
// has text and by newest first otherwise.
type Sort string

// Sort constants.
const (
	SortRelevance  Sort = "relevance"
	SortPriceAsc   Sort = "price_asc"
	SortPriceDesc  Sort = "price_desc"
	SortNewest     Sort = "date_desc"
	SortOldest     Sort = "date_asc"
	SortPopularity Sort = "popularity"
	// SortDistance requires a Radius.
	SortDistance Sort = "distance"
)

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lng float64
}

// Radius limits results to listings within Km of a city or a point.
// Set exactly one of CityID and Center.
type Radius struct {
	CityID string
	Center *Point
	Km     float64
}

// Query is a listing search. Empty sets and nil bounds mean no constraint.
type Query struct {
	Text       string
	ExactMatch bool
	// SearchFields narrows text matching to title, description, brand or
	// model. Empty means all of them.
	SearchFields []string

	BrandIDs   []string
	ModelIDs   []string
	Conditions []string
	Currencies []string
	Types      []string
	CityIDs    []string

	MinPrice *float64
	MaxPrice *float64

	Radius *Radius

	VerifiedOnly bool
	HasImages    bool

	// ViewerID hides the viewer's own listings.
	ViewerID string

	Sort Sort
	// Page is 1-based; 0 means the first page.
	Page int
	// Limit 0 means the client default.
	Limit int
}

// Price returns a pointer to p, for Query price bounds.
func Price(p float64) *float64 { return &p }

// Ref is a related entity resolved to its display name.
type Ref struct {
	ID   string
	Name string
}

// Listing is a search hit.
type Listing struct {
	ID          string
	Title       string
	Description string
	Price       float64
	Currency    string
	Condition   string
	Type        string
	Images      []string
	IsVerified  bool
	Views       int64
	SellerID    string
	PublishedAt time.Time
	Brand       *Ref
	Model       *Ref
	City        *Ref
	// DistanceKm is set when results are sorted by distance.
	DistanceKm *float64
}

// Page is one page of listings.
type Page struct {
	Listings   []Listing
	Page       int
	Limit      int
	Total      int
	TotalPages int
	HasMore    bool
}

// FacetValue is one value of a facet with its count.
type FacetValue struct {
	Value string
	Label string
	Count int
}

// PriceRange is a fixed price bucket [Min, Max). Max is nil for the top bucket.
type PriceRange struct {
	Label string
	Min   float64
	Max   *float64
	Count int
}

// PriceStats are price aggregates over the matching listings.
type PriceStats struct {
	Min, Max, Avg float64
	Count         int
}

// Facets are per-value counts of the matching listings.
// Listings only fills Brands, Conditions and PriceRanges.
type Facets struct {
	Brands      []FacetValue
	Models      []FacetValue
	Conditions  []FacetValue
	Cities      []FacetValue
	Currencies  []FacetValue
	Types       []FacetValue
	PriceRanges []PriceRange
	PriceStats  PriceStats
}

// Suggestion is an autocomplete entry. Type is brand, model, product,
// location or term.
type Suggestion struct {
	Text  string
	Type  string
	ID    string
	Score float64
}

// ListingsResult is the result of Listings.
type ListingsResult struct {
	Page   Page
	Facets Facets
	// Suggestions is nil when the query has no text.
	Suggestions []Suggestion
}

// AdvancedResult is the result of Advanced and Geo.
type AdvancedResult struct {
	SearchID       string
	Page           Page
	Facets         Facets
	Duration       time.Duration
	AppliedFilters int
}

func (q *Query) filters() request.Filters {
	f := request.Filters{
		Query:        q.Text,
		ExactMatch:   q.ExactMatch,
		BrandIDs:     q.BrandIDs,
		ModelIDs:     q.ModelIDs,
		Currencies:   q.Currencies,
		CityIDs:      q.CityIDs,
		MinPrice:     q.MinPrice,
		MaxPrice:     q.MaxPrice,
		VerifiedOnly: q.VerifiedOnly,
		HasImages:    q.HasImages,
		ViewerID:     q.ViewerID,
	}
	for _, s := range q.SearchFields {
		f.SearchFields = append(f.SearchFields, filter.TextField(s))
	}
	for _, c := range q.Conditions {
		f.Conditions = append(f.Conditions, listing.Condition(c))
	}
	for _, t := range q.Types {
		f.Types = append(f.Types, listing.Type(t))
	}
	if r := q.Radius; r != nil {
		f.Geo = &request.GeoQuery{CityID: r.CityID, RadiusKm: r.Km}
		if r.Center != nil {
			f.Geo.Center = &geo.Point{Lat: r.Center.Lat, Lng: r.Center.Lng}
		}
	}
	return f
}

func (q *Query) request(defaultLimit int) (request.Request, error) {
	var page, limit *int
	if q.Page != 0 {
		page = &q.Page
	}
	if q.Limit != 0 {
		limit = &q.Limit
	}
	return request.New(q.filters(), request.SortKey(q.Sort), page, limit, defaultLimit)
}

func fromRef(r *listing.Ref) *Ref {
	if r == nil {
		return nil
	}
	return &Ref{ID: r.ID, Name: r.Name}
}

func fromPage(p result.Page) Page {
	ls := make([]Listing, len(p.Listings))
	for i := range p.Listings {
		l := &p.Listings[i]
		ls[i] = Listing{
			ID:          l.ID,
			Title:       l.Title,
			Description: l.Description,
			Price:       l.Price,
			Currency:    l.Currency,
			Condition:   string(l.Condition),
			Type:        string(l.Type),
			Images:      l.Images,
			IsVerified:  l.IsVerified,
			Views:       l.Views,
			SellerID:    l.SellerID,
			PublishedAt: l.PublishedAt,
			Brand:       fromRef(l.Brand),
			Model:       fromRef(l.Model),
			City:        fromRef(l.City),
			DistanceKm:  l.DistanceKm,
		}
	}
	pg := p.Pagination
	return Page{
		Listings:   ls,
		Page:       pg.Page(),
		Limit:      pg.Limit(),
		Total:      pg.Total(),
		TotalPages: pg.TotalPages(),
		HasMore:    pg.HasMore(),
	}
}

func fromFacetValues(vs []result.FacetValue) []FacetValue {
	out := make([]FacetValue, len(vs))
	for i, v := range vs {
		out[i] = FacetValue(v)
	}
	return out
}

func fromFacets(fc result.FacetCounts) Facets {
	ranges := make([]PriceRange, len(fc.PriceRanges))
	for i, b := range fc.PriceRanges {
		ranges[i] = PriceRange(b)
	}
	return Facets{
		Brands:      fromFacetValues(fc.Brands),
		Models:      fromFacetValues(fc.Models),
		Conditions:  fromFacetValues(fc.Conditions),
		Cities:      fromFacetValues(fc.Cities),
		Currencies:  fromFacetValues(fc.Currencies),
		Types:       fromFacetValues(fc.Types),
		PriceRanges: ranges,
		PriceStats: PriceStats{
			Min:   fc.PriceStats.Min,
			Max:   fc.PriceStats.Max,
			Avg:   fc.PriceStats.Avg,
			Count: fc.PriceStats.Count,
		},
	}
}

func fromSuggestions(items []result.Suggestion) []Suggestion {
	out := make([]Suggestion, len(items))
	for i, s := range items {
		out[i] = Suggestion{Text: s.Text, Type: string(s.Type), ID: s.ID, Score: s.Score}
	}
	return out
}

func fromAdvanced(id string, p result.Page, fc result.FacetCounts, d time.Duration, applied int) AdvancedResult {
	return AdvancedResult{
		SearchID:       id,
		Page:           fromPage(p),
		Facets:         fromFacets(fc),
		Duration:       d,
		AppliedFilters: applied,
	}
}
