package chi

import (
	"time"

	"github.com/bazaarhq/listing-search/internal/domain/listing"
	"github.com/bazaarhq/listing-search/internal/domain/search/result"
	locationuc "github.com/bazaarhq/listing-search/internal/usecase/location"
	searchuc "github.com/bazaarhq/listing-search/internal/usecase/search"
)

// ErrorCode is the machine-readable error code of an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeNotFound         ErrorCode = "not_found"
	ErrorCodeUpstream         ErrorCode = "upstream_error"
	ErrorCodeTimeout          ErrorCode = "timeout"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

// Listing is a search hit.
type Listing struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Price       float64      `json:"price"`
	Currency    string       `json:"currency"`
	Condition   string       `json:"condition"`
	Type        string       `json:"type"`
	Images      []string     `json:"images"`
	IsVerified  bool         `json:"isVerified"`
	Views       int64        `json:"views"`
	SellerID    string       `json:"sellerId"`
	PublishedAt time.Time    `json:"publishedAt"`
	Brand       *listing.Ref `json:"brand,omitempty"`
	Model       *listing.Ref `json:"model,omitempty"`
	City        *listing.Ref `json:"city,omitempty"`
	DistanceKm  *float64     `json:"distanceKm,omitempty"`
}

// Pagination describes the page position.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// FacetValue is one value of a facet with its count.
type FacetValue struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// PriceRange is a fixed price bucket with its count.
type PriceRange struct {
	Label string   `json:"label"`
	Min   float64  `json:"min"`
	Max   *float64 `json:"max,omitempty"`
	Count int      `json:"count"`
}

// PriceStats are price aggregates.
type PriceStats struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	Count int     `json:"count"`
}

// BasicFacets are the facets of a basic listing search.
type BasicFacets struct {
	Brands      []FacetValue `json:"brands"`
	Conditions  []FacetValue `json:"conditions"`
	PriceRanges []PriceRange `json:"priceRanges"`
}

// Aggregations are the facets of an advanced search and of GET /search/facets.
type Aggregations struct {
	Brands      []FacetValue `json:"brands"`
	Models      []FacetValue `json:"models"`
	Conditions  []FacetValue `json:"conditions"`
	Cities      []FacetValue `json:"cities"`
	Currencies  []FacetValue `json:"currencies"`
	Types       []FacetValue `json:"types"`
	PriceRanges []PriceRange `json:"priceRanges"`
	PriceStats  PriceStats   `json:"priceStats"`
}

// Suggestion is an autocomplete entry.
type Suggestion struct {
	Text  string  `json:"text"`
	Type  string  `json:"type"`
	ID    string  `json:"id,omitempty"`
	Score float64 `json:"score"`
}

// AutocompleteResponse is the body of GET /search/autocomplete.
type AutocompleteResponse struct {
	Suggestions []Suggestion            `json:"suggestions"`
	Categories  map[string][]Suggestion `json:"categories"`
}

// ListingSearchResponse is the body of GET /search/listings.
type ListingSearchResponse struct {
	Listings    []Listing             `json:"listings"`
	Facets      BasicFacets           `json:"facets"`
	Pagination  Pagination            `json:"pagination"`
	Suggestions *AutocompleteResponse `json:"suggestions,omitempty"`
}

// AdvancedSearchResponse is the body of advanced and geo searches.
type AdvancedSearchResponse struct {
	SearchID       string       `json:"searchId"`
	Listings       []Listing    `json:"listings"`
	Total          int          `json:"total"`
	Page           int          `json:"page"`
	TotalPages     int          `json:"totalPages"`
	HasMore        bool         `json:"hasMore"`
	Pagination     Pagination   `json:"pagination"`
	Aggregations   Aggregations `json:"aggregations"`
	SearchDuration int64        `json:"searchDuration"`
	AppliedFilters int          `json:"appliedFilters"`
}

// LocationsResponse is the body of GET /locations/autocomplete.
type LocationsResponse struct {
	Cities []listing.CachedCity `json:"cities"`
	Source string               `json:"source"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func listingsToDTO(ls []listing.Listing) []Listing {
	out := make([]Listing, len(ls))
	for i := range ls {
		l := &ls[i]
		images := l.Images
		if images == nil {
			images = []string{}
		}
		out[i] = Listing{
			ID:          l.ID,
			Title:       l.Title,
			Description: l.Description,
			Price:       l.Price,
			Currency:    l.Currency,
			Condition:   string(l.Condition),
			Type:        string(l.Type),
			Images:      images,
			IsVerified:  l.IsVerified,
			Views:       l.Views,
			SellerID:    l.SellerID,
			PublishedAt: l.PublishedAt.UTC(),
			Brand:       l.Brand,
			Model:       l.Model,
			City:        l.City,
			DistanceKm:  l.DistanceKm,
		}
	}
	return out
}

func paginationToDTO(p result.Pagination) Pagination {
	return Pagination{Page: p.Page(), Limit: p.Limit(), Total: p.Total(), Pages: p.TotalPages()}
}

func facetValuesToDTO(vs []result.FacetValue) []FacetValue {
	out := make([]FacetValue, len(vs))
	for i, v := range vs {
		out[i] = FacetValue{Value: v.Value, Label: v.Label, Count: v.Count}
	}
	return out
}

func priceRangesToDTO(bs []result.PriceBucket) []PriceRange {
	out := make([]PriceRange, len(bs))
	for i, b := range bs {
		out[i] = PriceRange{Label: b.Label, Min: b.Min, Max: b.Max, Count: b.Count}
	}
	return out
}

func aggregationsToDTO(fc result.FacetCounts) Aggregations {
	return Aggregations{
		Brands:      facetValuesToDTO(fc.Brands),
		Models:      facetValuesToDTO(fc.Models),
		Conditions:  facetValuesToDTO(fc.Conditions),
		Cities:      facetValuesToDTO(fc.Cities),
		Currencies:  facetValuesToDTO(fc.Currencies),
		Types:       facetValuesToDTO(fc.Types),
		PriceRanges: priceRangesToDTO(fc.PriceRanges),
		PriceStats: PriceStats{
			Min:   fc.PriceStats.Min,
			Max:   fc.PriceStats.Max,
			Avg:   fc.PriceStats.Avg,
			Count: fc.PriceStats.Count,
		},
	}
}

func suggestionsToDTO(sg result.Suggestions) AutocompleteResponse {
	items := make([]Suggestion, len(sg.Items))
	for i, s := range sg.Items {
		items[i] = suggestionToDTO(s)
	}
	categories := make(map[string][]Suggestion, len(sg.Categories))
	for t, list := range sg.Categories {
		dto := make([]Suggestion, len(list))
		for i, s := range list {
			dto[i] = suggestionToDTO(s)
		}
		categories[string(t)] = dto
	}
	return AutocompleteResponse{Suggestions: items, Categories: categories}
}

func suggestionToDTO(s result.Suggestion) Suggestion {
	return Suggestion{Text: s.Text, Type: string(s.Type), ID: s.ID, Score: s.Score}
}

func basicToDTO(res searchuc.BasicResult) ListingSearchResponse {
	out := ListingSearchResponse{
		Listings: listingsToDTO(res.Page.Listings),
		Facets: BasicFacets{
			Brands:      facetValuesToDTO(res.Facets.Brands),
			Conditions:  facetValuesToDTO(res.Facets.Conditions),
			PriceRanges: priceRangesToDTO(res.Facets.PriceRanges),
		},
		Pagination: paginationToDTO(res.Page.Pagination),
	}
	if res.Suggestions != nil {
		sg := suggestionsToDTO(*res.Suggestions)
		out.Suggestions = &sg
	}
	return out
}

func advancedToDTO(res searchuc.AdvancedResult) AdvancedSearchResponse {
	p := res.Page.Pagination
	return AdvancedSearchResponse{
		SearchID:       res.SearchID,
		Listings:       listingsToDTO(res.Page.Listings),
		Total:          p.Total(),
		Page:           p.Page(),
		TotalPages:     p.TotalPages(),
		HasMore:        p.HasMore(),
		Pagination:     paginationToDTO(p),
		Aggregations:   aggregationsToDTO(res.Aggregations),
		SearchDuration: res.Duration.Milliseconds(),
		AppliedFilters: res.AppliedFilters,
	}
}

func locationsToDTO(res locationuc.Result) LocationsResponse {
	return LocationsResponse{Cities: res.Cities, Source: string(res.Source)}
}
