package listingsearch

import (
	"context"
	"fmt"
	"time"
)

// Listings runs a basic search: one page of listings with brand, condition
// and price range facets, plus suggestions when q has text.
func (c *Client) Listings(ctx context.Context, q Query) (_ ListingsResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("listings", start, err) }()

	req, err := q.request(c.searchSvc.DefaultLimit())
	if err != nil {
		return ListingsResult{}, err
	}
	res, err := c.searchSvc.Basic(ctx, &req)
	if err != nil {
		return ListingsResult{}, fmt.Errorf("listings: %w", err)
	}

	out := ListingsResult{
		Page: fromPage(res.Page),
		Facets: Facets{
			Brands:      fromFacetValues(res.Facets.Brands),
			Conditions:  fromFacetValues(res.Facets.Conditions),
			PriceRanges: fromFacets(res.Facets).PriceRanges,
		},
	}
	if res.Suggestions != nil {
		out.Suggestions = fromSuggestions(res.Suggestions.Items)
	}
	return out, nil
}

// Advanced runs a search with every facet and price statistics.
func (c *Client) Advanced(ctx context.Context, q Query) (_ AdvancedResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("advanced", start, err) }()

	req, err := q.request(c.searchSvc.DefaultLimit())
	if err != nil {
		return AdvancedResult{}, err
	}
	res, err := c.searchSvc.Advanced(ctx, &req)
	if err != nil {
		return AdvancedResult{}, fmt.Errorf("advanced search: %w", err)
	}
	return fromAdvanced(res.SearchID, res.Page, res.Aggregations, res.Duration, res.AppliedFilters), nil
}

// Geo is Advanced with a required Radius. Results are sorted by distance
// unless q.Sort says otherwise.
func (c *Client) Geo(ctx context.Context, q Query) (_ AdvancedResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("geo", start, err) }()

	if q.Sort == "" && q.Radius != nil {
		q.Sort = SortDistance
	}
	req, err := q.request(c.searchSvc.DefaultLimit())
	if err != nil {
		return AdvancedResult{}, err
	}
	res, err := c.searchSvc.Geo(ctx, &req)
	if err != nil {
		return AdvancedResult{}, fmt.Errorf("geo search: %w", err)
	}
	return fromAdvanced(res.SearchID, res.Page, res.Aggregations, res.Duration, res.AppliedFilters), nil
}

// Facets counts the listings matching q per facet value, without fetching
// a page. Sort, Page and Limit are ignored.
func (c *Client) Facets(ctx context.Context, q Query) (_ Facets, err error) {
	start := time.Now()
	defer func() { c.obs.observe("facets", start, err) }()

	fc, err := c.searchSvc.Facets(ctx, q.filters())
	if err != nil {
		return Facets{}, fmt.Errorf("facets: %w", err)
	}
	return fromFacets(fc), nil
}

// Autocomplete suggests brands, models, listing titles, cities and popular
// terms for a partial query. Queries shorter than two characters return
// no suggestions.
func (c *Client) Autocomplete(ctx context.Context, text string, brandIDs ...string) (_ []Suggestion, err error) {
	start := time.Now()
	defer func() { c.obs.observe("autocomplete", start, err) }()

	sg, err := c.searchSvc.Autocomplete(ctx, text, brandIDs)
	if err != nil {
		return nil, fmt.Errorf("autocomplete: %w", err)
	}
	return fromSuggestions(sg.Items), nil
}
