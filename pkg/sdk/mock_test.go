package listingsearch

import (
	"context"

	"github.com/bazaarhq/listing-search/internal/domain/search/request"
	"github.com/bazaarhq/listing-search/internal/domain/search/result"
	searchuc "github.com/bazaarhq/listing-search/internal/usecase/search"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	basicFn        func(ctx context.Context, req *request.Request) (searchuc.BasicResult, error)
	advancedFn     func(ctx context.Context, req *request.Request) (searchuc.AdvancedResult, error)
	geoFn          func(ctx context.Context, req *request.Request) (searchuc.AdvancedResult, error)
	facetsFn       func(ctx context.Context, f request.Filters) (result.FacetCounts, error)
	autocompleteFn func(ctx context.Context, q string, brandIDs []string) (result.Suggestions, error)
}

func (m *mockSearchUC) Basic(ctx context.Context, req *request.Request) (searchuc.BasicResult, error) {
	return m.basicFn(ctx, req)
}

func (m *mockSearchUC) Advanced(ctx context.Context, req *request.Request) (searchuc.AdvancedResult, error) {
	return m.advancedFn(ctx, req)
}

func (m *mockSearchUC) Geo(ctx context.Context, req *request.Request) (searchuc.AdvancedResult, error) {
	return m.geoFn(ctx, req)
}

func (m *mockSearchUC) Facets(ctx context.Context, f request.Filters) (result.FacetCounts, error) {
	return m.facetsFn(ctx, f)
}

func (m *mockSearchUC) Autocomplete(ctx context.Context, q string, brandIDs []string) (result.Suggestions, error) {
	return m.autocompleteFn(ctx, q, brandIDs)
}

func (m *mockSearchUC) DefaultLimit() int { return 20 }

// --- helpers ---

func testClient(searchSvc searchUseCase) *Client {
	return &Client{searchSvc: searchSvc}
}
