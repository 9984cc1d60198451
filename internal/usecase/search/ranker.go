package search

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/bazaarhq/listing-search/internal/db"
	"github.com/bazaarhq/listing-search/internal/domain"
	"github.com/bazaarhq/listing-search/internal/domain/geo"
	"github.com/bazaarhq/listing-search/internal/domain/listing"
	"github.com/bazaarhq/listing-search/internal/domain/search/filter"
	"github.com/bazaarhq/listing-search/internal/domain/search/request"
	"github.com/bazaarhq/listing-search/internal/domain/search/result"
)

var includeAll = db.Include{Brand: true, Model: true, City: true}

// orderFor maps a sort key to store order keys. Every order ends with id asc
// so equal keys page deterministically.
func orderFor(key request.SortKey, origin *geo.Point) ([]db.Order, error) {
	var keys []db.Order
	switch key {
	case request.SortRelevance:
		keys = []db.Order{{Field: db.SortVerified, Desc: true}, {Field: db.SortPublishedAt, Desc: true}}
	case request.SortPriceAsc:
		keys = []db.Order{{Field: db.SortPrice}}
	case request.SortPriceDesc:
		keys = []db.Order{{Field: db.SortPrice, Desc: true}}
	case request.SortDateAsc:
		keys = []db.Order{{Field: db.SortPublishedAt}}
	case request.SortDateDesc:
		keys = []db.Order{{Field: db.SortPublishedAt, Desc: true}}
	case request.SortPopularity:
		keys = []db.Order{{Field: db.SortViews, Desc: true}, {Field: db.SortPublishedAt, Desc: true}}
	case request.SortDistance:
		if origin == nil {
			return nil, domain.NewValidationError("sortBy", "distance sort requires a known location")
		}
		keys = []db.Order{{Field: db.SortDistance, Origin: origin}}
	default:
		return nil, domain.NewValidationError("sortBy", fmt.Sprintf("unsupported sort key %q", key))
	}
	return append(keys, db.Order{Field: db.SortID}), nil
}

// fetchPage counts and fetches one page concurrently from the same predicate.
func (s *Service) fetchPage(
	ctx context.Context, p filter.Predicate, orders []db.Order, req *request.Request,
) (result.Page, error) {
	var (
		total    int
		listings []listing.Listing
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.store.Count(gctx, p)
		if err != nil {
			return fmt.Errorf("count listings: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		ls, err := s.store.FindMany(gctx, &db.FindQuery{
			Predicate: p,
			OrderBy:   orders,
			Skip:      req.Skip(),
			Take:      req.Limit(),
			Include:   includeAll,
		})
		if err != nil {
			return fmt.Errorf("find listings: %w", err)
		}
		listings = ls
		return nil
	})
	if err := g.Wait(); err != nil {
		return result.Page{}, err
	}

	if listings == nil {
		listings = []listing.Listing{}
	}
	return result.Page{
		Listings:   listings,
		Pagination: result.NewPagination(req.Page(), req.Limit(), total),
	}, nil
}
