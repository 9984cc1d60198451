package request

import (
	"github.com/bazaarhq/listing-search/internal/domain"
)

// Page size limits.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Request is a validated search query.
type Request struct {
	filters Filters
	sortBy  SortKey
	page    int
	limit   int
}

// New normalizes and validates search parameters.
// nil page means 1, nil limit means defaultLimit. page < 1 and limit < 1 are
// rejected; limit above MaxLimit is clamped. An unknown sort key falls back to
// the default: relevance with a query, date_desc without.
func New(f Filters, sortBy SortKey, page, limit *int, defaultLimit int) (Request, error) {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return Request{}, err
	}

	p := 1
	if page != nil {
		if *page < 1 {
			return Request{}, domain.NewValidationError("page", "must be at least 1")
		}
		p = *page
	}

	if defaultLimit <= 0 || defaultLimit > MaxLimit {
		defaultLimit = DefaultLimit
	}
	l := defaultLimit
	if limit != nil {
		if *limit < 1 {
			return Request{}, domain.NewValidationError("limit", "must be at least 1")
		}
		l = min(*limit, MaxLimit)
	}

	if !sortBy.IsValid() {
		sortBy = defaultSort(f)
	}
	if sortBy == SortDistance && f.Geo == nil {
		return Request{}, domain.NewValidationError("sortBy", "distance sort requires a location and radius")
	}

	return Request{filters: f, sortBy: sortBy, page: p, limit: l}, nil
}

func defaultSort(f Filters) SortKey {
	if f.Query != "" {
		return SortRelevance
	}
	return SortDateDesc
}

// Filters returns the normalized filters.
func (r *Request) Filters() Filters { return r.filters }

// Sort returns the effective sort key.
func (r *Request) Sort() SortKey { return r.sortBy }

// Page returns the 1-based page number.
func (r *Request) Page() int { return r.page }

// Limit returns the page size.
func (r *Request) Limit() int { return r.limit }

// Skip returns the number of rows before the page.
func (r *Request) Skip() int { return (r.page - 1) * r.limit }
