package result

import "github.com/bazaarhq/listing-search/internal/domain/listing"

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	page       int
	limit      int
	total      int
	totalPages int
	hasMore    bool
}

// NewPagination derives page count and has-more from page, limit and total.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{
		page:       page,
		limit:      limit,
		total:      total,
		totalPages: pages,
		hasMore:    page*limit < total,
	}
}

// Page returns the 1-based page number.
func (p Pagination) Page() int { return p.page }

// Limit returns the page size.
func (p Pagination) Limit() int { return p.limit }

// Total returns the number of matching listings.
func (p Pagination) Total() int { return p.total }

// TotalPages returns ceil(total/limit).
func (p Pagination) TotalPages() int { return p.totalPages }

// HasMore reports whether listings exist after this page.
func (p Pagination) HasMore() bool { return p.hasMore }

// Page is one page of search results.
type Page struct {
	Listings   []listing.Listing
	Pagination Pagination
}
