package db

import (
	"github.com/bazaarhq/listing-search/internal/domain/geo"
	"github.com/bazaarhq/listing-search/internal/domain/search/filter"
)

// SortField is a listing attribute results can be ordered by.
type SortField string

// Sort fields.
const (
	SortVerified    SortField = "is_verified"
	SortPublishedAt SortField = "published_at"
	SortPrice       SortField = "price"
	SortViews       SortField = "views"
	// SortDistance orders by distance from Origin to the listing's city.
	// Listings without a located city sort last in ascending order.
	SortDistance SortField = "distance"
	SortID       SortField = "id"
)

// Order is one key of an ORDER BY list.
type Order struct {
	Field  SortField
	Desc   bool
	Origin *geo.Point
}

// Include selects relations to resolve on fetched listings.
type Include struct {
	Brand bool
	Model bool
	City  bool
}

// FindQuery is the input for FindMany.
type FindQuery struct {
	Predicate filter.Predicate
	OrderBy   []Order
	Skip      int
	Take      int
	Include   Include
}

// GroupCount is a per-value listing count.
type GroupCount struct {
	Value string `db:"value"`
	Count int    `db:"count"`
}

// Stats are price aggregates over matching listings.
// Min, Max and Avg are zero when Count is zero.
type Stats struct {
	Min   float64 `db:"min"`
	Max   float64 `db:"max"`
	Avg   float64 `db:"avg"`
	Count int     `db:"count"`
}

// TitleMatch is a listing title matched by autocomplete.
type TitleMatch struct {
	ID    string `db:"id"`
	Title string `db:"title"`
}
