package request

// SortKey is the result ordering.
type SortKey string

// Sort keys.
const (
	SortRelevance  SortKey = "relevance"
	SortPriceAsc   SortKey = "price_asc"
	SortPriceDesc  SortKey = "price_desc"
	SortDateAsc    SortKey = "date_asc"
	SortDateDesc   SortKey = "date_desc"
	SortPopularity SortKey = "popularity"
	// SortDistance orders by distance from the geo center; requires a geo filter.
	SortDistance SortKey = "distance"
)

// IsValid checks if the key is one of the supported values.
func (k SortKey) IsValid() bool {
	switch k {
	case SortRelevance, SortPriceAsc, SortPriceDesc, SortDateAsc, SortDateDesc, SortPopularity, SortDistance:
		return true
	default:
		return false
	}
}
