package result

// UnknownLabel is shown for facet values whose display name cannot be resolved.
const UnknownLabel = "Unknown"

// FacetValue is one value of a facet dimension with its match count.
type FacetValue struct {
	Value string
	Label string
	Count int
}

// PriceBucket is a fixed price interval [Min, Max) with its match count.
// Max is nil for the open-ended top bucket.
type PriceBucket struct {
	Label string
	Min   float64
	Max   *float64
	Count int
}

// PriceStats are aggregate price statistics over matching listings.
type PriceStats struct {
	Min   float64
	Max   float64
	Avg   float64
	Count int
}

// FacetCounts holds every facet computed for a request.
// A dimension with no eligible values is an empty slice, not nil.
type FacetCounts struct {
	Brands      []FacetValue
	Models      []FacetValue
	Conditions  []FacetValue
	Cities      []FacetValue
	Currencies  []FacetValue
	Types       []FacetValue
	PriceRanges []PriceBucket
	PriceStats  PriceStats
}
