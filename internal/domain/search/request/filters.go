package request

import (
	"math"
	"strings"

	"github.com/bazaarhq/listing-search/internal/domain"
	"github.com/bazaarhq/listing-search/internal/domain/geo"
	"github.com/bazaarhq/listing-search/internal/domain/listing"
	"github.com/bazaarhq/listing-search/internal/domain/search/filter"
)

// MaxQueryLength is the maximum allowed search query length.
const MaxQueryLength = 256

// GeoQuery is a radius filter around a known city or raw coordinates.
// Exactly one of CityID and Center is set.
type GeoQuery struct {
	CityID   string
	Center   *geo.Point
	RadiusKm float64
}

// Filters is the structured filter part of a search request.
// Empty sets and nil bounds mean "no constraint".
type Filters struct {
	Query        string
	ExactMatch   bool
	SearchFields []filter.TextField

	BrandIDs   []string
	ModelIDs   []string
	Conditions []listing.Condition
	Currencies []string
	Types      []listing.Type
	CityIDs    []string

	MinPrice *float64
	MaxPrice *float64

	Geo *GeoQuery

	VerifiedOnly bool
	HasImages    bool

	// ViewerID excludes the viewer's own listings when set.
	ViewerID string
}

// Normalize trims and deduplicates values and drops unknown enum members and
// search fields. Invalid optional values are treated as absent.
func (f Filters) Normalize() Filters {
	f.Query = strings.TrimSpace(f.Query)
	f.ViewerID = strings.TrimSpace(f.ViewerID)
	f.BrandIDs = cleanIDs(f.BrandIDs)
	f.ModelIDs = cleanIDs(f.ModelIDs)
	f.CityIDs = cleanIDs(f.CityIDs)
	f.Currencies = cleanCurrencies(f.Currencies)

	var conds []listing.Condition
	seenCond := make(map[listing.Condition]bool)
	for _, c := range f.Conditions {
		c = listing.Condition(strings.ToUpper(strings.TrimSpace(string(c))))
		if c.IsValid() && !seenCond[c] {
			seenCond[c] = true
			conds = append(conds, c)
		}
	}
	f.Conditions = conds

	var types []listing.Type
	seenType := make(map[listing.Type]bool)
	for _, t := range f.Types {
		t = listing.Type(strings.ToUpper(strings.TrimSpace(string(t))))
		if t.IsValid() && !seenType[t] {
			seenType[t] = true
			types = append(types, t)
		}
	}
	f.Types = types

	var fields []filter.TextField
	for _, fld := range f.SearchFields {
		fld = filter.TextField(strings.ToLower(strings.TrimSpace(string(fld))))
		if fld.IsValid() {
			fields = append(fields, fld)
		}
	}
	f.SearchFields = fields

	if f.Geo != nil {
		g := *f.Geo
		g.CityID = strings.TrimSpace(g.CityID)
		f.Geo = &g
	}
	return f
}

// Validate rejects structurally invalid filters.
func (f Filters) Validate() error {
	if len(f.Query) > MaxQueryLength {
		return domain.NewValidationError("q", "query too long")
	}
	if !finite(f.MinPrice) {
		return domain.NewValidationError("minPrice", "must be a finite number")
	}
	if !finite(f.MaxPrice) {
		return domain.NewValidationError("maxPrice", "must be a finite number")
	}
	if f.MinPrice != nil && *f.MinPrice < 0 {
		return domain.NewValidationError("minPrice", "must not be negative")
	}
	if f.MaxPrice != nil && *f.MaxPrice < 0 {
		return domain.NewValidationError("maxPrice", "must not be negative")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return domain.NewValidationError("minPrice", "must not exceed maxPrice")
	}
	if f.Geo != nil {
		if err := f.Geo.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (g *GeoQuery) validate() error {
	if !finite(&g.RadiusKm) {
		return domain.NewValidationError("radius", "must be a finite number")
	}
	if g.RadiusKm <= 0 {
		return domain.NewValidationError("radius", "must be positive")
	}
	switch {
	case g.Center != nil && g.CityID != "":
		return domain.NewValidationError("geo", "specify either a city or coordinates, not both")
	case g.Center != nil:
		if !geo.ValidateCoordinates(g.Center.Lat, g.Center.Lng) {
			return domain.NewValidationError("geo", "coordinates out of range")
		}
	case g.CityID == "":
		return domain.NewValidationError("geo", "a city or coordinates are required with a radius")
	}
	return nil
}

// finite reports whether v is absent or a finite number.
func finite(v *float64) bool {
	return v == nil || !(math.IsNaN(*v) || math.IsInf(*v, 0))
}

// AppliedCount is the number of filter fields present on the request.
func (f Filters) AppliedCount() int {
	n := 0
	for _, present := range []bool{
		f.Query != "",
		len(f.BrandIDs) > 0,
		len(f.ModelIDs) > 0,
		len(f.Conditions) > 0,
		len(f.Currencies) > 0,
		len(f.Types) > 0,
		len(f.CityIDs) > 0,
		f.MinPrice != nil,
		f.MaxPrice != nil,
		f.Geo != nil,
		f.VerifiedOnly,
		f.HasImages,
	} {
		if present {
			n++
		}
	}
	return n
}

func cleanIDs(ids []string) []string {
	var out []string
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func cleanCurrencies(cs []string) []string {
	up := make([]string, 0, len(cs))
	for _, c := range cs {
		up = append(up, strings.ToUpper(c))
	}
	return cleanIDs(up)
}
