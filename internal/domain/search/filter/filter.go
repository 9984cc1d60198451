package filter

import (
	"fmt"
	"time"

	"github.com/bazaarhq/listing-search/internal/domain/geo"
)

// Dimension identifies the listing attribute a clause constrains.
// Every clause belongs to exactly one dimension so that a predicate can be
// rebuilt with one dimension's constraints removed.
type Dimension string

// Filter dimensions.
const (
	DimBase      Dimension = "base"
	DimText      Dimension = "text"
	DimBrand     Dimension = "brand"
	DimModel     Dimension = "model"
	DimCondition Dimension = "condition"
	DimCurrency  Dimension = "currency"
	DimType      Dimension = "type"
	DimCity      Dimension = "city"
	DimPrice     Dimension = "price"
	DimVerified  Dimension = "verified"
	DimImages    Dimension = "images"
	DimSeller    Dimension = "seller"
)

// IsGroupable reports whether listings can be grouped by the dimension's raw value.
func (d Dimension) IsGroupable() bool {
	switch d {
	case DimBrand, DimModel, DimCondition, DimCurrency, DimType, DimCity:
		return true
	default:
		return false
	}
}

// Kind is the clause variant.
type Kind int

// Clause kinds.
const (
	// KindVisible is the always-on visibility constraint (ACTIVE, published).
	KindVisible Kind = iota
	// KindText matches the query text against listing and catalog fields.
	KindText
	// KindIn tests value membership in a set.
	KindIn
	// KindRange tests a numeric range.
	KindRange
	// KindFlag tests a boolean attribute.
	KindFlag
	// KindNotEqual excludes a single value.
	KindNotEqual
	// KindDistance is evaluated natively by the store: the listing's city
	// must lie within RadiusKm of Center. Only valid on DimCity.
	KindDistance
)

// TextField is a field the text clause may search.
type TextField string

// Searchable text fields.
const (
	FieldTitle       TextField = "title"
	FieldDescription TextField = "description"
	FieldBrand       TextField = "brand"
	FieldModel       TextField = "model"
)

// DefaultTextFields is the field subset searched when none is requested.
var DefaultTextFields = []TextField{FieldTitle, FieldDescription, FieldBrand, FieldModel}

// IsValid reports whether f is a searchable field.
func (f TextField) IsValid() bool {
	switch f {
	case FieldTitle, FieldDescription, FieldBrand, FieldModel:
		return true
	default:
		return false
	}
}

// TextMatch describes a text clause.
type TextMatch struct {
	Query  string
	Exact  bool
	Fields []TextField
	// Tokens are extra terms matched against title/description in substring mode.
	Tokens []string
}

// Distance describes a native radius clause.
type Distance struct {
	Center   geo.Point
	RadiusKm float64
}

// Clause is a single constraint of a predicate.
type Clause struct {
	dim      Dimension
	kind     Kind
	now      time.Time
	text     *TextMatch
	values   []string
	rng      *Range
	flag     bool
	distance *Distance
}

// Dimension returns the dimension the clause constrains.
func (c Clause) Dimension() Dimension { return c.dim }

// Kind returns the clause variant.
func (c Clause) Kind() Kind { return c.kind }

// Now returns the visibility cutoff of a KindVisible clause.
func (c Clause) Now() time.Time { return c.now }

// Text returns the text match of a KindText clause.
func (c Clause) Text() *TextMatch { return c.text }

// Values returns the set of a KindIn clause or the single value of KindNotEqual.
func (c Clause) Values() []string { return c.values }

// Range returns the range of a KindRange clause.
func (c Clause) Range() *Range { return c.rng }

// Flag returns the expected value of a KindFlag clause.
func (c Clause) Flag() bool { return c.flag }

// Distance returns the radius of a KindDistance clause.
func (c Clause) Distance() *Distance { return c.distance }

// Visible creates the base visibility clause evaluated at now.
func Visible(now time.Time) Clause {
	return Clause{dim: DimBase, kind: KindVisible, now: now}
}

// NewText creates a text clause.
func NewText(m TextMatch) (Clause, error) {
	if m.Query == "" {
		return Clause{}, fmt.Errorf("text query is required")
	}
	if len(m.Fields) == 0 {
		m.Fields = DefaultTextFields
	}
	for _, f := range m.Fields {
		if !f.IsValid() {
			return Clause{}, fmt.Errorf("unknown text field %q", f)
		}
	}
	return Clause{dim: DimText, kind: KindText, text: &m}, nil
}

// NewIn creates a set-membership clause on a groupable dimension.
func NewIn(dim Dimension, values []string) (Clause, error) {
	if !dim.IsGroupable() {
		return Clause{}, fmt.Errorf("dimension %q does not support set filters", dim)
	}
	if len(values) == 0 {
		return Clause{}, fmt.Errorf("at least one value is required for %q", dim)
	}
	cp := make([]string, len(values))
	copy(cp, values)
	return Clause{dim: dim, kind: KindIn, values: cp}, nil
}

// NewPriceRange creates a price range clause.
func NewPriceRange(r Range) Clause {
	return Clause{dim: DimPrice, kind: KindRange, rng: &r}
}

// NewFlag creates a boolean equality clause on verified or images.
func NewFlag(dim Dimension, want bool) (Clause, error) {
	if dim != DimVerified && dim != DimImages {
		return Clause{}, fmt.Errorf("dimension %q is not a flag", dim)
	}
	return Clause{dim: dim, kind: KindFlag, flag: want}, nil
}

// ExcludeSeller creates a clause dropping listings of the given seller.
func ExcludeSeller(sellerID string) (Clause, error) {
	if sellerID == "" {
		return Clause{}, fmt.Errorf("seller id is required")
	}
	return Clause{dim: DimSeller, kind: KindNotEqual, values: []string{sellerID}}, nil
}

// NewDistance creates a native radius clause on the city dimension.
func NewDistance(center geo.Point, radiusKm float64) (Clause, error) {
	if radiusKm <= 0 {
		return Clause{}, fmt.Errorf("radius must be positive")
	}
	return Clause{dim: DimCity, kind: KindDistance, distance: &Distance{Center: center, RadiusKm: radiusKm}}, nil
}

// Range is a numeric range with gt/gte/lt/lte boundaries.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// NewRangeFilter validates and creates a Range.
// At least one boundary required. gt/gte and lt/lte are mutually exclusive.
func NewRangeFilter(gt, gte, lt, lte *float64) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, fmt.Errorf("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, fmt.Errorf("cannot specify both lt and lte")
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// Closed creates the inclusive range [lo, hi]; either bound may be nil.
func Closed(lo, hi *float64) (Range, error) {
	if lo != nil && hi != nil && *lo > *hi {
		return Range{}, fmt.Errorf("lower bound %g exceeds upper bound %g", *lo, *hi)
	}
	return NewRangeFilter(nil, lo, nil, hi)
}

// GT returns the lower exclusive bound.
func (r Range) GT() *float64 { return r.gt }

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LT returns the upper exclusive bound.
func (r Range) LT() *float64 { return r.lt }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }

// Contains reports whether v satisfies every bound.
func (r Range) Contains(v float64) bool {
	if r.gt != nil && !(v > *r.gt) {
		return false
	}
	if r.gte != nil && !(v >= *r.gte) {
		return false
	}
	if r.lt != nil && !(v < *r.lt) {
		return false
	}
	if r.lte != nil && !(v <= *r.lte) {
		return false
	}
	return true
}
