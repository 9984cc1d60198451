package postgres

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/bazaarhq/listing-search/internal/db"
	"github.com/bazaarhq/listing-search/internal/domain/geo"
	"github.com/bazaarhq/listing-search/internal/domain/search/filter"
)

// fromListings joins every relation a predicate or projection may reference.
const fromListings = `FROM listings l
	LEFT JOIN brands b ON b.id = l.brand_id
	LEFT JOIN models m ON m.id = l.model_id
	LEFT JOIN cities c ON c.id = l.city_id`

var dimensionColumns = map[filter.Dimension]string{
	filter.DimBrand:     "l.brand_id",
	filter.DimModel:     "l.model_id",
	filter.DimCondition: "l.condition::text",
	filter.DimCurrency:  "l.currency",
	filter.DimType:      "l.type::text",
	filter.DimCity:      "l.city_id",
}

var textColumns = map[filter.TextField]string{
	filter.FieldTitle:       "l.title",
	filter.FieldDescription: "l.description",
	filter.FieldBrand:       "b.name",
	filter.FieldModel:       "m.name",
}

// queryBuilder accumulates SQL conditions with positional $n arguments.
type queryBuilder struct {
	conds []string
	args  []any
}

// arg registers a bind value and returns its placeholder.
func (b *queryBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *queryBuilder) where(cond string) *queryBuilder {
	b.conds = append(b.conds, cond)
	return b
}

// predicate adds every clause of p.
func (b *queryBuilder) predicate(p filter.Predicate) error {
	for _, c := range p.Clauses() {
		cond, err := b.clause(c)
		if err != nil {
			return err
		}
		b.where(cond)
	}
	return nil
}

func (b *queryBuilder) clause(c filter.Clause) (string, error) {
	switch c.Kind() {
	case filter.KindVisible:
		return fmt.Sprintf("l.status = 'ACTIVE' AND l.published_at IS NOT NULL AND l.published_at <= %s",
			b.arg(c.Now())), nil
	case filter.KindText:
		return b.text(c.Text()), nil
	case filter.KindIn:
		col, ok := dimensionColumns[c.Dimension()]
		if !ok {
			return "", fmt.Errorf("%w: %s", db.ErrUnknownDimension, c.Dimension())
		}
		return fmt.Sprintf("%s = ANY(%s)", col, b.arg(pq.Array(c.Values()))), nil
	case filter.KindRange:
		if c.Dimension() != filter.DimPrice {
			break
		}
		return b.priceRange(c.Range()), nil
	case filter.KindFlag:
		switch c.Dimension() {
		case filter.DimVerified:
			return "l.is_verified = " + b.arg(c.Flag()), nil
		case filter.DimImages:
			return "(coalesce(cardinality(l.images), 0) > 0) = " + b.arg(c.Flag()), nil
		}
	case filter.KindNotEqual:
		if c.Dimension() == filter.DimSeller {
			return "l.seller_id <> " + b.arg(c.Values()[0]), nil
		}
	case filter.KindDistance:
		d := c.Distance()
		return fmt.Sprintf("%s <= %s", b.distance(d.Center), b.arg(d.RadiusKm)), nil
	}
	return "", fmt.Errorf("%w: kind %d on %s", db.ErrUnsupported, c.Kind(), c.Dimension())
}

func (b *queryBuilder) text(m *filter.TextMatch) string {
	var ors []string
	if m.Exact {
		q := b.arg(strings.ToLower(m.Query))
		for _, f := range m.Fields {
			ors = append(ors, fmt.Sprintf("lower(%s) = %s", textColumns[f], q))
		}
		return "(" + strings.Join(ors, " OR ") + ")"
	}

	q := b.arg(likePattern(m.Query))
	for _, f := range m.Fields {
		ors = append(ors, fmt.Sprintf("%s ILIKE %s", textColumns[f], q))
	}
	for _, tok := range m.Tokens {
		t := b.arg(likePattern(tok))
		ors = append(ors, fmt.Sprintf("l.title ILIKE %s", t), fmt.Sprintf("l.description ILIKE %s", t))
	}
	return "(" + strings.Join(ors, " OR ") + ")"
}

func (b *queryBuilder) priceRange(r *filter.Range) string {
	var parts []string
	if v := r.GT(); v != nil {
		parts = append(parts, "l.price > "+b.arg(*v))
	}
	if v := r.GTE(); v != nil {
		parts = append(parts, "l.price >= "+b.arg(*v))
	}
	if v := r.LT(); v != nil {
		parts = append(parts, "l.price < "+b.arg(*v))
	}
	if v := r.LTE(); v != nil {
		parts = append(parts, "l.price <= "+b.arg(*v))
	}
	return strings.Join(parts, " AND ")
}

// distance is the native great-circle expression from origin to the
// listing's city, in kilometers.
func (b *queryBuilder) distance(origin geo.Point) string {
	lat, lng := b.arg(origin.Lat), b.arg(origin.Lng)
	return fmt.Sprintf(
		"(2 * %g * asin(sqrt(least(1, "+
			"power(sin(radians(c.latitude - %s) / 2), 2) + "+
			"cos(radians(%s)) * cos(radians(c.latitude)) * power(sin(radians(c.longitude - %s) / 2), 2)))))",
		geo.EarthRadiusKm, lat, lat, lng)
}

func (b *queryBuilder) orderBy(orders []db.Order) (string, error) {
	if len(orders) == 0 {
		return "", nil
	}
	keys := make([]string, 0, len(orders))
	for _, o := range orders {
		var expr string
		switch o.Field {
		case db.SortVerified:
			expr = "l.is_verified"
		case db.SortPublishedAt:
			expr = "l.published_at"
		case db.SortPrice:
			expr = "l.price"
		case db.SortViews:
			expr = "l.views"
		case db.SortID:
			expr = "l.id"
		case db.SortDistance:
			if o.Origin == nil {
				return "", fmt.Errorf("%w: distance order without origin", db.ErrUnsupported)
			}
			expr = b.distance(*o.Origin)
		default:
			return "", fmt.Errorf("%w: order by %s", db.ErrUnsupported, o.Field)
		}
		dir := " ASC"
		if o.Desc {
			dir = " DESC"
		}
		keys = append(keys, expr+dir+" NULLS LAST")
	}
	return " ORDER BY " + strings.Join(keys, ", "), nil
}

func (b *queryBuilder) whereSQL() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
