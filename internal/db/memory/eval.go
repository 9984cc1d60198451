package memory

import (
	"fmt"
	"math"
	"strings"

	"github.com/bazaarhq/listing-search/internal/db"
	"github.com/bazaarhq/listing-search/internal/domain/listing"
	"github.com/bazaarhq/listing-search/internal/domain/search/filter"
)

func (s *Store) matches(l *listing.Listing, clauses []filter.Clause) (bool, error) {
	for _, c := range clauses {
		ok, err := s.matchClause(l, c)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (s *Store) matchClause(l *listing.Listing, c filter.Clause) (bool, error) {
	switch c.Kind() {
	case filter.KindVisible:
		return l.IsVisible(c.Now()), nil
	case filter.KindText:
		return s.matchText(l, c.Text()), nil
	case filter.KindIn:
		v := dimensionValue(l, c.Dimension())
		for _, want := range c.Values() {
			if v == want {
				return true, nil
			}
		}
		return false, nil
	case filter.KindRange:
		if c.Dimension() != filter.DimPrice {
			return false, fmt.Errorf("%w: range on %s", db.ErrUnsupported, c.Dimension())
		}
		return c.Range().Contains(l.Price), nil
	case filter.KindFlag:
		switch c.Dimension() {
		case filter.DimVerified:
			return l.IsVerified == c.Flag(), nil
		case filter.DimImages:
			return (len(l.Images) > 0) == c.Flag(), nil
		}
	case filter.KindNotEqual:
		if c.Dimension() == filter.DimSeller {
			return l.SellerID != c.Values()[0], nil
		}
	case filter.KindDistance:
		d := c.Distance()
		dist, ok := s.cityDistance(l, d.Center)
		return ok && dist <= d.RadiusKm, nil
	}
	return false, fmt.Errorf("%w: kind %d on %s", db.ErrUnsupported, c.Kind(), c.Dimension())
}

func (s *Store) matchText(l *listing.Listing, m *filter.TextMatch) bool {
	q := strings.ToLower(m.Query)
	for _, f := range m.Fields {
		v := strings.ToLower(s.fieldValue(l, f))
		if v == "" {
			continue
		}
		if m.Exact && v == q {
			return true
		}
		if !m.Exact && strings.Contains(v, q) {
			return true
		}
	}
	if m.Exact {
		return false
	}
	title := strings.ToLower(l.Title)
	desc := strings.ToLower(l.Description)
	for _, tok := range m.Tokens {
		tok = strings.ToLower(tok)
		if strings.Contains(title, tok) || strings.Contains(desc, tok) {
			return true
		}
	}
	return false
}

func (s *Store) fieldValue(l *listing.Listing, f filter.TextField) string {
	switch f {
	case filter.FieldTitle:
		return l.Title
	case filter.FieldDescription:
		return l.Description
	case filter.FieldBrand:
		return s.brands[l.BrandID].Name
	case filter.FieldModel:
		return s.models[l.ModelID].Name
	default:
		return ""
	}
}

func (s *Store) compare(a, b *listing.Listing, orders []db.Order) int {
	for _, o := range orders {
		c := s.compareField(a, b, o)
		if c == 0 {
			continue
		}
		if o.Desc {
			return -c
		}
		return c
	}
	return 0
}

func (s *Store) compareField(a, b *listing.Listing, o db.Order) int {
	switch o.Field {
	case db.SortVerified:
		return compareBool(a.IsVerified, b.IsVerified)
	case db.SortPublishedAt:
		return a.PublishedAt.Compare(b.PublishedAt)
	case db.SortPrice:
		return compareFloat(a.Price, b.Price)
	case db.SortViews:
		return compareFloat(float64(a.Views), float64(b.Views))
	case db.SortID:
		return strings.Compare(a.ID, b.ID)
	case db.SortDistance:
		if o.Origin == nil {
			return 0
		}
		distA, okA := s.cityDistance(a, *o.Origin)
		distB, okB := s.cityDistance(b, *o.Origin)
		if !okA {
			distA = math.Inf(1)
		}
		if !okB {
			distB = math.Inf(1)
		}
		return compareFloat(distA, distB)
	}
	return 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
