package postgres

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bazaarhq/listing-search/internal/db"
	"github.com/bazaarhq/listing-search/internal/domain/geo"
	"github.com/bazaarhq/listing-search/internal/domain/search/filter"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func floatPtr(f float64) *float64 { return &f }

func build(t *testing.T, clauses ...filter.Clause) *queryBuilder {
	t.Helper()
	b := &queryBuilder{}
	if err := b.predicate(filter.NewPredicate(now, clauses...)); err != nil {
		t.Fatalf("predicate: %v", err)
	}
	return b
}

func TestBuilder_BaseOnly(t *testing.T) {
	b := build(t)
	want := " WHERE l.status = 'ACTIVE' AND l.published_at IS NOT NULL AND l.published_at <= $1"
	if got := b.whereSQL(); got != want {
		t.Errorf("whereSQL() =\n%q\nwant\n%q", got, want)
	}
	if len(b.args) != 1 || b.args[0] != now {
		t.Errorf("args = %v", b.args)
	}
}

func TestBuilder_Clauses(t *testing.T) {
	r, _ := filter.Closed(floatPtr(50), floatPtr(300))
	halfOpen, _ := filter.NewRangeFilter(nil, floatPtr(100), floatPtr(250), nil)
	brand, _ := filter.NewIn(filter.DimBrand, []string{"apple", "sony"})
	cond, _ := filter.NewIn(filter.DimCondition, []string{"NEW"})
	verified, _ := filter.NewFlag(filter.DimVerified, true)
	images, _ := filter.NewFlag(filter.DimImages, true)
	seller, _ := filter.ExcludeSeller("u1")
	dist, _ := filter.NewDistance(geo.Point{Lat: 1, Lng: 2}, 25)

	tests := []struct {
		name     string
		clause   filter.Clause
		wantSQL  string
		wantArgs int
	}{
		{"brand set", brand, "l.brand_id = ANY($2)", 2},
		{"enum set casts to text", cond, "l.condition::text = ANY($2)", 2},
		{"closed price range", filter.NewPriceRange(r), "l.price >= $2 AND l.price <= $3", 3},
		{"half-open bucket", filter.NewPriceRange(halfOpen), "l.price >= $2 AND l.price < $3", 3},
		{"verified flag", verified, "l.is_verified = $2", 2},
		{"images flag", images, "(coalesce(cardinality(l.images), 0) > 0) = $2", 2},
		{"seller exclusion", seller, "l.seller_id <> $2", 2},
		{"native distance", dist, "asin(sqrt(", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := build(t, tt.clause)
			if len(b.conds) != 2 {
				t.Fatalf("conds = %v", b.conds)
			}
			if !strings.Contains(b.conds[1], tt.wantSQL) {
				t.Errorf("cond = %q, want substring %q", b.conds[1], tt.wantSQL)
			}
			if len(b.args) != tt.wantArgs {
				t.Errorf("len(args) = %d, want %d", len(b.args), tt.wantArgs)
			}
		})
	}
}

func TestBuilder_TextSubstringWithTokens(t *testing.T) {
	text, _ := filter.NewText(filter.TextMatch{
		Query:  "100%_pure",
		Fields: []filter.TextField{filter.FieldTitle, filter.FieldBrand},
		Tokens: []string{"pure"},
	})
	b := build(t, text)
	want := "(l.title ILIKE $2 OR b.name ILIKE $2 OR l.title ILIKE $3 OR l.description ILIKE $3)"
	if b.conds[1] != want {
		t.Errorf("cond =\n%q\nwant\n%q", b.conds[1], want)
	}
	if b.args[1] != `%100\%\_pure%` {
		t.Errorf("pattern = %q, want escaped", b.args[1])
	}
}

func TestBuilder_TextExact(t *testing.T) {
	text, _ := filter.NewText(filter.TextMatch{Query: "AirPods", Exact: true, Fields: []filter.TextField{filter.FieldModel}})
	b := build(t, text)
	if b.conds[1] != "(lower(m.name) = $2)" {
		t.Errorf("cond = %q", b.conds[1])
	}
	if b.args[1] != "airpods" {
		t.Errorf("arg = %v", b.args[1])
	}
}

func TestBuilder_OrderBy(t *testing.T) {
	b := &queryBuilder{}
	got, err := b.orderBy([]db.Order{
		{Field: db.SortVerified, Desc: true},
		{Field: db.SortPublishedAt, Desc: true},
		{Field: db.SortID},
	})
	if err != nil {
		t.Fatalf("orderBy: %v", err)
	}
	want := " ORDER BY l.is_verified DESC NULLS LAST, l.published_at DESC NULLS LAST, l.id ASC NULLS LAST"
	if got != want {
		t.Errorf("orderBy =\n%q\nwant\n%q", got, want)
	}

	if _, err := b.orderBy([]db.Order{{Field: db.SortDistance}}); !errors.Is(err, db.ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}

func TestGroupByQuery(t *testing.T) {
	brand, _ := filter.NewIn(filter.DimBrand, []string{"apple"})
	p := filter.NewPredicate(now, brand).Without(filter.DimBrand)

	q, args, err := groupByQuery(filter.DimBrand, p, 20)
	if err != nil {
		t.Fatalf("groupByQuery: %v", err)
	}
	if strings.Contains(q, "ANY(") {
		t.Error("brand filter must be removed from its own facet query")
	}
	for _, frag := range []string{"SELECT l.brand_id AS value", "l.brand_id IS NOT NULL", "GROUP BY 1", "ORDER BY count DESC, value ASC", "LIMIT $2"} {
		if !strings.Contains(q, frag) {
			t.Errorf("query missing %q:\n%s", frag, q)
		}
	}
	if len(args) != 2 || args[1] != 20 {
		t.Errorf("args = %v", args)
	}

	if _, _, err := groupByQuery(filter.DimPrice, p, 0); !errors.Is(err, db.ErrUnknownDimension) {
		t.Errorf("err = %v, want ErrUnknownDimension", err)
	}
}
