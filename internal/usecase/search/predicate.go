package search

import (
	"context"
	"strings"
	"time"

	"github.com/bazaarhq/listing-search/internal/domain"
	"github.com/bazaarhq/listing-search/internal/domain/geo"
	"github.com/bazaarhq/listing-search/internal/domain/search/filter"
	"github.com/bazaarhq/listing-search/internal/domain/search/request"
)

// minTokenLength is the shortest query token that broadens a substring match.
const minTokenLength = 3

// built is a request translated into a predicate.
type built struct {
	predicate filter.Predicate
	// origin is the distance reference point, nil without a located geo filter.
	origin *geo.Point
}

// buildPredicate translates normalized filters into a predicate evaluated at now.
func (s *Service) buildPredicate(ctx context.Context, f request.Filters, now time.Time) (built, error) {
	p := filter.NewPredicate(now)
	var out built

	if f.Query != "" {
		m := filter.TextMatch{Query: f.Query, Exact: f.ExactMatch, Fields: f.SearchFields}
		if !f.ExactMatch {
			m.Tokens = queryTokens(f.Query)
		}
		c, err := filter.NewText(m)
		if err != nil {
			return built{}, domain.NewValidationError("q", err.Error())
		}
		p = p.And(c)
	}

	sets := []struct {
		dim    filter.Dimension
		values []string
	}{
		{filter.DimBrand, f.BrandIDs},
		{filter.DimModel, f.ModelIDs},
		{filter.DimCondition, toStrings(f.Conditions)},
		{filter.DimCurrency, f.Currencies},
		{filter.DimType, toStrings(f.Types)},
		{filter.DimCity, f.CityIDs},
	}
	for _, set := range sets {
		if len(set.values) == 0 {
			continue
		}
		c, err := filter.NewIn(set.dim, set.values)
		if err != nil {
			return built{}, err
		}
		p = p.And(c)
	}

	if f.Geo != nil {
		g, err := s.resolveGeo(ctx, f.Geo)
		if err != nil {
			return built{}, err
		}
		p = p.And(g.clause)
		out.origin = g.center
	}

	if f.MinPrice != nil || f.MaxPrice != nil {
		r, err := filter.Closed(f.MinPrice, f.MaxPrice)
		if err != nil {
			return built{}, domain.NewValidationError("minPrice", err.Error())
		}
		p = p.And(filter.NewPriceRange(r))
	}

	for _, flag := range []struct {
		dim filter.Dimension
		on  bool
	}{
		{filter.DimVerified, f.VerifiedOnly},
		{filter.DimImages, f.HasImages},
	} {
		if !flag.on {
			continue
		}
		c, err := filter.NewFlag(flag.dim, true)
		if err != nil {
			return built{}, err
		}
		p = p.And(c)
	}

	if f.ViewerID != "" {
		c, err := filter.ExcludeSeller(f.ViewerID)
		if err != nil {
			return built{}, err
		}
		p = p.And(c)
	}

	out.predicate = p
	return out, nil
}

// queryTokens returns the distinct whitespace-delimited tokens of q longer
// than two characters. A single-token query yields none.
func queryTokens(q string) []string {
	fields := strings.Fields(q)
	if len(fields) < 2 {
		return nil
	}
	var out []string
	seen := make(map[string]bool, len(fields))
	for _, t := range fields {
		key := strings.ToLower(t)
		if len([]rune(t)) < minTokenLength || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

func toStrings[T ~string](vs []T) []string {
	if len(vs) == 0 {
		return nil
	}
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}
