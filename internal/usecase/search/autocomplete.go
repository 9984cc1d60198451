package search

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bazaarhq/listing-search/internal/domain/search/filter"
	"github.com/bazaarhq/listing-search/internal/domain/search/result"
	"github.com/bazaarhq/listing-search/internal/logger"
)

// Source scores.
const (
	scoreModel    = 0.9
	scoreBrand    = 0.8
	scoreProduct  = 0.7
	scoreLocation = 0.6
	scoreTerm     = 0.5
)

type suggestionSource struct {
	kind  result.SuggestionType
	fetch func(ctx context.Context) ([]result.Suggestion, error)
}

// Autocomplete suggests completions for q from brands, models, listing
// titles, cities and popular terms. Queries shorter than two characters
// return no suggestions without touching the store. A failing source is
// logged and contributes nothing.
func (s *Service) Autocomplete(ctx context.Context, q string, brandIDs []string) (result.Suggestions, error) {
	start := time.Now()
	defer s.metrics.observeSearch("autocomplete", start)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	return s.autocomplete(ctx, q, brandIDs), nil
}

func (s *Service) autocomplete(ctx context.Context, q string, brandIDs []string) result.Suggestions {
	q = strings.TrimSpace(q)
	if len([]rune(q)) < MinAutocompleteLength {
		return result.Suggestions{Items: []result.Suggestion{}, Categories: map[result.SuggestionType][]result.Suggestion{}}
	}

	sources := s.sources(q, brandIDs)
	lists := make([][]result.Suggestion, len(sources))

	// Sources never fail the group; errgroup is only the barrier.
	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			items, err := src.fetch(ctx)
			if err != nil {
				s.metrics.incSourceError(string(src.kind))
				logger.FromContext(ctx, s.logger).Warn("Autocomplete source failed",
					zap.String("source", string(src.kind)), zap.Error(err))
				return nil
			}
			lists[i] = truncate(items, s.cfg.SourceLimit)
			return nil
		})
	}
	_ = g.Wait()

	items := mergeSuggestions(lists, s.cfg.SuggestionLimit)
	return result.Suggestions{Items: items, Categories: result.Categorize(items)}
}

// sources lists candidate sources in merge order.
func (s *Service) sources(q string, brandIDs []string) []suggestionSource {
	limit := s.cfg.SourceLimit
	return []suggestionSource{
		{result.SuggestionBrand, func(ctx context.Context) ([]result.Suggestion, error) {
			brands, err := s.catalog.MatchBrands(ctx, q, limit)
			if err != nil {
				return nil, err
			}
			out := make([]result.Suggestion, len(brands))
			for i, b := range brands {
				out[i] = result.Suggestion{Text: b.Name, Type: result.SuggestionBrand, ID: b.ID, Score: scoreBrand}
			}
			return out, nil
		}},
		{result.SuggestionModel, func(ctx context.Context) ([]result.Suggestion, error) {
			models, err := s.catalog.MatchModels(ctx, q, brandIDs, limit)
			if err != nil {
				return nil, err
			}
			out := make([]result.Suggestion, len(models))
			for i, m := range models {
				text := m.Name
				if m.BrandName != "" {
					text = m.BrandName + " " + m.Name
				}
				out[i] = result.Suggestion{Text: text, Type: result.SuggestionModel, ID: m.ID, Score: scoreModel}
			}
			return out, nil
		}},
		{result.SuggestionProduct, func(ctx context.Context) ([]result.Suggestion, error) {
			titles, err := s.catalog.MatchListingTitles(ctx, q, filter.NewPredicate(s.now()), limit)
			if err != nil {
				return nil, err
			}
			out := make([]result.Suggestion, len(titles))
			for i, t := range titles {
				out[i] = result.Suggestion{Text: t.Title, Type: result.SuggestionProduct, ID: t.ID, Score: scoreProduct}
			}
			return out, nil
		}},
		{result.SuggestionLocation, func(ctx context.Context) ([]result.Suggestion, error) {
			cities, err := s.catalog.MatchCities(ctx, q, limit)
			if err != nil {
				return nil, err
			}
			out := make([]result.Suggestion, len(cities))
			for i, c := range cities {
				out[i] = result.Suggestion{Text: c.Name, Type: result.SuggestionLocation, ID: c.ID, Score: scoreLocation}
			}
			return out, nil
		}},
		{result.SuggestionTerm, func(_ context.Context) ([]result.Suggestion, error) {
			lq := strings.ToLower(q)
			var out []result.Suggestion
			for _, term := range s.cfg.PopularTerms {
				if strings.Contains(strings.ToLower(term), lq) {
					out = append(out, result.Suggestion{Text: term, Type: result.SuggestionTerm, Score: scoreTerm})
				}
			}
			return out, nil
		}},
	}
}

// mergeSuggestions concatenates lists in order, drops case-insensitive
// duplicate texts keeping the first, stable-sorts by score desc and
// truncates to limit.
func mergeSuggestions(lists [][]result.Suggestion, limit int) []result.Suggestion {
	seen := make(map[string]bool)
	out := []result.Suggestion{}
	for _, list := range lists {
		for _, sg := range list {
			key := strings.ToLower(strings.TrimSpace(sg.Text))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, sg)
		}
	}
	slices.SortStableFunc(out, func(a, b result.Suggestion) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return truncate(out, limit)
}

func truncate[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
