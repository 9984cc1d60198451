package result

// SuggestionType tags the candidate source of an autocomplete suggestion.
type SuggestionType string

// Suggestion types.
const (
	SuggestionBrand    SuggestionType = "brand"
	SuggestionModel    SuggestionType = "model"
	SuggestionProduct  SuggestionType = "product"
	SuggestionLocation SuggestionType = "location"
	SuggestionTerm     SuggestionType = "term"
)

// SuggestionTypes lists suggestion types in source order.
var SuggestionTypes = []SuggestionType{
	SuggestionBrand, SuggestionModel, SuggestionProduct, SuggestionLocation, SuggestionTerm,
}

// Suggestion is a single autocomplete candidate.
type Suggestion struct {
	Text  string
	Type  SuggestionType
	ID    string
	Score float64
}

// Suggestions is a ranked autocomplete result with its per-type breakdown.
type Suggestions struct {
	Items      []Suggestion
	Categories map[SuggestionType][]Suggestion
}

// Categorize groups items by type, preserving rank order within each group.
func Categorize(items []Suggestion) map[SuggestionType][]Suggestion {
	out := make(map[SuggestionType][]Suggestion)
	for _, s := range items {
		out[s.Type] = append(out[s.Type], s)
	}
	return out
}
