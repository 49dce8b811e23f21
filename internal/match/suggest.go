package match

import "sort"

// minSuggestScore is the similarity a candidate needs to be offered as a hint.
const minSuggestScore = 0.5

// Suggestion is a candidate name ranked against a misspelt one.
type Suggestion struct {
	Name  string
	Score float64
}

// Rank scores every candidate against name, best first. Ties are broken by
// name for deterministic output.
func Rank(name string, candidates []string) []Suggestion {
	ranked := make([]Suggestion, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, Suggestion{Name: c, Score: IdentSimilarity(name, c)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}

		return ranked[i].Name < ranked[j].Name
	})

	return ranked
}

// Suggest returns up to limit candidates that are close enough to name to be
// a plausible typo. Exact matches are never suggested.
func Suggest(name string, candidates []string, limit int) []string {
	var out []string

	for _, s := range Rank(name, candidates) {
		if len(out) >= limit || s.Score < minSuggestScore {
			break
		}

		if s.Name == name {
			continue
		}

		out = append(out, s.Name)
	}

	return out
}
