package diag

import (
	"slices"

	"github.com/agnivade/levenshtein"
)

// ClosestNames returns the candidate name(s) with the smallest edit distance
// to name, used to build a "did you mean" suggestion for SymbolNotFound and
// PropertyNotFound diagnostics. Ties are broken by sorting the result.
func ClosestNames(name string, candidates []string) []string {
	best := []string{}
	bestDist := -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(name, c)
		switch {
		case bestDist == -1 || d < bestDist:
			best = []string{c}
			bestDist = d
		case d == bestDist:
			best = append(best, c)
		}
	}
	slices.Sort(best)
	return best
}

// SuggestSymbol builds a "did you mean `x`?" suggestion string, or "" if no
// candidate is close enough to be worth suggesting.
func SuggestSymbol(name string, candidates []string) string {
	const maxUsefulDistance = 3
	closest := ClosestNames(name, candidates)
	if len(closest) == 0 || levenshtein.ComputeDistance(name, closest[0]) > maxUsefulDistance {
		return ""
	}
	suggestion := "did you mean `" + closest[0] + "`?"
	return suggestion
}
