package resolver

import "github.com/agnivade/levenshtein"

// Distance returns the Levenshtein edit distance between a and b counted
// in Unicode code points. Insertions, deletions and substitutions cost 1.
func Distance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}
