package resolve

import (
	"sort"
	"strings"
)

// similarity scores two normalized strings in [0,1]. It takes the better of
// the plain ratio and the ratio over token-sorted forms, so word order never
// penalizes a match ("180 building" vs "building 180").
func similarity(a, b string) float64 {
	plain := ratio(a, b)
	sorted := ratio(tokenSort(a), tokenSort(b))
	if sorted > plain {
		return sorted
	}
	return plain
}

// ratio is the normalized indel similarity: 1 - d/(len(a)+len(b)), where d
// counts insertions and deletions only. Equivalent to 2*LCS/(len(a)+len(b)).
// This keeps abbreviation queries like "bldg 180" at or above the match
// floor against "building 180", where unit-cost substitution metrics would
// drop them below it.
func ratio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	return 2 * float64(lcs(ra, rb)) / float64(len(ra)+len(rb))
}

// lcs computes the longest common subsequence length with a two-row DP.
func lcs(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func tokenSort(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
