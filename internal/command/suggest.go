package command

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Closest returns the candidate most similar to name. Fuzzy subsequence
// matches rank first; when none exist the candidate with the smallest edit
// distance is chosen. ok is false only when there are no candidates.
func Closest(name string, candidates []string) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}

	name = strings.ToLower(strings.TrimSpace(name))
	lowered := make([]string, len(candidates))
	for i, c := range candidates {
		lowered[i] = strings.ToLower(c)
	}

	if matches := fuzzy.Find(name, lowered); len(matches) > 0 {
		return candidates[matches[0].Index], true
	}

	best, bestDist := 0, -1
	for i, c := range lowered {
		if d := editDistance(name, c); bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return candidates[best], true
}

// editDistance is the Levenshtein distance between a and b, by rune.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
