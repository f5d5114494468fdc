package ui

import (
	"sort"
	"strings"
)

// DefaultMaxSuggestions caps the names returned by Suggest.
const DefaultMaxSuggestions = 3

// Suggest returns up to limit candidates close to target, closest first.
// Matching ignores case; a candidate qualifies when its edit distance is at
// most a third of the target's length (and at least 1), or when one contains
// the other.
//
// Example:
//
//	Suggest("setings", []string{"settings", "build", "plugins"}, 0)
//	// Returns: ["settings"]
func Suggest(target string, candidates []string, limit int) []string {
	if limit <= 0 {
		limit = DefaultMaxSuggestions
	}
	target = strings.ToLower(target)
	maxDistance := max(1, len(target)/3)

	type match struct {
		name     string
		distance int
	}
	var matches []match
	for _, candidate := range candidates {
		lower := strings.ToLower(candidate)
		d := LevenshteinDistance(target, lower)
		if d <= maxDistance || (target != "" && strings.Contains(lower, target)) {
			matches = append(matches, match{name: candidate, distance: d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	out := make([]string, 0, min(limit, len(matches)))
	for i := 0; i < len(matches) && i < limit; i++ {
		out = append(out, matches[i].name)
	}
	return out
}

// LevenshteinDistance is the minimum number of single-byte insertions,
// deletions or substitutions turning a into b.
func LevenshteinDistance(a, b string) int {
	if a == "" {
		return len(b)
	}
	if b == "" {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
