package services

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

const maxSuggestions = 5

// suggestNames ranks known names by closeness to query. Names containing
// the query rank first, then the rest by edit distance. Names further than
// half the query length away are dropped.
func suggestNames(query string, names []string, limit int) []string {
	q := strings.ToUpper(strings.TrimSpace(query))
	if q == "" || limit <= 0 {
		return []string{}
	}
	maxDist := len([]rune(q))/2 + 1

	type scored struct {
		name string
		dist int
	}
	candidates := make([]scored, 0)
	for _, n := range names {
		upper := strings.ToUpper(n)
		d := levenshtein.ComputeDistance(q, upper)
		if strings.Contains(upper, q) {
			d = 0
		}
		if d <= maxDist {
			candidates = append(candidates, scored{n, d})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].name < candidates[j].name
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.name
	}
	return out
}
