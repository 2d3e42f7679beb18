package semantic

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DefaultSuggestionDistance is the largest edit distance still offered as
// a "did you mean" suggestion
const DefaultSuggestionDistance = 2

// Suggest returns candidates close to target, best first. Candidates that
// contain target as a case-insensitive subsequence rank ahead of candidates
// within maxDistance edits.
func Suggest(target string, candidates []string, maxDistance int) []string {
	if target == "" || len(candidates) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var out []string

	ranks := fuzzy.RankFindFold(target, candidates)
	sort.Sort(ranks)
	for _, r := range ranks {
		if !seen[r.Target] {
			seen[r.Target] = true
			out = append(out, r.Target)
		}
	}

	type scored struct {
		name     string
		distance int
	}
	var near []scored
	for _, c := range candidates {
		if seen[c] {
			continue
		}
		if d := fuzzy.LevenshteinDistance(target, c); d <= maxDistance {
			near = append(near, scored{c, d})
		}
	}
	sort.SliceStable(near, func(i, j int) bool {
		if near[i].distance != near[j].distance {
			return near[i].distance < near[j].distance
		}
		return near[i].name < near[j].name
	})
	for _, s := range near {
		seen[s.name] = true
		out = append(out, s.name)
	}

	return out
}

// closest returns the single best suggestion within maxDistance edits
func closest(target string, candidates []string, maxDistance int) (string, bool) {
	best, bestDistance := "", maxDistance+1
	for _, c := range candidates {
		d := fuzzy.LevenshteinDistance(target, c)
		if d < bestDistance || (d == bestDistance && c < best) {
			best, bestDistance = c, d
		}
	}
	return best, bestDistance <= maxDistance
}
