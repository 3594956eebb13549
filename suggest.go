package argot

import (
	"fmt"
	"sort"

	"github.com/agext/levenshtein"
)

// suggest picks the declared candidate closest to the given input, for
// "did you mean" hints. Matches further than a third of the input's
// length (at least two edits) are considered noise.
func suggest(given string, candidates []string) (string, bool) {
	limit := len(given) / 3
	if limit < 2 {
		limit = 2
	}
	best, bestDist := "", limit+1
	sorted := make([]string, len(candidates))
	copy(sorted, candidates)
	sort.Strings(sorted)
	for _, c := range sorted {
		if d := levenshtein.Distance(given, c, nil); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, best != ""
}

// suggestHint formats the standard hint, or returns "" when nothing
// comes close enough.
func suggestHint(given string, candidates []string) string {
	if best, ok := suggest(given, candidates); ok {
		return fmt.Sprintf("did you mean %q?", best)
	}
	return ""
}
