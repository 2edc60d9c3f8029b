package command

import "strings"

// NoMatch is returned by Score when the needle cannot be found as an
// in-order subsequence of the haystack.
const NoMatch = -1

// Score bands. Contiguous matches always outrank assembled subsequence
// matches, and earlier occurrences outrank later ones.
const (
	scoreExact     = 1000
	scorePrefix    = 800
	scoreSubstring = 500

	// Subsequence increments: a character adjacent to the previous match
	// earns more than one found after a gap.
	incAdjacent = 12
	incGap      = 4
)

// Score rates how well needle matches haystack, higher is better.
// Case-insensitive. Exact match scores highest, then prefix (penalised by
// the haystack's excess length), then substring (penalised by start index),
// then an in-order subsequence scan. Returns NoMatch when needle's
// characters cannot be found in order.
func Score(haystack, needle string) int {
	h := strings.ToUpper(haystack)
	n := strings.ToUpper(needle)

	if h == n {
		return scoreExact
	}
	if strings.HasPrefix(h, n) {
		return scorePrefix - (len(h) - len(n))
	}
	if idx := strings.Index(h, n); idx >= 0 {
		return scoreSubstring - idx
	}

	// Subsequence scan: walk needle left to right, matching each character
	// against the next occurrence in haystack at or after the cursor.
	hr := []rune(h)
	score := 0
	cursor := 0
	prev := -2
	for _, r := range n {
		pos := -1
		for i := cursor; i < len(hr); i++ {
			if hr[i] == r {
				pos = i
				break
			}
		}
		if pos < 0 {
			return NoMatch
		}
		if pos == prev+1 {
			score += incAdjacent
		} else {
			score += incGap
		}
		prev = pos
		cursor = pos + 1
	}
	return score
}
