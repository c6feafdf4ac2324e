// Package similarity provides string edit distance and normalized
// similarity used by duplicate detection.
package similarity

// Levenshtein returns the classic edit distance between a and b with
// unit-cost insertions, deletions, and substitutions. Comparison is
// case-sensitive; callers normalize case and whitespace first.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Two-row DP over the (len(b)+1) x (len(a)+1) table.
	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)
	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(rb); j++ {
		curr[0] = j
		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[i] = min3(
				curr[i-1]+1,    // insertion
				prev[i]+1,      // deletion
				prev[i-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(ra)]
}

// StringSimilarity returns (maxLen - distance) / maxLen in [0, 1].
// Two empty strings are identical by convention.
func StringSimilarity(a, b string) float64 {
	maxLen := len([]rune(a))
	if n := len([]rune(b)); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0
	}
	return float64(maxLen-Levenshtein(a, b)) / float64(maxLen)
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
