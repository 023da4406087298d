package editor

import "github.com/xrash/smetrics"

// LevenshteinDistance returns the minimum number of single-character
// insertions, deletions, and substitutions turning a into b.
func LevenshteinDistance(a, b string) int {
	return smetrics.WagnerFischer(a, b, 1, 1, 1)
}

// LevenshteinSimilarity normalizes edit distance into [0, 1], where 1
// means identical. Two empty strings are identical.
func LevenshteinSimilarity(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(LevenshteinDistance(a, b))/float64(maxLen)
}
