// Package editor applies search/replace edits to text with graceful
// degradation: an exact match is tried first, then progressively
// fuzzier strategies, so edits written against a slightly stale copy
// of the content still land. A failed edit never modifies content and
// reports the closest near-miss it saw.
package editor

import (
	"fmt"
	"strings"
)

// Strategy names a matching strategy.
type Strategy string

const (
	// StrategyExact requires a byte-for-byte occurrence of the search
	// text.
	StrategyExact Strategy = "exact"
	// StrategyWhitespaceFlexible matches line by line, ignoring
	// leading and trailing whitespace on each line.
	StrategyWhitespaceFlexible Strategy = "whitespace-flexible"
	// StrategyBlockAnchor locates a block by its first and last lines
	// and accepts the middle when it is similar enough.
	StrategyBlockAnchor Strategy = "block-anchor"
	// StrategyFuzzy slides a window over the content and accepts the
	// most similar position above a high threshold.
	StrategyFuzzy Strategy = "fuzzy"
)

const (
	fuzzyThreshold       = 0.8
	blockAnchorThreshold = 0.3
)

// EditResult reports the outcome of an edit attempt. When Success is
// false, ModifiedContent is the input unchanged and StrategyUsed and
// SimilarityScore describe the nearest miss.
type EditResult struct {
	Success         bool
	StrategyUsed    Strategy
	ModifiedContent string
	SimilarityScore float64
}

// ApplyEdit replaces the first occurrence of search in content with
// replace, trying each strategy from strictest to loosest until one
// succeeds.
func ApplyEdit(content, search, replace string) EditResult {
	if search == "" {
		return EditResult{Success: false, StrategyUsed: StrategyExact, ModifiedContent: content}
	}
	best := EditResult{Success: false, StrategyUsed: StrategyExact, ModifiedContent: content}
	for _, s := range []Strategy{StrategyExact, StrategyWhitespaceFlexible, StrategyBlockAnchor, StrategyFuzzy} {
		res, err := ApplyEditWithStrategy(content, search, replace, s)
		if err != nil {
			continue
		}
		if res.Success {
			return res
		}
		if res.SimilarityScore > best.SimilarityScore {
			best = res
		}
	}
	return best
}

// ApplyEditWithStrategy applies a single named strategy. An unknown
// strategy is an error; a strategy that simply finds no match returns
// a failed EditResult.
func ApplyEditWithStrategy(content, search, replace string, strategy Strategy) (EditResult, error) {
	switch strategy {
	case StrategyExact:
		return applyExact(content, search, replace), nil
	case StrategyWhitespaceFlexible:
		return applyWhitespaceFlexible(content, search, replace), nil
	case StrategyBlockAnchor:
		return ApplyEditBlockAnchor(content, search, replace, blockAnchorThreshold), nil
	case StrategyFuzzy:
		return applyFuzzy(content, search, replace), nil
	default:
		return EditResult{}, fmt.Errorf("editor: unknown strategy %q", strategy)
	}
}

func applyExact(content, search, replace string) EditResult {
	if search == "" || !strings.Contains(content, search) {
		return EditResult{StrategyUsed: StrategyExact, ModifiedContent: content}
	}
	return EditResult{
		Success:         true,
		StrategyUsed:    StrategyExact,
		ModifiedContent: strings.Replace(content, search, replace, 1),
		SimilarityScore: 1,
	}
}

func applyWhitespaceFlexible(content, search, replace string) EditResult {
	fail := EditResult{StrategyUsed: StrategyWhitespaceFlexible, ModifiedContent: content}
	contentLines := strings.Split(content, "\n")
	searchLines := splitBlock(search)
	if len(searchLines) == 0 || len(searchLines) > len(contentLines) {
		return fail
	}
	for i := 0; i+len(searchLines) <= len(contentLines); i++ {
		ok := true
		for j, sl := range searchLines {
			if strings.TrimSpace(contentLines[i+j]) != strings.TrimSpace(sl) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		return EditResult{
			Success:         true,
			StrategyUsed:    StrategyWhitespaceFlexible,
			ModifiedContent: spliceLines(contentLines, i, len(searchLines), replace),
			SimilarityScore: 1,
		}
	}
	return fail
}

// ApplyEditBlockAnchor matches a multi-line block by its first and
// last lines and accepts it when the block as a whole is at least
// threshold similar to the search text. Blocks shorter than three
// lines have too little anchor to be trustworthy and never match.
func ApplyEditBlockAnchor(content, search, replace string, threshold float64) EditResult {
	fail := EditResult{StrategyUsed: StrategyBlockAnchor, ModifiedContent: content}
	contentLines := strings.Split(content, "\n")
	searchLines := splitBlock(search)
	if len(searchLines) < 3 || len(searchLines) > len(contentLines) {
		return fail
	}
	first := strings.TrimSpace(searchLines[0])
	last := strings.TrimSpace(searchLines[len(searchLines)-1])
	window := len(searchLines)

	bestIdx := -1
	bestScore := 0.0
	for i := 0; i+window <= len(contentLines); i++ {
		if strings.TrimSpace(contentLines[i]) != first {
			continue
		}
		if strings.TrimSpace(contentLines[i+window-1]) != last {
			continue
		}
		block := strings.Join(contentLines[i:i+window], "\n")
		score := LevenshteinSimilarity(trimLines(block), trimLines(search))
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if bestIdx < 0 || bestScore < threshold {
		fail.SimilarityScore = bestScore
		return fail
	}
	return EditResult{
		Success:         true,
		StrategyUsed:    StrategyBlockAnchor,
		ModifiedContent: spliceLines(contentLines, bestIdx, window, replace),
		SimilarityScore: bestScore,
	}
}

func applyFuzzy(content, search, replace string) EditResult {
	fail := EditResult{StrategyUsed: StrategyFuzzy, ModifiedContent: content}
	contentLines := strings.Split(content, "\n")
	searchLines := splitBlock(search)
	if len(searchLines) == 0 || len(searchLines) > len(contentLines) {
		return fail
	}
	window := len(searchLines)
	searchBlock := strings.Join(searchLines, "\n")

	bestIdx := -1
	bestScore := 0.0
	for i := 0; i+window <= len(contentLines); i++ {
		block := strings.Join(contentLines[i:i+window], "\n")
		score := LevenshteinSimilarity(block, searchBlock)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if bestIdx < 0 || bestScore < fuzzyThreshold {
		fail.SimilarityScore = bestScore
		return fail
	}
	return EditResult{
		Success:         true,
		StrategyUsed:    StrategyFuzzy,
		ModifiedContent: spliceLines(contentLines, bestIdx, window, replace),
		SimilarityScore: bestScore,
	}
}

// splitBlock splits a search or replace block into lines, ignoring a
// single trailing newline so "foo\n" and "foo" describe the same
// block.
func splitBlock(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// spliceLines replaces n lines starting at idx with the replacement
// block, re-indented to match the first replaced line. Relative
// indentation inside the replacement block is preserved.
func spliceLines(lines []string, idx, n int, replace string) string {
	indent := leadingWhitespace(lines[idx])
	replaceLines := splitBlock(replace)
	base := ""
	if len(replaceLines) > 0 {
		base = leadingWhitespace(replaceLines[0])
	}
	indented := make([]string, len(replaceLines))
	for i, rl := range replaceLines {
		if strings.TrimSpace(rl) == "" {
			indented[i] = ""
			continue
		}
		indented[i] = indent + strings.TrimPrefix(rl, base)
	}
	out := make([]string, 0, len(lines)-n+len(indented))
	out = append(out, lines[:idx]...)
	out = append(out, indented...)
	out = append(out, lines[idx+n:]...)
	return strings.Join(out, "\n")
}

func leadingWhitespace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

func trimLines(block string) string {
	lines := strings.Split(block, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.Join(lines, "\n")
}
