// Package ahocorasick adapts the aho-corasick multi-pattern automaton
// for thesaurus term matching. A Matcher is compiled once from a
// thesaurus and scanned against document text many times; scans are
// leftmost-longest and ASCII case-insensitive, mirroring how terms are
// normalized at insert time.
package ahocorasick

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	aho "github.com/petar-dambovaliev/aho-corasick"

	"github.com/corey/termgraph/internal/ports"
)

// ErrConceptMismatch reports an automaton whose patterns reference
// concept IDs absent from the accompanying concept index. This is a
// configuration error, not data corruption: the caller paired the
// wrong artifacts together.
var ErrConceptMismatch = errors.New("ahocorasick: pattern references unknown concept id")

// ReplaceMode selects the output form for Replace.
type ReplaceMode int

const (
	// ReplaceTerm substitutes the concept's normalized term text.
	ReplaceTerm ReplaceMode = iota
	// ReplaceMarkdown emits [normalized](url) links.
	ReplaceMarkdown
	// ReplaceHTML emits <a href="url">normalized</a> links.
	ReplaceHTML
	// ReplaceWiki emits [[normalized]] links.
	ReplaceWiki
)

// Matcher is an immutable compiled automaton over thesaurus terms.
// Safe for concurrent use.
type Matcher struct {
	ac       aho.AhoCorasick
	patterns []string
	ids      []uint64
	concepts map[uint64]*ports.Concept
}

// Compile builds a Matcher from every term in the thesaurus. An empty
// thesaurus compiles to a matcher that matches nothing.
func Compile(t *ports.Thesaurus) (*Matcher, error) {
	patterns := t.Terms()
	ids := make([]uint64, len(patterns))
	for i, p := range patterns {
		nt, ok := t.Get(p)
		if !ok {
			return nil, fmt.Errorf("ahocorasick: term %q missing from thesaurus", p)
		}
		ids[i] = nt.ID
	}
	return NewFromParts(patterns, ids, ports.ConceptIndex(t))
}

// NewFromParts assembles a Matcher from a pattern list, a parallel
// slice of concept IDs, and a concept index. Every ID must resolve in
// the index or the pairing is rejected with ErrConceptMismatch.
func NewFromParts(patterns []string, ids []uint64, concepts map[uint64]*ports.Concept) (*Matcher, error) {
	if len(patterns) != len(ids) {
		return nil, fmt.Errorf("ahocorasick: %d patterns but %d ids", len(patterns), len(ids))
	}
	for i, id := range ids {
		if _, ok := concepts[id]; !ok {
			return nil, fmt.Errorf("%w: pattern %q -> id %d", ErrConceptMismatch, patterns[i], id)
		}
	}
	m := &Matcher{
		patterns: patterns,
		ids:      ids,
		concepts: concepts,
	}
	if len(patterns) > 0 {
		builder := aho.NewAhoCorasickBuilder(aho.Opts{
			AsciiCaseInsensitive: true,
			MatchKind:            aho.LeftMostLongestMatch,
			DFA:                  true,
		})
		m.ac = builder.Build(patterns)
	}
	return m, nil
}

// Scan returns every leftmost-longest, non-overlapping thesaurus match
// in text, ordered by start offset. The same input always yields the
// same output.
func (m *Matcher) Scan(text string) []ports.Match {
	if len(m.patterns) == 0 || text == "" {
		return nil
	}
	found := m.ac.FindAll(text)
	if len(found) == 0 {
		return nil
	}
	out := make([]ports.Match, 0, len(found))
	for _, f := range found {
		out = append(out, ports.Match{
			Term:      m.patterns[f.Pattern()],
			ConceptID: m.ids[f.Pattern()],
			Start:     f.Start(),
			End:       f.End(),
		})
	}
	return out
}

// Concepts exposes the concept index the matcher was compiled against.
func (m *Matcher) Concepts() map[uint64]*ports.Concept { return m.concepts }

// PatternCount reports how many terms the automaton was built from.
func (m *Matcher) PatternCount() int { return len(m.patterns) }

// Replace rewrites every matched span in text according to mode,
// leaving unmatched runs untouched.
func (m *Matcher) Replace(text string, mode ReplaceMode) string {
	return replaceMatches(text, m.Scan(text), m.concepts, mode)
}

func replaceMatches(text string, matches []ports.Match, concepts map[uint64]*ports.Concept, mode ReplaceMode) string {
	if len(matches) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + len(matches)*16)
	prev := 0
	for _, mt := range matches {
		b.WriteString(text[prev:mt.Start])
		c := concepts[mt.ConceptID]
		switch mode {
		case ReplaceMarkdown:
			fmt.Fprintf(&b, "[%s](%s)", c.Label, c.URL)
		case ReplaceHTML:
			fmt.Fprintf(&b, "<a href=%q>%s</a>", c.URL, c.Label)
		case ReplaceWiki:
			fmt.Fprintf(&b, "[[%s]]", c.Label)
		default:
			b.WriteString(c.Label)
		}
		prev = mt.End
	}
	b.WriteString(text[prev:])
	return b.String()
}

// ShardedMatcher splits a large vocabulary across several automata so
// no single automaton exceeds a pattern cap. Scans run every shard and
// merge the results back into one leftmost-longest stream, so callers
// see the same output a single unsharded automaton would produce.
type ShardedMatcher struct {
	shards   []*Matcher
	concepts map[uint64]*ports.Concept
	total    int
}

// DefaultShardSize caps patterns per shard. Vocabularies below the cap
// compile to a single shard.
const DefaultShardSize = 100_000

// CompileSharded builds a ShardedMatcher from the thesaurus, placing at
// most shardSize terms in each shard. shardSize <= 0 uses
// DefaultShardSize.
func CompileSharded(t *ports.Thesaurus, shardSize int) (*ShardedMatcher, error) {
	if shardSize <= 0 {
		shardSize = DefaultShardSize
	}
	terms := t.Terms()
	concepts := ports.ConceptIndex(t)
	s := &ShardedMatcher{concepts: concepts}
	for start := 0; start < len(terms); start += shardSize {
		end := start + shardSize
		if end > len(terms) {
			end = len(terms)
		}
		patterns := terms[start:end]
		ids := make([]uint64, len(patterns))
		for i, p := range patterns {
			nt, _ := t.Get(p)
			ids[i] = nt.ID
		}
		shard, err := NewFromParts(patterns, ids, concepts)
		if err != nil {
			return nil, err
		}
		s.shards = append(s.shards, shard)
		s.total += len(patterns)
	}
	return s, nil
}

// Scan runs every shard against text and merges the per-shard results
// into a single non-overlapping stream: matches are ordered by start
// offset, the longest match wins at each position, and any match that
// begins inside an already-kept span is dropped.
func (s *ShardedMatcher) Scan(text string) []ports.Match {
	switch len(s.shards) {
	case 0:
		return nil
	case 1:
		return s.shards[0].Scan(text)
	}
	var all []ports.Match
	for _, shard := range s.shards {
		all = append(all, shard.Scan(text)...)
	}
	if len(all) == 0 {
		return nil
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Start != all[j].Start {
			return all[i].Start < all[j].Start
		}
		return all[i].End > all[j].End
	})
	out := all[:0]
	prevEnd := -1
	for _, m := range all {
		if m.Start < prevEnd {
			continue
		}
		out = append(out, m)
		prevEnd = m.End
	}
	return out
}

// Concepts exposes the shared concept index.
func (s *ShardedMatcher) Concepts() map[uint64]*ports.Concept { return s.concepts }

// ShardCount reports how many automata the vocabulary was split into.
func (s *ShardedMatcher) ShardCount() int { return len(s.shards) }

// PatternCount reports the total number of terms across all shards.
func (s *ShardedMatcher) PatternCount() int { return s.total }

// ConceptCount reports the number of distinct concepts in the index.
func (s *ShardedMatcher) ConceptCount() int { return len(s.concepts) }

// Replace rewrites every matched span in text according to mode.
func (s *ShardedMatcher) Replace(text string, mode ReplaceMode) string {
	return replaceMatches(text, s.Scan(text), s.concepts, mode)
}
