// Package autocomplete serves typeahead suggestions over a thesaurus.
// Terms are compiled into an FST for ordered prefix lookups; fuzzy
// matching runs over the sorted key list with Jaro-Winkler or
// Levenshtein similarity.
package autocomplete

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/blevesearch/vellum"
	"github.com/xrash/smetrics"

	"github.com/corey/termgraph/internal/ports"
)

// Config tunes index behavior. The zero value is not useful; start
// from DefaultConfig.
type Config struct {
	// MaxResults caps suggestions when the caller passes no limit.
	MaxResults int
	// MinPrefixLength is the shortest query (in runes) worth
	// searching. Shorter queries return nothing.
	MinPrefixLength int
	// CaseSensitive leaves queries untouched instead of lowercasing
	// them before lookup.
	CaseSensitive bool
}

// DefaultConfig returns the standard typeahead settings.
func DefaultConfig() Config {
	return Config{MaxResults: 10, MinPrefixLength: 1}
}

// Index is an immutable suggestion index over one thesaurus. Safe for
// concurrent use.
type Index struct {
	name string
	cfg  Config
	fst  *vellum.FST
	meta map[string]ports.Suggestion
	keys []string
}

// Build compiles the thesaurus into an index.
func Build(t *ports.Thesaurus, cfg Config) (*Index, error) {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultConfig().MaxResults
	}
	keys := t.Terms()
	meta := make(map[string]ports.Suggestion, len(keys))

	var buf bytes.Buffer
	b, err := vellum.New(&buf, nil)
	if err != nil {
		return nil, fmt.Errorf("autocomplete: init fst builder: %w", err)
	}
	for _, k := range keys {
		nt, _ := t.Get(k)
		if err := b.Insert([]byte(k), nt.ID); err != nil {
			return nil, fmt.Errorf("autocomplete: insert %q: %w", k, err)
		}
		meta[k] = ports.Suggestion{
			Term:           k,
			NormalizedTerm: nt.Value,
			ConceptID:      nt.ID,
			URL:            nt.URL,
		}
	}
	if err := b.Close(); err != nil {
		return nil, fmt.Errorf("autocomplete: finish fst: %w", err)
	}
	fst, err := vellum.Load(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("autocomplete: load fst: %w", err)
	}
	return &Index{name: t.Name, cfg: cfg, fst: fst, meta: meta, keys: keys}, nil
}

// Name returns the thesaurus name the index was built from.
func (ix *Index) Name() string { return ix.name }

// Len reports the number of indexed terms.
func (ix *Index) Len() int { return len(ix.keys) }

func (ix *Index) normalize(q string) string {
	if ix.cfg.CaseSensitive {
		return q
	}
	return strings.ToLower(q)
}

// ExactSearch returns every term starting with query, in ascending key
// order, up to limit. limit <= 0 falls back to the configured
// MaxResults. Queries shorter than MinPrefixLength return nothing.
func (ix *Index) ExactSearch(query string, limit int) []ports.Suggestion {
	if utf8.RuneCountInString(query) < ix.cfg.MinPrefixLength {
		return nil
	}
	if limit <= 0 {
		limit = ix.cfg.MaxResults
	}
	q := []byte(ix.normalize(query))

	var out []ports.Suggestion
	itr, err := ix.fst.Iterator(q, prefixEnd(q))
	for err == nil {
		key, _ := itr.Current()
		if !bytes.HasPrefix(key, q) {
			break
		}
		out = append(out, ix.meta[string(key)])
		if len(out) >= limit {
			break
		}
		err = itr.Next()
	}
	return out
}

// FuzzySearch returns terms whose Jaro-Winkler similarity to query is
// at least minSimilarity, best matches first. A term scores the higher
// of its whole-key similarity and its best per-word similarity, so
// multi-word terms still surface on a single-word query. minSimilarity
// must be in (0, 1].
func (ix *Index) FuzzySearch(query string, minSimilarity float64, limit int) ([]ports.Suggestion, error) {
	if minSimilarity <= 0 || minSimilarity > 1 {
		return nil, fmt.Errorf("autocomplete: similarity threshold %v out of range (0, 1]", minSimilarity)
	}
	if utf8.RuneCountInString(query) < ix.cfg.MinPrefixLength {
		return nil, nil
	}
	if limit <= 0 {
		limit = ix.cfg.MaxResults
	}
	q := ix.normalize(query)

	type scored struct {
		key   string
		score float64
	}
	var hits []scored
	for _, key := range ix.keys {
		score := smetrics.JaroWinkler(q, key, 0.7, 4)
		for _, w := range strings.Fields(key) {
			if s := smetrics.JaroWinkler(q, w, 0.7, 4); s > score {
				score = s
			}
		}
		if score >= minSimilarity {
			hits = append(hits, scored{key: key, score: score})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].key < hits[j].key
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]ports.Suggestion, 0, len(hits))
	for _, h := range hits {
		s := ix.meta[h.key]
		s.Score = h.score
		out = append(out, s)
	}
	return out, nil
}

// LevenshteinSearch returns terms within maxDistance edits of query,
// closest first. Distance for a multi-word term is the smaller of the
// whole-key distance and the best per-word distance; the suggestion
// score is 1/(1+distance).
func (ix *Index) LevenshteinSearch(query string, maxDistance, limit int) []ports.Suggestion {
	if maxDistance < 0 || utf8.RuneCountInString(query) < ix.cfg.MinPrefixLength {
		return nil
	}
	if limit <= 0 {
		limit = ix.cfg.MaxResults
	}
	q := ix.normalize(query)

	type scored struct {
		key  string
		dist int
	}
	var hits []scored
	for _, key := range ix.keys {
		dist := smetrics.WagnerFischer(q, key, 1, 1, 1)
		for _, w := range strings.Fields(key) {
			if d := smetrics.WagnerFischer(q, w, 1, 1, 1); d < dist {
				dist = d
			}
		}
		if dist <= maxDistance {
			hits = append(hits, scored{key: key, dist: dist})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].key < hits[j].key
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]ports.Suggestion, 0, len(hits))
	for _, h := range hits {
		s := ix.meta[h.key]
		s.Score = 1 / float64(1+h.dist)
		out = append(out, s)
	}
	return out
}

// prefixEnd returns the smallest byte string greater than every string
// with prefix p, or nil when no upper bound exists (all 0xff).
func prefixEnd(p []byte) []byte {
	end := make([]byte, len(p))
	copy(end, p)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
