package rolegraph

import (
	"sort"
	"sync"

	"github.com/corey/termgraph/internal/ports"
)

// Matcher scans text for thesaurus matches. Both the single and the
// sharded automaton adapters satisfy it.
type Matcher interface {
	Scan(text string) []ports.Match
}

// Node is a concept observed in at least one parsed document. Rank is
// the total occurrence count across all documents; Docs breaks the
// count down per document.
type Node struct {
	ID   uint64
	Rank uint64
	Docs map[string]uint64
}

// Edge is an unordered pair of concepts that appeared adjacently in at
// least one document, keyed by the pairing of the two IDs.
type Edge struct {
	Key  uint64
	Rank uint64
	Docs map[string]uint64
}

// RoleGraph accumulates concept co-occurrence state for one role.
// Documents are parsed in exactly once; repeat parses are no-ops, so
// ranks never inflate from re-ingesting the same corpus. Safe for
// concurrent use.
type RoleGraph struct {
	role    string
	matcher Matcher

	mu     sync.RWMutex
	nodes  map[uint64]*Node
	edges  map[uint64]*Edge
	adj    map[uint64]map[uint64]*Edge
	parsed map[string]bool
}

// New creates an empty graph for role backed by the given matcher.
func New(role string, m Matcher) *RoleGraph {
	return &RoleGraph{
		role:    role,
		matcher: m,
		nodes:   make(map[uint64]*Node),
		edges:   make(map[uint64]*Edge),
		adj:     make(map[uint64]map[uint64]*Edge),
		parsed:  make(map[string]bool),
	}
}

// Role returns the role name the graph was created for.
func (g *RoleGraph) Role() string { return g.role }

// ParseDocument scans text and folds the matches into the graph: each
// matched concept's node count rises by its occurrence count, and
// every unordered pair of distinct concepts in the document
// strengthens the edge between them once. The returned bool is false
// when docID was already parsed and nothing changed. An oversized
// concept ID fails the whole parse before any state is touched.
func (g *RoleGraph) ParseDocument(docID, text string) (bool, error) {
	matches := g.matcher.Scan(text)

	counts := make(map[uint64]uint64)
	for _, m := range matches {
		if m.ConceptID > MaxPairableID {
			return false, ErrIDRange
		}
		counts[m.ConceptID]++
	}
	distinct := make([]uint64, 0, len(counts))
	for id := range counts {
		distinct = append(distinct, id)
	}
	type pairDelta struct {
		key  uint64
		a, b uint64
	}
	pairs := make([]pairDelta, 0, len(distinct)*(len(distinct)-1)/2)
	for i := 0; i < len(distinct); i++ {
		for j := i + 1; j < len(distinct); j++ {
			key, err := Pair(distinct[i], distinct[j])
			if err != nil {
				return false, err
			}
			pairs = append(pairs, pairDelta{key: key, a: distinct[i], b: distinct[j]})
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.parsed[docID] {
		return false, nil
	}
	g.parsed[docID] = true

	for id, n := range counts {
		node := g.nodes[id]
		if node == nil {
			node = &Node{ID: id, Docs: make(map[string]uint64)}
			g.nodes[id] = node
		}
		node.Rank += n
		node.Docs[docID] += n
	}
	for _, p := range pairs {
		edge := g.edges[p.key]
		if edge == nil {
			edge = &Edge{Key: p.key, Docs: make(map[string]uint64)}
			g.edges[p.key] = edge
			for _, id := range []uint64{p.a, p.b} {
				if g.adj[id] == nil {
					g.adj[id] = make(map[uint64]*Edge)
				}
				g.adj[id][p.key] = edge
			}
		}
		edge.Rank++
		edge.Docs[docID]++
	}
	return true, nil
}

// Query scans the query text for concepts and ranks every document
// that touches them. A document scores the sum of its per-document
// counts on each matched concept's node, plus the counts of every edge
// incident to a matched concept, each edge contributing once. Results
// are ordered by score descending, then document ID ascending; skip
// and limit page through the ordered list. limit <= 0 means no limit.
func (g *RoleGraph) Query(query string, skip, limit int) []ports.DocScore {
	matches := g.matcher.Scan(query)
	if len(matches) == 0 {
		return nil
	}
	ids := make(map[uint64]bool)
	for _, m := range matches {
		ids[m.ConceptID] = true
	}

	g.mu.RLock()
	scores := make(map[string]uint64)
	seenEdges := make(map[uint64]bool)
	for id := range ids {
		if node := g.nodes[id]; node != nil {
			for doc, n := range node.Docs {
				scores[doc] += n
			}
		}
		for key, edge := range g.adj[id] {
			if seenEdges[key] {
				continue
			}
			seenEdges[key] = true
			for doc, n := range edge.Docs {
				scores[doc] += n
			}
		}
	}
	g.mu.RUnlock()

	out := make([]ports.DocScore, 0, len(scores))
	for doc, s := range scores {
		out = append(out, ports.DocScore{DocID: doc, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].DocID < out[j].DocID
	})

	if skip < 0 {
		skip = 0
	}
	if skip >= len(out) {
		return nil
	}
	out = out[skip:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// NodeCount reports the number of distinct concepts seen so far.
func (g *RoleGraph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// EdgeCount reports the number of distinct concept pairs seen so far.
func (g *RoleGraph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// ParsedDocs returns the IDs of every document folded into the graph,
// sorted for stable persistence.
func (g *RoleGraph) ParsedDocs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.parsed))
	for id := range g.parsed {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// MarkParsed records document IDs as already parsed without touching
// graph state. Used when restoring the parse registry from storage.
func (g *RoleGraph) MarkParsed(ids []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range ids {
		g.parsed[id] = true
	}
}
