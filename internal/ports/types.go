// Package ports defines the shared types and interfaces (contracts) that
// adapters must implement. Domain logic depends only on these, never on
// concrete implementations.
package ports

import (
	"sort"
	"strings"
)

// NormalizedTerm is the concept a surface term maps to in a thesaurus.
type NormalizedTerm struct {
	ID    uint64 `json:"id"`
	Value string `json:"nterm"`
	URL   string `json:"url,omitempty"`
}

// Thesaurus maps surface terms (case-insensitive) to normalized terms.
// Many surface terms may map to the same normalized-term ID (synonyms);
// surface-term keys are unique within a thesaurus.
type Thesaurus struct {
	Name string                    `json:"name"`
	Data map[string]NormalizedTerm `json:"data"`
}

// NewThesaurus creates an empty named thesaurus.
func NewThesaurus(name string) *Thesaurus {
	return &Thesaurus{
		Name: name,
		Data: make(map[string]NormalizedTerm),
	}
}

// Insert adds or replaces a surface-term entry. Keys are lowercased so
// lookups and matching are case-insensitive.
func (t *Thesaurus) Insert(term string, nt NormalizedTerm) {
	if t.Data == nil {
		t.Data = make(map[string]NormalizedTerm)
	}
	t.Data[strings.ToLower(term)] = nt
}

// Get looks up the normalized term for a surface term.
func (t *Thesaurus) Get(term string) (NormalizedTerm, bool) {
	nt, ok := t.Data[strings.ToLower(term)]
	return nt, ok
}

// Len returns the number of surface-term entries.
func (t *Thesaurus) Len() int {
	return len(t.Data)
}

// Terms returns all surface terms in sorted order. Map iteration order is
// random in Go; every consumer that builds pattern lists or indexes needs a
// deterministic ordering, so sorting happens here once.
func (t *Thesaurus) Terms() []string {
	terms := make([]string, 0, len(t.Data))
	for k := range t.Data {
		terms = append(terms, k)
	}
	sort.Strings(terms)
	return terms
}

// Concept is a normalized term enriched with every surface term seen for it.
// Identity is the ID; terms may be added incrementally without changing it.
type Concept struct {
	ID            uint64          `json:"id"`
	Label         string          `json:"label"`
	Terms         map[string]bool `json:"terms"`
	PreferredTerm string          `json:"preferred_term"`
	URL           string          `json:"url,omitempty"`
}

// NewConcept creates a concept with its canonical label.
func NewConcept(id uint64, label string) *Concept {
	return &Concept{
		ID:    id,
		Label: label,
		Terms: make(map[string]bool),
	}
}

// AddTerm records a known surface term. Duplicates are no-ops. The preferred
// term is the shortest term seen so far; on equal length the first seen wins.
func (c *Concept) AddTerm(term string) {
	if c.Terms[term] {
		return
	}
	if c.Terms == nil {
		c.Terms = make(map[string]bool)
	}
	c.Terms[term] = true
	if c.PreferredTerm == "" || len(term) < len(c.PreferredTerm) {
		c.PreferredTerm = term
	}
}

// ConceptIndex builds the concept-id index for a thesaurus, aggregating all
// surface terms per concept.
func ConceptIndex(t *Thesaurus) map[uint64]*Concept {
	concepts := make(map[uint64]*Concept)
	for _, term := range t.Terms() {
		nt := t.Data[term]
		c, ok := concepts[nt.ID]
		if !ok {
			c = NewConcept(nt.ID, nt.Value)
			c.URL = nt.URL
			concepts[nt.ID] = c
		}
		c.AddTerm(term)
	}
	return concepts
}

// Match is a single vocabulary occurrence found in scanned text.
// Offsets are byte positions into the source text: [Start, End).
type Match struct {
	Term      string `json:"term"`
	ConceptID uint64 `json:"concept_id"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
}

// Suggestion is one term-completion result.
type Suggestion struct {
	Term           string  `json:"term"`
	NormalizedTerm string  `json:"normalized_term"`
	ConceptID      uint64  `json:"concept_id"`
	URL            string  `json:"url,omitempty"`
	Score          float64 `json:"score"`
}

// Document is the unit of ingestion for graph ranking: an opaque ID plus
// raw UTF-8 body text. Fetching and crawling happen upstream.
type Document struct {
	ID   string `json:"id"`
	Body string `json:"body"`
}

// DocScore is one ranked-query result.
type DocScore struct {
	DocID string `json:"doc_id"`
	Score uint64 `json:"score"`
}
