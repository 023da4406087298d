package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThesaurusInsertLowercases(t *testing.T) {
	th := NewThesaurus("test")
	th.Insert("EGFR", NormalizedTerm{ID: 1, Value: "epidermal growth factor receptor"})

	nt, ok := th.Get("egfr")
	require.True(t, ok)
	assert.Equal(t, uint64(1), nt.ID)

	// Mixed-case lookup normalizes too
	_, ok = th.Get("Egfr")
	assert.True(t, ok)
}

func TestThesaurusTermsSorted(t *testing.T) {
	th := NewThesaurus("test")
	th.Insert("zeta", NormalizedTerm{ID: 1, Value: "z"})
	th.Insert("alpha", NormalizedTerm{ID: 2, Value: "a"})
	th.Insert("mid", NormalizedTerm{ID: 3, Value: "m"})

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, th.Terms())
}

func TestConceptIndexGroupsSynonyms(t *testing.T) {
	th := NewThesaurus("test")
	th.Insert("epidermal growth factor receptor", NormalizedTerm{ID: 7, Value: "egfr", URL: "http://example.org/egfr"})
	th.Insert("erbb1", NormalizedTerm{ID: 7, Value: "egfr"})
	th.Insert("her1", NormalizedTerm{ID: 7, Value: "egfr"})
	th.Insert("unrelated", NormalizedTerm{ID: 9, Value: "other"})

	idx := ConceptIndex(th)
	require.Len(t, idx, 2)

	c := idx[7]
	require.NotNil(t, c)
	assert.Len(t, c.Terms, 3)
	// Shortest synonym wins as the preferred surface form
	assert.Equal(t, "her1", c.PreferredTerm)
	assert.Equal(t, "http://example.org/egfr", c.URL)
}

func TestConceptAddTermIdempotent(t *testing.T) {
	c := NewConcept(1, "egfr")
	c.AddTerm("erbb1")
	c.AddTerm("erbb1")
	assert.Len(t, c.Terms, 1)
}
