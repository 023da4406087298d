package bbolt

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/termgraph/internal/ports"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestThesaurusRoundTrip(t *testing.T) {
	s := newTestStore(t)

	th := ports.NewThesaurus("genes")
	th.Insert("egfr", ports.NormalizedTerm{ID: 7, Value: "epidermal growth factor receptor", URL: "http://example.org"})
	th.Insert("erbb1", ports.NormalizedTerm{ID: 7, Value: "epidermal growth factor receptor"})

	require.NoError(t, s.SaveThesaurus("oncology", th))

	got, err := s.LoadThesaurus("oncology")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "genes", got.Name)
	assert.Equal(t, th.Data, got.Data)
}

func TestLoadThesaurusAbsent(t *testing.T) {
	s := newTestStore(t)
	got, err := s.LoadThesaurus("nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestParsedDocsRoundTrip(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveParsedDocs("oncology", []string{"doc1", "doc2"}))
	got, err := s.LoadParsedDocs("oncology")
	require.NoError(t, err)
	assert.Equal(t, []string{"doc1", "doc2"}, got)

	// Overwrite replaces, not appends
	require.NoError(t, s.SaveParsedDocs("oncology", []string{"doc3"}))
	got, err = s.LoadParsedDocs("oncology")
	require.NoError(t, err)
	assert.Equal(t, []string{"doc3"}, got)
}

func TestLoadParsedDocsAbsent(t *testing.T) {
	s := newTestStore(t)
	got, err := s.LoadParsedDocs("nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDeleteRole(t *testing.T) {
	s := newTestStore(t)

	th := ports.NewThesaurus("genes")
	th.Insert("egfr", ports.NormalizedTerm{ID: 7, Value: "egfr"})
	require.NoError(t, s.SaveThesaurus("oncology", th))
	require.NoError(t, s.SaveParsedDocs("oncology", []string{"doc1"}))

	require.NoError(t, s.DeleteRole("oncology"))

	got, err := s.LoadThesaurus("oncology")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting again is a no-op
	require.NoError(t, s.DeleteRole("oncology"))
	require.NoError(t, s.DeleteRole("never existed"))
}

func TestRolesAreIsolated(t *testing.T) {
	s := newTestStore(t)

	a := ports.NewThesaurus("a")
	a.Insert("alpha", ports.NormalizedTerm{ID: 1, Value: "alpha"})
	b := ports.NewThesaurus("b")
	b.Insert("beta", ports.NormalizedTerm{ID: 2, Value: "beta"})

	require.NoError(t, s.SaveThesaurus("role-a", a))
	require.NoError(t, s.SaveThesaurus("role-b", b))
	require.NoError(t, s.DeleteRole("role-a"))

	got, err := s.LoadThesaurus("role-b")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "b", got.Name)
}
