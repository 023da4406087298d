package ahocorasick

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/termgraph/internal/adapters/artifact"
	"github.com/corey/termgraph/internal/ports"
)

func bigThesaurus(n int) *ports.Thesaurus {
	t := ports.NewThesaurus("big")
	for i := 0; i < n; i++ {
		t.Insert(fmt.Sprintf("term%02d", i), ports.NormalizedTerm{
			ID:    uint64(i%5 + 1),
			Value: fmt.Sprintf("concept %d", i%5+1),
		})
	}
	return t
}

func TestArtifactRoundTrip(t *testing.T) {
	th := bigThesaurus(18)
	m, err := CompileSharded(th, 10)
	require.NoError(t, err)
	require.Equal(t, 2, m.ShardCount())
	require.Equal(t, 18, m.PatternCount())

	path := filepath.Join(t.TempDir(), "matcher.tgaf")
	require.NoError(t, m.SaveArtifact(path))
	require.True(t, artifact.Exists(path))

	loaded, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.ShardCount())
	assert.Equal(t, 18, loaded.PatternCount())
	assert.Equal(t, 5, loaded.ConceptCount())

	text := "term00 and term09 with term17 trailing"
	assert.Equal(t, m.Scan(text), loaded.Scan(text))
}

func TestArtifactRoundTripSingleShard(t *testing.T) {
	m, err := CompileSharded(geneThesaurus(), 0)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "matcher.tgaf")
	require.NoError(t, m.SaveArtifact(path))

	loaded, err := LoadArtifact(path)
	require.NoError(t, err)
	text := "an egfr inhibitor and a kinase"
	assert.Equal(t, m.Scan(text), loaded.Scan(text))
}

func TestSaveArtifactRejectsOversizedTerm(t *testing.T) {
	th := ports.NewThesaurus("big")
	th.Insert(string(make([]byte, 70_000)), ports.NormalizedTerm{ID: 1, Value: "x"})
	m, err := CompileSharded(th, 0)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "matcher.tgaf")
	err = m.SaveArtifact(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, artifact.ErrTermTooLong)
	assert.False(t, artifact.Exists(path))
}

func TestLoadArtifactGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.tgaf")
	require.NoError(t, os.WriteFile(path, []byte("not an artifact"), 0o644))
	_, err := LoadArtifact(path)
	require.Error(t, err)
}

func TestLoadArtifactMissing(t *testing.T) {
	_, err := LoadArtifact(filepath.Join(t.TempDir(), "absent.tgaf"))
	require.Error(t, err)
}
