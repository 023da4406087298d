package app

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/termgraph/internal/adapters/bbolt"
	"github.com/corey/termgraph/internal/ports"
)

func fruitThesaurus() *ports.Thesaurus {
	t := ports.NewThesaurus("fruit")
	t.Insert("apple", ports.NormalizedTerm{ID: 1, Value: "apple"})
	t.Insert("banana", ports.NormalizedTerm{ID: 2, Value: "banana"})
	t.Insert("blood orange", ports.NormalizedTerm{ID: 3, Value: "blood orange"})
	return t
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	svc, err := NewService(4, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestLoadRoleAndQuery(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.LoadRole("fruit", fruitThesaurus()))

	docs := []ports.Document{
		{ID: "rich", Body: "apple and banana in one bowl"},
		{ID: "poor", Body: "just an apple"},
		{ID: "none", Body: "nothing relevant"},
	}
	parsed, err := svc.IngestDocuments("fruit", docs)
	require.NoError(t, err)
	assert.Equal(t, 3, parsed)

	results, err := svc.Query("fruit", "apple", 0, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "rich", results[0].DocID)
	assert.Equal(t, "poor", results[1].DocID)
}

func TestIngestTwiceDoesNotInflate(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.LoadRole("fruit", fruitThesaurus()))

	docs := []ports.Document{{ID: "doc1", Body: "apple banana"}}
	parsed, err := svc.IngestDocuments("fruit", docs)
	require.NoError(t, err)
	assert.Equal(t, 1, parsed)

	first, err := svc.Query("fruit", "apple", 0, 10)
	require.NoError(t, err)

	parsed, err = svc.IngestDocuments("fruit", docs)
	require.NoError(t, err)
	assert.Equal(t, 0, parsed)

	second, err := svc.Query("fruit", "apple", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRoleNotLoaded(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Query("ghost", "apple", 0, 10)
	assert.Error(t, err)
	_, err = svc.Complete("ghost", "app", 5)
	assert.Error(t, err)
	_, err = svc.IngestDocuments("ghost", nil)
	assert.Error(t, err)
}

func TestCompleteShortQueryUsesPrefix(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.LoadRole("fruit", fruitThesaurus()))

	out, err := svc.Complete("fruit", "ap", 5)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "apple", out[0].Term)
}

func TestCompleteFuzzyToleratesTypo(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.LoadRole("fruit", fruitThesaurus()))

	out, err := svc.Complete("fruit", "banan", 5)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "banana", out[0].Term)
}

func TestCompleteShortMultibyteQueryUsesPrefix(t *testing.T) {
	svc := newTestService(t)
	th := ports.NewThesaurus("drinks")
	th.Insert("čaj", ports.NormalizedTerm{ID: 1, Value: "čaj"})
	require.NoError(t, svc.LoadRole("drinks", th))

	// Two runes but four bytes: still below the fuzzy cutoff, so the
	// prefix path answers and leaves the score unset.
	out, err := svc.Complete("drinks", "ča", 5)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "čaj", out[0].Term)
	assert.Zero(t, out[0].Score)
}

// stubWatcher satisfies ports.Watcher without touching the filesystem.
type stubWatcher struct {
	mu      sync.Mutex
	stopped bool
}

func (w *stubWatcher) Watch(path string, onChange func(string)) error { return nil }

func (w *stubWatcher) Stop() error {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()
	return nil
}

func TestWatchThesaurusConcurrentRegistration(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.LoadRole("fruit", fruitThesaurus()))

	watchers := make([]*stubWatcher, 8)
	var wg sync.WaitGroup
	for i := range watchers {
		watchers[i] = &stubWatcher{}
		w := watchers[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.WatchThesaurus("fruit", "thesaurus.json", w))
		}()
	}
	wg.Wait()

	require.NoError(t, svc.Close())
	for i, w := range watchers {
		w.mu.Lock()
		assert.True(t, w.stopped, "watcher %d not stopped", i)
		w.mu.Unlock()
	}
}

func TestLoadRoleReplacesWholesale(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.LoadRole("fruit", fruitThesaurus()))

	replacement := ports.NewThesaurus("fruit-v2")
	replacement.Insert("cherry", ports.NormalizedTerm{ID: 9, Value: "cherry"})
	require.NoError(t, svc.LoadRole("fruit", replacement))

	out, err := svc.Complete("fruit", "ch", 5)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "cherry", out[0].Term)

	// The old vocabulary is gone
	out, err = svc.Complete("fruit", "ap", 5)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestParseRegistrySurvivesReload(t *testing.T) {
	store, err := bbolt.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	svc := newTestService(t, WithStorage(store))

	require.NoError(t, svc.LoadRole("fruit", fruitThesaurus()))
	parsed, err := svc.IngestDocuments("fruit", []ports.Document{{ID: "doc1", Body: "apple"}})
	require.NoError(t, err)
	require.Equal(t, 1, parsed)

	// Reloading the role restores the registry from storage, so the
	// same document is not ingested twice.
	require.NoError(t, svc.LoadRole("fruit", fruitThesaurus()))
	parsed, err = svc.IngestDocuments("fruit", []ports.Document{{ID: "doc1", Body: "apple"}})
	require.NoError(t, err)
	assert.Equal(t, 0, parsed)
}

func TestIngestManyDocuments(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.LoadRole("fruit", fruitThesaurus()))

	var docs []ports.Document
	for i := 0; i < 100; i++ {
		docs = append(docs, ports.Document{ID: fmt.Sprintf("doc%03d", i), Body: "apple banana"})
	}
	parsed, err := svc.IngestDocuments("fruit", docs)
	require.NoError(t, err)
	assert.Equal(t, 100, parsed)

	results, err := svc.Query("fruit", "apple", 0, 0)
	require.NoError(t, err)
	assert.Len(t, results, 100)
}

func TestRolesList(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.LoadRole("a", fruitThesaurus()))
	require.NoError(t, svc.LoadRole("b", fruitThesaurus()))
	assert.ElementsMatch(t, []string{"a", "b"}, svc.Roles())
}
