// Package app wires together all adapters and domain logic. A Service
// owns the set of loaded roles, each pairing a compiled matcher, a
// concept graph, and an autocomplete index built from one thesaurus.
package app

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/panjf2000/ants/v2"

	"github.com/corey/termgraph/internal/adapters/ahocorasick"
	"github.com/corey/termgraph/internal/domain/autocomplete"
	"github.com/corey/termgraph/internal/domain/rolegraph"
	"github.com/corey/termgraph/internal/domain/thesaurus"
	"github.com/corey/termgraph/internal/ports"
)

// Role bundles everything built from one thesaurus.
type Role struct {
	Name         string
	Thesaurus    *ports.Thesaurus
	Matcher      *ahocorasick.ShardedMatcher
	Graph        *rolegraph.RoleGraph
	Autocomplete *autocomplete.Index
}

// Service manages roles and runs document ingestion. Safe for
// concurrent use; role replacement is atomic, so readers always see
// either the old role or the new one, never a half-built mix.
type Service struct {
	logger    *log.Logger
	store     ports.Storage
	pool      *ants.Pool
	shardSize int

	mu       sync.RWMutex
	roles    map[string]*Role
	watchers []ports.Watcher
}

// Option configures a Service.
type Option func(*Service)

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithStorage attaches persistent storage. Loaded roles have their
// thesaurus and parse registry saved through it.
func WithStorage(st ports.Storage) Option {
	return func(s *Service) { s.store = st }
}

// WithShardSize overrides the matcher's per-shard pattern cap.
func WithShardSize(n int) Option {
	return func(s *Service) { s.shardSize = n }
}

// NewService creates a Service with a worker pool of poolSize
// goroutines for ingestion. poolSize <= 0 picks a small default.
func NewService(poolSize int, opts ...Option) (*Service, error) {
	if poolSize <= 0 {
		poolSize = 8
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("app: create worker pool: %w", err)
	}
	s := &Service{
		logger: log.Default(),
		pool:   pool,
		roles:  make(map[string]*Role),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the worker pool, stops watchers, and closes storage.
func (s *Service) Close() error {
	s.mu.Lock()
	watchers := s.watchers
	s.watchers = nil
	s.mu.Unlock()
	for _, w := range watchers {
		if err := w.Stop(); err != nil {
			s.logger.Warn("stop watcher", "err", err)
		}
	}
	s.pool.Release()
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// LoadRole compiles the thesaurus into a fresh role and swaps it in.
// An existing role with the same name is replaced wholesale; its
// previously parsed document IDs carry over from storage so re-ingested
// corpora are not double counted.
func (s *Service) LoadRole(name string, t *ports.Thesaurus) error {
	matcher, err := ahocorasick.CompileSharded(t, s.shardSize)
	if err != nil {
		return fmt.Errorf("app: compile matcher for role %q: %w", name, err)
	}
	index, err := autocomplete.Build(t, autocomplete.DefaultConfig())
	if err != nil {
		return fmt.Errorf("app: build autocomplete for role %q: %w", name, err)
	}
	graph := rolegraph.New(name, matcher)

	if s.store != nil {
		parsed, err := s.store.LoadParsedDocs(name)
		if err != nil {
			return fmt.Errorf("app: load parse registry for role %q: %w", name, err)
		}
		graph.MarkParsed(parsed)
		if err := s.store.SaveThesaurus(name, t); err != nil {
			return fmt.Errorf("app: persist thesaurus for role %q: %w", name, err)
		}
	}

	role := &Role{
		Name:         name,
		Thesaurus:    t,
		Matcher:      matcher,
		Graph:        graph,
		Autocomplete: index,
	}
	s.mu.Lock()
	s.roles[name] = role
	s.mu.Unlock()

	s.logger.Info("role loaded",
		"role", name,
		"terms", t.Len(),
		"shards", matcher.ShardCount(),
		"concepts", matcher.ConceptCount())
	return nil
}

// Role returns a loaded role by name.
func (s *Service) Role(name string) (*Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[name]
	if !ok {
		return nil, fmt.Errorf("app: role %q not loaded", name)
	}
	return r, nil
}

// Roles lists the names of every loaded role.
func (s *Service) Roles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.roles))
	for name := range s.roles {
		out = append(out, name)
	}
	return out
}

// IngestDocuments parses documents into a role's graph on the worker
// pool and returns how many were newly parsed. Documents already in
// the parse registry are skipped. The first parse error aborts the
// count but the remaining workers still drain.
func (s *Service) IngestDocuments(roleName string, docs []ports.Document) (int, error) {
	role, err := s.Role(roleName)
	if err != nil {
		return 0, err
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	parsed := 0
	var firstErr error

	for _, doc := range docs {
		doc := doc
		wg.Add(1)
		submitErr := s.pool.Submit(func() {
			defer wg.Done()
			ok, err := role.Graph.ParseDocument(doc.ID, doc.Body)
			mu.Lock()
			defer mu.Unlock()
			if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("app: parse %q: %w", doc.ID, err)
				return
			}
			if ok {
				parsed++
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("app: submit %q: %w", doc.ID, submitErr)
			}
			mu.Unlock()
		}
	}
	wg.Wait()

	if firstErr != nil {
		return parsed, firstErr
	}
	if s.store != nil {
		if err := s.store.SaveParsedDocs(roleName, role.Graph.ParsedDocs()); err != nil {
			return parsed, fmt.Errorf("app: persist parse registry: %w", err)
		}
	}
	s.logger.Info("documents ingested", "role", roleName, "new", parsed, "total", len(docs))
	return parsed, nil
}

// Query ranks documents for a role against the query text.
func (s *Service) Query(roleName, query string, skip, limit int) ([]ports.DocScore, error) {
	role, err := s.Role(roleName)
	if err != nil {
		return nil, err
	}
	return role.Graph.Query(query, skip, limit), nil
}

// fuzzyMinQueryLen is the query length below which fuzzy matching adds
// more noise than recall, so shorter queries use prefix search only.
const fuzzyMinQueryLen = 3

// Complete returns suggestions for a partial query. Short queries use
// prefix search; longer ones use fuzzy search and fall back to prefix
// search when fuzzy matching fails.
func (s *Service) Complete(roleName, query string, limit int) ([]ports.Suggestion, error) {
	role, err := s.Role(roleName)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(query) < fuzzyMinQueryLen {
		return role.Autocomplete.ExactSearch(query, limit), nil
	}
	out, err := role.Autocomplete.FuzzySearch(query, 0.7, limit)
	if err != nil {
		s.logger.Warn("fuzzy search failed, falling back to prefix", "role", roleName, "err", err)
		return role.Autocomplete.ExactSearch(query, limit), nil
	}
	return out, nil
}

// WatchThesaurus reloads a role whenever its thesaurus file changes on
// disk. Reload failures keep the current role and log the error.
func (s *Service) WatchThesaurus(roleName, path string, w ports.Watcher) error {
	err := w.Watch(path, func(changed string) {
		t, err := thesaurus.LoadFromFile(changed)
		if err != nil {
			s.logger.Error("thesaurus reload failed", "role", roleName, "path", changed, "err", err)
			return
		}
		if err := s.LoadRole(roleName, t); err != nil {
			s.logger.Error("role reload failed", "role", roleName, "err", err)
			return
		}
		s.logger.Info("role reloaded from disk", "role", roleName, "path", changed)
	})
	if err != nil {
		return fmt.Errorf("app: watch %s: %w", path, err)
	}
	s.mu.Lock()
	s.watchers = append(s.watchers, w)
	s.mu.Unlock()
	return nil
}
