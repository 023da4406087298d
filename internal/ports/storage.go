package ports

// Storage persists per-role vocabulary state to durable storage.
// The backing store (bbolt) is role-scoped: each role gets its own
// namespace. Concurrent reads are safe; writes are serialized by the adapter.
//
// Crash safety: writes must be transactional. A crash mid-write must not
// corrupt previously committed data.
type Storage interface {
	// SaveThesaurus persists the raw thesaurus for a role.
	// Overwrites any prior thesaurus for this role.
	SaveThesaurus(role string, t *Thesaurus) error

	// LoadThesaurus retrieves the thesaurus for a role.
	// Returns nil, nil if none exists (fresh role).
	LoadThesaurus(role string) (*Thesaurus, error)

	// SaveParsedDocs persists the set of document IDs already folded into
	// a role's graph, so a restart does not double-count ranks.
	SaveParsedDocs(role string, docIDs []string) error

	// LoadParsedDocs retrieves the parsed-document registry for a role.
	// Returns nil, nil if none exists.
	LoadParsedDocs(role string) ([]string, error)

	// DeleteRole removes all data for a role.
	// Idempotent: deleting a nonexistent role is not an error.
	DeleteRole(role string) error

	// Close releases the underlying store.
	Close() error
}

// Watcher monitors a thesaurus file for changes so the owning service can
// rebuild and swap the role's compiled state. The callback may be invoked
// from any goroutine. Only one Watch call should be active at a time.
type Watcher interface {
	// Watch starts monitoring path. onChange is called with the absolute
	// path after each write to the file.
	Watch(path string, onChange func(path string)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onChange calls will fire. Safe to call multiple times.
	Stop() error
}
