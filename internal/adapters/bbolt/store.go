// Package bbolt implements the ports.Storage interface using bbolt
// (embedded B+ tree). Each role gets its own top-level bucket holding
// the role's thesaurus and its parsed-document registry as JSON.
// Writes are transactional, so a crash mid-write cannot corrupt
// previously committed data.
package bbolt

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/corey/termgraph/internal/ports"
)

// Keys within a role bucket
var (
	keyThesaurus  = []byte("thesaurus")
	keyParsedDocs = []byte("parsed_docs")
)

// Store implements ports.Storage backed by bbolt.
type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

type thesaurusJSON struct {
	Name string                           `json:"name"`
	Data map[string]ports.NormalizedTerm `json:"data"`
}

// SaveThesaurus persists a role's thesaurus.
func (s *Store) SaveThesaurus(role string, t *ports.Thesaurus) error {
	if t == nil {
		return fmt.Errorf("nil thesaurus")
	}
	data, err := json.Marshal(thesaurusJSON{Name: t.Name, Data: t.Data})
	if err != nil {
		return fmt.Errorf("marshal thesaurus: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(role))
		if err != nil {
			return fmt.Errorf("create bucket %q: %w", role, err)
		}
		return b.Put(keyThesaurus, data)
	})
}

// LoadThesaurus returns the stored thesaurus for a role, or (nil, nil)
// when the role has none.
func (s *Store) LoadThesaurus(role string) (*ports.Thesaurus, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(role))
		if b == nil {
			return nil
		}
		if v := b.Get(keyThesaurus); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var tj thesaurusJSON
	if err := json.Unmarshal(raw, &tj); err != nil {
		return nil, fmt.Errorf("unmarshal thesaurus: %w", err)
	}
	t := ports.NewThesaurus(tj.Name)
	for term, nt := range tj.Data {
		t.Insert(term, nt)
	}
	return t, nil
}

// SaveParsedDocs persists the IDs of documents already folded into a
// role's graph.
func (s *Store) SaveParsedDocs(role string, docIDs []string) error {
	data, err := json.Marshal(docIDs)
	if err != nil {
		return fmt.Errorf("marshal parsed docs: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(role))
		if err != nil {
			return fmt.Errorf("create bucket %q: %w", role, err)
		}
		return b.Put(keyParsedDocs, data)
	})
}

// LoadParsedDocs returns the stored parsed-document registry for a
// role. A role with no registry yields an empty slice.
func (s *Store) LoadParsedDocs(role string) ([]string, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(role))
		if b == nil {
			return nil
		}
		if v := b.Get(keyParsedDocs); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("unmarshal parsed docs: %w", err)
	}
	return ids, nil
}

// DeleteRole removes everything stored for a role. Deleting a role
// that was never stored is a no-op.
func (s *Store) DeleteRole(role string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(role)) == nil {
			return nil
		}
		return tx.DeleteBucket([]byte(role))
	})
}
