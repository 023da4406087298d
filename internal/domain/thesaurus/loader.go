// Package thesaurus loads thesaurus files from their JSON interchange
// form: an object with a "name" and a "data" map of matchable term to
// normalized term record.
package thesaurus

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/corey/termgraph/internal/ports"
)

type fileFormat struct {
	Name string                           `json:"name"`
	Data map[string]ports.NormalizedTerm `json:"data"`
}

// LoadFromJSON parses thesaurus JSON. Terms are lowercased on the way
// in, so lookups and matching stay case-insensitive regardless of how
// the file was authored.
func LoadFromJSON(data []byte) (*ports.Thesaurus, error) {
	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("thesaurus: parse: %w", err)
	}
	if f.Name == "" {
		return nil, fmt.Errorf("thesaurus: missing name")
	}
	if f.Data == nil {
		return nil, fmt.Errorf("thesaurus: missing data map")
	}
	t := ports.NewThesaurus(f.Name)
	for term, nt := range f.Data {
		if term == "" {
			return nil, fmt.Errorf("thesaurus: empty term in %q", f.Name)
		}
		if nt.Value == "" {
			return nil, fmt.Errorf("thesaurus: term %q has no normalized form", term)
		}
		t.Insert(term, nt)
	}
	return t, nil
}

// LoadFromFile reads and parses a thesaurus JSON file.
func LoadFromFile(path string) (*ports.Thesaurus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("thesaurus: read %s: %w", path, err)
	}
	return LoadFromJSON(data)
}
