package thesaurus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "name": "oncology",
  "data": {
    "EGFR": {"id": 7, "nterm": "epidermal growth factor receptor", "url": "http://example.org/egfr"},
    "erbb1": {"id": 7, "nterm": "epidermal growth factor receptor"},
    "kinase": {"id": 9, "nterm": "protein kinase"}
  }
}`

func TestLoadFromJSON(t *testing.T) {
	th, err := LoadFromJSON([]byte(sampleJSON))
	require.NoError(t, err)

	assert.Equal(t, "oncology", th.Name)
	assert.Equal(t, 3, th.Len())

	// Keys are lowercased on load
	nt, ok := th.Get("egfr")
	require.True(t, ok)
	assert.Equal(t, uint64(7), nt.ID)
	assert.Equal(t, "http://example.org/egfr", nt.URL)
}

func TestLoadFromJSONInvalid(t *testing.T) {
	cases := map[string]string{
		"not json":        `{]`,
		"missing name":    `{"data": {"a": {"id": 1, "nterm": "a"}}}`,
		"missing data":    `{"name": "x"}`,
		"empty nterm":     `{"name": "x", "data": {"a": {"id": 1, "nterm": ""}}}`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFromJSON([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thesaurus.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))

	th, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "oncology", th.Name)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
