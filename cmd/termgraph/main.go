// termgraph is a terminology matching and relevance ranking engine.
// Single binary — thesaurus-driven text matching, autocomplete, and
// concept-graph document ranking.
package main

import (
	"os"

	"github.com/corey/termgraph/cmd/termgraph/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
