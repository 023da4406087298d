package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/corey/termgraph/internal/adapters/bbolt"
	"github.com/corey/termgraph/internal/app"
	"github.com/corey/termgraph/internal/domain/thesaurus"
	"github.com/corey/termgraph/internal/ports"
)

var (
	queryThesaurusPath string
	queryDocsDir       string
	queryDBPath        string
	queryRole          string
	querySkip          int
	queryLimit         int
	queryWorkers       int
)

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Rank documents against a query",
	Long: "Ingests every file under --docs into the role's concept graph, then ranks\n" +
		"documents by how strongly they share concepts with the query text.",
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryThesaurusPath == "" {
		return fmt.Errorf("--thesaurus is required")
	}
	t, err := thesaurus.LoadFromFile(queryThesaurusPath)
	if err != nil {
		return err
	}

	opts := []app.Option{app.WithLogger(newLogger())}
	if queryDBPath != "" {
		store, err := bbolt.NewStore(queryDBPath)
		if err != nil {
			return err
		}
		opts = append(opts, app.WithStorage(store))
	}
	svc, err := app.NewService(queryWorkers, opts...)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.LoadRole(queryRole, t); err != nil {
		return err
	}
	if queryDocsDir != "" {
		docs, err := readDocs(queryDocsDir)
		if err != nil {
			return err
		}
		if _, err := svc.IngestDocuments(queryRole, docs); err != nil {
			return err
		}
	}

	results, err := svc.Query(queryRole, args[0], querySkip, queryLimit)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Printf("%d\t%s\n", r.Score, r.DocID)
	}
	return nil
}

// readDocs loads every regular file under dir as one document, keyed
// by its path relative to dir.
func readDocs(dir string) ([]ports.Document, error) {
	var docs []ports.Document
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		body, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		docs = append(docs, ports.Document{ID: rel, Body: string(body)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func init() {
	queryCmd.Flags().StringVarP(&queryThesaurusPath, "thesaurus", "t", "", "thesaurus JSON file")
	queryCmd.Flags().StringVarP(&queryDocsDir, "docs", "d", "", "directory of documents to ingest")
	queryCmd.Flags().StringVar(&queryDBPath, "db", "", "bbolt database for persistent state")
	queryCmd.Flags().StringVar(&queryRole, "role", "default", "role name")
	queryCmd.Flags().IntVar(&querySkip, "skip", 0, "results to skip")
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 10, "maximum results")
	queryCmd.Flags().IntVar(&queryWorkers, "workers", 0, "ingestion worker count (0 = default)")
}
