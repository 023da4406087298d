package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corey/termgraph/internal/adapters/ahocorasick"
	"github.com/corey/termgraph/internal/domain/thesaurus"
)

var (
	matchThesaurusPath string
	matchArtifactPath  string
	matchReplace       string
)

var matchCmd = &cobra.Command{
	Use:   "match <file>",
	Short: "Scan a text file for thesaurus terms",
	Long: "Scans the file with the compiled thesaurus automaton and prints each match\n" +
		"with its offsets and concept ID. With --replace, prints the rewritten text instead.",
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func runMatch(cmd *cobra.Command, args []string) error {
	scanner, err := loadScanner()
	if err != nil {
		return err
	}
	text, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	if matchReplace != "" {
		mode, err := parseReplaceMode(matchReplace)
		if err != nil {
			return err
		}
		fmt.Print(scanner.Replace(string(text), mode))
		return nil
	}

	for _, m := range scanner.Scan(string(text)) {
		fmt.Printf("%d:%d\t%s\t%d\n", m.Start, m.End, m.Term, m.ConceptID)
	}
	return nil
}

// loadScanner builds a matcher from either a prebuilt artifact or a
// thesaurus JSON file.
func loadScanner() (*ahocorasick.ShardedMatcher, error) {
	if matchArtifactPath != "" {
		return ahocorasick.LoadArtifact(matchArtifactPath)
	}
	if matchThesaurusPath == "" {
		return nil, fmt.Errorf("one of --thesaurus or --artifact is required")
	}
	t, err := thesaurus.LoadFromFile(matchThesaurusPath)
	if err != nil {
		return nil, err
	}
	return ahocorasick.CompileSharded(t, 0)
}

func parseReplaceMode(name string) (ahocorasick.ReplaceMode, error) {
	switch name {
	case "term":
		return ahocorasick.ReplaceTerm, nil
	case "markdown":
		return ahocorasick.ReplaceMarkdown, nil
	case "html":
		return ahocorasick.ReplaceHTML, nil
	case "wiki":
		return ahocorasick.ReplaceWiki, nil
	default:
		return 0, fmt.Errorf("unknown replace mode %q (term, markdown, html, wiki)", name)
	}
}

func init() {
	matchCmd.Flags().StringVarP(&matchThesaurusPath, "thesaurus", "t", "", "thesaurus JSON file")
	matchCmd.Flags().StringVarP(&matchArtifactPath, "artifact", "a", "", "prebuilt matcher artifact")
	matchCmd.Flags().StringVarP(&matchReplace, "replace", "r", "", "rewrite matches: term, markdown, html, or wiki")
}
