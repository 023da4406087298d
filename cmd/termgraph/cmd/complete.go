package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/termgraph/internal/domain/autocomplete"
	"github.com/corey/termgraph/internal/domain/thesaurus"
)

var (
	completeThesaurusPath string
	completeLimit         int
	completeFuzzy         float64
	completeDistance      int
)

var completeCmd = &cobra.Command{
	Use:   "complete <query>",
	Short: "Suggest thesaurus terms for a partial query",
	Long: "Prefix search by default. --fuzzy enables Jaro-Winkler matching with the given\n" +
		"similarity threshold; --distance enables Levenshtein matching within the given edit budget.",
	Args: cobra.ExactArgs(1),
	RunE: runComplete,
}

func runComplete(cmd *cobra.Command, args []string) error {
	if completeThesaurusPath == "" {
		return fmt.Errorf("--thesaurus is required")
	}
	t, err := thesaurus.LoadFromFile(completeThesaurusPath)
	if err != nil {
		return err
	}
	ix, err := autocomplete.Build(t, autocomplete.DefaultConfig())
	if err != nil {
		return err
	}

	query := args[0]
	switch {
	case completeFuzzy > 0:
		out, err := ix.FuzzySearch(query, completeFuzzy, completeLimit)
		if err != nil {
			return err
		}
		for _, s := range out {
			fmt.Printf("%s\t%s\t%.3f\n", s.Term, s.NormalizedTerm, s.Score)
		}
	case completeDistance >= 0:
		for _, s := range ix.LevenshteinSearch(query, completeDistance, completeLimit) {
			fmt.Printf("%s\t%s\t%.3f\n", s.Term, s.NormalizedTerm, s.Score)
		}
	default:
		for _, s := range ix.ExactSearch(query, completeLimit) {
			fmt.Printf("%s\t%s\n", s.Term, s.NormalizedTerm)
		}
	}
	return nil
}

func init() {
	completeCmd.Flags().StringVarP(&completeThesaurusPath, "thesaurus", "t", "", "thesaurus JSON file")
	completeCmd.Flags().IntVarP(&completeLimit, "limit", "n", 10, "maximum suggestions")
	completeCmd.Flags().Float64Var(&completeFuzzy, "fuzzy", 0, "fuzzy similarity threshold in (0, 1]")
	completeCmd.Flags().IntVar(&completeDistance, "distance", -1, "max Levenshtein edit distance")
}
