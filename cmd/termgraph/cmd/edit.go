package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corey/termgraph/internal/domain/editor"
)

var (
	editSearchFile  string
	editReplaceFile string
	editStrategy    string
	editWrite       bool
)

var editCmd = &cobra.Command{
	Use:   "edit <file>",
	Short: "Apply a search/replace edit with fuzzy fallback",
	Long: "Replaces the first occurrence of the search block in the file, degrading from\n" +
		"exact matching through whitespace-flexible, block-anchor, and fuzzy strategies.\n" +
		"Prints the result to stdout unless --write is given.",
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	if editSearchFile == "" || editReplaceFile == "" {
		return fmt.Errorf("--search and --replace are required")
	}
	content, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	search, err := os.ReadFile(editSearchFile)
	if err != nil {
		return err
	}
	replace, err := os.ReadFile(editReplaceFile)
	if err != nil {
		return err
	}

	var res editor.EditResult
	if editStrategy != "" {
		res, err = editor.ApplyEditWithStrategy(string(content), string(search), string(replace), editor.Strategy(editStrategy))
		if err != nil {
			return err
		}
	} else {
		res = editor.ApplyEdit(string(content), string(search), string(replace))
	}

	if !res.Success {
		return fmt.Errorf("no match found (best: %s at %.3f)", res.StrategyUsed, res.SimilarityScore)
	}
	fmt.Fprintf(os.Stderr, "matched via %s (%.3f)\n", res.StrategyUsed, res.SimilarityScore)

	if editWrite {
		info, err := os.Stat(args[0])
		if err != nil {
			return err
		}
		return os.WriteFile(args[0], []byte(res.ModifiedContent), info.Mode())
	}
	fmt.Print(res.ModifiedContent)
	return nil
}

func init() {
	editCmd.Flags().StringVarP(&editSearchFile, "search", "s", "", "file holding the search block")
	editCmd.Flags().StringVarP(&editReplaceFile, "replace", "r", "", "file holding the replacement block")
	editCmd.Flags().StringVar(&editStrategy, "strategy", "", "force a single strategy: exact, whitespace-flexible, block-anchor, fuzzy")
	editCmd.Flags().BoolVarP(&editWrite, "write", "w", false, "write the result back to the file")
}
