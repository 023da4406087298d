package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "termgraph",
	Short: "termgraph — terminology matching and relevance ranking",
	Long:  "Thesaurus-driven text matching, typeahead autocomplete, concept-graph document ranking, and fuzzy text editing.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the CLI logger, honoring --verbose.
func newLogger() *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(artifactCmd)
}
