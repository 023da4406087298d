package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/termgraph/internal/adapters/ahocorasick"
	"github.com/corey/termgraph/internal/adapters/artifact"
	"github.com/corey/termgraph/internal/domain/thesaurus"
)

var (
	artifactThesaurusPath string
	artifactOut           string
	artifactShardSize     int
)

var artifactCmd = &cobra.Command{
	Use:   "artifact",
	Short: "Build and inspect compiled matcher artifacts",
}

var artifactBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compile a thesaurus into a matcher artifact",
	RunE:  runArtifactBuild,
}

var artifactInfoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show what an artifact contains",
	Args:  cobra.ExactArgs(1),
	RunE:  runArtifactInfo,
}

func runArtifactBuild(cmd *cobra.Command, args []string) error {
	if artifactThesaurusPath == "" || artifactOut == "" {
		return fmt.Errorf("--thesaurus and --out are required")
	}
	t, err := thesaurus.LoadFromFile(artifactThesaurusPath)
	if err != nil {
		return err
	}
	m, err := ahocorasick.CompileSharded(t, artifactShardSize)
	if err != nil {
		return err
	}
	if err := m.SaveArtifact(artifactOut); err != nil {
		return err
	}
	fmt.Printf("wrote %s: %d terms, %d concepts, %d shards\n",
		artifactOut, m.PatternCount(), m.ConceptCount(), m.ShardCount())
	return nil
}

func runArtifactInfo(cmd *cobra.Command, args []string) error {
	if !artifact.Exists(args[0]) {
		return fmt.Errorf("no artifact at %s", args[0])
	}
	m, err := ahocorasick.LoadArtifact(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("terms:    %d\n", m.PatternCount())
	fmt.Printf("concepts: %d\n", m.ConceptCount())
	fmt.Printf("shards:   %d\n", m.ShardCount())
	return nil
}

func init() {
	artifactBuildCmd.Flags().StringVarP(&artifactThesaurusPath, "thesaurus", "t", "", "thesaurus JSON file")
	artifactBuildCmd.Flags().StringVarP(&artifactOut, "out", "o", "", "output artifact path")
	artifactBuildCmd.Flags().IntVar(&artifactShardSize, "shard-size", 0, "patterns per shard (0 = default)")
	artifactCmd.AddCommand(artifactBuildCmd)
	artifactCmd.AddCommand(artifactInfoCmd)
}
