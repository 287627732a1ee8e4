// Package cli implements forge-indexer's command surface: index and
// reset, sharing a common set of embedder flags and a root cobra
// command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "forge-indexer",
	Short: "Index a codebase into a vector store and serve semantic retrieval",
	Long: `forge-indexer watches a directory tree, chunks and embeds its source
files, and keeps a vector-index collection in sync with the working tree.
It also serves the resulting index over HTTP and MCP for retrieval.`,
}

// Execute runs the root command, exiting the process on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(resetCmd)
}
