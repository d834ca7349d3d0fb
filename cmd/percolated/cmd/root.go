// Package cmd provides the CLI commands for percolated.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fenwick-labs/percolate/pkg/version"
)

// Persistent flags shared across subcommands.
var (
	projectDir string
	debugMode  bool
	noColor    bool
	serverAddr string
)

// NewRootCmd creates the root command for the percolated CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "percolated",
		Short: "A reverse search engine: register standing queries, match documents against them",
		Long: `percolated indexes queries instead of documents. Register standing
queries with 'percolated register', then feed it documents with
'percolated match' to find out which registered queries each one
satisfies.

Run 'percolated serve' to start the HTTP and MCP service surfaces.`,
		Version: version.Version,
	}

	cmd.SetVersionTemplate("percolated version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&projectDir, "dir", ".", "Project directory to load .percolated.yaml from")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().StringVar(&serverAddr, "addr", "http://localhost:8765", "Address of a running percolated HTTP server")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newRegisterCmd())
	cmd.AddCommand(newMatchCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
