package cmd

import (
	"context"
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/fenwick-labs/percolate/internal/config"
	"github.com/fenwick-labs/percolate/internal/logging"
)

func newLogsCmd() *cobra.Command {
	var n int
	var level string
	var pattern string
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Tail percolated's server log",
		Long:  `Show the tail of the log file configured for 'percolated serve', optionally filtering by level or a regular expression.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(projectDir)
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			var re *regexp.Regexp
			if pattern != "" {
				re, err = regexp.Compile(pattern)
				if err != nil {
					return fmt.Errorf("invalid --pattern: %w", err)
				}
			}

			viewer := logging.NewViewer(logging.ViewerConfig{
				Level:   level,
				Pattern: re,
				NoColor: noColor,
			}, cmd.OutOrStdout())

			if follow {
				entries := make(chan logging.LogEntry, 16)
				ctx, cancel := context.WithCancel(cmd.Context())
				defer cancel()

				go func() {
					for entry := range entries {
						viewer.Print([]logging.LogEntry{entry})
					}
				}()
				return viewer.Follow(ctx, cfg.Logging.FilePath, entries)
			}

			entries, err := viewer.Tail(cfg.Logging.FilePath, n)
			if err != nil {
				return err
			}
			viewer.Print(entries)
			return nil
		},
	}

	cmd.Flags().IntVar(&n, "n", 50, "Number of lines to show")
	cmd.Flags().StringVar(&level, "level", "", "Filter by level (debug, info, warn, error)")
	cmd.Flags().StringVar(&pattern, "pattern", "", "Filter by regular expression")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow the log file for new entries")

	return cmd
}
