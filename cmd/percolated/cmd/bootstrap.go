package cmd

import (
	"path/filepath"

	"github.com/fenwick-labs/percolate/internal/config"
	"github.com/fenwick-labs/percolate/internal/monitor"
	"github.com/fenwick-labs/percolate/internal/presearcher"
	"github.com/fenwick-labs/percolate/internal/schema"
)

// buildMonitor constructs a fresh, empty Monitor from cfg's declared
// schema. The returned Monitor holds no registered queries; callers
// populate it (serve does, over the HTTP/MCP surfaces it exposes).
func buildMonitor(cfg *config.Config) (*monitor.Monitor, error) {
	tm := schema.NewTokenizerManager()
	sch, err := cfg.Schema.Build(tm)
	if err != nil {
		return nil, err
	}

	scorer := presearcher.NewTfIdfScorer()
	pre := presearcher.NewTermFilteredPresearcher(scorer)

	return monitor.NewMonitor(sch, pre)
}

// pidFilePath derives the single-instance lock path from the configured
// log file's directory.
func pidFilePath(cfg *config.Config) string {
	dir := filepath.Dir(cfg.Logging.FilePath)
	return filepath.Join(dir, "percolated.pid")
}
