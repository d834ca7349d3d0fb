package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/fenwick-labs/percolate/internal/audit"
	"github.com/fenwick-labs/percolate/internal/config"
	"github.com/fenwick-labs/percolate/internal/daemon"
	"github.com/fenwick-labs/percolate/internal/ui"
)

func fileSize(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

func newStatsCmd() *cobra.Command {
	var jsonOutput bool
	var watch bool
	var watchInterval time.Duration

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show status and telemetry for a percolated instance",
		Long: `Display the registered query count, match pipeline cost, and
service status of a percolated instance, combining local state (the PID
file, the audit log) with the /metrics counters scraped from a running
server.

With --watch, stats stays open and redraws a live dashboard every
--watch-interval instead of printing a single snapshot.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if watch {
				program := tea.NewProgram(ui.NewWatchModel(watchFetch, watchInterval, noColor))
				_, err := program.Run()
				return err
			}

			info, err := gatherStatus()
			if err != nil {
				return err
			}

			r := ui.NewStatusRenderer(cmd.OutOrStdout(), noColor)
			if jsonOutput {
				return r.RenderJSON(*info)
			}
			return r.Render(*info, "")
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&watch, "watch", false, "Continuously redraw a live dashboard")
	cmd.Flags().DurationVar(&watchInterval, "watch-interval", 2*time.Second, "Refresh interval for --watch")

	return cmd
}

// watchFetch adapts gatherStatus to ui.WatchFetcher, dereferencing its
// *ui.StatusInfo result for the bubbletea model.
func watchFetch() (ui.StatusInfo, error) {
	info, err := gatherStatus()
	if err != nil {
		return ui.StatusInfo{}, err
	}
	return *info, nil
}

func gatherStatus() (*ui.StatusInfo, error) {
	cfg, err := config.Load(projectDir)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	info := &ui.StatusInfo{
		MatcherPoolSize: cfg.Scoring.MatcherPoolSize,
		HTTPStatus:      "stopped",
		MCPStatus:       "n/a",
	}

	pidFile := daemon.NewPIDFile(pidFilePath(cfg))
	if pidFile.IsRunning() {
		info.HTTPStatus = "running"
	}

	if cfg.Audit.Enabled {
		if log, err := audit.Open(cfg.Audit.DatabasePath); err == nil {
			defer log.Close()
			if count, err := log.Count(); err == nil {
				info.RegisteredQueries = int(count)
			}
		}
		if size, err := fileSize(cfg.Audit.DatabasePath); err == nil {
			info.AuditDBSize = size
		}
	}

	scrapeMetrics(info)

	return info, nil
}

// scrapeMetrics fills in the match-pipeline counters from a running
// server's /metrics endpoint. Failure to reach it is not an error; stats
// still reports what local state it has.
func scrapeMetrics(info *ui.StatusInfo) {
	resp, err := http.Get(serverAddr + "/metrics")
	if err != nil {
		return
	}
	defer resp.Body.Close()

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(resp.Body)
	if err != nil {
		return
	}

	info.HTTPStatus = "running"

	if v, ok := gaugeValue(families, "percolated_registered_queries_total"); ok {
		info.RegisteredQueries = int(v)
	}
	if v, ok := counterValue(families, "percolated_match_document_total"); ok {
		info.MatchDocumentCalls = int(v)
	}
	if v, ok := counterValue(families, "percolated_prospective_matches_total"); ok {
		info.ProspectiveMatches = int(v)
	}
	if v, ok := counterValue(families, "percolated_actual_matches_total"); ok {
		info.ActualMatches = int(v)
	}
}

func gaugeValue(families map[string]*dto.MetricFamily, name string) (float64, bool) {
	fam, ok := families[name]
	if !ok || len(fam.GetMetric()) == 0 {
		return 0, false
	}
	return fam.GetMetric()[0].GetGauge().GetValue(), true
}

func counterValue(families map[string]*dto.MetricFamily, name string) (float64, bool) {
	fam, ok := families[name]
	if !ok || len(fam.GetMetric()) == 0 {
		return 0, false
	}
	return fam.GetMetric()[0].GetCounter().GetValue(), true
}
