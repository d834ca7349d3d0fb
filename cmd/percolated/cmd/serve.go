package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/blevesearch/bleve/v2"
	"github.com/spf13/cobra"

	"github.com/fenwick-labs/percolate/internal/audit"
	"github.com/fenwick-labs/percolate/internal/config"
	"github.com/fenwick-labs/percolate/internal/daemon"
	"github.com/fenwick-labs/percolate/internal/httpapi"
	"github.com/fenwick-labs/percolate/internal/logging"
	"github.com/fenwick-labs/percolate/internal/mcp"
	"github.com/fenwick-labs/percolate/internal/monitor"
	"github.com/fenwick-labs/percolate/internal/querytree"
)

func newServeCmd() *cobra.Command {
	var httpOnly bool
	var mcpOnly bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the percolated HTTP and MCP service surfaces",
		Long: `Start percolated as a long-running service.

By default both the HTTP API (POST /register_query, POST /match_document)
and the MCP server (register_query, match_document tools) are started
against a single shared, empty Monitor. Registered queries and matched
documents live only in memory; restarting serve starts from empty
again.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wantHTTP, wantMCP := true, true
			if httpOnly {
				wantMCP = false
			}
			if mcpOnly {
				wantHTTP = false
			}
			return runServe(cmd, wantHTTP, wantMCP)
		},
	}

	cmd.Flags().BoolVar(&httpOnly, "http-only", false, "Start only the HTTP service surface")
	cmd.Flags().BoolVar(&mcpOnly, "mcp-only", false, "Start only the MCP service surface")

	return cmd
}

func runServe(cmd *cobra.Command, wantHTTP, wantMCP bool) error {
	if !wantHTTP && !wantMCP {
		return fmt.Errorf("serve: --http-only and --mcp-only are mutually exclusive")
	}

	cfg, err := config.Load(projectDir)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logCfg := logging.Config{
		Level:         cfg.Logging.Level,
		FilePath:      cfg.Logging.FilePath,
		MaxSizeMB:     cfg.Logging.MaxSizeMB,
		MaxFiles:      cfg.Logging.MaxFiles,
		WriteToStderr: cfg.Logging.WriteToStderr && !wantMCP, // stdio MCP owns stdout/stderr framing
	}
	if debugMode {
		logCfg.Level = "debug"
	}
	logger, levelVar, cleanup, err := logging.SetupHotReloadable(logCfg)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer cleanup()
	slog.SetDefault(logger)

	if path, ok := config.ProjectConfigPath(projectDir); ok && !debugMode {
		watcher, err := config.NewWatcher(path, levelVar)
		if err != nil {
			slog.Warn("config hot-reload disabled", slog.String("path", path), slog.Any("error", err))
		} else {
			defer watcher.Close()
		}
	}

	pidFile := daemon.NewPIDFile(pidFilePath(cfg))
	if err := pidFile.TryLock(); err != nil {
		return err
	}
	defer pidFile.Unlock()

	mon, err := buildMonitor(cfg)
	if err != nil {
		return fmt.Errorf("building monitor: %w", err)
	}

	matchers, err := monitor.NewMatcherPool(mon, cfg.Scoring.MatcherPoolSize)
	if err != nil {
		return fmt.Errorf("building matcher pool: %w", err)
	}

	var auditLog *audit.Log
	if cfg.Audit.Enabled {
		auditLog, err = audit.Open(cfg.Audit.DatabasePath)
		if err != nil {
			return fmt.Errorf("opening audit log: %w", err)
		}
		defer auditLog.Close()
	}

	var recorder httpapi.Recorder = httpapi.NoopRecorder
	if auditLog != nil {
		recorder = auditLog
	}

	parse := func(q string) querytree.Query {
		return &querytree.Opaque{Inner: bleve.NewQueryStringQuery(q)}
	}

	errCh := make(chan error, 2)

	if wantHTTP {
		httpSrv := httpapi.NewServer(mon, matchers, recorder, httpapi.Options{Debug: debugMode})
		slog.Info("http server listening", slog.String("addr", cfg.Server.HTTPAddr))
		go func() { errCh <- httpSrv.Run(cfg.Server.HTTPAddr) }()
	}

	if wantMCP {
		mcpSrv, err := mcp.NewServer(mon, matchers, auditLog, parse)
		if err != nil {
			return fmt.Errorf("building MCP server: %w", err)
		}
		slog.Info("mcp server starting", slog.String("transport", cfg.Server.MCPTransport))
		go func() { errCh <- mcpSrv.Serve(cmd.Context(), cfg.Server.MCPTransport) }()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		slog.Info("received signal, shutting down", slog.String("signal", sig.String()))
		return nil
	}
}
