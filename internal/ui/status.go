package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// StatusInfo summarizes a running percolated service for `percolated
// stats`.
type StatusInfo struct {
	// Corpus
	RegisteredQueries int       `json:"registered_queries"`
	StartedAt         time.Time `json:"started_at"`

	// Match pipeline cost, accumulated since StartedAt (§4.3's Metrics
	// triple, summed across every match_document call).
	MatchDocumentCalls int `json:"match_document_calls"`
	ProspectiveMatches int `json:"prospective_matches"`
	ActualMatches      int `json:"actual_matches"`

	// Matcher pool
	MatcherPoolSize  int `json:"matcher_pool_size"`
	MatcherPoolInUse int `json:"matcher_pool_in_use"`

	// Storage
	AuditDBSize int64 `json:"audit_db_size"`

	// Component status: "running", "stopped", "n/a"
	HTTPStatus string `json:"http_status"`
	MCPStatus  string `json:"mcp_status"`
}

// StatusRenderer displays monitor status.
type StatusRenderer struct {
	out     io.Writer
	styles  Styles
	noColor bool
}

// NewStatusRenderer creates a status renderer.
func NewStatusRenderer(out io.Writer, noColor bool) *StatusRenderer {
	return &StatusRenderer{
		out:     out,
		styles:  GetStyles(noColor),
		noColor: noColor,
	}
}

// Render displays status info to terminal, with sparkline a pre-rendered
// match-rate sparkline string (from Sparkline.Render), or empty to omit.
func (r *StatusRenderer) Render(info StatusInfo, sparkline string) error {
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render("Monitor Status"))

	_, _ = fmt.Fprintf(r.out, "  Registered queries: %d\n", info.RegisteredQueries)
	if !info.StartedAt.IsZero() {
		_, _ = fmt.Fprintf(r.out, "  Uptime:             %s\n", formatTime(info.StartedAt))
	}
	_, _ = fmt.Fprintln(r.out)

	_, _ = fmt.Fprintln(r.out, "  Match pipeline:")
	_, _ = fmt.Fprintf(r.out, "    Calls served:     %d\n", info.MatchDocumentCalls)
	_, _ = fmt.Fprintf(r.out, "    Phase 1 candidates: %d\n", info.ProspectiveMatches)
	_, _ = fmt.Fprintf(r.out, "    Phase 2 matches:  %d\n", info.ActualMatches)
	if sparkline != "" {
		_, _ = fmt.Fprintf(r.out, "    Match rate:       %s\n", sparkline)
	}
	_, _ = fmt.Fprintln(r.out)

	_, _ = fmt.Fprintln(r.out, "  Matcher pool:")
	_, _ = fmt.Fprintf(r.out, "    In use:    %d / %d\n", info.MatcherPoolInUse, info.MatcherPoolSize)
	_, _ = fmt.Fprintln(r.out)

	_, _ = fmt.Fprintf(r.out, "  Audit log: %s\n", FormatBytes(info.AuditDBSize))
	_, _ = fmt.Fprintln(r.out)

	_, _ = fmt.Fprintf(r.out, "  HTTP: %s\n", r.renderStatus(info.HTTPStatus))
	_, _ = fmt.Fprintf(r.out, "  MCP:  %s\n", r.renderStatus(info.MCPStatus))

	return nil
}

// RenderJSON outputs status as JSON.
func (r *StatusRenderer) RenderJSON(info StatusInfo) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

// renderStatus formats a status string with color.
func (r *StatusRenderer) renderStatus(status string) string {
	switch status {
	case "ready", "running":
		return r.styles.Success.Render(status)
	case "offline", "stopped":
		return r.styles.Warning.Render(status)
	case "error":
		return r.styles.Error.Render(status)
	default:
		return status
	}
}

// formatTime formats a time for display as an elapsed duration.
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just started"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	default:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
}

// FormatBytes formats bytes to human-readable format.
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
