// Package output provides consistent CLI output formatting: human-readable
// status lines when stdout is a terminal, newline-delimited JSON otherwise,
// so scripted callers (CI, another process piping percolated's output) get
// a stable machine-readable stream instead of icons meant for a person.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Writer provides formatted output for CLI.
type Writer struct {
	out      io.Writer
	useColor bool
	jsonMode bool
}

// New creates a new output Writer in human-readable mode.
func New(out io.Writer) *Writer {
	return &Writer{
		out:      out,
		useColor: false, // Default to no color for simplicity
	}
}

// NewAuto creates a Writer in JSON mode when out isn't a terminal (IsTTY
// returns false), human mode otherwise. This is the constructor CLI
// commands should use so piped/redirected output degrades to JSON lines
// automatically.
func NewAuto(out io.Writer) *Writer {
	w := New(out)
	w.jsonMode = !IsTTY(out)
	return w
}

// IsTTY reports whether out is a terminal percolated should render
// human-readable status lines to.
func IsTTY(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// jsonLine is the shape every JSON-mode status line takes.
type jsonLine struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// writeJSON emits one NDJSON line, ignoring marshal/write errors exactly
// like the human-readable path does for console output.
func (w *Writer) writeJSON(level, msg string) {
	line, err := json.Marshal(jsonLine{Level: level, Message: msg})
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(w.out, string(line))
}

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if w.jsonMode {
		w.writeJSON("info", msg)
		return
	}
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	w.Status(icon, msg)
}

// Success prints a success message with checkmark.
func (w *Writer) Success(msg string) {
	if w.jsonMode {
		w.writeJSON("success", msg)
		return
	}
	w.Status("✅", msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	if w.jsonMode {
		w.writeJSON("warning", msg)
		return
	}
	w.Status("⚠️ ", msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	if w.jsonMode {
		w.writeJSON("error", msg)
		return
	}
	w.Status("❌", msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Code prints a code block with indentation.
func (w *Writer) Code(content string) {
	_, _ = fmt.Fprintln(w.out)
	// Indent each line
	lines := strings.Split(content, "\n")
	for _, line := range lines {
		_, _ = fmt.Fprintf(w.out, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// Progress prints a progress bar with message.
func (w *Writer) Progress(current, total int, msg string) {
	if total <= 0 {
		return
	}

	pct := float64(current) / float64(total) * 100
	bar := renderProgressBar(current, total, 30)

	// Use carriage return for in-place updates
	_, _ = fmt.Fprintf(w.out, "\r[%s] %.0f%% %s", bar, pct, msg)

	// Add newline when complete
	if current >= total {
		_, _ = fmt.Fprintln(w.out)
	}
}

// ProgressDone completes a progress line with newline.
func (w *Writer) ProgressDone() {
	_, _ = fmt.Fprintln(w.out)
}

// renderProgressBar creates a text progress bar.
func renderProgressBar(current, total, width int) string {
	if total <= 0 {
		return strings.Repeat("░", width)
	}

	pct := float64(current) / float64(total)
	filled := int(pct * float64(width))

	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
