// Package ctl implements the client-side commands for vtxctl. It talks to a
// running vtxd over HTTP and WebSocket and renders the results to the
// terminal.
package ctl

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// ANSI escape codes for terminal formatting.
const (
	reset   = "\033[0m"
	bold    = "\033[1m"
	dim     = "\033[2m"
	red     = "\033[31m"
	green   = "\033[32m"
	yellow  = "\033[33m"
	blue    = "\033[34m"
	magenta = "\033[35m"
	cyan    = "\033[36m"
	white   = "\033[37m"
)

// colorEnabled reports whether output goes to a terminal. When output is
// piped, redirected, or captured, ANSI escape codes are suppressed.
func colorEnabled() bool {
	f, ok := stdout.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// stateColor returns the ANSI color code appropriate for a daemon state.
func stateColor(state string) string {
	if !colorEnabled() {
		return ""
	}
	switch state {
	case "READY":
		return green
	case "RELOADING":
		return yellow
	case "STOPPING":
		return red
	case "BOOTING":
		return dim
	default:
		return white
	}
}

// riskColor returns the color for a risk level or simplified level.
func riskColor(level string) string {
	switch level {
	case "none":
		return green
	case "low":
		return cyan
	case "medium":
		return yellow
	case "high":
		return magenta
	case "critical":
		return red
	default:
		return white
	}
}

// overlapColor returns the color for an adjacent-channel category.
func overlapColor(category string) string {
	switch category {
	case "source":
		return blue
	case "full_overlap":
		return red
	case "partial_overlap":
		return yellow
	case "close":
		return cyan
	default:
		return green
	}
}

// colorize wraps text with an ANSI color sequence.
// Returns the text unchanged when color output is disabled.
func colorize(color, text string) string {
	if !colorEnabled() {
		return text
	}
	return color + text + reset
}

// header returns a bold section header, or plain text when color is off.
func header(title string) string {
	if colorEnabled() {
		return bold + title + reset
	}
	return title
}

// rule is the thin separator printed under headers.
func rule(width int) string {
	return colorize(dim, "  "+strings.Repeat("─", width))
}

// padRight pads s with spaces to reach the given width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// formatDuration renders a time.Duration as a compact human string like
// "2h 14m 8s" or "45s".
func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// formatBytes renders a byte count as a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// percentBar builds an ASCII bar of the given width for a 0-100 value,
// colored by risk level when color output is enabled.
func percentBar(pct float64, width int, level string) string {
	filled := int(pct * float64(width) / 100)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := strings.Repeat("=", filled)
	empty := strings.Repeat(" ", width-filled)
	if colorEnabled() {
		return riskColor(level) + bar + reset + empty
	}
	return bar + empty
}

// table renders aligned columns through text/tabwriter.
type table struct {
	w      *tabwriter.Writer
	indent string
}

func newTable(indent string, headers ...string) *table {
	t := &table{
		w:      tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0),
		indent: indent,
	}
	for i, h := range headers {
		headers[i] = strings.ToUpper(h)
	}
	fmt.Fprintln(t.w, indent+strings.Join(headers, "\t"))
	return t
}

func (t *table) row(cells ...string) {
	fmt.Fprintln(t.w, t.indent+strings.Join(cells, "\t"))
}

func (t *table) flush() {
	_ = t.w.Flush()
}
