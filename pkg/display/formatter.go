package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"

	// defaultWidth is used when the terminal width is unknown.
	defaultWidth = 80
)

// New creates a new formatter based on configuration.
func New(cfg Config) Formatter {
	if cfg.Format == "" {
		cfg.Format = FormatTable
	}

	switch cfg.Format {
	case FormatJSON:
		return &jsonFormatter{config: cfg}
	case FormatSimple:
		return &simpleFormatter{config: cfg}
	case FormatTable:
		fallthrough
	default:
		return &tableFormatter{config: cfg}
	}
}

// ParseFormat returns the Format named s, or an error.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatSimple:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q: must be table, json, or simple", s)
	}
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or defaultWidth when w is not a
// terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return defaultWidth
	}

	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}

// bold wraps s in ANSI bold when enabled.
func bold(s string, enabled bool) string {
	if !enabled {
		return s
	}
	return ansiBold + s + ansiReset
}

// numbers groups digits the English way.
var numbers = message.NewPrinter(language.English)

// formatNumber formats a number with thousand separators.
func formatNumber(n int) string {
	return numbers.Sprintf("%d", n)
}

// formatEuro formats an amount in euros with two decimals.
func formatEuro(f float64) string {
	return fmt.Sprintf("%.2f€", f)
}

// formatPrice formats an optional price, "-" when unknown.
func formatPrice(p *float64) string {
	if p == nil {
		return "-"
	}
	return formatEuro(*p)
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 3 || len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// writeHeader writes a section header.
func writeHeader(w io.Writer, title string, compact, color bool) error {
	if compact {
		_, err := fmt.Fprintf(w, "%s\n", bold(title, color))
		return err
	}

	_, err := fmt.Fprintf(w, "\n%s\n%s\n\n", bold(title, color), strings.Repeat("=", len([]rune(title))))
	return err
}
