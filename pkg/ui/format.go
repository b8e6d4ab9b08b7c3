// Package ui renders run progress and the final report. The executor
// stays free of presentation concerns; it talks to a ProgressSink and
// hands the report to a renderer here.
package ui

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Format represents the output format type
type Format int

const (
	// FormatTerminal renders rich terminal output with colors and styling
	FormatTerminal Format = iota
	// FormatText renders plain text output without any styling
	FormatText
)

// DetectFormat determines the appropriate output format based on
// environment and terminal capabilities.
func DetectFormat(output *os.File) Format {
	// Check if NO_COLOR is set
	if os.Getenv("NO_COLOR") != "" {
		return FormatText
	}

	// Check if we're being piped or redirected
	if !isatty.IsTerminal(output.Fd()) && !isatty.IsCygwinTerminal(output.Fd()) {
		return FormatText
	}

	// Check terminal color support
	if termenv.ColorProfile() == termenv.Ascii {
		return FormatText
	}

	return FormatTerminal
}
