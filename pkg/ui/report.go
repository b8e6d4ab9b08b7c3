package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/recipekit/recipekit/pkg/run"
)

// RenderReport renders the run summary: counts, failures with detail,
// and the output directory. Plain text when format is FormatText.
func RenderReport(report *run.Report, format Format) string {
	var b strings.Builder

	title := "Recipe run complete"
	if report.RecipeName != "" {
		title = fmt.Sprintf("Recipe %q complete", report.RecipeName)
	}
	if report.DryRun {
		title += " (dry run)"
	}
	b.WriteString(style(title, titleStyle, format))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("%s  %s  %s\n",
		style(fmt.Sprintf("%d succeeded", report.Stats.Succeeded), successStyle, format),
		style(fmt.Sprintf("%d failed", report.Stats.Failed), errorStyle, format),
		style(fmt.Sprintf("%d skipped", report.Stats.Skipped), warningStyle, format),
	))

	if report.Commented > 0 || report.Disabled > 0 {
		b.WriteString(style(
			fmt.Sprintf("%d commented out (never considered), %d disabled in recipe",
				report.Commented, report.Disabled),
			mutedStyle, format))
		b.WriteString("\n")
	}

	if failures := report.Failures(); len(failures) > 0 {
		b.WriteString("\nFailures:\n")
		for _, f := range failures {
			line := fmt.Sprintf("#%d %s: %s", f.Task.OrderIndex, f.Task.Action, f.Detail)
			b.WriteString(style(line, listItemStyle, format))
			b.WriteString("\n")
		}
	}

	b.WriteString("\nOutput directory: ")
	b.WriteString(style(report.OutputRoot, pathStyle, format))
	b.WriteString("\n")

	return b.String()
}

func style(s string, st lipgloss.Style, format Format) string {
	if format == FormatText {
		return s
	}
	return st.Render(s)
}
