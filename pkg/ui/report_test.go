package ui_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/recipekit/recipekit/pkg/recipe"
	"github.com/recipekit/recipekit/pkg/run"
	"github.com/recipekit/recipekit/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderReport_Summary(t *testing.T) {
	report := &run.Report{
		RecipeName: "my-server",
		OutputRoot: "/srv/out",
		Stats:      run.Stats{Succeeded: 4, Failed: 1, Skipped: 2},
		Results: []run.TaskResult{
			{Task: recipe.Task{OrderIndex: 3, Action: "download_github"}, Status: run.StatusFailed, Detail: "clone failed: timeout"},
		},
	}

	out := ui.RenderReport(report, ui.FormatText)

	assert.Contains(t, out, `Recipe "my-server" complete`)
	assert.Contains(t, out, "4 succeeded")
	assert.Contains(t, out, "1 failed")
	assert.Contains(t, out, "2 skipped")
	assert.Contains(t, out, "#3 download_github: clone failed: timeout")
	assert.Contains(t, out, "Output directory: /srv/out")
}

func TestRenderReport_NoFailuresSection(t *testing.T) {
	report := &run.Report{
		OutputRoot: "/srv/out",
		Stats:      run.Stats{Succeeded: 2},
	}

	out := ui.RenderReport(report, ui.FormatText)

	assert.NotContains(t, out, "Failures:")
	assert.Contains(t, out, "Recipe run complete")
}

func TestRenderReport_LoadAccounting(t *testing.T) {
	report := &run.Report{
		OutputRoot: "/srv/out",
		Commented:  2,
		Disabled:   1,
	}

	out := ui.RenderReport(report, ui.FormatText)

	assert.Contains(t, out, "2 commented out (never considered), 1 disabled in recipe")
}

func TestRenderReport_DryRunMarker(t *testing.T) {
	report := &run.Report{OutputRoot: "/srv/out", DryRun: true}

	out := ui.RenderReport(report, ui.FormatText)

	assert.Contains(t, out, "(dry run)")
}

func TestDetectFormat_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, ui.FormatText, ui.DetectFormat(os.Stdout))
}

func TestDetectFormat_NonTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, ui.FormatText, ui.DetectFormat(f))
}
