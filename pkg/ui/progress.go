package ui

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/recipekit/recipekit/pkg/recipe"
	"github.com/recipekit/recipekit/pkg/run"
)

// ConsoleProgress prints one line per task as the run advances. It
// implements the executor's ProgressSink.
type ConsoleProgress struct {
	DryRun bool
}

// NewConsoleProgress returns a sink writing to stdout via pterm.
func NewConsoleProgress(dryRun bool) *ConsoleProgress {
	return &ConsoleProgress{DryRun: dryRun}
}

func (p *ConsoleProgress) TaskStarted(index, total int, task recipe.Task) {
	label := task.Action
	if p.DryRun {
		label = "[dry-run] " + label
	}
	pterm.Info.Printfln("[%d/%d] %s%s", index, total, label, taskTarget(task))
}

func (p *ConsoleProgress) TaskFinished(index, total int, result run.TaskResult) {
	switch result.Status {
	case run.StatusSuccess:
		pterm.Success.Println(result.Detail)
	case run.StatusFailed:
		pterm.Error.Println(result.Detail)
	case run.StatusSkipped:
		pterm.Warning.Printfln("skipped: %s", result.Detail)
	}
}

func taskTarget(task recipe.Task) string {
	if task.Destination == "" {
		return ""
	}
	return fmt.Sprintf(" → %s", task.Destination)
}
