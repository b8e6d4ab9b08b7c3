package handlers

import (
	"time"

	"github.com/recipekit/recipekit/pkg/logging"
	"github.com/recipekit/recipekit/pkg/recipe"
	"github.com/recipekit/recipekit/pkg/run"
)

// DelayHandler blocks the pipeline for the task's duration. Recipes use
// waste_time to respect upstream rate limits; execution is strictly
// sequential, so the whole run pauses. The duration is capped by
// configuration so a recipe typo cannot stall a run indefinitely.
type DelayHandler struct{}

func (h *DelayHandler) Execute(task recipe.Task, ctx *run.Context) run.TaskResult {
	logger := logging.GetLogger("handlers.delay")

	if task.Seconds <= 0 {
		return success(task, "No wait requested")
	}

	wait := time.Duration(task.Seconds * float64(time.Second))
	if max := ctx.Config.MaxDelay(); wait > max {
		logger.Warn().
			Dur("requested", wait).
			Dur("cap", max).
			Msg("Delay capped by configuration")
		wait = max
	}

	if ctx.DryRun {
		return success(task, "Would wait %s", wait)
	}

	time.Sleep(wait)
	return success(task, "Waited %s", wait)
}
