package handlers

import (
	"os"

	"github.com/recipekit/recipekit/pkg/errors"
	"github.com/recipekit/recipekit/pkg/logging"
	"github.com/recipekit/recipekit/pkg/recipe"
	"github.com/recipekit/recipekit/pkg/run"
)

// RemoveHandler deletes a file or directory tree. Absence of the target
// is a no-op success, which keeps re-runs convergent.
type RemoveHandler struct{}

func (h *RemoveHandler) Execute(task recipe.Task, ctx *run.Context) run.TaskResult {
	logger := logging.GetLogger("handlers.remove")

	if ctx.DryRun {
		target, err := ctx.Resolver.ResolveNoMkdir(task.Destination)
		if err != nil {
			return failed(task, err)
		}
		return success(task, "Would remove %s", target)
	}

	target, err := ctx.Resolver.ResolveNoMkdir(task.Destination)
	if err != nil {
		return failed(task, err)
	}

	if _, err := os.Stat(target); os.IsNotExist(err) {
		return success(task, "%s already absent", target)
	}

	if err := os.RemoveAll(target); err != nil {
		return failed(task, errors.Wrapf(err, errors.ErrRemove, "cannot remove %s", target))
	}

	logger.Debug().Str("target", target).Msg("Removed path")
	return success(task, "Removed %s", target)
}
