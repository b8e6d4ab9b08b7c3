package handlers

import (
	"os"

	"github.com/recipekit/recipekit/pkg/errors"
	"github.com/recipekit/recipekit/pkg/logging"
	"github.com/recipekit/recipekit/pkg/recipe"
	"github.com/recipekit/recipekit/pkg/run"
)

// MoveHandler moves or renames an entry inside the output root. A
// missing source is a Skipped outcome, not a failure: on re-runs the
// source has usually already been moved or removed.
type MoveHandler struct{}

func (h *MoveHandler) Execute(task recipe.Task, ctx *run.Context) run.TaskResult {
	logger := logging.GetLogger("handlers.move")

	if ctx.DryRun {
		src, err := ctx.Resolver.ResolveNoMkdir(task.Source)
		if err != nil {
			return failed(task, err)
		}
		dest, err := ctx.Resolver.ResolveNoMkdir(task.Destination)
		if err != nil {
			return failed(task, err)
		}
		return success(task, "Would move %s → %s", src, dest)
	}

	// The source is only read; resolving it must not create directories.
	src, err := ctx.Resolver.ResolveNoMkdir(task.Source)
	if err != nil {
		return failed(task, err)
	}

	if _, err := os.Stat(src); os.IsNotExist(err) {
		return skipped(task, "source %s does not exist (already moved or removed)", src)
	}

	dest, err := ctx.Resolver.Resolve(task.Destination)
	if err != nil {
		return failed(task, err)
	}

	// Recipes are idempotent: an existing destination is overwritten.
	if err := os.RemoveAll(dest); err != nil {
		return failed(task, errors.Wrapf(err, errors.ErrMove, "cannot replace existing destination %s", dest))
	}
	if err := movePath(src, dest); err != nil {
		return failed(task, errors.Wrapf(err, errors.ErrMove, "cannot move %s to %s", src, dest))
	}

	logger.Debug().Str("src", src).Str("dest", dest).Msg("Moved path")
	return success(task, "Moved %s → %s", src, dest)
}
