package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/recipekit/recipekit/pkg/errors"
	"github.com/recipekit/recipekit/pkg/logging"
	"github.com/recipekit/recipekit/pkg/recipe"
	"github.com/recipekit/recipekit/pkg/run"
)

// CloneHandler clones a repository into the temp root, strips the .git
// control directory, and relocates either the whole tree or the task's
// subpath into the resolved destination.
type CloneHandler struct {
	Git GitCloner
}

func (h *CloneHandler) Execute(task recipe.Task, ctx *run.Context) run.TaskResult {
	logger := logging.GetLogger("handlers.clone")

	if ctx.DryRun {
		dest, err := ctx.Resolver.ResolveNoMkdir(task.Destination)
		if err != nil {
			return failed(task, err)
		}
		detail := fmt.Sprintf("Would clone %s", task.Source)
		if task.Ref != "" {
			detail += fmt.Sprintf(" (ref: %s)", task.Ref)
		}
		if task.Subpath != "" {
			detail += fmt.Sprintf(" (subpath: %s)", task.Subpath)
		}
		return success(task, "%s → %s", detail, dest)
	}

	dest, err := ctx.Resolver.Resolve(task.Destination)
	if err != nil {
		return failed(task, err)
	}

	cloneDir := filepath.Join(ctx.TempRoot, fmt.Sprintf("clone-%d", task.OrderIndex))

	cloneCtx, cancel := context.WithTimeout(context.Background(), ctx.Config.GitTimeout())
	defer cancel()

	logger.Info().Str("src", task.Source).Str("ref", task.Ref).Str("dest", dest).Msg("Cloning repository")

	if err := h.Git.Clone(cloneCtx, task.Source, task.Ref, cloneDir); err != nil {
		return failed(task, errors.Wrapf(err, errors.ErrClone, "cannot clone %s", task.Source))
	}

	// The control directory never reaches the final placement.
	if err := os.RemoveAll(filepath.Join(cloneDir, ".git")); err != nil {
		return failed(task, errors.Wrap(err, errors.ErrClone, "cannot strip .git directory"))
	}

	source := cloneDir
	if task.Subpath != "" {
		source = filepath.Join(cloneDir, filepath.FromSlash(task.Subpath))
		if _, err := os.Stat(source); err != nil {
			return failed(task, errors.Newf(errors.ErrInvalidInput,
				"subpath %s not found in repository %s", task.Subpath, task.Source))
		}
	}

	// Re-runs converge: an existing destination is replaced outright.
	if err := os.RemoveAll(dest); err != nil {
		return failed(task, errors.Wrapf(err, errors.ErrClone, "cannot replace existing destination %s", dest))
	}
	if err := movePath(source, dest); err != nil {
		return failed(task, errors.Wrapf(err, errors.ErrClone, "cannot place clone at %s", dest))
	}
	// The rest of a subpath clone is discarded with the temp root.

	return success(task, "Cloned %s → %s", task.Source, dest)
}
