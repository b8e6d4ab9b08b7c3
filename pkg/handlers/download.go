package handlers

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/recipekit/recipekit/pkg/errors"
	"github.com/recipekit/recipekit/pkg/logging"
	"github.com/recipekit/recipekit/pkg/recipe"
	"github.com/recipekit/recipekit/pkg/run"
)

// DownloadHandler fetches a URL into the temp root and moves the file to
// its resolved destination. Extraction, when the recipe wants it, is a
// separate unzip task rather than part of the download.
type DownloadHandler struct {
	Fetcher Fetcher
}

func (h *DownloadHandler) Execute(task recipe.Task, ctx *run.Context) run.TaskResult {
	logger := logging.GetLogger("handlers.download")

	dest, err := h.resolveDest(task, ctx)
	if err != nil {
		return failed(task, err)
	}

	if ctx.DryRun {
		return success(task, "Would download %s → %s", task.Source, dest)
	}

	tempFile := filepath.Join(ctx.TempRoot, fmt.Sprintf("download-%d", task.OrderIndex))

	fetchCtx, cancel := context.WithTimeout(context.Background(), ctx.Config.HTTPTimeout())
	defer cancel()

	logger.Info().Str("url", task.Source).Str("dest", dest).Msg("Downloading file")

	if err := h.Fetcher.Fetch(fetchCtx, task.Source, tempFile); err != nil {
		return failed(task, errors.Wrapf(err, errors.ErrDownload, "cannot download %s", task.Source))
	}

	if err := os.RemoveAll(dest); err != nil {
		return failed(task, errors.Wrapf(err, errors.ErrDownload, "cannot replace existing destination %s", dest))
	}
	if err := movePath(tempFile, dest); err != nil {
		return failed(task, errors.Wrapf(err, errors.ErrDownload, "cannot place download at %s", dest))
	}

	return success(task, "Downloaded %s → %s", task.Source, dest)
}

// resolveDest resolves the destination, appending the URL's basename
// when the task names a directory rather than a file.
func (h *DownloadHandler) resolveDest(task recipe.Task, ctx *run.Context) (string, error) {
	raw := task.Destination
	if strings.HasSuffix(raw, "/") {
		name, err := urlBasename(task.Source)
		if err != nil {
			return "", err
		}
		raw = raw + name
	}
	if ctx.DryRun {
		return ctx.Resolver.ResolveNoMkdir(raw)
	}
	return ctx.Resolver.Resolve(raw)
}

func urlBasename(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || path.Base(u.Path) == "/" || path.Base(u.Path) == "." {
		return "", errors.Newf(errors.ErrInvalidInput, "cannot derive a filename from %s", rawURL)
	}
	return path.Base(u.Path), nil
}
