package handlers

import (
	"archive/zip"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"

	"github.com/recipekit/recipekit/pkg/errors"
	"github.com/recipekit/recipekit/pkg/logging"
	"github.com/recipekit/recipekit/pkg/paths"
	"github.com/recipekit/recipekit/pkg/recipe"
	"github.com/recipekit/recipekit/pkg/run"
)

// UnzipHandler extracts an archive at a resolved source path into the
// resolved destination directory. Entries resolving outside the
// destination are rejected (zip-slip).
type UnzipHandler struct{}

func (h *UnzipHandler) Execute(task recipe.Task, ctx *run.Context) run.TaskResult {
	logger := logging.GetLogger("handlers.unzip")

	if ctx.DryRun {
		src, err := ctx.Resolver.ResolveNoMkdir(task.Source)
		if err != nil {
			return failed(task, err)
		}
		dest, err := ctx.Resolver.ResolveNoMkdir(task.Destination)
		if err != nil {
			return failed(task, err)
		}
		return success(task, "Would extract %s → %s", src, dest)
	}

	// The archive is only read; resolving it must not create directories.
	src, err := ctx.Resolver.ResolveNoMkdir(task.Source)
	if err != nil {
		return failed(task, err)
	}
	dest, err := ctx.Resolver.Resolve(task.Destination)
	if err != nil {
		return failed(task, err)
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return failed(task, errors.Wrapf(err, errors.ErrDirCreate, "cannot create destination %s", dest))
	}

	logger.Info().Str("src", src).Str("dest", dest).Msg("Extracting archive")

	count, err := extractZip(src, dest)
	if err != nil {
		return failed(task, err)
	}

	return success(task, "Extracted %d entries → %s", count, dest)
}

// extractZip expands the archive at src into dest and returns the number
// of entries written.
func extractZip(src, dest string) (int, error) {
	reader, err := zip.OpenReader(src)
	if err != nil {
		if reader != nil {
			_ = reader.Close()
		}
		// The stdlib flags absolute and dot-dot entry names itself; keep
		// that in the traversal error class, not the extract one.
		if stderrors.Is(err, zip.ErrInsecurePath) {
			return 0, errors.Wrapf(err, errors.ErrPathTraversal, "archive %s contains escaping entry names", src)
		}
		return 0, errors.Wrapf(err, errors.ErrExtract, "cannot open archive %s", src)
	}
	defer func() { _ = reader.Close() }()

	count := 0
	for _, entry := range reader.File {
		target := filepath.Join(dest, filepath.FromSlash(entry.Name))
		if !paths.Contains(dest, target) {
			return count, errors.Newf(errors.ErrPathTraversal,
				"archive entry %q escapes destination directory", entry.Name)
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return count, errors.Wrapf(err, errors.ErrExtract, "cannot create directory %s", target)
			}
			continue
		}

		if err := extractEntry(entry, target); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func extractEntry(entry *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrExtract, "cannot create parent of %s", target)
	}

	in, err := entry.Open()
	if err != nil {
		return errors.Wrapf(err, errors.ErrExtract, "cannot read archive entry %s", entry.Name)
	}
	defer func() { _ = in.Close() }()

	mode := entry.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return errors.Wrapf(err, errors.ErrExtract, "cannot create %s", target)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return errors.Wrapf(err, errors.ErrExtract, "cannot write %s", target)
	}
	return nil
}
