// Package run holds the per-invocation state shared by the executor and
// the action handlers: the output and temp roots, run statistics, and
// per-task results.
package run

import (
	"os"

	"github.com/recipekit/recipekit/pkg/config"
	"github.com/recipekit/recipekit/pkg/errors"
	"github.com/recipekit/recipekit/pkg/paths"
)

// Stats counts task outcomes. The executor is the only writer.
type Stats struct {
	Succeeded int
	Failed    int
	Skipped   int
}

// Context is the process-wide state for a single invocation. It is
// created once, passed to every handler, and torn down at the end of the
// run on all exit paths.
type Context struct {
	Resolver *paths.Resolver
	TempRoot string
	Config   *config.Config
	Verbose  bool
	DryRun   bool
	Stats    Stats
}

// NewContext creates the output root if absent and, unless dryRun is
// set, a scoped temp directory for in-flight downloads and clones.
func NewContext(outputRoot string, cfg *config.Config, verbose, dryRun bool) (*Context, error) {
	if err := os.MkdirAll(outputRoot, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "cannot create output root %s", outputRoot)
	}

	resolver, err := paths.NewResolver(outputRoot)
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		Resolver: resolver,
		Config:   cfg,
		Verbose:  verbose,
		DryRun:   dryRun,
	}

	if !dryRun {
		tempRoot, err := os.MkdirTemp("", cfg.Temp.Prefix)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrDirCreate, "cannot create temp directory")
		}
		ctx.TempRoot = tempRoot
	}

	return ctx, nil
}

// OutputRoot returns the absolute output root.
func (c *Context) OutputRoot() string {
	return c.Resolver.Root()
}
