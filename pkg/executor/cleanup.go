package executor

import (
	"os"

	"github.com/recipekit/recipekit/pkg/logging"
	"github.com/recipekit/recipekit/pkg/run"
)

// Finalize removes the run's temp root. Invoked on every exit path;
// best-effort, since the process is already winding down when it runs.
func Finalize(ctx *run.Context) {
	logger := logging.GetLogger("executor.cleanup")

	if ctx.TempRoot == "" {
		logger.Debug().Msg("No temp root to clean up")
		return
	}

	if err := os.RemoveAll(ctx.TempRoot); err != nil {
		logger.Warn().Err(err).Str("tempRoot", ctx.TempRoot).Msg("Failed to clean up temp directory")
		return
	}

	logger.Debug().Str("tempRoot", ctx.TempRoot).Msg("Cleaned up temp directory")
	ctx.TempRoot = ""
}
