package handlers

import (
	"github.com/recipekit/recipekit/pkg/recipe"
	"github.com/recipekit/recipekit/pkg/run"
)

// databaseSkipDetail is the fixed detail for every database task.
const databaseSkipDetail = "database actions are not applicable to a local filesystem replica"

// DatabaseHandler recognizes connect_database and query_database tasks
// but never executes them: no filesystem, no network.
type DatabaseHandler struct{}

func (h *DatabaseHandler) Execute(task recipe.Task, ctx *run.Context) run.TaskResult {
	return skipped(task, databaseSkipDetail)
}
