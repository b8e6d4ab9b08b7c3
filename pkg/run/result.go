package run

import "github.com/recipekit/recipekit/pkg/recipe"

// Status is the terminal outcome of one task.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// TaskResult is the outcome of executing one task. Immutable once
// produced; appended to the report in execution order.
type TaskResult struct {
	Task   recipe.Task
	Status Status
	Detail string

	// Err carries the underlying error for Failed results so the
	// executor can classify it for the retry policy. Nil otherwise.
	Err error
}

// Report is the ordered list of task results plus load accounting,
// rendered by the CLI layer at the end of a run.
type Report struct {
	RecipeName string
	OutputRoot string
	DryRun     bool
	Results    []TaskResult
	Stats      Stats
	Commented  int
	Disabled   int
}

// Failures returns the results that ended Failed, in execution order.
func (r *Report) Failures() []TaskResult {
	var failures []TaskResult
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			failures = append(failures, res)
		}
	}
	return failures
}

// ExitCode is non-zero when one or more tasks ended Failed.
func (r *Report) ExitCode() int {
	if r.Stats.Failed > 0 {
		return 1
	}
	return 0
}
