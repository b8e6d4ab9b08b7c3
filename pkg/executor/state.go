package executor

import (
	"github.com/recipekit/recipekit/pkg/errors"
	"github.com/recipekit/recipekit/pkg/logging"
	"github.com/recipekit/recipekit/pkg/recipe"
)

// RunState is the coarse lifecycle of a whole run.
type RunState string

const (
	RunInitializing RunState = "initializing"
	RunExecuting    RunState = "executing"
	RunFinalizing   RunState = "finalizing"
	RunDone         RunState = "done"
)

// TaskState is the per-task lifecycle. Success, Failed and Skipped are
// terminal; no task transitions out of a terminal state.
type TaskState string

const (
	TaskPending TaskState = "pending"
	TaskRunning TaskState = "running"
	TaskSuccess TaskState = "success"
	TaskFailed  TaskState = "failed"
	TaskSkipped TaskState = "skipped"
)

// Terminal reports whether the state admits no further transitions.
func (s TaskState) Terminal() bool {
	switch s {
	case TaskSuccess, TaskFailed, TaskSkipped:
		return true
	}
	return false
}

// validTransitions lists the allowed task state edges.
var validTransitions = map[TaskState][]TaskState{
	TaskPending: {TaskRunning, TaskSkipped},
	TaskRunning: {TaskSuccess, TaskFailed, TaskSkipped},
}

// Transition validates the edge from one task state to another.
func Transition(from, to TaskState) (TaskState, error) {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return to, nil
		}
	}
	return from, errors.Newf(errors.ErrInternal, "invalid task state transition %s to %s", from, to)
}

// tracker walks one task through its state machine, logging each edge.
// An invalid edge is a programming error and is logged loudly rather
// than failing the task.
type tracker struct {
	task  recipe.Task
	state TaskState
}

func newTracker(task recipe.Task) *tracker {
	return &tracker{task: task, state: TaskPending}
}

func (t *tracker) to(next TaskState) {
	state, err := Transition(t.state, next)
	logger := logging.GetLogger("executor.state")
	if err != nil {
		logger.Error().Err(err).Int("index", t.task.OrderIndex).Msg("Invalid task state transition")
		return
	}
	logger.Trace().
		Int("index", t.task.OrderIndex).
		Str("from", string(t.state)).
		Str("to", string(next)).
		Msg("Task state transition")
	t.state = state
}
