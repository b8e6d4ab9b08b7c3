// Package handlers implements one strategy per recipe action kind.
// Handlers confine their side effects to the output root and the run's
// temp root; clone and download go through injected collaborators so the
// executor can be tested without git or a network.
package handlers

import (
	"fmt"

	"github.com/recipekit/recipekit/pkg/recipe"
	"github.com/recipekit/recipekit/pkg/run"
)

// Handler executes a single task kind.
type Handler interface {
	Execute(task recipe.Task, ctx *run.Context) run.TaskResult
}

// Set maps every recognized task kind to its handler.
type Set struct {
	handlers map[recipe.Kind]Handler
}

// NewSet builds the full handler set around the given collaborators.
func NewSet(git GitCloner, fetcher Fetcher) *Set {
	return &Set{
		handlers: map[recipe.Kind]Handler{
			recipe.KindCloneRepo:    &CloneHandler{Git: git},
			recipe.KindDownloadFile: &DownloadHandler{Fetcher: fetcher},
			recipe.KindUnzip:        &UnzipHandler{},
			recipe.KindMovePath:     &MoveHandler{},
			recipe.KindRemovePath:   &RemoveHandler{},
			recipe.KindDelay:        &DelayHandler{},
			recipe.KindDatabaseOp:   &DatabaseHandler{},
		},
	}
}

// For returns the handler for kind, or false when the kind has none
// (unrecognized tasks are reported by the executor, not dispatched).
func (s *Set) For(kind recipe.Kind) (Handler, bool) {
	h, ok := s.handlers[kind]
	return h, ok
}

func success(task recipe.Task, format string, args ...interface{}) run.TaskResult {
	return run.TaskResult{Task: task, Status: run.StatusSuccess, Detail: fmt.Sprintf(format, args...)}
}

func skipped(task recipe.Task, format string, args ...interface{}) run.TaskResult {
	return run.TaskResult{Task: task, Status: run.StatusSkipped, Detail: fmt.Sprintf(format, args...)}
}

func failed(task recipe.Task, err error) run.TaskResult {
	return run.TaskResult{Task: task, Status: run.StatusFailed, Detail: err.Error(), Err: err}
}
