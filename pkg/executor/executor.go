// Package executor iterates a recipe's tasks in document order,
// dispatches each to its handler, applies the retry and
// continue-on-failure policy, and aggregates per-task outcomes into a
// run report.
package executor

import (
	"time"

	"github.com/recipekit/recipekit/pkg/errors"
	"github.com/recipekit/recipekit/pkg/handlers"
	"github.com/recipekit/recipekit/pkg/logging"
	"github.com/recipekit/recipekit/pkg/recipe"
	"github.com/recipekit/recipekit/pkg/run"
)

// ProgressSink receives per-task progress. Implementations must not
// mutate the result; the executor owns it.
type ProgressSink interface {
	TaskStarted(index, total int, task recipe.Task)
	TaskFinished(index, total int, result run.TaskResult)
}

// NoopSink discards progress. Used by tests and library callers.
type NoopSink struct{}

func (NoopSink) TaskStarted(int, int, recipe.Task)     {}
func (NoopSink) TaskFinished(int, int, run.TaskResult) {}

// sleeper lets tests stub out the retry backoff.
type sleeper func(time.Duration)

// Executor runs recipes. One task at a time, in document order: later
// tasks may depend on filesystem state left by earlier ones.
type Executor struct {
	set   *handlers.Set
	sink  ProgressSink
	sleep sleeper
	state RunState
}

// New builds an executor over the given handler set. A nil sink is
// replaced with NoopSink.
func New(set *handlers.Set, sink ProgressSink) *Executor {
	if sink == nil {
		sink = NoopSink{}
	}
	return &Executor{
		set:   set,
		sink:  sink,
		sleep: time.Sleep,
		state: RunInitializing,
	}
}

// State returns the current run state.
func (e *Executor) State() RunState {
	return e.state
}

// Run executes every task of r against ctx and returns the report. One
// task's failure never halts the run; the temp root is removed on every
// exit path, including a panic escaping a handler.
func (e *Executor) Run(r *recipe.Recipe, ctx *run.Context) *run.Report {
	logger := logging.GetLogger("executor")

	report := &run.Report{
		RecipeName: r.Name,
		OutputRoot: ctx.OutputRoot(),
		DryRun:     ctx.DryRun,
		Commented:  r.Commented,
		Disabled:   r.Disabled,
	}

	defer func() {
		e.state = RunFinalizing
		Finalize(ctx)
		report.Stats = ctx.Stats
		e.state = RunDone
	}()

	e.state = RunExecuting
	total := len(r.Tasks)

	for i, task := range r.Tasks {
		e.sink.TaskStarted(i+1, total, task)

		result := e.executeOne(task, ctx)

		switch result.Status {
		case run.StatusSuccess:
			ctx.Stats.Succeeded++
		case run.StatusFailed:
			ctx.Stats.Failed++
			logger.Warn().
				Str("action", task.Action).
				Int("index", task.OrderIndex).
				Str("detail", result.Detail).
				Msg("Task failed, continuing")
		case run.StatusSkipped:
			ctx.Stats.Skipped++
		}

		report.Results = append(report.Results, result)
		e.sink.TaskFinished(i+1, total, result)
	}

	return report
}

// executeOne drives the per-task state machine and the retry policy:
// transient errors get a bounded number of retries with a short backoff,
// structural errors fail immediately.
func (e *Executor) executeOne(task recipe.Task, ctx *run.Context) run.TaskResult {
	logger := logging.GetLogger("executor")
	track := newTracker(task)

	if !task.Enabled {
		track.to(TaskSkipped)
		return run.TaskResult{Task: task, Status: run.StatusSkipped, Detail: "task disabled in recipe"}
	}

	handler, ok := e.set.For(task.Kind)
	if !ok {
		track.to(TaskRunning)
		track.to(TaskFailed)
		return run.TaskResult{
			Task:   task,
			Status: run.StatusFailed,
			Detail: "unrecognized action " + task.Action,
			Err:    errors.Newf(errors.ErrInvalidInput, "unrecognized action %q", task.Action),
		}
	}

	track.to(TaskRunning)

	attempts := 1 + ctx.Config.Retry.Attempts
	var result run.TaskResult
	for attempt := 1; attempt <= attempts; attempt++ {
		result = handler.Execute(task, ctx)

		if result.Status != run.StatusFailed || !errors.IsTransient(result.Err) {
			break
		}
		if attempt == attempts {
			break
		}

		logger.Info().
			Str("action", task.Action).
			Int("attempt", attempt).
			Err(result.Err).
			Msg("Transient failure, retrying")
		e.sleep(ctx.Config.BackoffDuration())
	}

	switch result.Status {
	case run.StatusSuccess:
		track.to(TaskSuccess)
	case run.StatusFailed:
		track.to(TaskFailed)
	case run.StatusSkipped:
		track.to(TaskSkipped)
	}

	return result
}
