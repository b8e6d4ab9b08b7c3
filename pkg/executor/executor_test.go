package executor_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/recipekit/recipekit/pkg/executor"
	"github.com/recipekit/recipekit/pkg/handlers"
	"github.com/recipekit/recipekit/pkg/recipe"
	"github.com/recipekit/recipekit/pkg/run"
	"github.com/recipekit/recipekit/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockGitCloner implements handlers.GitCloner. On success it writes Tree
// plus a fake .git directory into the clone dir.
type MockGitCloner struct {
	mock.Mock
	Tree map[string]string
	t    *testing.T
}

func (m *MockGitCloner) Clone(ctx context.Context, src, ref, dir string) error {
	args := m.Called(ctx, src, ref, dir)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	testutil.WriteTree(m.t, dir, m.Tree)
	testutil.WriteFile(m.t, filepath.Join(dir, ".git", "config"), "[core]")
	return nil
}

// MockFetcher implements handlers.Fetcher, writing Content on success.
type MockFetcher struct {
	mock.Mock
	Content []byte
}

func (m *MockFetcher) Fetch(ctx context.Context, url, dest string) error {
	args := m.Called(ctx, url, dest)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return os.WriteFile(dest, m.Content, 0644)
}

func newExecutor(t *testing.T, git handlers.GitCloner, fetcher handlers.Fetcher) *executor.Executor {
	t.Helper()
	if git == nil {
		git = &MockGitCloner{t: t}
	}
	if fetcher == nil {
		fetcher = &MockFetcher{}
	}
	return executor.New(handlers.NewSet(git, fetcher), nil)
}

func mustParse(t *testing.T, doc string) *recipe.Recipe {
	t.Helper()
	r, err := recipe.Parse([]byte(doc))
	require.NoError(t, err)
	return r
}

func TestRun_ResultsFollowDocumentOrder(t *testing.T) {
	ctx := testutil.NewRunContext(t, false)
	testutil.WriteFile(t, filepath.Join(ctx.OutputRoot(), "a.txt"), "a")

	r := mustParse(t, `
tasks:
  - action: remove_path
    path: ./a.txt
  - action: waste_time
    seconds: 0
  - action: connect_database
`)

	report := newExecutor(t, nil, nil).Run(r, ctx)

	require.Len(t, report.Results, 3)
	for i, res := range report.Results {
		assert.Equal(t, i, res.Task.OrderIndex)
	}
	assert.Equal(t, run.Stats{Succeeded: 2, Skipped: 1}, report.Stats)
	assert.Equal(t, 0, report.ExitCode())
}

func TestRun_ContinuesAfterFailure(t *testing.T) {
	ctx := testutil.NewRunContext(t, false)
	git := &MockGitCloner{t: t}
	git.On("Clone", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(fmt.Errorf("could not resolve host"))

	r := mustParse(t, `
tasks:
  - action: download_github
    src: https://github.com/example/x
    dest: ./resources/x
  - action: remove_path
    path: ./nothing
`)

	report := newExecutor(t, git, nil).Run(r, ctx)

	require.Len(t, report.Results, 2)
	assert.Equal(t, run.StatusFailed, report.Results[0].Status)
	assert.Contains(t, report.Results[0].Detail, "could not resolve host")
	assert.Equal(t, run.StatusSuccess, report.Results[1].Status)
	assert.Equal(t, 1, report.ExitCode())
}

func TestRun_TransientFailureRetriedOnce(t *testing.T) {
	ctx := testutil.NewRunContext(t, false)
	git := &MockGitCloner{t: t}
	git.On("Clone", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(fmt.Errorf("connection reset"))

	r := mustParse(t, `
tasks:
  - action: download_github
    src: https://github.com/example/x
    dest: ./x
`)

	report := newExecutor(t, git, nil).Run(r, ctx)

	// Initial attempt plus exactly one retry
	git.AssertNumberOfCalls(t, "Clone", 2)
	assert.Equal(t, run.StatusFailed, report.Results[0].Status)
	assert.Contains(t, report.Results[0].Detail, "connection reset")
}

func TestRun_RetrySucceedsOnSecondAttempt(t *testing.T) {
	ctx := testutil.NewRunContext(t, false)
	git := &MockGitCloner{t: t, Tree: map[string]string{"f.lua": "f"}}
	git.On("Clone", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(fmt.Errorf("connection reset")).Once()
	git.On("Clone", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil)

	r := mustParse(t, `
tasks:
  - action: download_github
    src: https://github.com/example/x
    dest: ./x
`)

	report := newExecutor(t, git, nil).Run(r, ctx)

	git.AssertNumberOfCalls(t, "Clone", 2)
	assert.Equal(t, run.StatusSuccess, report.Results[0].Status)
	testutil.AssertFileContent(t, filepath.Join(ctx.OutputRoot(), "x", "f.lua"), "f")
}

func TestRun_StructuralFailureNotRetried(t *testing.T) {
	ctx := testutil.NewRunContext(t, false)
	git := &MockGitCloner{t: t}

	r := mustParse(t, `
tasks:
  - action: download_github
    src: https://github.com/example/x
    dest: ../escape
`)

	report := newExecutor(t, git, nil).Run(r, ctx)

	assert.Equal(t, run.StatusFailed, report.Results[0].Status)
	// The traversal is caught before the collaborator is ever invoked
	git.AssertNotCalled(t, "Clone", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_DisabledTaskIsSkippedWithDetail(t *testing.T) {
	ctx := testutil.NewRunContext(t, false)
	testutil.WriteFile(t, filepath.Join(ctx.OutputRoot(), "a.txt"), "a")

	r := mustParse(t, `
tasks:
  - action: remove_path
    path: ./a.txt
    enabled: false
`)

	report := newExecutor(t, nil, nil).Run(r, ctx)

	require.Len(t, report.Results, 1)
	assert.Equal(t, run.StatusSkipped, report.Results[0].Status)
	assert.Equal(t, "task disabled in recipe", report.Results[0].Detail)
	testutil.AssertExists(t, filepath.Join(ctx.OutputRoot(), "a.txt"))
	assert.Equal(t, 1, report.Disabled)
}

func TestRun_CommentedEntryNeverProducesResult(t *testing.T) {
	ctx := testutil.NewRunContext(t, false)

	r := mustParse(t, `
tasks:
  - action: waste_time
    seconds: 0
  - # action: remove_path
    # path: ./a
`)

	report := newExecutor(t, nil, nil).Run(r, ctx)

	assert.Len(t, report.Results, 1)
	assert.Equal(t, 1, report.Commented)
}

func TestRun_UnrecognizedTaskIsReportedFailed(t *testing.T) {
	ctx := testutil.NewRunContext(t, false)

	r := mustParse(t, `
tasks:
  - action: summon_dragon
`)

	report := newExecutor(t, nil, nil).Run(r, ctx)

	require.Len(t, report.Results, 1)
	assert.Equal(t, run.StatusFailed, report.Results[0].Status)
	assert.Contains(t, report.Results[0].Detail, "summon_dragon")
}

func TestRun_TempRootRemovedOnAllOutcomes(t *testing.T) {
	ctx := testutil.NewRunContext(t, false)
	tempRoot := ctx.TempRoot
	git := &MockGitCloner{t: t}
	git.On("Clone", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(fmt.Errorf("network down"))

	r := mustParse(t, `
tasks:
  - action: download_github
    src: https://github.com/example/x
    dest: ./x
`)

	e := newExecutor(t, git, nil)
	e.Run(r, ctx)

	testutil.AssertNotExists(t, tempRoot)
	assert.Equal(t, executor.RunDone, e.State())
}

func TestRun_DryRunMutatesNothing(t *testing.T) {
	ctx := testutil.NewRunContext(t, true)
	git := &MockGitCloner{t: t}
	fetcher := &MockFetcher{}

	r := mustParse(t, `
tasks:
  - action: download_github
    src: https://github.com/example/x
    dest: ./resources/x
  - action: download_file
    src: https://example.com/a.zip
    dest: ./tmp/a.zip
  - action: remove_path
    path: ./resources/x
`)

	report := executor.New(handlers.NewSet(git, fetcher), nil).Run(r, ctx)

	assert.Equal(t, run.Stats{Succeeded: 3}, report.Stats)
	assert.True(t, report.DryRun)
	git.AssertNotCalled(t, "Clone", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)

	entries, err := os.ReadDir(ctx.OutputRoot())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
