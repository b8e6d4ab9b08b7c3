package handlers_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/recipekit/recipekit/pkg/errors"
	"github.com/recipekit/recipekit/pkg/handlers"
	"github.com/recipekit/recipekit/pkg/recipe"
	"github.com/recipekit/recipekit/pkg/run"
	"github.com/recipekit/recipekit/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockGitCloner implements handlers.GitCloner for testing. On success it
// materializes Tree (plus a fake .git directory) at the clone dir.
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
	testutil.WriteFile(m.t, filepath.Join(dir, ".git", "HEAD"), "ref: refs/heads/main")
	return nil
}

func cloneTask(src, ref, subpath, dest string) recipe.Task {
	return recipe.Task{
		Kind: recipe.KindCloneRepo, Action: "download_github",
		Source: src, Ref: ref, Subpath: subpath, Destination: dest,
		Enabled: true,
	}
}

func TestCloneHandler_PlacesWholeRepoWithoutGitDir(t *testing.T) {
	ctx := testutil.NewRunContext(t, false)
	git := &MockGitCloner{t: t, Tree: map[string]string{
		"fxmanifest.lua":    "fx",
		"client/client.lua": "c",
	}}
	git.On("Clone", mock.Anything, "https://github.com/example/ox", "v1.0", mock.Anything).Return(nil)

	h := &handlers.CloneHandler{Git: git}
	result := h.Execute(cloneTask("https://github.com/example/ox", "v1.0", "", "resources/[core]/ox"), ctx)

	assert.Equal(t, run.StatusSuccess, result.Status)
	dest := filepath.Join(ctx.OutputRoot(), "resources", "[core]", "ox")
	testutil.AssertFileContent(t, filepath.Join(dest, "fxmanifest.lua"), "fx")
	testutil.AssertFileContent(t, filepath.Join(dest, "client", "client.lua"), "c")
	testutil.AssertNotExists(t, filepath.Join(dest, ".git"))
	git.AssertExpectations(t)
}

func TestCloneHandler_SubpathRelocatesOnlyThatSubtree(t *testing.T) {
	ctx := testutil.NewRunContext(t, false)
	git := &MockGitCloner{t: t, Tree: map[string]string{
		"README.md":             "readme",
		"resources/ox/init.lua": "init",
		"resources/ox/cfg.lua":  "cfg",
	}}
	git.On("Clone", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	h := &handlers.CloneHandler{Git: git}
	result := h.Execute(cloneTask("https://github.com/example/ox", "", "resources/ox", "resources/ox"), ctx)

	assert.Equal(t, run.StatusSuccess, result.Status)
	dest := filepath.Join(ctx.OutputRoot(), "resources", "ox")
	testutil.AssertFileContent(t, filepath.Join(dest, "init.lua"), "init")
	testutil.AssertFileContent(t, filepath.Join(dest, "cfg.lua"), "cfg")
	// The rest of the clone never reaches the output root
	testutil.AssertNotExists(t, filepath.Join(dest, "README.md"))
	testutil.AssertNotExists(t, filepath.Join(ctx.OutputRoot(), "README.md"))
}

func TestCloneHandler_MissingSubpathFailsWithoutRetryClass(t *testing.T) {
	ctx := testutil.NewRunContext(t, false)
	git := &MockGitCloner{t: t, Tree: map[string]string{"README.md": "r"}}
	git.On("Clone", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	h := &handlers.CloneHandler{Git: git}
	result := h.Execute(cloneTask("https://github.com/example/ox", "", "no/such/dir", "dest"), ctx)

	assert.Equal(t, run.StatusFailed, result.Status)
	// A missing subpath is structural, not a flaky network condition
	assert.False(t, errors.IsTransient(result.Err))
	assert.Contains(t, result.Detail, "no/such/dir")
}

func TestCloneHandler_OverwritesExistingDestination(t *testing.T) {
	ctx := testutil.NewRunContext(t, false)
	testutil.WriteFile(t, filepath.Join(ctx.OutputRoot(), "dest", "stale.lua"), "stale")
	git := &MockGitCloner{t: t, Tree: map[string]string{"fresh.lua": "fresh"}}
	git.On("Clone", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	h := &handlers.CloneHandler{Git: git}
	result := h.Execute(cloneTask("https://github.com/example/x", "", "", "dest"), ctx)

	assert.Equal(t, run.StatusSuccess, result.Status)
	testutil.AssertFileContent(t, filepath.Join(ctx.OutputRoot(), "dest", "fresh.lua"), "fresh")
	testutil.AssertNotExists(t, filepath.Join(ctx.OutputRoot(), "dest", "stale.lua"))
}

func TestCloneHandler_CloneFailureIsTransient(t *testing.T) {
	ctx := testutil.NewRunContext(t, false)
	git := &MockGitCloner{t: t}
	git.On("Clone", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(fmt.Errorf("fatal: could not read from remote repository"))

	h := &handlers.CloneHandler{Git: git}
	result := h.Execute(cloneTask("https://github.com/example/x", "", "", "dest"), ctx)

	assert.Equal(t, run.StatusFailed, result.Status)
	assert.Equal(t, errors.ErrClone, errors.Code(result.Err))
	assert.True(t, errors.IsTransient(result.Err))
	assert.Contains(t, result.Detail, "remote repository")
}

func TestCloneHandler_RejectsTraversal(t *testing.T) {
	ctx := testutil.NewRunContext(t, false)
	git := &MockGitCloner{t: t}

	h := &handlers.CloneHandler{Git: git}
	result := h.Execute(cloneTask("https://github.com/example/x", "", "", "../escape"), ctx)

	assert.Equal(t, run.StatusFailed, result.Status)
	assert.Equal(t, errors.ErrPathTraversal, errors.Code(result.Err))
	git.AssertNotCalled(t, "Clone", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCloneHandler_DryRunDoesNotClone(t *testing.T) {
	ctx := testutil.NewRunContext(t, true)
	git := &MockGitCloner{t: t}

	h := &handlers.CloneHandler{Git: git}
	result := h.Execute(cloneTask("https://github.com/example/x", "main", "sub", "dest"), ctx)

	assert.Equal(t, run.StatusSuccess, result.Status)
	assert.Contains(t, result.Detail, "Would clone")
	assert.Contains(t, result.Detail, "ref: main")
	assert.Contains(t, result.Detail, "subpath: sub")
	git.AssertNotCalled(t, "Clone", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
