// Package testutil provides fixture helpers shared by recipekit tests:
// run contexts on temp directories, file trees, and zip archives.
package testutil

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/recipekit/recipekit/pkg/config"
	"github.com/recipekit/recipekit/pkg/run"
	"github.com/stretchr/testify/require"
)

// NewRunContext builds a run.Context on test temp directories. Cleanup
// is left to t.TempDir; the executor's own finalize tolerates both.
func NewRunContext(t *testing.T, dryRun bool) *run.Context {
	t.Helper()

	cfg := config.Default()
	cfg.Retry.Backoff = 0 // no real sleeping in tests

	ctx, err := run.NewContext(t.TempDir(), cfg, false, dryRun)
	require.NoError(t, err)

	// The executor's finalize normally removes the temp root; cover
	// tests that never reach it.
	t.Cleanup(func() {
		if ctx.TempRoot != "" {
			_ = os.RemoveAll(ctx.TempRoot)
		}
	})
	return ctx
}

// WriteFile creates a file with content, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// WriteTree creates a set of files under root from relative paths.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		WriteFile(t, filepath.Join(root, filepath.FromSlash(rel)), content)
	}
}

// CreateZip writes a zip archive at path containing the given entries.
// Entry names use forward slashes, as zip requires.
func CreateZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

// AssertFileContent fails unless path holds exactly content.
func AssertFileContent(t *testing.T, path, content string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, content, string(data))
}

// AssertExists fails unless path exists.
func AssertExists(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	require.NoError(t, err, "expected %s to exist", path)
}

// AssertNotExists fails if path exists.
func AssertNotExists(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "expected %s to be absent", path)
}
