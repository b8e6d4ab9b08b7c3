// Package paths resolves task-relative paths under the output root and
// guards against traversal outside of it.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/recipekit/recipekit/pkg/errors"
)

// Resolver joins raw recipe paths under a fixed root. Comparisons are
// case-sensitive; separators are normalized to the platform's.
type Resolver struct {
	root string
}

// NewResolver returns a resolver rooted at root. Root must be absolute;
// callers establish it once per run.
func NewResolver(root string) (*Resolver, error) {
	if root == "" {
		return nil, errors.New(errors.ErrInvalidInput, "output root cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot resolve output root %s", root)
	}
	return &Resolver{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute output root.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve joins raw under the root, rejecting any resolution that would
// escape it, and creates the missing parent directories of the result.
func (r *Resolver) Resolve(raw string) (string, error) {
	resolved, err := r.ResolveNoMkdir(raw)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create parent directories for %s", resolved)
	}
	return resolved, nil
}

// ResolveNoMkdir is Resolve without the parent-directory side effect.
// Dry runs and pure checks use this form.
func (r *Resolver) ResolveNoMkdir(raw string) (string, error) {
	if err := validate(raw); err != nil {
		return "", err
	}

	cleaned := filepath.FromSlash(strings.TrimSpace(raw))
	cleaned = strings.TrimPrefix(cleaned, "."+string(filepath.Separator))
	resolved := filepath.Clean(filepath.Join(r.root, cleaned))

	if !Contains(r.root, resolved) {
		return "", errors.Newf(errors.ErrPathTraversal, "path %q escapes output root", raw)
	}
	return resolved, nil
}

// Contains checks if child is contained within parent. Both paths are
// normalized before comparison.
func Contains(parent, child string) bool {
	parent = filepath.Clean(parent)
	child = filepath.Clean(child)

	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	// If the relative path starts with .., child is outside parent
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// validate rejects paths no filesystem should see.
func validate(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New(errors.ErrInvalidInput, "path cannot be empty")
	}
	if strings.Contains(path, "\x00") {
		return errors.New(errors.ErrInvalidInput, "path contains null bytes")
	}
	if len(path) > 4096 {
		return errors.New(errors.ErrInvalidInput, "path exceeds maximum length")
	}
	return nil
}
