package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/recipekit/recipekit/pkg/config"
	"github.com/recipekit/recipekit/pkg/logging"
)

// GitCloner clones a repository at a ref into a directory. The core
// treats the transfer itself as opaque; only the outcome matters.
type GitCloner interface {
	Clone(ctx context.Context, src, ref, dir string) error
}

// Fetcher downloads the content at a URL to a local file.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) error
}

// ExecGitCloner shells out to git.
type ExecGitCloner struct {
	Depth int
}

// NewExecGitCloner returns a cloner using the configured clone depth.
func NewExecGitCloner(cfg *config.Config) *ExecGitCloner {
	return &ExecGitCloner{Depth: cfg.Git.Depth}
}

var commitHashRe = regexp.MustCompile(`^[a-f0-9]{7,40}$`)

// isCommitHash reports whether ref looks like a commit SHA rather than a
// branch or tag name.
func isCommitHash(ref string) bool {
	return commitHashRe.MatchString(strings.ToLower(ref))
}

// Clone fetches src at ref into dir. Branch and tag refs use a shallow
// branch clone with a plain-clone fallback; commit SHAs need the full
// history, so they clone first and check out after.
func (g *ExecGitCloner) Clone(ctx context.Context, src, ref, dir string) error {
	logger := logging.GetLogger("handlers.git")

	switch {
	case ref == "":
		return g.run(ctx, g.cloneArgs(src, dir, "")...)
	case isCommitHash(ref):
		if err := g.run(ctx, "clone", src, dir); err != nil {
			return err
		}
		return g.runIn(ctx, dir, "checkout", ref)
	default:
		if err := g.run(ctx, g.cloneArgs(src, dir, ref)...); err == nil {
			return nil
		}
		// The ref may not be a branch; retry with a plain clone and an
		// explicit checkout, matching git's own error on unknown refs.
		logger.Debug().Str("ref", ref).Msg("Branch clone failed, falling back to plain clone")
		if err := g.run(ctx, "clone", src, dir); err != nil {
			return err
		}
		return g.runIn(ctx, dir, "checkout", ref)
	}
}

func (g *ExecGitCloner) cloneArgs(src, dir, branch string) []string {
	args := []string{"clone"}
	if g.Depth > 0 {
		args = append(args, "--depth", strconv.Itoa(g.Depth))
	}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	return append(args, src, dir)
}

func (g *ExecGitCloner) run(ctx context.Context, args ...string) error {
	return g.runIn(ctx, "", args...)
}

func (g *ExecGitCloner) runIn(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

// HTTPFetcher downloads over HTTP with a bounded timeout.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher returns a fetcher using the configured timeout.
func NewHTTPFetcher(cfg *config.Config) *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: cfg.HTTPTimeout()}}
}

// Fetch writes the body at url to dest. Non-2xx responses are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("bad download URL %s: %w", url, err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}
