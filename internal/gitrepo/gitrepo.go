// Package gitrepo wraps the git CLI behind the Backend interface the
// executor consumes. All operations run `git -C dir` via os/exec with the
// caller's context; nothing shells through an intermediate shell.
package gitrepo

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Author identifies the commit author and committer.
type Author struct {
	Name  string
	Email string
}

// Backend exposes the primitive version-control operations the executor
// needs. The CLI type is the production implementation; tests substitute
// mocks.
type Backend interface {
	// Dir returns the working-tree directory.
	Dir() string
	// ControlDir returns the absolute path of the repository's control
	// directory (.git), used for backup and ledger storage.
	ControlDir(ctx context.Context) (string, error)
	// IsClean reports whether the working tree has no pending changes.
	IsClean(ctx context.Context) (bool, error)
	// CurrentBranch returns the checked-out branch name.
	CurrentBranch(ctx context.Context) (string, error)
	// HeadSHA returns the full SHA of HEAD.
	HeadSHA(ctx context.Context) (string, error)
	// TotalCommitCount returns the number of commits reachable from HEAD.
	// A repository with no commits yet returns 0.
	TotalCommitCount(ctx context.Context) (int, error)
	// HasRemote reports whether at least one remote is configured.
	HasRemote(ctx context.Context) (bool, error)
	// AddAll stages all pending changes.
	AddAll(ctx context.Context) error
	// CreateCommit creates a commit with the given message, author/committer
	// identity, and author/committer date. Returns the new commit SHA.
	CreateCommit(ctx context.Context, msg string, at time.Time, author Author) (string, error)
	// ResetHard resets the working tree and HEAD to the given commit.
	ResetHard(ctx context.Context, sha string) error
	// Checkout switches to the given branch.
	Checkout(ctx context.Context, branch string) error
	// Push pushes the given branch to origin.
	Push(ctx context.Context, branch string) error
	// ConfigValue reads a git config value (empty string when unset).
	ConfigValue(ctx context.Context, key string) (string, error)
}

// CLI implements Backend using the git command-line tool.
type CLI struct {
	dir string
}

// New returns a CLI backend for dir. It fails when git is not on PATH or
// dir is not inside a git work tree.
func New(ctx context.Context, dir string) (*CLI, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return nil, ErrGitNotFound
	}
	cmd := exec.CommandContext(ctx, "git", "-C", dir, "rev-parse", "--is-inside-work-tree")
	out, err := cmd.Output()
	if err != nil || strings.TrimSpace(string(out)) != "true" {
		return nil, fmt.Errorf("%w: %s", ErrNotARepository, dir)
	}
	return &CLI{dir: dir}, nil
}

// Dir returns the working-tree directory.
func (g *CLI) Dir() string { return g.dir }

// ControlDir returns the absolute .git directory path.
func (g *CLI) ControlDir(ctx context.Context) (string, error) {
	out, err := g.output(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", fmt.Errorf("git rev-parse --absolute-git-dir: %w", err)
	}
	return out, nil
}

// IsClean reports whether `git status --porcelain` produces no output.
func (g *CLI) IsClean(ctx context.Context) (bool, error) {
	out, err := g.output(ctx, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("git status: %w", err)
	}
	return out == "", nil
}

// CurrentBranch returns the abbreviated ref name of HEAD.
func (g *CLI) CurrentBranch(ctx context.Context) (string, error) {
	out, err := g.output(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse --abbrev-ref HEAD: %w", err)
	}
	return out, nil
}

// HeadSHA returns the full SHA of HEAD.
func (g *CLI) HeadSHA(ctx context.Context) (string, error) {
	out, err := g.output(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse HEAD: %w", err)
	}
	return out, nil
}

// TotalCommitCount counts commits reachable from HEAD. An unborn branch
// (no commits) yields 0, not an error.
func (g *CLI) TotalCommitCount(ctx context.Context) (int, error) {
	out, err := g.output(ctx, "rev-list", "--count", "HEAD")
	if err != nil {
		// rev-list fails before the first commit exists.
		return 0, nil
	}
	n, err := strconv.Atoi(out)
	if err != nil {
		return 0, fmt.Errorf("git rev-list --count: unexpected output %q", out)
	}
	return n, nil
}

// HasRemote reports whether `git remote` lists anything.
func (g *CLI) HasRemote(ctx context.Context) (bool, error) {
	out, err := g.output(ctx, "remote")
	if err != nil {
		return false, fmt.Errorf("git remote: %w", err)
	}
	return out != "", nil
}

// AddAll stages every pending change.
func (g *CLI) AddAll(ctx context.Context) error {
	if _, err := g.output(ctx, "add", "-A"); err != nil {
		return fmt.Errorf("git add: %w", err)
	}
	return nil
}

// CreateCommit creates a commit with both author and committer identity and
// date forced through the environment, so the contribution calendar sees the
// synthesized timestamp rather than wall-clock time.
func (g *CLI) CreateCommit(ctx context.Context, msg string, at time.Time, author Author) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", g.dir, "commit", "-m", msg)
	stamp := at.Format(time.RFC3339)
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME="+author.Name,
		"GIT_AUTHOR_EMAIL="+author.Email,
		"GIT_AUTHOR_DATE="+stamp,
		"GIT_COMMITTER_NAME="+author.Name,
		"GIT_COMMITTER_EMAIL="+author.Email,
		"GIT_COMMITTER_DATE="+stamp,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git commit: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return g.HeadSHA(ctx)
}

// ResetHard moves HEAD and the working tree to sha.
func (g *CLI) ResetHard(ctx context.Context, sha string) error {
	if _, err := g.output(ctx, "reset", "--hard", sha); err != nil {
		return fmt.Errorf("git reset --hard %s: %w", shortSHA(sha), err)
	}
	return nil
}

// Checkout switches branches.
func (g *CLI) Checkout(ctx context.Context, branch string) error {
	if _, err := g.output(ctx, "checkout", branch); err != nil {
		return fmt.Errorf("git checkout %s: %w", branch, err)
	}
	return nil
}

// Push pushes branch to origin with --set-upstream, which also covers
// branches that have never been pushed.
func (g *CLI) Push(ctx context.Context, branch string) error {
	if _, err := g.output(ctx, "push", "--set-upstream", "origin", branch); err != nil {
		return fmt.Errorf("git push origin %s: %w", branch, err)
	}
	return nil
}

// ConfigValue reads a config key. Unset keys return "" without error (git
// exits 1 for those).
func (g *CLI) ConfigValue(ctx context.Context, key string) (string, error) {
	out, err := g.output(ctx, "config", "--get", key)
	if err != nil {
		return "", nil
	}
	return out, nil
}

// output runs a git subcommand and returns trimmed stdout, folding stderr
// into the error.
func (g *CLI) output(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", g.dir}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
