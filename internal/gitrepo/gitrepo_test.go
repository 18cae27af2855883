package gitrepo

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// initTestRepo creates a temporary git repo with an initial commit.
func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		out, err := cmd.CombinedOutput()
		if err != nil {
			t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
		}
	}
	run("init", "-b", "main")
	run("config", "user.name", "test")
	run("config", "user.email", "test@test.com")
	run("commit", "--allow-empty", "-m", "initial")
	return dir
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("accepts a git work tree", func(t *testing.T) {
		t.Parallel()
		dir := initTestRepo(t)
		g, err := New(context.Background(), dir)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if g.Dir() != dir {
			t.Errorf("Dir() = %q, want %q", g.Dir(), dir)
		}
	})

	t.Run("rejects a plain directory", func(t *testing.T) {
		t.Parallel()
		_, err := New(context.Background(), t.TempDir())
		if !errors.Is(err, ErrNotARepository) {
			t.Errorf("err = %v, want ErrNotARepository", err)
		}
	})
}

func TestIsClean(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := initTestRepo(t)
	g, err := New(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}

	clean, err := g.IsClean(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !clean {
		t.Error("fresh repo reported dirty")
	}

	if err := os.WriteFile(filepath.Join(dir, "x.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	clean, err = g.IsClean(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if clean {
		t.Error("repo with untracked file reported clean")
	}
}

func TestCreateCommit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := initTestRepo(t)
	g, err := New(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := g.AddAll(ctx); err != nil {
		t.Fatalf("AddAll: %v", err)
	}

	at := time.Date(2024, time.March, 14, 9, 26, 0, 0, time.UTC)
	author := Author{Name: "Synth", Email: "synth@example.com"}
	sha, err := g.CreateCommit(ctx, "backdated commit", at, author)
	if err != nil {
		t.Fatalf("CreateCommit: %v", err)
	}
	if len(sha) != 40 {
		t.Errorf("sha = %q, want full 40-char SHA", sha)
	}

	// Both author and committer date must carry the synthesized timestamp.
	out, err := exec.Command("git", "-C", dir, "log", "-1", "--format=%aI %cI %an %s").Output()
	if err != nil {
		t.Fatal(err)
	}
	line := strings.TrimSpace(string(out))
	if !strings.Contains(line, "2024-03-14T09:26:00") {
		t.Errorf("log line %q missing backdated timestamp", line)
	}
	if !strings.Contains(line, "Synth") || !strings.Contains(line, "backdated commit") {
		t.Errorf("log line %q missing author or message", line)
	}

	n, err := g.TotalCommitCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("TotalCommitCount = %d, want 2", n)
	}
}

func TestResetHard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := initTestRepo(t)
	g, err := New(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}

	base, err := g.HeadSHA(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := g.AddAll(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := g.CreateCommit(ctx, "extra", time.Now(), Author{Name: "t", Email: "t@t"}); err != nil {
		t.Fatal(err)
	}

	if err := g.ResetHard(ctx, base); err != nil {
		t.Fatalf("ResetHard: %v", err)
	}
	head, err := g.HeadSHA(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if head != base {
		t.Errorf("HEAD = %s, want %s after reset", head, base)
	}
	if _, err := os.Stat(filepath.Join(dir, "b.txt")); !os.IsNotExist(err) {
		t.Error("b.txt still present after hard reset")
	}
}

func TestBranchAndRemote(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := initTestRepo(t)
	g, err := New(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}

	branch, err := g.CurrentBranch(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if branch != "main" {
		t.Errorf("CurrentBranch = %q, want main", branch)
	}

	hasRemote, err := g.HasRemote(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if hasRemote {
		t.Error("fresh repo reported a remote")
	}
}

func TestControlDir(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := initTestRepo(t)
	g, err := New(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}

	ctl, err := g.ControlDir(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(ctl) || filepath.Base(ctl) != ".git" {
		t.Errorf("ControlDir = %q, want absolute path ending in .git", ctl)
	}
}

func TestConfigValue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := initTestRepo(t)
	g, err := New(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}

	name, err := g.ConfigValue(ctx, "user.name")
	if err != nil {
		t.Fatal(err)
	}
	if name != "test" {
		t.Errorf("user.name = %q, want test", name)
	}

	unset, err := g.ConfigValue(ctx, "verdant.nonexistent")
	if err != nil {
		t.Fatal(err)
	}
	if unset != "" {
		t.Errorf("unset key = %q, want empty", unset)
	}
}
