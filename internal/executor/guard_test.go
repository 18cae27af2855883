package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitCancelled(t *testing.T, ctx context.Context) {
	t.Helper()
	select {
	case <-ctx.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("context not cancelled")
	}
}

func TestStopGuard_StopFileCancels(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, err := NewStopGuard(dir, cancel)
	if err != nil {
		t.Fatal(err)
	}
	defer g.Stop()

	if err := os.WriteFile(filepath.Join(dir, StopFileName), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	waitCancelled(t, ctx)
}

func TestStopGuard_PreexistingFileCancelsImmediately(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, StopFileName), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, err := NewStopGuard(dir, cancel)
	if err != nil {
		t.Fatal(err)
	}
	defer g.Stop()

	waitCancelled(t, ctx)
}

func TestStopGuard_IgnoresOtherFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, err := NewStopGuard(dir, cancel)
	if err != nil {
		t.Fatal(err)
	}
	defer g.Stop()

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-ctx.Done():
		t.Fatal("cancelled by an unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}
