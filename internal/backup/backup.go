// Package backup persists pre-run repository state so a failed or
// interrupted execution can be rolled back. Each backup is one small JSON
// record under the repository's control directory; the repository objects
// themselves are the real backup, the record just pins branch and HEAD.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verdant-cli/verdant/internal/gitrepo"
)

// Record pins the repository state at backup time.
// Lifecycle: created → discarded on success, or consumed by restore on
// failure/interrupt → removed.
type Record struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Branch      string    `json:"branch"`
	HeadSHA     string    `json:"head_sha"`
	CommitCount int       `json:"commit_count"`

	// Path is where the record is stored on disk. Not serialized; rebuilt
	// on load.
	Path string `json:"-"`
}

// ErrNotFound is returned when a backup ID does not resolve to a record.
var ErrNotFound = errors.New("backup record not found")

// DefaultMaxAge is the age past which backups are pruned as routine
// housekeeping after a successful run.
const DefaultMaxAge = 24 * time.Hour

// Store manages backup records in a directory (normally
// <control-dir>/verdant/backups).
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir. The directory is created lazily
// on first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// StoreDir returns the canonical backup directory beneath a repository
// control directory.
func StoreDir(controlDir string) string {
	return filepath.Join(controlDir, "verdant", "backups")
}

// Create captures the backend's current branch, HEAD, and commit count into
// a new persisted record.
func (s *Store) Create(ctx context.Context, b gitrepo.Backend) (*Record, error) {
	branch, err := b.CurrentBranch(ctx)
	if err != nil {
		return nil, fmt.Errorf("backup: read branch: %w", err)
	}
	sha, err := b.HeadSHA(ctx)
	if err != nil {
		return nil, fmt.Errorf("backup: read HEAD: %w", err)
	}
	count, err := b.TotalCommitCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("backup: count commits: %w", err)
	}

	rec := &Record{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Branch:      branch,
		HeadSHA:     sha,
		CommitCount: count,
	}
	if err := s.write(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Restore brings the repository back to the exact branch and commit pinned
// by rec. The record is removed after a successful restore.
func (s *Store) Restore(ctx context.Context, b gitrepo.Backend, rec *Record) error {
	current, err := b.CurrentBranch(ctx)
	if err != nil {
		return fmt.Errorf("backup: read current branch: %w", err)
	}
	if current != rec.Branch {
		if err := b.Checkout(ctx, rec.Branch); err != nil {
			return fmt.Errorf("backup: checkout %s: %w", rec.Branch, err)
		}
	}
	if err := b.ResetHard(ctx, rec.HeadSHA); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	s.Remove(rec)
	return nil
}

// Remove deletes a record's file. Best-effort: a missing file is fine.
func (s *Store) Remove(rec *Record) {
	if rec == nil {
		return
	}
	path := rec.Path
	if path == "" {
		path = s.recordPath(rec.ID)
	}
	_ = os.Remove(path)
}

// Get loads a single record by ID.
func (s *Store) Get(id string) (*Record, error) {
	return s.load(s.recordPath(id))
}

// List returns all records, newest first. Unreadable files are skipped.
func (s *Store) List() ([]*Record, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("backup: read store: %w", err)
	}

	var recs []*Record
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		rec, err := s.load(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].CreatedAt.After(recs[j].CreatedAt) })
	return recs, nil
}

// PruneOlderThan removes records older than maxAge and returns how many
// were removed.
func (s *Store) PruneOlderThan(maxAge time.Duration) (int, error) {
	recs, err := s.List()
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-maxAge)
	pruned := 0
	for _, rec := range recs {
		if rec.CreatedAt.Before(cutoff) {
			s.Remove(rec)
			pruned++
		}
	}
	return pruned, nil
}

func (s *Store) recordPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *Store) write(rec *Record) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("backup: create store dir: %w", err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("backup: encode record: %w", err)
	}
	rec.Path = s.recordPath(rec.ID)
	if err := os.WriteFile(rec.Path, data, 0o644); err != nil {
		return fmt.Errorf("backup: write record: %w", err)
	}
	return nil
}

func (s *Store) load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(path))
	}
	if err != nil {
		return nil, fmt.Errorf("backup: read record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("backup: decode record %s: %w", filepath.Base(path), err)
	}
	rec.Path = path
	return &rec, nil
}
