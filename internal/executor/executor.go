// Package executor turns a validated plan into real repository mutations.
// Execution is strictly sequential: commits are created one at a time in
// chronological order, because each commit's timestamp and parent depend on
// that order. The only shared mutable state — the in-progress flag and the
// active backup record — lives on the Context object, never in globals.
package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/verdant-cli/verdant/internal/backup"
	"github.com/verdant-cli/verdant/internal/gitrepo"
	"github.com/verdant-cli/verdant/internal/plan"
	"github.com/verdant-cli/verdant/internal/rng"
	"github.com/verdant-cli/verdant/internal/telemetry"
)

// DefaultFailureThreshold is the cumulative per-commit failure count past
// which execution aborts. It doubles as an implicit timeout against runaway
// failure loops.
const DefaultFailureThreshold = 10

// DefaultYieldEvery is the number of successful commits between cooperative
// yields on very large plans.
const DefaultYieldEvery = 25

// DefaultActivityFile is the file appended to before every commit so each
// synthesized commit carries real content.
const DefaultActivityFile = ".verdant"

// Observer receives progress callbacks during execution. All methods are
// called from the executing goroutine; implementations must not block for
// long.
type Observer interface {
	RunStarted(totalCommits int)
	DayStarted(date time.Time, commits int)
	CommitCreated(date time.Time, sha string, done, total int)
	CommitFailed(date time.Time, slot int, err error)
	Warn(msg string)
}

// NopObserver ignores all callbacks.
type NopObserver struct{}

func (NopObserver) RunStarted(int)                            {}
func (NopObserver) DayStarted(time.Time, int)                 {}
func (NopObserver) CommitCreated(time.Time, string, int, int) {}
func (NopObserver) CommitFailed(time.Time, int, error)        {}
func (NopObserver) Warn(string)                               {}

// Options tunes a single execution.
type Options struct {
	// Author is the identity stamped on every created commit.
	Author gitrepo.Author

	// ActivityFile is the repo-relative file appended before each commit.
	// Empty means DefaultActivityFile.
	ActivityFile string

	// Push pushes the current branch to origin after a successful run.
	Push bool

	// RNG supplies the per-commit minute jitter. Pass the generator used
	// for distribution to keep timestamps reproducible under a seed; nil
	// falls back to wall-clock seeding.
	RNG *rng.Source

	// FailureThreshold overrides DefaultFailureThreshold when positive.
	FailureThreshold int

	// YieldEvery overrides DefaultYieldEvery when positive.
	YieldEvery int

	// Observer receives progress callbacks. Nil means NopObserver.
	Observer Observer

	// RunID identifies the run in telemetry and the history ledger.
	// Empty generates a fresh UUID.
	RunID string
}

// Result describes everything an execution did. It is always returned
// complete, even when the overall run failed.
type Result struct {
	RunID        string
	Phase        Phase
	StartedAt    time.Time
	TotalPlanned int
	Successful   int
	Failed       int
	Errors       []string
	CommitSHAs   []string
	Duration     time.Duration
	Success      bool
	Aborted      bool
	Restored     bool
	PushErr      string
}

// Context owns one execution at a time: the backend handle, the active
// backup record, and the in-progress flag. It is not safe for concurrent
// Run calls; there is no real concurrency here, only sequential async work
// and signal interruption.
type Context struct {
	backend    gitrepo.Backend
	backups    *backup.Store
	tel        *telemetry.Emitter
	inProgress bool
	active     *backup.Record
}

// New builds an execution context. backups may be nil to disable backup
// handling entirely (tests); tel may be nil for no telemetry.
func New(backend gitrepo.Backend, backups *backup.Store, tel *telemetry.Emitter) *Context {
	return &Context{backend: backend, backups: backups, tel: tel}
}

// InProgress reports whether a Run is currently mutating the repository.
func (e *Context) InProgress() bool { return e.inProgress }

// Run walks the plan in chronological order, creating one commit per slot.
// It never panics past its boundary: every outcome, including precondition
// failures, is reported through the returned Result.
func (e *Context) Run(ctx context.Context, p *plan.Plan, opts Options) *Result {
	start := time.Now()
	res := &Result{RunID: opts.RunID, Phase: PhaseIdle, StartedAt: start}
	if res.RunID == "" {
		res.RunID = uuid.NewString()
	}

	obs := opts.Observer
	if obs == nil {
		obs = NopObserver{}
	}
	threshold := opts.FailureThreshold
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	yieldEvery := opts.YieldEvery
	if yieldEvery <= 0 {
		yieldEvery = DefaultYieldEvery
	}
	activity := opts.ActivityFile
	if activity == "" {
		activity = DefaultActivityFile
	}
	jitter := opts.RNG
	if jitter == nil {
		jitter = rng.New("")
	}

	finish := func() *Result {
		res.Duration = time.Since(start)
		e.emit(telemetry.Event{Kind: telemetry.KindRunDone, RunID: res.RunID, Data: map[string]any{
			"phase": res.Phase.String(), "successful": res.Successful, "failed": res.Failed, "success": res.Success,
		}})
		return res
	}

	if p == nil || len(p.Days) == 0 {
		res.Errors = append(res.Errors, ErrEmptyPlan.Error())
		res.Phase = PhaseAborted
		return finish()
	}
	res.TotalPlanned = p.TotalCommits()

	e.emit(telemetry.Event{Kind: telemetry.KindRunStart, RunID: res.RunID, Data: map[string]any{
		"days": len(p.Days), "commits": res.TotalPlanned,
	}})

	// Precondition: a dirty tree is fatal before anything is touched.
	res.Phase = PhasePrecondition
	clean, err := e.backend.IsClean(ctx)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("checking working tree: %v", err))
		res.Phase = PhaseAborted
		return finish()
	}
	if !clean {
		res.Errors = append(res.Errors, ErrDirtyWorkTree.Error())
		res.Phase = PhaseAborted
		return finish()
	}

	// Backup is best-effort: recovery quality, not correctness, depends on it.
	if e.backups != nil {
		rec, err := e.backups.Create(ctx, e.backend)
		if err != nil {
			obs.Warn(fmt.Sprintf("backup failed, continuing without one: %v", err))
			e.emit(telemetry.Event{Kind: telemetry.KindBackupFailed, RunID: res.RunID, Data: err.Error()})
		} else {
			e.active = rec
			e.emit(telemetry.Event{Kind: telemetry.KindBackupCreated, RunID: res.RunID, Data: map[string]string{
				"id": rec.ID, "branch": rec.Branch, "head": rec.HeadSHA,
			}})
		}
	}
	res.Phase = PhaseBackedUp

	e.inProgress = true
	defer func() { e.inProgress = false }()

	res.Phase = PhaseCommitting
	obs.RunStarted(res.TotalPlanned)

	sinceYield := 0
	for _, day := range p.Days {
		if day.Count == 0 {
			continue
		}
		obs.DayStarted(day.Date, day.Count)

		for slot := 0; slot < day.Count; slot++ {
			if ctx.Err() != nil {
				return e.interrupted(res, finish)
			}

			at := slotTimestamp(day.Date, slot, day.Count, jitter)
			msg := slotMessage(day, slot)

			sha, err := e.createOne(ctx, activity, msg, at, opts.Author)
			if err != nil {
				res.Failed++
				res.Errors = append(res.Errors, fmt.Sprintf("%s slot %d: %v", day.Date.Format("2006-01-02"), slot, err))
				obs.CommitFailed(day.Date, slot, err)
				e.emit(telemetry.Event{Kind: telemetry.KindCommitFailed, RunID: res.RunID, Date: day.Date.Format("2006-01-02"), Data: err.Error()})

				if res.Failed > threshold {
					e.emit(telemetry.Event{Kind: telemetry.KindThresholdAbort, RunID: res.RunID, Data: res.Failed})
					return e.abort(res, finish)
				}
				continue
			}

			res.Successful++
			res.CommitSHAs = append(res.CommitSHAs, sha)
			obs.CommitCreated(day.Date, sha, res.Successful, res.TotalPlanned)
			e.emit(telemetry.Event{Kind: telemetry.KindCommitCreated, RunID: res.RunID, Date: day.Date.Format("2006-01-02"), Data: map[string]string{"sha": sha}})

			// Cooperative yield so very large plans don't starve the host.
			sinceYield++
			if sinceYield >= yieldEvery {
				sinceYield = 0
				select {
				case <-ctx.Done():
					return e.interrupted(res, finish)
				case <-time.After(5 * time.Millisecond):
				}
			}
		}
	}

	res.Phase = PhaseCompleted
	res.Success = res.Failed == 0 || res.Successful > 0
	e.housekeeping(res, obs)

	if res.Success && opts.Push {
		e.push(ctx, res, obs)
	}
	return finish()
}

// Recover restores the repository from the active backup, if any. It is the
// dedicated recovery routine for both threshold aborts and interrupts.
func (e *Context) Recover(ctx context.Context) error {
	if e.active == nil || e.backups == nil {
		return nil
	}
	e.emit(telemetry.Event{Kind: telemetry.KindRestoreStart, Data: e.active.ID})
	err := e.backups.Restore(ctx, e.backend, e.active)
	if err != nil {
		e.emit(telemetry.Event{Kind: telemetry.KindRestoreFailed, Data: err.Error()})
		return err
	}
	e.emit(telemetry.Event{Kind: telemetry.KindRestoreDone})
	e.active = nil
	return nil
}

// createOne appends an activity line, stages everything, and creates the
// commit.
func (e *Context) createOne(ctx context.Context, activityFile, msg string, at time.Time, author gitrepo.Author) (string, error) {
	if err := e.appendActivity(activityFile, at, msg); err != nil {
		return "", err
	}
	if err := e.backend.AddAll(ctx); err != nil {
		return "", err
	}
	return e.backend.CreateCommit(ctx, msg, at, author)
}

// appendActivity gives every commit real content: one line in the activity
// file per slot.
func (e *Context) appendActivity(name string, at time.Time, msg string) error {
	path := filepath.Join(e.backend.Dir(), name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("activity file: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "%s %s\n", at.Format(time.RFC3339), msg); err != nil {
		return fmt.Errorf("activity file: %w", err)
	}
	return nil
}

// interrupted handles external cancellation mid-plan: best-effort restore,
// then report. The restore runs on a fresh context because the caller's is
// already canceled.
func (e *Context) interrupted(res *Result, finish func() *Result) *Result {
	e.emit(telemetry.Event{Kind: telemetry.KindInterrupted, RunID: res.RunID})
	res.Errors = append(res.Errors, "interrupted before the plan finished")
	return e.rollback(res, finish)
}

// abort handles a threshold exceedance: the remaining plan is not attempted.
func (e *Context) abort(res *Result, finish func() *Result) *Result {
	res.Errors = append(res.Errors, fmt.Sprintf("aborted: failure threshold exceeded (%d failures)", res.Failed))
	return e.rollback(res, finish)
}

// rollback attempts a restore and finalizes an aborted result. Restore
// failure is reported once; there is no retry loop.
func (e *Context) rollback(res *Result, finish func() *Result) *Result {
	res.Phase = PhaseRestoring
	restoreCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	hadBackup := e.active != nil
	if err := e.Recover(restoreCtx); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("restore failed: %v", err))
	} else if hadBackup {
		res.Restored = true
	}
	res.Phase = PhaseAborted
	res.Aborted = true
	res.Success = false
	return finish()
}

// housekeeping discards the now-unneeded backup and prunes stale ones.
// Failures here are warnings only.
func (e *Context) housekeeping(res *Result, obs Observer) {
	if e.backups == nil {
		return
	}
	e.backups.Remove(e.active)
	e.active = nil
	if _, err := e.backups.PruneOlderThan(backup.DefaultMaxAge); err != nil {
		obs.Warn(fmt.Sprintf("pruning old backups: %v", err))
	}
}

// push sends the current branch to origin. A push failure does not demote
// an otherwise successful run; the commits exist locally either way.
func (e *Context) push(ctx context.Context, res *Result, obs Observer) {
	hasRemote, err := e.backend.HasRemote(ctx)
	if err != nil || !hasRemote {
		obs.Warn("no remote configured, skipping push")
		return
	}
	branch, err := e.backend.CurrentBranch(ctx)
	if err != nil {
		res.PushErr = err.Error()
		obs.Warn(fmt.Sprintf("push skipped: %v", err))
		return
	}
	if err := e.backend.Push(ctx, branch); err != nil {
		res.PushErr = err.Error()
		obs.Warn(fmt.Sprintf("push failed: %v", err))
		return
	}
	e.emit(telemetry.Event{Kind: telemetry.KindPushed, RunID: res.RunID, Data: branch})
}

func (e *Context) emit(evt telemetry.Event) {
	_ = e.tel.Emit(evt)
}

// slotTimestamp spreads a day's commits evenly across 24 hours and adds a
// randomized minute offset so no two commits share an identical timestamp.
func slotTimestamp(date time.Time, slot, count int, jitter *rng.Source) time.Time {
	hours := slot * 24 / count
	minutes := jitter.IntN(0, 60)
	return date.Add(time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute)
}

// slotMessage returns the populated message for a slot, falling back to a
// deterministic placeholder when the populator left a gap.
func slotMessage(day plan.DayPlan, slot int) string {
	if slot < len(day.Messages) && day.Messages[slot] != "" {
		return day.Messages[slot]
	}
	return fmt.Sprintf("Update %d", slot+1)
}
