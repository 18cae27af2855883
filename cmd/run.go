package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/verdant-cli/verdant/internal/backup"
	"github.com/verdant-cli/verdant/internal/config"
	"github.com/verdant-cli/verdant/internal/executor"
	"github.com/verdant-cli/verdant/internal/gitrepo"
	"github.com/verdant-cli/verdant/internal/history"
	"github.com/verdant-cli/verdant/internal/plan"
	"github.com/verdant-cli/verdant/internal/telemetry"
	"github.com/verdant-cli/verdant/internal/tui"
	"github.com/verdant-cli/verdant/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate a commit plan and execute it against the repository",
	RunE:  runRun,
}

func init() {
	addGenerationFlags(runCmd)
	runCmd.Flags().Bool("dry-run", false, "show the plan without touching the repository")
	runCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	runCmd.Flags().Bool("push", false, "push to origin after a successful run")
	runCmd.Flags().Bool("no-tui", false, "plain-text progress instead of the TUI")
	runCmd.Flags().String("author-name", "", "commit author name (default: git config user.name)")
	runCmd.Flags().String("author-email", "", "commit author email (default: git config user.email)")
	runCmd.Flags().String("activity-file", "", "file appended before each commit (default .verdant)")
	runCmd.Flags().Int("failure-threshold", 0, "abort once this many commits have failed")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	params, err := loadGenParams(cmd)
	if err != nil {
		return err
	}
	applyRunFlags(cmd, &params.cfg)
	cfg := params.cfg
	printer := ui.New()

	p, r, err := buildPlan(params)
	if err != nil {
		return err
	}

	check := plan.Validate(p, cfg.MaxPerDay)
	if !check.Valid {
		printer.ValidationResult(check)
		return errors.New("generated plan failed validation")
	}
	for _, w := range check.Warnings {
		printer.Warn(w)
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if dryRun {
		printer.PlanSummary(p, cfg.Seed, cfg.Strategy)
		fmt.Fprintln(os.Stderr)
		fmt.Fprint(os.Stderr, ui.Calendar(p))
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := gitrepo.New(ctx, cfg.RepoDir)
	if err != nil {
		return err
	}

	printer.PlanSummary(p, cfg.Seed, cfg.Strategy)
	fmt.Fprintln(os.Stderr)
	fmt.Fprint(os.Stderr, ui.Calendar(p))
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		if !confirm(fmt.Sprintf("create %d commit(s) in %s?", p.TotalCommits(), backend.Dir())) {
			printer.Info("aborted")
			return nil
		}
	}

	controlDir, err := backend.ControlDir(ctx)
	if err != nil {
		return err
	}

	author, err := resolveAuthor(ctx, backend, cfg)
	if err != nil {
		return err
	}
	branch, _ := backend.CurrentBranch(ctx)

	runID := uuid.NewString()
	tel := openTelemetry(cfg, controlDir, runID, printer)
	if tel != nil {
		defer tel.Close()
	}
	_ = tel.Emit(telemetry.Event{Kind: telemetry.KindPlanGenerated, RunID: runID, Data: map[string]any{
		"days": len(p.Days), "commits": p.TotalCommits(), "seed": cfg.Seed, "strategy": cfg.Strategy,
	}})

	// A stop file in the repository root cancels the run like a signal would.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	guard, err := executor.NewStopGuard(backend.Dir(), cancel)
	if err != nil {
		printer.Warn(fmt.Sprintf("stop-file watch unavailable: %v", err))
	} else {
		defer guard.Stop()
	}

	exec := executor.New(backend, backup.NewStore(backup.StoreDir(controlDir)), tel)
	opts := executor.Options{
		Author:           author,
		ActivityFile:     cfg.ActivityFile,
		Push:             cfg.Push,
		RNG:              r,
		FailureThreshold: cfg.FailureThreshold,
		RunID:            runID,
	}

	var res *executor.Result
	if noTUI, _ := cmd.Flags().GetBool("no-tui"); noTUI || cfg.NoTUI {
		opts.Observer = printer
		res = exec.Run(runCtx, p, opts)
		printer.RunSummary(summarize(res))
	} else {
		res, err = runWithTUI(runCtx, cancel, exec, p, opts)
		if err != nil {
			return err
		}
	}

	recordRun(cfg, controlDir, branch, res, p, printer)

	if !res.Success {
		return fmt.Errorf("run %s: %s with %d failure(s)", res.RunID, res.Phase, res.Failed)
	}
	return nil
}

// runWithTUI drives the executor on a goroutine while the progress program
// owns the terminal. Quitting the TUI cancels the run.
func runWithTUI(ctx context.Context, cancel context.CancelFunc, exec *executor.Context, p *plan.Plan, opts executor.Options) (*executor.Result, error) {
	prog := tui.NewProgram()
	bridge := tui.NewBridge(prog)
	opts.Observer = bridge

	done := make(chan *executor.Result, 1)
	go func() {
		res := exec.Run(ctx, p, opts)
		bridge.Done(summarize(res))
		done <- res
	}()

	if _, err := prog.Run(); err != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("progress display: %w", err)
	}
	cancel()
	return <-done, nil
}

// applyRunFlags overlays run-only flags onto the loaded config.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetBool("push"); v {
		cfg.Push = true
	}
	if v, _ := cmd.Flags().GetString("author-name"); v != "" {
		cfg.AuthorName = v
	}
	if v, _ := cmd.Flags().GetString("author-email"); v != "" {
		cfg.AuthorEmail = v
	}
	if v, _ := cmd.Flags().GetString("activity-file"); v != "" {
		cfg.ActivityFile = v
	}
	if v, _ := cmd.Flags().GetInt("failure-threshold"); v > 0 {
		cfg.FailureThreshold = v
	}
}

// resolveAuthor takes identity from flags/config, falling back to the
// repository's git config. Commits force identity through the environment,
// so it must be complete before the run starts.
func resolveAuthor(ctx context.Context, backend gitrepo.Backend, cfg config.Config) (gitrepo.Author, error) {
	a := gitrepo.Author{Name: cfg.AuthorName, Email: cfg.AuthorEmail}
	if a.Name == "" {
		a.Name, _ = backend.ConfigValue(ctx, "user.name")
	}
	if a.Email == "" {
		a.Email, _ = backend.ConfigValue(ctx, "user.email")
	}
	if a.Name == "" || a.Email == "" {
		return a, errors.New("author identity incomplete: set --author-name/--author-email or git config user.name/user.email")
	}
	return a, nil
}

// openTelemetry opens the JSONL event file for this run. Telemetry is
// best-effort: failure to open it never blocks the run.
func openTelemetry(cfg config.Config, controlDir, runID string, printer *ui.Printer) *telemetry.Emitter {
	path := cfg.TelemetryPath
	if path == "" {
		path = filepath.Join(telemetryDir(controlDir), runID+".jsonl")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		printer.Warn(fmt.Sprintf("telemetry disabled: %v", err))
		return nil
	}
	tel, err := telemetry.NewEmitter(path)
	if err != nil {
		printer.Warn(fmt.Sprintf("telemetry disabled: %v", err))
		return nil
	}
	return tel
}

func telemetryDir(controlDir string) string {
	return filepath.Join(controlDir, "verdant", "telemetry")
}

// recordRun writes the outcome to the local history ledger. Best-effort.
func recordRun(cfg config.Config, controlDir, branch string, res *executor.Result, p *plan.Plan, printer *ui.Printer) {
	path := cfg.HistoryDB
	if path == "" {
		path = filepath.Join(controlDir, "verdant", "history.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		printer.Warn(fmt.Sprintf("history not recorded: %v", err))
		return
	}

	ctx := context.Background()
	ledger, err := history.Open(ctx, path)
	if err != nil {
		printer.Warn(fmt.Sprintf("history not recorded: %v", err))
		return
	}
	defer ledger.Close()

	days := make(map[string]int, len(p.Days))
	for _, d := range p.Days {
		if d.Count > 0 {
			days[d.Date.Format("2006-01-02")] = d.Count
		}
	}

	repoDir, err := filepath.Abs(cfg.RepoDir)
	if err != nil {
		repoDir = cfg.RepoDir
	}
	rec := history.Run{
		ID:         res.RunID,
		StartedAt:  res.StartedAt,
		Duration:   res.Duration,
		RepoDir:    repoDir,
		Branch:     branch,
		Seed:       cfg.Seed,
		Strategy:   cfg.Strategy,
		Phase:      res.Phase.String(),
		Planned:    res.TotalPlanned,
		Successful: res.Successful,
		Failed:     res.Failed,
		Success:    res.Success,
		Restored:   res.Restored,
		Days:       days,
	}
	if err := ledger.Record(ctx, rec); err != nil {
		printer.Warn(fmt.Sprintf("history not recorded: %v", err))
	}
}

func summarize(res *executor.Result) ui.RunSummaryData {
	return ui.RunSummaryData{
		RunID:      res.RunID,
		Phase:      res.Phase.String(),
		Successful: res.Successful,
		Failed:     res.Failed,
		Total:      res.TotalPlanned,
		Duration:   res.Duration,
		Success:    res.Success,
		Restored:   res.Restored,
		Errors:     res.Errors,
	}
}

// confirm asks a y/N question on stderr and reads the answer from stdin.
func confirm(question string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", question)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}
