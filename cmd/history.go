package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/verdant-cli/verdant/internal/config"
	"github.com/verdant-cli/verdant/internal/gitrepo"
	"github.com/verdant-cli/verdant/internal/history"
	"github.com/verdant-cli/verdant/internal/plan"
	"github.com/verdant-cli/verdant/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the ledger of past runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its per-day counts",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyGraphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Render synthesized activity as a contribution graph",
	RunE:  runHistoryGraph,
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "number of runs to show (0 = all)")
	historyGraphCmd.Flags().Int("days", 365, "window of days to render")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyGraphCmd)
	rootCmd.AddCommand(historyCmd)
}

// openLedger resolves the ledger path for the configured repository. The
// repository's absolute path keys its entries.
func openLedger(ctx context.Context) (*history.Ledger, string, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, "", err
	}

	repoDir, err := filepath.Abs(cfg.RepoDir)
	if err != nil {
		return nil, "", err
	}

	path := cfg.HistoryDB
	if path == "" {
		backend, err := gitrepo.New(ctx, cfg.RepoDir)
		if err != nil {
			return nil, "", err
		}
		controlDir, err := backend.ControlDir(ctx)
		if err != nil {
			return nil, "", err
		}
		path = filepath.Join(controlDir, "verdant", "history.db")
	}

	ledger, err := history.Open(ctx, path)
	if err != nil {
		return nil, "", err
	}
	return ledger, repoDir, nil
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	ledger, _, err := openLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer ledger.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := ledger.List(cmd.Context(), limit)
	if err != nil {
		return err
	}
	ui.New().HistoryList(runs)
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	ledger, _, err := openLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer ledger.Close()

	r, err := ledger.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "run:      %s\n", r.ID)
	fmt.Fprintf(os.Stderr, "started:  %s (%.1fs)\n", r.StartedAt.Format(time.RFC3339), r.Duration.Seconds())
	fmt.Fprintf(os.Stderr, "repo:     %s\n", r.RepoDir)
	if r.Branch != "" {
		fmt.Fprintf(os.Stderr, "branch:   %s\n", r.Branch)
	}
	fmt.Fprintf(os.Stderr, "seed:     %q (%s)\n", r.Seed, r.Strategy)
	fmt.Fprintf(os.Stderr, "outcome:  %s — %d/%d commit(s), %d failed\n", r.Phase, r.Successful, r.Planned, r.Failed)
	if r.Restored {
		fmt.Fprintln(os.Stderr, "restored: yes")
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprint(os.Stderr, ui.Calendar(daysToPlan(r.Days)))
	return nil
}

func runHistoryGraph(cmd *cobra.Command, _ []string) error {
	ledger, repoDir, err := openLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer ledger.Close()

	days, _ := cmd.Flags().GetInt("days")
	since := time.Now().UTC().AddDate(0, 0, -days)
	totals, err := ledger.DayTotals(cmd.Context(), repoDir, since)
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stderr, ui.Calendar(daysToPlan(totals)))
	return nil
}

// daysToPlan turns a date→count map into a chronological plan for rendering.
func daysToPlan(days map[string]int) *plan.Plan {
	if len(days) == 0 {
		return &plan.Plan{}
	}

	var first, last time.Time
	for date := range days {
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			continue
		}
		if first.IsZero() || t.Before(first) {
			first = t
		}
		if t.After(last) {
			last = t
		}
	}
	if first.IsZero() {
		return &plan.Plan{}
	}

	p := &plan.Plan{}
	for _, day := range plan.HorizonRange(first, last) {
		p.Days = append(p.Days, plan.DayPlan{Date: day, Count: days[day.Format("2006-01-02")]})
	}
	return p
}
