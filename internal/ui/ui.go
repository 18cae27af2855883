package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/verdant-cli/verdant/internal/backup"
	"github.com/verdant-cli/verdant/internal/history"
	"github.com/verdant-cli/verdant/internal/plan"
)

// ANSI color codes.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	yellow = "\033[33m"
	green  = "\033[32m"
	red    = "\033[31m"
	cyan   = "\033[36m"
)

// Printer writes human-facing output. It targets stderr so stdout stays
// free for machine-readable output like preview --json.
type Printer struct {
	w io.Writer
}

func New() *Printer {
	return &Printer{w: os.Stderr}
}

// NewTo returns a Printer writing to w.
func NewTo(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) Banner() {
	fmt.Fprintln(p.w, bold+green+"  ╔═══════════════════════════════════╗"+reset)
	fmt.Fprintln(p.w, bold+green+"  ║"+reset+bold+"  VERDANT  "+dim+"history synthesizer  "+reset+bold+green+"  ║"+reset)
	fmt.Fprintln(p.w, bold+green+"  ╚═══════════════════════════════════╝"+reset)
	fmt.Fprintln(p.w)
}

func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.w, red+bold+"error: "+reset+"%s\n", msg)
}

func (p *Printer) Info(msg string) {
	fmt.Fprintf(p.w, dim+"%s"+reset+"\n", msg)
}

// --- run progress ---

func (p *Printer) RunStarted(total int) {
	fmt.Fprintf(p.w, cyan+bold+"▶ run"+reset+" %d commit(s) planned\n", total)
}

func (p *Printer) DayStarted(date time.Time, count int) {
	fmt.Fprintf(p.w, dim+"  %s — %d commit(s)"+reset+"\n", date.Format("2006-01-02"), count)
}

// CommitCreated overwrites the current line with progress; \r keeps large
// runs from scrolling the terminal.
func (p *Printer) CommitCreated(date time.Time, sha string, done, total int) {
	fmt.Fprintf(p.w, "\r"+cyan+"[%d/%d]"+reset+" %s %s   ", done, total, date.Format("2006-01-02"), shortSHA(sha))
}

func (p *Printer) CommitFailed(date time.Time, slot int, err error) {
	fmt.Fprintf(p.w, "\n"+red+"✗ %s slot %d"+reset+" — %v\n", date.Format("2006-01-02"), slot, err)
}

func (p *Printer) Warn(msg string) {
	fmt.Fprintf(p.w, yellow+bold+"⚠ "+reset+"%s\n", msg)
}

// --- plan output ---

// PlanSummary prints the headline numbers for a generated plan.
func (p *Printer) PlanSummary(pl *plan.Plan, seed, strategy string) {
	fmt.Fprintf(p.w, "\n"+bold+cyan+"plan"+reset+dim+" (seed %q, %s)"+reset+"\n", seed, strategy)
	fmt.Fprintf(p.w, "  days:         %d (%d active)\n", len(pl.Days), pl.ActiveDays())
	fmt.Fprintf(p.w, "  commits:      %d\n", pl.TotalCommits())
	if busiestDate, busiestCount := pl.BusiestDay(); busiestCount > 0 {
		fmt.Fprintf(p.w, "  busiest day:  %s (%d)\n", busiestDate.Format("2006-01-02"), busiestCount)
	}
	totals := pl.WeekdayTotals()
	names := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	parts := make([]string, 0, 7)
	for i, n := range totals {
		parts = append(parts, fmt.Sprintf("%s %d", names[i], n))
	}
	fmt.Fprintf(p.w, "  by weekday:   %s\n", strings.Join(parts, ", "))
}

// ValidationResult prints a validator outcome.
func (p *Printer) ValidationResult(res plan.Result) {
	if res.Valid && len(res.Warnings) == 0 {
		fmt.Fprintln(p.w, green+bold+"✓ plan valid"+reset+" — no warnings")
		return
	}
	if res.Valid {
		fmt.Fprintf(p.w, green+bold+"✓ plan valid"+reset+" — %d warning(s):\n", len(res.Warnings))
	} else {
		fmt.Fprintf(p.w, red+bold+"✗ plan invalid"+reset+" — %d error(s):\n", len(res.Errors))
		for _, e := range res.Errors {
			fmt.Fprintf(p.w, "  "+red+"• "+reset+"%s\n", e.Error())
		}
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(p.w, "  "+yellow+"• "+reset+"%s\n", w)
	}
}

// RunSummaryData holds the outcome numbers shown after a run.
type RunSummaryData struct {
	RunID      string
	Phase      string
	Successful int
	Failed     int
	Total      int
	Duration   time.Duration
	Success    bool
	Restored   bool
	Errors     []string
}

// RunSummary prints a boxed summary after execution finishes.
func (p *Printer) RunSummary(d RunSummaryData) {
	fmt.Fprintf(p.w, "\n"+dim+"┌─ "+reset+bold+"run %s"+reset+dim+" ─────────────────"+reset+"\n", d.RunID)
	fmt.Fprintf(p.w, dim+"│"+reset+"  commits:  "+bold+"%d"+reset+"/%d created, %d failed\n", d.Successful, d.Total, d.Failed)
	fmt.Fprintf(p.w, dim+"│"+reset+"  duration: %.1fs\n", d.Duration.Seconds())
	switch {
	case d.Restored:
		fmt.Fprintf(p.w, dim+"│"+reset+"  outcome:  "+red+bold+"%s, repository restored"+reset+"\n", d.Phase)
	case d.Success:
		fmt.Fprintf(p.w, dim+"│"+reset+"  outcome:  "+green+bold+"%s"+reset+"\n", d.Phase)
	default:
		fmt.Fprintf(p.w, dim+"│"+reset+"  outcome:  "+red+bold+"%s"+reset+"\n", d.Phase)
	}
	for _, e := range d.Errors {
		fmt.Fprintf(p.w, dim+"│"+reset+"  "+red+"• "+reset+"%s\n", e)
	}
	fmt.Fprintln(p.w, dim+"└──────────────────────────────────────────"+reset)
}

// --- backup / history output ---

func (p *Printer) BackupList(recs []*backup.Record) {
	if len(recs) == 0 {
		fmt.Fprintln(p.w, dim+"no backups"+reset)
		return
	}
	fmt.Fprintln(p.w, bold+"backups:"+reset)
	for _, r := range recs {
		fmt.Fprintf(p.w, "  %s  %s  %s@%s  %d commit(s)\n",
			r.ID, r.CreatedAt.Format(time.RFC3339), r.Branch, shortSHA(r.HeadSHA), r.CommitCount)
	}
}

func (p *Printer) HistoryList(runs []*history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(p.w, dim+"no runs recorded"+reset)
		return
	}
	fmt.Fprintln(p.w, bold+"runs:"+reset)
	for _, r := range runs {
		mark := green + "✓" + reset
		if !r.Success {
			mark = red + "✗" + reset
		}
		fmt.Fprintf(p.w, "  %s %s  %s  %-9s seed:%-12q %d/%d commit(s)\n",
			mark, r.ID, r.StartedAt.Format("2006-01-02 15:04"), r.Strategy, r.Seed, r.Successful, r.Planned)
	}
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
