package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verdant-cli/verdant/internal/ui"
)

// Program is an alias for tea.Program, exposed so callers don't need
// to import bubbletea directly.
type Program = tea.Program

// NewProgram creates the run-progress program. It renders inline (no
// alternate screen) so the final summary survives in the scrollback.
func NewProgram(opts ...tea.ProgramOption) *Program {
	return tea.NewProgram(NewModel(), opts...)
}

// Bridge adapts executor observer callbacks into program messages. It is
// safe to call from the goroutine running the executor while the program
// runs on the main goroutine.
type Bridge struct {
	p *Program
}

// NewBridge wraps a running program.
func NewBridge(p *Program) *Bridge {
	return &Bridge{p: p}
}

func (b *Bridge) RunStarted(total int) {
	b.p.Send(MsgRunStarted{Total: total})
}

func (b *Bridge) DayStarted(date time.Time, count int) {
	b.p.Send(MsgDayStarted{Date: date, Count: count})
}

func (b *Bridge) CommitCreated(date time.Time, sha string, done, total int) {
	b.p.Send(MsgCommit{Date: date, SHA: sha, Done: done, Total: total})
}

func (b *Bridge) CommitFailed(date time.Time, slot int, err error) {
	b.p.Send(MsgCommitFailed{Date: date, Slot: slot, Err: err})
}

func (b *Bridge) Warn(msg string) {
	b.p.Send(MsgWarn{Text: msg})
}

// Done delivers the final summary and quits the program.
func (b *Bridge) Done(d ui.RunSummaryData) {
	b.p.Send(MsgRunDone{Summary: d})
}
