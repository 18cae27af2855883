package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verdant-cli/verdant/internal/ui"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm
}

func TestModel_ProgressAccumulates(t *testing.T) {
	t.Parallel()
	m := NewModel()
	day := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	m = update(t, m, MsgRunStarted{Total: 10})
	if m.Total != 10 {
		t.Errorf("Total = %d, want 10", m.Total)
	}

	m = update(t, m, MsgDayStarted{Date: day, Count: 3})
	if m.Day != "2024-06-01" {
		t.Errorf("Day = %q", m.Day)
	}

	m = update(t, m, MsgCommit{Date: day, SHA: "abcdef0123456789", Done: 1, Total: 10})
	if m.Done != 1 || len(m.Recent) != 1 {
		t.Errorf("Done = %d, Recent = %v", m.Done, m.Recent)
	}
	if !strings.Contains(m.Recent[0], "abcdef0") || strings.Contains(m.Recent[0], "abcdef01") {
		t.Errorf("SHA not shortened to 7: %q", m.Recent[0])
	}

	m = update(t, m, MsgCommitFailed{Date: day, Slot: 2, Err: errors.New("boom")})
	if m.Failed != 1 || len(m.Warnings) != 1 {
		t.Errorf("Failed = %d, Warnings = %v", m.Failed, m.Warnings)
	}

	view := m.View()
	for _, want := range []string{"verdant", "2024-06-01", "1/10", "✗ 1", "boom"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q:\n%s", want, view)
		}
	}
}

func TestModel_RecentIsCapped(t *testing.T) {
	t.Parallel()
	m := NewModel()
	day := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < recentLimit+5; i++ {
		m = update(t, m, MsgCommit{Date: day, SHA: "sha", Done: i + 1, Total: 99})
	}
	if len(m.Recent) != recentLimit {
		t.Errorf("len(Recent) = %d, want %d", len(m.Recent), recentLimit)
	}
}

func TestModel_RunDoneQuits(t *testing.T) {
	t.Parallel()
	m := NewModel()
	next, cmd := m.Update(MsgRunDone{Summary: ui.RunSummaryData{
		Phase: "completed", Successful: 5, Total: 5, Duration: 2 * time.Second, Success: true,
	}})
	nm := next.(Model)
	if !nm.Finished {
		t.Error("Finished = false")
	}
	if cmd == nil {
		t.Fatal("expected quit cmd")
	}
	if !strings.Contains(nm.View(), "5/5 commit(s) created") {
		t.Errorf("View = %q", nm.View())
	}
}

func TestModel_QuitKeys(t *testing.T) {
	t.Parallel()
	m := NewModel()
	for _, k := range []string{"q", "ctrl+c"} {
		var msg tea.KeyMsg
		if k == "q" {
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
		} else {
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		}
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Errorf("key %q did not quit", k)
		}
	}
}

func TestProgressBar_Bounds(t *testing.T) {
	t.Parallel()
	m := NewModel()

	// Zero total must not divide by zero.
	if bar := m.progressBar(); !strings.Contains(bar, "░") {
		t.Errorf("empty bar = %q", bar)
	}

	m.Total = 10
	m.Done = 10
	if bar := m.progressBar(); strings.Contains(bar, "░") {
		t.Errorf("full bar still has empty cells: %q", bar)
	}
}
