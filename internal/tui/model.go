package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Semantic color palette.
var (
	colorPrimary = lipgloss.Color("#00E676") // Green — verdant accent
	colorAccent  = lipgloss.Color("#FFD700") // Gold — warnings
	colorDanger  = lipgloss.Color("#FF5252") // Red — failures
	colorMuted   = lipgloss.Color("#636363") // Gray — de-emphasized
	colorWhite   = lipgloss.Color("#EEEEEE") // Off-white — primary text
)

var (
	styleTitle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleText = lipgloss.NewStyle().
			Foreground(colorWhite)

	styleWarn = lipgloss.NewStyle().
			Foreground(colorAccent)

	styleFail = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	styleBarFilled = lipgloss.NewStyle().
			Foreground(colorPrimary)

	styleBarEmpty = lipgloss.NewStyle().
			Foreground(colorMuted)
)

// recentLimit caps the commit log shown under the progress bar.
const recentLimit = 8

// barWidth is the character width of the progress bar.
const barWidth = 40

// Model is the run-progress view: a spinner, a progress bar, the rolling
// tail of created commits, and accumulated warnings.
type Model struct {
	Spinner  spinner.Model
	Total    int
	Done     int
	Failed   int
	Day      string
	Recent   []string
	Warnings []string
	Finished bool
	Summary  string
}

// NewModel creates an idle run-progress model.
func NewModel() Model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(colorPrimary)
	return Model{Spinner: s}
}

func (m Model) Init() tea.Cmd {
	return m.Spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case MsgRunStarted:
		m.Total = msg.Total
		return m, nil

	case MsgDayStarted:
		m.Day = msg.Date.Format("2006-01-02")
		return m, nil

	case MsgCommit:
		m.Done = msg.Done
		m.Total = msg.Total
		short := msg.SHA
		if len(short) > 7 {
			short = short[:7]
		}
		m.Recent = append(m.Recent, fmt.Sprintf("%s %s", msg.Date.Format("2006-01-02"), short))
		if len(m.Recent) > recentLimit {
			m.Recent = m.Recent[len(m.Recent)-recentLimit:]
		}
		return m, nil

	case MsgCommitFailed:
		m.Failed++
		m.Warnings = append(m.Warnings, fmt.Sprintf("%s slot %d: %v", msg.Date.Format("2006-01-02"), msg.Slot, msg.Err))
		return m, nil

	case MsgWarn:
		m.Warnings = append(m.Warnings, msg.Text)
		return m, nil

	case MsgRunDone:
		m.Finished = true
		d := msg.Summary
		outcome := d.Phase
		if d.Restored {
			outcome += ", repository restored"
		}
		m.Summary = fmt.Sprintf("%d/%d commit(s) created, %d failed — %s (%.1fs)",
			d.Successful, d.Total, d.Failed, outcome, d.Duration.Seconds())
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("verdant"))
	if m.Day != "" {
		b.WriteString(styleMuted.Render(" — " + m.Day))
	}
	b.WriteByte('\n')

	if m.Finished {
		b.WriteString(styleText.Render(m.Summary))
		b.WriteByte('\n')
	} else {
		b.WriteString(m.Spinner.View())
		b.WriteByte(' ')
		b.WriteString(m.progressBar())
		b.WriteString(styleText.Render(fmt.Sprintf(" %d/%d", m.Done, m.Total)))
		if m.Failed > 0 {
			b.WriteString(styleFail.Render(fmt.Sprintf("  ✗ %d", m.Failed)))
		}
		b.WriteByte('\n')
	}

	for _, r := range m.Recent {
		b.WriteString(styleMuted.Render("  " + r))
		b.WriteByte('\n')
	}
	for _, w := range m.Warnings {
		b.WriteString(styleWarn.Render("  ⚠ " + w))
		b.WriteByte('\n')
	}

	if !m.Finished {
		b.WriteString(styleMuted.Render("  q to quit"))
		b.WriteByte('\n')
	}
	return b.String()
}

// progressBar renders a fixed-width bar filled in proportion to Done/Total.
func (m Model) progressBar() string {
	filled := 0
	if m.Total > 0 {
		filled = m.Done * barWidth / m.Total
	}
	if filled > barWidth {
		filled = barWidth
	}
	return styleBarFilled.Render(strings.Repeat("█", filled)) +
		styleBarEmpty.Render(strings.Repeat("░", barWidth-filled))
}
