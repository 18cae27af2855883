package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/verdant-cli/verdant/internal/plan"
)

// Contribution-graph palette, darkest to brightest.
var graphLevels = [5]lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("#2D333B")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#0E4429")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#006D32")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#26A641")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#39D353")),
}

var graphLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))

const graphCell = "■"

// weekday labels on the rows GitHub labels.
var weekdayLabels = [7]string{"", "Mon", "", "Wed", "", "Fri", ""}

// Calendar renders a plan as a contribution graph: one column per week,
// one row per weekday, Sunday first, intensity scaled to the busiest day.
func Calendar(pl *plan.Plan) string {
	if pl == nil || len(pl.Days) == 0 {
		return graphLabelStyle.Render("(empty plan)") + "\n"
	}

	counts := make(map[time.Time]int, len(pl.Days))
	max := 0
	for _, d := range pl.Days {
		day := plan.Midnight(d.Date)
		counts[day] += d.Count
		if counts[day] > max {
			max = counts[day]
		}
	}

	first := plan.Midnight(pl.Days[0].Date)
	last := plan.Midnight(pl.Days[len(pl.Days)-1].Date)

	// Snap the grid back to the Sunday on or before the first day.
	gridStart := first.AddDate(0, 0, -int(first.Weekday()))
	weeks := int(last.Sub(gridStart).Hours()/(24*7)) + 1

	var b strings.Builder
	b.WriteString(graphLabelStyle.Render(fmt.Sprintf("%s — %s", first.Format("2006-01-02"), last.Format("2006-01-02"))))
	b.WriteByte('\n')

	for wd := 0; wd < 7; wd++ {
		b.WriteString(graphLabelStyle.Render(fmt.Sprintf("%-4s", weekdayLabels[wd])))
		for w := 0; w < weeks; w++ {
			day := gridStart.AddDate(0, 0, w*7+wd)
			if day.Before(first) || day.After(last) {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(graphLevels[level(counts[day], max)].Render(graphCell))
		}
		b.WriteByte('\n')
	}

	b.WriteString(graphLabelStyle.Render("less "))
	for _, s := range graphLevels {
		b.WriteString(s.Render(graphCell))
	}
	b.WriteString(graphLabelStyle.Render(" more"))
	b.WriteByte('\n')
	return b.String()
}

// level buckets a count into the palette: zero stays dark, the rest split
// into quartiles of the busiest day.
func level(count, max int) int {
	if count == 0 || max == 0 {
		return 0
	}
	l := (count*4 + max - 1) / max
	if l > 4 {
		l = 4
	}
	if l < 1 {
		l = 1
	}
	return l
}
