// Package plan models the day-by-day commit schedule and the distribution
// strategies that produce it. A Plan is generated once, populated with
// messages, validated, and then treated as read-only by the executor.
package plan

import "time"

// DayPlan is the schedule for a single calendar day: how many commits to
// create and, once populated, the message for each commit slot.
type DayPlan struct {
	Date     time.Time
	Count    int
	Messages []string
}

// Plan is an ordered list of DayPlans, chronologically ascending. The
// ordering is a hard invariant consumed by the validator and the executor.
type Plan struct {
	Days []DayPlan
}

// TotalCommits returns the sum of all per-day counts.
func (p *Plan) TotalCommits() int {
	total := 0
	for _, d := range p.Days {
		total += d.Count
	}
	return total
}

// ActiveDays returns the number of days with at least one commit.
func (p *Plan) ActiveDays() int {
	n := 0
	for _, d := range p.Days {
		if d.Count > 0 {
			n++
		}
	}
	return n
}

// BusiestDay returns the date and count of the day with the most commits.
// A zero time is returned for an empty plan.
func (p *Plan) BusiestDay() (time.Time, int) {
	var date time.Time
	best := 0
	for _, d := range p.Days {
		if d.Count > best {
			best = d.Count
			date = d.Date
		}
	}
	return date, best
}

// WeekdayTotals returns the per-weekday commit totals, indexed by
// time.Weekday (Sunday = 0).
func (p *Plan) WeekdayTotals() [7]int {
	var totals [7]int
	for _, d := range p.Days {
		totals[d.Date.Weekday()] += d.Count
	}
	return totals
}

// Horizon returns days consecutive calendar days starting at start,
// normalized to midnight UTC. The result is strictly ascending with no gaps.
func Horizon(start time.Time, days int) []time.Time {
	if days <= 0 {
		return nil
	}
	start = Midnight(start)
	out := make([]time.Time, days)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

// HorizonRange returns the inclusive sequence of calendar days from start
// through end. An end before start yields an empty horizon.
func HorizonRange(start, end time.Time) []time.Time {
	start, end = Midnight(start), Midnight(end)
	if end.Before(start) {
		return nil
	}
	days := int(end.Sub(start).Hours()/24) + 1
	return Horizon(start, days)
}

// Midnight strips the time component from t, keeping the date in UTC.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
