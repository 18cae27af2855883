package plan

import "fmt"

// HighVolumeThreshold is the total commit count above which the validator
// warns that execution may be slow.
const HighVolumeThreshold = 10000

// Result holds the outcome of validating a plan. Errors make the plan
// unexecutable; warnings are surfaced but do not block execution.
type Result struct {
	Valid    bool
	Errors   []error
	Warnings []string
}

// Validate checks a populated plan for structural defects before execution.
// It is a pure function: the plan is never modified.
//
// Hard errors: empty plan, a day with a zero date, a negative count, or
// non-chronological ordering between consecutive days. Warnings: a day with
// commits but no messages, a day above maxPerDay (only possible when the
// caller bypassed distribution clamping), and total volume above
// HighVolumeThreshold.
func Validate(p *Plan, maxPerDay int) Result {
	res := Result{}

	if p == nil || len(p.Days) == 0 {
		res.Errors = append(res.Errors, ErrEmptyPlan)
		return res
	}

	for i, d := range p.Days {
		if d.Date.IsZero() {
			res.Errors = append(res.Errors, fmt.Errorf("%w: index %d", ErrZeroDate, i))
		}
		if d.Count < 0 {
			res.Errors = append(res.Errors, fmt.Errorf("%w: %s has count %d",
				ErrNegativeCount, d.Date.Format("2006-01-02"), d.Count))
		}
		if i > 0 && !p.Days[i].Date.After(p.Days[i-1].Date) {
			res.Errors = append(res.Errors, fmt.Errorf("%w: %s follows %s",
				ErrOutOfOrder, d.Date.Format("2006-01-02"), p.Days[i-1].Date.Format("2006-01-02")))
		}

		if d.Count > 0 && len(d.Messages) == 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"%s has %d commit(s) but no messages", d.Date.Format("2006-01-02"), d.Count))
		}
		if maxPerDay >= 1 && d.Count > maxPerDay {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"%s has %d commit(s), above the configured max of %d",
				d.Date.Format("2006-01-02"), d.Count, maxPerDay))
		}
	}

	if total := p.TotalCommits(); total > HighVolumeThreshold {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"plan contains %d commits; execution may be slow", total))
	}

	res.Valid = len(res.Errors) == 0
	return res
}
