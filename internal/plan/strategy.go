package plan

import (
	"fmt"
	"math"
	"time"

	"github.com/verdant-cli/verdant/internal/rng"
)

// Strategy turns a horizon of calendar days into a per-day commit count.
// The four implementations form a closed set; dispatch happens through
// Generate so every strategy sees the same clamping rules.
type Strategy interface {
	// Name returns the stable identifier used on the CLI and in the ledger.
	Name() string

	// counts produces one raw count per day. Values may fall outside
	// [0, maxPerDay]; Generate clamps them.
	counts(days []time.Time, maxPerDay int, r *rng.Source) []int
}

// Uniform gives every day between 1 and maxPerDay commits. No zero days.
type Uniform struct{}

func (Uniform) Name() string { return "uniform" }

func (Uniform) counts(days []time.Time, maxPerDay int, r *rng.Source) []int {
	out := make([]int, len(days))
	for i := range days {
		out[i] = r.IntN(1, maxPerDay+1)
	}
	return out
}

// Weighted models a realistic contributor: 70% of days are active, and
// active days skew toward low counts with occasional bursts.
type Weighted struct{}

func (Weighted) Name() string { return "weighted" }

// Band split for active days: 50% low (1..4), 30% mid (2..8), 20% high
// (5..max). At small maxPerDay the bands collapse downward: each band's
// bounds are clamped to maxPerDay before drawing, so a band can narrow to
// the single value maxPerDay but never invert.
func (Weighted) counts(days []time.Time, maxPerDay int, r *rng.Source) []int {
	out := make([]int, len(days))
	for i := range days {
		if r.Float() >= 0.7 {
			continue // rest day
		}
		band := r.Float()
		var lo, hi int
		switch {
		case band < 0.5:
			lo, hi = 1, min(4, maxPerDay)
		case band < 0.8:
			lo, hi = min(2, maxPerDay), min(8, maxPerDay)
		default:
			lo, hi = min(5, maxPerDay), maxPerDay
		}
		out[i] = r.IntN(lo, hi+1)
	}
	return out
}

// Gaussian concentrates activity around a point in the horizon. Mean and
// StdDev are expressed as ratios of the horizon length (0-1).
type Gaussian struct {
	Mean   float64
	StdDev float64
}

func (Gaussian) Name() string { return "gaussian" }

func (g Gaussian) counts(days []time.Time, maxPerDay int, r *rng.Source) []int {
	n := len(days)
	center := g.Mean * float64(n)
	spread := g.StdDev * float64(n)
	if spread <= 0 {
		spread = 1
	}
	out := make([]int, n)
	for i := range days {
		dist := float64(i) - center
		prob := math.Exp(-(dist * dist) / (2 * spread * spread))
		base := prob * float64(maxPerDay)
		jitter := r.Gaussian(0, base*0.3)
		out[i] = int(math.Round(base + jitter))
	}
	return out
}

// Pattern tiles an explicit integer pattern over the horizon, or, when no
// pattern is given, scales maxPerDay by a per-weekday weight vector with
// ±30% jitter. Weekends are downweighted by default.
type Pattern struct {
	// Pattern is an explicit repeating count sequence. When non-empty it
	// takes precedence over Weights and is applied verbatim (clamped).
	Pattern []int

	// Weights holds one weight per weekday, indexed by time.Weekday
	// (Sunday = 0). A zero-value vector falls back to DefaultWeekdayWeights.
	Weights [7]float64
}

func (Pattern) Name() string { return "pattern" }

// DefaultWeekdayWeights is the weekday weight vector used when none is
// configured: steady weekdays, quiet weekends.
var DefaultWeekdayWeights = [7]float64{0.2, 1.0, 1.0, 1.0, 1.0, 1.0, 0.3}

func (p Pattern) counts(days []time.Time, maxPerDay int, r *rng.Source) []int {
	out := make([]int, len(days))
	if len(p.Pattern) > 0 {
		for i := range days {
			out[i] = p.Pattern[i%len(p.Pattern)]
		}
		return out
	}

	weights := p.Weights
	if weights == ([7]float64{}) {
		weights = DefaultWeekdayWeights
	}
	for i, day := range days {
		w := weights[day.Weekday()]
		jitter := r.Float()*0.6 - 0.3
		out[i] = int(math.Round(w * float64(maxPerDay) * (1 + jitter)))
	}
	return out
}

// Generate runs a strategy over a horizon and returns the resulting plan
// with messages left empty. Counts are clamped into [0, maxPerDay]; a
// negative intermediate count never survives.
func Generate(s Strategy, days []time.Time, maxPerDay int, r *rng.Source) (*Plan, error) {
	if len(days) == 0 {
		return nil, ErrEmptyHorizon
	}
	if maxPerDay < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrBadMaxPerDay, maxPerDay)
	}
	for i := 1; i < len(days); i++ {
		if !days[i].After(days[i-1]) {
			return nil, fmt.Errorf("%w: day %d (%s) not after day %d (%s)",
				ErrHorizonOrder, i, days[i].Format("2006-01-02"), i-1, days[i-1].Format("2006-01-02"))
		}
	}

	raw := s.counts(days, maxPerDay, r)
	plan := &Plan{Days: make([]DayPlan, len(days))}
	for i, day := range days {
		count := raw[i]
		if count < 0 {
			count = 0
		}
		if count > maxPerDay {
			count = maxPerDay
		}
		plan.Days[i] = DayPlan{Date: day, Count: count}
	}
	return plan, nil
}

// StrategyFromName builds a strategy from its CLI identifier.
func StrategyFromName(name string, mean, stdDev float64, pattern []int, weights [7]float64) (Strategy, error) {
	switch name {
	case "uniform":
		return Uniform{}, nil
	case "weighted":
		return Weighted{}, nil
	case "gaussian":
		return Gaussian{Mean: mean, StdDev: stdDev}, nil
	case "pattern":
		return Pattern{Pattern: pattern, Weights: weights}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
