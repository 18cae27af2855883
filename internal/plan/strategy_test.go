package plan

import (
	"errors"
	"testing"
	"time"

	"github.com/verdant-cli/verdant/internal/rng"
)

// generate is a test helper that runs a strategy over n days starting at a
// fixed date and fails the test on error.
func generate(t *testing.T, s Strategy, n, maxPerDay int, seed string) *Plan {
	t.Helper()
	days := Horizon(date(2025, time.January, 1), n)
	p, err := Generate(s, days, maxPerDay, rng.New(seed))
	if err != nil {
		t.Fatalf("Generate(%s): %v", s.Name(), err)
	}
	return p
}

func TestGenerate_Deterministic(t *testing.T) {
	t.Parallel()

	strategies := []Strategy{
		Uniform{},
		Weighted{},
		Gaussian{Mean: 0.5, StdDev: 0.2},
		Pattern{},
	}
	for _, s := range strategies {
		t.Run(s.Name(), func(t *testing.T) {
			t.Parallel()
			a := generate(t, s, 60, 8, "abc")
			b := generate(t, s, 60, 8, "abc")
			for i := range a.Days {
				if a.Days[i].Count != b.Days[i].Count {
					t.Fatalf("day %d: counts diverged, %d != %d", i, a.Days[i].Count, b.Days[i].Count)
				}
			}
		})
	}
}

func TestGenerate_SeedSensitivity(t *testing.T) {
	t.Parallel()
	a := generate(t, Uniform{}, 60, 8, "seed-one")
	b := generate(t, Uniform{}, 60, 8, "seed-two")
	same := true
	for i := range a.Days {
		if a.Days[i].Count != b.Days[i].Count {
			same = false
			break
		}
	}
	if same {
		t.Error("distinct seeds produced identical 60-day plans")
	}
}

func TestGenerate_Clamping(t *testing.T) {
	t.Parallel()

	strategies := []Strategy{
		Uniform{},
		Weighted{},
		Gaussian{Mean: 0.5, StdDev: 0.05}, // tight spread drives large jitter near center
		Pattern{Pattern: []int{12, -3, 0, 99}},
	}
	for _, s := range strategies {
		t.Run(s.Name(), func(t *testing.T) {
			t.Parallel()
			const maxPerDay = 5
			p := generate(t, s, 90, maxPerDay, "clamp")
			for i, d := range p.Days {
				if d.Count < 0 || d.Count > maxPerDay {
					t.Errorf("day %d: count %d outside [0, %d]", i, d.Count, maxPerDay)
				}
			}
		})
	}
}

func TestGenerate_Chronology(t *testing.T) {
	t.Parallel()
	days := Horizon(date(2025, time.February, 25), 10)
	p, err := Generate(Weighted{}, days, 5, rng.New("chrono"))
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Days) != len(days) {
		t.Fatalf("plan has %d days, horizon has %d", len(p.Days), len(days))
	}
	for i := range p.Days {
		if !p.Days[i].Date.Equal(days[i]) {
			t.Errorf("day %d: date %s does not match horizon %s", i, p.Days[i].Date, days[i])
		}
	}
}

func TestUniform_NeverZero(t *testing.T) {
	t.Parallel()
	p := generate(t, Uniform{}, 365, 10, "no-zero")
	for i, d := range p.Days {
		if d.Count < 1 {
			t.Errorf("day %d: uniform produced count %d, want >= 1", i, d.Count)
		}
	}
}

func TestWeighted_HasRestDays(t *testing.T) {
	t.Parallel()
	// With 70% activity over a year, zero days are effectively certain.
	p := generate(t, Weighted{}, 365, 10, "rest")
	zeros := 0
	for _, d := range p.Days {
		if d.Count == 0 {
			zeros++
		}
	}
	if zeros == 0 {
		t.Error("weighted produced no rest days over 365 days")
	}
}

func TestWeighted_SmallMaxPerDay(t *testing.T) {
	t.Parallel()
	// The bands collapse at maxPerDay 1 and 2; counts must stay in range.
	for _, maxPerDay := range []int{1, 2} {
		p := generate(t, Weighted{}, 120, maxPerDay, "small-max")
		for i, d := range p.Days {
			if d.Count < 0 || d.Count > maxPerDay {
				t.Errorf("maxPerDay=%d day %d: count %d out of range", maxPerDay, i, d.Count)
			}
		}
	}
}

func TestGaussian_PeaksNearCenter(t *testing.T) {
	t.Parallel()
	p := generate(t, Gaussian{Mean: 0.5, StdDev: 0.1}, 100, 10, "peak")

	center, edges := 0, 0
	for i, d := range p.Days {
		switch {
		case i >= 40 && i < 60:
			center += d.Count
		case i < 10 || i >= 90:
			edges += d.Count
		}
	}
	if center <= edges {
		t.Errorf("center total %d not above edge total %d", center, edges)
	}
}

func TestPattern_ExplicitTiling(t *testing.T) {
	t.Parallel()
	p := generate(t, Pattern{Pattern: []int{1, 2, 0}}, 7, 5, "tile")
	want := []int{1, 2, 0, 1, 2, 0, 1}
	for i, d := range p.Days {
		if d.Count != want[i] {
			t.Errorf("day %d: count %d, want %d", i, d.Count, want[i])
		}
	}
}

func TestPattern_WeekendsQuieter(t *testing.T) {
	t.Parallel()
	p := generate(t, Pattern{}, 364, 10, "weekend")
	totals := p.WeekdayTotals()
	weekend := totals[time.Saturday] + totals[time.Sunday]
	weekdays := 0
	for wd := time.Monday; wd <= time.Friday; wd++ {
		weekdays += totals[wd]
	}
	// Default weights put weekends at 20-30% of a weekday; per-day weekend
	// volume must be well below per-day weekday volume.
	if weekend*5 >= weekdays*2 {
		t.Errorf("weekend total %d not clearly below weekday total %d", weekend, weekdays)
	}
}

func TestGenerate_InputErrors(t *testing.T) {
	t.Parallel()

	t.Run("empty horizon", func(t *testing.T) {
		t.Parallel()
		_, err := Generate(Uniform{}, nil, 5, rng.New("x"))
		if !errors.Is(err, ErrEmptyHorizon) {
			t.Errorf("err = %v, want ErrEmptyHorizon", err)
		}
	})

	t.Run("bad max per day", func(t *testing.T) {
		t.Parallel()
		_, err := Generate(Uniform{}, Horizon(date(2025, time.January, 1), 3), 0, rng.New("x"))
		if !errors.Is(err, ErrBadMaxPerDay) {
			t.Errorf("err = %v, want ErrBadMaxPerDay", err)
		}
	})

	t.Run("unordered horizon", func(t *testing.T) {
		t.Parallel()
		days := []time.Time{date(2025, time.January, 2), date(2025, time.January, 1)}
		_, err := Generate(Uniform{}, days, 5, rng.New("x"))
		if !errors.Is(err, ErrHorizonOrder) {
			t.Errorf("err = %v, want ErrHorizonOrder", err)
		}
	})
}

func TestStrategyFromName(t *testing.T) {
	t.Parallel()

	names := []string{"uniform", "weighted", "gaussian", "pattern"}
	for _, name := range names {
		s, err := StrategyFromName(name, 0.5, 0.2, nil, [7]float64{})
		if err != nil {
			t.Errorf("StrategyFromName(%q): %v", name, err)
			continue
		}
		if s.Name() != name {
			t.Errorf("Name() = %q, want %q", s.Name(), name)
		}
	}

	if _, err := StrategyFromName("zipf", 0, 0, nil, [7]float64{}); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("err = %v, want ErrUnknownStrategy", err)
	}
}
