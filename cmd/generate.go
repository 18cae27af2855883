package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verdant-cli/verdant/internal/config"
	"github.com/verdant-cli/verdant/internal/message"
	"github.com/verdant-cli/verdant/internal/plan"
	"github.com/verdant-cli/verdant/internal/profile"
	"github.com/verdant-cli/verdant/internal/rng"
)

// defaultProfilesFile is looked up relative to the working directory when
// --profile is used without --profiles-file.
const defaultProfilesFile = "verdant.toml"

// genParams bundles everything needed to generate a populated plan: the
// loaded config plus the knobs config doesn't carry.
type genParams struct {
	cfg     config.Config
	start   time.Time
	end     time.Time
	pattern []int
	weights [7]float64
}

// addGenerationFlags registers the flags shared by run, preview, and validate.
func addGenerationFlags(c *cobra.Command) {
	c.Flags().String("seed", "", "seed for deterministic generation (empty = time-based)")
	c.Flags().String("distribution", "", "distribution strategy: uniform, weighted, gaussian, pattern")
	c.Flags().String("start", "", "first day of the horizon (2006-01-02)")
	c.Flags().String("end", "", "last day of the horizon, inclusive (2006-01-02)")
	c.Flags().Int("days", 0, "horizon length in days")
	c.Flags().Int("max-per-day", 0, "upper bound on commits per day")
	c.Flags().Float64("mean", 0, "gaussian: peak position as a fraction of the horizon")
	c.Flags().Float64("stddev", 0, "gaussian: spread as a fraction of the horizon")
	c.Flags().String("pattern", "", "pattern: comma-separated counts tiled across the horizon")
	c.Flags().String("weights", "", "pattern: 7 comma-separated weekday weights, Sunday first")
	c.Flags().String("style", "", "message style: "+strings.Join(message.Styles(), ", "))
	c.Flags().String("corpus", "", "file with one commit message per line (overrides style)")
	c.Flags().String("profile", "", "named profile to load")
	c.Flags().String("profiles-file", "", "TOML file holding profiles (default "+defaultProfilesFile+")")
}

// loadGenParams resolves config, profile, and flag layers into one parameter
// set. Precedence, lowest to highest: defaults, config file/env, profile,
// explicit flags.
func loadGenParams(cmd *cobra.Command) (genParams, error) {
	cfg, err := config.Load()
	if err != nil {
		return genParams{}, err
	}
	params := genParams{cfg: cfg}

	if name, _ := cmd.Flags().GetString("profile"); name != "" {
		path, _ := cmd.Flags().GetString("profiles-file")
		if path == "" {
			path = defaultProfilesFile
		}
		f, err := profile.Load(path)
		if err != nil {
			return genParams{}, err
		}
		p, err := f.Get(name)
		if err != nil {
			return genParams{}, err
		}
		p.Apply(&params.cfg)
		params.pattern = p.Pattern
		if len(p.Weights) > 0 {
			w, err := toWeights(p.Weights)
			if err != nil {
				return genParams{}, fmt.Errorf("profile %q: %w", name, err)
			}
			params.weights = w
		}
	}

	if err := applyGenerationFlags(cmd, &params); err != nil {
		return genParams{}, err
	}
	return params, nil
}

// applyGenerationFlags overlays explicitly set flags onto params.
func applyGenerationFlags(cmd *cobra.Command, params *genParams) error {
	cfg := &params.cfg
	if cmd.Flags().Changed("seed") {
		cfg.Seed, _ = cmd.Flags().GetString("seed")
	}
	if cmd.Flags().Changed("distribution") {
		cfg.Strategy, _ = cmd.Flags().GetString("distribution")
	}
	if v, _ := cmd.Flags().GetInt("days"); v > 0 {
		cfg.Days = v
	}
	if v, _ := cmd.Flags().GetInt("max-per-day"); v > 0 {
		cfg.MaxPerDay = v
	}
	if cmd.Flags().Changed("mean") {
		cfg.Mean, _ = cmd.Flags().GetFloat64("mean")
	}
	if cmd.Flags().Changed("stddev") {
		cfg.StdDev, _ = cmd.Flags().GetFloat64("stddev")
	}
	if cmd.Flags().Changed("style") {
		cfg.MessageStyle, _ = cmd.Flags().GetString("style")
	}
	if cmd.Flags().Changed("corpus") {
		cfg.Corpus, _ = cmd.Flags().GetString("corpus")
	}

	if s, _ := cmd.Flags().GetString("start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return fmt.Errorf("parsing --start: %w", err)
		}
		params.start = t
	}
	if s, _ := cmd.Flags().GetString("end"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return fmt.Errorf("parsing --end: %w", err)
		}
		params.end = t
	}

	if s, _ := cmd.Flags().GetString("pattern"); s != "" {
		p, err := parseInts(s)
		if err != nil {
			return fmt.Errorf("parsing --pattern: %w", err)
		}
		params.pattern = p
	}
	if s, _ := cmd.Flags().GetString("weights"); s != "" {
		fs, err := parseFloats(s)
		if err != nil {
			return fmt.Errorf("parsing --weights: %w", err)
		}
		w, err := toWeights(fs)
		if err != nil {
			return err
		}
		params.weights = w
	}
	return nil
}

// horizon resolves the date range. Explicit start/end win; otherwise the
// horizon is cfg.Days long and ends today.
func (g genParams) horizon() []time.Time {
	switch {
	case !g.start.IsZero() && !g.end.IsZero():
		return plan.HorizonRange(g.start, g.end)
	case !g.start.IsZero():
		return plan.Horizon(g.start, g.cfg.Days)
	case !g.end.IsZero():
		return plan.Horizon(g.end.AddDate(0, 0, -(g.cfg.Days-1)), g.cfg.Days)
	default:
		start := plan.Midnight(time.Now().UTC()).AddDate(0, 0, -(g.cfg.Days - 1))
		return plan.Horizon(start, g.cfg.Days)
	}
}

// buildPlan generates and populates a plan from the resolved parameters.
// The returned source is the RNG used for generation so execution can keep
// drawing from the same sequence.
func buildPlan(params genParams) (*plan.Plan, *rng.Source, error) {
	strat, err := plan.StrategyFromName(params.cfg.Strategy, params.cfg.Mean, params.cfg.StdDev, params.pattern, params.weights)
	if err != nil {
		return nil, nil, err
	}

	r := rng.New(params.cfg.Seed)
	p, err := plan.Generate(strat, params.horizon(), params.cfg.MaxPerDay, r)
	if err != nil {
		return nil, nil, err
	}

	src, err := message.NewSource(params.cfg.MessageStyle, params.cfg.Corpus, params.cfg.Seed)
	if err != nil {
		return nil, nil, err
	}
	message.Populate(p, src)
	return p, r, nil
}

func parseInts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func toWeights(fs []float64) ([7]float64, error) {
	var w [7]float64
	if len(fs) != 7 {
		return w, fmt.Errorf("weights need exactly 7 values, got %d", len(fs))
	}
	copy(w[:], fs)
	return w, nil
}
