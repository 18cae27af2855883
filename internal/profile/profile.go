// Package profile loads named generation presets from a TOML file. A profile
// bundles the generation knobs (strategy, seed, horizon, messages) so that
// recurring setups can be invoked by name instead of a wall of flags.
package profile

import (
	"errors"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/verdant-cli/verdant/internal/config"
)

var (
	// ErrNoFile indicates the profile file does not exist.
	ErrNoFile = errors.New("profile file not found")

	// ErrNotFound indicates the requested profile name has no entry.
	ErrNotFound = errors.New("profile not defined")
)

// Profile is one named preset. Zero values mean "not set" and leave the
// corresponding config value alone when applied.
type Profile struct {
	Seed         string    `toml:"seed"`
	Strategy     string    `toml:"strategy"`
	Days         int       `toml:"days"`
	MaxPerDay    int       `toml:"max_per_day"`
	Mean         float64   `toml:"mean"`
	StdDev       float64   `toml:"stddev"`
	Pattern      []int     `toml:"pattern"`
	Weights      []float64 `toml:"weights"`
	MessageStyle string    `toml:"message_style"`
	Corpus       string    `toml:"corpus"`
}

// File is the on-disk shape: a table of profiles keyed by name.
type File struct {
	Profiles map[string]Profile `toml:"profiles"`
}

// Load parses a profile file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoFile, path)
		}
		return nil, fmt.Errorf("reading profile file: %w", err)
	}

	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &f, nil
}

// Get returns the named profile or ErrNotFound.
func (f *File) Get(name string) (Profile, error) {
	p, ok := f.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return p, nil
}

// Apply overlays the profile's set fields onto cfg. Flags parsed after the
// profile still win because cobra applies them last.
func (p Profile) Apply(cfg *config.Config) {
	if p.Seed != "" {
		cfg.Seed = p.Seed
	}
	if p.Strategy != "" {
		cfg.Strategy = p.Strategy
	}
	if p.Days > 0 {
		cfg.Days = p.Days
	}
	if p.MaxPerDay > 0 {
		cfg.MaxPerDay = p.MaxPerDay
	}
	if p.Mean > 0 {
		cfg.Mean = p.Mean
	}
	if p.StdDev > 0 {
		cfg.StdDev = p.StdDev
	}
	if p.MessageStyle != "" {
		cfg.MessageStyle = p.MessageStyle
	}
	if p.Corpus != "" {
		cfg.Corpus = p.Corpus
	}
}
