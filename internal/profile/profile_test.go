package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/verdant-cli/verdant/internal/config"
)

func writeProfiles(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()
	path := writeProfiles(t, `
[profiles.steady]
strategy = "uniform"
days = 180
max_per_day = 4
message_style = "conventional"

[profiles.bursty]
strategy = "gaussian"
mean = 0.6
stddev = 0.15
seed = "garden"

[profiles.weekdays]
strategy = "pattern"
weights = [0.0, 1.0, 1.0, 1.0, 1.0, 1.0, 0.0]
`)

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(f.Profiles) != 3 {
		t.Fatalf("len = %d, want 3", len(f.Profiles))
	}

	steady, err := f.Get("steady")
	if err != nil {
		t.Fatal(err)
	}
	if steady.Strategy != "uniform" || steady.Days != 180 || steady.MaxPerDay != 4 {
		t.Errorf("steady = %+v", steady)
	}

	bursty, err := f.Get("bursty")
	if err != nil {
		t.Fatal(err)
	}
	if bursty.Mean != 0.6 || bursty.StdDev != 0.15 || bursty.Seed != "garden" {
		t.Errorf("bursty = %+v", bursty)
	}

	weekdays, err := f.Get("weekdays")
	if err != nil {
		t.Fatal(err)
	}
	if len(weekdays.Weights) != 7 || weekdays.Weights[0] != 0 || weekdays.Weights[1] != 1 {
		t.Errorf("weekdays.Weights = %v", weekdays.Weights)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, ErrNoFile) {
		t.Errorf("err = %v, want ErrNoFile", err)
	}
}

func TestLoad_BadTOML(t *testing.T) {
	t.Parallel()
	path := writeProfiles(t, "profiles = [broken")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestGet_NotFound(t *testing.T) {
	t.Parallel()
	f := &File{Profiles: map[string]Profile{}}
	if _, err := f.Get("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestApply_OverlaysOnlySetFields(t *testing.T) {
	t.Parallel()
	cfg := config.Config{
		Seed:         "keep",
		Strategy:     "weighted",
		Days:         365,
		MaxPerDay:    10,
		MessageStyle: "default",
	}

	p := Profile{Strategy: "gaussian", Mean: 0.7, Days: 90}
	p.Apply(&cfg)

	if cfg.Strategy != "gaussian" || cfg.Mean != 0.7 || cfg.Days != 90 {
		t.Errorf("set fields not applied: %+v", cfg)
	}
	if cfg.Seed != "keep" || cfg.MaxPerDay != 10 || cfg.MessageStyle != "default" {
		t.Errorf("unset fields clobbered: %+v", cfg)
	}
}
