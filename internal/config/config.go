package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for a verdant invocation.
// Values are populated from .verdant.yaml, VERDANT_* env vars, and CLI flags.
type Config struct {
	RepoDir          string  `mapstructure:"repo_dir"`
	Seed             string  `mapstructure:"seed"`
	Strategy         string  `mapstructure:"strategy"`
	Days             int     `mapstructure:"days"`
	MaxPerDay        int     `mapstructure:"max_per_day"`
	Mean             float64 `mapstructure:"mean"`
	StdDev           float64 `mapstructure:"stddev"`
	MessageStyle     string  `mapstructure:"message_style"`
	Corpus           string  `mapstructure:"corpus"`
	AuthorName       string  `mapstructure:"author_name"`
	AuthorEmail      string  `mapstructure:"author_email"`
	ActivityFile     string  `mapstructure:"activity_file"`
	Push             bool    `mapstructure:"push"`
	FailureThreshold int     `mapstructure:"failure_threshold"`
	TelemetryPath    string  `mapstructure:"telemetry_path"`
	HistoryDB        string  `mapstructure:"history_db"`
	NoTUI            bool    `mapstructure:"no_tui"`
	Verbose          bool    `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("repo_dir", ".")
	viper.SetDefault("seed", "")
	viper.SetDefault("strategy", "weighted")
	viper.SetDefault("days", 365)
	viper.SetDefault("max_per_day", 10)
	viper.SetDefault("mean", 0.5)
	viper.SetDefault("stddev", 0.2)
	viper.SetDefault("message_style", "default")
	viper.SetDefault("corpus", "")
	viper.SetDefault("author_name", "")
	viper.SetDefault("author_email", "")
	viper.SetDefault("activity_file", ".verdant")
	viper.SetDefault("push", false)
	viper.SetDefault("failure_threshold", 10)
	viper.SetDefault("telemetry_path", "")
	viper.SetDefault("history_db", "")
	viper.SetDefault("no_tui", false)
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}
