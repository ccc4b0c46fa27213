// Package config loads watchdemo settings from a file, WATCHDEMO_* environment
// variables and command-line flags using viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultConfigName = "watchdemo"
	defaultConfigDir  = ".watchdemo"
	envPrefix         = "WATCHDEMO"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

var (
	scenarios = []string{"single", "mixed", "pingpong", "pipeline", "all"}
	formats   = []string{"table", "json", "yaml"}
)

type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Run     RunConfig     `mapstructure:"run"`
	Output  OutputConfig  `mapstructure:"output"`
}

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

type MetricsConfig struct {
	// Addr is the listen address for /metrics; empty disables the server.
	Addr string `mapstructure:"addr"`
}

type RunConfig struct {
	Scenario   string `mapstructure:"scenario"`
	Iterations int    `mapstructure:"iterations"`
	// StopTimeout bounds Stop; zero waits for natural completion.
	StopTimeout time.Duration `mapstructure:"stop_timeout"`
}

type OutputConfig struct {
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.development", false)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("run.scenario", "all")
	v.SetDefault("run.iterations", 5)
	v.SetDefault("run.stop_timeout", "0s")
	v.SetDefault("output.format", "table")
	v.SetDefault("output.no_color", false)
}

// Load reads configuration into a Config. cfgFile, when set, must exist;
// otherwise watchdemo.yaml is looked up in the working directory and in
// $HOME/.watchdemo, and its absence is not an error. Flags must already be
// bound to v by the caller.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(defaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, defaultConfigDir))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if !slices.Contains(scenarios, c.Run.Scenario) {
		return fmt.Errorf("%w: run.scenario %q (want one of %s)", ErrInvalidConfig, c.Run.Scenario, strings.Join(scenarios, ", "))
	}
	if c.Run.Iterations <= 0 {
		return fmt.Errorf("%w: run.iterations must be positive, got %d", ErrInvalidConfig, c.Run.Iterations)
	}
	if c.Run.StopTimeout < 0 {
		return fmt.Errorf("%w: run.stop_timeout must not be negative", ErrInvalidConfig)
	}
	if !slices.Contains(formats, c.Output.Format) {
		return fmt.Errorf("%w: output.format %q (want one of %s)", ErrInvalidConfig, c.Output.Format, strings.Join(formats, ", "))
	}
	return nil
}
