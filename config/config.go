// Package config resolves runtime settings from defaults, a YAML file,
// command flags and STATUSCORE_* environment variables, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nathoo/statuscore/engine"
	"github.com/nathoo/statuscore/engine/rules"
	"github.com/nathoo/statuscore/engine/telemetry"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "STATUSCORE_"

// Rules toggles the configurable built-in interactions.
type Rules struct {
	ExtinguishBurn bool     `mapstructure:"extinguish_burn" env:"EXTINGUISH_BURN"`
	ThawOnFire     bool     `mapstructure:"thaw_on_fire" env:"THAW_ON_FIRE"`
	LethalAmount   int      `mapstructure:"lethal_amount" env:"LETHAL_AMOUNT"`
	Disabled       []string `mapstructure:"disabled" env:"DISABLED" envSeparator:","`
}

// Config holds every runtime setting.
type Config struct {
	ContentDir  string `mapstructure:"content_dir" env:"CONTENT_DIR"`
	Scenario    string `mapstructure:"scenario" env:"SCENARIO"`
	SaveDir     string `mapstructure:"save_dir" env:"SAVE_DIR"`
	JournalPath string `mapstructure:"journal_path" env:"JOURNAL_PATH"`
	Seed        int64  `mapstructure:"seed" env:"SEED"`
	Trace       bool   `mapstructure:"trace" env:"TRACE"`
	Plain       bool   `mapstructure:"plain" env:"PLAIN"`
	Rules       Rules  `mapstructure:"rules" envPrefix:"RULES_"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// SetDefaults registers the built-in values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("content_dir", "content/core")
	v.SetDefault("scenario", "")
	v.SetDefault("save_dir", "saves")
	v.SetDefault("journal_path", "")
	v.SetDefault("seed", 0)
	v.SetDefault("trace", false)
	v.SetDefault("plain", false)
	v.SetDefault("rules.extinguish_burn", true)
	v.SetDefault("rules.thaw_on_fire", true)
	v.SetDefault("rules.lethal_amount", rules.DefaultLethalAmount)
	v.SetDefault("rules.disabled", []string{})
}

// BindFlags binds the flags a command defines to their config keys. Flags
// the command does not define are skipped.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	keys := map[string]string{
		"content":  "content_dir",
		"scenario": "scenario",
		"saves":    "save_dir",
		"journal":  "journal_path",
		"seed":     "seed",
		"trace":    "trace",
		"plain":    "plain",
	}
	for flag, key := range keys {
		f := flags.Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}

// Load reads the config file (path, or statuscore.yaml in the working
// directory or $HOME/.statuscore), then applies environment overrides.
// A missing default file is not an error; a missing explicit one is.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = viper.New()
		SetDefaults(v)
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("statuscore")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".statuscore"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	if c.ContentDir == "" {
		return errors.New("config: content_dir is required")
	}
	if c.Rules.LethalAmount < 1 {
		return fmt.Errorf("config: rules.lethal_amount must be positive, got %d", c.Rules.LethalAmount)
	}
	return nil
}

// EngineOptions maps the settings onto engine options.
func (c *Config) EngineOptions(logger telemetry.Logger) engine.Options {
	opts := engine.DefaultOptions()
	opts.Logger = logger
	opts.Rules = rules.Options{
		LethalAmount:   c.Rules.LethalAmount,
		ExtinguishBurn: c.Rules.ExtinguishBurn,
		ThawOnFire:     c.Rules.ThawOnFire,
	}
	opts.Disabled = append([]string(nil), c.Rules.Disabled...)
	return opts
}
