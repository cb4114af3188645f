// Package config loads statboard settings.
//
// Precedence (highest to lowest): flags > STATBOARD_ env vars > config file
// (statboard.yaml) > defaults.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"golang.org/x/text/language"

	"github.com/spektr-org/statboard/engine"
)

const (
	DefaultFile    = "statboard.yaml"
	DefaultSavedDB = "statboard.db"
	DefaultOutput  = "table"
	DefaultListen  = ":8080"
	DefaultLocale  = "he"
	DefaultTopN    = 10
	DefaultTimeout = 30 * time.Second

	envPrefix = "STATBOARD_"
)

// Config holds every statboard setting.
type Config struct {
	BaseURL     string        `koanf:"base_url"` // statistics API; wins over data_dir
	DataDir     string        `koanf:"data_dir"` // local dataset files
	SavedDB     string        `koanf:"saved_db"`
	Locale      string        `koanf:"locale"`
	TopN        int           `koanf:"top_n"`
	HTTPTimeout time.Duration `koanf:"http_timeout"`
	Listen      string        `koanf:"listen"`
	Output      string        `koanf:"output"`
	Verbose     bool          `koanf:"verbose"`
	ShareBase   string        `koanf:"share_base"` // origin used in share links

	// File is the config file that was read, "" when none.
	File string `koanf:"-"`
}

// Load reads the configuration. cfgFile may be empty: statboard.yaml in the
// working directory is used when present. Only flags explicitly set
// override other sources.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"saved_db":     DefaultSavedDB,
		"locale":       DefaultLocale,
		"top_n":        DefaultTopN,
		"http_timeout": DefaultTimeout.String(),
		"listen":       DefaultListen,
		"output":       DefaultOutput,
		"verbose":      false,
		"share_base":   "http://localhost" + DefaultListen,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := cfgFile
	if used == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			used = DefaultFile
		}
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment: STATBOARD_BASE_URL -> base_url
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.TopN <= 0 {
		return fmt.Errorf("top_n must be positive, got %d", c.TopN)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout must not be negative, got %s", c.HTTPTimeout)
	}
	switch c.Output {
	case "table", "json":
	default:
		return fmt.Errorf("output must be table or json, got %q", c.Output)
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("invalid locale %q: %w", c.Locale, err)
	}
	return nil
}

// EngineOptions converts the settings the engine reads.
func (c *Config) EngineOptions() []engine.Option {
	opts := []engine.Option{engine.WithDefaultTopN(c.TopN)}
	if tag, err := language.Parse(c.Locale); err == nil {
		opts = append(opts, engine.WithLocale(tag))
	}
	return opts
}

// LogLevel is debug when verbose, info otherwise.
func (c *Config) LogLevel() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
