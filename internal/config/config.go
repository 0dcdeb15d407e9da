// Package config loads timid configuration from defaults, a config file,
// TIMID_ environment variables and command-line flags, in increasing order
// of precedence.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Default configuration values.
const (
	DefaultColor    = "auto"
	DefaultLogLevel = "warn"
	DefaultOutput   = "text"
	DefaultPrompt   = "Timid> "
	DefaultJobs     = 4

	EnvPrefix = "TIMID_"
)

// configNames are searched in the working directory when no file is given.
var configNames = []string{"timid.yaml", "timid.yml", "timid.toml"}

// Config holds all CLI configuration options.
type Config struct {
	Color       string `koanf:"color"`     // auto, always, never
	LogLevel    string `koanf:"log_level"` // debug, info, warn, error
	Output      string `koanf:"output"`    // text, json, yaml
	EchoTokens  bool   `koanf:"echo_tokens"`
	HistoryFile string `koanf:"history_file"`
	Prompt      string `koanf:"prompt"`
	Jobs        int    `koanf:"jobs"`

	// FileUsed is the config file that was loaded, if any.
	FileUsed string `koanf:"-"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Color:    DefaultColor,
		LogLevel: DefaultLogLevel,
		Output:   DefaultOutput,
		Prompt:   DefaultPrompt,
		Jobs:     DefaultJobs,
	}
}

// findConfigFile returns explicit, or the first config file present in the
// working directory, or "".
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load loads configuration. cfgFile may be empty; flags may be nil. Only
// flags that were explicitly set override lower layers.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	def := Default()
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"color":        def.Color,
		"log_level":    def.LogLevel,
		"output":       def.Output,
		"echo_tokens":  def.EchoTokens,
		"history_file": defaultHistoryFile(),
		"prompt":       def.Prompt,
		"jobs":         def.Jobs,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := loadFile(k, used); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment: TIMID_LOG_LEVEL -> log_level
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
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
	cfg.FileUsed = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadFile loads a YAML file through koanf, or a TOML file decoded first
// into a plain map.
func loadFile(k *koanf.Koanf, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		var raw map[string]interface{}
		if _, err := toml.DecodeFile(path, &raw); err != nil {
			return err
		}
		return k.Load(confmap.Provider(raw, "."), nil)
	}
	return k.Load(file.Provider(path), yaml.Parser())
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".timid_history")
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color %q: want auto, always or never", c.Color)
	}
	switch c.Output {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("invalid output %q: want text, json or yaml", c.Output)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Jobs < 1 {
		return fmt.Errorf("invalid jobs %d: must be at least 1", c.Jobs)
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
