// Package config provides configuration management for liquify using Viper
// for loading from files, environment variables, and command-line flags.
//
// The configuration file is YAML (`.liquify.yml` by default) and every key
// can be overridden with a LIQUIFY_ prefixed environment variable. It covers
// the theme source tree, the build output tree, expansion settings, watch
// mode and settings synchronisation.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	lerrors "github.com/conneroisu/liquify/internal/errors"
	"github.com/conneroisu/liquify/internal/expander"
	"github.com/spf13/viper"
)

// Dialect names accepted by expansion.dialect.
const (
	DialectMarker     = expander.DialectMarker
	DialectExpression = expander.DialectExpression
)

// EnvPrefix prefixes environment variable overrides, LIQUIFY_OUTPUT_DIR
// for output.dir.
const EnvPrefix = "LIQUIFY"

var envKeyReplacer = strings.NewReplacer(".", "_")

// Keys lists every configuration key.
var Keys = []string{
	"source.dir", "source.components",
	"output.dir", "output.folders",
	"expansion.dialect", "expansion.max_passes", "expansion.extension",
	"watch.debounce", "watch.ignore",
	"sync.enabled", "sync.files",
}

// BindEnv makes every key in Keys overridable from the environment.
func BindEnv() error {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()
	for _, key := range Keys {
		if err := viper.BindEnv(key); err != nil {
			return fmt.Errorf("binding %s: %w", key, err)
		}
	}
	return nil
}

// DefaultOutputFolders are created under the output directory on first build.
var DefaultOutputFolders = []string{
	"assets", "config", "layout", "locales", "sections", "snippets", "templates",
}

type Config struct {
	Source    SourceConfig    `mapstructure:"source" yaml:"source" json:"source"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output" json:"output"`
	Expansion ExpansionConfig `mapstructure:"expansion" yaml:"expansion" json:"expansion"`
	Watch     WatchConfig     `mapstructure:"watch" yaml:"watch" json:"watch"`
	Sync      SyncConfig      `mapstructure:"sync" yaml:"sync" json:"sync"`
}

type SourceConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir" json:"dir"`
	// Components is relative to Dir.
	Components string `mapstructure:"components" yaml:"components" json:"components"`
}

type OutputConfig struct {
	Dir     string   `mapstructure:"dir" yaml:"dir" json:"dir"`
	Folders []string `mapstructure:"folders" yaml:"folders" json:"folders"`
}

type ExpansionConfig struct {
	Dialect   string `mapstructure:"dialect" yaml:"dialect" json:"dialect"`
	MaxPasses int    `mapstructure:"max_passes" yaml:"max_passes" json:"max_passes"`
	Extension string `mapstructure:"extension" yaml:"extension" json:"extension"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce" json:"debounce"`
	// Ignore holds glob patterns matched against each path segment.
	Ignore []string `mapstructure:"ignore" yaml:"ignore" json:"ignore"`
}

type SyncConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	// Files are relative to both the source and the output directory.
	Files []string `mapstructure:"files" yaml:"files" json:"files"`
}

// ComponentsDir returns the directory component sources are scanned from.
func (c *Config) ComponentsDir() string {
	return filepath.Join(c.Source.Dir, c.Source.Components)
}

// Load builds a Config from the current viper state, applying defaults for
// anything left unset, and validates it.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, lerrors.NewConfigError("decoding configuration", err)
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, lerrors.NewConfigError("invalid configuration", err)
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Source.Dir == "" {
		config.Source.Dir = "./src"
	}
	if config.Source.Components == "" {
		config.Source.Components = "components"
	}

	if config.Output.Dir == "" {
		config.Output.Dir = "./build"
	}
	// Handle folders set via viper (workaround for viper slice handling)
	if viper.IsSet("output.folders") && len(config.Output.Folders) == 0 {
		config.Output.Folders = viper.GetStringSlice("output.folders")
	}
	if !viper.IsSet("output.folders") {
		config.Output.Folders = append([]string(nil), DefaultOutputFolders...)
	}

	if config.Expansion.Dialect == "" {
		config.Expansion.Dialect = DialectMarker
	}
	if config.Expansion.MaxPasses == 0 {
		config.Expansion.MaxPasses = 100
	}
	if config.Expansion.Extension == "" {
		config.Expansion.Extension = ".liquid"
	}

	if config.Watch.Debounce == 0 {
		config.Watch.Debounce = 100 * time.Millisecond
	}
	if !viper.IsSet("watch.ignore") {
		config.Watch.Ignore = []string{".*"}
	}

	if !viper.IsSet("sync.enabled") {
		config.Sync.Enabled = true
	}
	if !viper.IsSet("sync.files") {
		config.Sync.Files = []string{"config/settings_data.json"}
	}
}

// validateConfig validates configuration values for correctness.
func validateConfig(config *Config) error {
	if err := validatePath(config.Source.Dir); err != nil {
		return fmt.Errorf("source.dir: %w", err)
	}
	if err := validatePath(config.Source.Components); err != nil {
		return fmt.Errorf("source.components: %w", err)
	}
	if err := validatePath(config.Output.Dir); err != nil {
		return fmt.Errorf("output.dir: %w", err)
	}
	if filepath.Clean(config.Source.Dir) == filepath.Clean(config.Output.Dir) {
		return fmt.Errorf("source.dir and output.dir are both %s", config.Source.Dir)
	}
	for _, folder := range config.Output.Folders {
		if err := validatePath(folder); err != nil {
			return fmt.Errorf("output.folders %q: %w", folder, err)
		}
	}

	switch config.Expansion.Dialect {
	case DialectMarker, DialectExpression:
	default:
		return fmt.Errorf("expansion.dialect %q is not %q or %q",
			config.Expansion.Dialect, DialectMarker, DialectExpression)
	}
	if config.Expansion.MaxPasses < 1 {
		return fmt.Errorf("expansion.max_passes must be positive, got %d", config.Expansion.MaxPasses)
	}
	if !strings.HasPrefix(config.Expansion.Extension, ".") || len(config.Expansion.Extension) < 2 {
		return fmt.Errorf("expansion.extension %q must start with '.'", config.Expansion.Extension)
	}

	if config.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", config.Watch.Debounce)
	}
	for _, pattern := range config.Watch.Ignore {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("watch.ignore %q: %w", pattern, err)
		}
	}

	for _, file := range config.Sync.Files {
		if err := validatePath(file); err != nil {
			return fmt.Errorf("sync.files %q: %w", file, err)
		}
	}

	return nil
}

// validatePath rejects empty paths and paths that climb out of their root.
func validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.ToSlash(filepath.Clean(path))
	for _, segment := range strings.Split(cleanPath, "/") {
		if segment == ".." {
			return fmt.Errorf("path contains traversal: %s", path)
		}
	}

	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("path contains a NUL byte")
	}

	return nil
}
