// Package config loads moz60check settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvTool overrides the configured tool path.
const EnvTool = "MOZ60CHECK_TOOL"

// ToolURL is the moz60tool repository.
const ToolURL = "https://gitlab.gnome.org/ptomato/moz60tool/tree/master"

// Config holds the settings for a run.
type Config struct {
	// Tool is the moz60tool executable.
	Tool string `yaml:"tool"`
	// Roots are the directories searched for installed extensions, in
	// precedence order.
	Roots []string `yaml:"roots"`
	// Gjs is the gjs executable used to detect the shell's SpiderMonkey
	// version.
	Gjs string `yaml:"gjs"`
	// Jobs bounds concurrent tool invocations per target. Zero means
	// GOMAXPROCS.
	Jobs int `yaml:"jobs"`
	// Presenter is the argv of the presentation process. Entries may use
	// {name}, {id} and {url}. Empty means this binary's present command.
	Presenter []string `yaml:"presenter"`
	// FailuresAsClean reports targets whose check could not run as clean.
	FailuresAsClean bool `yaml:"failures_as_clean"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
	// LogFormat is text, json or auto.
	LogFormat string `yaml:"log_format"`
	// WatchDebounce is the quiet period before a watched target is
	// re-checked.
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Roots:         DefaultRoots(),
		Gjs:           "gjs",
		LogLevel:      "info",
		LogFormat:     "auto",
		WatchDebounce: 500 * time.Millisecond,
	}
}

// DefaultRoots returns the user and system extension directories.
func DefaultRoots() []string {
	var roots []string
	if data := dataHome(); data != "" {
		roots = append(roots, filepath.Join(data, "gnome-shell", "extensions"))
	}
	return append(roots, "/usr/share/gnome-shell/extensions")
}

func dataHome() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultPath returns the config file location under the user config dir.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "moz60check", "config.yaml")
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error when optional is set.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // user-supplied config path
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && optional:
		default:
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if tool := os.Getenv(EnvTool); tool != "" {
		cfg.Tool = tool
	}

	for i, root := range cfg.Roots {
		cfg.Roots[i] = expandHome(root)
	}
	cfg.Tool = expandHome(cfg.Tool)
	cfg.Gjs = expandHome(cfg.Gjs)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must be >= 0, got %d", c.Jobs)
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("watch_debounce must be >= 0, got %s", c.WatchDebounce)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "auto", "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q: must be auto, text or json", c.LogFormat)
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
