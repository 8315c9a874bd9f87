// Package config loads project-level wvrun settings from a .wvrun.yaml
// file found in the working directory or any parent. Flags override file
// values; the file overrides the built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file searched for upward from
// the working directory.
const FileName = ".wvrun.yaml"

// Config is the project configuration.
type Config struct {
	// TimeoutSeconds is the watchdog inactivity limit.
	TimeoutSeconds int `yaml:"timeout"`
	// LogDir enables per-test log files when non-empty.
	LogDir string `yaml:"logdir"`
	// JUnit is a path to write a JUnit XML report to, when non-empty.
	JUnit string `yaml:"junit"`
	// Prefix is a regular expression matched ahead of structured lines,
	// for transport-added prefixes.
	Prefix string `yaml:"prefix"`
	// Verbosity is "summary", "normal" or "verbose".
	Verbosity string `yaml:"verbosity"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		TimeoutSeconds: 100,
		Verbosity:      "normal",
	}
}

// Load reads the nearest .wvrun.yaml, falling back to defaults when no
// file exists. A present but malformed file is an error; silently
// ignoring it would mask typos.
func Load() (*Config, error) {
	cfg := Default()
	path := findConfigFile()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 - discovered config path
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// findConfigFile looks for .wvrun.yaml in the current and parent
// directories.
func findConfigFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
