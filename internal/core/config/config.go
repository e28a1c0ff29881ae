// Package config handles configuration loading and validation for comb.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	GitPath     string       `yaml:"git_path"`
	CopyCommand string       `yaml:"copy_command"` // shell command fed the review on stdin; empty uses the system clipboard
	Review      ReviewConfig `yaml:"review"`
	TUI         TUIConfig    `yaml:"tui"`
}

// ReviewConfig holds thresholds for the diff engine and viewport. They are
// plumbed into the constructors rather than read as globals so tests can vary
// them freely.
type ReviewConfig struct {
	// MaxFileBytes is the largest file the engine will diff. Files over the
	// limit stay listed but render no lines.
	MaxFileBytes int `yaml:"max_file_bytes"`
	// MaxDiffLines caps the number of diff lines per file, protecting the
	// renderer from pathological changesets.
	MaxDiffLines int `yaml:"max_diff_lines"`
	// CacheCapacity is the row cache size of the diff viewport.
	CacheCapacity int `yaml:"cache_capacity"`
	// ScrollMargin is the number of rows kept between the cursor and the
	// viewport edge before auto-scrolling kicks in.
	ScrollMargin int `yaml:"scroll_margin"`
	// Exclude lists doublestar glob patterns for paths to omit from the
	// changed-file list (e.g. "vendor/**").
	Exclude []string `yaml:"exclude"`
}

// TUIConfig holds appearance settings.
type TUIConfig struct {
	Theme       string `yaml:"theme"`
	SyntaxStyle string `yaml:"syntax_style"` // chroma style name
}

// Default returns the configuration defaults applied before loading a file.
func Default() *Config {
	return &Config{
		GitPath: "git",
		Review: ReviewConfig{
			MaxFileBytes:  4 * 1024 * 1024,
			MaxDiffLines:  5000,
			CacheCapacity: 2048,
			ScrollMargin:  3,
		},
		TUI: TUIConfig{
			Theme:       "tokyo-night",
			SyntaxStyle: "monokai",
		},
	}
}

// Load reads the config file at path, applying defaults for missing values.
// A missing file is not an error; defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, nil
			}
			return nil, fmt.Errorf("read config: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "comb", "config.yml")
}

// Excluded reports whether path matches any configured exclude glob.
// Invalid patterns are rejected at validation time, so match errors are
// treated as non-matches here.
func (c *Config) Excluded(path string) bool {
	for _, pattern := range c.Review.Exclude {
		ok, err := doublestar.Match(pattern, path)
		if err == nil && ok {
			return true
		}
	}
	return false
}
