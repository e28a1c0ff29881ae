package config

import (
	"fmt"
	"os/exec"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
)

// Validate checks the configuration for structural problems. It does not
// touch the filesystem beyond looking up the git executable.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("git_path", c.GitPath, gitExecutableExists),
		criterio.Run("review.max_file_bytes", c.Review.MaxFileBytes, positive),
		criterio.Run("review.max_diff_lines", c.Review.MaxDiffLines, positive),
		criterio.Run("review.cache_capacity", c.Review.CacheCapacity, positive),
		criterio.Run("review.scroll_margin", c.Review.ScrollMargin, nonNegative),
		c.validateExcludes(),
	)
}

func (c *Config) validateExcludes() error {
	var errs criterio.FieldErrorsBuilder
	for i, pattern := range c.Review.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("review.exclude[%d]", i), fmt.Errorf("invalid glob pattern %q", pattern))
		}
	}
	return errs.ToError()
}

func gitExecutableExists(path string) error {
	if path == "" {
		return fmt.Errorf("cannot be empty")
	}
	if _, err := exec.LookPath(path); err != nil {
		return fmt.Errorf("executable not found: %s", path)
	}
	return nil
}

func positive(v int) error {
	if v <= 0 {
		return fmt.Errorf("must be greater than zero, got %d", v)
	}
	return nil
}

func nonNegative(v int) error {
	if v < 0 {
		return fmt.Errorf("must not be negative, got %d", v)
	}
	return nil
}
