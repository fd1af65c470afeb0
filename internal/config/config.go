package config

import (
	"errors"
	"runtime"
	"strconv"
	"strings"
)

// Config holds one run's settings. Values come from the command line; the
// engine reads no environment variables.
type Config struct {
	InputPath    string
	Workers      int
	SnapshotPath string
	Verbose      bool
}

// Default returns the baseline configuration, with the worker count sized to
// available hardware concurrency.
func Default() Config {
	return Config{
		Workers: runtime.NumCPU(),
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var problems []string

	if c.InputPath == "" {
		problems = append(problems, "input path is required")
	}
	if c.Workers < 1 {
		problems = append(problems, "workers must be at least 1, got "+strconv.Itoa(c.Workers))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}

	return nil
}
