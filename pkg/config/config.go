// Package config loads interpreter settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = ".pyint.yaml"

// Config holds interpreter settings. Command-line flags override it.
type Config struct {
	// MaxDepth bounds the call depth; 0 means unlimited.
	MaxDepth int `yaml:"max_depth"`
	// Trace logs calls, returns and breaks to stderr.
	Trace bool `yaml:"trace"`
	// DumpFile receives the token table when set.
	DumpFile string `yaml:"dump_file"`
	// Color is one of auto, always or never.
	Color string `yaml:"color"`
	// HistoryFile keeps REPL history between sessions.
	HistoryFile string `yaml:"history_file"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		MaxDepth: 1000,
		Color:    "auto",
	}
}

// ValidationError lists every problem found in a config file.
type ValidationError struct {
	Path   string
	Issues []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "config: %s is invalid:", e.Path)
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Load parses the YAML file at path on top of Default. An empty file yields
// the defaults; unknown keys are rejected.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	cfg := Default()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDir loads DefaultFile from dir, falling back to Default when the file
// does not exist.
func LoadDir(dir string) (*Config, error) {
	path := filepath.Join(dir, DefaultFile)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) validate(path string) error {
	var errs ValidationError
	if c.MaxDepth < 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("max_depth must be >= 0, got %d", c.MaxDepth))
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		errs.Issues = append(errs.Issues, fmt.Sprintf("color must be auto, always or never, got %q", c.Color))
	}
	if len(errs.Issues) > 0 {
		errs.Path = path
		return &errs
	}
	return nil
}
