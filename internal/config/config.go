// Package config loads the YAML document that drives a batch cleaning run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration document. Only the cleaning
// section is consumed here; other sections belong to other stages of the
// augmentation project and are ignored.
type Config struct {
	Cleaning Cleaning `yaml:"cleaning"`
}

// Cleaning configures one batch cleaning run.
type Cleaning struct {
	// PippaFile is the name of the line-delimited JSON input file,
	// resolved relative to DataDir.
	PippaFile string `yaml:"pippa_file"`
	// LanguageThreshold is the largest tolerated ratio of foreign turns,
	// in [0, 1].
	LanguageThreshold float64 `yaml:"language_threshold"`
	// DataDir is the directory holding the input file; cleaned output is
	// written next to it. Defaults to "data".
	DataDir string `yaml:"data_dir"`
	// Workers is the number of records cleaned concurrently. Zero or
	// negative means sequential processing.
	Workers int `yaml:"workers"`
}

// Validate checks if the cleaning configuration is usable.
func (c Cleaning) Validate() error {
	if c.PippaFile == "" {
		return errors.New("pippa_file must be set")
	}
	if c.LanguageThreshold < 0 || c.LanguageThreshold > 1 {
		return errors.New("language_threshold must be between 0 and 1")
	}
	return nil
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Cleaning.DataDir == "" {
		cfg.Cleaning.DataDir = "data"
	}
	if err := cfg.Cleaning.Validate(); err != nil {
		return nil, fmt.Errorf("cleaning config: %w", err)
	}
	return &cfg, nil
}

// InputPath returns the full path of the input file.
func (c Cleaning) InputPath() string {
	return filepath.Join(c.DataDir, c.PippaFile)
}

// OutputPath derives the output file path from the input file name: the
// base name up to its first dot, a "_cleaned" suffix, and the
// line-delimited JSON extension.
func (c Cleaning) OutputPath() string {
	base := filepath.Base(c.PippaFile)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return filepath.Join(c.DataDir, base+"_cleaned.jsonl")
}
