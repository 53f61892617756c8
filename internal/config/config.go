// Package config handles facegen configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid")

// Config holds all generator settings.
type Config struct {
	Sprite     SpriteConfig     `yaml:"sprite"`
	Families   FamiliesConfig   `yaml:"families"`
	Elements   ElementsConfig   `yaml:"elements"`
	Generation GenerationConfig `yaml:"generation"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SpriteConfig names the input sprite and how its groups are indexed.
type SpriteConfig struct {
	Path       string `yaml:"path"`
	Addressing string `yaml:"addressing"` // layer-order or group-count
}

// FamiliesConfig locates the group-family file.
type FamiliesConfig struct {
	Path string `yaml:"path"`
}

// ElementsConfig overrides element weights: group name, then element name.
type ElementsConfig struct {
	Weights map[string]map[string]float64 `yaml:"weights,omitempty"`
}

// GenerationConfig controls a batch.
type GenerationConfig struct {
	Count   int     `yaml:"count"`
	Seed    *uint64 `yaml:"seed,omitempty"` // nil picks a fresh seed per run
	Grid    int     `yaml:"grid"`           // columns; 0 writes individual files
	Scale   int     `yaml:"scale"`
	Filter  string  `yaml:"filter"`
	OnError string  `yaml:"on_error"` // abort or skip
}

// OutputConfig controls written images.
type OutputConfig struct {
	Path       string `yaml:"path"`
	Paletted   bool   `yaml:"paletted"`
	Background string `yaml:"background"`
	Manifest   string `yaml:"manifest"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the generator's default values.
func Default() *Config {
	return &Config{
		Families: FamiliesConfig{
			Path: "facebuilder.json",
		},
		Generation: GenerationConfig{
			Count:   5,
			Scale:   2,
			Filter:  "nearest",
			OnError: "abort",
		},
		Output: OutputConfig{
			Path:       "output_image.png",
			Background: "#ffffff",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks the numeric settings. Enumerated values are checked by
// the packages that parse them.
func (c *Config) Validate() error {
	g := c.Generation
	switch {
	case g.Count < 1:
		return fmt.Errorf("%w: generation.count must be at least 1, got %d", ErrInvalid, g.Count)
	case g.Grid < 0:
		return fmt.Errorf("%w: generation.grid must not be negative, got %d", ErrInvalid, g.Grid)
	case g.Scale < 1:
		return fmt.Errorf("%w: generation.scale must be at least 1, got %d", ErrInvalid, g.Scale)
	case c.Output.Path == "":
		return fmt.Errorf("%w: output.path is empty", ErrInvalid)
	}
	return nil
}
