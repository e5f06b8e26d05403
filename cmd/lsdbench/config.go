package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tamirms/lsdshuffle"
	"github.com/tamirms/lsdshuffle/internal/keygen"
)

const (
	defaultKeys = 1 << 24
	defaultSeed = 0x1234
)

// Config holds every lsdbench setting. Values come from an optional TOML
// file, and any flag set on the command line overrides the file.
type Config struct {
	Keys        int    `toml:"keys"`
	StepWidth   int    `toml:"stepWidth"`
	Partitions  int    `toml:"partitions"`
	Concurrency int    `toml:"concurrency"`
	Scratch     string `toml:"scratch"`
	TempDir     string `toml:"tempDir"`
	Generator   string `toml:"generator"`
	Seed        uint64 `toml:"seed"`
	Input       string `toml:"input"`
	Output      string `toml:"output"`
	Verify      bool   `toml:"verify"`
	Baseline    bool   `toml:"baseline"`
	Debug       bool   `toml:"debug"`
}

// DefaultConfig returns the settings used when neither a file nor a flag
// sets a value.
func DefaultConfig() *Config {
	return &Config{
		Keys:       defaultKeys,
		StepWidth:  8,
		Partitions: 2,
		Scratch:    "heap",
		Generator:  "xxh3",
		Seed:       defaultSeed,
	}
}

// LoadConfig reads a TOML config file on top of DefaultConfig. Unknown keys
// are an error so a typo cannot silently fall back to a default.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Validate checks the settings that NewSorter does not.
func (c *Config) Validate() error {
	var errs []error
	if c.Keys < 0 {
		errs = append(errs, fmt.Errorf("keys must not be negative, got %d", c.Keys))
	}
	if _, err := lsdshuffle.ParseScratchKind(c.Scratch); err != nil {
		errs = append(errs, err)
	}
	if _, err := keygen.ParseKind(c.Generator); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SorterOptions translates the config into sorter options.
func (c *Config) SorterOptions() ([]lsdshuffle.Option, error) {
	scratch, err := lsdshuffle.ParseScratchKind(c.Scratch)
	if err != nil {
		return nil, err
	}
	return []lsdshuffle.Option{
		lsdshuffle.WithStepWidth(c.StepWidth),
		lsdshuffle.WithPartitions(c.Partitions),
		lsdshuffle.WithConcurrency(c.Concurrency),
		lsdshuffle.WithScratch(scratch),
		lsdshuffle.WithTempDir(c.TempDir),
	}, nil
}

// KeyGenerator returns the configured key generator.
func (c *Config) KeyGenerator() (*keygen.Generator, error) {
	kind, err := keygen.ParseKind(c.Generator)
	if err != nil {
		return nil, err
	}
	return keygen.New(kind, c.Seed), nil
}
