package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tamirms/lsdshuffle"
	streamerrors "github.com/tamirms/lsdshuffle/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lsdbench.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
keys = 5000
stepWidth = 11
partitions = 4
concurrency = 2
scratch = "anon"
tempDir = "/tmp/scratch"
generator = "murmur3"
seed = 42
input = "in.lsdk"
output = "out.lsdk"
verify = true
baseline = true
debug = true
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	want := Config{
		Keys:        5000,
		StepWidth:   11,
		Partitions:  4,
		Concurrency: 2,
		Scratch:     "anon",
		TempDir:     "/tmp/scratch",
		Generator:   "murmur3",
		Seed:        42,
		Input:       "in.lsdk",
		Output:      "out.lsdk",
		Verify:      true,
		Baseline:    true,
		Debug:       true,
	}
	if *cfg != want {
		t.Errorf("got %+v, want %+v", *cfg, want)
	}
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "partitions = 8\n"))
	if err != nil {
		t.Fatal(err)
	}
	def := DefaultConfig()
	if cfg.Partitions != 8 {
		t.Errorf("Partitions: got %d, want 8", cfg.Partitions)
	}
	if cfg.Keys != def.Keys || cfg.StepWidth != def.StepWidth || cfg.Seed != def.Seed {
		t.Errorf("unset keys lost their defaults: %+v", *cfg)
	}
}

func TestLoadConfigWithMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestLoadConfigWithInvalidTOML(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "keys = [unterminated\n"))
	if err == nil {
		t.Error("Expected error for invalid TOML")
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "keys = 10\npartitons = 4\n"))
	if err == nil || !strings.Contains(err.Error(), "partitons") {
		t.Errorf("Expected unknown key error naming partitons, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	cfg.Scratch = "gpu"
	cfg.Generator = "sha1"
	cfg.Keys = -1
	err := cfg.Validate()
	if !errors.Is(err, streamerrors.ErrUnknownScratch) {
		t.Errorf("expected ErrUnknownScratch, got %v", err)
	}
	for _, part := range []string{"sha1", "negative"} {
		if err == nil || !strings.Contains(err.Error(), part) {
			t.Errorf("error %v does not mention %s", err, part)
		}
	}
}

func TestConfigSorterOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StepWidth = 5
	cfg.Partitions = 3
	opts, err := cfg.SorterOptions()
	if err != nil {
		t.Fatal(err)
	}
	s, err := lsdshuffle.NewSorter(opts...)
	if err != nil {
		t.Fatal(err)
	}
	if s.StepWidth() != 5 || s.Partitions() != 3 {
		t.Errorf("got width %d partitions %d, want 5 3", s.StepWidth(), s.Partitions())
	}
}
