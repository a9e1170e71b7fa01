package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigRoundTrip(t *testing.T) {
	path := ConfigPath(filepath.Join(t.TempDir(), "rolodex"))

	want := &Config{
		Dir:       "/data/rolodex",
		Backend:   "bolt",
		BatchSize: 250,
		LogLevel:  "debug",
	}
	if err := SaveConfig(want, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if *got != *want {
		t.Errorf("round trip changed config: got %+v, want %+v", got, want)
	}
}

func TestLoadConfigPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("backend: bolt\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Backend != "bolt" {
		t.Errorf("Backend = %q, want bolt", cfg.Backend)
	}
	// Unset keys keep their defaults
	if cfg.BatchSize != DefaultConfig().BatchSize || cfg.LogLevel != DefaultConfig().LogLevel {
		t.Errorf("defaults not preserved: %+v", cfg)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing file must fail")
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("backend: [oops\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("malformed YAML must fail")
	}
}
