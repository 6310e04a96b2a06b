package app

import (
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "http://localhost:8080/api" {
		t.Fatalf("base url = %q", cfg.BaseURL)
	}
	if cfg.StorageDriver != "file" {
		t.Fatalf("storage driver = %q", cfg.StorageDriver)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("AICHAT_BASE_URL", "https://api.example.com/api/")
	t.Setenv("AICHAT_DEBUG", "1")
	t.Setenv("AICHAT_STORAGE_DRIVER", "memory")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "https://api.example.com/api" {
		t.Fatalf("trailing slash should be trimmed: %q", cfg.BaseURL)
	}
	if !cfg.Debug {
		t.Fatalf("expected debug on")
	}
	if cfg.StorageDriver != "memory" {
		t.Fatalf("storage driver = %q", cfg.StorageDriver)
	}
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("AICHAT_STORAGE_DRIVER", "cassandra")
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	in := DefaultConfig()
	in.BaseURL = "https://api.example.com/api"
	in.Debug = true

	if err := SaveConfig(in, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.BaseURL != in.BaseURL || !out.Debug {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}
