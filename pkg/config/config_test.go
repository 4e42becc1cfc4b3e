package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()

	validConfig := `
default_model: gpt-4o
openai_key: test-key
tenant_id: contoso
session:
  provider: redis
  redis_addr: localhost:6379
  ttl: 1h
checkpoint:
  provider: file
  path: /var/lib/tellergo/checkpoints
maintenance:
  sweep_schedule: "0 * * * *"
  session_max_age: 48h
`

	validFile := filepath.Join(tmpDir, "valid.yaml")
	if err := os.WriteFile(validFile, []byte(validConfig), 0600); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	cfg, err := LoadConfig(validFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DefaultModel != "gpt-4o" {
		t.Errorf("expected model 'gpt-4o', got %s", cfg.DefaultModel)
	}
	if cfg.Session.Provider != "redis" || cfg.Session.TTL.Std() != time.Hour {
		t.Errorf("session config = %+v", cfg.Session)
	}
	if cfg.Checkpoint.Provider != "file" {
		t.Errorf("checkpoint provider = %s", cfg.Checkpoint.Provider)
	}
	if cfg.Maintenance.SessionMaxAge.Std() != 48*time.Hour {
		t.Errorf("session max age = %v", cfg.Maintenance.SessionMaxAge)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	tmpDir := t.TempDir()

	minimal := filepath.Join(tmpDir, "minimal.yaml")
	if err := os.WriteFile(minimal, []byte("openai_key: k\n"), 0600); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	cfg, err := LoadConfig(minimal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DefaultModel == "" {
		t.Error("default model should be filled in")
	}
	if cfg.Session.Provider != "memory" || cfg.Checkpoint.Provider != "memory" {
		t.Errorf("providers = %s/%s, want memory/memory", cfg.Session.Provider, cfg.Checkpoint.Provider)
	}
	if cfg.Maintenance.SweepSchedule != "@hourly" {
		t.Errorf("sweep schedule = %s", cfg.Maintenance.SweepSchedule)
	}
}

func TestLoadConfig_NonexistentFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()

	invalidFile := filepath.Join(tmpDir, "invalid.yaml")
	if err := os.WriteFile(invalidFile, []byte("default_model: gpt-4\nbad: [[[\n"), 0600); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	if _, err := LoadConfig(invalidFile); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidate_RejectsBadProviders(t *testing.T) {
	cfg := Default()
	cfg.Session.Provider = "cosmos"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown session provider")
	}

	cfg = Default()
	cfg.Checkpoint.Provider = "file"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for file provider without path")
	}

	cfg = Default()
	cfg.Session.Provider = "redis"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for redis provider without addr")
	}
}
