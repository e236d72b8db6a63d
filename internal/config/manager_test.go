package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	cfg, err := NewManager().Load(dir)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("Expected default port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Extraction.MaxAttempts != 3 {
		t.Errorf("Expected 3 max attempts, got %d", cfg.Extraction.MaxAttempts)
	}
	if cfg.RateLimit.InfoInterval != 2.0 {
		t.Errorf("Expected 2s info interval, got %f", cfg.RateLimit.InfoInterval)
	}
	if cfg.RateLimit.DownloadInterval != 3.0 {
		t.Errorf("Expected 3s download interval, got %f", cfg.RateLimit.DownloadInterval)
	}
	if cfg.Playlist.HardCeiling != 100 {
		t.Errorf("Expected hard ceiling 100, got %d", cfg.Playlist.HardCeiling)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
server:
  port: 9001
extraction:
  max_attempts: 5
rate_limit:
  info_interval_seconds: 0.5
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0644); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	cfg, err := NewManager().Load(dir)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Server.Port != 9001 {
		t.Errorf("Expected port 9001, got %d", cfg.Server.Port)
	}
	if cfg.Extraction.MaxAttempts != 5 {
		t.Errorf("Expected 5 max attempts, got %d", cfg.Extraction.MaxAttempts)
	}
	if cfg.RateLimit.InfoInterval != 0.5 {
		t.Errorf("Expected overridden info interval, got %f", cfg.RateLimit.InfoInterval)
	}
	// Untouched keys keep their defaults
	if cfg.Workers.Count != 4 {
		t.Errorf("Expected default worker count 4, got %d", cfg.Workers.Count)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	t.Setenv("YTX_SERVER_PORT", "9002")
	t.Setenv("YTX_PROXY_ENABLED", "true")

	cfg, err := NewManager().Load(dir)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Server.Port != 9002 {
		t.Errorf("Expected port 9002 from environment, got %d", cfg.Server.Port)
	}
	if !cfg.Proxy.Enabled {
		t.Error("Expected proxy enabled from environment")
	}
}
