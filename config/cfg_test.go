package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
	if cfg.Include.Unwrap {
		t.Error("Unwrap must be off by default")
	}
	if cfg.Include.MaxDepth != 16 {
		t.Errorf("MaxDepth = %d, want 16", cfg.Include.MaxDepth)
	}
	if cfg.Viewport.Height != 800 || cfg.Viewport.Width != 1280 || cfg.Viewport.LineHeight != 20 {
		t.Errorf("Viewport = %+v", cfg.Viewport)
	}
	if cfg.Fetch.Timeout != 30*time.Second {
		t.Errorf("Fetch.Timeout = %v, want 30s", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.Concurrency < 1 {
		t.Errorf("Fetch.Concurrency = %d", cfg.Fetch.Concurrency)
	}
	if !cfg.Fetch.AllowFile {
		t.Error("AllowFile must be on by default")
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	configContent := `version: 1
include:
  unwrap: true
  max_depth: 3
viewport:
  height: 600
fetch:
  timeout: 5s
  concurrency: 2
  auth_token: "Bearer xyz"
  headers:
    X-Site: docs
logging:
  console:
    level: debug
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if !cfg.Include.Unwrap || cfg.Include.MaxDepth != 3 {
		t.Errorf("Include = %+v", cfg.Include)
	}
	if cfg.Viewport.Height != 600 {
		t.Errorf("Viewport.Height = %v, want 600", cfg.Viewport.Height)
	}
	// untouched values come from defaults
	if cfg.Viewport.Width != 1280 {
		t.Errorf("Viewport.Width = %v, want 1280", cfg.Viewport.Width)
	}
	if cfg.Fetch.Timeout != 5*time.Second || cfg.Fetch.Concurrency != 2 {
		t.Errorf("Fetch = %+v", cfg.Fetch)
	}
	if cfg.Fetch.AuthToken.Value() != "Bearer xyz" {
		t.Errorf("AuthToken not loaded")
	}
	if cfg.Fetch.Headers["X-Site"] != "docs" {
		t.Errorf("Headers = %v", cfg.Fetch.Headers)
	}
	if cfg.Logging.ConsoleLogger.Level != "debug" {
		t.Errorf("console level = %q", cfg.Logging.ConsoleLogger.Level)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantSub string
	}{
		{name: "unknown field", content: "version: 1\nbogus: true\n", wantSub: "bogus"},
		{name: "bad version", content: "version: 2\n", wantSub: "Version"},
		{name: "bad concurrency", content: "version: 1\nfetch:\n  concurrency: 0\n", wantSub: "Concurrency"},
		{name: "bad log level", content: "version: 1\nlogging:\n  console:\n    level: loud\n", wantSub: "Level"},
		{name: "invalid yaml", content: "version: [1\n", wantSub: "decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write config file: %v", err)
			}
			_, err := LoadConfiguration(path)
			if err == nil {
				t.Fatal("LoadConfiguration() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	if _, err := LoadConfiguration(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadConfiguration() expected error for absent file")
	}
}

func TestDump_HidesSecrets(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Fetch.AuthToken = "top-secret"

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if strings.Contains(string(data), "top-secret") {
		t.Error("Dump() leaked auth token")
	}

	// dumped configuration must be loadable again
	path := filepath.Join(t.TempDir(), "dumped.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	if _, err := LoadConfiguration(path); err != nil {
		t.Errorf("LoadConfiguration(dumped) error = %v", err)
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if !strings.Contains(string(data), "max_depth") {
		t.Errorf("Prepare() output misses include section:\n%s", data)
	}
}
