package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iwvelando/admin-cost/pkg/constants"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != constants.DefaultServerAddress {
		t.Fatalf("expected default address, got %q", cfg.Address)
	}
	if cfg.UploadSizeBytes() != constants.DefaultMaxUploadSizeBytes {
		t.Fatalf("expected default max upload size, got %d", cfg.UploadSizeBytes())
	}
	if cfg.ShutdownTimeoutDuration() != DefaultShutdownTimeout {
		t.Fatalf("expected default shutdown timeout, got %s", cfg.ShutdownTimeoutDuration())
	}
	if cfg.Logging.Level != "" || cfg.Logging.Format != "" || cfg.Logging.OutputFile != "" {
		t.Fatalf("expected empty logging defaults, got %+v", cfg.Logging)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.UploadSizeBytes() != constants.DefaultMaxUploadSizeBytes {
		t.Fatalf("expected default max upload size, got %d", cfg.UploadSizeBytes())
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server-config.yaml")

	contents := []byte(`address: 127.0.0.1:9000
maxUploadSize: 1M
shutdownTimeout: 3s
logging:
  level: debug
  format: console
  outputFile: /tmp/admin-cost.log
`)
	if err := os.WriteFile(path, contents, 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != "127.0.0.1:9000" {
		t.Fatalf("expected address override, got %s", cfg.Address)
	}
	if cfg.UploadSizeBytes() != 1024*1024 {
		t.Fatalf("expected max upload override, got %d", cfg.UploadSizeBytes())
	}
	if cfg.ShutdownTimeoutDuration() != 3*time.Second {
		t.Fatalf("expected shutdown timeout 3s, got %s", cfg.ShutdownTimeoutDuration())
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected logging level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("expected logging format console, got %s", cfg.Logging.Format)
	}
	if cfg.Logging.OutputFile != "/tmp/admin-cost.log" {
		t.Fatalf("expected logging outputFile /tmp/admin-cost.log, got %s", cfg.Logging.OutputFile)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := map[string]string{
		"bad size":     "maxUploadSize: invalid",
		"bad timeout":  "shutdownTimeout: soon",
		"invalid yaml": "address: [unclosed",
	}

	for name, contents := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
				t.Fatalf("failed to write temp config: %v", err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Fatal("expected error but got nil")
			}
		})
	}
}

func TestSetUploadSizeBytes(t *testing.T) {
	cfg, _ := LoadConfig("")
	cfg.SetUploadSizeBytes(0)
	if cfg.UploadSizeBytes() != constants.DefaultMaxUploadSizeBytes {
		t.Fatalf("non-positive size must be ignored, got %d", cfg.UploadSizeBytes())
	}
	cfg.SetUploadSizeBytes(2048)
	if cfg.UploadSizeBytes() != 2048 || cfg.MaxUploadSize != "2048" {
		t.Fatalf("unexpected override %d %q", cfg.UploadSizeBytes(), cfg.MaxUploadSize)
	}
}

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"":          constants.DefaultMaxUploadSizeBytes,
		"1024":      1024,
		"512b":      512,
		"256K":      256 * 1024,
		"1m":        1024 * 1024,
		"3MB":       3 * 1024 * 1024,
		"2G":        2 * 1024 * 1024 * 1024,
		"  4096   ": 4096,
		"8 KB":      8 * 1024,
	}

	for input, expected := range tests {
		got, err := ParseSize(input)
		if err != nil {
			t.Fatalf("ParseSize(%q) returned error: %v", input, err)
		}
		if got != expected {
			t.Fatalf("ParseSize(%q) = %d, expected %d", input, got, expected)
		}
	}

	for _, bad := range []string{"1TB", "abc", "1.5M", "99999999999999999999G"} {
		if _, err := ParseSize(bad); err == nil {
			t.Fatalf("ParseSize(%q) expected error", bad)
		}
	}
}
