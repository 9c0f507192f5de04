package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/obsrv-dev/obsrv/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Address != DefaultAddress {
		t.Errorf("Server.Address = %q, want %q", cfg.Server.Address, DefaultAddress)
	}
	if cfg.JSON.Indent != DefaultIndent {
		t.Errorf("JSON.Indent = %d, want %d", cfg.JSON.Indent, DefaultIndent)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should default to true")
	}
	if cfg.Tracing.Enabled {
		t.Error("Tracing.Enabled should default to false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults error = %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := Load(tmpDir)
	if !stderrors.Is(err, errors.New("O302")) {
		t.Errorf("Load() error = %v, want O302", err)
	}

	configJSON := `{
  "description": "app.hcl",
  "server": {"address": "0.0.0.0:8080"},
  "json": {"indent": 0},
  "metrics": {"enabled": false},
  "tracing": {"enabled": true},
  "log": {"level": "debug", "format": "json"}
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Server.Address != "0.0.0.0:8080" {
		t.Errorf("Server.Address = %q, want %q", cfg.Server.Address, "0.0.0.0:8080")
	}
	if cfg.JSON.Indent != 0 {
		t.Errorf("JSON.Indent = %d, want 0", cfg.JSON.Indent)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be false")
	}
	if cfg.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Metrics.Path = %q, want %q", cfg.Metrics.Path, DefaultMetricsPath)
	}
	if !cfg.Tracing.Enabled || cfg.Tracing.TracerName != DefaultNamespace {
		t.Errorf("Tracing = %+v, want enabled with default tracer name", cfg.Tracing)
	}
	if got, want := cfg.DescriptionPath(), filepath.Join(tmpDir, "app.hcl"); got != want {
		t.Errorf("DescriptionPath() = %q, want %q", got, want)
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), tmpDir)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(path)
	if !stderrors.Is(err, errors.New("O301")) {
		t.Errorf("LoadFile() error = %v, want O301", err)
	}
}

func TestDescriptionPathAbsolute(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "store.json")
	cfg := New()
	cfg.Description = abs
	if cfg.DescriptionPath() != abs {
		t.Errorf("DescriptionPath() = %q, want %q", cfg.DescriptionPath(), abs)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"bad address", func(c *Config) { c.Server.Address = "nope" }, "server.address"},
		{"negative indent", func(c *Config) { c.JSON.Indent = -1 }, "json.indent"},
		{"large indent", func(c *Config) { c.JSON.Indent = MaxIndent + 1 }, "json.indent"},
		{"metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "metrics.path"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.want)
			}
		})
	}

	// Disabled metrics skip the path check.
	cfg := New()
	cfg.Metrics.Enabled = false
	cfg.Metrics.Path = "metrics"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)

	cfg := New()
	cfg.Server.Address = "127.0.0.1:9000"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if loaded.Server.Address != "127.0.0.1:9000" {
		t.Errorf("Server.Address = %q, want 127.0.0.1:9000", loaded.Server.Address)
	}
	if loaded.Path() != path {
		t.Errorf("Path() = %q, want %q", loaded.Path(), path)
	}

	if err := New().Save(); err == nil {
		t.Error("Save() without a path should fail")
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := New()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	logger := cfg.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "shown" || entry["k"] != "v" {
		t.Errorf("entry = %v, want msg=shown k=v", entry)
	}
}
