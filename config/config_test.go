package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_MinimalConfig(t *testing.T) {
	yaml := `
servers:
  - url: http://gatus.lan:8080
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// check defaults applied
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.RequestTimeout.Duration() != 10*time.Second {
		t.Errorf("RequestTimeout = %v, want 10s", cfg.RequestTimeout.Duration())
	}
	if len(cfg.Servers) != 1 {
		t.Fatalf("len(Servers) = %d, want 1", len(cfg.Servers))
	}

	s := cfg.Servers[0]
	if s.ScanInterval != 60 {
		t.Errorf("ScanInterval = %d, want 60", s.ScanInterval)
	}
	if s.BadgeWindow != "24h" {
		t.Errorf("BadgeWindow = %q, want 24h", s.BadgeWindow)
	}
	if s.Images {
		t.Error("Images = true, want false")
	}
}

func TestParse_FullConfig(t *testing.T) {
	yaml := `
title: Home Gatus
port: 9090
request_timeout: 5s

servers:
  - url: http://gatus.lan:8080
    title: LAN
    entry_id: lan
    scan_interval: 30
    images: true
    badge_window: 7d
  - url: https://status.example.com
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Title != "Home Gatus" {
		t.Errorf("Title = %q, want %q", cfg.Title, "Home Gatus")
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.RequestTimeout.Duration() != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want 5s", cfg.RequestTimeout.Duration())
	}
	if len(cfg.Servers) != 2 {
		t.Fatalf("len(Servers) = %d, want 2", len(cfg.Servers))
	}

	s := cfg.Servers[0]
	if s.URL != "http://gatus.lan:8080" || s.Title != "LAN" || s.EntryID != "lan" {
		t.Errorf("server = %+v", s)
	}
	if s.ScanInterval != 30 || !s.Images || s.BadgeWindow != "7d" {
		t.Errorf("server = %+v", s)
	}
}

func TestParse_EnvVarSubstitution(t *testing.T) {
	t.Setenv("GATUS_HOST", "gatus.internal")

	yaml := `
servers:
  - url: http://${GATUS_HOST}:8080
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Servers[0].URL != "http://gatus.internal:8080" {
		t.Errorf("URL = %q", cfg.Servers[0].URL)
	}
}

func TestParse_EnvVarDefault(t *testing.T) {
	yaml := `
servers:
  - url: ${GATUSBRIDGE_UNSET_URL:-http://localhost:8080}
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Servers[0].URL != "http://localhost:8080" {
		t.Errorf("URL = %q", cfg.Servers[0].URL)
	}
}

func TestParse_EnvVarMissing(t *testing.T) {
	yaml := `
servers:
  - url: ${GATUSBRIDGE_MISSING_URL}
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("Parse() expected error for missing env var, got nil")
	}
	if !strings.Contains(err.Error(), "servers[0]") {
		t.Errorf("error = %v, want indexed error", err)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "no servers",
			yaml:    `port: 8080`,
			wantErr: "at least one server",
		},
		{
			name: "missing url",
			yaml: `
servers:
  - title: LAN
`,
			wantErr: "servers[0]: url is required",
		},
		{
			name: "no scheme",
			yaml: `
servers:
  - url: gatus.lan
`,
			wantErr: "must start with http:// or https://",
		},
		{
			name: "wrong scheme",
			yaml: `
servers:
  - url: ftp://gatus.lan
`,
			wantErr: "must start with http:// or https://",
		},
		{
			name: "duplicate server",
			yaml: `
servers:
  - url: http://gatus.lan
  - url: http://gatus.lan
`,
			wantErr: "servers[1] (http://gatus.lan): already configured as servers[0]",
		},
		{
			name: "scan interval too small",
			yaml: `
servers:
  - url: http://gatus.lan
    scan_interval: 5
`,
			wantErr: "scan_interval",
		},
		{
			name: "scan interval too large",
			yaml: `
servers:
  - url: http://gatus.lan
    scan_interval: 3610
`,
			wantErr: "scan_interval",
		},
		{
			name: "scan interval off step",
			yaml: `
servers:
  - url: http://gatus.lan
    scan_interval: 45
`,
			wantErr: "scan_interval",
		},
		{
			name: "bad badge window",
			yaml: `
servers:
  - url: http://gatus.lan
    badge_window: 2h
`,
			wantErr: "badge_window",
		},
		{
			name: "port out of range",
			yaml: `
port: 70000
servers:
  - url: http://gatus.lan
`,
			wantErr: "port",
		},
		{
			name: "request timeout too small",
			yaml: `
request_timeout: 500ms
servers:
  - url: http://gatus.lan
`,
			wantErr: "request_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("servers: [unclosed"))
	if err == nil {
		t.Fatal("Parse() expected error for invalid YAML, got nil")
	}
	if !strings.Contains(err.Error(), "failed to parse YAML") {
		t.Errorf("error = %v", err)
	}
}

func TestParse_InvalidDuration(t *testing.T) {
	yaml := `
request_timeout: forever
servers:
  - url: http://gatus.lan
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("Parse() expected error for invalid duration, got nil")
	}
}

func TestParse_URLTrimmed(t *testing.T) {
	yaml := `
servers:
  - url: "  http://gatus.lan  "
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Servers[0].URL != "http://gatus.lan" {
		t.Errorf("URL = %q, want trimmed", cfg.Servers[0].URL)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("servers:\n  - url: http://gatus.lan\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Servers) != 1 {
		t.Errorf("len(Servers) = %d, want 1", len(cfg.Servers))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Load() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("error = %v", err)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR", "value")
	t.Setenv("EMPTY_VAR", "") // set but empty

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"no vars", "plain text", "plain text", false},
		{"simple var", "${TEST_VAR}", "value", false},
		{"var in text", "prefix ${TEST_VAR} suffix", "prefix value suffix", false},
		{"multiple vars", "${TEST_VAR}-${TEST_VAR}", "value-value", false},
		{"with default (var set)", "${TEST_VAR:-default}", "value", false},
		{"with default (var unset)", "${UNSET:-default}", "default", false},
		{"missing required", "${MISSING}", "", true},
		{"empty default (var unset)", "${UNSET:-}", "", false},
		{"set but empty var", "${EMPTY_VAR}", "", false},
		{"set but empty with default", "${EMPTY_VAR:-fallback}", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandEnvVars(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expandEnvVars() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expandEnvVars() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("expandEnvVars() = %q, want %q", got, tt.want)
			}
		})
	}
}
