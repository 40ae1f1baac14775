// Package config provides YAML configuration parsing for gatusbridge.
//
// This package enables running gatusbridge as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	title: Home Gatus
//	port: 8080
//	request_timeout: 10s
//
//	servers:
//	  - url: http://gatus.lan:8080
//	    title: LAN
//	    scan_interval: 60
//	    images: true
//	    badge_window: 24h
//	  - url: ${PUBLIC_GATUS_URL}
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/gatusbridge"
	"github.com/jpalmerr/gatusbridge/internal/flow"
)

const (
	defaultPort           = 8080
	defaultRequestTimeout = 10 * time.Second
)

// Config is the root configuration structure for gatusbridge.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the dashboard title. Defaults to "Gatus Bridge" if not set.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// RequestTimeout bounds every request to a Gatus server.
	// Accepts duration strings like "10s". Defaults to 10s.
	RequestTimeout Duration `yaml:"request_timeout"`

	// Servers are the Gatus servers to bridge.
	Servers []ServerConfig `yaml:"servers"`
}

// ServerConfig defines one Gatus server.
type ServerConfig struct {
	// URL is the base URL of the Gatus server.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string `yaml:"url"`

	// Title is the display name. Defaults to the URL.
	Title string `yaml:"title"`

	// EntryID overrides the prefix of entity unique ids. Defaults to the
	// slugified URL.
	EntryID string `yaml:"entry_id"`

	// ScanInterval is the time between polls in seconds: 10 to 3600 in
	// steps of 10. Defaults to 60.
	ScanInterval int `yaml:"scan_interval"`

	// Images enables one uptime badge image per endpoint.
	Images bool `yaml:"images"`

	// BadgeWindow is the uptime window of badge images: 1h, 24h, 7d or 30d.
	// Defaults to 24h.
	BadgeWindow string `yaml:"badge_window"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in server URLs. Defaults are applied
// for Port (8080), RequestTimeout (10s), and per server ScanInterval (60)
// and BadgeWindow (24h).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = Duration(defaultRequestTimeout)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables, applies server defaults
// and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.RequestTimeout.Duration() < time.Second {
		return fmt.Errorf("request_timeout must be at least 1s, got %s", c.RequestTimeout.Duration())
	}

	if len(c.Servers) == 0 {
		return errors.New("at least one server must be defined")
	}

	seen := make(map[string]int, len(c.Servers))
	for i := range c.Servers {
		s := &c.Servers[i]

		if strings.TrimSpace(s.URL) == "" {
			return fmt.Errorf("servers[%d]: url is required", i)
		}
		expanded, err := expandEnvVars(s.URL)
		if err != nil {
			return fmt.Errorf("servers[%d]: url: %w", i, err)
		}
		s.URL = strings.TrimSpace(expanded)

		parsedURL, err := url.Parse(s.URL)
		if err != nil {
			return fmt.Errorf("servers[%d]: invalid url: %w", i, err)
		}
		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return fmt.Errorf("servers[%d] (%s): url must start with http:// or https://", i, s.URL)
		}
		if parsedURL.Host == "" {
			return fmt.Errorf("servers[%d] (%s): url must include a host", i, s.URL)
		}

		id := flow.UniqueID(s.URL)
		if j, dup := seen[id]; dup {
			return fmt.Errorf("servers[%d] (%s): already configured as servers[%d]", i, s.URL, j)
		}
		seen[id] = i

		if s.ScanInterval == 0 {
			s.ScanInterval = flow.DefaultScanInterval
		}
		if flow.ValidateScanInterval(s.ScanInterval) != "" {
			return fmt.Errorf("servers[%d] (%s): scan_interval must be between %d and %d in steps of %d, got %d",
				i, s.URL, flow.MinScanInterval, flow.MaxScanInterval, flow.ScanIntervalStep, s.ScanInterval)
		}

		if s.BadgeWindow == "" {
			s.BadgeWindow = "24h"
		}
		if !slices.Contains(gatusbridge.BadgeWindows, s.BadgeWindow) {
			return fmt.Errorf("servers[%d] (%s): badge_window must be one of %s, got %q",
				i, s.URL, strings.Join(gatusbridge.BadgeWindows, ", "), s.BadgeWindow)
		}
	}

	return nil
}
