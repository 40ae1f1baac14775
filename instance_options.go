package gatusbridge

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jpalmerr/gatusbridge/internal/flow"
)

// instanceConfig holds mutable state during instance construction.
type instanceConfig struct {
	title        string
	entryID      string
	scanInterval time.Duration
	images       bool
	badgeWindow  string
}

// InstanceOption configures an [Instance] during construction.
//
// Options return an error if validation fails.
type InstanceOption func(*instanceConfig) error

// WithInstanceTitle sets the display title of the instance. Defaults to the URL.
func WithInstanceTitle(title string) InstanceOption {
	return func(cfg *instanceConfig) error {
		cfg.title = strings.TrimSpace(title)
		return nil
	}
}

// WithEntryID overrides the id that prefixes entity unique ids.
//
// Returns an error if the id is empty or contains whitespace.
func WithEntryID(id string) InstanceOption {
	return func(cfg *instanceConfig) error {
		if id == "" || strings.ContainsAny(id, " \t\n") {
			return errors.New("entry id must be non-empty and contain no whitespace")
		}
		cfg.entryID = id
		return nil
	}
}

// WithScanInterval sets the time between scheduled polls.
//
// The interval must be a whole number of seconds between 10s and 1h, in
// steps of 10s. Defaults to 60s.
//
// Example:
//
//	inst, err := gatusbridge.NewInstance(url,
//	    gatusbridge.WithScanInterval(5 * time.Minute),
//	)
func WithScanInterval(d time.Duration) InstanceOption {
	return func(cfg *instanceConfig) error {
		if d%time.Second != 0 {
			return fmt.Errorf("scan interval must be whole seconds, got %s", d)
		}
		if flow.ValidateScanInterval(int(d/time.Second)) != "" {
			return fmt.Errorf("scan interval must be between %ds and %ds in steps of %ds, got %s",
				flow.MinScanInterval, flow.MaxScanInterval, flow.ScanIntervalStep, d)
		}
		cfg.scanInterval = d
		return nil
	}
}

// WithImages enables one uptime badge image entity per endpoint.
func WithImages(enabled bool) InstanceOption {
	return func(cfg *instanceConfig) error {
		cfg.images = enabled
		return nil
	}
}

// WithBadgeWindow sets the uptime window of badge images. Must be one of
// [BadgeWindows]; defaults to "24h".
func WithBadgeWindow(window string) InstanceOption {
	return func(cfg *instanceConfig) error {
		if !slices.Contains(BadgeWindows, window) {
			return fmt.Errorf("badge window must be one of %s, got %q", strings.Join(BadgeWindows, ", "), window)
		}
		cfg.badgeWindow = window
		return nil
	}
}
