package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jpalmerr/gatusbridge"
)

// BuildInstances converts parsed configuration into SDK Instance values, in
// configuration order.
func BuildInstances(cfg *Config) ([]gatusbridge.Instance, error) {
	instances := make([]gatusbridge.Instance, 0, len(cfg.Servers))
	for i, sc := range cfg.Servers {
		inst, err := buildInstance(sc)
		if err != nil {
			return nil, fmt.Errorf("servers[%d] (%s): %w", i, sc.URL, err)
		}
		instances = append(instances, inst)
	}
	return instances, nil
}

// buildInstance converts a single ServerConfig to an SDK Instance.
func buildInstance(sc ServerConfig) (gatusbridge.Instance, error) {
	opts := []gatusbridge.InstanceOption{
		gatusbridge.WithImages(sc.Images),
	}

	if sc.Title != "" {
		opts = append(opts, gatusbridge.WithInstanceTitle(sc.Title))
	}
	if sc.EntryID != "" {
		opts = append(opts, gatusbridge.WithEntryID(sc.EntryID))
	}
	if sc.ScanInterval != 0 {
		opts = append(opts, gatusbridge.WithScanInterval(time.Duration(sc.ScanInterval)*time.Second))
	}
	if sc.BadgeWindow != "" {
		opts = append(opts, gatusbridge.WithBadgeWindow(sc.BadgeWindow))
	}

	return gatusbridge.NewInstance(sc.URL, opts...)
}

// BuildOptions converts parsed configuration into the options of
// [gatusbridge.New], instances included.
func BuildOptions(cfg *Config, logger *slog.Logger) ([]gatusbridge.Option, error) {
	instances, err := BuildInstances(cfg)
	if err != nil {
		return nil, err
	}

	opts := []gatusbridge.Option{
		gatusbridge.WithInstances(instances...),
		gatusbridge.WithPort(cfg.Port),
		gatusbridge.WithRequestTimeout(cfg.RequestTimeout.Duration()),
	}
	if cfg.Title != "" {
		opts = append(opts, gatusbridge.WithTitle(cfg.Title))
	}
	if logger != nil {
		opts = append(opts, gatusbridge.WithLogger(logger))
	}
	return opts, nil
}
