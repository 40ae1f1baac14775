package gatusbridge

import (
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// bridgeConfig holds mutable state during Bridge construction.
type bridgeConfig struct {
	title          string
	instances      []Instance
	port           int
	logger         *slog.Logger
	version        string
	requestTimeout time.Duration
	stateCallbacks []func(EntityState)
	registry       *prometheus.Registry
}

// Option is a function that configures a [Bridge] during construction.
//
// Options return an error if validation fails.
//
// Built-in options: [WithInstance], [WithInstances], [WithPort],
// [WithLogger], [WithTitle], [WithVersion], [WithRequestTimeout],
// [WithStateCallback], [WithMetricsRegistry].
type Option func(*bridgeConfig) error

// WithInstance adds a single Gatus server to the bridge.
//
// Can be called multiple times. At least one instance must be configured
// for [New] to succeed.
//
// Example:
//
//	inst, _ := gatusbridge.NewInstance("http://gatus.lan:8080")
//	b, err := gatusbridge.New(gatusbridge.WithInstance(inst))
func WithInstance(i Instance) Option {
	return func(cfg *bridgeConfig) error {
		cfg.instances = append(cfg.instances, i)
		return nil
	}
}

// WithInstances adds several Gatus servers at once. Equivalent to calling
// [WithInstance] for each.
func WithInstances(instances ...Instance) Option {
	return func(cfg *bridgeConfig) error {
		cfg.instances = append(cfg.instances, instances...)
		return nil
	}
}

// WithPort sets the HTTP port for the dashboard and API.
//
// Defaults to 8080 if not specified.
//
// Returns an error if the port is not in range 1-65535.
func WithPort(port int) Option {
	return func(cfg *bridgeConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the bridge.
//
// If not specified, [slog.Default] is used.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
//	b, err := gatusbridge.New(
//	    gatusbridge.WithInstance(inst),
//	    gatusbridge.WithLogger(logger),
//	)
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *bridgeConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithTitle sets the dashboard title. Defaults to "Gatus Bridge".
func WithTitle(title string) Option {
	return func(cfg *bridgeConfig) error {
		cfg.title = title
		return nil
	}
}

// WithVersion sets the bridge version reported as the device software
// version. Values that do not parse as a version are not reported.
func WithVersion(version string) Option {
	return func(cfg *bridgeConfig) error {
		cfg.version = version
		return nil
	}
}

// WithRequestTimeout sets the timeout of every request to a Gatus server.
//
// Defaults to 10 seconds. Returns an error if the duration is not positive.
func WithRequestTimeout(d time.Duration) Option {
	return func(cfg *bridgeConfig) error {
		if d <= 0 {
			return errors.New("request timeout must be positive")
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithStateCallback registers a function called with every entity state
// published after a poll.
//
// Callbacks run synchronously in registration order, after the state has
// been stored. They must not block. Panics are recovered and logged.
//
// Example:
//
//	b, err := gatusbridge.New(
//	    gatusbridge.WithInstance(inst),
//	    gatusbridge.WithStateCallback(func(st gatusbridge.EntityState) {
//	        if st.Problem {
//	            log.Printf("ALERT: %s has a problem", st.Name)
//	        }
//	    }),
//	)
//
// Nil callbacks are silently ignored.
func WithStateCallback(cb func(EntityState)) Option {
	return func(cfg *bridgeConfig) error {
		if cb == nil {
			return nil
		}
		cfg.stateCallbacks = append(cfg.stateCallbacks, cb)
		return nil
	}
}

// WithMetricsRegistry registers the bridge metrics with reg and serves reg
// on /metrics. By default a private registry is created per [Bridge.Start].
//
// Returns an error if reg is nil.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(cfg *bridgeConfig) error {
		if reg == nil {
			return errors.New("metrics registry cannot be nil")
		}
		cfg.registry = reg
		return nil
	}
}
