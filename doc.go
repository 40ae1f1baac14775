// Package gatusbridge bridges Gatus health monitoring servers into
// home-automation style entities, served over a small HTTP API and an
// embedded dashboard.
//
// Each configured Gatus server is polled on its own interval through the
// statuses API. Every monitored endpoint becomes a problem binary sensor
// ("on" when the latest check failed), optionally paired with an uptime
// badge image. Entities stay unavailable while their server cannot be
// reached, and an instance whose credentials are rejected stops polling
// until it is refreshed manually.
//
// # Quick Start
//
//	inst, _ := gatusbridge.NewInstance("http://gatus.lan:8080")
//	b, _ := gatusbridge.New(gatusbridge.WithInstance(inst))
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	b.Start(ctx) // blocks until context is cancelled
//
// # Configuration
//
// The bridge and its instances use the functional options pattern:
//
//	inst, err := gatusbridge.NewInstance("https://status.example.com",
//	    gatusbridge.WithInstanceTitle("Public"),
//	    gatusbridge.WithScanInterval(2 * time.Minute),
//	    gatusbridge.WithImages(true),
//	    gatusbridge.WithBadgeWindow("7d"),
//	)
//
//	b, err := gatusbridge.New(
//	    gatusbridge.WithInstance(inst),
//	    gatusbridge.WithPort(9090),
//	    gatusbridge.WithStateCallback(func(st gatusbridge.EntityState) { ... }),
//	)
//
// The config package loads the same settings from YAML.
//
// # Architecture
//
// gatusbridge consists of several internal packages (under internal/):
//
//   - internal/gatus: statuses API client and error classification
//   - internal/poller: per-instance poll coordinator and snapshots
//   - internal/entity: projection of snapshots onto entities
//   - internal/flow: URL validation and options for configuration entries
//   - internal/diagnostics: redacted troubleshooting reports
//   - internal/store: in-memory entity states with pub/sub
//   - internal/server: REST API, Server-Sent Events and dashboard
//   - internal/healthcheck, internal/metrics: /healthz and /metrics
//
// The internal packages are not part of the public API and may change
// without notice.
package gatusbridge
