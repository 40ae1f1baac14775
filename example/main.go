package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/gatusbridge"
	"github.com/jpalmerr/gatusbridge/example/mockgatus"
)

func main() {
	// start a mock Gatus server
	mock := &http.Server{
		Addr:              ":9999",
		Handler:           mockgatus.New("", slog.Default()).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := mock.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock server error", "error", err)
		}
	}()
	time.Sleep(100 * time.Millisecond)

	inst, err := gatusbridge.NewInstance("http://localhost:9999",
		gatusbridge.WithInstanceTitle("Mock Gatus"),
		gatusbridge.WithEntryID("mock"),
		gatusbridge.WithScanInterval(10*time.Second),
		gatusbridge.WithImages(true),
	)
	if err != nil {
		slog.Error("failed to create instance", "error", err)
		os.Exit(1)
	}

	b, err := gatusbridge.New(
		gatusbridge.WithInstance(inst),
		gatusbridge.WithPort(8080),
		gatusbridge.WithTitle("Gatus Bridge Demo"),
		gatusbridge.WithStateCallback(func(st gatusbridge.EntityState) {
			if st.Problem && st.Available {
				slog.Warn("endpoint has a problem", "entity", st.UniqueID, "name", st.Name)
			}
		}),
	)
	if err != nil {
		slog.Error("failed to create bridge", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  Gatus Bridge Demo")
	fmt.Println()
	fmt.Println("  Dashboard:   http://localhost:8080")
	fmt.Println("  Entities:    http://localhost:8080/api/entities")
	fmt.Println("  Diagnostics: http://localhost:8080/api/instances/mock/diagnostics")
	fmt.Println()
	fmt.Println("  Mock endpoints flip between healthy and failing every 20-60s.")
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := b.Start(ctx); err != nil {
		slog.Error("gatusbridge error", "error", err)
		os.Exit(1)
	}
	_ = mock.Close()
}
