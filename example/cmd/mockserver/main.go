// Standalone mock Gatus server for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver [-addr :9999] [-token secret]
//
// Then in another terminal:
//
//	go run ./cmd/gatusbridge serve -c example/config.yaml
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jpalmerr/gatusbridge/example/mockgatus"
)

func main() {
	addr := flag.String("addr", ":9999", "listen address")
	token := flag.String("token", "", "reject requests without this bearer token, as an auth proxy would")
	flag.Parse()

	fmt.Printf("Mock Gatus server starting on %s\n", *addr)
	fmt.Println("Endpoints flip between healthy and failing every 20-60s")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mockgatus.New(*token, slog.Default()).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
