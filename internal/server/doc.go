// Package server provides the HTTP surface of gatusbridge.
//
// This package handles all HTTP concerns:
//
//   - Dashboard serving: the embedded HTML dashboard at "/"
//   - REST API: entity states, configured instances, diagnostics and
//     manual refresh under "/api"
//   - Server-Sent Events: real-time entity updates at "/api/sse"
//   - Operations: "/healthz" and "/metrics" when handlers are supplied
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
package server
