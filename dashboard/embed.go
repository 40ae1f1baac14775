// Package dashboard provides the embedded web UI assets for gatusbridge.
//
// The dashboard lists every entity and follows the SSE stream, so it needs
// no build step and ships inside the binary.
package dashboard

import "embed"

// Assets is an embedded filesystem containing the dashboard web UI.
//
// The filesystem structure is:
//
//	assets/
//	  index.html    - Main dashboard page with inline CSS and JavaScript
//
//go:embed assets/*
var Assets embed.FS
