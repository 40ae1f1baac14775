// Package main is the entry point for the gatusbridge CLI.
//
// gatusbridge can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	gatusbridge serve -c config.yaml          # Start the bridge
//	gatusbridge validate -c config.yaml       # Validate configuration
//	gatusbridge check --url http://gatus.lan  # Test a Gatus server
//	gatusbridge version                       # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "gatusbridge",
	Short: "Expose Gatus endpoints as problem sensors",
	Long: `gatusbridge polls one or more Gatus servers and exposes every monitored
endpoint as a problem binary sensor, with an HTTP API, Server-Sent Events
and a small dashboard.

Quick start:
  1. Check that the server answers: gatusbridge check --url http://gatus.lan:8080
  2. Create a config file (gatusbridge.yaml)
  3. Run: gatusbridge serve -c gatusbridge.yaml
  4. Open http://localhost:8080 in your browser

Example config:
  port: 8080
  servers:
    - url: http://gatus.lan:8080
      scan_interval: 60
      images: true`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this gatusbridge binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "gatusbridge %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
