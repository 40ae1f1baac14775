package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/gatusbridge/config"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a gatusbridge configuration file without starting the server.

This command parses the YAML, expands environment variables, and validates
all fields. It does not contact any Gatus server; use "check" for that.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  gatusbridge validate -c config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := config.BuildInstances(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Port:            %d\n", cfg.Port)
	fmt.Fprintf(out, "  Request timeout: %s\n", cfg.RequestTimeout.Duration())
	fmt.Fprintf(out, "  Servers:         %d\n", len(cfg.Servers))
	for _, s := range cfg.Servers {
		images := "off"
		if s.Images {
			images = s.BadgeWindow
		}
		fmt.Fprintf(out, "    - %s (every %ds, images: %s)\n", s.URL, s.ScanInterval, images)
	}

	return nil
}
