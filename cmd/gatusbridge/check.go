package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/gatusbridge/internal/flow"
	"github.com/jpalmerr/gatusbridge/internal/gatus"
)

// checkCmd runs the setup flow against a Gatus server.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Test a Gatus server as a new instance",
	Long: `Run the setup flow once against a Gatus server and print the outcome.

The URL is validated, the statuses API is fetched once, and the result is
printed as JSON: the entry that would be created, or the form errors
("invalid_url", "auth", "connection", "unknown"). URLs passed with
--existing count as already configured.

When --scan-interval is given, the options step is run on the new entry too.

Exit codes:
  0 - An entry would be created
  1 - The setup flow reported an error or aborted

Example:
  gatusbridge check --url http://gatus.lan:8080
  gatusbridge check --url http://gatus.lan:8080 --existing http://gatus.lan:8080`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().String("url", "", "Gatus server URL (required)")
	checkCmd.Flags().String("title", "", "display title of the instance")
	checkCmd.Flags().StringSlice("existing", nil, "URLs of already configured servers")
	checkCmd.Flags().Int("scan-interval", 0, "scan interval in seconds to validate")
	checkCmd.Flags().Duration("timeout", gatus.DefaultTimeout, "request timeout")
	_ = checkCmd.MarkFlagRequired("url")
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := newLogger(slog.LevelWarn)

	rawURL, _ := cmd.Flags().GetString("url")
	title, _ := cmd.Flags().GetString("title")
	existing, _ := cmd.Flags().GetStringSlice("existing")
	scanInterval, _ := cmd.Flags().GetInt("scan-interval")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	configured := make(map[string]bool, len(existing))
	for _, u := range existing {
		configured[flow.UniqueID(u)] = true
	}

	fl := flow.New(
		flow.WithLogger(logger),
		flow.WithConfigured(func(id string) bool { return configured[id] }),
		flow.WithClientFactory(func(url string) flow.Client {
			return gatus.NewClient(url, gatus.WithTimeout(timeout), gatus.WithLogger(logger))
		}),
	)

	result := fl.StepUser(cmd.Context(), &flow.UserInput{URL: rawURL, Title: title})
	if err := printResult(cmd, result); err != nil {
		return err
	}
	if result.Type != flow.ResultCreateEntry {
		return flowError(result)
	}

	if scanInterval != 0 {
		opts := flow.StepOptions(&flow.OptionsInput{ScanInterval: scanInterval}, *result.Entry)
		if err := printResult(cmd, opts); err != nil {
			return err
		}
		if opts.Type != flow.ResultCreateEntry {
			return flowError(opts)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "polling every %s\n", time.Duration(scanInterval)*time.Second)
	}
	return nil
}

func printResult(cmd *cobra.Command, r flow.Result) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func flowError(r flow.Result) error {
	if r.Type == flow.ResultAbort {
		return fmt.Errorf("setup aborted: %s", r.Reason)
	}
	keys := slices.Sorted(maps.Keys(r.Errors))
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, k+"="+r.Errors[k])
	}
	return fmt.Errorf("setup failed: %s", strings.Join(msgs, ", "))
}
