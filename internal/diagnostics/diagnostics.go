// Package diagnostics builds the redacted troubleshooting snapshot of one
// configured Gatus server.
package diagnostics

import (
	"strings"

	"github.com/jpalmerr/gatusbridge/internal/flow"
	"github.com/jpalmerr/gatusbridge/internal/poller"
)

// Redacted replaces sensitive values.
const Redacted = "**REDACTED**"

// entryRedactKeys are removed from the exported entry. The unique id is the
// slugified URL, so it leaks the same information.
var entryRedactKeys = []string{flow.ConfURL, "unique_id", "entry_id"}

// Report is the diagnostics export.
type Report struct {
	ConfigEntry map[string]any     `json:"config_entry"`
	Coordinator CoordinatorSummary `json:"coordinator"`
	Endpoints   []EndpointSummary  `json:"endpoints"`
}

// CoordinatorSummary describes the latest poll.
type CoordinatorSummary struct {
	LastUpdateSuccess bool    `json:"last_update_success"`
	LastException     *string `json:"last_exception"`
	EndpointCount     int     `json:"endpoint_count"`
	Phase             string  `json:"phase"`
}

// EndpointSummary describes one endpoint through its latest result. The
// pointer fields are null when the endpoint has no results.
type EndpointSummary struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Group       string   `json:"group"`
	Success     *bool    `json:"success"`
	StatusCode  *int     `json:"status_code"`
	DurationMs  *float64 `json:"duration_ms"`
	Timestamp   *string  `json:"timestamp"`
	ResultCount int      `json:"result_count"`
}

// Build returns the report for entry from snap. snap may be nil.
func Build(entry flow.Entry, snap *poller.Snapshot) Report {
	cfg := Redact(entry.AsMap(), entryRedactKeys)
	// the title defaults to the URL
	if url := entry.URL(); url != "" && strings.Contains(entry.Title, url) {
		cfg["title"] = Redacted
	}

	endpoints := []EndpointSummary{}
	var summary CoordinatorSummary
	if snap != nil {
		for _, ep := range snap.Data {
			s := EndpointSummary{
				Key:         ep.Key,
				Name:        ep.Name,
				Group:       ep.Group,
				ResultCount: len(ep.Results),
			}
			if latest, ok := ep.Latest(); ok {
				success := latest.Success
				status := latest.Status
				duration := latest.DurationMs()
				ts := latest.Timestamp
				s.Success = &success
				s.StatusCode = &status
				s.DurationMs = &duration
				s.Timestamp = &ts
			}
			endpoints = append(endpoints, s)
		}

		summary.LastUpdateSuccess = snap.LastSuccess
		summary.Phase = snap.Phase.String()
		if snap.LastError != nil {
			msg := snap.LastError.Error()
			summary.LastException = &msg
		}
	} else {
		summary.Phase = poller.PhaseIdle.String()
	}
	summary.EndpointCount = len(endpoints)

	return Report{
		ConfigEntry: cfg,
		Coordinator: summary,
		Endpoints:   endpoints,
	}
}

// Redact returns a copy of data with the values of keys replaced by
// [Redacted], descending into nested maps and slices of maps.
func Redact(data map[string]any, keys []string) map[string]any {
	redact := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		redact[k] = struct{}{}
	}
	return redactMap(data, redact)
}

func redactMap(data map[string]any, keys map[string]struct{}) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if _, ok := keys[k]; ok && v != nil {
			out[k] = Redacted
			continue
		}
		out[k] = redactValue(v, keys)
	}
	return out
}

func redactValue(v any, keys map[string]struct{}) any {
	switch x := v.(type) {
	case map[string]any:
		return redactMap(x, keys)
	case []any:
		cp := make([]any, len(x))
		for i, item := range x {
			cp[i] = redactValue(item, keys)
		}
		return cp
	default:
		return v
	}
}
