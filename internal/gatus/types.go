package gatus

import (
	"bytes"
	"encoding/json"
	"errors"
)

// EndpointStatus is one monitored endpoint as reported by Gatus.
type EndpointStatus struct {
	// Key is the stable identifier of the endpoint, unique within a poll.
	Key string `json:"key"`

	// Name is the endpoint's display name.
	Name string `json:"name"`

	// Group is the group the endpoint belongs to. May be empty.
	Group string `json:"group"`

	// Results are the recent evaluations, oldest first.
	Results []Result `json:"results"`
}

// Latest returns the newest result. ok is false when there are no results.
func (e EndpointStatus) Latest() (r Result, ok bool) {
	if len(e.Results) == 0 {
		return Result{}, false
	}
	return e.Results[len(e.Results)-1], true
}

// Result is a single evaluation of an endpoint.
type Result struct {
	Success  bool   `json:"success"`
	Hostname string `json:"hostname"`

	// Status is the HTTP-like status code observed by Gatus.
	Status int `json:"status"`

	// Duration is the evaluation time in nanoseconds.
	Duration int64 `json:"duration"`

	// Timestamp is the ISO-8601 time the evaluation ran.
	Timestamp string `json:"timestamp"`
}

// DurationMs returns Duration converted from nanoseconds to milliseconds.
func (r Result) DurationMs() float64 {
	return float64(r.Duration) / 1_000_000
}

// decodeStats counts entries dropped while decoding.
type decodeStats struct {
	missingKey int
	duplicate  int
}

func (s decodeStats) dropped() int {
	return s.missingKey + s.duplicate
}

var errNotArray = errors.New("expected a JSON array of endpoint statuses")

// decodeStatuses parses the statuses payload. Entries without a key and
// entries repeating an earlier key are dropped; the order of the rest is kept.
func decodeStatuses(body []byte) ([]EndpointStatus, decodeStats, error) {
	var stats decodeStats

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, stats, errNotArray
	}

	var raw []EndpointStatus
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, stats, err
	}

	out := make([]EndpointStatus, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, ep := range raw {
		if ep.Key == "" {
			stats.missingKey++
			continue
		}
		if _, dup := seen[ep.Key]; dup {
			stats.duplicate++
			continue
		}
		seen[ep.Key] = struct{}{}
		out = append(out, ep)
	}
	return out, stats, nil
}
