package entity

import (
	"github.com/jpalmerr/gatusbridge/internal/poller"
)

// Attribute keys of an available binary sensor.
const (
	AttrEndpointGroup = "endpoint_group"
	AttrEndpointName  = "endpoint_name"
	AttrHostname      = "hostname"
	AttrStatusCode    = "status_code"
	AttrDurationMs    = "duration_ms"
	AttrTimestamp     = "timestamp"
)

// Projection is the derived view of one endpoint.
type Projection struct {
	// Problem is true when the endpoint needs attention: its latest result
	// failed, or there is no result to judge from.
	Problem bool

	// Available is false when the latest poll failed or the endpoint has no
	// usable result.
	Available bool

	// Attributes are the display attributes; empty when not available.
	Attributes map[string]any
}

// Project derives the state of endpoint key from snap.
//
// Project is pure: it only reads snap. A missing endpoint or an empty result
// list is reported both as unavailable and as a problem.
func Project(snap *poller.Snapshot, key string) Projection {
	p := Projection{Problem: true, Attributes: map[string]any{}}

	ep, found := snap.Endpoint(key)
	if !found {
		return p
	}
	latest, ok := ep.Latest()
	if !ok {
		return p
	}

	p.Problem = !latest.Success
	if !snap.LastSuccess {
		return p
	}

	p.Available = true
	p.Attributes = map[string]any{
		AttrEndpointGroup: ep.Group,
		AttrEndpointName:  ep.Name,
		AttrHostname:      latest.Hostname,
		AttrStatusCode:    latest.Status,
		AttrDurationMs:    latest.DurationMs(),
		AttrTimestamp:     latest.Timestamp,
	}
	return p
}
