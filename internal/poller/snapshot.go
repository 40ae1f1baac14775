package poller

import (
	"fmt"
	"time"

	"github.com/jpalmerr/gatusbridge/internal/gatus"
)

// Phase is the coordinator's position in its poll cycle.
type Phase int32

const (
	// PhaseIdle means no poll has completed yet.
	PhaseIdle Phase = iota

	// PhasePolling means a fetch is in flight. Snapshots never carry it;
	// it is only reported by [Coordinator.Phase].
	PhasePolling

	// PhaseReady means the last poll succeeded.
	PhaseReady

	// PhaseStale means the last poll failed with a retryable error and the
	// previous data, if any, is still being served.
	PhaseStale

	// PhaseAuthFailed means the server rejected the credentials. Scheduled
	// polling is suspended until a manual refresh succeeds.
	PhaseAuthFailed
)

// String returns the lowercase name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePolling:
		return "polling"
	case PhaseReady:
		return "ready"
	case PhaseStale:
		return "stale"
	case PhaseAuthFailed:
		return "auth_failed"
	default:
		return fmt.Sprintf("phase(%d)", int32(p))
	}
}

// Snapshot is the cached outcome of the latest completed poll.
//
// A Snapshot is immutable once published by a [Coordinator]; it is replaced
// wholesale by the next poll. Readers must not modify Data or its elements.
type Snapshot struct {
	// Data is the payload of the most recent successful poll. nil means no
	// poll has ever succeeded. Failed polls keep the previous value.
	Data []gatus.EndpointStatus

	// LastSuccess reports whether the latest poll succeeded.
	LastSuccess bool

	// LastError is the error of the latest poll, nil after a success.
	LastError error

	// LastErrorKind is the classification of LastError.
	LastErrorKind gatus.ErrorKind

	// Phase is the outcome phase of the latest poll.
	Phase Phase

	// UpdatedAt is when the latest poll finished.
	UpdatedAt time.Time

	// LastSuccessAt is when Data was last replaced. Zero if never.
	LastSuccessAt time.Time
}

// Endpoint returns the record with the given key from Data.
func (s *Snapshot) Endpoint(key string) (gatus.EndpointStatus, bool) {
	if s == nil {
		return gatus.EndpointStatus{}, false
	}
	for _, ep := range s.Data {
		if ep.Key == key {
			return ep, true
		}
	}
	return gatus.EndpointStatus{}, false
}

// NeedsReauth reports whether the latest poll was rejected by the server.
func (s *Snapshot) NeedsReauth() bool {
	return s != nil && s.Phase == PhaseAuthFailed
}
