package gatusbridge

import (
	"context"
	"fmt"
	"time"

	"github.com/jpalmerr/gatusbridge/internal/diagnostics"
	"github.com/jpalmerr/gatusbridge/internal/server"
)

// instanceRegistry exposes the loaded instances of a Bridge to the HTTP API.
type instanceRegistry struct {
	b *Bridge
}

var _ server.Registry = instanceRegistry{}

func (r instanceRegistry) Instances() []server.InstanceView {
	r.b.mu.RLock()
	running := r.b.running
	r.b.mu.RUnlock()

	views := make([]server.InstanceView, 0, len(running))
	for _, rt := range running {
		views = append(views, rt.view())
	}
	return views
}

func (r instanceRegistry) Diagnostics(id string) (diagnostics.Report, error) {
	rt, ok := r.b.lookup(id)
	if !ok {
		return diagnostics.Report{}, fmt.Errorf("%w: %q", server.ErrUnknownInstance, id)
	}
	return diagnostics.Build(rt.inst.Entry(), rt.coord.Snapshot()), nil
}

// Refresh polls the instance now. This is also how an instance recovers
// after its credentials were rejected.
func (r instanceRegistry) Refresh(ctx context.Context, id string) (server.InstanceView, error) {
	rt, ok := r.b.lookup(id)
	if !ok {
		return server.InstanceView{}, fmt.Errorf("%w: %q", server.ErrUnknownInstance, id)
	}
	if err := rt.coord.Refresh(ctx); err != nil {
		r.b.logger.Warn("manual refresh failed", "instance", id, "error", err)
	}
	return rt.view(), nil
}

func (rt *runningInstance) view() server.InstanceView {
	snap := rt.coord.Snapshot()

	v := server.InstanceView{
		ID:                rt.inst.EntryID(),
		Title:             rt.inst.Title(),
		ScanInterval:      int(rt.inst.ScanInterval() / time.Second),
		Phase:             snap.Phase.String(),
		LastUpdateSuccess: snap.LastSuccess,
		NeedsReauth:       snap.NeedsReauth(),
		EndpointCount:     len(snap.Data),
	}
	if snap.LastError != nil {
		msg := snap.LastError.Error()
		v.LastException = &msg
	}
	if !snap.LastSuccessAt.IsZero() {
		at := snap.LastSuccessAt
		v.LastSuccessAt = &at
	}
	return v
}
