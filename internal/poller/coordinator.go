package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/jpalmerr/gatusbridge/internal/gatus"
)

// DefaultInterval is the scheduled poll interval when none is configured.
const DefaultInterval = 60 * time.Second

var (
	// ErrAuthFailed marks a poll rejected by the server. The instance needs
	// to be reconfigured before scheduled polling resumes.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrUpdateFailed marks a poll that failed with a retryable error.
	ErrUpdateFailed = errors.New("update failed")
)

// Fetcher retrieves the full set of endpoint statuses in one call.
//
// [gatus.Client] is the production implementation.
type Fetcher interface {
	Fetch(ctx context.Context) ([]gatus.EndpointStatus, error)
}

// Listener is notified after every poll attempt with the new snapshot.
type Listener func(*Snapshot)

// PollOutcome describes one finished poll for an [Observer].
type PollOutcome struct {
	Name      string
	Kind      gatus.ErrorKind
	Duration  time.Duration
	Endpoints int
	At        time.Time
}

// Observer receives a [PollOutcome] after every poll attempt.
type Observer interface {
	ObservePoll(PollOutcome)
}

// CoordinatorOption configures a [Coordinator].
type CoordinatorOption func(*Coordinator)

// WithObserver attaches an [Observer], typically a metrics collector.
func WithObserver(o Observer) CoordinatorOption {
	return func(c *Coordinator) {
		c.observer = o
	}
}

type listenerEntry struct {
	id uint64
	fn Listener
}

// Coordinator owns the polling of one Gatus server.
//
// It fetches on a fixed interval, keeps the latest [Snapshot] and notifies
// listeners synchronously once each poll has completed. At most one fetch is
// in flight at any time: scheduled ticks and manual refreshes that arrive
// while a poll is running join it instead of starting another.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Coordinator struct {
	name     string
	fetcher  Fetcher
	interval time.Duration
	logger   *slog.Logger
	observer Observer

	snapshot atomic.Pointer[Snapshot]
	phase    atomic.Int32
	flight   singleflight.Group

	listenersMu sync.RWMutex
	listeners   []listenerEntry
	nextID      uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
}

// NewCoordinator creates a [Coordinator] for fetcher.
//
// name identifies the instance in logs and metrics. A non-positive interval
// falls back to [DefaultInterval]. Polling starts with [Coordinator.Start];
// call [Coordinator.FirstRefresh] before creating entities.
func NewCoordinator(name string, fetcher Fetcher, interval time.Duration, logger *slog.Logger, opts ...CoordinatorOption) *Coordinator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Coordinator{
		name:     name,
		fetcher:  fetcher,
		interval: interval,
		logger:   logger.With("instance", name),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.snapshot.Store(&Snapshot{Phase: PhaseIdle})
	return c
}

// Name returns the instance name given to [NewCoordinator].
func (c *Coordinator) Name() string {
	return c.name
}

// Interval returns the scheduled poll interval.
func (c *Coordinator) Interval() time.Duration {
	return c.interval
}

// Snapshot returns the outcome of the latest completed poll. It never
// returns nil; before the first poll the snapshot is empty with [PhaseIdle].
func (c *Coordinator) Snapshot() *Snapshot {
	return c.snapshot.Load()
}

// Phase returns the current phase, including [PhasePolling] while a fetch
// is in flight.
func (c *Coordinator) Phase() Phase {
	return Phase(c.phase.Load())
}

// Subscribe registers l for notifications after every poll and returns a
// function that removes it. Listeners run in registration order on the
// polling goroutine and must not block.
func (c *Coordinator) Subscribe(l Listener) (unsubscribe func()) {
	if l == nil {
		return func() {}
	}

	c.listenersMu.Lock()
	c.nextID++
	id := c.nextID
	c.listeners = append(c.listeners, listenerEntry{id: id, fn: l})
	c.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.listenersMu.Lock()
			defer c.listenersMu.Unlock()
			for i, e := range c.listeners {
				if e.id == id {
					c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// FirstRefresh performs the initial poll synchronously.
//
// Retryable failures still leave a (failed) snapshot behind and return nil,
// so entities can be created. An authentication failure is returned as an
// error wrapping [ErrAuthFailed].
func (c *Coordinator) FirstRefresh(ctx context.Context) error {
	err := c.poll(ctx)
	if errors.Is(err, ErrAuthFailed) {
		return err
	}
	return nil
}

// Refresh polls immediately, joining a poll already in flight. It is the
// user-triggered path and also runs while scheduled polling is suspended
// after an authentication failure.
//
// The returned error wraps [ErrAuthFailed] or [ErrUpdateFailed], or is
// ctx.Err() when ctx ends first. The poll itself is not cancelled by ctx.
func (c *Coordinator) Refresh(ctx context.Context) error {
	return c.poll(ctx)
}

// Start begins scheduled polling in a background goroutine.
//
// Start does not poll immediately; the first scheduled poll happens one
// interval after Start. If ctx is nil, context.Background() is used.
// Start is idempotent, and a no-op after Stop.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started || c.stopped {
		c.mu.Unlock()
		return
	}
	c.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	pollCtx := c.ctx
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				if c.Phase() == PhaseAuthFailed {
					c.logger.Debug("scheduled poll skipped, reauthentication required")
					continue
				}
				// an in-flight fetch outlives Stop; the client timeout bounds it
				_ = c.poll(context.WithoutCancel(pollCtx))
			}
		}
	}()
}

// Stop halts scheduled polling and waits for the loop to exit.
//
// A scheduled fetch in flight when Stop is called is allowed to finish or
// time out on its own. Stop is idempotent; calling it before Start is a safe no-op.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.stopped {
		c.stopped = true
		if c.cancel != nil {
			c.cancel()
		}
	}
	c.mu.Unlock()

	c.wg.Wait()
}

// poll runs one fetch through the singleflight group so concurrent callers
// share a single request.
//
// The shared fetch never inherits a caller's cancellation: a caller whose ctx
// ends stops waiting and gets ctx.Err(), while the fetch completes or times
// out on its own and is published for everyone else.
func (c *Coordinator) poll(ctx context.Context) error {
	ch := c.flight.DoChan("poll", func() (any, error) {
		return nil, c.runPoll(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) runPoll(ctx context.Context) error {
	prev := c.Snapshot()
	c.phase.Store(int32(PhasePolling))

	start := time.Now()
	data, err := c.fetcher.Fetch(ctx)
	finished := time.Now()

	next := &Snapshot{UpdatedAt: finished}
	kind := gatus.KindOf(err)

	switch kind {
	case gatus.KindNone:
		if data == nil {
			data = []gatus.EndpointStatus{}
		}
		next.Data = data
		next.LastSuccess = true
		next.Phase = PhaseReady
		next.LastSuccessAt = finished

		attrs := []any{"endpoints", len(data), "duration_ms", finished.Sub(start).Milliseconds()}
		if prev.Phase == PhaseStale || prev.Phase == PhaseAuthFailed {
			c.logger.Info("poll recovered", attrs...)
		} else {
			c.logger.Debug("successfully fetched endpoints", attrs...)
		}

	default:
		next.Data = prev.Data
		next.LastError = err
		next.LastErrorKind = kind
		next.LastSuccessAt = prev.LastSuccessAt
		next.Phase = PhaseStale
		if kind == gatus.KindAuth {
			next.Phase = PhaseAuthFailed
		}

		switch kind {
		case gatus.KindAuth:
			c.logger.Error("authentication failed for Gatus API", "error", err.Error())
		case gatus.KindCommunication:
			c.logger.Warn("error fetching data from Gatus API", "kind", kind.String(), "error", err.Error())
		default:
			c.logger.Error("error fetching data from Gatus API", "kind", kind.String(), "error", err.Error())
		}
	}

	c.snapshot.Store(next)
	c.phase.Store(int32(next.Phase))

	if c.observer != nil {
		c.observer.ObservePoll(PollOutcome{
			Name:      c.name,
			Kind:      kind,
			Duration:  finished.Sub(start),
			Endpoints: len(next.Data),
			At:        finished,
		})
	}

	c.notify(next)

	switch kind {
	case gatus.KindNone:
		return nil
	case gatus.KindAuth:
		return fmt.Errorf("%s: %w: %w", c.name, ErrAuthFailed, err)
	default:
		return fmt.Errorf("%s: %w: %w", c.name, ErrUpdateFailed, err)
	}
}

// notify calls every listener with snap. Panics are recovered per listener.
func (c *Coordinator) notify(snap *Snapshot) {
	c.listenersMu.RLock()
	listeners := make([]listenerEntry, len(c.listeners))
	copy(listeners, c.listeners)
	c.listenersMu.RUnlock()

	for _, e := range listeners {
		c.safeNotify(e.fn, snap)
	}
}

// safeNotify calls l with panic recovery. The stack trace is logged with a
// correlation id so a misbehaving listener cannot stop polling.
func (c *Coordinator) safeNotify(l Listener, snap *Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("listener panic",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	l(snap)
}
