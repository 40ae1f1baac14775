package gatusbridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/jpalmerr/gatusbridge/dashboard"
	"github.com/jpalmerr/gatusbridge/internal/entity"
	"github.com/jpalmerr/gatusbridge/internal/gatus"
	"github.com/jpalmerr/gatusbridge/internal/healthcheck"
	"github.com/jpalmerr/gatusbridge/internal/metrics"
	"github.com/jpalmerr/gatusbridge/internal/poller"
	"github.com/jpalmerr/gatusbridge/internal/server"
	"github.com/jpalmerr/gatusbridge/internal/store"
)

const (
	defaultPort           = 8080
	defaultRequestTimeout = gatus.DefaultTimeout

	// maxConcurrentSetups bounds first refreshes running at once.
	maxConcurrentSetups = 8
)

// EntityState is the published state of one entity: a problem binary
// sensor per Gatus endpoint, plus an uptime badge image when enabled.
type EntityState = entity.State

// Bridge is the main orchestrator: it polls every configured Gatus server,
// projects the results onto entities and serves them over HTTP.
//
// A Bridge is created using [New] with functional options and started with
// [Bridge.Start]. The typical lifecycle is:
//
//	inst, _ := gatusbridge.NewInstance("http://gatus.lan:8080")
//	b, err := gatusbridge.New(gatusbridge.WithInstance(inst))
//	if err != nil {
//	    slog.Error("failed to create bridge", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	b.Start(ctx) // blocks until context cancelled
type Bridge struct {
	title          string
	version        string
	instances      []Instance
	port           int
	requestTimeout time.Duration
	logger         *slog.Logger
	stateCallbacks []func(EntityState)
	registry       *prometheus.Registry

	mu      sync.RWMutex
	running []*runningInstance
}

// runningInstance is an instance loaded by Start.
type runningInstance struct {
	inst        Instance
	client      *gatus.Client
	coord       *poller.Coordinator
	entities    *entity.Set
	unsubscribe func()
}

// New creates a new [Bridge] with the given options.
//
// At least one instance must be configured via [WithInstance] or
// [WithInstances], and no two instances may share a unique id (the same
// server URL). Other options have sensible defaults:
//   - Port: 8080
//   - Request timeout: 10 seconds
//
// Returns an error if no instances are configured or if any option is invalid.
func New(opts ...Option) (*Bridge, error) {
	cfg := &bridgeConfig{
		instances:      []Instance{},
		port:           defaultPort,
		requestTimeout: defaultRequestTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if len(cfg.instances) == 0 {
		return nil, errors.New("at least one instance is required")
	}

	uniqueIDs := make(map[string]bool, len(cfg.instances))
	entryIDs := make(map[string]bool, len(cfg.instances))
	for _, inst := range cfg.instances {
		if inst.uniqueID == "" {
			return nil, errors.New("instance must be created with NewInstance")
		}
		if uniqueIDs[inst.uniqueID] {
			return nil, fmt.Errorf("instance %q is already configured", inst.url)
		}
		uniqueIDs[inst.uniqueID] = true
		if entryIDs[inst.entryID] {
			return nil, fmt.Errorf("duplicate entry id: %q", inst.entryID)
		}
		entryIDs[inst.entryID] = true
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Bridge{
		title:          cfg.title,
		version:        cfg.version,
		instances:      cfg.instances,
		port:           cfg.port,
		requestTimeout: cfg.requestTimeout,
		logger:         logger,
		stateCallbacks: cfg.stateCallbacks,
		registry:       cfg.registry,
	}, nil
}

// Start loads every instance and serves the dashboard and API.
//
// Start is a blocking call that runs until the provided context is cancelled.
// For each instance it runs a first refresh before any entity is created,
// then polls on the instance's scan interval. First refreshes of different
// instances run concurrently, a bounded number at a time. An instance whose
// credentials are rejected is still loaded: it reports that it needs
// reauthentication, creates no entities and recovers through a manual
// refresh.
//
// On cancellation every instance is unloaded: polling stops, HTTP clients
// are closed and its entities are removed. Cancellation during the first
// refreshes unloads whatever was set up without serving.
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server fails
// to start.
func (b *Bridge) Start(ctx context.Context) error {
	b.logger.Info("gatusbridge starting", "instance_count", len(b.instances))
	b.logger.Info("dashboard available", "url", fmt.Sprintf("http://localhost:%d", b.port))

	if ctx.Err() != nil {
		return nil
	}

	reg := b.registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	entityStore := store.NewMemoryStore()

	running := make([]*runningInstance, len(b.instances))
	cleanup := func() {
		b.mu.Lock()
		b.running = nil
		b.mu.Unlock()

		for _, rt := range running {
			if rt != nil {
				b.unloadInstance(rt, entityStore, collector)
			}
		}
		collector.Unregister(reg)
	}

	g, setupCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSetups)
	for i, inst := range b.instances {
		g.Go(func() error {
			rt, err := b.setupInstance(setupCtx, inst, entityStore, collector)
			running[i] = rt
			return err
		})
	}
	if err := g.Wait(); err != nil {
		cleanup()
		if ctx.Err() != nil {
			b.logger.Info("gatusbridge stopped during setup")
			return nil
		}
		return fmt.Errorf("failed to set up instances: %w", err)
	}

	for _, rt := range running {
		rt.coord.Start(ctx)
		b.logger.Info("instance loaded",
			"instance", rt.inst.EntryID(),
			"phase", rt.coord.Phase().String(),
			"scan_interval", rt.inst.ScanInterval().String(),
		)
	}

	b.mu.Lock()
	b.running = running
	b.mu.Unlock()

	sources := make([]healthcheck.Source, len(running))
	for i, rt := range running {
		sources[i] = rt.coord
	}
	checker := healthcheck.NewChecker(sources, b.logger)

	httpServer := server.NewServer(entityStore, instanceRegistry{b}, b.port, dashboard.Assets, b.title, b.logger,
		server.WithHealthHandler(healthcheck.Handler(checker)),
		server.WithMetricsHandler(metrics.Handler(reg)),
	)
	if err := httpServer.Start(ctx); err != nil {
		cleanup()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	<-ctx.Done()
	cleanup()
	b.logger.Info("gatusbridge stopped")
	return nil
}

// setupInstance opens the client, runs the first refresh and subscribes the
// entity set to every later poll. Scheduled polling is started by the caller.
//
// An error is returned only when ctx ends during setup; the partially set up
// instance is returned with it so it can be unloaded.
func (b *Bridge) setupInstance(ctx context.Context, inst Instance, st store.Store, collector *metrics.Collector) (*runningInstance, error) {
	logger := b.logger.With("instance", inst.EntryID())

	client := gatus.NewClient(inst.URL(),
		gatus.WithTimeout(b.requestTimeout),
		gatus.WithUserAgent(userAgent(b.version)),
		gatus.WithLogger(logger),
	)
	coord := poller.NewCoordinator(inst.EntryID(), client, inst.ScanInterval(), b.logger,
		poller.WithObserver(collector),
	)

	rt := &runningInstance{
		inst:        inst,
		client:      client,
		coord:       coord,
		unsubscribe: func() {},
	}

	if err := coord.FirstRefresh(ctx); err != nil {
		logger.Error("gatus server rejected the request, reconfigure the instance", "error", err)
	}
	if err := ctx.Err(); err != nil {
		return rt, fmt.Errorf("instance %s: %w", inst.EntryID(), err)
	}

	rt.entities = entity.NewSet(entity.SetConfig{
		InstanceID:  inst.EntryID(),
		Device:      entity.NewDeviceInfo(inst.EntryID(), inst.URL(), b.version, logger),
		Images:      inst.Images(),
		BadgeWindow: inst.BadgeWindow(),
		BadgeURL:    client.BadgeURL,
	})

	publish := func(snap *poller.Snapshot) {
		b.publish(rt, snap, st, collector)
	}
	rt.unsubscribe = coord.Subscribe(publish)
	publish(coord.Snapshot())
	return rt, nil
}

// publish creates entities for new endpoints and pushes every entity state
// of the instance to the store, metrics and callbacks.
func (b *Bridge) publish(rt *runningInstance, snap *poller.Snapshot, st store.Store, collector *metrics.Collector) {
	if added := rt.entities.Sync(snap); len(added) > 0 {
		b.logger.Info("entities created", "instance", rt.inst.EntryID(), "count", len(added))
	}

	for _, state := range rt.entities.States(snap) {
		// store update first (callbacks fire after data is persisted)
		st.Update(state)
		collector.ObserveState(state)

		for _, cb := range b.stateCallbacks {
			cbState := state
			cbState.Attributes = maps.Clone(state.Attributes)
			invokeCallbackSafe(cb, cbState, b.logger)
		}
	}
}

func (b *Bridge) unloadInstance(rt *runningInstance, st store.Store, collector *metrics.Collector) {
	rt.unsubscribe()
	rt.coord.Stop()
	rt.client.Close()

	id := rt.inst.EntryID()
	removed := st.DeleteInstance(id)
	collector.DeleteInstance(id)
	b.logger.Info("instance unloaded", "instance", id, "entities_removed", removed)
}

// lookup returns the loaded instance with the given entry id.
func (b *Bridge) lookup(id string) (*runningInstance, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, rt := range b.running {
		if rt.inst.EntryID() == id {
			return rt, true
		}
	}
	return nil, false
}

// Instances returns a copy of the configured instances.
func (b *Bridge) Instances() []Instance {
	cp := make([]Instance, len(b.instances))
	copy(cp, b.instances)
	return cp
}

// Port returns the configured HTTP port.
func (b *Bridge) Port() int {
	return b.port
}

// Title returns the configured dashboard title.
func (b *Bridge) Title() string {
	return b.title
}

func userAgent(version string) string {
	if version == "" {
		return "gatusbridge"
	}
	return "gatusbridge/" + version
}

// invokeCallbackSafe calls a state callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(EntityState), st EntityState, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("state callback panicked",
				"panic", r,
				"entity", st.UniqueID,
			)
		}
	}()
	cb(st)
}
