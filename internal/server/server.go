package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jpalmerr/gatusbridge/internal/diagnostics"
	"github.com/jpalmerr/gatusbridge/internal/store"
)

const (
	// sseWriteTimeout is the maximum time allowed for a single SSE write operation.
	// This prevents goroutine leaks when clients are slow or disconnected.
	// Must be <= shutdown timeout to ensure clean shutdown.
	sseWriteTimeout = 5 * time.Second

	shutdownTimeout = 5 * time.Second

	// defaultTitle is used when no custom title is configured.
	defaultTitle = "Gatus Bridge"

	// titlePlaceholder is the marker in HTML that gets replaced with the actual title.
	titlePlaceholder = "{{.Title}}"
)

// ErrUnknownInstance is returned by a [Registry] for an id it does not know.
var ErrUnknownInstance = errors.New("unknown instance")

// InstanceView is the public summary of one configured Gatus server.
type InstanceView struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	ScanInterval      int        `json:"scan_interval"`
	Phase             string     `json:"phase"`
	LastUpdateSuccess bool       `json:"last_update_success"`
	LastException     *string    `json:"last_exception"`
	NeedsReauth       bool       `json:"needs_reauth"`
	EndpointCount     int        `json:"endpoint_count"`
	LastSuccessAt     *time.Time `json:"last_success_at,omitempty"`
}

// Registry gives the server access to the configured instances.
type Registry interface {
	// Instances returns every instance in configuration order.
	Instances() []InstanceView

	// Diagnostics returns the diagnostics report of an instance.
	Diagnostics(id string) (diagnostics.Report, error)

	// Refresh polls an instance now and returns its updated view. A failed
	// poll is reflected in the view, not in the error.
	Refresh(ctx context.Context, id string) (InstanceView, error)
}

// Option configures a [Server].
type Option func(*Server)

// WithHealthHandler serves h on /healthz.
func WithHealthHandler(h http.Handler) Option {
	return func(s *Server) {
		s.health = h
	}
}

// WithMetricsHandler serves h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// Server handles HTTP requests for the dashboard and the entity API.
//
// Routes:
//   - GET /: the embedded dashboard
//   - GET /api/entities: every entity state as JSON
//   - GET /api/entities/{id}: one entity state
//   - GET /api/sse: Server-Sent Events stream of entity states
//   - GET /api/instances: configured Gatus servers
//   - GET /api/instances/{id}/diagnostics: redacted diagnostics
//   - POST /api/instances/{id}/refresh: poll a server now
//   - GET /healthz and GET /metrics when configured
//
// The server is designed for graceful shutdown via context cancellation.
type Server struct {
	store      store.Store
	registry   Registry
	port       int
	httpServer *http.Server
	assets     fs.FS
	title      string
	logger     *slog.Logger
	health     http.Handler
	metrics    http.Handler
}

// NewServer creates a new HTTP [Server].
//
// Parameters:
//   - st: Store holding entity states
//   - reg: Registry of configured instances (may be nil)
//   - port: TCP port to listen on
//   - assets: Embedded filesystem containing dashboard assets (may be nil)
//   - title: Dashboard title (defaults to "Gatus Bridge" if empty)
//   - logger: Logger for server events
//
// The server is not started until [Server.Start] is called.
func NewServer(st store.Store, reg Registry, port int, assets fs.FS, title string, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:    st,
		registry: reg,
		port:     port,
		assets:   assets,
		title:    title,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the request multiplexer with every route registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/entities", s.handleEntities)
	mux.HandleFunc("GET /api/entities/{id}", s.handleEntity)
	mux.HandleFunc("GET /api/sse", s.handleSSE)

	if s.registry != nil {
		mux.HandleFunc("GET /api/instances", s.handleInstances)
		mux.HandleFunc("GET /api/instances/{id}/diagnostics", s.handleDiagnostics)
		mux.HandleFunc("POST /api/instances/{id}/refresh", s.handleRefresh)
	}

	if s.health != nil {
		mux.Handle("GET /healthz", s.health)
	}
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}

	if s.assets != nil {
		mux.HandleFunc("GET /", s.handleDashboard)
	}
	return mux
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. The server will continue running until the context is
// cancelled, at which point it initiates a graceful shutdown with a 5-second
// timeout.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	// create listener first to verify port availability synchronously
	addr := fmt.Sprintf(":%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		// BaseContext derives all request contexts from the server context.
		// When ctx is cancelled, all request contexts are also cancelled,
		// enabling graceful shutdown of long-running handlers like SSE.
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()

	// shutdown on context cancellation
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// handleDashboard serves the main dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	content, err := fs.ReadFile(s.assets, "assets/index.html")
	if err != nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	// apply title substitution with HTML escaping to prevent XSS
	title := s.title
	if title == "" {
		title = defaultTitle
	}
	rendered := strings.ReplaceAll(string(content), titlePlaceholder, html.EscapeString(title))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err = w.Write([]byte(rendered)); err != nil {
		s.logger.Error("failed to write dashboard response", "error", err)
	}
}

// handleEntities returns every entity state as JSON.
func (s *Server) handleEntities(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.GetAll())
}

// handleEntity returns one entity state.
func (s *Server) handleEntity(w http.ResponseWriter, r *http.Request) {
	st, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		http.Error(w, "Entity not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleInstances(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.registry.Instances())
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	report, err := s.registry.Diagnostics(r.PathValue("id"))
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	view, err := s.registry.Refresh(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, view)
}

func (s *Server) writeRegistryError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrUnknownInstance) {
		http.Error(w, "Instance not found", http.StatusNotFound)
		return
	}
	s.logger.Error("instance request failed", "error", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// handleSSE streams entity updates via Server-Sent Events.
//
// The handler uses write deadlines to prevent goroutine leaks when clients are
// slow or disconnected. Without deadlines, a blocked Fprintf call would prevent
// the handler from detecting context cancellation or channel closure.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)

	// track if write deadlines are supported (may not be for some ResponseWriter impls)
	deadlinesSupported := true

	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// subscribe before reading the initial states so no update is lost in between
	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	for _, st := range s.store.GetAll() {
		data, err := json.Marshal(st)
		if err != nil {
			continue
		}
		if err := writeAndFlush(data); err != nil {
			return
		}
	}

	for {
		select {
		case st, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(st)
			if err != nil {
				continue
			}
			if err := writeAndFlush(data); err != nil {
				return
			}

		case <-r.Context().Done():
			// request context is derived from server context via BaseContext,
			// so this fires on both client disconnect AND server shutdown
			return
		}
	}
}
