// Package mockgatus serves a fake Gatus statuses API for demos and manual
// runs. Each endpoint flips between healthy and failing every 20-60 seconds.
package mockgatus

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"
)

// maxResults is how many results are kept per endpoint, like Gatus' page size.
const maxResults = 20

type endpoint struct {
	group, name, host string

	healthy      bool
	nextChangeAt time.Time
	results      []result
}

type result struct {
	Success   bool   `json:"success"`
	Status    int    `json:"status"`
	Hostname  string `json:"hostname"`
	Duration  int64  `json:"duration"`
	Timestamp string `json:"timestamp"`
}

type status struct {
	Key     string   `json:"key"`
	Name    string   `json:"name"`
	Group   string   `json:"group"`
	Results []result `json:"results"`
}

// Server is the mock state.
type Server struct {
	token  string
	logger *slog.Logger

	mu        sync.Mutex
	endpoints []*endpoint
}

// New creates a mock with a few grouped endpoints. A non-empty token must be
// sent as a bearer token, otherwise requests get 401.
func New(token string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{token: token, logger: logger}
	for _, e := range [][3]string{
		{"core", "API", "api.internal"},
		{"core", "Database", "db.internal"},
		{"media", "Plex", "plex.lan"},
		{"external", "Google", "google.com"},
	} {
		s.endpoints = append(s.endpoints, &endpoint{
			group:        e[0],
			name:         e[1],
			host:         e[2],
			healthy:      true,
			nextChangeAt: time.Now().Add(time.Duration(20+rand.Intn(41)) * time.Second),
		})
	}
	return s
}

// Handler returns the statuses API and uptime badges.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/endpoints/statuses", s.authorized(s.handleStatuses))
	mux.HandleFunc("GET /api/v1/endpoints/{key}/uptimes/{window}/badge.svg", s.handleBadge)
	return mux
}

func (s *Server) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatuses(w http.ResponseWriter, r *http.Request) {
	// simulate small latency variance
	time.Sleep(time.Duration(20+rand.Intn(80)) * time.Millisecond)

	s.mu.Lock()
	now := time.Now()
	out := make([]status, 0, len(s.endpoints))
	for _, ep := range s.endpoints {
		if now.After(ep.nextChangeAt) {
			ep.healthy = !ep.healthy
			ep.nextChangeAt = now.Add(time.Duration(20+rand.Intn(41)) * time.Second)
			s.logger.Info("status change", "endpoint", key(ep), "healthy", ep.healthy)
		}
		ep.results = append(ep.results, ep.evaluate(now))
		if len(ep.results) > maxResults {
			ep.results = ep.results[len(ep.results)-maxResults:]
		}
		out = append(out, status{
			Key:     key(ep),
			Name:    ep.name,
			Group:   ep.group,
			Results: append([]result(nil), ep.results...),
		})
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

func (s *Server) handleBadge(w http.ResponseWriter, r *http.Request) {
	window := r.PathValue("window")
	uptime := 100 - rand.Float64()*5

	w.Header().Set("Content-Type", "image/svg+xml")
	fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" width="120" height="20">`+
		`<rect width="120" height="20" fill="#40cc11"/>`+
		`<text x="6" y="14" fill="#fff" font-family="sans-serif" font-size="11">%s %.2f%%</text></svg>`,
		window, uptime)
}

func (ep *endpoint) evaluate(now time.Time) result {
	code := http.StatusOK
	if !ep.healthy {
		code = http.StatusServiceUnavailable
	}
	return result{
		Success:   ep.healthy,
		Status:    code,
		Hostname:  ep.host,
		Duration:  int64(time.Duration(5+rand.Intn(200)) * time.Millisecond),
		Timestamp: now.UTC().Format(time.RFC3339Nano),
	}
}

// key builds the Gatus endpoint key "{group}_{name}".
func key(ep *endpoint) string {
	return strings.ToLower(ep.group + "_" + ep.name)
}
