// Package healthcheck reports whether every configured Gatus server is
// being polled successfully.
package healthcheck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexliesenfeld/health"

	"github.com/jpalmerr/gatusbridge/internal/poller"
)

var (
	// ErrReauthRequired is reported while an instance's credentials are rejected.
	ErrReauthRequired = errors.New("reauthentication required")

	// ErrNotPolled is reported before the first poll has finished.
	ErrNotPolled = errors.New("no poll completed yet")
)

// Source is one polled instance. [poller.Coordinator] implements it.
type Source interface {
	Name() string
	Snapshot() *poller.Snapshot
}

// NewChecker returns a checker with one synchronous check per source.
// Status changes are logged.
func NewChecker(sources []Source, logger *slog.Logger) health.Checker {
	if logger == nil {
		logger = slog.Default()
	}

	opts := []health.CheckerOption{
		health.WithDisabledCache(),
		health.WithTimeout(5 * time.Second),
		health.WithStatusListener(func(_ context.Context, state health.CheckerState) {
			logger.Info("health status changed", "status", string(state.Status))
		}),
	}
	for _, src := range sources {
		src := src
		opts = append(opts, health.WithCheck(health.Check{
			Name: src.Name(),
			Check: func(context.Context) error {
				return Evaluate(src.Snapshot())
			},
		}))
	}
	return health.NewChecker(opts...)
}

// Evaluate returns nil when snap is the outcome of a successful poll.
func Evaluate(snap *poller.Snapshot) error {
	switch {
	case snap == nil || snap.Phase == poller.PhaseIdle:
		return ErrNotPolled
	case snap.NeedsReauth():
		return ErrReauthRequired
	case !snap.LastSuccess:
		return fmt.Errorf("last poll failed: %w", snap.LastError)
	}
	return nil
}

// Handler serves checker as JSON: 200 when every instance is up, 503
// otherwise.
func Handler(checker health.Checker) http.Handler {
	return health.NewHandler(checker)
}
