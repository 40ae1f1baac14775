package flow

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jpalmerr/gatusbridge/internal/gatus"
)

// ResultType is the outcome of a flow step.
type ResultType string

const (
	ResultForm        ResultType = "form"
	ResultCreateEntry ResultType = "create_entry"
	ResultAbort       ResultType = "abort"
)

// Form error keys, reported under ErrorBase.
const (
	ErrorBase = "base"

	ErrInvalidURL          = "invalid_url"
	ErrAuth                = "auth"
	ErrConnection          = "connection"
	ErrUnknown             = "unknown"
	ErrInvalidScanInterval = "invalid_scan_interval"

	AbortAlreadyConfigured = "already_configured"
)

// Step ids.
const (
	StepIDUser = "user"
	StepIDInit = "init"
)

// Result is what a step returns: a form to (re)show, an entry to create, or
// an abort reason.
type Result struct {
	Type   ResultType        `json:"type"`
	StepID string            `json:"step_id,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
	Reason string            `json:"reason,omitempty"`

	// Entry is set for ResultCreateEntry from StepUser.
	Entry *Entry `json:"entry,omitempty"`

	// Options is set for ResultCreateEntry from StepOptions.
	Options map[string]any `json:"options,omitempty"`

	// Defaults are the values the form is pre-filled with.
	Defaults map[string]any `json:"defaults,omitempty"`
}

// UserInput is the submitted setup form.
type UserInput struct {
	URL   string
	Title string
}

// OptionsInput is the submitted options form.
type OptionsInput struct {
	ScanInterval int
}

// Client is the fetcher used for the test fetch.
type Client interface {
	Fetch(ctx context.Context) ([]gatus.EndpointStatus, error)
	Close()
}

// ClientFactory opens a client for url.
type ClientFactory func(url string) Client

// ConfiguredFunc reports whether uniqueID is already configured.
type ConfiguredFunc func(uniqueID string) bool

// Flow runs the setup steps for new servers.
type Flow struct {
	newClient  ClientFactory
	configured ConfiguredFunc
	logger     *slog.Logger
}

// Option configures a [Flow].
type Option func(*Flow)

// WithClientFactory replaces the client used for the test fetch.
func WithClientFactory(f ClientFactory) Option {
	return func(fl *Flow) {
		if f != nil {
			fl.newClient = f
		}
	}
}

// WithConfigured sets the lookup of already configured unique ids.
func WithConfigured(f ConfiguredFunc) Option {
	return func(fl *Flow) {
		if f != nil {
			fl.configured = f
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(fl *Flow) {
		if logger != nil {
			fl.logger = logger
		}
	}
}

// New creates a [Flow]. Without options it tests against real servers and
// treats nothing as configured.
func New(opts ...Option) *Flow {
	fl := &Flow{
		configured: func(string) bool { return false },
		logger:     slog.Default(),
	}
	fl.newClient = func(url string) Client {
		return gatus.NewClient(url, gatus.WithLogger(fl.logger))
	}
	for _, opt := range opts {
		opt(fl)
	}
	return fl
}

// StepUser handles the setup form. A nil input shows the empty form.
func (fl *Flow) StepUser(ctx context.Context, input *UserInput) Result {
	if input == nil {
		return formResult(StepIDUser, nil, nil)
	}

	url := strings.TrimSpace(input.URL)
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return formResult(StepIDUser, map[string]string{ErrorBase: ErrInvalidURL}, nil)
	}

	if key := fl.testConnection(ctx, url); key != "" {
		return formResult(StepIDUser, map[string]string{ErrorBase: key}, nil)
	}

	entry := NewEntry(url, strings.TrimSpace(input.Title))
	if fl.configured(entry.UniqueID) {
		return Result{Type: ResultAbort, Reason: AbortAlreadyConfigured}
	}
	return Result{Type: ResultCreateEntry, Entry: &entry}
}

// testConnection fetches once and returns the form error key, or "" on
// success.
func (fl *Flow) testConnection(ctx context.Context, url string) string {
	client := fl.newClient(url)
	defer client.Close()

	_, err := client.Fetch(ctx)
	switch gatus.KindOf(err) {
	case gatus.KindNone:
		return ""
	case gatus.KindAuth:
		fl.logger.Warn("setup rejected by Gatus server", "url", url, "error", err.Error())
		return ErrAuth
	case gatus.KindCommunication:
		fl.logger.Error("cannot reach Gatus server", "url", url, "error", err.Error())
		return ErrConnection
	default:
		fl.logger.Error("unexpected error testing Gatus server", "url", url, "error", err.Error())
		return ErrUnknown
	}
}

// StepOptions handles the options form of entry. A nil input shows the form
// pre-filled with the current interval.
func StepOptions(input *OptionsInput, entry Entry) Result {
	if input == nil {
		current := int(entry.ScanInterval().Seconds())
		return formResult(StepIDInit, nil, map[string]any{ConfScanInterval: current})
	}

	if err := ValidateScanInterval(input.ScanInterval); err != "" {
		return formResult(StepIDInit,
			map[string]string{ConfScanInterval: err},
			map[string]any{ConfScanInterval: input.ScanInterval})
	}
	return Result{
		Type:    ResultCreateEntry,
		Options: map[string]any{ConfScanInterval: input.ScanInterval},
	}
}

// ValidateScanInterval returns the form error key for seconds, or "" when
// it is within bounds and on a step.
func ValidateScanInterval(seconds int) string {
	if seconds < MinScanInterval || seconds > MaxScanInterval || seconds%ScanIntervalStep != 0 {
		return ErrInvalidScanInterval
	}
	return ""
}

func formResult(step string, errs map[string]string, defaults map[string]any) Result {
	if errs == nil {
		errs = map[string]string{}
	}
	return Result{Type: ResultForm, StepID: step, Errors: errs, Defaults: defaults}
}
