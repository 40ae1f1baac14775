package gatusbridge

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func mustInstance(t *testing.T, url string, opts ...InstanceOption) Instance {
	t.Helper()
	inst, err := NewInstance(url, opts...)
	if err != nil {
		t.Fatalf("NewInstance(%q) error = %v", url, err)
	}
	return inst
}

func TestNew_Valid(t *testing.T) {
	inst := mustInstance(t, "http://gatus.lan:8080")

	b, err := New(WithInstance(inst))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if len(b.Instances()) != 1 {
		t.Errorf("len(Instances()) = %v, want %v", len(b.Instances()), 1)
	}
	if b.Port() != defaultPort {
		t.Errorf("Port() = %v, want %v", b.Port(), defaultPort)
	}
}

func TestNew_NoInstances(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Error("New() expected error for no instances, got nil")
	}
}

func TestNew_ZeroValueInstance(t *testing.T) {
	_, err := New(WithInstance(Instance{}))
	if err == nil {
		t.Error("New() expected error for zero-value instance, got nil")
	}
}

func TestNew_DuplicateURL(t *testing.T) {
	a := mustInstance(t, "http://gatus.lan:8080", WithInstanceTitle("A"))
	b := mustInstance(t, " http://gatus.lan:8080 ", WithInstanceTitle("B"))

	_, err := New(WithInstances(a, b))
	if err == nil {
		t.Fatal("New() expected error for duplicate URL, got nil")
	}
	if !strings.Contains(err.Error(), "already configured") {
		t.Errorf("New() error = %v, want error containing 'already configured'", err)
	}
}

func TestNew_DuplicateEntryID(t *testing.T) {
	a := mustInstance(t, "http://one.lan", WithEntryID("home"))
	b := mustInstance(t, "http://two.lan", WithEntryID("home"))

	_, err := New(WithInstance(a), WithInstance(b))
	if err == nil {
		t.Fatal("New() expected error for duplicate entry id, got nil")
	}
	if !strings.Contains(err.Error(), "duplicate entry id") {
		t.Errorf("New() error = %v, want error containing 'duplicate entry id'", err)
	}
}

func TestNew_InstancesCopied(t *testing.T) {
	b, err := New(WithInstance(mustInstance(t, "http://gatus.lan")))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got := b.Instances()
	got[0] = Instance{}

	if b.Instances()[0].URL() != "http://gatus.lan" {
		t.Error("mutating Instances() result affected the bridge")
	}
}

func TestWithPort(t *testing.T) {
	inst := mustInstance(t, "http://gatus.lan")

	tests := []struct {
		name    string
		port    int
		wantErr bool
	}{
		{"valid", 9090, false},
		{"min", 1, false},
		{"max", 65535, false},
		{"zero", 0, true},
		{"negative", -1, true},
		{"too high", 65536, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New(WithInstance(inst), WithPort(tt.port))
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(WithPort(%d)) error = %v, wantErr %v", tt.port, err, tt.wantErr)
			}
			if err == nil && b.Port() != tt.port {
				t.Errorf("Port() = %v, want %v", b.Port(), tt.port)
			}
		})
	}
}

func TestWithLogger(t *testing.T) {
	inst := mustInstance(t, "http://gatus.lan")

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	b, err := New(WithInstance(inst), WithLogger(logger))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if b.logger != logger {
		t.Error("logger not applied")
	}
}

func TestWithLogger_Nil(t *testing.T) {
	_, err := New(WithInstance(mustInstance(t, "http://gatus.lan")), WithLogger(nil))
	if err == nil {
		t.Error("New(WithLogger(nil)) expected error, got nil")
	}
}

func TestWithLogger_DefaultsToSlogDefault(t *testing.T) {
	b, err := New(WithInstance(mustInstance(t, "http://gatus.lan")))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if b.logger != slog.Default() {
		t.Error("logger should default to slog.Default()")
	}
}

func TestWithTitle(t *testing.T) {
	b, err := New(WithInstance(mustInstance(t, "http://gatus.lan")), WithTitle("Home Lab"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if b.Title() != "Home Lab" {
		t.Errorf("Title() = %q, want %q", b.Title(), "Home Lab")
	}
}

func TestWithRequestTimeout(t *testing.T) {
	inst := mustInstance(t, "http://gatus.lan")

	b, err := New(WithInstance(inst), WithRequestTimeout(3*time.Second))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if b.requestTimeout != 3*time.Second {
		t.Errorf("requestTimeout = %v, want %v", b.requestTimeout, 3*time.Second)
	}

	for _, d := range []time.Duration{0, -time.Second} {
		if _, err := New(WithInstance(inst), WithRequestTimeout(d)); err == nil {
			t.Errorf("New(WithRequestTimeout(%v)) expected error, got nil", d)
		}
	}
}

func TestWithRequestTimeout_Default(t *testing.T) {
	b, err := New(WithInstance(mustInstance(t, "http://gatus.lan")))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if b.requestTimeout != 10*time.Second {
		t.Errorf("requestTimeout = %v, want %v", b.requestTimeout, 10*time.Second)
	}
}

func TestWithStateCallback_NilIgnored(t *testing.T) {
	b, err := New(WithInstance(mustInstance(t, "http://gatus.lan")), WithStateCallback(nil))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if len(b.stateCallbacks) != 0 {
		t.Errorf("len(stateCallbacks) = %d, want 0", len(b.stateCallbacks))
	}
}

func TestWithMetricsRegistry(t *testing.T) {
	inst := mustInstance(t, "http://gatus.lan")

	if _, err := New(WithInstance(inst), WithMetricsRegistry(nil)); err == nil {
		t.Error("New(WithMetricsRegistry(nil)) expected error, got nil")
	}

	reg := prometheus.NewRegistry()
	b, err := New(WithInstance(inst), WithMetricsRegistry(reg))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if b.registry != reg {
		t.Error("registry not applied")
	}
}

func TestUserAgent(t *testing.T) {
	if got := userAgent(""); got != "gatusbridge" {
		t.Errorf("userAgent(\"\") = %q", got)
	}
	if got := userAgent("1.2.0"); got != "gatusbridge/1.2.0" {
		t.Errorf("userAgent(\"1.2.0\") = %q", got)
	}
}
