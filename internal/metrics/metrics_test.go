package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalmerr/gatusbridge/internal/entity"
	"github.com/jpalmerr/gatusbridge/internal/gatus"
	"github.com/jpalmerr/gatusbridge/internal/poller"
)

func newTestCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)
	return c, reg
}

func TestCollector_ObservePoll(t *testing.T) {
	c, _ := newTestCollector(t)

	c.ObservePoll(poller.PollOutcome{Name: "lan", Kind: gatus.KindNone, Duration: 200 * time.Millisecond, Endpoints: 3})
	c.ObservePoll(poller.PollOutcome{Name: "lan", Kind: gatus.KindCommunication, Duration: time.Second, Endpoints: 3})
	c.ObservePoll(poller.PollOutcome{Name: "lan", Kind: gatus.KindCommunication, Duration: time.Second, Endpoints: 3})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.polls.WithLabelValues("lan", OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.polls.WithLabelValues("lan", "communication")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.endpoints.WithLabelValues("lan")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.lastSuccess.WithLabelValues("lan")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.duration))
}

func TestCollector_ObserveState(t *testing.T) {
	c, _ := newTestCollector(t)

	c.ObserveState(entity.State{Type: entity.TypeBinarySensor, InstanceID: "lan", Key: "media_plex", Problem: true})
	c.ObserveState(entity.State{Type: entity.TypeBinarySensor, InstanceID: "lan", Key: "core_api", Problem: false})
	c.ObserveState(entity.State{Type: entity.TypeImage, InstanceID: "lan", Key: "core_api"})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.problem.WithLabelValues("lan", "media_plex")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.problem.WithLabelValues("lan", "core_api")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.problem))
}

func TestCollector_DeleteInstance(t *testing.T) {
	c, _ := newTestCollector(t)

	c.ObservePoll(poller.PollOutcome{Name: "lan", Endpoints: 1})
	c.ObservePoll(poller.PollOutcome{Name: "cloud", Endpoints: 1})
	c.ObserveState(entity.State{Type: entity.TypeBinarySensor, InstanceID: "lan", Key: "a"})

	c.DeleteInstance("lan")

	assert.Equal(t, 1, testutil.CollectAndCount(c.endpoints))
	assert.Equal(t, 0, testutil.CollectAndCount(c.problem))
}

func TestNewCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)

	_, err = NewCollector(reg)
	assert.Error(t, err)
}

func TestCollector_Unregister(t *testing.T) {
	c, reg := newTestCollector(t)
	c.Unregister(reg)

	_, err := NewCollector(reg)
	assert.NoError(t, err)
}

func TestHandler(t *testing.T) {
	c, reg := newTestCollector(t)
	c.ObservePoll(poller.PollOutcome{Name: "lan", Endpoints: 2})

	ts := httptest.NewServer(Handler(reg))
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `gatusbridge_endpoints{instance="lan"} 2`))
}
