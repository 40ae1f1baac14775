package entity

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalmerr/gatusbridge/internal/gatus"
	"github.com/jpalmerr/gatusbridge/internal/poller"
)

const mockURL = "http://gatus.example.com"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mockData() []gatus.EndpointStatus {
	return []gatus.EndpointStatus{
		{
			Key: "external_google", Name: "google", Group: "external",
			Results: []gatus.Result{{
				Success: true, Hostname: "google.com", Status: 200,
				Duration: 50_000_000, Timestamp: "2026-01-01T00:00:00Z",
			}},
		},
		{
			Key: "media_plex", Name: "plex", Group: "media",
			Results: []gatus.Result{{
				Success: false, Hostname: "plex.example.com", Status: 503,
				Duration: 100_000_000, Timestamp: "2026-01-01T00:01:00Z",
			}},
		},
	}
}

func snapshot(data []gatus.EndpointStatus, success bool) *poller.Snapshot {
	return &poller.Snapshot{
		Data:          data,
		LastSuccess:   success,
		UpdatedAt:     time.Date(2026, 1, 1, 0, 2, 0, 0, time.UTC),
		LastSuccessAt: time.Date(2026, 1, 1, 0, 2, 0, 0, time.UTC),
	}
}

func TestProject_HealthyEndpoint(t *testing.T) {
	p := Project(snapshot(mockData(), true), "external_google")

	assert.False(t, p.Problem)
	assert.True(t, p.Available)
}

func TestProject_FailingEndpoint(t *testing.T) {
	p := Project(snapshot(mockData(), true), "media_plex")

	assert.True(t, p.Problem)
	assert.True(t, p.Available)
	assert.Equal(t, 503, p.Attributes[AttrStatusCode])
	assert.Equal(t, 100.0, p.Attributes[AttrDurationMs])
}

func TestProject_NoData(t *testing.T) {
	p := Project(snapshot(nil, false), "external_google")

	assert.True(t, p.Problem)
	assert.False(t, p.Available)
	assert.Equal(t, map[string]any{}, p.Attributes)
}

func TestProject_NilSnapshot(t *testing.T) {
	p := Project(nil, "external_google")

	assert.True(t, p.Problem)
	assert.False(t, p.Available)
	assert.NotNil(t, p.Attributes)
	assert.Empty(t, p.Attributes)
}

func TestProject_EndpointNotFound(t *testing.T) {
	p := Project(snapshot(mockData(), true), "nonexistent_key")

	assert.True(t, p.Problem)
	assert.False(t, p.Available)
	assert.Empty(t, p.Attributes)
}

func TestProject_NoResults(t *testing.T) {
	data := []gatus.EndpointStatus{{Key: "empty_endpoint", Name: "empty", Group: "test", Results: []gatus.Result{}}}
	p := Project(snapshot(data, true), "empty_endpoint")

	assert.True(t, p.Problem)
	assert.False(t, p.Available)
	assert.Empty(t, p.Attributes)
}

func TestProject_CoordinatorFailed(t *testing.T) {
	p := Project(snapshot(mockData(), false), "external_google")

	assert.False(t, p.Available)
	// stale data still shows the last known result
	assert.False(t, p.Problem)
	assert.Empty(t, p.Attributes)
}

func TestProject_UsesLatestResult(t *testing.T) {
	data := []gatus.EndpointStatus{{
		Key: "k", Name: "n", Group: "g",
		Results: []gatus.Result{
			{Success: true, Status: 200},
			{Success: false, Status: 500},
		},
	}}
	p := Project(snapshot(data, true), "k")

	assert.True(t, p.Problem)
	assert.Equal(t, 500, p.Attributes[AttrStatusCode])
}

func TestProject_Attributes(t *testing.T) {
	p := Project(snapshot(mockData(), true), "external_google")

	want := map[string]any{
		AttrEndpointGroup: "external",
		AttrEndpointName:  "google",
		AttrHostname:      "google.com",
		AttrStatusCode:    200,
		AttrDurationMs:    50.0,
		AttrTimestamp:     "2026-01-01T00:00:00Z",
	}
	if diff := cmp.Diff(want, p.Attributes); diff != "" {
		t.Errorf("Attributes mismatch (-want +got):\n%s", diff)
	}
}

func TestProject_Idempotent(t *testing.T) {
	snap := snapshot(mockData(), true)
	for _, key := range []string{"external_google", "media_plex", "missing"} {
		first := Project(snap, key)
		second := Project(snap, key)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("Project(%q) not idempotent (-first +second):\n%s", key, diff)
		}
	}
}

func TestProject_DoesNotMutateSnapshot(t *testing.T) {
	snap := snapshot(mockData(), true)
	before := mockData()

	_ = Project(snap, "external_google")
	_ = Project(snap, "media_plex")

	assert.Equal(t, before, snap.Data)
}

func TestBinarySensor_Identity(t *testing.T) {
	b := BinarySensor{InstanceID: "test_entry_id", Key: "my_endpoint", Name: "plex", Group: "media"}

	assert.Equal(t, "test_entry_id_my_endpoint", b.UniqueID())
	assert.Equal(t, "media plex", b.DisplayName())
}

func TestBinarySensor_State(t *testing.T) {
	device := NewDeviceInfo("test_entry_id", mockURL, "1.0.0", testLogger())
	sensor := BinarySensor{InstanceID: "test_entry_id", Key: "media_plex", Name: "plex", Group: "media", Device: device}

	st := sensor.State(snapshot(mockData(), true))
	assert.Equal(t, StateOn, st.State)
	assert.True(t, st.Problem)
	assert.True(t, st.Available)
	assert.Equal(t, TypeBinarySensor, st.Type)
	assert.Equal(t, DeviceClassProblem, st.DeviceClass)
	assert.Equal(t, "media plex", st.Name)
	assert.Equal(t, "test_entry_id_media_plex", st.UniqueID)
	assert.Equal(t, Attribution, st.Attribution)
	assert.Equal(t, device, st.Device)

	healthy := BinarySensor{InstanceID: "test_entry_id", Key: "external_google", Name: "google", Group: "external"}
	assert.Equal(t, StateOff, healthy.State(snapshot(mockData(), true)).State)
}

func TestImage_State(t *testing.T) {
	img := Image{
		InstanceID: "entry", Key: "media_plex", Name: "plex", Group: "media",
		Window: "24h", URL: mockURL + "/api/v1/endpoints/media_plex/uptimes/24h/badge.svg",
	}

	assert.Equal(t, "entry_media_plex_uptime_24h", img.UniqueID())
	assert.Equal(t, "media plex 24h Uptime", img.DisplayName())

	st := img.State(snapshot(mockData(), true))
	assert.True(t, st.Available)
	assert.Equal(t, TypeImage, st.Type)
	assert.Equal(t, img.URL, st.ImageURL)
	assert.Equal(t, "2026-01-01T00:02:00Z", st.State)

	st = img.State(snapshot(mockData(), false))
	assert.False(t, st.Available)
	assert.Equal(t, StateUnavailable, st.State)

	st = img.State(nil)
	assert.False(t, st.Available)
}

func TestDeviceInfo(t *testing.T) {
	d := NewDeviceInfo("test_entry_id", mockURL, "1.0.0", testLogger())

	assert.Equal(t, [][2]string{{Domain, "test_entry_id"}}, d.Identifiers)
	assert.Equal(t, "Gatus (gatus.example.com)", d.Name)
	assert.Equal(t, "Gatus", d.Manufacturer)
	assert.Equal(t, "Health Monitor", d.Model)
	assert.Equal(t, mockURL, d.ConfigurationURL)
	assert.Equal(t, "1.0.0", d.SWVersion)
}

func TestDeviceInfo_NameFallsBackToRawURL(t *testing.T) {
	d := NewDeviceInfo("id", "not a url", nil, testLogger())
	assert.Equal(t, "Gatus (not a url)", d.Name)
	assert.Empty(t, d.SWVersion)
}

type versionObject struct{}

func (versionObject) String() string { return "1.2.3" }

func TestNormalizeSWVersion(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"semver", "1.0.0", "1.0.0"},
		{"trimmed", "  2.3.4 ", "2.3.4"},
		{"stringer", versionObject{}, "1.2.3"},
		{"v prefix", "v0.9.1", "v0.9.1"},
		{"branch name", "main", ""},
		{"dev build", "dev", ""},
		{"blank", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSWVersion(tt.in, testLogger()))
		})
	}
}

func TestSet_SyncAndStates(t *testing.T) {
	device := NewDeviceInfo("entry", mockURL, "1.0.0", testLogger())
	set := NewSet(SetConfig{
		InstanceID:  "entry",
		Device:      device,
		Images:      true,
		BadgeWindow: "24h",
		BadgeURL: func(key, window string) string {
			return mockURL + "/api/v1/endpoints/" + key + "/uptimes/" + window + "/badge.svg"
		},
	})

	added := set.Sync(snapshot(mockData(), true))
	require.Len(t, added, 2)
	assert.Equal(t, "entry_external_google", added[0].UniqueID())
	assert.Len(t, set.Images(), 2)

	// a second sync with the same keys adds nothing
	assert.Empty(t, set.Sync(snapshot(mockData(), true)))

	// a new key shows up, an old one disappears
	next := []gatus.EndpointStatus{
		mockData()[0],
		{Key: "core_dns", Name: "dns", Group: "core", Results: []gatus.Result{{Success: true}}},
	}
	added = set.Sync(snapshot(next, true))
	require.Len(t, added, 1)
	assert.Equal(t, "core_dns", added[0].Key)
	assert.Len(t, set.Sensors(), 3)

	states := set.States(snapshot(next, true))
	require.Len(t, states, 6)

	byID := make(map[string]State, len(states))
	for _, s := range states {
		byID[s.UniqueID] = s
	}
	assert.False(t, byID["entry_media_plex"].Available, "vanished endpoint must be unavailable")
	assert.True(t, byID["entry_media_plex"].Problem)
	assert.True(t, byID["entry_core_dns"].Available)
}

func TestSet_NoImagesByDefault(t *testing.T) {
	set := NewSet(SetConfig{InstanceID: "entry"})
	set.Sync(snapshot(mockData(), true))

	assert.Len(t, set.Sensors(), 2)
	assert.Empty(t, set.Images())
	assert.Nil(t, set.Sync(nil))
}
