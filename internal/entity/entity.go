package entity

import (
	"time"

	"github.com/jpalmerr/gatusbridge/internal/poller"
)

// Type is the kind of entity.
type Type string

const (
	TypeBinarySensor Type = "binary_sensor"
	TypeImage        Type = "image"
)

// DeviceClassProblem marks a binary sensor whose "on" state signals a problem.
const DeviceClassProblem = "problem"

// State values of a binary sensor.
const (
	StateOn          = "on"
	StateOff         = "off"
	StateUnavailable = "unavailable"
)

// State is the published record of one entity.
type State struct {
	UniqueID    string         `json:"unique_id"`
	InstanceID  string         `json:"instance_id"`
	Type        Type           `json:"type"`
	Key         string         `json:"endpoint_key"`
	Name        string         `json:"name"`
	DeviceClass string         `json:"device_class,omitempty"`
	State       string         `json:"state"`
	Problem     bool           `json:"problem"`
	Available   bool           `json:"available"`
	Attributes  map[string]any `json:"attributes"`
	ImageURL    string         `json:"image_url,omitempty"`
	Attribution string         `json:"attribution"`
	Device      DeviceInfo     `json:"device"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// BinarySensor reports whether one Gatus endpoint has a problem.
type BinarySensor struct {
	InstanceID string
	Key        string
	Name       string
	Group      string
	Device     DeviceInfo
}

// UniqueID returns "{instance}_{key}".
func (b BinarySensor) UniqueID() string {
	return b.InstanceID + "_" + b.Key
}

// DisplayName returns "{group} {name}".
func (b BinarySensor) DisplayName() string {
	return b.Group + " " + b.Name
}

// State projects snap into the sensor's published state.
func (b BinarySensor) State(snap *poller.Snapshot) State {
	p := Project(snap, b.Key)

	st := StateOff
	if p.Problem {
		st = StateOn
	}

	return State{
		UniqueID:    b.UniqueID(),
		InstanceID:  b.InstanceID,
		Type:        TypeBinarySensor,
		Key:         b.Key,
		Name:        b.DisplayName(),
		DeviceClass: DeviceClassProblem,
		State:       st,
		Problem:     p.Problem,
		Available:   p.Available,
		Attributes:  p.Attributes,
		Attribution: Attribution,
		Device:      b.Device,
		UpdatedAt:   updatedAt(snap),
	}
}

// Image exposes the uptime badge of one endpoint.
type Image struct {
	InstanceID string
	Key        string
	Name       string
	Group      string
	Window     string
	URL        string
	Device     DeviceInfo
}

// UniqueID returns "{instance}_{key}_uptime_{window}".
func (i Image) UniqueID() string {
	return i.InstanceID + "_" + i.Key + "_uptime_" + i.Window
}

// DisplayName returns "{group} {name} {window} Uptime".
func (i Image) DisplayName() string {
	return i.Group + " " + i.Name + " " + i.Window + " Uptime"
}

// State projects snap into the image's published state. The badge is
// served by Gatus itself, so it is available whenever the server answered
// the latest poll and still knows the endpoint.
func (i Image) State(snap *poller.Snapshot) State {
	_, found := snap.Endpoint(i.Key)
	available := found && snap.LastSuccess

	// like a camera snapshot, the state is when the image last changed
	st := StateUnavailable
	if available {
		st = snap.LastSuccessAt.UTC().Format(time.RFC3339)
	}

	return State{
		UniqueID:    i.UniqueID(),
		InstanceID:  i.InstanceID,
		Type:        TypeImage,
		Key:         i.Key,
		Name:        i.DisplayName(),
		State:       st,
		Available:   available,
		Attributes:  map[string]any{},
		ImageURL:    i.URL,
		Attribution: Attribution,
		Device:      i.Device,
		UpdatedAt:   updatedAt(snap),
	}
}

func updatedAt(snap *poller.Snapshot) time.Time {
	if snap == nil {
		return time.Time{}
	}
	return snap.UpdatedAt
}
