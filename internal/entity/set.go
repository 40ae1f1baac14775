package entity

import (
	"sync"

	"github.com/jpalmerr/gatusbridge/internal/poller"
)

// BadgeURLFunc builds the badge URL of an endpoint for a window.
type BadgeURLFunc func(key, window string) string

// SetConfig describes the entities of one instance.
type SetConfig struct {
	InstanceID string
	Device     DeviceInfo

	// Images enables one uptime badge image per endpoint.
	Images      bool
	BadgeWindow string
	BadgeURL    BadgeURLFunc
}

// Set is the entity registry of one instance.
//
// Entities are created for every endpoint key in a snapshot. Keys that
// disappear from later polls keep their entities, which then project as
// unavailable. Set is safe for concurrent use.
type Set struct {
	cfg SetConfig

	mu      sync.RWMutex
	sensors []BinarySensor
	images  []Image
	known   map[string]struct{}
}

// NewSet creates an empty [Set].
func NewSet(cfg SetConfig) *Set {
	return &Set{
		cfg:   cfg,
		known: make(map[string]struct{}),
	}
}

// Sync creates entities for keys of snap not seen before and returns the
// newly created binary sensors.
func (s *Set) Sync(snap *poller.Snapshot) []BinarySensor {
	if snap == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var added []BinarySensor
	for _, ep := range snap.Data {
		if _, ok := s.known[ep.Key]; ok {
			continue
		}
		s.known[ep.Key] = struct{}{}

		sensor := BinarySensor{
			InstanceID: s.cfg.InstanceID,
			Key:        ep.Key,
			Name:       ep.Name,
			Group:      ep.Group,
			Device:     s.cfg.Device,
		}
		s.sensors = append(s.sensors, sensor)
		added = append(added, sensor)

		if s.cfg.Images && s.cfg.BadgeURL != nil {
			s.images = append(s.images, Image{
				InstanceID: s.cfg.InstanceID,
				Key:        ep.Key,
				Name:       ep.Name,
				Group:      ep.Group,
				Window:     s.cfg.BadgeWindow,
				URL:        s.cfg.BadgeURL(ep.Key, s.cfg.BadgeWindow),
				Device:     s.cfg.Device,
			})
		}
	}
	return added
}

// Sensors returns a copy of the binary sensors in creation order.
func (s *Set) Sensors() []BinarySensor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]BinarySensor(nil), s.sensors...)
}

// Images returns a copy of the image entities in creation order.
func (s *Set) Images() []Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Image(nil), s.images...)
}

// States projects snap onto every entity of the set.
func (s *Set) States(snap *poller.Snapshot) []State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	states := make([]State, 0, len(s.sensors)+len(s.images))
	for _, b := range s.sensors {
		states = append(states, b.State(snap))
	}
	for _, i := range s.images {
		states = append(states, i.State(snap))
	}
	return states
}
