package store

import (
	"sort"
	"sync"

	"github.com/jpalmerr/gatusbridge/internal/entity"
)

// subscriberBuffer is the channel capacity of each subscription.
const subscriberBuffer = 100

// MemoryStore is an in-memory implementation of [Store].
//
// MemoryStore provides thread-safe storage with a publish-subscribe mechanism
// for real-time updates. States are keyed by entity unique id, with new
// states replacing previous values.
//
// Subscribers receive updates via buffered channels (buffer size 100). Updates
// are sent non-blocking; if a subscriber's buffer is full, the update is dropped
// for that subscriber to prevent blocking the entire system.
type MemoryStore struct {
	mu          sync.RWMutex
	states      map[string]entity.State
	subscribers map[chan entity.State]struct{}
	subMu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory [Store] implementation.
//
// The store is immediately ready for use. No cleanup is required when done.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states:      make(map[string]entity.State),
		subscribers: make(map[chan entity.State]struct{}),
	}
}

// Update stores a state and notifies all subscribers.
func (m *MemoryStore) Update(state entity.State) {
	m.mu.Lock()
	m.states[state.UniqueID] = state
	m.mu.Unlock()

	m.notifySubscribers(state)
}

// Get returns the state stored under uniqueID.
func (m *MemoryStore) Get(uniqueID string) (entity.State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.states[uniqueID]
	return st, ok
}

// GetAll returns a snapshot of all stored states, ordered by unique id.
func (m *MemoryStore) GetAll() []entity.State {
	m.mu.RLock()
	states := make([]entity.State, 0, len(m.states))
	for _, st := range m.states {
		states = append(states, st)
	}
	m.mu.RUnlock()

	sort.Slice(states, func(i, j int) bool {
		return states[i].UniqueID < states[j].UniqueID
	})
	return states
}

// DeleteInstance removes all states of instanceID. Subscribers are not
// notified; removal happens on teardown.
func (m *MemoryStore) DeleteInstance(instanceID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, st := range m.states {
		if st.InstanceID == instanceID {
			delete(m.states, id)
			removed++
		}
	}
	return removed
}

// Subscribe creates a new subscription and returns a channel for receiving updates.
//
// The returned channel has a buffer of 100 messages. If the buffer fills
// (slow consumer), new updates are dropped for this subscriber.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent resource leaks.
func (m *MemoryStore) Subscribe() <-chan entity.State {
	ch := make(chan entity.State, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan entity.State) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	// find and delete the channel (need to convert to the right type)
	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends the state to all active subscribers without blocking.
func (m *MemoryStore) notifySubscribers(state entity.State) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- state:
		default:
			// subscriber is slow, drop the message
		}
	}
}
