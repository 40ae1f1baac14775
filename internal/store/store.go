package store

import "github.com/jpalmerr/gatusbridge/internal/entity"

// Store defines the interface for storing and subscribing to entity states.
//
// Store implementations must be safe for concurrent access. The pub/sub
// mechanism allows state changes to be pushed to connected clients
// (e.g., via Server-Sent Events).
type Store interface {
	// Update stores a new entity state and notifies all subscribers.
	// States are keyed by UniqueID, so later updates replace earlier ones.
	Update(state entity.State)

	// Get returns the state with the given unique id.
	Get(uniqueID string) (entity.State, bool)

	// GetAll returns all stored states ordered by unique id.
	// The returned slice is a snapshot; modifications do not affect the store.
	GetAll() []entity.State

	// DeleteInstance removes every state belonging to an instance and
	// returns how many were removed.
	DeleteInstance(instanceID string) int

	// Subscribe returns a channel that receives state updates.
	// The returned channel has a buffer; slow consumers may miss updates.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan entity.State

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan entity.State)
}
