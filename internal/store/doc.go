// Package store keeps the latest published state of every entity.
//
// The main components are:
//
//   - [Store]: Interface defining storage and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//
// The store is designed for concurrent access with proper synchronization.
// Subscribers receive updates via channels with non-blocking sends (slow
// subscribers will miss updates rather than block the poll that produced
// them).
//
// Nothing is persisted: state is rebuilt from a fresh poll at startup.
package store
