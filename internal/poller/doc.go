// Package poller schedules the polling of a Gatus server.
//
// A [Coordinator] owns one server: it runs the first poll synchronously at
// setup, then polls on a fixed interval, caches the outcome as an immutable
// [Snapshot] and notifies listeners once each poll has fully completed.
//
// The main components are:
//
//   - [Coordinator]: single-flight poll loop with listener fanout
//   - [Snapshot]: cached data, last success flag and last error
//   - [Fetcher]: what the coordinator polls, implemented by gatus.Client
//   - [Observer]: hook for metrics on every poll attempt
//
// Failed polls keep the previous data. Retryable failures are retried on the
// next tick; an authentication failure suspends scheduled polling until a
// manual [Coordinator.Refresh] succeeds.
package poller
