// Package entity projects polled Gatus data onto entities.
//
// Each endpoint becomes a [BinarySensor] whose "on" state means the endpoint
// has a problem, and optionally an [Image] pointing at its uptime badge.
// Entities carry a [DeviceInfo] value describing the Gatus server.
//
// [Project] is a pure function of a poller.Snapshot and an endpoint key;
// entities never modify the snapshot they read.
package entity
