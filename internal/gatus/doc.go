// Package gatus is the client for a Gatus server's status API.
//
// The package issues the single request gatusbridge needs,
// GET {base}/api/v1/endpoints/statuses, and normalizes every failure into
// one of three kinds:
//
//   - [KindAuth]: the server rejected the request (401/403)
//   - [KindCommunication]: timeout, DNS, dial or other transport fault
//   - [KindGeneric]: any other HTTP error, malformed payloads, or surprises
//
// Raw transport errors never cross the package boundary; callers switch on
// [KindOf] or use errors.Is with [ErrAuth], [ErrCommunication] and
// [ErrGeneric].
package gatus
