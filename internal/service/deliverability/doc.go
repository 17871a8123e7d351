// Package deliverability implements the I/O half of the engine: the
// deliverability probe, health metrics over persisted send events, and
// per-message quality scoring.
//
// The services depend only on the collaborator interfaces in
// interfaces.go. They never import net/http or database/sql directly, and
// they never retry: each collaborator call is a single request/response and
// timeouts belong to the collaborator.
package deliverability
