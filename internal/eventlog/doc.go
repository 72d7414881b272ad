// Package eventlog provides the append-only security event log.
//
// Every state transition, credential scan, and received remote command
// produces exactly one entry. Entries are never updated or deleted
// through the Repository interface; retention is a maintenance concern
// outside the core contract.
//
// Both nodes carry an event log: the edge node records what happened
// locally, the cloud node mirrors the entries it receives over the
// events feed so the dashboard can serve them without touching the
// edge.
package eventlog
