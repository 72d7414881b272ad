// Package security implements the edge node's state machine.
//
// A single goroutine consumes the bridge intake and processes one
// message at a time, so no two transitions ever race on SystemState.
// Everyone else reads value-copy snapshots.
//
// Local state wins immediately: a transition applies before its
// broker publish is acknowledged. Publishes go through the bridge
// worker asynchronously; a terminal publish failure marks the state
// sync-pending until a later publish succeeds.
//
// Stealth suppresses the local siren and LED feedback. It never
// suppresses logging or the event stream.
package security
