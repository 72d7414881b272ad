// Package mirror maintains the cloud node's view of the edge node.
//
// The cloud never talks to sensors or actuators directly. Everything
// it knows arrives over the broker: sensor readings, mode
// announcements on the retained mode feed, event log entries mirrored
// onto the events feed, and the edge's presence status. The Mirror
// folds that stream into a queryable State, persists the event stream
// into the cloud's own log, and ships sensor readings to the time
// series store for history queries.
//
// Like the edge state machine, the Mirror is a single consumer of its
// bridge intake. State reads are safe from any goroutine.
package mirror
