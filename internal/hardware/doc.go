// Package hardware defines the edge node's device boundary.
//
// The security core never talks to GPIO directly; it depends on the
// small interfaces in this package. Real driver implementations live
// outside this repository. The Sim* types provide in-memory
// implementations for development and tests.
//
// Pollers sample each sensor on its own interval and hand readings to
// a callback. Each poller runs in its own goroutine so a slow or
// blocked device never stalls the others.
package hardware
