// Package bridge is the typed layer between the security core and the
// broker.
//
// The raw MQTT client (internal/infrastructure/mqtt) moves bytes; this
// package gives those bytes meaning. Each broker feed maps to a
// Channel, inbound payloads become ControlMessage or SensorReading
// values on a bounded intake queue, and outbound publishes are paced
// against the broker's messages-per-minute ceiling.
//
// The same Bridge type serves both nodes. The role decides the
// subscription set: the edge node listens on command channels (mode,
// actuators, stealth), the cloud node on sensor, mode, event, and
// status channels.
//
// The receive path never blocks. When the intake queue is full the
// message is dropped, logged, and counted; the single consumer on the
// other side of the queue preserves arrival order.
package bridge
