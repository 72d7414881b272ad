package bridge

import "time"

// Origin records where a control message came from.
type Origin int

const (
	// OriginLocal marks commands produced on the edge node itself
	// (credential scans, local toggles).
	OriginLocal Origin = iota

	// OriginRemote marks commands received over the broker.
	OriginRemote
)

// String returns the origin name for logs.
func (o Origin) String() string {
	if o == OriginLocal {
		return "local"
	}
	return "remote"
}

// Message is an inbound item on the intake queue.
//
// Exactly five types implement it: ControlMessage, SensorReading,
// CredentialScan, EventRecord, and PeerStatus.
type Message interface {
	isMessage()
}

// ControlMessage is a normalized command envelope.
//
// Constructed by the bridge on each inbound control payload and by
// local producers (credential scans, API calls); consumed exactly once
// by the state machine.
type ControlMessage struct {
	Channel    Channel
	Value      string
	Origin     Origin
	ReceivedAt time.Time
}

func (ControlMessage) isMessage() {}

// ReadingKind identifies a sensor reading type.
type ReadingKind int

const (
	ReadingMotion ReadingKind = iota
	ReadingTemperature
	ReadingHumidity
)

// String returns the kind name.
func (k ReadingKind) String() string {
	switch k {
	case ReadingMotion:
		return "motion"
	case ReadingTemperature:
		return "temperature"
	default:
		return "humidity"
	}
}

// Unit returns the unit readings of this kind carry.
func (k ReadingKind) Unit() string {
	switch k {
	case ReadingMotion:
		return "bool"
	case ReadingTemperature:
		return "celsius"
	default:
		return "percent"
	}
}

// SensorReading is a single sensor observation.
//
// Produced by the edge pollers and forwarded verbatim over the broker;
// on the cloud side the bridge reconstructs it from the sensor feeds.
type SensorReading struct {
	Kind       ReadingKind
	Value      float64
	Unit       string
	ObservedAt time.Time
}

func (SensorReading) isMessage() {}

// CredentialScan is a local credential presentation from the reader.
//
// Never carried over the broker; the edge poller places it directly
// on the intake so credential handling shares the single ordered
// consumer with everything else.
type CredentialScan struct {
	ID        string
	ScannedAt time.Time
}

func (CredentialScan) isMessage() {}

// EventRecord is a raw event log entry received on the events feed.
//
// The payload is the JSON-encoded eventlog.Entry published by the
// edge; the cloud mirror decodes and re-appends it.
type EventRecord struct {
	Payload    []byte
	ReceivedAt time.Time
}

func (EventRecord) isMessage() {}

// PeerStatus is a presence update from the status feed.
type PeerStatus struct {
	Online     bool
	ClientID   string
	ReceivedAt time.Time
}

func (PeerStatus) isMessage() {}
