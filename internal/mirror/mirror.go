package mirror

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/anvsult/anlex-guard/internal/bridge"
	"github.com/anvsult/anlex-guard/internal/eventlog"
	"github.com/anvsult/anlex-guard/internal/infrastructure/logging"
)

const appendTimeout = 2 * time.Second

// Mode values as mirrored from the retained mode feed. Before the
// first announcement arrives the mode is unknown.
const (
	ModeUnknown  = "unknown"
	ModeArmed    = "armed"
	ModeDisarmed = "disarmed"
)

// State is the cloud's view of the edge node.
type State struct {
	Mode         string     `json:"mode"`
	AlarmActive  bool       `json:"alarm_active"`
	Stealth      bool       `json:"stealth"`
	EdgeOnline   bool       `json:"edge_online"`
	EdgeClientID string     `json:"edge_client_id,omitempty"`
	LastMotion   *time.Time `json:"last_motion,omitempty"`
	Temperature  *float64   `json:"temperature,omitempty"`
	Humidity     *float64   `json:"humidity,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ReadingWriter ships sensor readings to the time series store.
// Satisfied by the InfluxDB client; nil disables history recording.
type ReadingWriter interface {
	WriteMotion(nodeID string, detected bool)
	WriteSensorReadingAt(nodeID string, sensor string, value float64, at time.Time)
}

// Mirror folds the cloud bridge intake into State.
type Mirror struct {
	intake   <-chan bridge.Message
	events   eventlog.Repository
	readings ReadingWriter
	nodeID   string
	logger   *logging.Logger

	mu    sync.RWMutex
	state State
}

// New creates a mirror.
//
// Parameters:
//   - intake: The cloud bridge intake; Run consumes it exclusively
//   - events: The cloud node's event log copy
//   - readings: Time series writer for sensor history; may be nil
//   - nodeID: Tag applied to stored readings, normally the edge client ID
//   - logger: Structured logger
func New(
	intake <-chan bridge.Message,
	events eventlog.Repository,
	readings ReadingWriter,
	nodeID string,
	logger *logging.Logger,
) *Mirror {
	return &Mirror{
		intake:   intake,
		events:   events,
		readings: readings,
		nodeID:   nodeID,
		logger:   logger,
		state: State{
			Mode:      ModeUnknown,
			UpdatedAt: time.Now().UTC(),
		},
	}
}

// State returns a copy of the current view.
func (m *Mirror) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Run consumes the intake until the context is cancelled.
func (m *Mirror) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-m.intake:
			m.process(ctx, msg)
		}
	}
}

// process dispatches one intake message.
func (m *Mirror) process(ctx context.Context, msg bridge.Message) {
	switch v := msg.(type) {
	case bridge.SensorReading:
		m.handleReading(v)
	case bridge.ControlMessage:
		m.handleMode(v)
	case bridge.EventRecord:
		m.handleEvent(ctx, v)
	case bridge.PeerStatus:
		m.handleStatus(v)
	default:
		// Credential scans never leave the edge.
	}
}

// handleReading updates the live values and records history.
func (m *Mirror) handleReading(reading bridge.SensorReading) {
	m.mu.Lock()
	switch reading.Kind {
	case bridge.ReadingMotion:
		if reading.Value != 0 {
			at := reading.ObservedAt
			m.state.LastMotion = &at
		}
	case bridge.ReadingTemperature:
		value := reading.Value
		m.state.Temperature = &value
	case bridge.ReadingHumidity:
		value := reading.Value
		m.state.Humidity = &value
	}
	m.state.UpdatedAt = time.Now().UTC()
	m.mu.Unlock()

	if m.readings == nil {
		return
	}
	switch reading.Kind {
	case bridge.ReadingMotion:
		m.readings.WriteMotion(m.nodeID, reading.Value != 0)
	case bridge.ReadingTemperature:
		m.readings.WriteSensorReadingAt(m.nodeID, "temperature", reading.Value, reading.ObservedAt)
	case bridge.ReadingHumidity:
		m.readings.WriteSensorReadingAt(m.nodeID, "humidity", reading.Value, reading.ObservedAt)
	}
}

// handleMode mirrors edge announcements on the mode feed. Commands
// the cloud itself publishes echo back on the same feed and are
// dropped; only the edge's confirmation moves the view. The edge keeps
// publishing armed while an alarm is active, so a disarm announcement
// is also the signal that any alarm has ended.
func (m *Mirror) handleMode(cmd bridge.ControlMessage) {
	if cmd.Channel != bridge.ChannelMode {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	switch cmd.Value {
	case bridge.ModeAnnouncedArmed:
		m.state.Mode = ModeArmed
	case bridge.ModeAnnouncedDisarmed:
		m.state.Mode = ModeDisarmed
		m.state.AlarmActive = false
	case "arm", "disarm", "1", "0":
		// Command echo, not an announcement.
		return
	default:
		m.logger.Warn("unknown mode announcement", "value", cmd.Value)
		return
	}
	m.state.UpdatedAt = time.Now().UTC()
}

// handleEvent stores a mirrored event log entry and folds the types
// that carry state into the view.
func (m *Mirror) handleEvent(ctx context.Context, record bridge.EventRecord) {
	var entry eventlog.Entry
	if err := json.Unmarshal(record.Payload, &entry); err != nil {
		m.logger.Warn("undecodable event payload", "error", err)
		return
	}

	// The local store assigns its own IDs.
	entry.ID = 0
	appendCtx, cancel := context.WithTimeout(ctx, appendTimeout)
	defer cancel()
	if err := m.events.Append(appendCtx, &entry); err != nil {
		m.logger.Error("event mirror append failed", "type", entry.Type, "error", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	switch entry.Type {
	case eventlog.TypeAlarm:
		m.state.AlarmActive = true
	case eventlog.TypeArmed:
		m.state.Mode = ModeArmed
	case eventlog.TypeDisarmed:
		m.state.Mode = ModeDisarmed
		m.state.AlarmActive = false
	case eventlog.TypeStealthOn:
		m.state.Stealth = true
	case eventlog.TypeStealthOff:
		m.state.Stealth = false
	}
	m.state.UpdatedAt = time.Now().UTC()
}

// handleStatus tracks edge presence.
func (m *Mirror) handleStatus(status bridge.PeerStatus) {
	m.mu.Lock()
	m.state.EdgeOnline = status.Online
	if status.ClientID != "" {
		m.state.EdgeClientID = status.ClientID
	}
	m.state.UpdatedAt = time.Now().UTC()
	m.mu.Unlock()

	if status.Online {
		m.logger.Info("edge node online", "client_id", status.ClientID)
	} else {
		m.logger.Warn("edge node offline", "client_id", status.ClientID)
	}
}
