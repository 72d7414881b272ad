package security

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/anvsult/anlex-guard/internal/bridge"
	"github.com/anvsult/anlex-guard/internal/eventlog"
	"github.com/anvsult/anlex-guard/internal/hardware"
	"github.com/anvsult/anlex-guard/internal/infrastructure/config"
	"github.com/anvsult/anlex-guard/internal/infrastructure/logging"
	"github.com/anvsult/anlex-guard/internal/metrics"
)

// Actuator feedback constants.
const (
	armBlinkCount    = 3
	armBlinkInterval = 200 * time.Millisecond
	deniedBeep       = 300 * time.Millisecond
	appendTimeout    = 2 * time.Second
)

// Actuators groups the hardware the machine drives.
type Actuators struct {
	LED    hardware.LED
	Buzzer hardware.Buzzer
	Lock   hardware.Lock
}

// Publisher queues outbound broker publishes.
// Satisfied by *bridge.Worker.
type Publisher interface {
	Enqueue(channel bridge.Channel, value string) error
}

// Machine owns SystemState and processes intake messages one at a
// time.
//
// Run is the single consumer; nothing else mutates state. Snapshot
// is safe from any goroutine.
type Machine struct {
	cfg       config.SecurityConfig
	grace     time.Duration
	allowlist map[string]struct{}

	actuators Actuators
	publisher Publisher
	events    eventlog.Repository
	notifier  Notifier
	logger    *logging.Logger

	intake <-chan bridge.Message

	mu      sync.RWMutex
	state   Snapshot
	armedAt time.Time
}

// New creates the state machine.
//
// Parameters:
//   - cfg: Security configuration (grace period, allow-list, stealth default)
//   - intake: The bridge intake; Run consumes it exclusively
//   - actuators: LED, buzzer, and lock drivers
//   - publisher: Async publish queue (bridge worker)
//   - events: Event log repository
//   - notifier: Alarm hook; nil installs LogNotifier
//   - logger: Structured logger
func New(
	cfg config.SecurityConfig,
	grace time.Duration,
	intake <-chan bridge.Message,
	actuators Actuators,
	publisher Publisher,
	events eventlog.Repository,
	notifier Notifier,
	logger *logging.Logger,
) *Machine {
	allowlist := make(map[string]struct{}, len(cfg.AuthorizedCredentials))
	for _, id := range cfg.AuthorizedCredentials {
		allowlist[id] = struct{}{}
	}

	if notifier == nil {
		notifier = &LogNotifier{Logger: logger}
	}

	return &Machine{
		cfg:       cfg,
		grace:     grace,
		allowlist: allowlist,
		actuators: actuators,
		publisher: publisher,
		events:    events,
		notifier:  notifier,
		logger:    logger,
		intake:    intake,
		state: Snapshot{
			Mode:      ModeDisarmed,
			Stealth:   cfg.StealthDefault,
			LockState: LockUnlocked,
			UpdatedAt: time.Now().UTC(),
		},
	}
}

// SetPublisher installs the outbound publish queue.
//
// The worker's failure handler points back at this machine, so the
// two are created in sequence; call SetPublisher before Run.
func (m *Machine) SetPublisher(publisher Publisher) {
	m.publisher = publisher
}

// Snapshot returns a read-only copy of the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Run consumes the intake until the context is cancelled.
//
// Messages are processed strictly in arrival order. This is the only
// goroutine that mutates state.
func (m *Machine) Run(ctx context.Context) {
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
func (m *Machine) process(ctx context.Context, msg bridge.Message) {
	switch v := msg.(type) {
	case bridge.ControlMessage:
		m.handleControl(ctx, v)
	case bridge.SensorReading:
		m.handleReading(ctx, v)
	case bridge.CredentialScan:
		m.handleCredential(ctx, v)
	default:
		// EventRecord and PeerStatus are cloud-side concerns.
	}
}

// PublishFailed is the bridge worker's terminal-failure callback.
//
// The local transition already happened; record the warning and flag
// the state as pending synchronization.
func (m *Machine) PublishFailed(channel bridge.Channel, value string, err error) {
	m.logger.Warn("state publish failed, local state kept",
		"channel", channel.String(),
		"value", value,
		"error", err,
	)
	m.mu.Lock()
	m.state.SyncPending = true
	m.state.UpdatedAt = time.Now().UTC()
	m.mu.Unlock()
}

// PublishSucceeded is the bridge worker's success callback. A publish
// reaching the broker means the peer can catch up, so the sync-pending
// flag clears.
func (m *Machine) PublishSucceeded(_ bridge.Channel, _ string) {
	m.mu.Lock()
	if m.state.SyncPending {
		m.state.SyncPending = false
		m.state.UpdatedAt = time.Now().UTC()
	}
	m.mu.Unlock()
}

// =============================================================================
// Control Handling
// =============================================================================

// handleControl applies a command from the broker or a local origin.
//
// The edge's own retained mode announcements echo back from the broker
// on the same feed the cloud commands on; they are dropped here so a
// stale "armed" echo can never re-arm a freshly disarmed system.
func (m *Machine) handleControl(ctx context.Context, cmd bridge.ControlMessage) {
	if cmd.Channel == bridge.ChannelMode && bridge.IsModeAnnouncement(cmd.Value) {
		return
	}

	if cmd.Origin == bridge.OriginRemote {
		m.log(ctx, eventlog.TypeRemoteCommand, cmd.Channel.String()+"="+cmd.Value)
	}

	switch cmd.Channel {
	case bridge.ChannelMode:
		m.handleModeCommand(ctx, cmd)
	case bridge.ChannelLED:
		m.handleLEDCommand(cmd.Value)
	case bridge.ChannelBuzzer:
		m.handleBuzzerCommand(cmd.Value)
	case bridge.ChannelServo:
		m.handleServoCommand(ctx, cmd.Value)
	case bridge.ChannelStealth:
		m.handleStealthCommand(ctx, cmd.Value)
	default:
		m.logger.Warn("control message on non-control channel", "channel", cmd.Channel.String())
	}
}

// handleModeCommand resolves the command vocabulary and arms or
// disarms. Announcement values never reach here.
func (m *Machine) handleModeCommand(ctx context.Context, cmd bridge.ControlMessage) {
	detail := "by " + cmd.Origin.String() + " command"
	switch cmd.Value {
	case "arm", "1":
		m.arm(ctx, detail)
	case "disarm", "0":
		m.disarm(ctx, detail)
	default:
		m.logger.Warn("unknown mode value", "value", cmd.Value)
	}
}

// handleLEDCommand drives the LED directly. Not logged.
func (m *Machine) handleLEDCommand(value string) {
	var err error
	switch value {
	case "on", "1":
		err = m.actuators.LED.On()
	case "off", "0":
		err = m.actuators.LED.Off()
	case "blink":
		m.blinkLED(armBlinkInterval)
	case "blink-fast":
		m.blinkLED(armBlinkInterval / 2)
	default:
		m.logger.Warn("unknown led value", "value", value)
		return
	}
	if err != nil {
		m.logger.Warn("led command failed", "value", value, "error", err)
	}
}

// handleBuzzerCommand drives the buzzer directly. Not logged.
func (m *Machine) handleBuzzerCommand(value string) {
	var err error
	switch value {
	case "beep":
		err = m.actuators.Buzzer.Beep(deniedBeep)
	case "siren":
		err = m.actuators.Buzzer.Siren()
	case "stop":
		err = m.actuators.Buzzer.Stop()
	default:
		m.logger.Warn("unknown buzzer value", "value", value)
		return
	}
	if err != nil {
		m.logger.Warn("buzzer command failed", "value", value, "error", err)
	}
}

// handleServoCommand drives the lock. Lock state changes are the one
// direct actuator command that is logged.
func (m *Machine) handleServoCommand(ctx context.Context, value string) {
	switch value {
	case "lock":
		if err := m.actuators.Lock.Lock(); err != nil {
			m.logger.Warn("lock command failed", "error", err)
			return
		}
		m.setLockState(LockLocked)
		m.log(ctx, eventlog.TypeServoLock, "servo locked")
	case "unlock":
		if err := m.actuators.Lock.Unlock(); err != nil {
			m.logger.Warn("unlock command failed", "error", err)
			return
		}
		m.setLockState(LockUnlocked)
		m.log(ctx, eventlog.TypeServoUnlock, "servo unlocked")
	default:
		m.logger.Warn("unknown servo value", "value", value)
	}
}

// handleStealthCommand flips the stealth flag from any mode.
func (m *Machine) handleStealthCommand(ctx context.Context, value string) {
	var stealth bool
	switch value {
	case "1", "on":
		stealth = true
	case "0", "off":
		stealth = false
	default:
		m.logger.Warn("unknown stealth value", "value", value)
		return
	}

	m.mu.Lock()
	changed := m.state.Stealth != stealth
	m.state.Stealth = stealth
	mode := m.state.Mode
	m.state.UpdatedAt = time.Now().UTC()
	m.mu.Unlock()

	if !changed {
		return
	}

	// Entering stealth during an alarm silences the local feedback;
	// leaving it resumes the siren. Logging is never suppressed.
	if mode == ModeAlarm {
		if stealth {
			m.quietActuators()
		} else {
			m.loudAlarm()
		}
	}

	if stealth {
		m.log(ctx, eventlog.TypeStealthOn, "stealth enabled")
	} else {
		m.log(ctx, eventlog.TypeStealthOff, "stealth disabled")
	}
}

// =============================================================================
// Sensor Handling
// =============================================================================

// handleReading folds a sensor observation into state and forwards it
// to the broker.
func (m *Machine) handleReading(ctx context.Context, reading bridge.SensorReading) {
	switch reading.Kind {
	case bridge.ReadingMotion:
		m.handleMotion(ctx, reading)
	case bridge.ReadingTemperature:
		value := reading.Value
		m.mu.Lock()
		m.state.LastTemperature = &value
		m.state.UpdatedAt = time.Now().UTC()
		m.mu.Unlock()
		m.enqueuePublish(bridge.ChannelTemperature, formatReading(reading.Value))
	case bridge.ReadingHumidity:
		value := reading.Value
		m.mu.Lock()
		m.state.LastHumidity = &value
		m.state.UpdatedAt = time.Now().UTC()
		m.mu.Unlock()
		m.enqueuePublish(bridge.ChannelHumidity, formatReading(reading.Value))
	}
}

// handleMotion records motion and decides whether it triggers the
// alarm. Motion while Disarmed is informational only.
func (m *Machine) handleMotion(ctx context.Context, reading bridge.SensorReading) {
	detected := reading.Value != 0

	value := "0"
	if detected {
		value = "1"
	}
	m.enqueuePublish(bridge.ChannelMotion, value)

	if !detected {
		return
	}

	at := reading.ObservedAt
	m.mu.Lock()
	m.state.LastMotion = &at
	mode := m.state.Mode
	inGrace := mode == ModeArmed && at.Sub(m.armedAt) < m.grace
	m.state.UpdatedAt = time.Now().UTC()
	m.mu.Unlock()

	m.log(ctx, eventlog.TypeMotion, "motion detected")

	if mode == ModeArmed && !inGrace {
		m.triggerAlarm(ctx)
	}
}

// =============================================================================
// Credential Handling
// =============================================================================

// handleCredential checks the allow-list and toggles arm/disarm.
//
// An authorized scan arms a disarmed system and disarms an armed or
// alarming one. A denied scan is logged and, unless stealth, answered
// with a short beep.
func (m *Machine) handleCredential(ctx context.Context, scan bridge.CredentialScan) {
	if _, ok := m.allowlist[scan.ID]; !ok {
		metrics.CredentialScans.WithLabelValues("denied").Inc()
		m.log(ctx, eventlog.TypeAccessDenied, "credential "+scan.ID+" denied")

		m.mu.RLock()
		stealth := m.state.Stealth
		m.mu.RUnlock()
		if !stealth {
			if err := m.actuators.Buzzer.Beep(deniedBeep); err != nil {
				m.logger.Warn("denied beep failed", "error", err)
			}
		}
		return
	}

	metrics.CredentialScans.WithLabelValues("granted").Inc()

	m.mu.RLock()
	mode := m.state.Mode
	m.mu.RUnlock()

	if mode == ModeDisarmed {
		m.arm(ctx, "by credential "+scan.ID)
	} else {
		m.disarm(ctx, "by credential "+scan.ID)
	}
}

// =============================================================================
// Transitions
// =============================================================================

// arm moves Disarmed -> Armed. Arming while Armed is a benign no-op;
// arming while Alarm is refused (Alarm only exits to Disarmed).
func (m *Machine) arm(ctx context.Context, detail string) {
	m.mu.Lock()
	switch m.state.Mode {
	case ModeArmed:
		m.mu.Unlock()
		return
	case ModeAlarm:
		m.mu.Unlock()
		m.logger.Warn("arm refused while alarm active")
		return
	}
	m.state.Mode = ModeArmed
	m.armedAt = time.Now().UTC()
	m.state.LockState = LockLocked
	stealth := m.state.Stealth
	m.state.UpdatedAt = time.Now().UTC()
	m.mu.Unlock()

	metrics.Transitions.WithLabelValues("disarmed", "armed").Inc()

	if err := m.actuators.Lock.Lock(); err != nil {
		m.logger.Warn("lock on arm failed", "error", err)
	}
	if !stealth {
		m.blinkLED(armBlinkInterval)
	}

	m.log(ctx, eventlog.TypeArmed, "armed "+detail)
	m.enqueuePublish(bridge.ChannelMode, bridge.ModeAnnouncedArmed)
}

// disarm moves Armed or Alarm -> Disarmed. Disarming while Disarmed
// is a benign no-op.
func (m *Machine) disarm(ctx context.Context, detail string) {
	m.mu.Lock()
	if m.state.Mode == ModeDisarmed {
		m.mu.Unlock()
		return
	}
	from := m.state.Mode
	m.state.Mode = ModeDisarmed
	m.state.LockState = LockUnlocked
	m.state.UpdatedAt = time.Now().UTC()
	m.mu.Unlock()

	metrics.Transitions.WithLabelValues(from.String(), "disarmed").Inc()

	m.quietActuators()
	if err := m.actuators.Lock.Unlock(); err != nil {
		m.logger.Warn("unlock on disarm failed", "error", err)
	}

	m.log(ctx, eventlog.TypeDisarmed, "disarmed "+detail)
	m.enqueuePublish(bridge.ChannelMode, bridge.ModeAnnouncedDisarmed)
}

// triggerAlarm moves Armed -> Alarm.
//
// Mode stays published as armed (the alarm is announced on the events
// channel); stealth suppresses the siren and LED but never the log,
// the event publish, or the notifier.
func (m *Machine) triggerAlarm(ctx context.Context) {
	m.mu.Lock()
	if m.state.Mode != ModeArmed {
		m.mu.Unlock()
		return
	}
	m.state.Mode = ModeAlarm
	m.state.LockState = LockLocked
	stealth := m.state.Stealth
	m.state.UpdatedAt = time.Now().UTC()
	m.mu.Unlock()

	metrics.Transitions.WithLabelValues("armed", "alarm").Inc()
	metrics.AlarmsTriggered.Inc()

	if err := m.actuators.Lock.Lock(); err != nil {
		m.logger.Warn("lock on alarm failed", "error", err)
	}
	if !stealth {
		m.loudAlarm()
	}

	m.log(ctx, eventlog.TypeAlarm, "motion while armed")
	m.notifier.AlarmTriggered(ctx, m.Snapshot())
}

// setLockState updates the lock state field.
func (m *Machine) setLockState(lock LockState) {
	m.mu.Lock()
	m.state.LockState = lock
	m.state.UpdatedAt = time.Now().UTC()
	m.mu.Unlock()
}

// blinkLED runs a blink pattern in the background.
//
// LED drivers block for the full pattern, so patterns never run on the
// intake consumer goroutine.
func (m *Machine) blinkLED(interval time.Duration) {
	go func() {
		if err := m.actuators.LED.Blink(armBlinkCount, interval); err != nil {
			m.logger.Warn("led blink failed", "error", err)
		}
	}()
}

// loudAlarm starts the siren and LED.
func (m *Machine) loudAlarm() {
	if err := m.actuators.Buzzer.Siren(); err != nil {
		m.logger.Warn("siren failed", "error", err)
	}
	if err := m.actuators.LED.On(); err != nil {
		m.logger.Warn("alarm led failed", "error", err)
	}
}

// quietActuators silences the siren and LED.
func (m *Machine) quietActuators() {
	if err := m.actuators.Buzzer.Stop(); err != nil {
		m.logger.Warn("buzzer stop failed", "error", err)
	}
	if err := m.actuators.LED.Off(); err != nil {
		m.logger.Warn("led off failed", "error", err)
	}
}

// =============================================================================
// Logging and Publishing
// =============================================================================

// log appends an event and mirrors it to the events channel as JSON.
func (m *Machine) log(ctx context.Context, eventType, detail string) {
	m.mu.RLock()
	mode := m.state.Mode.String()
	m.mu.RUnlock()

	entry := &eventlog.Entry{
		Type:       eventType,
		Detail:     detail,
		ModeAtTime: mode,
	}

	appendCtx, cancel := context.WithTimeout(ctx, appendTimeout)
	defer cancel()
	if err := m.events.Append(appendCtx, entry); err != nil {
		m.logger.Error("event log append failed", "type", eventType, "error", err)
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		m.logger.Error("event encode failed", "type", eventType, "error", err)
		return
	}
	m.enqueuePublish(bridge.ChannelEvents, string(payload))
}

// enqueuePublish hands a publish to the async worker.
func (m *Machine) enqueuePublish(channel bridge.Channel, value string) {
	if m.publisher == nil {
		return
	}
	if err := m.publisher.Enqueue(channel, value); err != nil {
		// The worker already routed this through the failure
		// handler; nothing more to do here.
		m.logger.Warn("publish enqueue failed", "channel", channel.String(), "error", err)
	}
}

// formatReading renders a sensor value as a decimal string.
func formatReading(value float64) string {
	return strconv.FormatFloat(value, 'f', 1, 64)
}
