package security

import (
	"encoding/json"
	"fmt"
	"time"
)

// Mode is the security mode of the system.
type Mode int

const (
	ModeDisarmed Mode = iota
	ModeArmed
	ModeAlarm
)

// String returns the broker/API representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeArmed:
		return "armed"
	case ModeAlarm:
		return "alarm"
	default:
		return "disarmed"
	}
}

// MarshalJSON encodes the mode as its string form.
func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes a mode from its string form.
func (m *Mode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	mode, ok := ParseMode(s)
	if !ok {
		return fmt.Errorf("unknown mode %q", s)
	}
	*m = mode
	return nil
}

// ParseMode resolves a mode string.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "disarmed":
		return ModeDisarmed, true
	case "armed":
		return ModeArmed, true
	case "alarm":
		return ModeAlarm, true
	default:
		return ModeDisarmed, false
	}
}

// LockState is the servo lock position.
type LockState int

const (
	LockUnlocked LockState = iota
	LockLocked
)

// String returns the API representation of the lock state.
func (l LockState) String() string {
	if l == LockLocked {
		return "locked"
	}
	return "unlocked"
}

// MarshalJSON encodes the lock state as its string form.
func (l LockState) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes a lock state from its string form.
func (l *LockState) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "locked":
		*l = LockLocked
	case "unlocked":
		*l = LockUnlocked
	default:
		return fmt.Errorf("unknown lock state %q", s)
	}
	return nil
}

// Snapshot is a read-only copy of the system state.
//
// Only the state machine mutates the underlying state; every other
// component works from snapshots like this one.
type Snapshot struct {
	Mode            Mode       `json:"mode"`
	Stealth         bool       `json:"stealth"`
	LastMotion      *time.Time `json:"last_motion,omitempty"`
	LastTemperature *float64   `json:"last_temperature,omitempty"`
	LastHumidity    *float64   `json:"last_humidity,omitempty"`
	LockState       LockState  `json:"lock_state"`
	SyncPending     bool       `json:"sync_pending"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
