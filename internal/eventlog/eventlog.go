package eventlog

import (
	"context"
	"time"
)

// Well-known event types. The type column is free-form text so the
// cloud node can mirror entries it does not recognise, but the core
// only ever writes these values.
const (
	TypeArmed         = "ARMED"
	TypeDisarmed      = "DISARMED"
	TypeAlarm         = "ALARM_TRIGGERED"
	TypeMotion        = "MOTION_DETECTED"
	TypeAccessDenied  = "ACCESS_DENIED"
	TypeStealthOn     = "STEALTH_ON"
	TypeStealthOff    = "STEALTH_OFF"
	TypeRemoteCommand = "REMOTE_COMMAND"
	TypeServoLock     = "SERVO_LOCK"
	TypeServoUnlock   = "SERVO_UNLOCK"
)

// Entry is a single event log record.
//
// IDs are assigned by the store on append and increase monotonically.
// ModeAtTime captures the security mode at the moment the event was
// recorded, which is what the dashboard shows alongside each entry.
type Entry struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Type       string    `json:"type"`
	Detail     string    `json:"detail"`
	ModeAtTime string    `json:"mode_at_time"`
}

// Repository defines the event log contract.
//
// Append is the only write. All queries return entries newest first
// with limits clamped to a maximum page size.
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	ByType(ctx context.Context, eventType string, limit int) ([]Entry, error)
	ByTimeRange(ctx context.Context, start, end time.Time, limit int) ([]Entry, error)
}
