package security

import (
	"context"

	"github.com/anvsult/anlex-guard/internal/infrastructure/logging"
)

// Notifier is told when the alarm triggers.
//
// Delivery mechanisms (email, push) live outside this repository;
// the machine only guarantees the hook fires once per alarm
// transition, stealth or not.
type Notifier interface {
	AlarmTriggered(ctx context.Context, snapshot Snapshot)
}

// LogNotifier is the default Notifier. It records the alarm in the
// structured log and nothing else.
type LogNotifier struct {
	Logger *logging.Logger
}

// AlarmTriggered logs the alarm snapshot.
func (n *LogNotifier) AlarmTriggered(_ context.Context, snapshot Snapshot) {
	n.Logger.Error("alarm triggered",
		"mode", snapshot.Mode.String(),
		"stealth", snapshot.Stealth,
		"last_motion", snapshot.LastMotion,
	)
}
