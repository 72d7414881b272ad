package hardware

import (
	"context"
	"time"
)

// EnvironmentReading is a paired temperature and humidity sample.
type EnvironmentReading struct {
	TemperatureC float64
	HumidityPct  float64
}

// MotionSensor reports whether motion is currently detected.
type MotionSensor interface {
	Motion(ctx context.Context) (bool, error)
}

// EnvironmentSensor reports temperature and humidity.
type EnvironmentSensor interface {
	Environment(ctx context.Context) (EnvironmentReading, error)
}

// CredentialReader reports the credential currently presented, if any.
//
// Scan returns the credential ID and true while a credential is held
// at the reader, or "" and false otherwise.
type CredentialReader interface {
	Scan(ctx context.Context) (id string, present bool, err error)
}

// LED controls the status LED.
type LED interface {
	On() error
	Off() error

	// Blink turns the LED on and off count times with the given
	// interval between edges. Blocks until the pattern completes, so
	// callers on a hot path run it in the background.
	Blink(count int, interval time.Duration) error
}

// Buzzer controls the audible alert.
type Buzzer interface {
	// Beep sounds the buzzer once for the given duration.
	Beep(d time.Duration) error

	// Siren starts the continuous alarm tone. It keeps sounding
	// until Stop is called.
	Siren() error

	Stop() error
}

// Lock controls the servo-driven door lock.
type Lock interface {
	Lock() error
	Unlock() error
}
