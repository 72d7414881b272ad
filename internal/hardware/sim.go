package hardware

import (
	"context"
	"sync"
	"time"
)

// SimMotionSensor is an in-memory motion sensor for development and tests.
type SimMotionSensor struct {
	mu       sync.Mutex
	detected bool
}

// SetMotion sets the simulated detection state.
func (s *SimMotionSensor) SetMotion(detected bool) {
	s.mu.Lock()
	s.detected = detected
	s.mu.Unlock()
}

// Motion reports the simulated detection state.
func (s *SimMotionSensor) Motion(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detected, nil
}

// SimEnvironmentSensor is an in-memory environment sensor.
type SimEnvironmentSensor struct {
	mu      sync.Mutex
	reading EnvironmentReading
}

// SetReading sets the simulated reading.
func (s *SimEnvironmentSensor) SetReading(r EnvironmentReading) {
	s.mu.Lock()
	s.reading = r
	s.mu.Unlock()
}

// Environment reports the simulated reading.
func (s *SimEnvironmentSensor) Environment(_ context.Context) (EnvironmentReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reading, nil
}

// SimCredentialReader is an in-memory credential reader.
type SimCredentialReader struct {
	mu      sync.Mutex
	id      string
	present bool
}

// Present simulates holding a credential at the reader.
func (s *SimCredentialReader) Present(id string) {
	s.mu.Lock()
	s.id = id
	s.present = true
	s.mu.Unlock()
}

// Remove simulates taking the credential away.
func (s *SimCredentialReader) Remove() {
	s.mu.Lock()
	s.id = ""
	s.present = false
	s.mu.Unlock()
}

// Scan reports the currently presented credential.
func (s *SimCredentialReader) Scan(_ context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, s.present, nil
}

// SimLED is an in-memory LED that records its state and blink count.
type SimLED struct {
	mu     sync.Mutex
	lit    bool
	blinks int
}

// On lights the LED.
func (s *SimLED) On() error {
	s.mu.Lock()
	s.lit = true
	s.mu.Unlock()
	return nil
}

// Off extinguishes the LED.
func (s *SimLED) Off() error {
	s.mu.Lock()
	s.lit = false
	s.mu.Unlock()
	return nil
}

// Blink records the blink pattern without sleeping. The steady state
// is left untouched so callers driving On and Off concurrently see a
// deterministic result.
func (s *SimLED) Blink(count int, _ time.Duration) error {
	s.mu.Lock()
	s.blinks += count
	s.mu.Unlock()
	return nil
}

// Lit reports whether the LED is currently on.
func (s *SimLED) Lit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lit
}

// Blinks reports the cumulative blink count.
func (s *SimLED) Blinks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blinks
}

// SimBuzzer is an in-memory buzzer that records beeps and siren state.
type SimBuzzer struct {
	mu       sync.Mutex
	beeps    int
	sounding bool
}

// Beep records a single beep.
func (s *SimBuzzer) Beep(_ time.Duration) error {
	s.mu.Lock()
	s.beeps++
	s.mu.Unlock()
	return nil
}

// Siren starts the simulated alarm tone.
func (s *SimBuzzer) Siren() error {
	s.mu.Lock()
	s.sounding = true
	s.mu.Unlock()
	return nil
}

// Stop silences the simulated buzzer.
func (s *SimBuzzer) Stop() error {
	s.mu.Lock()
	s.sounding = false
	s.mu.Unlock()
	return nil
}

// Sounding reports whether the siren is active.
func (s *SimBuzzer) Sounding() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sounding
}

// Beeps reports the cumulative beep count.
func (s *SimBuzzer) Beeps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beeps
}

// SimLock is an in-memory lock.
type SimLock struct {
	mu     sync.Mutex
	locked bool
}

// Lock engages the simulated lock.
func (s *SimLock) Lock() error {
	s.mu.Lock()
	s.locked = true
	s.mu.Unlock()
	return nil
}

// Unlock disengages the simulated lock.
func (s *SimLock) Unlock() error {
	s.mu.Lock()
	s.locked = false
	s.mu.Unlock()
	return nil
}

// Locked reports whether the lock is engaged.
func (s *SimLock) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}
