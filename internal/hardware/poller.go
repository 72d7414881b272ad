package hardware

import (
	"context"
	"time"

	"github.com/anvsult/anlex-guard/internal/infrastructure/logging"
)

// MotionHandler receives motion edge transitions.
type MotionHandler func(detected bool, at time.Time)

// EnvironmentHandler receives environment samples.
type EnvironmentHandler func(reading EnvironmentReading, at time.Time)

// CredentialHandler receives one call per credential presentation.
type CredentialHandler func(id string, at time.Time)

// MotionPoller samples a motion sensor and reports edge transitions.
//
// The handler fires only when the detection state changes, so a person
// standing in front of the sensor produces one rising edge, not a
// reading per tick.
type MotionPoller struct {
	sensor   MotionSensor
	interval time.Duration
	handler  MotionHandler
	logger   *logging.Logger

	last bool
}

// NewMotionPoller creates a motion poller.
func NewMotionPoller(sensor MotionSensor, interval time.Duration, handler MotionHandler, logger *logging.Logger) *MotionPoller {
	return &MotionPoller{
		sensor:   sensor,
		interval: interval,
		handler:  handler,
		logger:   logger,
	}
}

// Run polls until the context is cancelled.
func (p *MotionPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			detected, err := p.sensor.Motion(ctx)
			if err != nil {
				p.logger.Warn("motion sensor read failed", "error", err)
				continue
			}
			if detected != p.last {
				p.last = detected
				p.handler(detected, time.Now().UTC())
			}
		}
	}
}

// EnvironmentPoller samples temperature and humidity on its interval.
//
// Every successful sample is reported; downsampling or deadbanding is
// the consumer's concern.
type EnvironmentPoller struct {
	sensor   EnvironmentSensor
	interval time.Duration
	handler  EnvironmentHandler
	logger   *logging.Logger
}

// NewEnvironmentPoller creates an environment poller.
func NewEnvironmentPoller(sensor EnvironmentSensor, interval time.Duration, handler EnvironmentHandler, logger *logging.Logger) *EnvironmentPoller {
	return &EnvironmentPoller{
		sensor:   sensor,
		interval: interval,
		handler:  handler,
		logger:   logger,
	}
}

// Run polls until the context is cancelled.
func (p *EnvironmentPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reading, err := p.sensor.Environment(ctx)
			if err != nil {
				p.logger.Warn("environment sensor read failed", "error", err)
				continue
			}
			p.handler(reading, time.Now().UTC())
		}
	}
}

// CredentialPoller watches the reader and reports each presentation once.
//
// A credential held at the reader across multiple ticks fires the
// handler a single time; it must be removed before the next
// presentation is reported.
type CredentialPoller struct {
	reader   CredentialReader
	interval time.Duration
	handler  CredentialHandler
	logger   *logging.Logger

	held bool
}

// NewCredentialPoller creates a credential poller.
func NewCredentialPoller(reader CredentialReader, interval time.Duration, handler CredentialHandler, logger *logging.Logger) *CredentialPoller {
	return &CredentialPoller{
		reader:   reader,
		interval: interval,
		handler:  handler,
		logger:   logger,
	}
}

// Run polls until the context is cancelled.
func (p *CredentialPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			id, present, err := p.reader.Scan(ctx)
			if err != nil {
				p.logger.Warn("credential reader scan failed", "error", err)
				continue
			}
			if present && !p.held {
				p.held = true
				p.handler(id, time.Now().UTC())
			} else if !present {
				p.held = false
			}
		}
	}
}
