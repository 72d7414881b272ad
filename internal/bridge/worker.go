package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/anvsult/anlex-guard/internal/infrastructure/logging"
	"github.com/anvsult/anlex-guard/internal/infrastructure/mqtt"
)

// Worker retry policy. Rate-limited publishes back off until the
// token bucket refills; anything still failing after maxRetryElapsed
// is reported as terminal.
const (
	queueCapacity     = 64
	initialRetryDelay = 2 * time.Second
	maxRetryDelay     = 30 * time.Second
	maxRetryElapsed   = 2 * time.Minute
)

// FailureHandler receives publishes that exhausted their retries.
//
// The state machine uses this to log the failure and mark the local
// state as pending synchronization.
type FailureHandler func(channel Channel, value string, err error)

// Worker drains an outbound publish queue on a single goroutine.
//
// Local state never waits on the broker: callers enqueue and move on.
// Rate-limited sends are retried with bounded exponential backoff;
// disconnected sends fail terminally at once, since the bridge rejects
// rather than queues while offline.
type Worker struct {
	bridge    *Bridge
	queue     chan outbound
	onFailure FailureHandler
	onSuccess func(channel Channel, value string)
	logger    *logging.Logger
}

// outbound is a queued publish.
type outbound struct {
	channel Channel
	value   string
}

// NewWorker creates a publish worker for the bridge.
func NewWorker(bridge *Bridge, onFailure FailureHandler, logger *logging.Logger) *Worker {
	return &Worker{
		bridge:    bridge,
		queue:     make(chan outbound, queueCapacity),
		onFailure: onFailure,
		logger:    logger,
	}
}

// SetOnSuccess sets a callback for publishes that reach the broker.
// The state machine uses it to clear the sync-pending flag.
func (w *Worker) SetOnSuccess(callback func(channel Channel, value string)) {
	w.onSuccess = callback
}

// Enqueue queues a publish without blocking.
//
// Returns ErrQueueFull when the queue is saturated; the publish is
// reported to the failure handler so the caller's bookkeeping stays
// consistent.
func (w *Worker) Enqueue(channel Channel, value string) error {
	select {
	case w.queue <- outbound{channel: channel, value: value}:
		return nil
	default:
		w.fail(channel, value, ErrQueueFull)
		return ErrQueueFull
	}
}

// Run drains the queue until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case item := <-w.queue:
			w.send(ctx, item)
		}
	}
}

// send publishes one item, retrying transient failures.
func (w *Worker) send(ctx context.Context, item outbound) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = initialRetryDelay
	policy.MaxInterval = maxRetryDelay
	policy.MaxElapsedTime = maxRetryElapsed

	operation := func() error {
		err := w.bridge.Publish(item.channel, item.value)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrRateLimited) || errors.Is(err, mqtt.ErrPublishFailed) {
			return err
		}
		// Disconnected or rejected: retrying here would replay stale
		// commands after reconnect, so fail now.
		return backoff.Permanent(err)
	}

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		w.fail(item.channel, item.value, err)
		return
	}
	if w.onSuccess != nil {
		w.onSuccess(item.channel, item.value)
	}
}

// fail reports a terminal publish failure.
func (w *Worker) fail(channel Channel, value string, err error) {
	w.logger.Warn("publish failed",
		"channel", channel.String(),
		"value", value,
		"error", err,
	)
	if w.onFailure != nil {
		w.onFailure(channel, value, err)
	}
}
