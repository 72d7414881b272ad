package bridge

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/anvsult/anlex-guard/internal/infrastructure/config"
	"github.com/anvsult/anlex-guard/internal/infrastructure/logging"
	"github.com/anvsult/anlex-guard/internal/infrastructure/mqtt"
	"github.com/anvsult/anlex-guard/internal/metrics"
)

// intakeCapacity bounds the inbound queue. Sized for bursts of broker
// deliveries after a reconnect; the consumer drains far faster than
// the broker's rate ceiling can fill.
const intakeCapacity = 256

// secondsPerMinute converts the configured per-minute ceiling to the
// limiter's per-second rate.
const secondsPerMinute = 60

// Broker is the subset of the MQTT client the bridge uses.
type Broker interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	IsConnected() bool
}

// Bridge translates between broker feeds and typed messages.
//
// Inbound payloads land on a bounded intake queue read by a single
// consumer. Outbound publishes are paced by a token bucket matching
// the broker's messages-per-minute ceiling.
type Bridge struct {
	broker  Broker
	feeds   mqtt.Feeds
	role    Role
	qos     byte
	limiter *rate.Limiter
	logger  *logging.Logger
	intake  chan Message
}

// New creates a bridge for the given role.
//
// Parameters:
//   - broker: Connected MQTT client
//   - cfg: Broker configuration (username, QoS, rate ceiling)
//   - role: RoleEdge or RoleCloud; selects the subscription set
//   - logger: Structured logger
func New(broker Broker, cfg config.BrokerConfig, role Role, logger *logging.Logger) *Bridge {
	perMinute := cfg.RateLimit.MessagesPerMinute
	if perMinute <= 0 {
		perMinute = 30
	}

	return &Bridge{
		broker:  broker,
		feeds:   mqtt.Feeds{Username: cfg.Username},
		role:    role,
		qos:     byte(cfg.QoS),
		limiter: rate.NewLimiter(rate.Limit(perMinute)/secondsPerMinute, perMinute),
		logger:  logger,
		intake:  make(chan Message, intakeCapacity),
	}
}

// Intake returns the inbound message queue.
//
// Exactly one consumer must drain it; processing order equals arrival
// order.
func (b *Bridge) Intake() <-chan Message {
	return b.intake
}

// Offer places a locally produced message on the intake queue.
//
// Edge pollers use this so local sensor events and remote commands
// share one ordered intake. Returns false when the queue is full; the
// message is dropped and counted, never blocked on.
func (b *Bridge) Offer(msg Message) bool {
	select {
	case b.intake <- msg:
		return true
	default:
		metrics.IntakeDropped.Inc()
		b.logger.Warn("intake queue full, dropping message")
		return false
	}
}

// IsConnected reports whether the underlying broker link is up.
func (b *Bridge) IsConnected() bool {
	return b.broker.IsConnected()
}

// Subscribe registers the role's channel set with the broker.
//
// Subscriptions survive reconnects (the underlying client restores
// them). Must be called after the client is connected.
func (b *Bridge) Subscribe() error {
	for _, channel := range b.role.subscribeChannels() {
		topic := b.feeds.Feed(channel.FeedKey())
		if err := b.broker.Subscribe(topic, b.qos, b.handleMessage); err != nil {
			return fmt.Errorf("subscribing to %s: %w", channel, err)
		}
	}
	return nil
}

// Publish sends a value on a channel.
//
// Returns mqtt.ErrNotConnected immediately when disconnected (no
// silent queueing) and ErrRateLimited when the ceiling is reached;
// the caller decides whether to retry (see Worker).
func (b *Bridge) Publish(channel Channel, value string) error {
	key := channel.FeedKey()
	if key == "" {
		return fmt.Errorf("%w: %d", ErrUnknownChannel, channel)
	}

	if !b.broker.IsConnected() {
		return mqtt.ErrNotConnected
	}

	if !b.limiter.Allow() {
		metrics.RateLimited.Inc()
		return ErrRateLimited
	}

	// Mode announcements are retained so a node connecting later sees
	// the current mode without waiting for the next transition.
	// Commands on the same feed are not; a stale retained command must
	// never replay against a restarting node.
	retained := channel == ChannelMode && IsModeAnnouncement(value)

	if err := b.broker.Publish(b.feeds.Feed(key), []byte(value), b.qos, retained); err != nil {
		metrics.PublishFailures.WithLabelValues(channel.String()).Inc()
		return err
	}

	metrics.MessagesPublished.WithLabelValues(channel.String()).Inc()
	return nil
}

// handleMessage is the paho callback for all subscribed feeds.
//
// It classifies the payload by channel and enqueues a typed message.
// It never blocks: a full intake drops the message.
func (b *Bridge) handleMessage(topic string, payload []byte) error {
	key, ok := b.feeds.Key(topic)
	if !ok {
		return fmt.Errorf("message on unexpected topic %q", topic)
	}
	channel, ok := ChannelFromFeedKey(key)
	if !ok {
		return fmt.Errorf("message on unmapped feed %q", key)
	}

	metrics.MessagesReceived.WithLabelValues(channel.String()).Inc()
	now := time.Now().UTC()

	switch {
	case channel.IsControl():
		b.enqueueControl(channel, payload, now)
	case channel.IsSensor():
		b.enqueueReading(channel, payload, now)
	case channel == ChannelEvents:
		b.Offer(EventRecord{Payload: payload, ReceivedAt: now})
	case channel == ChannelStatus:
		b.enqueueStatus(payload, now)
	}

	return nil
}

// enqueueControl turns a control payload into a ControlMessage.
//
// No work beyond the enqueue happens here: this runs on the client's
// router goroutine, where any blocking call stalls every subscription.
func (b *Bridge) enqueueControl(channel Channel, payload []byte, now time.Time) {
	b.Offer(ControlMessage{
		Channel:    channel,
		Value:      strings.TrimSpace(string(payload)),
		Origin:     OriginRemote,
		ReceivedAt: now,
	})
}

// enqueueReading parses a sensor payload into a SensorReading.
func (b *Bridge) enqueueReading(channel Channel, payload []byte, now time.Time) {
	value, err := strconv.ParseFloat(strings.TrimSpace(string(payload)), 64)
	if err != nil {
		b.logger.Warn("unparseable sensor payload",
			"channel", channel.String(),
			"payload", string(payload),
		)
		return
	}

	var kind ReadingKind
	switch channel {
	case ChannelMotion:
		kind = ReadingMotion
	case ChannelTemperature:
		kind = ReadingTemperature
	default:
		kind = ReadingHumidity
	}

	b.Offer(SensorReading{
		Kind:       kind,
		Value:      value,
		Unit:       kind.Unit(),
		ObservedAt: now,
	})
}

// enqueueStatus parses a presence payload into a PeerStatus.
func (b *Bridge) enqueueStatus(payload []byte, now time.Time) {
	var status struct {
		Status   string `json:"status"`
		ClientID string `json:"client_id"`
	}
	if err := json.Unmarshal(payload, &status); err != nil {
		b.logger.Warn("unparseable status payload", "payload", string(payload))
		return
	}

	b.Offer(PeerStatus{
		Online:     status.Status == "online",
		ClientID:   status.ClientID,
		ReceivedAt: now,
	})
}
