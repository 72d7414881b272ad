package mqtt

import (
	"fmt"
	"strings"
)

// Feed keys for the AnLex Guard broker namespace.
//
// The hosted broker exposes each feed as a topic of the form
// {username}/feeds/{key}. Dots in a key are literal characters, not
// topic-level separators, so sensor.motion is a single topic level.
const (
	// FeedMotion carries motion sensor readings ("1" detected, "0" clear).
	FeedMotion = "sensor.motion"

	// FeedTemperature carries temperature readings in degrees Celsius.
	FeedTemperature = "sensor.temperature"

	// FeedHumidity carries relative humidity readings in percent.
	FeedHumidity = "sensor.humidity"

	// FeedMode carries the current security mode (DISARMED, ARMED, ALARM)
	// and accepts remote arm/disarm commands.
	FeedMode = "mode"

	// FeedLED carries remote LED control commands ("ON"/"OFF").
	FeedLED = "actuator.led"

	// FeedBuzzer carries remote buzzer control commands ("ON"/"OFF").
	FeedBuzzer = "actuator.buzzer"

	// FeedServo carries remote lock control commands ("LOCK"/"UNLOCK").
	FeedServo = "actuator.servo"

	// FeedStealth carries stealth mode toggles ("ON"/"OFF").
	FeedStealth = "control.stealth"

	// FeedEvents carries the JSON event stream mirrored from the edge
	// event log, including alarm announcements.
	FeedEvents = "events"

	// FeedStatus carries node online/offline presence, including the
	// broker-published last will on unexpected disconnect.
	FeedStatus = "status"
)

// feedTopicSegment is the fixed middle segment of every feed topic.
const feedTopicSegment = "feeds"

// Feeds builds broker topics for a specific account username.
// Using these helpers keeps topic naming consistent between the edge
// and cloud nodes.
//
//	feeds := mqtt.Feeds{Username: cfg.Broker.Username}
//	topic := feeds.Mode()
//	// Returns: "alice/feeds/mode"
type Feeds struct {
	Username string
}

// Feed returns the topic for an arbitrary feed key.
//
// Example: alice/feeds/sensor.motion
func (f Feeds) Feed(key string) string {
	return fmt.Sprintf("%s/%s/%s", f.Username, feedTopicSegment, key)
}

// Motion returns the motion sensor feed topic.
func (f Feeds) Motion() string { return f.Feed(FeedMotion) }

// Temperature returns the temperature feed topic.
func (f Feeds) Temperature() string { return f.Feed(FeedTemperature) }

// Humidity returns the humidity feed topic.
func (f Feeds) Humidity() string { return f.Feed(FeedHumidity) }

// Mode returns the security mode feed topic.
func (f Feeds) Mode() string { return f.Feed(FeedMode) }

// LED returns the LED actuator feed topic.
func (f Feeds) LED() string { return f.Feed(FeedLED) }

// Buzzer returns the buzzer actuator feed topic.
func (f Feeds) Buzzer() string { return f.Feed(FeedBuzzer) }

// Servo returns the lock servo feed topic.
func (f Feeds) Servo() string { return f.Feed(FeedServo) }

// Stealth returns the stealth control feed topic.
func (f Feeds) Stealth() string { return f.Feed(FeedStealth) }

// Events returns the event stream feed topic.
func (f Feeds) Events() string { return f.Feed(FeedEvents) }

// Status returns the presence feed topic used for LWT.
func (f Feeds) Status() string { return f.Feed(FeedStatus) }

// All returns a wildcard pattern matching every feed for the account.
// Use with caution since it receives all account traffic.
//
// Pattern: alice/feeds/#
func (f Feeds) All() string {
	return fmt.Sprintf("%s/%s/#", f.Username, feedTopicSegment)
}

// Key extracts the feed key from a full feed topic.
//
// Returns the key and true when the topic belongs to this account's
// feed namespace, or "" and false otherwise.
func (f Feeds) Key(topic string) (string, bool) {
	prefix := f.Username + "/" + feedTopicSegment + "/"
	if !strings.HasPrefix(topic, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(topic, prefix)
	if key == "" {
		return "", false
	}
	return key, true
}
