package bridge

import (
	"github.com/anvsult/anlex-guard/internal/infrastructure/mqtt"
)

// Channel identifies a broker feed by purpose.
type Channel int

// The closed set of channels both nodes speak.
const (
	ChannelUnknown Channel = iota
	ChannelMotion
	ChannelTemperature
	ChannelHumidity
	ChannelMode
	ChannelLED
	ChannelBuzzer
	ChannelServo
	ChannelStealth
	ChannelEvents
	ChannelStatus
)

// channelFeeds maps each channel to its feed key.
var channelFeeds = map[Channel]string{
	ChannelMotion:      mqtt.FeedMotion,
	ChannelTemperature: mqtt.FeedTemperature,
	ChannelHumidity:    mqtt.FeedHumidity,
	ChannelMode:        mqtt.FeedMode,
	ChannelLED:         mqtt.FeedLED,
	ChannelBuzzer:      mqtt.FeedBuzzer,
	ChannelServo:       mqtt.FeedServo,
	ChannelStealth:     mqtt.FeedStealth,
	ChannelEvents:      mqtt.FeedEvents,
	ChannelStatus:      mqtt.FeedStatus,
}

// feedChannels is the reverse mapping, built at init.
var feedChannels = func() map[string]Channel {
	m := make(map[string]Channel, len(channelFeeds))
	for channel, key := range channelFeeds {
		m[key] = channel
	}
	return m
}()

// FeedKey returns the broker feed key for the channel, or "" for
// ChannelUnknown.
func (c Channel) FeedKey() string {
	return channelFeeds[c]
}

// String returns the feed key, which doubles as the channel's name in
// logs and metrics.
func (c Channel) String() string {
	if key, ok := channelFeeds[c]; ok {
		return key
	}
	return "unknown"
}

// IsControl reports whether the channel carries commands consumed by
// the edge node.
func (c Channel) IsControl() bool {
	switch c {
	case ChannelMode, ChannelLED, ChannelBuzzer, ChannelServo, ChannelStealth:
		return true
	default:
		return false
	}
}

// IsSensor reports whether the channel carries sensor readings
// produced by the edge node.
func (c Channel) IsSensor() bool {
	switch c {
	case ChannelMotion, ChannelTemperature, ChannelHumidity:
		return true
	default:
		return false
	}
}

// Both nodes publish on the mode feed with disjoint vocabularies: the
// cloud sends commands ("arm", "disarm", "1", "0") and the edge sends
// retained announcements. Each side acts only on the other's
// vocabulary, so self-echoes from the broker are inert.
const (
	ModeAnnouncedArmed    = "armed"
	ModeAnnouncedDisarmed = "disarmed"
)

// IsModeAnnouncement reports whether a mode feed value is an edge
// announcement rather than a command.
func IsModeAnnouncement(value string) bool {
	return value == ModeAnnouncedArmed || value == ModeAnnouncedDisarmed
}

// ChannelFromFeedKey resolves a feed key to its channel.
func ChannelFromFeedKey(key string) (Channel, bool) {
	channel, ok := feedChannels[key]
	return channel, ok
}

// Role selects which channels a node subscribes to.
type Role int

const (
	// RoleEdge is the node attached to sensors and actuators.
	RoleEdge Role = iota

	// RoleCloud is the node serving the dashboard API.
	RoleCloud
)

// subscribeChannels returns the channels a role listens on.
//
// The edge consumes commands; the cloud consumes everything the edge
// produces: sensor readings, mode announcements, the event stream,
// and presence.
func (r Role) subscribeChannels() []Channel {
	if r == RoleEdge {
		return []Channel{ChannelMode, ChannelLED, ChannelBuzzer, ChannelServo, ChannelStealth}
	}
	return []Channel{
		ChannelMotion, ChannelTemperature, ChannelHumidity,
		ChannelMode, ChannelEvents, ChannelStatus,
	}
}
