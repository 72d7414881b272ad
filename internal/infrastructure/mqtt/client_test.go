package mqtt

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// =============================================================================
// Lifecycle Tests (no broker required)
// =============================================================================

func TestCloseNil(t *testing.T) {
	client := &Client{}
	err := client.Close()
	if err != nil {
		t.Errorf("Close() on nil client error = %v, want nil", err)
	}
}

func TestIsConnected_InitialState(t *testing.T) {
	client := &Client{}
	if client.IsConnected() {
		t.Error("IsConnected() = true for zero client, want false")
	}
}

func TestHealthCheckDisconnected(t *testing.T) {
	client := &Client{}
	err := client.HealthCheck(context.Background())
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestHealthCheckCancelled(t *testing.T) {
	client := &Client{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.HealthCheck(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck() error = %v, want context.Canceled", err)
	}
}

// =============================================================================
// Publish Validation Tests
// =============================================================================

func TestPublishEmptyTopic(t *testing.T) {
	client := &Client{}
	err := client.Publish("", []byte("payload"), 1, false)
	if !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Publish() error = %v, want ErrInvalidTopic", err)
	}
}

func TestPublishInvalidQoS(t *testing.T) {
	client := &Client{}
	err := client.Publish("alice/feeds/mode", []byte("payload"), 3, false)
	if !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Publish() error = %v, want ErrInvalidQoS", err)
	}
}

func TestPublishLargePayload(t *testing.T) {
	client := &Client{}
	payload := make([]byte, maxPayloadSize+1)
	err := client.Publish("alice/feeds/events", payload, 1, false)
	if !errors.Is(err, ErrPublishFailed) {
		t.Errorf("Publish() error = %v, want ErrPublishFailed", err)
	}
}

func TestPublishDisconnected(t *testing.T) {
	client := &Client{}
	err := client.Publish("alice/feeds/mode", []byte("armed"), 1, false)
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Publish() error = %v, want ErrNotConnected", err)
	}
}

// =============================================================================
// Subscribe Validation Tests
// =============================================================================

func TestSubscribeEmptyTopic(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}
	err := client.Subscribe("", 1, func(string, []byte) error { return nil })
	if !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Subscribe() error = %v, want ErrInvalidTopic", err)
	}
}

func TestSubscribeInvalidQoS(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}
	err := client.Subscribe("alice/feeds/mode", 3, func(string, []byte) error { return nil })
	if !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Subscribe() error = %v, want ErrInvalidQoS", err)
	}
}

func TestSubscribeNilHandler(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}
	err := client.Subscribe("alice/feeds/mode", 1, nil)
	if !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("Subscribe() error = %v, want ErrSubscribeFailed", err)
	}
}

func TestSubscribeDisconnected(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}
	err := client.Subscribe("alice/feeds/mode", 1, func(string, []byte) error { return nil })
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Subscribe() error = %v, want ErrNotConnected", err)
	}
	if client.HasSubscription("alice/feeds/mode") {
		t.Error("failed Subscribe() should not be tracked")
	}
}

func TestUnsubscribeEmptyTopic(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}
	err := client.Unsubscribe("")
	if !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Unsubscribe() error = %v, want ErrInvalidTopic", err)
	}
}

func TestUnsubscribeDisconnected(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}
	err := client.Unsubscribe("alice/feeds/mode")
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Unsubscribe() error = %v, want ErrNotConnected", err)
	}
}

func TestSubscriptionCount_Empty(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}
	if got := client.SubscriptionCount(); got != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", got)
	}
}

func TestHasSubscription_NotSubscribed(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}
	if client.HasSubscription("alice/feeds/mode") {
		t.Error("HasSubscription() = true, want false")
	}
}

// =============================================================================
// Feed Topic Tests
// =============================================================================

func TestFeedTopics(t *testing.T) {
	feeds := Feeds{Username: "alice"}

	tests := []struct {
		name     string
		builder  func() string
		expected string
	}{
		{"motion", feeds.Motion, "alice/feeds/sensor.motion"},
		{"temperature", feeds.Temperature, "alice/feeds/sensor.temperature"},
		{"humidity", feeds.Humidity, "alice/feeds/sensor.humidity"},
		{"mode", feeds.Mode, "alice/feeds/mode"},
		{"led", feeds.LED, "alice/feeds/actuator.led"},
		{"buzzer", feeds.Buzzer, "alice/feeds/actuator.buzzer"},
		{"servo", feeds.Servo, "alice/feeds/actuator.servo"},
		{"stealth", feeds.Stealth, "alice/feeds/control.stealth"},
		{"events", feeds.Events, "alice/feeds/events"},
		{"status", feeds.Status, "alice/feeds/status"},
		{"all wildcard", feeds.All, "alice/feeds/#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.builder(); got != tt.expected {
				t.Errorf("topic = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFeedsKey(t *testing.T) {
	feeds := Feeds{Username: "alice"}

	tests := []struct {
		name    string
		topic   string
		wantKey string
		wantOk  bool
	}{
		{"sensor feed", "alice/feeds/sensor.motion", "sensor.motion", true},
		{"mode feed", "alice/feeds/mode", "mode", true},
		{"other account", "bob/feeds/mode", "", false},
		{"not a feed topic", "alice/groups/default", "", false},
		{"empty key", "alice/feeds/", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := feeds.Key(tt.topic)
			if ok != tt.wantOk {
				t.Errorf("ok = %v, want %v", ok, tt.wantOk)
			}
			if key != tt.wantKey {
				t.Errorf("key = %q, want %q", key, tt.wantKey)
			}
		})
	}
}

// =============================================================================
// Presence Payload Tests
// =============================================================================

func TestPresencePayloads(t *testing.T) {
	online := buildOnlinePayload("guard-edge")
	if !strings.Contains(online, `"status":"online"`) {
		t.Errorf("online payload missing status: %s", online)
	}
	if !strings.Contains(online, `"client_id":"guard-edge"`) {
		t.Errorf("online payload missing client_id: %s", online)
	}

	offline := buildOfflinePayload("guard-edge")
	if !strings.Contains(offline, `"status":"offline"`) {
		t.Errorf("offline payload missing status: %s", offline)
	}
	if !strings.Contains(offline, `"reason":"graceful_shutdown"`) {
		t.Errorf("offline payload missing reason: %s", offline)
	}
}
