//go:build integration

package mqtt

import (
	"sync"
	"testing"
	"time"

	"github.com/anvsult/anlex-guard/internal/infrastructure/config"
)

// Integration tests for broker connectivity and reconnection behaviour.
// These tests require a running MQTT broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -v ./internal/infrastructure/mqtt/...
//
// Note: Some tests may be flaky in CI due to timing dependencies.
// Consider running with: go test -tags=integration -count=1 -v ...

func integrationConfig() config.BrokerConfig {
	return config.BrokerConfig{
		Host:     "127.0.0.1",
		Port:     1883,
		ClientID: "anlexguard-integration-test",
		TLS:      false,
		Username: "",
		Key:      "",
		QoS:      1,
		Reconnect: config.BrokerReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

func TestIntegration_Connect(t *testing.T) {
	cfg := integrationConfig()

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if !client.IsConnected() {
		t.Error("IsConnected() = false, want true")
	}
}

func TestIntegration_ConnectRefused(t *testing.T) {
	cfg := integrationConfig()
	cfg.Port = 19999 // Nothing listening here

	_, err := Connect(cfg)
	if err == nil {
		t.Fatal("Connect() expected error for unreachable broker")
	}
}

func TestIntegration_SubscriptionTracking(t *testing.T) {
	cfg := integrationConfig()
	cfg.ClientID = "anlexguard-int-sub-track"

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	topics := []string{
		"anlexguard/int/test/topic1",
		"anlexguard/int/test/topic2",
		"anlexguard/int/test/topic3",
	}

	for _, topic := range topics {
		err := client.Subscribe(topic, 1, func(string, []byte) error { return nil })
		if err != nil {
			t.Fatalf("Subscribe(%s) error = %v", topic, err)
		}
	}

	if got := client.SubscriptionCount(); got != len(topics) {
		t.Errorf("SubscriptionCount() = %d, want %d", got, len(topics))
	}

	for _, topic := range topics {
		if !client.HasSubscription(topic) {
			t.Errorf("HasSubscription(%s) = false, want true", topic)
		}
	}
}

func TestIntegration_MessageRoundtrip(t *testing.T) {
	pubCfg := integrationConfig()
	pubCfg.ClientID = "anlexguard-int-pub"
	pub, err := Connect(pubCfg)
	if err != nil {
		t.Fatalf("Connect() publisher error = %v", err)
	}
	defer pub.Close()

	subCfg := integrationConfig()
	subCfg.ClientID = "anlexguard-int-sub"
	sub, err := Connect(subCfg)
	if err != nil {
		t.Fatalf("Connect() subscriber error = %v", err)
	}
	defer sub.Close()

	topic := "anlexguard/int/test/roundtrip"
	received := make(chan []byte, 1)

	err = sub.Subscribe(topic, 1, func(_ string, payload []byte) error {
		received <- payload
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	want := []byte("armed")
	if err := pub.Publish(topic, want, 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case got := <-received:
		if string(got) != string(want) {
			t.Errorf("received %q, want %q", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestIntegration_WildcardSubscription(t *testing.T) {
	pubCfg := integrationConfig()
	pubCfg.ClientID = "anlexguard-int-wild-pub"
	pub, err := Connect(pubCfg)
	if err != nil {
		t.Fatalf("Connect() publisher error = %v", err)
	}
	defer pub.Close()

	subCfg := integrationConfig()
	subCfg.ClientID = "anlexguard-int-wild-sub"
	sub, err := Connect(subCfg)
	if err != nil {
		t.Fatalf("Connect() subscriber error = %v", err)
	}
	defer sub.Close()

	pattern := "anlexguard/int/feeds/+"
	var mu sync.Mutex
	seen := make(map[string]bool)

	err = sub.Subscribe(pattern, 1, func(topic string, _ []byte) error {
		mu.Lock()
		seen[topic] = true
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	topics := []string{
		"anlexguard/int/feeds/sensor.motion",
		"anlexguard/int/feeds/mode",
		"anlexguard/int/feeds/events",
	}
	for _, topic := range topics {
		if err := pub.Publish(topic, []byte("x"), 1, false); err != nil {
			t.Fatalf("Publish(%s) error = %v", topic, err)
		}
	}

	deadline := time.After(5 * time.Second)
	for {
		mu.Lock()
		count := len(seen)
		mu.Unlock()
		if count == len(topics) {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("received %d of %d topics", count, len(topics))
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func TestIntegration_OnConnectCallback(t *testing.T) {
	cfg := integrationConfig()
	cfg.ClientID = "anlexguard-int-callback"

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	fired := make(chan struct{}, 1)
	client.SetOnConnect(func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})

	// The callback fires on reconnect; force one by closing the
	// underlying connection is not possible from here, so just verify
	// registration does not interfere with a healthy connection.
	if !client.IsConnected() {
		t.Error("IsConnected() = false after SetOnConnect")
	}
}

func TestIntegration_Unsubscribe(t *testing.T) {
	cfg := integrationConfig()
	cfg.ClientID = "anlexguard-int-unsub"

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	topic := "anlexguard/int/test/unsubscribe"
	err = client.Subscribe(topic, 1, func(string, []byte) error { return nil })
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if err := client.Unsubscribe(topic); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}

	if client.HasSubscription(topic) {
		t.Error("HasSubscription() = true after Unsubscribe()")
	}
}
