// Package mqtt provides broker connectivity for AnLex Guard nodes.
//
// This package manages:
//   - Connection to the hosted MQTT broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Feed subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// AnLex Guard has no direct network path between nodes. The edge node
// and the cloud node coordinate exclusively through the broker's feed
// topics ({username}/feeds/{key}).
//
//	Edge Node ↔ MQTT Broker ↔ Cloud Node
//
// # Security Considerations
//
//   - TLS is required for the hosted broker (cfg.TLS=true, port 8883)
//   - Authentication uses the account username and secret key
//   - Message payloads are not encrypted beyond TLS transport
//
// # Rate Limiting
//
// The hosted broker enforces a per-account message ceiling. This
// package does not throttle; callers pace their own publishes (see
// internal/bridge for the token bucket and retry policy).
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.Broker)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	feeds := mqtt.Feeds{Username: cfg.Broker.Username}
//	err = client.Subscribe(feeds.Mode(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	client.Publish(feeds.LED(), []byte("ON"), 1, false)
package mqtt
