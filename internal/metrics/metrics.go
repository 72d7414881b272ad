// Package metrics defines the Prometheus instrumentation shared by
// both nodes. Collectors are registered on the default registry and
// exposed by the cloud node's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesReceived counts inbound broker messages by channel.
	MessagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anlexguard_bridge_messages_received_total",
		Help: "Inbound broker messages by channel.",
	}, []string{"channel"})

	// MessagesPublished counts successful publishes by channel.
	MessagesPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anlexguard_bridge_messages_published_total",
		Help: "Successful broker publishes by channel.",
	}, []string{"channel"})

	// PublishFailures counts failed publishes by channel.
	PublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anlexguard_bridge_publish_failures_total",
		Help: "Failed broker publishes by channel.",
	}, []string{"channel"})

	// RateLimited counts publishes rejected by the local rate limiter.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "anlexguard_bridge_rate_limited_total",
		Help: "Publishes rejected by the messages-per-minute ceiling.",
	})

	// IntakeDropped counts inbound messages dropped because the
	// intake queue was full.
	IntakeDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "anlexguard_bridge_intake_dropped_total",
		Help: "Inbound messages dropped due to a full intake queue.",
	})

	// Transitions counts security mode transitions.
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anlexguard_security_transitions_total",
		Help: "Security mode transitions.",
	}, []string{"from", "to"})

	// AlarmsTriggered counts alarm activations.
	AlarmsTriggered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "anlexguard_security_alarms_total",
		Help: "Alarm activations.",
	})

	// CredentialScans counts credential scans by outcome.
	CredentialScans = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anlexguard_security_credential_scans_total",
		Help: "Credential scans by outcome (granted, denied).",
	}, []string{"outcome"})
)
