package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/anvsult/anlex-guard/internal/bridge"
	"github.com/anvsult/anlex-guard/internal/infrastructure/mqtt"
)

// controlActions lists the accepted action vocabulary per device.
var controlActions = map[string]map[string]bool{
	"led": {
		"on": true, "off": true, "1": true, "0": true,
		"blink": true, "blink-fast": true,
	},
	"buzzer": {
		"beep": true, "siren": true, "stop": true,
	},
	"servo": {
		"lock": true, "unlock": true,
	},
}

// controlChannels maps the URL device segment to its broker channel.
var controlChannels = map[string]bridge.Channel{
	"led":    bridge.ChannelLED,
	"buzzer": bridge.ChannelBuzzer,
	"servo":  bridge.ChannelServo,
}

// commandResponse acknowledges an accepted command.
//
// The command has been handed to the broker, not yet applied: the
// edge node confirms by publishing its new mode or an event.
type commandResponse struct {
	CommandID string `json:"command_id"`
	Channel   string `json:"channel"`
	Value     string `json:"value"`
}

// controlRequest is the body for POST /control/{device}.
type controlRequest struct {
	Action string `json:"action"`
}

// stealthRequest is the body for POST /stealth.
type stealthRequest struct {
	Enabled bool `json:"enabled"`
}

// handleArm requests the edge node to arm.
func (s *Server) handleArm(w http.ResponseWriter, r *http.Request) {
	s.publishCommand(w, r, bridge.ChannelMode, "arm")
}

// handleDisarm requests the edge node to disarm. This is also how an
// active alarm is cleared.
func (s *Server) handleDisarm(w http.ResponseWriter, r *http.Request) {
	s.publishCommand(w, r, bridge.ChannelMode, "disarm")
}

// handleStealth toggles stealth mode on the edge node.
func (s *Server) handleStealth(w http.ResponseWriter, r *http.Request) {
	var req stealthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	value := "0"
	if req.Enabled {
		value = "1"
	}
	s.publishCommand(w, r, bridge.ChannelStealth, value)
}

// handleControl drives a single actuator on the edge node.
func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	device := chi.URLParam(r, "device")
	channel, ok := controlChannels[device]
	if !ok {
		writeNotFound(w, "unknown device: "+device)
		return
	}

	var req controlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if !controlActions[device][req.Action] {
		writeBadRequest(w, "unknown action for "+device+": "+req.Action)
		return
	}

	s.publishCommand(w, r, channel, req.Action)
}

// publishCommand pushes a command through the circuit breaker to the
// broker and writes the outcome.
func (s *Server) publishCommand(w http.ResponseWriter, r *http.Request, channel bridge.Channel, value string) {
	commandID := uuid.NewString()

	_, err := s.breaker.Execute(func() (any, error) {
		return nil, s.publisher.Publish(channel, value)
	})
	if err != nil {
		s.logger.Warn("command publish failed",
			"command_id", commandID,
			"channel", channel.String(),
			"value", value,
			"error", err,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		writeCommandError(w, err)
		return
	}

	s.logger.Info("command published",
		"command_id", commandID,
		"channel", channel.String(),
		"value", value,
	)
	writeJSON(w, http.StatusAccepted, commandResponse{
		CommandID: commandID,
		Channel:   channel.FeedKey(),
		Value:     value,
	})
}

// writeCommandError maps publish failures onto HTTP statuses.
func writeCommandError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "command path unavailable, retry later")
	case errors.Is(err, mqtt.ErrNotConnected):
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "broker not connected")
	case errors.Is(err, bridge.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, ErrCodeRateLimited, "publish rate limit reached, retry later")
	default:
		writeInternalError(w, "command publish failed")
	}
}
