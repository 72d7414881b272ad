package api

import (
	"net/http"

	"github.com/anvsult/anlex-guard/internal/eventlog"
	"github.com/anvsult/anlex-guard/internal/mirror"
)

// recentEventCount is how many log entries ride along with the status
// response so dashboards render without a second round trip.
const recentEventCount = 5

// statusResponse is the dashboard's main payload.
type statusResponse struct {
	State           mirror.State     `json:"state"`
	BrokerConnected bool             `json:"broker_connected"`
	RecentEvents    []eventlog.Entry `json:"recent_events"`
}

// handleStatus returns the mirrored edge state plus the most recent
// event log entries.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	recent, err := s.events.Recent(r.Context(), recentEventCount)
	if err != nil {
		s.logger.Error("recent events query failed", "error", err)
		recent = []eventlog.Entry{}
	}

	writeJSON(w, http.StatusOK, statusResponse{
		State:           s.mirror.State(),
		BrokerConnected: s.publisher.IsConnected(),
		RecentEvents:    recent,
	})
}
