package api

import (
	"net/http"
	"strconv"

	"github.com/anvsult/anlex-guard/internal/eventlog"
)

const defaultLogLimit = 50

// handleLogs returns event log entries, newest first.
//
// Query parameters:
//   - limit: Maximum entries to return (default 50, clamped by the store)
//   - type: Filter to one event type, e.g. ALARM_TRIGGERED
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit := defaultLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	var (
		entries []eventlog.Entry
		err     error
	)
	if eventType := r.URL.Query().Get("type"); eventType != "" {
		entries, err = s.events.ByType(r.Context(), eventType, limit)
	} else {
		entries, err = s.events.Recent(r.Context(), limit)
	}
	if err != nil {
		s.logger.Error("event log query failed", "error", err)
		writeInternalError(w, "event log query failed")
		return
	}

	if entries == nil {
		entries = []eventlog.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}
