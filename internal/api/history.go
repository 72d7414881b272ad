package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/anvsult/anlex-guard/internal/infrastructure/influxdb"
)

// defaultHistoryWindow is the lookback applied when no start is given.
const defaultHistoryWindow = 24 * time.Hour

// historySensors are the sensors with stored history.
var historySensors = map[string]bool{
	"temperature": true,
	"humidity":    true,
	"motion":      true,
}

// handleHistory returns time series points for one sensor.
//
// Query parameters:
//   - start: RFC 3339 range start (default: end minus 24h)
//   - end: RFC 3339 range end (default: now)
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sensor := chi.URLParam(r, "sensor")
	if !historySensors[sensor] {
		writeNotFound(w, "unknown sensor: "+sensor)
		return
	}
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "history store not configured")
		return
	}

	end := time.Now().UTC()
	if raw := r.URL.Query().Get("end"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeBadRequest(w, "end must be RFC 3339")
			return
		}
		end = parsed
	}

	start := end.Add(-defaultHistoryWindow)
	if raw := r.URL.Query().Get("start"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeBadRequest(w, "start must be RFC 3339")
			return
		}
		start = parsed
	}

	if !start.Before(end) {
		writeBadRequest(w, "start must be before end")
		return
	}

	points, err := s.history.QuerySensorHistory(r.Context(), sensor, start, end)
	if err != nil {
		s.logger.Error("history query failed", "sensor", sensor, "error", err)
		writeInternalError(w, "history query failed")
		return
	}

	if points == nil {
		points = []influxdb.HistoryPoint{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sensor": sensor,
		"start":  start,
		"end":    end,
		"points": points,
	})
}
