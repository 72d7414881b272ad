package influxdb

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// HistoryPoint is a single timestamped sensor value returned by a
// history query.
type HistoryPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// defaultQueryTimeout bounds Flux query execution.
const defaultQueryTimeout = 30 * time.Second

// QuerySensorHistory returns the readings recorded for a sensor within
// the given time range, oldest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - sensor: The sensor name (e.g., "temperature", "humidity", "motion")
//   - start: Inclusive range start
//   - end: Exclusive range end
//
// Returns:
//   - []HistoryPoint: Readings in ascending time order (may be empty)
//   - error: ErrNotConnected, ErrInvalidRange, or the query error
func (c *Client) QuerySensorHistory(ctx context.Context, sensor string, start, end time.Time) ([]HistoryPoint, error) {
	if c == nil || !c.IsConnected() {
		return nil, ErrNotConnected
	}
	if strings.TrimSpace(sensor) == "" {
		return nil, fmt.Errorf("%w: sensor is required", ErrInvalidRange)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end must be after start", ErrInvalidRange)
	}

	queryCtx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	// Sensor names come from a fixed internal set, but escape quotes
	// anyway so a bad value cannot break out of the Flux string.
	flux := fmt.Sprintf(`from(bucket: %q)
  |> range(start: %s, stop: %s)
  |> filter(fn: (r) => r._measurement == %q)
  |> filter(fn: (r) => r.sensor == %q)
  |> filter(fn: (r) => r._field == "value")
  |> sort(columns: ["_time"])`,
		c.cfg.Bucket,
		start.UTC().Format(time.RFC3339),
		end.UTC().Format(time.RFC3339),
		sensorMeasurement,
		sensor,
	)

	result, err := c.queryAPI.Query(queryCtx, flux)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	defer result.Close()

	points := []HistoryPoint{}
	for result.Next() {
		record := result.Record()
		value, ok := record.Value().(float64)
		if !ok {
			continue
		}
		points = append(points, HistoryPoint{
			Time:  record.Time(),
			Value: value,
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	return points, nil
}
