// Package influxdb provides InfluxDB connectivity for AnLex Guard.
//
// It wraps the official influxdb-client-go v2 library with AnLex Guard-specific
// patterns for connection management, sensor writes, and history queries.
//
// # Purpose
//
// This package handles time-series storage for:
//   - Temperature and humidity readings mirrored from the edge node
//   - Motion events as 0/1 samples
//   - History queries backing the dashboard's /api/history endpoints
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "anlexguard",
//	    Bucket: "sensors",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteSensorReading("guard-edge-01", "temperature", 21.5)
//
//	points, err := client.QuerySensorHistory(ctx, "temperature", start, end)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection, health check, and query errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size, flush_interval).
// This reduces network overhead for high-frequency telemetry data.
package influxdb
