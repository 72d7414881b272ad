package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// sensorMeasurement is the measurement name for all sensor readings.
const sensorMeasurement = "sensor_readings"

// WriteSensorReading writes a single sensor reading to InfluxDB.
//
// This is the primary method for recording telemetry mirrored from the
// edge node. The write is non-blocking; data is batched and sent
// asynchronously.
//
// Parameters:
//   - nodeID: Identifier of the originating node (e.g., "guard-edge-01")
//   - sensor: The sensor name (e.g., "temperature", "humidity", "motion")
//   - value: The numeric value to record
//
// Example:
//
//	client.WriteSensorReading("guard-edge-01", "temperature", 21.5)
func (c *Client) WriteSensorReading(nodeID string, sensor string, value float64) {
	c.WriteSensorReadingAt(nodeID, sensor, value, time.Now())
}

// WriteSensorReadingAt writes a sensor reading with an explicit timestamp.
//
// Use this when mirroring readings whose capture time precedes arrival,
// such as messages replayed after a broker reconnect.
func (c *Client) WriteSensorReadingAt(nodeID string, sensor string, value float64, at time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		sensorMeasurement,
		map[string]string{
			"node_id": nodeID,
			"sensor":  sensor,
		},
		map[string]interface{}{
			"value": value,
		},
		at,
	)

	c.writeAPI.WritePoint(point)
}

// WriteMotion writes a motion sensor reading as a 0/1 value.
//
// Parameters:
//   - nodeID: Identifier of the originating node
//   - detected: true when motion was detected
func (c *Client) WriteMotion(nodeID string, detected bool) {
	value := 0.0
	if detected {
		value = 1.0
	}
	c.WriteSensorReading(nodeID, "motion", value)
}

// WriteEnvironment writes a paired temperature and humidity reading.
//
// Parameters:
//   - nodeID: Identifier of the originating node
//   - temperatureC: Temperature in degrees Celsius
//   - humidityPct: Relative humidity in percent
func (c *Client) WriteEnvironment(nodeID string, temperatureC float64, humidityPct float64) {
	c.WriteSensorReading(nodeID, "temperature", temperatureC)
	c.WriteSensorReading(nodeID, "humidity", humidityPct)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("node_stats",
//	    map[string]string{"node_id": "guard-cloud-01"},
//	    map[string]interface{}{"queue_depth": 12})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
