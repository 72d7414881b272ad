package influxdb_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anvsult/anlex-guard/internal/infrastructure/config"
	"github.com/anvsult/anlex-guard/internal/infrastructure/influxdb"
)

// testConfig returns a configuration for the local dev InfluxDB.
// These values match docker-compose.yml.
func testConfig() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:8086",
		Token:         "anlexguard-dev-token",
		Org:           "anlexguard",
		Bucket:        "sensors",
		BatchSize:     100,
		FlushInterval: 1, // 1 second for faster test feedback
	}
}

// skipIfNoInfluxDB skips the test if InfluxDB is not running.
func skipIfNoInfluxDB(t *testing.T) *influxdb.Client {
	t.Helper()
	cfg := testConfig()
	client, err := influxdb.Connect(cfg)
	if err != nil {
		t.Skip("InfluxDB not available, skipping integration test")
	}
	return client
}

// =============================================================================
// Connection Tests
// =============================================================================

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	_, err := influxdb.Connect(cfg)
	if err == nil {
		t.Fatal("Connect() should return error when disabled")
	}
	if !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_InvalidURL(t *testing.T) {
	cfg := testConfig()
	cfg.URL = "http://127.0.0.1:59999" // Non-existent port

	_, err := influxdb.Connect(cfg)
	if err == nil {
		t.Fatal("Connect() should return error for unreachable server")
	}
	if !errors.Is(err, influxdb.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestClose_Nil(t *testing.T) {
	client := &influxdb.Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on zero client error = %v, want nil", err)
	}
}

// =============================================================================
// Query Validation Tests
// =============================================================================

func TestQuerySensorHistory_NotConnected(t *testing.T) {
	client := &influxdb.Client{}
	_, err := client.QuerySensorHistory(context.Background(), "temperature",
		time.Now().Add(-time.Hour), time.Now())
	if !errors.Is(err, influxdb.ErrNotConnected) {
		t.Errorf("QuerySensorHistory() error = %v, want ErrNotConnected", err)
	}
}

// =============================================================================
// Integration Tests (require a local InfluxDB)
// =============================================================================

func TestConnect(t *testing.T) {
	client := skipIfNoInfluxDB(t)
	defer client.Close()

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect()")
	}
}

func TestHealthCheck(t *testing.T) {
	client := skipIfNoInfluxDB(t)
	defer client.Close()

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v, want nil", err)
	}
}

func TestWriteSensorReading(t *testing.T) {
	client := skipIfNoInfluxDB(t)
	defer client.Close()

	client.WriteSensorReading("guard-edge-test", "temperature", 21.5)
	client.WriteSensorReading("guard-edge-test", "humidity", 47.0)
	client.Flush()
}

func TestWriteMotion(t *testing.T) {
	client := skipIfNoInfluxDB(t)
	defer client.Close()

	client.WriteMotion("guard-edge-test", true)
	client.WriteMotion("guard-edge-test", false)
	client.Flush()
}

func TestWriteEnvironment(t *testing.T) {
	client := skipIfNoInfluxDB(t)
	defer client.Close()

	client.WriteEnvironment("guard-edge-test", 22.1, 51.3)
	client.Flush()
}

func TestQuerySensorHistory_Roundtrip(t *testing.T) {
	client := skipIfNoInfluxDB(t)
	defer client.Close()

	node := "guard-edge-query-test"
	now := time.Now()
	client.WriteSensorReadingAt(node, "temperature", 20.0, now.Add(-2*time.Minute))
	client.WriteSensorReadingAt(node, "temperature", 21.0, now.Add(-time.Minute))
	client.Flush()

	points, err := client.QuerySensorHistory(context.Background(), "temperature",
		now.Add(-time.Hour), now.Add(time.Minute))
	if err != nil {
		t.Fatalf("QuerySensorHistory() error = %v", err)
	}
	if len(points) < 2 {
		t.Fatalf("QuerySensorHistory() returned %d points, want >= 2", len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i].Time.Before(points[i-1].Time) {
			t.Error("points not in ascending time order")
		}
	}
}

func TestQuerySensorHistory_InvalidRange(t *testing.T) {
	client := skipIfNoInfluxDB(t)
	defer client.Close()

	now := time.Now()
	_, err := client.QuerySensorHistory(context.Background(), "temperature", now, now.Add(-time.Hour))
	if !errors.Is(err, influxdb.ErrInvalidRange) {
		t.Errorf("QuerySensorHistory() error = %v, want ErrInvalidRange", err)
	}
}
