package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
node:
  id: "guard-test"
broker:
  host: "localhost"
  port: 1883
  tls: false
  client_id: "test-client"
  username: "alice"
  qos: 1
security:
  grace_period_seconds: 15
  authorized_credentials: ["tag-1", "tag-2"]
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
api:
  host: "0.0.0.0"
  port: 8080
`
	cfg, err := Load(writeTestConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Node.ID != "guard-test" {
		t.Errorf("Node.ID = %q, want %q", cfg.Node.ID, "guard-test")
	}
	if cfg.Broker.Host != "localhost" {
		t.Errorf("Broker.Host = %q, want %q", cfg.Broker.Host, "localhost")
	}
	if cfg.Security.GracePeriodSeconds != 15 {
		t.Errorf("Security.GracePeriodSeconds = %d, want 15", cfg.Security.GracePeriodSeconds)
	}
	if len(cfg.Security.AuthorizedCredentials) != 2 {
		t.Errorf("AuthorizedCredentials length = %d, want 2", len(cfg.Security.AuthorizedCredentials))
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
}

func TestLoad_Defaults(t *testing.T) {
	// Minimal file: everything else should come from defaults.
	cfg, err := Load(writeTestConfig(t, "node:\n  id: \"guard-test\"\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Broker.Host != "io.adafruit.com" {
		t.Errorf("Broker.Host = %q, want default io.adafruit.com", cfg.Broker.Host)
	}
	if cfg.Broker.RateLimit.MessagesPerMinute != 30 {
		t.Errorf("RateLimit.MessagesPerMinute = %d, want 30", cfg.Broker.RateLimit.MessagesPerMinute)
	}
	if cfg.GracePeriod() != 30*time.Second {
		t.Errorf("GracePeriod() = %v, want 30s", cfg.GracePeriod())
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeTestConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ANLEXGUARD_BROKER_KEY", "aio-secret")
	t.Setenv("ANLEXGUARD_AUTHORIZED_CREDENTIALS", "tag-9, tag-10")

	cfg, err := Load(writeTestConfig(t, "node:\n  id: \"guard-test\"\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Broker.Key != "aio-secret" {
		t.Errorf("Broker.Key = %q, want env override", cfg.Broker.Key)
	}
	want := []string{"tag-9", "tag-10"}
	if len(cfg.Security.AuthorizedCredentials) != len(want) {
		t.Fatalf("AuthorizedCredentials = %v, want %v", cfg.Security.AuthorizedCredentials, want)
	}
	for i, id := range want {
		if cfg.Security.AuthorizedCredentials[i] != id {
			t.Errorf("AuthorizedCredentials[%d] = %q, want %q", i, cfg.Security.AuthorizedCredentials[i], id)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Node.ID = "guard-001"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing node id",
			mutate:  func(c *Config) { c.Node.ID = "" },
			wantErr: true,
		},
		{
			name:    "missing broker host",
			mutate:  func(c *Config) { c.Broker.Host = "" },
			wantErr: true,
		},
		{
			name:    "invalid broker port",
			mutate:  func(c *Config) { c.Broker.Port = 0 },
			wantErr: true,
		},
		{
			name:    "invalid qos",
			mutate:  func(c *Config) { c.Broker.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "zero rate ceiling",
			mutate:  func(c *Config) { c.Broker.RateLimit.MessagesPerMinute = 0 },
			wantErr: true,
		},
		{
			name:    "negative grace period",
			mutate:  func(c *Config) { c.Security.GracePeriodSeconds = -1 },
			wantErr: true,
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "invalid api port",
			mutate:  func(c *Config) { c.API.Port = 70000 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
