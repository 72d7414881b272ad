package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for AnLex Guard.
// All configuration is loaded from YAML and can be overridden by environment variables.
//
// The same file drives both binaries: guard-edge reads the hardware and
// security sections, guard-cloud reads the api and influxdb sections, and
// both read broker, database and logging.
type Config struct {
	Node     NodeConfig     `yaml:"node"`
	Broker   BrokerConfig   `yaml:"broker"`
	Security SecurityConfig `yaml:"security"`
	Hardware HardwareConfig `yaml:"hardware"`
	Database DatabaseConfig `yaml:"database"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	API      APIConfig      `yaml:"api"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// NodeConfig identifies this deployment.
type NodeConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// BrokerConfig contains pub/sub broker connection settings.
//
// The broker is Adafruit-IO-compatible: feeds are scoped under the account
// username ({username}/feeds/{key}) and the account key doubles as the MQTT
// password.
type BrokerConfig struct {
	Host      string                `yaml:"host"`
	Port      int                   `yaml:"port"`
	TLS       bool                  `yaml:"tls"`
	ClientID  string                `yaml:"client_id"`
	Username  string                `yaml:"username"`
	Key       string                `yaml:"key"`
	QoS       int                   `yaml:"qos"`
	Reconnect BrokerReconnectConfig `yaml:"reconnect"`
	RateLimit RateLimitConfig       `yaml:"rate_limit"`
}

// BrokerReconnectConfig contains reconnection backoff settings (seconds).
type BrokerReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// RateLimitConfig contains the broker's publish ceiling.
//
// Hosted brokers impose a fixed messages-per-minute ceiling per account.
// Publishes beyond it fail with ErrRateLimited and the caller backs off
// rather than silently dropping.
type RateLimitConfig struct {
	MessagesPerMinute int `yaml:"messages_per_minute"`
}

// SecurityConfig contains the arm/disarm/alarm policy settings.
type SecurityConfig struct {
	// GracePeriodSeconds suppresses motion-triggered alarms for this long
	// after arming, so the person arming the system can leave the area.
	GracePeriodSeconds int `yaml:"grace_period_seconds"`

	// AuthorizedCredentials is the static allow-list of credential
	// identifiers accepted from the local reader.
	AuthorizedCredentials []string `yaml:"authorized_credentials"`

	// StealthDefault sets the stealth flag at startup.
	StealthDefault bool `yaml:"stealth_default"`
}

// HardwareConfig contains sensor polling intervals (edge node only).
type HardwareConfig struct {
	MotionPollInterval      time.Duration `yaml:"motion_poll_interval"`
	EnvironmentPollInterval time.Duration `yaml:"environment_poll_interval"`
	CredentialPollInterval  time.Duration `yaml:"credential_poll_interval"`
}

// DatabaseConfig contains SQLite database settings for the event log.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings (cloud node only).
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// APIConfig contains HTTP API server settings (cloud node only).
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: ANLEXGUARD_SECTION_KEY
// For example: ANLEXGUARD_BROKER_KEY, ANLEXGUARD_DATABASE_PATH
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Node: NodeConfig{
			ID:   "guard-001",
			Name: "AnLex Guard",
		},
		Broker: BrokerConfig{
			Host:     "io.adafruit.com",
			Port:     8883,
			TLS:      true,
			ClientID: "anlexguard-edge",
			QoS:      1,
			Reconnect: BrokerReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
			RateLimit: RateLimitConfig{
				MessagesPerMinute: 30,
			},
		},
		Security: SecurityConfig{
			GracePeriodSeconds: 30,
		},
		Hardware: HardwareConfig{
			MotionPollInterval:      500 * time.Millisecond,
			EnvironmentPollInterval: time.Minute,
			CredentialPollInterval:  300 * time.Millisecond,
		},
		Database: DatabaseConfig{
			Path:        "./data/anlexguard.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: ANLEXGUARD_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Broker credentials are the usual secrets
	if v := os.Getenv("ANLEXGUARD_BROKER_HOST"); v != "" {
		cfg.Broker.Host = v
	}
	if v := os.Getenv("ANLEXGUARD_BROKER_USERNAME"); v != "" {
		cfg.Broker.Username = v
	}
	if v := os.Getenv("ANLEXGUARD_BROKER_KEY"); v != "" {
		cfg.Broker.Key = v
	}

	// Database
	if v := os.Getenv("ANLEXGUARD_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// API
	if v := os.Getenv("ANLEXGUARD_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("ANLEXGUARD_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// InfluxDB
	if v := os.Getenv("ANLEXGUARD_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Credential allow-list: comma-separated ids
	if v := os.Getenv("ANLEXGUARD_AUTHORIZED_CREDENTIALS"); v != "" {
		var ids []string
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		cfg.Security.AuthorizedCredentials = ids
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Node.ID == "" {
		errs = append(errs, "node.id is required")
	}

	if c.Broker.Host == "" {
		errs = append(errs, "broker.host is required")
	}
	if c.Broker.Port < 1 || c.Broker.Port > 65535 {
		errs = append(errs, "broker.port must be between 1 and 65535")
	}
	if c.Broker.QoS < 0 || c.Broker.QoS > 2 {
		errs = append(errs, "broker.qos must be 0, 1, or 2")
	}
	if c.Broker.RateLimit.MessagesPerMinute < 1 {
		errs = append(errs, "broker.rate_limit.messages_per_minute must be positive")
	}

	if c.Security.GracePeriodSeconds < 0 {
		errs = append(errs, "security.grace_period_seconds must not be negative")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GracePeriod returns the post-arming grace window as a Duration.
func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.Security.GracePeriodSeconds) * time.Second
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
