package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Airzone MQTT bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	MQTT          MQTTConfig      `yaml:"mqtt"`
	Airzone       AirzoneConfig   `yaml:"airzone"`
	HomeAssistant HAConfig        `yaml:"homeassistant"`
	Bridge        BridgeConfig    `yaml:"bridge"`
	Metrics       MetricsConfig   `yaml:"metrics"`
	Telemetry     TelemetryConfig `yaml:"telemetry"`
	Logging       LoggingConfig   `yaml:"logging"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
// Empty username means anonymous access (local development only).
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// Duration is a time.Duration that unmarshals from YAML strings like
// "15m" or "90s". Bare integers are read as seconds.
type Duration time.Duration

// Std returns the value as a standard time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var n int64
	if err := node.Decode(&n); err == nil {
		*d = Duration(time.Duration(n) * time.Second)
		return nil
	}

	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string or integer seconds: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// AirzoneConfig contains settings for the Airzone gateway side of the bridge.
type AirzoneConfig struct {
	// Topic is the gateway's MQTT topic root. The gateway publishes under
	// <topic>/v1/...
	Topic string `yaml:"topic"`

	// PollTimeout is the freshness window: the maximum age of the last
	// successful update before an active poll is issued. It also bounds
	// how long a poll waits for its response.
	PollTimeout Duration `yaml:"poll_timeout"`

	// ScanInterval is the period of the synchronization cycle.
	ScanInterval Duration `yaml:"scan_interval"`
}

// HAConfig contains Home Assistant integration settings.
type HAConfig struct {
	// Topic is Home Assistant's MQTT topic root, used for discovery
	// publication and for listening to HA birth messages.
	Topic string `yaml:"topic"`
}

// BridgeConfig contains settings for the bridge's own MQTT presence.
type BridgeConfig struct {
	// Topic is the topic root the bridge publishes device state under.
	Topic string `yaml:"topic"`
}

// MetricsConfig contains Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// TelemetryConfig contains InfluxDB telemetry recording settings.
type TelemetryConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
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
// Environment variables follow the pattern: AZBRIDGE_SECTION_KEY
// For example: AZBRIDGE_MQTT_HOST, AZBRIDGE_TELEMETRY_TOKEN
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := Default()

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

// Default returns a Config with sensible defaults.
//
// The defaults match a typical Airzone gateway deployment: a local
// anonymous broker, a 15 minute freshness window and a 60 second scan
// interval.
func Default() *Config {
	return &Config{
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "airzone-mqtt-bridge",
			},
			QoS: 0,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Airzone: AirzoneConfig{
			Topic:        "airzone",
			PollTimeout:  Duration(15 * time.Minute),
			ScanInterval: Duration(60 * time.Second),
		},
		HomeAssistant: HAConfig{
			Topic: "homeassistant",
		},
		Bridge: BridgeConfig{
			Topic: "airzone-mqtt-bridge",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  ":9090",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: AZBRIDGE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// MQTT
	if v := os.Getenv("AZBRIDGE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("AZBRIDGE_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("AZBRIDGE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("AZBRIDGE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Airzone
	if v := os.Getenv("AZBRIDGE_AIRZONE_TOPIC"); v != "" {
		cfg.Airzone.Topic = v
	}

	// Telemetry
	if v := os.Getenv("AZBRIDGE_TELEMETRY_TOKEN"); v != "" {
		cfg.Telemetry.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// MQTT validation
	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port <= 0 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, fmt.Sprintf("mqtt.broker.port %d is out of range", c.MQTT.Broker.Port))
	}
	if c.MQTT.Broker.ClientID == "" {
		errs = append(errs, "mqtt.broker.client_id is required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, fmt.Sprintf("mqtt.qos %d is invalid (must be 0, 1 or 2)", c.MQTT.QoS))
	}

	// Topic roots must be set and must not collide: the receive loop
	// classifies inbound messages by topic prefix.
	if c.Airzone.Topic == "" {
		errs = append(errs, "airzone.topic is required")
	}
	if c.HomeAssistant.Topic == "" {
		errs = append(errs, "homeassistant.topic is required")
	}
	if c.Bridge.Topic == "" {
		errs = append(errs, "bridge.topic is required")
	}
	if c.Airzone.Topic == c.Bridge.Topic {
		errs = append(errs, "airzone.topic and bridge.topic must differ")
	}

	// Timing validation
	if c.Airzone.PollTimeout <= 0 {
		errs = append(errs, "airzone.poll_timeout must be positive")
	}
	if c.Airzone.ScanInterval <= 0 {
		errs = append(errs, "airzone.scan_interval must be positive")
	}

	// Telemetry validation (only when enabled)
	if c.Telemetry.Enabled {
		if c.Telemetry.URL == "" {
			errs = append(errs, "telemetry.url is required when telemetry is enabled")
		}
		if c.Telemetry.Org == "" {
			errs = append(errs, "telemetry.org is required when telemetry is enabled")
		}
		if c.Telemetry.Bucket == "" {
			errs = append(errs, "telemetry.bucket is required when telemetry is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}
