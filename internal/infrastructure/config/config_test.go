package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
mqtt:
  broker:
    host: "broker.local"
    port: 1883
    client_id: "test-bridge"
  qos: 1
airzone:
  topic: "airzone"
  poll_timeout: 10m
  scan_interval: 30s
homeassistant:
  topic: "homeassistant"
bridge:
  topic: "airzone-test"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.local")
	}
	if cfg.Airzone.PollTimeout.Std() != 10*time.Minute {
		t.Errorf("Airzone.PollTimeout = %v, want %v", cfg.Airzone.PollTimeout, 10*time.Minute)
	}
	if cfg.Airzone.ScanInterval.Std() != 30*time.Second {
		t.Errorf("Airzone.ScanInterval = %v, want %v", cfg.Airzone.ScanInterval, 30*time.Second)
	}
	if cfg.Bridge.Topic != "airzone-test" {
		t.Errorf("Bridge.Topic = %q, want %q", cfg.Bridge.Topic, "airzone-test")
	}
}

func TestLoad_DurationForms(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Duration
		wantErr bool
	}{
		{name: "duration string", value: `"90s"`, want: 90 * time.Second},
		{name: "integer seconds", value: "45", want: 45 * time.Second},
		{name: "garbage", value: `"soon"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := "airzone:\n  scan_interval: " + tt.value + "\n"
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.yaml")
			if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			cfg, err := Load(configPath)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Load() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Airzone.ScanInterval.Std() != tt.want {
				t.Errorf("ScanInterval = %v, want %v", cfg.Airzone.ScanInterval, tt.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("mqtt: [not a map"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("{}"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Airzone.Topic != "airzone" {
		t.Errorf("Airzone.Topic default = %q, want %q", cfg.Airzone.Topic, "airzone")
	}
	if cfg.Airzone.PollTimeout.Std() != 15*time.Minute {
		t.Errorf("Airzone.PollTimeout default = %v, want %v", cfg.Airzone.PollTimeout, 15*time.Minute)
	}
	if cfg.Airzone.ScanInterval.Std() != 60*time.Second {
		t.Errorf("Airzone.ScanInterval default = %v, want %v", cfg.Airzone.ScanInterval, 60*time.Second)
	}
	if cfg.MQTT.Broker.ClientID != "airzone-mqtt-bridge" {
		t.Errorf("MQTT.Broker.ClientID default = %q, want %q", cfg.MQTT.Broker.ClientID, "airzone-mqtt-bridge")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level default = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("{}"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("AZBRIDGE_MQTT_HOST", "env-broker")
	t.Setenv("AZBRIDGE_MQTT_PORT", "8883")
	t.Setenv("AZBRIDGE_AIRZONE_TOPIC", "airzone2")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "env-broker" {
		t.Errorf("MQTT.Broker.Host = %q, want env override %q", cfg.MQTT.Broker.Host, "env-broker")
	}
	if cfg.MQTT.Broker.Port != 8883 {
		t.Errorf("MQTT.Broker.Port = %d, want env override 8883", cfg.MQTT.Broker.Port)
	}
	if cfg.Airzone.Topic != "airzone2" {
		t.Errorf("Airzone.Topic = %q, want env override %q", cfg.Airzone.Topic, "airzone2")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing broker host",
			mutate:  func(c *Config) { c.MQTT.Broker.Host = "" },
			wantErr: true,
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.MQTT.Broker.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "invalid qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "empty airzone topic",
			mutate:  func(c *Config) { c.Airzone.Topic = "" },
			wantErr: true,
		},
		{
			name: "airzone and bridge topic collide",
			mutate: func(c *Config) {
				c.Airzone.Topic = "same"
				c.Bridge.Topic = "same"
			},
			wantErr: true,
		},
		{
			name:    "zero poll timeout",
			mutate:  func(c *Config) { c.Airzone.PollTimeout = 0 },
			wantErr: true,
		},
		{
			name: "telemetry enabled without url",
			mutate: func(c *Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.Org = "org"
				c.Telemetry.Bucket = "bucket"
			},
			wantErr: true,
		},
		{
			name: "telemetry enabled fully configured",
			mutate: func(c *Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.URL = "http://localhost:8086"
				c.Telemetry.Org = "org"
				c.Telemetry.Bucket = "bucket"
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
