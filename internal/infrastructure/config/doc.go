// Package config provides configuration loading for the Airzone MQTT bridge.
//
// Configuration is loaded from a YAML file with environment variable
// overrides (AZBRIDGE_* pattern). Defaults cover a local development
// deployment against an anonymous Mosquitto broker.
//
// # Configuration Sections
//
//   - mqtt: broker connection, auth, QoS, reconnect backoff
//   - airzone: gateway topic root, freshness window, scan interval
//   - homeassistant: HA topic root for discovery and birth messages
//   - bridge: the bridge's own topic root for state publication
//   - metrics: Prometheus endpoint
//   - telemetry: optional InfluxDB zone telemetry recording
//   - logging: level, format, output
//
// # Usage
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
