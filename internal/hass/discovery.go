package hass

import (
	"encoding/json"
	"fmt"

	"github.com/openhvac/airzone-mqtt-bridge/internal/airzone"
	"github.com/openhvac/airzone-mqtt-bridge/internal/infrastructure/mqtt"
)

// Origin identifies the bridge in discovery documents.
const Origin = "airzone-mqtt-bridge"

// Home Assistant birth/will payloads on its status topic.
const (
	PayloadOnline  = "online"
	PayloadOffline = "offline"
)

// Logger defines the logging interface used throughout the package.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Publisher is the outbound transport surface. Satisfied by
// *mqtt.Client.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// IsBirth reports whether a status-topic payload is Home Assistant's
// birth announcement.
func IsBirth(payload []byte) bool {
	return string(payload) == PayloadOnline
}

// Discovery publishes device-based MQTT discovery documents.
//
// Documents are published retained so entities survive a broker
// restart; they are re-published on every Home Assistant birth because
// a fresh Home Assistant install may not have seen them yet.
type Discovery struct {
	pub     Publisher
	topics  mqtt.Topics
	qos     byte
	version string
	logger  Logger
}

// NewDiscovery creates a discovery publisher. version appears in the
// document's origin block.
func NewDiscovery(pub Publisher, topics mqtt.Topics, qos byte, version string, logger Logger) *Discovery {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Discovery{
		pub:     pub,
		topics:  topics,
		qos:     qos,
		version: version,
		logger:  logger,
	}
}

// Publish publishes the retained discovery document for one device.
// Devices without any components (systems) publish nothing.
func (d *Discovery) Publish(snap airzone.Snapshot) error {
	doc := d.document(snap)
	if doc == nil {
		return nil
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding discovery for %s: %w", snap.Identity.Key(), err)
	}

	topic := d.topics.HADiscovery(snap.Identity.SafeKey())
	if err := d.pub.Publish(topic, payload, d.qos, true); err != nil {
		return fmt.Errorf("publishing discovery for %s: %w", snap.Identity.Key(), err)
	}

	d.logger.Debug("discovery published", "id", snap.Identity.Key(), "topic", topic)
	return nil
}

// PublishAll publishes discovery for every snapshot, continuing past
// individual failures and returning the first error encountered.
func (d *Discovery) PublishAll(snaps []airzone.Snapshot) error {
	var firstErr error
	for _, snap := range snaps {
		if err := d.Publish(snap); err != nil {
			d.logger.Error("discovery publish failed", "id", snap.Identity.Key(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// document builds the device-based discovery payload, or nil when the
// device exposes no components yet.
func (d *Discovery) document(snap airzone.Snapshot) map[string]any {
	kind := string(snap.Kind)
	safeKey := snap.Identity.SafeKey()

	components := map[string]any{}
	for _, list := range snap.Components {
		for _, comp := range list {
			uid, ok := comp["unique_id"].(string)
			if !ok || uid == "" {
				continue
			}
			entry := map[string]any{
				"state_topic":        d.topics.DeviceState(kind, safeKey),
				"availability_topic": d.topics.DeviceAvailability(kind, safeKey),
			}
			for k, v := range comp {
				entry[k] = v
			}
			components[uid] = entry
		}
	}
	if len(components) == 0 {
		return nil
	}

	return map[string]any{
		"device": snap.DeviceDescriptor(),
		"origin": map[string]any{
			"name":       Origin,
			"sw_version": d.version,
		},
		"components": components,
		"qos":        int(d.qos),
	}
}
