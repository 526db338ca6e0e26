package hass

import (
	"encoding/json"
	"fmt"

	"github.com/openhvac/airzone-mqtt-bridge/internal/airzone"
	"github.com/openhvac/airzone-mqtt-bridge/internal/infrastructure/mqtt"
)

// Announcer publishes device state and availability documents to the
// bridge's outbound topics. Both are retained so a restarting Home
// Assistant picks up current values immediately.
type Announcer struct {
	pub    Publisher
	topics mqtt.Topics
	qos    byte
	logger Logger
}

// NewAnnouncer creates a state/availability publisher.
func NewAnnouncer(pub Publisher, topics mqtt.Topics, qos byte, logger Logger) *Announcer {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Announcer{
		pub:    pub,
		topics: topics,
		qos:    qos,
		logger: logger,
	}
}

// PublishState publishes the device's JSON state document.
func (a *Announcer) PublishState(snap airzone.Snapshot) error {
	payload, err := json.Marshal(snap.State)
	if err != nil {
		return fmt.Errorf("encoding state for %s: %w", snap.Identity.Key(), err)
	}

	topic := a.topics.DeviceState(string(snap.Kind), snap.Identity.SafeKey())
	if err := a.pub.Publish(topic, payload, a.qos, true); err != nil {
		return fmt.Errorf("publishing state for %s: %w", snap.Identity.Key(), err)
	}
	return nil
}

// PublishAvailability publishes the device's derived availability.
// gatewayOnline is the gateway's last announced state.
func (a *Announcer) PublishAvailability(snap airzone.Snapshot, gatewayOnline bool) error {
	topic := a.topics.DeviceAvailability(string(snap.Kind), snap.Identity.SafeKey())
	payload := []byte(snap.Availability(gatewayOnline))

	if err := a.pub.Publish(topic, payload, a.qos, true); err != nil {
		return fmt.Errorf("publishing availability for %s: %w", snap.Identity.Key(), err)
	}
	return nil
}

// Announce publishes state and availability for one device. Failures
// are logged; the first one is returned.
func (a *Announcer) Announce(snap airzone.Snapshot, gatewayOnline bool) error {
	var firstErr error
	if err := a.PublishState(snap); err != nil {
		a.logger.Error("state publish failed", "id", snap.Identity.Key(), "error", err)
		firstErr = err
	}
	if err := a.PublishAvailability(snap, gatewayOnline); err != nil {
		a.logger.Error("availability publish failed", "id", snap.Identity.Key(), "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// AnnounceAll publishes state and availability for every snapshot.
// Used when the gateway's availability flips, since the derived
// availability of every device changes with it.
func (a *Announcer) AnnounceAll(snaps []airzone.Snapshot, gatewayOnline bool) {
	for _, snap := range snaps {
		// Failures are logged per device; keep going.
		_ = a.Announce(snap, gatewayOnline)
	}
}
