package mqtt

import (
	"fmt"
	"regexp"
	"strings"
)

// Airzone gateway protocol version segment. All gateway traffic lives
// under <airzoneTopic>/v1/...
const ProtocolVersion = "v1"

// Gateway topic segments. The first path segment after the prefix
// classifies a message.
const (
	SegmentEvents   = "events"
	SegmentStatus   = "status"
	SegmentInvoke   = "invoke"
	SegmentOnline   = "online"
	SegmentResponse = "response"
)

// Device topic suffixes for outbound state publication.
const (
	SuffixState        = "state"
	SuffixAvailability = "availability"
)

var unsafeIDChars = regexp.MustCompile(`[^0-9a-zA-Z_-]+`)

// SafeID replaces characters that are not valid in a topic identifier
// with underscores. Command names contain dots (az->get_status is sent
// as "az.get_status" on the wire) and device keys contain colons; both
// need flattening before they appear in a topic path.
func SafeID(s string) string {
	return unsafeIDChars.ReplaceAllString(s, "_")
}

// Topics builds every topic the bridge publishes or subscribes to.
// Using these helpers keeps topic naming consistent across the codebase.
//
//	topics := mqtt.NewTopics("airzone", "homeassistant", "airzone-mqtt-bridge")
//	topics.AirzoneInvoke() // "airzone/v1/invoke"
type Topics struct {
	// Airzone is the gateway's topic root.
	Airzone string

	// HomeAssistant is Home Assistant's topic root.
	HomeAssistant string

	// Bridge is the bridge's own topic root.
	Bridge string
}

// NewTopics creates topic builders for the three configured topic roots.
func NewTopics(airzone, homeAssistant, bridge string) Topics {
	return Topics{
		Airzone:       airzone,
		HomeAssistant: homeAssistant,
		Bridge:        bridge,
	}
}

// =============================================================================
// Airzone Gateway Topics
// =============================================================================

// AirzonePrefix returns the versioned gateway prefix.
//
// Example: airzone/v1
func (t Topics) AirzonePrefix() string {
	return fmt.Sprintf("%s/%s", t.Airzone, ProtocolVersion)
}

// AirzoneAll returns a pattern matching all gateway traffic.
//
// Pattern: airzone/v1/#
func (t Topics) AirzoneAll() string {
	return fmt.Sprintf("%s/#", t.AirzonePrefix())
}

// AirzoneInvoke returns the gateway's request topic.
//
// Example: airzone/v1/invoke
func (t Topics) AirzoneInvoke() string {
	return fmt.Sprintf("%s/%s", t.AirzonePrefix(), SegmentInvoke)
}

// AirzoneResponse returns the response topic for a command. The command
// name is flattened so dots never appear as topic characters.
//
// Example: airzone/v1/response/az_get_status
func (t Topics) AirzoneResponse(command string) string {
	return fmt.Sprintf("%s/%s/%s", t.AirzonePrefix(), SegmentResponse, SafeID(command))
}

// StripAirzonePrefix removes the versioned gateway prefix from a topic
// and reports whether the topic carried it.
func (t Topics) StripAirzonePrefix(topic string) (string, bool) {
	prefix := t.AirzonePrefix() + "/"
	if !strings.HasPrefix(topic, prefix) {
		return topic, false
	}
	return strings.TrimPrefix(topic, prefix), true
}

// =============================================================================
// Home Assistant Topics
// =============================================================================

// HAStatus returns Home Assistant's birth/will topic.
//
// Example: homeassistant/status
func (t Topics) HAStatus() string {
	return fmt.Sprintf("%s/status", t.HomeAssistant)
}

// HADiscovery returns the device discovery config topic for a device.
//
// Example: homeassistant/device/1_1/config
func (t Topics) HADiscovery(deviceID string) string {
	return fmt.Sprintf("%s/device/%s/config", t.HomeAssistant, SafeID(deviceID))
}

// =============================================================================
// Bridge Topics
// =============================================================================

// BridgeStatus returns the bridge's own status topic, used for the LWT
// and for graceful online/offline announcements.
//
// Example: airzone-mqtt-bridge/status
func (t Topics) BridgeStatus() string {
	return fmt.Sprintf("%s/status", t.Bridge)
}

// Device returns the topic root for one device's outbound publication.
// kind is "system" or "zone".
//
// Example: airzone-mqtt-bridge/airzone/zone/1_2
func (t Topics) Device(kind, deviceID string) string {
	return fmt.Sprintf("%s/%s/%s/%s", t.Bridge, t.Airzone, kind, SafeID(deviceID))
}

// DeviceState returns the state topic for one device.
//
// Example: airzone-mqtt-bridge/airzone/zone/1_2/state
func (t Topics) DeviceState(kind, deviceID string) string {
	return fmt.Sprintf("%s/%s", t.Device(kind, deviceID), SuffixState)
}

// DeviceAvailability returns the availability topic for one device.
//
// Example: airzone-mqtt-bridge/airzone/zone/1_2/availability
func (t Topics) DeviceAvailability(kind, deviceID string) string {
	return fmt.Sprintf("%s/%s", t.Device(kind, deviceID), SuffixAvailability)
}
