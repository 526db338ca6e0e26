// Package hass publishes the normalized device model to Home Assistant.
//
// Three outbound surfaces:
//
//   - Discovery documents, published retained to the device-based MQTT
//     discovery topic so Home Assistant creates entities without manual
//     configuration.
//   - State documents, the JSON projection of each device's current
//     fields.
//   - Availability, derived from the gateway announcement AND the
//     device's own is_connected flag.
//
// The package also recognizes Home Assistant's birth announcement on
// its status topic; the bridge re-publishes discovery when Home
// Assistant restarts, since a restart loses retained subscriptions'
// effect on entity registration.
package hass
