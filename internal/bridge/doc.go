// Package bridge assembles the bridge daemon: it owns the inbox, the
// gateway-facing components from internal/airzone, and the Home
// Assistant publishers from internal/hass, and runs the two long-lived
// loops.
//
// The receive loop drains inbound broker messages in delivery order
// through the router. The sync loop waits for the gateway's online
// announcement and then runs the freshness policy on the configured
// scan interval, polling a full status snapshot only when the model
// cannot be trusted.
package bridge
