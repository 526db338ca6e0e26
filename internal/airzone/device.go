package airzone

import (
	"regexp"
)

// Manufacturer reported for every bridged device.
const Manufacturer = "Airzone"

// Logger defines the logging interface used throughout the package.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// UpdateType distinguishes full snapshot merges from partial deltas.
type UpdateType int

const (
	// UpdateFull is a merge sourced from a full inventory snapshot.
	UpdateFull UpdateType = iota

	// UpdatePartial is a merge sourced from an event delta.
	UpdatePartial
)

// Kind identifies the concrete device variant.
type Kind string

const (
	KindSystem Kind = "system"
	KindZone   Kind = "zone"
)

// TemperatureUnit is the gateway's temperature unit enum.
type TemperatureUnit int

const (
	Celsius    TemperatureUnit = 0
	Fahrenheit TemperatureUnit = 1
)

// HAUnit returns the Home Assistant unit-of-measurement string.
func (u TemperatureUnit) HAUnit() string {
	if u == Fahrenheit {
		return "°F"
	}
	return "°C"
}

// Identity is the composite key of a device. It is immutable for the
// device's lifetime; no two stored devices share it.
type Identity struct {
	SystemID string
	DeviceID string
}

// Key returns the unique store key, "<systemID>:<deviceID>".
func (id Identity) Key() string {
	return id.SystemID + ":" + id.DeviceID
}

var unsafeIDChars = regexp.MustCompile(`[^0-9a-zA-Z_-]+`)

// safeID flattens a string for use in topics and Home Assistant ids.
func safeID(s string) string {
	return unsafeIDChars.ReplaceAllString(s, "_")
}

// SafeKey returns the key with topic-unsafe characters flattened,
// e.g. "1:2" -> "1_2".
func (id Identity) SafeKey() string {
	return safeID(id.Key())
}

// Device is the capability interface shared by the System and Zone
// variants. Implementations are not safe for concurrent use; the Store
// serializes access.
type Device interface {
	// Identity returns the immutable composite key.
	Identity() Identity

	// Kind returns the concrete variant.
	Kind() Kind

	// Merge applies a full or partial update. Only fields present in
	// the data are overwritten; absent fields retain prior values.
	// Merging the same data twice yields the same state as once.
	Merge(data DeviceData, ut UpdateType)

	// Snapshot returns an immutable projection of the current fields
	// for outbound publication.
	Snapshot() Snapshot
}

// deviceState holds the fields common to all device variants.
type deviceState struct {
	identity  Identity
	connected bool
	units     TemperatureUnit
	name      string
	model     string
	logger    Logger
}

func newDeviceState(data DeviceData, model string, logger Logger) deviceState {
	if logger == nil {
		logger = noopLogger{}
	}
	return deviceState{
		identity: Identity{
			SystemID: data.SystemID.String(),
			DeviceID: data.DeviceID.String(),
		},
		units:  Celsius,
		model:  model,
		logger: logger,
	}
}

func (d *deviceState) Identity() Identity { return d.identity }

// mergeCommon applies the fields shared by all variants.
func (d *deviceState) mergeCommon(data DeviceData) {
	if p := data.Parameters; p != nil && p.IsConnected != nil {
		d.connected = *p.IsConnected
	}
	if m := data.Meta; m != nil && m.Units != nil {
		d.units = TemperatureUnit(*m.Units)
	}
}

// commonState seeds a state map with the fields shared by all variants.
func (d *deviceState) commonState() map[string]any {
	return map[string]any{
		"device_id":    d.identity.DeviceID,
		"id":           d.identity.Key(),
		"is_connected": d.connected,
		"system_id":    d.identity.SystemID,
		"units":        int(d.units),
		"name":         d.name,
	}
}

// Snapshot is an immutable projection of one device, produced under the
// store lock and safe to hand to publishers on other goroutines.
type Snapshot struct {
	Identity     Identity
	Kind         Kind
	Name         string
	Model        string
	Manufacturer string
	Connected    bool
	Units        TemperatureUnit

	// State is the outbound state document (JSON-ready).
	State map[string]any

	// Components maps Home Assistant platforms (sensor, binary_sensor)
	// to discovery component documents.
	Components map[string][]map[string]any
}

// Availability projects the derived availability state: a device is
// online only while the gateway is online AND the device itself reports
// connected.
func (s Snapshot) Availability(gatewayOnline bool) string {
	if gatewayOnline && s.Connected {
		return "online"
	}
	return "offline"
}

// DeviceDescriptor returns the Home Assistant device block for
// discovery publication.
func (s Snapshot) DeviceDescriptor() map[string]any {
	return map[string]any{
		"identifiers":  s.Identity.SafeKey(),
		"manufacturer": s.Manufacturer,
		"model":        s.Model,
		"name":         s.Name,
	}
}

// round1 rounds to one decimal place for outbound projections.
func round1(v float64) float64 {
	if v < 0 {
		return float64(int(v*10-0.5)) / 10
	}
	return float64(int(v*10+0.5)) / 10
}
