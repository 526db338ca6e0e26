package airzone

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Commands understood by the gateway. The dot separates the API
// namespace from the operation; topic segments flatten it to an
// underscore.
const (
	CmdGetStatus = "az.get_status"
)

// Device type discriminators used by the gateway.
const (
	DeviceTypeSystem = "az_system"
	DeviceTypeZone   = "az_zone"
)

// Headers is the header block of a gateway envelope.
//
// Request headers carry cmd, destination and req_id. Response and event
// headers may carry ts, the epoch-seconds time of the underlying event,
// which overrides the freshness clock.
type Headers struct {
	Cmd         string   `json:"cmd,omitempty"`
	Destination string   `json:"destination,omitempty"`
	RequestID   string   `json:"req_id,omitempty"`
	Timestamp   *float64 `json:"ts,omitempty"`
}

// Envelope is the request/response wrapper used on the invoke and
// response topics, and the wrapper around event payloads.
type Envelope struct {
	Headers Headers         `json:"headers"`
	Body    json.RawMessage `json:"body,omitempty"`
}

// EventTime converts the ts header to a time, reporting whether it was
// present.
func (h Headers) EventTime() (time.Time, bool) {
	if h.Timestamp == nil {
		return time.Time{}, false
	}
	sec := int64(*h.Timestamp)
	nsec := int64((*h.Timestamp - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC(), true
}

// ID is a device or system identifier. The gateway is inconsistent
// about emitting these as JSON strings or numbers; both decode to the
// string form.
type ID string

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// DeviceData is one device entry as carried by full snapshot responses
// and event bodies. Optional fields are pointers so a partial delta
// only overwrites what it actually carries.
type DeviceData struct {
	DeviceID   ID          `json:"device_id"`
	DeviceType string      `json:"device_type"`
	SystemID   ID          `json:"system_id"`
	Meta       *Meta       `json:"meta,omitempty"`
	Parameters *Parameters `json:"parameters,omitempty"`
}

// Meta carries device metadata fields.
type Meta struct {
	Units *int `json:"units,omitempty"`
}

// Parameters carries the mutable device fields.
type Parameters struct {
	IsConnected   *bool    `json:"is_connected,omitempty"`
	Name          *string  `json:"name,omitempty"`
	Power         *bool    `json:"power,omitempty"`
	Mode          *int     `json:"mode,omitempty"`
	ModeAvailable []int    `json:"mode_available,omitempty"`
	AirActive     *bool    `json:"air_active,omitempty"`
	RadActive     *bool    `json:"rad_active,omitempty"`
	Humidity      *int     `json:"humidity,omitempty"`
	Setpoint      *float64 `json:"setpoint,omitempty"`
	RangeSP       *RangeSP `json:"range_sp,omitempty"`
	Step          *float64 `json:"step,omitempty"`
	ZoneWorkTemp  *float64 `json:"zone_work_temp,omitempty"`
}

// RangeSP is the setpoint bounds block.
type RangeSP struct {
	Max *float64 `json:"max,omitempty"`
	Min *float64 `json:"min,omitempty"`
}

// StatusBody is the body of an az.get_status response: the full device
// inventory.
type StatusBody struct {
	Devices []DeviceData `json:"devices"`
}

// OnlineBody is the payload of the gateway's online topic.
type OnlineBody struct {
	Online bool `json:"online"`
}

// requestID builds a correlation id for a command. The timestamp
// portion distinguishes successive requests for the same command; the
// id is opaque to the gateway and echoed back verbatim.
//
// Format: req-<year>/<month>/<day>-<hour>:<min>:<sec>.<micros>-<safeCommand>
func requestID(command string, now time.Time) string {
	date := fmt.Sprintf("%d/%d/%d", now.Year(), int(now.Month()), now.Day())
	clock := fmt.Sprintf("%d:%d:%d", now.Hour(), now.Minute(), now.Second())
	micros := now.Nanosecond() / int(time.Microsecond)
	return "req-" + date + "-" + clock + "." + strconv.Itoa(micros) + "-" + safeID(command)
}
