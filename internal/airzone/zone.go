package airzone

import "fmt"

// ModelZone is the model string reported for zone devices.
const ModelZone = "Zone"

// Mode is the gateway's HVAC operating mode enum. Unrecognized wire
// values map to ModeUnknown rather than failing the merge.
type Mode int

const (
	ModeUnknown Mode = -1

	ModeStop           Mode = 0
	ModeAuto           Mode = 1
	ModeCooling        Mode = 2
	ModeHeating        Mode = 3
	ModeVentilation    Mode = 4
	ModeDry            Mode = 5
	ModeEmergencyHeat  Mode = 6
	ModeHeatAir        Mode = 7
	ModeHeatRadiant    Mode = 8
	ModeHeatCombined   Mode = 9
	ModeCoolAir        Mode = 10
	ModeCoolRadiant    Mode = 11
	ModeCoolCombined   Mode = 12
	ModeBypass         Mode = 13
	ModeRecovery       Mode = 14
	ModeRegulationTemp Mode = 15
	ModePurification   Mode = 16
	ModeFanPurify      Mode = 17
	ModeFanEnergy      Mode = 18
)

// ModeFromValue maps a wire value to a Mode, returning ModeUnknown for
// values outside the known range.
func ModeFromValue(v int) Mode {
	if v < int(ModeStop) || v > int(ModeFanEnergy) {
		return ModeUnknown
	}
	return Mode(v)
}

// Zone is a controllable climate zone. All zone-specific fields are
// optional until first reported by the gateway.
type Zone struct {
	deviceState

	airActive     *bool
	humidity      *int
	mode          *Mode
	modeAvailable []Mode
	power         *bool
	radActive     *bool
	setpoint      *float64
	setpointMax   *float64
	setpointMin   *float64
	step          *float64
	workTemp      *float64
}

// NewZone creates a Zone from a full snapshot entry.
func NewZone(data DeviceData, logger Logger) *Zone {
	z := &Zone{deviceState: newDeviceState(data, ModelZone, logger)}
	z.name = fmt.Sprintf("Zone [%s]", z.identity.Key())
	z.logger.Debug("zone created", "id", z.identity.Key())
	return z
}

func (z *Zone) Kind() Kind { return KindZone }

// Active reports whether the zone is actively conditioning air through
// either stage.
func (z *Zone) Active() bool {
	return (z.airActive != nil && *z.airActive) || (z.radActive != nil && *z.radActive)
}

// Merge applies an update, overwriting only the fields present in the
// delta. Absent fields retain their prior values, which makes merging
// the same delta twice equivalent to merging it once.
func (z *Zone) Merge(data DeviceData, ut UpdateType) {
	z.mergeCommon(data)

	p := data.Parameters
	if p == nil {
		return
	}

	if p.AirActive != nil {
		v := *p.AirActive
		z.airActive = &v
	}
	if p.Humidity != nil {
		v := *p.Humidity
		z.humidity = &v
	}
	if p.Mode != nil {
		m := ModeFromValue(*p.Mode)
		z.mode = &m
	}
	if p.ModeAvailable != nil {
		modes := make([]Mode, 0, len(p.ModeAvailable))
		for _, v := range p.ModeAvailable {
			modes = append(modes, ModeFromValue(v))
		}
		z.modeAvailable = modes
	}
	if p.Name != nil {
		z.name = *p.Name
	}
	if p.Power != nil {
		v := *p.Power
		z.power = &v
	}
	if p.RadActive != nil {
		v := *p.RadActive
		z.radActive = &v
	}
	if p.RangeSP != nil {
		if p.RangeSP.Max != nil {
			v := *p.RangeSP.Max
			z.setpointMax = &v
		}
		if p.RangeSP.Min != nil {
			v := *p.RangeSP.Min
			z.setpointMin = &v
		}
	}
	if p.Setpoint != nil {
		v := *p.Setpoint
		z.setpoint = &v
	}
	if p.Step != nil {
		v := *p.Step
		z.step = &v
	}
	if p.ZoneWorkTemp != nil {
		v := *p.ZoneWorkTemp
		z.workTemp = &v
	}

	if ut == UpdatePartial {
		z.logger.Debug("zone updated", "id", z.identity.Key())
	}
}

// Snapshot returns an immutable projection of the zone. Optional fields
// appear in the state document only once the gateway has reported them;
// temperatures round to one decimal place.
func (z *Zone) Snapshot() Snapshot {
	state := z.commonState()

	state["active"] = z.Active()

	if z.airActive != nil {
		state["air_active"] = *z.airActive
	}
	if z.humidity != nil {
		state["humidity"] = *z.humidity
	}
	if z.mode != nil {
		state["mode"] = int(*z.mode)
	}
	if len(z.modeAvailable) > 0 {
		modes := make([]int, 0, len(z.modeAvailable))
		for _, m := range z.modeAvailable {
			modes = append(modes, int(m))
		}
		state["mode_available"] = modes
	}
	if z.power != nil {
		state["power"] = *z.power
	}
	if z.radActive != nil {
		state["rad_active"] = *z.radActive
	}
	if z.setpoint != nil {
		state["setpoint"] = round1(*z.setpoint)
	}
	if z.setpointMax != nil {
		state["setpoint_max"] = round1(*z.setpointMax)
	}
	if z.setpointMin != nil {
		state["setpoint_min"] = round1(*z.setpointMin)
	}
	if z.step != nil {
		state["step"] = round1(*z.step)
	}
	if z.workTemp != nil {
		state["zone_work_temp"] = round1(*z.workTemp)
	}

	return Snapshot{
		Identity:     z.identity,
		Kind:         KindZone,
		Name:         z.name,
		Model:        z.model,
		Manufacturer: Manufacturer,
		Connected:    z.connected,
		Units:        z.units,
		State:        state,
		Components:   z.components(),
	}
}

// components builds the Home Assistant discovery components for the
// fields the zone has reported so far.
func (z *Zone) components() map[string][]map[string]any {
	sensors := []map[string]any{}

	if z.humidity != nil {
		sensors = append(sensors, map[string]any{
			"platform":            "sensor",
			"device_class":        "humidity",
			"unit_of_measurement": "%",
			"value_template":      "{{ value_json.humidity }}",
			"unique_id":           z.identity.SafeKey() + "_humidity",
		})
	}
	if z.workTemp != nil {
		sensors = append(sensors, map[string]any{
			"platform":            "sensor",
			"device_class":        "temperature",
			"unit_of_measurement": z.units.HAUnit(),
			"value_template":      "{{ value_json.zone_work_temp }}",
			"unique_id":           z.identity.SafeKey() + "_zone_work_temp",
		})
	}

	return map[string][]map[string]any{
		"binary_sensor": {},
		"sensor":        sensors,
	}
}
