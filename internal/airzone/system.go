package airzone

import "fmt"

// ModelSystem is the model string reported for system devices.
const ModelSystem = "System"

// System is the gateway's per-installation controller device. It only
// carries the common fields; the interesting state lives on zones.
type System struct {
	deviceState
}

// NewSystem creates a System from a full snapshot entry.
func NewSystem(data DeviceData, logger Logger) *System {
	s := &System{deviceState: newDeviceState(data, ModelSystem, logger)}
	s.name = fmt.Sprintf("System [%s]", s.identity.Key())
	s.logger.Debug("system created", "id", s.identity.Key())
	return s
}

func (s *System) Kind() Kind { return KindSystem }

// Merge applies an update. Systems only carry the common fields.
func (s *System) Merge(data DeviceData, ut UpdateType) {
	s.mergeCommon(data)

	if ut == UpdatePartial {
		s.logger.Debug("system updated", "id", s.identity.Key())
	}
}

// Snapshot returns an immutable projection of the system.
func (s *System) Snapshot() Snapshot {
	return Snapshot{
		Identity:     s.identity,
		Kind:         KindSystem,
		Name:         s.name,
		Model:        s.model,
		Manufacturer: Manufacturer,
		Connected:    s.connected,
		Units:        s.units,
		State:        s.commonState(),
		// Systems expose no discovery components of their own.
		Components: map[string][]map[string]any{},
	}
}
