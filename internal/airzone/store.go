package airzone

import (
	"context"
	"encoding/json"
	"sync"
)

// Store holds the normalized device entities keyed by composite
// identity. Full snapshots create devices; partial deltas mutate them.
// Devices are never removed during a session: if the gateway's
// inventory shrinks between snapshots, stale devices remain until
// restart.
//
// All public methods are thread-safe.
type Store struct {
	mu      sync.RWMutex
	devices map[string]Device // keyed by Identity.Key()

	initialized bool
	initCh      chan struct{} // closed on first successful snapshot

	// rawStatus retains the last full get_status response for debugging.
	rawStatus json.RawMessage

	logger Logger
}

// NewStore creates an empty device store.
func NewStore(logger Logger) *Store {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Store{
		devices: make(map[string]Device),
		initCh:  make(chan struct{}),
		logger:  logger,
	}
}

// ApplyFullSnapshot merges a complete device inventory.
//
// For every entry it classifies by the declared device type, constructs
// the matching variant if the composite key is new, and otherwise
// applies the entry as an update to the existing instance. Unknown
// types are logged and skipped. The first successful call marks the
// store initialized; later calls leave that flag set.
//
// raw, if non-nil, is retained as the last raw status response.
//
// Returns snapshots of every device touched, in entry order.
func (s *Store) ApplyFullSnapshot(entries []DeviceData, raw json.RawMessage) []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if raw != nil {
		s.rawStatus = raw
	}

	snapshots := make([]Snapshot, 0, len(entries))
	for _, entry := range entries {
		key := Identity{
			SystemID: entry.SystemID.String(),
			DeviceID: entry.DeviceID.String(),
		}.Key()

		dev, ok := s.devices[key]
		if !ok {
			switch entry.DeviceType {
			case DeviceTypeSystem:
				dev = NewSystem(entry, s.logger)
			case DeviceTypeZone:
				dev = NewZone(entry, s.logger)
			default:
				s.logger.Warn("full snapshot: unknown device type",
					"device_type", entry.DeviceType,
					"system_id", entry.SystemID.String(),
					"device_id", entry.DeviceID.String(),
				)
				continue
			}
			s.devices[key] = dev
		}

		dev.Merge(entry, UpdateFull)
		snapshots = append(snapshots, dev.Snapshot())
	}

	if !s.initialized {
		s.initialized = true
		close(s.initCh)
		s.logger.Debug("device store initialized", "devices", len(s.devices))
	}

	return snapshots
}

// ApplyPartialUpdate merges an event delta into the device it
// addresses. Deltas carrying an unknown device type, a type that does
// not match the stored device, or an identity the store does not hold
// are dropped with a warning; devices are only ever created from full
// snapshots.
//
// Returns the device's post-merge snapshot and whether a merge
// happened.
func (s *Store) ApplyPartialUpdate(data DeviceData) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := Identity{
		SystemID: data.SystemID.String(),
		DeviceID: data.DeviceID.String(),
	}.Key()

	kind, ok := kindForDeviceType(data.DeviceType)
	if !ok {
		s.logger.Warn("partial update: unknown device type",
			"device_type", data.DeviceType,
			"id", key,
		)
		return Snapshot{}, false
	}

	dev, ok := s.devices[key]
	if !ok {
		s.logger.Warn("partial update for unknown device",
			"device_type", data.DeviceType,
			"id", key,
		)
		return Snapshot{}, false
	}

	if dev.Kind() != kind {
		s.logger.Warn("partial update: device type mismatch",
			"device_type", data.DeviceType,
			"stored_kind", dev.Kind(),
			"id", key,
		)
		return Snapshot{}, false
	}

	dev.Merge(data, UpdatePartial)
	return dev.Snapshot(), true
}

// kindForDeviceType maps the wire device_type discriminator to the
// stored variant kind.
func kindForDeviceType(deviceType string) (Kind, bool) {
	switch deviceType {
	case DeviceTypeSystem:
		return KindSystem, true
	case DeviceTypeZone:
		return KindZone, true
	default:
		return "", false
	}
}

// Snapshot returns an immutable projection of one device.
func (s *Store) Snapshot(id Identity) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dev, ok := s.devices[id.Key()]
	if !ok {
		return Snapshot{}, ErrDeviceNotFound
	}
	return dev.Snapshot(), nil
}

// Snapshots returns projections of every stored device.
func (s *Store) Snapshots() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshots := make([]Snapshot, 0, len(s.devices))
	for _, dev := range s.devices {
		snapshots = append(snapshots, dev.Snapshot())
	}
	return snapshots
}

// Count returns the number of stored devices.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.devices)
}

// Initialized reports whether a full snapshot has ever been applied.
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// WaitInitialized blocks until the first full snapshot has been applied
// or the context is cancelled.
func (s *Store) WaitInitialized(ctx context.Context) error {
	select {
	case <-s.initCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RawStatus returns the last raw get_status response, or nil before the
// first poll completes.
func (s *Store) RawStatus() json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rawStatus
}
