package airzone

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func statusEntries() []DeviceData {
	return []DeviceData{
		{
			DeviceID:   ID("1"),
			DeviceType: DeviceTypeSystem,
			SystemID:   ID("1"),
			Parameters: &Parameters{IsConnected: boolPtr(true)},
		},
		{
			DeviceID:   ID("2"),
			DeviceType: DeviceTypeZone,
			SystemID:   ID("1"),
			Parameters: &Parameters{
				IsConnected: boolPtr(true),
				Name:        strPtr("Lounge"),
				Power:       boolPtr(false),
				Setpoint:    floatPtr(21.0),
			},
		},
	}
}

func TestStoreApplyFullSnapshot(t *testing.T) {
	s := NewStore(nil)

	raw := json.RawMessage(`{"devices":[]}`)
	snaps := s.ApplyFullSnapshot(statusEntries(), raw)

	if len(snaps) != 2 {
		t.Fatalf("snapshots = %d, want 2", len(snaps))
	}
	if s.Count() != 2 {
		t.Errorf("count = %d, want 2", s.Count())
	}
	if !s.Initialized() {
		t.Error("expected store initialized after first snapshot")
	}
	if string(s.RawStatus()) != string(raw) {
		t.Error("raw status not retained")
	}

	if snaps[0].Kind != KindSystem {
		t.Errorf("first snapshot kind = %q, want system", snaps[0].Kind)
	}
	if snaps[1].Kind != KindZone {
		t.Errorf("second snapshot kind = %q, want zone", snaps[1].Kind)
	}
}

func TestStoreSnapshotReconcilesExisting(t *testing.T) {
	s := NewStore(nil)
	s.ApplyFullSnapshot(statusEntries(), nil)

	// Second snapshot updates the zone in place rather than replacing it.
	entries := statusEntries()
	entries[1].Parameters = &Parameters{Setpoint: floatPtr(23.0)}
	s.ApplyFullSnapshot(entries, nil)

	if s.Count() != 2 {
		t.Fatalf("count = %d, want 2", s.Count())
	}

	snap, err := s.Snapshot(Identity{SystemID: "1", DeviceID: "2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.State["setpoint"] != 23.0 {
		t.Errorf("setpoint = %v, want 23.0", snap.State["setpoint"])
	}
	// Field absent from the second snapshot survives from the first.
	if snap.Name != "Lounge" {
		t.Errorf("name = %q, want Lounge", snap.Name)
	}
}

func TestStoreUnknownDeviceTypeSkipped(t *testing.T) {
	s := NewStore(nil)

	snaps := s.ApplyFullSnapshot([]DeviceData{
		{DeviceID: ID("9"), DeviceType: "az_mystery", SystemID: ID("1")},
	}, nil)

	if len(snaps) != 0 {
		t.Errorf("snapshots = %d, want 0", len(snaps))
	}
	if s.Count() != 0 {
		t.Errorf("count = %d, want 0", s.Count())
	}
	// A snapshot containing only unknown types still initializes.
	if !s.Initialized() {
		t.Error("expected store initialized")
	}
}

func TestStorePartialUpdateUnknownDeviceDropped(t *testing.T) {
	s := NewStore(nil)
	s.ApplyFullSnapshot(statusEntries(), nil)

	_, merged := s.ApplyPartialUpdate(DeviceData{
		DeviceID:   ID("99"),
		DeviceType: DeviceTypeZone,
		SystemID:   ID("1"),
		Parameters: &Parameters{Power: boolPtr(true)},
	})
	if merged {
		t.Error("delta for unknown device must not merge")
	}
	if s.Count() != 2 {
		t.Errorf("count = %d, want 2", s.Count())
	}
}

func TestStorePartialUpdateUnknownTypeDropped(t *testing.T) {
	s := NewStore(nil)
	s.ApplyFullSnapshot(statusEntries(), nil)

	_, merged := s.ApplyPartialUpdate(DeviceData{
		DeviceID:   ID("2"),
		DeviceType: "az_mystery",
		SystemID:   ID("1"),
		Parameters: &Parameters{Power: boolPtr(true)},
	})
	if merged {
		t.Error("delta with unknown device type must not merge")
	}

	snap, err := s.Snapshot(Identity{SystemID: "1", DeviceID: "2"})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.State["power"] == true {
		t.Error("dropped delta must leave device state untouched")
	}
}

func TestStorePartialUpdateTypeMismatchDropped(t *testing.T) {
	s := NewStore(nil)
	s.ApplyFullSnapshot(statusEntries(), nil)

	// Device 1:2 is a zone; a delta claiming it is a system is dropped.
	_, merged := s.ApplyPartialUpdate(DeviceData{
		DeviceID:   ID("2"),
		DeviceType: DeviceTypeSystem,
		SystemID:   ID("1"),
		Parameters: &Parameters{Power: boolPtr(true)},
	})
	if merged {
		t.Error("delta with mismatched device type must not merge")
	}
}

func TestStorePartialUpdate(t *testing.T) {
	s := NewStore(nil)
	s.ApplyFullSnapshot(statusEntries(), nil)

	snap, merged := s.ApplyPartialUpdate(DeviceData{
		DeviceID:   ID("2"),
		DeviceType: DeviceTypeZone,
		SystemID:   ID("1"),
		Parameters: &Parameters{Power: boolPtr(true)},
	})
	if !merged {
		t.Fatal("expected merge")
	}
	if snap.State["power"] != true {
		t.Errorf("power = %v, want true", snap.State["power"])
	}
	if snap.State["setpoint"] != 21.0 {
		t.Error("unrelated field lost in partial merge")
	}
}

func TestStoreSnapshotNotFound(t *testing.T) {
	s := NewStore(nil)
	if _, err := s.Snapshot(Identity{SystemID: "1", DeviceID: "2"}); err != ErrDeviceNotFound {
		t.Errorf("err = %v, want ErrDeviceNotFound", err)
	}
}

func TestStoreWaitInitialized(t *testing.T) {
	s := NewStore(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.WaitInitialized(ctx); err == nil {
		t.Error("expected context error before first snapshot")
	}

	done := make(chan error, 1)
	go func() {
		done <- s.WaitInitialized(context.Background())
	}()

	s.ApplyFullSnapshot(statusEntries(), nil)

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitInitialized did not return after snapshot")
	}
}

func TestStoreIdentityCollisionAcrossSystems(t *testing.T) {
	s := NewStore(nil)

	// Same device id under two systems must produce two devices.
	s.ApplyFullSnapshot([]DeviceData{
		{DeviceID: ID("1"), DeviceType: DeviceTypeZone, SystemID: ID("1")},
		{DeviceID: ID("1"), DeviceType: DeviceTypeZone, SystemID: ID("2")},
	}, nil)

	if s.Count() != 2 {
		t.Errorf("count = %d, want 2", s.Count())
	}
}
