package hass

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/openhvac/airzone-mqtt-bridge/internal/airzone"
	"github.com/openhvac/airzone-mqtt-bridge/internal/infrastructure/mqtt"
)

type fakePublisher struct {
	mu        sync.Mutex
	published map[string][]byte
	retained  map[string]bool
	err       error
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{
		published: make(map[string][]byte),
		retained:  make(map[string]bool),
	}
}

func (p *fakePublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published[topic] = payload
	p.retained[topic] = retained
	return nil
}

func testTopics() mqtt.Topics {
	return mqtt.NewTopics("airzone", "homeassistant", "airzone-mqtt-bridge")
}

func zoneSnapshot() airzone.Snapshot {
	return airzone.Snapshot{
		Identity:     airzone.Identity{SystemID: "1", DeviceID: "2"},
		Kind:         airzone.KindZone,
		Name:         "Lounge",
		Model:        airzone.ModelZone,
		Manufacturer: airzone.Manufacturer,
		Connected:    true,
		State: map[string]any{
			"active":   false,
			"humidity": 45,
		},
		Components: map[string][]map[string]any{
			"binary_sensor": {},
			"sensor": {
				{
					"platform":            "sensor",
					"device_class":        "humidity",
					"unit_of_measurement": "%",
					"value_template":      "{{ value_json.humidity }}",
					"unique_id":           "1_2_humidity",
				},
			},
		},
	}
}

func systemSnapshot() airzone.Snapshot {
	return airzone.Snapshot{
		Identity:     airzone.Identity{SystemID: "1", DeviceID: "1"},
		Kind:         airzone.KindSystem,
		Name:         "System [1:1]",
		Model:        airzone.ModelSystem,
		Manufacturer: airzone.Manufacturer,
		State:        map[string]any{"is_connected": true},
		Components:   map[string][]map[string]any{},
	}
}

func TestIsBirth(t *testing.T) {
	if !IsBirth([]byte("online")) {
		t.Error("expected birth for online payload")
	}
	if IsBirth([]byte("offline")) {
		t.Error("offline payload is not a birth")
	}
}

func TestDiscoveryPublish(t *testing.T) {
	pub := newFakePublisher()
	d := NewDiscovery(pub, testTopics(), 0, "1.0.0", nil)

	if err := d.Publish(zoneSnapshot()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	topic := "homeassistant/device/1_2/config"
	payload, ok := pub.published[topic]
	if !ok {
		t.Fatalf("nothing published to %s, got %v", topic, keys(pub.published))
	}
	if !pub.retained[topic] {
		t.Error("discovery must be retained")
	}

	var doc map[string]any
	if err := json.Unmarshal(payload, &doc); err != nil {
		t.Fatalf("undecodable document: %v", err)
	}

	device, ok := doc["device"].(map[string]any)
	if !ok {
		t.Fatal("document missing device block")
	}
	if device["manufacturer"] != "Airzone" {
		t.Errorf("manufacturer = %v, want Airzone", device["manufacturer"])
	}
	if device["name"] != "Lounge" {
		t.Errorf("name = %v, want Lounge", device["name"])
	}

	origin, ok := doc["origin"].(map[string]any)
	if !ok {
		t.Fatal("document missing origin block")
	}
	if origin["name"] != Origin {
		t.Errorf("origin = %v, want %v", origin["name"], Origin)
	}

	components, ok := doc["components"].(map[string]any)
	if !ok {
		t.Fatal("document missing components block")
	}
	comp, ok := components["1_2_humidity"].(map[string]any)
	if !ok {
		t.Fatalf("missing humidity component, got %v", keys(components))
	}
	if comp["state_topic"] != "airzone-mqtt-bridge/airzone/zone/1_2/state" {
		t.Errorf("state_topic = %v", comp["state_topic"])
	}
	if comp["availability_topic"] != "airzone-mqtt-bridge/airzone/zone/1_2/availability" {
		t.Errorf("availability_topic = %v", comp["availability_topic"])
	}
}

func TestDiscoverySkipsComponentlessDevices(t *testing.T) {
	pub := newFakePublisher()
	d := NewDiscovery(pub, testTopics(), 0, "1.0.0", nil)

	if err := d.Publish(systemSnapshot()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pub.published) != 0 {
		t.Error("component-less device must publish no discovery")
	}
}

func TestDiscoveryPublishAllContinuesPastFailures(t *testing.T) {
	pub := newFakePublisher()
	pub.err = errors.New("broker gone")
	d := NewDiscovery(pub, testTopics(), 0, "1.0.0", nil)

	err := d.PublishAll([]airzone.Snapshot{zoneSnapshot(), zoneSnapshot()})
	if err == nil {
		t.Error("expected first error to surface")
	}
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
