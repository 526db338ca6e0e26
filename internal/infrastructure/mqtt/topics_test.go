package mqtt

import "testing"

func testTopics() Topics {
	return NewTopics("airzone", "homeassistant", "airzone-mqtt-bridge")
}

func TestTopics_Airzone(t *testing.T) {
	topics := testTopics()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"prefix", topics.AirzonePrefix(), "airzone/v1"},
		{"all", topics.AirzoneAll(), "airzone/v1/#"},
		{"invoke", topics.AirzoneInvoke(), "airzone/v1/invoke"},
		{"response", topics.AirzoneResponse("az.get_status"), "airzone/v1/response/az_get_status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestTopics_Bridge(t *testing.T) {
	topics := testTopics()

	if got, want := topics.BridgeStatus(), "airzone-mqtt-bridge/status"; got != want {
		t.Errorf("BridgeStatus() = %q, want %q", got, want)
	}
	if got, want := topics.DeviceState("zone", "1:2"), "airzone-mqtt-bridge/airzone/zone/1_2/state"; got != want {
		t.Errorf("DeviceState() = %q, want %q", got, want)
	}
	if got, want := topics.DeviceAvailability("system", "1:1"), "airzone-mqtt-bridge/airzone/system/1_1/availability"; got != want {
		t.Errorf("DeviceAvailability() = %q, want %q", got, want)
	}
}

func TestTopics_HomeAssistant(t *testing.T) {
	topics := testTopics()

	if got, want := topics.HAStatus(), "homeassistant/status"; got != want {
		t.Errorf("HAStatus() = %q, want %q", got, want)
	}
	if got, want := topics.HADiscovery("1:2"), "homeassistant/device/1_2/config"; got != want {
		t.Errorf("HADiscovery() = %q, want %q", got, want)
	}
}

func TestTopics_StripAirzonePrefix(t *testing.T) {
	topics := testTopics()

	tests := []struct {
		name   string
		topic  string
		want   string
		wantOK bool
	}{
		{"events topic", "airzone/v1/events/status", "events/status", true},
		{"response topic", "airzone/v1/response/az_get_status", "response/az_get_status", true},
		{"foreign topic", "homeassistant/status", "homeassistant/status", false},
		{"bare prefix", "airzone/v1", "airzone/v1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := topics.StripAirzonePrefix(tt.topic)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("StripAirzonePrefix(%q) = (%q, %v), want (%q, %v)",
					tt.topic, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSafeID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"az.get_status", "az_get_status"},
		{"1:2", "1_2"},
		{"already_safe-id", "already_safe-id"},
		{"a b/c", "a_b_c"},
	}

	for _, tt := range tests {
		if got := SafeID(tt.input); got != tt.want {
			t.Errorf("SafeID(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
