// Package mqtt provides MQTT client connectivity for the Airzone bridge.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) on the bridge status topic
//   - A FIFO Inbox decoupling paho's handler goroutines from the
//     single-consumer receive loop
//
// # Architecture
//
// The broker sits between the Airzone gateway and Home Assistant; the
// bridge is just another client:
//
//	Airzone gateway ↔ MQTT broker ↔ airzone-mqtt-bridge ↔ (broker) ↔ Home Assistant
//
// # Topic Taxonomy
//
// Gateway traffic (inbound, prefix <airzoneTopic>/v1):
//
//	events/status      partial device updates
//	invoke             request envelopes (also seen as outbound echo)
//	online             gateway availability
//	response/<cmd>     command responses
//
// Bridge output (prefix <bridgeTopic>):
//
//	status                                  bridge LWT/online status
//	<airzoneTopic>/{system,zone}/<id>/state device state projections
//	.../availability                        per-device availability
//
// # Usage
//
//	topics := mqtt.NewTopics(cfg.Airzone.Topic, cfg.HomeAssistant.Topic, cfg.Bridge.Topic)
//	client, err := mqtt.Connect(cfg.MQTT, topics)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	inbox := mqtt.NewInbox(nil)
//	client.Subscribe(topics.AirzoneAll(), 0, inbox.Handler())
//	for msg := range inbox.Messages() {
//	    // route msg
//	}
package mqtt
