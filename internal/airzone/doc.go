// Package airzone implements the gateway-facing half of the bridge: the
// wire envelope types, the normalized device model, and the components
// that keep the model current.
//
// The package is built from four cooperating pieces:
//
//   - Store holds System and Zone devices keyed by composite identity.
//     Full status snapshots create devices; event deltas mutate them.
//     Merges only overwrite fields present in the incoming data, so
//     replaying a message is harmless.
//
//   - Client turns the gateway's request/response topic exchange into a
//     blocking Invoke call, correlating responses by request id. One
//     request may be in flight at a time; mismatched responses are
//     discarded whole.
//
//   - Controller tracks the gateway's announced availability and runs
//     the freshness policy: a full status poll is only issued when the
//     model cannot be trusted (never initialized, gateway offline, or
//     no data within the poll timeout).
//
//   - Router classifies inbound messages by topic shape and dispatches
//     them to the pieces above. It expects to be driven from a single
//     goroutine so broker delivery order is preserved through the
//     merge pipeline.
//
// Typical wiring:
//
//	store := airzone.NewStore(logger)
//	client := airzone.NewClient(mqttClient, topics, qos, timeout, logger)
//	ctrl := airzone.NewController(client, store, timeout, logger)
//	router := airzone.NewRouter(topics, store, client, ctrl, observer, logger)
//
//	// single consumer goroutine
//	for msg := range inbox.Messages() {
//		router.Route(msg.Topic, msg.Payload)
//	}
package airzone
