package airzone

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/openhvac/airzone-mqtt-bridge/internal/infrastructure/mqtt"
)

// Observer receives the post-merge snapshot of every device an inbound
// message touched. Called from the routing goroutine; implementations
// must not block.
type Observer func(Snapshot)

// Router classifies inbound gateway messages by topic shape and
// dispatches them to the store, the correlation client and the
// availability controller.
//
// Route is called from a single goroutine draining the transport inbox,
// which preserves broker delivery order through the merge pipeline.
type Router struct {
	topics     mqtt.Topics
	store      *Store
	client     *Client
	controller *Controller
	observer   Observer
	logger     Logger

	// now stamps the freshness clock when an event carries no ts header.
	now func() time.Time
}

// NewRouter creates a router. observer may be nil.
func NewRouter(topics mqtt.Topics, store *Store, client *Client, controller *Controller, observer Observer, logger Logger) *Router {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Router{
		topics:     topics,
		store:      store,
		client:     client,
		controller: controller,
		observer:   observer,
		logger:     logger,
		now:        time.Now,
	}
}

// Route dispatches one inbound gateway message. Messages on unknown
// subtopics and undecodable payloads are logged and dropped; routing
// never fails the caller.
func (r *Router) Route(topic string, payload []byte) {
	rest, ok := r.topics.StripAirzonePrefix(topic)
	if !ok {
		metricMessages.WithLabelValues("unknown").Inc()
		r.logger.Warn("message outside gateway prefix", "topic", topic)
		return
	}

	segment, remainder, _ := strings.Cut(rest, "/")

	switch segment {
	case mqtt.SegmentEvents:
		r.routeEvent(remainder, payload)
	case mqtt.SegmentInvoke:
		// Our own requests echoed back by the wildcard subscription.
		metricMessages.WithLabelValues("invoke").Inc()
		r.logger.Debug("request echo", "topic", topic)
	case mqtt.SegmentOnline:
		r.routeOnline(payload)
	case mqtt.SegmentResponse:
		r.routeResponse(remainder, payload)
	default:
		metricMessages.WithLabelValues("unknown").Inc()
		r.logger.Warn("unhandled gateway topic", "topic", topic)
	}
}

// routeEvent handles events/<type> deltas. Only status events mutate
// the model.
func (r *Router) routeEvent(eventType string, payload []byte) {
	metricMessages.WithLabelValues("events").Inc()

	if eventType != mqtt.SegmentStatus {
		r.logger.Debug("ignoring event", "event_type", eventType)
		return
	}

	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		metricDecodeErrors.WithLabelValues("events").Inc()
		r.logger.Error("undecodable status event", "error", err)
		return
	}

	var data DeviceData
	if err := json.Unmarshal(env.Body, &data); err != nil {
		metricDecodeErrors.WithLabelValues("events").Inc()
		r.logger.Error("undecodable status event body", "error", err)
		return
	}

	snap, merged := r.store.ApplyPartialUpdate(data)
	if !merged {
		return
	}

	// An event-time header pins the freshness clock to when the gateway
	// observed the change, not when the broker delivered it.
	ts, ok := env.Headers.EventTime()
	if !ok {
		ts = r.now()
	}
	r.controller.MarkUpdated(ts)

	r.notify(snap)
}

// routeOnline handles the gateway's availability announcements.
func (r *Router) routeOnline(payload []byte) {
	metricMessages.WithLabelValues("online").Inc()

	var body OnlineBody
	if err := json.Unmarshal(payload, &body); err != nil {
		metricDecodeErrors.WithLabelValues("online").Inc()
		r.logger.Error("undecodable online payload", "error", err)
		return
	}
	r.controller.SetOnline(body.Online)
}

// routeResponse handles response/<command> envelopes. The correlation
// client decides whether the response belongs to the in-flight request;
// only a matching az.get_status response reaches the store. Mismatched
// responses are discarded whole.
func (r *Router) routeResponse(command string, payload []byte) {
	metricMessages.WithLabelValues("response").Inc()

	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		metricDecodeErrors.WithLabelValues("response").Inc()
		r.logger.Error("undecodable response", "command", command, "error", err)
		return
	}

	var apply func(Envelope)
	if command == mqtt.SafeID(CmdGetStatus) {
		apply = r.applyStatus
	}

	if !r.client.HandleResponse(env, apply) {
		metricUnmatchedResponses.Inc()
	}
}

// applyStatus merges a matched full status response. Runs inside the
// correlation handoff so the store is up to date before the polling
// Invoke returns.
func (r *Router) applyStatus(env Envelope) {
	var body StatusBody
	if err := json.Unmarshal(env.Body, &body); err != nil {
		metricDecodeErrors.WithLabelValues("response").Inc()
		r.logger.Error("undecodable status response body", "error", err)
		return
	}

	snapshots := r.store.ApplyFullSnapshot(body.Devices, env.Body)
	metricDevices.Set(float64(r.store.Count()))

	ts, ok := env.Headers.EventTime()
	if !ok {
		ts = r.now()
	}
	r.controller.MarkUpdated(ts)

	r.logger.Info("full status applied", "devices", len(snapshots))
	for _, snap := range snapshots {
		r.notify(snap)
	}
}

func (r *Router) notify(snap Snapshot) {
	if r.observer != nil {
		r.observer(snap)
	}
}
