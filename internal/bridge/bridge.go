package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/openhvac/airzone-mqtt-bridge/internal/airzone"
	"github.com/openhvac/airzone-mqtt-bridge/internal/hass"
	"github.com/openhvac/airzone-mqtt-bridge/internal/infrastructure/config"
	"github.com/openhvac/airzone-mqtt-bridge/internal/infrastructure/mqtt"
	"github.com/openhvac/airzone-mqtt-bridge/internal/infrastructure/telemetry"
)

// Logger defines the logging interface used throughout the package.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Transport is the broker surface the bridge needs. Satisfied by
// *mqtt.Client.
type Transport interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Bridge wires the gateway-facing components to the Home Assistant
// publishers and runs the receive and sync loops.
//
// Inbound messages flow through a bounded inbox drained by a single
// goroutine, so broker delivery order is preserved through the merge
// pipeline. Outbound per-device publication is fire-and-forget on
// short-lived goroutines and never blocks routing.
type Bridge struct {
	cfg    config.Config
	topics mqtt.Topics

	transport Transport
	inbox     *mqtt.Inbox

	store      *airzone.Store
	client     *airzone.Client
	controller *airzone.Controller
	router     *airzone.Router

	discovery *hass.Discovery
	announcer *hass.Announcer

	// recorder is nil when telemetry is disabled.
	recorder *telemetry.Recorder

	logger Logger
}

// New assembles a bridge from its configuration and an established
// transport. recorder may be nil.
func New(cfg config.Config, transport Transport, recorder *telemetry.Recorder, version string, logger Logger) *Bridge {
	if logger == nil {
		logger = noopLogger{}
	}

	topics := mqtt.NewTopics(cfg.Airzone.Topic, cfg.HomeAssistant.Topic, cfg.Bridge.Topic)
	qos := byte(cfg.MQTT.QoS)

	b := &Bridge{
		cfg:       cfg,
		topics:    topics,
		transport: transport,
		recorder:  recorder,
		logger:    logger,
	}

	b.inbox = mqtt.NewInbox(func(msg mqtt.Message) {
		logger.Warn("inbox full, dropping message", "topic", msg.Topic)
	})

	b.store = airzone.NewStore(logger)
	b.client = airzone.NewClient(transport, topics, qos, cfg.Airzone.PollTimeout.Std(), logger)
	b.controller = airzone.NewController(b.client, b.store, cfg.Airzone.PollTimeout.Std(), logger)
	b.router = airzone.NewRouter(topics, b.store, b.client, b.controller, b.observe, logger)

	b.discovery = hass.NewDiscovery(transport, topics, qos, version, logger)
	b.announcer = hass.NewAnnouncer(transport, topics, qos, logger)

	return b
}

// Start subscribes to the gateway and Home Assistant topics and launches
// the receive and sync loops. It returns once the loops are running;
// they stop when ctx is cancelled.
func (b *Bridge) Start(ctx context.Context) error {
	qos := byte(b.cfg.MQTT.QoS)

	if err := b.transport.Subscribe(b.topics.AirzoneAll(), qos, b.inbox.Handler()); err != nil {
		return err
	}
	if err := b.transport.Subscribe(b.topics.HAStatus(), qos, b.inbox.Handler()); err != nil {
		return err
	}

	go b.receiveLoop(ctx)
	go b.syncLoop(ctx)

	b.logger.Info("bridge started",
		"airzone_topic", b.topics.Airzone,
		"scan_interval", b.cfg.Airzone.ScanInterval,
	)
	return nil
}

// receiveLoop drains the inbox. The single consumer keeps merges in
// broker delivery order.
func (b *Bridge) receiveLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-b.inbox.Messages():
			b.dispatch(msg)
		}
	}
}

// dispatch routes one inbound message and reacts to gateway
// availability flips, which change the derived availability of every
// device at once.
func (b *Bridge) dispatch(msg mqtt.Message) {
	if msg.Topic == b.topics.HAStatus() {
		b.onHAStatus(msg.Payload)
		return
	}

	before := b.controller.Online()
	b.router.Route(msg.Topic, msg.Payload)
	after := b.controller.Online()

	if after != before {
		snaps := b.store.Snapshots()
		go func() {
			b.announcer.AnnounceAll(snaps, after)
			if b.recorder != nil {
				b.recorder.RecordAvailability("gateway", after)
			}
		}()
	}
}

// onHAStatus reacts to Home Assistant's birth announcement: a restarted
// Home Assistant needs discovery and current state re-published.
func (b *Bridge) onHAStatus(payload []byte) {
	if !hass.IsBirth(payload) {
		b.logger.Debug("home assistant offline")
		return
	}

	b.logger.Info("home assistant online, republishing discovery")
	snaps := b.store.Snapshots()
	online := b.controller.Online()
	go func() {
		if err := b.discovery.PublishAll(snaps); err != nil {
			b.logger.Error("discovery republish failed", "error", err)
		}
		b.announcer.AnnounceAll(snaps, online)
	}()
}

// syncLoop runs the freshness policy: wait for the gateway, then cycle
// on the scan interval. Poll failures are logged and retried on the
// next cycle; they never stop the loop.
func (b *Bridge) syncLoop(ctx context.Context) {
	ticker := time.NewTicker(b.cfg.Airzone.ScanInterval.Std())
	defer ticker.Stop()

	discovered := false

	for {
		if err := b.controller.WaitOnline(ctx); err != nil {
			return
		}

		if err := b.controller.Update(ctx); err != nil {
			switch {
			case errors.Is(err, context.Canceled):
				return
			case errors.Is(err, airzone.ErrOffline):
				b.logger.Debug("gateway offline, awaiting announcement")
			case errors.Is(err, airzone.ErrTimeout):
				b.logger.Warn("status poll timed out")
			default:
				b.logger.Error("status poll failed", "error", err)
			}
		} else if !discovered && b.store.Initialized() {
			// First complete inventory: announce the device set.
			discovered = true
			snaps := b.store.Snapshots()
			online := b.controller.Online()
			go func() {
				if err := b.discovery.PublishAll(snaps); err != nil {
					b.logger.Error("initial discovery failed", "error", err)
				}
				b.announcer.AnnounceAll(snaps, online)
			}()
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// observe receives post-merge snapshots from the router and fans them
// out to Home Assistant and telemetry without blocking the pipeline.
func (b *Bridge) observe(snap airzone.Snapshot) {
	online := b.controller.Online()
	go func() {
		if err := b.announcer.Announce(snap, online); err != nil {
			return
		}
		b.recordSample(snap)
	}()
}

// recordSample writes a zone climate sample when telemetry is enabled.
func (b *Bridge) recordSample(snap airzone.Snapshot) {
	if b.recorder == nil || snap.Kind != airzone.KindZone {
		return
	}

	fields := make(map[string]any)
	for _, key := range []string{"setpoint", "zone_work_temp", "humidity", "power", "active"} {
		if v, ok := snap.State[key]; ok {
			fields[key] = v
		}
	}
	b.recorder.RecordZoneClimate(snap.Identity.SafeKey(), fields)
}

// Store exposes the device store for diagnostics.
func (b *Bridge) Store() *airzone.Store { return b.store }

// Controller exposes the availability controller for diagnostics.
func (b *Bridge) Controller() *airzone.Controller { return b.controller }
