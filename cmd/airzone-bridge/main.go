// Airzone MQTT Bridge
//
// This is the main entry point for the bridge daemon. It mirrors an
// Airzone vendor cloud gateway's MQTT API into a normalized device
// model and republishes it for Home Assistant: discovery documents,
// per-device state and derived availability.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openhvac/airzone-mqtt-bridge/internal/bridge"
	"github.com/openhvac/airzone-mqtt-bridge/internal/infrastructure/config"
	"github.com/openhvac/airzone-mqtt-bridge/internal/infrastructure/logging"
	"github.com/openhvac/airzone-mqtt-bridge/internal/infrastructure/mqtt"
	"github.com/openhvac/airzone-mqtt-bridge/internal/infrastructure/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// metricsShutdownTimeout bounds the metrics server drain on shutdown.
const metricsShutdownTimeout = 5 * time.Second

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Airzone MQTT bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	topics := mqtt.NewTopics(cfg.Airzone.Topic, cfg.HomeAssistant.Topic, cfg.Bridge.Topic)

	// Connect to the MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT, topics)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	mqttLog := log.Component("mqtt")
	mqttClient.SetLogger(mqttLog)
	mqttClient.SetOnConnect(func() {
		mqttLog.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		mqttLog.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB telemetry (optional)
	var recorder *telemetry.Recorder
	if cfg.Telemetry.Enabled {
		recorder, err = telemetry.Connect(cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := recorder.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.Telemetry.URL,
			"org", cfg.Telemetry.Org,
			"bucket", cfg.Telemetry.Bucket,
		)

		telemetryLog := log.Component("telemetry")
		recorder.SetOnError(func(err error) {
			telemetryLog.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("telemetry disabled")
	}

	// Expose Prometheus metrics (optional)
	if cfg.Metrics.Enabled {
		stopMetrics := startMetricsServer(cfg.Metrics.Listen, log.Component("metrics"))
		defer stopMetrics()
	} else {
		log.Info("metrics disabled")
	}

	// Assemble and start the bridge
	b := bridge.New(*cfg, mqttClient, recorder, version, log.Component("bridge"))
	if err := b.Start(ctx); err != nil {
		return fmt.Errorf("starting bridge: %w", err)
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. Metrics server (if enabled)
	// 2. InfluxDB (if enabled)
	// 3. MQTT

	log.Info("Airzone MQTT bridge stopped")
	return nil
}

// startMetricsServer serves the Prometheus registry on addr and returns
// a function that drains and stops the server.
func startMetricsServer(addr string, log *logging.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("metrics server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("error stopping metrics server", "error", err)
		}
	}
}

// getConfigPath returns the configuration file path.
// Uses AZBRIDGE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("AZBRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
