package airzone

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the gateway bridge. Registered on the default
// registry; cmd exposes them when metrics are enabled.
var (
	metricMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "azbridge_gateway_messages_total",
		Help: "Inbound gateway messages by topic class.",
	}, []string{"class"})

	metricDecodeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "azbridge_gateway_decode_errors_total",
		Help: "Inbound gateway payloads that failed to decode.",
	}, []string{"class"})

	metricPolls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "azbridge_polls_total",
		Help: "Full status poll attempts by result.",
	}, []string{"result"})

	metricDevices = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "azbridge_devices",
		Help: "Devices currently held in the store.",
	})

	metricGatewayOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "azbridge_gateway_online",
		Help: "Whether the gateway last announced itself online.",
	})

	metricUnmatchedResponses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "azbridge_unmatched_responses_total",
		Help: "Responses discarded for lacking a matching in-flight request.",
	})
)
