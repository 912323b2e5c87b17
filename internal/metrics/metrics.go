package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ForwardOutcomes counts forwarding attempts by channel and outcome
	// (delivered, backend_error, timeout, unreachable, dropped)
	ForwardOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "twilio_gateway",
		Name:      "forward_outcomes_total",
		Help:      "Total number of webhook forwarding attempts by channel and outcome",
	}, []string{"channel", "outcome"})

	// QueueDepthGauge tracks the backlog of pending deliveries in async modes
	QueueDepthGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "twilio_gateway",
		Name:      "forward_queue_depth",
		Help:      "Current number of webhook deliveries waiting to be sent (async modes only)",
	})

	// ActiveSendersGauge tracks the number of in-flight backend calls
	ActiveSendersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "twilio_gateway",
		Name:      "active_senders",
		Help:      "Current number of in-flight outbound calls to the backend",
	})
)
