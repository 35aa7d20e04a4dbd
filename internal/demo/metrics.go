package demo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the Prometheus instruments for the demo hub.
type metrics struct {
	commandsTotal   *prometheus.CounterVec
	broadcastsTotal prometheus.Counter
	droppedTotal    prometheus.Counter
	clients         prometheus.Gauge
}

// newMetrics registers the demo metrics with reg. Pass
// prometheus.DefaultRegisterer outside of tests.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		commandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vstate",
			Subsystem: "demo",
			Name:      "commands_total",
			Help:      "Client commands processed by the hub, by operation",
		}, []string{"op"}),

		broadcastsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vstate",
			Subsystem: "demo",
			Name:      "broadcasts_total",
			Help:      "View snapshots fanned out to clients",
		}),

		droppedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vstate",
			Subsystem: "demo",
			Name:      "dropped_messages_total",
			Help:      "Snapshots dropped because a client send buffer was full",
		}),

		clients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "vstate",
			Subsystem: "demo",
			Name:      "connected_clients",
			Help:      "Currently connected WebSocket clients",
		}),
	}
}
