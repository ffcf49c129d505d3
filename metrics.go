package switchboard

import "github.com/prometheus/client_golang/prometheus"

// metrics bundles the Switchboard's Prometheus collectors. Each
// Switchboard owns a private registry (see WithMetricsRegistry) so two
// instances in the same process never collide on metric names.
type metrics struct {
	published *prometheus.CounterVec
	delivered *prometheus.CounterVec
	dropped   *prometheus.CounterVec
	queueSize *prometheus.GaugeVec
	topics    prometheus.Gauge
}

func newMetrics(reg *prometheus.Registry) *metrics {
	m := &metrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "switchboard_events_published_total",
			Help: "Events published per topic.",
		}, []string{"topic"}),
		delivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "switchboard_events_delivered_total",
			Help: "Events delivered to a subscriber's callback.",
		}, []string{"topic", "subscriber"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "switchboard_events_dropped_total",
			Help: "Queued events shed by the pressure valve before delivery.",
		}, []string{"topic", "subscriber"}),
		queueSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "switchboard_subscription_queue_depth",
			Help: "Outstanding entries in a subscription's queue.",
		}, []string{"topic", "subscriber"}),
		topics: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "switchboard_topics",
			Help: "Number of topics registered with the Switchboard.",
		}),
	}
	reg.MustRegister(m.published, m.delivered, m.dropped, m.queueSize, m.topics)
	return m
}
