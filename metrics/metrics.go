package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the application counters. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	winks         prometheus.Counter
	matches       prometheus.Counter
	messages      prometheus.Counter
	notifications *prometheus.CounterVec
	connections   prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	m := &Metrics{
		winks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wink_winks_total",
			Help: "Winks recorded.",
		}),
		matches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wink_matches_total",
			Help: "Mutual likes promoted to a match.",
		}),
		messages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wink_messages_total",
			Help: "Chat messages stored.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wink_notifications_total",
			Help: "Real-time frames by event and outcome.",
		}, []string{"event", "outcome"}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wink_ws_connections",
			Help: "Open WebSocket connections.",
		}),
	}
	reg.MustRegister(m.winks, m.matches, m.messages, m.notifications, m.connections)
	return m
}

func (m *Metrics) IncWink() {
	if m == nil {
		return
	}
	m.winks.Inc()
}

func (m *Metrics) IncMatch() {
	if m == nil {
		return
	}
	m.matches.Inc()
}

func (m *Metrics) IncMessage() {
	if m == nil {
		return
	}
	m.messages.Inc()
}

// ObserveDelivery records one frame: delivered counts connections that got
// it, dropped counts connections whose buffer was full.
func (m *Metrics) ObserveDelivery(event string, delivered, dropped int) {
	if m == nil {
		return
	}
	if delivered == 0 && dropped == 0 {
		m.notifications.WithLabelValues(event, "no_listener").Inc()
		return
	}
	m.notifications.WithLabelValues(event, "delivered").Add(float64(delivered))
	m.notifications.WithLabelValues(event, "dropped").Add(float64(dropped))
}

func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.connections.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.connections.Dec()
}
