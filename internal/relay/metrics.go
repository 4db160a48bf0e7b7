package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "voicerelay_active_connections",
		Help: "Signaling connections currently open.",
	})
	joins = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicerelay_joins_total",
		Help: "Successful room joins.",
	})
	messages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicerelay_messages_total",
		Help: "Inbound signaling messages by kind.",
	}, []string{"kind"})
	invalidMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicerelay_invalid_messages_total",
		Help: "Inbound frames dropped as malformed.",
	})
	deliveries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicerelay_deliveries_total",
		Help: "Frames handed to recipient connections.",
	})
	deliveryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicerelay_delivery_failures_total",
		Help: "Per-recipient delivery attempts dropped (closed or backpressured).",
	})
	authDenied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicerelay_auth_denied_total",
		Help: "Connection attempts rejected by the authorization gate.",
	})
)

// ConnectionOpened and ConnectionClosed are called by the transport adapter
// around a connection's lifetime.
func ConnectionOpened() { activeConnections.Inc() }
func ConnectionClosed() { activeConnections.Dec() }

// AuthDenied is called by the transport adapter when the gate refuses a
// connection attempt.
func AuthDenied() { authDenied.Inc() }
