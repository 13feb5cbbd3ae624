package chat

import "github.com/prometheus/client_golang/prometheus"

var (
	ConnectedPeers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connected_peers",
		Help: "Number of peers currently in the registry",
	})

	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_messages_total",
		Help: "Total messages broadcast by kind",
	}, []string{"kind"})

	BroadcastDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chat_broadcast_seconds",
		Help:    "Time for one broadcast to settle on every recipient",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	PeersEvicted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_peers_evicted_total",
		Help: "Peers removed from the registry after a failed mailbox send",
	})

	HandshakeFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_handshake_failures_total",
		Help: "Connections closed before a username was received",
	})
)

func init() {
	prometheus.MustRegister(ConnectedPeers)
	prometheus.MustRegister(MessagesTotal)
	prometheus.MustRegister(BroadcastDuration)
	prometheus.MustRegister(PeersEvicted)
	prometheus.MustRegister(HandshakeFailures)
}
