package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	WalletOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_operations_total",
			Help: "Total number of applied wallet mutations by type",
		},
		[]string{"type"},
	)

	OtpVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_verifications_total",
			Help: "Total number of OTP verification attempts by step and outcome",
		},
		[]string{"step", "outcome"},
	)

	StaleTasksClosedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stale_tasks_closed_total",
			Help: "Total number of delivery tasks force-closed by the staleness sweep",
		},
	)

	RealtimeEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_events_total",
			Help: "Total number of change-feed events handled by table",
		},
		[]string{"table"},
	)

	PushMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_messages_total",
			Help: "Total number of push attempts by outcome (sent or dropped)",
		},
		[]string{"outcome"},
	)

	ConnectedClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "connected_clients",
			Help: "Number of live websocket connections",
		},
	)

	EventProcessingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "event_processing_duration_seconds",
			Help:    "Duration of change-feed event handling",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Register registers all metrics with the default registry.
func Register() {
	prometheus.MustRegister(WalletOperationsTotal)
	prometheus.MustRegister(OtpVerificationsTotal)
	prometheus.MustRegister(StaleTasksClosedTotal)
	prometheus.MustRegister(RealtimeEventsTotal)
	prometheus.MustRegister(PushMessagesTotal)
	prometheus.MustRegister(ConnectedClients)
	prometheus.MustRegister(EventProcessingDuration)
}
