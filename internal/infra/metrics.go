package infra

import "github.com/prometheus/client_golang/prometheus"

// Prometheus collectors for the session economy.
var (
	SessionsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scratch_sessions_started_total",
		Help: "Total number of game sessions created",
	})

	SessionsFinished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scratch_sessions_finished_total",
		Help: "Total number of game sessions reaching a terminal state",
	}, []string{"state"})

	TicketsSold = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scratch_tickets_sold_total",
		Help: "Total number of tickets issued",
	}, []string{"ticket_type"})

	PrizesWon = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scratch_prizes_won_total",
		Help: "Total number of winning tickets",
	}, []string{"ticket_type"})

	EncountersTriggered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scratch_encounters_triggered_total",
		Help: "Total number of encounters fired before a purchase",
	}, []string{"event"})

	EncountersResolved = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scratch_encounters_resolved_total",
		Help: "Total number of encounter options resolved",
	}, []string{"event"})

	PurchaseLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scratch_purchase_duration_seconds",
		Help:    "Latency of the purchase protocol",
		Buckets: prometheus.DefBuckets,
	})
)

// RegisterMetrics registers all collectors with the default registry.
func RegisterMetrics() {
	prometheus.MustRegister(
		SessionsStarted,
		SessionsFinished,
		TicketsSold,
		PrizesWon,
		EncountersTriggered,
		EncountersResolved,
		PurchaseLatency,
	)
}
