// Package metrics provides Prometheus instrumentation for the peerspend engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// EventsTotal counts processed events by type.
	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "peerspend",
			Name:      "events_total",
			Help:      "Total events processed by event type.",
		},
		[]string{"type"},
	)

	// MalformedEventsTotal counts events skipped as unparseable or of
	// unknown type.
	MalformedEventsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "peerspend",
		Name:      "malformed_events_total",
		Help:      "Total events skipped because they could not be understood.",
	})

	// AnomaliesFlaggedTotal counts purchases flagged as anomalous.
	AnomaliesFlaggedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "peerspend",
		Name:      "anomalies_flagged_total",
		Help:      "Total purchases flagged as network anomalies.",
	})

	// PurchasesRecordedTotal counts purchases retained in a user window.
	PurchasesRecordedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "peerspend",
		Name:      "purchases_recorded_total",
		Help:      "Total purchases retained in a user's recent-purchase window.",
	})

	// PurchasesDiscardedTotal counts purchases older than everything in an
	// already-full window (the recency-threshold policy, not an error).
	PurchasesDiscardedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "peerspend",
		Name:      "purchases_discarded_total",
		Help:      "Total purchases discarded as older than the retained window.",
	})

	// UsersRegistered tracks the number of users in the directory.
	UsersRegistered = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "peerspend",
		Name:      "users_registered",
		Help:      "Number of users currently registered in the directory.",
	})

	// EvaluationDuration observes network anomaly evaluation latency.
	EvaluationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "peerspend",
		Name:      "evaluation_duration_seconds",
		Help:      "Network aggregation and anomaly evaluation duration in seconds.",
		Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
	})

	// NetworkSize observes the member count of evaluated networks.
	NetworkSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "peerspend",
		Name:      "network_size",
		Help:      "Number of users in the network evaluated for a purchase.",
		Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
	})
)

func init() {
	prometheus.MustRegister(
		EventsTotal,
		MalformedEventsTotal,
		AnomaliesFlaggedTotal,
		PurchasesRecordedTotal,
		PurchasesDiscardedTotal,
		UsersRegistered,
		EvaluationDuration,
		NetworkSize,
	)
}

// NewEvaluationTimer starts an evaluation latency observation; call the
// returned func when the evaluation finishes.
func NewEvaluationTimer() func() {
	timer := prometheus.NewTimer(EvaluationDuration)
	return func() { timer.ObserveDuration() }
}
