// Package metrics exposes prometheus counters and gauges over lock grants,
// waiting transactions, and commit/abort outcomes. Collectors are package
// vars registered once at init; callers touch them directly.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	LocksGranted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "akdb",
			Subsystem: "lock",
			Name:      "granted_total",
			Help:      "Number of lock grants, by mode.",
		}, []string{"mode"})

	LocksReleased = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "akdb",
			Subsystem: "lock",
			Name:      "released_total",
			Help:      "Number of locks released.",
		}, []string{"mode"})

	WaitingTransactions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "akdb",
			Subsystem: "lock",
			Name:      "waiting_transactions",
			Help:      "Number of transactions currently blocked waiting for a lock.",
		})

	ActiveTransactions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "akdb",
			Subsystem: "txn",
			Name:      "active",
			Help:      "Number of transactions currently admitted and running.",
		})

	TransactionOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "akdb",
			Subsystem: "txn",
			Name:      "outcomes_total",
			Help:      "Number of finished transactions, by outcome.",
		}, []string{"outcome"})

	LockWaitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "akdb",
			Subsystem: "lock",
			Name:      "wait_seconds",
			Help:      "Time spent blocked in Acquire before a lock was granted or timed out.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 13),
		}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(
		LocksGranted,
		LocksReleased,
		WaitingTransactions,
		ActiveTransactions,
		TransactionOutcomes,
		LockWaitDuration,
	)
}

// RecordOutcome increments the outcomes counter for a finished transaction.
func RecordOutcome(committed bool) {
	if committed {
		TransactionOutcomes.WithLabelValues("committed").Inc()
		return
	}
	TransactionOutcomes.WithLabelValues("aborted").Inc()
}
