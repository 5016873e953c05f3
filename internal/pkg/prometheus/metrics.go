package prometheus

import "github.com/prometheus/client_golang/prometheus"

const namespace = "thursday"

var (
	PollTicks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poll_ticks_total",
		Help:      "Fine poller iterations.",
	})

	PollErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poll_errors_total",
		Help:      "Poller iterations that ended in an error or panic.",
	})

	LockContended = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lock_contended_total",
		Help:      "Lock acquisitions refused because another holder is active.",
	})

	PollerActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "poller_active",
		Help:      "1 while the fine poller is armed for the current day.",
	})

	SlotsFired = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "slots_fired_total",
		Help:      "Slots marked in the ledger and dispatched, by rule.",
	}, []string{"rule"})

	RecipientOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recipient_outcomes_total",
		Help:      "Per-recipient dispatch outcomes.",
	}, []string{"rule", "outcome"})
)

func init() {
	registry.MustRegister(
		PollTicks,
		PollErrors,
		LockContended,
		PollerActive,
		SlotsFired,
		RecipientOutcomes,
	)
}
