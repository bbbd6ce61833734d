package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	CardsIssued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "deskwarrior",
		Subsystem: "scheduler",
		Name:      "cards_issued_total",
		Help:      "Cards issued, labelled by card kind.",
	}, []string{"kind"})

	DeliveryFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "deskwarrior",
		Subsystem: "scheduler",
		Name:      "delivery_failures_total",
		Help:      "Card deliveries that failed and were rolled back.",
	})

	Acknowledgements = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "deskwarrior",
		Subsystem: "scoring",
		Name:      "acknowledgements_total",
		Help:      "Acknowledged completions, labelled by validator tier.",
	}, []string{"tier"})

	IgnoredAcks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "deskwarrior",
		Subsystem: "scoring",
		Name:      "ignored_acknowledgements_total",
		Help:      "Duplicate or stale acknowledgements dropped as no-ops.",
	})

	SessionsExpired = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "deskwarrior",
		Subsystem: "sessions",
		Name:      "expired_total",
		Help:      "Pending sessions expired without acknowledgement.",
	})

	completionElapsed = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "deskwarrior",
		Subsystem: "scoring",
		Name:      "completion_elapsed_seconds",
		Help:      "Time between card issuance and acknowledgement.",
		Buckets:   []float64{5, 10, 20, 30, 60, 120, 300, 600},
	})
)

func init() {
	prometheus.MustRegister(
		CardsIssued,
		DeliveryFailures,
		Acknowledgements,
		IgnoredAcks,
		SessionsExpired,
		completionElapsed,
	)
}

// RecordCompletion tracks one acknowledged completion's elapsed time.
func RecordCompletion(elapsed time.Duration) {
	if elapsed < 0 {
		return
	}
	completionElapsed.Observe(elapsed.Seconds())
}
