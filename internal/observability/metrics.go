package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	workoutsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapty",
		Subsystem: "workouts",
		Name:      "created_total",
		Help:      "Workouts created from a successful form submission.",
	}, []string{"type"})
	submissionsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapty",
		Subsystem: "form",
		Name:      "rejected_total",
		Help:      "Form submissions rejected before a workout was created.",
	}, []string{"reason"})
	workoutsRestored = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mapty",
		Subsystem: "workouts",
		Name:      "restored",
		Help:      "Workouts restored from the store on the last start.",
	})
	restoreSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mapty",
		Subsystem: "workouts",
		Name:      "restore_skipped_total",
		Help:      "Stored entries that could not be decoded and were left out.",
	})
	persistFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mapty",
		Subsystem: "store",
		Name:      "persist_failures_total",
		Help:      "Failed writes of the workout list.",
	})
)

func init() {
	prometheus.MustRegister(workoutsCreated, submissionsRejected, workoutsRestored, restoreSkipped, persistFailures)
}

func RecordCreated(workoutType string) {
	workoutsCreated.WithLabelValues(workoutType).Inc()
}

// RecordRejected counts a rejected submission by reason.
func RecordRejected(reason string) {
	submissionsRejected.WithLabelValues(reason).Inc()
}

// RecordRestored sets the restored gauge and counts the entries left out.
func RecordRestored(restored, skipped int) {
	workoutsRestored.Set(float64(restored))
	if skipped > 0 {
		restoreSkipped.Add(float64(skipped))
	}
}

func RecordPersistFailure() {
	persistFailures.Inc()
}
