// Package observability holds the Prometheus collectors shared across the service.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	usersCreatedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Subsystem: "directory",
		Name:      "users_created_total",
		Help:      "Number of users registered.",
	})
	exercisesLoggedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Subsystem: "log",
		Name:      "exercises_logged_total",
		Help:      "Number of exercises persisted.",
	})
	exerciseLoggedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "exercise_tracker",
		Subsystem: "log",
		Name:      "last_exercise_logged_timestamp_seconds",
		Help:      "Unix timestamp of the most recent exercise persisted.",
	})
	storeUpGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "exercise_tracker",
		Subsystem: "store",
		Name:      "up",
		Help:      "1 when the last store health check succeeded, 0 otherwise.",
	})
)

func init() {
	prometheus.MustRegister(usersCreatedCounter, exercisesLoggedCounter, exerciseLoggedGauge, storeUpGauge)
}

// RecordUserCreated counts a registered user.
func RecordUserCreated() {
	usersCreatedCounter.Inc()
}

// RecordExerciseLogged counts a persisted exercise and updates the watermark gauge.
func RecordExerciseLogged(ts time.Time) {
	exercisesLoggedCounter.Inc()
	if ts.IsZero() {
		return
	}
	exerciseLoggedGauge.Set(float64(ts.Unix()))
}

// RecordStoreUp reports the outcome of the last store health check.
func RecordStoreUp(up bool) {
	if up {
		storeUpGauge.Set(1)
		return
	}
	storeUpGauge.Set(0)
}
