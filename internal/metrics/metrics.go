package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_sessions_started_total",
			Help: "Total number of quiz sessions that entered the active phase",
		},
	)

	sessionsTerminated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_sessions_terminated_total",
			Help: "Total number of quiz sessions that reached a terminal phase",
		},
		[]string{"status", "reason"},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quiz_sessions_active_current",
			Help: "Current number of active quiz sessions",
		},
	)

	integritySignals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_integrity_signals_total",
			Help: "Integrity signals observed from the browser",
		},
		[]string{"signal", "effect"}, // effect: tripped/ignored
	)

	submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_result_submissions_total",
			Help: "Result submissions to the backend",
		},
		[]string{"status", "outcome"}, // outcome: success/failure
	)

	loadFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_load_failures_total",
			Help: "Quiz loads that ended in an error or empty state",
		},
		[]string{"kind"},
	)
)

func SessionStarted() {
	sessionsStarted.Inc()
	activeSessions.Inc()
}

func SessionTerminated(status, reason string) {
	sessionsTerminated.WithLabelValues(status, reason).Inc()
	activeSessions.Dec()
}

// SessionAbandoned tracks an active session torn down without a terminal phase.
func SessionAbandoned() {
	activeSessions.Dec()
}

func IntegritySignal(signal string, tripped bool) {
	effect := "ignored"
	if tripped {
		effect = "tripped"
	}
	integritySignals.WithLabelValues(signal, effect).Inc()
}

func Submission(status string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	submissions.WithLabelValues(status, outcome).Inc()
}

func LoadFailed(kind string) {
	loadFailures.WithLabelValues(kind).Inc()
}
