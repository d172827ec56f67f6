// Package metrics holds the Prometheus collectors for scoring and jobs.
// Collectors register on the default registry, which the server exposes on
// /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "georisk"

var (
	// Assessments counts completed risk assessments.
	// Labels: hazard_type, risk_level, gate (passed, failed)
	Assessments = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "risk",
		Name:      "assessments_total",
		Help:      "Total completed risk assessments",
	}, []string{"hazard_type", "risk_level", "gate"})

	// AssessmentErrors counts rejected or failed assessments.
	// Labels: reason (invalid_input, storage, lore)
	AssessmentErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "risk",
		Name:      "assessment_errors_total",
		Help:      "Total assessments that failed",
	}, []string{"reason"})

	// AssessmentDuration measures scoring latency, Monte Carlo included.
	// Labels: uncertainty (true, false)
	AssessmentDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "risk",
		Name:      "assessment_duration_seconds",
		Help:      "Risk assessment latency in seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"uncertainty"})

	// RiskScores tracks the distribution of final R scores.
	RiskScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "risk",
		Name:      "score",
		Help:      "Distribution of final risk scores",
		Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
	})

	// LoreScored counts lore records scored.
	// Labels: source_type
	LoreScored = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "lore",
		Name:      "records_scored_total",
		Help:      "Total lore records scored",
	}, []string{"source_type"})

	// JobsActive is the number of batch jobs currently running.
	JobsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "jobs",
		Name:      "active",
		Help:      "Batch jobs currently running",
	})

	// JobsFinished counts batch jobs by terminal status.
	// Labels: status (done, failed, canceled)
	JobsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "jobs",
		Name:      "finished_total",
		Help:      "Total batch jobs finished by status",
	}, []string{"status"})
)

// ObserveAssessment records one completed assessment.
func ObserveAssessment(hazard, level string, gatePassed, uncertainty bool, r float64, took time.Duration) {
	gate := "failed"
	if gatePassed {
		gate = "passed"
	}
	unc := "false"
	if uncertainty {
		unc = "true"
	}
	Assessments.WithLabelValues(hazard, level, gate).Inc()
	AssessmentDuration.WithLabelValues(unc).Observe(took.Seconds())
	RiskScores.Observe(r)
}
