package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iota-uz/hr-people/modules/people/domain/entities/automation"
)

var (
	peopleOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "people",
		Name:      "operations_total",
		Help:      "Total number of people operations broken down by operation and result.",
	}, []string{"operation", "result"})

	peopleSagaSteps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "people",
		Subsystem: "saga",
		Name:      "steps_total",
		Help:      "Total number of saga steps broken down by step and outcome.",
	}, []string{"step", "outcome"})

	peopleAutomationDirectives = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "people",
		Subsystem: "automation",
		Name:      "directives_total",
		Help:      "Total number of onboarding automation directives broken down by kind and outcome.",
	}, []string{"kind", "outcome"})

	peopleCacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "people",
		Subsystem: "cache",
		Name:      "invalidations_total",
		Help:      "Total number of cache scope invalidations issued by people operations.",
	}, []string{"scope"})

	peopleAuditEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "people",
		Subsystem: "audit",
		Name:      "events_total",
		Help:      "Total number of audit events broken down by sink and result.",
	}, []string{"sink", "result"})

	peopleOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "people",
		Name:      "operation_duration_seconds",
		Help:      "Latency of people operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
)

func resultLabel(err error) string {
	if err == nil {
		return "success"
	}
	if kind, ok := KindOf(err); ok {
		return string(kind)
	}
	return "error"
}

func recordOperation(operation string, err error, seconds float64) {
	peopleOperations.WithLabelValues(operation, resultLabel(err)).Inc()
	peopleOperationDuration.WithLabelValues(operation).Observe(seconds)
}

func recordSagaStep(step string, outcome StepOutcome) {
	peopleSagaSteps.WithLabelValues(step, string(outcome)).Inc()
}

func recordDirective(kind automation.Kind, outcome automation.Outcome) {
	peopleAutomationDirectives.WithLabelValues(string(kind), string(outcome)).Inc()
}

func recordCacheInvalidation(scope string) {
	peopleCacheInvalidations.WithLabelValues(scope).Inc()
}

func recordAuditEvent(sink string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	peopleAuditEvents.WithLabelValues(sink, result).Inc()
}
