package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scopeRegistrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hr",
		Subsystem: "cache",
		Name:      "registrations_total",
		Help:      "Total number of cache scope registrations broken down by scope.",
	}, []string{"scope"})

	scopeInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hr",
		Subsystem: "cache",
		Name:      "invalidations_total",
		Help:      "Total number of cache scope invalidations broken down by scope.",
	}, []string{"scope"})

	entryLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hr",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Total number of cached entry lookups broken down by entry family and hit/miss.",
	}, []string{"entry", "result"})
)

func recordRegister(scope Scope) {
	scopeRegistrations.WithLabelValues(string(scope)).Inc()
}

func recordInvalidate(scope Scope) {
	scopeInvalidations.WithLabelValues(string(scope)).Inc()
}

func recordLookup(name string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	entryLookups.WithLabelValues(name, result).Inc()
}
