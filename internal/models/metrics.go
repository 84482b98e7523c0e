package models

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transformCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "headstart_transform_calls_total",
			Help: "Number of dispatched transforms by type and variant.",
		},
		[]string{"type", "variant"},
	)

	transformFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "headstart_transform_failures_total",
			Help: "Number of transforms that could not be dispatched, by reason.",
		},
		[]string{"reason"},
	)

	registrationConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "headstart_transform_registration_conflicts_total",
			Help: "Number of duplicate transformer registrations rejected.",
		},
	)
)
