package hooks

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	handlerInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "headstart_hook_handler_invocations_total",
			Help: "Number of hook handlers invoked, by execution kind.",
		},
		[]string{"kind"},
	)

	handlerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "headstart_hook_handler_failures_total",
			Help: "Number of hook handlers that returned an error, by execution kind.",
		},
		[]string{"kind"},
	)

	invokeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "headstart_hook_invoke_duration_seconds",
			Help:    "Duration of InvokeAll calls including the deferred batch.",
			Buckets: prometheus.DefBuckets,
		},
	)
)
