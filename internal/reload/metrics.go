package reload

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "headstart_reload_cycles_total",
			Help: "Number of reload cycles by outcome.",
		},
		[]string{"outcome"},
	)

	callbackFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "headstart_reload_callback_failures_total",
			Help: "Number of failed reload callbacks by label.",
		},
		[]string{"label"},
	)

	cycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "headstart_reload_cycle_duration_seconds",
			Help:    "Duration of complete reload cycles.",
			Buckets: prometheus.DefBuckets,
		},
	)
)
