package focus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricAcquires = promauto.NewCounter(prometheus.CounterOpts{
		Name: "focus_acquire_requests_total",
		Help: "Total acquire requests accepted for arbitration",
	})

	metricReleases = promauto.NewCounter(prometheus.CounterOpts{
		Name: "focus_release_requests_total",
		Help: "Total release requests accepted for arbitration",
	})

	metricStops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "focus_stop_requests_total",
		Help: "Total stop-foreground requests enqueued",
	})

	metricAcquireFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "focus_acquire_failures_total",
		Help: "Acquire requests rejected, by reason",
	}, []string{"reason"})

	metricReleaseFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "focus_release_failures_total",
		Help: "Release requests rejected, by reason",
	}, []string{"reason"})

	metricTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "focus_transitions_total",
		Help: "Focus transitions delivered to observers",
	}, []string{"channel", "state"})

	metricConfigRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "focus_config_rejected_total",
		Help: "Channel configuration entries dropped at construction",
	})

	metricQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "focus_executor_queue_depth",
		Help: "Tasks waiting on the arbitration executor",
	})
)
