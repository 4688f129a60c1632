package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"

	"haloframe/internal/lifecycle"
)

var (
	hookDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "haloframe",
			Subsystem: "lifecycle",
			Name:      "hook_duration_seconds",
			Help:      "Duration of lifecycle hook invocations in seconds",
			Buckets:   []float64{.0001, .0005, .001, .004, .008, .016, .033, .1, .5, 1},
		},
		[]string{"op"},
	)

	faultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "haloframe",
			Subsystem: "lifecycle",
			Name:      "faults_total",
			Help:      "Total manager faults",
		},
		[]string{"manager", "op"},
	)

	transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "haloframe",
			Subsystem: "lifecycle",
			Name:      "transitions_total",
			Help:      "Total manager phase transitions by target phase",
		},
		[]string{"phase"},
	)

	framesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "haloframe",
			Subsystem: "orchestrator",
			Name:      "frames_total",
			Help:      "Total frames stepped",
		},
	)

	managersGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "haloframe",
			Subsystem: "orchestrator",
			Name:      "managers",
			Help:      "Managers of orchestrators that have not stopped, by health",
		},
		[]string{"health"},
	)
)

func init() {
	prometheus.MustRegister(hookDuration, faultsTotal, transitionsTotal, framesTotal, managersGauge)
}

func health(e *entry) string {
	if e.failed {
		return "failed"
	}
	return "healthy"
}

// metricsPublisher turns skeleton events into metric observations.
type metricsPublisher struct{}

func (metricsPublisher) Publish(e lifecycle.Event) {
	switch e.Name {
	case lifecycle.EventHook:
		hookDuration.WithLabelValues(string(e.Op)).Observe(e.Duration.Seconds())
	case lifecycle.EventPhase:
		transitionsTotal.WithLabelValues(e.Phase.String()).Inc()
	}
}
