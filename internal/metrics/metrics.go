// =============================================================================
// internal/metrics/metrics.go - Prometheus instrumentation
// =============================================================================
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	toolInvocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dnsdiag_tool_invocations_total",
			Help: "Number of diagnostic tool invocations by tool and outcome",
		},
		[]string{"tool", "outcome"},
	)

	toolDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dnsdiag_tool_duration_seconds",
			Help:    "Duration of diagnostic tool invocations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tool"},
	)
)

func init() {
	prometheus.MustRegister(toolInvocations, toolDuration)
}

// ObserveInvocation records one tool invocation.
func ObserveInvocation(tool string, dur time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	toolInvocations.WithLabelValues(tool, outcome).Inc()
	toolDuration.WithLabelValues(tool).Observe(dur.Seconds())
}
