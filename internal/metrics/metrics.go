// Package metrics exposes Prometheus instrumentation for the watcher.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the watcher.
type Metrics struct {
	LinesProcessedTotal    prometheus.Counter
	ParseFallbacksTotal    prometheus.Counter
	FailoversDetectedTotal prometheus.Counter
	AlertsSentTotal        *prometheus.CounterVec
	AlertsSuppressedTotal  *prometheus.CounterVec
	AlertSendFailuresTotal prometheus.Counter
	ErrorRatioPercent      prometheus.Gauge
	WindowLength           prometheus.Gauge
}

// New creates and registers all watcher metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LinesProcessedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "poolwatch",
			Name:      "lines_processed_total",
			Help:      "Total number of log lines consumed from the follower",
		}),
		ParseFallbacksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "poolwatch",
			Name:      "parse_fallbacks_total",
			Help:      "Total number of lines whose status field fell back to 0",
		}),
		FailoversDetectedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "poolwatch",
			Name:      "failovers_detected_total",
			Help:      "Total number of pool failovers observed",
		}),
		AlertsSentTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poolwatch",
			Name:      "alerts_sent_total",
			Help:      "Total number of alerts delivered to the webhook",
		}, []string{"kind"}),
		AlertsSuppressedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poolwatch",
			Name:      "alerts_suppressed_total",
			Help:      "Total number of alerts suppressed before delivery",
		}, []string{"kind", "reason"}),
		AlertSendFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "poolwatch",
			Name:      "alert_send_failures_total",
			Help:      "Total number of failed webhook deliveries",
		}),
		ErrorRatioPercent: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "poolwatch",
			Name:      "error_ratio_percent",
			Help:      "Current 5xx ratio over the rolling window, in percent",
		}),
		WindowLength: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "poolwatch",
			Name:      "window_length",
			Help:      "Number of statuses currently held in the rolling window",
		}),
	}
}
