package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements Recorder backed by Prometheus. Metrics are
// registered on first use.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	runs        *prometheus.CounterVec
	failures    *prometheus.CounterVec
	duration    prometheus.Histogram
	hours       prometheus.Counter
	fairnessStd prometheus.Gauge
}

var _ Recorder = (*PrometheusCollector)(nil)

// NewPrometheus creates a collector on reg (prometheus.DefaultRegisterer if
// nil) under namespace ("rota" if empty)
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "rota"
	}
	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.runs = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "runs_total",
			Help:      "Scheduling runs by status (ok, failed).",
		}, []string{"status"})
		p.failures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "failures_total",
			Help:      "Failed runs by error kind.",
		}, []string{"kind"})
		p.duration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Name:      "generation_seconds",
			Help:      "Time spent generating a schedule in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~2s
		})
		p.hours = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "hours_planned_total",
			Help:      "Person-hours staffed across all generated days.",
		})
		p.fairnessStd = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Name:      "fairness_stddev",
			Help:      "Standard deviation of hours served in the last successful run.",
		})

		p.reg.MustRegister(p.runs)
		p.reg.MustRegister(p.failures)
		p.reg.MustRegister(p.duration)
		p.reg.MustRegister(p.hours)
		p.reg.MustRegister(p.fairnessStd)
	})
}

// RecordRun counts the run and, for successful runs, its output
func (p *PrometheusCollector) RecordRun(status string, seconds float64, hoursPlanned int, stdDev float64) {
	p.ensureRegistered()
	p.runs.WithLabelValues(status).Inc()
	p.duration.Observe(seconds)
	if status != StatusOK {
		return
	}
	p.hours.Add(float64(hoursPlanned))
	p.fairnessStd.Set(stdDev)
}

// RecordFailure counts a failed run by kind
func (p *PrometheusCollector) RecordFailure(kind string) {
	p.ensureRegistered()
	p.failures.WithLabelValues(kind).Inc()
}
