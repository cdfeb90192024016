package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopMetrics(t *testing.T) {
	var r Recorder = NewNop()
	r.RecordRun(StatusOK, 0.1, 10, 1)
	r.RecordFailure("infeasible")
}

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "")

	p.RecordRun(StatusOK, 0.02, 48, 1.5)
	p.RecordRun(StatusOK, 0.03, 24, 0.5)
	p.RecordRun(StatusFailed, 0.01, 0, 0)
	p.RecordFailure("infeasible")

	assert.Equal(t, 2.0, testutil.ToFloat64(p.runs.WithLabelValues(StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.runs.WithLabelValues(StatusFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.failures.WithLabelValues("infeasible")))
	assert.Equal(t, 72.0, testutil.ToFloat64(p.hours))
	assert.Equal(t, 0.5, testutil.ToFloat64(p.fairnessStd))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "rota_runs_total")
	assert.Contains(t, names, "rota_generation_seconds")
}
