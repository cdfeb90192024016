// Package metrics records scheduling run outcomes.
package metrics

// Run status labels
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Recorder receives one call per scheduling run
type Recorder interface {
	// RecordRun reports a finished run. hoursPlanned counts staffed
	// person-hours across the generated days.
	RecordRun(status string, seconds float64, hoursPlanned int, stdDev float64)
	// RecordFailure reports a failed run by error kind
	RecordFailure(kind string)
}

// NopMetrics discards everything
type NopMetrics struct{}

var _ Recorder = (*NopMetrics)(nil)

// NewNop creates a no-op recorder
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RecordRun discards the run
func (n *NopMetrics) RecordRun(_ string, _ float64, _ int, _ float64) {}

// RecordFailure discards the failure
func (n *NopMetrics) RecordFailure(_ string) {}
