package metrics

import "time"

// DataflowMetrics records the runtime behavior of the migration pipeline:
// operator F's installation and bin-transfer events, its stash depths, and
// the control ingestion service's admission rate.
//
// Every method must tolerate a nil receiver — the package-level helper
// functions below (RecordInstallation, etc.) do the nil check for callers so
// call sites never need an `if metrics != nil` of their own.
type DataflowMetrics interface {
	RecordInstallation(worker int, sequence uint64)
	RecordBinTransfer(fromWorker, toWorker, bin int)
	SetNotificatorDepth(worker int, depth int)
	SetControlStashDepth(worker int, depth int)
	SetDataStashDepth(worker int, depth int)
	RecordControlAdmitted(instKind string)
	ObserveTickDuration(d time.Duration)
}

// newPrometheusDataflowMetrics is populated by pkg/metrics/prometheus's
// init(), a registration-by-side-effect indirection that avoids pkg/metrics
// depending on its own prometheus subpackage.
var newPrometheusDataflowMetrics func() DataflowMetrics

// RegisterDataflowMetricsConstructor registers the Prometheus-backed
// constructor. Called from pkg/metrics/prometheus/dataflow.go's init().
func RegisterDataflowMetricsConstructor(constructor func() DataflowMetrics) {
	newPrometheusDataflowMetrics = constructor
}

// NewDataflowMetrics returns a Prometheus-backed DataflowMetrics, or nil if
// metrics are not enabled (InitRegistry was never called).
func NewDataflowMetrics() DataflowMetrics {
	if !IsEnabled() || newPrometheusDataflowMetrics == nil {
		return nil
	}
	return newPrometheusDataflowMetrics()
}

// RecordInstallation records that worker installed a new ControlSet at the
// given sequence number.
func RecordInstallation(m DataflowMetrics, worker int, sequence uint64) {
	if m != nil {
		m.RecordInstallation(worker, sequence)
	}
}

// RecordBinTransfer records that bin moved from fromWorker to toWorker
// during an installation step.
func RecordBinTransfer(m DataflowMetrics, fromWorker, toWorker, bin int) {
	if m != nil {
		m.RecordBinTransfer(fromWorker, toWorker, bin)
	}
}

// SetNotificatorDepth records the current size of a worker's pending
// notification queue (pkg/notify).
func SetNotificatorDepth(m DataflowMetrics, worker int, depth int) {
	if m != nil {
		m.SetNotificatorDepth(worker, depth)
	}
}

// SetControlStashDepth records how many distinct times a worker's F has
// stashed Control messages for, awaiting the control frontier.
func SetControlStashDepth(m DataflowMetrics, worker int, depth int) {
	if m != nil {
		m.SetControlStashDepth(worker, depth)
	}
}

// SetDataStashDepth records how many distinct times a worker's F has
// stashed data records for, awaiting the control frontier.
func SetDataStashDepth(m DataflowMetrics, worker int, depth int) {
	if m != nil {
		m.SetDataStashDepth(worker, depth)
	}
}

// RecordControlAdmitted records one Control message admitted by the
// ingestion HTTP service, labeled by its instruction kind.
func RecordControlAdmitted(m DataflowMetrics, instKind string) {
	if m != nil {
		m.RecordControlAdmitted(instKind)
	}
}

// ObserveTickDuration records how long one Cluster.Tick call took.
func ObserveTickDuration(m DataflowMetrics, d time.Duration) {
	if m != nil {
		m.ObserveTickDuration(d)
	}
}
