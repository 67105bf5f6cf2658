// Package prometheus provides the Prometheus-backed implementation of
// pkg/metrics's DataflowMetrics, registered with pkg/metrics via an init()
// side effect so pkg/metrics itself never imports a concrete metrics backend.
package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/streamshard/megaflow/pkg/metrics"
)

func init() {
	metrics.RegisterDataflowMetricsConstructor(NewDataflowMetrics)
}

type dataflowMetrics struct {
	installations     *prometheus.CounterVec
	binTransfers      *prometheus.CounterVec
	notificatorDepth  *prometheus.GaugeVec
	controlStashDepth *prometheus.GaugeVec
	dataStashDepth    *prometheus.GaugeVec
	controlAdmitted   *prometheus.CounterVec
	tickDuration      prometheus.Histogram
}

// NewDataflowMetrics creates a new Prometheus-backed DataflowMetrics.
// Returns nil if metrics are not enabled (metrics.InitRegistry not called).
func NewDataflowMetrics() metrics.DataflowMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &dataflowMetrics{
		installations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "megaflow_installations_total",
				Help: "Total number of ControlSet installations, by worker",
			},
			[]string{"worker"},
		),
		binTransfers: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "megaflow_bin_transfers_total",
				Help: "Total number of bin ownership transfers, by source and destination worker",
			},
			[]string{"from_worker", "to_worker"},
		),
		notificatorDepth: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "megaflow_notificator_pending_depth",
				Help: "Current number of distinct pending times in a worker's notificator",
			},
			[]string{"worker"},
		),
		controlStashDepth: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "megaflow_control_stash_depth",
				Help: "Current number of distinct times a worker's F has stashed Control messages for",
			},
			[]string{"worker"},
		),
		dataStashDepth: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "megaflow_data_stash_depth",
				Help: "Current number of distinct times a worker's F has stashed data records for",
			},
			[]string{"worker"},
		),
		controlAdmitted: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "megaflow_control_admitted_total",
				Help: "Total number of Control messages admitted by the ingestion service, by instruction kind",
			},
			[]string{"inst_kind"},
		),
		tickDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "megaflow_tick_duration_seconds",
				Help:    "Duration of Cluster.Tick calls",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

func (m *dataflowMetrics) RecordInstallation(worker int, sequence uint64) {
	if m == nil {
		return
	}
	m.installations.WithLabelValues(strconv.Itoa(worker)).Inc()
}

func (m *dataflowMetrics) RecordBinTransfer(fromWorker, toWorker, bin int) {
	if m == nil {
		return
	}
	m.binTransfers.WithLabelValues(strconv.Itoa(fromWorker), strconv.Itoa(toWorker)).Inc()
}

func (m *dataflowMetrics) SetNotificatorDepth(worker int, depth int) {
	if m == nil {
		return
	}
	m.notificatorDepth.WithLabelValues(strconv.Itoa(worker)).Set(float64(depth))
}

func (m *dataflowMetrics) SetControlStashDepth(worker int, depth int) {
	if m == nil {
		return
	}
	m.controlStashDepth.WithLabelValues(strconv.Itoa(worker)).Set(float64(depth))
}

func (m *dataflowMetrics) SetDataStashDepth(worker int, depth int) {
	if m == nil {
		return
	}
	m.dataStashDepth.WithLabelValues(strconv.Itoa(worker)).Set(float64(depth))
}

func (m *dataflowMetrics) RecordControlAdmitted(instKind string) {
	if m == nil {
		return
	}
	m.controlAdmitted.WithLabelValues(instKind).Inc()
}

func (m *dataflowMetrics) ObserveTickDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.tickDuration.Observe(d.Seconds())
}
