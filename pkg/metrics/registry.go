// Package metrics provides the Prometheus metrics surface for megaflow's
// worker cluster and control ingestion service. Collection is entirely
// opt-in: until InitRegistry is called, IsEnabled reports false and every
// constructor in this package returns nil, which every metrics-consuming
// call site treats as zero overhead (see the nil-receiver guards on
// DataflowMetrics's implementations in pkg/metrics/prometheus).
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	registry *prometheus.Registry
	enabled  bool
)

// InitRegistry creates and installs the process-wide metrics registry,
// enabling metrics collection. Call once at startup before constructing any
// metrics (e.g. via NewDataflowMetrics).
func InitRegistry() *prometheus.Registry {
	registry = prometheus.NewRegistry()
	enabled = true
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	return enabled
}

// GetRegistry returns the process-wide registry, lazily creating one if
// InitRegistry was never called. Metrics constructors should always check
// IsEnabled first; GetRegistry itself never flips IsEnabled to true.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	return registry
}
