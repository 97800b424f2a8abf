package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CopyStats carries the copy-phase metrics. Workers bump the task and row
// counters, the throughput monitor feeds the gauge, the orchestrator records
// the elapsed time.
type CopyStats struct {
	TasksCompleted prometheus.Counter
	TasksFailed    prometheus.Counter
	RowsCopied     prometheus.Counter
	ThroughputMBps prometheus.Gauge
	ElapsedSeconds prometheus.Gauge
}

func NewCopyStats(registerer prometheus.Registerer) *CopyStats {
	factory := promauto.With(registerer)
	return &CopyStats{
		TasksCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sqlshift",
			Name:      "tasks_completed_total",
			Help:      "Copy tasks finished successfully.",
		}),
		TasksFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sqlshift",
			Name:      "tasks_failed_total",
			Help:      "Copy tasks abandoned after a transfer error.",
		}),
		RowsCopied: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sqlshift",
			Name:      "rows_copied_total",
			Help:      "Rows written to the destination.",
		}),
		ThroughputMBps: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "sqlshift",
			Name:      "destination_write_mbps",
			Help:      "Destination write-log throughput, MB/sec, sampled during the copy phase.",
		}),
		ElapsedSeconds: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "sqlshift",
			Name:      "copy_elapsed_seconds",
			Help:      "Wall-clock duration of the copy phase.",
		}),
	}
}
