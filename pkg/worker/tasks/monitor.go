package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sqlshift/sqlshift/internal/logger"
	"github.com/sqlshift/sqlshift/pkg/abstract"
	"github.com/sqlshift/sqlshift/pkg/stats"
	"go.uber.org/atomic"
	"go.ytsaurus.tech/library/go/core/log"
)

const (
	// Transaction log flush rate of the target database, in bytes per second.
	// Every bulk loaded row passes through the log, so this counter tracks
	// actual write throughput no matter how many workers feed the database.
	logFlushCounter = "Log Bytes Flushed/sec"

	defaultSampleWindow = 5 * time.Second
)

// ThroughputMonitor reports target write throughput while the copy phase
// runs. It samples over a fixed window on a dedicated connection and stops
// either when it observes an empty queue or when Close is called, whichever
// comes first.
type ThroughputMonitor struct {
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once

	queue    *TaskQueue
	storage  abstract.Storage
	window   time.Duration
	stats    *stats.CopyStats
	lastMBps *atomic.Float64
}

func NewThroughputMonitor(ctx context.Context, queue *TaskQueue, storage abstract.Storage, window time.Duration, copyStats *stats.CopyStats) *ThroughputMonitor {
	ctx, cancel := context.WithCancel(ctx)
	monitor := &ThroughputMonitor{
		cancel:    cancel,
		wg:        sync.WaitGroup{},
		closeOnce: sync.Once{},

		queue:    queue,
		storage:  storage,
		window:   window,
		stats:    copyStats,
		lastMBps: atomic.NewFloat64(0),
	}
	monitor.wg.Add(1)
	go monitor.run(ctx)
	return monitor
}

func (m *ThroughputMonitor) run(ctx context.Context) {
	defer m.wg.Done()
	for ctx.Err() == nil {
		bytesPerSecond, err := m.storage.SampleThroughput(ctx, logFlushCounter, m.window)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			samplingErr := &abstract.MonitorSamplingError{Counter: logFlushCounter, Err: err}
			logger.Log.Warn("throughput sample failed", log.Error(samplingErr))
			// The failed sample may have returned instantly; sit out one
			// window so a broken counter does not turn into a busy loop.
			select {
			case <-ctx.Done():
				return
			case <-time.After(m.window):
			}
		} else {
			if bytesPerSecond < 0 {
				bytesPerSecond = 0
			}
			mbps := bytesPerSecond / 1024 / 1024
			m.lastMBps.Store(mbps)
			m.stats.ThroughputMBps.Set(mbps)
			logger.Log.Info("target write throughput",
				log.String("rate", humanize.IBytes(uint64(bytesPerSecond))+"/sec"),
				log.Float64("mbps", mbps),
				log.Int("queued_tasks", m.queue.Size()))
		}
		if m.queue.Size() == 0 {
			return
		}
	}
}

// LastRateMBps is the most recent successful sample, zero before the first.
func (m *ThroughputMonitor) LastRateMBps() float64 {
	return m.lastMBps.Load()
}

// Close signals completion and waits for the sampling loop to exit. It is
// safe to call more than once.
func (m *ThroughputMonitor) Close() {
	m.closeOnce.Do(func() {
		m.cancel()
		m.wg.Wait()
	})
}
