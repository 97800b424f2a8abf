package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/sqlshift/sqlshift/internal/logger"
	"github.com/sqlshift/sqlshift/pkg/abstract"
	"github.com/sqlshift/sqlshift/pkg/stats"
	"go.uber.org/atomic"
	"go.ytsaurus.tech/library/go/core/log"
	"go.ytsaurus.tech/library/go/core/xerrors"
)

// WorkerPool drains the task queue with a fixed number of workers. Each
// claimed task gets a dedicated source and target connection for its whole
// duration, so a connection lost mid task never poisons the next one.
type WorkerPool struct {
	queue       *TaskQueue
	newSource   abstract.StorageFactory
	newTarget   abstract.StorageFactory
	workerCount int
	batchSize   int
	stats       *stats.CopyStats

	resultsMutex sync.Mutex
	results      []abstract.TaskResult
	rowsCopied   *atomic.Int64
}

func NewWorkerPool(queue *TaskQueue, newSource abstract.StorageFactory, newTarget abstract.StorageFactory, workerCount int, batchSize int, copyStats *stats.CopyStats) *WorkerPool {
	return &WorkerPool{
		queue:       queue,
		newSource:   newSource,
		newTarget:   newTarget,
		workerCount: workerCount,
		batchSize:   batchSize,
		stats:       copyStats,

		resultsMutex: sync.Mutex{},
		results:      nil,
		rowsCopied:   atomic.NewInt64(0),
	}
}

// Run starts all workers and blocks until the queue is drained. The returned
// slice holds one result per claimed task, failures included.
func (p *WorkerPool) Run(ctx context.Context) []abstract.TaskResult {
	waitToComplete := sync.WaitGroup{}
	for workerID := 1; workerID <= p.workerCount; workerID++ {
		waitToComplete.Add(1)
		go func(workerID int) {
			defer waitToComplete.Done()
			p.runWorker(ctx, workerID)
		}(workerID)
	}
	waitToComplete.Wait()
	return p.results
}

// RowsCopied is the total over all completed tasks so far.
func (p *WorkerPool) RowsCopied() int64 {
	return p.rowsCopied.Load()
}

func (p *WorkerPool) runWorker(ctx context.Context, workerID int) {
	logger.Log.Info("worker started", log.Int("worker_id", workerID))
	taskCount := 0
	for ctx.Err() == nil {
		task, ok := p.queue.TryTake()
		if !ok {
			break
		}
		p.appendResult(p.transferTask(ctx, workerID, task))
		taskCount++
	}
	logger.Log.Info("worker finished", log.Int("worker_id", workerID), log.Int("tasks", taskCount))
}

func (p *WorkerPool) transferTask(ctx context.Context, workerID int, task abstract.CopyTask) abstract.TaskResult {
	startedAt := time.Now()
	rows, err := p.copyTask(ctx, task)
	result := abstract.TaskResult{
		Task:    task,
		Rows:    rows,
		Elapsed: time.Since(startedAt),
		Err:     nil,
	}
	if err != nil {
		result.Err = &abstract.TransferError{Task: task, Err: err}
		p.stats.TasksFailed.Inc()
		logger.Log.Error("task failed, worker moves on",
			log.Int("worker_id", workerID),
			log.String("task", task.String()),
			log.Error(result.Err))
		return result
	}
	p.stats.TasksCompleted.Inc()
	p.stats.RowsCopied.Add(float64(rows))
	p.rowsCopied.Add(rows)
	logger.Log.Info("task completed",
		log.Int("worker_id", workerID),
		log.String("task", task.String()),
		log.Int64("rows", rows),
		log.Duration("elapsed", result.Elapsed))
	return result
}

func (p *WorkerPool) copyTask(ctx context.Context, task abstract.CopyTask) (int64, error) {
	source, err := p.newSource(ctx)
	if err != nil {
		return 0, xerrors.Errorf("unable to open source storage: %w", err)
	}
	defer source.Close()
	target, err := p.newTarget(ctx)
	if err != nil {
		return 0, xerrors.Errorf("unable to open target storage: %w", err)
	}
	defer target.Close()

	cursor, err := source.StreamRows(ctx, task.Table, task.Predicate())
	if err != nil {
		return 0, xerrors.Errorf("unable to open row stream: %w", err)
	}
	defer cursor.Close()

	rows, err := target.BulkLoad(ctx, task.Table, cursor, abstract.BulkLoadOptions{BatchSize: p.batchSize})
	if err != nil {
		return 0, xerrors.Errorf("bulk load failed: %w", err)
	}
	return rows, nil
}

func (p *WorkerPool) appendResult(result abstract.TaskResult) {
	p.resultsMutex.Lock()
	defer p.resultsMutex.Unlock()
	p.results = append(p.results, result)
}
