package tasks

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sqlshift/sqlshift/pkg/abstract"
	"github.com/sqlshift/sqlshift/pkg/stats"
	"github.com/stretchr/testify/require"
	"go.ytsaurus.tech/library/go/core/xerrors"
)

func newTestStats() *stats.CopyStats {
	return stats.NewCopyStats(prometheus.NewRegistry())
}

func TestPoolDrainsEveryTaskExactlyOnce(t *testing.T) {
	orders := abstract.TableID{Namespace: "dbo", Name: "orders"}
	source := newFakeStorage(orders)
	target := newFakeStorage(orders)

	queue := NewTaskQueue()
	require.NoError(t, queue.Fill(testPlan(20)))

	pool := NewWorkerPool(queue, source.factory(), target.factory(), 7, 1000, newTestStats())
	results := pool.Run(context.Background())

	require.Len(t, results, 20)
	for _, result := range results {
		require.NoError(t, result.Err)
		require.Equal(t, int64(3), result.Rows)
	}
	counts := target.loadCounts()
	require.Len(t, counts, 20)
	for key, count := range counts {
		require.Equal(t, 1, count, "task %v loaded %v times", key, count)
	}
	require.Equal(t, 0, queue.Size())
	require.Equal(t, int64(60), pool.RowsCopied())
}

func TestPoolKeepsGoingAfterFailedTask(t *testing.T) {
	orders := abstract.TableID{Namespace: "dbo", Name: "orders"}
	source := newFakeStorage(orders)
	target := newFakeStorage(orders)

	plan := testPlan(10)
	target.failBulk(plan[3], xerrors.New("bulk insert deadlocked"))
	queue := NewTaskQueue()
	require.NoError(t, queue.Fill(plan))

	pool := NewWorkerPool(queue, source.factory(), target.factory(), 4, 1000, newTestStats())
	results := pool.Run(context.Background())

	require.Len(t, results, 10)
	failed := 0
	for _, result := range results {
		if result.Ok() {
			continue
		}
		failed++
		var transferErr *abstract.TransferError
		require.True(t, xerrors.As(result.Err, &transferErr))
		require.Equal(t, plan[3].PartitionNumber, transferErr.Task.PartitionNumber)
	}
	require.Equal(t, 1, failed)
	require.Equal(t, int64(27), pool.RowsCopied())
	require.Equal(t, 0, queue.Size())
}

func TestPoolSingleWorker(t *testing.T) {
	orders := abstract.TableID{Namespace: "dbo", Name: "orders"}
	source := newFakeStorage(orders)
	target := newFakeStorage(orders)

	queue := NewTaskQueue()
	require.NoError(t, queue.Fill(testPlan(5)))

	pool := NewWorkerPool(queue, source.factory(), target.factory(), 1, 1000, newTestStats())
	results := pool.Run(context.Background())

	require.Len(t, results, 5)
	require.Equal(t, 0, queue.Size())
}
