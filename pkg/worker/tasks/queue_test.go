package tasks

import (
	"sync"
	"testing"

	"github.com/sqlshift/sqlshift/pkg/abstract"
	"github.com/stretchr/testify/require"
)

func testPlan(count int) []abstract.CopyTask {
	scheme := abstract.NewLogicalScheme(count)
	plan := make([]abstract.CopyTask, 0, count)
	for number := 1; number <= count; number++ {
		plan = append(plan, abstract.CopyTask{
			Table:           abstract.TableID{Namespace: "dbo", Name: "orders"},
			PartitionNumber: number,
			Scheme:          scheme,
		})
	}
	return plan
}

func TestQueueFillOnce(t *testing.T) {
	queue := NewTaskQueue()
	require.NoError(t, queue.Fill(testPlan(3)))
	require.Error(t, queue.Fill(testPlan(3)))
	require.Equal(t, 3, queue.Size())
}

func TestQueueDrainsInOrder(t *testing.T) {
	queue := NewTaskQueue()
	require.NoError(t, queue.Fill(testPlan(3)))

	for number := 1; number <= 3; number++ {
		task, ok := queue.TryTake()
		require.True(t, ok)
		require.Equal(t, number, task.PartitionNumber)
		require.Equal(t, 3-number, queue.Size())
	}
	_, ok := queue.TryTake()
	require.False(t, ok)
	_, ok = queue.TryTake()
	require.False(t, ok)
}

func TestQueueEveryTaskTakenExactlyOnce(t *testing.T) {
	queue := NewTaskQueue()
	require.NoError(t, queue.Fill(testPlan(1000)))

	taken := make([][]int, 32)
	wg := sync.WaitGroup{}
	for consumer := 0; consumer < 32; consumer++ {
		wg.Add(1)
		go func(consumer int) {
			defer wg.Done()
			for {
				task, ok := queue.TryTake()
				if !ok {
					return
				}
				taken[consumer] = append(taken[consumer], task.PartitionNumber)
			}
		}(consumer)
	}
	wg.Wait()

	seen := map[int]int{}
	for _, numbers := range taken {
		for _, number := range numbers {
			seen[number]++
		}
	}
	require.Len(t, seen, 1000)
	for number, count := range seen {
		require.Equal(t, 1, count, "partition %v taken %v times", number, count)
	}
	require.Equal(t, 0, queue.Size())
}
