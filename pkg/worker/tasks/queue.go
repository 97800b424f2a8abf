package tasks

import (
	"sync"

	"github.com/sqlshift/sqlshift/pkg/abstract"
	"go.ytsaurus.tech/library/go/core/xerrors"
)

// TaskQueue holds the copy plan for the worker pool. It is filled exactly
// once before the workers start and only drained afterwards, so there is no
// producer running concurrently with the consumers.
type TaskQueue struct {
	mutex  sync.Mutex
	tasks  []abstract.CopyTask
	filled bool
}

func NewTaskQueue() *TaskQueue {
	return &TaskQueue{
		mutex:  sync.Mutex{},
		tasks:  nil,
		filled: false,
	}
}

// Fill loads the whole plan into the queue. Calling it a second time is a
// programming error.
func (q *TaskQueue) Fill(plan []abstract.CopyTask) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.filled {
		return xerrors.New("task queue is already filled")
	}
	q.tasks = append(q.tasks, plan...)
	q.filled = true
	return nil
}

// TryTake hands the next task to exactly one caller. Once the queue is
// drained it keeps returning ok == false.
func (q *TaskQueue) TryTake() (abstract.CopyTask, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if len(q.tasks) == 0 {
		return abstract.CopyTask{}, false
	}
	task := q.tasks[0]
	q.tasks = q.tasks[1:]
	return task, true
}

// Size reports how many tasks are still waiting. The value is stale the
// moment it returns; the throughput monitor only uses it to notice emptiness.
func (q *TaskQueue) Size() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.tasks)
}
