package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sqlshift/sqlshift/pkg/abstract"
	"go.ytsaurus.tech/library/go/core/xerrors"
)

// fakeStorage is an in-memory endpoint for engine tests. One instance backs
// every factory call of its side, so tests can assert call order and counts
// across workers.
type fakeStorage struct {
	mutex sync.Mutex

	probeErr      error
	readOnly      bool
	snapshot      bool
	catalog       []abstract.TableID
	existing      map[abstract.TableID]bool
	partitions    map[abstract.TableID]int
	partitionKeys map[abstract.TableID]abstract.PartitionKey
	rowsPerStream int
	bulkErrs      map[string]error
	throughput    float64
	throughputErr error

	events     []string
	loads      map[string]int
	samples    int
	closeCount int
}

func newFakeStorage(tables ...abstract.TableID) *fakeStorage {
	storage := &fakeStorage{
		mutex: sync.Mutex{},

		probeErr:      nil,
		readOnly:      false,
		snapshot:      false,
		catalog:       tables,
		existing:      map[abstract.TableID]bool{},
		partitions:    map[abstract.TableID]int{},
		partitionKeys: map[abstract.TableID]abstract.PartitionKey{},
		rowsPerStream: 3,
		bulkErrs:      map[string]error{},
		throughput:    8 << 20,
		throughputErr: nil,

		events:     nil,
		loads:      map[string]int{},
		samples:    0,
		closeCount: 0,
	}
	for _, table := range tables {
		storage.existing[table] = true
		storage.partitions[table] = 1
	}
	return storage
}

func (f *fakeStorage) factory() abstract.StorageFactory {
	return func(ctx context.Context) (abstract.Storage, error) {
		return f, nil
	}
}

func (f *fakeStorage) failBulk(task abstract.CopyTask, err error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.bulkErrs[loadKey(task.Table, task.Predicate())] = err
}

func (f *fakeStorage) loadCounts() map[string]int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	counts := map[string]int{}
	for key, count := range f.loads {
		counts[key] = count
	}
	return counts
}

func (f *fakeStorage) eventLog() []string {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]string{}, f.events...)
}

func (f *fakeStorage) sampleCount() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.samples
}

func (f *fakeStorage) Probe(ctx context.Context) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.probeErr
}

func (f *fakeStorage) TableExists(ctx context.Context, table abstract.TableID) (bool, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.existing[table], nil
}

func (f *fakeStorage) TableList(ctx context.Context) ([]abstract.TableID, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]abstract.TableID{}, f.catalog...), nil
}

func (f *fakeStorage) PartitionCount(ctx context.Context, table abstract.TableID) (int, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if count, ok := f.partitions[table]; ok {
		return count, nil
	}
	return 1, nil
}

func (f *fakeStorage) PartitionKeyInfo(ctx context.Context, table abstract.TableID) (*abstract.PartitionKey, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if key, ok := f.partitionKeys[table]; ok {
		return &key, nil
	}
	return nil, xerrors.Errorf("table %v: %w", table, abstract.ErrNoPartitionKey)
}

func (f *fakeStorage) TruncateTable(ctx context.Context, table abstract.TableID) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.events = append(f.events, fmt.Sprintf("truncate %v", table))
	return nil
}

func (f *fakeStorage) StreamRows(ctx context.Context, table abstract.TableID, predicate string) (abstract.RowCursor, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return &fakeRows{predicate: predicate, remaining: f.rowsPerStream}, nil
}

func (f *fakeStorage) BulkLoad(ctx context.Context, table abstract.TableID, rows abstract.RowCursor, opts abstract.BulkLoadOptions) (int64, error) {
	var loaded int64
	for rows.Next() {
		if _, err := rows.Values(); err != nil {
			return loaded, err
		}
		loaded++
	}
	predicate := ""
	if fake, ok := rows.(*fakeRows); ok {
		predicate = fake.predicate
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	key := loadKey(table, predicate)
	if err := f.bulkErrs[key]; err != nil {
		return 0, err
	}
	f.events = append(f.events, fmt.Sprintf("bulk %v", table))
	f.loads[key]++
	return loaded, nil
}

func (f *fakeStorage) SampleThroughput(ctx context.Context, counter string, window time.Duration) (float64, error) {
	f.mutex.Lock()
	f.samples++
	rate := f.throughput
	err := f.throughputErr
	f.mutex.Unlock()
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-time.After(window):
	}
	if err != nil {
		return 0, err
	}
	return rate, nil
}

func (f *fakeStorage) DatabaseIsReadOnly(ctx context.Context) (bool, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.readOnly, nil
}

func (f *fakeStorage) DatabaseIsSnapshot(ctx context.Context) (bool, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.snapshot, nil
}

func (f *fakeStorage) Close() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.closeCount++
	return nil
}

func loadKey(table abstract.TableID, predicate string) string {
	return fmt.Sprintf("%v|%v", table, predicate)
}

type fakeRows struct {
	predicate string
	remaining int
}

func (r *fakeRows) Columns() []string {
	return []string{"id", "payload"}
}

func (r *fakeRows) Next() bool {
	if r.remaining == 0 {
		return false
	}
	r.remaining--
	return true
}

func (r *fakeRows) Values() ([]interface{}, error) {
	return []interface{}{int64(r.remaining), "payload"}, nil
}

func (r *fakeRows) Err() error {
	return nil
}

func (r *fakeRows) Close() error {
	return nil
}
