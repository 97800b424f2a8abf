package abstract

import (
	"context"
	"time"

	"go.ytsaurus.tech/library/go/core/xerrors"
)

// ErrNoPartitionKey is returned by PartitionKeyInfo when the catalog exposes
// no partitioning column for the table. For a table reporting multiple
// partitions this means the metadata is inconsistent and planning must stop.
var ErrNoPartitionKey = xerrors.NewSentinel("no partitioning column in catalog metadata")

// PartitionKey is the native partitioning metadata of a physically
// partitioned table.
type PartitionKey struct {
	Function string
	Column   string
}

// BulkLoadOptions tune the destination bulk insert. The table-level lock and
// the absence of an execution timeout are not options: every load runs with
// TABLOCK and is never timed out.
type BulkLoadOptions struct {
	BatchSize int
}

// RowCursor is a forward-only stream of rows. The caller owns closing it,
// also when a downstream load fails mid-stream.
type RowCursor interface {
	Columns() []string
	Next() bool
	Values() ([]interface{}, error)
	Err() error
	Close() error
}

// Storage is the catalog-and-data contract the copy engine consumes. One
// Storage wraps one endpoint; workers and the monitor construct their own
// instances so no connection is shared across goroutines.
type Storage interface {
	// Probe checks reachability. Called concurrently for both endpoints
	// before any other operation.
	Probe(ctx context.Context) error

	TableExists(ctx context.Context, table TableID) (bool, error)
	TableList(ctx context.Context) ([]TableID, error)

	// PartitionCount reports the number of native partitions; 1 for an
	// unpartitioned table.
	PartitionCount(ctx context.Context, table TableID) (int, error)
	// PartitionKeyInfo resolves the partition function and column of a
	// physically partitioned table. No usable metadata is an error.
	PartitionKeyInfo(ctx context.Context, table TableID) (*PartitionKey, error)

	TruncateTable(ctx context.Context, table TableID) error

	// StreamRows opens a forward-only cursor over the table rows matching
	// predicate; an empty predicate selects the whole table.
	StreamRows(ctx context.Context, table TableID, predicate string) (RowCursor, error)
	// BulkLoad drains rows into table under a table-level lock and reports
	// the written row count. It does not close the cursor.
	BulkLoad(ctx context.Context, table TableID, rows RowCursor, opts BulkLoadOptions) (int64, error)

	// SampleThroughput measures a write-rate counter over the window and
	// returns bytes per second.
	SampleThroughput(ctx context.Context, counter string, window time.Duration) (float64, error)

	DatabaseIsReadOnly(ctx context.Context) (bool, error)
	DatabaseIsSnapshot(ctx context.Context) (bool, error)

	Close() error
}

// StorageFactory builds a Storage with its own connections. The copy engine
// calls it per claimed task plus once for the monitor.
type StorageFactory func(ctx context.Context) (Storage, error)
