package tasks

import (
	"context"

	"github.com/sqlshift/sqlshift/internal/logger"
	"github.com/sqlshift/sqlshift/pkg/abstract"
	"go.ytsaurus.tech/library/go/core/log"
	"go.ytsaurus.tech/library/go/core/xerrors"
)

// PartitionPlanner splits tables into copy tasks. Tables with native
// partitioning yield one task per partition; everything else is sliced into
// the configured number of synthetic partitions by physical row location.
type PartitionPlanner struct {
	storage           abstract.Storage
	logicalPartitions int
}

func NewPartitionPlanner(storage abstract.Storage, logicalPartitions int) *PartitionPlanner {
	return &PartitionPlanner{
		storage:           storage,
		logicalPartitions: logicalPartitions,
	}
}

func (p *PartitionPlanner) PlanTable(ctx context.Context, table abstract.TableID) ([]abstract.CopyTask, error) {
	partitionCount, err := p.storage.PartitionCount(ctx, table)
	if err != nil {
		return nil, xerrors.Errorf("unable to read partition count of %v: %w", table, err)
	}
	if partitionCount > 1 {
		key, err := p.storage.PartitionKeyInfo(ctx, table)
		if err != nil {
			if xerrors.Is(err, abstract.ErrNoPartitionKey) {
				return nil, &abstract.PlanningError{Table: table, Reason: err.Error()}
			}
			return nil, xerrors.Errorf("unable to read partition key of %v: %w", table, err)
		}
		logger.Log.Info("planned copy of partitioned table",
			log.String("table", table.String()),
			log.Int("partitions", partitionCount),
			log.String("partition_function", key.Function),
			log.String("partition_column", key.Column))
		return partitionTasks(table, abstract.NewPhysicalScheme(key.Function, key.Column, partitionCount)), nil
	}
	// A single native partition is the same as no partitioning at all.
	logger.Log.Info("planned copy of unpartitioned table",
		log.String("table", table.String()),
		log.Int("slices", p.logicalPartitions))
	return partitionTasks(table, abstract.NewLogicalScheme(p.logicalPartitions)), nil
}

// PlanTables concatenates per table plans in the given table order.
func (p *PartitionPlanner) PlanTables(ctx context.Context, tables []abstract.TableID) ([]abstract.CopyTask, error) {
	var plan []abstract.CopyTask
	for _, table := range tables {
		tableTasks, err := p.PlanTable(ctx, table)
		if err != nil {
			return nil, err
		}
		plan = append(plan, tableTasks...)
	}
	return plan, nil
}

func partitionTasks(table abstract.TableID, scheme abstract.PartitionScheme) []abstract.CopyTask {
	result := make([]abstract.CopyTask, 0, scheme.PartitionCount)
	for number := 1; number <= scheme.PartitionCount; number++ {
		result = append(result, abstract.CopyTask{
			Table:           table,
			PartitionNumber: number,
			Scheme:          scheme,
		})
	}
	return result
}
