package abstract

import (
	"fmt"
	"time"
)

type PartitionKind string

const (
	// PartitionKindPhysical marks a scheme derived from the source engine's
	// own partitioning metadata.
	PartitionKindPhysical PartitionKind = "physical"
	// PartitionKindLogical marks a synthetic scheme over the physical row
	// position, used when the table carries no usable native partitioning.
	PartitionKindLogical PartitionKind = "logical"
)

// PartitionScheme describes how a table is split into disjoint row subsets.
// It is a closed two-variant union: the function and column fields are only
// meaningful for the physical kind.
type PartitionScheme struct {
	Kind              PartitionKind
	PartitionFunction string
	PartitionColumn   string
	PartitionCount    int
}

func NewPhysicalScheme(function string, column string, count int) PartitionScheme {
	return PartitionScheme{
		Kind:              PartitionKindPhysical,
		PartitionFunction: function,
		PartitionColumn:   column,
		PartitionCount:    count,
	}
}

func NewLogicalScheme(count int) PartitionScheme {
	return PartitionScheme{
		Kind:              PartitionKindLogical,
		PartitionFunction: "",
		PartitionColumn:   "",
		PartitionCount:    count,
	}
}

// CopyTask is one unit of work: one table, one partition. Partition numbers
// for a table always form the contiguous range 1..PartitionCount, so the
// predicates of all tasks for that table are pairwise disjoint and jointly
// cover every row.
type CopyTask struct {
	Table           TableID
	PartitionNumber int // 1-based
	Scheme          PartitionScheme
}

// Predicate derives the row filter for this task. The empty string means a
// full-table scan (single logical partition).
func (t CopyTask) Predicate() string {
	switch t.Scheme.Kind {
	case PartitionKindPhysical:
		return fmt.Sprintf("$partition.%v(%v) = %v", t.Scheme.PartitionFunction, t.Scheme.PartitionColumn, t.PartitionNumber)
	case PartitionKindLogical:
		if t.Scheme.PartitionCount <= 1 {
			return ""
		}
		return fmt.Sprintf("ABS(CAST(%%%%PhysLoc%%%% AS BIGINT)) %% %v = %v", t.Scheme.PartitionCount, t.PartitionNumber-1)
	default:
		return ""
	}
}

func (t CopyTask) String() string {
	return fmt.Sprintf("%v [%v/%v] (%v)", t.Table, t.PartitionNumber, t.Scheme.PartitionCount, t.Scheme.Kind)
}

// TaskResult is the outcome of one task's transfer, reported by the worker
// that claimed it.
type TaskResult struct {
	Task    CopyTask
	Rows    int64
	Elapsed time.Duration
	Err     error
}

func (r TaskResult) Ok() bool {
	return r.Err == nil
}
