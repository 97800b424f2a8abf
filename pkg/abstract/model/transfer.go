package model

import (
	"go.ytsaurus.tech/library/go/core/xerrors"
)

// SafetyCheckMode is the pre-copy guarantee demanded from the source
// database. Logical partitioning hashes physical row positions, which is
// only stable while nothing writes to the source, so a run can require the
// source to be read-only or a database snapshot before any row moves.
type SafetyCheckMode string

const (
	SafetyCheckNone     SafetyCheckMode = "none"
	SafetyCheckReadOnly SafetyCheckMode = "read-only"
	SafetyCheckSnapshot SafetyCheckMode = "snapshot"
)

// TransferErrorPolicy decides what a failed task does to the overall run:
// "continue" keeps the original fire-and-forget behavior (failures logged
// and counted, exit code untouched), "fail" flips the run into an error
// after the copy phase completes.
type TransferErrorPolicy string

const (
	TransferErrorContinue TransferErrorPolicy = "continue"
	TransferErrorFail     TransferErrorPolicy = "fail"
)

// WildcardTable in the configured table list expands to every table the
// source catalog lists.
const WildcardTable = "*"

const (
	MinBatchSize     = 1000
	MaxBatchSize     = 100000000
	DefaultBatchSize = 100000

	MinWorkerCount     = 1
	MaxWorkerCount     = 32
	DefaultWorkerCount = 7

	MinLogicalPartitions     = 1
	MaxLogicalPartitions     = 32
	DefaultLogicalPartitions = 7
)

// Transfer is one configured copy run: two endpoints, a table list and the
// knobs of the copy engine.
type Transfer struct {
	ID                 string              `yaml:"id"`
	Source             *ConnectionParams   `yaml:"source"`
	Target             *ConnectionParams   `yaml:"target"`
	Tables             []string            `yaml:"tables"`
	BatchSize          int                 `yaml:"batch_size"`
	WorkerCount        int                 `yaml:"workers"`
	LogicalPartitions  int                 `yaml:"logical_partitions"`
	TruncateBeforeCopy bool                `yaml:"truncate"`
	SafetyCheck        SafetyCheckMode     `yaml:"safety_check"`
	OnTransferError    TransferErrorPolicy `yaml:"on_transfer_error"`
}

func (t *Transfer) WithDefaults() {
	if t.BatchSize == 0 {
		t.BatchSize = DefaultBatchSize
	}
	if t.WorkerCount == 0 {
		t.WorkerCount = DefaultWorkerCount
	}
	if t.LogicalPartitions == 0 {
		t.LogicalPartitions = DefaultLogicalPartitions
	}
	if t.SafetyCheck == "" {
		t.SafetyCheck = SafetyCheckNone
	}
	if t.OnTransferError == "" {
		t.OnTransferError = TransferErrorContinue
	}
	if t.Source != nil {
		t.Source.WithDefaults()
	}
	if t.Target != nil {
		t.Target.WithDefaults()
	}
}

func (t *Transfer) Validate() error {
	if t.Source == nil {
		return xerrors.New("source endpoint is required")
	}
	if err := t.Source.Validate(); err != nil {
		return xerrors.Errorf("invalid source endpoint: %w", err)
	}
	if t.Target == nil {
		return xerrors.New("target endpoint is required")
	}
	if err := t.Target.Validate(); err != nil {
		return xerrors.Errorf("invalid target endpoint: %w", err)
	}
	if len(t.Tables) == 0 {
		return xerrors.New("table list is empty")
	}
	if t.BatchSize < MinBatchSize || t.BatchSize > MaxBatchSize {
		return xerrors.Errorf("batch_size %v is out of bounds [%v, %v]", t.BatchSize, MinBatchSize, MaxBatchSize)
	}
	if t.WorkerCount < MinWorkerCount || t.WorkerCount > MaxWorkerCount {
		return xerrors.Errorf("workers %v is out of bounds [%v, %v]", t.WorkerCount, MinWorkerCount, MaxWorkerCount)
	}
	if t.LogicalPartitions < MinLogicalPartitions || t.LogicalPartitions > MaxLogicalPartitions {
		return xerrors.Errorf("logical_partitions %v is out of bounds [%v, %v]", t.LogicalPartitions, MinLogicalPartitions, MaxLogicalPartitions)
	}
	switch t.SafetyCheck {
	case SafetyCheckNone, SafetyCheckReadOnly, SafetyCheckSnapshot:
	default:
		return xerrors.Errorf("unsupported safety_check %q, want one of: none, read-only, snapshot", t.SafetyCheck)
	}
	switch t.OnTransferError {
	case TransferErrorContinue, TransferErrorFail:
	default:
		return xerrors.Errorf("unsupported on_transfer_error %q, want one of: continue, fail", t.OnTransferError)
	}
	return nil
}
