package abstract

import (
	"fmt"
	"strings"
)

// Endpoint side names used in errors and logs.
const (
	SideSource = "source"
	SideTarget = "target"
)

// ConnectivityError means a pre-copy reachability probe failed. Fatal: no
// work is performed after it.
type ConnectivityError struct {
	Side string
	Err  error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%v connection probe failed: %v", e.Side, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

func NewConnectivityError(side string, err error) *ConnectivityError {
	return &ConnectivityError{Side: side, Err: err}
}

// SafetyCheckError means the source database does not satisfy the configured
// pre-copy safety mode. Fatal: rows may move under the copier otherwise.
type SafetyCheckError struct {
	Mode   string
	Reason string
}

func (e *SafetyCheckError) Error() string {
	return fmt.Sprintf("safety check %q failed: %v", e.Mode, e.Reason)
}

// MissingTable names a resolved table absent from one side.
type MissingTable struct {
	Table TableID
	Side  string
}

func (m MissingTable) String() string {
	return fmt.Sprintf("%v (%v)", m.Table, m.Side)
}

// SchemaValidationError aggregates every missing table found during
// existence validation. Fatal: nothing is copied.
type SchemaValidationError struct {
	Missing []MissingTable
}

func (e *SchemaValidationError) Error() string {
	names := make([]string, 0, len(e.Missing))
	for _, m := range e.Missing {
		names = append(names, m.String())
	}
	return fmt.Sprintf("%v table(s) not found: %v", len(e.Missing), strings.Join(names, ", "))
}

// PlanningError means the source partition metadata is internally
// inconsistent for a table. Fatal: guessing a scheme would corrupt the
// disjointness guarantee.
type PlanningError struct {
	Table  TableID
	Reason string
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("cannot plan partitions for %v: %v", e.Table, e.Reason)
}

// TransferError is a single task's read or bulk-load failure. Recovered: the
// task is abandoned, the worker continues, and the error is surfaced in the
// aggregated result.
type TransferError struct {
	Task CopyTask
	Err  error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer of %v failed: %v", e.Task.String(), e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// MonitorSamplingError means the throughput counter could not be read.
// Advisory only, never stops the copy phase.
type MonitorSamplingError struct {
	Counter string
	Err     error
}

func (e *MonitorSamplingError) Error() string {
	return fmt.Sprintf("cannot sample counter %q: %v", e.Counter, e.Err)
}

func (e *MonitorSamplingError) Unwrap() error {
	return e.Err
}
