package tasks

import (
	"context"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sqlshift/sqlshift/internal/logger"
	"github.com/sqlshift/sqlshift/pkg/abstract"
	"github.com/sqlshift/sqlshift/pkg/abstract/model"
	"github.com/sqlshift/sqlshift/pkg/stats"
	"github.com/sqlshift/sqlshift/pkg/util/set"
	"go.ytsaurus.tech/library/go/core/log"
	"go.ytsaurus.tech/library/go/core/xerrors"
	"golang.org/x/sync/errgroup"
)

// CopyState names a phase of a copy run. States only move forward; any
// failure before the copy phase lands in StateFailed and aborts the run.
type CopyState string

const (
	StateInit                CopyState = "Init"
	StateProbingConnections  CopyState = "ProbingConnections"
	StateResolvingTables     CopyState = "ResolvingTables"
	StateValidatingExistence CopyState = "ValidatingExistence"
	StatePlanning            CopyState = "Planning"
	StateTruncating          CopyState = "Truncating"
	StateCopying             CopyState = "Copying"
	StateDone                CopyState = "Done"
	StateFailed              CopyState = "Failed"
)

// CopyResult reports one finished run. FailedTasks carries the per task
// errors so the caller can print them after the summary.
type CopyResult struct {
	State          CopyState
	Elapsed        time.Duration
	Tables         int
	TasksTotal     int
	TasksCompleted int
	TasksFailed    int
	RowsCopied     int64
	FailedTasks    []abstract.TaskResult
}

// Copier sequences one copy run end to end: probe both endpoints, resolve
// and validate the table list, plan partitions, optionally truncate, then
// drain the plan with the worker pool under the throughput monitor. A Copier
// serves exactly one Copy call.
type Copier struct {
	runID     string
	transfer  *model.Transfer
	newSource abstract.StorageFactory
	newTarget abstract.StorageFactory
	stats     *stats.CopyStats

	state         CopyState
	queue         *TaskQueue
	monitorWindow time.Duration
}

func NewCopier(transfer *model.Transfer, newSource abstract.StorageFactory, newTarget abstract.StorageFactory, copyStats *stats.CopyStats) *Copier {
	return &Copier{
		runID:     uuid.New().String(),
		transfer:  transfer,
		newSource: newSource,
		newTarget: newTarget,
		stats:     copyStats,

		state:         StateInit,
		queue:         NewTaskQueue(),
		monitorWindow: defaultSampleWindow,
	}
}

func (c *Copier) Copy(ctx context.Context) (*CopyResult, error) {
	logger.Log.Info("copy run starting",
		log.String("run_id", c.runID),
		log.String("transfer_id", c.transfer.ID),
		log.String("source", c.transfer.Source.String()),
		log.String("target", c.transfer.Target.String()))

	source, err := c.newSource(ctx)
	if err != nil {
		return nil, c.fail(abstract.NewConnectivityError(abstract.SideSource, err))
	}
	defer source.Close()
	target, err := c.newTarget(ctx)
	if err != nil {
		return nil, c.fail(abstract.NewConnectivityError(abstract.SideTarget, err))
	}
	defer target.Close()

	c.transition(StateProbingConnections)
	if err := c.probeEndpoints(ctx, source, target); err != nil {
		return nil, c.fail(err)
	}
	if err := CheckSourceSafety(ctx, source, c.transfer.SafetyCheck); err != nil {
		return nil, c.fail(err)
	}

	c.transition(StateResolvingTables)
	tables, err := ResolveTables(ctx, source, c.transfer.Tables)
	if err != nil {
		return nil, c.fail(err)
	}

	c.transition(StateValidatingExistence)
	if err := ValidateExistence(ctx, source, target, tables); err != nil {
		return nil, c.fail(err)
	}

	c.transition(StatePlanning)
	plan, err := NewPartitionPlanner(source, c.transfer.LogicalPartitions).PlanTables(ctx, tables)
	if err != nil {
		return nil, c.fail(err)
	}

	if c.transfer.TruncateBeforeCopy {
		c.transition(StateTruncating)
		if err := c.truncateTables(ctx, target, tables); err != nil {
			return nil, c.fail(err)
		}
	}

	c.transition(StateCopying)
	result, err := c.runCopyPhase(ctx, plan)
	if err != nil {
		return nil, c.fail(err)
	}
	result.Tables = len(tables)

	c.transition(StateDone)
	result.State = StateDone
	logger.Log.Info("copy run finished",
		log.String("run_id", c.runID),
		log.Duration("elapsed", result.Elapsed),
		log.Int("tables", result.Tables),
		log.Int("tasks_completed", result.TasksCompleted),
		log.Int("tasks_failed", result.TasksFailed),
		log.String("rows_copied", humanize.Comma(result.RowsCopied)))

	if c.transfer.OnTransferError == model.TransferErrorFail && result.TasksFailed > 0 {
		return result, xerrors.Errorf("%v of %v tasks failed", result.TasksFailed, result.TasksTotal)
	}
	return result, nil
}

func (c *Copier) transition(next CopyState) {
	logger.Log.Info("state changed",
		log.String("run_id", c.runID),
		log.String("from", string(c.state)),
		log.String("to", string(next)))
	c.state = next
}

func (c *Copier) fail(err error) error {
	c.transition(StateFailed)
	return err
}

func (c *Copier) probeEndpoints(ctx context.Context, source abstract.Storage, target abstract.Storage) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := source.Probe(groupCtx); err != nil {
			return abstract.NewConnectivityError(abstract.SideSource, err)
		}
		return nil
	})
	group.Go(func() error {
		if err := target.Probe(groupCtx); err != nil {
			return abstract.NewConnectivityError(abstract.SideTarget, err)
		}
		return nil
	})
	return group.Wait()
}

// CheckSourceSafety enforces the configured guarantee before any row moves.
// Position hashed slicing silently loses or duplicates rows if the source
// mutates mid copy, so a writable source is rejected unless the operator
// explicitly opted out of the check.
func CheckSourceSafety(ctx context.Context, source abstract.Storage, mode model.SafetyCheckMode) error {
	switch mode {
	case model.SafetyCheckReadOnly:
		readOnly, err := source.DatabaseIsReadOnly(ctx)
		if err != nil {
			return xerrors.Errorf("unable to verify source updateability: %w", err)
		}
		if !readOnly {
			return &abstract.SafetyCheckError{Mode: string(model.SafetyCheckReadOnly), Reason: "source database is writable"}
		}
		logger.Log.Info("source database is read-only")
	case model.SafetyCheckSnapshot:
		isSnapshot, err := source.DatabaseIsSnapshot(ctx)
		if err != nil {
			return xerrors.Errorf("unable to verify source is a snapshot: %w", err)
		}
		if !isSnapshot {
			return &abstract.SafetyCheckError{Mode: string(model.SafetyCheckSnapshot), Reason: "source database is not a database snapshot"}
		}
		logger.Log.Info("source database is a snapshot")
	default:
		logger.Log.Warn("source safety check disabled, rows must not move while the copy runs")
	}
	return nil
}

// ResolveTables expands a configured table list into concrete table
// identities, first occurrence wins on duplicates. The wildcard pulls every
// user table the source catalog lists.
func ResolveTables(ctx context.Context, source abstract.Storage, patterns []string) ([]abstract.TableID, error) {
	var resolved []abstract.TableID
	seen := set.New[abstract.TableID]()
	appendTable := func(table abstract.TableID) {
		if seen.Contains(table) {
			return
		}
		seen.Add(table)
		resolved = append(resolved, table)
	}
	for _, raw := range patterns {
		if strings.TrimSpace(raw) == model.WildcardTable {
			catalog, err := source.TableList(ctx)
			if err != nil {
				return nil, xerrors.Errorf("unable to expand %q: %w", model.WildcardTable, err)
			}
			for _, table := range catalog {
				appendTable(table)
			}
			continue
		}
		table, err := abstract.ParseTableID(raw)
		if err != nil {
			return nil, xerrors.Errorf("invalid table reference %q: %w", raw, err)
		}
		appendTable(table)
	}
	if len(resolved) == 0 {
		return nil, xerrors.New("table list resolved to no tables")
	}
	logger.Log.Info("table list resolved", log.Int("tables", len(resolved)))
	return resolved, nil
}

// ValidateExistence checks every table on both sides before reporting, so
// one failed run lists all missing tables at once.
func ValidateExistence(ctx context.Context, source abstract.Storage, target abstract.Storage, tables []abstract.TableID) error {
	var missing []abstract.MissingTable
	for _, table := range tables {
		onSource, err := source.TableExists(ctx, table)
		if err != nil {
			return xerrors.Errorf("unable to check %v on source: %w", table, err)
		}
		if !onSource {
			missing = append(missing, abstract.MissingTable{Table: table, Side: abstract.SideSource})
		}
		onTarget, err := target.TableExists(ctx, table)
		if err != nil {
			return xerrors.Errorf("unable to check %v on target: %w", table, err)
		}
		if !onTarget {
			missing = append(missing, abstract.MissingTable{Table: table, Side: abstract.SideTarget})
		}
	}
	if len(missing) > 0 {
		return &abstract.SchemaValidationError{Missing: missing}
	}
	logger.Log.Info("all tables exist on both sides", log.Int("tables", len(tables)))
	return nil
}

// truncateTables empties every target table before any worker writes a row.
func (c *Copier) truncateTables(ctx context.Context, target abstract.Storage, tables []abstract.TableID) error {
	for _, table := range tables {
		if err := target.TruncateTable(ctx, table); err != nil {
			return xerrors.Errorf("unable to truncate %v: %w", table, err)
		}
		logger.Log.Info("truncated target table", log.String("table", table.String()))
	}
	return nil
}

func (c *Copier) runCopyPhase(ctx context.Context, plan []abstract.CopyTask) (*CopyResult, error) {
	if err := c.queue.Fill(plan); err != nil {
		return nil, xerrors.Errorf("unable to fill task queue: %w", err)
	}
	logger.Log.Info("task queue filled",
		log.Int("tasks", len(plan)),
		log.Int("workers", c.transfer.WorkerCount),
		log.Int("batch_size", c.transfer.BatchSize))

	// The monitor is reporting only; a run copies fine without it.
	var monitor *ThroughputMonitor
	if monitorStorage, err := c.newTarget(ctx); err != nil {
		logger.Log.Warn("unable to open monitor storage, copying without throughput reporting", log.Error(err))
	} else {
		defer monitorStorage.Close()
		monitor = NewThroughputMonitor(ctx, c.queue, monitorStorage, c.monitorWindow, c.stats)
	}

	startedAt := time.Now()
	pool := NewWorkerPool(c.queue, c.newSource, c.newTarget, c.transfer.WorkerCount, c.transfer.BatchSize, c.stats)
	results := pool.Run(ctx)
	if monitor != nil {
		monitor.Close()
	}
	elapsed := time.Since(startedAt)
	c.stats.ElapsedSeconds.Set(elapsed.Seconds())

	result := &CopyResult{
		State:          c.state,
		Elapsed:        elapsed,
		Tables:         0,
		TasksTotal:     len(plan),
		TasksCompleted: 0,
		TasksFailed:    0,
		RowsCopied:     pool.RowsCopied(),
		FailedTasks:    nil,
	}
	for _, taskResult := range results {
		if taskResult.Ok() {
			result.TasksCompleted++
		} else {
			result.TasksFailed++
			result.FailedTasks = append(result.FailedTasks, taskResult)
		}
	}
	return result, nil
}
