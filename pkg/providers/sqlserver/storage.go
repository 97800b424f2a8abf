package sqlserver

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	"github.com/sqlshift/sqlshift/internal/logger"
	"github.com/sqlshift/sqlshift/pkg/abstract"
	"github.com/sqlshift/sqlshift/pkg/abstract/model"
	"go.ytsaurus.tech/library/go/core/log"
	"go.ytsaurus.tech/library/go/core/xerrors"
)

const (
	probePingTimeout = 5 * time.Second
	probeMaxRetries  = 3
)

// Storage implements the catalog-and-data contract over one SQL Server
// database. The copy engine builds a fresh instance per claimed task, so no
// session is ever shared across goroutines.
type Storage struct {
	db     *sqlx.DB
	params *model.ConnectionParams
}

var _ abstract.Storage = (*Storage)(nil)

// Factory binds connection parameters into the constructor shape the copy
// engine consumes.
func Factory(params *model.ConnectionParams) abstract.StorageFactory {
	return func(ctx context.Context) (abstract.Storage, error) {
		return NewStorage(params)
	}
}

func NewStorage(params *model.ConnectionParams) (*Storage, error) {
	db, err := sqlx.Open("sqlserver", ConnString(params))
	if err != nil {
		return nil, xerrors.Errorf("unable to open connection pool to %v: %w", params, err)
	}
	return &Storage{
		db:     db,
		params: params,
	}, nil
}

func (s *Storage) Probe(ctx context.Context) error {
	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, probePingTimeout)
		defer cancel()
		return s.db.PingContext(pingCtx)
	}
	notify := func(err error, wait time.Duration) {
		logger.Log.Warn("ping failed, retrying",
			log.String("endpoint", s.params.String()),
			log.Duration("backoff", wait),
			log.Error(err))
	}
	retryPolicy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), probeMaxRetries), ctx)
	if err := backoff.RetryNotify(ping, retryPolicy, notify); err != nil {
		return xerrors.Errorf("unable to reach %v: %w", s.params, err)
	}

	var version string
	if err := s.db.GetContext(ctx, &version, queryServerVersion); err != nil {
		return xerrors.Errorf("unable to query server version of %v: %w", s.params, err)
	}
	logger.Log.Info("endpoint is reachable",
		log.String("endpoint", s.params.String()),
		log.String("version", firstLine(version)))
	return nil
}

func (s *Storage) TableExists(ctx context.Context, table abstract.TableID) (bool, error) {
	var objectID sql.NullInt64
	if err := s.db.GetContext(ctx, &objectID, queryTableExists, table.Fqtn()); err != nil {
		return false, xerrors.Errorf("unable to resolve object id of %v: %w", table, err)
	}
	return objectID.Valid, nil
}

func (s *Storage) TableList(ctx context.Context) ([]abstract.TableID, error) {
	var rows []struct {
		Schema string `db:"schema_name"`
		Name   string `db:"table_name"`
	}
	if err := s.db.SelectContext(ctx, &rows, queryTableList); err != nil {
		return nil, xerrors.Errorf("unable to list tables of %v: %w", s.params, err)
	}
	tables := make([]abstract.TableID, 0, len(rows))
	for _, row := range rows {
		tables = append(tables, abstract.TableID{Namespace: row.Schema, Name: row.Name})
	}
	return tables, nil
}

func (s *Storage) PartitionCount(ctx context.Context, table abstract.TableID) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, queryPartitionCount, table.Fqtn()); err != nil {
		return 0, xerrors.Errorf("unable to count partitions of %v: %w", table, err)
	}
	return count, nil
}

func (s *Storage) PartitionKeyInfo(ctx context.Context, table abstract.TableID) (*abstract.PartitionKey, error) {
	var keys []struct {
		Function string `db:"function_name"`
		Column   string `db:"column_name"`
	}
	if err := s.db.SelectContext(ctx, &keys, queryPartitionKeyInfo, table.Fqtn()); err != nil {
		return nil, xerrors.Errorf("unable to query partition key of %v: %w", table, err)
	}
	if len(keys) == 0 {
		return nil, xerrors.Errorf("table %v: %w", table, abstract.ErrNoPartitionKey)
	}
	return &abstract.PartitionKey{
		Function: keys[0].Function,
		Column:   keys[0].Column,
	}, nil
}

func (s *Storage) TruncateTable(ctx context.Context, table abstract.TableID) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("truncate table %v", table.Fqtn())); err != nil {
		return xerrors.Errorf("unable to truncate %v: %w", table, err)
	}
	return nil
}

func (s *Storage) StreamRows(ctx context.Context, table abstract.TableID, predicate string) (abstract.RowCursor, error) {
	query := fmt.Sprintf("select * from %v", table.Fqtn())
	if predicate != "" {
		query = fmt.Sprintf("%v where %v", query, predicate)
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, xerrors.Errorf("unable to open row stream from %v: %w", table, err)
	}
	columns, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, xerrors.Errorf("unable to read column list of %v: %w", table, err)
	}
	return &rowCursor{rows: rows, columns: columns}, nil
}

func (s *Storage) SampleThroughput(ctx context.Context, counter string, window time.Duration) (float64, error) {
	var rate sql.NullFloat64
	err := s.db.GetContext(ctx, &rate, queryThroughputSample, counter, formatDelay(window), window.Seconds())
	if err != nil {
		return 0, xerrors.Errorf("unable to sample counter %q on %v: %w", counter, s.params, err)
	}
	if !rate.Valid {
		return 0, xerrors.Errorf("counter %q is not exposed by %v", counter, s.params)
	}
	return rate.Float64, nil
}

func (s *Storage) DatabaseIsReadOnly(ctx context.Context) (bool, error) {
	var updateability string
	if err := s.db.GetContext(ctx, &updateability, queryDatabaseUpdateability); err != nil {
		return false, xerrors.Errorf("unable to query updateability of %v: %w", s.params, err)
	}
	return updateability == "READ_ONLY", nil
}

func (s *Storage) DatabaseIsSnapshot(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, queryDatabaseIsSnapshot); err != nil {
		return false, xerrors.Errorf("unable to query snapshot state of %v: %w", s.params, err)
	}
	return count > 0, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// formatDelay renders a duration as the hh:mm:ss form WAITFOR DELAY expects.
func formatDelay(window time.Duration) string {
	window = window.Round(time.Second)
	seconds := int(window.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds/60)%60, seconds%60)
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[:idx])
	}
	return strings.TrimSpace(text)
}
