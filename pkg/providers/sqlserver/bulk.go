package sqlserver

import (
	"context"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/sqlshift/sqlshift/pkg/abstract"
	"go.ytsaurus.tech/library/go/core/xerrors"
)

// BulkLoad drains the cursor into table through the driver's bulk copy path.
// The statement is prepared on a dedicated session because the bulk protocol
// owns its connection until the final flush. TABLOCK is always requested and
// no execution timeout is set: a large partition takes as long as it takes.
func (s *Storage) BulkLoad(ctx context.Context, table abstract.TableID, rows abstract.RowCursor, opts abstract.BulkLoadOptions) (int64, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return 0, xerrors.Errorf("unable to acquire connection to %v: %w", s.params, err)
	}
	defer conn.Close()

	bulkOptions := mssql.BulkOptions{
		Tablock:      true,
		RowsPerBatch: opts.BatchSize,
	}
	stmt, err := conn.PrepareContext(ctx, mssql.CopyIn(table.Fqtn(), bulkOptions, rows.Columns()...))
	if err != nil {
		return 0, xerrors.Errorf("unable to prepare bulk copy into %v: %w", table, err)
	}
	defer stmt.Close()

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return 0, xerrors.Errorf("row stream into %v broke: %w", table, err)
		}
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return 0, xerrors.Errorf("unable to feed row into bulk copy of %v: %w", table, err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, xerrors.Errorf("row stream into %v failed: %w", table, err)
	}

	// Final parameterless exec flushes the accumulated rows.
	result, err := stmt.ExecContext(ctx)
	if err != nil {
		return 0, xerrors.Errorf("unable to finalize bulk copy into %v: %w", table, err)
	}
	written, err := result.RowsAffected()
	if err != nil {
		return 0, xerrors.Errorf("unable to read bulk copy row count for %v: %w", table, err)
	}
	return written, nil
}
