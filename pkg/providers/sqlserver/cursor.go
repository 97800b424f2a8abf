package sqlserver

import (
	"database/sql"

	"github.com/sqlshift/sqlshift/pkg/abstract"
	"go.ytsaurus.tech/library/go/core/xerrors"
)

// rowCursor adapts *sql.Rows to the engine's cursor contract. Values are
// kept in driver-native types so the bulk writer can feed them back without
// reinterpretation.
type rowCursor struct {
	rows    *sql.Rows
	columns []string
}

var _ abstract.RowCursor = (*rowCursor)(nil)

func (c *rowCursor) Columns() []string {
	return c.columns
}

func (c *rowCursor) Next() bool {
	return c.rows.Next()
}

func (c *rowCursor) Values() ([]interface{}, error) {
	values := make([]interface{}, len(c.columns))
	pointers := make([]interface{}, len(c.columns))
	for i := range values {
		pointers[i] = &values[i]
	}
	if err := c.rows.Scan(pointers...); err != nil {
		return nil, xerrors.Errorf("unable to scan row: %w", err)
	}
	return values, nil
}

func (c *rowCursor) Err() error {
	return c.rows.Err()
}

func (c *rowCursor) Close() error {
	return c.rows.Close()
}
