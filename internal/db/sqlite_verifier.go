package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/tordrt/colgen/internal/errs"
	"github.com/tordrt/colgen/internal/statement"
)

// Verifier runs generated column definitions through SQLite.
// Each check happens inside a transaction that is rolled back, so the
// database is left untouched.
type Verifier struct {
	client *SQLiteClient
}

// NewVerifier creates a verifier on top of an open SQLite client
func NewVerifier(client *SQLiteClient) *Verifier {
	return &Verifier{client: client}
}

// Verify creates a table named tableName from columns and checks that SQLite
// reports the same column names, in order, with the declared types.
func (v *Verifier) Verify(ctx context.Context, tableName string, columns statement.ColumnStatementCollection) error {
	if len(columns) == 0 {
		return errs.Newf(errs.ErrKindInvalidInput, "table %s has no columns", tableName)
	}

	tx, err := v.client.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return errs.Wrap(errs.ErrKindQueryFailed, "failed to begin verification", err)
	}
	defer func() { _ = tx.Rollback() }()

	ddl := fmt.Sprintf("CREATE TABLE %s (\n%s\n)", quoteIdentifier(tableName), columns.CreateStatement())
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return errs.Wrap(errs.ErrKindQueryFailed, fmt.Sprintf("SQLite rejected the columns of %s", tableName), err)
	}

	reported, _, err := tableInfo(ctx, tx, tableName)
	if err != nil {
		return errs.Wrap(errs.ErrKindQueryFailed, "failed to read back columns", err)
	}

	if len(reported) != len(columns) {
		return errs.Newf(errs.ErrKindQueryFailed, "%s: SQLite reports %d columns, generated %d", tableName, len(reported), len(columns))
	}
	for i, col := range columns {
		got := reported[i]
		if got.Name != col.ColumnName {
			return errs.Newf(errs.ErrKindQueryFailed, "%s: column %d is %s, generated %s", tableName, i, got.Name, col.ColumnName)
		}
		if !strings.HasPrefix(strings.ToUpper(got.Type), strings.ToUpper(col.TypeName)) {
			return errs.Newf(errs.ErrKindQueryFailed, "%s.%s: SQLite reports type %s, generated %s", tableName, got.Name, got.Type, col.TypeName)
		}
	}

	return nil
}
