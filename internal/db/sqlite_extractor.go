package db

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/tordrt/colgen/internal/errs"
	"github.com/tordrt/colgen/internal/schema"
)

// SQLiteExtractor describes SQLite tables as entities
type SQLiteExtractor struct {
	client *SQLiteClient
}

// NewSQLiteExtractor creates a new SQLite entity extractor
func NewSQLiteExtractor(client *SQLiteClient) *SQLiteExtractor {
	return &SQLiteExtractor{
		client: client,
	}
}

// ExtractEntities describes the specified tables
// If tables is empty, describes all tables in the database
func (e *SQLiteExtractor) ExtractEntities(ctx context.Context, tables []string) ([]schema.Entity, error) {
	var entities []schema.Entity

	tableNames, err := e.getTableNames(ctx, tables)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to get table names", err)
	}

	for _, tableName := range tableNames {
		entity, err := e.extractEntity(ctx, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to extract table %s: %w", tableName, err)
		}
		entities = append(entities, *entity)
	}

	return entities, nil
}

// getTableNames returns the list of tables to extract
func (e *SQLiteExtractor) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tableList []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tableList = append(tableList, tableName)
	}

	return tableList, rows.Err()
}

// sqliteColumn is one row of PRAGMA table_info
type sqliteColumn struct {
	Name         string
	Type         string
	NotNull      bool
	DefaultValue sql.NullString
	PKOrder      int
}

// queryer is satisfied by *sql.DB and *sql.Tx
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// tableInfo reads PRAGMA table_info, returning the columns and the primary key in key order
func tableInfo(ctx context.Context, db queryer, tableName string) ([]sqliteColumn, []string, error) {
	query := fmt.Sprintf("PRAGMA table_info(%s)", quoteIdentifier(tableName))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var columns []sqliteColumn
	for rows.Next() {
		var cid, notNull int
		var col sqliteColumn

		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &col.DefaultValue, &col.PKOrder); err != nil {
			return nil, nil, err
		}
		col.NotNull = notNull != 0
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	// pk holds the 1-based position within the key
	pk := make([]string, 0)
	for order := 1; ; order++ {
		found := false
		for _, col := range columns {
			if col.PKOrder == order {
				pk = append(pk, col.Name)
				found = true
			}
		}
		if !found {
			break
		}
	}

	return columns, pk, nil
}

// extractEntity describes a single table
func (e *SQLiteExtractor) extractEntity(ctx context.Context, tableName string) (*schema.Entity, error) {
	columns, pk, err := tableInfo(ctx, e.client.GetDB(), tableName)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to read columns", err)
	}
	if len(columns) == 0 {
		return nil, errs.Newf(errs.ErrKindNotFound, "table %s does not exist", tableName)
	}

	uniqueColumns, err := e.uniqueColumns(ctx, tableName)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to read unique indexes", err)
	}

	autoincrement, err := e.hasAutoincrement(ctx, tableName)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to read table definition", err)
	}

	entity := &schema.Entity{Name: tableName, KeyMembers: pk}

	for _, col := range columns {
		st := parseSQLiteType(col.Type)
		p := schema.Property{
			Name:      col.Name,
			StoreType: st.Name,
			Nullable:  !col.NotNull,
			MaxLength: st.MaxLength,
			Kind:      st.Kind,
		}

		// A single INTEGER PRIMARY KEY aliases the rowid and is generated on insert
		if len(pk) == 1 && pk[0] == col.Name && strings.EqualFold(st.Name, "INTEGER") {
			p.Identity = true
			p.Nullable = true
			p.Decorations.Autoincrement = autoincrement
		}

		if uniqueColumns[col.Name] {
			p.Decorations.Uniqueness = &schema.Uniqueness{}
		}
		if col.DefaultValue.Valid {
			p.Decorations.DefaultValue = normalizeDefault(col.DefaultValue.String, st.Kind, true)
		}

		entity.Properties = append(entity.Properties, p)
	}

	return entity, nil
}

// uniqueColumns returns the columns covered by a single-column UNIQUE constraint
func (e *SQLiteExtractor) uniqueColumns(ctx context.Context, tableName string) (map[string]bool, error) {
	query := fmt.Sprintf("PRAGMA index_list(%s)", quoteIdentifier(tableName))

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	var indexNames []string
	for rows.Next() {
		var seq, unique, partial int
		var name, origin string

		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			rows.Close()
			return nil, err
		}

		// "u" marks indexes created by a UNIQUE constraint, "pk" the primary key
		if unique == 1 && origin == "u" {
			indexNames = append(indexNames, name)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	unique := make(map[string]bool)
	for _, name := range indexNames {
		indexRows, err := e.client.GetDB().QueryContext(ctx, fmt.Sprintf("PRAGMA index_info(%s)", quoteIdentifier(name)))
		if err != nil {
			return nil, err
		}

		var indexColumns []string
		for indexRows.Next() {
			var seqno, cid int
			var colName sql.NullString

			if err := indexRows.Scan(&seqno, &cid, &colName); err != nil {
				indexRows.Close()
				return nil, err
			}
			if colName.Valid {
				indexColumns = append(indexColumns, colName.String)
			}
		}
		indexRows.Close()
		if err := indexRows.Err(); err != nil {
			return nil, err
		}

		if len(indexColumns) == 1 {
			unique[indexColumns[0]] = true
		}
	}

	return unique, nil
}

var (
	// ignoredText matches string literals, quoted identifiers and comments
	ignoredText = regexp.MustCompile(`'(?:[^']|'')*'|"(?:[^"]|"")*"|` + "`(?:[^`]|``)*`" + `|\[[^\]]*\]|--[^\n]*|/\*(?s:.*?)\*/`)

	autoincrementKey = regexp.MustCompile(`(?i)\bPRIMARY\s+KEY\s*(?:ASC\s*|DESC\s*)?(?:ON\s+CONFLICT\s+\w+\s*)?AUTOINCREMENT\b`)
)

// hasAutoincrement reports whether the table was declared with AUTOINCREMENT.
// Only a PRIMARY KEY clause counts; literals, quoted identifiers and comments are ignored.
func (e *SQLiteExtractor) hasAutoincrement(ctx context.Context, tableName string) (bool, error) {
	var ddl sql.NullString
	err := e.client.GetDB().QueryRowContext(ctx,
		"SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", tableName).Scan(&ddl)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return declaresAutoincrement(ddl.String), nil
}

func declaresAutoincrement(ddl string) bool {
	return autoincrementKey.MatchString(ignoredText.ReplaceAllString(ddl, " "))
}

// quoteIdentifier quotes a SQLite identifier with double quotes
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
