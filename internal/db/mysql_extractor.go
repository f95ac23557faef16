package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tordrt/colgen/internal/errs"
	"github.com/tordrt/colgen/internal/schema"
)

// MySQLExtractor describes MySQL tables as entities
type MySQLExtractor struct {
	client     *MySQLClient
	schemaName string
}

// NewMySQLExtractor creates a new MySQL entity extractor
func NewMySQLExtractor(client *MySQLClient, schemaName string) *MySQLExtractor {
	return &MySQLExtractor{
		client:     client,
		schemaName: schemaName,
	}
}

// ExtractEntities describes the specified tables
// If tables is empty, describes all tables in the schema
func (e *MySQLExtractor) ExtractEntities(ctx context.Context, tables []string) ([]schema.Entity, error) {
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
func (e *MySQLExtractor) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}

	return tables, rows.Err()
}

// extractEntity describes a single table
func (e *MySQLExtractor) extractEntity(ctx context.Context, tableName string) (*schema.Entity, error) {
	properties, err := e.extractProperties(ctx, tableName)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to extract columns", err)
	}
	if len(properties) == 0 {
		return nil, errs.Newf(errs.ErrKindNotFound, "table %s.%s does not exist", e.schemaName, tableName)
	}

	pk, err := e.extractPrimaryKey(ctx, tableName)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to extract primary key", err)
	}

	return &schema.Entity{Name: tableName, Properties: properties, KeyMembers: pk}, nil
}

// extractProperties describes the columns of a table
func (e *MySQLExtractor) extractProperties(ctx context.Context, tableName string) ([]schema.Property, error) {
	query := `
		SELECT
			c.column_name,
			c.column_type,
			c.data_type,
			c.is_nullable,
			c.column_default,
			CASE WHEN EXISTS (
				SELECT 1 FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage kcu
					ON tc.constraint_name = kcu.constraint_name
					AND tc.table_schema = kcu.table_schema
					AND tc.table_name = kcu.table_name
				WHERE tc.table_schema = ?
					AND tc.table_name = ?
					AND tc.constraint_type = 'UNIQUE'
					AND kcu.column_name = c.column_name
					AND (
						SELECT count(*) FROM information_schema.key_column_usage k2
						WHERE k2.constraint_name = tc.constraint_name
							AND k2.table_schema = tc.table_schema
							AND k2.table_name = tc.table_name
					) = 1
			) THEN true ELSE false END as is_unique,
			c.character_maximum_length,
			c.extra
		FROM information_schema.columns c
		WHERE c.table_schema = ? AND c.table_name = ?
		ORDER BY c.ordinal_position
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName, tableName, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []schema.Property
	for rows.Next() {
		var name, columnType, dataType, nullable, extra string
		var defaultVal sql.NullString
		var isUnique bool
		var charMaxLength sql.NullInt64

		if err := rows.Scan(&name, &columnType, &dataType, &nullable, &defaultVal, &isUnique, &charMaxLength, &extra); err != nil {
			return nil, err
		}

		var maxLength *int
		if charMaxLength.Valid {
			maxLength = schema.IntPtr(int(charMaxLength.Int64))
		}

		st := mapSourceType(dataType, maxLength)
		// tinyint(1) is how MySQL spells BOOLEAN
		if strings.EqualFold(columnType, "tinyint(1)") {
			st = storeType{Name: "BOOL", Kind: schema.KindBoolean}
		}

		p := schema.Property{
			Name:      name,
			StoreType: st.Name,
			Nullable:  nullable == "YES",
			MaxLength: st.MaxLength,
			Kind:      st.Kind,
		}

		if strings.Contains(strings.ToLower(extra), "auto_increment") {
			p.Identity = true
			p.Decorations.Autoincrement = true
		}
		if isUnique {
			p.Decorations.Uniqueness = &schema.Uniqueness{}
		}
		// MySQL reports string defaults without quotes
		if defaultVal.Valid {
			p.Decorations.DefaultValue = normalizeDefault(defaultVal.String, st.Kind, false)
		}

		properties = append(properties, p)
	}

	return properties, rows.Err()
}

// extractPrimaryKey extracts primary key columns
func (e *MySQLExtractor) extractPrimaryKey(ctx context.Context, tableName string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ?
			AND table_name = ?
			AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pk []string
	for rows.Next() {
		var colName string
		if err := rows.Scan(&colName); err != nil {
			return nil, err
		}
		pk = append(pk, colName)
	}

	return pk, rows.Err()
}
