package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/tordrt/colgen/internal/errs"
	"github.com/tordrt/colgen/internal/schema"
)

// PostgresExtractor describes PostgreSQL tables as entities
type PostgresExtractor struct {
	client *PostgresClient
	schema string
}

// NewPostgresExtractor creates a new PostgreSQL entity extractor
func NewPostgresExtractor(client *PostgresClient, schemaName string) *PostgresExtractor {
	return &PostgresExtractor{
		client: client,
		schema: schemaName,
	}
}

// ExtractEntities describes the specified tables
// If tables is empty, describes all tables in the schema
func (e *PostgresExtractor) ExtractEntities(ctx context.Context, tables []string) ([]schema.Entity, error) {
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
func (e *PostgresExtractor) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema)
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
func (e *PostgresExtractor) extractEntity(ctx context.Context, tableName string) (*schema.Entity, error) {
	properties, err := e.extractProperties(ctx, tableName)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to extract columns", err)
	}
	if len(properties) == 0 {
		return nil, errs.Newf(errs.ErrKindNotFound, "table %s.%s does not exist", e.schema, tableName)
	}

	pk, err := e.extractPrimaryKey(ctx, tableName)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to extract primary key", err)
	}

	return &schema.Entity{Name: tableName, Properties: properties, KeyMembers: pk}, nil
}

// pgColumn is one row of information_schema.columns
type pgColumn struct {
	name          string
	dataType      string
	udtName       string
	nullable      string
	defaultValue  *string
	isUnique      bool
	charMaxLength *int
	isIdentity    string
}

// extractProperties describes the columns of a table
func (e *PostgresExtractor) extractProperties(ctx context.Context, tableName string) ([]schema.Property, error) {
	// Only constraints over a single column make the column itself unique
	query := `
		SELECT
			c.column_name,
			c.data_type,
			c.udt_name,
			c.is_nullable,
			c.column_default,
			CASE WHEN EXISTS (
				SELECT 1 FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage kcu
					ON tc.constraint_name = kcu.constraint_name
					AND tc.table_schema = kcu.table_schema
					AND tc.table_name = kcu.table_name
				WHERE tc.table_schema = $1
					AND tc.table_name = $2
					AND tc.constraint_type = 'UNIQUE'
					AND kcu.column_name = c.column_name
					AND (
						SELECT count(*) FROM information_schema.key_column_usage k2
						WHERE k2.constraint_name = tc.constraint_name
							AND k2.table_schema = tc.table_schema
					) = 1
			) THEN true ELSE false END as is_unique,
			c.character_maximum_length,
			c.is_identity
		FROM information_schema.columns c
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []pgColumn
	var userTypes []string

	// First pass: collect all columns and user-defined type names
	for rows.Next() {
		var col pgColumn
		if err := rows.Scan(&col.name, &col.dataType, &col.udtName, &col.nullable, &col.defaultValue,
			&col.isUnique, &col.charMaxLength, &col.isIdentity); err != nil {
			return nil, err
		}

		if col.dataType == "USER-DEFINED" {
			userTypes = append(userTypes, col.udtName)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Second pass: enum columns hold labels, so they become strings
	enums, err := e.extractEnumTypes(ctx, userTypes)
	if err != nil {
		return nil, err
	}

	properties := make([]schema.Property, 0, len(columns))
	for _, col := range columns {
		st := mapSourceType(col.dataType, col.charMaxLength)
		if enums[col.udtName] {
			st = storeType{Name: "TEXT", Kind: schema.KindString}
		}

		p := schema.Property{
			Name:      col.name,
			StoreType: st.Name,
			Nullable:  col.nullable == "YES",
			MaxLength: st.MaxLength,
			Kind:      st.Kind,
		}

		serial := col.defaultValue != nil && strings.HasPrefix(strings.ToLower(*col.defaultValue), "nextval(")
		if serial || col.isIdentity == "YES" {
			p.Identity = true
			p.Decorations.Autoincrement = true
		}
		if col.isUnique {
			p.Decorations.Uniqueness = &schema.Uniqueness{}
		}
		if col.defaultValue != nil {
			p.Decorations.DefaultValue = normalizeDefault(*col.defaultValue, st.Kind, true)
		}

		properties = append(properties, p)
	}

	return properties, nil
}

// extractEnumTypes reports which of the given type names are enums
func (e *PostgresExtractor) extractEnumTypes(ctx context.Context, typeNames []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(typeNames) == 0 {
		return result, nil
	}

	query := `
		SELECT DISTINCT t.typname
		FROM pg_type t
		JOIN pg_enum e ON t.oid = e.enumtypid
		JOIN pg_namespace n ON t.typnamespace = n.oid
		WHERE n.nspname = $1 AND t.typname = ANY($2)
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema, typeNames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var typName string
		if err := rows.Scan(&typName); err != nil {
			return nil, err
		}
		result[typName] = true
	}

	return result, rows.Err()
}

// extractPrimaryKey extracts primary key columns
func (e *PostgresExtractor) extractPrimaryKey(ctx context.Context, tableName string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = $1
			AND table_name = $2
			AND constraint_name IN (
				SELECT constraint_name
				FROM information_schema.table_constraints
				WHERE table_schema = $1
					AND table_name = $2
					AND constraint_type = 'PRIMARY KEY'
			)
		ORDER BY ordinal_position
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema, tableName)
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
