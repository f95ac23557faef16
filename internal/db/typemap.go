package db

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/tordrt/colgen/internal/schema"
)

// Extractor reads existing tables and describes them as entities
type Extractor interface {
	// ExtractEntities describes the given tables, or every table when tables is empty
	ExtractEntities(ctx context.Context, tables []string) ([]schema.Entity, error)
}

// storeType is the SQLite declaration chosen for a source column
type storeType struct {
	Name      string
	Kind      schema.PrimitiveKind
	MaxLength *int
}

// mapSourceType maps a PostgreSQL or MySQL data type to a SQLite store type.
// Integer types map to INT so identity and key columns are coerced to INTEGER.
func mapSourceType(dataType string, charMaxLength *int) storeType {
	t := strings.ToLower(strings.TrimSpace(dataType))

	switch t {
	case "smallint", "integer", "int", "int2", "int4", "int8", "bigint", "tinyint", "mediumint",
		"smallserial", "serial", "bigserial":
		return storeType{Name: "INT", Kind: schema.KindInteger}
	case "character varying", "varchar", "character", "char", "bpchar", "nvarchar", "nchar":
		return storeType{Name: "TEXT", Kind: schema.KindString, MaxLength: charMaxLength}
	case "text", "tinytext", "mediumtext", "longtext", "citext", "uuid", "json", "jsonb", "enum", "set", "xml":
		return storeType{Name: "TEXT", Kind: schema.KindString}
	case "boolean", "bool", "bit":
		return storeType{Name: "BOOL", Kind: schema.KindBoolean}
	case "real", "float", "float4", "float8", "double", "double precision", "numeric", "decimal", "money":
		return storeType{Name: "REAL", Kind: schema.KindReal}
	case "date", "time", "datetime", "timestamp", "year",
		"timestamp without time zone", "timestamp with time zone",
		"time without time zone", "time with time zone", "timestamptz", "timetz":
		return storeType{Name: "DATETIME", Kind: schema.KindDateTime}
	case "bytea", "blob", "tinyblob", "mediumblob", "longblob", "binary", "varbinary":
		return storeType{Name: "BLOB", Kind: schema.KindBinary}
	default:
		return storeType{Name: "TEXT", Kind: schema.KindOther}
	}
}

var sizedType = regexp.MustCompile(`^\s*([^(]*?)\s*\(\s*(\d+)\s*\)\s*$`)

// parseSQLiteType splits a declared SQLite type such as "VARCHAR (50)" into
// its name and size, and classifies it with SQLite's affinity rules.
func parseSQLiteType(declared string) storeType {
	name := strings.TrimSpace(declared)
	var maxLength *int
	if m := sizedType.FindStringSubmatch(declared); m != nil {
		name = m[1]
		if n, err := strconv.Atoi(m[2]); err == nil {
			maxLength = schema.IntPtr(n)
		}
	}

	upper := strings.ToUpper(name)
	var kind schema.PrimitiveKind
	switch {
	case strings.Contains(upper, "INT"):
		kind = schema.KindInteger
	case strings.Contains(upper, "CHAR"), strings.Contains(upper, "CLOB"), strings.Contains(upper, "TEXT"):
		kind = schema.KindString
	case strings.Contains(upper, "BLOB"):
		kind = schema.KindBinary
	case strings.Contains(upper, "REAL"), strings.Contains(upper, "FLOA"), strings.Contains(upper, "DOUB"):
		kind = schema.KindReal
	case strings.Contains(upper, "BOOL"):
		kind = schema.KindBoolean
	case strings.Contains(upper, "DATE"), strings.Contains(upper, "TIME"):
		kind = schema.KindDateTime
	default:
		kind = schema.KindOther
	}

	return storeType{Name: name, Kind: kind, MaxLength: maxLength}
}

var castSuffix = regexp.MustCompile(`::[a-zA-Z ]+(\[\])?$`)

// normalizeDefault turns a source column default into a SQLite default
// expression. Sequence defaults are dropped since the column becomes identity generated.
func normalizeDefault(raw string, kind schema.PrimitiveKind, quoted bool) *schema.DefaultValue {
	value := strings.TrimSpace(raw)
	if value == "" || strings.HasPrefix(strings.ToLower(value), "nextval(") {
		return nil
	}
	value = castSuffix.ReplaceAllString(value, "")

	upper := strings.ToUpper(value)
	switch upper {
	case "NULL":
		return nil
	case "CURRENT_TIMESTAMP", "CURRENT_TIMESTAMP()", "NOW()":
		return &schema.DefaultValue{Value: "CURRENT_TIMESTAMP"}
	case "CURRENT_DATE", "CURRENT_TIME":
		return &schema.DefaultValue{Value: upper}
	case "TRUE":
		return &schema.DefaultValue{Value: "1"}
	case "FALSE":
		return &schema.DefaultValue{Value: "0"}
	}

	if !quoted && (kind == schema.KindString || kind == schema.KindDateTime || kind == schema.KindOther) {
		value = "'" + strings.ReplaceAll(value, "'", "''") + "'"
	}
	return &schema.DefaultValue{Value: value}
}
