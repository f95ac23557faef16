// Package builder turns property descriptors into SQLite column statements.
package builder

import (
	"strings"

	"github.com/tordrt/colgen/internal/errs"
	"github.com/tordrt/colgen/internal/schema"
	"github.com/tordrt/colgen/internal/statement"
)

const integerType = "INTEGER"

// ColumnStatementBuilder builds the column statements of a single entity.
// A builder holds no mutable state; Build may be called repeatedly.
type ColumnStatementBuilder struct {
	entityName       string
	properties       []schema.Property
	keyMembers       []schema.Property
	defaultCollation *schema.Collation
}

// NewColumnStatementBuilder creates a builder for the given entity.
// defaultCollation applies to string properties without their own collation and may be nil.
func NewColumnStatementBuilder(entityName string, properties, keyMembers []schema.Property, defaultCollation *schema.Collation) *ColumnStatementBuilder {
	return &ColumnStatementBuilder{
		entityName:       entityName,
		properties:       properties,
		keyMembers:       keyMembers,
		defaultCollation: defaultCollation,
	}
}

// ForEntity creates a builder from an entity description
func ForEntity(entity schema.Entity, defaultCollation *schema.Collation) *ColumnStatementBuilder {
	return NewColumnStatementBuilder(entity.Name, entity.Properties, entity.Keys(), defaultCollation)
}

// Build returns one column statement per property, in property order.
// On error no statements are returned.
func (b *ColumnStatementBuilder) Build() (statement.ColumnStatementCollection, error) {
	columns := make(statement.ColumnStatementCollection, 0, len(b.properties))

	for _, property := range b.properties {
		column := statement.ColumnStatement{
			ColumnName: property.Name,
			TypeName:   property.StoreType,
		}

		addMaxLengthConstraint(property, &column)
		adjustTypeForIdentity(property, &column)
		addNotNullConstraint(property, &column)
		addUniqueConstraint(property, &column)
		addCaseSensitiveConstraint(property, &column)
		if err := b.addCollateConstraint(property, &column); err != nil {
			return nil, err
		}
		b.addPrimaryKeyConstraint(property, &column)
		addDefaultValueConstraint(property, &column)

		columns = append(columns, column)
	}

	return columns, nil
}

func addMaxLengthConstraint(property schema.Property, column *statement.ColumnStatement) {
	if property.MaxLength != nil {
		column.Constraints = append(column.Constraints, statement.MaxLengthConstraint{MaxLength: *property.MaxLength})
	}
}

func adjustTypeForIdentity(property schema.Property, column *statement.ColumnStatement) {
	// SQLite only generates values for INTEGER columns
	if property.Identity {
		convertIntegerType(column)
	}
}

func addNotNullConstraint(property schema.Property, column *statement.ColumnStatement) {
	if !property.Nullable && !property.Identity {
		column.Constraints = append(column.Constraints, statement.NotNullConstraint{})
	}
}

func addUniqueConstraint(property schema.Property, column *statement.ColumnStatement) {
	if u := property.Decorations.Uniqueness; u != nil {
		column.Constraints = append(column.Constraints, statement.UniqueConstraint{OnConflict: u.OnConflict})
	}
}

func addCaseSensitiveConstraint(property schema.Property, column *statement.ColumnStatement) {
	if cs := property.Decorations.CaseSensitivity; cs != nil {
		column.Constraints = append(column.Constraints, statement.CaseSensitiveConstraint{IsCaseSensitive: cs.IsCaseSensitive})
	}
}

func (b *ColumnStatementBuilder) addCollateConstraint(property schema.Property, column *statement.ColumnStatement) error {
	explicit := property.Decorations.Collation

	if property.Kind != schema.KindString {
		if explicit == nil {
			return nil
		}
		return &errs.InvalidDecorationError{
			Decoration: "collation",
			Property:   b.entityName + "." + property.Name,
			Underlying: property.Kind.String(),
		}
	}

	// An explicit collation takes precedence over the default one
	value := explicit
	if value == nil {
		value = b.defaultCollation
	}
	if value == nil {
		return nil
	}

	column.Constraints = append(column.Constraints, statement.CollateConstraint{
		CollationFunction:       value.Function,
		CustomCollationFunction: value.CustomFunction,
	})
	return nil
}

func (b *ColumnStatementBuilder) addPrimaryKeyConstraint(property schema.Property, column *statement.ColumnStatement) {
	// Composite keys are a table constraint
	if len(b.keyMembers) != 1 || b.keyMembers[0].Name != property.Name {
		return
	}

	convertIntegerType(column)
	column.Constraints = append(column.Constraints, statement.PrimaryKeyConstraint{
		Autoincrement: property.Decorations.Autoincrement,
	})
}

func addDefaultValueConstraint(property schema.Property, column *statement.ColumnStatement) {
	if d := property.Decorations.DefaultValue; d != nil {
		column.Constraints = append(column.Constraints, statement.DefaultValueConstraint{DefaultValue: d.Value})
	}
}

// convertIntegerType rewrites INT to INTEGER, the only type SQLite treats as a rowid alias.
// Every other type is kept as declared.
func convertIntegerType(column *statement.ColumnStatement) {
	if strings.EqualFold(column.TypeName, "INT") {
		column.TypeName = integerType
	}
}
