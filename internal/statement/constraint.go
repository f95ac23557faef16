// Package statement holds the SQLite column constraint model and the column
// statements assembled from it.
package statement

import (
	"fmt"

	"github.com/tordrt/colgen/internal/schema"
)

// ColumnConstraint renders a single SQLite column constraint.
// The set of implementations is closed to this package.
type ColumnConstraint interface {
	// CreateStatement returns the SQL fragment, or "" when the constraint
	// contributes nothing to the column definition.
	CreateStatement() string
	columnConstraint()
}

// MaxLengthConstraint bounds the declared size of the column type
type MaxLengthConstraint struct {
	MaxLength int
}

func (c MaxLengthConstraint) CreateStatement() string {
	return fmt.Sprintf("(%d)", c.MaxLength)
}

// NotNullConstraint forbids NULL values
type NotNullConstraint struct{}

func (NotNullConstraint) CreateStatement() string {
	return "NOT NULL"
}

// UniqueConstraint enforces unique values with an optional conflict clause
type UniqueConstraint struct {
	OnConflict schema.OnConflict
}

func (c UniqueConstraint) CreateStatement() string {
	if c.OnConflict == schema.OnConflictNone {
		return "UNIQUE"
	}
	return "UNIQUE ON CONFLICT " + c.OnConflict.String()
}

// CaseSensitiveConstraint makes comparisons case insensitive when
// IsCaseSensitive is false. Case sensitivity is SQLite's default, so the
// positive case renders nothing.
type CaseSensitiveConstraint struct {
	IsCaseSensitive bool
}

func (c CaseSensitiveConstraint) CreateStatement() string {
	if c.IsCaseSensitive {
		return ""
	}
	return "COLLATE NOCASE"
}

// CollateConstraint selects the collating function of the column
type CollateConstraint struct {
	CollationFunction       schema.CollationFunction
	CustomCollationFunction string
}

func (c CollateConstraint) CreateStatement() string {
	if c.CustomCollationFunction != "" {
		return "COLLATE " + c.CustomCollationFunction
	}
	switch c.CollationFunction {
	case schema.CollationNone, schema.CollationCustom:
		return ""
	default:
		return "COLLATE " + c.CollationFunction.String()
	}
}

// PrimaryKeyConstraint marks the column as the table's single-column primary key
type PrimaryKeyConstraint struct {
	Autoincrement bool
}

func (c PrimaryKeyConstraint) CreateStatement() string {
	if c.Autoincrement {
		return "PRIMARY KEY AUTOINCREMENT"
	}
	return "PRIMARY KEY"
}

// DefaultValueConstraint assigns a literal default expression
type DefaultValueConstraint struct {
	DefaultValue string
}

func (c DefaultValueConstraint) CreateStatement() string {
	return fmt.Sprintf("DEFAULT (%s)", c.DefaultValue)
}

func (MaxLengthConstraint) columnConstraint()     {}
func (NotNullConstraint) columnConstraint()       {}
func (UniqueConstraint) columnConstraint()        {}
func (CaseSensitiveConstraint) columnConstraint() {}
func (CollateConstraint) columnConstraint()       {}
func (PrimaryKeyConstraint) columnConstraint()    {}
func (DefaultValueConstraint) columnConstraint()  {}
