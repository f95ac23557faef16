package schema

import (
	"fmt"
	"strings"
)

// PrimitiveKind classifies the underlying value type of a property
type PrimitiveKind int

const (
	KindOther PrimitiveKind = iota
	KindString
	KindInteger
	KindReal
	KindBoolean
	KindDateTime
	KindBinary
)

var primitiveKindNames = map[PrimitiveKind]string{
	KindOther:    "Other",
	KindString:   "String",
	KindInteger:  "Integer",
	KindReal:     "Real",
	KindBoolean:  "Boolean",
	KindDateTime: "DateTime",
	KindBinary:   "Binary",
}

func (k PrimitiveKind) String() string {
	if name, ok := primitiveKindNames[k]; ok {
		return name
	}
	return primitiveKindNames[KindOther]
}

// ParsePrimitiveKind resolves a kind name case-insensitively. An empty name is KindOther.
func ParsePrimitiveKind(s string) (PrimitiveKind, error) {
	if s == "" {
		return KindOther, nil
	}
	for kind, name := range primitiveKindNames {
		if strings.EqualFold(name, s) {
			return kind, nil
		}
	}
	return KindOther, fmt.Errorf("unknown primitive kind: %s", s)
}

// CollationFunction is one of SQLite's built-in collating functions, or Custom
type CollationFunction int

const (
	CollationNone CollationFunction = iota
	CollationBinary
	CollationNoCase
	CollationRTrim
	CollationCustom
)

var collationFunctionNames = map[CollationFunction]string{
	CollationNone:   "NONE",
	CollationBinary: "BINARY",
	CollationNoCase: "NOCASE",
	CollationRTrim:  "RTRIM",
	CollationCustom: "CUSTOM",
}

func (f CollationFunction) String() string {
	if name, ok := collationFunctionNames[f]; ok {
		return name
	}
	return collationFunctionNames[CollationNone]
}

// ParseCollationFunction resolves a collating function name case-insensitively
func ParseCollationFunction(s string) (CollationFunction, error) {
	if s == "" {
		return CollationNone, nil
	}
	for fn, name := range collationFunctionNames {
		if strings.EqualFold(name, s) {
			return fn, nil
		}
	}
	return CollationNone, fmt.Errorf("unknown collation function: %s", s)
}

// OnConflict is SQLite's conflict resolution algorithm for a constraint violation
type OnConflict int

const (
	OnConflictNone OnConflict = iota
	OnConflictRollback
	OnConflictAbort
	OnConflictFail
	OnConflictIgnore
	OnConflictReplace
)

var onConflictNames = map[OnConflict]string{
	OnConflictNone:     "NONE",
	OnConflictRollback: "ROLLBACK",
	OnConflictAbort:    "ABORT",
	OnConflictFail:     "FAIL",
	OnConflictIgnore:   "IGNORE",
	OnConflictReplace:  "REPLACE",
}

func (c OnConflict) String() string {
	if name, ok := onConflictNames[c]; ok {
		return name
	}
	return onConflictNames[OnConflictNone]
}

// ParseOnConflict resolves a conflict resolution name case-insensitively
func ParseOnConflict(s string) (OnConflict, error) {
	if s == "" {
		return OnConflictNone, nil
	}
	for mode, name := range onConflictNames {
		if strings.EqualFold(name, s) {
			return mode, nil
		}
	}
	return OnConflictNone, fmt.Errorf("unknown conflict resolution: %s", s)
}

// Collation names a collating function. CustomFunction is only meaningful
// when Function is CollationCustom.
type Collation struct {
	Function       CollationFunction
	CustomFunction string
}

// CaseSensitivity marks a column as explicitly case sensitive or not
type CaseSensitivity struct {
	IsCaseSensitive bool
}

// Uniqueness marks a column as unique
type Uniqueness struct {
	OnConflict OnConflict
}

// DefaultValue holds a literal SQL default expression, used verbatim
type DefaultValue struct {
	Value string
}

// Decorations holds the optional per-property configuration. A nil pointer
// means the decoration is absent.
type Decorations struct {
	CaseSensitivity *CaseSensitivity
	Collation       *Collation
	Uniqueness      *Uniqueness
	DefaultValue    *DefaultValue
	Autoincrement   bool
}

// Property describes one mapped property of an entity
type Property struct {
	Name        string
	StoreType   string
	Nullable    bool
	MaxLength   *int
	Kind        PrimitiveKind
	Identity    bool // value generated by the store on insert
	Decorations Decorations
}

// Entity is a named set of properties plus the names of its key members
type Entity struct {
	Name       string
	Properties []Property
	KeyMembers []string
}

// Property looks up a property by name
func (e *Entity) Property(name string) (*Property, bool) {
	for i := range e.Properties {
		if e.Properties[i].Name == name {
			return &e.Properties[i], true
		}
	}
	return nil, false
}

// Keys returns the key member properties in key order, skipping names that
// do not resolve to a property.
func (e *Entity) Keys() []Property {
	keys := make([]Property, 0, len(e.KeyMembers))
	for _, name := range e.KeyMembers {
		if p, ok := e.Property(name); ok {
			keys = append(keys, *p)
		}
	}
	return keys
}

// IntPtr returns a pointer to n
func IntPtr(n int) *int {
	return &n
}
