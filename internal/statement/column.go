package statement

import "strings"

// ColumnStatement is one column definition of a CREATE TABLE body
type ColumnStatement struct {
	ColumnName  string
	TypeName    string
	Constraints []ColumnConstraint
}

// CreateStatement renders "[name] TYPE constraint...", constraints in order.
// Constraints that render to an empty fragment are skipped.
func (s ColumnStatement) CreateStatement() string {
	parts := []string{quoteName(s.ColumnName), s.TypeName}
	for _, c := range s.Constraints {
		if fragment := c.CreateStatement(); fragment != "" {
			parts = append(parts, fragment)
		}
	}
	return strings.Join(parts, " ")
}

// ColumnStatementCollection is the ordered column list of one entity
type ColumnStatementCollection []ColumnStatement

// CreateStatement joins the rendered columns with ",\n".
func (c ColumnStatementCollection) CreateStatement() string {
	lines := make([]string, len(c))
	for i, s := range c {
		lines[i] = s.CreateStatement()
	}
	return strings.Join(lines, ",\n")
}

// Names returns the column names in order
func (c ColumnStatementCollection) Names() []string {
	names := make([]string, len(c))
	for i, s := range c {
		names[i] = s.ColumnName
	}
	return names
}

// quoteName brackets a column name. Brackets cannot escape "]", so such names
// are double-quoted with embedded quotes doubled.
func quoteName(name string) string {
	if !strings.Contains(name, "]") {
		return "[" + name + "]"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
