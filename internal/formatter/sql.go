package formatter

import (
	"fmt"
	"io"
)

// SQLFormatter writes the column definitions exactly as they appear inside CREATE TABLE
type SQLFormatter struct {
	writer io.Writer
}

// NewSQLFormatter creates a new SQL formatter
func NewSQLFormatter(w io.Writer) *SQLFormatter {
	return &SQLFormatter{writer: w}
}

// Format writes a comment line naming each entity followed by its column definitions
func (f *SQLFormatter) Format(entities []EntityColumns) error {
	for i, entity := range entities {
		sep := ""
		if i > 0 {
			sep = "\n"
		}
		if _, err := fmt.Fprintf(f.writer, "%s-- %s\n%s\n", sep, entity.Name, entity.Columns.CreateStatement()); err != nil {
			return writeError(err)
		}
	}
	return nil
}
