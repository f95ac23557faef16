package formatter

import (
	"fmt"
	"io"
	"strings"
)

// TextFormatter formats column statements as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes one TABLE block per entity
func (f *TextFormatter) Format(entities []EntityColumns) error {
	for i, entity := range entities {
		if i > 0 {
			if _, err := fmt.Fprintln(f.writer); err != nil { // Blank line between tables
				return writeError(err)
			}
		}

		if err := f.formatEntity(entity); err != nil {
			return writeError(err)
		}
	}
	return nil
}

func (f *TextFormatter) formatEntity(entity EntityColumns) error {
	// Table header with primary key
	pkStr := ""
	if len(entity.KeyMembers) > 0 {
		pkStr = fmt.Sprintf(" (PK: %s)", strings.Join(entity.KeyMembers, ", "))
	}
	if _, err := fmt.Fprintf(f.writer, "TABLE %s%s\n", entity.Name, pkStr); err != nil {
		return err
	}

	for _, col := range entity.Columns {
		if _, err := fmt.Fprintf(f.writer, "  %s\n", col.CreateStatement()); err != nil {
			return err
		}
	}
	return nil
}
