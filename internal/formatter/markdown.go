package formatter

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownFormatter formats column statements as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the entities as a markdown document
func (f *MarkdownFormatter) Format(entities []EntityColumns) error {
	if _, err := fmt.Fprint(f.writer, "# Column Definitions\n\n"); err != nil {
		return writeError(err)
	}

	for _, entity := range entities {
		if err := f.FormatEntity(entity); err != nil {
			return err
		}
	}
	return nil
}

// FormatEntity formats a single entity (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatEntity(entity EntityColumns) error {
	var b strings.Builder

	// Table header
	fmt.Fprintf(&b, "## %s\n\n", entity.Name)
	if len(entity.KeyMembers) > 0 {
		fmt.Fprintf(&b, "**Key:** %s\n\n", strings.Join(entity.KeyMembers, ", "))
	}

	b.WriteString("### Columns\n\n")
	for _, col := range entity.Columns {
		fmt.Fprintf(&b, "- `%s`\n", col.CreateStatement())
	}
	b.WriteString("\n")

	_, err := io.WriteString(f.writer, b.String())
	return writeError(err)
}
