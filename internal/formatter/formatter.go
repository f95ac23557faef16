// Package formatter writes generated column statements as text, SQL or markdown.
package formatter

import (
	"fmt"
	"io"

	"github.com/tordrt/colgen/internal/errs"
	"github.com/tordrt/colgen/internal/statement"
)

// Output formats
const (
	FormatText     = "text"
	FormatSQL      = "sql"
	FormatMarkdown = "markdown"
)

// EntityColumns is the generated column list of one entity
type EntityColumns struct {
	Name       string
	KeyMembers []string
	Columns    statement.ColumnStatementCollection
}

// Formatter writes a set of generated entities
type Formatter interface {
	Format(entities []EntityColumns) error
}

// New returns the single-stream formatter for format
func New(format string, w io.Writer) (Formatter, error) {
	switch format {
	case FormatText, "":
		return NewTextFormatter(w), nil
	case FormatSQL:
		return NewSQLFormatter(w), nil
	case FormatMarkdown:
		return NewMarkdownFormatter(w), nil
	default:
		return nil, errs.Newf(errs.ErrKindInvalidInput, "unknown output format %q (must be text, sql or markdown)", format)
	}
}

// Extension returns the file extension used for format
func Extension(format string) string {
	switch format {
	case FormatSQL:
		return ".sql"
	case FormatMarkdown:
		return ".md"
	default:
		return ".txt"
	}
}

// writeError wraps the first write failure of a formatter
func writeError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to write output: %w", err)
}
