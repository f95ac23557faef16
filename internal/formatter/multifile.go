package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tordrt/colgen/internal/errs"
)

// OverviewName is the base name of the overview file written by MultiFileFormatter
const OverviewName = "_overview"

// CheckEntityName rejects entity names that cannot be used as a per-entity
// file name: path separators, "." and "..", and the overview name.
func CheckEntityName(name string) error {
	switch {
	case name == "" || name == "." || name == "..":
		return errs.Newf(errs.ErrKindInvalidInput, "invalid entity name: %q", name)
	case strings.ContainsAny(name, `/\`):
		return errs.Newf(errs.ErrKindInvalidInput, "entity name must not contain a path separator: %q", name)
	case strings.EqualFold(name, OverviewName):
		return errs.Newf(errs.ErrKindInvalidInput, "entity name %q is reserved", name)
	}
	return nil
}

// MultiFileFormatter writes generated columns to multiple files in a directory
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text", "sql" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes an overview file and one file per entity
func (f *MultiFileFormatter) Format(entities []EntityColumns) error {
	for _, entity := range entities {
		if err := CheckEntityName(entity.Name); err != nil {
			return err
		}
	}

	// Create output directory if it doesn't exist
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Write overview file
	if err := f.writeFile(OverviewName, func(w io.Writer) error {
		return f.writeOverview(w, entities)
	}); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	// Write per-entity files
	for _, entity := range entities {
		if err := f.writeFile(entity.Name, func(w io.Writer) error {
			single, err := New(f.OutputFormat, w)
			if err != nil {
				return err
			}
			return single.Format([]EntityColumns{entity})
		}); err != nil {
			return fmt.Errorf("failed to write file for %s: %w", entity.Name, err)
		}
	}

	return nil
}

func (f *MultiFileFormatter) writeFile(name string, write func(io.Writer) error) (err error) {
	filename := filepath.Join(f.OutputDir, name+Extension(f.OutputFormat))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	return write(file)
}

// writeOverview lists the entities alphabetically with their column counts
func (f *MultiFileFormatter) writeOverview(w io.Writer, entities []EntityColumns) error {
	sorted := make([]EntityColumns, len(entities))
	copy(sorted, entities)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	ext := Extension(f.OutputFormat)
	var b strings.Builder

	switch f.OutputFormat {
	case FormatMarkdown:
		b.WriteString("# Column Definitions Overview\n\n")
		fmt.Fprintf(&b, "Each entity has a corresponding file: `<entity_name>%s`\n\n", ext)
		b.WriteString("## Entities\n\n")
		for _, e := range sorted {
			fmt.Fprintf(&b, "- **%s** (%d columns)\n", e.Name, len(e.Columns))
		}
	case FormatSQL:
		fmt.Fprintf(&b, "-- Each entity has a file: <entity_name>%s\n", ext)
		for _, e := range sorted {
			fmt.Fprintf(&b, "-- %s (%d columns)\n", e.Name, len(e.Columns))
		}
	default:
		b.WriteString("COLUMN DEFINITIONS OVERVIEW\n")
		fmt.Fprintf(&b, "Each entity has a file: <entity_name>%s\n\n", ext)
		for _, e := range sorted {
			fmt.Fprintf(&b, "%s (%d columns)\n", e.Name, len(e.Columns))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
