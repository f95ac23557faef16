package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/colgen/internal/errs"
)

const personYAML = `
entities:
  - name: Person
    key: [Id]
    properties:
      - {name: Id, type: INT, kind: integer, identity: true, autoincrement: true}
      - {name: Name, type: TEXT, kind: string, maxLength: 50}
  - name: Audit
    properties:
      - {name: At, type: DATETIME, kind: datetime, default: CURRENT_TIMESTAMP}
`

// execute runs the root command with fresh flag values
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		require.NoError(t, f.Value.Set(f.DefValue))
		f.Changed = false
	})

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunFromFile(t *testing.T) {
	path := writeFile(t, "people.yaml", personYAML)

	out, err := execute(t, "--file", path, "--format", "sql", "--default-collation", "nocase", "--verify")
	require.NoError(t, err)

	want := "-- Person\n" +
		"[Id] INTEGER PRIMARY KEY AUTOINCREMENT,\n" +
		"[Name] TEXT (50) NOT NULL COLLATE NOCASE\n" +
		"\n" +
		"-- Audit\n" +
		"[At] DATETIME NOT NULL DEFAULT (CURRENT_TIMESTAMP)\n"
	assert.Equal(t, want, out)
}

func TestRunEntityFilters(t *testing.T) {
	path := writeFile(t, "people.yaml", personYAML)

	out, err := execute(t, "-f", path, "-t", "Audit, Person", "--exclude", "Person")
	require.NoError(t, err)
	assert.Equal(t, "TABLE Audit\n  [At] DATETIME NOT NULL DEFAULT (CURRENT_TIMESTAMP)\n", out)
}

func TestRunDefaultCollationOverridesFile(t *testing.T) {
	path := writeFile(t, "p.yaml", `
defaultCollation: {function: nocase}
entities:
  - name: P
    properties:
      - {name: Name, type: TEXT, kind: string}
`)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "file default", args: nil, want: "-- P\n[Name] TEXT NOT NULL COLLATE NOCASE\n"},
		{name: "none", args: []string{"--default-collation", "none"}, want: "-- P\n[Name] TEXT NOT NULL\n"},
		{name: "rtrim", args: []string{"--default-collation", "rtrim"}, want: "-- P\n[Name] TEXT NOT NULL COLLATE RTRIM\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"-f", path, "--format", "sql"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRunConfigFile(t *testing.T) {
	path := writeFile(t, "people.yaml", personYAML)
	cfg := writeFile(t, "colgen.yaml", `
format: markdown
customCollation: UNICODE
exclude: [Audit]
`)

	out, err := execute(t, "--config", cfg, "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "## Person")
	assert.Contains(t, out, "- `[Name] TEXT (50) NOT NULL COLLATE UNICODE`")
	assert.NotContains(t, out, "Audit")

	// Explicit flags win over the file
	out, err = execute(t, "--config", cfg, "-f", path, "--format", "text", "--exclude", "")
	require.NoError(t, err)
	assert.Contains(t, out, "TABLE Person (PK: Id)\n")
	assert.Contains(t, out, "TABLE Audit\n")
}

func TestRunOutputFile(t *testing.T) {
	path := writeFile(t, "people.yaml", personYAML)
	output := filepath.Join(t.TempDir(), "columns.sql")

	out, err := execute(t, "-f", path, "--format", "sql", "-o", output)
	require.NoError(t, err)
	assert.Empty(t, out)

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(content), "[Id] INTEGER PRIMARY KEY AUTOINCREMENT,\n")
}

func TestRunOutputDir(t *testing.T) {
	path := writeFile(t, "people.yaml", personYAML)
	dir := filepath.Join(t.TempDir(), "columns")

	_, err := execute(t, "-f", path, "-d", dir, "--format", "markdown")
	require.NoError(t, err)

	for _, name := range []string{"_overview.md", "Person.md", "Audit.md"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestRunFailureWritesNothing(t *testing.T) {
	path := writeFile(t, "flag.yaml", `
entities:
  - name: Entity
    properties:
      - {name: Flag, type: BOOL, kind: boolean, collation: {function: binary}}
`)
	output := filepath.Join(t.TempDir(), "columns.txt")

	_, err := execute(t, "-f", path, "-o", output)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidDecoration(err))
	assert.NoFileExists(t, output)
}

func TestRunInvalidFlags(t *testing.T) {
	path := writeFile(t, "people.yaml", personYAML)

	tests := []struct {
		name string
		args []string
	}{
		{name: "no source", args: []string{"--format", "sql"}},
		{name: "two sources", args: []string{"-f", path, "--sqlite", "app.db"}},
		{name: "unknown format", args: []string{"-f", path, "--format", "html"}},
		{name: "unknown collation", args: []string{"-f", path, "--default-collation", "unicode"}},
		{name: "output and output dir", args: []string{"-f", path, "-o", "a.txt", "-d", "out"}},
		{name: "unknown log level", args: []string{"-f", path, "--log-level", "trace"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.True(t, errs.IsInvalidInput(err), "got %v", err)
		})
	}
}

func TestDatabaseURL(t *testing.T) {
	tests := []struct {
		name    string
		set     func()
		want    string
		wantErr bool
	}{
		{name: "file", set: func() { filePath = "people.yaml" }, want: ""},
		{name: "sqlite", set: func() { sqlitePath = "data/app.db" }, want: "sqlite://data/app.db"},
		{name: "mysql dsn", set: func() { mysqlURL = "root@tcp(localhost)/shop" }, want: "mysql://root@tcp(localhost)/shop"},
		{name: "mysql url", set: func() { mysqlURL = "mysql://root@tcp(localhost)/shop" }, want: "mysql://root@tcp(localhost)/shop"},
		{name: "db url", set: func() { dbURL = "postgres://localhost/db" }, want: "postgres://localhost/db"},
		{name: "none", set: func() {}, wantErr: true},
		{name: "two", set: func() { dbURL = "postgres://localhost/db"; sqlitePath = "app.db" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filePath, dbURL, mysqlURL, sqlitePath = "", "", "", ""
			t.Cleanup(func() { filePath, dbURL, mysqlURL, sqlitePath = "", "", "", "" })
			tt.set()

			got, err := databaseURL()
			if tt.wantErr {
				assert.True(t, errs.IsInvalidInput(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "single entity", in: "users", want: []string{"users"}},
		{name: "multiple entities", in: "users,posts,comments", want: []string{"users", "posts", "comments"}},
		{name: "entities with spaces", in: "users, posts , comments", want: []string{"users", "posts", "comments"}},
		{name: "empty items dropped", in: "users,,", want: []string{"users"}},
		{name: "empty string", in: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseList(tt.in))
		})
	}
}
