package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/colgen/internal/errs"
	"github.com/tordrt/colgen/internal/schema"
)

const peopleYAML = `
defaultCollation:
  function: nocase
entities:
  - name: Person
    key: [Id]
    properties:
      - name: Id
        type: INT
        kind: integer
        identity: true
        autoincrement: true
      - name: Name
        type: TEXT
        kind: string
        maxLength: 50
      - name: Email
        type: TEXT
        kind: string
        nullable: true
        unique:
          onConflict: replace
        collation:
          custom: UNICODE
      - name: Active
        type: BOOL
        kind: boolean
        caseSensitive: false
        default: "1"
`

const peopleJSON = `{
  "defaultCollation": {"function": "NOCASE"},
  "entities": [{
    "name": "Person",
    "key": ["Id"],
    "properties": [
      {"name": "Id", "type": "INT", "kind": "Integer", "identity": true, "autoincrement": true},
      {"name": "Name", "type": "TEXT", "kind": "String", "maxLength": 50},
      {"name": "Email", "type": "TEXT", "kind": "String", "nullable": true,
       "unique": {"onConflict": "REPLACE"}, "collation": {"custom": "UNICODE"}},
      {"name": "Active", "type": "BOOL", "kind": "Boolean", "caseSensitive": false, "default": "1"}
    ]
  }]
}`

const peopleTOML = `
[defaultCollation]
function = "nocase"

[[entities]]
name = "Person"
key = ["Id"]

[[entities.properties]]
name = "Id"
type = "INT"
kind = "integer"
identity = true
autoincrement = true

[[entities.properties]]
name = "Name"
type = "TEXT"
kind = "string"
maxLength = 50

[[entities.properties]]
name = "Email"
type = "TEXT"
kind = "string"
nullable = true
unique = { onConflict = "replace" }
collation = { custom = "UNICODE" }

[[entities.properties]]
name = "Active"
type = "BOOL"
kind = "boolean"
caseSensitive = false
default = "1"
`

func wantPeople() *Description {
	return &Description{
		DefaultCollation: &schema.Collation{Function: schema.CollationNoCase},
		Entities: []schema.Entity{{
			Name:       "Person",
			KeyMembers: []string{"Id"},
			Properties: []schema.Property{
				{Name: "Id", StoreType: "INT", Kind: schema.KindInteger, Identity: true,
					Decorations: schema.Decorations{Autoincrement: true}},
				{Name: "Name", StoreType: "TEXT", Kind: schema.KindString, MaxLength: schema.IntPtr(50)},
				{Name: "Email", StoreType: "TEXT", Kind: schema.KindString, Nullable: true,
					Decorations: schema.Decorations{
						Uniqueness: &schema.Uniqueness{OnConflict: schema.OnConflictReplace},
						Collation:  &schema.Collation{Function: schema.CollationCustom, CustomFunction: "UNICODE"},
					}},
				{Name: "Active", StoreType: "BOOL", Kind: schema.KindBoolean,
					Decorations: schema.Decorations{
						CaseSensitivity: &schema.CaseSensitivity{IsCaseSensitive: false},
						DefaultValue:    &schema.DefaultValue{Value: "1"},
					}},
			},
		}},
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{name: "yaml", data: peopleYAML, format: FormatYAML},
		{name: "json", data: peopleJSON, format: FormatJSON},
		{name: "toml", data: peopleTOML, format: FormatTOML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, err := Parse([]byte(tt.data), tt.format)
			require.NoError(t, err)
			assert.Equal(t, wantPeople(), desc)
		})
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "no entities", data: `entities: []`},
		{name: "missing entity name", data: `
entities:
  - properties:
      - {name: Id, type: INT}
`},
		{name: "missing property type", data: `
entities:
  - name: A
    properties:
      - {name: Id}
`},
		{name: "unknown kind", data: `
entities:
  - name: A
    properties:
      - {name: Id, type: INT, kind: decimal128}
`},
		{name: "unknown collation", data: `
entities:
  - name: A
    properties:
      - {name: N, type: TEXT, kind: string, collation: {function: unicode}}
`},
		{name: "unknown conflict mode", data: `
entities:
  - name: A
    properties:
      - {name: N, type: TEXT, unique: {onConflict: merge}}
`},
		{name: "non-positive max length", data: `
entities:
  - name: A
    properties:
      - {name: N, type: TEXT, maxLength: 0}
`},
		{name: "duplicate property", data: `
entities:
  - name: A
    properties:
      - {name: N, type: TEXT}
      - {name: N, type: INT}
`},
		{name: "duplicate entity", data: `
entities:
  - name: A
    properties: [{name: N, type: TEXT}]
  - name: A
    properties: [{name: M, type: TEXT}]
`},
		{name: "key not a property", data: `
entities:
  - name: A
    key: [Id]
    properties: [{name: N, type: TEXT}]
`},
		{name: "entity name with parent path", data: `
entities:
  - name: ../x
    properties: [{name: N, type: TEXT}]
`},
		{name: "entity name with backslash", data: `
entities:
  - name: 'a\b'
    properties: [{name: N, type: TEXT}]
`},
		{name: "entity named like the overview file", data: `
entities:
  - name: _overview
    properties: [{name: N, type: TEXT}]
`},
		{name: "custom collation without name", data: `
entities:
  - name: A
    properties:
      - {name: N, type: TEXT, kind: string, collation: {function: custom}}
`},
		{name: "malformed yaml", data: `entities: [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, err := Parse([]byte(tt.data), FormatYAML)
			require.Error(t, err)
			assert.Nil(t, desc)
			assert.True(t, errs.IsInvalidInput(err), "got %v", err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.yml")
	require.NoError(t, os.WriteFile(path, []byte(peopleYAML), 0o644))

	desc, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, wantPeople(), desc)

	entity, ok := desc.Entity("Person")
	require.True(t, ok)
	assert.Len(t, entity.Keys(), 1)

	_, ok = desc.Entity("Missing")
	assert.False(t, ok)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errs.IsNotFound(err))

	_, err = LoadFile(filepath.Join(dir, "people.xml"))
	assert.True(t, errs.IsInvalidInput(err))
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{path: "a.yaml", want: FormatYAML},
		{path: "a.YML", want: FormatYAML},
		{path: "dir/a.json", want: FormatJSON},
		{path: "a.toml", want: FormatTOML},
		{path: "a.txt", wantErr: true},
		{path: "noext", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
