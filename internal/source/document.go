// Package source loads entity descriptions from YAML, JSON or TOML files.
package source

import (
	"github.com/tordrt/colgen/internal/schema"
)

// Document is the on-disk form of an entity description file
type Document struct {
	DefaultCollation *CollationSpec `yaml:"defaultCollation" json:"defaultCollation" toml:"defaultCollation"`
	Entities         []EntitySpec   `yaml:"entities" json:"entities" toml:"entities" validate:"required,min=1,dive"`
}

// EntitySpec describes one entity. Key lists the key member property names.
type EntitySpec struct {
	Name       string         `yaml:"name" json:"name" toml:"name" validate:"required"`
	Key        []string       `yaml:"key" json:"key" toml:"key" validate:"omitempty,dive,required"`
	Properties []PropertySpec `yaml:"properties" json:"properties" toml:"properties" validate:"required,min=1,dive"`
}

// PropertySpec describes one property and its decorations
type PropertySpec struct {
	Name          string         `yaml:"name" json:"name" toml:"name" validate:"required"`
	Type          string         `yaml:"type" json:"type" toml:"type" validate:"required"`
	Kind          string         `yaml:"kind" json:"kind" toml:"kind" validate:"primitivekind"`
	Nullable      bool           `yaml:"nullable" json:"nullable" toml:"nullable"`
	MaxLength     *int           `yaml:"maxLength" json:"maxLength" toml:"maxLength" validate:"omitempty,gt=0"`
	Identity      bool           `yaml:"identity" json:"identity" toml:"identity"`
	CaseSensitive *bool          `yaml:"caseSensitive" json:"caseSensitive" toml:"caseSensitive"`
	Collation     *CollationSpec `yaml:"collation" json:"collation" toml:"collation"`
	Unique        *UniqueSpec    `yaml:"unique" json:"unique" toml:"unique"`
	Default       *string        `yaml:"default" json:"default" toml:"default"`
	Autoincrement bool           `yaml:"autoincrement" json:"autoincrement" toml:"autoincrement"`
}

// CollationSpec names a built-in collating function or a custom one
type CollationSpec struct {
	Function string `yaml:"function" json:"function" toml:"function" validate:"collation"`
	Custom   string `yaml:"custom" json:"custom" toml:"custom"`
}

// UniqueSpec marks a property unique
type UniqueSpec struct {
	OnConflict string `yaml:"onConflict" json:"onConflict" toml:"onConflict" validate:"onconflict"`
}

// Description is a loaded and validated entity description file
type Description struct {
	DefaultCollation *schema.Collation
	Entities         []schema.Entity
}

// Entity returns the entity with the given name
func (d *Description) Entity(name string) (*schema.Entity, bool) {
	for i := range d.Entities {
		if d.Entities[i].Name == name {
			return &d.Entities[i], true
		}
	}
	return nil, false
}
