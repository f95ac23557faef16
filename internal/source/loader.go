package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/tordrt/colgen/internal/errs"
	"github.com/tordrt/colgen/internal/formatter"
	"github.com/tordrt/colgen/internal/schema"
)

// Format is the encoding of a description file
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format by file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errs.Newf(errs.ErrKindInvalidInput, "unsupported description file extension: %s (must be .yaml, .yml, .json or .toml)", path)
	}
}

// LoadFile reads, validates and converts an entity description file
func LoadFile(path string) (*Description, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrKindNotFound, "description file not found", err)
		}
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to read description file", err)
	}

	desc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return desc, nil
}

// Parse decodes, validates and converts a description document
func Parse(data []byte, format Format) (*Description, error) {
	var doc Document
	if err := decode(data, format, &doc); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, fmt.Sprintf("failed to decode %s", format), err)
	}

	if err := Validate(&doc); err != nil {
		return nil, err
	}

	return convert(&doc)
}

func decode(data []byte, format Format, doc *Document) error {
	switch format {
	case FormatYAML:
		return yaml.Unmarshal(data, doc)
	case FormatJSON:
		return json.Unmarshal(data, doc)
	case FormatTOML:
		_, err := toml.Decode(string(data), doc)
		return err
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("primitivekind", func(fl validator.FieldLevel) bool {
		_, err := schema.ParsePrimitiveKind(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("collation", func(fl validator.FieldLevel) bool {
		_, err := schema.ParseCollationFunction(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("onconflict", func(fl validator.FieldLevel) bool {
		_, err := schema.ParseOnConflict(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks struct tags plus the cross-field rules: property names are
// unique per entity, entity names are unique and usable as file names, and key
// members name existing properties.
func Validate(doc *Document) error {
	if err := validate.Struct(doc); err != nil {
		return errs.Wrap(errs.ErrKindInvalidInput, "invalid entity description", err)
	}

	entities := make(map[string]bool)
	for _, entity := range doc.Entities {
		if err := formatter.CheckEntityName(entity.Name); err != nil {
			return err
		}
		if entities[entity.Name] {
			return errs.Newf(errs.ErrKindInvalidInput, "duplicate entity: %s", entity.Name)
		}
		entities[entity.Name] = true

		properties := make(map[string]bool)
		for _, p := range entity.Properties {
			if properties[p.Name] {
				return errs.Newf(errs.ErrKindInvalidInput, "duplicate property: %s.%s", entity.Name, p.Name)
			}
			properties[p.Name] = true
		}

		for _, key := range entity.Key {
			if !properties[key] {
				return errs.Newf(errs.ErrKindInvalidInput, "key member %s.%s is not a property", entity.Name, key)
			}
		}
	}
	return nil
}

func convert(doc *Document) (*Description, error) {
	desc := &Description{}

	if doc.DefaultCollation != nil {
		c, err := convertCollation(*doc.DefaultCollation)
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid default collation", err)
		}
		desc.DefaultCollation = c
	}

	for _, es := range doc.Entities {
		entity := schema.Entity{
			Name:       es.Name,
			KeyMembers: append([]string(nil), es.Key...),
			Properties: make([]schema.Property, 0, len(es.Properties)),
		}
		for _, ps := range es.Properties {
			p, err := convertProperty(ps)
			if err != nil {
				return nil, errs.Wrap(errs.ErrKindInvalidInput, fmt.Sprintf("invalid property %s.%s", es.Name, ps.Name), err)
			}
			entity.Properties = append(entity.Properties, p)
		}
		desc.Entities = append(desc.Entities, entity)
	}

	return desc, nil
}

func convertProperty(ps PropertySpec) (schema.Property, error) {
	kind, err := schema.ParsePrimitiveKind(ps.Kind)
	if err != nil {
		return schema.Property{}, err
	}

	p := schema.Property{
		Name:      ps.Name,
		StoreType: ps.Type,
		Nullable:  ps.Nullable,
		Kind:      kind,
		Identity:  ps.Identity,
	}
	if ps.MaxLength != nil {
		p.MaxLength = schema.IntPtr(*ps.MaxLength)
	}

	d := &p.Decorations
	if ps.CaseSensitive != nil {
		d.CaseSensitivity = &schema.CaseSensitivity{IsCaseSensitive: *ps.CaseSensitive}
	}
	if ps.Collation != nil {
		c, err := convertCollation(*ps.Collation)
		if err != nil {
			return schema.Property{}, err
		}
		d.Collation = c
	}
	if ps.Unique != nil {
		mode, err := schema.ParseOnConflict(ps.Unique.OnConflict)
		if err != nil {
			return schema.Property{}, err
		}
		d.Uniqueness = &schema.Uniqueness{OnConflict: mode}
	}
	if ps.Default != nil {
		d.DefaultValue = &schema.DefaultValue{Value: *ps.Default}
	}
	d.Autoincrement = ps.Autoincrement

	return p, nil
}

// convertCollation treats a custom name without a function as CUSTOM
func convertCollation(cs CollationSpec) (*schema.Collation, error) {
	fn, err := schema.ParseCollationFunction(cs.Function)
	if err != nil {
		return nil, err
	}
	if cs.Custom != "" && cs.Function == "" {
		fn = schema.CollationCustom
	}
	if fn == schema.CollationCustom && cs.Custom == "" {
		return nil, fmt.Errorf("custom collation requires a function name")
	}
	return &schema.Collation{Function: fn, CustomFunction: cs.Custom}, nil
}
