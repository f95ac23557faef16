// Package config loads the optional colgen configuration file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/tordrt/colgen/internal/errs"
	"github.com/tordrt/colgen/internal/schema"
)

// Config mirrors the CLI flags. Flags set on the command line win over file values.
type Config struct {
	DefaultCollation string    `yaml:"defaultCollation" validate:"omitempty,oneof=none binary nocase rtrim custom"`
	CustomCollation  string    `yaml:"customCollation" validate:"required_if=DefaultCollation custom"`
	Format           string    `yaml:"format" validate:"oneof=text sql markdown"`
	Output           string    `yaml:"output"`
	OutputDir        string    `yaml:"outputDir" validate:"excluded_with=Output"`
	SchemaName       string    `yaml:"schema"`
	Entities         []string  `yaml:"entities" validate:"omitempty,dive,required"`
	ExcludeEntities  []string  `yaml:"exclude" validate:"omitempty,dive,required"`
	Verify           bool      `yaml:"verify"`
	Log              LogConfig `yaml:"log"`
}

// LogConfig configures the logger
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Format: "text",
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load reads a YAML configuration file on top of Default
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrKindNotFound, "config file not found", err)
		}
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to read config file", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to decode config file", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate normalises enum values to lower case and checks the struct tags
func (c *Config) Validate() error {
	c.DefaultCollation = strings.ToLower(c.DefaultCollation)
	c.Format = strings.ToLower(c.Format)
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)

	if err := validator.New().Struct(c); err != nil {
		return errs.Wrap(errs.ErrKindInvalidInput, "invalid configuration", err)
	}
	return nil
}

// Collation resolves the default collation settings, nil when none is configured.
// An explicit "none" yields a CollationNone value so it can override a default
// declared elsewhere.
func (c *Config) Collation() (*schema.Collation, error) {
	if c.DefaultCollation == "" && c.CustomCollation == "" {
		return nil, nil
	}

	fn, err := schema.ParseCollationFunction(c.DefaultCollation)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid default collation", err)
	}
	if c.CustomCollation != "" {
		fn = schema.CollationCustom
	}
	return &schema.Collation{Function: fn, CustomFunction: c.CustomCollation}, nil
}
