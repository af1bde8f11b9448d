// Package config loads the generator configuration.
package config

import (
	"github.com/origadmin/buildit/internal/types"
)

// Log levels accepted by LogConfig.Level.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Config holds the generator configuration.
type Config struct {
	Output  OutputConfig  `koanf:"output" json:"output" yaml:"output"`
	Wrapper WrapperConfig `koanf:"wrapper" json:"wrapper" yaml:"wrapper"`
	Naming  NamingConfig  `koanf:"naming" json:"naming" yaml:"naming"`
	// Exclude holds doublestar patterns of source files to ignore.
	Exclude   []string `koanf:"exclude" json:"exclude" yaml:"exclude" validate:"dive,required" jsonschema_description:"doublestar patterns of source files to ignore"`
	BuildTags []string `koanf:"build_tags" json:"build_tags" yaml:"build_tags" validate:"dive,required" jsonschema_description:"build tags used to load packages"`
	// Concurrency bounds the packages processed at once; 0 uses GOMAXPROCS.
	Concurrency int       `koanf:"concurrency" json:"concurrency" yaml:"concurrency" validate:"gte=0" jsonschema:"minimum=0"`
	Log         LogConfig `koanf:"log" json:"log" yaml:"log"`
}

// OutputConfig controls the generated file.
type OutputConfig struct {
	// File is the base name of the generated file in each package.
	File string `koanf:"file" json:"file" yaml:"file" validate:"required,gofile" jsonschema:"required" jsonschema_description:"base name of the generated file"`
	// Header is a text/template rendered at the top of the generated file.
	Header string `koanf:"header" json:"header" yaml:"header" validate:"required" jsonschema_description:"template of the generated file header"`
}

// WrapperConfig describes the optional value type.
type WrapperConfig struct {
	Type        string `koanf:"type" json:"type" yaml:"type" validate:"required,goident" jsonschema:"required" jsonschema_description:"name of the generic optional type"`
	Constructor string `koanf:"constructor" json:"constructor" yaml:"constructor" validate:"required,goident" jsonschema:"required" jsonschema_description:"function wrapping a value"`
}

// NamingConfig controls generated names.
type NamingConfig struct {
	Prefix   string `koanf:"prefix" json:"prefix" yaml:"prefix" validate:"omitempty,goident" jsonschema_description:"prefix of builder method names"`
	Receiver string `koanf:"receiver" json:"receiver" yaml:"receiver" validate:"omitempty,goident" jsonschema_description:"receiver name, derived from the type when empty"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `koanf:"level" json:"level" yaml:"level" validate:"oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	JSON  bool   `koanf:"json" json:"json" yaml:"json"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			File:   types.DefaultOutputFile,
			Header: types.DefaultHeader,
		},
		Wrapper: WrapperConfig{
			Type:        types.DefaultWrapperType,
			Constructor: types.DefaultConstructor,
		},
		Naming: NamingConfig{
			Prefix: types.DefaultPrefix,
		},
		Exclude:   []string{},
		BuildTags: []string{},
		Log: LogConfig{
			Level: LevelWarn,
		},
	}
}
