package config

import (
	"errors"
	"fmt"
	"go/token"
	"io/fs"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes the environment variables read by the loader.
const EnvPrefix = "BUILDIT_"

// DefaultFiles are the configuration files looked up in the working directory
// when none is given.
var DefaultFiles = []string{"buildit.yaml", "buildit.yml", ".buildit.yaml"}

// Source identifies where a configuration value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceFile    Source = "file"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// Loader loads configuration from, in increasing precedence, the defaults,
// a YAML file, BUILDIT_* environment variables and flag overrides.
type Loader struct {
	fs        afero.Fs
	koanf     *koanf.Koanf
	validator *validator.Validate
	sources   map[string]Source
	file      string
}

// NewLoader creates a loader reading files from fs.
func NewLoader(fs afero.Fs) *Loader {
	return &Loader{
		fs:        fs,
		koanf:     koanf.New("."),
		validator: NewValidator(),
		sources:   make(map[string]Source),
	}
}

// Load loads the configuration. path is the configuration file; when empty
// the DefaultFiles are looked up in dir and a missing file is not an error.
// overrides maps koanf paths, e.g. "output.file", to values.
func (l *Loader) Load(dir, path string, overrides map[string]any) (*Config, error) {
	l.koanf = koanf.New(".")
	l.sources = make(map[string]Source)
	l.file = ""

	if err := l.koanf.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	l.track(SourceDefault, nil)

	if err := l.loadFile(dir, path); err != nil {
		return nil, err
	}
	if err := l.loadEnvironment(); err != nil {
		return nil, err
	}
	if err := l.loadOverrides(overrides); err != nil {
		return nil, err
	}

	cfg, err := l.unmarshal()
	if err != nil {
		return nil, err
	}
	if err := l.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// File returns the configuration file used by the last Load, if any.
func (l *Loader) File() string {
	return l.file
}

// Sources returns the origin of every configuration key of the last Load.
func (l *Loader) Sources() map[string]Source {
	out := make(map[string]Source, len(l.sources))
	for k, v := range l.sources {
		out[k] = v
	}
	return out
}

func (l *Loader) loadFile(dir, path string) error {
	explicit := path != ""
	candidates := []string{path}
	if !explicit {
		candidates = candidates[:0]
		for _, name := range DefaultFiles {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}
	for _, candidate := range candidates {
		data, err := afero.ReadFile(l.fs, candidate)
		if err != nil {
			if !explicit && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to read config file: %w", err)
		}
		var values map[string]any
		if err := yaml.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", candidate, err)
		}
		before := l.snapshot()
		if err := l.koanf.Load(rawMap(values), nil); err != nil {
			return fmt.Errorf("failed to apply config file %s: %w", candidate, err)
		}
		l.track(SourceFile, before)
		l.file = candidate
		return nil
	}
	return nil
}

func (l *Loader) loadEnvironment() error {
	mappings := EnvMappings()
	before := l.snapshot()
	if err := l.koanf.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			if !strings.HasPrefix(key, EnvPrefix) {
				key = EnvPrefix + key
			}
			return mappings[key], value
		},
	}), nil); err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}
	l.track(SourceEnv, before)
	return nil
}

func (l *Loader) loadOverrides(overrides map[string]any) error {
	before := l.snapshot()
	for key, value := range overrides {
		if err := l.koanf.Set(key, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	l.track(SourceFlag, before)
	return nil
}

func (l *Loader) unmarshal() (*Config, error) {
	var cfg Config
	if err := l.koanf.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook: mapstructure.DecodeHookFuncType(splitListHook),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return &cfg, nil
}

// splitListHook splits comma separated strings, as set through the
// environment, into lists and drops the blanks around and between the items.
// Lists from files and flags are kept as given so that blank items still
// fail validation.
func splitListHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice || to.Elem().Kind() != reflect.String {
		return data, nil
	}
	var out []string
	for _, item := range strings.Split(reflect.ValueOf(data).String(), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// Validate checks cfg against its validation tags.
func (l *Loader) Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if err := l.validator.Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

func (l *Loader) snapshot() map[string]any {
	return l.koanf.All()
}

func (l *Loader) track(source Source, before map[string]any) {
	for _, key := range l.koanf.Keys() {
		old, existed := before[key]
		if before == nil || !existed || !reflect.DeepEqual(old, l.koanf.Get(key)) {
			l.sources[key] = source
		}
	}
}

// NewValidator returns a validator knowing the configuration specific rules:
// goident accepts Go identifiers that are not keywords, gofile accepts plain
// .go file names.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("goident", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return token.IsIdentifier(s) && !token.IsKeyword(s)
	})
	_ = v.RegisterValidation("gofile", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return strings.HasSuffix(s, ".go") && len(s) > len(".go") && !strings.ContainsAny(s, `/\`) &&
			!strings.HasSuffix(s, "_test.go")
	})
	return v
}

// EnvMappings maps environment variable names to koanf paths:
// BUILDIT_OUTPUT_FILE -> output.file, BUILDIT_BUILD_TAGS -> build_tags.
func EnvMappings() map[string]string {
	out := make(map[string]string)
	collectKeys(reflect.TypeOf(Config{}), "", func(path string) {
		out[EnvPrefix+strings.ToUpper(strings.ReplaceAll(path, ".", "_"))] = path
	})
	return out
}

// Keys returns every leaf koanf path of the configuration, sorted.
func Keys() []string {
	var keys []string
	collectKeys(reflect.TypeOf(Config{}), "", func(path string) { keys = append(keys, path) })
	sort.Strings(keys)
	return keys
}

func collectKeys(t reflect.Type, prefix string, add func(string)) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("koanf")
		if tag == "" || tag == "-" {
			continue
		}
		path := tag
		if prefix != "" {
			path = prefix + "." + tag
		}
		if f.Type.Kind() == reflect.Struct {
			collectKeys(f.Type, path, add)
			continue
		}
		add(path)
	}
}

// rawMap is a koanf.Provider adapter for map[string]any data.
type rawMap map[string]any

func (r rawMap) Read() (map[string]any, error) {
	return r, nil
}

func (r rawMap) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("ReadBytes not implemented")
}
