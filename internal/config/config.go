package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"convert-generator/internal/shape"
)

// DefaultFilename is the project file looked up in the working directory.
const DefaultFilename = "convert.yaml"

// Log formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// ErrInvalid is wrapped by every validation failure of Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config is the decoded project file.
type Config struct {
	Version        string         `yaml:"version"`
	Patterns       []string       `yaml:"patterns,omitempty"`
	Tag            string         `yaml:"tag,omitempty"`
	FileSuffix     string         `yaml:"file_suffix,omitempty"`
	FalliblePrefix string         `yaml:"fallible_prefix,omitempty"`
	Wrappers       shape.Wrappers `yaml:"wrappers,omitempty"`
	Comments       bool           `yaml:"comments,omitempty"`
	Log            LogConfig      `yaml:"log,omitempty"`
}

// LogConfig selects the verbosity and encoding of the tool's own logs.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Default returns the configuration used when no project file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)

	return cfg
}

// LoadFile loads and parses a project file from the given path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a Config with defaults applied.
func Parse(data []byte) (*Config, error) {
	var cfg Config

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(cfg *Config) {
	if cfg.Version == "" {
		cfg.Version = "1"
	}

	if len(cfg.Patterns) == 0 {
		cfg.Patterns = []string{"./..."}
	}

	if cfg.Tag == "" {
		cfg.Tag = "convert"
	}

	if cfg.FileSuffix == "" {
		cfg.FileSuffix = "_convert.go"
	}

	if cfg.FalliblePrefix == "" {
		cfg.FalliblePrefix = "Try"
	}

	defaults := shape.DefaultWrappers()
	if cfg.Wrappers.Optional == nil {
		cfg.Wrappers.Optional = defaults.Optional
	}

	if cfg.Wrappers.Sequence == nil {
		cfg.Wrappers.Sequence = defaults.Sequence
	}

	if cfg.Wrappers.Map == nil {
		cfg.Wrappers.Map = defaults.Map
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if cfg.Log.Format == "" {
		cfg.Log.Format = FormatConsole
	}
}

// Validate checks the values that cannot be fixed by defaulting.
func (c *Config) Validate() error {
	var errs []error

	if !strings.HasSuffix(c.FileSuffix, ".go") {
		errs = append(errs, fmt.Errorf("%w: file_suffix %q must end in .go", ErrInvalid, c.FileSuffix))
	}

	if strings.HasSuffix(c.FileSuffix, "_test.go") {
		errs = append(errs, fmt.Errorf("%w: file_suffix %q would produce test files", ErrInvalid, c.FileSuffix))
	}

	if strings.ContainsAny(c.Tag, " \t\":`") {
		errs = append(errs, fmt.Errorf("%w: tag %q is not a valid struct tag key", ErrInvalid, c.Tag))
	}

	if !slices.Contains([]string{FormatConsole, FormatJSON}, c.Log.Format) {
		errs = append(errs, fmt.Errorf("%w: log.format %q must be %s or %s",
			ErrInvalid, c.Log.Format, FormatConsole, FormatJSON))
	}

	return errors.Join(errs...)
}

// Marshal serializes a Config to YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// WriteFile writes a Config to the given path.
func WriteFile(cfg *Config, path string) error {
	data, err := Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}
