package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/msto63/unilang/pkg/core/logging"
	"github.com/msto63/unilang/pkg/unilang/aggregator"
	"github.com/msto63/unilang/pkg/unilang/pipeline"
)

// ErrNoConfig is returned by LoadFromEnv when no configuration file exists
var ErrNoConfig = errors.New("no config file found, set UNILANG_CONFIG or create unilang.toml")

// Config holds the complete application configuration
type Config struct {
	General     GeneralConfig     `toml:"general"`
	Parser      ParserConfig      `toml:"parser"`
	Pipeline    PipelineConfig    `toml:"pipeline"`
	Help        HelpConfig        `toml:"help"`
	Aggregation AggregationConfig `toml:"aggregation"`
	Audit       AuditConfig       `toml:"audit"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name      string `toml:"name"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	// Verbosity 0, 1 or 2; selects the log level when log_level is unset
	Verbosity *int `toml:"verbosity"`
}

// ParserConfig holds instruction parser settings
type ParserConfig struct {
	MaxInputLength              int  `toml:"max_input_length"`
	ErrorOnDuplicateNamed       bool `toml:"error_on_duplicate_named"`
	ErrorOnPositionalAfterNamed bool `toml:"error_on_positional_after_named"`
}

// PipelineConfig holds execution pipeline settings
type PipelineConfig struct {
	Mode               pipeline.Mode `toml:"mode"`
	SuggestionDistance int           `toml:"suggestion_distance"`
	ParseCacheSize     int           `toml:"parse_cache_size"`
}

// HelpConfig holds help output settings
type HelpConfig struct {
	Verbosity *int `toml:"verbosity"`
}

// AggregationConfig describes the definition modules and how they merge
type AggregationConfig struct {
	GlobalPrefix       string                        `toml:"global_prefix"`
	DetectConflicts    *bool                         `toml:"detect_conflicts"`
	Strategy           aggregator.Strategy           `toml:"strategy"`
	NamespaceIsolation aggregator.NamespaceIsolation `toml:"namespace_isolation"`
	Modules            []ModuleConfig                `toml:"modules"`
}

// ModuleConfig is one definition file contributing commands
type ModuleConfig struct {
	Name    string `toml:"name"`
	Path    string `toml:"path"`
	Prefix  string `toml:"prefix"`
	Enabled *bool  `toml:"enabled"`
}

// IsEnabled reports whether the module takes part; modules are enabled
// unless switched off
func (m ModuleConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// AuditConfig holds audit trail settings
type AuditConfig struct {
	Enabled   bool     `toml:"enabled"`
	Path      string   `toml:"path"`
	Retention Duration `toml:"retention"`
}

// Duration wraps time.Duration for TOML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Load loads configuration from a TOML file
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Module paths are relative to the config file
	base := filepath.Dir(path)
	for i := range cfg.Aggregation.Modules {
		m := &cfg.Aggregation.Modules[i]
		m.Path = os.ExpandEnv(m.Path)
		if m.Path != "" && !filepath.IsAbs(m.Path) {
			m.Path = filepath.Join(base, m.Path)
		}
	}

	return cfg.finish()
}

// Parse decodes configuration text
func Parse(text string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(text, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg.finish()
}

// Default returns the built-in configuration with environment overrides
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.expandEnvVars()
	cfg.applyEnvOverrides()
	return cfg
}

// LoadFromEnv loads configuration from the UNILANG_CONFIG environment
// variable or the first default location that exists
func LoadFromEnv() (*Config, error) {
	path := os.Getenv("UNILANG_CONFIG")
	if path == "" {
		defaultPaths := []string{
			"./unilang.toml",
			"./configs/unilang.toml",
			filepath.Join(os.Getenv("HOME"), ".config/unilang/config.toml"),
		}
		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return nil, ErrNoConfig
	}

	return Load(path)
}

func (c *Config) finish() (*Config, error) {
	c.applyDefaults()
	c.expandEnvVars()
	c.applyEnvOverrides()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "unilang"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}

	// Parser
	if c.Parser.MaxInputLength == 0 {
		c.Parser.MaxInputLength = 65536
	}

	// Help
	if c.Help.Verbosity == nil {
		v := logging.VerbosityNormal
		c.Help.Verbosity = &v
	}

	// Aggregation
	if c.Aggregation.DetectConflicts == nil {
		detect := true
		c.Aggregation.DetectConflicts = &detect
	}
	if c.Aggregation.NamespaceIsolation.Separator == "" {
		c.Aggregation.NamespaceIsolation.Separator = "."
	}

	// Audit
	if c.Audit.Path == "" {
		c.Audit.Path = "./data/audit.db"
	}
	if c.Audit.Retention.Duration == 0 {
		c.Audit.Retention.Duration = 30 * 24 * time.Hour
	}
}

// expandEnvVars expands environment variables in path values
func (c *Config) expandEnvVars() {
	c.Audit.Path = os.ExpandEnv(c.Audit.Path)
	for i := range c.Aggregation.Modules {
		c.Aggregation.Modules[i].Path = os.ExpandEnv(c.Aggregation.Modules[i].Path)
	}
}

// applyEnvOverrides applies UNILANG_* variables on top of file values
func (c *Config) applyEnvOverrides() {
	if v, ok := os.LookupEnv(logging.VerbosityEnv); ok {
		verbosity := logging.ParseVerbosity(v)
		c.General.Verbosity = &verbosity
	}
	if v, ok := os.LookupEnv("UNILANG_HELP_VERBOSITY"); ok {
		verbosity := logging.ParseVerbosity(v)
		c.Help.Verbosity = &verbosity
	}
	if v, ok := os.LookupEnv("UNILANG_GLOBAL_PREFIX"); ok {
		c.Aggregation.GlobalPrefix = v
	}
	if v, ok := os.LookupEnv("UNILANG_DETECT_CONFLICTS"); ok {
		if detect, err := strconv.ParseBool(v); err == nil {
			c.Aggregation.DetectConflicts = &detect
		}
	}
	if v, ok := os.LookupEnv("UNILANG_PIPELINE_MODE"); ok {
		if mode, err := pipeline.ParseMode(v); err == nil {
			c.Pipeline.Mode = mode
		}
	}

	for i := range c.Aggregation.Modules {
		m := &c.Aggregation.Modules[i]
		key := "UNILANG_MODULE_" + envName(m.Name)
		if v, ok := os.LookupEnv(key + "_ENABLED"); ok {
			if enabled, err := strconv.ParseBool(v); err == nil {
				m.Enabled = &enabled
			}
		}
		if v, ok := os.LookupEnv(key + "_PREFIX"); ok {
			m.Prefix = v
		}
	}
}

// envName converts a module name into its environment variable form
func envName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Validate checks values that have no usable default
func (c *Config) Validate() error {
	if c.Parser.MaxInputLength < 0 {
		return fmt.Errorf("parser.max_input_length must not be negative")
	}
	if c.Pipeline.ParseCacheSize < 0 {
		return fmt.Errorf("pipeline.parse_cache_size must not be negative")
	}
	switch c.Aggregation.NamespaceIsolation.Separator {
	case ".", "_":
	default:
		return fmt.Errorf("aggregation.namespace_isolation.separator must be '.' or '_', got '%s'",
			c.Aggregation.NamespaceIsolation.Separator)
	}
	seen := make(map[string]bool)
	for i, m := range c.Aggregation.Modules {
		if m.Name == "" {
			return fmt.Errorf("aggregation.modules[%d]: name is required", i)
		}
		if seen[m.Name] {
			return fmt.Errorf("aggregation.modules[%d]: duplicate module name '%s'", i, m.Name)
		}
		seen[m.Name] = true
		if m.Path == "" {
			return fmt.Errorf("aggregation.modules[%d]: path is required", i)
		}
	}
	return nil
}

// LogLevel returns the effective log level: log_level if set, otherwise
// the level for the configured verbosity
func (c *Config) LogLevel() string {
	if c.General.LogLevel != "" {
		return c.General.LogLevel
	}
	if c.General.Verbosity != nil {
		return logging.LevelForVerbosity(*c.General.Verbosity)
	}
	return logging.LevelForVerbosity(logging.VerbosityNormal)
}

// LoggerConfig returns the logger configuration for a component
func (c *Config) LoggerConfig(component string) logging.LoggerConfig {
	cfg := logging.DefaultLoggerConfig(component)
	cfg.Level = c.LogLevel()
	cfg.Format = c.General.LogFormat
	return cfg
}

// AggregatorConfig returns the aggregation settings for the aggregator
func (c *Config) AggregatorConfig(logger *logging.Logger) aggregator.Config {
	return aggregator.Config{
		Strategy:        c.Aggregation.Strategy,
		Isolation:       c.Aggregation.NamespaceIsolation,
		GlobalPrefix:    c.Aggregation.GlobalPrefix,
		DetectConflicts: c.Aggregation.DetectConflicts == nil || *c.Aggregation.DetectConflicts,
		Logger:          logger,
	}
}
