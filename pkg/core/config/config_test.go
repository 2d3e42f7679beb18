package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/msto63/unilang/pkg/unilang/aggregator"
	"github.com/msto63/unilang/pkg/unilang/pipeline"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "30s", 30 * time.Second, false},
		{"minutes", "5m", 5 * time.Minute, false},
		{"hours", "720h", 720 * time.Hour, false},
		{"complex", "1h30m", 90 * time.Minute, false},
		{"invalid", "invalid", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))

			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalText() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && d.Duration != tt.expected {
				t.Errorf("UnmarshalText() = %v, want %v", d.Duration, tt.expected)
			}
		})
	}
}

func TestDuration_MarshalText(t *testing.T) {
	d := Duration{5 * time.Minute}
	result, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() error = %v", err)
	}
	if string(result) != "5m0s" {
		t.Errorf("MarshalText() = %v, want 5m0s", string(result))
	}
}

// clearEnv removes UNILANG_* overrides for the duration of a test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"UNILANG_CONFIG",
		"UNILANG_VERBOSITY",
		"UNILANG_HELP_VERBOSITY",
		"UNILANG_GLOBAL_PREFIX",
		"UNILANG_DETECT_CONFLICTS",
		"UNILANG_PIPELINE_MODE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestConfig_applyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.General.Name != "unilang" {
		t.Errorf("General.Name = %v, want unilang", cfg.General.Name)
	}
	if cfg.General.LogFormat != "text" {
		t.Errorf("General.LogFormat = %v, want text", cfg.General.LogFormat)
	}
	if cfg.Parser.MaxInputLength != 65536 {
		t.Errorf("Parser.MaxInputLength = %v, want 65536", cfg.Parser.MaxInputLength)
	}
	if cfg.Pipeline.Mode != pipeline.FailFast {
		t.Errorf("Pipeline.Mode = %v, want fail_fast", cfg.Pipeline.Mode)
	}
	if cfg.Help.Verbosity == nil || *cfg.Help.Verbosity != 1 {
		t.Errorf("Help.Verbosity = %v, want 1", cfg.Help.Verbosity)
	}
	if cfg.Aggregation.DetectConflicts == nil || !*cfg.Aggregation.DetectConflicts {
		t.Error("Aggregation.DetectConflicts should default to true")
	}
	if cfg.Aggregation.Strategy != aggregator.FirstWins {
		t.Errorf("Aggregation.Strategy = %v, want first_wins", cfg.Aggregation.Strategy)
	}
	if cfg.Aggregation.NamespaceIsolation.Separator != "." {
		t.Errorf("NamespaceIsolation.Separator = %q, want .", cfg.Aggregation.NamespaceIsolation.Separator)
	}
	if cfg.Audit.Retention.Duration != 30*24*time.Hour {
		t.Errorf("Audit.Retention = %v, want 720h", cfg.Audit.Retention.Duration)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/unilang.toml")
	if err == nil {
		t.Error("Load() expected error for non-existent file")
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "unilang.toml")

	configContent := `
[general]
name = "test-cli"
verbosity = 2

[pipeline]
mode = "best-effort"
parse_cache_size = 64

[aggregation]
global_prefix = "acme"
detect_conflicts = false
strategy = "last_wins"

[aggregation.namespace_isolation]
enabled = true
separator = "_"

[[aggregation.modules]]
name = "math"
path = "defs/math.yaml"

[[aggregation.modules]]
name = "git-tools"
path = "/opt/defs/git.yaml"
prefix = "git"
enabled = false

[audit]
enabled = true
retention = "24h"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.General.Name != "test-cli" {
		t.Errorf("General.Name = %v, want test-cli", cfg.General.Name)
	}
	if cfg.LogLevel() != "debug" {
		t.Errorf("LogLevel() = %v, want debug", cfg.LogLevel())
	}
	if cfg.Pipeline.Mode != pipeline.BestEffort {
		t.Errorf("Pipeline.Mode = %v, want best_effort", cfg.Pipeline.Mode)
	}
	if cfg.Pipeline.ParseCacheSize != 64 {
		t.Errorf("Pipeline.ParseCacheSize = %d, want 64", cfg.Pipeline.ParseCacheSize)
	}
	if cfg.Aggregation.Strategy != aggregator.LastWins {
		t.Errorf("Aggregation.Strategy = %v, want last_wins", cfg.Aggregation.Strategy)
	}
	if !cfg.Aggregation.NamespaceIsolation.Enabled || cfg.Aggregation.NamespaceIsolation.Separator != "_" {
		t.Errorf("NamespaceIsolation = %+v", cfg.Aggregation.NamespaceIsolation)
	}
	if len(cfg.Aggregation.Modules) != 2 {
		t.Fatalf("Modules = %d, want 2", len(cfg.Aggregation.Modules))
	}

	math := cfg.Aggregation.Modules[0]
	if math.Path != filepath.Join(tmpDir, "defs/math.yaml") {
		t.Errorf("relative module path = %v, want it resolved against the config dir", math.Path)
	}
	if !math.IsEnabled() {
		t.Error("module without enabled key should be enabled")
	}
	git := cfg.Aggregation.Modules[1]
	if git.Path != "/opt/defs/git.yaml" || git.IsEnabled() {
		t.Errorf("git module = %+v", git)
	}

	// Defaults still apply to missing values
	if cfg.Parser.MaxInputLength != 65536 {
		t.Errorf("Parser.MaxInputLength = %v, want 65536 (default)", cfg.Parser.MaxInputLength)
	}
	if cfg.Audit.Retention.Duration != 24*time.Hour {
		t.Errorf("Audit.Retention = %v, want 24h", cfg.Audit.Retention.Duration)
	}

	agg := cfg.AggregatorConfig(nil)
	if agg.DetectConflicts || agg.GlobalPrefix != "acme" || agg.Strategy != aggregator.LastWins {
		t.Errorf("AggregatorConfig() = %+v", agg)
	}
}

func TestParse_Invalid(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", "[general\nname = 1"},
		{"unknown strategy", "[aggregation]\nstrategy = \"random\""},
		{"unknown mode", "[pipeline]\nmode = \"sometimes\""},
		{"bad separator", "[aggregation.namespace_isolation]\nseparator = \"/\""},
		{"module without name", "[[aggregation.modules]]\npath = \"a.yaml\""},
		{"module without path", "[[aggregation.modules]]\nname = \"a\""},
		{"duplicate module", "[[aggregation.modules]]\nname = \"a\"\npath = \"a.yaml\"\n[[aggregation.modules]]\nname = \"a\"\npath = \"b.yaml\""},
		{"negative input length", "[parser]\nmax_input_length = -5"},
		{"negative parse cache", "[pipeline]\nparse_cache_size = -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.content); err == nil {
				t.Errorf("Parse(%q) expected error", tt.content)
			}
		})
	}
}

func TestConfig_expandEnvVars(t *testing.T) {
	t.Setenv("TEST_DEFS_DIR", "/srv/defs")

	cfg := &Config{
		Audit: AuditConfig{Path: "$TEST_DEFS_DIR/audit.db"},
		Aggregation: AggregationConfig{
			Modules: []ModuleConfig{{Name: "math", Path: "${TEST_DEFS_DIR}/math.yaml"}},
		},
	}

	cfg.expandEnvVars()

	if cfg.Audit.Path != "/srv/defs/audit.db" {
		t.Errorf("Audit.Path = %v, want /srv/defs/audit.db", cfg.Audit.Path)
	}
	if cfg.Aggregation.Modules[0].Path != "/srv/defs/math.yaml" {
		t.Errorf("module path = %v, want /srv/defs/math.yaml", cfg.Aggregation.Modules[0].Path)
	}
}

func TestConfig_applyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("UNILANG_VERBOSITY", "0")
	t.Setenv("UNILANG_HELP_VERBOSITY", "2")
	t.Setenv("UNILANG_GLOBAL_PREFIX", "corp")
	t.Setenv("UNILANG_DETECT_CONFLICTS", "false")
	t.Setenv("UNILANG_PIPELINE_MODE", "best_effort")
	t.Setenv("UNILANG_MODULE_GIT_TOOLS_ENABLED", "false")
	t.Setenv("UNILANG_MODULE_GIT_TOOLS_PREFIX", "g")

	cfg, err := Parse(`
[[aggregation.modules]]
name = "git-tools"
path = "git.yaml"
`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.General.Verbosity == nil || *cfg.General.Verbosity != 0 {
		t.Errorf("General.Verbosity = %v, want 0", cfg.General.Verbosity)
	}
	if cfg.LogLevel() != "error" {
		t.Errorf("LogLevel() = %v, want error", cfg.LogLevel())
	}
	if *cfg.Help.Verbosity != 2 {
		t.Errorf("Help.Verbosity = %v, want 2", *cfg.Help.Verbosity)
	}
	if cfg.Aggregation.GlobalPrefix != "corp" {
		t.Errorf("GlobalPrefix = %v, want corp", cfg.Aggregation.GlobalPrefix)
	}
	if *cfg.Aggregation.DetectConflicts {
		t.Error("DetectConflicts should be overridden to false")
	}
	if cfg.Pipeline.Mode != pipeline.BestEffort {
		t.Errorf("Pipeline.Mode = %v, want best_effort", cfg.Pipeline.Mode)
	}
	m := cfg.Aggregation.Modules[0]
	if m.IsEnabled() || m.Prefix != "g" {
		t.Errorf("module = %+v, want disabled with prefix g", m)
	}
}

func TestEnvName(t *testing.T) {
	tests := map[string]string{
		"math":      "MATH",
		"git-tools": "GIT_TOOLS",
		"a.b c":     "A_B_C",
		"v2":        "V2",
	}
	for in, want := range tests {
		if got := envName(in); got != want {
			t.Errorf("envName(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoadFromEnv_ExplicitPath(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(path, []byte("[general]\nname = \"from-env\"\n"), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	t.Setenv("UNILANG_CONFIG", path)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.General.Name != "from-env" {
		t.Errorf("General.Name = %v, want from-env", cfg.General.Name)
	}
}

func TestLoadFromEnv_NoConfigFound(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	// Change to a temp directory without config files
	originalWd, _ := os.Getwd()
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	defer os.Chdir(originalWd)

	_, err := LoadFromEnv()
	if !errors.Is(err, ErrNoConfig) {
		t.Errorf("LoadFromEnv() error = %v, want ErrNoConfig", err)
	}
}

func TestDefault(t *testing.T) {
	clearEnv(t)
	cfg := Default()
	if cfg.General.Name != "unilang" {
		t.Errorf("General.Name = %v, want unilang", cfg.General.Name)
	}
	lc := cfg.LoggerConfig("unilang-cli")
	if lc.ServiceName != "unilang-cli" || lc.Level != "info" || lc.Format != "text" {
		t.Errorf("LoggerConfig() = %+v", lc)
	}
}
