package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/msto63/unilang/internal/audit"
	"github.com/msto63/unilang/internal/builtins"
	"github.com/msto63/unilang/pkg/core/config"
	"github.com/msto63/unilang/pkg/core/logging"
	"github.com/msto63/unilang/pkg/unilang/aggregator"
	"github.com/msto63/unilang/pkg/unilang/help"
	"github.com/msto63/unilang/pkg/unilang/loader"
	"github.com/msto63/unilang/pkg/unilang/parser"
	"github.com/msto63/unilang/pkg/unilang/pipeline"
	"github.com/msto63/unilang/pkg/unilang/registry"
)

// builtinModule names the module holding the built-in commands
const builtinModule = "builtin"

// app is the wired core shared by all subcommands
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	registry registry.Registry
	report   aggregator.ConflictReport
	sources  map[string]string
	pipeline *pipeline.Pipeline
	help     *help.Generator
	audit    audit.Store
}

func loadConfig(opts *options) (*config.Config, error) {
	if opts.cfgFile != "" {
		return config.Load(opts.cfgFile)
	}
	cfg, err := config.LoadFromEnv()
	if errors.Is(err, config.ErrNoConfig) {
		return config.Default(), nil
	}
	return cfg, err
}

// newApp loads configuration and definitions and builds the pipeline.
// Logs go to logOut.
func newApp(ctx context.Context, opts *options, logOut io.Writer) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	if opts.verbose {
		cfg.General.LogLevel = "debug"
	}

	logCfg := cfg.LoggerConfig("unilang")
	logCfg.Output = logOut
	logger := logging.NewLogger(logCfg)

	timer := logger.StartTimer("build registry")
	catalog := builtins.NewCatalog(logger)
	modules, err := loadModules(ctx, cfg, opts.defs, catalog)
	if err != nil {
		timer.StopWithError(err)
		return nil, err
	}
	timer.Checkpoint("definitions loaded")

	agg, err := aggregator.Aggregate(cfg.AggregatorConfig(logger), modules...)
	if err != nil {
		if cfg.Aggregation.Strategy == aggregator.Error {
			timer.StopWithError(err)
			return nil, err
		}
		logger.Warn("some definitions were rejected", "error", err)
	}
	timer.Stop()

	reg, err := agg.Registry.Freeze()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		report:   agg.Report,
		sources:  agg.Sources,
	}

	helpVerbosity := help.Normal
	if cfg.Help.Verbosity != nil {
		helpVerbosity = help.Verbosity(*cfg.Help.Verbosity)
	}
	a.help = help.New(reg, helpVerbosity)

	pipeOpts := pipeline.Options{
		Logger: logger,
		Mode:   cfg.Pipeline.Mode,
		Parser: parser.Options{
			MaxInputLength:                 cfg.Parser.MaxInputLength,
			ErrorOnDuplicateNamedArguments: cfg.Parser.ErrorOnDuplicateNamed,
			ErrorOnPositionalAfterNamed:    cfg.Parser.ErrorOnPositionalAfterNamed,
		},
		SuggestionDistance: cfg.Pipeline.SuggestionDistance,
		HelpVerbosity:      helpVerbosity,
		ParseCacheSize:     cfg.Pipeline.ParseCacheSize,
	}
	if opts.bestEffort {
		pipeOpts.Mode = pipeline.BestEffort
	}

	if path := auditPath(cfg, opts); path != "" {
		store, err := audit.NewSQLiteStore(audit.SQLiteConfig{Path: path})
		if err != nil {
			return nil, fmt.Errorf("failed to open audit store: %w", err)
		}
		if n, err := store.Prune(ctx, cfg.Audit.Retention.Duration); err != nil {
			logger.Warn("audit prune failed", "error", err)
		} else if n > 0 {
			logger.Debug("audit entries pruned", "count", n)
		}
		a.audit = store
		pipeOpts.Audit = store
	}

	a.pipeline, err = pipeline.New(reg, pipeOpts)
	if err != nil {
		a.Close()
		return nil, err
	}

	logger.Debug("core ready", "commands", reg.Len(), "conflicts", len(agg.Report.Conflicts))
	return a, nil
}

func auditPath(cfg *config.Config, opts *options) string {
	if opts.auditPath != "" {
		return opts.auditPath
	}
	if cfg.Audit.Enabled {
		return cfg.Audit.Path
	}
	return ""
}

// loadModules returns the built-in module followed by the configured
// modules and the --defs files, in that order
func loadModules(ctx context.Context, cfg *config.Config, defs []string, catalog *builtins.Catalog) ([]aggregator.Module, error) {
	modules := []aggregator.Module{{Name: builtinModule, Entries: catalog.Entries()}}

	var paths []string
	var pending []aggregator.Module
	for _, m := range cfg.Aggregation.Modules {
		mod := aggregator.Module{Name: m.Name, Prefix: m.Prefix, Disabled: !m.IsEnabled()}
		if !mod.Disabled {
			paths = append(paths, m.Path)
		}
		pending = append(pending, mod)
	}
	for _, path := range defs {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		pending = append(pending, aggregator.Module{Name: name})
		paths = append(paths, path)
	}

	loaded, err := loader.LoadFiles(ctx, paths)
	if err != nil {
		return nil, err
	}

	next := 0
	for _, mod := range pending {
		if !mod.Disabled {
			mod.Entries = catalog.Bind(loaded[next])
			next++
		}
		modules = append(modules, mod)
	}
	return modules, nil
}

// Close releases the audit store
func (a *app) Close() error {
	if a.audit != nil {
		return a.audit.Close()
	}
	return nil
}
