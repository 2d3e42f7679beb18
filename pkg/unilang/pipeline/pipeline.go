// File: pipeline.go
// Title: Command Execution Pipeline
// Description: Processes instruction programs: parses the program, then
//              verifies and dispatches each instruction in order against a
//              registry. Failures become ErrorData; fail-fast mode stops at
//              the first one, best-effort mode continues. The pipeline is
//              synchronous and never spawns goroutines.
// Author: msto63
// Version: v0.1.0
// Created: 2025-10-09
// Modified: 2025-10-11
//
// Change History:
// - 2025-10-09 v0.1.0: Initial pipeline with fail-fast and best-effort modes
// - 2025-10-10 v0.1.0: Help and listing output, command suggestions
// - 2025-10-11 v0.1.0: Audit hook and panic recovery
// - 2025-10-13 v0.1.0: Parse cache for repeated programs

package pipeline

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/msto63/unilang/pkg/core/cache"
	"github.com/msto63/unilang/pkg/core/logging"
	"github.com/msto63/unilang/pkg/unilang/ast"
	uerrors "github.com/msto63/unilang/pkg/unilang/errors"
	"github.com/msto63/unilang/pkg/unilang/help"
	"github.com/msto63/unilang/pkg/unilang/parser"
	"github.com/msto63/unilang/pkg/unilang/registry"
	"github.com/msto63/unilang/pkg/unilang/semantic"
	"github.com/msto63/unilang/pkg/unilang/types"
)

// Options configures the pipeline
type Options struct {
	Logger *logging.Logger
	Mode   Mode
	Parser parser.Options

	// SuggestionDistance bounds "did you mean" hints, see semantic.Options
	SuggestionDistance int
	HelpVerbosity      help.Verbosity

	// HelpAsError reports help requests as HelpRequested errors carrying the
	// help text instead of as help output
	HelpAsError bool

	// ParseCacheSize enables a cache of parsed programs keyed by their text.
	// Only programs that parse without errors are cached. Zero disables it.
	ParseCacheSize int

	Audit AuditLogger

	// Observer, if set, is called on every state transition
	Observer func(index int, state State)
}

// Pipeline processes instruction programs against a registry
type Pipeline struct {
	registry registry.Registry
	parser   *parser.Parser
	verifier *semantic.Verifier
	help     *help.Generator
	parsed   *cache.Cache[[]parser.Result]
	logger   *logging.Logger
	options  Options
}

// New creates a pipeline over reg
func New(reg registry.Registry, opts Options) (*Pipeline, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.SuggestionDistance == 0 {
		opts.SuggestionDistance = semantic.DefaultSuggestionDistance
	}
	if opts.Parser.Logger == nil {
		opts.Parser.Logger = opts.Logger
	}

	p, err := parser.New(opts.Parser)
	if err != nil {
		return nil, err
	}

	pl := &Pipeline{
		registry: reg,
		parser:   p,
		verifier: semantic.New(semantic.Options{Logger: opts.Logger, SuggestionDistance: opts.SuggestionDistance}),
		help:     help.New(reg, opts.HelpVerbosity),
		logger:   opts.Logger.WithField("component", "unilang-pipeline"),
		options:  opts,
	}
	if opts.ParseCacheSize > 0 {
		pl.parsed = cache.New[[]parser.Result](cache.Config{MaxItems: opts.ParseCacheSize})
	}

	pl.logger.Debug("pipeline initialized", "mode", opts.Mode.String(), "commands", reg.Len())
	return pl, nil
}

// Mode returns the configured failure mode
func (p *Pipeline) Mode() Mode {
	return p.options.Mode
}

// Process runs a program in a fresh execution context
func (p *Pipeline) Process(ctx context.Context, program string) *ProgramResult {
	return p.ProcessWithContext(ctx, program, types.NewExecutionContext())
}

// ProcessWithContext runs a program. Every instruction receives a context
// derived from ec that shares its session and store.
func (p *Pipeline) ProcessWithContext(ctx context.Context, program string, ec *types.ExecutionContext) *ProgramResult {
	if ec == nil {
		ec = types.NewExecutionContext()
	}
	start := time.Now()
	result := &ProgramResult{Mode: p.options.Mode}

	p.transition(0, StateTokenizing)
	p.transition(0, StateParsing)
	parsed := p.parse(program)

	for i, pr := range parsed {
		cr := p.run(ctx, i, pr, ec.ForInstruction(i))
		result.Results = append(result.Results, cr)
		if cr.Error != nil && p.options.Mode == FailFast {
			p.logger.Debug("program aborted", "index", i, "code", cr.Error.Code, "skipped", len(parsed)-i-1)
			break
		}
	}

	p.transition(len(parsed), StateIdle)
	result.Duration = time.Since(start)
	return result
}

// ProcessCommand runs exactly one instruction. Text containing ";;" is a
// syntax error.
func (p *Pipeline) ProcessCommand(ctx context.Context, text string, ec *types.ExecutionContext) CommandResult {
	if ec == nil {
		ec = types.NewExecutionContext()
	}
	p.transition(0, StateTokenizing)
	p.transition(0, StateParsing)
	instr, err := p.parser.ParseSingle(text)
	pr := parser.Result{Instruction: instr, Text: strings.TrimSpace(text), Err: err}
	if instr != nil {
		pr.Location = instr.Location
	}
	cr := p.run(ctx, 0, pr, ec.ForInstruction(0))
	p.transition(0, StateIdle)
	return cr
}

// ProcessBatch runs independent command texts in order as one program
func (p *Pipeline) ProcessBatch(ctx context.Context, texts []string, ec *types.ExecutionContext) *ProgramResult {
	if ec == nil {
		ec = types.NewExecutionContext()
	}
	start := time.Now()
	result := &ProgramResult{Mode: p.options.Mode}
	for i, text := range texts {
		cr := p.ProcessCommand(ctx, text, ec)
		cr.Index = i
		result.Results = append(result.Results, cr)
		if cr.Error != nil && p.options.Mode == FailFast {
			break
		}
	}
	result.Duration = time.Since(start)
	return result
}

// ValidateCommand parses and verifies every instruction of program without
// dispatching. It returns the first failure.
func (p *Pipeline) ValidateCommand(program string) error {
	results := p.parse(program)
	if len(results) == 0 {
		return nil
	}
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
		instr := r.Instruction
		if instr.IsEmpty() {
			continue
		}
		entry, err := p.resolve(instr)
		if err != nil {
			return err
		}
		if instr.HelpRequested {
			continue
		}
		if _, err := p.verifier.Verify(instr, entry.Definition); err != nil {
			return err
		}
	}
	return nil
}

// ParseCacheStats reports parse cache counters; ok is false when the cache
// is disabled
func (p *Pipeline) ParseCacheStats() (stats cache.Stats, ok bool) {
	if p.parsed == nil {
		return cache.Stats{}, false
	}
	return p.parsed.Stats(), true
}

func (p *Pipeline) parse(program string) []parser.Result {
	if p.parsed == nil {
		return p.parser.ParseProgram(program)
	}
	if results, ok := p.parsed.Get(program); ok {
		return results
	}
	results := p.parser.ParseProgram(program)
	for _, r := range results {
		if r.Err != nil {
			return results
		}
	}
	p.parsed.Set(program, results)
	return results
}

// run takes one parsed instruction through verification and dispatch
func (p *Pipeline) run(ctx context.Context, index int, pr parser.Result, ec *types.ExecutionContext) CommandResult {
	start := time.Now()
	cr := CommandResult{Index: index, Text: pr.Text}
	var verified *semantic.VerifiedCommand

	output, err := func() (*types.OutputData, error) {
		if pr.Err != nil {
			return nil, pr.Err
		}
		instr := pr.Instruction
		cr.Command = instr.CommandName()

		if instr.IsEmpty() {
			return p.listing(instr)
		}

		entry, err := p.resolve(instr)
		if err != nil {
			return nil, err
		}
		cr.Command = entry.Name()

		if instr.HelpRequested {
			return p.commandHelp(entry)
		}

		p.transition(index, StateVerifying)
		verified, err = p.verifier.Verify(instr, entry.Definition)
		if err != nil {
			return nil, err
		}

		p.transition(index, StateDispatching)
		return p.dispatch(ctx, entry, verified, ec)
	}()

	cr.Duration = time.Since(start)
	if err != nil {
		cr.Error = types.ErrorDataFrom(err)
		p.logger.Debug("instruction failed", "index", index, "command", cr.Command,
			"code", cr.Error.Code, "error", cr.Error.Message)
	} else {
		if output == nil {
			output = types.TextOutput("")
		}
		cr.Output = output
		p.logger.Debug("instruction completed", "index", index, "command", cr.Command, "duration", cr.Duration)
	}

	p.audit(ctx, ec, cr, verified)
	p.transition(index, StateIdle)
	return cr
}

func (p *Pipeline) resolve(instr *ast.GenericInstruction) (*registry.Entry, error) {
	name := instr.CommandName()
	entry, ok := p.registry.Lookup(name)
	if !ok {
		suggestions := semantic.Suggest(name, registry.Names(p.registry), p.options.SuggestionDistance)
		return nil, uerrors.RoutineNotFound(name, dotted(suggestions)).WithLocation(instr.Location)
	}
	return entry, nil
}

func (p *Pipeline) dispatch(ctx context.Context, entry *registry.Entry, cmd *semantic.VerifiedCommand, ec *types.ExecutionContext) (out *types.OutputData, err error) {
	def := entry.Definition
	if entry.Routine == nil {
		return nil, uerrors.NotImplemented(entry.Name(), def.RoutineLink)
	}
	if def.IsDeprecated() {
		msg := def.DeprecationMessage
		if msg == "" {
			msg = "command is deprecated"
		}
		p.logger.Warn("deprecated command invoked", "command", entry.Name(), "message", msg)
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("routine panicked", "command", entry.Name(), "panic", r, "stack", string(debug.Stack()))
			out = nil
			err = uerrors.Internal(fmt.Sprintf("routine for '%s' panicked: %v", entry.Name(), r), nil).
				WithDetail("command", entry.Name())
		}
	}()

	return entry.Routine.Invoke(ctx, cmd, ec)
}

func (p *Pipeline) listing(instr *ast.GenericInstruction) (*types.OutputData, error) {
	text := p.help.List()
	if p.options.HelpAsError && instr.HelpRequested {
		return nil, uerrors.HelpRequested("", text)
	}
	return &types.OutputData{Content: text, Format: types.FormatHelp}, nil
}

func (p *Pipeline) commandHelp(entry *registry.Entry) (*types.OutputData, error) {
	text := p.help.Command(entry.Definition)
	if p.options.HelpAsError {
		return nil, uerrors.HelpRequested(entry.Name(), text)
	}
	return &types.OutputData{Content: text, Format: types.FormatHelp}, nil
}

func (p *Pipeline) audit(ctx context.Context, ec *types.ExecutionContext, cr CommandResult, verified *semantic.VerifiedCommand) {
	if p.options.Audit == nil {
		return
	}
	rec := AuditRecord{
		RequestID: ec.RequestID,
		SessionID: ec.SessionID,
		Index:     cr.Index,
		Command:   cr.Command,
		Success:   cr.Success(),
		Timestamp: ec.Timestamp,
		Duration:  cr.Duration,
	}
	if verified != nil {
		rec.Arguments = verified.Masked()
	}
	if cr.Error != nil {
		rec.ErrorCode = string(cr.Error.Code)
		rec.Message = cr.Error.Message
	}
	if err := p.options.Audit.LogExecution(ctx, rec); err != nil {
		p.logger.Warn("audit record not written", "requestID", ec.RequestID, "error", err)
	}
}

func (p *Pipeline) transition(index int, s State) {
	p.logger.Debug("state", "index", index, "state", s.String())
	if p.options.Observer != nil {
		p.options.Observer(index, s)
	}
}

func dotted(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = "." + n
	}
	return out
}
