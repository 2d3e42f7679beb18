// File: parser.go
// Title: Instruction Parser
// Description: Consumes tokenizer segments and builds GenericInstructions.
//              Handles the command path, named (name::value) and positional
//              arguments, the trailing help operator and ';;' separated
//              multi-instruction programs. Every error carries the location
//              of the offending input.
// Author: msto63
// Version: v0.1.0
// Created: 2025-10-02
// Modified: 2025-10-07
//
// Change History:
// - 2025-10-02 v0.1.0: Initial parser implementation
// - 2025-10-07 v0.1.0: Per-instruction results for program execution

package parser

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/msto63/unilang/pkg/core/logging"
	"github.com/msto63/unilang/pkg/unilang/ast"
	uerrors "github.com/msto63/unilang/pkg/unilang/errors"
	"github.com/msto63/unilang/pkg/unilang/tokenizer"
)

const (
	delimNamed    = "::"
	delimSequence = ";;"
	delimPath     = "."
	delimHelp     = "?"
)

// Parser turns instruction text into GenericInstructions
type Parser struct {
	logger  *logging.Logger
	options Options
}

// Options configures parser behavior
type Options struct {
	Logger         *logging.Logger
	MaxInputLength int
	Tokenizer      tokenizer.Options

	// ErrorOnDuplicateNamedArguments rejects name::a name::b; otherwise the
	// later value wins
	ErrorOnDuplicateNamedArguments bool

	// ErrorOnPositionalAfterNamed rejects positional arguments that follow a
	// named argument
	ErrorOnPositionalAfterNamed bool
}

// Result is the outcome of parsing one instruction of a program
type Result struct {
	Instruction *ast.GenericInstruction
	Text        string
	Location    ast.Location
	Err         error
}

// New creates a parser with the given options
func New(opts Options) (*Parser, error) {
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.MaxInputLength == 0 {
		opts.MaxInputLength = 65536
	}
	if opts.MaxInputLength < 0 {
		return nil, fmt.Errorf("invalid max input length: %d", opts.MaxInputLength)
	}
	opts.Tokenizer = opts.Tokenizer.WithDefaults()

	return &Parser{
		logger:  opts.Logger.WithField("component", "unilang-parser"),
		options: opts,
	}, nil
}

// ParseSingle parses input that must contain at most one instruction.
// Blank input yields an instruction with an empty command path.
func (p *Parser) ParseSingle(input string) (*ast.GenericInstruction, error) {
	results := p.ParseProgram(input)
	if len(results) == 0 {
		return ast.NewInstruction(), nil
	}
	for _, r := range results {
		if r.Err != nil {
			return nil, r.Err
		}
	}
	if len(results) > 1 {
		return nil, uerrors.Syntax("unexpected ';;' in single instruction",
			ast.Location{Start: results[0].Location.End, End: results[1].Location.Start})
	}
	return results[0].Instruction, nil
}

// ParseMultiple parses a ';;' separated program. Blank input yields no
// instructions. The first error aborts parsing.
func (p *Parser) ParseMultiple(input string) ([]*ast.GenericInstruction, error) {
	results := p.ParseProgram(input)
	instructions := make([]*ast.GenericInstruction, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			return nil, r.Err
		}
		instructions = append(instructions, r.Instruction)
	}
	return instructions, nil
}

// ParseProgram parses every instruction of a program independently. A
// lexical error ends the program at the instruction that contains it.
func (p *Parser) ParseProgram(input string) []Result {
	if len(input) > p.options.MaxInputLength {
		return []Result{{
			Text: input,
			Err:  uerrors.InputTooLong(len(input), p.options.MaxInputLength),
		}}
	}
	if strings.TrimSpace(input) == "" {
		return nil
	}

	groups := p.split(input)
	results := make([]Result, 0, len(groups))

	for i, g := range groups {
		res := Result{
			Text:     strings.TrimSpace(input[g.start:g.end]),
			Location: ast.Location{Start: g.start, End: g.end},
		}
		switch {
		case g.err != nil:
			res.Err = g.err
		case g.blank():
			res.Err = uerrors.EmptyInstructionSegment(g.emptyLocation())
		default:
			c := &cursor{
				parser: p,
				segs:   g.trimmed(),
				final:  i == len(groups)-1,
			}
			res.Instruction, res.Err = c.parse()
		}

		if res.Err != nil {
			p.logger.Debug("instruction parse failed", "index", i, "text", res.Text, "error", res.Err)
		} else {
			p.logger.Debug("instruction parsed",
				"index", i,
				"command", res.Instruction.CommandName(),
				"named", len(res.Instruction.NamedArguments),
				"positional", len(res.Instruction.PositionalArguments),
				"help", res.Instruction.HelpRequested)
		}
		results = append(results, res)
	}

	return results
}

// group is the segment run of one instruction between ';;' separators
type group struct {
	segs      []tokenizer.Segment
	start     int
	end       int
	separator *ast.Location // ';;' that opened this group
	err       error
}

func (g group) blank() bool {
	for _, s := range g.segs {
		if !s.IsWhitespace() {
			return false
		}
	}
	return true
}

func (g group) trimmed() []tokenizer.Segment {
	segs := g.segs
	for len(segs) > 0 && segs[0].IsWhitespace() {
		segs = segs[1:]
	}
	for len(segs) > 0 && segs[len(segs)-1].IsWhitespace() {
		segs = segs[:len(segs)-1]
	}
	return segs
}

func (g group) emptyLocation() ast.Location {
	if g.separator != nil {
		return ast.Span(*g.separator, ast.Location{Start: g.end, End: g.end})
	}
	return ast.Location{Start: g.start, End: g.end}
}

// split tokenizes input and cuts the segment stream at ';;'
func (p *Parser) split(input string) []group {
	tok := tokenizer.New(input, p.options.Tokenizer)
	var groups []group
	cur := group{start: 0}

	for {
		seg, err := tok.Next()
		if err != nil {
			cur.err = err
			cur.end = len(input)
			return append(groups, cur)
		}
		if seg.Kind == tokenizer.KindEOF {
			cur.end = seg.Location.Start
			return append(groups, cur)
		}
		if seg.IsDelimiter(delimSequence) {
			cur.end = seg.Location.Start
			groups = append(groups, cur)
			sep := seg.Location
			cur = group{start: seg.Location.End, separator: &sep}
			continue
		}
		cur.segs = append(cur.segs, seg)
	}
}

// cursor walks the segments of a single instruction
type cursor struct {
	parser   *Parser
	segs     []tokenizer.Segment
	pos      int
	final    bool
	instr    *ast.GenericInstruction
	sawNamed bool
}

func (c *cursor) parse() (*ast.GenericInstruction, error) {
	c.instr = ast.NewInstruction()
	c.instr.Location = ast.Span(c.segs[0].Location, c.segs[len(c.segs)-1].Location)

	if err := c.parsePath(); err != nil {
		return nil, err
	}
	if err := c.parseArguments(); err != nil {
		return nil, err
	}
	if c.instr.IsEmpty() && (len(c.instr.NamedArguments) > 0 || len(c.instr.PositionalArguments) > 0) {
		return nil, uerrors.Syntax("expected command path before arguments", c.segs[0].Location)
	}
	return c.instr, nil
}

func (c *cursor) done() bool {
	return c.pos >= len(c.segs)
}

func (c *cursor) current() tokenizer.Segment {
	return c.segs[c.pos]
}

func (c *cursor) peek(offset int) (tokenizer.Segment, bool) {
	i := c.pos + offset
	if i < 0 || i >= len(c.segs) {
		return tokenizer.Segment{}, false
	}
	return c.segs[i], true
}

func (c *cursor) skipWhitespace() {
	for !c.done() && c.current().IsWhitespace() {
		c.pos++
	}
}

// onlyWhitespaceAfter reports whether nothing but whitespace follows index i
func (c *cursor) onlyWhitespaceAfter(i int) bool {
	for j := i + 1; j < len(c.segs); j++ {
		if !c.segs[j].IsWhitespace() {
			return false
		}
	}
	return true
}

// startsNamed reports whether the current segment begins name::value
func (c *cursor) startsNamed() bool {
	seg := c.current()
	if seg.Kind != tokenizer.KindText || seg.Quoted {
		return false
	}
	next, ok := c.peek(1)
	return ok && next.IsDelimiter(delimNamed)
}

// endOfInputError reports a delimiter with nothing after it. It is a
// TrailingDelimiter at the very end of the program and a syntax error
// before a ';;'.
func (c *cursor) endOfInputError(seg tokenizer.Segment, reason string) error {
	if c.final {
		return uerrors.TrailingDelimiter(seg.Raw, seg.Location)
	}
	return uerrors.Syntax(reason, seg.Location)
}

func (c *cursor) parsePath() error {
	if c.current().IsDelimiter(delimPath) {
		dot := c.current()
		c.pos++
		if c.done() || c.current().IsWhitespace() {
			return nil // lone "." lists commands
		}
		if c.current().IsDelimiter(delimPath) {
			return uerrors.Syntax("consecutive dots in command path", ast.Span(dot.Location, c.current().Location))
		}
	}

	for !c.done() {
		seg := c.current()
		if seg.Kind != tokenizer.KindText || seg.Quoted || c.startsNamed() {
			break
		}
		if err := validatePathSegment(seg); err != nil {
			return err
		}
		c.instr.CommandPath = append(c.instr.CommandPath, seg.Value)
		c.pos++

		if c.done() || !c.current().IsDelimiter(delimPath) {
			break
		}

		dot := c.current()
		next, ok := c.peek(1)
		switch {
		case !ok:
			return c.endOfInputError(dot, "command path cannot end with '.'")
		case next.IsDelimiter(delimPath):
			return uerrors.Syntax("consecutive dots in command path", ast.Span(dot.Location, next.Location))
		case next.Kind != tokenizer.KindText || next.Quoted:
			return uerrors.Syntax("command path cannot end with '.'", dot.Location)
		}
		c.pos++ // consume '.'
	}

	if c.done() || c.current().IsWhitespace() || c.current().IsDelimiter(delimHelp) {
		return nil
	}
	if len(c.instr.CommandPath) == 0 {
		// Arguments without a command path are reported after parsing them
		return nil
	}
	seg := c.current()
	return uerrors.Syntax(fmt.Sprintf("unexpected '%s' after command path", seg.Raw), seg.Location)
}

func (c *cursor) parseArguments() error {
	for {
		c.skipWhitespace()
		if c.done() {
			return nil
		}
		seg := c.current()

		switch {
		case seg.IsDelimiter(delimHelp) && c.onlyWhitespaceAfter(c.pos):
			c.instr.HelpRequested = true
			c.pos = len(c.segs)
			return nil

		case seg.IsDelimiter(delimHelp):
			return uerrors.Syntax("help operator '?' must be the last token", seg.Location)

		case seg.IsDelimiter(delimNamed):
			if c.onlyWhitespaceAfter(c.pos) {
				return c.endOfInputError(seg, "unexpected '::' without argument name")
			}
			return uerrors.Syntax("unexpected '::' without argument name", seg.Location)

		case c.startsNamed():
			if err := c.parseNamed(); err != nil {
				return err
			}

		default:
			if err := c.parsePositional(); err != nil {
				return err
			}
		}
	}
}

func (c *cursor) parseNamed() error {
	nameSeg := c.current()
	if err := validateArgumentName(nameSeg); err != nil {
		return err
	}
	sep, _ := c.peek(1)
	c.pos += 2

	c.skipWhitespace()
	if c.done() || (c.current().IsDelimiter(delimHelp) && c.onlyWhitespaceAfter(c.pos)) {
		if c.final && c.done() {
			return uerrors.TrailingDelimiter(sep.Raw, sep.Location)
		}
		return uerrors.Syntax(fmt.Sprintf("expected value for named argument '%s' but found end of instruction",
			nameSeg.Value), sep.Location)
	}
	if c.current().IsDelimiter(delimNamed) {
		return uerrors.Syntax(fmt.Sprintf("expected value for named argument '%s' but found '::'",
			nameSeg.Value), c.current().Location)
	}

	value, loc, quoted := c.readUnit()
	name := nameSeg.Value

	if _, exists := c.instr.NamedArguments[name]; exists && c.parser.options.ErrorOnDuplicateNamedArguments {
		return uerrors.ArgumentDuplicate(name, name).WithLocation(nameSeg.Location)
	}

	c.instr.NamedArguments[name] = ast.Argument{
		Name:          name,
		Value:         value,
		NameLocation:  nameSeg.Location,
		ValueLocation: loc,
		Quoted:        quoted,
	}
	c.sawNamed = true
	return nil
}

func (c *cursor) parsePositional() error {
	start := c.current()
	if c.sawNamed && c.parser.options.ErrorOnPositionalAfterNamed {
		return uerrors.Syntax("positional argument after named argument", start.Location)
	}

	value, loc, quoted := c.readUnit()
	c.instr.PositionalArguments = append(c.instr.PositionalArguments, ast.Argument{
		Value:         value,
		ValueLocation: loc,
		Quoted:        quoted,
	})
	return nil
}

// readUnit joins directly adjacent segments into one value. A unit ends
// at whitespace, at '::' and before a final help operator. Values that
// contain whitespace must be quoted.
func (c *cursor) readUnit() (string, ast.Location, bool) {
	var sb strings.Builder
	first := c.current().Location
	last := first
	quoted := false

	for !c.done() {
		seg := c.current()
		if seg.IsWhitespace() || seg.IsDelimiter(delimNamed) {
			break
		}
		if seg.IsDelimiter(delimHelp) && c.onlyWhitespaceAfter(c.pos) && sb.Len() > 0 {
			break
		}
		sb.WriteString(seg.Value)
		quoted = quoted || seg.Quoted
		last = seg.Location
		c.pos++
	}

	return sb.String(), ast.Span(first, last), quoted
}

func validatePathSegment(seg tokenizer.Segment) error {
	for i, r := range seg.Value {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return uerrors.Syntax(fmt.Sprintf("invalid character '%c' in command path segment '%s'", r, seg.Value),
			seg.Location)
	}
	return nil
}

func validateArgumentName(seg tokenizer.Segment) error {
	for i, r := range seg.Value {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && (unicode.IsDigit(r) || r == '-')) {
			continue
		}
		return uerrors.Syntax(fmt.Sprintf("invalid character '%c' in argument name '%s'", r, seg.Value),
			seg.Location)
	}
	return nil
}
