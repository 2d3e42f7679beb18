// File: tokenizer.go
// Title: Instruction Tokenizer
// Description: Splits raw instruction text into text and delimiter segments.
//              Quote and escape aware; inside quotes delimiters are not
//              boundaries. Plain byte runs are scanned in bulk through a
//              byte-class table, quote and escape handling falls back to a
//              scalar state machine.
// Author: msto63
// Version: v0.1.0
// Created: 2025-10-02
// Modified: 2025-10-06
//
// Change History:
// - 2025-10-02 v0.1.0: Initial tokenizer
// - 2025-10-06 v0.1.0: Byte-class fast path for plain runs

package tokenizer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/msto63/unilang/pkg/unilang/ast"
	uerrors "github.com/msto63/unilang/pkg/unilang/errors"
)

// SegmentKind tags a segment as text, delimiter or end of input
type SegmentKind int

const (
	KindText SegmentKind = iota
	KindDelimiter
	KindEOF
)

// String returns the kind name
func (k SegmentKind) String() string {
	switch k {
	case KindText:
		return "TEXT"
	case KindDelimiter:
		return "DELIMITER"
	case KindEOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

// Segment is a contiguous run of input between delimiter boundaries
type Segment struct {
	Kind     SegmentKind
	Value    string       // unescaped, quotes stripped
	Raw      string       // exact source slice
	Location ast.Location // byte range of Raw
	Quoted   bool         // Value contained at least one quoted part
}

// String returns a debug representation of the segment
func (s Segment) String() string {
	switch s.Kind {
	case KindEOF:
		return "EOF"
	case KindDelimiter:
		return fmt.Sprintf("DELIM(%q)", s.Raw)
	default:
		return fmt.Sprintf("TEXT(%q)", s.Value)
	}
}

// IsDelimiter reports whether the segment is the given delimiter
func (s Segment) IsDelimiter(delim string) bool {
	return s.Kind == KindDelimiter && s.Raw == delim
}

// IsWhitespace reports whether the segment is a whitespace delimiter
func (s Segment) IsWhitespace() bool {
	return s.Kind == KindDelimiter && len(s.Raw) > 0 && isSpace(s.Raw[0])
}

// QuotePair describes an opening and closing quote byte
type QuotePair struct {
	Open  byte
	Close byte
}

// Default delimiter alphabet. Multi-byte delimiters win over their prefixes.
var DefaultDelimiters = []string{"::", ";;", ":", "?", "#", ".", "!"}

// DefaultQuotePairs are double and single quotes
var DefaultQuotePairs = []QuotePair{{Open: '"', Close: '"'}, {Open: '\'', Close: '\''}}

// DefaultEscape is the backslash
const DefaultEscape byte = '\\'

// Options configures the tokenizer
type Options struct {
	Delimiters []string
	QuotePairs []QuotePair
	Escape     byte
	ScalarOnly bool // disable the bulk scan of plain byte runs
}

// WithDefaults fills unset options
func (o Options) WithDefaults() Options {
	if len(o.Delimiters) == 0 {
		o.Delimiters = DefaultDelimiters
	}
	if len(o.QuotePairs) == 0 {
		o.QuotePairs = DefaultQuotePairs
	}
	if o.Escape == 0 {
		o.Escape = DefaultEscape
	}
	return o
}

type byteClass uint8

const (
	classPlain byteClass = iota
	classSpace
	classDelim
	classQuote
)

var escapeTable = map[byte]byte{
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'\\': '\\',
	'"':  '"',
	'\'': '\'',
}

// Tokenizer produces segments lazily from one input string
type Tokenizer struct {
	input        string
	pos          int
	opts         Options
	classes      [256]byteClass
	closers      [256]byte
	delimiters   []string
	emittedEmpty bool
	done         bool
	err          error
}

// New creates a tokenizer over input
func New(input string, opts Options) *Tokenizer {
	opts = opts.WithDefaults()

	t := &Tokenizer{
		input: input,
		opts:  opts,
	}

	// Longest delimiters first so "::" beats ":"
	t.delimiters = append([]string(nil), opts.Delimiters...)
	sort.SliceStable(t.delimiters, func(i, j int) bool {
		return len(t.delimiters[i]) > len(t.delimiters[j])
	})

	for _, c := range []byte{' ', '\t', '\r', '\n'} {
		t.classes[c] = classSpace
	}
	for _, d := range t.delimiters {
		if d != "" {
			t.classes[d[0]] = classDelim
		}
	}
	for _, q := range opts.QuotePairs {
		t.classes[q.Open] = classQuote
		t.closers[q.Open] = q.Close
	}

	return t
}

// Reset rewinds the tokenizer to the start of its input
func (t *Tokenizer) Reset() {
	t.pos = 0
	t.emittedEmpty = false
	t.done = false
	t.err = nil
}

// Input returns the text being tokenized
func (t *Tokenizer) Input() string {
	return t.input
}

// Next returns the next segment. After the last segment it keeps returning
// an EOF segment. A lexical error is sticky until Reset.
func (t *Tokenizer) Next() (Segment, error) {
	if t.err != nil {
		return Segment{}, t.err
	}
	if t.done {
		return t.eof(), nil
	}

	// Empty input yields a single empty text segment
	if len(t.input) == 0 {
		if !t.emittedEmpty {
			t.emittedEmpty = true
			return Segment{Kind: KindText, Location: ast.Location{}}, nil
		}
		t.done = true
		return t.eof(), nil
	}

	if t.pos >= len(t.input) {
		t.done = true
		return t.eof(), nil
	}

	start := t.pos
	switch t.classes[t.input[start]] {
	case classSpace:
		end := start
		for end < len(t.input) && isSpace(t.input[end]) {
			end++
		}
		t.pos = end
		return t.delimiter(start, end), nil

	case classDelim:
		if d := t.matchDelimiter(start); d != "" {
			t.pos = start + len(d)
			return t.delimiter(start, t.pos), nil
		}
	}

	seg, err := t.readText(start)
	if err != nil {
		t.err = err
		return Segment{}, err
	}
	return seg, nil
}

// readText consumes one text unit starting at start
func (t *Tokenizer) readText(start int) (Segment, error) {
	var sb *strings.Builder
	if t.opts.ScalarOnly {
		sb = &strings.Builder{}
	}
	quoted := false
	i := start
	n := len(t.input)

scan:
	for i < n {
		c := t.input[i]
		switch t.classes[c] {
		case classPlain:
			if t.opts.ScalarOnly {
				sb.WriteByte(c)
				i++
				continue
			}
			j := i + 1
			for j < n && t.classes[t.input[j]] == classPlain {
				j++
			}
			if sb != nil {
				sb.WriteString(t.input[i:j])
			}
			i = j

		case classSpace:
			break scan

		case classDelim:
			if t.matchDelimiter(i) != "" {
				break scan
			}
			// Prefix of a multi-byte delimiter only, e.g. a single ';'
			if sb != nil {
				sb.WriteByte(c)
			}
			i++

		case classQuote:
			if sb == nil {
				sb = &strings.Builder{}
				sb.WriteString(t.input[start:i])
			}
			quoted = true
			next, err := t.readQuoted(i, sb)
			if err != nil {
				return Segment{}, err
			}
			i = next
		}
	}

	value := t.input[start:i]
	if sb != nil {
		value = sb.String()
	}
	t.pos = i

	return Segment{
		Kind:     KindText,
		Value:    value,
		Raw:      t.input[start:i],
		Location: ast.Location{Start: start, End: i},
		Quoted:   quoted,
	}, nil
}

// readQuoted consumes a quoted run whose opening quote is at open and
// returns the position after the closing quote
func (t *Tokenizer) readQuoted(open int, sb *strings.Builder) (int, error) {
	quote := t.input[open]
	closer := t.closers[quote]
	n := len(t.input)

	for i := open + 1; i < n; {
		c := t.input[i]
		switch {
		case c == t.opts.Escape:
			if i+1 >= n {
				return 0, uerrors.UnterminatedQuote(quote, ast.Location{Start: open, End: n})
			}
			translated, ok := escapeTable[t.input[i+1]]
			if !ok {
				return 0, uerrors.InvalidEscapeSequence(t.input[i:i+2], ast.Location{Start: i, End: i + 2})
			}
			sb.WriteByte(translated)
			i += 2
		case c == closer:
			return i + 1, nil
		default:
			sb.WriteByte(c)
			i++
		}
	}

	return 0, uerrors.UnterminatedQuote(quote, ast.Location{Start: open, End: n})
}

// matchDelimiter returns the longest delimiter starting at pos, or ""
func (t *Tokenizer) matchDelimiter(pos int) string {
	for _, d := range t.delimiters {
		if d != "" && strings.HasPrefix(t.input[pos:], d) {
			return d
		}
	}
	return ""
}

func (t *Tokenizer) delimiter(start, end int) Segment {
	raw := t.input[start:end]
	return Segment{
		Kind:     KindDelimiter,
		Value:    raw,
		Raw:      raw,
		Location: ast.Location{Start: start, End: end},
	}
}

func (t *Tokenizer) eof() Segment {
	n := len(t.input)
	return Segment{Kind: KindEOF, Location: ast.Location{Start: n, End: n}}
}

// Tokenize returns all segments of input, terminated by an EOF segment
func Tokenize(input string, opts Options) ([]Segment, error) {
	t := New(input, opts)
	var segments []Segment

	for {
		seg, err := t.Next()
		if err != nil {
			return segments, err
		}
		segments = append(segments, seg)
		if seg.Kind == KindEOF {
			return segments, nil
		}
	}
}

// Reassemble joins the raw text of segments back into source text
func Reassemble(segments []Segment) string {
	var sb strings.Builder
	for _, s := range segments {
		sb.WriteString(s.Raw)
	}
	return sb.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
