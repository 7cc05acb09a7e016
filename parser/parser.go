// Package parser turns sankey diagram source into flow records.
//
// Parsing is split into three replaceable pieces, composed by New:
//
//   - a Tokenizer producing a pull-based TokenSource (the default is Lexer)
//   - a ValueConverter materializing field values (DefaultValueConverter)
//   - the record state machine in Parser, which pulls tokens, skips trivia and
//     recovers from malformed lines by skipping to the next newline
//
// A parse never fails: problems are reported as Diagnostics next to the
// records that could be recovered.
package parser

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/sankey/ast"
	"github.com/robinvdvleuten/sankey/telemetry"
)

// TokenSource yields tokens one at a time, left to right.
type TokenSource interface {
	// Next returns the next token; EOF is returned forever at the end.
	Next() Token
	// Diagnostics returns tokenizer problems found so far.
	Diagnostics() []Diagnostic
}

// Tokenizer creates a TokenSource over a complete source buffer.
type Tokenizer interface {
	Tokenize(source []byte, filename string) TokenSource
}

// DefaultTokenizer creates a Lexer for every call.
type DefaultTokenizer struct {
	Options []LexerOption
}

var _ Tokenizer = DefaultTokenizer{}

// Tokenize implements Tokenizer.
func (t DefaultTokenizer) Tokenize(source []byte, filename string) TokenSource {
	return NewLexer(source, filename, t.Options...)
}

// Parser drives the record grammar over a token stream.
// A Parser holds no per-parse state and is safe for concurrent use.
type Parser struct {
	tokenizer Tokenizer
	converter ValueConverter
	filename  string
	recovery  bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithTokenizer replaces the default tokenizer.
func WithTokenizer(t Tokenizer) Option {
	return func(p *Parser) {
		p.tokenizer = t
	}
}

// WithValueConverter replaces the default value converter.
func WithValueConverter(c ValueConverter) Option {
	return func(p *Parser) {
		p.converter = c
	}
}

// WithFilename sets the filename reported in diagnostic positions.
func WithFilename(filename string) Option {
	return func(p *Parser) {
		p.filename = filename
	}
}

// WithRecovery controls line-level error recovery. When disabled, parsing
// stops at the first diagnostic and no records are returned.
func WithRecovery(enabled bool) Option {
	return func(p *Parser) {
		p.recovery = enabled
	}
}

// New creates a Parser with the given options.
func New(opts ...Option) *Parser {
	p := &Parser{
		tokenizer: DefaultTokenizer{},
		converter: DefaultValueConverter{},
		recovery:  true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Filename returns the filename used for diagnostic positions.
func (p *Parser) Filename() string {
	return p.filename
}

// Result holds the records and diagnostics of one parse.
type Result struct {
	Header      string
	Records     []*ast.Record
	Diagnostics []Diagnostic
}

// Diagram returns the records as an ast.Diagram.
func (r *Result) Diagram() *ast.Diagram {
	return ast.NewDiagram(r.Header, r.Records...)
}

// HasErrors reports whether any diagnostic has error severity.
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity >= SeverityError {
			return true
		}
	}
	return false
}

// Errors returns the diagnostics as a slice of errors.
func (r *Result) Errors() []error {
	errs := make([]error, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		errs[i] = d
	}
	return errs
}

// Err joins all diagnostics into one error, or returns nil.
func (r *Result) Err() error {
	return errors.Join(r.Errors()...)
}

// Parse parses source into records. It never suspends and never fails;
// ctx only carries telemetry.
func (p *Parser) Parse(ctx context.Context, source []byte) *Result {
	name := p.filename
	if name == "" {
		name = "<input>"
	}
	timer := telemetry.FromContext(ctx).Start(fmt.Sprintf("parser.parse %s", name))
	defer timer.End()

	r := &run{
		source:    source,
		filename:  p.filename,
		converter: p.converter,
		recovery:  p.recovery,
		tokens:    p.tokenizer.Tokenize(source, p.filename),
		interner:  NewInterner(len(source)/64 + 16),
		records:   []*ast.Record{},
	}
	r.parseRecords()

	res := r.result()
	timer.Note("%d records", len(res.Records))
	if n := len(res.Diagnostics); n > 0 {
		timer.Note("%d diagnostics", n)
	}
	return res
}

// ParseString is a convenience wrapper around Parse.
func (p *Parser) ParseString(ctx context.Context, source string) *Result {
	return p.Parse(ctx, []byte(source))
}

// ParseBytes parses data with the default parser.
func ParseBytes(ctx context.Context, data []byte) *Result {
	return New().Parse(ctx, data)
}

// ParseBytesWithFilename parses data with the default parser, reporting
// positions against filename.
func ParseBytesWithFilename(ctx context.Context, filename string, data []byte) *Result {
	return New(WithFilename(filename)).Parse(ctx, data)
}

// ParseReader reads r to the end and parses it with the default parser.
func ParseReader(ctx context.Context, r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return ParseBytes(ctx, data), nil
}

// state is the position inside a record line.
type state uint8

const (
	expectSourceField state = iota
	expectComma1
	expectTargetField
	expectComma2
	expectWeightField
	expectTerminator
	stateDone
)

// run is the per-parse state. It is owned by exactly one Parse call.
type run struct {
	source    []byte
	filename  string
	converter ValueConverter
	recovery  bool

	tokens   TokenSource
	seen     int // tokenizer diagnostics already collected
	interner *Interner

	header      string
	records     []*ast.Record
	diagnostics []Diagnostic
}

// parseRecords runs the record state machine until end of input.
func (r *run) parseRecords() {
	var (
		st     = expectSourceField
		rec    *ast.Record
		first  Token // first field of the current record
		last   Token // last consumed token of the current record
		fields int
	)

	for st != stateDone {
		tok := r.next()
		if r.halted() {
			return
		}

		if tok.Type == ILLEGAL {
			// Already reported by the tokenizer.
			st = r.recover(tok)
			continue
		}

		switch st {
		case expectSourceField:
			switch {
			case tok.Type == EOF:
				st = stateDone
			case tok.Type == NEWLINE:
				// Blank line.
			case tok.Type.IsField():
				first, last, fields = tok, tok, 1
				rec = &ast.Record{Pos: tok.Position(r.filename)}
				node, ok := r.node(tok)
				if !ok {
					st = r.recover(r.next())
					continue
				}
				rec.Source = node
				st = expectComma1
			default:
				st = r.unexpected(tok, "expected source node, found %s", describe(tok, r.source))
			}

		case expectComma1, expectComma2:
			switch {
			case tok.Type == COMMA:
				last = tok
				st++
			case tok.Type == NEWLINE || tok.Type == EOF:
				st = r.malformed(first, last, tok, fields)
			default:
				st = r.unexpected(tok, "expected ',' after field, found %s", describe(tok, r.source))
			}

		case expectTargetField:
			switch {
			case tok.Type.IsField():
				last, fields = tok, 2
				node, ok := r.node(tok)
				if !ok {
					st = r.recover(r.next())
					continue
				}
				rec.Target = node
				st = expectComma2
			case tok.Type == NEWLINE || tok.Type == EOF:
				st = r.malformed(first, last, tok, fields)
			default:
				st = r.unexpected(tok, "expected target node, found %s", describe(tok, r.source))
			}

		case expectWeightField:
			switch {
			case tok.Type.IsField():
				last, fields = tok, 3
				val, ok := r.convert(WeightRule, tok)
				if !ok {
					st = r.recover(r.next())
					continue
				}
				rec.Weight = val.Number
				st = expectTerminator
			case tok.Type == NEWLINE || tok.Type == EOF:
				st = r.malformed(first, last, tok, fields)
			default:
				st = r.unexpected(tok, "expected weight, found %s", describe(tok, r.source))
			}

		case expectTerminator:
			switch tok.Type {
			case NEWLINE, EOF:
				rec.Span = ast.Span{Start: first.Start, End: last.End}
				r.records = append(r.records, rec)
				rec = nil
				st = expectSourceField
				if tok.Type == EOF {
					st = stateDone
				}
			case COMMA:
				st = r.malformed(first, last, tok, fields+1)
			default:
				st = r.unexpected(tok, "expected end of line after weight, found %s", describe(tok, r.source))
			}
		}
	}
}

// result finalizes the parse. Diagnostics are ordered by source position.
func (r *run) result() *Result {
	diagnostics := r.diagnostics
	if diagnostics == nil {
		diagnostics = []Diagnostic{}
	}
	slices.SortStableFunc(diagnostics, func(a, b Diagnostic) int {
		return a.Span.Start - b.Span.Start
	})

	records := r.records
	if !r.recovery && len(diagnostics) > 0 {
		records = []*ast.Record{}
	}

	return &Result{
		Header:      r.header,
		Records:     records,
		Diagnostics: diagnostics,
	}
}
