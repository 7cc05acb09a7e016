// Package formatter re-emits sankey diagrams in canonical form.
//
// Records are written one per line as source,target,weight. Node names are
// quoted only when they would not read back unchanged, weights are printed
// in plain decimal notation and, optionally, the columns are aligned by
// display width. Comment lines, trailing comments and blank lines of the
// original source are preserved.
package formatter

import (
	"context"
	"io"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/robinvdvleuten/sankey/ast"
	"github.com/robinvdvleuten/sankey/parser"
	"github.com/robinvdvleuten/sankey/telemetry"
)

const (
	// DefaultQuote is the quote character used for node names that need quoting.
	DefaultQuote = '\''

	// MinimumSpacing is the number of spaces after a comma in aligned output.
	MinimumSpacing = 1
)

// Formatter handles formatting of sankey diagrams.
type Formatter struct {
	// Header replaces the diagram-type line. If empty, the header of the
	// diagram is kept; if that is empty too, no header is written.
	Header string

	// Align pads source and target columns so weights line up.
	Align bool

	// Quote is the character used when a node name needs quoting.
	Quote byte

	// QuoteAll quotes every node name.
	QuoteAll bool

	// CommentLead is the comment marker of the source.
	CommentLead string

	// PreserveComments controls whether comments are preserved.
	// Default: true
	PreserveComments bool

	// PreserveBlanks controls whether blank lines are preserved.
	// Default: true
	PreserveBlanks bool
}

// Option is a functional option for configuring a Formatter.
type Option func(*Formatter)

// WithHeader sets the header line written before the records.
func WithHeader(header string) Option {
	return func(f *Formatter) {
		f.Header = header
	}
}

// WithAlign enables column alignment.
func WithAlign(align bool) Option {
	return func(f *Formatter) {
		f.Align = align
	}
}

// WithQuote sets the quote character. Only ' and " are accepted; anything
// else keeps the current setting.
func WithQuote(q byte) Option {
	return func(f *Formatter) {
		if q == '\'' || q == '"' {
			f.Quote = q
		}
	}
}

// WithQuoteAll quotes every node name.
func WithQuoteAll(all bool) Option {
	return func(f *Formatter) {
		f.QuoteAll = all
	}
}

// WithCommentLead sets the comment marker used by the source.
func WithCommentLead(lead string) Option {
	return func(f *Formatter) {
		f.CommentLead = lead
	}
}

// WithPreserveComments controls whether comments are preserved.
func WithPreserveComments(preserve bool) Option {
	return func(f *Formatter) {
		f.PreserveComments = preserve
	}
}

// WithPreserveBlanks controls whether blank lines are preserved.
func WithPreserveBlanks(preserve bool) Option {
	return func(f *Formatter) {
		f.PreserveBlanks = preserve
	}
}

// New creates a new Formatter with the given options.
func New(opts ...Option) *Formatter {
	f := &Formatter{
		Quote:            DefaultQuote,
		CommentLead:      parser.DefaultCommentLead,
		PreserveComments: true,
		PreserveBlanks:   true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// line is one source line that is not a record.
type line struct {
	number  int
	comment string // empty for blank lines
}

// columns holds the display widths used for alignment.
type columns struct {
	source int
	target int
}

// Format writes diagram to w. sourceContent is the text the diagram was
// parsed from; it is only used to recover comments and blank lines and may
// be nil.
func (f *Formatter) Format(ctx context.Context, diagram *ast.Diagram, sourceContent []byte, w io.Writer) error {
	timer := telemetry.FromContext(ctx).Start("formatter.format")
	defer timer.End()

	var buf strings.Builder
	buf.Grow(diagram.Len() * 48)

	lines, headerLine := f.scanSource(sourceContent)
	lastLine := 0

	header := f.Header
	if header == "" {
		header = diagram.Header
	}
	if header != "" {
		if headerLine > 0 {
			f.writeLines(lines, lastLine, headerLine, &buf)
			lastLine = headerLine
		}
		buf.WriteString(header)
		buf.WriteByte('\n')
	}

	cols := f.measure(diagram)

	for _, record := range diagram.Records {
		if record == nil {
			continue
		}
		if record.Pos.Line > lastLine {
			f.writeLines(lines, lastLine, record.Pos.Line, &buf)
			lastLine = record.Pos.Line
		}

		f.formatRecord(record, cols, &buf)

		if f.PreserveComments {
			if comment := f.trailingComment(record, sourceContent); comment != "" {
				buf.WriteByte(' ')
				buf.WriteString(comment)
			}
		}
		buf.WriteByte('\n')
	}

	f.writeLines(lines, lastLine, math.MaxInt, &buf)

	timer.Note("%d records", diagram.Len())

	out := strings.TrimRight(buf.String(), "\n")
	if out == "" {
		return nil
	}
	_, err := io.WriteString(w, out+"\n")
	return err
}

// FormatRecord writes a single record without a trailing newline.
func (f *Formatter) FormatRecord(record *ast.Record, w io.Writer) error {
	var buf strings.Builder
	f.formatRecord(record, columns{}, &buf)
	_, err := io.WriteString(w, buf.String())
	return err
}

func (f *Formatter) formatRecord(record *ast.Record, cols columns, buf *strings.Builder) {
	source := f.formatNode(record.Source) + ","
	target := f.formatNode(record.Target) + ","

	buf.WriteString(source)
	if f.Align {
		buf.WriteString(strings.Repeat(" ", cols.source-runewidth.StringWidth(source)+MinimumSpacing))
	}
	buf.WriteString(target)
	if f.Align {
		buf.WriteString(strings.Repeat(" ", cols.target-runewidth.StringWidth(target)+MinimumSpacing))
	}
	buf.WriteString(record.Weight.String())
}

// measure computes the widest source and target cell, comma included.
func (f *Formatter) measure(diagram *ast.Diagram) columns {
	var cols columns
	if !f.Align {
		return cols
	}
	for _, record := range diagram.Records {
		if record == nil {
			continue
		}
		cols.source = max(cols.source, runewidth.StringWidth(f.formatNode(record.Source))+1)
		cols.target = max(cols.target, runewidth.StringWidth(f.formatNode(record.Target))+1)
	}
	return cols
}

// scanSource collects comment and blank lines and finds the header line.
// The lexer is used so that line breaks inside quoted names are not taken
// for blank lines.
func (f *Formatter) scanSource(sourceContent []byte) ([]line, int) {
	if len(sourceContent) == 0 {
		return nil, 0
	}

	var lines []line
	headerLine := 0
	lineStart := true // only blanks seen on the current line

	lexer := parser.NewLexer(sourceContent, "", parser.WithCommentLead(f.CommentLead))
	for tok := range lexer.All() {
		switch tok.Type {
		case parser.WHITESPACE:
			continue
		case parser.NEWLINE:
			if lineStart && f.PreserveBlanks {
				lines = append(lines, line{number: tok.Line})
			}
			lineStart = true
			continue
		case parser.COMMENT:
			if lineStart && f.PreserveComments {
				lines = append(lines, line{number: tok.Line, comment: tok.String(sourceContent)})
			}
		case parser.HEADER:
			if headerLine == 0 {
				headerLine = tok.Line
			}
		}
		lineStart = false
	}
	return lines, headerLine
}

// writeLines writes the preserved lines strictly between from and to.
// Runs of blank lines collapse to one and leading blanks are dropped.
func (f *Formatter) writeLines(lines []line, from, to int, buf *strings.Builder) {
	for _, l := range lines {
		if l.number <= from || l.number >= to {
			continue
		}
		if l.comment != "" {
			buf.WriteString(l.comment)
			buf.WriteByte('\n')
			continue
		}
		out := buf.String()
		if out == "" || strings.HasSuffix(out, "\n\n") {
			continue
		}
		buf.WriteByte('\n')
	}
}

// trailingComment returns the comment after the record on its last line.
func (f *Formatter) trailingComment(record *ast.Record, sourceContent []byte) string {
	if f.CommentLead == "" || record.Span.End <= 0 || record.Span.End > len(sourceContent) {
		return ""
	}
	rest := string(sourceContent[record.Span.End:])
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, f.CommentLead) {
		return ""
	}
	return rest
}
