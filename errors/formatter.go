// Package errors renders diagnostics for people and programs.
//
// The package defines a Formatter interface with two implementations:
//   - TextFormatter: compiler-style output with the offending source line
//     and a caret marking the span
//   - JSONFormatter: structured JSON for the web preview and export
//
// Diagnostic types live in the parser package; this package only depends on
// the small accessor interfaces they implement.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/robinvdvleuten/sankey/ast"
	"github.com/robinvdvleuten/sankey/output"
)

// Formatter formats errors for output in different formats.
type Formatter interface {
	// Format formats a single error.
	Format(err error) string

	// FormatAll formats multiple errors.
	FormatAll(errs []error) string
}

type positioned interface {
	error
	GetPosition() ast.Position
}

type spanned interface {
	GetSpan() ast.Span
}

type coded interface {
	GetCode() string
}

// TextFormatter formats errors for the command line.
type TextFormatter struct {
	source  []byte
	styles  *output.Styles
	context int
}

// TextFormatterOption is an option for configuring TextFormatter.
type TextFormatterOption func(*TextFormatter)

// WithSource sets the source the errors were found in. Without it only the
// messages are printed.
func WithSource(source []byte) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.source = source
	}
}

// WithStyles enables terminal styling.
func WithStyles(styles *output.Styles) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.styles = styles
	}
}

// WithContextLines sets how many lines around the error line are shown.
func WithContextLines(n int) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.context = max(n, 0)
	}
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(opts ...TextFormatterOption) *TextFormatter {
	tf := &TextFormatter{context: 1}
	for _, opt := range opts {
		opt(tf)
	}
	return tf
}

// Format formats a single error. Errors carrying a position are shown with
// the surrounding source when the source is known.
func (tf *TextFormatter) Format(err error) string {
	e, ok := err.(positioned)
	if !ok {
		return err.Error()
	}

	message := e.Error()
	if c, ok := err.(coded); ok {
		message = fmt.Sprintf("%s [%s]", message, tf.style(c.GetCode(), tf.codeStyle))
	}

	if tf.source == nil {
		return message
	}

	span := ast.Span{Start: e.GetPosition().Offset, End: e.GetPosition().Offset + 1}
	if s, ok := err.(spanned); ok {
		span = s.GetSpan()
	}

	return tf.formatWithSource(e.GetPosition(), span, message)
}

// FormatAll formats multiple errors, separating them with blank lines.
func (tf *TextFormatter) FormatAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var buf bytes.Buffer
	for i, err := range errs {
		buf.WriteString(tf.Format(err))

		if i < len(errs)-1 {
			buf.WriteString("\n\n")
		}
	}

	return buf.String()
}

// formatWithSource writes the message followed by the error line, its
// neighbours and a caret line under the span:
//
//	flows.sankey:2:5: invalid number: "lots" [InvalidNumber]
//
//	 1 | Coal,Solid,12
//	 2 | Gas,lots,1
//	   |     ^~~~
func (tf *TextFormatter) formatWithSource(pos ast.Position, span ast.Span, message string) string {
	var buf bytes.Buffer
	buf.WriteString(message)
	buf.WriteString("\n\n")

	lines := strings.Split(strings.TrimSuffix(string(tf.source), "\n"), "\n")
	first := max(pos.Line-1-tf.context, 0)
	last := min(pos.Line-1+tf.context, len(lines)-1)
	width := len(strconv.Itoa(last + 1))

	for i := first; i <= last; i++ {
		line := strings.TrimSuffix(lines[i], "\r")
		gutter := fmt.Sprintf(" %*d | ", width, i+1)
		buf.WriteString(tf.style(gutter, tf.dimStyle))
		buf.WriteString(line)
		buf.WriteByte('\n')

		if i != pos.Line-1 {
			continue
		}

		// Column is in bytes; the caret is placed by display width.
		col := min(max(pos.Column-1, 0), len(line))
		length := min(span.Len(), len(line)-col)
		underline := "^"
		if length > 1 {
			underline += strings.Repeat("~", runewidth.StringWidth(line[col:col+length])-1)
		}

		buf.WriteString(tf.style(fmt.Sprintf(" %*s | ", width, ""), tf.dimStyle))
		buf.WriteString(strings.Repeat(" ", runewidth.StringWidth(line[:col])))
		buf.WriteString(tf.style(underline, tf.caretStyle))
		buf.WriteByte('\n')
	}

	return strings.TrimSuffix(buf.String(), "\n")
}

func (tf *TextFormatter) style(text string, fn func(*output.Styles, string) string) string {
	if tf.styles == nil {
		return text
	}
	return fn(tf.styles, text)
}

func (tf *TextFormatter) dimStyle(s *output.Styles, text string) string   { return s.Dim(text) }
func (tf *TextFormatter) caretStyle(s *output.Styles, text string) string { return s.Error(text) }
func (tf *TextFormatter) codeStyle(s *output.Styles, text string) string  { return s.Code(text) }

// JSONFormatter formats errors as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// ErrorJSON represents an error in JSON format.
type ErrorJSON struct {
	Type     string        `json:"type"`
	Code     string        `json:"code,omitempty"`
	Severity string        `json:"severity,omitempty"`
	Message  string        `json:"message"`
	Position *PositionJSON `json:"position,omitempty"`
	Span     *SpanJSON     `json:"span,omitempty"`
}

// PositionJSON represents a file position in JSON format.
type PositionJSON struct {
	Filename string `json:"filename,omitempty"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// SpanJSON represents a byte range in JSON format.
type SpanJSON struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Format formats a single error as JSON.
func (jf *JSONFormatter) Format(err error) string {
	data, _ := json.Marshal(jf.toJSON(err))
	return string(data)
}

// FormatAll formats multiple errors as a JSON array.
func (jf *JSONFormatter) FormatAll(errs []error) string {
	data, _ := json.MarshalIndent(jf.FormatAllToSlice(errs), "", "  ")
	return string(data)
}

// FormatAllToSlice returns errors as a slice of ErrorJSON structs.
func (jf *JSONFormatter) FormatAllToSlice(errs []error) []ErrorJSON {
	result := make([]ErrorJSON, 0, len(errs))
	for _, err := range errs {
		result = append(result, jf.toJSON(err))
	}
	return result
}

func (jf *JSONFormatter) toJSON(err error) ErrorJSON {
	errJSON := ErrorJSON{
		Type:    fmt.Sprintf("%T", err),
		Message: err.Error(),
	}

	if e, ok := err.(interface{ GetMessage() string }); ok {
		errJSON.Message = e.GetMessage()
	}
	if e, ok := err.(coded); ok {
		errJSON.Code = e.GetCode()
	}
	if e, ok := err.(interface{ GetSeverity() string }); ok {
		errJSON.Severity = e.GetSeverity()
	}
	if e, ok := err.(positioned); ok {
		pos := e.GetPosition()
		errJSON.Position = &PositionJSON{
			Filename: pos.Filename,
			Line:     pos.Line,
			Column:   pos.Column,
		}
	}
	if e, ok := err.(spanned); ok {
		span := e.GetSpan()
		errJSON.Span = &SpanJSON{Start: span.Start, End: span.End}
	}

	return errJSON
}
