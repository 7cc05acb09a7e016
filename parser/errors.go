package parser

import (
	"errors"
	"fmt"

	"github.com/robinvdvleuten/sankey/ast"
)

// ErrInvalidNumber is returned by value converters when a weight field does
// not represent a finite number.
var ErrInvalidNumber = errors.New("invalid number")

// Code identifies the kind of problem a Diagnostic reports.
type Code uint8

const (
	// UnterminatedQuotedField is reported when input ends inside a quoted field.
	UnterminatedQuotedField Code = iota + 1
	// InvalidNumber is reported when the weight field is not a finite number.
	InvalidNumber
	// MalformedRecord is reported when a line has the wrong number of fields.
	MalformedRecord
	// UnexpectedToken is reported for any other token that does not fit the
	// record grammar at its position.
	UnexpectedToken
)

var codeNames = map[Code]string{
	UnterminatedQuotedField: "UnterminatedQuotedField",
	InvalidNumber:           "InvalidNumber",
	MalformedRecord:         "MalformedRecord",
	UnexpectedToken:         "UnexpectedToken",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "Unknown"
}

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	SeverityWarning Severity = iota + 1
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return "unknown"
}

// Diagnostic is a non-fatal problem found while tokenizing or parsing.
// Diagnostics are never mutated after creation.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Message  string
	Span     ast.Span
	Pos      ast.Position
}

func (d Diagnostic) Error() string {
	location := fmt.Sprintf("%s:%d:%d", d.Pos.Filename, d.Pos.Line, d.Pos.Column)
	if d.Pos.Filename == "" {
		location = fmt.Sprintf("line %d:%d", d.Pos.Line, d.Pos.Column)
	}

	return fmt.Sprintf("%s: %s", location, d.Message)
}

// GetPosition returns the start position of the diagnostic.
func (d Diagnostic) GetPosition() ast.Position {
	return d.Pos
}

// GetSpan returns the byte range the diagnostic covers.
func (d Diagnostic) GetSpan() ast.Span {
	return d.Span
}

// GetCode returns the diagnostic code as a string.
func (d Diagnostic) GetCode() string {
	return d.Code.String()
}

// newDiagnostic creates an error diagnostic starting at tok and ending at end.
func newDiagnostic(code Code, tok Token, end int, filename, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
		Span:     ast.Span{Start: tok.Start, End: end},
		Pos:      tok.Position(filename),
	}
}

// GetSeverity returns the severity as a string.
func (d Diagnostic) GetSeverity() string {
	return d.Severity.String()
}

// GetMessage returns the message without the location prefix.
func (d Diagnostic) GetMessage() string {
	return d.Message
}
