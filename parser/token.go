package parser

import "github.com/robinvdvleuten/sankey/ast"

// TokenType represents the type of token scanned from the input.
type TokenType uint8

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Diagram-type marker line, e.g. sankey-beta
	HEADER

	// Fields
	QUOTED // 'quoted, field' or "quoted, field"
	TEXT   // unquoted field
	NUMBER // 124.729, -3, 1.5e3

	// Delimiters
	COMMA   // ,
	NEWLINE // \n or \r\n

	// Trivia
	COMMENT    // %% comment
	WHITESPACE // spaces and tabs
)

var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	HEADER: "HEADER",

	QUOTED: "QUOTED",
	TEXT:   "TEXT",
	NUMBER: "NUMBER",

	COMMA:   "COMMA",
	NEWLINE: "NEWLINE",

	COMMENT:    "COMMENT",
	WHITESPACE: "WHITESPACE",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Skippable reports whether tokens of this type are consumed by the lexer
// but never matched by the record grammar.
func (t TokenType) Skippable() bool {
	return t == COMMENT || t == WHITESPACE || t == HEADER
}

// IsField reports whether tokens of this type can occupy a field position.
func (t TokenType) IsField() bool {
	return t == QUOTED || t == TEXT || t == NUMBER
}

// Token represents a lexical token with zero-copy semantics.
// Instead of storing the token text as a string (which would allocate),
// we store byte offsets into the original source buffer.
type Token struct {
	Type   TokenType
	Start  int // Byte offset into source buffer
	End    int // End offset (exclusive)
	Line   int // Line number (1-indexed)
	Column int // Column number (1-indexed)
}

// String materializes the token text from the source buffer.
func (t Token) String(source []byte) string {
	if t.Start >= len(source) || t.End > len(source) || t.Start > t.End {
		return ""
	}
	return string(source[t.Start:t.End])
}

// Bytes returns a zero-copy view of the token text.
func (t Token) Bytes(source []byte) []byte {
	if t.Start >= len(source) || t.End > len(source) || t.Start > t.End {
		return nil
	}
	return source[t.Start:t.End]
}

// Len returns the length of the token in bytes.
func (t Token) Len() int {
	return t.End - t.Start
}

// Span returns the byte range covered by the token.
func (t Token) Span() ast.Span {
	return ast.Span{Start: t.Start, End: t.End}
}

// Position returns the start position of the token.
func (t Token) Position(filename string) ast.Position {
	return ast.Position{
		Filename: filename,
		Offset:   t.Start,
		Line:     t.Line,
		Column:   t.Column,
	}
}
