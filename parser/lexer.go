package parser

// Lexer implements a zero-copy, pull-based lexer for sankey diagram source.
//
// The zero-copy approach:
// - Tokens store byte offsets, not string values
// - Whitespace and comments are emitted as tokens so every byte of the
//   input belongs to exactly one token
// - The only state is the cursor (pos/line/column)

import (
	"bytes"
	"iter"
)

// DefaultCommentLead starts a comment that runs to the end of the line.
const DefaultCommentLead = "%%"

// headerPrefix is the start of the diagram-type marker line.
var headerPrefix = []byte("sankey")

// Lexer tokenizes sankey source code.
//
// A Lexer is owned by a single parse and must not be shared between
// goroutines. Restarting means creating a new Lexer over the full text.
type Lexer struct {
	source      []byte // Source buffer
	filename    string // Filename for error reporting
	pos         int    // Current byte position
	line        int    // Current line (1-indexed)
	column      int    // Current column (1-indexed)
	commentLead []byte
	seenRecord  bool // header or field emitted; no header allowed after it
	diagnostics []Diagnostic
}

// LexerOption configures a Lexer.
type LexerOption func(*Lexer)

// WithCommentLead sets the sequence that starts a comment. An empty lead
// disables comments.
func WithCommentLead(lead string) LexerOption {
	return func(l *Lexer) {
		l.commentLead = []byte(lead)
	}
}

// NewLexer creates a new lexer for the given source.
func NewLexer(source []byte, filename string, opts ...LexerOption) *Lexer {
	l := &Lexer{
		source:      source,
		filename:    filename,
		line:        1,
		column:      1,
		commentLead: []byte(DefaultCommentLead),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Diagnostics returns the problems found so far. The slice grows as tokens
// are pulled; callers must not modify it.
func (l *Lexer) Diagnostics() []Diagnostic {
	return l.diagnostics
}

// Next scans and returns the next token. Once the input is exhausted it
// returns an EOF token on every call.
func (l *Lexer) Next() Token {
	if l.pos >= len(l.source) {
		return Token{EOF, l.pos, l.pos, l.line, l.column}
	}

	start := l.pos
	startLine := l.line
	startCol := l.column

	typ := l.scanToken()

	if typ != WHITESPACE && typ != COMMENT && typ != NEWLINE {
		l.seenRecord = true
	}

	return Token{typ, start, l.pos, startLine, startCol}
}

// All returns an iterator over the remaining tokens, excluding EOF.
func (l *Lexer) All() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for {
			tok := l.Next()
			if tok.Type == EOF || !yield(tok) {
				return
			}
		}
	}
}

// ScanAll lexes the entire source and returns all tokens, including the
// trailing EOF token.
func (l *Lexer) ScanAll() []Token {
	// Estimate token count: a record line is roughly 6 tokens per 30 bytes
	tokens := make([]Token, 0, len(l.source)/5+1)
	for tok := range l.All() {
		tokens = append(tokens, tok)
	}
	return append(tokens, l.Next())
}

// scanToken scans the next token from the current position and returns its type.
// Rules are tried in priority order; the first match wins.
func (l *Lexer) scanToken() TokenType {
	ch := l.source[l.pos]

	if !l.seenRecord && l.matchHeader() {
		return HEADER
	}

	switch {
	case l.atComment():
		l.skipComment()
		return COMMENT

	case ch == '\'' || ch == '"':
		return l.scanQuoted(ch)

	case ch == ',':
		l.advance()
		return COMMA

	case l.atNewline():
		l.skipNewline()
		return NEWLINE

	case isBlank(ch):
		for l.pos < len(l.source) && isBlank(l.source[l.pos]) {
			l.advance()
		}
		return WHITESPACE
	}

	if isNumberStart(ch) {
		end := l.numberEnd(l.pos)
		if l.delimitedAt(end) {
			l.advanceTo(end)
			return NUMBER
		}
	}

	return l.scanText()
}

// matchHeader consumes the diagram-type marker (e.g. "sankey-beta") if the
// current line holds one. The spelling after the prefix is not checked.
func (l *Lexer) matchHeader() bool {
	if len(l.source)-l.pos < len(headerPrefix) ||
		!bytes.EqualFold(l.source[l.pos:l.pos+len(headerPrefix)], headerPrefix) {
		return false
	}

	end := l.pos
	for end < len(l.source) {
		ch := l.source[end]
		if isBlank(ch) || ch == ',' || ch == '\n' || ch == '\r' || ch == '\'' || ch == '"' {
			break
		}
		end++
	}

	if !l.delimitedAt(end) || l.commaAt(end) {
		return false
	}

	l.advanceTo(end)
	return true
}

// scanQuoted scans a quoted field. The field may contain delimiters and
// newlines; a doubled quote stands for one literal quote.
func (l *Lexer) scanQuoted(quote byte) TokenType {
	start := l.pos
	line, col := l.line, l.column

	l.advance() // opening quote

	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		if ch != quote {
			l.advance()
			continue
		}
		if l.pos+1 < len(l.source) && l.source[l.pos+1] == quote {
			l.advance()
			l.advance()
			continue
		}
		l.advance() // closing quote
		return QUOTED
	}

	l.diagnostics = append(l.diagnostics, newDiagnostic(
		UnterminatedQuotedField,
		Token{ILLEGAL, start, l.pos, line, col},
		l.pos,
		l.filename,
		"unterminated quoted field: missing closing %c", quote,
	))

	return ILLEGAL
}

// numberEnd returns the end of the longest numeric literal starting at i:
// [+-]? digits* (. digits*)? ([eE] [+-]? digits*)?
// The value converter validates the result.
func (l *Lexer) numberEnd(i int) int {
	src := l.source
	if i < len(src) && (src[i] == '+' || src[i] == '-') {
		i++
	}
	i = skipDigits(src, i)
	if i < len(src) && src[i] == '.' {
		i = skipDigits(src, i+1)
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		i++
		if i < len(src) && (src[i] == '+' || src[i] == '-') {
			i++
		}
		i = skipDigits(src, i)
	}
	return i
}

// scanText scans an unquoted field up to the next comma, newline, trailing
// comment or end of input. Trailing blanks are left for a WHITESPACE token.
func (l *Lexer) scanText() TokenType {
	end := l.pos
	last := l.pos // end of the last non-blank byte

	for end < len(l.source) {
		ch := l.source[end]
		if ch == ',' || ch == '\n' || (ch == '\r' && end+1 < len(l.source) && l.source[end+1] == '\n') {
			break
		}
		if isBlank(ch) {
			if l.commentAfterBlanks(end) {
				break
			}
			end++
			continue
		}
		end++
		last = end
	}

	l.advanceTo(last)
	return TEXT
}

// delimitedAt reports whether only blanks separate i from a comma, a
// newline, a comment or the end of input.
func (l *Lexer) delimitedAt(i int) bool {
	for i < len(l.source) && isBlank(l.source[i]) {
		i++
	}
	if i >= len(l.source) {
		return true
	}
	switch l.source[i] {
	case ',', '\n':
		return true
	case '\r':
		return i+1 < len(l.source) && l.source[i+1] == '\n'
	}
	return l.commentAt(i)
}

// commaAt reports whether the first non-blank byte at or after i is a comma.
func (l *Lexer) commaAt(i int) bool {
	for i < len(l.source) && isBlank(l.source[i]) {
		i++
	}
	return i < len(l.source) && l.source[i] == ','
}

// commentAfterBlanks reports whether the blank run starting at i is followed
// by a comment lead.
func (l *Lexer) commentAfterBlanks(i int) bool {
	for i < len(l.source) && isBlank(l.source[i]) {
		i++
	}
	return l.commentAt(i)
}

func (l *Lexer) commentAt(i int) bool {
	return len(l.commentLead) > 0 && bytes.HasPrefix(l.source[i:], l.commentLead)
}

func (l *Lexer) atComment() bool {
	return l.commentAt(l.pos)
}

func (l *Lexer) atNewline() bool {
	ch := l.source[l.pos]
	return ch == '\n' || (ch == '\r' && l.pos+1 < len(l.source) && l.source[l.pos+1] == '\n')
}

// skipComment skips to the end of the line, leaving the newline in place.
func (l *Lexer) skipComment() {
	for l.pos < len(l.source) && !l.atNewline() {
		l.advance()
	}
}

func (l *Lexer) skipNewline() {
	if l.source[l.pos] == '\r' {
		l.pos++
	}
	l.advance()
}

// Helper methods

func (l *Lexer) advanceTo(end int) {
	for l.pos < end {
		l.advance()
	}
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	ch := l.source[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func isBlank(ch byte) bool {
	return ch == ' ' || ch == '\t'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isNumberStart(ch byte) bool {
	return isDigit(ch) || ch == '+' || ch == '-' || ch == '.'
}

func skipDigits(src []byte, i int) int {
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	return i
}
