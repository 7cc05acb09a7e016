package parser

import (
	"errors"
	"fmt"
	"strings"
)

// Helper methods used by the record state machine.

// next returns the next token the grammar should see. Trivia is skipped,
// the first header is remembered and tokenizer diagnostics are collected
// in the order they are produced.
func (r *run) next() Token {
	for {
		tok := r.tokens.Next()

		if ds := r.tokens.Diagnostics(); r.seen < len(ds) {
			r.diagnostics = append(r.diagnostics, ds[r.seen:]...)
			r.seen = len(ds)
		}

		if tok.Type == HEADER {
			if r.header == "" {
				r.header = tok.String(r.source)
			}
			continue
		}
		if !tok.Type.Skippable() {
			return tok
		}
	}
}

// halted reports whether parsing must stop because recovery is disabled
// and a diagnostic has been reported.
func (r *run) halted() bool {
	return !r.recovery && len(r.diagnostics) > 0
}

func (r *run) report(d Diagnostic) {
	r.diagnostics = append(r.diagnostics, d)
}

// skipLine consumes tokens from tok up to and including the next newline.
// It returns the end offset of the last skipped token, the number of commas
// skipped and whether the end of input was reached.
func (r *run) skipLine(tok Token) (end, commas int, eof bool) {
	end = tok.Start
	for {
		switch tok.Type {
		case NEWLINE:
			return end, commas, false
		case EOF:
			return end, commas, true
		case COMMA:
			commas++
		}
		end = tok.End
		tok = r.next()
	}
}

// recover skips the rest of the line starting at tok and returns the state
// to resume in.
func (r *run) recover(tok Token) state {
	if r.halted() {
		return stateDone
	}
	_, _, eof := r.skipLine(tok)
	return r.resume(eof)
}

func (r *run) resume(eof bool) state {
	if eof || r.halted() {
		return stateDone
	}
	return expectSourceField
}

// unexpected reports tok as not matching the grammar and recovers.
func (r *run) unexpected(tok Token, format string, args ...interface{}) state {
	r.report(newDiagnostic(UnexpectedToken, tok, tok.End, r.filename, format, args...))
	return r.recover(tok)
}

// malformed reports a record with the wrong number of fields. The diagnostic
// spans the record from its first field to the end of the line; tok is the
// token that revealed the problem.
func (r *run) malformed(first, last, tok Token, fields int) state {
	end := last.End
	eof := tok.Type == EOF

	if tok.Type != NEWLINE && tok.Type != EOF {
		lineEnd, commas, atEOF := r.skipLine(tok)
		end = max(end, lineEnd)
		fields += commas - 1
		eof = atEOF
	}

	r.report(newDiagnostic(MalformedRecord, first, end, r.filename,
		"malformed record: expected 3 fields (source, target, weight), found %d", fields))

	return r.resume(eof)
}

// node converts a source or target field and interns the result.
func (r *run) node(tok Token) (string, bool) {
	val, ok := r.convert(NodeRule, tok)
	if !ok {
		return "", false
	}
	return r.interner.Intern(val.Text), true
}

// convert invokes the value converter and reports conversion failures at
// the field being matched.
func (r *run) convert(rule Rule, tok Token) (Value, bool) {
	val, err := r.converter.Convert(rule, tok, r.source)
	if err != nil {
		code := UnexpectedToken
		if errors.Is(err, ErrInvalidNumber) {
			code = InvalidNumber
		}
		r.report(newDiagnostic(code, tok, tok.End, r.filename, "%s", err))
		return Value{}, false
	}
	return val, true
}

// describe renders a token for diagnostic messages.
func describe(tok Token, source []byte) string {
	switch tok.Type {
	case EOF:
		return "end of input"
	case NEWLINE:
		return "end of line"
	case COMMA:
		return "','"
	}

	text := tok.String(source)
	if len(text) > 32 {
		text = text[:29] + "..."
	}
	return fmt.Sprintf("%s %q", strings.ToLower(tok.Type.String()), text)
}
