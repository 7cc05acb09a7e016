package formatter

import (
	"strings"
)

// needsQuote reports whether a node name must be quoted to read back as the
// same name.
func needsQuote(s, commentLead string) bool {
	if s == "" {
		return true
	}

	switch s[0] {
	case '\'', '"':
		return true
	}

	if isBlank(s[0]) || isBlank(s[len(s)-1]) {
		return true
	}

	if strings.ContainsAny(s, ",\r\n") {
		return true
	}

	return commentLead != "" && strings.Contains(s, commentLead)
}

// quote wraps s in q, doubling every q inside it.
func quote(s string, q byte) string {
	quoteStr := string(q)

	var buf strings.Builder
	buf.Grow(len(s) + 2)
	buf.WriteByte(q)
	buf.WriteString(strings.ReplaceAll(s, quoteStr, quoteStr+quoteStr))
	buf.WriteByte(q)
	return buf.String()
}

// formatNode renders a node name, quoting only when needed.
func (f *Formatter) formatNode(name string) string {
	if !f.QuoteAll && !needsQuote(name, f.CommentLead) {
		return name
	}
	return quote(name, f.Quote)
}

func isBlank(ch byte) bool {
	return ch == ' ' || ch == '\t'
}
