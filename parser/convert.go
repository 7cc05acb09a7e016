package parser

import (
	"bytes"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Rule names the grammar position a field token is matched against.
type Rule uint8

const (
	// NodeRule matches the source and target fields of a record.
	NodeRule Rule = iota
	// WeightRule matches the third, numeric field of a record.
	WeightRule
)

func (r Rule) String() string {
	if r == WeightRule {
		return "weight"
	}
	return "node"
}

// ValueKind is the kind of a converted field value.
type ValueKind uint8

const (
	StringValue ValueKind = iota
	NumberValue
)

// Value is the semantic payload of a field token.
type Value struct {
	Kind   ValueKind
	Text   string
	Number decimal.Decimal
}

// ValueConverter turns the raw text of a field token into its semantic value.
// The parser calls it once per field, at the moment the field is matched.
type ValueConverter interface {
	Convert(rule Rule, tok Token, source []byte) (Value, error)
}

// DefaultValueConverter implements the sankey field conventions:
// quoted fields lose their quotes and doubled quotes collapse to one,
// unquoted fields are used as-is and weights are decimal numbers.
type DefaultValueConverter struct{}

var _ ValueConverter = DefaultValueConverter{}

// Convert converts tok according to the grammar rule it is matched against.
func (DefaultValueConverter) Convert(rule Rule, tok Token, source []byte) (Value, error) {
	raw := tok.Bytes(source)

	if rule == WeightRule {
		if tok.Type != NUMBER {
			return Value{}, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
		}
		return convertNumber(raw)
	}

	switch tok.Type {
	case QUOTED:
		return Value{Kind: StringValue, Text: unquote(raw)}, nil
	case TEXT, NUMBER:
		return Value{Kind: StringValue, Text: string(bytes.TrimSpace(raw))}, nil
	}

	return Value{}, fmt.Errorf("cannot convert %s token to a %s value", tok.Type, rule)
}

// convertNumber parses a decimal or exponential literal. The lexer accepts
// shapes like "-", "." or "1e" that are not complete numbers.
func convertNumber(raw []byte) (Value, error) {
	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return Value{}, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	if math.IsInf(d.InexactFloat64(), 0) {
		return Value{}, fmt.Errorf("%w: %q is out of range", ErrInvalidNumber, raw)
	}
	return Value{Kind: NumberValue, Text: string(raw), Number: d}, nil
}

// unquote strips the surrounding quotes of a quoted field and collapses
// doubled quotes. No other escape sequences exist.
func unquote(raw []byte) string {
	if len(raw) < 2 {
		return ""
	}
	quote := raw[0]
	inner := raw[1 : len(raw)-1]

	if bytes.IndexByte(inner, quote) < 0 {
		return string(inner)
	}

	pair := []byte{quote, quote}
	return string(bytes.ReplaceAll(inner, pair, pair[:1]))
}
