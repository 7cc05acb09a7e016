package ast

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NewRecord creates a record from a source node, a target node and a decimal
// weight string (e.g. "124.729", "-3", "1.5e3").
//
// Example:
//
//	rec, err := ast.NewRecord("Agricultural waste", "Bio-conversion", "124.729")
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewRecord(source, target, weight string) (*Record, error) {
	w, err := decimal.NewFromString(weight)
	if err != nil {
		return nil, fmt.Errorf("invalid weight %q: %w", weight, err)
	}
	return &Record{
		Source: source,
		Target: target,
		Weight: w,
	}, nil
}

// MustRecord is like NewRecord but panics if the weight cannot be parsed.
// It is intended for tests and generators with literal inputs.
func MustRecord(source, target, weight string) *Record {
	rec, err := NewRecord(source, target, weight)
	if err != nil {
		panic(err)
	}
	return rec
}

// NewDiagram creates a diagram with the given header and records.
func NewDiagram(header string, records ...*Record) *Diagram {
	return &Diagram{
		Header:  header,
		Records: records,
	}
}
