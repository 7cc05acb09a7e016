// Package ast declares the types used to represent parsed sankey diagrams.
//
// A sankey diagram is a list of flow records. Each record connects a source
// node to a target node with a numeric weight:
//
//	sankey-beta
//	Agricultural waste,Bio-conversion,124.729
//	'Ag, waste',Bio,12
//
// The types in this package can be created by parsing source text with the
// parser package, or constructed programmatically with the builders in this
// package for generating diagram source with the formatter.
package ast

import (
	"github.com/shopspring/decimal"
)

// Diagram is the structured result of parsing a sankey source file.
type Diagram struct {
	// Header is the diagram-type marker line (e.g. "sankey-beta"), if present.
	// Its spelling is not validated.
	Header string

	// Records holds the flow records in source order.
	Records []*Record
}

// Len returns the number of records in the diagram.
func (d *Diagram) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Record is a single (source, target, weight) flow parsed from one diagram line.
type Record struct {
	Pos  Position
	Span Span

	Source string
	Target string
	Weight decimal.Decimal
}

// Float returns the weight as a float64 for layout code.
func (r *Record) Float() float64 {
	return r.Weight.InexactFloat64()
}

// Equal reports whether two records carry the same flow, ignoring positions.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Source == other.Source &&
		r.Target == other.Target &&
		r.Weight.Equal(other.Weight)
}
