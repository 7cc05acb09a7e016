// Package output provides styling helpers for terminal output.
package output

import (
	"io"

	"github.com/muesli/termenv"
)

// Styles provides styled output helpers for the CLI.
type Styles struct {
	output *termenv.Output
}

// NewStyles creates a new Styles instance for the given writer. The color
// profile is detected from the writer and the environment (NO_COLOR and
// friends are honored by termenv).
func NewStyles(w io.Writer) *Styles {
	return &Styles{
		output: termenv.NewOutput(w),
	}
}

// NewPlainStyles creates a Styles instance that never emits escape codes.
func NewPlainStyles(w io.Writer) *Styles {
	return &Styles{
		output: termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii)),
	}
}

// Colored reports whether styled strings will contain escape codes.
func (s *Styles) Colored() bool {
	return s.output.Profile != termenv.Ascii
}

// Success returns a styled success string (green + bold).
func (s *Styles) Success(text string) string {
	return s.output.String(text).
		Foreground(s.output.Color("2")).
		Bold().
		String()
}

// Error returns a styled error string (red + bold).
func (s *Styles) Error(text string) string {
	return s.output.String(text).
		Foreground(s.output.Color("1")).
		Bold().
		String()
}

// Warning returns a styled warning (yellow + bold).
func (s *Styles) Warning(text string) string {
	return s.output.String(text).
		Foreground(s.output.Color("3")).
		Bold().
		String()
}

// FilePath returns a styled file path (cyan).
func (s *Styles) FilePath(text string) string {
	return s.output.String(text).
		Foreground(s.output.Color("6")).
		String()
}

// Node returns a styled node name (yellow).
func (s *Styles) Node(text string) string {
	return s.output.String(text).
		Foreground(s.output.Color("3")).
		String()
}

// Weight returns a styled flow weight (magenta).
func (s *Styles) Weight(text string) string {
	return s.output.String(text).
		Foreground(s.output.Color("5")).
		String()
}

// Code returns a styled diagnostic code (blue).
func (s *Styles) Code(text string) string {
	return s.output.String(text).
		Foreground(s.output.Color("4")).
		String()
}

// Keyword returns a styled keyword (bold).
func (s *Styles) Keyword(text string) string {
	return s.output.String(text).
		Bold().
		String()
}

// Dim returns dimmed text (for secondary information).
func (s *Styles) Dim(text string) string {
	return s.output.String(text).
		Faint().
		String()
}

// Timing returns a styled timing string. Slow operations are red,
// everything else is dimmed.
func (s *Styles) Timing(text string, slow bool) string {
	if slow {
		return s.output.String(text).
			Foreground(s.output.Color("1")).
			String()
	}
	return s.Dim(text)
}

// Output returns the underlying termenv Output for advanced usage.
func (s *Styles) Output() *termenv.Output {
	return s.output
}
