package cli

import (
	"fmt"
	"io"

	"github.com/robinvdvleuten/sankey/errors"
	"github.com/robinvdvleuten/sankey/output"
)

// printDiagnostics writes a per-file heading followed by errs with the lines
// of source they point at. It returns the number of diagnostics written.
func printDiagnostics(w io.Writer, filename string, source []byte, errs []error, styles *output.Styles) int {
	if len(errs) == 0 {
		return 0
	}

	_, _ = fmt.Fprintf(w, "%s %s\n\n", styles.FilePath(filename), styles.Warning(plural(len(errs), "diagnostic")))

	formatter := errors.NewTextFormatter(
		errors.WithSource(source),
		errors.WithStyles(styles),
	)
	_, _ = fmt.Fprintln(w, formatter.FormatAll(errs))
	_, _ = fmt.Fprintln(w)

	return len(errs)
}

// plural returns "n noun", adding an "s" unless n is one.
func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
