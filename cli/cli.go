// Package cli implements the sankey command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/robinvdvleuten/sankey/loader"
	"github.com/robinvdvleuten/sankey/output"
	"github.com/robinvdvleuten/sankey/telemetry"
)

const stdinFilename = "<stdin>"

var (
	successSymbol = "✓"
	errorSymbol   = "✗"
	infoSymbol    = "→"

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D7D7", Dark: "#00D7D7"})

	// stdin is read by FileOrStdin; tests replace it.
	stdin io.Reader = os.Stdin
)

func printSuccess(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		successStyle.Render(successSymbol),
		message,
	)
}

func printError(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		errorStyle.Render(errorSymbol),
		errorStyle.Render(message),
	)
}

func printInfof(w io.Writer, format string, args ...interface{}) {
	formatted := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(w, "%s %s\n",
		infoStyle.Render(infoSymbol),
		formatted,
	)
}

// promptYesNo prompts the user with a yes/no question.
// Returns false by default if stdin is not a terminal.
func promptYesNo(question string) (bool, error) {
	if !isTerminal() {
		return false, nil
	}

	var confirm bool

	form := huh.NewConfirm().
		Title(question).
		WithButtonAlignment(lipgloss.Left).
		Value(&confirm)

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}

	return confirm, nil
}

func isTerminal() bool {
	return isTerminalWriter(os.Stdin)
}

// isTerminalWriter reports whether w is a file attached to a terminal.
func isTerminalWriter(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// startTelemetry installs a timing collector when --telemetry is set and
// opens a root timer named after the command. The returned report function
// ends that timer and prints the tree to stderr; only the first call prints.
func startTelemetry(ctx *kong.Context, globals *Globals, name string) (context.Context, func()) {
	runCtx := context.Background()
	if !globals.Telemetry {
		return runCtx, func() {}
	}

	collector := telemetry.NewTimingCollector()
	runCtx = telemetry.WithCollector(runCtx, collector)
	timer := collector.Start(name)

	var once sync.Once
	return runCtx, func() {
		once.Do(func() {
			timer.End()
			_, _ = fmt.Fprintln(ctx.Stderr)
			collector.Report(ctx.Stderr, output.NewStyles(ctx.Stderr))
		})
	}
}

// FileOrStdin accepts either a file path or "-" for stdin.
// For stdin: Filename="<stdin>", Contents populated.
// For files: Filename set, Contents nil (read by the loader).
type FileOrStdin struct {
	Filename string
	Contents []byte
}

// Decode implements kong.MapperValue.
func (f *FileOrStdin) Decode(ctx *kong.DecodeContext) error {
	var filename string
	if err := ctx.Scan.PopValueInto("filename", &filename); err != nil {
		return err
	}

	if filename == "-" || filename == "" {
		return f.readStdin()
	}

	if _, err := os.Stat(filename); err != nil {
		return err
	}
	f.Filename = filename
	f.Contents = nil

	return nil
}

// EnsureContents reads stdin if no file was given on the command line.
func (f *FileOrStdin) EnsureContents() error {
	if f.Filename == "" {
		return f.readStdin()
	}
	return nil
}

// IsStdin reports whether the input comes from stdin.
func (f *FileOrStdin) IsStdin() bool {
	return f.Filename == stdinFilename
}

// GetSourceContent returns the raw input.
func (f *FileOrStdin) GetSourceContent() ([]byte, error) {
	if err := f.EnsureContents(); err != nil {
		return nil, err
	}
	if f.IsStdin() {
		return f.Contents, nil
	}
	data, err := os.ReadFile(f.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Filename, err)
	}
	return data, nil
}

// Load parses the input with ldr.
func (f *FileOrStdin) Load(ctx context.Context, ldr *loader.Loader) (*loader.Result, error) {
	if err := f.EnsureContents(); err != nil {
		return nil, err
	}
	if f.IsStdin() {
		return ldr.LoadBytes(ctx, f.Filename, f.Contents), nil
	}
	return ldr.Load(ctx, f.Filename)
}

func (f *FileOrStdin) readStdin() error {
	contents, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("failed to read from stdin: %w", err)
	}
	f.Filename = stdinFilename
	f.Contents = contents
	return nil
}
