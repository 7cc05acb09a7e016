package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/sankey/formatter"
	"github.com/robinvdvleuten/sankey/output"
)

type FormatCmd struct {
	ParseFlags

	File    FileOrStdin `help:"Sankey input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Write   bool        `help:"Write the result back to the file instead of stdout." short:"w"`
	Align   bool        `help:"Pad columns so weights line up." xor:"align"`
	NoAlign bool        `help:"Do not pad columns." xor:"align"`
	Header  string      `help:"Header line written before the records (default: keep the file's header)."`
	Quote   string      `help:"Quote character for node names that need quoting (' or \")." placeholder:"CHAR"`
}

func (cmd *FormatCmd) Run(ctx *kong.Context, globals *Globals) error {
	cfg, err := cmd.config(globals)
	if err != nil {
		return err
	}
	switch {
	case cmd.Align:
		cfg.Format.Align = true
	case cmd.NoAlign:
		cfg.Format.Align = false
	}
	if cmd.Header != "" {
		cfg.Format.Header = cmd.Header
	}
	if cmd.Quote != "" {
		cfg.Format.Quote = cmd.Quote
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}
	if cmd.Write && cmd.File.IsStdin() {
		return fmt.Errorf("--write cannot be used when reading from stdin")
	}

	runCtx, report := startTelemetry(ctx, globals, fmt.Sprintf("format %s", cmd.File.Filename))
	defer report()

	res, err := cmd.File.Load(runCtx, cfg.Loader())
	if err != nil {
		return err
	}

	if res.HasErrors() {
		printDiagnostics(ctx.Stderr, res.Filename, res.Source, res.Errors(), output.NewStyles(ctx.Stderr))
		printError(ctx.Stderr, "parse error")
		return NewCommandError(1)
	}

	var buf bytes.Buffer
	f := formatter.New(cfg.FormatterOptions()...)
	if err := f.Format(runCtx, res.Diagram(), res.Source, &buf); err != nil {
		return err
	}

	if !cmd.Write {
		_, err := ctx.Stdout.Write(buf.Bytes())
		return err
	}

	filename := cmd.File.Filename
	if bytes.Equal(buf.Bytes(), res.Source) {
		printInfof(ctx.Stderr, "%s is already formatted", pathStyle.Render(filename))
		return nil
	}

	info, err := os.Stat(filename)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, buf.Bytes(), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}

	printSuccess(ctx.Stderr, fmt.Sprintf("Formatted %s", pathStyle.Render(filename)))

	return nil
}
