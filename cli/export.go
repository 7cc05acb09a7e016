package cli

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/sankey/loader"
)

type ExportCmd struct {
	ParseFlags

	File   FileOrStdin `help:"Sankey input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Format string      `help:"Output encoding (${enum})." enum:"json,msgpack" default:"json" short:"f"`
	Output string      `help:"Write to this file instead of stdout." short:"o" type:"path" placeholder:"FILE"`
	Strict bool        `help:"Exit with status 1 when the input has errors."`
}

func (cmd *ExportCmd) Run(ctx *kong.Context, globals *Globals) error {
	cfg, err := cmd.config(globals)
	if err != nil {
		return err
	}

	if cmd.Output == "" && cmd.Format == loader.FormatMsgpack && isTerminalWriter(ctx.Stdout) {
		return fmt.Errorf("refusing to write MessagePack to a terminal, use --output")
	}

	runCtx, report := startTelemetry(ctx, globals, fmt.Sprintf("export %s", cmd.File.Filename))
	defer report()

	res, err := cmd.File.Load(runCtx, cfg.Loader())
	if err != nil {
		return err
	}

	if cmd.Output == "" {
		if err := res.Document().Encode(ctx.Stdout, cmd.Format); err != nil {
			return fmt.Errorf("failed to encode %s: %w", cmd.Format, err)
		}
	} else if err := writeDocument(cmd.Output, res.Document(), cmd.Format); err != nil {
		return err
	}

	if cmd.Strict && res.HasErrors() {
		printError(ctx.Stderr, fmt.Sprintf("%s in %s", plural(len(res.Diagnostics), "diagnostic"), res.Filename))
		return NewCommandError(1)
	}

	return nil
}

func writeDocument(filename string, doc *loader.Document, format string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	if err := doc.Encode(f, format); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return f.Close()
}
