package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/sankey/loader"
	"github.com/robinvdvleuten/sankey/output"
)

type CheckCmd struct {
	ParseFlags

	Files       []string `help:"Sankey input files (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Concurrency int      `help:"Number of files parsed at once (0 uses all CPUs)." default:"0"`
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	cfg, err := cmd.config(globals)
	if err != nil {
		return err
	}

	inputs := strings.Join(cmd.Files, " ")
	if inputs == "" {
		inputs = stdinFilename
	}
	runCtx, report := startTelemetry(ctx, globals, fmt.Sprintf("check %s", inputs))
	defer report()

	results, err := cmd.load(runCtx, cfg.Loader(loader.WithConcurrency(cmd.Concurrency)))
	if err != nil {
		return err
	}

	styles := output.NewStyles(ctx.Stderr)
	diagnostics, records, failed := 0, 0, 0
	for _, res := range results {
		diagnostics += printDiagnostics(ctx.Stderr, res.Filename, res.Source, res.Errors(), styles)
		records += len(res.Records)
		if res.HasErrors() {
			failed++
		}
	}

	if failed > 0 {
		printError(ctx.Stderr, fmt.Sprintf("%s found in %s", plural(diagnostics, "diagnostic"), plural(failed, "file")))
		return NewCommandError(1)
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Check passed (%s)", plural(records, "record")))

	return nil
}

func (cmd *CheckCmd) load(ctx context.Context, ldr *loader.Loader) ([]*loader.Result, error) {
	if len(cmd.Files) == 0 || (len(cmd.Files) == 1 && cmd.Files[0] == "-") {
		input := &FileOrStdin{}
		res, err := input.Load(ctx, ldr)
		if err != nil {
			return nil, err
		}
		return []*loader.Result{res}, nil
	}

	if slices.Contains(cmd.Files, "-") {
		return nil, fmt.Errorf("stdin ('-') cannot be combined with other files")
	}

	return ldr.LoadAll(ctx, cmd.Files)
}
