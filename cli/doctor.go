package cli

import (
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/robinvdvleuten/sankey/output"
	"github.com/robinvdvleuten/sankey/parser"
)

// DoctorCmd provides doctor utilities for debugging sankey files.
type DoctorCmd struct {
	Lex LexCmd `cmd:"" help:"Show lexical tokens from a sankey file."`
	AST ASTCmd `cmd:"" name:"ast" help:"Show the parsed diagram as Go values."`
}

// LexCmd shows lexical tokens from a sankey file.
type LexCmd struct {
	File        FileOrStdin `help:"Sankey input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	CommentLead string      `help:"Comment marker (default %%)." placeholder:"LEAD"`
}

// Run prints one token per line as: TYPE line:col "content".
func (cmd *LexCmd) Run(ctx *kong.Context, globals *Globals) error {
	cfg, err := ParseFlags{CommentLead: cmd.CommentLead}.config(globals)
	if err != nil {
		return err
	}

	content, err := cmd.File.GetSourceContent()
	if err != nil {
		return err
	}

	styles := output.NewStyles(ctx.Stdout)
	lexer := parser.NewLexer(content, cmd.File.Filename, parser.WithCommentLead(cfg.Parse.CommentLead))
	for token := range lexer.All() {
		if token.Type == parser.EOF {
			continue
		}

		// Pad before styling so escape codes do not break the columns.
		_, _ = fmt.Fprintf(ctx.Stdout, "%s %s    %q\n",
			styles.Keyword(fmt.Sprintf("%-10s", token.Type.String())),
			styles.Dim(fmt.Sprintf("%d:%d", token.Line, token.Column)),
			token.String(content))
	}

	diagnostics := lexer.Diagnostics()
	errs := make([]error, len(diagnostics))
	for i, d := range diagnostics {
		errs[i] = d
	}
	printDiagnostics(ctx.Stderr, cmd.File.Filename, content, errs, output.NewStyles(ctx.Stderr))

	return nil
}

// ASTCmd dumps the parsed diagram.
type ASTCmd struct {
	ParseFlags

	File FileOrStdin `help:"Sankey input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
}

// Run prints the diagram with repr and the diagnostics to stderr.
func (cmd *ASTCmd) Run(ctx *kong.Context, globals *Globals) error {
	cfg, err := cmd.config(globals)
	if err != nil {
		return err
	}

	runCtx, report := startTelemetry(ctx, globals, fmt.Sprintf("doctor ast %s", cmd.File.Filename))
	defer report()

	res, err := cmd.File.Load(runCtx, cfg.Loader())
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(ctx.Stdout, repr.String(res.Diagram(), repr.Indent("  ")))
	printDiagnostics(ctx.Stderr, res.Filename, res.Source, res.Errors(), output.NewStyles(ctx.Stderr))

	return nil
}
