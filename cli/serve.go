package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/sankey/web"
)

// newFileContent is written to files created by serve.
const newFileContent = "sankey-beta\n"

type ServeCmd struct {
	ParseFlags

	File    string `help:"Sankey diagram file to serve." arg:""`
	Port    int    `help:"Port to listen on." default:"8080"`
	Host    string `help:"Address to bind." default:"127.0.0.1"`
	Create  bool   `help:"Create the file if it doesn't exist (no confirmation prompt)." short:"c"`
	Write   bool   `help:"Allow saving the source through the API (read-only by default)." short:"w"`
	NoWatch bool   `help:"Do not reload when the file changes on disk."`
}

func (cmd *ServeCmd) Run(ctx *kong.Context, globals *Globals) error {
	cfg, err := cmd.config(globals)
	if err != nil {
		return err
	}

	runCtx, report := startTelemetry(ctx, globals, fmt.Sprintf("serve %s", cmd.File))
	defer report()

	runCtx, stop := signal.NotifyContext(runCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	file, err := filepath.Abs(cmd.File)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if err := cmd.ensureFile(ctx.Stdout, file); err != nil {
		return err
	}

	version := Version
	if version == "" {
		version = "dev"
	}
	commitSHA := CommitSHA
	if commitSHA == "" {
		commitSHA = "local"
	}

	server := web.NewWithVersion(cmd.Port, file, version, commitSHA)
	server.Host = cmd.Host
	server.ReadOnly = !cmd.Write
	server.WatchEnabled = !cmd.NoWatch
	server.Loader = cfg.Loader()

	printInfof(ctx.Stdout, "Starting server on http://%s:%d", server.Host, cmd.Port)
	printInfof(ctx.Stdout, "Serving diagram: %s", pathStyle.Render(file))

	if server.ReadOnly {
		printInfof(ctx.Stdout, "Server running in READ-ONLY mode (use --write to allow saving)")
	}

	return server.Start(runCtx)
}

// ensureFile creates file when it is missing and the user agrees, either
// through --create or the confirmation prompt.
func (cmd *ServeCmd) ensureFile(w io.Writer, file string) error {
	_, err := os.Stat(file)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access file: %w", err)
	}

	shouldCreate := cmd.Create
	if !shouldCreate {
		confirmed, err := promptYesNo(fmt.Sprintf("File %q does not exist. Create it?", file))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		shouldCreate = confirmed
	}

	if !shouldCreate {
		return fmt.Errorf("file does not exist: %s", file)
	}

	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	if err := os.WriteFile(file, []byte(newFileContent), 0600); err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	printInfof(w, "Created diagram file: %s", pathStyle.Render(file))

	return nil
}
