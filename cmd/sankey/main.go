package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/sankey/cli"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = ""

	// CommitSHA contains the SHA of the commit that this application was built
	// against. It's set via ldflags when building.
	CommitSHA = ""

	commands struct {
		Version kong.VersionFlag `help:"Show version information"`
		cli.Commands
	}
)

func main() {
	ctx := kong.Parse(&commands,
		kong.Vars{
			"version": buildVersion(),
		},
		kong.Name("sankey"),
		kong.Description("Parse, check, format and preview sankey diagram files."),
		kong.UsageOnError(),
		kong.Bind(&commands.Globals),
	)

	cli.Version, cli.CommitSHA = Version, CommitSHA

	err := ctx.Run()
	var cmdErr *cli.CommandError
	if !errors.As(err, &cmdErr) {
		ctx.FatalIfErrorf(err)
	}
	os.Exit(cli.ExitCode(err))
}

func buildVersion() string {
	if Version == "" {
		Version = "dev"
	}
	if CommitSHA == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, CommitSHA)
}
