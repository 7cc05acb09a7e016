package cli

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Config    string `help:"Path to a sankey.toml config file (default: searched upward from the working directory)." type:"path" placeholder:"FILE"`
	Telemetry bool   `help:"Show timing telemetry for operations."`
}

// LoadConfig reads the config file named by --config, or the nearest
// sankey.toml. Without either the defaults are returned.
func (g *Globals) LoadConfig() (Config, error) {
	if g.Config != "" {
		return LoadConfig(g.Config)
	}

	path, ok, err := FindConfig(".")
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

type Commands struct {
	Globals

	Check  CheckCmd  `cmd:"" help:"Parse sankey files and report diagnostics."`
	Doctor DoctorCmd `cmd:"" help:"Doctor utilities for debugging sankey files."`
	Export ExportCmd `cmd:"" help:"Export records and diagnostics as JSON or MessagePack."`
	Format FormatCmd `cmd:"" help:"Format a sankey file with canonical quoting and optional alignment."`
	Serve  ServeCmd  `cmd:"" help:"Start a web preview server."`
}
