package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/robinvdvleuten/sankey"
	"github.com/robinvdvleuten/sankey/formatter"
	"github.com/robinvdvleuten/sankey/loader"
	"github.com/robinvdvleuten/sankey/parser"
)

// ConfigFilename is the project config file looked up from the working
// directory upward.
const ConfigFilename = "sankey.toml"

// Config holds the settings read from sankey.toml. Command-line flags take
// precedence over it.
//
//	[parse]
//	recovery = true
//	comment-lead = "%%"
//
//	[format]
//	align = true
//	header = "sankey-beta"
//	quote = "'"
type Config struct {
	Parse  ParseConfig  `toml:"parse"`
	Format FormatConfig `toml:"format"`
}

type ParseConfig struct {
	Recovery    bool   `toml:"recovery"`
	CommentLead string `toml:"comment-lead"`
}

type FormatConfig struct {
	Align  bool   `toml:"align"`
	Header string `toml:"header"`
	Quote  string `toml:"quote"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Parse: ParseConfig{
			Recovery:    true,
			CommentLead: parser.DefaultCommentLead,
		},
		Format: FormatConfig{
			Quote: string(formatter.DefaultQuote),
		},
	}
}

// FindConfig walks from startDir to the filesystem root looking for
// sankey.toml.
func FindConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFilename)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadConfig reads path on top of the defaults. Unknown keys are errors.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values the parser and formatter cannot work with.
func (c Config) Validate() error {
	lead := c.Parse.CommentLead
	if strings.TrimSpace(lead) == "" {
		return fmt.Errorf("[parse].comment-lead must not be empty")
	}
	if strings.ContainsAny(lead, ",'\"\r\n\t ") {
		return fmt.Errorf("[parse].comment-lead %q must not contain commas, quotes or whitespace", lead)
	}
	if c.Format.Quote != "'" && c.Format.Quote != `"` {
		return fmt.Errorf(`[format].quote must be ' or ", got %q`, c.Format.Quote)
	}
	return nil
}

// ServiceOptions configures the parser services.
func (c Config) ServiceOptions() []sankey.Option {
	lexerOpts := []parser.LexerOption{parser.WithCommentLead(c.Parse.CommentLead)}
	return []sankey.Option{
		sankey.WithTokenizer(func() parser.Tokenizer {
			return parser.DefaultTokenizer{Options: lexerOpts}
		}),
		sankey.WithParserOptions(parser.WithRecovery(c.Parse.Recovery)),
	}
}

// Loader returns a loader using the parse settings.
func (c Config) Loader(opts ...loader.Option) *loader.Loader {
	return loader.New(append(opts, loader.WithServices(c.ServiceOptions()...))...)
}

// FormatterOptions configures the formatter.
func (c Config) FormatterOptions() []formatter.Option {
	return []formatter.Option{
		formatter.WithAlign(c.Format.Align),
		formatter.WithHeader(c.Format.Header),
		formatter.WithQuote(c.Format.Quote[0]),
		formatter.WithCommentLead(c.Parse.CommentLead),
	}
}

// ParseFlags are the parser settings shared by every command that reads a
// diagram.
type ParseFlags struct {
	Recovery    bool   `help:"Recover from malformed lines (overrides the config file)." xor:"recovery"`
	NoRecovery  bool   `help:"Stop at the first diagnostic and report no records." xor:"recovery"`
	CommentLead string `help:"Comment marker (default %%)." placeholder:"LEAD"`
}

func (f ParseFlags) apply(cfg *Config) {
	switch {
	case f.Recovery:
		cfg.Parse.Recovery = true
	case f.NoRecovery:
		cfg.Parse.Recovery = false
	}
	if f.CommentLead != "" {
		cfg.Parse.CommentLead = f.CommentLead
	}
}

// config loads the config file and applies the parse flags on top.
func (f ParseFlags) config(globals *Globals) (Config, error) {
	cfg, err := globals.LoadConfig()
	if err != nil {
		return Config{}, err
	}
	f.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
