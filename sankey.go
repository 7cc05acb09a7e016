// Package sankey assembles the sankey diagram front end from its parts.
//
// Services is the composition root: it holds the tokenizer, the value
// converter and the parser built from them. Every part can be replaced
// through an option before the parser is created, so a host can swap the
// tokenizer or the value conventions without touching the record grammar.
//
//	services := sankey.NewServices()
//	res := services.Parser.Parse(ctx, source)
//	for _, d := range res.Diagnostics {
//		fmt.Println(d)
//	}
package sankey

import (
	"context"

	"github.com/robinvdvleuten/sankey/parser"
)

// Services groups the collaborating parts of the front end.
type Services struct {
	Tokenizer      parser.Tokenizer
	ValueConverter parser.ValueConverter
	Parser         *parser.Parser
}

type config struct {
	tokenizer     func() parser.Tokenizer
	converter     func() parser.ValueConverter
	parserOptions []parser.Option
}

// Option overrides one of the default factories.
type Option func(*config)

// WithTokenizer replaces the tokenizer factory.
func WithTokenizer(factory func() parser.Tokenizer) Option {
	return func(c *config) {
		c.tokenizer = factory
	}
}

// WithValueConverter replaces the value converter factory.
func WithValueConverter(factory func() parser.ValueConverter) Option {
	return func(c *config) {
		c.converter = factory
	}
}

// WithParserOptions adds options applied to the parser after the tokenizer
// and value converter are installed.
func WithParserOptions(opts ...parser.Option) Option {
	return func(c *config) {
		c.parserOptions = append(c.parserOptions, opts...)
	}
}

// NewServices builds the services. Each factory runs exactly once.
func NewServices(opts ...Option) *Services {
	c := &config{
		tokenizer: func() parser.Tokenizer { return parser.DefaultTokenizer{} },
		converter: func() parser.ValueConverter { return parser.DefaultValueConverter{} },
	}
	for _, opt := range opts {
		opt(c)
	}

	s := &Services{
		Tokenizer:      c.tokenizer(),
		ValueConverter: c.converter(),
	}

	parserOpts := append([]parser.Option{
		parser.WithTokenizer(s.Tokenizer),
		parser.WithValueConverter(s.ValueConverter),
	}, c.parserOptions...)
	s.Parser = parser.New(parserOpts...)

	return s
}

var defaultServices = NewServices()

// Parse parses source with the default services.
func Parse(ctx context.Context, source []byte) *parser.Result {
	return defaultServices.Parser.Parse(ctx, source)
}

// ParseString parses source with the default services.
func ParseString(ctx context.Context, source string) *parser.Result {
	return defaultServices.Parser.ParseString(ctx, source)
}
