// Package loader reads sankey diagram files and parses them.
//
// A single file is loaded with Load; several files are loaded concurrently
// with LoadAll. Each file gets its own parser so positions in diagnostics
// name the file they come from.
//
//	ldr := loader.New(loader.WithConcurrency(4))
//	results, err := ldr.LoadAll(ctx, []string{"a.sankey", "b.sankey"})
package loader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/robinvdvleuten/sankey"
	"github.com/robinvdvleuten/sankey/parser"
	"github.com/robinvdvleuten/sankey/telemetry"
)

// Loader loads and parses sankey files.
//
// Configure the loader using functional options passed to New:
//
//	loader := New(WithConcurrency(8))
type Loader struct {
	// Concurrency bounds the number of files parsed at once by LoadAll.
	// Zero means GOMAXPROCS.
	Concurrency int

	services []sankey.Option
}

// Option configures how files are loaded.
type Option func(*Loader)

// WithConcurrency bounds the number of files parsed at once.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		l.Concurrency = n
	}
}

// WithServices passes options to the service composition used for every
// file, e.g. to swap the value converter or disable recovery.
func WithServices(opts ...sankey.Option) Option {
	return func(l *Loader) {
		l.services = append(l.services, opts...)
	}
}

// New creates a new Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Result is a parsed file.
type Result struct {
	*parser.Result

	// Filename is the name the file was loaded with.
	Filename string

	// Source is the raw file content.
	Source []byte
}

// Load reads and parses filename. Only I/O failures are returned as
// errors; problems in the content are reported as diagnostics.
func (l *Loader) Load(ctx context.Context, filename string) (*Result, error) {
	timer := telemetry.FromContext(ctx).Start(fmt.Sprintf("loader.load %s", filepath.Base(filename)))
	defer timer.End()

	read := timer.Child("read")
	data, err := os.ReadFile(filename)
	read.End()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	return l.LoadBytes(ctx, filename, data), nil
}

// LoadReader reads r to the end and parses it under filename.
func (l *Loader) LoadReader(ctx context.Context, filename string, r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return l.LoadBytes(ctx, filename, data), nil
}

// LoadBytes parses data that was read from filename.
func (l *Loader) LoadBytes(ctx context.Context, filename string, data []byte) *Result {
	opts := append([]sankey.Option{}, l.services...)
	opts = append(opts, sankey.WithParserOptions(parser.WithFilename(filename)))
	services := sankey.NewServices(opts...)

	return &Result{
		Result:   services.Parser.Parse(ctx, data),
		Filename: filename,
		Source:   data,
	}
}

// LoadAll loads files concurrently. Results are returned in the order of
// files. The first I/O error cancels the remaining loads.
func (l *Loader) LoadAll(ctx context.Context, files []string) ([]*Result, error) {
	if len(files) == 0 {
		return []*Result{}, nil
	}

	jobs := l.Concurrency
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Each goroutine writes its own index.
	results := make([]*Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, filename := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			res, err := l.Load(gctx, filename)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// HasErrors reports whether any of the results has error diagnostics.
func HasErrors(results []*Result) bool {
	for _, r := range results {
		if r.HasErrors() {
			return true
		}
	}
	return false
}
