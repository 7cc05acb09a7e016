// Package telemetry collects hierarchical timings for parse runs.
//
// Collectors travel through a context so instrumented code never changes
// its signature. Without a collector every call is a no-op.
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.FromContext(ctx).Start("load flows.sankey")
//	parse := timer.Child("parse")
//	parse.Note("%d records", n)
//	parse.End()
//	timer.End()
//
//	collector.Report(os.Stderr, styles)
package telemetry

import (
	"context"
	"io"

	"github.com/robinvdvleuten/sankey/output"
)

type contextKey struct{}

var collectorKey = contextKey{}

// Collector receives timers and reports them.
type Collector interface {
	// Start begins timing a top-level operation. Start may be called from
	// several goroutines; each call yields an independent timer.
	Start(name string) Timer

	// Report writes the collected timings to w. styles may be nil.
	Report(w io.Writer, styles *output.Styles)
}

// Timer tracks a single operation.
type Timer interface {
	// End stops the timer. Calling End twice keeps the first end time.
	End()

	// Child creates a timer nested under this one.
	Child(name string) Timer

	// Note attaches a short annotation shown next to the timing,
	// e.g. the number of records produced.
	Note(format string, args ...any)
}

// WithCollector adds a collector to a context.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext extracts the collector from context. If none is present a
// collector that discards everything is returned.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}
