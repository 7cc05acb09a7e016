package parser

import (
	"context"
	"testing"
)

func FuzzParser(f *testing.F) {
	seeds := []string{
		"Agricultural waste,Bio-conversion,124.729\n",
		"'Ag, waste',Bio,12\n",
		"sankey-beta\n\nA,B,1\nB,C,2\n",
		"%% comment\nA,B,1 %% trailing\n",
		"A,B\n",
		"A,B,notanumber\n",
		"'Ag,Bio,5\n",
		"A,B,1,2\n",
		",,\n",
		"A,B,1\r\nC,D,2\r\n",
		"",
		"\n\n\n",
	}

	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		source := []byte(input)
		res := New().Parse(context.Background(), source)

		if res.Records == nil || res.Diagnostics == nil {
			t.Fatalf("records and diagnostics must never be nil")
		}

		for _, r := range res.Records {
			if r.Span.Start < 0 || r.Span.End > len(source) || r.Span.Start >= r.Span.End {
				t.Fatalf("record span %s out of range", r.Span)
			}
		}

		prev := 0
		for _, d := range res.Diagnostics {
			if d.Span.Start < prev {
				t.Fatalf("diagnostics are not sorted: %d after %d", d.Span.Start, prev)
			}
			if d.Span.End > len(source) || d.Span.Start > d.Span.End {
				t.Fatalf("diagnostic span %s out of range", d.Span)
			}
			prev = d.Span.Start
		}

		// Parsing is deterministic.
		again := New().Parse(context.Background(), source)
		if len(again.Records) != len(res.Records) || len(again.Diagnostics) != len(res.Diagnostics) {
			t.Fatalf("second parse differs")
		}
	})
}
