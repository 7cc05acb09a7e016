package formatter

import (
	"bytes"
	"context"
	"testing"

	"github.com/robinvdvleuten/sankey/parser"
)

func FuzzFormatter(f *testing.F) {
	seeds := []string{
		"Agricultural waste,Bio-conversion,124.729\n",
		"sankey-beta\n\n%% flows\nA,B,1 %% note\n\nB,C,2\n",
		"'Ag, waste',\"Bio\",12\n",
		"'it''s',''' x',1\n",
		"'a\n\nb',C,1.5e3\n",
		"  A ,\tB , -1.50 \r\n",
		"電力,熱,3\n",
		"A%%B,C,1\n",
	}

	for _, seed := range seeds {
		f.Add([]byte(seed), false)
		f.Add([]byte(seed), true)
	}

	f.Fuzz(func(t *testing.T, data []byte, align bool) {
		ctx := context.Background()

		first := parser.New().Parse(ctx, data)
		if len(first.Diagnostics) > 0 {
			return
		}

		var buf bytes.Buffer
		if err := New(WithAlign(align)).Format(ctx, first.Diagram(), data, &buf); err != nil {
			t.Fatalf("Format failed: %v", err)
		}

		// Parse(Format(Parse(x))) yields the same records.
		second := parser.New().Parse(ctx, buf.Bytes())
		if len(second.Diagnostics) > 0 {
			t.Fatalf("formatted output has diagnostics: %v\ninput: %q\noutput: %q", second.Err(), data, buf.String())
		}
		if len(first.Records) != len(second.Records) {
			t.Fatalf("record count changed: %d != %d\ninput: %q\noutput: %q",
				len(first.Records), len(second.Records), data, buf.String())
		}
		for i := range first.Records {
			if !first.Records[i].Equal(second.Records[i]) {
				t.Fatalf("record %d changed: %+v != %+v", i, first.Records[i], second.Records[i])
			}
		}
	})
}
