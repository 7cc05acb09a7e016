package formatter

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/sankey/ast"
	"github.com/robinvdvleuten/sankey/parser"
)

func format(t *testing.T, source string, opts ...Option) string {
	t.Helper()
	ctx := context.Background()

	res := parser.New().ParseString(ctx, source)
	assert.Equal(t, 0, len(res.Diagnostics), "unexpected diagnostics: %v", res.Err())

	var buf bytes.Buffer
	assert.NoError(t, New(opts...).Format(ctx, res.Diagram(), []byte(source), &buf))
	return buf.String()
}

func TestNeedsQuote(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"Agricultural waste", false},
		{"Bio-conversion", false},
		{"O'Brien", false},
		{"2024", false},
		{"A%B", false},
		{"", true},
		{"Ag, waste", true},
		{"'quoted", true},
		{`"quoted`, true},
		{" leading", true},
		{"trailing\t", true},
		{"multi\nline", true},
		{"carriage\rreturn", true},
		{"with %% comment", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, needsQuote(tt.input, parser.DefaultCommentLead))
		})
	}
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "'Ag, waste'", quote("Ag, waste", '\''))
	assert.Equal(t, "'it''s'", quote("it's", '\''))
	assert.Equal(t, `"it's"`, quote("it's", '"'))
	assert.Equal(t, `"say ""hi"""`, quote(`say "hi"`, '"'))
	assert.Equal(t, "''", quote("", '\''))
}

func TestNew(t *testing.T) {
	f := New()
	assert.Equal(t, byte(DefaultQuote), f.Quote)
	assert.Equal(t, parser.DefaultCommentLead, f.CommentLead)
	assert.True(t, f.PreserveComments)
	assert.True(t, f.PreserveBlanks)
	assert.False(t, f.Align)

	f = New(WithQuote('"'), WithAlign(true), WithHeader("sankey"), WithQuote('x'))
	assert.Equal(t, byte('"'), f.Quote)
	assert.True(t, f.Align)
	assert.Equal(t, "sankey", f.Header)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		opts     []Option
		expected string
	}{
		{
			name:     "Empty",
			input:    "",
			expected: "",
		},
		{
			name:     "Simple",
			input:    "sankey-beta\nA,B,1\n",
			expected: "sankey-beta\nA,B,1\n",
		},
		{
			name:     "Canonical",
			input:    "  A ,\tB , 1.50 \nC,D,1.5e3\r\nE,F,+3",
			expected: "A,B,1.5\nC,D,1500\nE,F,3\n",
		},
		{
			name:     "MinimalQuoting",
			input:    "'Ag, waste',\"Bio\",12\n'it''s',''' x',1\n",
			expected: "'Ag, waste',Bio,12\nit's,''' x',1\n",
		},
		{
			name:     "DoubleQuote",
			input:    "'Ag, waste',Bio,12\n",
			opts:     []Option{WithQuote('"')},
			expected: "\"Ag, waste\",Bio,12\n",
		},
		{
			name:     "QuoteAll",
			input:    "A,B,1\n",
			opts:     []Option{WithQuoteAll(true)},
			expected: "'A','B',1\n",
		},
		{
			name:     "MultilineName",
			input:    "'a\n\nb',C,1\n",
			expected: "'a\n\nb',C,1\n",
		},
		{
			name:     "HeaderOverride",
			input:    "sankey\nA,B,1\n",
			opts:     []Option{WithHeader("sankey-beta")},
			expected: "sankey-beta\nA,B,1\n",
		},
		{
			name:     "HeaderAdded",
			input:    "A,B,1\n",
			opts:     []Option{WithHeader("sankey-beta")},
			expected: "sankey-beta\nA,B,1\n",
		},
		{
			name: "Comments",
			input: strings.Join([]string{
				"%% top",
				"sankey-beta",
				"",
				"%% section",
				"A,B,1   %% inline",
				"",
				"",
				"",
				"C,D,2",
				"  %% end",
				"",
			}, "\n"),
			expected: strings.Join([]string{
				"%% top",
				"sankey-beta",
				"",
				"%% section",
				"A,B,1 %% inline",
				"",
				"C,D,2",
				"%% end",
				"",
			}, "\n"),
		},
		{
			name:     "DropComments",
			input:    "%% top\nA,B,1 %% inline\n\nC,D,2\n",
			opts:     []Option{WithPreserveComments(false)},
			expected: "A,B,1\n\nC,D,2\n",
		},
		{
			name:     "DropBlanks",
			input:    "%% top\nA,B,1\n\n\nC,D,2\n",
			opts:     []Option{WithPreserveBlanks(false)},
			expected: "%% top\nA,B,1\nC,D,2\n",
		},
		{
			name:     "CustomCommentLead",
			input:    "A,B,1\n",
			opts:     []Option{WithCommentLead("#")},
			expected: "A,B,1\n",
		},
		{
			name:  "Align",
			input: "A,Bio-conversion,1\nCoal reserves,B,22\n",
			opts:  []Option{WithAlign(true)},
			expected: "A,             Bio-conversion, 1\n" +
				"Coal reserves, B,              22\n",
		},
		{
			name:  "AlignWideCharacters",
			input: "電力,A,1\nGas,B,2\n",
			opts:  []Option{WithAlign(true)},
			expected: "電力, A, 1\n" +
				"Gas,  B, 2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, format(t, tt.input, tt.opts...))
		})
	}
}

func TestFormatWithoutSource(t *testing.T) {
	diagram := ast.NewDiagram("sankey-beta",
		ast.MustRecord("Coal", "Solid", "75.571"),
		ast.MustRecord("Ag, waste", "Bio-conversion", "124.729"),
	)

	var buf bytes.Buffer
	assert.NoError(t, New().Format(context.Background(), diagram, nil, &buf))
	assert.Equal(t, "sankey-beta\nCoal,Solid,75.571\n'Ag, waste',Bio-conversion,124.729\n", buf.String())
}

func TestFormatRecord(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, New().FormatRecord(ast.MustRecord("A", "B,C", "1.0"), &buf))
	assert.Equal(t, "A,'B,C',1", buf.String())
}

func TestFormatRoundTrip(t *testing.T) {
	files := []string{"../testdata/energy.sankey", "../testdata/invalid.sankey"}

	for _, file := range files {
		for _, align := range []bool{false, true} {
			t.Run(file, func(t *testing.T) {
				ctx := context.Background()
				source, err := os.ReadFile(file)
				assert.NoError(t, err)

				first := parser.New().Parse(ctx, source)

				var buf bytes.Buffer
				assert.NoError(t, New(WithAlign(align)).Format(ctx, first.Diagram(), source, &buf))

				second := parser.New().Parse(ctx, buf.Bytes())
				assert.Equal(t, 0, len(second.Diagnostics), "formatted output has diagnostics: %v", second.Err())
				assert.Equal(t, first.Header, second.Header)
				assert.Equal(t, len(first.Records), len(second.Records))
				for i := range first.Records {
					assert.True(t, first.Records[i].Equal(second.Records[i]),
						"record %d differs: %v != %v", i, first.Records[i], second.Records[i])
				}

				// Formatting is idempotent.
				var again bytes.Buffer
				assert.NoError(t, New(WithAlign(align)).Format(ctx, second.Diagram(), buf.Bytes(), &again))
				assert.Equal(t, buf.String(), again.String())
			})
		}
	}
}
