package parser

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"testing/iotest"
	"unsafe"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/sankey/ast"
	"github.com/robinvdvleuten/sankey/telemetry"
)

func parse(t *testing.T, input string, opts ...Option) *Result {
	t.Helper()
	return New(opts...).ParseString(context.Background(), input)
}

// flow is a position-free view of a record.
type flow struct {
	Source, Target, Weight string
}

func flows(records []*ast.Record) []flow {
	out := make([]flow, len(records))
	for i, r := range records {
		out[i] = flow{r.Source, r.Target, r.Weight.String()}
	}
	return out
}

func codes(diags []Diagnostic) []Code {
	out := make([]Code, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}
	return out
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   []flow
		header string
	}{
		{
			name:  "Empty",
			input: "",
			want:  []flow{},
		},
		{
			name:  "SingleRecord",
			input: "Agricultural waste,Bio-conversion,124.729\n",
			want:  []flow{{"Agricultural waste", "Bio-conversion", "124.729"}},
		},
		{
			name:  "NoTrailingNewline",
			input: "A,B,1",
			want:  []flow{{"A", "B", "1"}},
		},
		{
			name:  "QuotedWithComma",
			input: "'Ag, waste',Bio,12\n",
			want:  []flow{{"Ag, waste", "Bio", "12"}},
		},
		{
			name:  "DoubleQuotedWithEscape",
			input: `"say ""hi""",B,1`,
			want:  []flow{{`say "hi"`, "B", "1"}},
		},
		{
			name:  "QuotedAcrossLines",
			input: "'multi\nline',B,1\n",
			want:  []flow{{"multi\nline", "B", "1"}},
		},
		{
			name:  "SurroundingWhitespace",
			input: "  A ,\tB , 1  \n",
			want:  []flow{{"A", "B", "1"}},
		},
		{
			name:  "BlankLines",
			input: "\n\nA,B,1\n   \n\nC,D,2\n\n",
			want:  []flow{{"A", "B", "1"}, {"C", "D", "2"}},
		},
		{
			name:  "CRLF",
			input: "A,B,1\r\nC,D,2\r\n",
			want:  []flow{{"A", "B", "1"}, {"C", "D", "2"}},
		},
		{
			name:  "Comments",
			input: "%% flows\nA,B,1 %% trailing\n%% end",
			want:  []flow{{"A", "B", "1"}},
		},
		{
			name:   "Header",
			input:  "sankey-beta\n\nA,B,1\n",
			want:   []flow{{"A", "B", "1"}},
			header: "sankey-beta",
		},
		{
			name:   "HeaderOnly",
			input:  "sankey-beta\n",
			want:   []flow{},
			header: "sankey-beta",
		},
		{
			name:  "NumericNodes",
			input: "2023,2024,7\n",
			want:  []flow{{"2023", "2024", "7"}},
		},
		{
			name:  "ExponentWeight",
			input: "A,B,1.5e3\n",
			want:  []flow{{"A", "B", "1500"}},
		},
		{
			name:  "NegativeWeight",
			input: "A,B,-2.5\n",
			want:  []flow{{"A", "B", "-2.5"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parse(t, tt.input)
			assert.Equal(t, []Diagnostic{}, res.Diagnostics)
			assert.Equal(t, tt.want, flows(res.Records))
			assert.Equal(t, tt.header, res.Header)
			assert.False(t, res.HasErrors())
			assert.NoError(t, res.Err())
		})
	}
}

func TestParseRecordPositions(t *testing.T) {
	source := "Agricultural waste,Bio-conversion,124.729\n\n  C,D,2"
	res := parse(t, source, WithFilename("flows.sankey"))
	assert.Equal(t, 2, len(res.Records))

	first := res.Records[0]
	assert.Equal(t, ast.Span{Start: 0, End: 41}, first.Span)
	assert.Equal(t, ast.Position{Filename: "flows.sankey", Offset: 0, Line: 1, Column: 1}, first.Pos)
	assert.True(t, first.Weight.Equal(decimal.RequireFromString("124.729")))

	second := res.Records[1]
	assert.Equal(t, "C,D,2", second.Span.Text([]byte(source)))
	assert.Equal(t, 3, second.Pos.Line)
	assert.Equal(t, 3, second.Pos.Column)
}

func TestParseDiagnostics(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []flow
		codes   []Code
		spans   []ast.Span
		message string
	}{
		{
			name:    "MissingWeight",
			input:   "A,B\n",
			want:    []flow{},
			codes:   []Code{MalformedRecord},
			spans:   []ast.Span{{Start: 0, End: 3}},
			message: "malformed record: expected 3 fields (source, target, weight), found 2",
		},
		{
			name:    "SingleField",
			input:   "A\n",
			want:    []flow{},
			codes:   []Code{MalformedRecord},
			spans:   []ast.Span{{Start: 0, End: 1}},
			message: "found 1",
		},
		{
			name:    "TooManyFields",
			input:   "A,B,1,2\nC,D,3",
			want:    []flow{{"C", "D", "3"}},
			codes:   []Code{MalformedRecord},
			spans:   []ast.Span{{Start: 0, End: 7}},
			message: "found 4",
		},
		{
			name:    "InvalidNumber",
			input:   "A,B,notanumber\n",
			want:    []flow{},
			codes:   []Code{InvalidNumber},
			spans:   []ast.Span{{Start: 4, End: 14}},
			message: `invalid number: "notanumber"`,
		},
		{
			name:    "QuotedWeight",
			input:   "A,B,'12'\n",
			want:    []flow{},
			codes:   []Code{InvalidNumber},
			spans:   []ast.Span{{Start: 4, End: 8}},
			message: "invalid number",
		},
		{
			name:    "LoneSignWeight",
			input:   "A,B,-\n",
			want:    []flow{},
			codes:   []Code{InvalidNumber},
			spans:   []ast.Span{{Start: 4, End: 5}},
			message: "invalid number",
		},
		{
			name:    "UnterminatedQuote",
			input:   "'Ag,Bio,5\n",
			want:    []flow{},
			codes:   []Code{UnterminatedQuotedField},
			spans:   []ast.Span{{Start: 0, End: 10}},
			message: "unterminated quoted field",
		},
		{
			name:    "EmptySource",
			input:   ",B,1\nC,D,2\n",
			want:    []flow{{"C", "D", "2"}},
			codes:   []Code{UnexpectedToken},
			spans:   []ast.Span{{Start: 0, End: 1}},
			message: "expected source node, found ','",
		},
		{
			name:    "TextAfterQuoted",
			input:   "'a'b,c,1\nX,Y,2",
			want:    []flow{{"X", "Y", "2"}},
			codes:   []Code{UnexpectedToken},
			spans:   []ast.Span{{Start: 3, End: 4}},
			message: `expected ',' after field, found text "b"`,
		},
		{
			name:    "EmptyWeight",
			input:   "A,B,,1\n",
			want:    []flow{},
			codes:   []Code{UnexpectedToken},
			spans:   []ast.Span{{Start: 4, End: 5}},
			message: "expected weight, found ','",
		},
		{
			name:    "WeightWithSuffix",
			input:   "A,B,1'x'\n",
			want:    []flow{},
			codes:   []Code{InvalidNumber},
			spans:   []ast.Span{{Start: 4, End: 8}},
			message: "invalid number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parse(t, tt.input)
			assert.Equal(t, tt.want, flows(res.Records))
			assert.Equal(t, tt.codes, codes(res.Diagnostics))

			spans := make([]ast.Span, len(res.Diagnostics))
			for i, d := range res.Diagnostics {
				spans[i] = d.Span
				assert.Equal(t, SeverityError, d.Severity)
			}
			assert.Equal(t, tt.spans, spans)
			assert.Contains(t, res.Diagnostics[0].Message, tt.message)
			assert.True(t, res.HasErrors())
		})
	}
}

func TestParseRecovery(t *testing.T) {
	source, err := os.ReadFile("../testdata/invalid.sankey")
	assert.NoError(t, err)

	res := New(WithFilename("invalid.sankey")).Parse(context.Background(), source)

	assert.Equal(t, "sankey-beta", res.Header)
	assert.Equal(t, []flow{{"Coal reserves", "Coal", "63.965"}}, flows(res.Records))
	assert.Equal(t, []Code{MalformedRecord, InvalidNumber, UnterminatedQuotedField}, codes(res.Diagnostics))

	lines := make([]int, len(res.Diagnostics))
	for i, d := range res.Diagnostics {
		lines[i] = d.Pos.Line
	}
	assert.Equal(t, []int{3, 4, 5}, lines)
}

func TestParseRecoveryDisabled(t *testing.T) {
	res := parse(t, "A,B,1\nC,D\nE,F,x\nG,H,2\n", WithRecovery(false))

	assert.Equal(t, []*ast.Record{}, res.Records)
	assert.Equal(t, []Code{MalformedRecord}, codes(res.Diagnostics))

	res = parse(t, "A,B,1\nC,D,2\n", WithRecovery(false))
	assert.Equal(t, 2, len(res.Records))
	assert.Equal(t, 0, len(res.Diagnostics))
}

func TestParseDiagnosticsSorted(t *testing.T) {
	// The unterminated quote is found by the tokenizer while the parser is
	// still skipping the malformed record that contains it.
	res := parse(t, "A,B,1,'x")

	assert.Equal(t, []Code{MalformedRecord, UnterminatedQuotedField}, codes(res.Diagnostics))
	assert.Equal(t, 0, res.Diagnostics[0].Span.Start)
	assert.Equal(t, 6, res.Diagnostics[1].Span.Start)
}

func TestParseEveryRecordOrDiagnostic(t *testing.T) {
	// Every non-blank, non-comment line yields a record or a diagnostic.
	source := strings.Join([]string{
		"sankey-beta",
		"A,B,1",
		"A,B",
		"%% comment",
		"A,B,x",
		"",
		"A,,1",
		"A,B,2",
	}, "\n")

	res := parse(t, source)
	assert.Equal(t, 2, len(res.Records))
	assert.Equal(t, 3, len(res.Diagnostics))
}

func TestParseDeterministic(t *testing.T) {
	source, err := os.ReadFile("../testdata/energy.sankey")
	assert.NoError(t, err)

	p := New(WithFilename("energy.sankey"))
	want := p.Parse(context.Background(), source)
	assert.Equal(t, 68, len(want.Records))
	assert.Equal(t, 0, len(want.Diagnostics))

	var wg sync.WaitGroup
	results := make([]*Result, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = p.Parse(context.Background(), source)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestParseInternsNodeNames(t *testing.T) {
	res := parse(t, "A,Bio-conversion,1\nBio-conversion,C,2\n")
	assert.Equal(t, 2, len(res.Records))
	assert.True(t, unsafeSameString(res.Records[0].Target, res.Records[1].Source))
}

type upperConverter struct {
	DefaultValueConverter
}

func (c upperConverter) Convert(rule Rule, tok Token, source []byte) (Value, error) {
	val, err := c.DefaultValueConverter.Convert(rule, tok, source)
	if err != nil || rule != NodeRule {
		return val, err
	}
	if val.Text == "forbidden" {
		return Value{}, errors.New("node name is reserved")
	}
	val.Text = strings.ToUpper(val.Text)
	return val, nil
}

func TestParseCustomValueConverter(t *testing.T) {
	res := parse(t, "a,b,1\nforbidden,c,2\n", WithValueConverter(upperConverter{}))

	assert.Equal(t, []flow{{"A", "B", "1"}}, flows(res.Records))
	assert.Equal(t, []Code{UnexpectedToken}, codes(res.Diagnostics))
	assert.Equal(t, "node name is reserved", res.Diagnostics[0].Message)
}

func TestParseCustomTokenizer(t *testing.T) {
	tokenizer := DefaultTokenizer{Options: []LexerOption{WithCommentLead("#")}}
	res := parse(t, "# flows\nA,B,1 # note\n", WithTokenizer(tokenizer))

	assert.Equal(t, []flow{{"A", "B", "1"}}, flows(res.Records))
	assert.Equal(t, 0, len(res.Diagnostics))
}

func TestParseTelemetry(t *testing.T) {
	collector := telemetry.NewTimingCollector()
	ctx := telemetry.WithCollector(context.Background(), collector)

	New(WithFilename("flows.sankey")).ParseString(ctx, "A,B,1\nC,D\n")

	var buf strings.Builder
	collector.Report(&buf, nil)
	assert.Contains(t, buf.String(), "parser.parse flows.sankey")
	assert.Contains(t, buf.String(), "1 records, 1 diagnostics")
}

func TestResultErr(t *testing.T) {
	res := parse(t, "A,B\nC,D,x\n", WithFilename("flows.sankey"))
	assert.Equal(t, 2, len(res.Errors()))

	err := res.Err()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "flows.sankey:1:1: malformed record")
	assert.Contains(t, err.Error(), "flows.sankey:2:5: invalid number")

	var diag Diagnostic
	assert.True(t, errors.As(err, &diag))
	assert.Equal(t, MalformedRecord, diag.Code)

	res = parse(t, "A,B\n")
	assert.Equal(t, "line 1:1: malformed record: expected 3 fields (source, target, weight), found 2", res.Diagnostics[0].Error())
}

func TestResultDiagram(t *testing.T) {
	res := parse(t, "sankey-beta\nA,B,1\nB,C,2\n")
	diagram := res.Diagram()
	assert.Equal(t, "sankey-beta", diagram.Header)
	assert.Equal(t, 2, diagram.Len())
	assert.True(t, diagram.Records[0].Equal(ast.MustRecord("A", "B", "1")))
}

func TestParseHelpers(t *testing.T) {
	ctx := context.Background()

	res := ParseBytes(ctx, []byte("A,B,1\n"))
	assert.Equal(t, 1, len(res.Records))
	assert.Equal(t, "", res.Records[0].Pos.Filename)

	res = ParseBytesWithFilename(ctx, "named.sankey", []byte("A,B\n"))
	assert.Equal(t, "named.sankey", res.Diagnostics[0].Pos.Filename)

	res, err := ParseReader(ctx, strings.NewReader("A,B,1\nC,D,2\n"))
	assert.NoError(t, err)
	assert.Equal(t, 2, len(res.Records))

	_, err = ParseReader(ctx, iotest.ErrReader(errors.New("boom")))
	assert.EqualError(t, err, "failed to read input: boom")
}

func TestInterner(t *testing.T) {
	interner := NewInterner(4)

	a := interner.Intern("Coal")
	b := interner.InternBytes([]byte("Coal"))
	c := interner.Intern("Gas")

	assert.True(t, unsafeSameString(a, b))
	assert.Equal(t, "Gas", c)
	assert.Equal(t, 2, interner.Size())
}

// unsafeSameString reports whether a and b share their backing bytes.
func unsafeSameString(a, b string) bool {
	return len(a) == len(b) && unsafe.StringData(a) == unsafe.StringData(b)
}
