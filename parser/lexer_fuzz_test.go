package parser

import (
	"testing"
)

func FuzzLexer(f *testing.F) {
	seeds := []string{
		// Fields
		"Agricultural waste", "'Ag, waste'", `"Ag, waste"`, "'it''s'", `"say ""hi"""`,
		"124.729", "-3", "+3.5", ".5", "1.5e3", "2E-4", "12abc", "3-D",

		// Delimiters
		",", "\n", "\r\n", "\r", ",,", " ,\t,",

		// Trivia
		"%% comment", "A %% trailing", "sankey-beta", "SANKEY", "sankey,B,1",

		// Edge cases
		"",
		"'",
		"''",
		"'unterminated",
		"\"unterminated\n",
		"-",
		".",
		"1e",
		"%%",
		"%",
		"\x00",
		"\xff\xfe",
	}

	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		tokens := NewLexer([]byte(input), "fuzz.sankey").ScanAll()

		if len(tokens) == 0 || tokens[len(tokens)-1].Type != EOF {
			t.Fatalf("token stream must end with EOF")
		}

		// Tokens are contiguous and cover every byte exactly once.
		offset := 0
		for i, tok := range tokens {
			if tok.Start != offset {
				t.Fatalf("token %d (%s) starts at %d, want %d", i, tok.Type, tok.Start, offset)
			}
			if tok.Type != EOF && tok.End <= tok.Start {
				t.Fatalf("token %d (%s) is empty", i, tok.Type)
			}
			if tok.Line < 1 || tok.Column < 1 {
				t.Fatalf("token %d (%s) has invalid position %d:%d", i, tok.Type, tok.Line, tok.Column)
			}
			offset = tok.End
		}
		if offset != len(input) {
			t.Fatalf("tokens cover %d bytes, want %d", offset, len(input))
		}
	})
}
