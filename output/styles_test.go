package output

import (
	"bytes"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestPlainStyles(t *testing.T) {
	var buf bytes.Buffer
	styles := NewPlainStyles(&buf)

	assert.False(t, styles.Colored())

	tests := []struct {
		name  string
		style func(string) string
	}{
		{"Success", styles.Success},
		{"Error", styles.Error},
		{"Warning", styles.Warning},
		{"FilePath", styles.FilePath},
		{"Node", styles.Node},
		{"Weight", styles.Weight},
		{"Code", styles.Code},
		{"Keyword", styles.Keyword},
		{"Dim", styles.Dim},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, "Agricultural waste", tt.style("Agricultural waste"))
		})
	}
}

func TestPlainTiming(t *testing.T) {
	styles := NewPlainStyles(&bytes.Buffer{})

	assert.Equal(t, "12ms", styles.Timing("12ms", false))
	assert.Equal(t, "1.20s", styles.Timing("1.20s", true))
}

func TestNewStylesKeepsText(t *testing.T) {
	// A bytes.Buffer is not a terminal, but the profile may still be forced
	// through the environment; only check that the text survives.
	styles := NewStyles(&bytes.Buffer{})
	assert.NotZero(t, styles.Output())
	assert.Contains(t, styles.Node("Bio-conversion"), "Bio-conversion")
	assert.Contains(t, styles.Weight("124.729"), "124.729")
}
