package telemetry

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/robinvdvleuten/sankey/output"
)

// slowThreshold marks operations that are highlighted in reports.
const slowThreshold = 100 * time.Millisecond

// formatTimingTree writes the timers as a tree:
//
//	load flows.sankey: 3ms
//	├─ read: 0ms
//	└─ parse: 2ms (42 records)
//
// Several top-level timers are grouped under a "total" line spanning from
// the earliest start to the latest end.
func formatTimingTree(w io.Writer, roots []*timerNode, styles *output.Styles) {
	sorted := make([]*timerNode, len(roots))
	copy(sorted, roots)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].start.Before(sorted[j].start)
	})

	root := sorted[0]
	children := root.children
	if len(sorted) > 1 {
		root = &timerNode{name: "total", start: sorted[0].start}
		for _, n := range sorted {
			if n.end.After(root.end) {
				root.end = n.end
			}
		}
		children = sorted
	}

	name := root.name
	if styles != nil {
		name = styles.Keyword(name)
	}
	_, _ = fmt.Fprintf(w, "%s: %s%s\n", name, formatDuration(root.duration()), formatNotes(root.notes))

	for i, child := range children {
		formatNode(w, child, "", i == len(children)-1, styles)
	}
}

func formatNode(w io.Writer, node *timerNode, prefix string, isLast bool, styles *output.Styles) {
	duration := node.duration()

	branch, extension := "├─ ", "│  "
	if isLast {
		branch, extension = "└─ ", "   "
	}

	tree := prefix + branch
	timing := formatDuration(duration)
	notes := formatNotes(node.notes)
	if styles != nil {
		tree = styles.Dim(tree)
		timing = styles.Timing(timing, duration >= slowThreshold)
		if notes != "" {
			notes = styles.Dim(notes)
		}
	}
	_, _ = fmt.Fprintf(w, "%s%s: %s%s\n", tree, node.name, timing, notes)

	for i, child := range node.children {
		formatNode(w, child, prefix+extension, i == len(node.children)-1, styles)
	}
}

func formatNotes(notes []string) string {
	if len(notes) == 0 {
		return ""
	}
	return " (" + strings.Join(notes, ", ") + ")"
}

// formatDuration shows milliseconds below one second and seconds above.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
}
