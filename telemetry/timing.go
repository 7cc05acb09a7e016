package telemetry

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/robinvdvleuten/sankey/output"
)

// TimingCollector collects timers into a tree. Top-level timers started
// concurrently become siblings; nesting is explicit through Timer.Child.
type TimingCollector struct {
	mu    sync.Mutex
	roots []*timerNode
	now   func() time.Time
}

type timerNode struct {
	name     string
	notes    []string
	start    time.Time
	end      time.Time
	children []*timerNode
}

// NewTimingCollector creates a new timing collector.
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{now: time.Now}
}

// Start begins timing a top-level operation.
func (c *TimingCollector) Start(name string) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &timerNode{name: name, start: c.now()}
	c.roots = append(c.roots, node)

	return &timingTimer{collector: c, node: node}
}

// Len returns the number of top-level timers.
func (c *TimingCollector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.roots)
}

// Report outputs the timing tree to w.
func (c *TimingCollector) Report(w io.Writer, styles *output.Styles) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.roots) == 0 {
		return
	}

	formatTimingTree(w, c.roots, styles)
}

type timingTimer struct {
	collector *TimingCollector
	node      *timerNode
}

func (t *timingTimer) End() {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	if t.node.end.IsZero() {
		t.node.end = t.collector.now()
	}
}

func (t *timingTimer) Child(name string) Timer {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	node := &timerNode{name: name, start: t.collector.now()}
	t.node.children = append(t.node.children, node)

	return &timingTimer{collector: t.collector, node: node}
}

func (t *timingTimer) Note(format string, args ...any) {
	note := fmt.Sprintf(format, args...)

	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	t.node.notes = append(t.node.notes, note)
}

// duration returns the elapsed time of n. Timers that were never ended
// report zero.
func (n *timerNode) duration() time.Duration {
	if n.end.IsZero() {
		return 0
	}
	return n.end.Sub(n.start)
}
