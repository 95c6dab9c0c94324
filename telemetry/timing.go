package telemetry

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/robinvdvleuten/ratebook/output"
)

// TimingCollector records a tree of timed operations. Start calls made
// while another timer is open nest under it.
type TimingCollector struct {
	mu      sync.Mutex
	root    *timerNode
	current *timerNode
}

type timerNode struct {
	name     string
	start    time.Time
	end      time.Time
	parent   *timerNode
	children []*timerNode
}

// NewTimingCollector creates an empty collector.
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{}
}

// Start begins timing an operation.
func (c *TimingCollector) Start(name string) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &timerNode{name: name, start: time.Now()}
	if c.root == nil {
		c.root = node
	} else {
		node.parent = c.current
		c.current.children = append(c.current.children, node)
	}
	c.current = node

	return &timingTimer{collector: c, node: node}
}

// Report writes the timing tree.
func (c *TimingCollector) Report(w io.Writer, styles *output.Styles) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.root == nil {
		return
	}
	formatNode(w, c.root, "", "", true, styles)
}

type timingTimer struct {
	collector *TimingCollector
	node      *timerNode
}

// End stops the timer and moves the collector's cursor back up.
func (t *timingTimer) End() {
	c := t.collector
	c.mu.Lock()
	defer c.mu.Unlock()

	t.node.end = time.Now()
	if t.node.parent != nil {
		c.current = t.node.parent
	}
}

// Child creates a nested timer without moving the collector's cursor.
func (t *timingTimer) Child(name string) Timer {
	c := t.collector
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &timerNode{name: name, start: time.Now(), parent: t.node}
	t.node.children = append(t.node.children, node)

	return &timingTimer{collector: c, node: node}
}

// formatNode renders one node and recurses into its children with tree
// drawing characters, e.g.:
//
//	check rates.db: 1.2ms
//	├─ cache.load: 1.1ms
//	└─ chain.valid_at: 0.1ms
func formatNode(w io.Writer, node *timerNode, prefix, branch string, isRoot bool, styles *output.Styles) {
	duration := node.end.Sub(node.start)
	slow := duration >= 100*time.Millisecond

	name := node.name
	timing := formatDuration(duration)
	if styles != nil {
		if isRoot {
			name = styles.Keyword(name)
		}
		timing = styles.Timing(timing, slow)
	}
	_, _ = fmt.Fprintf(w, "%s%s%s: %s\n", prefix, branch, name, timing)

	childPrefix := ""
	if !isRoot {
		childPrefix = prefix + extensionFor(branch)
	}
	for i, child := range node.children {
		childBranch := "├─ "
		if i == len(node.children)-1 {
			childBranch = "└─ "
		}
		formatNode(w, child, childPrefix, childBranch, false, styles)
	}
}

func extensionFor(branch string) string {
	if branch == "└─ " {
		return "   "
	}
	return "│  "
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%.2fms", float64(d)/float64(time.Millisecond))
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}
