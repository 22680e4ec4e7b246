package behavior

import (
	"strings"
)

// Tree owns a root node and counts ticks.
type Tree struct {
	root  *Node
	ticks int
}

// NewTree wraps root.
func NewTree(root *Node) *Tree {
	return &Tree{root: root}
}

func (t *Tree) Root() *Node    { return t.root }
func (t *Tree) Status() Status { return t.root.status }
func (t *Tree) Ticks() int     { return t.ticks }

// Tick evaluates the whole tree once.
func (t *Tree) Tick() Status {
	t.ticks++
	return t.root.Tick()
}

// Stop interrupts the tree, terminating every running node.
func (t *Tree) Stop(st Status) {
	t.root.Stop(st)
}

// OnTerminate registers fn on every node. It is called after a node's own
// Terminate, for completions and interruptions alike.
func (t *Tree) OnTerminate(fn func(*Node, Status)) {
	t.Walk(func(n *Node, _ int) bool {
		n.observer = fn
		return true
	})
}

// Walk visits nodes depth-first, parents before children. Returning false from fn
// skips the node's subtree.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	walk(t.root, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.children {
		walk(c, depth+1, fn)
	}
}

// Leaves returns every leaf in depth-first order.
func (t *Tree) Leaves() []*Node {
	var out []*Node
	t.Walk(func(n *Node, _ int) bool {
		if n.IsLeaf() {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Find returns the first node named name.
func (t *Tree) Find(name string) (*Node, bool) {
	var found *Node
	t.Walk(func(n *Node, _ int) bool {
		if found == nil && n.name == name {
			found = n
		}
		return found == nil
	})
	return found, found != nil
}

// String renders the tree with current statuses, one node per line.
func (t *Tree) String() string {
	var b strings.Builder
	t.Walk(func(n *Node, depth int) bool {
		b.WriteString(strings.Repeat("  ", depth))
		if n.IsLeaf() {
			b.WriteString("- ")
		} else {
			b.WriteString("+ ")
		}
		b.WriteString(n.name)
		if !n.IsLeaf() {
			b.WriteString(" (" + n.policy.String() + ")")
		}
		b.WriteString(" [" + n.status.String() + "]\n")
		return true
	})
	return b.String()
}
