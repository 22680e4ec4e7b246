package behavior

import (
	"errors"
	"fmt"

	"github.com/aretw0/roadtest/pkg/domain"
)

// Status aliases domain.Status so leaves only need this package.
type Status = domain.Status

const (
	Invalid = domain.StatusInvalid
	Running = domain.StatusRunning
	Success = domain.StatusSuccess
	Failure = domain.StatusFailure
)

// ErrInvalidPolicy is returned when a composite is requested with a policy that is
// not a composite policy.
var ErrInvalidPolicy = errors.New("behavior: invalid composite policy")

// Behavior is the logic of a leaf node.
type Behavior interface {
	// Initialise is called on the first tick of an activation.
	Initialise()
	// Update returns this tick's status.
	Update() Status
	// Terminate is called exactly once when an activation ends, with the final
	// status, or with Invalid when the node was interrupted.
	Terminate(Status)
}

// Base provides no-op Initialise and Terminate for leaves that only need Update.
type Base struct{}

func (Base) Initialise() {}
func (Base) Terminate(Status) {}

// Func adapts an update function into a Behavior.
type Func func() Status

func (f Func) Initialise() {}
func (f Func) Update() Status { return f() }
func (f Func) Terminate(Status) {}

// Policy selects how a node derives its status.
type Policy int

const (
	PolicyLeaf Policy = iota
	PolicySequence
	PolicyParallelAny
	PolicyParallelAll
)

func (p Policy) String() string {
	switch p {
	case PolicyLeaf:
		return "leaf"
	case PolicySequence:
		return "sequence"
	case PolicyParallelAny:
		return "parallel_any"
	case PolicyParallelAll:
		return "parallel_all"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// Node is a leaf or a composite in a behavior tree.
type Node struct {
	name     string
	policy   Policy
	behavior Behavior
	children []*Node
	status   Status

	// sequence activation state
	current int

	observer func(*Node, Status)
}

// Leaf returns a node running b. It panics if b is nil.
func Leaf(name string, b Behavior) *Node {
	if b == nil {
		panic(fmt.Sprintf("behavior: leaf %q has no behavior", name))
	}
	return &Node{name: name, policy: PolicyLeaf, behavior: b}
}

// Sequence returns a composite ticking children in order.
func Sequence(name string, children ...*Node) *Node {
	return composite(name, PolicySequence, children)
}

// ParallelAny returns a composite that succeeds when any child succeeds.
func ParallelAny(name string, children ...*Node) *Node {
	return composite(name, PolicyParallelAny, children)
}

// ParallelAll returns a composite that succeeds when every child succeeds.
func ParallelAll(name string, children ...*Node) *Node {
	return composite(name, PolicyParallelAll, children)
}

// Composite returns a composite node with the given policy. PolicyLeaf and unknown
// policies are rejected.
func Composite(name string, p Policy, children ...*Node) (*Node, error) {
	switch p {
	case PolicySequence, PolicyParallelAny, PolicyParallelAll:
		return composite(name, p, children), nil
	}
	return nil, fmt.Errorf("%w: %q cannot be a composite policy", ErrInvalidPolicy, p)
}

func composite(name string, p Policy, children []*Node) *Node {
	return &Node{name: name, policy: p, children: children}
}

// AddChild appends a child to a composite. It must not be called while the node is Running.
func (n *Node) AddChild(c *Node) {
	n.children = append(n.children, c)
}

func (n *Node) Name() string { return n.name }
func (n *Node) Policy() Policy { return n.policy }
func (n *Node) Status() Status { return n.status }
func (n *Node) Children() []*Node { return n.children }
func (n *Node) Behavior() Behavior { return n.behavior }
func (n *Node) IsLeaf() bool { return n.policy == PolicyLeaf }
func (n *Node) String() string { return fmt.Sprintf("%s[%s]", n.name, n.status) }

// Tick evaluates the node once and returns its new status.
func (n *Node) Tick() Status {
	if n.status != Running {
		n.initialise()
	}
	st := n.update()
	if st != Running {
		n.terminate(st)
	}
	n.status = st
	return st
}

// Stop ends the current activation with st. Running descendants are stopped with
// Invalid first. Stopping a node that is not Running only records st.
func (n *Node) Stop(st Status) {
	if n.status == Running {
		n.terminate(st)
	}
	n.status = st
}

func (n *Node) initialise() {
	switch n.policy {
	case PolicyLeaf:
		n.behavior.Initialise()
	default:
		n.current = 0
	}
}

func (n *Node) update() Status {
	switch n.policy {
	case PolicyLeaf:
		return n.behavior.Update()
	case PolicySequence:
		return n.updateSequence()
	case PolicyParallelAny:
		return n.updateParallelAny()
	case PolicyParallelAll:
		return n.updateParallelAll()
	}
	panic(fmt.Sprintf("behavior: node %q has unknown policy %v", n.name, n.policy))
}

func (n *Node) terminate(st Status) {
	if n.policy == PolicyLeaf {
		n.behavior.Terminate(st)
	} else {
		n.stopRunningChildren()
	}
	if n.observer != nil {
		n.observer(n, st)
	}
}

func (n *Node) stopRunningChildren() {
	for _, c := range n.children {
		if c.status == Running {
			c.Stop(Invalid)
		}
	}
}

func (n *Node) updateSequence() Status {
	for n.current < len(n.children) {
		st := n.children[n.current].Tick()
		if st != Success {
			return st
		}
		n.current++
	}
	return Success
}

// tickAll ticks every child, including those that finished on an earlier tick.
// A finished child starts a new activation.
func (n *Node) tickAll() {
	for _, c := range n.children {
		c.Tick()
	}
}

// updateParallelAny stays Running with no children.
func (n *Node) updateParallelAny() Status {
	n.tickAll()
	failed := 0
	for _, c := range n.children {
		switch c.status {
		case Success:
			n.stopRunningChildren()
			return Success
		case Failure:
			failed++
		}
	}
	if failed > 0 && failed == len(n.children) {
		return Failure
	}
	return Running
}

func (n *Node) updateParallelAll() Status {
	n.tickAll()
	succeeded := 0
	for _, c := range n.children {
		switch c.status {
		case Failure:
			n.stopRunningChildren()
			return Failure
		case Success:
			succeeded++
		}
	}
	if succeeded == len(n.children) {
		return Success
	}
	return Running
}
