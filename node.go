package predicate

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// A Node is one vertex of a predicate expression DAG. Nodes are built
// once, at configuration time, and are immutable and shared read-only
// across all transactions afterwards; all per-transaction mutation
// lives in NodeEvalState.
//
// Identity is the integer index, dense within one graph. Shared
// subexpressions have a single owning Node referenced from multiple
// parents.
type Node struct {
	index    int
	children []*Node
	behavior Behavior
}

// NewNode creates a node with the behavior and ordered children.
// The index is unassigned (-1) until the node is added to a Graph or
// SetIndex is called.
func NewNode(b Behavior, children ...*Node) *Node {
	return &Node{
		index:    -1,
		children: children,
		behavior: b,
	}
}

// Index returns the node's index within its graph, or -1 if the node
// has not been indexed yet.
func (n *Node) Index() int { return n.index }

// SetIndex assigns the node's index. Called by the graph builder;
// must not be called once evaluation has begun.
func (n *Node) SetIndex(i int) { n.index = i }

// Children returns the node's ordered child nodes. The returned slice
// must not be modified.
func (n *Node) Children() []*Node { return n.children }

// Behavior returns the node's evaluation capability.
func (n *Node) Behavior() Behavior { return n.behavior }

// Label describes the node for diagnostics: the behavior's String()
// if it has one, otherwise its type.
func (n *Node) Label() string {
	if s, ok := n.behavior.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", n.behavior)
}

// EvalContext carries the per-transaction inputs a behavior may need.
// The evaluator itself interprets only Phase; Tx is handed through
// opaquely for behaviors to read transaction-scoped fields.
type EvalContext struct {
	// Phase is the stage of transaction processing driving this
	// evaluation.
	Phase Phase

	// Tx is the opaque transaction handle. Behaviors that read
	// transaction data define the concrete type they expect.
	Tx interface{}

	// Log receives log-and-omit degradation notices, e.g. a
	// behavior producing a value type a consumer cannot render.
	// The zero logger discards everything.
	Log zerolog.Logger
}

// Behavior is the evaluation capability of a Node, supplied by the
// operator library. Calculate must drive the node's own NodeEvalState
// (obtained via g.NodeEvalState(n.Index())) to a legal terminal
// condition for the phase: finished, forwarding, or intentionally
// left unset if the node produces no value this phase. It may request
// child values recursively through g.Value or g.Eval.
type Behavior interface {
	Calculate(n *Node, g *GraphEvalState, ctx EvalContext) error
}

// Initializer is implemented by behaviors that need a hook when the
// rule engine prepares a node for a phase (GraphEvalState.Initialize).
type Initializer interface {
	Initialize(n *Node, g *GraphEvalState, ctx EvalContext) error
}

// PhaseSensitive is implemented by behaviors whose result depends on
// which phase the transaction is in. A finished phase-sensitive node
// is re-armed by Initialize when a later phase begins; a node whose
// behavior does not implement PhaseSensitive (or returns false) keeps
// its cached value for the rest of the transaction.
type PhaseSensitive interface {
	PhaseSensitive() bool
}

func phaseSensitive(b Behavior) bool {
	ps, ok := b.(PhaseSensitive)
	return ok && ps.PhaseSensitive()
}

// A Graph owns the nodes of one predicate DAG and assigns their dense
// indices. Graphs are assembled by the expression front end at
// configuration time and are read-only during evaluation.
//
// Acyclicity among child links is the front end's responsibility; the
// graph does not re-check it.
type Graph struct {
	nodes []*Node
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Add indexes the node into the graph and returns it. Children are
// not added implicitly; every node reachable during evaluation must
// be added exactly once.
func (g *Graph) Add(n *Node) *Node {
	n.SetIndex(len(g.nodes))
	g.nodes = append(g.nodes, n)
	return n
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// Node returns the node at index i, or nil if out of range.
func (g *Graph) Node(i int) *Node {
	if i < 0 || i >= len(g.nodes) {
		return nil
	}
	return g.nodes[i]
}

// NewEvalState allocates a GraphEvalState sized for this graph.
// One per transaction.
func (g *Graph) NewEvalState() *GraphEvalState {
	return NewGraphEvalState(len(g.nodes))
}

// Tree returns a tree rendering of the DAG below the node, using
// box-drawing characters. A node shared by several parents appears
// under each of them. Recursion is limited to a depth of 20 levels.
//
// Example output:
//
//	and
//	├── [0] 'GET'
//	└── [1] request.method
func (n *Node) Tree() string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(n.Label())
	sb.WriteString("\n")
	n.buildTree(&sb, "", 0)
	return sb.String()
}

// buildTree recursively renders children with proper indentation and
// tree characters (├──, └──, │).
func (n *Node) buildTree(sb *strings.Builder, prefix string, depth int) {
	if depth >= 20 {
		return
	}
	for i, child := range n.children {
		isLast := i == len(n.children)-1
		var connector, childPrefix string
		if isLast {
			connector = "└── "
			childPrefix = "    "
		} else {
			connector = "├── "
			childPrefix = "│   "
		}
		sb.WriteString(prefix)
		sb.WriteString(connector)
		sb.WriteString(fmt.Sprintf("[%d] %s", child.index, child.Label()))
		sb.WriteString("\n")
		child.buildTree(sb, prefix+childPrefix, depth+1)
	}
}
