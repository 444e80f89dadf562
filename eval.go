package predicate

// NodeEvalState is the per-transaction evaluation record of a single
// node. Exactly one of four result modes is active before finishing:
// unset (the initial state, no value yet), local list (a growable
// list owned by this state), forwarding (the result is another node's
// result), or aliasing (the result is an externally produced Value).
//
// Legal transitions are
//
//	UNSET → {LOCAL_LIST | FORWARDING | ALIASING} → FINISHED
//
// with UNSET → FINISHED also legal. Every mutator returns a
// *StateError wrapping the exact violation kind when called from an
// illegal state; violations are behavior or DAG-rewrite bugs and are
// never silently corrected.
type NodeEvalState struct {
	value    Value
	local    bool
	forward  *Node
	aliased  bool
	finished bool
	phase    Phase
	state    interface{}
}

// IsFinished reports whether the node has finished. A finished
// node's value is immutable.
func (s *NodeEvalState) IsFinished() bool { return s.finished }

// IsForwarding reports whether the node forwards its result to
// another node.
func (s *NodeEvalState) IsForwarding() bool { return s.forward != nil }

// IsAliased reports whether the node's value is an alias of an
// externally produced Value.
func (s *NodeEvalState) IsAliased() bool { return s.aliased }

// ForwardedTo returns the forwarding target, or nil if the node is
// not forwarding.
func (s *NodeEvalState) ForwardedTo() *Node { return s.forward }

// Value returns the node's current value: absent while unset, the
// accumulated list in the local-list state, the aliased Value when
// aliasing. While forwarding it returns absent; readers must resolve
// through GraphEvalState, not through this accessor.
func (s *NodeEvalState) Value() Value {
	if s.forward != nil {
		return Value{}
	}
	return s.value
}

// Phase returns the phase that last drove evaluation of this node,
// PhaseNone initially.
func (s *NodeEvalState) Phase() Phase { return s.phase }

// SetPhase records the phase driving the current evaluation.
func (s *NodeEvalState) SetPhase(p Phase) { s.phase = p }

// State returns the behavior-private scratch slot, nil by default.
// The evaluator never interprets it.
func (s *NodeEvalState) State() interface{} { return s.state }

// SetState stores behavior-private scratch state.
func (s *NodeEvalState) SetState(v interface{}) { s.state = v }

// SetupLocalList puts the node in the local-list state with an empty
// list value. Calling it again while already in the local-list state
// is a safe no-op that preserves accumulated entries. Illegal once
// forwarding, aliasing, or finished.
func (s *NodeEvalState) SetupLocalList() error {
	const op = "setup local list"
	switch {
	case s.finished:
		return stateErr(op, ErrAlreadyFinished)
	case s.forward != nil:
		return stateErr(op, ErrForwarding)
	case s.aliased:
		return stateErr(op, ErrAliased)
	case s.local:
		return nil
	}
	s.local = true
	s.value = ListValue()
	return nil
}

// AppendToList appends v to the node's local list. Legal only in the
// local-list state before finishing.
func (s *NodeEvalState) AppendToList(v Value) error {
	const op = "append to list"
	switch {
	case s.finished:
		return stateErr(op, ErrAlreadyFinished)
	case s.forward != nil:
		return stateErr(op, ErrForwarding)
	case s.aliased:
		return stateErr(op, ErrAliased)
	case !s.local:
		return stateErr(op, ErrNoLocalList)
	}
	s.value.append(v)
	return nil
}

// Forward redirects this node's result to the target node. Legal only
// from the unset state with a non-nil target. Forwarding is terminal
// for mutation: the node is finished implicitly through its target
// and no further operation on this state is permitted.
func (s *NodeEvalState) Forward(target *Node) error {
	const op = "forward"
	switch {
	case target == nil:
		return stateErr(op, ErrNilForwardTarget)
	case s.finished:
		return stateErr(op, ErrAlreadyFinished)
	case s.forward != nil:
		return stateErr(op, ErrForwarding)
	case s.aliased:
		return stateErr(op, ErrAliased)
	case s.local:
		return stateErr(op, ErrLocalList)
	}
	s.forward = target
	return nil
}

// Alias sets the node's value to an externally produced Value, by
// reference. Legal only from the unset state. After aliasing, the
// only legal mutation is Finish.
func (s *NodeEvalState) Alias(v Value) error {
	const op = "alias"
	switch {
	case s.finished:
		return stateErr(op, ErrAlreadyFinished)
	case s.forward != nil:
		return stateErr(op, ErrForwarding)
	case s.aliased:
		return stateErr(op, ErrAliased)
	case s.local:
		return stateErr(op, ErrLocalList)
	}
	s.aliased = true
	s.value = v
	return nil
}

// Finish marks the node finished, freezing its value. Legal exactly
// once, from the unset, local-list, or aliasing state. A forwarding
// node is finished implicitly through its target and may never be
// finished directly.
func (s *NodeEvalState) Finish() error {
	const op = "finish"
	switch {
	case s.finished:
		return stateErr(op, ErrAlreadyFinished)
	case s.forward != nil:
		return stateErr(op, ErrForwarding)
	}
	s.finished = true
	return nil
}

// FinishTrue finishes the node with a truthy value (the number 1).
// Same legality as Alias followed by Finish.
func (s *NodeEvalState) FinishTrue() error {
	if err := s.Alias(NumberValue(1)); err != nil {
		return err
	}
	return s.Finish()
}

// FinishFalse finishes the node with the value absent, the falsy
// result. Same legality as Finish.
func (s *NodeEvalState) FinishFalse() error {
	return s.Finish()
}

// GraphEvalState owns the evaluation state of every node in a graph
// for one transaction: a dense slice of NodeEvalState indexed by node
// index, plus forwarding resolution. Create one per transaction with
// NewGraphEvalState (or Graph.NewEvalState) and discard it with the
// transaction.
//
// A GraphEvalState is not safe for concurrent use; each transaction
// is evaluated on a single goroutine (see the package documentation).
type GraphEvalState struct {
	states []NodeEvalState

	// final memoizes forwarding resolution per index; -1 is unset.
	// An entry is revalidated on read, since its terminal may begin
	// forwarding later. Re-arming a slot for a new phase drops the
	// whole cache: entries anywhere may have resolved through the
	// reset slot's old forward.
	final []int
}

// NewGraphEvalState allocates evaluation state for a graph of
// nodeCount nodes, all initially unset.
func NewGraphEvalState(nodeCount int) *GraphEvalState {
	g := &GraphEvalState{
		states: make([]NodeEvalState, nodeCount),
		final:  make([]int, nodeCount),
	}
	for i := range g.final {
		g.final[i] = -1
	}
	return g
}

// Size returns the number of node slots.
func (g *GraphEvalState) Size() int { return len(g.states) }

// NodeEvalState returns the state slot at index i, unresolved: a
// forwarding node's own slot, not its target's. Behaviors use it to
// mutate their own state. Panics if i is out of range, as slice
// indexing would.
func (g *GraphEvalState) NodeEvalState(i int) *NodeEvalState {
	return &g.states[i]
}

// FinalIndex resolves i through zero or more forwarding hops to the
// terminal index whose slot actually holds the result. An index with
// no forwarding registered resolves to itself. Detects forwarding
// cycles defensively and reports ErrForwardCycle instead of looping.
func (g *GraphEvalState) FinalIndex(i int) (int, error) {
	const op = "final index"
	if i < 0 || i >= len(g.states) {
		return -1, stateErr(op, ErrIndexOutOfRange)
	}
	if c := g.final[i]; c >= 0 && !g.states[c].IsForwarding() {
		return c, nil
	}
	idx := i
	for hops := 0; g.states[idx].IsForwarding(); hops++ {
		if hops >= len(g.states) {
			return -1, stateErr(op, ErrForwardCycle)
		}
		next := g.states[idx].ForwardedTo().Index()
		if next < 0 || next >= len(g.states) {
			return -1, stateErr(op, ErrIndexOutOfRange)
		}
		idx = next
	}
	g.final[i] = idx
	return idx, nil
}

// Initialize prepares the node for evaluation in the context's phase.
// Children are not initialized transitively; they are prepared lazily
// on first demand. If the node's recorded phase is stale relative to
// the current phase and its behavior is phase-sensitive, the slot is
// re-armed (reset to unset); a phase-invariant node keeps its cached
// value. The behavior's Initialize hook, if any, runs afterwards.
func (g *GraphEvalState) Initialize(n *Node, ctx EvalContext) error {
	i := n.Index()
	if i < 0 || i >= len(g.states) {
		return stateErr("initialize", ErrIndexOutOfRange)
	}
	s := &g.states[i]
	if s.phase != PhaseNone && s.phase != ctx.Phase && phaseSensitive(n.Behavior()) {
		g.states[i] = NodeEvalState{}
		for j := range g.final {
			g.final[j] = -1
		}
	}
	if init, ok := n.Behavior().(Initializer); ok {
		return init.Initialize(n, g, ctx)
	}
	return nil
}

// Eval computes the node's value for this transaction if it has not
// been computed already. The node is resolved to its forwarding
// terminal first; if that slot is finished, Eval is a no-op. A
// non-finished node's behavior runs at most once per phase: if the
// slot already recorded the current phase, Eval returns without
// recomputing and callers observe whatever value has accumulated.
// Otherwise the behavior's Calculate runs, recursively demanding
// child values through this GraphEvalState. If Calculate registered a
// forward, the target is evaluated in turn so the delegation chain
// reaches a terminal condition.
func (g *GraphEvalState) Eval(n *Node, ctx EvalContext) error {
	node, err := g.finalNode(n)
	if err != nil {
		return err
	}
	s := &g.states[node.Index()]
	if s.finished {
		return nil
	}
	if ctx.Phase != PhaseNone && s.phase == ctx.Phase {
		return nil
	}
	s.SetPhase(ctx.Phase)
	if err := node.Behavior().Calculate(node, g, ctx); err != nil {
		return err
	}
	if s.IsForwarding() {
		return g.Eval(s.ForwardedTo(), ctx)
	}
	return nil
}

// Value evaluates the node if necessary and returns the value of its
// forwarding terminal. Repeated calls for the same node and
// transaction after the first evaluation return the identical cached
// Value.
func (g *GraphEvalState) Value(n *Node, ctx EvalContext) (Value, error) {
	if err := g.Eval(n, ctx); err != nil {
		return Value{}, err
	}
	fi, err := g.FinalIndex(n.Index())
	if err != nil {
		return Value{}, err
	}
	return g.states[fi].Value(), nil
}

// finalNode follows forwarding hops from n to the node whose behavior
// actually computes the result, with the same cycle guard as
// FinalIndex.
func (g *GraphEvalState) finalNode(n *Node) (*Node, error) {
	const op = "eval"
	i := n.Index()
	if i < 0 || i >= len(g.states) {
		return nil, stateErr(op, ErrIndexOutOfRange)
	}
	for hops := 0; g.states[n.Index()].IsForwarding(); hops++ {
		if hops >= len(g.states) {
			return nil, stateErr(op, ErrForwardCycle)
		}
		n = g.states[n.Index()].ForwardedTo()
		if n.Index() < 0 || n.Index() >= len(g.states) {
			return nil, stateErr(op, ErrIndexOutOfRange)
		}
	}
	return n, nil
}
