package predicate

// Literal is the behavior of a node whose value is fixed at graph
// construction time. Literals are phase-invariant: once finished they
// stay finished for the rest of the transaction.
//
// A literal finishes during Initialize; if the rule engine never
// initializes it, the first Calculate finishes it instead.
type Literal struct {
	value Value
}

// NewLiteral returns a literal behavior producing v. An absent v
// yields the null literal, which finishes with no value (falsy).
func NewLiteral(v Value) *Literal {
	return &Literal{value: v}
}

// NewStringLiteral returns a literal producing a string scalar.
func NewStringLiteral(s string) *Literal {
	return &Literal{value: StringValue(s)}
}

// NewNumberLiteral returns a literal producing an integer scalar.
func NewNumberLiteral(n int64) *Literal {
	return &Literal{value: NumberValue(n)}
}

// Value returns the literal's configuration-time value.
func (l *Literal) Value() Value { return l.value }

func (l *Literal) String() string { return l.value.String() }

// Initialize aliases the literal's value into the node's slot and
// finishes it. A slot already settled in an earlier phase is left
// alone.
func (l *Literal) Initialize(n *Node, g *GraphEvalState, ctx EvalContext) error {
	return l.Calculate(n, g, ctx)
}

// Calculate finishes the node if Initialize has not already run.
func (l *Literal) Calculate(n *Node, g *GraphEvalState, ctx EvalContext) error {
	s := g.NodeEvalState(n.Index())
	if s.IsFinished() {
		return nil
	}
	return l.settle(s)
}

func (l *Literal) settle(s *NodeEvalState) error {
	if !l.value.IsAbsent() {
		if err := s.Alias(l.value); err != nil {
			return err
		}
	}
	return s.Finish()
}

// LiteralValue extracts the value of a literal node without any
// evaluation state. Reports ErrNotLiteral if the node's behavior is
// not a *Literal.
func LiteralValue(n *Node) (Value, error) {
	l, ok := n.Behavior().(*Literal)
	if !ok {
		return Value{}, stateErr("literal value", ErrNotLiteral)
	}
	return l.Value(), nil
}
