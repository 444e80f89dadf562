package predicate

import (
	"errors"
	"fmt"
)

// Illegal state transitions are programming errors in node behaviors
// or in the DAG rewriter, never user-input errors. Each kind below is
// a distinct sentinel so callers and tests can assert on the exact
// violation with errors.Is.
var (
	// ErrAlreadyFinished reports a mutation attempted after Finish.
	ErrAlreadyFinished = errors.New("node already finished")

	// ErrForwarding reports a mutation attempted on a forwarding
	// node. A forwarding node delegates completion to its target
	// and may not be touched again.
	ErrForwarding = errors.New("node is forwarding")

	// ErrAliased reports an operation that is illegal once a node
	// holds an aliased value.
	ErrAliased = errors.New("node is aliased")

	// ErrLocalList reports an operation that is illegal once a node
	// has set up a local list.
	ErrLocalList = errors.New("node has a local list")

	// ErrNoLocalList reports an append on a node that never set up
	// a local list.
	ErrNoLocalList = errors.New("node has no local list")

	// ErrNilForwardTarget reports Forward called with a nil target.
	ErrNilForwardTarget = errors.New("forward target is nil")

	// ErrForwardCycle reports a forwarding chain that loops.
	// Graph construction is supposed to prevent this; FinalIndex
	// detects it defensively rather than resolving forever.
	ErrForwardCycle = errors.New("forwarding cycle detected")

	// ErrIndexOutOfRange reports a node index outside the range the
	// GraphEvalState was sized for.
	ErrIndexOutOfRange = errors.New("node index out of range")

	// ErrNotLiteral reports a literal-only operation applied to a
	// node whose behavior is not a Literal.
	ErrNotLiteral = errors.New("node is not a literal")
)

// StateError wraps an evaluation-state violation with the operation
// that triggered it.
type StateError struct {
	// Op is the operation that was attempted, e.g. "finish".
	Op string
	// Err is the sentinel kind of the violation.
	Err error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("predicate: %s: %v", e.Op, e.Err)
}

func (e *StateError) Unwrap() error { return e.Err }

func stateErr(op string, kind error) error {
	return &StateError{Op: op, Err: kind}
}
