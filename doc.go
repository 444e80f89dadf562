// Package predicate evaluates directed acyclic graphs of predicate
// expression nodes, one transaction at a time, as the decision core of
// a web-traffic inspection engine.
//
// The package does not parse predicate expressions and does not apply
// rule actions; it evaluates a graph of already-constructed nodes
// lazily, memoizing each node's value so it is computed at most once
// per transaction (per forwarding terminal), and gating cached values
// on the transaction phase.
//
// Typical use is as follows:
//
//  1. At configuration time, build a Graph of Nodes, each carrying a
//     Behavior (a literal, a CEL expression via the cel subpackage,
//     or any operator implementing Behavior).
//  2. When a transaction begins, create one GraphEvalState for it
//     (Graph.NewEvalState).
//  3. At each phase, call Initialize on the nodes the rule engine
//     cares about, then ask for values with Value.
//  4. Discard the GraphEvalState with the transaction.
//
// # Forwarding and Aliasing
//
// DAG-level optimizations (common-subexpression sharing, phase-based
// rewriting) are expressed through two result modes beyond plain
// values: a node may forward, making its result another node's result
// for the rest of the transaction, or alias, adopting an externally
// produced Value by reference. FinalIndex exposes the forwarding
// structure; Value always reads through it.
//
// # Graph Ownership and Concurrency
//
// Graphs and their nodes are built once and never mutated afterwards;
// they are safe to share read-only across concurrently processed
// transactions. A GraphEvalState belongs to exactly one transaction
// and is not safe for concurrent use. If one transaction's phases are
// evaluated from multiple goroutines, synchronizing access to its
// GraphEvalState is the caller's responsibility.
//
// Breaking these rules could lead to race conditions or unexpected
// outcomes.
//
// # Errors
//
// Illegal state transitions (finishing twice, mutating a forwarding
// node, and so on) indicate bugs in a node behavior or in the graph
// rewriter. They are reported immediately as *StateError values
// wrapping a distinct sentinel per violation kind, never silently
// corrected, because a silent violation would let a stale or
// ambiguous value reach rule actions. A node legitimately producing
// no value in a phase is not an error: callers see an absent Value.
package predicate
