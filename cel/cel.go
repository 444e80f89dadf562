// Package cel provides a predicate node behavior backed by Google's
// cel-go expression engine. See https://github.com/google/cel-go and
// https://opensource.google/projects/cel for more information about
// CEL. Expressions must conform to the CEL spec:
// https://github.com/google/cel-spec.
//
// A Behavior is compiled once, at graph construction time, against a
// schema describing the transaction fields it may reference. At
// evaluation time it reads the transaction data from the EvalContext
// and finishes its node with the expression's result.
package cel

import (
	"fmt"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker/decls"
	"github.com/google/cel-go/common/types/pb"
	"github.com/google/cel-go/common/types/ref"
	"github.com/pkg/errors"
	exprbp "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
	"google.golang.org/protobuf/runtime/protoiface"

	"github.com/calyptra/predicate"
	"github.com/calyptra/predicate/schema"
)

// TxData is implemented by transaction handles that expose their
// fields as a map for expression evaluation. A plain
// map[string]interface{} passed as EvalContext.Tx works too.
type TxData interface {
	EvalData() map[string]interface{}
}

// Behavior evaluates a compiled CEL expression against transaction
// data and finishes its node with the result.
//
// Behaviors are phase-sensitive: transaction fields change as the
// transaction advances (request headers, request body, ...), so a
// node finished in one phase is re-armed when a later phase begins.
type Behavior struct {
	expr string
	prg  celgo.Program
}

// NewBehavior parses, checks and compiles the expression against the
// schema. Any compilation error is returned; a Behavior is only ever
// constructed from a well-formed expression.
func NewBehavior(expr string, s schema.Schema) (*Behavior, error) {
	dcl, err := schemaToDeclarations(s)
	if err != nil {
		return nil, err
	}

	env, err := celgo.NewEnv(dcl)
	if err != nil {
		return nil, err
	}

	// Parse the expression to an AST
	p, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return nil, errors.Wrapf(iss.Err(), "parsing expression %q", expr)
	}

	// Type-check the parsed AST against the declarations
	c, iss := env.Check(p)
	if iss != nil && iss.Err() != nil {
		return nil, errors.Wrapf(iss.Err(), "checking expression %q", expr)
	}

	// Generate an evaluable program
	prg, err := env.Program(c)
	if err != nil {
		return nil, errors.Wrapf(err, "generating program for %q", expr)
	}

	return &Behavior{expr: expr, prg: prg}, nil
}

// Expr returns the source expression.
func (b *Behavior) Expr() string { return b.expr }

func (b *Behavior) String() string { return b.expr }

// PhaseSensitive reports true: expression inputs vary by phase.
func (b *Behavior) PhaseSensitive() bool { return true }

// Calculate runs the compiled program against the transaction data
// and drives the node's state to finished. A transaction that carries
// no usable data leaves the node unset (absent), which is a valid
// terminal condition, not an error.
func (b *Behavior) Calculate(n *predicate.Node, g *predicate.GraphEvalState, ctx predicate.EvalContext) error {
	s := g.NodeEvalState(n.Index())

	data, ok := txData(ctx.Tx)
	if !ok {
		ctx.Log.Warn().
			Str("expr", b.expr).
			Str("tx_type", fmt.Sprintf("%T", ctx.Tx)).
			Msg("no transaction data for expression, leaving node unset")
		return nil
	}

	raw, _, err := b.prg.Eval(data)
	if err != nil {
		return errors.Wrapf(err, "evaluating expression %q", b.expr)
	}

	return b.record(s, raw.Value(), ctx)
}

// record translates the CEL result into the node's terminal state.
// Result types with no predicate.Value representation degrade to
// absent with a log notice rather than aborting the transaction.
func (b *Behavior) record(s *predicate.NodeEvalState, out interface{}, ctx predicate.EvalContext) error {
	switch r := out.(type) {
	case bool:
		if r {
			return s.FinishTrue()
		}
		return s.FinishFalse()
	case []ref.Val:
		elems := make([]interface{}, len(r))
		for i, e := range r {
			elems[i] = e.Value()
		}
		return b.recordList(s, elems, ctx)
	case []interface{}:
		return b.recordList(s, r, ctx)
	case []string:
		elems := make([]interface{}, len(r))
		for i, e := range r {
			elems[i] = e
		}
		return b.recordList(s, elems, ctx)
	default:
		v, ok := scalarValue(out)
		if !ok {
			ctx.Log.Warn().
				Str("expr", b.expr).
				Str("result_type", fmt.Sprintf("%T", out)).
				Msg("unsupported expression result type, finishing absent")
			return s.Finish()
		}
		if err := s.Alias(v); err != nil {
			return err
		}
		return s.Finish()
	}
}

// recordList accumulates a CEL list result as the node's local list.
// Unsupported elements are omitted, with a log notice.
func (b *Behavior) recordList(s *predicate.NodeEvalState, elems []interface{}, ctx predicate.EvalContext) error {
	if err := s.SetupLocalList(); err != nil {
		return err
	}
	for _, e := range elems {
		if rv, ok := e.(ref.Val); ok {
			e = rv.Value()
		}
		v, ok := scalarValue(e)
		if !ok {
			ctx.Log.Warn().
				Str("expr", b.expr).
				Str("element_type", fmt.Sprintf("%T", e)).
				Msg("omitting unsupported list element")
			continue
		}
		if err := s.AppendToList(v); err != nil {
			return err
		}
	}
	return s.Finish()
}

// scalarValue converts a native CEL scalar to a predicate.Value.
func scalarValue(out interface{}) (predicate.Value, bool) {
	switch r := out.(type) {
	case bool:
		if r {
			return predicate.NumberValue(1), true
		}
		return predicate.Value{}, true
	case int64:
		return predicate.NumberValue(r), true
	case uint64:
		return predicate.NumberValue(int64(r)), true
	case float64:
		return predicate.FloatValue(r), true
	case string:
		return predicate.StringValue(r), true
	default:
		return predicate.Value{}, false
	}
}

func txData(tx interface{}) (map[string]interface{}, bool) {
	switch d := tx.(type) {
	case map[string]interface{}:
		return d, true
	case TxData:
		return d.EvalData(), true
	default:
		return nil, false
	}
}

// celType converts from a schema.Type to a CEL type
func celType(t schema.Type) (*exprbp.Type, error) {
	switch v := t.(type) {
	case schema.String:
		return decls.String, nil
	case schema.Int:
		return decls.Int, nil
	case schema.Float:
		return decls.Double, nil
	case schema.Bool:
		return decls.Bool, nil
	case schema.Duration:
		return decls.Duration, nil
	case schema.Timestamp:
		return decls.Timestamp, nil
	case schema.Map:
		key, err := celType(v.KeyType)
		if err != nil {
			return nil, errors.Wrapf(err, "setting key of %v map", v.KeyType)
		}
		val, err := celType(v.ValueType)
		if err != nil {
			return nil, errors.Wrapf(err, "setting value of %v map", v.ValueType)
		}
		return decls.NewMapType(key, val), nil
	case schema.List:
		val, err := celType(v.ValueType)
		if err != nil {
			return nil, errors.Wrapf(err, "setting value of %v list", v.ValueType)
		}
		return decls.NewListType(val), nil
	case schema.Proto:
		protoMessage, ok := v.Message.(protoiface.MessageV1)
		if !ok {
			return nil, fmt.Errorf("casting to proto message %v", v.Protoname)
		}
		_, err := pb.DefaultDb.RegisterMessage(protoMessage)
		if err != nil {
			return nil, errors.Wrapf(err, "registering proto message %v", v.Protoname)
		}
		return decls.NewObjectType(v.Protoname), nil
	}
	return decls.Any, nil
}

// schemaToDeclarations converts from a schema.Schema to a set of CEL
// declarations passed to the CEL environment
func schemaToDeclarations(s schema.Schema) (celgo.EnvOption, error) {
	items := []*exprbp.Decl{}

	for _, d := range s.Elements {
		typ, err := celType(d.Type)
		if err != nil {
			return nil, err
		}
		items = append(items, decls.NewIdent(d.Name, typ, nil))
	}
	return celgo.Declarations(items...), nil
}
