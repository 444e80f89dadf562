package cel_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calyptra/predicate"
	"github.com/calyptra/predicate/cel"
	"github.com/calyptra/predicate/schema"
)

var txSchema = schema.Schema{
	Elements: []schema.DataElement{
		{Name: "method", Type: schema.String{}},
		{Name: "status", Type: schema.Int{}},
		{Name: "headers", Type: schema.Map{KeyType: schema.String{}, ValueType: schema.String{}}},
	},
}

// evalOne builds a single-node graph around the behavior and
// evaluates it against the transaction data.
func evalOne(t *testing.T, b *cel.Behavior, tx interface{}, log zerolog.Logger) (predicate.Value, *predicate.NodeEvalState) {
	t.Helper()

	g := predicate.NewGraph()
	n := g.Add(predicate.NewNode(b))
	ges := g.NewEvalState()

	v, err := ges.Value(n, predicate.EvalContext{
		Phase: predicate.PhaseRequestHeader,
		Tx:    tx,
		Log:   log,
	})
	require.NoError(t, err)
	return v, ges.NodeEvalState(n.Index())
}

func TestBoolResult(t *testing.T) {
	b, err := cel.NewBehavior(`method == "GET"`, txSchema)
	require.NoError(t, err)

	v, nes := evalOne(t, b, map[string]interface{}{"method": "GET"}, zerolog.Nop())
	assert.True(t, v.Truthy())
	assert.True(t, nes.IsFinished())

	v, nes = evalOne(t, b, map[string]interface{}{"method": "POST"}, zerolog.Nop())
	assert.False(t, v.Truthy())
	assert.True(t, v.IsAbsent(), "a false predicate finishes with the value absent")
	assert.True(t, nes.IsFinished())
}

func TestNumberResult(t *testing.T) {
	b, err := cel.NewBehavior(`status + 1`, txSchema)
	require.NoError(t, err)

	v, _ := evalOne(t, b, map[string]interface{}{"status": 403}, zerolog.Nop())
	n, ok := v.AsNumber()
	require.True(t, ok)
	assert.Equal(t, int64(404), n)
}

func TestStringResult(t *testing.T) {
	b, err := cel.NewBehavior(`method + "!"`, txSchema)
	require.NoError(t, err)

	v, _ := evalOne(t, b, map[string]interface{}{"method": "GET"}, zerolog.Nop())
	s, ok := v.AsString()
	require.True(t, ok)
	assert.Equal(t, "GET!", s)
}

func TestFloatResult(t *testing.T) {
	b, err := cel.NewBehavior(`2.5 * 2.0`, txSchema)
	require.NoError(t, err)

	v, _ := evalOne(t, b, map[string]interface{}{}, zerolog.Nop())
	f, ok := v.AsFloat()
	require.True(t, ok)
	assert.Equal(t, 5.0, f)
}

func TestListResult(t *testing.T) {
	b, err := cel.NewBehavior(`["a", "b", "c"]`, txSchema)
	require.NoError(t, err)

	v, nes := evalOne(t, b, map[string]interface{}{}, zerolog.Nop())
	require.Equal(t, predicate.List, v.Kind())
	assert.Equal(t, "['a' 'b' 'c']", v.String())
	assert.True(t, nes.IsFinished())
}

func TestUnsupportedResultDegradesToAbsent(t *testing.T) {
	b, err := cel.NewBehavior(`{"a": 1}`, txSchema)
	require.NoError(t, err)

	var buf bytes.Buffer
	v, nes := evalOne(t, b, map[string]interface{}{}, zerolog.New(&buf))

	assert.True(t, v.IsAbsent(), "unsupported result types degrade to absent")
	assert.True(t, nes.IsFinished())
	assert.Contains(t, buf.String(), "unsupported expression result type")
}

func TestNoTransactionDataLeavesNodeUnset(t *testing.T) {
	b, err := cel.NewBehavior(`method == "GET"`, txSchema)
	require.NoError(t, err)

	var buf bytes.Buffer
	v, nes := evalOne(t, b, nil, zerolog.New(&buf))

	assert.True(t, v.IsAbsent())
	assert.False(t, nes.IsFinished())
	assert.Contains(t, buf.String(), "no transaction data")
}

type fakeTx struct {
	data map[string]interface{}
}

func (f *fakeTx) EvalData() map[string]interface{} { return f.data }

func TestTxDataInterface(t *testing.T) {
	b, err := cel.NewBehavior(`method == "GET"`, txSchema)
	require.NoError(t, err)

	tx := &fakeTx{data: map[string]interface{}{"method": "GET"}}
	v, _ := evalOne(t, b, tx, zerolog.Nop())
	assert.True(t, v.Truthy())
}

func TestCompileErrors(t *testing.T) {
	_, err := cel.NewBehavior(`method ==`, txSchema)
	assert.Error(t, err, "parse error")

	_, err = cel.NewBehavior(`nosuchfield == 1`, txSchema)
	assert.Error(t, err, "check error")
}

func TestBehaviorIsPhaseSensitive(t *testing.T) {
	b, err := cel.NewBehavior(`true`, txSchema)
	require.NoError(t, err)

	assert.True(t, b.PhaseSensitive())
	assert.Equal(t, `true`, b.Expr())
}

func TestMapLookup(t *testing.T) {
	b, err := cel.NewBehavior(`headers["host"] == "example.com"`, txSchema)
	require.NoError(t, err)

	tx := map[string]interface{}{
		"headers": map[string]string{"host": "example.com"},
	}
	v, _ := evalOne(t, b, tx, zerolog.Nop())
	assert.True(t, v.Truthy())
}
