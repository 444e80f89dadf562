package predicate

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the representations a Value can take.
type Kind int

const (
	// Absent is the kind of the zero Value: no value at all.
	// Absent is a first-class outcome, not an error; a node that
	// legitimately produces nothing in a phase yields it.
	Absent Kind = iota
	Number
	Float
	String
	List
)

func (k Kind) String() string {
	switch k {
	case Absent:
		return "absent"
	case Number:
		return "number"
	case Float:
		return "float"
	case String:
		return "string"
	case List:
		return "list"
	default:
		return "invalid"
	}
}

// Value is the semantic result a node produces: absent, a scalar
// (number, float or string), or an ordered list of Values.
//
// Values are immutable from the consumer's point of view. The one
// exception is a list owned by a NodeEvalState in its local-list
// state: the state may append to it until the node finishes, and a
// Value handed out earlier observes the appends (list Values share
// their backing storage).
type Value struct {
	kind Kind
	num  int64
	fl   float64
	str  string
	list *valueList
}

// valueList is the shared backing store for list Values. Sharing it
// lets a local list grow after a Value for it has been handed out.
type valueList struct {
	elems []Value
}

// NumberValue returns a Value holding an integer scalar.
func NumberValue(n int64) Value { return Value{kind: Number, num: n} }

// FloatValue returns a Value holding a floating point scalar.
func FloatValue(f float64) Value { return Value{kind: Float, fl: f} }

// StringValue returns a Value holding a string scalar.
func StringValue(s string) Value { return Value{kind: String, str: s} }

// ListValue returns a list Value with the given elements.
func ListValue(elems ...Value) Value {
	l := &valueList{elems: make([]Value, len(elems))}
	copy(l.elems, elems)
	return Value{kind: List, list: l}
}

// Kind reports the representation this Value carries.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether the Value is absent.
func (v Value) IsAbsent() bool { return v.kind == Absent }

// Truthy reports the boolean reading of the Value: absent and empty
// lists are false, everything else is true.
func (v Value) Truthy() bool {
	switch v.kind {
	case Absent:
		return false
	case List:
		return v.list != nil && len(v.list.elems) > 0
	default:
		return true
	}
}

// AsNumber returns the integer scalar and true, or 0 and false if the
// Value is not a number.
func (v Value) AsNumber() (int64, bool) {
	if v.kind != Number {
		return 0, false
	}
	return v.num, true
}

// AsFloat returns the float scalar and true, or 0 and false if the
// Value is not a float.
func (v Value) AsFloat() (float64, bool) {
	if v.kind != Float {
		return 0, false
	}
	return v.fl, true
}

// AsString returns the string scalar and true, or "" and false if the
// Value is not a string.
func (v Value) AsString() (string, bool) {
	if v.kind != String {
		return "", false
	}
	return v.str, true
}

// AsList returns the list elements. Returns nil for any non-list
// Value, including absent.
func (v Value) AsList() []Value {
	if v.kind != List || v.list == nil {
		return nil
	}
	return v.list.elems
}

// String renders the Value: numbers in decimal, strings single-quoted,
// lists space-joined in brackets, absent as the empty string.
func (v Value) String() string {
	switch v.kind {
	case Absent:
		return ""
	case Number:
		return strconv.FormatInt(v.num, 10)
	case Float:
		return strconv.FormatFloat(v.fl, 'g', -1, 64)
	case String:
		return "'" + v.str + "'"
	case List:
		parts := make([]string, len(v.AsList()))
		for i, e := range v.AsList() {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return fmt.Sprintf("invalid(%d)", int(v.kind))
	}
}

// append adds an element to a list Value's shared backing store.
// Only NodeEvalState.AppendToList reaches this, and only while the
// owning node is in its local-list state.
func (v Value) append(e Value) {
	v.list.elems = append(v.list.elems, e)
}
