// Package schema declares the transaction fields available to
// expression-backed node behaviors.
package schema

// Schema lists the transaction fields an expression may reference,
// with their types. Evaluation expects the transaction data to carry
// the same names and types.
type Schema struct {
	// ID identifies the schema to the hosting application; the
	// evaluator does not read it.
	ID string `json:"id,omitempty"`
	// Name is a display name for configuration and diagnostics.
	Name string `json:"name,omitempty"`
	// Description documents what the schema covers.
	Description string `json:"description,omitempty"`
	// Meta is an application-owned slot, never interpreted here.
	Meta interface{} `json:"-"`
	// Elements are the fields this schema declares.
	Elements []DataElement `json:"elements,omitempty"`
}

// DataElement declares one named transaction field.
type DataElement struct {
	// Name is the identifier expressions use to refer to the field.
	Name string `json:"name"`

	// Type of the field's values.
	Type Type `json:"type"`

	// Description documents the field for configuration authors.
	Description string `json:"description"`
}

// Type is a type in the schema type system, used to declare
// expression inputs. Not all behaviors support all types.
type Type interface {
	String() string
}

type String struct{}
type Int struct{}
type Float struct{}
type Any struct{}
type Bool struct{}
type Duration struct{}
type Timestamp struct{}
type Proto struct {
	Protoname string
	Message   interface{}
}
type List struct {
	ValueType Type
}

type Map struct {
	KeyType   Type
	ValueType Type
}

func (t Int) String() string       { return "int" }
func (t Bool) String() string      { return "bool" }
func (t String) String() string    { return "string" }
func (t List) String() string      { return "list" }
func (t Map) String() string       { return "map" }
func (t Any) String() string       { return "any" }
func (t Duration) String() string  { return "duration" }
func (t Timestamp) String() string { return "timestamp" }
func (t Float) String() string     { return "float" }
func (t Proto) String() string     { return "proto " + t.Protoname }
