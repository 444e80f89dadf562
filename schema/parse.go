package schema

import (
	"fmt"
	"strings"
)

// ParseType converts a textual type declaration to a Type. Supported
// forms:
//
//	int, float, string, bool, any, duration, timestamp
//	map[<keytype>]<valuetype>
//	[]<valuetype>
//	proto(<protoname>)
func ParseType(t string) (Type, error) {
	switch {
	case strings.HasPrefix(t, "map["):
		return parseMap(t)
	case strings.HasPrefix(t, "map"):
		return nil, fmt.Errorf("bad map specification %q", t)
	case strings.HasPrefix(t, "[]"):
		return parseList(t)
	case strings.HasPrefix(t, "proto("):
		return parseProto(t)
	}

	switch t {
	case "string":
		return String{}, nil
	case "int":
		return Int{}, nil
	case "float":
		return Float{}, nil
	case "bool":
		return Bool{}, nil
	case "duration":
		return Duration{}, nil
	case "timestamp":
		return Timestamp{}, nil
	case "any":
		return Any{}, nil
	}
	return nil, fmt.Errorf("unrecognized type %q", t)
}

// parseMap parses a "map[keytype]valuetype" declaration.
func parseMap(t string) (Type, error) {
	rest := strings.TrimPrefix(t, "map[")
	end := strings.Index(rest, "]")
	if end < 0 {
		return nil, fmt.Errorf("missing ] in map specification %q", t)
	}

	keyType, err := ParseType(rest[:end])
	if err != nil {
		return nil, fmt.Errorf("map key type: %w", err)
	}
	valueType, err := ParseType(rest[end+1:])
	if err != nil {
		return nil, fmt.Errorf("map value type: %w", err)
	}
	return Map{KeyType: keyType, ValueType: valueType}, nil
}

// parseList parses a "[]valuetype" declaration.
func parseList(t string) (Type, error) {
	valueType, err := ParseType(strings.TrimPrefix(t, "[]"))
	if err != nil {
		return nil, fmt.Errorf("list value type: %w", err)
	}
	return List{ValueType: valueType}, nil
}

// parseProto parses a "proto(name)" declaration. The message itself
// must be registered separately; only the name is captured here.
func parseProto(t string) (Type, error) {
	name := strings.TrimSuffix(strings.TrimPrefix(t, "proto("), ")")
	if name == "" {
		return nil, fmt.Errorf("missing proto name in %q", t)
	}
	return Proto{Protoname: name}, nil
}
