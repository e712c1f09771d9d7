package transport

import "fmt"

// Kind identifies the transport type carried by a Value.
type Kind uint8

const (
	KindInvalid Kind = iota // unwritten slot
	KindInt                 // 32-bit signed integer (VT_I4)
	KindDouble              // IEEE 754 double (VT_R8)
	KindBool                // boolean (VT_BOOL)
	KindString              // string (VT_BSTR)
	KindIntArray
	KindDoubleArray
	KindBoolArray
	KindStringArray
)

var kindNames = [...]string{
	KindInvalid:     "invalid",
	KindInt:         "int",
	KindDouble:      "double",
	KindBool:        "bool",
	KindString:      "string",
	KindIntArray:    "int[]",
	KindDoubleArray: "double[]",
	KindBoolArray:   "bool[]",
	KindStringArray: "string[]",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsArray reports whether k is one of the homogeneous array kinds.
func (k Kind) IsArray() bool {
	return k >= KindIntArray && k <= KindStringArray
}

// Elem returns the element kind of an array kind, or k itself for scalars.
func (k Kind) Elem() Kind {
	if k.IsArray() {
		return k - (KindIntArray - KindInt)
	}
	return k
}

// ArrayOf returns the array kind whose elements are k.
func ArrayOf(k Kind) Kind {
	if k >= KindInt && k <= KindString {
		return k + (KindIntArray - KindInt)
	}
	return KindInvalid
}

// ParseKind parses the names produced by Kind.String. "integer", "long",
// "float" and "text" are accepted as aliases.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "int", "integer", "long":
		return KindInt, nil
	case "double", "float":
		return KindDouble, nil
	case "bool", "boolean":
		return KindBool, nil
	case "string", "text":
		return KindString, nil
	case "int[]", "integer[]", "long[]":
		return KindIntArray, nil
	case "double[]", "float[]":
		return KindDoubleArray, nil
	case "bool[]", "boolean[]":
		return KindBoolArray, nil
	case "string[]", "text[]":
		return KindStringArray, nil
	}
	return KindInvalid, fmt.Errorf("unknown kind %q", s)
}

// Direction is the data flow of a positional parameter.
type Direction uint8

const (
	In    Direction = iota // caller to endpoint only
	Out                    // endpoint writes, caller value ignored
	InOut                  // caller value sent, endpoint may overwrite
)

func (d Direction) String() string {
	switch d {
	case In:
		return "in"
	case Out:
		return "out"
	case InOut:
		return "inout"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// Mutable reports whether the endpoint may write the slot.
func (d Direction) Mutable() bool {
	return d == Out || d == InOut
}

// ParseDirection parses "in", "out" and "inout" ("in/out" and "ref" are
// accepted as aliases for inout). An empty string means In.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "in":
		return In, nil
	case "out":
		return Out, nil
	case "inout", "in/out", "ref":
		return InOut, nil
	}
	return In, fmt.Errorf("unknown direction %q", s)
}
