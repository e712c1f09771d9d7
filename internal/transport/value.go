package transport

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is one positional argument as it crosses the call boundary.
//
// Exactly one payload field is meaningful, selected by Kind. Ref marks a
// mutable slot: the endpoint may replace the value at that position and the
// replacement comes back in Reply.Args.
type Value struct {
	Kind Kind
	Ref  bool

	Int    int32
	Double float64
	Bool   bool
	Str    string

	Ints    []int32
	Doubles []float64
	Bools   []bool
	Strs    []string
}

func Int(v int32) Value      { return Value{Kind: KindInt, Int: v} }
func Double(v float64) Value { return Value{Kind: KindDouble, Double: v} }
func Bool(v bool) Value      { return Value{Kind: KindBool, Bool: v} }
func Str(v string) Value     { return Value{Kind: KindString, Str: v} }

// Ints returns an int array value. A nil slice becomes a zero-length array.
func Ints(v []int32) Value {
	if v == nil {
		v = []int32{}
	}
	return Value{Kind: KindIntArray, Ints: v}
}

func Doubles(v []float64) Value {
	if v == nil {
		v = []float64{}
	}
	return Value{Kind: KindDoubleArray, Doubles: v}
}

func Bools(v []bool) Value {
	if v == nil {
		v = []bool{}
	}
	return Value{Kind: KindBoolArray, Bools: v}
}

func Strs(v []string) Value {
	if v == nil {
		v = []string{}
	}
	return Value{Kind: KindStringArray, Strs: v}
}

// Zero returns the placeholder for kind k: the zero scalar, or a
// zero-length (never nil) array.
func Zero(k Kind) Value {
	switch k {
	case KindIntArray:
		return Ints(nil)
	case KindDoubleArray:
		return Doubles(nil)
	case KindBoolArray:
		return Bools(nil)
	case KindStringArray:
		return Strs(nil)
	}
	return Value{Kind: k}
}

// IsValid reports whether v carries a value. An invalid value in a reply
// means the endpoint did not write that slot.
func (v Value) IsValid() bool {
	return v.Kind != KindInvalid
}

// Len returns the element count of an array value, or -1 for scalars.
func (v Value) Len() int {
	switch v.Kind {
	case KindIntArray:
		return len(v.Ints)
	case KindDoubleArray:
		return len(v.Doubles)
	case KindBoolArray:
		return len(v.Bools)
	case KindStringArray:
		return len(v.Strs)
	}
	return -1
}

// AsRef returns a copy of v marked as a mutable slot.
func (v Value) AsRef() Value {
	v.Ref = true
	return v
}

// Clone returns a deep copy, so that an endpoint writing into array
// payloads cannot alias the caller's slices.
func (v Value) Clone() Value {
	switch v.Kind {
	case KindIntArray:
		v.Ints = append(make([]int32, 0, len(v.Ints)), v.Ints...)
	case KindDoubleArray:
		v.Doubles = append(make([]float64, 0, len(v.Doubles)), v.Doubles...)
	case KindBoolArray:
		v.Bools = append(make([]bool, 0, len(v.Bools)), v.Bools...)
	case KindStringArray:
		v.Strs = append(make([]string, 0, len(v.Strs)), v.Strs...)
	}
	return v
}

// Equal compares kind and payload. Doubles compare by bit pattern, so NaN
// equals an identical NaN and 0 differs from -0. Ref is ignored.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindInvalid:
		return true
	case KindInt:
		return v.Int == o.Int
	case KindDouble:
		return math.Float64bits(v.Double) == math.Float64bits(o.Double)
	case KindBool:
		return v.Bool == o.Bool
	case KindString:
		return v.Str == o.Str
	case KindIntArray:
		if len(v.Ints) != len(o.Ints) {
			return false
		}
		for i := range v.Ints {
			if v.Ints[i] != o.Ints[i] {
				return false
			}
		}
		return true
	case KindDoubleArray:
		if len(v.Doubles) != len(o.Doubles) {
			return false
		}
		for i := range v.Doubles {
			if math.Float64bits(v.Doubles[i]) != math.Float64bits(o.Doubles[i]) {
				return false
			}
		}
		return true
	case KindBoolArray:
		if len(v.Bools) != len(o.Bools) {
			return false
		}
		for i := range v.Bools {
			if v.Bools[i] != o.Bools[i] {
				return false
			}
		}
		return true
	case KindStringArray:
		if len(v.Strs) != len(o.Strs) {
			return false
		}
		for i := range v.Strs {
			if v.Strs[i] != o.Strs[i] {
				return false
			}
		}
		return true
	}
	return false
}

// Interface returns the payload as a plain Go value.
func (v Value) Interface() any {
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindDouble:
		return v.Double
	case KindBool:
		return v.Bool
	case KindString:
		return v.Str
	case KindIntArray:
		return v.Ints
	case KindDoubleArray:
		return v.Doubles
	case KindBoolArray:
		return v.Bools
	case KindStringArray:
		return v.Strs
	}
	return nil
}

// String renders the payload for humans (CLI output, logs).
func (v Value) String() string {
	switch v.Kind {
	case KindInvalid:
		return "<unset>"
	case KindInt:
		return strconv.FormatInt(int64(v.Int), 10)
	case KindDouble:
		return strconv.FormatFloat(v.Double, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindString:
		return strconv.Quote(v.Str)
	}
	parts := make([]string, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		parts = append(parts, v.elem(i).String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (v Value) elem(i int) Value {
	switch v.Kind {
	case KindIntArray:
		return Int(v.Ints[i])
	case KindDoubleArray:
		return Double(v.Doubles[i])
	case KindBoolArray:
		return Bool(v.Bools[i])
	case KindStringArray:
		return Str(v.Strs[i])
	}
	panic(fmt.Sprintf("transport: elem on %s", v.Kind))
}
