package transport

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FromAny converts a loosely typed value, as produced by YAML or JSON
// decoding into interface{}, to a Value of kind k. A nil raw value yields
// the zero placeholder for k.
func FromAny(k Kind, raw any) (Value, error) {
	if raw == nil {
		return Zero(k), nil
	}
	if k.IsArray() {
		items, ok := raw.([]any)
		if !ok {
			return Value{}, fmt.Errorf("%s: expected a list, got %T", k, raw)
		}
		out := Zero(k)
		for i, item := range items {
			e, err := FromAny(k.Elem(), item)
			if err != nil {
				return Value{}, fmt.Errorf("%s[%d]: %w", k, i, err)
			}
			switch k {
			case KindIntArray:
				out.Ints = append(out.Ints, e.Int)
			case KindDoubleArray:
				out.Doubles = append(out.Doubles, e.Double)
			case KindBoolArray:
				out.Bools = append(out.Bools, e.Bool)
			case KindStringArray:
				out.Strs = append(out.Strs, e.Str)
			}
		}
		return out, nil
	}

	switch k {
	case KindInt:
		n, err := toInt32(raw)
		if err != nil {
			return Value{}, err
		}
		return Int(n), nil
	case KindDouble:
		switch x := raw.(type) {
		case float64:
			return Double(x), nil
		case float32:
			return Double(float64(x)), nil
		case string:
			f, err := strconv.ParseFloat(x, 64)
			if err != nil {
				return Value{}, fmt.Errorf("double: %w", err)
			}
			return Double(f), nil
		}
		n, err := toInt64(raw)
		if err != nil {
			return Value{}, fmt.Errorf("double: %w", err)
		}
		return Double(float64(n)), nil
	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return Value{}, fmt.Errorf("bool: expected true or false, got %T", raw)
		}
		return Bool(b), nil
	case KindString:
		switch x := raw.(type) {
		case string:
			return Str(x), nil
		case fmt.Stringer:
			return Str(x.String()), nil
		}
		return Value{}, fmt.Errorf("string: got %T", raw)
	}
	return Value{}, fmt.Errorf("cannot convert to %s", k)
}

func toInt64(raw any) (int64, error) {
	switch x := raw.(type) {
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows", x)
		}
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("%v is not an integer", x)
		}
		return int64(x), nil
	}
	return 0, fmt.Errorf("expected a number, got %T", raw)
}

func toInt32(raw any) (int32, error) {
	n, err := toInt64(raw)
	if err != nil {
		return 0, fmt.Errorf("int: %w", err)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, fmt.Errorf("int: %d out of range", n)
	}
	return int32(n), nil
}

// ParseText parses a command-line rendering of a value of kind k. Arrays
// are comma separated; an empty string is a zero-length array.
func ParseText(k Kind, s string) (Value, error) {
	if k.IsArray() {
		out := Zero(k)
		if strings.TrimSpace(s) == "" {
			return out, nil
		}
		for i, part := range strings.Split(s, ",") {
			e, err := ParseText(k.Elem(), strings.TrimSpace(part))
			if err != nil {
				return Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			switch k {
			case KindIntArray:
				out.Ints = append(out.Ints, e.Int)
			case KindDoubleArray:
				out.Doubles = append(out.Doubles, e.Double)
			case KindBoolArray:
				out.Bools = append(out.Bools, e.Bool)
			case KindStringArray:
				out.Strs = append(out.Strs, e.Str)
			}
		}
		return out, nil
	}

	switch k {
	case KindInt:
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return Value{}, fmt.Errorf("int: %w", err)
		}
		return Int(int32(n)), nil
	case KindDouble:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, fmt.Errorf("double: %w", err)
		}
		return Double(f), nil
	case KindBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Value{}, fmt.Errorf("bool: %w", err)
		}
		return Bool(b), nil
	case KindString:
		return Str(s), nil
	}
	return Value{}, fmt.Errorf("cannot parse %s", k)
}
