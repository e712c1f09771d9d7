package transport

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type jsonValue struct {
	Kind  string          `json:"kind"`
	Ref   bool            `json:"ref,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

// MarshalJSON encodes v as {"kind":..., "ref":..., "value":...}. Non-finite
// doubles are written as strings: "+Inf", "-Inf", and a NaN with its bits.
func (v Value) MarshalJSON() ([]byte, error) {
	out := jsonValue{Kind: v.Kind.String(), Ref: v.Ref}
	if v.Kind == KindInvalid {
		return json.Marshal(out)
	}
	var payload any
	switch v.Kind {
	case KindDouble:
		payload = jsonDouble(v.Double)
	case KindDoubleArray:
		ds := make([]jsonDouble, len(v.Doubles))
		for i, d := range v.Doubles {
			ds[i] = jsonDouble(d)
		}
		payload = ds
	default:
		payload = v.Interface()
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	out.Value = raw
	return json.Marshal(out)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var in jsonValue
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	k := KindInvalid
	if in.Kind != "" && in.Kind != KindInvalid.String() {
		var err error
		if k, err = ParseKind(in.Kind); err != nil {
			return err
		}
	}
	out := Zero(k)
	out.Ref = in.Ref
	if k == KindInvalid || len(in.Value) == 0 {
		*v = out
		return nil
	}

	var err error
	switch k {
	case KindInt:
		err = json.Unmarshal(in.Value, &out.Int)
	case KindDouble:
		var d jsonDouble
		err = json.Unmarshal(in.Value, &d)
		out.Double = float64(d)
	case KindBool:
		err = json.Unmarshal(in.Value, &out.Bool)
	case KindString:
		err = json.Unmarshal(in.Value, &out.Str)
	case KindIntArray:
		err = json.Unmarshal(in.Value, &out.Ints)
	case KindDoubleArray:
		var ds []jsonDouble
		err = json.Unmarshal(in.Value, &ds)
		out.Doubles = make([]float64, len(ds))
		for i, d := range ds {
			out.Doubles[i] = float64(d)
		}
	case KindBoolArray:
		err = json.Unmarshal(in.Value, &out.Bools)
	case KindStringArray:
		err = json.Unmarshal(in.Value, &out.Strs)
	}
	if err != nil {
		return fmt.Errorf("decode %s value: %w", k, err)
	}
	// "value": null on an array still means a zero-length array.
	if k.IsArray() && out.Len() <= 0 {
		out = Zero(k)
		out.Ref = in.Ref
	}
	*v = out
	return nil
}

// jsonDouble writes finite doubles as shortest round-trip numbers and the
// rest as strings. A NaN carries its bit pattern ("NaN:0x7ff8000000000001")
// so the payload survives.
type jsonDouble float64

const nanPrefix = "NaN:"

func (d jsonDouble) MarshalJSON() ([]byte, error) {
	f := float64(d)
	switch {
	case math.IsNaN(f):
		return fmt.Appendf(nil, `"%s0x%016x"`, nanPrefix, math.Float64bits(f)), nil
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

func (d *jsonDouble) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if bits, ok := strings.CutPrefix(s, nanPrefix); ok {
			u, err := strconv.ParseUint(bits, 0, 64)
			if err != nil {
				return fmt.Errorf("bad NaN payload %q: %w", s, err)
			}
			if f := math.Float64frombits(u); !math.IsNaN(f) {
				return fmt.Errorf("bad NaN payload %q: not a NaN", s)
			}
			*d = jsonDouble(math.Float64frombits(u))
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*d = jsonDouble(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*d = jsonDouble(f)
	return nil
}
