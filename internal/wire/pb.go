package wire

import (
	"fmt"
	"math"

	"github.com/oriys/oapi/internal/transport"
	"google.golang.org/protobuf/types/known/structpb"
)

// The protobuf mapping represents a transport.Value as
//
//	{kind: "double[]", ref: true, value: [1, 2]}
//
// and an unwritten slot as null. Numbers travel as protobuf doubles, so
// doubles round-trip bit for bit and int32 values are exact.

// ValueToProto maps v to a structpb value.
func ValueToProto(v transport.Value) *structpb.Value {
	if !v.IsValid() {
		return structpb.NewNullValue()
	}
	var payload *structpb.Value
	switch v.Kind {
	case transport.KindInt:
		payload = structpb.NewNumberValue(float64(v.Int))
	case transport.KindDouble:
		payload = structpb.NewNumberValue(v.Double)
	case transport.KindBool:
		payload = structpb.NewBoolValue(v.Bool)
	case transport.KindString:
		payload = structpb.NewStringValue(v.Str)
	case transport.KindIntArray:
		payload = listOf(len(v.Ints), func(i int) *structpb.Value { return structpb.NewNumberValue(float64(v.Ints[i])) })
	case transport.KindDoubleArray:
		payload = listOf(len(v.Doubles), func(i int) *structpb.Value { return structpb.NewNumberValue(v.Doubles[i]) })
	case transport.KindBoolArray:
		payload = listOf(len(v.Bools), func(i int) *structpb.Value { return structpb.NewBoolValue(v.Bools[i]) })
	case transport.KindStringArray:
		payload = listOf(len(v.Strs), func(i int) *structpb.Value { return structpb.NewStringValue(v.Strs[i]) })
	}
	return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
		"kind":  structpb.NewStringValue(v.Kind.String()),
		"ref":   structpb.NewBoolValue(v.Ref),
		"value": payload,
	}})
}

func listOf(n int, at func(int) *structpb.Value) *structpb.Value {
	items := make([]*structpb.Value, n)
	for i := range items {
		items[i] = at(i)
	}
	return structpb.NewListValue(&structpb.ListValue{Values: items})
}

// ValueFromProto is the inverse of ValueToProto.
func ValueFromProto(pv *structpb.Value) (transport.Value, error) {
	if pv == nil {
		return transport.Value{}, nil
	}
	if _, ok := pv.GetKind().(*structpb.Value_NullValue); ok {
		return transport.Value{}, nil
	}
	s := pv.GetStructValue()
	if s == nil {
		return transport.Value{}, fmt.Errorf("value: want struct, got %T", pv.GetKind())
	}
	k, err := transport.ParseKind(s.Fields["kind"].GetStringValue())
	if err != nil {
		return transport.Value{}, err
	}
	payload := s.Fields["value"]
	if _, null := payload.GetKind().(*structpb.Value_NullValue); payload == nil || null {
		v := transport.Zero(k)
		v.Ref = s.Fields["ref"].GetBoolValue()
		return v, nil
	}

	v, err := payloadOf(k, payload)
	if err != nil {
		return transport.Value{}, fmt.Errorf("%s value: %w", k, err)
	}
	v.Ref = s.Fields["ref"].GetBoolValue()
	return v, nil
}

// payloadOf decodes the payload of a value of kind k. A payload of the
// wrong protobuf type is an error, never a zero value.
func payloadOf(k transport.Kind, pv *structpb.Value) (transport.Value, error) {
	if !k.IsArray() {
		return scalarOf(k, pv)
	}
	list, ok := pv.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return transport.Value{}, fmt.Errorf("want list, got %T", pv.GetKind())
	}
	elem := k.Elem()
	v := transport.Zero(k)
	for i, it := range list.ListValue.GetValues() {
		e, err := scalarOf(elem, it)
		if err != nil {
			return transport.Value{}, fmt.Errorf("element %d: %w", i, err)
		}
		switch k {
		case transport.KindIntArray:
			v.Ints = append(v.Ints, e.Int)
		case transport.KindDoubleArray:
			v.Doubles = append(v.Doubles, e.Double)
		case transport.KindBoolArray:
			v.Bools = append(v.Bools, e.Bool)
		case transport.KindStringArray:
			v.Strs = append(v.Strs, e.Str)
		}
	}
	return v, nil
}

func scalarOf(k transport.Kind, pv *structpb.Value) (transport.Value, error) {
	switch x := pv.GetKind().(type) {
	case *structpb.Value_NumberValue:
		switch k {
		case transport.KindInt:
			n, err := int32Of(x.NumberValue)
			return transport.Int(n), err
		case transport.KindDouble:
			return transport.Double(x.NumberValue), nil
		}
	case *structpb.Value_BoolValue:
		if k == transport.KindBool {
			return transport.Bool(x.BoolValue), nil
		}
	case *structpb.Value_StringValue:
		if k == transport.KindString {
			return transport.Str(x.StringValue), nil
		}
	}
	return transport.Value{}, fmt.Errorf("payload %T does not hold a %s", pv.GetKind(), k)
}

func int32Of(f float64) (int32, error) {
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("value %v is not an int32", f)
	}
	return int32(f), nil
}

func valuesToProto(vs []transport.Value) *structpb.Value {
	return listOf(len(vs), func(i int) *structpb.Value { return ValueToProto(vs[i]) })
}

func valuesFromProto(pv *structpb.Value) ([]transport.Value, error) {
	items := pv.GetListValue().GetValues()
	if len(items) == 0 {
		return nil, nil
	}
	out := make([]transport.Value, len(items))
	for i, it := range items {
		v, err := ValueFromProto(it)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// CallToProto maps a call to a struct message.
func CallToProto(c *transport.Call) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":     structpb.NewStringValue(c.ID),
		"handle": structpb.NewStringValue(c.Handle),
		"method": structpb.NewStringValue(c.Method),
		"args":   valuesToProto(c.Args),
	}}
}

// CallFromProto is the inverse of CallToProto.
func CallFromProto(s *structpb.Struct) (*transport.Call, error) {
	f := s.GetFields()
	args, err := valuesFromProto(f["args"])
	if err != nil {
		return nil, err
	}
	return &transport.Call{
		ID:     f["id"].GetStringValue(),
		Handle: f["handle"].GetStringValue(),
		Method: f["method"].GetStringValue(),
		Args:   args,
	}, nil
}

// ReplyToProto maps a reply to a struct message.
func ReplyToProto(r *transport.Reply) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"status": structpb.NewNumberValue(float64(r.Status)),
		"args":   valuesToProto(r.Args),
	}}
}

// ReplyFromProto is the inverse of ReplyToProto.
func ReplyFromProto(s *structpb.Struct) (*transport.Reply, error) {
	f := s.GetFields()
	status, err := scalarOf(transport.KindInt, f["status"])
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	args, err := valuesFromProto(f["args"])
	if err != nil {
		return nil, err
	}
	return &transport.Reply{Status: status.Int, Args: args}, nil
}
