package wire

import (
	"encoding/json"
	"fmt"

	"github.com/oriys/oapi/internal/observability"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Codec encodes envelopes into frame payloads. Both ends of a connection
// must use the same codec.
type Codec interface {
	Name() string
	Marshal(env *Envelope) ([]byte, error)
	Unmarshal(data []byte, env *Envelope) error
}

// CodecByName returns the codec registered under name ("json" or "proto").
// An empty name selects JSON.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "proto", "protobuf":
		return ProtoCodec{}, nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

// JSONCodec is the default codec.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(env *Envelope) ([]byte, error) {
	return json.Marshal(env)
}

func (JSONCodec) Unmarshal(data []byte, env *Envelope) error {
	return json.Unmarshal(data, env)
}

// ProtoCodec encodes envelopes as a protobuf google.protobuf.Struct. It is
// smaller than JSON for numeric arrays and keeps doubles bit-exact.
type ProtoCodec struct{}

func (ProtoCodec) Name() string { return "proto" }

func (ProtoCodec) Marshal(env *Envelope) ([]byte, error) {
	s := &structpb.Struct{Fields: map[string]*structpb.Value{
		"type": structpb.NewStringValue(string(env.Type)),
		"id":   structpb.NewStringValue(env.ID),
	}}
	if env.Call != nil {
		s.Fields["call"] = structpb.NewStructValue(CallToProto(env.Call))
	}
	if env.Reply != nil {
		s.Fields["reply"] = structpb.NewStructValue(ReplyToProto(env.Reply))
	}
	if env.Error != nil {
		s.Fields["error"] = structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"code":    structpb.NewStringValue(env.Error.Code),
			"message": structpb.NewStringValue(env.Error.Message),
		}})
	}
	if !env.Trace.IsZero() {
		s.Fields["traceparent"] = structpb.NewStringValue(env.Trace.TraceParent)
		s.Fields["tracestate"] = structpb.NewStringValue(env.Trace.TraceState)
	}
	data, err := proto.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("protobuf marshal: %w", err)
	}
	return data, nil
}

func (ProtoCodec) Unmarshal(data []byte, env *Envelope) error {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("protobuf unmarshal: %w", err)
	}
	f := s.GetFields()
	*env = Envelope{
		Type: MsgType(f["type"].GetStringValue()),
		ID:   f["id"].GetStringValue(),
		Trace: observability.TraceContext{
			TraceParent: f["traceparent"].GetStringValue(),
			TraceState:  f["tracestate"].GetStringValue(),
		},
	}
	if cs := f["call"].GetStructValue(); cs != nil {
		call, err := CallFromProto(cs)
		if err != nil {
			return fmt.Errorf("call: %w", err)
		}
		env.Call = call
	}
	if rs := f["reply"].GetStructValue(); rs != nil {
		reply, err := ReplyFromProto(rs)
		if err != nil {
			return fmt.Errorf("reply: %w", err)
		}
		env.Reply = reply
	}
	if es := f["error"].GetStructValue(); es != nil {
		env.Error = &ErrorBody{
			Code:    es.Fields["code"].GetStringValue(),
			Message: es.Fields["message"].GetStringValue(),
		}
	}
	return nil
}
