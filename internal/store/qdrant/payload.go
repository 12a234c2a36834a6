package qdrant

import (
	"encoding/json"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"

	"github.com/homegrid-io/comps/internal/domain"
)

// payloadToValues converts a property record into the Qdrant payload map.
// The record goes through its JSON form so extra fields survive.
func payloadToValues(rec *domain.PropertyRecord) (map[string]*pb.Value, error) {
	if rec == nil {
		return nil, nil
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	payload := make(map[string]*pb.Value, len(m))
	for k, v := range m {
		val, err := anyToValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		payload[k] = val
	}
	return payload, nil
}

// payloadFromValues converts a Qdrant payload map back to a property record.
func payloadFromValues(payload map[string]*pb.Value) (*domain.PropertyRecord, error) {
	if len(payload) == 0 {
		return nil, nil
	}

	m := make(map[string]any, len(payload))
	for k, v := range payload {
		m[k] = valueToAny(v)
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var rec domain.PropertyRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// anyToValue maps the types json.Unmarshal produces onto pb.Value kinds.
func anyToValue(v any) (*pb.Value, error) {
	switch tv := v.(type) {
	case nil:
		return &pb.Value{Kind: &pb.Value_NullValue{}}, nil
	case string:
		return &pb.Value{Kind: &pb.Value_StringValue{StringValue: tv}}, nil
	case bool:
		return &pb.Value{Kind: &pb.Value_BoolValue{BoolValue: tv}}, nil
	case float64:
		// JSON numbers arrive as float64; keep integral values as integers so
		// ids round-trip exactly.
		if tv == float64(int64(tv)) {
			return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: int64(tv)}}, nil
		}
		return &pb.Value{Kind: &pb.Value_DoubleValue{DoubleValue: tv}}, nil
	case []any:
		values := make([]*pb.Value, len(tv))
		for i, item := range tv {
			val, err := anyToValue(item)
			if err != nil {
				return nil, err
			}
			values[i] = val
		}
		return &pb.Value{Kind: &pb.Value_ListValue{ListValue: &pb.ListValue{Values: values}}}, nil
	case map[string]any:
		fields := make(map[string]*pb.Value, len(tv))
		for k, item := range tv {
			val, err := anyToValue(item)
			if err != nil {
				return nil, err
			}
			fields[k] = val
		}
		return &pb.Value{Kind: &pb.Value_StructValue{StructValue: &pb.Struct{Fields: fields}}}, nil
	default:
		return nil, fmt.Errorf("unsupported payload type %T", v)
	}
}

func valueToAny(v *pb.Value) any {
	switch kind := v.GetKind().(type) {
	case *pb.Value_NullValue:
		return nil
	case *pb.Value_StringValue:
		return kind.StringValue
	case *pb.Value_BoolValue:
		return kind.BoolValue
	case *pb.Value_IntegerValue:
		return kind.IntegerValue
	case *pb.Value_DoubleValue:
		return kind.DoubleValue
	case *pb.Value_ListValue:
		items := make([]any, len(kind.ListValue.GetValues()))
		for i, item := range kind.ListValue.GetValues() {
			items[i] = valueToAny(item)
		}
		return items
	case *pb.Value_StructValue:
		fields := make(map[string]any, len(kind.StructValue.GetFields()))
		for k, item := range kind.StructValue.GetFields() {
			fields[k] = valueToAny(item)
		}
		return fields
	default:
		return nil
	}
}
