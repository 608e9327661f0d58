package value

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EncodeJSON renders v as JSON. Map keys are emitted sorted.
func EncodeJSON(v Value) ([]byte, error) {
	return json.Marshal(ToGo(v))
}

// DecodeJSON parses a JSON document. Integral numbers decode to Int.
func DecodeJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	return FromGo(raw)
}

// DecodeJSONMap parses a JSON object. An empty or "null" document yields
// an empty map.
func DecodeJSONMap(data []byte) (Map, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Map{}, nil
	}
	v, err := DecodeJSON(trimmed)
	if err != nil {
		return nil, err
	}
	m, ok := v.(Map)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %s", v.Kind())
	}
	return m, nil
}
