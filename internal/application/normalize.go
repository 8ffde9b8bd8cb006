package application

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jobrunner/mlitdpf/internal/domain"
)

// Normalize extracts the record sequence from the value stored under the
// operation key of the response data. Each path element selects a key of a
// nested object. A null or absent value at any step yields no records; an
// array passes through in upstream order and an object becomes one record.
func Normalize(raw json.RawMessage, path ...string) ([]domain.Record, error) {
	current := bytes.TrimSpace(raw)
	for _, key := range path {
		if isNull(current) {
			return nil, nil
		}
		if current[0] != '{' {
			return nil, fmt.Errorf("expected object before %q, got %s", key, kindOf(current))
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(current, &obj); err != nil {
			return nil, fmt.Errorf("decoding object before %q: %w", key, err)
		}
		current = bytes.TrimSpace(obj[key])
	}

	if isNull(current) {
		return nil, nil
	}

	switch current[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(current, &items); err != nil {
			return nil, fmt.Errorf("decoding result array: %w", err)
		}
		records := make([]domain.Record, len(items))
		for i, item := range items {
			records[i] = domain.Record(item)
		}
		return records, nil
	case '{':
		return []domain.Record{domain.Record(current)}, nil
	default:
		return nil, fmt.Errorf("expected array or object, got %s", kindOf(current))
	}
}

func isNull(b []byte) bool {
	return len(b) == 0 || bytes.Equal(b, []byte("null"))
}

func kindOf(b []byte) string {
	switch b[0] {
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case '[':
		return "array"
	case '{':
		return "object"
	default:
		return "number"
	}
}
