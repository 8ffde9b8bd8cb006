package domain

import (
	"bytes"
	"encoding/json"
)

// Record is one result item as returned by the upstream service. The raw
// JSON is kept so field order and number formatting survive untouched.
type Record json.RawMessage

// MarshalJSON implements json.Marshaler.
func (r Record) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Record) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}

// Fields decodes the record into a generic mapping.
func (r Record) Fields() (map[string]interface{}, error) {
	var m map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(r))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// QueryResult is the ordered record sequence of one operation.
type QueryResult struct {
	Operation string
	Records   []Record
}

// Len returns the number of records.
func (r *QueryResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Records)
}

// IsEmpty reports whether the upstream returned no records.
func (r *QueryResult) IsEmpty() bool {
	return r.Len() == 0
}
