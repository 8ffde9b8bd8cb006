package domain

import (
	"encoding/json"
	"testing"
)

func TestRecordKeepsRawJSON(t *testing.T) {
	var records []Record
	if err := json.Unmarshal([]byte(`[{"title":"x","id":"1"},{"id":"2","lat":35.000}]`), &records); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	if string(records[0]) != `{"title":"x","id":"1"}` {
		t.Errorf("record 0 = %s", records[0])
	}

	out, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != `[{"title":"x","id":"1"},{"id":"2","lat":35.000}]` {
		t.Errorf("Marshal = %s", out)
	}

	fields, err := records[1].Fields()
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	if fields["lat"].(json.Number).String() != "35.000" {
		t.Errorf("lat = %v", fields["lat"])
	}
}

func TestQueryResultEmpty(t *testing.T) {
	var nilResult *QueryResult
	if !nilResult.IsEmpty() || nilResult.Len() != 0 {
		t.Error("nil result should be empty")
	}
	r := &QueryResult{Operation: "search", Records: []Record{Record(`{}`)}}
	if r.IsEmpty() || r.Len() != 1 {
		t.Error("result with one record should not be empty")
	}
}
