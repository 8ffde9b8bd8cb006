package domain

import (
	"encoding/json"
	"math"
	"testing"
)

func TestCoerceFirst(t *testing.T) {
	tests := []struct {
		name    string
		raw     interface{}
		present bool
		want    int
	}{
		{name: "absent", present: false, want: 1},
		{name: "positive int", raw: 7, present: true, want: 7},
		{name: "positive float64 integral", raw: float64(20), present: true, want: 20},
		{name: "zero", raw: 0, present: true, want: 1},
		{name: "negative", raw: -3, present: true, want: 1},
		{name: "fractional", raw: 2.5, present: true, want: 1},
		{name: "string", raw: "5", present: true, want: 1},
		{name: "bool", raw: true, present: true, want: 1},
		{name: "null", raw: nil, present: true, want: 1},
		{name: "json number", raw: json.Number("12"), present: true, want: 12},
		{name: "NaN", raw: math.NaN(), present: true, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CoerceFirst(tt.raw, tt.present); got != tt.want {
				t.Errorf("CoerceFirst(%v) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCoerceSize(t *testing.T) {
	tests := []struct {
		name    string
		raw     interface{}
		present bool
		want    int
	}{
		{name: "absent", present: false, want: 50},
		{name: "in range", raw: 100, present: true, want: 100},
		{name: "upper bound", raw: 500, present: true, want: 500},
		{name: "above max", raw: 9999, present: true, want: 500},
		{name: "huge float", raw: 1e30, present: true, want: 500},
		{name: "zero", raw: 0, present: true, want: 1},
		{name: "negative", raw: -5, present: true, want: 1},
		{name: "fractional", raw: 10.5, present: true, want: 50},
		{name: "string", raw: "abc", present: true, want: 50},
		{name: "json number above max", raw: json.Number("600"), present: true, want: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoerceSize(tt.raw, tt.present)
			if got != tt.want {
				t.Errorf("CoerceSize(%v) = %d, want %d", tt.raw, got, tt.want)
			}
			if got < 1 || got > MaxSize {
				t.Errorf("CoerceSize(%v) = %d escapes [1, %d]", tt.raw, got, MaxSize)
			}
		})
	}
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		first, size         int
		wantFirst, wantSize int
	}{
		{first: 1, size: 50, wantFirst: 1, wantSize: 50},
		{first: 0, size: 0, wantFirst: 1, wantSize: 1},
		{first: -10, size: -5, wantFirst: 1, wantSize: 1},
		{first: 3, size: 9999, wantFirst: 3, wantSize: 500},
	}

	for _, tt := range tests {
		p := NewPagination(tt.first, tt.size)
		if p.First != tt.wantFirst || p.Size != tt.wantSize {
			t.Errorf("NewPagination(%d, %d) = %+v, want {%d %d}", tt.first, tt.size, p, tt.wantFirst, tt.wantSize)
		}
	}

	if d := DefaultPagination(); d.First != 1 || d.Size != 50 {
		t.Errorf("DefaultPagination() = %+v", d)
	}
}
