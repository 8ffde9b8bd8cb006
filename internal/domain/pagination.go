package domain

import (
	"encoding/json"
	"math"
)

// Pagination bounds used by every search operation.
const (
	DefaultFirst = 1
	DefaultSize  = 50
	MaxSize      = 500
)

// Pagination is the validated window of a search.
type Pagination struct {
	First int // 1-based start position, always >= 1
	Size  int // Page size, always in [1, MaxSize]
}

// DefaultPagination returns the window used when the caller supplies nothing.
func DefaultPagination() Pagination {
	return Pagination{First: DefaultFirst, Size: DefaultSize}
}

// NewPagination builds a window from already-typed integers, clamping
// out-of-range values instead of rejecting them.
func NewPagination(first, size int) Pagination {
	if first < 1 {
		first = DefaultFirst
	}
	switch {
	case size < 1:
		size = 1
	case size > MaxSize:
		size = MaxSize
	}
	return Pagination{First: first, Size: size}
}

// CoerceFirst turns a raw argument into a start position. Absent,
// non-integer and non-positive values all become 1.
func CoerceFirst(raw interface{}, present bool) int {
	if !present {
		return DefaultFirst
	}
	v, ok := integral(raw)
	if !ok || v < 1 {
		return DefaultFirst
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}

// CoerceSize turns a raw argument into a page size. Absent and
// non-integer values become the default; integers are clamped into
// [1, MaxSize].
func CoerceSize(raw interface{}, present bool) int {
	if !present {
		return DefaultSize
	}
	v, ok := integral(raw)
	if !ok {
		return DefaultSize
	}
	switch {
	case v < 1:
		return 1
	case v > MaxSize:
		return MaxSize
	}
	return int(v)
}

// integral reports the value of raw when it is a whole number.
func integral(raw interface{}) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		f = float64(v)
	case float64:
		f = v
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return float64(i), true
		}
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return f, true
}
