package application

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/jobrunner/mlitdpf/internal/domain"
)

// DefaultMaxOutputBytes is the output cap applied when none is configured.
const DefaultMaxOutputBytes = 1 << 20

// TruncationMarker is appended by the text strategy.
const TruncationMarker = "\n... [Response truncated due to size limit]"

// TruncationStrategy selects how oversized output is cut.
type TruncationStrategy string

// Truncation strategies.
const (
	// TruncateRecords drops trailing records until the array fits. The
	// output always stays a valid JSON array.
	TruncateRecords TruncationStrategy = "records"

	// TruncateText cuts the serialized text to half the cap and appends
	// TruncationMarker. The result is usually not valid JSON.
	TruncateText TruncationStrategy = "text"
)

// ParseTruncationStrategy parses a configured strategy name.
func ParseTruncationStrategy(s string) (TruncationStrategy, error) {
	switch TruncationStrategy(s) {
	case TruncateRecords, TruncateText:
		return TruncationStrategy(s), nil
	case "":
		return TruncateRecords, nil
	default:
		return "", fmt.Errorf("unknown truncation strategy %q", s)
	}
}

// LimitedOutput is the serialized result of one call.
type LimitedOutput struct {
	Text      string
	Records   int // records fully contained in Text
	Dropped   int // records removed by the records strategy
	Truncated bool
}

// SizeLimiter serializes records compactly and bounds the output size.
type SizeLimiter struct {
	maxBytes int
	strategy TruncationStrategy
}

// NewSizeLimiter creates a limiter. Non-positive maxBytes selects
// DefaultMaxOutputBytes and an empty strategy selects TruncateRecords.
func NewSizeLimiter(maxBytes int, strategy TruncationStrategy) *SizeLimiter {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxOutputBytes
	}
	if strategy == "" {
		strategy = TruncateRecords
	}
	return &SizeLimiter{maxBytes: maxBytes, strategy: strategy}
}

// MaxBytes returns the configured cap.
func (l *SizeLimiter) MaxBytes() int {
	return l.maxBytes
}

// Strategy returns the configured strategy.
func (l *SizeLimiter) Strategy() TruncationStrategy {
	return l.strategy
}

// Limit serializes records as a compact JSON array. Records are compacted
// without HTML escaping and keep their upstream key order.
func (l *SizeLimiter) Limit(records []domain.Record) (LimitedOutput, error) {
	parts := make([][]byte, len(records))
	total := 2
	for i, r := range records {
		var buf bytes.Buffer
		if len(r) == 0 {
			buf.WriteString("null")
		} else if err := json.Compact(&buf, r); err != nil {
			return LimitedOutput{}, fmt.Errorf("compacting record %d: %w", i, err)
		}
		parts[i] = buf.Bytes()
		total += buf.Len()
		if i > 0 {
			total++
		}
	}

	if total <= l.maxBytes {
		return LimitedOutput{Text: join(parts, total), Records: len(parts)}, nil
	}

	if l.strategy == TruncateText {
		return l.cutText(join(parts, total)), nil
	}
	return l.dropRecords(parts), nil
}

func (l *SizeLimiter) dropRecords(parts [][]byte) LimitedOutput {
	size := 2
	keep := 0
	for i, p := range parts {
		next := size + len(p)
		if i > 0 {
			next++
		}
		if next > l.maxBytes {
			break
		}
		size = next
		keep++
	}
	return LimitedOutput{
		Text:      join(parts[:keep], size),
		Records:   keep,
		Dropped:   len(parts) - keep,
		Truncated: true,
	}
}

// cutText keeps the first half of the cap, backing off to a rune boundary.
func (l *SizeLimiter) cutText(full string) LimitedOutput {
	cut := l.maxBytes / 2
	if cut > len(full) {
		cut = len(full)
	}
	for cut > 0 && cut < len(full) && !utf8.RuneStart(full[cut]) {
		cut--
	}
	return LimitedOutput{
		Text:      full[:cut] + TruncationMarker,
		Truncated: true,
	}
}

func join(parts [][]byte, size int) string {
	var b bytes.Buffer
	b.Grow(size)
	b.WriteByte('[')
	for i, p := range parts {
		if i > 0 {
			b.WriteByte(',')
		}
		b.Write(p)
	}
	b.WriteByte(']')
	return b.String()
}
