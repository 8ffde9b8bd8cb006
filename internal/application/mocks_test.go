package application

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jobrunner/mlitdpf/internal/ports/output"
)

// mockUpstream implements output.Upstream for testing.
type mockUpstream struct {
	mu       sync.Mutex
	requests []output.UpstreamRequest
	results  map[string]json.RawMessage // keyed by operation
	err      error
}

func (m *mockUpstream) Execute(_ context.Context, req output.UpstreamRequest) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return m.results[req.Operation], nil
}

func (m *mockUpstream) calls() []output.UpstreamRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]output.UpstreamRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *mockUpstream) lastQuery() string {
	calls := m.calls()
	if len(calls) == 0 {
		return ""
	}
	return calls[len(calls)-1].Query
}

// mockMetrics records tool call statuses.
type mockMetrics struct {
	output.NoOpMetrics
	mu          sync.Mutex
	toolCalls   map[string]int // "tool/status"
	truncations int
}

func (m *mockMetrics) IncToolCall(tool, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.toolCalls == nil {
		m.toolCalls = make(map[string]int)
	}
	m.toolCalls[tool+"/"+status]++
}

func (m *mockMetrics) ObserveToolDuration(_ string, _ time.Duration) {}

func (m *mockMetrics) IncTruncation(_ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.truncations++
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(up output.Upstream, cfg ToolServiceConfig) *ToolService {
	return NewToolService(up, &output.NoOpMetrics{}, discardLogger(), cfg)
}
