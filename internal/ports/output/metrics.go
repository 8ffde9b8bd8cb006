package output

import "time"

// MetricsCollector defines the secondary port for metrics collection.
type MetricsCollector interface {
	// IncToolCall increments the tool call counter.
	IncToolCall(tool, status string)

	// ObserveToolDuration records the duration of one tool call.
	ObserveToolDuration(tool string, duration time.Duration)

	// IncUpstreamRequest increments the upstream request counter.
	IncUpstreamRequest(operation, outcome string)

	// ObserveUpstreamDuration records the duration of one upstream exchange.
	ObserveUpstreamDuration(operation string, duration time.Duration)

	// IncTruncation counts an output that exceeded the size cap.
	IncTruncation(strategy string)
}

// NoOpMetrics is a no-op implementation of MetricsCollector.
type NoOpMetrics struct{}

// IncToolCall implements MetricsCollector.
func (n *NoOpMetrics) IncToolCall(_, _ string) {}

// ObserveToolDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveToolDuration(_ string, _ time.Duration) {}

// IncUpstreamRequest implements MetricsCollector.
func (n *NoOpMetrics) IncUpstreamRequest(_, _ string) {}

// ObserveUpstreamDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveUpstreamDuration(_ string, _ time.Duration) {}

// IncTruncation implements MetricsCollector.
func (n *NoOpMetrics) IncTruncation(_ string) {}
