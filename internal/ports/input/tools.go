// Package input defines the primary/driving ports of the application.
package input

import (
	"context"

	"github.com/jobrunner/mlitdpf/internal/domain"
)

// ToolService defines the primary port used by every host surface.
type ToolService interface {
	// ListTools returns the tool catalog in advertisement order.
	ListTools() []domain.ToolDefinition

	// CallTool runs the named tool with decoded JSON arguments and returns
	// the compact JSON output.
	CallTool(ctx context.Context, name string, args map[string]interface{}) (string, error)
}

// HealthChecker defines the primary port for health checks.
type HealthChecker interface {
	// IsHealthy returns true if the service is healthy.
	IsHealthy(ctx context.Context) bool

	// IsReady returns true if the service is ready to accept requests.
	IsReady(ctx context.Context) bool

	// GetHealthDetails returns detailed health information.
	GetHealthDetails(ctx context.Context) HealthDetails
}

// HealthDetails contains detailed health information.
type HealthDetails struct {
	Healthy    bool              // Overall health status
	Ready      bool              // Ready to accept requests
	Tools      int               // Number of advertised tools
	Components map[string]string // Component statuses
}
