package application

import (
	"context"

	"github.com/jobrunner/mlitdpf/internal/ports/input"
)

// HealthService provides health check functionality.
type HealthService struct {
	tools    input.ToolService
	endpoint string
	hasKey   bool
}

// NewHealthService creates a new health service. The endpoint and key
// presence are reported as component statuses; no upstream request is made.
func NewHealthService(tools input.ToolService, endpoint string, hasAPIKey bool) *HealthService {
	return &HealthService{
		tools:    tools,
		endpoint: endpoint,
		hasKey:   hasAPIKey,
	}
}

// IsHealthy returns true if the service is healthy.
func (s *HealthService) IsHealthy(ctx context.Context) bool {
	return true // Basic health check
}

// IsReady returns true if the service is ready to accept requests.
func (s *HealthService) IsReady(ctx context.Context) bool {
	return s.endpoint != "" && len(s.tools.ListTools()) > 0
}

// GetHealthDetails returns detailed health information.
func (s *HealthService) GetHealthDetails(ctx context.Context) input.HealthDetails {
	components := map[string]string{
		"catalog":  "ok",
		"upstream": "configured",
		"api_key":  "present",
	}
	if s.endpoint == "" {
		components["upstream"] = "missing endpoint"
	}
	if !s.hasKey {
		components["api_key"] = "missing"
	}

	return input.HealthDetails{
		Healthy:    s.IsHealthy(ctx),
		Ready:      s.IsReady(ctx),
		Tools:      len(s.tools.ListTools()),
		Components: components,
	}
}
