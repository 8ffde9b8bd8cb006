package application

import (
	"context"
	"testing"
)

func TestHealthServiceIsHealthy(t *testing.T) {
	service := NewHealthService(newTestService(&mockUpstream{}, ToolServiceConfig{}), "https://example.test/", true)

	if !service.IsHealthy(context.Background()) {
		t.Error("IsHealthy should return true")
	}
}

func TestHealthServiceIsReady(t *testing.T) {
	tools := newTestService(&mockUpstream{}, ToolServiceConfig{})

	tests := []struct {
		name     string
		endpoint string
		want     bool
	}{
		{name: "configured endpoint", endpoint: "https://example.test/", want: true},
		{name: "missing endpoint", endpoint: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewHealthService(tools, tt.endpoint, true)
			if got := service.IsReady(context.Background()); got != tt.want {
				t.Errorf("IsReady() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHealthServiceGetHealthDetails(t *testing.T) {
	service := NewHealthService(newTestService(&mockUpstream{}, ToolServiceConfig{}), "https://example.test/", false)

	details := service.GetHealthDetails(context.Background())

	if !details.Healthy {
		t.Error("Healthy should be true")
	}
	if !details.Ready {
		t.Error("Ready should be true")
	}
	if details.Tools != 9 {
		t.Errorf("Tools = %d, want 9", details.Tools)
	}
	if details.Components["api_key"] != "missing" {
		t.Errorf("Components[api_key] = %q, want %q", details.Components["api_key"], "missing")
	}
	if details.Components["upstream"] != "configured" {
		t.Errorf("Components[upstream] = %q, want %q", details.Components["upstream"], "configured")
	}
}
