package tls

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"testing"

	"github.com/jobrunner/mlitdpf/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewServerDisabled(t *testing.T) {
	s, err := NewServer(config.TLSConfig{}, config.ServerConfig{Host: "127.0.0.1", Port: 8443}, http.NotFoundHandler(), discardLogger())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if s.Enabled() {
		t.Error("Enabled() = true; want false")
	}
	if s.TLSConfig() != nil {
		t.Error("TLSConfig() should be nil when disabled")
	}
	if err := s.ManageCertificates(context.Background()); err != nil {
		t.Errorf("ManageCertificates() error = %v", err)
	}
	if err := s.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() before start error = %v", err)
	}
}

func TestNewServerValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.TLSConfig
	}{
		{"no domains", config.TLSConfig{Enabled: true, Email: "ops@example.test"}},
		{"no email", config.TLSConfig{Enabled: true, Domains: []string{"example.test"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewServer(tt.cfg, config.ServerConfig{}, http.NotFoundHandler(), discardLogger()); err == nil {
				t.Error("NewServer() should fail")
			}
		})
	}
}

func TestNewServerEnabled(t *testing.T) {
	cfg := config.TLSConfig{
		Enabled:  true,
		Domains:  []string{"example.test"},
		Email:    "ops@example.test",
		CacheDir: t.TempDir(),
		Staging:  true,
	}
	s, err := NewServer(cfg, config.ServerConfig{Host: "127.0.0.1", Port: 8443}, http.NotFoundHandler(), discardLogger())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if !s.Enabled() {
		t.Fatal("Enabled() = false")
	}
	tc := s.TLSConfig()
	if tc == nil {
		t.Fatal("TLSConfig() = nil")
	}
	if !slices.Contains(tc.NextProtos, "h2") || !slices.Contains(tc.NextProtos, "http/1.1") {
		t.Errorf("TLSConfig().NextProtos = %v", tc.NextProtos)
	}
}
