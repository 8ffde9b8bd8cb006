// Package app provides application initialization and wiring.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	httpAdapter "github.com/jobrunner/mlitdpf/internal/adapters/http"
	mcpAdapter "github.com/jobrunner/mlitdpf/internal/adapters/mcp"
	"github.com/jobrunner/mlitdpf/internal/adapters/metrics"
	tlsAdapter "github.com/jobrunner/mlitdpf/internal/adapters/tls"
	"github.com/jobrunner/mlitdpf/internal/adapters/upstream"
	"github.com/jobrunner/mlitdpf/internal/application"
	"github.com/jobrunner/mlitdpf/internal/config"
	"github.com/jobrunner/mlitdpf/internal/domain"
	"github.com/jobrunner/mlitdpf/internal/ports/output"
)

// App holds all application components.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Version       string
	Upstream      *upstream.Client
	ToolService   *application.ToolService
	HealthService *application.HealthService
	HTTPServer    *httpAdapter.Server
	TLSServer     *tlsAdapter.Server
	Metrics       *metrics.Collector
}

// New creates and initializes a new application.
func New(cfg *config.Config, logger *slog.Logger, version string) (*App, error) {
	app := &App{
		Config:  cfg,
		Logger:  logger,
		Version: version,
	}

	// Initialize metrics
	var metricsCollector output.MetricsCollector = &output.NoOpMetrics{}
	if cfg.Metrics.Enabled {
		app.Metrics = metrics.NewCollector("mlitdpf")
		metricsCollector = app.Metrics
	}

	failureMode, err := application.ParseFailureMode(cfg.Upstream.FailureMode)
	if err != nil {
		return nil, err
	}
	truncation, err := application.ParseTruncationStrategy(cfg.Output.Truncation)
	if err != nil {
		return nil, err
	}
	fieldSets, err := domain.DefaultFieldSets().WithOverrides(cfg.Query.FieldSets)
	if err != nil {
		return nil, fmt.Errorf("configuring field sets: %w", err)
	}

	// Initialize upstream client
	app.Upstream = upstream.NewClient(upstream.Config{
		Endpoint:         cfg.Upstream.Endpoint,
		APIKey:           cfg.Upstream.APIKey,
		APIKeyHeader:     cfg.Upstream.APIKeyHeader,
		Timeout:          cfg.Upstream.Timeout,
		CompressRequests: cfg.Upstream.CompressRequests,
		MaxBodyBytes:     cfg.Upstream.MaxBodyBytes,
		UserAgent:        "mlitdpf/" + version,
	}, metricsCollector, logger.With("component", "upstream"))

	if cfg.Upstream.APIKey == "" {
		logger.Warn("no upstream API key configured", "env", config.LegacyAPIKeyEnv)
	}

	// Initialize tool service
	app.ToolService = application.NewToolService(
		app.Upstream,
		metricsCollector,
		logger,
		application.ToolServiceConfig{
			FailureMode: failureMode,
			MaxBytes:    cfg.Output.MaxBytes,
			Truncation:  truncation,
			FieldSets:   fieldSets,
		},
	)

	// Initialize health service
	app.HealthService = application.NewHealthService(
		app.ToolService,
		app.Upstream.Endpoint(),
		cfg.Upstream.APIKey != "",
	)

	return app, nil
}

// InitHTTP builds the HTTP surface. The TLS wrapper is created when enabled.
func (a *App) InitHTTP() error {
	var opts []httpAdapter.Option
	if a.Metrics != nil {
		opts = append(opts, httpAdapter.WithMetrics(a.Config.Metrics.Path, a.Metrics.Handler(), a.Metrics.Middleware))
	}

	a.HTTPServer = httpAdapter.NewServer(
		a.Config.Server,
		a.ToolService,
		a.HealthService,
		a.Logger.With("component", "http"),
		opts...,
	)

	if a.Config.TLS.Enabled {
		tlsServer, err := tlsAdapter.NewServer(a.Config.TLS, a.Config.Server, a.HTTPServer.Handler(), a.Logger)
		if err != nil {
			return fmt.Errorf("initializing TLS: %w", err)
		}
		a.TLSServer = tlsServer
	}

	return nil
}

// Start serves HTTP until the server is shut down.
func (a *App) Start(ctx context.Context) error {
	if a.HTTPServer == nil {
		if err := a.InitHTTP(); err != nil {
			return err
		}
	}

	if a.TLSServer != nil {
		if err := a.TLSServer.ManageCertificates(ctx); err != nil {
			return err
		}
		return a.TLSServer.ListenAndServe()
	}
	return a.HTTPServer.Start()
}

// RunStdio serves the tool catalog over MCP on stdin and stdout.
func (a *App) RunStdio(ctx context.Context) error {
	server, err := mcpAdapter.NewServer(a.ToolService, a.Version, a.Logger.With("component", "mcp"))
	if err != nil {
		return fmt.Errorf("initializing MCP server: %w", err)
	}
	return server.Run(ctx)
}

// Shutdown gracefully shuts down all components.
func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Info("shutting down application")

	var errs []error
	if a.TLSServer != nil {
		if err := a.TLSServer.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error("TLS server shutdown error", "error", err)
			errs = append(errs, err)
		}
	}
	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error("HTTP server shutdown error", "error", err)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
