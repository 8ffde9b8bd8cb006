// Package main provides the entry point for the MLIT data platform tool server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jobrunner/mlitdpf/internal/adapters/mcp"
	"github.com/jobrunner/mlitdpf/internal/app"
	"github.com/jobrunner/mlitdpf/internal/config"
	"github.com/jobrunner/mlitdpf/internal/logging"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd(config.New()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli carries state shared by all subcommands.
type cli struct {
	v       *viper.Viper
	cfgFile string
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	c := &cli{v: v}

	root := &cobra.Command{
		Use:   "mlitdpf",
		Short: "MLIT Data Platform tool server",
		Long: `mlitdpf exposes the MLIT data platform GraphQL API as a catalog of tools.

Without a subcommand it speaks the Model Context Protocol on stdin and stdout.

Tools:
  - Keyword, rectangle, point-distance and attribute search
  - Data summaries and full data records
  - Catalog, prefecture and municipality listings`,
		SilenceUsage: true,
		RunE:         c.runStdio,
	}

	// Global flags
	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "config file (default: ./config.yaml)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "json", "log format (json, text, console)")
	pf.String("endpoint", "", "upstream GraphQL endpoint")
	pf.String("failure-mode", "strict", "upstream failure handling (strict, compat)")
	pf.Int("max-bytes", 0, "maximum output size in bytes")
	pf.String("truncation", "records", "truncation strategy (records, text)")

	// Bind flags to viper
	_ = v.BindPFlag("logging.level", pf.Lookup("log-level"))
	_ = v.BindPFlag("logging.format", pf.Lookup("log-format"))
	_ = v.BindPFlag("upstream.endpoint", pf.Lookup("endpoint"))
	_ = v.BindPFlag("upstream.failure_mode", pf.Lookup("failure-mode"))
	_ = v.BindPFlag("output.max_bytes", pf.Lookup("max-bytes"))
	_ = v.BindPFlag("output.truncation", pf.Lookup("truncation"))

	root.AddCommand(
		c.stdioCmd(),
		c.serveCmd(),
		c.callCmd(),
		c.toolsCmd(),
		versionCmd(),
	)
	return root
}

func (c *cli) stdioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Serve the tool catalog over MCP on stdin and stdout",
		Args:  cobra.NoArgs,
		RunE:  c.runStdio,
	}
}

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tool catalog over HTTP",
		Args:  cobra.NoArgs,
		RunE:  c.runServe,
	}

	// Server flags
	f := cmd.Flags()
	f.String("host", "0.0.0.0", "server host")
	f.Int("port", 8080, "server port")
	f.Bool("tls", false, "enable TLS")
	f.StringSlice("tls-domains", nil, "TLS domains")
	f.String("tls-email", "", "TLS email for Let's Encrypt")
	f.StringSlice("cors", nil, "allowed CORS origins (e.g., https://example.com,*.sub.domain.tld)")
	f.Bool("metrics", true, "expose Prometheus metrics")

	_ = c.v.BindPFlag("server.host", f.Lookup("host"))
	_ = c.v.BindPFlag("server.port", f.Lookup("port"))
	_ = c.v.BindPFlag("tls.enabled", f.Lookup("tls"))
	_ = c.v.BindPFlag("tls.domains", f.Lookup("tls-domains"))
	_ = c.v.BindPFlag("tls.email", f.Lookup("tls-email"))
	_ = c.v.BindPFlag("server.cors.allowed_origins", f.Lookup("cors"))
	_ = c.v.BindPFlag("metrics.enabled", f.Lookup("metrics"))

	return cmd
}

func (c *cli) callCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call <tool> [json-arguments]",
		Short: "Run one tool and print its output",
		Example: `  mlitdpf call search '{"term":"bridge","size":5}'
  mlitdpf call get_municipality_data '{"pref_code":"13"}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: c.runCall,
	}
}

func (c *cli) toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tool catalog",
		Args:  cobra.NoArgs,
		RunE:  c.runTools,
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mlitdpf %s\n", version)
			fmt.Fprintf(out, "  Commit:     %s\n", commit)
			fmt.Fprintf(out, "  Build Date: %s\n", buildDate)
		},
	}
}

// build loads configuration and wires the application. Logs go to logOut.
func (c *cli) build(logOut io.Writer) (*app.App, error) {
	cfg, err := config.Load(c.v, c.cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format}, logOut)
	if err != nil {
		return nil, fmt.Errorf("configuring logging: %w", err)
	}
	slog.SetDefault(logger)

	a, err := app.New(cfg, logger, version)
	if err != nil {
		return nil, fmt.Errorf("initializing application: %w", err)
	}
	return a, nil
}

func (c *cli) runStdio(cmd *cobra.Command, _ []string) error {
	// Stdout carries the protocol.
	a, err := c.build(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Info("starting MCP stdio server", "version", version, "endpoint", a.Upstream.Endpoint())
	if err := a.RunStdio(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (c *cli) runServe(cmd *cobra.Command, _ []string) error {
	a, err := c.build(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := a.InitHTTP(); err != nil {
		return err
	}
	cfg := a.Config

	a.Logger.Info("starting mlitdpf",
		"version", version,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"endpoint", a.Upstream.Endpoint(),
		"failure_mode", cfg.Upstream.FailureMode,
	)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	// Start server in background
	serverErr := make(chan error, 1)
	go func() {
		if err := a.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal or server error
	var runErr error
	select {
	case sig := <-sigChan:
		a.Logger.Info("received shutdown signal", "signal", sig)
	case runErr = <-serverErr:
		a.Logger.Error("server error", "error", runErr)
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := a.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("shutdown error", "error", err)
		return errors.Join(runErr, err)
	}

	a.Logger.Info("server stopped")
	return runErr
}

func (c *cli) runCall(cmd *cobra.Command, args []string) error {
	a, err := c.build(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	toolArgs := map[string]interface{}{}
	if len(args) == 2 && strings.TrimSpace(args[1]) != "" {
		dec := json.NewDecoder(strings.NewReader(args[1]))
		dec.UseNumber()
		if err := dec.Decode(&toolArgs); err != nil {
			return fmt.Errorf("arguments must be a JSON object: %w", err)
		}
	}

	out, err := a.ToolService.CallTool(cmd.Context(), args[0], toolArgs)
	if err != nil {
		return errors.New(mcp.ErrorText(args[0], err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func (c *cli) runTools(cmd *cobra.Command, _ []string) error {
	a, err := c.build(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	type toolJSON struct {
		Name        string      `json:"name"`
		Title       string      `json:"title"`
		Description string      `json:"description"`
		InputSchema interface{} `json:"input_schema"`
	}

	defs := a.ToolService.ListTools()
	tools := make([]toolJSON, 0, len(defs))
	for _, def := range defs {
		schema, err := mcp.InputSchema(def)
		if err != nil {
			return err
		}
		tools = append(tools, toolJSON{
			Name:        def.Name,
			Title:       def.Title,
			Description: def.Description,
			InputSchema: schema,
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(tools)
}
