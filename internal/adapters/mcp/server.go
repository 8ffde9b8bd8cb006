// Package mcp exposes the tool catalog as a Model Context Protocol server.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jobrunner/mlitdpf/internal/domain"
	"github.com/jobrunner/mlitdpf/internal/ports/input"
)

// ServerName is the implementation name announced during initialization.
const ServerName = "MLIT-DATA-PLATFORM-mcp"

// Server runs the tool catalog over MCP.
type Server struct {
	server *mcp.Server
	tools  input.ToolService
	logger *slog.Logger
}

// NewServer registers every catalog tool on a new MCP server.
func NewServer(tools input.ToolService, version string, logger *slog.Logger) (*Server, error) {
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil),
		tools:  tools,
		logger: logger,
	}

	for _, def := range tools.ListTools() {
		schema, err := InputSchema(def)
		if err != nil {
			return nil, fmt.Errorf("building schema for %s: %w", def.Name, err)
		}
		s.server.AddTool(&mcp.Tool{
			Name:        def.Name,
			Title:       def.Title,
			Description: def.Description,
			InputSchema: schema,
			Annotations: &mcp.ToolAnnotations{
				Title:         def.Title,
				ReadOnlyHint:  true,
				OpenWorldHint: ptr(true),
			},
		}, s.handler(def.Name))
	}

	return s, nil
}

// MCPServer returns the underlying SDK server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}

// Run serves MCP over stdin and stdout until ctx is done or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server on stdio", "name", ServerName)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// handler adapts one tool to the SDK handler signature. Failures are
// reported as tool results with IsError set so the model sees the message.
func (s *Server) handler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var raw json.RawMessage
		if req != nil && req.Params != nil {
			raw = req.Params.Arguments
		}

		args, err := decodeArguments(raw)
		if err != nil {
			return errorResult(name, err), nil
		}

		out, err := s.tools.CallTool(ctx, name, args)
		if err != nil {
			return errorResult(name, err), nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: out}},
		}, nil
	}
}

func decodeArguments(raw json.RawMessage) (map[string]interface{}, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return map[string]interface{}{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var args map[string]interface{}
	if err := dec.Decode(&args); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	return args, nil
}

// ErrorText formats a failed call the way clients display it.
func ErrorText(name string, err error) string {
	var unknown *domain.UnknownOperationError
	if errors.As(err, &unknown) {
		return unknown.Error()
	}
	return fmt.Sprintf("Error executing %s: %v", name, err)
}

func errorResult(name string, err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: ErrorText(name, err)}},
		IsError: true,
	}
}

// InputSchema converts a tool definition into its JSON Schema.
func InputSchema(def domain.ToolDefinition) (*jsonschema.Schema, error) {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(def.Params)),
		Required:   def.RequiredParams(),
	}

	for _, p := range def.Params {
		prop := &jsonschema.Schema{
			Type:        string(p.Type),
			Description: p.Description,
		}
		if p.Default != nil {
			b, err := json.Marshal(p.Default)
			if err != nil {
				return nil, fmt.Errorf("default for %s: %w", p.Name, err)
			}
			prop.Default = b
		}
		schema.Properties[p.Name] = prop
	}

	return schema, nil
}

func ptr[T any](v T) *T {
	return &v
}
