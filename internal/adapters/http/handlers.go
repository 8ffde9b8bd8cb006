package http //nolint:revive // package name conflicts with stdlib but is acceptable in this context

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jobrunner/mlitdpf/internal/domain"
)

// handleListTools returns the tool catalog.
func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	defs := s.tools.ListTools()

	tools := make([]map[string]interface{}, len(defs))
	for i, def := range defs {
		tools[i] = formatTool(def)
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"tools": tools,
		"count": len(tools),
	})
}

// handleCallTool runs one tool with the JSON object in the request body.
func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	args, err := decodeArguments(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Error executing %s: %v", name, err))
		return
	}

	out, err := s.tools.CallTool(r.Context(), name, args)
	if err != nil {
		s.handleToolError(w, name, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, out)
}

// decodeArguments reads a JSON object. An empty body means no arguments.
func decodeArguments(body io.Reader) (map[string]interface{}, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading arguments: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]interface{}{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var args map[string]interface{}
	if err := dec.Decode(&args); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	return args, nil
}

// handleToolError maps tool failures to HTTP status codes.
func (s *Server) handleToolError(w http.ResponseWriter, name string, err error) {
	var unknown *domain.UnknownOperationError
	if errors.As(err, &unknown) {
		s.writeError(w, http.StatusNotFound, unknown.Error())
		return
	}

	message := fmt.Sprintf("Error executing %s: %v", name, err)

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		s.writeError(w, http.StatusBadRequest, message)
		return
	}

	var transportErr *domain.TransportError
	if errors.As(err, &transportErr) {
		s.writeError(w, http.StatusBadGateway, message)
		return
	}

	s.logger.Error("tool error", "tool", name, "error", err)
	s.writeError(w, http.StatusInternalServerError, message)
}

// handleHealth returns detailed health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	details := s.health.GetHealthDetails(r.Context())

	status := http.StatusOK
	if !details.Healthy {
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, map[string]interface{}{
		"status":     boolToStatus(details.Healthy),
		"ready":      details.Ready,
		"tools":      details.Tools,
		"components": details.Components,
	})
}

// handleLiveness returns liveness status.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	if s.health.IsHealthy(r.Context()) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	} else {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
	}
}

// handleReadiness returns readiness status.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if s.health.IsReady(r.Context()) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	} else {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
	}
}

// handleOpenAPI returns the OpenAPI document.
func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	doc, err := getOpenAPIJSON()
	if err != nil {
		s.logger.Error("failed to get OpenAPI document", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to load OpenAPI document")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(doc)
}

// formatTool formats a tool definition for JSON output.
func formatTool(def domain.ToolDefinition) map[string]interface{} {
	params := make([]map[string]interface{}, len(def.Params))
	for i, p := range def.Params {
		params[i] = map[string]interface{}{
			"name":        p.Name,
			"type":        p.Type,
			"description": p.Description,
			"required":    p.Required,
		}
		if p.Default != nil {
			params[i]["default"] = p.Default
		}
	}

	return map[string]interface{}{
		"name":        def.Name,
		"title":       def.Title,
		"description": def.Description,
		"parameters":  params,
	}
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func boolToStatus(b bool) string {
	if b {
		return "ok"
	}
	return "unhealthy"
}
