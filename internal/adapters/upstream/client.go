// Package upstream implements the transport to the data platform's GraphQL
// endpoint.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/jobrunner/mlitdpf/internal/domain"
	"github.com/jobrunner/mlitdpf/internal/ports/output"
	"github.com/jobrunner/mlitdpf/internal/query"
)

// Defaults applied by NewClient.
const (
	DefaultEndpoint     = "https://www.mlit-data.jp/api/v1/"
	DefaultAPIKeyHeader = "apikey"
	DefaultTimeout      = 30 * time.Second
	DefaultMaxBodyBytes = 32 << 20
)

const outcomeOK = "ok"

// Config holds upstream client configuration.
type Config struct {
	Endpoint         string
	APIKey           string
	APIKeyHeader     string // default: apikey
	Timeout          time.Duration
	CompressRequests bool  // gzip the request body
	MaxBodyBytes     int64 // bound on the decoded response body
	UserAgent        string

	// HTTPClient replaces the default client. Its Timeout is left as is.
	HTTPClient *http.Client
}

// Client implements output.Upstream over HTTP POST. It holds no per-call
// state and is safe for concurrent use.
type Client struct {
	client       *http.Client
	endpoint     string
	apiKey       string
	apiKeyHeader string
	compress     bool
	maxBodyBytes int64
	userAgent    string
	metrics      output.MetricsCollector
	logger       *slog.Logger
}

// NewClient creates a new upstream client.
func NewClient(cfg Config, metrics output.MetricsCollector, logger *slog.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.APIKeyHeader == "" {
		cfg.APIKeyHeader = DefaultAPIKeyHeader
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if metrics == nil {
		metrics = &output.NoOpMetrics{}
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		client:       client,
		endpoint:     cfg.Endpoint,
		apiKey:       cfg.APIKey,
		apiKeyHeader: cfg.APIKeyHeader,
		compress:     cfg.CompressRequests,
		maxBodyBytes: cfg.MaxBodyBytes,
		userAgent:    cfg.UserAgent,
		metrics:      metrics,
		logger:       logger,
	}
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

type requestBody struct {
	Query string `json:"query"`
}

type graphQLError struct {
	Message string        `json:"message"`
	Path    []interface{} `json:"path,omitempty"`
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// Execute implements output.Upstream.
func (c *Client) Execute(ctx context.Context, req output.UpstreamRequest) (json.RawMessage, error) {
	start := time.Now()
	hash := query.Fingerprint(req.Query)

	result, status, err := c.exchange(ctx, req)

	outcome := outcomeOK
	var terr *domain.TransportError
	if errors.As(err, &terr) {
		outcome = string(terr.Kind)
	}
	duration := time.Since(start)
	c.metrics.IncUpstreamRequest(req.Operation, outcome)
	c.metrics.ObserveUpstreamDuration(req.Operation, duration)

	c.logger.Debug("upstream exchange",
		"operation", req.Operation,
		"query_hash", hash,
		"status_code", status,
		"outcome", outcome,
		"duration", duration,
	)
	return result, err
}

func (c *Client) exchange(ctx context.Context, req output.UpstreamRequest) (json.RawMessage, int, error) {
	fail := func(kind domain.TransportKind, status int, err error) (json.RawMessage, int, error) {
		return nil, status, &domain.TransportError{
			Operation:  req.Operation,
			Kind:       kind,
			StatusCode: status,
			Err:        err,
		}
	}

	payload, err := c.encode(req.Query)
	if err != nil {
		return fail(domain.TransportNetwork, 0, fmt.Errorf("encoding request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fail(domain.TransportNetwork, 0, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Accept-Encoding", acceptEncoding)
	if c.compress {
		httpReq.Header.Set("Content-Encoding", "gzip")
	}
	if c.apiKey != "" {
		httpReq.Header.Set(c.apiKeyHeader, c.apiKey)
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fail(domain.TransportNetwork, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := c.readBody(resp)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(domain.TransportStatus, resp.StatusCode,
			fmt.Errorf("%s: %s", resp.Status, snippet(body)))
	}
	if err != nil {
		return fail(domain.TransportDecode, resp.StatusCode, err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fail(domain.TransportDecode, resp.StatusCode, fmt.Errorf("response is not JSON: %w", err))
	}

	if len(env.Errors) > 0 {
		c.logger.Warn("upstream reported errors",
			"operation", req.Operation,
			"errors", len(env.Errors),
			"first_error", env.Errors[0].Message,
		)
	}

	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || data[0] != '{' {
		if len(env.Errors) > 0 {
			return fail(domain.TransportGraphQL, resp.StatusCode, joinErrors(env.Errors))
		}
		return fail(domain.TransportEnvelope, resp.StatusCode, errors.New("response has no data object"))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fail(domain.TransportDecode, resp.StatusCode, fmt.Errorf("decoding data object: %w", err))
	}

	value, ok := fields[req.Operation]
	isNull := !ok || bytes.Equal(bytes.TrimSpace(value), []byte("null"))
	switch {
	case isNull && len(env.Errors) > 0:
		return fail(domain.TransportGraphQL, resp.StatusCode, joinErrors(env.Errors))
	case !ok:
		return fail(domain.TransportMissingOperation, resp.StatusCode,
			fmt.Errorf("data has no %q key", req.Operation))
	}
	return value, resp.StatusCode, nil
}

func (c *Client) encode(text string) ([]byte, error) {
	payload, err := json.Marshal(requestBody{Query: text})
	if err != nil {
		return nil, err
	}
	if !c.compress {
		return payload, nil
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// readBody decodes and reads the response body up to the configured bound.
func (c *Client) readBody(resp *http.Response) ([]byte, error) {
	r, err := decodeBody(resp.Header.Get("Content-Encoding"), resp.Body)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	body, err := io.ReadAll(io.LimitReader(r, c.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(body)) > c.maxBodyBytes {
		return nil, fmt.Errorf("response body exceeds %d bytes", c.maxBodyBytes)
	}
	return body, nil
}

func joinErrors(errs []graphQLError) error {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return errors.New(strings.Join(msgs, "; "))
}

// snippet shortens a response body for error messages.
func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return strings.ToValidUTF8(s[:limit], "") + "..."
	}
	return s
}
