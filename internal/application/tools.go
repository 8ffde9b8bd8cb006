package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jobrunner/mlitdpf/internal/domain"
	"github.com/jobrunner/mlitdpf/internal/ports/output"
	"github.com/jobrunner/mlitdpf/internal/query"
)

// FailureMode controls what callers see when the upstream exchange fails.
type FailureMode string

// Failure modes.
const (
	// FailureStrict returns the transport error to the caller.
	FailureStrict FailureMode = "strict"

	// FailureCompat logs the failure and returns an empty result.
	FailureCompat FailureMode = "compat"
)

// ParseFailureMode parses a configured failure mode.
func ParseFailureMode(s string) (FailureMode, error) {
	switch FailureMode(s) {
	case FailureStrict, FailureCompat:
		return FailureMode(s), nil
	case "":
		return FailureStrict, nil
	default:
		return "", fmt.Errorf("unknown failure mode %q", s)
	}
}

// Tool call statuses reported to metrics.
const (
	statusOK        = "ok"
	statusInvalid   = "invalid"
	statusUnknown   = "unknown"
	statusUpstream  = "upstream_error"
	statusSwallowed = "upstream_error_swallowed"
	statusInternal  = "error"
)

// ToolServiceConfig holds configuration for the tool service.
type ToolServiceConfig struct {
	FailureMode FailureMode
	MaxBytes    int
	Truncation  TruncationStrategy
	FieldSets   domain.FieldSets // nil selects the defaults
}

type toolHandler func(ctx context.Context, args *arguments) (*domain.QueryResult, error)

// ToolService runs catalog operations against the upstream service.
type ToolService struct {
	builder     *query.Builder
	upstream    output.Upstream
	limiter     *SizeLimiter
	failureMode FailureMode
	metrics     output.MetricsCollector
	logger      *slog.Logger

	tools    []domain.ToolDefinition
	defs     map[string]domain.ToolDefinition
	handlers map[string]toolHandler
}

// NewToolService creates a new tool service.
func NewToolService(
	upstream output.Upstream,
	metrics output.MetricsCollector,
	logger *slog.Logger,
	cfg ToolServiceConfig,
) *ToolService {
	if cfg.FailureMode == "" {
		cfg.FailureMode = FailureStrict
	}
	if metrics == nil {
		metrics = &output.NoOpMetrics{}
	}

	s := &ToolService{
		builder:     query.NewBuilder(cfg.FieldSets),
		upstream:    upstream,
		limiter:     NewSizeLimiter(cfg.MaxBytes, cfg.Truncation),
		failureMode: cfg.FailureMode,
		metrics:     metrics,
		logger:      logger,
		tools:       Catalog(),
		defs:        make(map[string]domain.ToolDefinition),
	}

	s.handlers = map[string]toolHandler{
		ToolSearch:              s.search,
		ToolSearchRectangle:     s.searchRectangle,
		ToolSearchPointDistance: s.searchPointDistance,
		ToolSearchAttribute:     s.searchAttribute,
		ToolDataSummary:         s.dataSummary,
		ToolData:                s.data,
		ToolDataCatalogSummary:  s.catalogSummary,
		ToolPrefectureData:      s.prefectures,
		ToolMunicipalityData:    s.municipalities,
	}
	for _, def := range s.tools {
		s.defs[def.Name] = def
	}

	return s
}

// ListTools returns the tool catalog in advertisement order.
func (s *ToolService) ListTools() []domain.ToolDefinition {
	out := make([]domain.ToolDefinition, len(s.tools))
	copy(out, s.tools)
	return out
}

// CallTool runs the named tool and returns its compact JSON output.
func (s *ToolService) CallTool(ctx context.Context, name string, raw map[string]interface{}) (string, error) {
	start := time.Now()

	def, ok := s.defs[name]
	handler := s.handlers[name]
	if !ok || handler == nil {
		s.metrics.IncToolCall(statusUnknown, statusUnknown)
		s.logger.Warn("unknown tool", "tool", name)
		return "", &domain.UnknownOperationError{Name: name}
	}

	out, status, err := s.run(ctx, def, handler, raw)

	duration := time.Since(start)
	s.metrics.IncToolCall(name, status)
	s.metrics.ObserveToolDuration(name, duration)

	if err != nil {
		level := slog.LevelError
		if status == statusInvalid {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "tool call failed",
			"tool", name,
			"status", status,
			"duration", duration,
			"error", err,
		)
		return "", err
	}

	s.logger.Info("tool call completed",
		"tool", name,
		"status", status,
		"records", out.Records,
		"bytes", len(out.Text),
		"truncated", out.Truncated,
		"duration", duration,
	)
	return out.Text, nil
}

func (s *ToolService) run(
	ctx context.Context,
	def domain.ToolDefinition,
	handler toolHandler,
	raw map[string]interface{},
) (LimitedOutput, string, error) {
	args, err := newArguments(def, raw)
	if err != nil {
		return LimitedOutput{}, statusInvalid, err
	}

	status := statusOK
	result, err := handler(ctx, args)
	if err != nil {
		var terr *domain.TransportError
		switch {
		case errors.As(err, &terr) && s.failureMode == FailureCompat:
			s.logger.Error("upstream failure returned as empty result",
				"tool", def.Name,
				"operation", terr.Operation,
				"kind", terr.Kind,
				"status_code", terr.StatusCode,
				"error", terr.Err,
			)
			status = statusSwallowed
			result = nil
		case errors.As(err, &terr):
			return LimitedOutput{}, statusUpstream, err
		case errors.Is(err, domain.ErrInvalidInput):
			return LimitedOutput{}, statusInvalid, err
		default:
			return LimitedOutput{}, statusInternal, err
		}
	}

	var records []domain.Record
	if result != nil {
		records = result.Records
	}

	out, err := s.limiter.Limit(records)
	if err != nil {
		return LimitedOutput{}, statusInternal, fmt.Errorf("serializing %s result: %w", def.Name, err)
	}
	if out.Truncated {
		s.metrics.IncTruncation(string(s.limiter.Strategy()))
		s.logger.Warn("output truncated",
			"tool", def.Name,
			"strategy", s.limiter.Strategy(),
			"max_bytes", s.limiter.MaxBytes(),
			"kept", out.Records,
			"dropped", out.Dropped,
		)
	}
	return out, status, nil
}

// execute sends one document and normalizes the value found at path below
// the operation key.
func (s *ToolService) execute(ctx context.Context, doc query.Document, path ...string) (*domain.QueryResult, error) {
	text := doc.String()
	op := doc.Operation()

	s.logger.Debug("sending upstream query",
		"operation", op,
		"query_hash", query.Fingerprint(text),
		"query_bytes", len(text),
	)

	raw, err := s.upstream.Execute(ctx, output.UpstreamRequest{Operation: op, Query: text})
	if err != nil {
		return nil, err
	}

	records, err := Normalize(raw, path...)
	if err != nil {
		return nil, &domain.TransportError{Operation: op, Kind: domain.TransportDecode, Err: err}
	}
	return &domain.QueryResult{Operation: op, Records: records}, nil
}

func (s *ToolService) runSearch(ctx context.Context, p domain.SearchParameters) (*domain.QueryResult, error) {
	doc, err := s.builder.Search(p)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, doc, "searchResults")
}

func (s *ToolService) search(ctx context.Context, args *arguments) (*domain.QueryResult, error) {
	p, err := args.search()
	if err != nil {
		return nil, err
	}
	return s.runSearch(ctx, p)
}

func (s *ToolService) searchRectangle(ctx context.Context, args *arguments) (*domain.QueryResult, error) {
	p, err := args.search()
	if err != nil {
		return nil, err
	}

	var coords [4]float64
	for i, name := range []string{argTopLeftLat, argTopLeftLon, argBottomRightLat, argBottomRightLon} {
		if coords[i], err = args.number(name); err != nil {
			return nil, err
		}
	}
	p.Location = domain.Rectangle{
		TopLeft:     domain.Point{Lat: coords[0], Lon: coords[1]},
		BottomRight: domain.Point{Lat: coords[2], Lon: coords[3]},
	}

	if p.Attributes, err = args.attributes(); err != nil {
		return nil, err
	}
	return s.runSearch(ctx, p)
}

func (s *ToolService) searchPointDistance(ctx context.Context, args *arguments) (*domain.QueryResult, error) {
	p, err := args.search()
	if err != nil {
		return nil, err
	}

	var lat, lon, distance float64
	if lat, err = args.number(argLat); err != nil {
		return nil, err
	}
	if lon, err = args.number(argLon); err != nil {
		return nil, err
	}
	if distance, err = args.number(argDistance); err != nil {
		return nil, err
	}
	p.Location = domain.PointDistance{
		Center:   domain.Point{Lat: lat, Lon: lon},
		Distance: distance,
	}

	if p.Attributes, err = args.attributes(); err != nil {
		return nil, err
	}
	return s.runSearch(ctx, p)
}

func (s *ToolService) searchAttribute(ctx context.Context, args *arguments) (*domain.QueryResult, error) {
	p, err := args.search()
	if err != nil {
		return nil, err
	}
	if p.Attributes, err = args.attributes(); err != nil {
		return nil, err
	}
	return s.runSearch(ctx, p)
}

func (s *ToolService) dataSummary(ctx context.Context, args *arguments) (*domain.QueryResult, error) {
	p, err := args.lookupParams()
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, s.builder.DataSummary(p))
}

func (s *ToolService) data(ctx context.Context, args *arguments) (*domain.QueryResult, error) {
	p, err := args.lookupParams()
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, s.builder.Data(p))
}

func (s *ToolService) catalogSummary(ctx context.Context, _ *arguments) (*domain.QueryResult, error) {
	return s.execute(ctx, s.builder.CatalogSummary())
}

func (s *ToolService) prefectures(ctx context.Context, _ *arguments) (*domain.QueryResult, error) {
	return s.execute(ctx, s.builder.Prefectures())
}

func (s *ToolService) municipalities(ctx context.Context, args *arguments) (*domain.QueryResult, error) {
	codes, err := args.codes(argPrefCode)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, s.builder.Municipalities(codes))
}
