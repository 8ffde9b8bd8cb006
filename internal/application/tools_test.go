package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jobrunner/mlitdpf/internal/domain"
)

func upstreamFailure(op string) error {
	return &domain.TransportError{
		Operation:  op,
		Kind:       domain.TransportStatus,
		StatusCode: 500,
		Err:        errors.New("500 Internal Server Error"),
	}
}

func TestCallToolSearchRoundTrip(t *testing.T) {
	up := &mockUpstream{results: map[string]json.RawMessage{
		"search": json.RawMessage(`{"searchResults":[{"id":"1","title":"x"}]}`),
	}}
	service := newTestService(up, ToolServiceConfig{})

	got, err := service.CallTool(context.Background(), ToolSearch, map[string]interface{}{"term": "x"})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}
	if want := `[{"id":"1","title":"x"}]`; got != want {
		t.Errorf("CallTool() = %s, want %s", got, want)
	}

	wantQuery := `query { search(term: "x", first: 1, size: 50) { searchResults { id title lat lon year dataset_id catalog_id } } }`
	if q := up.lastQuery(); q != wantQuery {
		t.Errorf("query =\n%s\nwant\n%s", q, wantQuery)
	}
	if calls := up.calls(); len(calls) != 1 || calls[0].Operation != "search" {
		t.Errorf("calls = %+v, want one search request", calls)
	}
}

func TestCallToolUpstreamFailure(t *testing.T) {
	tests := []struct {
		name    string
		mode    FailureMode
		want    string
		wantErr bool
	}{
		{name: "strict returns transport error", mode: FailureStrict, wantErr: true},
		{name: "compat returns empty result", mode: FailureCompat, want: "[]"},
		{name: "empty mode is strict", mode: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &mockUpstream{err: upstreamFailure("search")}
			service := newTestService(up, ToolServiceConfig{FailureMode: tt.mode})

			got, err := service.CallTool(context.Background(), ToolSearch, map[string]interface{}{"term": "x"})
			if tt.wantErr {
				var terr *domain.TransportError
				if !errors.As(err, &terr) {
					t.Fatalf("error = %v, want *domain.TransportError", err)
				}
				if terr.StatusCode != 500 {
					t.Errorf("StatusCode = %d, want 500", terr.StatusCode)
				}
				if !errors.Is(err, domain.ErrUpstream) {
					t.Error("error should wrap ErrUpstream")
				}
				return
			}
			if err != nil {
				t.Fatalf("CallTool() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CallTool() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCallToolUnknownTool(t *testing.T) {
	up := &mockUpstream{}
	service := newTestService(up, ToolServiceConfig{})

	_, err := service.CallTool(context.Background(), "no_such_tool", nil)
	if !errors.Is(err, domain.ErrUnknownOperation) {
		t.Fatalf("error = %v, want ErrUnknownOperation", err)
	}
	if !strings.Contains(err.Error(), "no_such_tool") {
		t.Errorf("error = %q, want tool name", err.Error())
	}
	if n := len(up.calls()); n != 0 {
		t.Errorf("upstream calls = %d, want 0", n)
	}
}

func TestCallToolValidation(t *testing.T) {
	rect := func(tlLat, tlLon, brLat, brLon float64) map[string]interface{} {
		return map[string]interface{}{
			argTopLeftLat:     tlLat,
			argTopLeftLon:     tlLon,
			argBottomRightLat: brLat,
			argBottomRightLon: brLon,
		}
	}

	tests := []struct {
		name     string
		tool     string
		args     map[string]interface{}
		wantKind error
		wantMsg  string
	}{
		{
			name:     "rectangle top left latitude out of range",
			tool:     ToolSearchRectangle,
			args:     rect(95, 139, 35, 140),
			wantKind: domain.ErrInvalidCoordinate,
			wantMsg:  "top left latitude",
		},
		{
			name:     "rectangle bottom right longitude out of range",
			tool:     ToolSearchRectangle,
			args:     rect(36, 139, 35, -181),
			wantKind: domain.ErrInvalidCoordinate,
			wantMsg:  "bottom right longitude",
		},
		{
			name:     "point longitude out of range",
			tool:     ToolSearchPointDistance,
			args:     map[string]interface{}{argLat: 0.0, argLon: 200.0, argDistance: 10.0},
			wantKind: domain.ErrInvalidCoordinate,
			wantMsg:  "longitude",
		},
		{
			name:     "negative distance",
			tool:     ToolSearchPointDistance,
			args:     map[string]interface{}{argLat: 35.0, argLon: 139.0, argDistance: -1.0},
			wantKind: domain.ErrInvalidInput,
			wantMsg:  "distance",
		},
		{
			name:     "point without distance",
			tool:     ToolSearchPointDistance,
			args:     map[string]interface{}{argLat: 35.0, argLon: 139.0},
			wantKind: domain.ErrMissingArgument,
			wantMsg:  "location_distance",
		},
		{
			name:     "rectangle missing one corner",
			tool:     ToolSearchRectangle,
			args:     map[string]interface{}{argTopLeftLat: 36.0, argTopLeftLon: 139.0},
			wantKind: domain.ErrMissingArgument,
			wantMsg:  "location_rectangle_bottom_right_lat",
		},
		{
			name:     "coordinate given as string",
			tool:     ToolSearchPointDistance,
			args:     map[string]interface{}{argLat: "35", argLon: 139.0, argDistance: 1.0},
			wantKind: domain.ErrInvalidInput,
			wantMsg:  "location_lat",
		},
		{
			name:     "unexpected argument",
			tool:     ToolSearch,
			args:     map[string]interface{}{"term": "x", "colour": "red"},
			wantKind: domain.ErrUnexpectedArgument,
			wantMsg:  "colour",
		},
		{
			name:     "term of wrong type",
			tool:     ToolSearch,
			args:     map[string]interface{}{"term": 42.0},
			wantKind: domain.ErrInvalidInput,
			wantMsg:  "term",
		},
		{
			name:     "missing data id",
			tool:     ToolData,
			args:     map[string]interface{}{argDatasetID: "ds"},
			wantKind: domain.ErrMissingArgument,
			wantMsg:  "data_id",
		},
		{
			name:     "blank prefecture code list",
			tool:     ToolMunicipalityData,
			args:     map[string]interface{}{argPrefCode: " , "},
			wantKind: domain.ErrInvalidInput,
			wantMsg:  "pref_code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &mockUpstream{}
			service := newTestService(up, ToolServiceConfig{})

			_, err := service.CallTool(context.Background(), tt.tool, tt.args)
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("error = %v, want %v", err, tt.wantKind)
			}
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %T, want *domain.ValidationError", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want mention of %q", err.Error(), tt.wantMsg)
			}
			if n := len(up.calls()); n != 0 {
				t.Errorf("upstream calls = %d, want 0", n)
			}
		})
	}
}

func TestCallToolPaginationCoercion(t *testing.T) {
	tests := []struct {
		name  string
		args  map[string]interface{}
		first int
		size  int
	}{
		{name: "defaults", args: map[string]interface{}{}, first: 1, size: 50},
		{name: "size above max", args: map[string]interface{}{"size": 9999.0}, first: 1, size: 500},
		{name: "size zero", args: map[string]interface{}{"size": 0.0}, first: 1, size: 1},
		{name: "size negative", args: map[string]interface{}{"size": -5.0}, first: 1, size: 1},
		{name: "size fractional", args: map[string]interface{}{"size": 2.5}, first: 1, size: 50},
		{name: "size string", args: map[string]interface{}{"size": "10"}, first: 1, size: 50},
		{name: "first zero", args: map[string]interface{}{"first": 0.0}, first: 1, size: 50},
		{name: "first fractional", args: map[string]interface{}{"first": 3.7}, first: 1, size: 50},
		{name: "valid values", args: map[string]interface{}{"first": 11.0, "size": 10.0}, first: 11, size: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &mockUpstream{}
			service := newTestService(up, ToolServiceConfig{})

			if _, err := service.CallTool(context.Background(), ToolSearch, tt.args); err != nil {
				t.Fatalf("CallTool() error = %v", err)
			}
			want := fmt.Sprintf("first: %d, size: %d", tt.first, tt.size)
			if q := up.lastQuery(); !strings.Contains(q, want) {
				t.Errorf("query = %s, want %q", q, want)
			}
		})
	}
}

func TestCallToolAttributeFilter(t *testing.T) {
	tests := []struct {
		name    string
		tool    string
		args    map[string]interface{}
		want    string
		wantNot string
	}{
		{
			name:    "no conditions",
			tool:    ToolSearchAttribute,
			args:    map[string]interface{}{"prefecture_code": "  "},
			wantNot: "attributeFilter",
		},
		{
			name:    "single condition is not wrapped",
			tool:    ToolSearchAttribute,
			args:    map[string]interface{}{"prefecture_code": "13"},
			want:    `attributeFilter: {attributeName: "DPF:prefecture_code", is: "13"}`,
			wantNot: "AND",
		},
		{
			name: "three conditions keep priority order",
			tool: ToolSearchAttribute,
			args: map[string]interface{}{
				"dataset_id":      "ds",
				"catalog_id":      "cat",
				"prefecture_code": "13",
			},
			want: `attributeFilter: {AND: [` +
				`{attributeName: "DPF:prefecture_code", is: "13"}, ` +
				`{attributeName: "DPF:catalog_id", is: "cat"}, ` +
				`{attributeName: "DPF:dataset_id", is: "ds"}]}`,
		},
		{
			name: "location search with prefecture",
			tool: ToolSearchPointDistance,
			args: map[string]interface{}{
				"prefecture_code": "13",
				argLat:            35.68,
				argLon:            139.76,
				argDistance:       500.0,
			},
			want: `locationFilter: {geoDistance: {lat: 35.68, lon: 139.76, distance: 500}}, ` +
				`attributeFilter: {attributeName: "DPF:prefecture_code", is: "13"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &mockUpstream{}
			service := newTestService(up, ToolServiceConfig{})

			if _, err := service.CallTool(context.Background(), tt.tool, tt.args); err != nil {
				t.Fatalf("CallTool() error = %v", err)
			}
			q := up.lastQuery()
			if tt.want != "" && !strings.Contains(q, tt.want) {
				t.Errorf("query =\n%s\nwant substring\n%s", q, tt.want)
			}
			if tt.wantNot != "" && strings.Contains(q, tt.wantNot) {
				t.Errorf("query = %s, must not contain %q", q, tt.wantNot)
			}
		})
	}
}

func TestCallToolRectangle(t *testing.T) {
	up := &mockUpstream{}
	service := newTestService(up, ToolServiceConfig{})

	_, err := service.CallTool(context.Background(), ToolSearchRectangle, map[string]interface{}{
		argTopLeftLat:     json.Number("35.8"),
		argTopLeftLon:     139.5,
		argBottomRightLat: 35.5,
		argBottomRightLon: 140.0,
		"minimal":         true,
	})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}

	want := `locationFilter: {rectangle: {topLeft: {lat: 35.8, lon: 139.5}, bottomRight: {lat: 35.5, lon: 140}}}) ` +
		`{ searchResults { id title lat lon dataset_id } }`
	if q := up.lastQuery(); !strings.Contains(q, want) {
		t.Errorf("query =\n%s\nwant substring\n%s", q, want)
	}
}

func TestCallToolLookups(t *testing.T) {
	tests := []struct {
		name      string
		tool      string
		args      map[string]interface{}
		result    string
		wantQuery string
		want      string
	}{
		{
			name:      "data summary object becomes one record",
			tool:      ToolDataSummary,
			args:      map[string]interface{}{argDatasetID: "ds", argDataID: "1"},
			result:    `{"totalNumber":1,"getDataResults":[{"id":"1"}]}`,
			wantQuery: `data(dataSetID: "ds", dataID: "1") { totalNumber getDataResults { id title lat lon year dataset_id catalog_id } }`,
			want:      `[{"totalNumber":1,"getDataResults":[{"id":"1"}]}]`,
		},
		{
			name:      "data detail",
			tool:      ToolData,
			args:      map[string]interface{}{argDatasetID: "ds", argDataID: "1"},
			result:    `null`,
			wantQuery: `getDataResults { id title lat lon year theme metadata dataset_id catalog_id hasThumbnail }`,
			want:      `[]`,
		},
		{
			name:      "catalog summary",
			tool:      ToolDataCatalogSummary,
			result:    `[{"id":"c1","title":"A"},{"id":"c2","title":"B"}]`,
			wantQuery: `query { dataCatalog(IDs: null) { id title } }`,
			want:      `[{"id":"c1","title":"A"},{"id":"c2","title":"B"}]`,
		},
		{
			name:      "prefectures",
			tool:      ToolPrefectureData,
			result:    `[ {"code": "13", "name": "東京都"} ]`,
			wantQuery: `query { prefecture { code name } }`,
			want:      `[{"code":"13","name":"東京都"}]`,
		},
		{
			name:      "municipalities from comma list",
			tool:      ToolMunicipalityData,
			args:      map[string]interface{}{argPrefCode: "13, 14"},
			result:    `[]`,
			wantQuery: `municipalities(prefCodes: ["13", "14"])`,
			want:      `[]`,
		},
		{
			name:      "municipalities from array",
			tool:      ToolMunicipalityData,
			args:      map[string]interface{}{argPrefCode: []interface{}{"01"}},
			wantQuery: `municipalities(prefCodes: ["01"]) { code prefecture_code name }`,
			want:      `[]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := map[string]json.RawMessage{}
			if tt.result != "" {
				results["data"] = json.RawMessage(tt.result)
				results["dataCatalog"] = json.RawMessage(tt.result)
				results["prefecture"] = json.RawMessage(tt.result)
				results["municipalities"] = json.RawMessage(tt.result)
			}
			up := &mockUpstream{results: results}
			service := newTestService(up, ToolServiceConfig{})

			got, err := service.CallTool(context.Background(), tt.tool, tt.args)
			if err != nil {
				t.Fatalf("CallTool() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CallTool() = %s, want %s", got, tt.want)
			}
			if q := up.lastQuery(); !strings.Contains(q, tt.wantQuery) {
				t.Errorf("query =\n%s\nwant substring\n%s", q, tt.wantQuery)
			}
		})
	}
}

func TestCallToolMalformedResult(t *testing.T) {
	up := &mockUpstream{results: map[string]json.RawMessage{
		"search": json.RawMessage(`{"searchResults":"oops"}`),
	}}

	strict := newTestService(up, ToolServiceConfig{})
	_, err := strict.CallTool(context.Background(), ToolSearch, nil)
	var terr *domain.TransportError
	if !errors.As(err, &terr) || terr.Kind != domain.TransportDecode {
		t.Fatalf("error = %v, want decode TransportError", err)
	}

	compat := newTestService(up, ToolServiceConfig{FailureMode: FailureCompat})
	got, err := compat.CallTool(context.Background(), ToolSearch, nil)
	if err != nil || got != "[]" {
		t.Errorf("compat CallTool() = %q, %v; want [] and no error", got, err)
	}
}

func TestCallToolTruncation(t *testing.T) {
	up := &mockUpstream{results: map[string]json.RawMessage{
		"search": json.RawMessage(`{"searchResults":[{"id":"1"},{"id":"2"},{"id":"3"}]}`),
	}}
	metrics := &mockMetrics{}
	service := NewToolService(up, metrics, discardLogger(), ToolServiceConfig{MaxBytes: 24})

	got, err := service.CallTool(context.Background(), ToolSearch, nil)
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}
	if want := `[{"id":"1"},{"id":"2"}]`; got != want {
		t.Errorf("CallTool() = %s, want %s", got, want)
	}
	if metrics.truncations != 1 {
		t.Errorf("truncations = %d, want 1", metrics.truncations)
	}
	if metrics.toolCalls["search/ok"] != 1 {
		t.Errorf("toolCalls = %v, want search/ok once", metrics.toolCalls)
	}
}

func TestListTools(t *testing.T) {
	service := newTestService(&mockUpstream{}, ToolServiceConfig{})

	tools := service.ListTools()
	want := []string{
		ToolSearch, ToolSearchRectangle, ToolSearchPointDistance, ToolSearchAttribute,
		ToolDataSummary, ToolData, ToolDataCatalogSummary, ToolPrefectureData, ToolMunicipalityData,
	}
	if len(tools) != len(want) {
		t.Fatalf("len(tools) = %d, want %d", len(tools), len(want))
	}
	for i, name := range want {
		if tools[i].Name != name {
			t.Errorf("tools[%d] = %s, want %s", i, tools[i].Name, name)
		}
	}

	tools[0].Name = "changed"
	if service.ListTools()[0].Name != ToolSearch {
		t.Error("ListTools should return a copy")
	}
}

func TestParseFailureMode(t *testing.T) {
	tests := []struct {
		in      string
		want    FailureMode
		wantErr bool
	}{
		{in: "strict", want: FailureStrict},
		{in: "compat", want: FailureCompat},
		{in: "", want: FailureStrict},
		{in: "lenient", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFailureMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFailureMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFailureMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
