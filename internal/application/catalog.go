package application

import "github.com/jobrunner/mlitdpf/internal/domain"

// Tool names.
const (
	ToolSearch              = "search"
	ToolSearchRectangle     = "search_by_location_rectangle"
	ToolSearchPointDistance = "search_by_location_point_distance"
	ToolSearchAttribute     = "search_by_attribute"
	ToolDataSummary         = "get_data_summary"
	ToolData                = "get_data"
	ToolDataCatalogSummary  = "get_data_catalog_summary"
	ToolPrefectureData      = "get_prefecture_data"
	ToolMunicipalityData    = "get_municipality_data"
)

// Argument names. Location searches share the prefecture code argument with
// the attribute search.
const (
	argTerm              = "term"
	argFirst             = "first"
	argSize              = "size"
	argSortAttributeName = "sort_attribute_name"
	argSortOrder         = "sort_order"
	argMinimal           = "minimal"

	argPrefectureCode   = "prefecture_code"
	argMunicipalityCode = "municipality_code"
	argAddress          = "address"
	argCatalogID        = "catalog_id"
	argDatasetID        = "dataset_id"
	argDataID           = "data_id"
	argPrefCode         = "pref_code"

	argTopLeftLat     = "location_rectangle_top_left_lat"
	argTopLeftLon     = "location_rectangle_top_left_lon"
	argBottomRightLat = "location_rectangle_bottom_right_lat"
	argBottomRightLon = "location_rectangle_bottom_right_lon"

	argLat      = "location_lat"
	argLon      = "location_lon"
	argDistance = "location_distance"
)

func searchParams(extra ...domain.ParamSpec) []domain.ParamSpec {
	params := []domain.ParamSpec{
		{Name: argTerm, Type: domain.ParamString, Description: "Search keyword"},
		{Name: argFirst, Type: domain.ParamInteger, Description: "Start position (1-based)", Default: domain.DefaultFirst},
		{Name: argSize, Type: domain.ParamInteger, Description: "Number of results (max 500)", Default: domain.DefaultSize},
		{Name: argSortAttributeName, Type: domain.ParamString, Description: "Attribute to sort by"},
		{Name: argSortOrder, Type: domain.ParamString, Description: "Sort order"},
	}
	params = append(params, extra...)
	return append(params, domain.ParamSpec{
		Name: argMinimal, Type: domain.ParamBoolean, Description: "Request the minimal field set only", Default: false,
	})
}

func stringParam(name, desc string, required bool) domain.ParamSpec {
	return domain.ParamSpec{Name: name, Type: domain.ParamString, Description: desc, Required: required}
}

func numberParam(name, desc string) domain.ParamSpec {
	return domain.ParamSpec{Name: name, Type: domain.ParamNumber, Description: desc, Required: true}
}

// Catalog returns the tool definitions in advertisement order.
func Catalog() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        ToolSearch,
			Title:       "Search",
			Description: "Run a keyword search over the data platform",
			Params:      searchParams(),
		},
		{
			Name:        ToolSearchRectangle,
			Title:       "Search by rectangle",
			Description: "Search for data inside a bounding rectangle",
			Params: searchParams(
				stringParam(argPrefectureCode, "Prefecture code", false),
				numberParam(argTopLeftLat, "Top left latitude"),
				numberParam(argTopLeftLon, "Top left longitude"),
				numberParam(argBottomRightLat, "Bottom right latitude"),
				numberParam(argBottomRightLon, "Bottom right longitude"),
			),
		},
		{
			Name:        ToolSearchPointDistance,
			Title:       "Search by point and distance",
			Description: "Search for data within a distance of a point",
			Params: searchParams(
				stringParam(argPrefectureCode, "Prefecture code", false),
				numberParam(argLat, "Latitude"),
				numberParam(argLon, "Longitude"),
				numberParam(argDistance, "Distance"),
			),
		},
		{
			Name:        ToolSearchAttribute,
			Title:       "Search by attribute",
			Description: "Search for data matching attribute values",
			Params: searchParams(
				stringParam(argPrefectureCode, "Prefecture code", false),
				stringParam(argMunicipalityCode, "Municipality code", false),
				stringParam(argAddress, "Address", false),
				stringParam(argCatalogID, "Catalog ID", false),
				stringParam(argDatasetID, "Dataset ID", false),
			),
		},
		{
			Name:        ToolDataSummary,
			Title:       "Data summary",
			Description: "Fetch summary information of one data item",
			Params: []domain.ParamSpec{
				stringParam(argDatasetID, "Dataset ID", true),
				stringParam(argDataID, "Data ID", true),
			},
		},
		{
			Name:        ToolData,
			Title:       "Data detail",
			Description: "Fetch detailed information of one data item",
			Params: []domain.ParamSpec{
				stringParam(argDatasetID, "Dataset ID", true),
				stringParam(argDataID, "Data ID", true),
			},
		},
		{
			Name:        ToolDataCatalogSummary,
			Title:       "Data catalog summary",
			Description: "List the data catalogs",
		},
		{
			Name:        ToolPrefectureData,
			Title:       "Prefectures",
			Description: "List the prefectures",
		},
		{
			Name:        ToolMunicipalityData,
			Title:       "Municipalities",
			Description: "List the municipalities of one or more prefectures",
			Params: []domain.ParamSpec{
				stringParam(argPrefCode, "Prefecture code, or a comma separated list of codes", true),
			},
		},
	}
}
