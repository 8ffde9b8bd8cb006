package domain

import "strings"

// Upstream attribute names usable in an attribute filter, listed in the
// priority order in which conditions are combined.
const (
	AttrPrefectureCode   = "DPF:prefecture_code"
	AttrMunicipalityCode = "DPF:municipality_code"
	AttrAddress          = "DPF:address"
	AttrCatalogID        = "DPF:catalog_id"
	AttrDatasetID        = "DPF:dataset_id"
)

// AttributeCondition is one equality candidate for an attribute filter.
type AttributeCondition struct {
	Name  string
	Value string
}

// IsEmpty reports whether the value is empty after trimming.
func (c AttributeCondition) IsEmpty() bool {
	return strings.TrimSpace(c.Value) == ""
}

// Sort orders the upstream result set.
type Sort struct {
	AttributeName string
	Order         string
}

// SearchParameters are the fully decoded inputs of one search call.
type SearchParameters struct {
	Term          string
	Pagination    Pagination
	Sort          Sort
	MinimalFields bool
	Location      LocationFilter       // nil for no location constraint
	Attributes    []AttributeCondition // candidates in caller priority order
}

// Validate checks the location filter, the only strictly validated input.
func (p SearchParameters) Validate() error {
	if p.Location == nil {
		return nil
	}
	return p.Location.Validate()
}

// LookupParameters identify a single item in a dataset.
type LookupParameters struct {
	DatasetID string
	DataID    string
}
