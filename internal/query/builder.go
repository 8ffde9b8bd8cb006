package query

import (
	"strings"

	"github.com/jobrunner/mlitdpf/internal/domain"
)

// Upstream root fields.
const (
	OpSearch         = "search"
	OpData           = "data"
	OpDataCatalog    = "dataCatalog"
	OpPrefecture     = "prefecture"
	OpMunicipalities = "municipalities"
)

// Builder assembles upstream documents using a configured set of field
// presets.
type Builder struct {
	fields domain.FieldSets
}

// NewBuilder creates a builder. A nil field-set map selects the defaults.
func NewBuilder(fields domain.FieldSets) *Builder {
	if fields == nil {
		fields = domain.DefaultFieldSets()
	}
	return &Builder{fields: fields}
}

// FieldSets returns the presets in use.
func (b *Builder) FieldSets() domain.FieldSets {
	return b.fields
}

// Search builds a search document. The location filter is validated
// before any part of the document is assembled.
func (b *Builder) Search(p domain.SearchParameters) (Document, error) {
	if err := p.Validate(); err != nil {
		return Document{}, err
	}

	pg := domain.NewPagination(p.Pagination.First, p.Pagination.Size)

	var args []Argument
	if strings.TrimSpace(p.Term) != "" {
		args = append(args, Argument{Name: "term", Value: String(p.Term)})
	}
	args = append(args,
		Argument{Name: "first", Value: Int(pg.First)},
		Argument{Name: "size", Value: Int(pg.Size)},
	)
	if strings.TrimSpace(p.Sort.AttributeName) != "" {
		args = append(args, Argument{Name: "sortAttributeName", Value: String(p.Sort.AttributeName)})
	}
	if strings.TrimSpace(p.Sort.Order) != "" {
		args = append(args, Argument{Name: "sortOrder", Value: String(p.Sort.Order)})
	}
	if v, ok := LocationFilter(p.Location); ok {
		args = append(args, Argument{Name: "locationFilter", Value: v})
	}
	if v, ok := AttributeFilter(p.Attributes); ok {
		args = append(args, Argument{Name: "attributeFilter", Value: v})
	}

	preset := domain.FieldSetBasic
	if p.MinimalFields {
		preset = domain.FieldSetMinimal
	}

	return Document{Root: Field{
		Name:      OpSearch,
		Arguments: args,
		Selections: []Field{{
			Name:       "searchResults",
			Selections: Leaves(b.fields.Get(preset).Fields),
		}},
	}}, nil
}

// DataSummary builds a single-item lookup requesting the basic fields.
func (b *Builder) DataSummary(p domain.LookupParameters) Document {
	return b.lookup(p, domain.FieldSetBasic)
}

// Data builds a single-item lookup requesting the detailed fields.
func (b *Builder) Data(p domain.LookupParameters) Document {
	return b.lookup(p, domain.FieldSetDetailed)
}

func (b *Builder) lookup(p domain.LookupParameters, preset string) Document {
	return Document{Root: Field{
		Name: OpData,
		Arguments: []Argument{
			{Name: "dataSetID", Value: String(p.DatasetID)},
			{Name: "dataID", Value: String(p.DataID)},
		},
		Selections: []Field{
			{Name: "totalNumber"},
			{Name: "getDataResults", Selections: Leaves(b.fields.Get(preset).Fields)},
		},
	}}
}

// CatalogSummary lists every data catalog.
func (b *Builder) CatalogSummary() Document {
	return Document{Root: Field{
		Name:       OpDataCatalog,
		Arguments:  []Argument{{Name: "IDs", Value: Null{}}},
		Selections: Leaves(b.fields.Get(domain.FieldSetCatalog).Fields),
	}}
}

// Prefectures lists every prefecture.
func (b *Builder) Prefectures() Document {
	return Document{Root: Field{
		Name:       OpPrefecture,
		Selections: Leaves(b.fields.Get(domain.FieldSetPrefecture).Fields),
	}}
}

// Municipalities lists municipalities of the given prefecture codes.
func (b *Builder) Municipalities(prefCodes []string) Document {
	codes := make(List, len(prefCodes))
	for i, c := range prefCodes {
		codes[i] = String(c)
	}
	return Document{Root: Field{
		Name:       OpMunicipalities,
		Arguments:  []Argument{{Name: "prefCodes", Value: codes}},
		Selections: Leaves(b.fields.Get(domain.FieldSetMunicipality).Fields),
	}}
}
