package application

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/jobrunner/mlitdpf/internal/domain"
)

// arguments gives typed access to the decoded JSON arguments of one call.
type arguments struct {
	def domain.ToolDefinition
	raw map[string]interface{}
}

// newArguments checks the argument names against the tool declaration.
// Undeclared names are reported in sorted order so the message is stable.
func newArguments(def domain.ToolDefinition, raw map[string]interface{}) (*arguments, error) {
	var unknown []string
	for name := range raw {
		if _, ok := def.Param(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, domain.UnexpectedArgument(unknown[0])
	}

	for _, name := range def.RequiredParams() {
		if v, ok := raw[name]; !ok || v == nil {
			return nil, domain.MissingArgument(name)
		}
	}

	return &arguments{def: def, raw: raw}, nil
}

func (a *arguments) lookup(name string) (interface{}, bool) {
	v, ok := a.raw[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// str returns a string argument, or "" when absent.
func (a *arguments) str(name string) (string, error) {
	v, ok := a.lookup(name)
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", domain.InvalidArgumentType(name, "string", v)
	}
	return s, nil
}

// boolean returns a boolean argument, or false when absent.
func (a *arguments) boolean(name string) (bool, error) {
	v, ok := a.lookup(name)
	if !ok {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, domain.InvalidArgumentType(name, "boolean", v)
	}
	return b, nil
}

// number returns a finite numeric argument.
func (a *arguments) number(name string) (float64, error) {
	v, ok := a.lookup(name)
	if !ok {
		return 0, domain.MissingArgument(name)
	}

	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			return 0, domain.InvalidArgumentType(name, "number", v)
		}
		f = parsed
	default:
		return 0, domain.InvalidArgumentType(name, "number", v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, domain.InvalidArgumentType(name, "finite number", v)
	}
	return f, nil
}

// pagination coerces first and size. Bad values are corrected, never rejected.
func (a *arguments) pagination() domain.Pagination {
	first, firstOK := a.lookup(argFirst)
	size, sizeOK := a.lookup(argSize)
	return domain.Pagination{
		First: domain.CoerceFirst(first, firstOK),
		Size:  domain.CoerceSize(size, sizeOK),
	}
}

// codes returns a list of codes given as one string, a comma separated
// string or an array of strings. Blank entries are dropped.
func (a *arguments) codes(name string) ([]string, error) {
	v, ok := a.lookup(name)
	if !ok {
		return nil, domain.MissingArgument(name)
	}

	var parts []string
	switch c := v.(type) {
	case string:
		parts = strings.Split(c, ",")
	case []string:
		parts = c
	case []interface{}:
		for _, item := range c {
			s, ok := item.(string)
			if !ok {
				return nil, domain.InvalidArgumentType(name, "string or list of strings", v)
			}
			parts = append(parts, s)
		}
	default:
		return nil, domain.InvalidArgumentType(name, "string or list of strings", v)
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, &domain.ValidationError{
			Field:      name,
			Value:      v,
			Constraint: "at least one code",
			Message:    "Invalid " + name + " value: at least one code is required",
		}
	}
	return out, nil
}

// search decodes the arguments shared by every search tool.
func (a *arguments) search() (domain.SearchParameters, error) {
	var p domain.SearchParameters
	var err error

	if p.Term, err = a.str(argTerm); err != nil {
		return p, err
	}
	if p.Sort.AttributeName, err = a.str(argSortAttributeName); err != nil {
		return p, err
	}
	if p.Sort.Order, err = a.str(argSortOrder); err != nil {
		return p, err
	}
	if p.MinimalFields, err = a.boolean(argMinimal); err != nil {
		return p, err
	}
	p.Pagination = a.pagination()
	return p, nil
}

// attributes collects the attribute conditions the tool declares, in the
// fixed priority order prefecture, municipality, address, catalog, dataset.
func (a *arguments) attributes() ([]domain.AttributeCondition, error) {
	order := []struct {
		arg, attr string
	}{
		{argPrefectureCode, domain.AttrPrefectureCode},
		{argMunicipalityCode, domain.AttrMunicipalityCode},
		{argAddress, domain.AttrAddress},
		{argCatalogID, domain.AttrCatalogID},
		{argDatasetID, domain.AttrDatasetID},
	}

	var conds []domain.AttributeCondition
	for _, o := range order {
		if _, declared := a.def.Param(o.arg); !declared {
			continue
		}
		v, err := a.str(o.arg)
		if err != nil {
			return nil, err
		}
		conds = append(conds, domain.AttributeCondition{Name: o.attr, Value: v})
	}
	return conds, nil
}

func (a *arguments) lookupParams() (domain.LookupParameters, error) {
	datasetID, err := a.str(argDatasetID)
	if err != nil {
		return domain.LookupParameters{}, err
	}
	dataID, err := a.str(argDataID)
	if err != nil {
		return domain.LookupParameters{}, err
	}
	return domain.LookupParameters{DatasetID: datasetID, DataID: dataID}, nil
}
