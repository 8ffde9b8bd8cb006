package domain

import (
	"fmt"
	"regexp"
	"sort"
)

// Field-set preset names.
const (
	FieldSetMinimal      = "minimal"
	FieldSetBasic        = "basic"
	FieldSetDetailed     = "detailed"
	FieldSetCatalog      = "catalog"
	FieldSetPrefecture   = "prefecture"
	FieldSetMunicipality = "municipality"
)

var fieldNamePattern = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)

// FieldSet is a named, fixed list of upstream fields.
type FieldSet struct {
	Name   string
	Fields []string
}

// FieldSets maps preset names to field sets.
type FieldSets map[string]FieldSet

// DefaultFieldSets returns the built-in presets.
func DefaultFieldSets() FieldSets {
	return FieldSets{
		FieldSetMinimal: {
			Name:   FieldSetMinimal,
			Fields: []string{"id", "title", "lat", "lon", "dataset_id"},
		},
		FieldSetBasic: {
			Name:   FieldSetBasic,
			Fields: []string{"id", "title", "lat", "lon", "year", "dataset_id", "catalog_id"},
		},
		FieldSetDetailed: {
			Name: FieldSetDetailed,
			Fields: []string{
				"id", "title", "lat", "lon", "year", "theme",
				"metadata", "dataset_id", "catalog_id", "hasThumbnail",
			},
		},
		FieldSetCatalog: {
			Name:   FieldSetCatalog,
			Fields: []string{"id", "title"},
		},
		FieldSetPrefecture: {
			Name:   FieldSetPrefecture,
			Fields: []string{"code", "name"},
		},
		FieldSetMunicipality: {
			Name:   FieldSetMunicipality,
			Fields: []string{"code", "prefecture_code", "name"},
		},
	}
}

// Get returns the named field set. It panics on a name that was never
// registered, which is a programming error.
func (s FieldSets) Get(name string) FieldSet {
	fs, ok := s[name]
	if !ok {
		panic(fmt.Sprintf("domain: unknown field set %q", name))
	}
	return fs
}

// WithOverrides returns a copy where the given presets are replaced.
// Only known preset names are accepted and every field must be a plain
// identifier so it can be placed into a selection set verbatim.
func (s FieldSets) WithOverrides(overrides map[string][]string) (FieldSets, error) {
	out := make(FieldSets, len(s))
	for k, v := range s {
		out[k] = FieldSet{Name: v.Name, Fields: append([]string(nil), v.Fields...)}
	}

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fields := overrides[name]
		if _, ok := out[name]; !ok {
			return nil, &ValidationError{
				Field:      "field_sets",
				Value:      name,
				Constraint: "known preset",
				Message:    fmt.Sprintf("unknown field set %q", name),
			}
		}
		if len(fields) == 0 {
			return nil, &ValidationError{
				Field:      "field_sets." + name,
				Constraint: "non-empty",
				Message:    fmt.Sprintf("field set %q must list at least one field", name),
			}
		}
		for _, f := range fields {
			if !fieldNamePattern.MatchString(f) {
				return nil, &ValidationError{
					Field:      "field_sets." + name,
					Value:      f,
					Constraint: fieldNamePattern.String(),
					Message:    fmt.Sprintf("invalid field name %q in field set %q", f, name),
				}
			}
		}
		out[name] = FieldSet{Name: name, Fields: append([]string(nil), fields...)}
	}
	return out, nil
}
