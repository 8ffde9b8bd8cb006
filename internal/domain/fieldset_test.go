package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestDefaultFieldSets(t *testing.T) {
	fs := DefaultFieldSets()

	want := map[string][]string{
		FieldSetMinimal:      {"id", "title", "lat", "lon", "dataset_id"},
		FieldSetBasic:        {"id", "title", "lat", "lon", "year", "dataset_id", "catalog_id"},
		FieldSetCatalog:      {"id", "title"},
		FieldSetPrefecture:   {"code", "name"},
		FieldSetMunicipality: {"code", "prefecture_code", "name"},
	}
	for name, fields := range want {
		if got := fs.Get(name).Fields; !reflect.DeepEqual(got, fields) {
			t.Errorf("%s fields = %v, want %v", name, got, fields)
		}
	}
	if n := len(fs.Get(FieldSetDetailed).Fields); n != 10 {
		t.Errorf("detailed has %d fields, want 10", n)
	}
}

func TestFieldSetsWithOverrides(t *testing.T) {
	base := DefaultFieldSets()

	out, err := base.WithOverrides(map[string][]string{
		FieldSetMinimal: {"id", "title"},
	})
	if err != nil {
		t.Fatalf("WithOverrides() error = %v", err)
	}
	if got := out.Get(FieldSetMinimal).Fields; !reflect.DeepEqual(got, []string{"id", "title"}) {
		t.Errorf("minimal = %v", got)
	}
	if got := base.Get(FieldSetMinimal).Fields; len(got) != 5 {
		t.Errorf("base preset was modified: %v", got)
	}
}

func TestFieldSetsWithOverridesRejectsBadInput(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string][]string
	}{
		{name: "unknown preset", overrides: map[string][]string{"everything": {"id"}}},
		{name: "empty list", overrides: map[string][]string{FieldSetBasic: {}}},
		{name: "invalid identifier", overrides: map[string][]string{FieldSetBasic: {"id } evil {"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DefaultFieldSets().WithOverrides(tt.overrides)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("WithOverrides() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestFieldSetsGetPanicsOnUnknownName(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	DefaultFieldSets().Get("nope")
}
