package dbc

import (
	"errors"
	"iter"
	"reflect"
	"slices"
	"testing"
)

func tokens(s ...string) iter.Seq[string] {
	return slices.Values(s)
}

func TestLayout(t *testing.T) {
	got := Layout(tokens(
		"  junk before  ",
		"Table   f1_fuel  ",
		"Field respondent_id trailing junk",
		"Field\treport_year",
		"Fieldless",
		"notatable",
		"",
		"Table f1_respondent_id",
		"Field respondent_id",
		"Field respondent_name",
	))

	want := map[string][]string{
		"f1_fuel":          {"respondent_id", "report_year", "Fieldless"},
		"f1_respondent_id": {"respondent_id", "respondent_name"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Layout() = %v, want %v", got, want)
	}
}

func TestReconstruct(t *testing.T) {
	catalog := tokens(
		"Table f1_respondent_id",
		"Field respondent_id",
		"Field respondent_name",
		"Table f1_fuel",
		"Field respondent_id",
		"Field report_year",
		"Field fuel_quantity",
	)
	physical := map[string][]string{
		"f1_respondent_id": {"RESPONDENT", "RESPONDEN2", NullFlags},
		"f1_fuel":          {"RESPONDENT", "REPORT_YEA", "FUEL_QUANT"},
	}

	m, err := Reconstruct(catalog, physical)
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}

	if got := m.Tables(); !reflect.DeepEqual(got, []string{"f1_fuel", "f1_respondent_id"}) {
		t.Errorf("Tables() = %v", got)
	}

	fuel := m["f1_fuel"]
	wantFuel := []Field{
		{Name: "respondent_id", Short: "RESPONDENT"},
		{Name: "report_year", Short: "REPORT_YEA"},
		{Name: "fuel_quantity", Short: "FUEL_QUANT"},
	}
	if !reflect.DeepEqual(fuel.Fields, wantFuel) {
		t.Errorf("f1_fuel fields = %v, want %v", fuel.Fields, wantFuel)
	}

	if n := len(m["f1_respondent_id"].Fields); n != 2 {
		t.Errorf("f1_respondent_id has %d fields, want 2 (null flags excluded)", n)
	}

	if name, ok := m.Rename("f1_fuel", "FUEL_QUANT"); !ok || name != "fuel_quantity" {
		t.Errorf("Rename() = %q, %v", name, ok)
	}
	if _, ok := m.Rename("f1_fuel", "NOPE"); ok {
		t.Error("Rename() found unknown field")
	}
	if _, ok := m.Rename("f1_steam", "RESPONDENT"); ok {
		t.Error("Rename() found unknown table")
	}

	renames := m.Renames("f1_fuel")
	if renames["REPORT_YEA"] != "report_year" {
		t.Errorf("Renames()[REPORT_YEA] = %q", renames["REPORT_YEA"])
	}
}

func TestReconstruct_PrefixInvariant(t *testing.T) {
	catalog := tokens("Table t", "Field respondent_id", "Field x")
	m, err := Reconstruct(catalog, map[string][]string{"t": {"RESPONDENT", "X"}})
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}
	for _, e := range m {
		for _, f := range e.Fields {
			if prefix(f.Short) != prefix(f.Name) {
				t.Errorf("pair %q/%q breaks prefix invariant", f.Short, f.Name)
			}
		}
	}
}

func TestReconstruct_Errors(t *testing.T) {
	tests := []struct {
		name     string
		catalog  []string
		physical map[string][]string
		wantErr  error
	}{
		{
			name:     "table missing from catalog",
			catalog:  []string{"Table f1_fuel", "Field respondent_id"},
			physical: map[string][]string{"f1_steam": {"RESPONDENT"}},
			wantErr:  ErrTableNotInCatalog,
		},
		{
			name:     "catalog has fewer fields",
			catalog:  []string{"Table f1_fuel", "Field respondent_id"},
			physical: map[string][]string{"f1_fuel": {"RESPONDENT", "REPORT_YEA"}},
			wantErr:  ErrFieldCountMismatch,
		},
		{
			name:     "catalog has more fields",
			catalog:  []string{"Table f1_fuel", "Field respondent_id", "Field report_year"},
			physical: map[string][]string{"f1_fuel": {"RESPONDENT"}},
			wantErr:  ErrFieldCountMismatch,
		},
		{
			name:     "fields out of order",
			catalog:  []string{"Table f1_fuel", "Field report_year", "Field respondent_id"},
			physical: map[string][]string{"f1_fuel": {"RESPONDENT", "REPORT_YEA"}},
			wantErr:  ErrPrefixMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reconstruct(tokens(tt.catalog...), tt.physical)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Reconstruct() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReconstruct_CountMismatchDetails(t *testing.T) {
	_, err := Reconstruct(
		tokens("Table f1_fuel", "Field respondent_id"),
		map[string][]string{"f1_fuel": {"RESPONDENT", "REPORT_YEA", NullFlags}},
	)

	var cm *CountMismatchError
	if !errors.As(err, &cm) {
		t.Fatalf("error = %v, want *CountMismatchError", err)
	}
	if cm.Catalog != 1 || cm.Physical != 2 {
		t.Errorf("Catalog=%d Physical=%d, want 1 and 2", cm.Catalog, cm.Physical)
	}
}
