package schema

import (
	"errors"
	"reflect"
	"testing"

	"github.com/JonMunkholm/ferc1/internal/dbc"
	"github.com/JonMunkholm/ferc1/internal/dbf"
)

func testInput() Input {
	return Input{
		Tables: []string{"f1_fuel", "f1_respondent_id", "f1_email"},
		Fields: map[string][]dbf.Field{
			"f1_respondent_id": {
				{Name: "RESPONDENT", Type: 'N', Length: 5},
				{Name: "RESPONDEN2", Type: 'C', Length: 40},
				{Name: dbc.NullFlags, Type: '0', Length: 1},
			},
			"f1_fuel": {
				{Name: "RESPONDENT", Type: 'N', Length: 5},
				{Name: "REPORT_YEA", Type: 'N', Length: 4},
				{Name: "PLANT_NAME", Type: 'C', Length: 30},
				{Name: "FUEL_QUANT", Type: 'N', Length: 12, Decimals: 2},
				{Name: "REPORT_PRD", Type: 'N', Length: 2},
			},
			"f1_email": {
				{Name: "EMAIL_ADDR", Type: 'C', Length: 60},
				{Name: "UPDATED", Type: 'T', Length: 8},
			},
		},
		Catalog: dbc.Map{
			"f1_respondent_id": {Table: "f1_respondent_id", Fields: []dbc.Field{
				{Name: "respondent_id", Short: "RESPONDENT"},
				{Name: "respondent_name", Short: "RESPONDEN2"},
			}},
			"f1_fuel": {Table: "f1_fuel", Fields: []dbc.Field{
				{Name: "respondent_id", Short: "RESPONDENT"},
				{Name: "report_year", Short: "REPORT_YEA"},
				{Name: "plant_name", Short: "PLANT_NAME"},
				{Name: "fuel_quantity", Short: "FUEL_QUANT"},
				{Name: "report_prd", Short: "REPORT_PRD"},
			}},
			"f1_email": {Table: "f1_email", Fields: []dbc.Field{
				{Name: "email_address", Short: "EMAIL_ADDR"},
				{Name: "updated", Short: "UPDATED"},
			}},
		},
		TypeMap:  DefaultTypeMap(),
		Exclude:  ColumnSet{"f1_fuel.report_prd": {}},
		Registry: DefaultRegistry(),
	}
}

func TestSynthesize(t *testing.T) {
	tables, err := Synthesize(testInput())
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	var names []string
	for _, tbl := range tables {
		names = append(names, tbl.Name)
	}
	if want := []string{"f1_respondent_id", "f1_email", "f1_fuel"}; !reflect.DeepEqual(names, want) {
		t.Errorf("order = %v, want %v", names, want)
	}

	reg := tables[0]
	if !reflect.DeepEqual(reg.PrimaryKey, []string{"respondent_id"}) || !reg.ReplaceOnConflict {
		t.Errorf("registry key = %v replace=%v", reg.PrimaryKey, reg.ReplaceOnConflict)
	}
	if len(reg.ForeignKeys) != 0 {
		t.Errorf("registry has foreign keys: %v", reg.ForeignKeys)
	}
	if c, _ := reg.Column("respondent_id"); c.Nullable {
		t.Error("registry key is nullable")
	}
	if _, ok := reg.Column(dbc.NullFlags); ok {
		t.Error("null flags column kept")
	}

	fuel := tables[2]
	wantCols := []Column{
		{Name: "respondent_id", Type: Real, Nullable: true},
		{Name: "report_year", Type: Real, Nullable: true},
		{Name: "plant_name", Type: Text, Length: 30, Nullable: true},
		{Name: "fuel_quantity", Type: Real, Nullable: true},
	}
	if !reflect.DeepEqual(fuel.Columns, wantCols) {
		t.Errorf("fuel columns = %+v, want %+v", fuel.Columns, wantCols)
	}
	wantFK := []ForeignKey{{Columns: []string{"respondent_id"}, RefTable: "f1_respondent_id", RefColumns: []string{"respondent_id"}}}
	if !reflect.DeepEqual(fuel.ForeignKeys, wantFK) {
		t.Errorf("fuel foreign keys = %+v", fuel.ForeignKeys)
	}
	if len(fuel.PrimaryKey) != 0 {
		t.Errorf("fuel primary key = %v", fuel.PrimaryKey)
	}

	email := tables[1]
	if len(email.ForeignKeys) != 0 {
		t.Errorf("email has foreign keys: %v", email.ForeignKeys)
	}
	if c, _ := email.Column("updated"); c.Type != Timestamp {
		t.Errorf("updated type = %v, want timestamp", c.Type)
	}
}

func TestSynthesize_Deterministic(t *testing.T) {
	a, err := Synthesize(testInput())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Synthesize(testInput())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("two syntheses from the same input differ")
	}
}

func TestSynthesize_NoRegistryNoForeignKey(t *testing.T) {
	in := testInput()
	in.Tables = []string{"f1_fuel"}

	tables, err := Synthesize(in)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if len(tables[0].ForeignKeys) != 0 {
		t.Errorf("foreign key to absent registry: %v", tables[0].ForeignKeys)
	}
}

func TestSynthesize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Input)
		wantErr error
	}{
		{
			name:    "missing reference file",
			mutate:  func(in *Input) { delete(in.Fields, "f1_fuel") },
			wantErr: ErrNoReference,
		},
		{
			name: "field absent from catalog",
			mutate: func(in *Input) {
				in.Fields["f1_email"] = append(in.Fields["f1_email"], dbf.Field{Name: "EXTRA", Type: 'C', Length: 1})
			},
			wantErr: ErrUnnamed,
		},
		{
			name:    "unmapped type",
			mutate:  func(in *Input) { delete(in.TypeMap, 'T') },
			wantErr: ErrUnknownType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testInput()
			tt.mutate(&in)
			if _, err := Synthesize(in); !errors.Is(err, tt.wantErr) {
				t.Errorf("Synthesize() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseColumnSet(t *testing.T) {
	set, err := ParseColumnSet([]string{"f1_fuel.report_prd", " f1_steam.expns_kwh "})
	if err != nil {
		t.Fatalf("ParseColumnSet() error = %v", err)
	}
	if !set.Has("f1_steam", "expns_kwh") || !set.Has("f1_fuel", "report_prd") {
		t.Errorf("set = %v", set.Sorted())
	}
	if set.Has("f1_fuel", "plant_name") {
		t.Error("unexpected member")
	}

	for _, bad := range []string{"nodot", ".col", "table."} {
		if _, err := ParseColumnSet([]string{bad}); err == nil {
			t.Errorf("ParseColumnSet(%q) should fail", bad)
		}
	}
}

func TestDefaultFiles(t *testing.T) {
	files := DefaultFiles()
	for table, want := range map[string]string{
		"f1_respondent_id":   "F1_1",
		"f1_fuel":            "F1_31",
		"f1_steam":           "F1_89",
		"f1_gnrt_plant":      "F1_33",
		"f1_hydro":           "F1_86",
		"f1_pumped_storage":  "F1_53",
		"f1_plant_in_srvce":  "F1_52",
		"f1_purchased_pwr":   "F1_54",
		"f1_accumdepr_prvsn": "F1_3",
	} {
		if files[table] != want {
			t.Errorf("DefaultFiles()[%s] = %q, want %q", table, files[table], want)
		}
	}

	files["f1_fuel"] = "changed"
	if DefaultFiles()["f1_fuel"] != "F1_31" {
		t.Error("DefaultFiles() shares state between calls")
	}
}
