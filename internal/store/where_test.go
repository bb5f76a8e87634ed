package store

import (
	"reflect"
	"testing"
)

// ============================================================================
// WhereBuilder Tests
// ============================================================================

func TestNewWhereBuilder(t *testing.T) {
	wb := newWhereBuilder(dollarPlaceholder)

	if wb == nil {
		t.Fatal("newWhereBuilder returned nil")
	}
	if wb.argIndex != 1 {
		t.Errorf("expected argIndex to be 1, got %d", wb.argIndex)
	}
	if len(wb.conditions) != 0 {
		t.Errorf("expected empty conditions, got %d", len(wb.conditions))
	}
}

func TestWhereBuilder_Build_Empty(t *testing.T) {
	wb := newWhereBuilder(dollarPlaceholder)
	whereClause, args := wb.Build()

	if whereClause != "" {
		t.Errorf("expected empty string for no conditions, got %q", whereClause)
	}
	if args != nil {
		t.Errorf("expected nil args for no conditions, got %v", args)
	}
}

func TestWhereBuilder_AddExpr_SingleCondition(t *testing.T) {
	wb := newWhereBuilder(dollarPlaceholder)
	wb.AddExpr(C("status", OpEq, "active"))

	whereClause, args := wb.Build()

	if want := ` WHERE "status" = $1`; whereClause != want {
		t.Errorf("expected %q, got %q", want, whereClause)
	}
	if !reflect.DeepEqual(args, []any{"active"}) {
		t.Errorf("expected args [active], got %v", args)
	}
}

func TestWhereBuilder_AddExpr(t *testing.T) {
	tests := []struct {
		name      string
		expr      Expr
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "nil expression",
			expr:      nil,
			wantWhere: "",
			wantArgs:  nil,
		},
		{
			name:      "in list",
			expr:      In("report_year", 2015, 2016),
			wantWhere: ` WHERE "report_year" IN ($1, $2)`,
			wantArgs:  []any{2015, 2016},
		},
		{
			name:      "empty in list matches nothing",
			expr:      In[int]("report_year"),
			wantWhere: ` WHERE 1 = 0`,
		},
		{
			name:      "empty not in list matches everything",
			expr:      NotIn[int]("respondent_id"),
			wantWhere: ` WHERE 1 = 1`,
		},
		{
			name: "nested and/or",
			expr: And{
				C("plant_name", OpNe, ""),
				Or{C("net_generation", OpNe, 0), C("plant_cost", OpNe, 0)},
			},
			wantWhere: ` WHERE ("plant_name" <> $1 AND ("net_generation" <> $2 OR "plant_cost" <> $3))`,
			wantArgs:  []any{"", 0, 0},
		},
		{
			name:      "single member and is not parenthesized",
			expr:      And{C("tot_capacity", OpGt, 0)},
			wantWhere: ` WHERE "tot_capacity" > $1`,
			wantArgs:  []any{0},
		},
		{
			name:      "empty or is false",
			expr:      Or{},
			wantWhere: ` WHERE 1 = 0`,
		},
		{
			name:      "quoted identifier",
			expr:      C(`we"ird`, OpGe, 1),
			wantWhere: ` WHERE "we""ird" >= $1`,
			wantArgs:  []any{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := newWhereBuilder(dollarPlaceholder)
			wb.AddExpr(tt.expr)
			where, args := wb.Build()
			if where != tt.wantWhere {
				t.Errorf("where = %q, want %q", where, tt.wantWhere)
			}
			if len(args) != len(tt.wantArgs) || (len(args) > 0 && !reflect.DeepEqual(args, tt.wantArgs)) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestWhereBuilder_MultipleConditionsShareIndex(t *testing.T) {
	wb := newWhereBuilder(dollarPlaceholder)
	wb.AddExpr(In("report_year", 2016))
	wb.AddExpr(NotIn("respondent_id", 514, 515))

	where, args := wb.Build()
	want := ` WHERE "report_year" IN ($1) AND "respondent_id" NOT IN ($2, $3)`
	if where != want {
		t.Errorf("where = %q, want %q", where, want)
	}
	if len(args) != 3 {
		t.Errorf("got %d args, want 3", len(args))
	}
}

func TestSelectSQL_SQLitePlaceholders(t *testing.T) {
	sql, args := sqliteDialect.selectSQL(Query{
		Table:   "f1_fuel",
		Columns: []string{"respondent_id", "fuel"},
		Where:   And{C("fuel", OpNe, ""), C("fuel_quantity", OpGt, 0)},
		OrderBy: []string{"respondent_id"},
	})

	want := `SELECT "respondent_id", "fuel" FROM "f1_fuel" WHERE ("fuel" <> ? AND "fuel_quantity" > ?) ORDER BY "respondent_id"`
	if sql != want {
		t.Errorf("sql = %q\nwant  %q", sql, want)
	}
	if len(args) != 2 {
		t.Errorf("got %d args, want 2", len(args))
	}
}
