package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"testing"

	"github.com/JonMunkholm/ferc1/internal/config"
	"github.com/JonMunkholm/ferc1/internal/core"
	_ "github.com/JonMunkholm/ferc1/internal/core/tables"
	"github.com/JonMunkholm/ferc1/internal/schema"
	"github.com/JonMunkholm/ferc1/internal/store"
)

var fuelTable = &schema.Table{
	Name: "f1_fuel",
	Columns: []schema.Column{
		{Name: "respondent_id", Type: schema.Integer, Nullable: true},
		{Name: "report_year", Type: schema.Integer, Nullable: true},
		{Name: "plant_name", Type: schema.Text, Length: 20, Nullable: true},
		{Name: "fuel", Type: schema.Text, Length: 10, Nullable: true},
		{Name: "fuel_quantity", Type: schema.Real, Nullable: true},
	},
}

func openStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), store.Options{
		Driver: "sqlite",
		URL:    filepath.Join(t.TempDir(), "ferc1.sqlite"),
	})
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// seedFuel creates f1_fuel with one good and three filtered rows per year.
func seedFuel(t *testing.T, st store.Store) {
	t.Helper()
	ctx := context.Background()
	if err := st.Create(ctx, []*schema.Table{fuelTable}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	var rows [][]any
	for _, y := range []int64{2009, 2010} {
		rows = append(rows,
			[]any{int64(1), y, "Plant A", "coal", 100.0},
			[]any{int64(1), y, "", "coal", 100.0},
			[]any{int64(1), y, "Plant B", "gas", 0.0},
			[]any{int64(514), y, "Plant C", "oil", 5.0},
		)
	}
	b := &store.Batch{Columns: fuelTable.ColumnNames(), Rows: rows}
	if _, err := st.Insert(ctx, fuelTable, b); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
}

func newTestServer(t *testing.T, st store.Store, sec config.SecurityConfig) *Server {
	t.Helper()
	svc, err := core.NewService(st, core.Options{
		Archive:        core.DefaultArchive(t.TempDir()),
		Years:          []int{2009, 2010, 2011},
		WorkingYears:   []int{2010, 2011},
		BadRespondents: []int{514},
	})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return NewServer(svc, config.ServerConfig{}, sec)
}

func get(t *testing.T, s *Server, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, openStore(t), config.SecurityConfig{})
	rec := get(t, s, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := decode[map[string]string](t, rec); got["driver"] != "sqlite" {
		t.Errorf("driver = %q, want sqlite", got["driver"])
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}

func TestListTables(t *testing.T) {
	s := newTestServer(t, openStore(t), config.SecurityConfig{})
	rec := get(t, s, "/api/tables", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	got := decode[TablesResponse](t, rec)
	if len(got.Tables) != 8 {
		t.Errorf("tables = %d, want 8", len(got.Tables))
	}
	if !slices.Equal(got.WorkingYears, []int{2010, 2011}) {
		t.Errorf("working years = %v", got.WorkingYears)
	}
}

func TestExtract(t *testing.T) {
	st := openStore(t)
	seedFuel(t, st)
	s := newTestServer(t, st, config.SecurityConfig{})

	rec := get(t, s, "/api/extract?tables=fuel_ferc1&years=2010", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	got := decode[ExtractResponse](t, rec)
	fuel := got.Tables["fuel_ferc1"]
	if fuel == nil || len(fuel.Rows) != 1 {
		t.Fatalf("fuel_ferc1 = %+v, want one row", fuel)
	}
	if name := fuel.Rows[0][fuel.Index("plant_name")]; name != "Plant A" {
		t.Errorf("plant_name = %v, want Plant A", name)
	}
	if year := fuel.Rows[0][fuel.Index("report_year")]; year != 2010.0 {
		t.Errorf("report_year = %v, want 2010", year)
	}
}

func TestExtract_Errors(t *testing.T) {
	st := openStore(t)
	seedFuel(t, st)
	s := newTestServer(t, st, config.SecurityConfig{})

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantCode   string
		wantValid  string
	}{
		{"year not integrated", "/api/extract?tables=fuel_ferc1&years=2009", http.StatusBadRequest, "EXT002", "2011"},
		{"year without data", "/api/extract?tables=fuel_ferc1&years=1990", http.StatusBadRequest, "EXT001", "2009"},
		{"unknown table", "/api/extract?tables=nope&years=2010", http.StatusBadRequest, "EXT003", "fuel_ferc1"},
		{"malformed years", "/api/extract?years=abc", http.StatusBadRequest, "REQ003", ""},
		{"year beyond int range", "/api/extract?years=9223372036854775807", http.StatusBadRequest, "REQ003", ""},
		{"oversized range", "/api/extract?years=1-2000000000", http.StatusBadRequest, "REQ003", ""},
		{"oversized range on dupes", "/api/dupes?table=f1_fuel&years=1-2000000000", http.StatusBadRequest, "REQ003", ""},
		{"table not cloned", "/api/extract?tables=plants_steam_ferc1&years=2010", http.StatusNotFound, "DB006", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.target, nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			got := decode[ErrorResponse](t, rec)
			if got.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", got.Code, tt.wantCode)
			}
			if tt.wantValid != "" && !slices.Contains(got.Valid, tt.wantValid) {
				t.Errorf("valid = %v, want it to include %s", got.Valid, tt.wantValid)
			}
		})
	}
}

func TestExtract_EmptyStore(t *testing.T) {
	s := newTestServer(t, openStore(t), config.SecurityConfig{})
	rec := get(t, s, "/api/extract?tables=fuel_ferc1&years=2010", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if got := decode[ErrorResponse](t, rec); got.Code != "EXT004" {
		t.Errorf("code = %s, want EXT004", got.Code)
	}
}

func TestCatalog_UnavailableYear(t *testing.T) {
	s := newTestServer(t, openStore(t), config.SecurityConfig{})
	rec := get(t, s, "/api/catalog?year=1990", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := decode[ErrorResponse](t, rec); got.Code != "EXT001" {
		t.Errorf("code = %s, want EXT001", got.Code)
	}
}

func TestDuplicates_MissingTable(t *testing.T) {
	s := newTestServer(t, openStore(t), config.SecurityConfig{})
	rec := get(t, s, "/api/dupes", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := decode[ErrorResponse](t, rec); got.Code != "REQ003" {
		t.Errorf("code = %s, want REQ003", got.Code)
	}
}

func TestAPIKeyRequired(t *testing.T) {
	s := newTestServer(t, openStore(t), config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"secret"}})

	if rec := get(t, s, "/healthz", nil); rec.Code != http.StatusOK {
		t.Errorf("/healthz status = %d, want 200 without a key", rec.Code)
	}
	if rec := get(t, s, "/api/tables", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("/api/tables status = %d, want 401", rec.Code)
	}
	rec := get(t, s, "/api/tables", http.Header{"X-Api-Key": {"secret"}})
	if rec.Code != http.StatusOK {
		t.Errorf("/api/tables with key status = %d, want 200", rec.Code)
	}
}
