package web

import (
	"net/http"

	"github.com/JonMunkholm/ferc1/internal/core"
	"github.com/JonMunkholm/ferc1/internal/store"
)

// TablesResponse lists the extracts and the years they cover.
type TablesResponse struct {
	Tables       []core.TableDefinition `json:"tables"`
	DataYears    []int                  `json:"data_years"`
	WorkingYears []int                  `json:"working_years"`
}

// ExtractResponse holds one batch per requested extract.
type ExtractResponse struct {
	Years  []int                   `json:"years"`
	Tables map[string]*store.Batch `json:"tables"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Health(r.Context()); err != nil {
		s.respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"driver": s.service.Store().Driver(),
	})
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TablesResponse{
		Tables:       s.service.ListTables(),
		DataYears:    s.service.DataYears(),
		WorkingYears: s.service.WorkingYears(),
	})
}

// handleCatalog returns the reconstructed catalog of one year, the
// reference year by default.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year", s.service.RefYear())
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	catalog, err := s.service.Catalog(r.Context(), year)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

// handleExtract runs the extract. Without tables every registered extract
// is returned; without years every working year is used.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	tables := listParam(r, "tables")
	if tables == nil {
		tables = core.Keys()
	}
	years, err := yearsParam(r, "years")
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if years == nil {
		years = s.service.WorkingYears()
	}

	out, err := s.service.Extract(r.Context(), tables, years)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, ExtractResponse{Years: years, Tables: out})
}

// handleDuplicates reports per-year duplicate counts for one archive table.
func (s *Server) handleDuplicates(w http.ResponseWriter, r *http.Request) {
	table := r.URL.Query().Get("table")
	if table == "" {
		s.respondError(w, r, &paramError{name: "table", err: errMissing}, http.StatusBadRequest)
		return
	}
	years, err := yearsParam(r, "years")
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	counts, err := s.service.Duplicates(r.Context(), table, years, listParam(r, "key"))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}
