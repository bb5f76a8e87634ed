package core

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding"

	"github.com/JonMunkholm/ferc1/internal/schema"
	"github.com/JonMunkholm/ferc1/internal/store"
)

var (
	ErrYearUnavailable   = errors.New("year not available")
	ErrYearNotIntegrated = errors.New("year not yet integrated")
	ErrUnknownTable      = errors.New("unknown table")
	ErrStoreEmpty        = errors.New("store has no tables")
)

// TableDefinition is one extract: a cloned table and the quality predicate
// its rows must satisfy.
type TableDefinition struct {
	Key         string     `json:"key"`
	Source      string     `json:"source"`
	Description string     `json:"description"`
	Filter      store.Expr `json:"-"` // nil keeps every row
}

// Archive locates the yearly directories of the archive and carries the
// table-to-file and type maps used to read them.
type Archive struct {
	DataDir      string
	YearDir      string // fmt pattern, e.g. f1_%d
	CatalogFile  string
	Files        schema.Files
	TypeMap      schema.TypeMap
	Registry     schema.Registry
	DBCMinLength int

	// Encoding decodes character fields. Nil means ISO-8859-1.
	Encoding encoding.Encoding
}

// DefaultArchive returns the FERC Form 1 layout rooted at dataDir.
func DefaultArchive(dataDir string) Archive {
	return Archive{
		DataDir:      dataDir,
		YearDir:      "f1_%d",
		CatalogFile:  "F1_PUB.DBC",
		Files:        schema.DefaultFiles(),
		TypeMap:      schema.DefaultTypeMap(),
		Registry:     schema.DefaultRegistry(),
		DBCMinLength: 4,
	}
}

// YearPath is the directory holding one year.
func (a Archive) YearPath(year int) string {
	return filepath.Join(a.DataDir, fmt.Sprintf(a.YearDir, year))
}

// CatalogPath is the database container of one year.
func (a Archive) CatalogPath(year int) string {
	return filepath.Join(a.YearPath(year), a.CatalogFile)
}

// TablePath is the data file of table in year. It reports false for a
// table missing from the file map.
func (a Archive) TablePath(table string, year int) (string, bool) {
	name, ok := a.Files[table]
	if !ok {
		return "", false
	}
	return filepath.Join(a.YearPath(year), name+".DBF"), true
}

// YearBatch is the decoded content of one table for one year.
type YearBatch struct {
	Table string
	Year  int
	Batch *store.Batch
}

// CloneOptions narrows a clone. Zero values fall back to the service options.
type CloneOptions struct {
	Tables []string
	Years  []int
}

// TableResult reports one cloned table.
type TableResult struct {
	Table string `json:"table"`
	Years []int  `json:"years"`
	Rows  int64  `json:"rows"`
}

// CloneResult summarizes a clone run.
type CloneResult struct {
	RunID    string        `json:"run_id"`
	RefYear  int           `json:"ref_year"`
	Tables   []TableResult `json:"tables"`
	Skipped  []string      `json:"skipped,omitempty"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
}

// Rows returns the total number of rows written.
func (r *CloneResult) Rows() int64 {
	var n int64
	for _, t := range r.Tables {
		n += t.Rows
	}
	return n
}

// DuplicateCount is the number of records in one year that repeat an
// earlier record's key.
type DuplicateCount struct {
	Year       int `json:"year"`
	Records    int `json:"records"`
	Duplicates int `json:"duplicates"`
}

// DefaultDuplicateKey identifies a row within a year's schedule.
var DefaultDuplicateKey = []string{"respondent_id", "report_year", "report_prd", "row_number", "spplmnt_num"}

// ValidationError rejects an extract request before the store is touched.
// It lists the values that would have been accepted.
type ValidationError struct {
	Err   error
	Value string
	Valid []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s; valid values are: %s", e.Err, e.Value, strings.Join(e.Valid, " "))
}

func (e *ValidationError) Unwrap() error { return e.Err }

func yearStrings(years []int) []string {
	out := make([]string, len(years))
	for i, y := range years {
		out[i] = strconv.Itoa(y)
	}
	return out
}
