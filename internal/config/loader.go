package config

import (
	"fmt"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/ferc1/internal/dbf"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values, merges the optional denylist file,
// and validates the result.
// Returns an error listing every missing or malformed variable, or the
// validation failures.
func Load() (*Config, error) {
	return load(os.LookupEnv)
}

// lookupFunc reads one variable, like os.LookupEnv.
type lookupFunc func(string) (string, bool)

func load(lookup lookupFunc) (*Config, error) {
	cfg := &Config{}

	var errs []string
	loadStruct(reflect.ValueOf(cfg).Elem(), lookup, &errs)
	if len(errs) > 0 {
		return nil, fmt.Errorf("config load:\n  - %s", strings.Join(errs, "\n  - "))
	}

	if cfg.Clone.DenylistFile != "" {
		dl, err := LoadDenylist(cfg.Clone.DenylistFile)
		if err != nil {
			return nil, fmt.Errorf("config load: %w", err)
		}
		dl.Apply(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

var durationType = reflect.TypeFor[time.Duration]()

// loadStruct walks v depth first, filling every field tagged env from the
// first non-empty of env, envAlt and default. Problems are appended to errs
// so one run reports all of them.
func loadStruct(v reflect.Value, lookup lookupFunc, errs *[]string) {
	t := v.Type()
	for i := range t.NumField() {
		field, fv := t.Field(i), v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if field.Type.Kind() == reflect.Struct {
			loadStruct(fv, lookup, errs)
			continue
		}

		name := field.Tag.Get("env")
		if name == "" {
			continue
		}
		value := firstSet(lookup, name, field.Tag.Get("envAlt"))
		if value == "" {
			if field.Tag.Get("required") == "true" {
				*errs = append(*errs, fmt.Sprintf("%s is required", name))
				continue
			}
			value = field.Tag.Get("default")
		}
		if value == "" {
			continue
		}
		if err := setField(fv, value); err != nil {
			*errs = append(*errs, fmt.Sprintf("%s=%q: %v", name, value, err))
		}
	}
}

func firstSet(lookup lookupFunc, names ...string) string {
	for _, n := range names {
		if n == "" {
			continue
		}
		if v, ok := lookup(n); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// setField parses value into field according to the field's type.
func setField(field reflect.Value, value string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)
	case reflect.Slice:
		switch field.Type().Elem().Kind() {
		case reflect.String:
			field.Set(reflect.ValueOf(splitList(value)))
		case reflect.Int:
			ints, err := ParseInts(value)
			if err != nil {
				return err
			}
			field.Set(reflect.ValueOf(ints))
		default:
			return fmt.Errorf("unsupported slice of %s", field.Type().Elem().Kind())
		}
	default:
		return fmt.Errorf("unsupported field type %s", field.Kind())
	}
	return nil
}

// splitList splits comma-separated values and trims whitespace.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// MaxRangeSpan bounds the number of values one range may expand to.
const MaxRangeSpan = 10000

// Year bounds accepted by ParseYears.
const (
	MinYear = 1000
	MaxYear = 9999
)

// ParseInts parses a comma-separated list of integers and inclusive ranges,
// e.g. "1994-2000, 2004, 2010-2017". The result is sorted and deduplicated.
// A range may not expand to more than MaxRangeSpan values.
func ParseInts(value string) ([]int, error) {
	var out []int
	for _, part := range splitList(value) {
		lo, hi, isRange := strings.Cut(part, "-")
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", part)
		}
		end := start
		if isRange {
			if end, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil {
				return nil, fmt.Errorf("invalid range %q", part)
			}
			if end < start {
				return nil, fmt.Errorf("descending range %q", part)
			}
		}
		// end-start wraps negative on overflow.
		span := end - start
		if span < 0 || span >= MaxRangeSpan {
			return nil, fmt.Errorf("range %q exceeds %d values", part, MaxRangeSpan)
		}
		for i := 0; i <= span; i++ {
			out = append(out, start+i)
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// ParseYears is ParseInts restricted to four digit years.
func ParseYears(value string) ([]int, error) {
	years, err := ParseInts(value)
	if err != nil {
		return nil, err
	}
	for _, y := range years {
		if y < MinYear || y > MaxYear {
			return nil, fmt.Errorf("year %d outside %d-%d", y, MinYear, MaxYear)
		}
	}
	return years, nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Archive validation
	if c.Archive.DataDir == "" {
		errs = append(errs, "FERC1_DATA_DIR is required")
	}
	if !strings.Contains(c.Archive.YearDir, "%d") {
		errs = append(errs, fmt.Sprintf("FERC1_YEAR_DIR (%q) must contain %%d", c.Archive.YearDir))
	}
	if len(c.Archive.Years) == 0 {
		errs = append(errs, "FERC1_YEARS must name at least one year")
	} else if slices.Min(c.Archive.Years) < MinYear || slices.Max(c.Archive.Years) > MaxYear {
		errs = append(errs, fmt.Sprintf("FERC1_YEARS must lie within %d-%d", MinYear, MaxYear))
	} else if !slices.Contains(c.Archive.Years, c.Archive.RefYear) {
		errs = append(errs, fmt.Sprintf("FERC1_REF_YEAR (%d) must be one of FERC1_YEARS", c.Archive.RefYear))
	}
	if c.Archive.DBCMinLength <= 0 {
		errs = append(errs, "FERC1_DBC_MIN_LENGTH must be positive")
	}
	if _, err := dbf.LookupEncoding(c.Archive.Encoding); err != nil {
		errs = append(errs, fmt.Sprintf("FERC1_ENCODING: %v", err))
	}

	// Database validation
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.SQLitePath == "" {
			errs = append(errs, "SQLITE_PATH is required for the sqlite driver")
		}
	case "postgres":
		if c.Database.URL == "" {
			errs = append(errs, "DATABASE_URL is required for the postgres driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("DB_DRIVER (%q) must be one of: sqlite, postgres", c.Database.Driver))
	}
	if c.Database.MaxConns < c.Database.MinConns {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
			c.Database.MaxConns, c.Database.MinConns))
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}
	if c.Database.MinConns < 0 {
		errs = append(errs, "DB_MIN_CONNS must be non-negative")
	}

	// Clone validation
	if c.Clone.BatchSize <= 0 {
		errs = append(errs, "CLONE_BATCH_SIZE must be positive")
	}
	if c.Clone.Workers <= 0 {
		errs = append(errs, "CLONE_WORKERS must be positive")
	}
	if c.Clone.Timeout <= 0 {
		errs = append(errs, "CLONE_TIMEOUT must be positive")
	}
	for _, bc := range c.Clone.BadColumns {
		if tbl, col, ok := strings.Cut(bc, "."); !ok || tbl == "" || col == "" {
			errs = append(errs, fmt.Sprintf("FERC1_BAD_COLUMNS entry %q must be table.column", bc))
		}
	}

	// Extract validation
	for _, y := range c.Extract.WorkingYears {
		if !slices.Contains(c.Archive.Years, y) {
			errs = append(errs, fmt.Sprintf("FERC1_WORKING_YEARS year %d is not in FERC1_YEARS", y))
			break
		}
	}
	if c.Extract.Timeout <= 0 {
		errs = append(errs, "EXTRACT_TIMEOUT must be positive")
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	// Security validation
	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// Sensitive values like database URLs are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Archive: {DataDir: %q, RefYear: %d, Years: %s}, ",
		c.Archive.DataDir, c.Archive.RefYear, yearSpan(c.Archive.Years)))
	b.WriteString(fmt.Sprintf("Database: {Driver: %q, URL: [MASKED], ForeignKeys: %v}, ",
		c.Database.Driver, c.Database.ForeignKeys))
	b.WriteString(fmt.Sprintf("Clone: {Tables: %d, BatchSize: %d, Workers: %d}, ",
		len(c.Clone.Tables), c.Clone.BatchSize, c.Clone.Workers))
	b.WriteString(fmt.Sprintf("Extract: {WorkingYears: %s, BadRespondents: %d}, ",
		yearSpan(c.Extract.WorkingYears), len(c.Extract.BadRespondents)))
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}

func yearSpan(years []int) string {
	if len(years) == 0 {
		return "[]"
	}
	return fmt.Sprintf("%d-%d", slices.Min(years), slices.Max(years))
}
