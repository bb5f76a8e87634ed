package store

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/ferc1/internal/schema"
)

// CoerceError reports a value that cannot be stored in its column.
type CoerceError struct {
	Column string
	Type   schema.ColumnType
	Value  any
}

func (e *CoerceError) Error() string {
	return fmt.Sprintf("cannot store %T %v in %s column %s", e.Value, e.Value, e.Type, e.Column)
}

// Coerce converts v to the Go type the store writes for a column of type t:
// int64, float64, string, time.Time, bool or []byte. nil stays nil.
func Coerce(t schema.ColumnType, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	var (
		out any
		ok  bool
	)
	switch t {
	case schema.Integer:
		out, ok = toInt(v)
	case schema.Real:
		out, ok = toFloat(v)
	case schema.Text:
		out, ok = toText(v)
	case schema.Date, schema.Timestamp:
		out, ok = v.(time.Time)
	case schema.Boolean:
		out, ok = toBool(v)
	case schema.Blob:
		switch b := v.(type) {
		case []byte:
			out, ok = b, true
		case string:
			out, ok = []byte(b), true
		}
	}
	if !ok {
		return nil, &CoerceError{Type: t, Value: v}
	}
	return out, nil
}

// coerceRows returns a copy of b's rows coerced to the column types of t.
func coerceRows(t *schema.Table, b *Batch) ([][]any, error) {
	types := make([]schema.ColumnType, len(b.Columns))
	for i, name := range b.Columns {
		col, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("%s.%s: %w", t.Name, name, ErrUnknownColumn)
		}
		types[i] = col.Type
	}

	rows := make([][]any, len(b.Rows))
	for r, row := range b.Rows {
		if len(row) != len(b.Columns) {
			return nil, fmt.Errorf("%s row %d: %d values for %d columns", t.Name, r, len(row), len(b.Columns))
		}
		out := make([]any, len(row))
		for i, v := range row {
			cv, err := Coerce(types[i], v)
			if err != nil {
				ce := err.(*CoerceError)
				ce.Column = b.Columns[i]
				return nil, fmt.Errorf("%s row %d: %w", t.Name, r, ce)
			}
			out[i] = cv
		}
		rows[r] = out
	}
	return rows, nil
}

func toInt(v any) (any, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return nil, false
		}
		return int64(n), true
	case bool:
		if n {
			return int64(1), true
		}
		return int64(0), true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return nil, true
		}
		i, err := strconv.ParseInt(s, 10, 64)
		return i, err == nil
	}
	return nil, false
}

func toFloat(v any) (any, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return nil, true
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return nil, false
}

func toText(v any) (any, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	case int:
		return strconv.Itoa(s), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(s), true
	case time.Time:
		return s.Format(time.RFC3339), true
	}
	return nil, false
}

func toBool(v any) (any, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case int64:
		return b != 0, true
	case string:
		p, err := strconv.ParseBool(strings.TrimSpace(b))
		return p, err == nil
	}
	return nil, false
}
