package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/ferc1/internal/dbc"
	"github.com/JonMunkholm/ferc1/internal/dbf"
	"github.com/JonMunkholm/ferc1/internal/store"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "count mismatch",
			err:         fmt.Errorf("reconstruct 2017 catalog: %w", &dbc.CountMismatchError{Table: "f1_fuel", Catalog: 3, Physical: 4}),
			wantCode:    "CAT002",
			wantMessage: "Catalog and data file list a different number of fields",
		},
		{
			name:        "corrupt header",
			err:         fmt.Errorf("read f1_fuel header: %w", dbf.ErrCorruptHeader),
			wantCode:    "DBF001",
			wantMessage: "A data file header is damaged",
		},
		{
			name:        "unavailable year",
			err:         &ValidationError{Err: ErrYearUnavailable, Value: "1990", Valid: []string{"2017"}},
			wantCode:    "EXT001",
			wantMessage: "No data exists for the requested year",
		},
		{
			name:        "year not integrated",
			err:         &ValidationError{Err: ErrYearNotIntegrated, Value: "1995"},
			wantCode:    "EXT002",
			wantMessage: "The requested year has not been integrated yet",
		},
		{
			name:        "sqlite foreign key",
			err:         errors.New("load f1_fuel: FOREIGN KEY constraint failed"),
			wantCode:    "DB001",
			wantMessage: "A row references a respondent that does not exist",
		},
		{
			name:        "coercion",
			err:         &store.CoerceError{Column: "respondent_id", Value: 1.5},
			wantCode:    "DB005",
			wantMessage: "A value does not fit its column type",
		},
		{
			name:        "missing table",
			err:         fmt.Errorf("extract fuel_ferc1: %w", store.ErrNotFound),
			wantCode:    "DB006",
			wantMessage: "Table not found",
		},
		{
			name:        "cancelled",
			err:         fmt.Errorf("clone: %w", context.Canceled),
			wantCode:    "REQ001",
			wantMessage: "Request was cancelled",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("UNIQUE CONSTRAINT failed"),
			wantCode:    "DB002",
			wantMessage: "A duplicate key was written",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	err := fmt.Errorf("%w; is the clone initialized?", ErrStoreEmpty)
	result := FormatUserError(err)

	expected := "The database is empty (Code: EXT004). Run the clone first"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", ErrUnknownTable, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("read catalog: %w", dbc.ErrTableNotInCatalog)
		userErr := NewUserError(techErr)

		if userErr.Error() != "A data file has no entry in the database catalog" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		if !errors.Is(userErr, dbc.ErrTableNotInCatalog) {
			t.Error("Unwrap() should return original error")
		}
	})
}

func TestDedupeLast(t *testing.T) {
	rows := [][]any{
		{int64(1), "a"},
		{nil, "x"},
		{int64(2), "b"},
		{1.0, "c"},
		{nil, "y"},
	}
	got := dedupeLast(rows, 0)
	want := []string{"x", "b", "c", "y"}
	if len(got) != len(want) {
		t.Fatalf("dedupeLast() = %v, want names %v", got, want)
	}
	for i, r := range got {
		if r[1] != want[i] {
			t.Errorf("row %d = %v, want %s", i, r, want[i])
		}
	}
}
