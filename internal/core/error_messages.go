package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// Operators can quote the code when reporting a failed clone or extract.
//
// # Catalog Errors (CAT001-CAT099)
//
//	CAT001 - Table not in catalog: a data file has no catalog entry
//	         Action: Check FERC1_REF_YEAR points at a complete year
//	         Patterns: "table not in catalog"
//
//	CAT002 - Field count mismatch: catalog and data file disagree
//	         Action: The reference year archive may be damaged; re-download it
//	         Patterns: "catalog field count mismatch"
//
//	CAT003 - Prefix mismatch: positional pairing failed its cross-check
//	         Action: The reference year archive may be damaged; re-download it
//	         Patterns: "catalog field prefix mismatch"
//
//	CAT004 - Missing field name: a data file field has no catalog name
//	         Patterns: "field missing from catalog"
//
// # Data File Errors (DBF001-DBF099)
//
//	DBF001 - Corrupt header      Patterns: "corrupt dbf header"
//	DBF002 - Unsupported type    Patterns: "unsupported dbf field type"
//	DBF003 - Record length       Patterns: "record length does not match"
//	DBF004 - Undecodable value   Patterns: "cannot decode"
//	DBF005 - No reference file   Patterns: "no reference data file"
//
// # Extraction Errors (EXT001-EXT099)
//
//	EXT001 - Year not available: no archive exists for the year
//	EXT002 - Year not integrated: archive exists but is not a working year
//	EXT003 - Unknown table: no extract definition for the table
//	EXT004 - Empty store: the clone has not been run
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Foreign key: a row references a respondent that does not exist
//	DB002 - Unique constraint
//	DB003 - Connection refused
//	DB004 - Timeout
//	DB005 - Type coercion: a value does not fit its column
//	DB006 - Table not found
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled   Patterns: "context canceled"
//	REQ002 - Request timeout     Patterns: "context deadline exceeded"
//	REQ003 - Bad parameter       Patterns: "invalid parameter"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check the logs for the
// original error.
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// Catalog Errors (CAT001-CAT004)
	// =========================================================================
	{
		pattern: "table not in catalog",
		msg: UserMessage{
			Message: "A data file has no entry in the database catalog",
			Action:  "Check FERC1_REF_YEAR points at a complete year",
			Code:    "CAT001",
		},
	},
	{
		pattern: "catalog field count mismatch",
		msg: UserMessage{
			Message: "Catalog and data file list a different number of fields",
			Action:  "The reference year archive may be damaged; re-download it",
			Code:    "CAT002",
		},
	},
	{
		pattern: "catalog field prefix mismatch",
		msg: UserMessage{
			Message: "Catalog field names do not line up with the data file",
			Action:  "The reference year archive may be damaged; re-download it",
			Code:    "CAT003",
		},
	},
	{
		pattern: "field missing from catalog",
		msg: UserMessage{
			Message: "A data file field has no catalog name",
			Action:  "Check FERC1_REF_YEAR points at a complete year",
			Code:    "CAT004",
		},
	},

	// =========================================================================
	// Data File Errors (DBF001-DBF005)
	// =========================================================================
	{
		pattern: "corrupt dbf header",
		msg: UserMessage{
			Message: "A data file header is damaged",
			Action:  "Re-download the year named in the log",
			Code:    "DBF001",
		},
	},
	{
		pattern: "unsupported dbf field type",
		msg: UserMessage{
			Message: "A data file uses an unsupported field type",
			Action:  "Add the type to the type map or exclude the table",
			Code:    "DBF002",
		},
	},
	{
		pattern: "record length does not match",
		msg: UserMessage{
			Message: "A data file header disagrees with its field list",
			Action:  "Re-download the year named in the log",
			Code:    "DBF003",
		},
	},
	{
		pattern: "cannot decode",
		msg: UserMessage{
			Message: "A data file value could not be decoded",
			Action:  "Exclude the column with FERC1_BAD_COLUMNS",
			Code:    "DBF004",
		},
	},
	{
		pattern: "no reference data file",
		msg: UserMessage{
			Message: "The reference year has no data file for a table",
			Action:  "Choose a different FERC1_REF_YEAR or drop the table",
			Code:    "DBF005",
		},
	},

	// =========================================================================
	// Extraction Errors (EXT001-EXT004)
	// =========================================================================
	{
		pattern: "year not available",
		msg: UserMessage{
			Message: "No data exists for the requested year",
			Action:  "Request one of the available years",
			Code:    "EXT001",
		},
	},
	{
		pattern: "year not yet integrated",
		msg: UserMessage{
			Message: "The requested year has not been integrated yet",
			Action:  "Request one of the working years",
			Code:    "EXT002",
		},
	},
	{
		pattern: "unknown table",
		msg: UserMessage{
			Message: "The requested table has no extract definition",
			Action:  "List the valid tables at /api/tables",
			Code:    "EXT003",
		},
	},
	{
		pattern: "store has no tables",
		msg: UserMessage{
			Message: "The database is empty",
			Action:  "Run the clone first",
			Code:    "EXT004",
		},
	},

	// =========================================================================
	// Database Errors (DB001-DB006)
	// =========================================================================
	{
		pattern: "foreign key constraint",
		msg: UserMessage{
			Message: "A row references a respondent that does not exist",
			Action:  "Clone the respondent table or set DB_FOREIGN_KEYS=false",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "A duplicate key was written",
			Action:  "Re-run the clone; it rebuilds the database",
			Code:    "DB002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Raise the timeout or narrow the request",
			Code:    "DB004",
		},
	},
	{
		pattern: "cannot store",
		msg: UserMessage{
			Message: "A value does not fit its column type",
			Action:  "Exclude the column with FERC1_BAD_COLUMNS",
			Code:    "DB005",
		},
	},
	{
		pattern: "table not found",
		msg: UserMessage{
			Message: "Table not found",
			Action:  "Verify the table name is correct",
			Code:    "DB006",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ003)
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Request fewer tables or years",
			Code:    "REQ002",
		},
	},
	{
		pattern: "invalid parameter",
		msg: UserMessage{
			Message: "A request parameter is malformed",
			Action:  "Use comma-separated values, e.g. years=2015,2016",
			Code:    "REQ003",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or check the logs",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first matching pattern, or ERR000.
//
// Example:
//
//	msg := MapError(err)
//	// msg.Code == "EXT001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
