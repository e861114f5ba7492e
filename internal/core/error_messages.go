// Error codes reference.
//
// Users quote these codes to support. Codes are grouped by category.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large            Patterns: "file too large"
//	FILE002 - Unsupported format        Patterns: "unsupported file format"
//	FILE003 - Unreadable spreadsheet    Patterns: "parse xlsx", "parse csv", "invalid csv"
//	FILE004 - No file                   Patterns: "no file provided"
//	FILE005 - Empty file                Patterns: "empty file"
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Missing column             Patterns: "missing required column"
//	IMP002 - Too many rows              Patterns: "too many rows"
//	IMP003 - Worksheet not found        Patterns: "worksheet not found"
//	IMP004 - Import not found           Patterns: "import not found"
//	IMP005 - Invalid project            Patterns: "invalid project id"
//
// # Catalog Errors (CAT001-CAT099)
//
//	CAT001 - Catalog unavailable        Patterns: "catalog unavailable"
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Foreign key                 Patterns: "violates foreign key"
//	DB002 - Connection refused          Patterns: "connection refused"
//	DB003 - Connection reset            Patterns: "connection reset"
//	DB004 - Deadlock                    Patterns: "deadlock"
//	DB005 - Timeout                     Patterns: "timeout"
//	DB006 - Transaction failed          Patterns: "begin transaction", "commit transaction"
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - System busy                Patterns: "too many imports"
//	UPL002 - Request cancelled          Patterns: "context canceled"
//	UPL003 - Request timeout            Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited              Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the logs for the technical error.
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

package core

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

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Upload errors first: "context deadline exceeded" must not fall
	// through to the generic timeout pattern.
	{"too many imports", UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "UPL001",
	}},
	{"context canceled", UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL002",
	}},
	{"context deadline exceeded", UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "UPL003",
	}},

	// File errors. An empty sheet is wrapped in a parse error, so it is
	// matched before the parse patterns.
	{"empty file", UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Upload a sheet with a header row and data rows",
		Code:    "FILE005",
	}},
	{"file too large", UserMessage{
		Message: "File exceeds the maximum size limit",
		Action:  "Split the sheet into smaller files",
		Code:    "FILE001",
	}},
	{"unsupported file format", UserMessage{
		Message: "File format is not supported",
		Action:  "Upload an .xlsx or .csv file",
		Code:    "FILE002",
	}},
	{"no file provided", UserMessage{
		Message: "No file was selected",
		Action:  "Please select a spreadsheet to import",
		Code:    "FILE004",
	}},

	// Import errors.
	{"missing required column", UserMessage{
		Message: "Required column is missing from the sheet",
		Action:  "Add discipline_code, document_type_code and document_type_name headers",
		Code:    "IMP001",
	}},
	{"too many rows", UserMessage{
		Message: "The sheet has too many rows",
		Action:  "Split the sheet into smaller files",
		Code:    "IMP002",
	}},
	{"worksheet not found", UserMessage{
		Message: "The selected worksheet does not exist",
		Action:  "Check the worksheet name",
		Code:    "IMP003",
	}},
	{"import not found", UserMessage{
		Message: "Import not found",
		Action:  "Check the import ID",
		Code:    "IMP004",
	}},
	{"invalid project id", UserMessage{
		Message: "Project ID must be a positive number",
		Action:  "Check the project in the request URL",
		Code:    "IMP005",
	}},

	{"parse xlsx", UserMessage{
		Message: "Failed to read file",
		Action:  "Save the workbook as .xlsx and try again",
		Code:    "FILE003",
	}},
	{"parse csv", UserMessage{
		Message: "Failed to read file",
		Action:  "Save the sheet as UTF-8 CSV and try again",
		Code:    "FILE003",
	}},
	{"invalid csv", UserMessage{
		Message: "Failed to read file",
		Action:  "Save the sheet as UTF-8 CSV and try again",
		Code:    "FILE003",
	}},

	// Catalog errors.
	{"catalog unavailable", UserMessage{
		Message: "Reference data could not be loaded",
		Action:  "Please try again in a few moments",
		Code:    "CAT001",
	}},

	// Database errors.
	{"violates foreign key", UserMessage{
		Message: "Referenced record does not exist",
		Action:  "Reload the catalog and import again",
		Code:    "DB001",
	}},
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB002",
	}},
	{"connection reset", UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB003",
	}},
	{"deadlock", UserMessage{
		Message: "Database was busy with conflicting operations",
		Action:  "Please try again",
		Code:    "DB004",
	}},
	{"timeout", UserMessage{
		Message: "Operation timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "DB005",
	}},
	{"begin transaction", UserMessage{
		Message: "Changes could not be saved",
		Action:  "Please try again",
		Code:    "DB006",
	}},
	{"commit transaction", UserMessage{
		Message: "Changes could not be saved",
		Action:  "Please try again",
		Code:    "DB006",
	}},

	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first matching pattern, or ERR000 when none matches.
//
//	msg := MapError(fmt.Errorf("import: %w", sheet.ErrEmptySheet))
//	// msg.Code == "FILE005"
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

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific code rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
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

// NewUserError maps err. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
