package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/docimport/internal/catalog"
	"github.com/JonMunkholm/docimport/internal/sheet"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name: "nil error returns empty",
		},
		{
			name:        "empty sheet inside parse error",
			err:         &sheet.ParseError{Format: sheet.FormatCSV, Err: sheet.ErrEmptySheet},
			wantCode:    "FILE005",
			wantMessage: "The uploaded file is empty",
		},
		{
			name:        "undecodable workbook",
			err:         &sheet.ParseError{Format: sheet.FormatXLSX, Err: errors.New("zip: not a valid zip file")},
			wantCode:    "FILE003",
			wantMessage: "Failed to read file",
		},
		{
			name:        "unsupported format",
			err:         &sheet.ParseError{Format: "pdf", Err: sheet.ErrUnsupportedFormat},
			wantCode:    "FILE002",
			wantMessage: "File format is not supported",
		},
		{
			name:        "file too large",
			err:         fmt.Errorf("import: %w", ErrFileTooLarge),
			wantCode:    "FILE001",
			wantMessage: "File exceeds the maximum size limit",
		},
		{
			name:        "missing columns",
			err:         &sheet.MissingColumnsError{Columns: []string{"drs"}},
			wantCode:    "IMP001",
			wantMessage: "Required column is missing from the sheet",
		},
		{
			name:        "row cap",
			err:         &sheet.ParseError{Format: sheet.FormatCSV, Err: sheet.ErrTooManyRows},
			wantCode:    "IMP002",
			wantMessage: "The sheet has too many rows",
		},
		{
			name:        "catalog failure",
			err:         errors.Join(catalog.ErrUnavailable, errors.New("dial tcp: connection refused")),
			wantCode:    "CAT001",
			wantMessage: "Reference data could not be loaded",
		},
		{
			name:        "busy",
			err:         ErrTooManyImports,
			wantCode:    "UPL001",
			wantMessage: "System is busy processing other imports",
		},
		{
			name:        "deadline wins over generic timeout",
			err:         errors.New("context deadline exceeded (timeout)"),
			wantCode:    "UPL003",
			wantMessage: "Request timed out",
		},
		{
			name:        "connection refused",
			err:         errors.New("dial tcp: connection refused"),
			wantCode:    "DB002",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "rate limit",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("ERROR: DEADLOCK detected"),
			wantCode:    "DB004",
			wantMessage: "Database was busy with conflicting operations",
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
	result := FormatUserError(sheet.ErrEmptySheet)

	expected := "The uploaded file is empty (Code: FILE005). Upload a sheet with a header row and data rows"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", ErrNoFile, true},
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
		techErr := fmt.Errorf("load: %w", ErrRunNotFound)
		userErr := NewUserError(techErr)

		if userErr.Error() != "Import not found" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		if userErr.User.Code != "IMP004" {
			t.Errorf("Code = %q, want IMP004", userErr.User.Code)
		}
		if !errors.Is(userErr, ErrRunNotFound) {
			t.Error("Unwrap() should expose the original error")
		}
	})
}
