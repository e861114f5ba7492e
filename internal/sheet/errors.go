package sheet

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither XLSX nor CSV.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptySheet is returned when the sheet has no header row, or no data
	// rows when columns are required.
	ErrEmptySheet = errors.New("empty file")

	// ErrTooManyRows is returned when a sheet exceeds Options.MaxRows.
	ErrTooManyRows = errors.New("too many rows")

	// ErrSheetNotFound is returned when Options.SheetName names no worksheet.
	ErrSheetNotFound = errors.New("worksheet not found")
)

// ParseError reports input that could not be read as a spreadsheet.
// No rows are returned alongside it.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MissingColumnsError lists mandatory columns absent from the header row.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Columns, ", ")
}
