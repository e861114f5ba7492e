// Package sheet turns uploaded XLSX and CSV files into import rows.
//
// It is the validation boundary in front of the reconciler: only the four
// matching columns are extracted, each as an explicit optional cell, and
// anything that cannot be decoded fails with a *ParseError.
package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/docimport/internal/reconcile"
)

// Format identifies a spreadsheet encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// DefaultMaxHeaderSearchRows bounds the scan for the header row.
var DefaultMaxHeaderSearchRows = 20

// Options controls parsing.
type Options struct {
	// SheetName selects an XLSX worksheet. Empty means the first sheet.
	SheetName string

	// Comma is the CSV delimiter. Zero detects ',', ';' or tab from the header line.
	Comma rune

	// LenientHeaders enables fuzzy header lookup for the mandatory columns.
	LenientHeaders bool

	// RequireColumns fails parsing when a mandatory column is missing or
	// the header has no data rows below it.
	RequireColumns bool

	// MaxRows caps the number of data rows. Zero means unlimited.
	MaxRows int
}

// Sheet is a parsed spreadsheet.
type Sheet struct {
	Format  Format
	Name    string         // worksheet name, empty for CSV
	Header  []string       // cleaned header cells
	Columns map[string]int // matching field -> header position
	Rows    []reconcile.ImportRow
}

// Parse reads a spreadsheet. The decoder is chosen from the file extension;
// files without one are sniffed.
func Parse(name string, r io.Reader, opts Options) (*Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	format, err := detectFormat(name, data)
	if err != nil {
		return nil, &ParseError{Format: Format(strings.TrimPrefix(filepath.Ext(name), ".")), Err: err}
	}

	var (
		records   [][]string
		sheetName string
	)
	switch format {
	case FormatXLSX:
		records, sheetName, err = readXLSX(data, opts.SheetName)
	default:
		records, err = readCSV(data, opts.Comma)
	}
	if err != nil {
		return nil, &ParseError{Format: format, Err: err}
	}

	s, err := build(records, opts)
	if err != nil {
		var mc *MissingColumnsError
		if errors.As(err, &mc) {
			return nil, err
		}
		return nil, &ParseError{Format: format, Err: err}
	}
	s.Format = format
	s.Name = sheetName
	return s, nil
}

var zipMagic = []byte("PK\x03\x04")

func detectFormat(name string, data []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return FormatXLSX, nil
	case ".csv", ".tsv", ".txt":
		return FormatCSV, nil
	case "":
		if bytes.HasPrefix(data, zipMagic) {
			return FormatXLSX, nil
		}
		return FormatCSV, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// build locates the header row and extracts the matching fields of every
// non-blank data row.
func build(records [][]string, opts Options) (*Sheet, error) {
	headerAt := -1
	limit := min(len(records), DefaultMaxHeaderSearchRows)
	for i := 0; i < limit; i++ {
		if !isBlankRow(records[i]) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, ErrEmptySheet
	}

	header := make([]string, len(records[headerAt]))
	for i, h := range records[headerAt] {
		header[i] = CleanHeader(h)
	}

	columns := ResolveColumns(header, opts.LenientHeaders)
	if opts.RequireColumns {
		if missing := missingColumns(columns); len(missing) > 0 {
			return nil, &MissingColumnsError{Columns: missing}
		}
	}

	s := &Sheet{Header: header, Columns: columns}
	for i := headerAt + 1; i < len(records); i++ {
		rec := records[i]
		if isBlankRow(rec) {
			continue
		}
		if opts.MaxRows > 0 && len(s.Rows) >= opts.MaxRows {
			return nil, ErrTooManyRows
		}
		s.Rows = append(s.Rows, reconcile.ImportRow{
			Line:             i + 1,
			DisciplineCode:   cell(rec, columns, reconcile.FieldDisciplineCode),
			DocumentTypeCode: cell(rec, columns, reconcile.FieldDocumentTypeCode),
			DocumentTypeName: cell(rec, columns, reconcile.FieldDocumentTypeName),
			DRS:              cell(rec, columns, reconcile.FieldDRS),
		})
	}
	if opts.RequireColumns && len(s.Rows) == 0 {
		return nil, fmt.Errorf("%w: no data rows below the header", ErrEmptySheet)
	}
	return s, nil
}

// cell returns the field's value. A field whose column exists is present even
// when the row is too short to hold it.
func cell(rec []string, columns map[string]int, field string) reconcile.Cell {
	pos, ok := columns[field]
	if !ok {
		return reconcile.Cell{}
	}
	if pos >= len(rec) {
		return reconcile.Text("")
	}
	return reconcile.Text(rec[pos])
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
