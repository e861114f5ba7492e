package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// readCSV decodes delimited text. A UTF-8 byte order mark is dropped and
// invalid UTF-8 is replaced with U+FFFD before parsing.
func readCSV(data []byte, comma rune) ([][]string, error) {
	clean, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), unicode.UTF8BOM.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	if comma == 0 {
		comma = detectComma(clean)
	}

	r := csv.NewReader(bytes.NewReader(clean))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	return records, nil
}

// detectComma picks the most frequent of ',', ';' and tab on the first line.
// Ties go to ','.
func detectComma(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}

	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, c := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte{byte(c)}); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}
