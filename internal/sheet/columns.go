package sheet

import (
	"strings"

	"github.com/JonMunkholm/docimport/internal/reconcile"
)

// requiredFields are the columns a sheet must carry to be importable.
var requiredFields = []string{
	reconcile.FieldDisciplineCode,
	reconcile.FieldDocumentTypeCode,
	reconcile.FieldDocumentTypeName,
}

// matchFields are all extracted columns, in lookup order.
var matchFields = append(append([]string(nil), requiredFields...), reconcile.FieldDRS)

// CleanHeader strips common export artifacts from a header cell: surrounding
// whitespace, the Excel text-formula wrapper (="...") and surrounding quotes.
func CleanHeader(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}
	return strings.TrimSpace(strings.Trim(s, `"'`))
}

// ResolveColumns maps the matching fields to header positions. Headers are
// compared case-insensitively and the first matching column wins.
//
// With lenient set, a mandatory field that has no exact header falls back to a
// header equal once '_', '-' and spaces are removed, and then to a header
// containing the field name or contained in it. The drs column is always
// matched exactly.
func ResolveColumns(header []string, lenient bool) map[string]int {
	columns := make(map[string]int, 4)
	for _, field := range matchFields {
		pos := exactColumn(header, field)
		if pos < 0 && lenient && field != reconcile.FieldDRS {
			pos = fuzzyColumn(header, field)
		}
		if pos >= 0 {
			columns[field] = pos
		}
	}
	return columns
}

func exactColumn(header []string, field string) int {
	for i, h := range header {
		if strings.EqualFold(h, field) {
			return i
		}
	}
	return -1
}

func fuzzyColumn(header []string, field string) int {
	want := squash(field)
	for i, h := range header {
		if h != "" && squash(h) == want {
			return i
		}
	}

	lf := strings.ToLower(field)
	for i, h := range header {
		if h == "" {
			continue
		}
		lh := strings.ToLower(h)
		if strings.Contains(lh, lf) || strings.Contains(lf, lh) {
			return i
		}
	}
	return -1
}

var squasher = strings.NewReplacer("_", "", "-", "", " ", "")

func squash(s string) string {
	return squasher.Replace(strings.ToLower(s))
}

func missingColumns(columns map[string]int) []string {
	var missing []string
	for _, f := range requiredFields {
		if _, ok := columns[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}
