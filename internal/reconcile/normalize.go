package reconcile

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// normalizer holds the casers for one run. Casers are stateful and must not
// be shared between goroutines.
type normalizer struct {
	upper cases.Caser
	lower cases.Caser
}

func newNormalizer() *normalizer {
	return &normalizer{
		upper: cases.Upper(language.Und),
		lower: cases.Lower(language.Und),
	}
}

// isSpace also counts the byte order mark, which spreadsheet exports leave
// at the start of cells.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func trim(s string) string {
	return strings.TrimFunc(s, isSpace)
}

func (n *normalizer) code(s string) string {
	return n.upper.String(trim(s))
}

// name trims, collapses whitespace runs to one space and lower-cases.
func (n *normalizer) name(s string) string {
	return n.lower.String(strings.Join(strings.FieldsFunc(s, isSpace), " "))
}

func (n *normalizer) fold(s string) string {
	return n.lower.String(s)
}

// NormalizeCode trims s and upper-cases it using full Unicode case mapping.
func NormalizeCode(s string) string {
	return newNormalizer().code(s)
}

// NormalizeName trims s, collapses internal whitespace to single spaces and
// lower-cases it.
func NormalizeName(s string) string {
	return newNormalizer().name(s)
}

// normalizedRow is an ImportRow after trimming and case folding of codes.
type normalizedRow struct {
	disciplineCode   string
	documentTypeCode string
	documentTypeName string
	drs              string
}

func (n *normalizer) row(r ImportRow) normalizedRow {
	return normalizedRow{
		disciplineCode:   n.code(r.DisciplineCode.Value),
		documentTypeCode: n.code(r.DocumentTypeCode.Value),
		documentTypeName: trim(r.DocumentTypeName.Value),
		drs:              trim(r.DRS.Value),
	}
}

func (nr normalizedRow) complete() bool {
	return nr.disciplineCode != "" && nr.documentTypeCode != "" && nr.documentTypeName != ""
}

func (n *normalizer) key(nr normalizedRow) string {
	return nr.disciplineCode + "__" + nr.documentTypeCode + "__" +
		n.fold(nr.documentTypeName) + "__" + n.fold(nr.drs)
}

// RowKey returns the deduplication key of a row: normalized discipline code,
// document-type code, lower-cased name and lower-cased DRS joined by "__".
// The name keeps its internal whitespace, so only trimming and case differ
// between rows sharing a key.
func RowKey(r ImportRow) string {
	n := newNormalizer()
	return n.key(n.row(r))
}

func typeKey(code, name string) string {
	return code + "__" + name
}
