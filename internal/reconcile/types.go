package reconcile

// Field names the spreadsheet columns are expected to carry.
const (
	FieldDisciplineCode   = "discipline_code"
	FieldDocumentTypeCode = "document_type_code"
	FieldDocumentTypeName = "document_type_name"
	FieldDRS              = "drs"
)

// Discipline is an engineering discipline from the reference catalog.
type Discipline struct {
	ID   int64  `json:"id" yaml:"id"`
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// DocumentType is a document classification from the reference catalog.
// Several document types may share a code under different names.
type DocumentType struct {
	ID     int64  `json:"id" yaml:"id"`
	Code   string `json:"code" yaml:"code"`
	Name   string `json:"name" yaml:"name"`
	NameEn string `json:"name_en,omitempty" yaml:"name_en,omitempty"`
	DRS    string `json:"drs,omitempty" yaml:"drs,omitempty"`
}

// DisplayName returns the English name when set, otherwise the plain name.
func (d DocumentType) DisplayName() string {
	if d.NameEn != "" {
		return d.NameEn
	}
	return d.Name
}

// Cell is a spreadsheet value that may be absent altogether.
// Present is false when the sheet has no column for the field.
type Cell struct {
	Value   string
	Present bool
}

// Text returns a present cell holding s.
func Text(s string) Cell {
	return Cell{Value: s, Present: true}
}

// ImportRow is one spreadsheet line reduced to the fields used for matching.
type ImportRow struct {
	Line             int // 1-based sheet line, diagnostics only
	DisciplineCode   Cell
	DocumentTypeCode Cell
	DocumentTypeName Cell
	DRS              Cell
}

// absent reports whether the row carries none of the matching fields.
func (r ImportRow) absent() bool {
	return !r.DisciplineCode.Present &&
		!r.DocumentTypeCode.Present &&
		!r.DocumentTypeName.Present &&
		!r.DRS.Present
}

// MatchResult is a row resolved to a catalog discipline and document type.
type MatchResult struct {
	Discipline   Discipline   `json:"discipline"`
	DocumentType DocumentType `json:"documentType"`
	DRS          string       `json:"drs,omitempty"` // empty when the row had none
}

// MatchFunc receives each successful match, in row order.
type MatchFunc func(MatchResult)

// Result summarizes a reconcile run.
type Result struct {
	Processed int      `json:"processedCount"`
	Matched   int      `json:"matchedCount"`
	Warnings  []string `json:"warnings"`
	Details   Warnings `json:"details"`
}
