package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	mechanical = Discipline{ID: 1, Code: "ME", Name: "Mechanical"}
	electrical = Discipline{ID: 3, Code: "EL", Name: "Electrical"}
	drawing    = DocumentType{ID: 2, Code: "DRW", Name: "Drawing"}
)

func row(dCode, tCode, tName, drs string) ImportRow {
	return ImportRow{
		DisciplineCode:   Text(dCode),
		DocumentTypeCode: Text(tCode),
		DocumentTypeName: Text(tName),
		DRS:              Text(drs),
	}
}

func collect(rows []ImportRow, ds []Discipline, ts []DocumentType) (Result, []MatchResult) {
	var matches []MatchResult
	res := Reconcile(rows, ds, ts, func(m MatchResult) {
		matches = append(matches, m)
	})
	return res, matches
}

func TestReconcile_SingleMatch(t *testing.T) {
	res, matches := collect(
		[]ImportRow{row("ME", "DRW", "Drawing", "A")},
		[]Discipline{mechanical},
		[]DocumentType{drawing},
	)

	require.Len(t, matches, 1)
	assert.Equal(t, MatchResult{Discipline: mechanical, DocumentType: drawing, DRS: "A"}, matches[0])
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, res.Matched)
	assert.Empty(t, res.Warnings)
	assert.NotNil(t, res.Warnings)
}

func TestReconcile_MissingDiscipline(t *testing.T) {
	res, matches := collect(
		[]ImportRow{row("ME", "DRW", "Drawing", "A")},
		nil,
		[]DocumentType{{ID: 9, Code: "OTHER", Name: "Other"}},
	)

	assert.Empty(t, matches)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 0, res.Matched)
	assert.Equal(t, []string{"Disciplines not found by code: ME"}, res.Warnings)
	// The document type is unknown too, but is never looked up.
	assert.Empty(t, res.Details.MissingDocumentTypes)
	assert.Empty(t, res.Details.NameMismatches)
}

func TestReconcile_NameNormalization(t *testing.T) {
	tests := []struct {
		name    string
		rowName string
		catalog string
	}{
		{"trailing space and case", "drawing ", "Drawing"},
		{"internal whitespace runs", "General   Arrangement\tDrawing", "General Arrangement Drawing"},
		{"catalog name needs cleaning", "general arrangement drawing", " General\nArrangement  Drawing "},
		{"upper case", "DRAWING", "Drawing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt := DocumentType{ID: 7, Code: "DRW", Name: tt.catalog}
			res, matches := collect(
				[]ImportRow{row("ME", "DRW", tt.rowName, "")},
				[]Discipline{mechanical},
				[]DocumentType{dt},
			)
			require.Len(t, matches, 1)
			assert.Equal(t, dt, matches[0].DocumentType)
			assert.Empty(t, res.Warnings)
		})
	}
}

func TestReconcile_CodeNormalization(t *testing.T) {
	res, matches := collect(
		[]ImportRow{row("  me ", " drw", "Drawing", "")},
		[]Discipline{{ID: 1, Code: " Me", Name: "Mechanical"}},
		[]DocumentType{{ID: 2, Code: "drw ", Name: "Drawing"}},
	)

	require.Len(t, matches, 1)
	assert.Equal(t, int64(1), matches[0].Discipline.ID)
	assert.Equal(t, int64(2), matches[0].DocumentType.ID)
	assert.Equal(t, 1, res.Matched)
}

func TestReconcile_NameMismatch(t *testing.T) {
	res, matches := collect(
		[]ImportRow{row("ME", "DRW", "Drawing", "")},
		[]Discipline{mechanical},
		[]DocumentType{{ID: 2, Code: "DRW", Name: "Blueprint"}},
	)

	assert.Empty(t, matches)
	assert.Equal(t, 1, res.Processed)
	assert.Empty(t, res.Details.MissingDocumentTypes)
	require.Len(t, res.Details.NameMismatches, 1)
	assert.Equal(t, "DRW (Drawing) - in catalog: Blueprint", res.Details.NameMismatches[0])
	assert.Equal(t, []string{"Name mismatches: DRW (Drawing) - in catalog: Blueprint"}, res.Warnings)
}

func TestReconcile_MismatchListsEveryNameUnderCode(t *testing.T) {
	res, _ := collect(
		[]ImportRow{row("ME", "DRW", "Sketch", "")},
		[]Discipline{mechanical},
		[]DocumentType{
			{ID: 2, Code: "DRW", Name: "Blueprint"},
			{ID: 4, Code: "SPC", Name: "Specification"},
			{ID: 5, Code: "drw", Name: "Plan", NameEn: "Layout"},
		},
	)

	assert.Equal(t, []string{"DRW (Sketch) - in catalog: Blueprint, Layout"}, res.Details.NameMismatches)
}

func TestReconcile_MissingDocumentType(t *testing.T) {
	res, _ := collect(
		[]ImportRow{
			row("ME", "XX", "Unknown", ""),
			row("ME", "XX", "Unknown again", ""),
			row("ME", "YY", "Other", ""),
		},
		[]Discipline{mechanical},
		[]DocumentType{drawing},
	)

	assert.Equal(t, 3, res.Processed)
	assert.Equal(t, []string{"XX", "YY"}, res.Details.MissingDocumentTypes)
	assert.Equal(t, []string{"Document types not found by code: XX, YY"}, res.Warnings)
}

func TestReconcile_DuplicateRows(t *testing.T) {
	res, matches := collect(
		[]ImportRow{
			row("ME", "DRW", "Drawing", "A"),
			row(" me", "drw ", "DRAWING ", "a"),
		},
		[]Discipline{mechanical},
		[]DocumentType{drawing},
	)

	assert.Len(t, matches, 1)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, res.Matched)
}

func TestReconcile_DistinctDRSIsNotDuplicate(t *testing.T) {
	res, matches := collect(
		[]ImportRow{
			row("ME", "DRW", "Drawing", "A"),
			row("ME", "DRW", "Drawing", "B"),
		},
		[]Discipline{mechanical},
		[]DocumentType{drawing},
	)

	require.Len(t, matches, 2)
	assert.Equal(t, "A", matches[0].DRS)
	assert.Equal(t, "B", matches[1].DRS)
	assert.Equal(t, 2, res.Processed)
}

func TestReconcile_IncompleteRowsIgnored(t *testing.T) {
	rows := []ImportRow{
		{},
		row("", "DRW", "Drawing", "A"),
		row("ME", "  ", "Drawing", "A"),
		row("ME", "DRW", "", "A"),
		{DisciplineCode: Text("ME"), DocumentTypeCode: Text("DRW")},
		{DRS: Text("A")},
	}

	res, matches := collect(rows, []Discipline{mechanical}, []DocumentType{drawing})

	assert.Empty(t, matches)
	assert.Equal(t, 0, res.Processed)
	assert.Equal(t, 0, res.Matched)
	assert.Empty(t, res.Warnings)
}

func TestReconcile_EmptyDRSIsAllowed(t *testing.T) {
	_, matches := collect(
		[]ImportRow{{
			DisciplineCode:   Text("ME"),
			DocumentTypeCode: Text("DRW"),
			DocumentTypeName: Text("Drawing"),
		}},
		[]Discipline{mechanical},
		[]DocumentType{drawing},
	)

	require.Len(t, matches, 1)
	assert.Equal(t, "", matches[0].DRS)
}

func TestReconcile_WarningsDeduplicated(t *testing.T) {
	res, _ := collect(
		[]ImportRow{
			row("XX", "DRW", "Drawing", "1"),
			row("XX", "DRW", "Drawing", "2"),
			row("ME", "DRW", "Sketch", "1"),
			row("ME", "DRW", "Sketch", "2"),
			row("YY", "DRW", "Drawing", ""),
		},
		[]Discipline{mechanical},
		[]DocumentType{drawing},
	)

	assert.Equal(t, 5, res.Processed)
	assert.Equal(t, []string{"XX", "YY"}, res.Details.MissingDisciplines)
	assert.Equal(t, []string{"DRW (Sketch) - in catalog: Drawing"}, res.Details.NameMismatches)
	assert.Equal(t, []string{
		"Disciplines not found by code: XX, YY",
		"Name mismatches: DRW (Sketch) - in catalog: Drawing",
	}, res.Warnings)
}

func TestReconcile_WarningCategoryOrder(t *testing.T) {
	res, _ := collect(
		[]ImportRow{
			row("ME", "DRW", "Sketch", ""),
			row("ME", "ZZ", "Unknown", ""),
			row("QQ", "DRW", "Drawing", ""),
		},
		[]Discipline{mechanical},
		[]DocumentType{drawing},
	)

	require.Len(t, res.Warnings, 3)
	assert.Equal(t, "Disciplines not found by code: QQ", res.Warnings[0])
	assert.Equal(t, "Document types not found by code: ZZ", res.Warnings[1])
	assert.Equal(t, "Name mismatches: DRW (Sketch) - in catalog: Drawing", res.Warnings[2])
}

func TestReconcile_DuplicateDisciplineCodeLastWins(t *testing.T) {
	_, matches := collect(
		[]ImportRow{row("ME", "DRW", "Drawing", "")},
		[]Discipline{mechanical, {ID: 42, Code: "me", Name: "Mechanical (new)"}},
		[]DocumentType{drawing},
	)

	require.Len(t, matches, 1)
	assert.Equal(t, int64(42), matches[0].Discipline.ID)
}

func TestReconcile_MatchesInRowOrder(t *testing.T) {
	spec := DocumentType{ID: 5, Code: "SPC", Name: "Specification"}
	_, matches := collect(
		[]ImportRow{
			row("EL", "SPC", "Specification", ""),
			row("ME", "DRW", "Drawing", ""),
			row("ME", "SPC", "Specification", ""),
		},
		[]Discipline{mechanical, electrical},
		[]DocumentType{drawing, spec},
	)

	require.Len(t, matches, 3)
	assert.Equal(t, electrical, matches[0].Discipline)
	assert.Equal(t, drawing, matches[1].DocumentType)
	assert.Equal(t, mechanical, matches[2].Discipline)
}

func TestReconcile_NilCallback(t *testing.T) {
	res := Reconcile([]ImportRow{row("ME", "DRW", "Drawing", "")}, []Discipline{mechanical}, []DocumentType{drawing}, nil)
	assert.Equal(t, 1, res.Matched)
}

func TestRowKey(t *testing.T) {
	assert.Equal(t, "ME__DRW__drawing__a", RowKey(row(" me ", "Drw", " Drawing ", " A ")))
	assert.NotEqual(t,
		RowKey(row("ME", "DRW", "General  Drawing", "")),
		RowKey(row("ME", "DRW", "General Drawing", "")),
	)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "DRW", NormalizeCode("  drw\t"))
	assert.Equal(t, "general arrangement drawing", NormalizeName(" General \n Arrangement   DRAWING "))
	assert.Equal(t, "", NormalizeName("   "))
}

func TestNormalize_ByteOrderMark(t *testing.T) {
	assert.Equal(t, "ME", NormalizeCode("\uFEFFme"))
	assert.Equal(t, "general drawing", NormalizeName("\uFEFF General\uFEFFDrawing "))
	assert.Equal(t, "ME__DRW__drawing__a", RowKey(row("\uFEFFME", "DRW", "Drawing\uFEFF", "\uFEFFA")))
}

func TestReconcile_ByteOrderMarkInCells(t *testing.T) {
	res, matches := collect(
		[]ImportRow{row("\uFEFFME", " DRW\uFEFF", "\uFEFFDrawing", "\uFEFFA")},
		[]Discipline{mechanical},
		[]DocumentType{drawing},
	)

	require.Len(t, matches, 1)
	assert.Equal(t, "A", matches[0].DRS)
	assert.Equal(t, 1, res.Matched)
	assert.Empty(t, res.Warnings)
}
