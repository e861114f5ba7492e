package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/docimport/internal/database"
	"github.com/JonMunkholm/docimport/internal/reconcile"
)

// Seed inserts every entry of snap into the catalog tables and returns the
// snapshot with the ids the database assigned. Ids in snap are ignored.
// Run it inside a transaction to keep a failed seed from leaving half a catalog.
func Seed(ctx context.Context, db database.DBTX, snap Snapshot) (Snapshot, error) {
	q := database.New(db)
	out := Snapshot{
		Disciplines:   make([]reconcile.Discipline, 0, len(snap.Disciplines)),
		DocumentTypes: make([]reconcile.DocumentType, 0, len(snap.DocumentTypes)),
	}

	for _, d := range snap.Disciplines {
		id, err := q.InsertDiscipline(ctx, database.InsertDisciplineParams{
			Code: d.Code,
			Name: d.Name,
		})
		if err != nil {
			return Snapshot{}, fmt.Errorf("insert discipline %q: %w", d.Code, err)
		}
		d.ID = id
		out.Disciplines = append(out.Disciplines, d)
	}

	for _, t := range snap.DocumentTypes {
		id, err := q.InsertDocumentType(ctx, database.InsertDocumentTypeParams{
			Code:   t.Code,
			Name:   t.Name,
			NameEn: optionalText(t.NameEn),
			Drs:    optionalText(t.DRS),
		})
		if err != nil {
			return Snapshot{}, fmt.Errorf("insert document type %q: %w", t.Code, err)
		}
		t.ID = id
		out.DocumentTypes = append(out.DocumentTypes, t)
	}
	return out, nil
}

func optionalText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
