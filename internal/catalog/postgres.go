package catalog

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/docimport/internal/database"
	"github.com/JonMunkholm/docimport/internal/reconcile"
)

// Postgres reads the catalog tables.
type Postgres struct {
	q *database.Queries
}

// NewPostgres returns a Source backed by db.
func NewPostgres(db database.DBTX) *Postgres {
	return &Postgres{q: database.New(db)}
}

func (p *Postgres) Disciplines(ctx context.Context) ([]reconcile.Discipline, error) {
	rows, err := p.q.ListDisciplines(ctx)
	if err != nil {
		return nil, fmt.Errorf("list disciplines: %w", err)
	}
	out := make([]reconcile.Discipline, len(rows))
	for i, r := range rows {
		out[i] = reconcile.Discipline{ID: r.ID, Code: r.Code, Name: r.Name}
	}
	return out, nil
}

func (p *Postgres) DocumentTypes(ctx context.Context) ([]reconcile.DocumentType, error) {
	rows, err := p.q.ListDocumentTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list document types: %w", err)
	}
	out := make([]reconcile.DocumentType, len(rows))
	for i, r := range rows {
		out[i] = reconcile.DocumentType{
			ID:     r.ID,
			Code:   r.Code,
			Name:   r.Name,
			NameEn: r.NameEn.String,
			DRS:    r.Drs.String,
		}
	}
	return out, nil
}
