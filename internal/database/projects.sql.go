package database

import (
	"context"
)

const insertProjectDocumentType = `-- name: InsertProjectDocumentType :execrows
INSERT INTO project_document_types (project_id, discipline_id, document_type_id, drs)
VALUES ($1, $2, $3, $4)
ON CONFLICT DO NOTHING
`

type InsertProjectDocumentTypeParams struct {
	ProjectID      int64
	DisciplineID   int64
	DocumentTypeID int64
	Drs            string
}

// InsertProjectDocumentType returns 0 when the link already exists.
func (q *Queries) InsertProjectDocumentType(ctx context.Context, arg InsertProjectDocumentTypeParams) (int64, error) {
	result, err := q.db.Exec(ctx, insertProjectDocumentType,
		arg.ProjectID,
		arg.DisciplineID,
		arg.DocumentTypeID,
		arg.Drs,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listProjectDocumentTypes = `-- name: ListProjectDocumentTypes :many
SELECT project_id, discipline_id, document_type_id, drs, created_at
FROM project_document_types
WHERE project_id = $1
ORDER BY created_at, discipline_id, document_type_id, drs
`

func (q *Queries) ListProjectDocumentTypes(ctx context.Context, projectID int64) ([]ProjectDocumentType, error) {
	rows, err := q.db.Query(ctx, listProjectDocumentTypes, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ProjectDocumentType
	for rows.Next() {
		var i ProjectDocumentType
		if err := rows.Scan(
			&i.ProjectID,
			&i.DisciplineID,
			&i.DocumentTypeID,
			&i.Drs,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
