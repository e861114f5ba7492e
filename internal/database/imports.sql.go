package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const importRunColumns = `id, project_id, file_name, status, processed, matched, applied, warnings, error, ip_address, user_agent, created_at`

const insertImportRun = `-- name: InsertImportRun :exec
INSERT INTO import_runs (id, project_id, file_name, status, processed, matched, applied, warnings, error, ip_address, user_agent)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

type InsertImportRunParams struct {
	ID        pgtype.UUID
	ProjectID int64
	FileName  string
	Status    string
	Processed int32
	Matched   int32
	Applied   int32
	Warnings  []byte
	Error     pgtype.Text
	IpAddress pgtype.Text
	UserAgent pgtype.Text
}

func (q *Queries) InsertImportRun(ctx context.Context, arg InsertImportRunParams) error {
	_, err := q.db.Exec(ctx, insertImportRun,
		arg.ID,
		arg.ProjectID,
		arg.FileName,
		arg.Status,
		arg.Processed,
		arg.Matched,
		arg.Applied,
		arg.Warnings,
		arg.Error,
		arg.IpAddress,
		arg.UserAgent,
	)
	return err
}

const getImportRun = `-- name: GetImportRun :one
SELECT ` + importRunColumns + ` FROM import_runs WHERE id = $1
`

func (q *Queries) GetImportRun(ctx context.Context, id pgtype.UUID) (ImportRun, error) {
	row := q.db.QueryRow(ctx, getImportRun, id)
	var i ImportRun
	err := row.Scan(
		&i.ID,
		&i.ProjectID,
		&i.FileName,
		&i.Status,
		&i.Processed,
		&i.Matched,
		&i.Applied,
		&i.Warnings,
		&i.Error,
		&i.IpAddress,
		&i.UserAgent,
		&i.CreatedAt,
	)
	return i, err
}

const listImportRuns = `-- name: ListImportRuns :many
SELECT ` + importRunColumns + ` FROM import_runs
WHERE project_id = $1
ORDER BY created_at DESC
LIMIT $2
`

type ListImportRunsParams struct {
	ProjectID int64
	Limit     int32
}

func (q *Queries) ListImportRuns(ctx context.Context, arg ListImportRunsParams) ([]ImportRun, error) {
	rows, err := q.db.Query(ctx, listImportRuns, arg.ProjectID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ImportRun
	for rows.Next() {
		var i ImportRun
		if err := rows.Scan(
			&i.ID,
			&i.ProjectID,
			&i.FileName,
			&i.Status,
			&i.Processed,
			&i.Matched,
			&i.Applied,
			&i.Warnings,
			&i.Error,
			&i.IpAddress,
			&i.UserAgent,
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
