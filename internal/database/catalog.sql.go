package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const listDisciplines = `-- name: ListDisciplines :many
SELECT id, code, name FROM disciplines ORDER BY id
`

func (q *Queries) ListDisciplines(ctx context.Context) ([]Discipline, error) {
	rows, err := q.db.Query(ctx, listDisciplines)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Discipline
	for rows.Next() {
		var i Discipline
		if err := rows.Scan(&i.ID, &i.Code, &i.Name); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listDocumentTypes = `-- name: ListDocumentTypes :many
SELECT id, code, name, name_en, drs FROM document_types ORDER BY id
`

func (q *Queries) ListDocumentTypes(ctx context.Context) ([]DocumentType, error) {
	rows, err := q.db.Query(ctx, listDocumentTypes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DocumentType
	for rows.Next() {
		var i DocumentType
		if err := rows.Scan(&i.ID, &i.Code, &i.Name, &i.NameEn, &i.Drs); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertDiscipline = `-- name: InsertDiscipline :one
INSERT INTO disciplines (code, name) VALUES ($1, $2) RETURNING id
`

type InsertDisciplineParams struct {
	Code string
	Name string
}

func (q *Queries) InsertDiscipline(ctx context.Context, arg InsertDisciplineParams) (int64, error) {
	row := q.db.QueryRow(ctx, insertDiscipline, arg.Code, arg.Name)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const insertDocumentType = `-- name: InsertDocumentType :one
INSERT INTO document_types (code, name, name_en, drs) VALUES ($1, $2, $3, $4) RETURNING id
`

type InsertDocumentTypeParams struct {
	Code   string
	Name   string
	NameEn pgtype.Text
	Drs    pgtype.Text
}

func (q *Queries) InsertDocumentType(ctx context.Context, arg InsertDocumentTypeParams) (int64, error) {
	row := q.db.QueryRow(ctx, insertDocumentType, arg.Code, arg.Name, arg.NameEn, arg.Drs)
	var id int64
	err := row.Scan(&id)
	return id, err
}
