package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Discipline struct {
	ID   int64
	Code string
	Name string
}

type DocumentType struct {
	ID     int64
	Code   string
	Name   string
	NameEn pgtype.Text
	Drs    pgtype.Text
}

type ProjectDocumentType struct {
	ProjectID      int64
	DisciplineID   int64
	DocumentTypeID int64
	Drs            string
	CreatedAt      pgtype.Timestamptz
}

type ImportRun struct {
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
	CreatedAt pgtype.Timestamptz
}
