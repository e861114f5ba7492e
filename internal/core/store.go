package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	db "github.com/JonMunkholm/docimport/internal/database"
	"github.com/JonMunkholm/docimport/internal/reconcile"
)

// ErrRunNotFound is returned when an import ID has no history row.
var ErrRunNotFound = errors.New("import not found")

// Store persists applied links and import history.
type Store interface {
	// ApplyLinks stores links for a project in one transaction and returns
	// how many were new.
	ApplyLinks(ctx context.Context, projectID int64, links []reconcile.Link) (int, error)
	ProjectLinks(ctx context.Context, projectID int64) ([]ProjectLink, error)

	RecordRun(ctx context.Context, run Run) error
	ListRuns(ctx context.Context, projectID int64, limit int) ([]Run, error)
	GetRun(ctx context.Context, id string) (Run, error)
}

// PGStore is the PostgreSQL Store.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a Store backed by pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) ApplyLinks(ctx context.Context, projectID int64, links []reconcile.Link) (int, error) {
	if len(links) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	q := db.New(tx)
	added := 0
	for _, l := range links {
		n, err := q.InsertProjectDocumentType(ctx, db.InsertProjectDocumentTypeParams{
			ProjectID:      projectID,
			DisciplineID:   l.DisciplineID,
			DocumentTypeID: l.DocumentTypeID,
			Drs:            l.DRS,
		})
		if err != nil {
			return 0, fmt.Errorf("insert link %d/%d: %w", l.DisciplineID, l.DocumentTypeID, err)
		}
		added += int(n)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return added, nil
}

func (s *PGStore) ProjectLinks(ctx context.Context, projectID int64) ([]ProjectLink, error) {
	rows, err := db.New(s.pool).ListProjectDocumentTypes(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project links: %w", err)
	}

	links := make([]ProjectLink, len(rows))
	for i, r := range rows {
		links[i] = ProjectLink{
			Link: reconcile.Link{
				DisciplineID:   r.DisciplineID,
				DocumentTypeID: r.DocumentTypeID,
				DRS:            r.Drs,
			},
			CreatedAt: r.CreatedAt.Time,
		}
	}
	return links, nil
}

func (s *PGStore) RecordRun(ctx context.Context, run Run) error {
	warnings, err := json.Marshal(nonNil(run.Warnings))
	if err != nil {
		return fmt.Errorf("encode warnings: %w", err)
	}

	err = db.New(s.pool).InsertImportRun(ctx, db.InsertImportRunParams{
		ID:        toPgUUID(run.ID),
		ProjectID: run.ProjectID,
		FileName:  run.FileName,
		Status:    string(run.Status),
		Processed: int32(run.Processed),
		Matched:   int32(run.Matched),
		Applied:   int32(run.Applied),
		Warnings:  warnings,
		Error:     toPgText(run.Error),
		IpAddress: toPgText(run.IPAddress),
		UserAgent: toPgText(run.UserAgent),
	})
	if err != nil {
		return fmt.Errorf("insert import run: %w", err)
	}
	return nil
}

func (s *PGStore) ListRuns(ctx context.Context, projectID int64, limit int) ([]Run, error) {
	rows, err := db.New(s.pool).ListImportRuns(ctx, db.ListImportRunsParams{
		ProjectID: projectID,
		Limit:     int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}

	runs := make([]Run, 0, len(rows))
	for _, r := range rows {
		run, err := runFromRow(r)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func (s *PGStore) GetRun(ctx context.Context, id string) (Run, error) {
	uid := toPgUUID(id)
	if !uid.Valid {
		return Run{}, ErrRunNotFound
	}

	row, err := db.New(s.pool).GetImportRun(ctx, uid)
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("get import run: %w", err)
	}
	return runFromRow(row)
}

func runFromRow(r db.ImportRun) (Run, error) {
	run := Run{
		ID:        uuidToString(r.ID),
		ProjectID: r.ProjectID,
		FileName:  r.FileName,
		Status:    ImportStatus(r.Status),
		Processed: int(r.Processed),
		Matched:   int(r.Matched),
		Applied:   int(r.Applied),
		Error:     r.Error.String,
		IPAddress: r.IpAddress.String,
		UserAgent: r.UserAgent.String,
		CreatedAt: r.CreatedAt.Time,
	}
	if len(r.Warnings) > 0 {
		if err := json.Unmarshal(r.Warnings, &run.Warnings); err != nil {
			return Run{}, fmt.Errorf("decode warnings of run %s: %w", run.ID, err)
		}
	}
	run.Warnings = nonNil(run.Warnings)
	return run, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgUUID(s string) pgtype.UUID {
	if s == "" {
		return pgtype.UUID{Valid: false}
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}

func uuidToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}
