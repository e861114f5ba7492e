package core

import (
	"io"
	"time"

	"github.com/JonMunkholm/docimport/internal/reconcile"
)

// ImportStatus is the outcome recorded for an import run.
type ImportStatus string

const (
	StatusApplied ImportStatus = "applied"
	StatusPreview ImportStatus = "preview"
	StatusFailed  ImportStatus = "failed"
)

// ImportRequest describes one spreadsheet submitted for a project.
type ImportRequest struct {
	ProjectID int64
	FileName  string
	Reader    io.Reader
	Size      int64 // -1 when unknown
	SheetName string

	// Apply stores matched links. A false value is a dry run.
	Apply bool
}

// ImportResult is what an import reports back to the user.
type ImportResult struct {
	ID        string       `json:"id"`
	ProjectID int64        `json:"projectId"`
	FileName  string       `json:"fileName"`
	Status    ImportStatus `json:"status"`
	Format    string       `json:"format"`
	Sheet     string       `json:"sheet,omitempty"`
	RowCount  int          `json:"rowCount"`

	reconcile.Result

	Matches       []reconcile.MatchResult `json:"matches"`
	DisciplineIDs []int64                 `json:"disciplineIds"`
	Applied       int                     `json:"appliedCount"`
	CreatedAt     time.Time               `json:"createdAt"`
}

// Run is a stored import history entry.
type Run struct {
	ID        string       `json:"id"`
	ProjectID int64        `json:"projectId"`
	FileName  string       `json:"fileName"`
	Status    ImportStatus `json:"status"`
	Processed int          `json:"processedCount"`
	Matched   int          `json:"matchedCount"`
	Applied   int          `json:"appliedCount"`
	Warnings  []string     `json:"warnings"`
	Error     string       `json:"error,omitempty"`
	IPAddress string       `json:"ipAddress,omitempty"`
	UserAgent string       `json:"userAgent,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

// ProjectLink is a document type enabled for a project by an applied import.
type ProjectLink struct {
	reconcile.Link
	CreatedAt time.Time `json:"createdAt"`
}
