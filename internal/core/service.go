package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/docimport/internal/catalog"
	"github.com/JonMunkholm/docimport/internal/logging"
	"github.com/JonMunkholm/docimport/internal/reconcile"
	"github.com/JonMunkholm/docimport/internal/sheet"
)

var (
	// ErrNoFile is returned when a request carries no spreadsheet.
	ErrNoFile = errors.New("no file provided")

	// ErrFileTooLarge is returned when a file exceeds Options.MaxFileSize.
	ErrFileTooLarge = errors.New("file too large")

	// ErrNoStore is returned by operations that need persistence when the
	// service was built without a Store.
	ErrNoStore = errors.New("import store not configured")
)

// ReadFailedWarning is shown when the file cannot be read as a spreadsheet.
const ReadFailedWarning = "Failed to read file"

// MaxHistoryLimit caps History page sizes.
const MaxHistoryLimit = 500

// Options configures the import service.
type Options struct {
	MaxFileSize    int64
	MaxRows        int
	LenientHeaders bool
	RequireColumns bool
	Timeout        time.Duration
	MaxConcurrent  int
	MaxWaitTime    time.Duration
	HistoryLimit   int
}

// Service runs spreadsheet imports against the reference catalog.
type Service struct {
	catalog catalog.Source
	store   Store
	limiter *ImportLimiter
	board   *WarningsBoard
	opts    Options

	now   func() time.Time
	newID func() string
}

// NewService creates a Service. store may be nil for preview-only use.
func NewService(src catalog.Source, store Store, opts Options) *Service {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 50
	}
	return &Service{
		catalog: src,
		store:   store,
		limiter: NewImportLimiter(opts.MaxConcurrent, opts.MaxWaitTime),
		board:   NewWarningsBoard(),
		opts:    opts,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Limiter exposes the import slots for health checks and shutdown.
func (s *Service) Limiter() *ImportLimiter {
	return s.limiter
}

// Warnings returns the per-project last-warnings board.
func (s *Service) Warnings() *WarningsBoard {
	return s.board
}

// Catalog returns the current reference lists.
func (s *Service) Catalog(ctx context.Context) (catalog.Snapshot, error) {
	return catalog.Load(ctx, s.catalog)
}

// Preview runs an import without storing links or history.
func (s *Service) Preview(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	req.Apply = false
	return s.Import(ctx, req)
}

// Import parses the sheet, reconciles it against the catalog and, when
// req.Apply is set, stores the matched links for the project.
//
// Once an import slot is taken the project's warnings are always
// overwritten. A failed import leaves a single line describing the failure
// (the generic read warning for an undecodable file) and returns the error;
// no partial result is produced.
func (s *Service) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	if req.Reader == nil {
		return nil, ErrNoFile
	}
	if req.Apply && s.store == nil {
		return nil, ErrNoStore
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	id := s.newID()
	logger := logging.WithFields(ctx,
		"import_id", id,
		"project_id", req.ProjectID,
		"file", req.FileName,
		"apply", req.Apply,
	)
	start := s.now()

	sh, err := s.readSheet(req)
	if err != nil {
		logger.Warn("import file rejected", "error", err)
		s.fail(ctx, logger, id, req, err, readFailure(err))
		return nil, fmt.Errorf("read %s: %w", req.FileName, err)
	}

	snap, err := catalog.Load(ctx, s.catalog)
	if err != nil {
		logger.Error("catalog load failed", "error", err)
		s.fail(ctx, logger, id, req, err, FormatUserError(err))
		return nil, err
	}

	collector := reconcile.NewCollector()
	var matches []reconcile.MatchResult
	res := reconcile.Reconcile(sh.Rows, snap.Disciplines, snap.DocumentTypes, func(m reconcile.MatchResult) {
		matches = append(matches, m)
		collector.Add(m)
	})

	result := &ImportResult{
		ID:            id,
		ProjectID:     req.ProjectID,
		FileName:      req.FileName,
		Status:        StatusPreview,
		Format:        string(sh.Format),
		Sheet:         sh.Name,
		RowCount:      len(sh.Rows),
		Result:        res,
		Matches:       nonNilMatches(matches),
		DisciplineIDs: collector.DisciplineIDs(),
		CreatedAt:     start,
	}
	if result.DisciplineIDs == nil {
		result.DisciplineIDs = []int64{}
	}

	if req.Apply {
		added, err := s.store.ApplyLinks(ctx, req.ProjectID, collector.Links())
		if err != nil {
			logger.Error("apply links failed", "error", err, "links", collector.Len())
			err = fmt.Errorf("apply links: %w", err)
			s.fail(ctx, logger, id, req, err, FormatUserError(err))
			return nil, err
		}
		result.Applied = added
		result.Status = StatusApplied

		if err := s.store.RecordRun(ctx, s.runFromResult(ctx, result)); err != nil {
			logger.Error("record import run failed", "error", err)
		}
	}

	s.board.Set(req.ProjectID, WarningsEntry{
		ImportID: id,
		FileName: req.FileName,
		Warnings: res.Warnings,
	})

	logger.Info("import completed",
		"processed", res.Processed,
		"matched", res.Matched,
		"applied", result.Applied,
		"warnings", len(res.Warnings),
		"duration_ms", s.now().Sub(start).Milliseconds(),
	)

	return result, nil
}

func (s *Service) readSheet(req ImportRequest) (*sheet.Sheet, error) {
	if s.opts.MaxFileSize > 0 && req.Size > s.opts.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, req.Size, s.opts.MaxFileSize)
	}

	r := req.Reader
	if s.opts.MaxFileSize > 0 {
		data, err := io.ReadAll(io.LimitReader(r, s.opts.MaxFileSize+1))
		if err != nil {
			return nil, err
		}
		if int64(len(data)) > s.opts.MaxFileSize {
			return nil, fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, s.opts.MaxFileSize)
		}
		r = bytes.NewReader(data)
	}

	return sheet.Parse(req.FileName, r, sheet.Options{
		SheetName:      req.SheetName,
		LenientHeaders: s.opts.LenientHeaders,
		RequireColumns: s.opts.RequireColumns,
		MaxRows:        s.opts.MaxRows,
	})
}

// readFailure is the warning shown for a file that could not be imported.
// Undecodable input gets the generic warning; anything else describes the
// problem.
func readFailure(err error) string {
	var pe *sheet.ParseError
	if errors.As(err, &pe) && !errors.Is(err, sheet.ErrTooManyRows) && !errors.Is(err, sheet.ErrEmptySheet) {
		return ReadFailedWarning
	}
	return FormatUserError(err)
}

func (s *Service) runFromResult(ctx context.Context, r *ImportResult) Run {
	return Run{
		ID:        r.ID,
		ProjectID: r.ProjectID,
		FileName:  r.FileName,
		Status:    r.Status,
		Processed: r.Processed,
		Matched:   r.Matched,
		Applied:   r.Applied,
		Warnings:  r.Warnings,
		IPAddress: IPAddressFromContext(ctx),
		UserAgent: UserAgentFromContext(ctx),
		CreatedAt: r.CreatedAt,
	}
}

// fail replaces the project's warnings with a single line for a failed
// import and, for applies, records the failed run.
func (s *Service) fail(ctx context.Context, logger *slog.Logger, id string, req ImportRequest, cause error, warning string) {
	s.board.Set(req.ProjectID, WarningsEntry{
		ImportID: id,
		FileName: req.FileName,
		Warnings: []string{warning},
	})
	if req.Apply {
		s.recordFailure(ctx, logger, id, req, cause)
	}
}

// recordFailure stores a failed run. Errors are logged, not returned: the
// import error is what the caller needs to see.
func (s *Service) recordFailure(ctx context.Context, logger *slog.Logger, id string, req ImportRequest, cause error) {
	if s.store == nil {
		return
	}
	run := Run{
		ID:        id,
		ProjectID: req.ProjectID,
		FileName:  req.FileName,
		Status:    StatusFailed,
		Warnings:  []string{},
		Error:     FormatUserError(cause),
		IPAddress: IPAddressFromContext(ctx),
		UserAgent: UserAgentFromContext(ctx),
		CreatedAt: s.now(),
	}
	if err := s.store.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		logger.Error("record failed import run", "error", err)
	}
}

// History returns the project's most recent runs, newest first.
func (s *Service) History(ctx context.Context, projectID int64, limit int) ([]Run, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	if limit <= 0 {
		limit = s.opts.HistoryLimit
	}
	limit = min(limit, MaxHistoryLimit)
	return s.store.ListRuns(ctx, projectID, limit)
}

// Run returns one import run by ID.
func (s *Service) Run(ctx context.Context, id string) (Run, error) {
	if s.store == nil {
		return Run{}, ErrNoStore
	}
	return s.store.GetRun(ctx, id)
}

// ProjectLinks returns the document types enabled for a project.
func (s *Service) ProjectLinks(ctx context.Context, projectID int64) ([]ProjectLink, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.ProjectLinks(ctx, projectID)
}

func nonNilMatches(m []reconcile.MatchResult) []reconcile.MatchResult {
	if m == nil {
		return []reconcile.MatchResult{}
	}
	return m
}
