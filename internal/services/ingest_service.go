package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"tcoboard/internal/core"
	"tcoboard/internal/ingest"
	"tcoboard/internal/ingest/excel"
	"tcoboard/internal/storage"
)

// Import sources as stored on the imports table.
const (
	SourceUpload      = "upload"
	SourceSpreadsheet = "spreadsheet"
)

// ImportStore is the slice of the repository the ingest service needs.
type ImportStore interface {
	CreateImport(ctx context.Context, filename, source, filePath string) (storage.Import, error)
	GetImport(ctx context.Context, id int64) (storage.Import, error)
	MarkImportProcessing(ctx context.Context, id int64) error
	MarkImportCompleted(ctx context.Context, id int64, rowCount int, warnings []string) error
	MarkImportFailed(ctx context.Context, id int64, errMsg string) error
	DeleteRecordsByImport(ctx context.Context, importID int64) error
	InsertRecords(ctx context.Context, importID int64, records []core.CostRecord) error
}

// JobPublisher enqueues an import job for asynchronous processing.
type JobPublisher interface {
	PublishImportJob(ctx context.Context, importID int64) error
}

// IngestService orchestrates cost data imports across upload storage, SQLite
// and the job queue. With no queue configured, imports run inline in the
// request.
type IngestService struct {
	store     ImportStore
	queue     JobPublisher
	sheets    ingest.RowSource
	uploadDir string
}

func NewIngestService(store ImportStore, queue JobPublisher, sheets ingest.RowSource, uploadDir string) *IngestService {
	return &IngestService{
		store:     store,
		queue:     queue,
		sheets:    sheets,
		uploadDir: uploadDir,
	}
}

// SubmitUpload saves an uploaded workbook to disk, registers the import job
// and hands it to the worker. The returned import reflects the state after
// submission: pending when queued, completed or failed when processed inline.
func (s *IngestService) SubmitUpload(ctx context.Context, filename string, file io.Reader) (storage.Import, error) {
	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		return storage.Import{}, fmt.Errorf("create upload directory: %w", err)
	}

	filename = filepath.Base(filename)
	path := filepath.Join(s.uploadDir, fmt.Sprintf("%d-%s", time.Now().UnixNano(), filename))
	dst, err := os.Create(path)
	if err != nil {
		return storage.Import{}, fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(path)
		return storage.Import{}, fmt.Errorf("save upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return storage.Import{}, fmt.Errorf("close upload file: %w", err)
	}

	imp, err := s.store.CreateImport(ctx, filename, SourceUpload, path)
	if err != nil {
		os.Remove(path)
		return storage.Import{}, fmt.Errorf("register import: %w", err)
	}

	return s.dispatch(ctx, imp)
}

// SubmitSpreadsheetPull registers an import that reads the configured Google
// Spreadsheet instead of an uploaded file.
func (s *IngestService) SubmitSpreadsheetPull(ctx context.Context) (storage.Import, error) {
	if s.sheets == nil {
		return storage.Import{}, fmt.Errorf("no spreadsheet source configured")
	}
	imp, err := s.store.CreateImport(ctx, "google-spreadsheet", SourceSpreadsheet, "")
	if err != nil {
		return storage.Import{}, fmt.Errorf("register import: %w", err)
	}
	return s.dispatch(ctx, imp)
}

func (s *IngestService) dispatch(ctx context.Context, imp storage.Import) (storage.Import, error) {
	if s.queue == nil {
		slog.WarnContext(ctx, "Job queue not available, processing import inline", "import_id", imp.ID)
		if err := s.ProcessImport(ctx, imp.ID); err != nil {
			slog.ErrorContext(ctx, "Inline import processing failed", "import_id", imp.ID, "error", err)
		}
		return s.store.GetImport(ctx, imp.ID)
	}

	if err := s.queue.PublishImportJob(ctx, imp.ID); err != nil {
		// The import stays pending; the worker's sweep loop will pick it up.
		slog.ErrorContext(ctx, "Failed to publish import job, leaving pending for sweep",
			"import_id", imp.ID, "error", err)
	}
	return imp, nil
}

// GetImport returns the current state of an import job.
func (s *IngestService) GetImport(ctx context.Context, id int64) (storage.Import, error) {
	return s.store.GetImport(ctx, id)
}

// ProcessImport runs one import job to completion: claim it, read its rows,
// replace the records it previously produced and record the outcome. A job
// that is not pending is skipped without error so a duplicate queue delivery
// is harmless.
func (s *IngestService) ProcessImport(ctx context.Context, id int64) error {
	imp, err := s.store.GetImport(ctx, id)
	if err != nil {
		return fmt.Errorf("load import %d: %w", id, err)
	}
	if imp.Status != storage.ImportStatusPending {
		slog.InfoContext(ctx, "Import already handled, skipping", "import_id", id, "status", imp.Status)
		return nil
	}
	if err := s.store.MarkImportProcessing(ctx, id); err != nil {
		return fmt.Errorf("claim import %d: %w", id, err)
	}

	records, warnings, err := s.loadRecords(ctx, imp)
	if err != nil {
		if markErr := s.store.MarkImportFailed(ctx, id, err.Error()); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark import failed", "import_id", id, "error", markErr)
		}
		return fmt.Errorf("load records for import %d: %w", id, err)
	}

	if err := s.store.DeleteRecordsByImport(ctx, id); err != nil {
		if markErr := s.store.MarkImportFailed(ctx, id, err.Error()); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark import failed", "import_id", id, "error", markErr)
		}
		return fmt.Errorf("clear previous records for import %d: %w", id, err)
	}
	if err := s.store.InsertRecords(ctx, id, records); err != nil {
		if markErr := s.store.MarkImportFailed(ctx, id, err.Error()); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark import failed", "import_id", id, "error", markErr)
		}
		return fmt.Errorf("store records for import %d: %w", id, err)
	}

	if err := s.store.MarkImportCompleted(ctx, id, len(records), warnings); err != nil {
		return fmt.Errorf("complete import %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Import processed",
		"import_id", id,
		"source", imp.Source,
		"row_count", len(records),
		"warning_count", len(warnings))
	return nil
}

func (s *IngestService) loadRecords(ctx context.Context, imp storage.Import) ([]core.CostRecord, []string, error) {
	switch imp.Source {
	case SourceUpload:
		src, err := excel.OpenFile(imp.FilePath, "")
		if err != nil {
			return nil, nil, err
		}
		return ingest.Load(ctx, src)
	case SourceSpreadsheet:
		if s.sheets == nil {
			return nil, nil, fmt.Errorf("no spreadsheet source configured")
		}
		return ingest.Load(ctx, s.sheets)
	default:
		return nil, nil, fmt.Errorf("unknown import source %q", imp.Source)
	}
}
