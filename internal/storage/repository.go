package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tcoboard/internal/core"

	_ "modernc.org/sqlite"
)

// Import statuses as stored in the imports table.
const (
	ImportStatusPending    = "pending"
	ImportStatusProcessing = "processing"
	ImportStatusCompleted  = "completed"
	ImportStatusFailed     = "failed"
)

// ErrImportNotFound is returned when an import ID does not exist.
var ErrImportNotFound = errors.New("import not found")

// Import is one ingest job: an uploaded workbook or a spreadsheet pull,
// tracked from submission through processing.
type Import struct {
	ID        int64
	Filename  string
	Source    string
	FilePath  string
	Status    string
	RowCount  int
	Warnings  []string
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const recordColumns = `year, quarter, warehouse, type, gl_account_no, gl_account_name,
	cost_type, tco_model_categories, opex_capex,
	total_incurred_cost, value_wh, value_trs, value_distribution, value_last_mile,
	value_proceed_3pl_wh, value_proceed_3pl_trs,
	total_pharmacy_dist_lm, total_proceed_3pl, total_distribution_cost`

// InsertRecords stores a parsed batch inside one transaction, tagged with the
// import that produced it so a re-run can replace the batch atomically.
func (r *SQLiteRepository) InsertRecords(ctx context.Context, importID int64, records []core.CostRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO cost_records (import_id, `+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.ExecContext(ctx, importID,
			rec.Year, rec.Quarter, rec.Warehouse, rec.Type, rec.GLAccountNo, rec.GLAccountName,
			rec.CostType, rec.TCOModelCategories, rec.OpexCapex,
			rec.TotalIncurredCost, rec.ValueWH, rec.ValueTRS, rec.ValueDistribution, rec.ValueLastMile,
			rec.ValueProceed3PLWH, rec.ValueProceed3PLTRS,
			rec.TotalPharmacyDistLM, rec.TotalProceed3PL, rec.TotalDistributionCost)
		if err != nil {
			return fmt.Errorf("insert cost record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}

	slog.InfoContext(ctx, "Cost records stored", "import_id", importID, "row_count", len(records))
	return nil
}

// ListRecords returns records matching the filter, in insertion order. A zero
// filter returns everything.
func (r *SQLiteRepository) ListRecords(ctx context.Context, f core.Filter) ([]core.CostRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM cost_records`
	var (
		conds []string
		args  []any
	)
	if f.Year != 0 {
		conds = append(conds, "year = ?")
		args = append(args, f.Year)
	}
	if f.Quarter != "" {
		conds = append(conds, "quarter = ?")
		args = append(args, f.Quarter)
	}
	if f.Warehouse != "" {
		conds = append(conds, "warehouse = ?")
		args = append(args, f.Warehouse)
	}
	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, f.Type)
	}
	if f.CostType != "" {
		conds = append(conds, "cost_type = ?")
		args = append(args, f.CostType)
	}
	if f.OpexCapex != "" {
		conds = append(conds, "opex_capex = ?")
		args = append(args, f.OpexCapex)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cost records: %w", err)
	}
	defer rows.Close()

	var out []core.CostRecord
	for rows.Next() {
		var rec core.CostRecord
		err := rows.Scan(
			&rec.Year, &rec.Quarter, &rec.Warehouse, &rec.Type, &rec.GLAccountNo, &rec.GLAccountName,
			&rec.CostType, &rec.TCOModelCategories, &rec.OpexCapex,
			&rec.TotalIncurredCost, &rec.ValueWH, &rec.ValueTRS, &rec.ValueDistribution, &rec.ValueLastMile,
			&rec.ValueProceed3PLWH, &rec.ValueProceed3PLTRS,
			&rec.TotalPharmacyDistLM, &rec.TotalProceed3PL, &rec.TotalDistributionCost)
		if err != nil {
			return nil, fmt.Errorf("scan cost record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cost records: %w", err)
	}
	return out, nil
}

// DeleteRecordsByImport removes all records produced by one import. Used to
// replace a batch before re-processing.
func (r *SQLiteRepository) DeleteRecordsByImport(ctx context.Context, importID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cost_records WHERE import_id = ?`, importID)
	if err != nil {
		return fmt.Errorf("delete records for import %d: %w", importID, err)
	}
	return nil
}

// CreateImport registers a new ingest job in pending state.
func (r *SQLiteRepository) CreateImport(ctx context.Context, filename, source, filePath string) (Import, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO imports (filename, source, file_path, status) VALUES (?, ?, ?, ?)`,
		filename, source, filePath, ImportStatusPending)
	if err != nil {
		return Import{}, fmt.Errorf("create import: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Import{}, fmt.Errorf("import id: %w", err)
	}

	slog.InfoContext(ctx, "Import registered", "import_id", id, "filename", filename, "source", source)
	return r.GetImport(ctx, id)
}

// GetImport loads one import by ID.
func (r *SQLiteRepository) GetImport(ctx context.Context, id int64) (Import, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, filename, source, file_path, status, row_count, warnings, error, created_at, updated_at
		 FROM imports WHERE id = ?`, id)
	return scanImport(row)
}

// ListPendingImports returns the oldest pending jobs, up to limit. The sweep
// loop in the worker uses this to recover jobs whose queue message was lost.
func (r *SQLiteRepository) ListPendingImports(ctx context.Context, limit int) ([]Import, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, filename, source, file_path, status, row_count, warnings, error, created_at, updated_at
		 FROM imports WHERE status = ? ORDER BY id LIMIT ?`, ImportStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending imports: %w", err)
	}
	defer rows.Close()

	var out []Import
	for rows.Next() {
		imp, err := scanImport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending imports: %w", err)
	}
	return out, nil
}

// MarkImportProcessing transitions a pending job to processing. It only
// succeeds for pending jobs, so two workers cannot claim the same import.
func (r *SQLiteRepository) MarkImportProcessing(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE imports SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		ImportStatusProcessing, id, ImportStatusPending)
	if err != nil {
		return fmt.Errorf("mark import processing: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("import %d is not pending", id)
	}
	return nil
}

// MarkImportCompleted records a successful run with its row count and any
// data-quality findings.
func (r *SQLiteRepository) MarkImportCompleted(ctx context.Context, id int64, rowCount int, warnings []string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE imports SET status = ?, row_count = ?, warnings = ?, error = '', updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		ImportStatusCompleted, rowCount, joinWarnings(warnings), id)
	if err != nil {
		return fmt.Errorf("mark import completed: %w", err)
	}
	slog.InfoContext(ctx, "Import completed", "import_id", id, "row_count", rowCount, "warning_count", len(warnings))
	return nil
}

// MarkImportFailed records a failed run with its error message.
func (r *SQLiteRepository) MarkImportFailed(ctx context.Context, id int64, errMsg string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE imports SET status = ?, error = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		ImportStatusFailed, errMsg, id)
	if err != nil {
		return fmt.Errorf("mark import failed: %w", err)
	}
	slog.WarnContext(ctx, "Import failed", "import_id", id, "error", errMsg)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanImport(row rowScanner) (Import, error) {
	var (
		imp      Import
		warnings string
	)
	err := row.Scan(&imp.ID, &imp.Filename, &imp.Source, &imp.FilePath, &imp.Status,
		&imp.RowCount, &warnings, &imp.Error, &imp.CreatedAt, &imp.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Import{}, ErrImportNotFound
	}
	if err != nil {
		return Import{}, fmt.Errorf("scan import: %w", err)
	}
	imp.Warnings = splitWarnings(warnings)
	return imp, nil
}

// Warnings are stored newline-joined; none of the ingest findings contain
// newlines.
func joinWarnings(warnings []string) string {
	return strings.Join(warnings, "\n")
}

func splitWarnings(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
