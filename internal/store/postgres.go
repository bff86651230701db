// Package store persists imports and everything derived from them in
// PostgreSQL. One import is written as a single transaction: the import
// record, its audit entry, every normalized row, the per-day metric
// accumulators, the report snapshot, and the report audit entry either all
// commit together or none of them exist.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/storeops/imports-api/internal/imports"
)

// DB is the subset of pgxpool.Pool the store needs. Tests substitute a fake.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Audit action kinds recorded by the import transaction.
const (
	ActionImportCreated   = "IMPORT_CREATED"
	ActionReportGenerated = "REPORT_GENERATED"
)

// Store implements imports.Store on PostgreSQL.
type Store struct {
	db DB
}

// New creates a Store over the given connection pool.
func New(db DB) *Store {
	return &Store{db: db}
}

// PersistImport writes one accepted import and all derived entities inside a
// single transaction.
//
// Step order within the transaction is fixed: import record, IMPORT_CREATED
// audit entry, then per row (in input order) supplier resolution, normalized
// row insert, daily metric upsert, then the report snapshot and its
// REPORT_GENERATED audit entry. Any failure rolls the whole transaction back.
func (s *Store) PersistImport(ctx context.Context, in imports.PersistInput) (imports.PersistOutput, error) {
	var out imports.PersistOutput

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return out, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	importID, err := s.insertImport(ctx, tx, in)
	if err != nil {
		return out, fmt.Errorf("persist import: %w", err)
	}

	if err := s.insertRowsAndMetrics(ctx, tx, importID, in); err != nil {
		return out, fmt.Errorf("persist rows and metrics: %w", err)
	}

	reportID, err := s.insertReport(ctx, tx, importID, in)
	if err != nil {
		return out, fmt.Errorf("persist report: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return out, fmt.Errorf("commit transaction: %w", err)
	}

	out.ImportID = importID
	out.ReportID = reportID
	return out, nil
}

// insertImport writes the import record and its audit entry.
func (s *Store) insertImport(ctx context.Context, tx pgx.Tx, in imports.PersistInput) (uuid.UUID, error) {
	importID := uuid.New()

	_, err := tx.Exec(ctx, `
		INSERT INTO imports (
			id, store_id, imported_by, source_filename, source_sha256, raw_payload, imported_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		importID, in.StoreID, in.ImportedBy, in.FileName, in.FileSHA256, in.RawPayload, in.ImportedAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert import: %w", err)
	}

	metadata := map[string]any{
		"store_id": in.StoreID,
		"filename": in.FileName,
		"sha256":   in.FileSHA256,
	}
	if err := s.insertAudit(ctx, tx, in.ImportedBy, ActionImportCreated, "imports", importID, metadata, in.ImportedAt); err != nil {
		return uuid.Nil, err
	}

	return importID, nil
}

// insertRowsAndMetrics writes every normalized row in input order, resolving
// its supplier and accumulating the per-day metric as it goes.
func (s *Store) insertRowsAndMetrics(ctx context.Context, tx pgx.Tx, importID uuid.UUID, in imports.PersistInput) error {
	for i, row := range in.Rows {
		supplierID, err := s.resolveSupplier(ctx, tx, row.SupplierName)
		if err != nil {
			return fmt.Errorf("row %d: resolve supplier %q: %w", i+1, row.SupplierName, err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO imports_normalized (id, import_id, store_id, supplier_id, metric_date, amount)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New(), importID, in.StoreID, supplierID, row.Date, row.Amount,
		)
		if err != nil {
			return fmt.Errorf("row %d: insert normalized row: %w", i+1, err)
		}

		// Accumulator keyed per (store, date, import): a repeated date within
		// this import increments in place, separate imports never merge.
		_, err = tx.Exec(ctx, `
			INSERT INTO daily_metrics (id, store_id, metric_date, total_amount, source_import_id)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (store_id, metric_date, source_import_id)
			DO UPDATE SET total_amount = daily_metrics.total_amount + EXCLUDED.total_amount`,
			uuid.New(), in.StoreID, row.Date, row.Amount, importID,
		)
		if err != nil {
			return fmt.Errorf("row %d: upsert daily metric: %w", i+1, err)
		}
	}
	return nil
}

// resolveSupplier maps a supplier name to its stable id, creating the row on
// first occurrence. The conflict clause makes this a single atomic round trip
// that is safe under concurrent imports introducing the same name: both
// callers see the same id and at most one row is created.
func (s *Store) resolveSupplier(ctx context.Context, tx pgx.Tx, name string) (int64, error) {
	var supplierID int64
	err := tx.QueryRow(ctx, `
		INSERT INTO suppliers (name)
		VALUES ($1)
		ON CONFLICT (name)
		DO UPDATE SET name = EXCLUDED.name
		RETURNING id`,
		name,
	).Scan(&supplierID)
	if err != nil {
		return 0, err
	}
	return supplierID, nil
}

// insertReport writes the report snapshot and its audit entry.
func (s *Store) insertReport(ctx context.Context, tx pgx.Tx, importID uuid.UUID, in imports.PersistInput) (uuid.UUID, error) {
	reportID := uuid.New()

	snapshot, err := json.Marshal(struct {
		StoreID               int64                `json:"store_id"`
		GeneratedFromImportID uuid.UUID            `json:"generated_from_import_id"`
		DailyTotals           []imports.DailyTotal `json:"daily_totals"`
		TotalAmount           float64              `json:"total_amount"`
	}{
		StoreID:               in.StoreID,
		GeneratedFromImportID: importID,
		DailyTotals:           in.DailyTotals,
		TotalAmount:           in.TotalAmount,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO reports (id, store_id, generated_from_import_id, generated_by, snapshot_json)
		VALUES ($1, $2, $3, $4, $5)`,
		reportID, in.StoreID, importID, in.ImportedBy, snapshot,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert report: %w", err)
	}

	metadata := map[string]any{
		"generated_from_import_id": importID,
		"total_amount":             in.TotalAmount,
	}
	if err := s.insertAudit(ctx, tx, in.ImportedBy, ActionReportGenerated, "reports", reportID, metadata, in.ImportedAt); err != nil {
		return uuid.Nil, err
	}

	return reportID, nil
}

// insertAudit appends one audit log entry inside the import transaction.
func (s *Store) insertAudit(ctx context.Context, tx pgx.Tx, actor, action, targetType string, targetID uuid.UUID, metadata map[string]any, at time.Time) error {
	payload, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO audit_logs (id, actor, action, target_type, target_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New(), actor, action, targetType, targetID, payload, at,
	)
	if err != nil {
		return fmt.Errorf("insert audit log %s: %w", action, err)
	}
	return nil
}

// GetImport returns a persisted import by id, without its raw payload.
func (s *Store) GetImport(ctx context.Context, id uuid.UUID) (*imports.ImportRecord, error) {
	var rec imports.ImportRecord
	err := s.db.QueryRow(ctx, `
		SELECT id, store_id, imported_by, source_filename, source_sha256, imported_at
		FROM imports
		WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.StoreID, &rec.ImportedBy, &rec.FileName, &rec.FileSHA256, &rec.ImportedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, imports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get import: %w", err)
	}
	return &rec, nil
}

// GetReport returns a persisted report snapshot by id.
func (s *Store) GetReport(ctx context.Context, id uuid.UUID) (*imports.ReportRecord, error) {
	var (
		rec      imports.ReportRecord
		snapshot []byte
	)
	err := s.db.QueryRow(ctx, `
		SELECT id, store_id, generated_from_import_id, generated_by, snapshot_json
		FROM reports
		WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.StoreID, &rec.GeneratedFromImportID, &rec.GeneratedBy, &snapshot)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, imports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	rec.Snapshot = snapshot
	return &rec, nil
}
