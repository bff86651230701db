package store

import (
	"context"
	"fmt"
)

// schemaStatements creates the five entity tables plus the audit log.
// Statements are idempotent so startup is safe against an existing database.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS imports (
		id UUID PRIMARY KEY,
		store_id BIGINT NOT NULL,
		imported_by TEXT NOT NULL,
		source_filename TEXT NOT NULL,
		source_sha256 TEXT NOT NULL,
		raw_payload TEXT NOT NULL,
		imported_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS suppliers (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS imports_normalized (
		id UUID PRIMARY KEY,
		import_id UUID NOT NULL REFERENCES imports(id),
		store_id BIGINT NOT NULL,
		supplier_id BIGINT NOT NULL REFERENCES suppliers(id),
		metric_date DATE NOT NULL,
		amount DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS daily_metrics (
		id UUID PRIMARY KEY,
		store_id BIGINT NOT NULL,
		metric_date DATE NOT NULL,
		total_amount DOUBLE PRECISION NOT NULL,
		source_import_id UUID NOT NULL REFERENCES imports(id),
		UNIQUE (store_id, metric_date, source_import_id)
	)`,
	`CREATE TABLE IF NOT EXISTS reports (
		id UUID PRIMARY KEY,
		store_id BIGINT NOT NULL,
		generated_from_import_id UUID NOT NULL REFERENCES imports(id),
		generated_by TEXT NOT NULL,
		snapshot_json JSONB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id UUID PRIMARY KEY,
		actor TEXT NOT NULL,
		action TEXT NOT NULL,
		target_type TEXT NOT NULL,
		target_id UUID NOT NULL,
		metadata JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_imports_normalized_import ON imports_normalized (import_id)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_target ON audit_logs (target_type, target_id)`,
}

// EnsureSchema creates any missing tables and indexes on startup.
func EnsureSchema(ctx context.Context, db DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
