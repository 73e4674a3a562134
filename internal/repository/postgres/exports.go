package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ignite/cashflow-forecast/internal/storage"
)

// ExportRepo implements storage.Index against the forecast_exports table.
type ExportRepo struct{ db *sql.DB }

// NewExportRepo creates a Postgres-backed export index.
func NewExportRepo(db *sql.DB) *ExportRepo { return &ExportRepo{db: db} }

func (r *ExportRepo) RecordExport(ctx context.Context, m storage.ExportMeta) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO forecast_exports
			(id, object_key, backend, snapshot_version, model, period, horizon,
			 revenue_outcome, expense_outcome, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, m.ID, m.Key, m.Backend, m.SnapshotVersion, m.Model, m.Period, m.Horizon,
		m.RevenueOutcome, m.ExpenseOutcome, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("record export: %w", err)
	}
	return nil
}

func (r *ExportRepo) GetExport(ctx context.Context, id string) (*storage.ExportMeta, error) {
	var m storage.ExportMeta
	err := r.db.QueryRowContext(ctx, `
		SELECT id, object_key, backend, snapshot_version, model, period, horizon,
		       revenue_outcome, expense_outcome, created_at
		FROM forecast_exports WHERE id = $1
	`, id).Scan(&m.ID, &m.Key, &m.Backend, &m.SnapshotVersion, &m.Model, &m.Period, &m.Horizon,
		&m.RevenueOutcome, &m.ExpenseOutcome, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrExportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get export: %w", err)
	}
	return &m, nil
}

// ListExports returns the most recent exports, newest first.
func (r *ExportRepo) ListExports(ctx context.Context, limit int) ([]storage.ExportMeta, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, object_key, backend, snapshot_version, model, period, horizon,
		       revenue_outcome, expense_outcome, created_at
		FROM forecast_exports ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	var out []storage.ExportMeta
	for rows.Next() {
		var m storage.ExportMeta
		if err := rows.Scan(&m.ID, &m.Key, &m.Backend, &m.SnapshotVersion, &m.Model, &m.Period, &m.Horizon,
			&m.RevenueOutcome, &m.ExpenseOutcome, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
