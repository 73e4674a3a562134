package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ignite/cashflow-forecast/internal/forecast"
)

// LedgerSource reads ticket sales and expenses straight from the ledger
// database. It implements ingest.Source.
type LedgerSource struct{ db *sql.DB }

// NewLedgerSource creates a Postgres-backed record source.
func NewLedgerSource(db *sql.DB) *LedgerSource { return &LedgerSource{db: db} }

// Name implements ingest.Source.
func (s *LedgerSource) Name() string { return "postgres" }

// FetchRevenue returns every ticket sale as a raw record.
func (s *LedgerSource) FetchRevenue(ctx context.Context) ([]forecast.RawRecord, error) {
	return s.fetch(ctx, `SELECT precio, fecha_venta FROM venta_boletos ORDER BY fecha_venta`)
}

// FetchExpenses returns every expense as a raw record.
func (s *LedgerSource) FetchExpenses(ctx context.Context) ([]forecast.RawRecord, error) {
	return s.fetch(ctx, `SELECT monto, fecha FROM gastos ORDER BY fecha`)
}

func (s *LedgerSource) fetch(ctx context.Context, query string) ([]forecast.RawRecord, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	out := make([]forecast.RawRecord, 0)
	for rows.Next() {
		var (
			value sql.NullFloat64
			ts    sql.NullTime
		)
		if err := rows.Scan(&value, &ts); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		var rec forecast.RawRecord
		if value.Valid {
			v := value.Float64
			rec.Value = &v
		}
		if ts.Valid {
			rec.Timestamp = ts.Time.Format(time.RFC3339Nano)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger rows: %w", err)
	}
	return out, nil
}
