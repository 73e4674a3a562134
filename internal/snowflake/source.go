// Package snowflake reads ledger records from a Snowflake warehouse copy of
// the ticket sales and expense tables.
package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ignite/cashflow-forecast/internal/forecast"
)

// Source implements ingest.Source against Snowflake.
type Source struct {
	db *sql.DB
}

// NewSource opens a Snowflake connection pool. The connection is verified on
// first use.
func NewSource(cfg Config) (*Source, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, fmt.Errorf("build snowflake dsn: %w", err)
	}
	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open snowflake connection: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Source{db: db}, nil
}

// NewSourceWithDB wraps an existing pool, for tests.
func NewSourceWithDB(db *sql.DB) *Source { return &Source{db: db} }

// Name implements ingest.Source.
func (s *Source) Name() string { return "snowflake" }

// Close closes the connection pool.
func (s *Source) Close() error { return s.db.Close() }

// Ping tests the connection.
func (s *Source) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// FetchRevenue returns every ticket sale.
func (s *Source) FetchRevenue(ctx context.Context) ([]forecast.RawRecord, error) {
	return s.fetch(ctx, `SELECT PRECIO, FECHA_VENTA FROM VENTA_BOLETOS`)
}

// FetchExpenses returns every expense.
func (s *Source) FetchExpenses(ctx context.Context) ([]forecast.RawRecord, error) {
	return s.fetch(ctx, `SELECT MONTO, FECHA FROM GASTOS`)
}

func (s *Source) fetch(ctx context.Context, query string) ([]forecast.RawRecord, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("snowflake query: %w", err)
	}
	defer rows.Close()

	var out []forecast.RawRecord
	for rows.Next() {
		var (
			amount sql.NullFloat64
			at     sql.NullTime
		)
		if err := rows.Scan(&amount, &at); err != nil {
			return nil, fmt.Errorf("snowflake scan: %w", err)
		}
		var rec forecast.RawRecord
		if amount.Valid {
			v := amount.Float64
			rec.Value = &v
		}
		if at.Valid {
			rec.Timestamp = at.Time.Format(time.RFC3339Nano)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
