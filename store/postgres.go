// Package store persists calibrated term structures to Postgres.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/meenmo/optcurve/parity"
)

// PostgresStore writes term structures to the discount_rates table. One row
// per (underlying, trade date, method, expiry); reruns overwrite in place.
type PostgresStore struct {
	db *sql.DB
}

// Open connects and pings the database.
func Open(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("store: ping postgres: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the discount_rates table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS discount_rates (
			underlying    text        NOT NULL,
			trade_date    date        NOT NULL,
			method        text        NOT NULL,
			expiry        date        NOT NULL,
			days          integer     NOT NULL,
			years         double precision NOT NULL,
			rate          double precision NOT NULL,
			status        text        NOT NULL,
			forward       double precision,
			forward_ratio double precision,
			updated_at    timestamptz NOT NULL DEFAULT now(),
			PRIMARY KEY (underlying, trade_date, method, expiry)
		)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("store: ensure schema: %w", err)
	}
	return nil
}

// SaveTermStructure upserts every tenor of one term structure in a single
// transaction, so readers never observe a partially written curve.
func (s *PostgresStore) SaveTermStructure(ctx context.Context, underlying string, tradeDate time.Time, ts parity.TermStructure) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback()

	const upsert = `
		INSERT INTO discount_rates
			(underlying, trade_date, method, expiry, days, years, rate, status, forward, forward_ratio, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (underlying, trade_date, method, expiry) DO UPDATE SET
			days = EXCLUDED.days,
			years = EXCLUDED.years,
			rate = EXCLUDED.rate,
			status = EXCLUDED.status,
			forward = EXCLUDED.forward,
			forward_ratio = EXCLUDED.forward_ratio,
			updated_at = now()`

	stmt, err := tx.PrepareContext(ctx, upsert)
	if err != nil {
		return fmt.Errorf("store: prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, te := range ts.Tenors {
		forward := sql.NullFloat64{Float64: te.Forward.Forward, Valid: te.Forward.Forward > 0}
		ratio := sql.NullFloat64{Float64: te.Forward.Ratio, Valid: te.Forward.Ratio > 0}
		if _, err := stmt.ExecContext(ctx,
			underlying, tradeDate, ts.Method, te.Expiry, te.Days, te.Years,
			te.Rate, te.Status.String(), forward, ratio,
		); err != nil {
			return fmt.Errorf("store: upsert tenor %s: %w", te.Expiry.Format("2006-01-02"), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// LoadTermStructure reads one persisted curve back, ordered by expiry.
func (s *PostgresStore) LoadTermStructure(ctx context.Context, underlying string, tradeDate time.Time, method string) (parity.TermStructure, error) {
	const query = `
		SELECT expiry, days, years, rate, status, forward, forward_ratio
		FROM discount_rates
		WHERE underlying = $1 AND trade_date = $2 AND method = $3
		ORDER BY expiry`

	ts := parity.TermStructure{Method: method}
	rows, err := s.db.QueryContext(ctx, query, underlying, tradeDate, method)
	if err != nil {
		return ts, fmt.Errorf("store: query curve: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			te      parity.TenorEstimate
			status  string
			forward sql.NullFloat64
			ratio   sql.NullFloat64
		)
		if err := rows.Scan(&te.Expiry, &te.Days, &te.Years, &te.Rate, &status, &forward, &ratio); err != nil {
			return ts, fmt.Errorf("store: scan tenor: %w", err)
		}
		te.Status = parseStatus(status)
		if forward.Valid {
			te.Forward = parity.ForwardQuote{Expiry: te.Expiry, Forward: forward.Float64, Ratio: ratio.Float64}
		}
		ts.Tenors = append(ts.Tenors, te)
	}
	if err := rows.Err(); err != nil {
		return ts, fmt.Errorf("store: iterate tenors: %w", err)
	}
	return ts, nil
}

func parseStatus(s string) parity.RateStatus {
	switch s {
	case "resolved":
		return parity.StatusResolved
	case "interpolated":
		return parity.StatusInterpolated
	case "extrapolated":
		return parity.StatusExtrapolated
	default:
		return parity.StatusUnresolved
	}
}
