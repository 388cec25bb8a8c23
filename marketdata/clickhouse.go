package marketdata

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"

	"github.com/meenmo/optcurve/parity"
	"github.com/meenmo/optcurve/pricing"
)

// ClickHouseSource reads end-of-day option chain snapshots from a ClickHouse
// options table.
type ClickHouseSource struct {
	db *sql.DB
}

// OpenClickHouse connects and pings the server.
func OpenClickHouse(dsn string) (*ClickHouseSource, error) {
	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return nil, fmt.Errorf("marketdata: open clickhouse: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("marketdata: ping clickhouse: %w", err)
	}
	return &ClickHouseSource{db: db}, nil
}

func (s *ClickHouseSource) Close() error {
	return s.db.Close()
}

func (s *ClickHouseSource) Chain(ctx context.Context, underlying string, tradeDate time.Time) ([]parity.OptionRecord, error) {
	const query = `
		SELECT
			expiry,
			option_type,
			strike,
			spot_price,
			ltp,
			bid,
			ask,
			volume,
			open_interest
		FROM options_chain
		WHERE underlying = ?
		  AND trade_date = toDate(?)
		ORDER BY expiry, strike, option_type
	`
	rows, err := s.db.QueryContext(ctx, query, underlying, tradeDate.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("marketdata: query chain: %w", err)
	}
	defer rows.Close()

	out := make([]parity.OptionRecord, 0)
	for rows.Next() {
		var (
			rec parity.OptionRecord
			typ string
		)
		if err := rows.Scan(
			&rec.Expiry,
			&typ,
			&rec.Strike,
			&rec.Spot,
			&rec.LastPrice,
			&rec.Bid,
			&rec.Ask,
			&rec.Volume,
			&rec.OpenInterest,
		); err != nil {
			return nil, fmt.Errorf("marketdata: scan chain row: %w", err)
		}
		rec.TradeDate = tradeDate
		rec.Type = pricing.OptionType(typ)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("marketdata: iterate chain rows: %w", err)
	}
	return out, nil
}
