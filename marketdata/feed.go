// Package marketdata loads and normalizes option chain snapshots from CSV
// files, ClickHouse, or static fixtures, producing the records the
// calibration engine consumes.
package marketdata

import (
	"context"
	"time"

	"github.com/meenmo/optcurve/parity"
	"github.com/meenmo/optcurve/parity/config"
	"github.com/meenmo/optcurve/utils"
)

// ChainSource supplies the option chain for one underlying on one trade date.
type ChainSource interface {
	Chain(ctx context.Context, underlying string, tradeDate time.Time) ([]parity.OptionRecord, error)
}

// StaticChainSource is a map-backed implementation for development/testing.
type StaticChainSource struct {
	chains map[string][]parity.OptionRecord
}

func NewStaticChainSource() *StaticChainSource {
	return &StaticChainSource{chains: make(map[string][]parity.OptionRecord)}
}

// Put stores a chain snapshot for an underlying and trade date.
func (s *StaticChainSource) Put(underlying string, tradeDate time.Time, records []parity.OptionRecord) {
	s.chains[chainKey(underlying, tradeDate)] = records
}

func (s *StaticChainSource) Chain(_ context.Context, underlying string, tradeDate time.Time) ([]parity.OptionRecord, error) {
	return s.chains[chainKey(underlying, tradeDate)], nil
}

func chainKey(underlying string, tradeDate time.Time) string {
	return underlying + "@" + tradeDate.Format("2006-01-02")
}

// Filter applies the ingestion-level expiry filters: records closer than
// min_days are dropped, and unless all_expiries is set, the monthlies flag
// keeps only standard third-Friday expiries.
func Filter(records []parity.OptionRecord, cfg config.Params) []parity.OptionRecord {
	out := make([]parity.OptionRecord, 0, len(records))
	for _, r := range records {
		if utils.Days(r.TradeDate, r.Expiry) < float64(cfg.MinDays) {
			continue
		}
		if cfg.Monthlies && !cfg.AllExpiries && !utils.IsThirdFriday(r.Expiry) {
			continue
		}
		out = append(out, r)
	}
	return out
}
