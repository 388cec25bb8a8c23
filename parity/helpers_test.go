package parity_test

import (
	"time"

	"github.com/meenmo/optcurve/parity"
	"github.com/meenmo/optcurve/pricing"
)

var testTradeDate = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

// syntheticChain builds an option chain priced exactly by Black-Scholes
// under the given rate curve, so put-call parity holds to machine precision
// and the calibrators should recover rate(T) at every tenor.
func syntheticChain(spot float64, tenorDays []int, rate func(years float64) float64, sigma, q float64) []parity.OptionRecord {
	moneyness := []float64{0.90, 0.95, 1.00, 1.05, 1.10}

	var records []parity.OptionRecord
	for _, days := range tenorDays {
		expiry := testTradeDate.AddDate(0, 0, days)
		years := float64(days) / 365.0
		r := rate(years)
		for _, m := range moneyness {
			strike := spot * m
			for _, typ := range []pricing.OptionType{pricing.Put, pricing.Call} {
				records = append(records, parity.OptionRecord{
					Expiry:    expiry,
					TradeDate: testTradeDate,
					Spot:      spot,
					Strike:    strike,
					Type:      typ,
					LastPrice: pricing.Price(spot, strike, years, r, q, sigma, typ),
					Volume:    100,
				})
			}
		}
	}
	return records
}
