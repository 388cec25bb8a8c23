package main

import (
	"fmt"
	"log"
	"time"

	"github.com/meenmo/optcurve/parity"
	"github.com/meenmo/optcurve/parity/config"
	"github.com/meenmo/optcurve/pricing"
)

// Demo: calibrate a discount term structure from a synthetic option chain
// priced at a known flat 5% rate.
func main() {
	tradeDate := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	const (
		spot  = 100.0
		rate  = 0.05
		sigma = 0.25
	)

	var records []parity.OptionRecord
	for _, days := range []int{30, 91, 182, 365} {
		expiry := tradeDate.AddDate(0, 0, days)
		years := float64(days) / 365.0
		for _, strike := range []float64{90, 95, 100, 105, 110} {
			for _, typ := range []pricing.OptionType{pricing.Put, pricing.Call} {
				records = append(records, parity.OptionRecord{
					Expiry:    expiry,
					TradeDate: tradeDate,
					Spot:      spot,
					Strike:    strike,
					Type:      typ,
					LastPrice: pricing.Price(spot, strike, years, rate, 0, sigma, typ),
					Volume:    100,
				})
			}
		}
	}

	cfg := config.Default()
	cfg.AllExpiries = true

	eng, err := parity.NewEngine(cfg)
	if err != nil {
		log.Fatal(err)
	}
	res, err := eng.Run(records)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("direct method:")
	for _, te := range res.Direct.Tenors {
		fmt.Printf("  %s  %3dd  r=%.4f  fwd=%.2f  %s\n",
			te.Expiry.Format("2006-01-02"), te.Days, te.Rate, te.Forward.Forward, te.Status)
	}

	if res.SmoothErr != nil {
		log.Fatalf("smooth fit failed: %v", res.SmoothErr)
	}
	ns := res.SmoothParams
	fmt.Printf("\nsmooth curve: beta0=%.4f beta1=%.4f beta2=%.4f tau=%.3f\n", ns.Beta0, ns.Beta1, ns.Beta2, ns.Tau)
	for _, te := range res.Smooth.Tenors {
		fmt.Printf("  %s  %3dd  r=%.4f\n", te.Expiry.Format("2006-01-02"), te.Days, te.Rate)
	}
}
