// Command calibrate runs a full discount-rate calibration over an option
// chain CSV and writes the direct, smooth, and per-option result tables.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/meenmo/optcurve/marketdata"
	"github.com/meenmo/optcurve/parity"
	"github.com/meenmo/optcurve/parity/config"
	"github.com/meenmo/optcurve/report"
)

func main() {
	inputPath := flag.String("input", "", "option chain CSV path")
	outPrefix := flag.String("out", "termstructure", "output filename prefix")
	configPath := flag.String("config", "", "JSON config overrides (key/value map)")
	dividendYield := flag.Float64("q", 0, "flat continuous dividend yield")
	allExpiries := flag.Bool("all-expiries", false, "calibrate every listed expiry, not only monthlies")
	strict := flag.Bool("strict", false, "reject tenors whose forward breaches the sanity bounds")
	help := flag.Bool("h", false, "Show help")
	flag.BoolVar(help, "help", false, "Show help")
	flag.Parse()

	if *help || strings.TrimSpace(*inputPath) == "" {
		fmt.Fprintln(os.Stderr, "Usage: calibrate -input <chain.csv> [-out prefix] [-config params.json]")
		fmt.Fprintln(os.Stderr, "Calibrate discount-rate term structures from put-call parity.")
		if *help {
			return
		}
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.DividendYield = *dividendYield
	cfg.AllExpiries = cfg.AllExpiries || *allExpiries
	cfg.StrictBounds = cfg.StrictBounds || *strict

	records, err := marketdata.LoadCSV(*inputPath)
	if err != nil {
		log.Fatalf("load chain: %v", err)
	}
	records = marketdata.Filter(records, cfg)
	log.Printf("loaded %d records from %s", len(records), *inputPath)

	eng, err := parity.NewEngine(cfg)
	if err != nil {
		log.Fatalf("engine: %v", err)
	}
	res, err := eng.Run(records)
	if err != nil {
		log.Fatalf("calibrate: %v", err)
	}
	if res.SmoothErr != nil {
		log.Printf("smooth fit failed, direct results still written: %v", res.SmoothErr)
	}

	if err := report.SaveResult(*outPrefix, res); err != nil {
		log.Fatalf("write reports: %v", err)
	}
	log.Printf("wrote %s_direct.csv, %s_smooth.csv, %s_options.csv", *outPrefix, *outPrefix, *outPrefix)
}

func loadConfig(path string) (config.Params, error) {
	if strings.TrimSpace(path) == "" {
		return config.Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return config.Params{}, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return config.Params{}, err
	}
	return config.FromMap(m)
}
