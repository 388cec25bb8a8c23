// Command termserve calibrates an option chain and serves the resulting
// term structures over HTTP, with optional Redis response caching and
// Postgres persistence.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/meenmo/optcurve/marketdata"
	"github.com/meenmo/optcurve/parity"
	"github.com/meenmo/optcurve/parity/config"
	"github.com/meenmo/optcurve/server"
	"github.com/meenmo/optcurve/store"
	"github.com/meenmo/optcurve/utils"
)

func main() {
	addr := flag.String("addr", ":8081", "listen address")
	inputPath := flag.String("input", "", "option chain CSV path")
	chDSN := flag.String("clickhouse", "", "ClickHouse DSN (alternative to -input)")
	underlying := flag.String("underlying", "SPX", "underlying symbol")
	tradeDateStr := flag.String("date", "", "trade date YYYY-MM-DD (defaults to today)")
	redisAddr := flag.String("redis", "", "Redis address for response caching (optional)")
	pgDSN := flag.String("postgres", "", "Postgres DSN for curve persistence (optional)")
	dividendYield := flag.Float64("q", 0, "flat continuous dividend yield")
	flag.Parse()

	if strings.TrimSpace(*inputPath) == "" && strings.TrimSpace(*chDSN) == "" {
		fmt.Fprintln(os.Stderr, "Usage: termserve -input <chain.csv> | -clickhouse <dsn> [-addr :8081]")
		os.Exit(2)
	}

	tradeDate := time.Now().UTC().Truncate(24 * time.Hour)
	if *tradeDateStr != "" {
		var err error
		if tradeDate, err = utils.ParseDate(*tradeDateStr); err != nil {
			log.Fatalf("bad -date: %v", err)
		}
	}

	cfg := config.Default()
	cfg.DividendYield = *dividendYield

	records, err := loadChain(*inputPath, *chDSN, *underlying, tradeDate)
	if err != nil {
		log.Fatalf("load chain: %v", err)
	}
	records = marketdata.Filter(records, cfg)

	eng, err := parity.NewEngine(cfg)
	if err != nil {
		log.Fatalf("engine: %v", err)
	}
	res, err := eng.Run(records)
	if err != nil {
		log.Fatalf("calibrate: %v", err)
	}
	if res.SmoothErr != nil {
		log.Printf("smooth fit failed, serving direct results only: %v", res.SmoothErr)
	}

	if *pgDSN != "" {
		if err := persist(*pgDSN, *underlying, tradeDate, res); err != nil {
			log.Fatalf("persist: %v", err)
		}
		log.Printf("persisted curves for %s %s", *underlying, tradeDate.Format("2006-01-02"))
	}

	var opts []server.Option
	if *redisAddr != "" {
		cache, err := server.NewCache(*redisAddr, 0)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer cache.Close()
		opts = append(opts, server.WithCache(cache))
	}

	srv := server.New(opts...)
	srv.SetResult(*underlying, tradeDate, res)

	log.Printf("term structure API on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, srv.Handler()))
}

func loadChain(inputPath, chDSN, underlying string, tradeDate time.Time) ([]parity.OptionRecord, error) {
	if inputPath != "" {
		return marketdata.LoadCSV(inputPath)
	}
	src, err := marketdata.OpenClickHouse(chDSN)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return src.Chain(context.Background(), underlying, tradeDate)
}

func persist(dsn, underlying string, tradeDate time.Time, res *parity.Result) error {
	pg, err := store.Open(dsn)
	if err != nil {
		return err
	}
	defer pg.Close()

	ctx := context.Background()
	if err := pg.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := pg.SaveTermStructure(ctx, underlying, tradeDate, res.Direct); err != nil {
		return err
	}
	if res.SmoothErr == nil {
		return pg.SaveTermStructure(ctx, underlying, tradeDate, res.Smooth)
	}
	return nil
}
