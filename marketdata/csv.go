package marketdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/meenmo/optcurve/parity"
	"github.com/meenmo/optcurve/pricing"
	"github.com/meenmo/optcurve/utils"
)

// Recognized chain CSV columns. Column order is irrelevant; the header row
// decides. Optional columns default to zero.
const (
	colTradeDate    = "trade_date"
	colExpiry       = "expiry"
	colType         = "type"
	colStrike       = "strike"
	colSpot         = "spot"
	colLast         = "last"
	colBid          = "bid"
	colAsk          = "ask"
	colVolume       = "volume"
	colOpenInterest = "open_interest"
)

// LoadCSV reads an option chain snapshot from a CSV file.
func LoadCSV(path string) ([]parity.OptionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("marketdata: open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses an option chain snapshot. Option types are normalized to
// lowercase, and missing volume/open-interest columns default to zero.
func ReadCSV(r io.Reader) ([]parity.OptionRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("marketdata: read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colTradeDate, colExpiry, colType, colStrike, colSpot, colLast} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("marketdata: missing required column %q", required)
		}
	}

	var out []parity.OptionRecord
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("marketdata: line %d: %w", line+1, err)
		}
		line++

		rec, err := parseRow(row, idx)
		if err != nil {
			return nil, fmt.Errorf("marketdata: line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseRow(row []string, idx map[string]int) (parity.OptionRecord, error) {
	var rec parity.OptionRecord
	var err error

	if rec.TradeDate, err = parseDateField(row, idx, colTradeDate); err != nil {
		return rec, err
	}
	if rec.Expiry, err = parseDateField(row, idx, colExpiry); err != nil {
		return rec, err
	}

	typ := pricing.OptionType(strings.ToLower(strings.TrimSpace(row[idx[colType]])))
	if !typ.Valid() {
		return rec, fmt.Errorf("bad option type %q", row[idx[colType]])
	}
	rec.Type = typ

	if rec.Strike, err = parseFloatField(row, idx, colStrike, true); err != nil {
		return rec, err
	}
	if rec.Spot, err = parseFloatField(row, idx, colSpot, true); err != nil {
		return rec, err
	}
	if rec.LastPrice, err = parseFloatField(row, idx, colLast, true); err != nil {
		return rec, err
	}
	if rec.Bid, err = parseFloatField(row, idx, colBid, false); err != nil {
		return rec, err
	}
	if rec.Ask, err = parseFloatField(row, idx, colAsk, false); err != nil {
		return rec, err
	}
	if rec.Volume, err = parseIntField(row, idx, colVolume); err != nil {
		return rec, err
	}
	if rec.OpenInterest, err = parseIntField(row, idx, colOpenInterest); err != nil {
		return rec, err
	}
	return rec, nil
}

func parseDateField(row []string, idx map[string]int, col string) (time.Time, error) {
	i := idx[col]
	if i >= len(row) {
		return time.Time{}, fmt.Errorf("short row, missing %q", col)
	}
	t, err := utils.ParseDate(strings.TrimSpace(row[i]))
	if err != nil {
		return time.Time{}, fmt.Errorf("bad %s %q", col, row[i])
	}
	return t, nil
}

func parseFloatField(row []string, idx map[string]int, col string, required bool) (float64, error) {
	i, ok := idx[col]
	if !ok || i >= len(row) || strings.TrimSpace(row[i]) == "" {
		if required {
			return 0, fmt.Errorf("missing %q", col)
		}
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s %q", col, row[i])
	}
	return v, nil
}

func parseIntField(row []string, idx map[string]int, col string) (int64, error) {
	i, ok := idx[col]
	if !ok || i >= len(row) || strings.TrimSpace(row[i]) == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(row[i]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s %q", col, row[i])
	}
	return v, nil
}
