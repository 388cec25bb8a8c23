// Package report renders calibration results as CSV tables.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/meenmo/optcurve/parity"
)

// WriteTermStructure renders one term structure as a CSV table, one row per
// tenor with the calibration pair and diagnostics alongside the rate.
func WriteTermStructure(w io.Writer, ts parity.TermStructure) error {
	cw := csv.NewWriter(w)
	header := []string{
		"expiry", "days", "years", "method", "rate", "status",
		"put_strike", "call_strike", "put_price", "call_price",
		"put_iv", "call_iv", "iv_diff",
		"forward", "forward_ratio", "iterations", "flags",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("report: write header: %w", err)
	}

	for _, te := range ts.Tenors {
		row := []string{
			te.Expiry.Format("2006-01-02"),
			strconv.Itoa(te.Days),
			num(te.Years, 6),
			ts.Method,
			num(te.Rate, 6),
			te.Status.String(),
		}
		if p := te.Diag.Pair; p != nil {
			row = append(row,
				num(p.PutStrike, 2), num(p.CallStrike, 2),
				num(p.PutPrice, 4), num(p.CallPrice, 4))
		} else {
			row = append(row, "", "", "", "")
		}
		row = append(row,
			num(te.PutIV, 6), num(te.CallIV, 6),
			num(math.Abs(te.PutIV-te.CallIV), 6),
			num(te.Forward.Forward, 4), num(te.Forward.Ratio, 6),
			strconv.Itoa(te.Diag.Iterations),
			flags(te.Diag))
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("report: write tenor row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteOptions renders the merged per-option table: every input record
// joined with both methods' rates, forwards, and recomputed vols.
func WriteOptions(w io.Writer, options []parity.CalibratedOption) error {
	cw := csv.NewWriter(w)
	header := []string{
		"expiry", "type", "strike", "spot", "last", "volume",
		"direct_rate", "direct_status", "direct_iv", "direct_forward", "direct_forward_ratio", "direct_moneyness_fwd",
		"smooth_rate", "smooth_status", "smooth_iv", "smooth_forward", "smooth_forward_ratio", "smooth_moneyness_fwd",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("report: write header: %w", err)
	}

	for _, co := range options {
		row := []string{
			co.Expiry.Format("2006-01-02"),
			string(co.Type),
			num(co.Strike, 2),
			num(co.Spot, 4),
			num(co.LastPrice, 4),
			strconv.FormatInt(co.Volume, 10),
			num(co.DirectRate, 6), co.DirectStatus.String(), num(co.DirectIV, 6),
			num(co.DirectForward, 4), num(co.DirectForwardRatio, 6), num(co.DirectMoneynessForward, 6),
			num(co.SmoothRate, 6), co.SmoothStatus.String(), num(co.SmoothIV, 6),
			num(co.SmoothForward, 4), num(co.SmoothForwardRatio, 6), num(co.SmoothMoneynessForward, 6),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("report: write option row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveResult writes the direct, smooth, and per-option tables next to each
// other using a common filename prefix.
func SaveResult(prefix string, res *parity.Result) error {
	files := []struct {
		suffix string
		write  func(io.Writer) error
	}{
		{"_direct.csv", func(w io.Writer) error { return WriteTermStructure(w, res.Direct) }},
		{"_smooth.csv", func(w io.Writer) error { return WriteTermStructure(w, res.Smooth) }},
		{"_options.csv", func(w io.Writer) error { return WriteOptions(w, res.Options) }},
	}
	for _, f := range files {
		if err := writeFile(prefix+f.suffix, f.write); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// num formats a float with fixed precision; NaN renders as an empty cell.
func num(v float64, prec int) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func flags(d parity.Diagnostics) string {
	if len(d.Flags) == 0 {
		return ""
	}
	out := d.Flags[0]
	for _, f := range d.Flags[1:] {
		out += "; " + f
	}
	return out
}
