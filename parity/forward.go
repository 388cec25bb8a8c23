package parity

import (
	"math"
	"time"

	"github.com/meenmo/optcurve/parity/config"
)

// ForwardFromPair derives the forward price implied by a discount rate and
// the pair's parity residual:
//
//	forward = K + (C − P) / e^{−(r−q)T}
//
// using the pair's anchor strike.
func ForwardFromPair(pair PutCallPair, spot, rate, q float64) ForwardQuote {
	growth := math.Exp((rate - q) * pair.Years)
	fwd := pair.Strike() + (pair.CallPrice-pair.PutPrice)*growth
	return ForwardQuote{Expiry: pair.Expiry, Forward: fwd, Ratio: fwd / spot}
}

// ForwardFromRate derives the carry-implied forward when no calibration
// pair backs the tenor (interpolated and extrapolated rates).
func ForwardFromRate(expiry time.Time, years, spot, rate, q float64) ForwardQuote {
	fwd := spot * math.Exp((rate-q)*years)
	return ForwardQuote{Expiry: expiry, Forward: fwd, Ratio: fwd / spot}
}

// CheckForwardBounds returns an *OutOfBoundsError when the forward ratio
// falls outside the configured sanity range. Deviations usually signal
// dividend or data anomalies rather than calibration error, so callers flag
// rather than reject unless strict bounds are requested.
func CheckForwardBounds(fq ForwardQuote, cfg config.Params) *OutOfBoundsError {
	if fq.Ratio < cfg.MinForwardRatio || fq.Ratio > cfg.MaxForwardRatio {
		return &OutOfBoundsError{
			Field: "forward ratio",
			Value: fq.Ratio,
			Min:   cfg.MinForwardRatio,
			Max:   cfg.MaxForwardRatio,
		}
	}
	return nil
}
