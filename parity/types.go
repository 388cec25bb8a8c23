// Package parity calibrates a term structure of risk-neutral discount rates
// from observed option prices using put-call parity.
//
// Two independent methods are supported: a per-expiry direct rate search and
// a global Nelson-Siegel smooth-curve fit. Both consume the same pair
// selection and produce one TermStructure each, which the assembler joins
// back onto every option record.
package parity

import (
	"sort"
	"time"

	"github.com/meenmo/optcurve/pricing"
)

// Calibration method identifiers, reported in output tables.
const (
	MethodDirect = "direct"
	MethodSmooth = "smooth_curve"
)

// OptionRecord is one normalized option quote. Records are read-only inputs
// for a calibration run.
type OptionRecord struct {
	Expiry       time.Time
	TradeDate    time.Time
	Spot         float64
	Strike       float64
	Type         pricing.OptionType
	LastPrice    float64
	Bid          float64
	Ask          float64
	Volume       int64
	OpenInterest int64
}

// Years returns the ACT/365F time to expiry as of the trade date.
func (o OptionRecord) Years() float64 {
	return o.Expiry.Sub(o.TradeDate).Hours() / 24 / 365
}

// PutCallPair is a matched put/call quote at (near-)identical strikes for
// one expiry. Pairs are derived per run and never persisted.
type PutCallPair struct {
	Expiry     time.Time
	Years      float64
	PutStrike  float64
	CallStrike float64
	PutPrice   float64
	CallPrice  float64

	// Moneyness is |strike/spot − 1| at the pair's anchor strike.
	Moneyness float64
	// StrikeDiffPct is |putStrike − callStrike| / spot; zero for exact matches.
	StrikeDiffPct float64
	// Volume is the combined put+call traded volume.
	Volume int64
	// Weight is the selection policy's quality weight.
	Weight float64
}

// ExactMatch reports whether put and call strikes are identical.
func (p PutCallPair) ExactMatch() bool {
	return p.PutStrike == p.CallStrike
}

// Strike returns the pair's anchor strike: the shared strike for exact
// matches, otherwise the midpoint.
func (p PutCallPair) Strike() float64 {
	return 0.5 * (p.PutStrike + p.CallStrike)
}

// RateStatus is the terminal state of a tenor after calibration.
type RateStatus int

const (
	StatusUnresolved RateStatus = iota
	StatusResolved
	StatusInterpolated
	StatusExtrapolated
)

func (s RateStatus) String() string {
	switch s {
	case StatusResolved:
		return "resolved"
	case StatusInterpolated:
		return "interpolated"
	case StatusExtrapolated:
		return "extrapolated"
	default:
		return "unresolved"
	}
}

// Diagnostics records how a tenor estimate was produced.
type Diagnostics struct {
	// Iterations is the optimizer iteration count.
	Iterations int
	// Residual is |put IV − call IV| at the accepted rate.
	Residual float64
	// Pair is the calibration pair backing a resolved tenor, if any.
	Pair *PutCallPair
	// BracketBefore/BracketAfter are the source tenors for interpolated and
	// extrapolated rates.
	BracketBefore time.Time
	BracketAfter  time.Time
	// Flags carries non-fatal anomalies (e.g. forward ratio out of bounds).
	Flags []string
	// Err is the error that left the tenor unresolved, if any.
	Err error
}

// TenorEstimate is one discount-rate point on a term structure.
type TenorEstimate struct {
	Expiry time.Time
	Days   int
	Years  float64
	Rate   float64
	Status RateStatus

	PutIV  float64
	CallIV float64

	Forward ForwardQuote
	Diag    Diagnostics
}

// ForwardQuote is a derived forward price and ratio for one expiry.
type ForwardQuote struct {
	Expiry  time.Time
	Forward float64
	Ratio   float64
}

// TermStructure is an ordered sequence of tenor estimates for one method,
// strictly ascending by years with unique expiries.
type TermStructure struct {
	Method string
	Tenors []TenorEstimate
}

// Sort orders the tenors ascending by years.
func (ts *TermStructure) Sort() {
	sort.Slice(ts.Tenors, func(i, j int) bool {
		return ts.Tenors[i].Years < ts.Tenors[j].Years
	})
}

// ByExpiry returns the tenor estimate for an expiry, if present.
func (ts *TermStructure) ByExpiry(expiry time.Time) (TenorEstimate, bool) {
	for _, te := range ts.Tenors {
		if te.Expiry.Equal(expiry) {
			return te, true
		}
	}
	return TenorEstimate{}, false
}

// Resolved returns the tenors whose rate is usable (anything but
// unresolved), preserving order.
func (ts *TermStructure) Resolved() []TenorEstimate {
	out := make([]TenorEstimate, 0, len(ts.Tenors))
	for _, te := range ts.Tenors {
		if te.Status != StatusUnresolved {
			out = append(out, te)
		}
	}
	return out
}

// CalibratedOption is one input record joined with both term structures.
type CalibratedOption struct {
	OptionRecord

	DirectRate   float64
	DirectStatus RateStatus
	SmoothRate   float64
	SmoothStatus RateStatus

	DirectForward      float64
	DirectForwardRatio float64
	SmoothForward      float64
	SmoothForwardRatio float64

	// Implied vols recomputed under each method's rate. NaN when the quote
	// cannot be inverted.
	DirectIV float64
	SmoothIV float64

	// MoneynessForward is strike/forward − 1 per method.
	DirectMoneynessForward float64
	SmoothMoneynessForward float64
}
