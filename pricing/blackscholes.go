// Package pricing implements closed-form Black-Scholes valuation with a flat
// continuous dividend yield, plus a bounded implied-volatility solver.
//
// All functions are pure and safe for concurrent use.
package pricing

import (
	"math"
)

// OptionType identifies the option side.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// Valid reports whether t is a recognized option type.
func (t OptionType) Valid() bool {
	return t == Call || t == Put
}

// Price returns the Black-Scholes premium for a European option with
// continuous dividend yield q.
//
//	d1 = (ln(S/K) + (r − q + σ²/2)T) / (σ√T)
//	d2 = d1 − σ√T
//
// For T <= 0 or σ <= 0 the discounted intrinsic value is returned, so the
// function stays defined at the solver bounds.
func Price(s, k, t, r, q, sigma float64, typ OptionType) float64 {
	if t <= 0 || sigma <= 0 {
		return intrinsic(s, k, t, r, q, typ)
	}

	sqrtT := math.Sqrt(t)
	d1 := (math.Log(s/k) + (r-q+0.5*sigma*sigma)*t) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT

	fwd := s * math.Exp(-q*t)
	disc := k * math.Exp(-r*t)

	var price float64
	if typ == Call {
		price = fwd*normCdf(d1) - disc*normCdf(d2)
	} else {
		price = disc*normCdf(-d2) - fwd*normCdf(-d1)
	}
	if price < 0 {
		return 0
	}
	return price
}

// Vega returns the Black-Scholes sensitivity of the premium to volatility.
// Identical for puts and calls.
func Vega(s, k, t, r, q, sigma float64) float64 {
	if t <= 0 || sigma <= 0 {
		return 0
	}
	sqrtT := math.Sqrt(t)
	d1 := (math.Log(s/k) + (r-q+0.5*sigma*sigma)*t) / (sigma * sqrtT)
	return s * math.Exp(-q*t) * normPdf(d1) * sqrtT
}

func intrinsic(s, k, t, r, q float64, typ OptionType) float64 {
	fwd := s * math.Exp(-q*t)
	disc := k * math.Exp(-r*t)
	var v float64
	if typ == Call {
		v = fwd - disc
	} else {
		v = disc - fwd
	}
	if v < 0 {
		return 0
	}
	return v
}

// normCdf is the standard normal cumulative distribution function.
func normCdf(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// normPdf is the standard normal probability density function.
func normPdf(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}
