// Package curve provides the Nelson-Siegel rate curve family and the
// bounded simplex minimizer used to fit it.
package curve

import "math"

// loadingSeriesCutoff switches the slope loading to its series expansion
// near zero, where (1 − e^{−x})/x loses precision and x = 0 divides by zero.
const loadingSeriesCutoff = 1e-4

// NelsonSiegel holds the four global parameters of a fitted curve.
type NelsonSiegel struct {
	Beta0 float64 // long-run level
	Beta1 float64 // short-end slope
	Beta2 float64 // medium-term curvature
	Tau   float64 // decay horizon in years, > 0
}

// Rate evaluates the curve at time t (years):
//
//	r(t) = β0 + β1·L(t/τ) + β2·(L(t/τ) − e^{−t/τ}),  L(x) = (1 − e^{−x})/x
//
// The loading uses its analytic limit L(x) → 1 as x → 0, so the curve is
// finite and continuous for all t >= 0, including degenerate τ.
func (p NelsonSiegel) Rate(t float64) float64 {
	tau := p.Tau
	if tau <= 0 {
		// Degenerate decay collapses the slope and curvature terms.
		return p.Beta0
	}
	x := t / tau
	l := loading(x)
	return p.Beta0 + p.Beta1*l + p.Beta2*(l-math.Exp(-x))
}

// loading computes (1 − e^{−x})/x with a series expansion near zero:
// L(x) = 1 − x/2 + x²/6 − …
func loading(x float64) float64 {
	if math.Abs(x) < loadingSeriesCutoff {
		return 1 - x/2 + x*x/6
	}
	return (1 - math.Exp(-x)) / x
}
