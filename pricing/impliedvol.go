package pricing

import (
	"fmt"
	"math"
)

const (
	// ivPriceTolerance is the absolute price tolerance for the IV search.
	ivPriceTolerance = 1e-9
	// ivBracketSlack tolerates tiny numerical overshoot at the bracket edges.
	ivBracketSlack = 1e-12
)

// ConvergenceError reports a failed implied-volatility search: either the
// target price lies outside the no-arbitrage bracket, or the iteration
// budget was exhausted before the tolerance was met.
type ConvergenceError struct {
	Op         string
	Iterations int
	Residual   float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s: no convergence after %d iterations (residual %.3e)", e.Op, e.Iterations, e.Residual)
}

// ImpliedVolatility solves for the volatility that reproduces target under
// the Black-Scholes model, via bisection on [lo, hi].
//
// The premium is strictly increasing in volatility, so the bracket is valid
// iff Price(lo) <= target <= Price(hi). Returns the solved volatility and
// the number of iterations taken.
func ImpliedVolatility(target, s, k, t, r, q float64, typ OptionType, lo, hi float64, maxIter int) (float64, int, error) {
	if target <= 0 || s <= 0 || k <= 0 || t <= 0 {
		return 0, 0, &ConvergenceError{Op: "ImpliedVolatility: invalid inputs", Iterations: 0, Residual: math.Inf(1)}
	}

	pLo := Price(s, k, t, r, q, lo, typ)
	pHi := Price(s, k, t, r, q, hi, typ)
	if target < pLo-ivBracketSlack || target > pHi+ivBracketSlack {
		return 0, 0, &ConvergenceError{
			Op:         "ImpliedVolatility: target outside bracket",
			Iterations: 0,
			Residual:   math.Min(math.Abs(target-pLo), math.Abs(target-pHi)),
		}
	}

	a, b := lo, hi
	var mid, pMid float64
	for iter := 1; iter <= maxIter; iter++ {
		mid = 0.5 * (a + b)
		pMid = Price(s, k, t, r, q, mid, typ)

		diff := pMid - target
		if math.Abs(diff) < ivPriceTolerance || (b-a) < 1e-10 {
			return mid, iter, nil
		}
		if diff > 0 {
			b = mid
		} else {
			a = mid
		}
	}

	return mid, maxIter, &ConvergenceError{
		Op:         "ImpliedVolatility",
		Iterations: maxIter,
		Residual:   math.Abs(pMid - target),
	}
}
