package parity

import (
	"math"

	"github.com/meenmo/optcurve/parity/config"
	"github.com/meenmo/optcurve/pricing"
)

const (
	// goldenRatio is the golden-section reduction factor.
	goldenRatio = 0.618033988749895
	// rateTolerance is the bracket width at which the rate search stops.
	// Tight enough that parity reconstruction from the solved rate holds to
	// 1e-6 in price even for year-long tenors.
	rateTolerance = 1e-9
)

// CalibrateDirect produces one discount-rate estimate for a single expiry
// by minimizing the weighted |put IV − call IV| over the configured rate
// bounds. Terminal states are resolved and unresolved; unresolved tenors
// are later filled by interpolation.
func CalibrateDirect(ep ExpiryPairs, cfg config.Params) TenorEstimate {
	te := TenorEstimate{
		Expiry: ep.Expiry,
		Days:   int(math.Round(ep.Years * 365)),
		Years:  ep.Years,
		Rate:   cfg.InitialRate,
		Status: StatusUnresolved,
	}

	if !ep.Sufficient {
		te.Diag.Err = ep.Err
		return te
	}

	f := func(r float64) float64 {
		return ivSpread(ep, r, cfg)
	}

	rate, iters := goldenSection(f, cfg.MinRate, cfg.MaxRate, cfg.MaxIterations)
	residual := f(rate)
	te.Diag.Iterations = iters
	te.Diag.Residual = residual

	if math.IsInf(residual, 1) || residual > cfg.ConvergenceTol {
		te.Diag.Err = &ConvergenceError{Method: MethodDirect, Iterations: iters, Residual: residual}
		return te
	}

	te.Rate = rate
	te.Status = StatusResolved

	pair := bestPair(ep.Pairs)
	te.Diag.Pair = &pair
	if pIV, cIV, ok := pairIVs(pair, ep.Spot, rate, cfg); ok {
		te.PutIV, te.CallIV = pIV, cIV
	}

	te.Forward = ForwardFromPair(pair, ep.Spot, rate, cfg.DividendYield)
	if oob := CheckForwardBounds(te.Forward, cfg); oob != nil {
		if cfg.StrictBounds {
			te.Status = StatusUnresolved
			te.Diag.Err = oob
			return te
		}
		te.Diag.Flags = append(te.Diag.Flags, oob.Error())
	}
	return te
}

// ivSpread is the direct objective: the weight-averaged absolute IV
// difference across the expiry's pairs at rate r. Returns +Inf when no pair
// can be inverted at r.
func ivSpread(ep ExpiryPairs, r float64, cfg config.Params) float64 {
	var sum, wsum float64
	for _, p := range ep.Pairs {
		pIV, cIV, ok := pairIVs(p, ep.Spot, r, cfg)
		if !ok {
			continue
		}
		sum += p.Weight * math.Abs(pIV-cIV)
		wsum += p.Weight
	}
	if wsum == 0 {
		return math.Inf(1)
	}
	return sum / wsum
}

// pairIVs inverts both legs of a pair at rate r.
func pairIVs(p PutCallPair, spot, r float64, cfg config.Params) (putIV, callIV float64, ok bool) {
	t := p.Years
	q := cfg.DividendYield

	putIV, _, err := pricing.ImpliedVolatility(p.PutPrice, spot, p.PutStrike, t, r, q,
		pricing.Put, cfg.VolLowerBound, cfg.VolUpperBound, cfg.MaxIterations)
	if err != nil {
		return 0, 0, false
	}
	callIV, _, err = pricing.ImpliedVolatility(p.CallPrice, spot, p.CallStrike, t, r, q,
		pricing.Call, cfg.VolLowerBound, cfg.VolUpperBound, cfg.MaxIterations)
	if err != nil {
		return 0, 0, false
	}
	return putIV, callIV, true
}

// bestPair picks the reporting pair: highest weight, lowest moneyness on ties.
func bestPair(pairs []PutCallPair) PutCallPair {
	best := pairs[0]
	for _, p := range pairs[1:] {
		if p.Weight > best.Weight || (p.Weight == best.Weight && p.Moneyness < best.Moneyness) {
			best = p
		}
	}
	return best
}

// goldenSection minimizes f over [a, b], returning the midpoint of the
// final bracket and the iteration count. The iteration budget caps work on
// objectives that never tighten (e.g. flat +Inf regions).
func goldenSection(f func(float64) float64, a, b float64, maxIter int) (float64, int) {
	c := b - goldenRatio*(b-a)
	d := a + goldenRatio*(b-a)
	fc, fd := f(c), f(d)

	iters := 0
	for iters < maxIter && (b-a) > rateTolerance {
		if fc < fd {
			b, d, fd = d, c, fc
			c = b - goldenRatio*(b-a)
			fc = f(c)
		} else {
			a, c, fc = c, d, fd
			d = a + goldenRatio*(b-a)
			fd = f(d)
		}
		iters++
	}
	return 0.5 * (a + b), iters
}
