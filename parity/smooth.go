package parity

import (
	"math"

	"github.com/meenmo/optcurve/parity/config"
	"github.com/meenmo/optcurve/parity/curve"
)

const (
	// tauFloor keeps the Nelson-Siegel decay strictly positive.
	tauFloor = 1e-3
	// smoothIterMultiplier scales the configured iteration budget for the
	// 4-dimensional simplex search.
	smoothIterMultiplier = 10
	// smoothSpreadTol terminates the simplex when vertex values agree.
	smoothSpreadTol = 1e-12
	// Penalty weights for pairs the fit cannot price at a candidate curve.
	penaltyRateOutOfRange = 1.0
	penaltyIVUninvertible = 0.25
)

// CalibrateSmooth fits one global Nelson-Siegel curve to every pooled pair
// across all expiries simultaneously, then evaluates the fitted curve at
// each observed tenor.
//
// The objective is the weighted sum of squared IV differences over the
// pool; weights combine ATM proximity and strike-match quality via the
// selection policy. A failed fit is scoped to the smooth method only: the
// error is returned and direct results remain valid.
func CalibrateSmooth(selected []ExpiryPairs, cfg config.Params) (curve.NelsonSiegel, *TermStructure, error) {
	ts := &TermStructure{Method: MethodSmooth}

	pool := PoolForSmooth(selected)
	if len(pool) == 0 {
		return curve.NelsonSiegel{}, ts, &ConvergenceError{Method: MethodSmooth, Iterations: 0, Residual: math.Inf(1)}
	}
	spot := selected[0].Spot

	obj := func(x []float64) float64 {
		ns := curve.NelsonSiegel{Beta0: x[0], Beta1: x[1], Beta2: x[2], Tau: x[3]}
		if ns.Tau < tauFloor {
			return 1e6 * (1 + tauFloor - ns.Tau)
		}
		var sum float64
		for _, p := range pool {
			r := ns.Rate(p.Years)
			if r < cfg.MinRate-0.05 || r > cfg.MaxRate+0.05 {
				sum += p.Weight * penaltyRateOutOfRange
				continue
			}
			pIV, cIV, ok := pairIVs(p, spot, r, cfg)
			if !ok {
				sum += p.Weight * penaltyIVUninvertible
				continue
			}
			d := pIV - cIV
			sum += p.Weight * d * d
		}
		return sum
	}

	start := []float64{cfg.InitialRate, 0, 0, 1}
	step := []float64{0.01, 0.01, 0.01, 0.5}
	budget := smoothIterMultiplier * cfg.MaxIterations

	best, iters, err := curve.Minimize(obj, start, step, budget, smoothSpreadTol)
	if err != nil {
		return curve.NelsonSiegel{}, ts, &ConvergenceError{Method: MethodSmooth, Iterations: iters, Residual: math.Inf(1)}
	}
	ns := curve.NelsonSiegel{Beta0: best[0], Beta1: best[1], Beta2: best[2], Tau: best[3]}
	for _, v := range best {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return curve.NelsonSiegel{}, ts, &ConvergenceError{Method: MethodSmooth, Iterations: iters, Residual: math.Inf(1)}
		}
	}
	residual := obj(best)

	for _, ep := range selected {
		te := TenorEstimate{
			Expiry: ep.Expiry,
			Days:   int(math.Round(ep.Years * 365)),
			Years:  ep.Years,
			Rate:   ns.Rate(ep.Years),
			Status: StatusResolved,
		}
		te.Diag.Iterations = iters
		te.Diag.Residual = residual

		if pooled := pooledPairs(ep); len(pooled) > 0 {
			pair := bestPair(pooled)
			te.Diag.Pair = &pair
			if pIV, cIV, ok := pairIVs(pair, ep.Spot, te.Rate, cfg); ok {
				te.PutIV, te.CallIV = pIV, cIV
			}
			te.Forward = ForwardFromPair(pair, ep.Spot, te.Rate, cfg.DividendYield)
		} else {
			te.Forward = ForwardFromRate(ep.Expiry, ep.Years, ep.Spot, te.Rate, cfg.DividendYield)
		}

		if oob := CheckForwardBounds(te.Forward, cfg); oob != nil {
			if cfg.StrictBounds {
				te.Status = StatusUnresolved
				te.Diag.Err = oob
			} else {
				te.Diag.Flags = append(te.Diag.Flags, oob.Error())
			}
		}
		ts.Tenors = append(ts.Tenors, te)
	}
	ts.Sort()
	return ns, ts, nil
}

// pooledPairs returns the expiry's pairs that were eligible for the pool.
func pooledPairs(ep ExpiryPairs) []PutCallPair {
	if ep.Sufficient {
		return ep.Pairs
	}
	var out []PutCallPair
	for _, p := range ep.Pairs {
		if p.ExactMatch() {
			out = append(out, p)
		}
	}
	return out
}
