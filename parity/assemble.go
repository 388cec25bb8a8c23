package parity

import (
	"math"

	"github.com/meenmo/optcurve/parity/config"
	"github.com/meenmo/optcurve/pricing"
)

// Assemble joins the direct and smooth term structures back onto every
// option record, recomputing the implied volatility and forward moneyness
// under each method's rate. Pure lookup and arithmetic; this is the join
// point validating both calibration outputs against each other.
//
// Fields that cannot be computed (missing tenor, uninvertible quote) are
// NaN rather than silently zero.
func Assemble(records []OptionRecord, direct, smooth *TermStructure, cfg config.Params) []CalibratedOption {
	out := make([]CalibratedOption, 0, len(records))
	for _, r := range records {
		co := CalibratedOption{
			OptionRecord:           r,
			DirectRate:             math.NaN(),
			SmoothRate:             math.NaN(),
			DirectForward:          math.NaN(),
			SmoothForward:          math.NaN(),
			DirectForwardRatio:     math.NaN(),
			SmoothForwardRatio:     math.NaN(),
			DirectIV:               math.NaN(),
			SmoothIV:               math.NaN(),
			DirectMoneynessForward: math.NaN(),
			SmoothMoneynessForward: math.NaN(),
		}

		if te, ok := direct.ByExpiry(r.Expiry); ok && te.Status != StatusUnresolved {
			co.DirectStatus = te.Status
			co.DirectRate = te.Rate
			co.DirectForward = te.Forward.Forward
			co.DirectForwardRatio = te.Forward.Ratio
			co.DirectIV = recomputeIV(r, te.Rate, cfg)
			if te.Forward.Forward > 0 {
				co.DirectMoneynessForward = r.Strike/te.Forward.Forward - 1
			}
		}
		if te, ok := smooth.ByExpiry(r.Expiry); ok && te.Status != StatusUnresolved {
			co.SmoothStatus = te.Status
			co.SmoothRate = te.Rate
			co.SmoothForward = te.Forward.Forward
			co.SmoothForwardRatio = te.Forward.Ratio
			co.SmoothIV = recomputeIV(r, te.Rate, cfg)
			if te.Forward.Forward > 0 {
				co.SmoothMoneynessForward = r.Strike/te.Forward.Forward - 1
			}
		}
		out = append(out, co)
	}
	return out
}

func recomputeIV(r OptionRecord, rate float64, cfg config.Params) float64 {
	iv, _, err := pricing.ImpliedVolatility(r.LastPrice, r.Spot, r.Strike, r.Years(), rate,
		cfg.DividendYield, r.Type, cfg.VolLowerBound, cfg.VolUpperBound, cfg.MaxIterations)
	if err != nil {
		return math.NaN()
	}
	return iv
}
