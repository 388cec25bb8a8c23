package parity

import (
	"github.com/meenmo/optcurve/parity/config"
	"github.com/meenmo/optcurve/utils"
)

// FillTermStructure replaces unresolved tenors in the direct term structure
// by interpolation between the nearest resolved tenors, or extrapolation
// beyond them. The structure must be sorted ascending by years.
//
// Interpolation is linear in days. Extrapolation holds the nearest resolved
// rate adjusted by the fallback growth rate times the time offset. Filled
// rates are clamped to the configured rate bounds, and the bracketing
// tenors are recorded in diagnostics.
//
// Forward prices carry through: interpolated tenors interpolate the
// bracketing forwards when both exist, extrapolated tenors derive the
// forward from the filled rate.
func FillTermStructure(ts *TermStructure, spot float64, cfg config.Params) {
	resolved := make([]TenorEstimate, 0, len(ts.Tenors))
	for _, te := range ts.Tenors {
		if te.Status == StatusResolved {
			resolved = append(resolved, te)
		}
	}
	if len(resolved) == 0 {
		return
	}

	for i := range ts.Tenors {
		te := &ts.Tenors[i]
		if te.Status != StatusUnresolved {
			continue
		}

		first, last := resolved[0], resolved[len(resolved)-1]
		switch {
		case te.Years < first.Years:
			te.Rate = utils.Clamp(first.Rate-cfg.FallbackGrowth*(first.Years-te.Years), cfg.MinRate, cfg.MaxRate)
			te.Status = StatusExtrapolated
			te.Diag.BracketAfter = first.Expiry
			te.Forward = ForwardFromRate(te.Expiry, te.Years, spot, te.Rate, cfg.DividendYield)

		case te.Years > last.Years:
			te.Rate = utils.Clamp(last.Rate+cfg.FallbackGrowth*(te.Years-last.Years), cfg.MinRate, cfg.MaxRate)
			te.Status = StatusExtrapolated
			te.Diag.BracketBefore = last.Expiry
			te.Forward = ForwardFromRate(te.Expiry, te.Years, spot, te.Rate, cfg.DividendYield)

		default:
			before, after := bracketTenors(resolved, te.Years)
			frac := (float64(te.Days) - float64(before.Days)) / (float64(after.Days) - float64(before.Days))
			te.Rate = utils.Clamp(before.Rate+frac*(after.Rate-before.Rate), cfg.MinRate, cfg.MaxRate)
			te.Status = StatusInterpolated
			te.Diag.BracketBefore = before.Expiry
			te.Diag.BracketAfter = after.Expiry

			if before.Forward.Forward > 0 && after.Forward.Forward > 0 {
				te.Forward = ForwardQuote{
					Expiry:  te.Expiry,
					Forward: before.Forward.Forward + frac*(after.Forward.Forward-before.Forward.Forward),
					Ratio:   before.Forward.Ratio + frac*(after.Forward.Ratio-before.Forward.Ratio),
				}
			} else {
				te.Forward = ForwardFromRate(te.Expiry, te.Years, spot, te.Rate, cfg.DividendYield)
			}
		}

		if oob := CheckForwardBounds(te.Forward, cfg); oob != nil {
			te.Diag.Flags = append(te.Diag.Flags, oob.Error())
		}
	}
}

// bracketTenors returns the nearest resolved tenors around t (years).
// The caller guarantees resolved is non-empty, sorted, and that t lies
// strictly inside its range.
func bracketTenors(resolved []TenorEstimate, t float64) (before, after TenorEstimate) {
	before = resolved[0]
	for _, te := range resolved {
		if te.Years <= t {
			before = te
			continue
		}
		return before, te
	}
	return before, resolved[len(resolved)-1]
}
