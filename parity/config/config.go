// Package config defines the recognized calibration parameters as a single
// validated value object. Every option is enumerated explicitly with type
// and default; map-form input rejects unknown keys.
package config

import (
	"fmt"
	"sort"
)

// Params holds all recognized calibration parameters. The value is
// immutable for the duration of a run.
type Params struct {
	// InitialRate is the discount rate used to seed the smooth fit and
	// reported for tenors that never resolve.
	InitialRate float64

	// MinRate and MaxRate bound the direct rate search and clamp
	// interpolated/extrapolated rates.
	MinRate float64
	MaxRate float64

	// MaxStrikeDiffPct is the maximum |putStrike − callStrike| / spot for a
	// mismatched-strike pair to be considered.
	MaxStrikeDiffPct float64

	// MinOptionPrice filters out quotes at or below this premium.
	MinOptionPrice float64

	// MinOptionsPerExpiry is the minimum valid pair count for an expiry to
	// enter direct calibration.
	MinOptionsPerExpiry int

	// ConsiderVolume enables the liquidity term in pair weighting.
	ConsiderVolume bool

	// MinPairVolume drops pairs whose combined volume is below this when
	// ConsiderVolume is set.
	MinPairVolume int64

	// BestPairOnly keeps only the lowest-moneyness pair per expiry.
	BestPairOnly bool

	// VolLowerBound and VolUpperBound bracket the implied-volatility search.
	VolLowerBound float64
	VolUpperBound float64

	// MaxIterations bounds every iterative numerical loop.
	MaxIterations int

	// ConvergenceTol is the acceptable |put IV − call IV| at the direct
	// minimizer.
	ConvergenceTol float64

	// MinForwardRatio and MaxForwardRatio are the sanity bounds on
	// forward/spot. Violations are flagged, and rejected only under
	// StrictBounds.
	MinForwardRatio float64
	MaxForwardRatio float64

	// StrictBounds rejects (rather than flags) out-of-bounds forwards.
	StrictBounds bool

	// FallbackGrowth is the annual rate adjustment applied per year of time
	// offset when extrapolating beyond the resolved tenors.
	FallbackGrowth float64

	// DividendYield is the flat continuous dividend/repo yield q.
	DividendYield float64

	// Monthlies restricts ingestion to standard third-Friday expiries.
	// AllExpiries overrides it. Both are applied upstream of the core.
	Monthlies   bool
	AllExpiries bool

	// MinDays drops expiries closer than this many days at ingestion.
	MinDays int
}

// Default returns the production default parameters.
func Default() Params {
	return Params{
		InitialRate:         0.05,
		MinRate:             0.0,
		MaxRate:             0.2,
		MaxStrikeDiffPct:    0.05,
		MinOptionPrice:      0.0,
		MinOptionsPerExpiry: 2,
		ConsiderVolume:      false,
		MinPairVolume:       0,
		BestPairOnly:        false,
		VolLowerBound:       0.001,
		VolUpperBound:       10,
		MaxIterations:       50,
		ConvergenceTol:      0.005,
		MinForwardRatio:     0.5,
		MaxForwardRatio:     2.0,
		StrictBounds:        false,
		FallbackGrowth:      0.03,
		DividendYield:       0.0,
		Monthlies:           true,
		AllExpiries:         false,
		MinDays:             7,
	}
}

// Validate checks internal consistency.
func (p Params) Validate() error {
	if p.MinRate >= p.MaxRate {
		return fmt.Errorf("config: min_rate (%v) must be below max_rate (%v)", p.MinRate, p.MaxRate)
	}
	if p.InitialRate < p.MinRate || p.InitialRate > p.MaxRate {
		return fmt.Errorf("config: initial_rate %v outside [%v, %v]", p.InitialRate, p.MinRate, p.MaxRate)
	}
	if p.VolLowerBound <= 0 || p.VolLowerBound >= p.VolUpperBound {
		return fmt.Errorf("config: volatility bounds [%v, %v] invalid", p.VolLowerBound, p.VolUpperBound)
	}
	if p.MaxIterations <= 0 {
		return fmt.Errorf("config: max_iterations must be positive, got %d", p.MaxIterations)
	}
	if p.ConvergenceTol <= 0 {
		return fmt.Errorf("config: convergence tolerance must be positive, got %v", p.ConvergenceTol)
	}
	if p.MaxStrikeDiffPct < 0 {
		return fmt.Errorf("config: max_strike_diff_pct must be non-negative, got %v", p.MaxStrikeDiffPct)
	}
	if p.MinOptionsPerExpiry < 1 {
		return fmt.Errorf("config: min_options_per_expiry must be at least 1, got %d", p.MinOptionsPerExpiry)
	}
	if p.MinForwardRatio <= 0 || p.MinForwardRatio >= p.MaxForwardRatio {
		return fmt.Errorf("config: forward ratio bounds [%v, %v] invalid", p.MinForwardRatio, p.MaxForwardRatio)
	}
	return nil
}

// FromMap builds Params from a key/value map, starting from defaults.
// Unknown keys are rejected so misspelled options fail loudly instead of
// silently falling back to defaults.
func FromMap(m map[string]any) (Params, error) {
	p := Default()

	var unknown []string
	for k, v := range m {
		ok := true
		switch k {
		case "initial_rate":
			ok = setFloat(&p.InitialRate, v)
		case "min_rate":
			ok = setFloat(&p.MinRate, v)
		case "max_rate":
			ok = setFloat(&p.MaxRate, v)
		case "max_strike_diff_pct":
			ok = setFloat(&p.MaxStrikeDiffPct, v)
		case "min_option_price":
			ok = setFloat(&p.MinOptionPrice, v)
		case "min_options_per_expiry":
			ok = setInt(&p.MinOptionsPerExpiry, v)
		case "consider_volume":
			ok = setBool(&p.ConsiderVolume, v)
		case "min_pair_volume":
			ok = setInt64(&p.MinPairVolume, v)
		case "best_pair_only":
			ok = setBool(&p.BestPairOnly, v)
		case "volatility_lower_bound":
			ok = setFloat(&p.VolLowerBound, v)
		case "volatility_upper_bound":
			ok = setFloat(&p.VolUpperBound, v)
		case "max_iterations":
			ok = setInt(&p.MaxIterations, v)
		case "convergence_tol":
			ok = setFloat(&p.ConvergenceTol, v)
		case "min_forward_ratio":
			ok = setFloat(&p.MinForwardRatio, v)
		case "max_forward_ratio":
			ok = setFloat(&p.MaxForwardRatio, v)
		case "strict_bounds":
			ok = setBool(&p.StrictBounds, v)
		case "fallback_growth":
			ok = setFloat(&p.FallbackGrowth, v)
		case "q":
			ok = setFloat(&p.DividendYield, v)
		case "monthlies":
			ok = setBool(&p.Monthlies, v)
		case "all_expiries":
			ok = setBool(&p.AllExpiries, v)
		case "min_days":
			ok = setInt(&p.MinDays, v)
		default:
			unknown = append(unknown, k)
			continue
		}
		if !ok {
			return Params{}, fmt.Errorf("config: bad value %v (%T) for %q", v, v, k)
		}
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Params{}, fmt.Errorf("config: unrecognized keys %v", unknown)
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

func setFloat(dst *float64, v any) bool {
	switch x := v.(type) {
	case float64:
		*dst = x
	case int:
		*dst = float64(x)
	default:
		return false
	}
	return true
}

func setInt(dst *int, v any) bool {
	switch x := v.(type) {
	case int:
		*dst = x
	case float64:
		*dst = int(x)
	default:
		return false
	}
	return true
}

func setInt64(dst *int64, v any) bool {
	switch x := v.(type) {
	case int64:
		*dst = x
	case int:
		*dst = int64(x)
	case float64:
		*dst = int64(x)
	default:
		return false
	}
	return true
}

func setBool(dst *bool, v any) bool {
	x, ok := v.(bool)
	if ok {
		*dst = x
	}
	return ok
}
