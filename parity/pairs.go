package parity

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/meenmo/optcurve/parity/config"
	"github.com/meenmo/optcurve/pricing"
)

// WeightPolicy assigns a quality weight to a candidate pair. The exact
// combination of ATM proximity, strike-match quality and liquidity is a
// tunable policy; implementations must be monotone: pairs closer to ATM,
// with smaller strike mismatch, or with higher volume never weigh less.
type WeightPolicy interface {
	Weight(p PutCallPair, cfg config.Params) float64
}

// DefaultWeightPolicy decays in moneyness and strike mismatch, with a
// saturating liquidity bonus when volume is considered.
type DefaultWeightPolicy struct{}

func (DefaultWeightPolicy) Weight(p PutCallPair, cfg config.Params) float64 {
	w := 1.0 / (1.0 + 20.0*p.Moneyness)
	w *= 1.0 / (1.0 + 40.0*p.StrikeDiffPct)
	if cfg.ConsiderVolume {
		v := float64(p.Volume)
		w *= 0.5 + 0.5*v/(v+100.0)
	}
	return w
}

// ExpiryPairs is the pair-selection outcome for one expiry.
type ExpiryPairs struct {
	Expiry time.Time
	Years  float64
	Spot   float64
	Pairs  []PutCallPair

	// Sufficient reports whether the expiry has enough pairs for direct
	// calibration. Insufficient expiries still contribute exact-match pairs
	// to the pooled smooth dataset.
	Sufficient bool
	Err        error
}

// ValidateRecords fails fast on malformed input. Returns a
// *DataValidationError naming the first offending record, or an error for a
// completely empty input set.
func ValidateRecords(records []OptionRecord) error {
	if len(records) == 0 {
		return &DataValidationError{Reason: "no option records"}
	}
	for i, r := range records {
		switch {
		case !r.Type.Valid():
			return &DataValidationError{Reason: fmt.Sprintf("record %d: unknown option type %q", i, r.Type)}
		case r.Spot <= 0:
			return &DataValidationError{Reason: fmt.Sprintf("record %d: non-positive spot %v", i, r.Spot)}
		case r.Strike <= 0:
			return &DataValidationError{Reason: fmt.Sprintf("record %d: non-positive strike %v", i, r.Strike)}
		case r.LastPrice < 0 || r.Bid < 0 || r.Ask < 0:
			return &DataValidationError{Reason: fmt.Sprintf("record %d: negative price", i)}
		case !r.Expiry.After(r.TradeDate):
			return &DataValidationError{Reason: fmt.Sprintf("record %d: expiry %s not after trade date %s",
				i, r.Expiry.Format("2006-01-02"), r.TradeDate.Format("2006-01-02"))}
		}
	}
	return nil
}

// SelectPairs groups records by expiry and proposes candidate put-call
// pairs. For every put the nearest call by strike is matched, exact matches
// preferred, within the configured maximum strike difference. Expiries with
// fewer than MinOptionsPerExpiry pairs are marked insufficient.
//
// The result is sorted ascending by expiry and is deterministic for a given
// input order.
func SelectPairs(records []OptionRecord, cfg config.Params, policy WeightPolicy) ([]ExpiryPairs, error) {
	if err := ValidateRecords(records); err != nil {
		return nil, err
	}
	if policy == nil {
		policy = DefaultWeightPolicy{}
	}

	byExpiry := make(map[time.Time][]OptionRecord)
	for _, r := range records {
		if r.LastPrice <= cfg.MinOptionPrice {
			continue
		}
		byExpiry[r.Expiry] = append(byExpiry[r.Expiry], r)
	}
	if len(byExpiry) == 0 {
		return nil, &DataValidationError{Reason: "no records above the minimum option price"}
	}

	expiries := make([]time.Time, 0, len(byExpiry))
	for e := range byExpiry {
		expiries = append(expiries, e)
	}
	sort.Slice(expiries, func(i, j int) bool { return expiries[i].Before(expiries[j]) })

	out := make([]ExpiryPairs, 0, len(expiries))
	for _, expiry := range expiries {
		out = append(out, selectForExpiry(expiry, byExpiry[expiry], cfg, policy))
	}
	return out, nil
}

func selectForExpiry(expiry time.Time, records []OptionRecord, cfg config.Params, policy WeightPolicy) ExpiryPairs {
	spot := records[0].Spot
	years := records[0].Years()

	puts := bestByStrike(records, pricing.Put)
	calls := bestByStrike(records, pricing.Call)

	callStrikes := make([]float64, 0, len(calls))
	for k := range calls {
		callStrikes = append(callStrikes, k)
	}
	sort.Float64s(callStrikes)

	maxDiff := cfg.MaxStrikeDiffPct * spot

	putStrikes := make([]float64, 0, len(puts))
	for k := range puts {
		putStrikes = append(putStrikes, k)
	}
	sort.Float64s(putStrikes)

	seen := make(map[[2]float64]bool)
	var pairs []PutCallPair
	for _, pk := range putStrikes {
		ck, ok := nearestStrike(callStrikes, pk)
		if !ok {
			continue
		}
		if pk != ck && math.Abs(pk-ck) > maxDiff {
			continue
		}
		key := [2]float64{pk, ck}
		if seen[key] {
			continue
		}
		seen[key] = true

		put, call := puts[pk], calls[ck]
		pair := PutCallPair{
			Expiry:        expiry,
			Years:         years,
			PutStrike:     pk,
			CallStrike:    ck,
			PutPrice:      put.LastPrice,
			CallPrice:     call.LastPrice,
			StrikeDiffPct: math.Abs(pk-ck) / spot,
			Volume:        put.Volume + call.Volume,
		}
		pair.Moneyness = math.Abs(pair.Strike()/spot - 1)

		if cfg.ConsiderVolume && pair.Volume < cfg.MinPairVolume {
			continue
		}
		pair.Weight = policy.Weight(pair, cfg)
		pairs = append(pairs, pair)
	}

	if cfg.BestPairOnly && len(pairs) > 1 {
		best := pairs[0]
		for _, p := range pairs[1:] {
			if p.Moneyness < best.Moneyness || (p.Moneyness == best.Moneyness && p.Weight > best.Weight) {
				best = p
			}
		}
		pairs = []PutCallPair{best}
	}

	ep := ExpiryPairs{Expiry: expiry, Years: years, Spot: spot, Pairs: pairs}
	if len(pairs) < cfg.MinOptionsPerExpiry {
		ep.Err = &InsufficientPairsError{Expiry: expiry, Got: len(pairs), Min: cfg.MinOptionsPerExpiry}
	} else {
		ep.Sufficient = true
	}
	return ep
}

// bestByStrike keeps one quote per strike per side, preferring volume.
func bestByStrike(records []OptionRecord, typ pricing.OptionType) map[float64]OptionRecord {
	out := make(map[float64]OptionRecord)
	for _, r := range records {
		if r.Type != typ {
			continue
		}
		prev, ok := out[r.Strike]
		if !ok || r.Volume > prev.Volume {
			out[r.Strike] = r
		}
	}
	return out
}

// nearestStrike returns the closest strike to target in a sorted slice,
// preferring the exact match, then the smaller absolute difference, then
// the lower strike on ties.
func nearestStrike(sorted []float64, target float64) (float64, bool) {
	if len(sorted) == 0 {
		return 0, false
	}
	i := sort.SearchFloat64s(sorted, target)
	if i < len(sorted) && sorted[i] == target {
		return target, true
	}
	switch {
	case i == 0:
		return sorted[0], true
	case i == len(sorted):
		return sorted[len(sorted)-1], true
	}
	lo, hi := sorted[i-1], sorted[i]
	if target-lo <= hi-target {
		return lo, true
	}
	return hi, true
}

// PoolForSmooth collects pairs across all expiries for the global fit.
// Sufficient expiries contribute every valid pair; insufficient ones
// contribute only exact-strike matches.
func PoolForSmooth(selected []ExpiryPairs) []PutCallPair {
	var pool []PutCallPair
	for _, ep := range selected {
		for _, p := range ep.Pairs {
			if ep.Sufficient || p.ExactMatch() {
				pool = append(pool, p)
			}
		}
	}
	return pool
}
