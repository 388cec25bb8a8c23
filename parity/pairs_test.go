package parity_test

import (
	"errors"
	"testing"

	"github.com/meenmo/optcurve/parity"
	"github.com/meenmo/optcurve/parity/config"
	"github.com/meenmo/optcurve/pricing"
)

func record(days int, strike float64, typ pricing.OptionType, price float64, volume int64) parity.OptionRecord {
	return parity.OptionRecord{
		Expiry:    testTradeDate.AddDate(0, 0, days),
		TradeDate: testTradeDate,
		Spot:      100,
		Strike:    strike,
		Type:      typ,
		LastPrice: price,
		Volume:    volume,
	}
}

func TestSelectPairs_ExactMatchPreferred(t *testing.T) {
	t.Parallel()

	records := []parity.OptionRecord{
		record(30, 100, pricing.Put, 2.0, 10),
		record(30, 100, pricing.Call, 2.5, 10),
		record(30, 101, pricing.Call, 2.1, 10),
		record(30, 95, pricing.Put, 0.8, 10),
		record(30, 96, pricing.Call, 5.5, 10),
	}
	cfg := config.Default()
	cfg.MinOptionsPerExpiry = 1

	selected, err := parity.SelectPairs(records, cfg, nil)
	if err != nil {
		t.Fatalf("SelectPairs error: %v", err)
	}
	if len(selected) != 1 {
		t.Fatalf("expected 1 expiry, got %d", len(selected))
	}
	ep := selected[0]
	if !ep.Sufficient {
		t.Fatalf("expiry should be sufficient: %v", ep.Err)
	}
	if len(ep.Pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(ep.Pairs))
	}

	for _, p := range ep.Pairs {
		if p.PutStrike == 100 {
			if p.CallStrike != 100 {
				t.Fatalf("put@100 should match the exact call@100, got call@%v", p.CallStrike)
			}
			if !p.ExactMatch() {
				t.Fatal("pair at 100 should be an exact match")
			}
		}
		if p.PutStrike == 95 && p.CallStrike != 96 {
			t.Fatalf("put@95 should match the nearest call@96, got call@%v", p.CallStrike)
		}
	}
}

func TestSelectPairs_MaxStrikeDiffEnforced(t *testing.T) {
	t.Parallel()

	// Nearest call is 8% away with a 5% cap: no pair.
	records := []parity.OptionRecord{
		record(30, 100, pricing.Put, 2.0, 10),
		record(30, 108, pricing.Call, 1.0, 10),
	}
	cfg := config.Default()
	cfg.MinOptionsPerExpiry = 1

	selected, err := parity.SelectPairs(records, cfg, nil)
	if err != nil {
		t.Fatalf("SelectPairs error: %v", err)
	}
	ep := selected[0]
	if ep.Sufficient || len(ep.Pairs) != 0 {
		t.Fatalf("expected no pairs, got %d", len(ep.Pairs))
	}
	var insufficient *parity.InsufficientPairsError
	if !errors.As(ep.Err, &insufficient) {
		t.Fatalf("expected *InsufficientPairsError, got %T", ep.Err)
	}
}

func TestSelectPairs_BestPairOnly(t *testing.T) {
	t.Parallel()

	records := []parity.OptionRecord{
		record(30, 90, pricing.Put, 0.5, 10),
		record(30, 90, pricing.Call, 11.0, 10),
		record(30, 100, pricing.Put, 2.0, 10),
		record(30, 100, pricing.Call, 2.5, 10),
		record(30, 110, pricing.Put, 10.5, 10),
		record(30, 110, pricing.Call, 0.4, 10),
	}
	cfg := config.Default()
	cfg.BestPairOnly = true
	cfg.MinOptionsPerExpiry = 1

	selected, err := parity.SelectPairs(records, cfg, nil)
	if err != nil {
		t.Fatalf("SelectPairs error: %v", err)
	}
	ep := selected[0]
	if len(ep.Pairs) != 1 {
		t.Fatalf("best_pair_only should keep one pair, got %d", len(ep.Pairs))
	}
	if ep.Pairs[0].PutStrike != 100 {
		t.Fatalf("ATM pair should win, got strike %v", ep.Pairs[0].PutStrike)
	}
}

func TestSelectPairs_SortedByExpiry(t *testing.T) {
	t.Parallel()

	records := syntheticChain(100, []int{365, 30, 182}, func(float64) float64 { return 0.05 }, 0.2, 0)
	selected, err := parity.SelectPairs(records, config.Default(), nil)
	if err != nil {
		t.Fatalf("SelectPairs error: %v", err)
	}
	if len(selected) != 3 {
		t.Fatalf("expected 3 expiries, got %d", len(selected))
	}
	for i := 1; i < len(selected); i++ {
		if !selected[i-1].Expiry.Before(selected[i].Expiry) {
			t.Fatal("expiries must be sorted ascending")
		}
	}
}

func TestValidateRecords_FailsFast(t *testing.T) {
	t.Parallel()

	var vErr *parity.DataValidationError

	if err := parity.ValidateRecords(nil); !errors.As(err, &vErr) {
		t.Fatalf("empty input: expected *DataValidationError, got %v", err)
	}

	bad := record(30, 100, "cal", 2.0, 0)
	if err := parity.ValidateRecords([]parity.OptionRecord{bad}); !errors.As(err, &vErr) {
		t.Fatalf("bad type: expected *DataValidationError, got %v", err)
	}

	expired := record(-1, 100, pricing.Put, 2.0, 0)
	if err := parity.ValidateRecords([]parity.OptionRecord{expired}); !errors.As(err, &vErr) {
		t.Fatalf("expired record: expected *DataValidationError, got %v", err)
	}
}

func TestDefaultWeightPolicy_Monotonic(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.ConsiderVolume = true
	policy := parity.DefaultWeightPolicy{}

	base := parity.PutCallPair{Moneyness: 0.02, StrikeDiffPct: 0.01, Volume: 50}

	closer := base
	closer.Moneyness = 0.01
	if policy.Weight(closer, cfg) < policy.Weight(base, cfg) {
		t.Fatal("closer-to-ATM pair must never weigh less")
	}

	exact := base
	exact.StrikeDiffPct = 0
	if policy.Weight(exact, cfg) < policy.Weight(base, cfg) {
		t.Fatal("exact strike match must never weigh less")
	}

	liquid := base
	liquid.Volume = 500
	if policy.Weight(liquid, cfg) < policy.Weight(base, cfg) {
		t.Fatal("higher-liquidity pair must never weigh less")
	}
}

func TestPoolForSmooth_InsufficientContributesExactOnly(t *testing.T) {
	t.Parallel()

	exact := parity.PutCallPair{PutStrike: 100, CallStrike: 100}
	mismatched := parity.PutCallPair{PutStrike: 95, CallStrike: 96}

	selected := []parity.ExpiryPairs{
		{Expiry: testTradeDate.AddDate(0, 0, 30), Sufficient: false, Pairs: []parity.PutCallPair{exact, mismatched}},
		{Expiry: testTradeDate.AddDate(0, 0, 60), Sufficient: true, Pairs: []parity.PutCallPair{mismatched}},
	}
	pool := parity.PoolForSmooth(selected)
	if len(pool) != 2 {
		t.Fatalf("expected exact pair + sufficient-expiry pair, got %d", len(pool))
	}
	if !pool[0].ExactMatch() {
		t.Fatal("insufficient expiry must contribute only exact matches")
	}
}
