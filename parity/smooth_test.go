package parity_test

import (
	"errors"
	"math"
	"testing"

	"github.com/meenmo/optcurve/parity"
	"github.com/meenmo/optcurve/parity/config"
)

func TestCalibrateSmooth_RecoversFlatCurve(t *testing.T) {
	t.Parallel()

	const trueRate = 0.04
	records := syntheticChain(100, []int{30, 60, 91, 182, 365}, func(float64) float64 { return trueRate }, 0.25, 0)
	cfg := config.Default()

	selected, err := parity.SelectPairs(records, cfg, nil)
	if err != nil {
		t.Fatalf("SelectPairs error: %v", err)
	}

	ns, ts, err := parity.CalibrateSmooth(selected, cfg)
	if err != nil {
		t.Fatalf("CalibrateSmooth error: %v", err)
	}
	if ns.Tau <= 0 {
		t.Fatalf("fitted tau must stay positive, got %v", ns.Tau)
	}
	if len(ts.Tenors) != 5 {
		t.Fatalf("expected 5 tenors, got %d", len(ts.Tenors))
	}
	for _, te := range ts.Tenors {
		if te.Status != parity.StatusResolved {
			t.Fatalf("tenor %v: expected resolved, got %v", te.Expiry, te.Status)
		}
		if math.Abs(te.Rate-trueRate) > 5e-3 {
			t.Fatalf("tenor %.3fy: rate %.6f too far from %.6f", te.Years, te.Rate, trueRate)
		}
		if math.IsNaN(te.Forward.Forward) || te.Forward.Forward <= 0 {
			t.Fatalf("tenor %.3fy: bad forward %v", te.Years, te.Forward.Forward)
		}
	}
}

func TestCalibrateSmooth_UpwardSlopingCurve(t *testing.T) {
	t.Parallel()

	rateFn := func(years float64) float64 { return 0.03 + 0.02*years/(years+1) }
	records := syntheticChain(100, []int{30, 91, 182, 365, 730}, rateFn, 0.3, 0)
	cfg := config.Default()

	selected, err := parity.SelectPairs(records, cfg, nil)
	if err != nil {
		t.Fatalf("SelectPairs error: %v", err)
	}
	_, ts, err := parity.CalibrateSmooth(selected, cfg)
	if err != nil {
		t.Fatalf("CalibrateSmooth error: %v", err)
	}
	for _, te := range ts.Tenors {
		want := rateFn(te.Years)
		if math.Abs(te.Rate-want) > 1e-2 {
			t.Fatalf("tenor %.3fy: rate %.6f too far from %.6f", te.Years, te.Rate, want)
		}
	}
}

func TestCalibrateSmooth_SinglePairDegradesGracefully(t *testing.T) {
	t.Parallel()

	records := syntheticChain(100, []int{91}, func(float64) float64 { return 0.05 }, 0.2, 0)
	// Keep only the ATM pair.
	var atm []parity.OptionRecord
	for _, r := range records {
		if r.Strike == 100 {
			atm = append(atm, r)
		}
	}
	cfg := config.Default()
	cfg.MinOptionsPerExpiry = 1

	selected, err := parity.SelectPairs(atm, cfg, nil)
	if err != nil {
		t.Fatalf("SelectPairs error: %v", err)
	}
	ns, ts, err := parity.CalibrateSmooth(selected, cfg)
	if err != nil {
		t.Fatalf("single pooled pair must still fit, got %v", err)
	}
	for _, v := range []float64{ns.Beta0, ns.Beta1, ns.Beta2, ns.Tau} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("parameters must stay finite: %+v", ns)
		}
	}
	if len(ts.Tenors) != 1 {
		t.Fatalf("expected 1 tenor, got %d", len(ts.Tenors))
	}
	if math.IsNaN(ts.Tenors[0].Rate) {
		t.Fatal("rate must be finite")
	}
}

func TestCalibrateSmooth_EmptyPoolFailsMethodOnly(t *testing.T) {
	t.Parallel()

	// One mismatched-strike pair on an insufficient expiry never enters the
	// pool, so the smooth method fails in isolation.
	rec := []parity.OptionRecord{
		record(30, 99, "put", 2.0, 10),
		record(30, 100, "call", 2.5, 10),
	}
	cfg := config.Default()
	cfg.MinOptionsPerExpiry = 2

	selected, err := parity.SelectPairs(rec, cfg, nil)
	if err != nil {
		t.Fatalf("SelectPairs error: %v", err)
	}
	_, _, err = parity.CalibrateSmooth(selected, cfg)
	var conv *parity.ConvergenceError
	if !errors.As(err, &conv) {
		t.Fatalf("expected *ConvergenceError, got %v", err)
	}
	if conv.Method != parity.MethodSmooth {
		t.Fatalf("error must be scoped to the smooth method, got %q", conv.Method)
	}
}
