package parity_test

import (
	"math"
	"testing"

	"github.com/meenmo/optcurve/parity"
	"github.com/meenmo/optcurve/parity/config"
)

func tenor(days int, rate float64, status parity.RateStatus) parity.TenorEstimate {
	return parity.TenorEstimate{
		Expiry: testTradeDate.AddDate(0, 0, days),
		Days:   days,
		Years:  float64(days) / 365.0,
		Rate:   rate,
		Status: status,
	}
}

func TestFillTermStructure_Interpolates(t *testing.T) {
	t.Parallel()

	ts := &parity.TermStructure{
		Method: parity.MethodDirect,
		Tenors: []parity.TenorEstimate{
			tenor(37, 0.05, parity.StatusResolved),
			tenor(73, 0, parity.StatusUnresolved),
			tenor(110, 0.07, parity.StatusResolved),
		},
	}
	cfg := config.Default()
	parity.FillTermStructure(ts, 100, cfg)

	mid := ts.Tenors[1]
	if mid.Status != parity.StatusInterpolated {
		t.Fatalf("expected interpolated, got %v", mid.Status)
	}
	if mid.Rate <= 0.05 || mid.Rate >= 0.07 {
		t.Fatalf("interpolated rate %.6f not strictly between neighbors", mid.Rate)
	}
	// Linear in days: 0.05 + (73-37)/(110-37) * 0.02.
	want := 0.05 + 36.0/73.0*0.02
	if math.Abs(mid.Rate-want) > 1e-12 {
		t.Fatalf("interpolated rate %.8f want %.8f", mid.Rate, want)
	}
	if !mid.Diag.BracketBefore.Equal(ts.Tenors[0].Expiry) || !mid.Diag.BracketAfter.Equal(ts.Tenors[2].Expiry) {
		t.Fatal("bracketing tenors must be recorded in diagnostics")
	}
}

func TestFillTermStructure_Extrapolates(t *testing.T) {
	t.Parallel()

	ts := &parity.TermStructure{
		Method: parity.MethodDirect,
		Tenors: []parity.TenorEstimate{
			tenor(18, 0, parity.StatusUnresolved),
			tenor(37, 0.05, parity.StatusResolved),
			tenor(110, 0.07, parity.StatusResolved),
			tenor(365, 0, parity.StatusUnresolved),
		},
	}
	cfg := config.Default()
	parity.FillTermStructure(ts, 100, cfg)

	early := ts.Tenors[0]
	if early.Status != parity.StatusExtrapolated {
		t.Fatalf("early tenor: expected extrapolated, got %v", early.Status)
	}
	wantEarly := 0.05 - cfg.FallbackGrowth*(37.0-18.0)/365.0
	if math.Abs(early.Rate-wantEarly) > 1e-12 {
		t.Fatalf("early rate %.8f want %.8f", early.Rate, wantEarly)
	}
	if !early.Diag.BracketAfter.Equal(ts.Tenors[1].Expiry) {
		t.Fatal("early extrapolation must record its source tenor")
	}

	late := ts.Tenors[3]
	if late.Status != parity.StatusExtrapolated {
		t.Fatalf("late tenor: expected extrapolated, got %v", late.Status)
	}
	wantLate := 0.07 + cfg.FallbackGrowth*(365.0-110.0)/365.0
	if math.Abs(late.Rate-wantLate) > 1e-12 {
		t.Fatalf("late rate %.8f want %.8f", late.Rate, wantLate)
	}
}

func TestFillTermStructure_ClampsToRateBounds(t *testing.T) {
	t.Parallel()

	ts := &parity.TermStructure{
		Method: parity.MethodDirect,
		Tenors: []parity.TenorEstimate{
			tenor(7, 0, parity.StatusUnresolved),
			tenor(30, 0.001, parity.StatusResolved),
		},
	}
	cfg := config.Default()
	cfg.FallbackGrowth = 0.5 // drives the early extrapolation below min_rate

	parity.FillTermStructure(ts, 100, cfg)
	if ts.Tenors[0].Rate < cfg.MinRate {
		t.Fatalf("extrapolated rate %.6f below min_rate", ts.Tenors[0].Rate)
	}
}

func TestFillTermStructure_NothingResolved(t *testing.T) {
	t.Parallel()

	ts := &parity.TermStructure{
		Method: parity.MethodDirect,
		Tenors: []parity.TenorEstimate{
			tenor(30, 0, parity.StatusUnresolved),
			tenor(60, 0, parity.StatusUnresolved),
		},
	}
	parity.FillTermStructure(ts, 100, config.Default())
	for _, te := range ts.Tenors {
		if te.Status != parity.StatusUnresolved {
			t.Fatalf("with no resolved tenors nothing can be filled, got %v", te.Status)
		}
	}
}

func TestFillTermStructure_CarriesForwards(t *testing.T) {
	t.Parallel()

	before := tenor(37, 0.05, parity.StatusResolved)
	before.Forward = parity.ForwardQuote{Expiry: before.Expiry, Forward: 101, Ratio: 1.01}
	after := tenor(110, 0.07, parity.StatusResolved)
	after.Forward = parity.ForwardQuote{Expiry: after.Expiry, Forward: 103, Ratio: 1.03}

	ts := &parity.TermStructure{
		Method: parity.MethodDirect,
		Tenors: []parity.TenorEstimate{before, tenor(73, 0, parity.StatusUnresolved), after},
	}
	parity.FillTermStructure(ts, 100, config.Default())

	mid := ts.Tenors[1]
	if mid.Forward.Forward <= 101 || mid.Forward.Forward >= 103 {
		t.Fatalf("interpolated forward %.4f not between neighbors", mid.Forward.Forward)
	}
	if mid.Forward.Ratio <= 1.01 || mid.Forward.Ratio >= 1.03 {
		t.Fatalf("interpolated ratio %.4f not between neighbors", mid.Forward.Ratio)
	}
}
