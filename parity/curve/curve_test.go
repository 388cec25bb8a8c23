package curve_test

import (
	"math"
	"testing"

	"github.com/meenmo/optcurve/parity/curve"
)

func TestNelsonSiegel_ShortEndLimit(t *testing.T) {
	t.Parallel()

	ns := curve.NelsonSiegel{Beta0: 0.04, Beta1: -0.01, Beta2: 0.02, Tau: 1.5}

	// r(t) must stay finite and continuous as t -> 0; the t=0 limit is
	// beta0 + beta1 (loading -> 1, curvature term -> 0).
	want := ns.Beta0 + ns.Beta1
	for _, tt := range []float64{0, 1e-12, 1e-8, 1e-5, 1e-3} {
		r := ns.Rate(tt)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			t.Fatalf("Rate(%g) not finite: %v", tt, r)
		}
		if math.Abs(r-want) > 1e-4 {
			t.Fatalf("Rate(%g) = %.8f, want near %.8f", tt, r, want)
		}
	}
}

func TestNelsonSiegel_Continuity(t *testing.T) {
	t.Parallel()

	ns := curve.NelsonSiegel{Beta0: 0.05, Beta1: -0.02, Beta2: 0.03, Tau: 0.8}
	prev := ns.Rate(1e-6)
	for tt := 1e-6; tt < 30; tt *= 1.1 {
		r := ns.Rate(tt)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			t.Fatalf("Rate(%g) not finite", tt)
		}
		if math.Abs(r-prev) > 0.01 {
			t.Fatalf("discontinuity near t=%g: %.6f -> %.6f", tt, prev, r)
		}
		prev = r
	}
}

func TestNelsonSiegel_DegenerateTau(t *testing.T) {
	t.Parallel()

	for _, tau := range []float64{0, -1, 1e-12} {
		ns := curve.NelsonSiegel{Beta0: 0.05, Beta1: 0.01, Beta2: -0.01, Tau: tau}
		for _, tt := range []float64{0, 0.1, 1, 10} {
			if r := ns.Rate(tt); math.IsNaN(r) || math.IsInf(r, 0) {
				t.Fatalf("tau=%g: Rate(%g) not finite", tau, tt)
			}
		}
	}
}

func TestMinimize_Quadratic(t *testing.T) {
	t.Parallel()

	// Min at (1, -2, 3, 0.5).
	target := []float64{1, -2, 3, 0.5}
	f := func(x []float64) float64 {
		var s float64
		for i := range x {
			d := x[i] - target[i]
			s += d * d
		}
		return s
	}

	got, iters, err := curve.Minimize(f, []float64{0, 0, 0, 0}, []float64{0.5, 0.5, 0.5, 0.5}, 2000, 1e-14)
	if err != nil {
		t.Fatalf("Minimize error: %v", err)
	}
	for i := range got {
		if math.Abs(got[i]-target[i]) > 1e-4 {
			t.Fatalf("component %d: got %.6f want %.6f (%d iters)", i, got[i], target[i], iters)
		}
	}
}

func TestMinimize_PenaltyRegion(t *testing.T) {
	t.Parallel()

	// A hard constraint x[0] > 0 via penalty must not trap the simplex.
	f := func(x []float64) float64 {
		if x[0] <= 0 {
			return 1e9 + math.Abs(x[0])
		}
		return (x[0] - 2) * (x[0] - 2)
	}
	got, _, err := curve.Minimize(f, []float64{0.1}, []float64{0.5}, 500, 1e-12)
	if err != nil {
		t.Fatalf("Minimize error: %v", err)
	}
	if math.Abs(got[0]-2) > 1e-4 {
		t.Fatalf("got %.6f want 2", got[0])
	}
}
