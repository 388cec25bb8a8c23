package config_test

import (
	"strings"
	"testing"

	"github.com/meenmo/optcurve/parity/config"
)

func TestDefaultValidates(t *testing.T) {
	t.Parallel()

	if err := config.Default().Validate(); err != nil {
		t.Fatalf("default params must validate: %v", err)
	}
}

func TestFromMap_Overrides(t *testing.T) {
	t.Parallel()

	p, err := config.FromMap(map[string]any{
		"initial_rate":   0.04,
		"max_rate":       0.3,
		"best_pair_only": true,
		"max_iterations": 80,
		"q":              0.015,
	})
	if err != nil {
		t.Fatalf("FromMap error: %v", err)
	}
	if p.InitialRate != 0.04 || p.MaxRate != 0.3 || !p.BestPairOnly || p.MaxIterations != 80 || p.DividendYield != 0.015 {
		t.Fatalf("overrides not applied: %+v", p)
	}
	if p.MinOptionsPerExpiry != 2 {
		t.Fatalf("untouched defaults must survive, got min_options_per_expiry=%d", p.MinOptionsPerExpiry)
	}
}

func TestFromMap_RejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	_, err := config.FromMap(map[string]any{"initial_rte": 0.04})
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "initial_rte") {
		t.Fatalf("error should name the offending key: %v", err)
	}
}

func TestFromMap_RejectsBadTypes(t *testing.T) {
	t.Parallel()

	if _, err := config.FromMap(map[string]any{"initial_rate": "five percent"}); err == nil {
		t.Fatal("expected type error")
	}
}

func TestValidate_Bounds(t *testing.T) {
	t.Parallel()

	cases := []func(*config.Params){
		func(p *config.Params) { p.MinRate, p.MaxRate = 0.2, 0.1 },
		func(p *config.Params) { p.InitialRate = 0.5 },
		func(p *config.Params) { p.VolLowerBound = 0 },
		func(p *config.Params) { p.MaxIterations = 0 },
		func(p *config.Params) { p.MinForwardRatio = 3 },
	}
	for i, mutate := range cases {
		p := config.Default()
		mutate(&p)
		if err := p.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}
