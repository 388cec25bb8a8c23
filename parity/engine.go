package parity

import (
	"sync"

	"github.com/meenmo/optcurve/parity/config"
	"github.com/meenmo/optcurve/parity/curve"
)

// Engine runs a full calibration: pair selection, the direct and smooth
// methods as two independent concurrent tasks, interpolation of the direct
// term structure, and final assembly.
//
// An Engine is immutable after construction and safe for concurrent runs.
type Engine struct {
	cfg    config.Params
	policy WeightPolicy
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithWeightPolicy replaces the default pair weighting policy.
func WithWeightPolicy(p WeightPolicy) EngineOption {
	return func(e *Engine) { e.policy = p }
}

// NewEngine validates the configuration and builds an engine.
func NewEngine(cfg config.Params, opts ...EngineOption) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg, policy: DefaultWeightPolicy{}}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Result holds everything one calibration run produces.
type Result struct {
	Direct TermStructure
	Smooth TermStructure

	// SmoothParams are the fitted Nelson-Siegel parameters, global to the
	// run; zero when the smooth fit failed.
	SmoothParams curve.NelsonSiegel
	// SmoothErr is set when the smooth method failed. Direct results remain
	// valid regardless.
	SmoothErr error

	// Options is the merged per-option table.
	Options []CalibratedOption
}

// Run calibrates both term structures from the given records. Per-tenor
// failures never abort the run; only a fully unusable input set returns an
// error.
func (e *Engine) Run(records []OptionRecord) (*Result, error) {
	selected, err := SelectPairs(records, e.cfg, e.policy)
	if err != nil {
		return nil, err
	}
	spot := selected[0].Spot

	res := &Result{Direct: TermStructure{Method: MethodDirect}}

	// The direct per-expiry searches are mutually independent, and the
	// smooth fit is independent of all of them: fan everything out and join
	// before assembly.
	directTenors := make([]TenorEstimate, len(selected))
	var wg sync.WaitGroup
	for i := range selected {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			directTenors[i] = CalibrateDirect(selected[i], e.cfg)
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		var smooth *TermStructure
		res.SmoothParams, smooth, res.SmoothErr = CalibrateSmooth(selected, e.cfg)
		res.Smooth = *smooth
	}()
	wg.Wait()

	res.Direct.Tenors = directTenors
	res.Direct.Sort()
	FillTermStructure(&res.Direct, spot, e.cfg)

	res.Options = Assemble(records, &res.Direct, &res.Smooth, e.cfg)
	return res, nil
}
